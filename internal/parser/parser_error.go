package parser

import (
	"fmt"

	"github.com/sunholo/wasmc/internal/diagnostics"
)

// errorf reports a PAR002 diagnostic anchored at the current token.
func (p *Parser) errorf(format string, args ...any) {
	rng := p.pos()
	if p.diag != nil {
		p.diag.Error(diagnostics.PAR002, diagnostics.PhaseParse, fmt.Sprintf(format, args...), &rng)
	}
}

// noPrefixParseFnError reports that tt has no registered prefix handler,
// i.e. it cannot begin an expression.
func (p *Parser) noPrefixParseFnError(tt interface{ String() string }) {
	p.errorf("unexpected token %s in expression position", tt.String())
}
