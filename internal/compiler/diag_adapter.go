package compiler

import (
	"fmt"

	"github.com/sunholo/wasmc/internal/ast"
	"github.com/sunholo/wasmc/internal/diagnostics"
)

// rangedDiags adapts a diagnostics.Bag plus a fixed source range into the
// typesys.Diagnostics interface Convert consults, so conversion errors are
// reported with the call site's range without threading it through every
// typesys call explicitly.
type rangedDiags struct {
	bag   *diagnostics.Bag
	phase string
	rng   ast.Range
}

func (d rangedDiags) NotAssignable(from, to string) {
	d.bag.Error(diagnostics.TYP001, d.phase,
		fmt.Sprintf("type %q is not assignable to type %q", from, to), &d.rng)
}

func (d rangedDiags) VoidToAny() {
	d.bag.Error(diagnostics.TYP006, d.phase, "cannot use a void expression as a value", &d.rng)
}

func (c *Compiler) diagsAt(rng ast.Range) rangedDiags {
	return rangedDiags{bag: c.Diags, phase: diagnostics.PhaseCompile, rng: rng}
}
