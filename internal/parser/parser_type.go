package parser

import (
	"github.com/sunholo/wasmc/internal/ast"
	"github.com/sunholo/wasmc/internal/lexer"
)

// parseType parses one type annotation: a name, optional `<Args>`, optional
// trailing `| null`.
func (p *Parser) parseType() ast.TypeNode {
	tn := ast.TypeNode{Name: p.curToken.Literal}
	if p.peekTokenIs(lexer.LT) {
		p.nextToken()
		tn.TypeArgs = p.parseTypeArgList()
	}
	if p.peekTokenIs(lexer.PIPE) {
		p.nextToken()
		if p.peekTokenIs(lexer.NULL) {
			p.nextToken()
			tn.Nullable = true
		}
	}
	return tn
}

// parseTypeArgList parses a comma-separated `<T, U>` list. curToken is the
// opening '<' on entry; on return curToken is the closing '>' (possibly
// split out of a `>>`/`>>>` token by splitCloseAngle).
func (p *Parser) parseTypeArgList() []ast.TypeNode {
	var args []ast.TypeNode
	p.nextToken()
	if p.isCloseAngle() {
		return args
	}
	args = append(args, p.parseType())
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		args = append(args, p.parseType())
	}
	p.nextToken()
	p.splitCloseAngle()
	if !p.isCloseAngle() {
		p.errorf("expected '>' to close type argument list, got %s", p.curToken.Type)
	}
	return args
}

func (p *Parser) isCloseAngle() bool {
	return p.curTokenIs(lexer.GT) || p.curTokenIs(lexer.SHR) || p.curTokenIs(lexer.USHR)
}

// splitCloseAngle reinterprets a `>>`/`>>>` token the lexer scanned as a
// single shift operator into one '>' consumed now, pushing the remaining
// '>'(s) back as the next token(s), so a nested generic argument list like
// `Array<Array<i32>>` closes both levels correctly. Three-deep nesting
// (`>>>`) is accepted but only unwound one level; deeper nesting than that
// is not supported by this grammar.
func (p *Parser) splitCloseAngle() {
	switch p.curToken.Type {
	case lexer.SHR:
		rest := lexer.Token{Type: lexer.GT, Literal: ">", Line: p.curToken.Line, Column: p.curToken.Column + 1, File: p.curToken.File}
		old := p.peekToken
		p.curToken = lexer.Token{Type: lexer.GT, Literal: ">", Line: p.curToken.Line, Column: p.curToken.Column, File: p.curToken.File}
		p.peekToken = rest
		saved := old
		p.pushedPeek = &saved
	case lexer.USHR:
		rest := lexer.Token{Type: lexer.SHR, Literal: ">>", Line: p.curToken.Line, Column: p.curToken.Column + 1, File: p.curToken.File}
		old := p.peekToken
		p.curToken = lexer.Token{Type: lexer.GT, Literal: ">", Line: p.curToken.Line, Column: p.curToken.Column, File: p.curToken.File}
		p.peekToken = rest
		saved := old
		p.pushedPeek = &saved
	}
}
