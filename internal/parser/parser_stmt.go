package parser

import (
	"github.com/sunholo/wasmc/internal/ast"
	"github.com/sunholo/wasmc/internal/lexer"
)

// parseStmt parses one ordinary (non-declaration) statement. On return
// curToken is the last token consumed; the caller advances to the next
// statement.
func (p *Parser) parseStmt() ast.Stmt {
	switch p.curToken.Type {
	case lexer.LBRACE:
		return p.parseBlock()
	case lexer.LET:
		return p.parseVariableStmt(ast.VarLet)
	case lexer.CONST:
		return p.parseVariableStmt(ast.VarConst)
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.WHILE:
		return p.parseWhileStmt()
	case lexer.DO:
		return p.parseDoWhileStmt()
	case lexer.FOR:
		return p.parseForStmt()
	case lexer.SWITCH:
		return p.parseSwitchStmt()
	case lexer.RETURN:
		return p.parseReturnStmt()
	case lexer.BREAK:
		return p.parseBreakStmt()
	case lexer.CONTINUE:
		return p.parseContinueStmt()
	case lexer.THROW:
		return p.parseThrowStmt()
	case lexer.TRY:
		return p.parseTryStmt()
	case lexer.SEMICOLON:
		// empty statement
		return nil
	default:
		return p.parseExprStmt()
	}
}

// parseBlock parses a `{ ... }` statement block. curToken is '{' on entry;
// on return curToken is '}'.
func (p *Parser) parseBlock() *ast.Block {
	rng := p.pos()
	b := &ast.Block{}
	p.nextToken()
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		if s := p.parseStmt(); s != nil {
			b.Statements = append(b.Statements, s)
		}
		p.nextToken()
	}
	b.SetPos(rng)
	return b
}

func (p *Parser) parseExprStmt() ast.Stmt {
	rng := p.pos()
	x := p.parseExpression(LOWEST)
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	n := &ast.ExprStmt{X: x}
	n.SetPos(rng)
	return n
}

// parseVariableStmt parses a local `let`/`const` statement, possibly
// declaring several comma-separated names.
func (p *Parser) parseVariableStmt(kind ast.VarKind) *ast.VariableStmt {
	rng := p.pos()
	n := &ast.VariableStmt{Kind: kind}

	for {
		if !p.expect(lexer.IDENT) {
			break
		}
		d := ast.VarDeclarator{Name: p.curToken.Literal}

		if p.peekTokenIs(lexer.COLON) {
			p.nextToken()
			p.nextToken()
			d.Type = p.parseType()
		}
		if p.peekTokenIs(lexer.ASSIGN) {
			p.nextToken()
			p.nextToken()
			d.Init = p.parseExpression(ASSIGNMENT)
		}
		n.Declarators = append(n.Declarators, d)

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	n.SetPos(rng)
	return n
}

func (p *Parser) parseIfStmt() *ast.IfStmt {
	rng := p.pos()
	p.expect(lexer.LPAREN)
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	p.expect(lexer.RPAREN)
	p.nextToken()
	then := p.parseStmt()

	n := &ast.IfStmt{Cond: cond, Then: then}
	if p.peekTokenIs(lexer.ELSE) {
		p.nextToken()
		p.nextToken()
		n.Else = p.parseStmt()
	}
	n.SetPos(rng)
	return n
}

func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	rng := p.pos()
	p.expect(lexer.LPAREN)
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	p.expect(lexer.RPAREN)
	p.nextToken()
	body := p.parseStmt()
	n := &ast.WhileStmt{Cond: cond, Body: body}
	n.SetPos(rng)
	return n
}

func (p *Parser) parseDoWhileStmt() *ast.DoWhileStmt {
	rng := p.pos()
	p.nextToken()
	body := p.parseStmt()
	p.expect(lexer.WHILE)
	p.expect(lexer.LPAREN)
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	p.expect(lexer.RPAREN)
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	n := &ast.DoWhileStmt{Body: body, Cond: cond}
	n.SetPos(rng)
	return n
}

// parseForStmt parses a C-style `for (init; cond; post) body`. The reduced
// language has no for-in/for-of form.
func (p *Parser) parseForStmt() *ast.ForStmt {
	rng := p.pos()
	p.expect(lexer.LPAREN)

	n := &ast.ForStmt{}
	p.nextToken()
	switch p.curToken.Type {
	case lexer.SEMICOLON:
		// no initializer
	case lexer.LET, lexer.CONST:
		kind := ast.VarLet
		if p.curTokenIs(lexer.CONST) {
			kind = ast.VarConst
		}
		n.Init = p.parseVariableStmt(kind)
		if !p.curTokenIs(lexer.SEMICOLON) {
			p.errorf("expected ';' after 'for' initializer, got %s", p.curToken.Type)
		}
	default:
		n.Init = p.parseExprStmt()
		if !p.curTokenIs(lexer.SEMICOLON) {
			p.errorf("expected ';' after 'for' initializer, got %s", p.curToken.Type)
		}
	}

	if !p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		n.Cond = p.parseExpression(LOWEST)
	}
	p.expect(lexer.SEMICOLON)

	if !p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		n.Post = p.parseExpression(LOWEST)
	}
	p.expect(lexer.RPAREN)

	p.nextToken()
	n.Body = p.parseStmt()
	n.SetPos(rng)
	return n
}

func (p *Parser) parseSwitchStmt() *ast.SwitchStmt {
	rng := p.pos()
	p.expect(lexer.LPAREN)
	p.nextToken()
	tag := p.parseExpression(LOWEST)
	p.expect(lexer.RPAREN)
	p.expect(lexer.LBRACE)

	n := &ast.SwitchStmt{Tag: tag}
	p.nextToken()
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		n.Cases = append(n.Cases, p.parseCaseClause())
	}
	n.SetPos(rng)
	return n
}

// parseCaseClause parses one `case expr:`/`default:` arm, leaving curToken
// on the next clause's 'case'/'default' or on the switch's closing '}' —
// unlike most parse* functions it does not land on its own last token, since
// the clause has no unambiguous final token when its body is empty.
func (p *Parser) parseCaseClause() ast.CaseClause {
	var c ast.CaseClause
	if p.curTokenIs(lexer.CASE) {
		p.nextToken()
		c.Label = p.parseExpression(LOWEST)
		p.expect(lexer.COLON)
	} else if p.curTokenIs(lexer.DEFAULT) {
		p.expect(lexer.COLON)
	} else {
		p.errorf("expected 'case' or 'default', got %s", p.curToken.Type)
		return c
	}

	p.nextToken()
	for !p.curTokenIs(lexer.CASE) && !p.curTokenIs(lexer.DEFAULT) &&
		!p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		if s := p.parseStmt(); s != nil {
			c.Body = append(c.Body, s)
		}
		p.nextToken()
	}
	return c
}

func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	rng := p.pos()
	n := &ast.ReturnStmt{}
	if !p.peekTokenIs(lexer.SEMICOLON) && !p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		n.Value = p.parseExpression(LOWEST)
	}
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	n.SetPos(rng)
	return n
}

func (p *Parser) parseBreakStmt() *ast.BreakStmt {
	rng := p.pos()
	n := &ast.BreakStmt{}
	if p.peekTokenIs(lexer.IDENT) {
		p.nextToken()
		n.Label = p.curToken.Literal
	}
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	n.SetPos(rng)
	return n
}

func (p *Parser) parseContinueStmt() *ast.ContinueStmt {
	rng := p.pos()
	n := &ast.ContinueStmt{}
	if p.peekTokenIs(lexer.IDENT) {
		p.nextToken()
		n.Label = p.curToken.Literal
	}
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	n.SetPos(rng)
	return n
}

func (p *Parser) parseThrowStmt() *ast.ThrowStmt {
	rng := p.pos()
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	n := &ast.ThrowStmt{Value: value}
	n.SetPos(rng)
	return n
}

// parseTryStmt fully parses a try/catch/finally so the compiler can anchor a
// precise diagnostic at it; this language never lowers it to code.
func (p *Parser) parseTryStmt() *ast.TryStmt {
	rng := p.pos()
	n := &ast.TryStmt{}
	p.expect(lexer.LBRACE)
	n.Try = p.parseBlock()

	if p.peekTokenIs(lexer.CATCH) {
		p.nextToken()
		if p.peekTokenIs(lexer.LPAREN) {
			p.nextToken()
			p.nextToken() // skip the bound identifier
			p.expect(lexer.RPAREN)
		}
		p.expect(lexer.LBRACE)
		n.Catch = p.parseBlock()
	}
	if p.peekTokenIs(lexer.FINALLY) {
		p.nextToken()
		p.expect(lexer.LBRACE)
		n.Finally = p.parseBlock()
	}
	n.SetPos(rng)
	return n
}
