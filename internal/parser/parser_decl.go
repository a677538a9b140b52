package parser

import (
	"github.com/sunholo/wasmc/internal/ast"
	"github.com/sunholo/wasmc/internal/diagnostics"
	"github.com/sunholo/wasmc/internal/lexer"
)

// parseTopLevelStmt parses one source-level statement: a declaration (function,
// class, enum, namespace, global variable, import) or, for script-style files,
// an ordinary statement. On return curToken is the last token consumed; the
// caller (ParseSource, or a namespace body) advances to the next statement.
func (p *Parser) parseTopLevelStmt() ast.Stmt {
	mods := p.parseModifierPrefix()

	switch p.curToken.Type {
	case lexer.FUNCTION:
		return p.parseFunctionDecl(mods)
	case lexer.CLASS:
		return p.parseClassDecl(mods)
	case lexer.ENUM:
		return p.parseEnumDecl(mods)
	case lexer.CONST:
		if p.peekTokenIs(lexer.ENUM) {
			mods.Const = true
			p.nextToken()
			return p.parseEnumDecl(mods)
		}
		return p.parseGlobalDecl(mods, ast.VarConst)
	case lexer.LET:
		return p.parseGlobalDecl(mods, ast.VarLet)
	case lexer.NAMESPACE:
		return p.parseNamespaceDecl(mods)
	case lexer.IMPORT:
		return p.parseImportDecl()
	default:
		return p.parseStmt()
	}
}

// parseModifierPrefix consumes the run of `export`/`declare`/`@decorator`
// tokens preceding a declaration, returning the accumulated Modifiers with
// curToken left on the declaration's leading keyword.
func (p *Parser) parseModifierPrefix() ast.Modifiers {
	var mods ast.Modifiers
	for {
		switch p.curToken.Type {
		case lexer.EXPORT:
			mods.Export = true
			p.nextToken()
		case lexer.DECLARE:
			mods.Ambient = true
			p.nextToken()
		case lexer.AT:
			p.parseDecorator(&mods)
			p.nextToken()
		default:
			return mods
		}
	}
}

// parseDecorator parses one `@name` or `@name(args)` annotation, folding its
// effect into mods. curToken is '@' on entry; on return curToken is the
// decorator name or the closing ')'.
func (p *Parser) parseDecorator(mods *ast.Modifiers) {
	p.nextToken()
	name := p.curToken.Literal

	var args []string
	if p.peekTokenIs(lexer.LPAREN) {
		p.nextToken()
		p.nextToken()
		for !p.curTokenIs(lexer.RPAREN) && !p.curTokenIs(lexer.EOF) {
			if p.curTokenIs(lexer.STRING) {
				args = append(args, p.curToken.Literal)
			}
			if p.peekTokenIs(lexer.COMMA) {
				p.nextToken()
				p.nextToken()
				continue
			}
			break
		}
		p.expect(lexer.RPAREN)
	}

	switch name {
	case "external":
		if len(args) >= 2 {
			mods.ExternalMod, mods.ExternalName = args[0], args[1]
		} else {
			p.errorf("@external requires a module and field name")
		}
	case "builtin":
		mods.Builtin = true
	case "inline":
		mods.Inline = true
	case "operator":
		if len(args) >= 1 {
			mods.Operator = args[0]
		} else {
			p.errorf("@operator requires an operator symbol")
		}
	default:
		p.errorf("unknown decorator %q", name)
	}
}

// parseFunctionDecl parses `function name<T>(params): Ret { ... }`, its
// concise arrow-body form, or an ambient (bodyless) declaration. curToken is
// 'function' on entry.
func (p *Parser) parseFunctionDecl(mods ast.Modifiers) *ast.FunctionDecl {
	rng := p.pos()
	p.expect(lexer.IDENT)
	name := p.curToken.Literal

	if p.peekTokenIs(lexer.LT) {
		p.nextToken()
		mods.Generic = p.parseTypeParamList()
	}

	p.expect(lexer.LPAREN)
	params := p.parseParamList()

	var ret ast.TypeNode
	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		ret = p.parseType()
	}

	fn := &ast.FunctionDecl{Name: name, Mods: mods, Params: params, ReturnType: ret}
	p.parseFunctionBody(fn)
	fn.SetPos(rng)
	return fn
}

// parseFunctionBody attaches fn's body: a concise `=> expr` form, a block, or
// no body at all for an ambient declaration.
func (p *Parser) parseFunctionBody(fn *ast.FunctionDecl) {
	switch {
	case p.peekTokenIs(lexer.ARROW):
		p.nextToken()
		p.nextToken()
		value := p.parseExpression(ASSIGNMENT)
		ret := &ast.ReturnStmt{Value: value}
		ret.SetPos(value.Pos())
		body := &ast.Block{Statements: []ast.Stmt{ret}}
		body.SetPos(value.Pos())
		fn.Body = body
		fn.IsArrow = true
	case p.peekTokenIs(lexer.LBRACE):
		p.nextToken()
		fn.Body = p.parseBlock()
	case fn.Mods.Ambient:
		if p.peekTokenIs(lexer.SEMICOLON) {
			p.nextToken()
		}
	default:
		p.errorf("expected a function body, got %s", p.peekToken.Type)
	}
}

// parseTypeParamList parses a generic declaration's `<T, U>` parameter
// names. curToken is '<' on entry; on return curToken is the closing '>'.
func (p *Parser) parseTypeParamList() []string {
	var names []string
	p.nextToken()
	if p.isCloseAngle() {
		return names
	}
	names = append(names, p.curToken.Literal)
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		names = append(names, p.curToken.Literal)
	}
	p.nextToken()
	p.splitCloseAngle()
	if !p.isCloseAngle() {
		p.errorf("expected '>' to close type parameter list, got %s", p.curToken.Type)
	}
	return names
}

// parseParamList parses an ordinary `(a: T, b: U = default)` parameter list.
// curToken is '(' on entry; on return curToken is the closing ')'.
func (p *Parser) parseParamList() []ast.Param {
	var params []ast.Param
	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return params
	}
	p.nextToken()
	params = append(params, p.parseParam())
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		params = append(params, p.parseParam())
	}
	p.expect(lexer.RPAREN)
	return params
}

func (p *Parser) parseParam() ast.Param {
	name := p.curToken.Literal
	var typ ast.TypeNode
	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		typ = p.parseType()
	}
	var def ast.Expr
	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		def = p.parseExpression(ASSIGNMENT)
	}
	return ast.Param{Name: name, Type: typ, DefaultValue: def}
}

// parseCtorParamList is parseParamList's constructor variant: a leading
// `public`/`private`/`readonly` on a parameter promotes it to an instance
// field, TypeScript's parameter-property shorthand.
func (p *Parser) parseCtorParamList() ([]ast.Param, []*ast.FieldDecl) {
	var params []ast.Param
	var fields []*ast.FieldDecl
	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return params, fields
	}
	p.nextToken()
	for {
		param, field := p.parseCtorParam()
		params = append(params, param)
		if field != nil {
			fields = append(fields, field)
		}
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	p.expect(lexer.RPAREN)
	return params, fields
}

func (p *Parser) parseCtorParam() (ast.Param, *ast.FieldDecl) {
	rng := p.pos()
	var fmods ast.Modifiers
	promote := false
	for {
		switch p.curToken.Type {
		case lexer.PUBLIC:
			promote = true
			p.nextToken()
			continue
		case lexer.PRIVATE:
			promote = true
			fmods.Private = true
			p.nextToken()
			continue
		case lexer.READONLY:
			promote = true
			fmods.Readonly = true
			p.nextToken()
			continue
		}
		break
	}
	param := p.parseParam()
	if !promote {
		return param, nil
	}
	field := &ast.FieldDecl{Name: param.Name, Type: param.Type, Mods: fmods, CtorParam: true}
	field.SetPos(rng)
	return param, field
}

// parseClassDecl parses `class Name<T> extends Base { ... }`. curToken is
// 'class' on entry.
func (p *Parser) parseClassDecl(mods ast.Modifiers) *ast.ClassDecl {
	rng := p.pos()
	p.expect(lexer.IDENT)
	name := p.curToken.Literal

	if p.peekTokenIs(lexer.LT) {
		p.nextToken()
		mods.Generic = p.parseTypeParamList()
	}

	var base string
	if p.peekTokenIs(lexer.EXTENDS) {
		p.nextToken()
		p.expect(lexer.IDENT)
		base = p.curToken.Literal
	}

	cls := &ast.ClassDecl{Name: name, Mods: mods, BaseClass: base}

	if !p.expect(lexer.LBRACE) {
		cls.SetPos(rng)
		return cls
	}
	p.nextToken()
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		p.parseClassMember(cls)
		p.nextToken()
	}
	cls.SetPos(rng)
	return cls
}

// parseClassMemberModifiers consumes a class member's modifier prefix,
// leaving curToken on 'constructor' or the member's name.
func (p *Parser) parseClassMemberModifiers() ast.Modifiers {
	var mods ast.Modifiers
	for {
		switch p.curToken.Type {
		case lexer.PUBLIC:
			p.nextToken()
		case lexer.PRIVATE:
			mods.Private = true
			p.nextToken()
		case lexer.STATIC:
			mods.Static = true
			p.nextToken()
		case lexer.READONLY:
			mods.Readonly = true
			p.nextToken()
		case lexer.AT:
			p.parseDecorator(&mods)
			p.nextToken()
		default:
			return mods
		}
	}
}

func (p *Parser) parseClassMember(cls *ast.ClassDecl) {
	mods := p.parseClassMemberModifiers()

	if p.curTokenIs(lexer.CONSTRUCTOR) {
		cls.Ctor = p.parseConstructor(mods, cls)
		return
	}

	if !p.curTokenIs(lexer.IDENT) {
		p.errorf("expected a field or method name in class body, got %s", p.curToken.Type)
		return
	}
	name := p.curToken.Literal

	if p.peekTokenIs(lexer.LPAREN) || p.peekTokenIs(lexer.LT) {
		cls.Methods = append(cls.Methods, p.parseMethod(name, mods, cls.Name))
		return
	}

	cls.Fields = append(cls.Fields, p.parseFieldDecl(name, mods))
}

func (p *Parser) parseFieldDecl(name string, mods ast.Modifiers) *ast.FieldDecl {
	rng := p.pos()
	var typ ast.TypeNode
	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		typ = p.parseType()
	}
	var init ast.Expr
	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		init = p.parseExpression(ASSIGNMENT)
	}
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	fd := &ast.FieldDecl{Name: name, Type: typ, Mods: mods, Init: init}
	fd.SetPos(rng)
	return fd
}

// parseMethod parses an instance or static method. curToken is the method's
// name on entry (TypeScript class bodies spell methods without `function`).
func (p *Parser) parseMethod(name string, mods ast.Modifiers, className string) *ast.FunctionDecl {
	rng := p.pos()
	if p.peekTokenIs(lexer.LT) {
		p.nextToken()
		mods.Generic = p.parseTypeParamList()
	}
	p.expect(lexer.LPAREN)
	params := p.parseParamList()

	var ret ast.TypeNode
	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		ret = p.parseType()
	}

	fn := &ast.FunctionDecl{Name: name, Mods: mods, Params: params, ReturnType: ret}
	if !mods.Static {
		fn.ThisType = ast.TypeNode{Name: className}
	}
	p.parseFunctionBody(fn)
	fn.SetPos(rng)
	return fn
}

// parseConstructor parses a class's `constructor(...) { ... }`. curToken is
// 'constructor' on entry.
func (p *Parser) parseConstructor(mods ast.Modifiers, cls *ast.ClassDecl) *ast.FunctionDecl {
	rng := p.pos()
	p.expect(lexer.LPAREN)
	params, promoted := p.parseCtorParamList()
	cls.Fields = append(cls.Fields, promoted...)

	fn := &ast.FunctionDecl{Name: "constructor", Mods: mods, ThisType: ast.TypeNode{Name: cls.Name}, Params: params}
	if !p.expect(lexer.LBRACE) {
		fn.SetPos(rng)
		return fn
	}
	fn.Body = p.parseBlock()
	fn.SetPos(rng)
	return fn
}

// parseEnumDecl parses `enum Name { A, B = 2, C }`. curToken is 'enum' on
// entry (mods.Const already set by parseTopLevelStmt for `const enum`).
func (p *Parser) parseEnumDecl(mods ast.Modifiers) *ast.EnumDecl {
	rng := p.pos()
	p.expect(lexer.IDENT)
	name := p.curToken.Literal
	e := &ast.EnumDecl{Name: name, Mods: mods}

	if !p.expect(lexer.LBRACE) {
		e.SetPos(rng)
		return e
	}
	p.nextToken()
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		if !p.curTokenIs(lexer.IDENT) {
			p.errorf("expected an enum member name, got %s", p.curToken.Type)
			break
		}
		m := ast.EnumMember{Name: p.curToken.Literal}
		if p.peekTokenIs(lexer.ASSIGN) {
			p.nextToken()
			p.nextToken()
			m.Init = p.parseExpression(ASSIGNMENT)
		}
		e.Members = append(e.Members, m)
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		}
		p.nextToken()
	}
	e.SetPos(rng)
	return e
}

// parseGlobalDecl parses a top-level `let`/`const` statement, which may
// declare several comma-separated names; more than one is wrapped in a
// Block the resolver flattens, matching the original compiler's treatment of
// a VariableStatement as a sequence of independent declarations.
func (p *Parser) parseGlobalDecl(mods ast.Modifiers, kind ast.VarKind) ast.Stmt {
	rng := p.pos()
	mods.Const = kind == ast.VarConst

	var decls []*ast.GlobalDecl
	for {
		if !p.expect(lexer.IDENT) {
			break
		}
		name := p.curToken.Literal

		var typ ast.TypeNode
		if p.peekTokenIs(lexer.COLON) {
			p.nextToken()
			p.nextToken()
			typ = p.parseType()
		}

		var init ast.Expr
		if p.peekTokenIs(lexer.ASSIGN) {
			p.nextToken()
			p.nextToken()
			init = p.parseExpression(ASSIGNMENT)
		} else if mods.Const && !mods.Ambient {
			rr := p.pos()
			p.diag.Error(diagnostics.SEM003, diagnostics.PhaseParse,
				"const declaration '"+name+"' requires an initializer", &rr)
		}

		g := &ast.GlobalDecl{Name: name, Type: typ, Mods: mods, Init: init}
		g.SetPos(rng)
		decls = append(decls, g)

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}

	if len(decls) == 1 {
		return decls[0]
	}
	b := &ast.Block{}
	for _, d := range decls {
		b.Statements = append(b.Statements, d)
	}
	b.SetPos(rng)
	return b
}

// parseNamespaceDecl parses `namespace Name { ... }`, reusing
// parseTopLevelStmt for its body so nested declarations work uniformly.
func (p *Parser) parseNamespaceDecl(mods ast.Modifiers) *ast.NamespaceDecl {
	rng := p.pos()
	p.expect(lexer.IDENT)
	name := p.curToken.Literal
	ns := &ast.NamespaceDecl{Name: name, Mods: mods}

	if !p.expect(lexer.LBRACE) {
		ns.SetPos(rng)
		return ns
	}
	p.nextToken()
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		if s := p.parseTopLevelStmt(); s != nil {
			ns.Statements = append(ns.Statements, s)
		}
		p.nextToken()
	}
	ns.SetPos(rng)
	return ns
}

// parseImportDecl parses `import "./other.ts";`, the only import form this
// language needs: whole-file side-effecting inclusion, resolved relative to
// the importing file.
func (p *Parser) parseImportDecl() *ast.ImportDecl {
	rng := p.pos()
	p.expect(lexer.STRING)
	path := p.curToken.Literal
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	n := &ast.ImportDecl{SourcePath: path}
	n.SetPos(rng)
	return n
}
