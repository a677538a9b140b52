// Package parser builds an ast.Source from a token stream, following the
// same hand-written Pratt-parsing shape the original compiler's own parser
// uses: a core loop maintaining cur/peek tokens plus tables of prefix/infix
// parse functions keyed by token type.
package parser

import (
	"github.com/sunholo/wasmc/internal/ast"
	"github.com/sunholo/wasmc/internal/diagnostics"
	"github.com/sunholo/wasmc/internal/lexer"
)

type prefixParseFn func() ast.Expr
type infixParseFn func(ast.Expr) ast.Expr

// Precedence levels, lowest to highest.
const (
	_ int = iota
	LOWEST
	ASSIGNMENT  // = += (modelled as plain =)
	TERNARY     // ?:
	LOGICAL_OR  // ||
	LOGICAL_AND // &&
	BITWISE_OR  // |
	BITWISE_XOR // ^
	BITWISE_AND // &
	EQUALITY    // == !=
	RELATIONAL  // < <= > >=
	SHIFT       // << >> >>>
	ADDITIVE    // + -
	MULTIPLICATIVE
	EXPONENT // **
	UNARY    // ! ~ - + ++ -- (prefix)
	POSTFIX  // ++ -- (postfix)
	CALL_OR_ACCESS
)

var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:   ASSIGNMENT,
	lexer.QUESTION: TERNARY,
	lexer.LOGOR:    LOGICAL_OR,
	lexer.LOGAND:   LOGICAL_AND,
	lexer.PIPE:     BITWISE_OR,
	lexer.CARET:    BITWISE_XOR,
	lexer.AMP:      BITWISE_AND,
	lexer.EQ:       EQUALITY,
	lexer.NEQ:      EQUALITY,
	lexer.LT:       RELATIONAL,
	lexer.LE:       RELATIONAL,
	lexer.GT:       RELATIONAL,
	lexer.GE:       RELATIONAL,
	lexer.AS:       RELATIONAL,
	lexer.SHL:      SHIFT,
	lexer.SHR:      SHIFT,
	lexer.USHR:     SHIFT,
	lexer.PLUS:     ADDITIVE,
	lexer.MINUS:    ADDITIVE,
	lexer.STAR:     MULTIPLICATIVE,
	lexer.SLASH:    MULTIPLICATIVE,
	lexer.PERCENT:  MULTIPLICATIVE,
	lexer.STARSTAR: EXPONENT,
	lexer.INC:      POSTFIX,
	lexer.DEC:      POSTFIX,
	lexer.LPAREN:   CALL_OR_ACCESS,
	lexer.LBRACKET: CALL_OR_ACCESS,
	lexer.DOT:      CALL_OR_ACCESS,
}

// Parser turns one file's token stream into an *ast.Source.
type Parser struct {
	l    *lexer.Lexer
	file string
	diag *diagnostics.Bag

	curToken  lexer.Token
	peekToken lexer.Token
	// pushedPeek is a one-token lookahead override, used when a `>>`/`>>>`
	// token is split back into individual `>`s while closing a nested
	// generic argument list (see parser_type.go's splitCloseAngle).
	pushedPeek *lexer.Token

	// pendingTypeArgs carries type arguments parsed speculatively by
	// parseIdent (an explicit `name<T>(...)` call) through to parseCall,
	// which attaches them to the resulting ast.CallExpr.
	pendingTypeArgs []ast.TypeNode

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

// New constructs a Parser reading from l, reporting errors into diag.
func New(l *lexer.Lexer, file string, diag *diagnostics.Bag) *Parser {
	p := &Parser{l: l, file: file, diag: diag}

	p.prefixParseFns = map[lexer.TokenType]prefixParseFn{}
	p.infixParseFns = map[lexer.TokenType]infixParseFn{}

	p.registerPrefix(lexer.IDENT, p.parseIdent)
	p.registerPrefix(lexer.INT, p.parseIntLiteral)
	p.registerPrefix(lexer.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBoolLiteral)
	p.registerPrefix(lexer.FALSE, p.parseBoolLiteral)
	p.registerPrefix(lexer.NULL, p.parseNullLiteral)
	p.registerPrefix(lexer.THIS, p.parseThis)
	p.registerPrefix(lexer.SUPER, p.parseSuper)
	p.registerPrefix(lexer.LPAREN, p.parseParenOrArrow)
	p.registerPrefix(lexer.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(lexer.LBRACE, p.parseObjectLiteral)
	p.registerPrefix(lexer.MINUS, p.parsePrefix)
	p.registerPrefix(lexer.PLUS, p.parsePrefix)
	p.registerPrefix(lexer.BANG, p.parsePrefix)
	p.registerPrefix(lexer.TILDE, p.parsePrefix)
	p.registerPrefix(lexer.INC, p.parsePrefix)
	p.registerPrefix(lexer.DEC, p.parsePrefix)
	p.registerPrefix(lexer.NEW, p.parseNew)

	p.registerInfix(lexer.PLUS, p.parseBinary)
	p.registerInfix(lexer.MINUS, p.parseBinary)
	p.registerInfix(lexer.STAR, p.parseBinary)
	p.registerInfix(lexer.SLASH, p.parseBinary)
	p.registerInfix(lexer.PERCENT, p.parseBinary)
	p.registerInfix(lexer.STARSTAR, p.parseBinary)
	p.registerInfix(lexer.EQ, p.parseBinary)
	p.registerInfix(lexer.NEQ, p.parseBinary)
	p.registerInfix(lexer.LT, p.parseBinary)
	p.registerInfix(lexer.LE, p.parseBinary)
	p.registerInfix(lexer.GT, p.parseBinary)
	p.registerInfix(lexer.GE, p.parseBinary)
	p.registerInfix(lexer.AMP, p.parseBinary)
	p.registerInfix(lexer.PIPE, p.parseBinary)
	p.registerInfix(lexer.CARET, p.parseBinary)
	p.registerInfix(lexer.SHL, p.parseBinary)
	p.registerInfix(lexer.SHR, p.parseBinary)
	p.registerInfix(lexer.USHR, p.parseBinary)
	p.registerInfix(lexer.LOGAND, p.parseLogical)
	p.registerInfix(lexer.LOGOR, p.parseLogical)
	p.registerInfix(lexer.ASSIGN, p.parseAssign)
	p.registerInfix(lexer.QUESTION, p.parseTernary)
	p.registerInfix(lexer.LPAREN, p.parseCall)
	p.registerInfix(lexer.LBRACKET, p.parseElementAccess)
	p.registerInfix(lexer.DOT, p.parseDotAccess)
	p.registerInfix(lexer.INC, p.parsePostfix)
	p.registerInfix(lexer.DEC, p.parsePostfix)
	p.registerInfix(lexer.AS, p.parseAsExpr)

	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) registerPrefix(tt lexer.TokenType, fn prefixParseFn) { p.prefixParseFns[tt] = fn }
func (p *Parser) registerInfix(tt lexer.TokenType, fn infixParseFn)   { p.infixParseFns[tt] = fn }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if p.pushedPeek != nil {
		p.peekToken = *p.pushedPeek
		p.pushedPeek = nil
		return
	}
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(tt lexer.TokenType) bool  { return p.curToken.Type == tt }
func (p *Parser) peekTokenIs(tt lexer.TokenType) bool { return p.peekToken.Type == tt }

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return LOWEST
}

// expect advances onto tt if it is the peek token, the "expectPeek" idiom:
// every parse* function lands curToken on the last token of what it parsed,
// so the token terminating the enclosing construct is always one lookahead
// away. Reports PAR002 (without advancing) on mismatch.
func (p *Parser) expect(tt lexer.TokenType) bool {
	if p.peekTokenIs(tt) {
		p.nextToken()
		return true
	}
	p.errorf("expected %s, got %s (%q)", tt, p.peekToken.Type, p.peekToken.Literal)
	return false
}

// checkpoint is a backtracking point for the few places the grammar is
// locally ambiguous (generic call/new type arguments vs. a `<`/`>`
// comparison chain).
type checkpoint struct {
	lex        lexer.State
	curToken   lexer.Token
	peekToken  lexer.Token
	pushedPeek *lexer.Token
}

func (p *Parser) mark() checkpoint {
	return checkpoint{lex: p.l.Snapshot(), curToken: p.curToken, peekToken: p.peekToken, pushedPeek: p.pushedPeek}
}

func (p *Parser) reset(c checkpoint) {
	p.l.Restore(c.lex)
	p.curToken, p.peekToken, p.pushedPeek = c.curToken, c.peekToken, c.pushedPeek
}

func (p *Parser) pos() ast.Range {
	start := ast.Pos{File: p.curToken.File, Line: p.curToken.Line, Column: p.curToken.Column}
	return ast.Range{Start: start, End: start}
}

// Parse parses the full token stream into an ast.Source named path.
func Parse(input, path string, diag *diagnostics.Bag) *ast.Source {
	l := lexer.New(input, path)
	p := New(l, path, diag)
	return p.ParseSource(path)
}

// ParseSource drives the top-level statement loop, recovering from a panic
// (a malformed construct deep in expression parsing) by reporting PAR002 and
// returning whatever statements were accumulated so far, matching the
// original parser's file-level panic recovery.
func (p *Parser) ParseSource(path string) (src *ast.Source) {
	src = &ast.Source{Path: path}
	src.SetPos(p.pos())
	defer func() {
		if r := recover(); r != nil {
			p.errorf("parser error: %v", r)
		}
	}()
	for !p.curTokenIs(lexer.EOF) {
		stmt := p.parseTopLevelStmt()
		if stmt != nil {
			src.Statements = append(src.Statements, stmt)
		}
		if !p.curTokenIs(lexer.EOF) {
			p.nextToken()
		}
	}
	return src
}
