package compiler

import (
	"fmt"

	"github.com/sunholo/wasmc/internal/ast"
	"github.com/sunholo/wasmc/internal/diagnostics"
	"github.com/sunholo/wasmc/internal/typesys"
	"github.com/sunholo/wasmc/internal/wasmir"
)

// compileExpression is the single entry point for expression lowering (the
// design's C8). It compiles node to its natural type, then — if ctx is
// non-nil — converts the result to *ctx with the given ConversionKind and
// wrap request. c.currentType always reflects the IR type of the returned
// expression when this function returns, upholding the design's invariant.
func (c *Compiler) compileExpression(node ast.Expr, ctx *typesys.Type, kind typesys.ConversionKind, wrap bool) *wasmir.Expr {
	expr, natural := c.compileExpressionNatural(node)
	if ctx == nil {
		c.currentType = natural
		return expr
	}
	return c.convert(node.Pos(), expr, natural, *ctx, kind, wrap)
}

// compileExpressionNatural dispatches on the concrete expression node kind
// and returns the IR it built plus the type it computed, without applying
// any contextual conversion.
func (c *Compiler) compileExpressionNatural(node ast.Expr) (*wasmir.Expr, typesys.Type) {
	c.stampRange(node.Pos())
	switch n := node.(type) {
	case *ast.LiteralExpr:
		return c.compileLiteral(n, nil)
	case *ast.IdentExpr:
		return c.compileIdentifier(n)
	case *ast.ThisExpr:
		return c.compileThis(n)
	case *ast.SuperExpr:
		return c.compileSuper(n)
	case *ast.ParenExpr:
		return c.compileExpressionNatural(n.X)
	case *ast.AsExpr:
		return c.compileAs(n)
	case *ast.BinaryExpr:
		return c.compileBinary(n)
	case *ast.UnaryExpr:
		return c.compileUnary(n)
	case *ast.TernaryExpr:
		return c.compileTernary(n)
	case *ast.AssignExpr:
		return c.compileAssign(n)
	case *ast.CallExpr:
		return c.compileCallExpression(n)
	case *ast.NewExpr:
		return c.compileNew(n)
	case *ast.PropertyAccessExpr:
		return c.compilePropertyAccess(n)
	case *ast.ElementAccessExpr:
		return c.compileElementAccess(n)
	case *ast.ArrayLiteralExpr:
		return c.compileArrayLiteral(n)
	case *ast.ObjectLiteralExpr:
		return c.compileObjectLiteral(n)
	default:
		c.Diags.Internal(fmt.Sprintf("compileExpressionNatural: unhandled node %T", node), &ast.Range{})
		return wasmir.Unreachable(), typesys.MakeI32()
	}
}

func (c *Compiler) compileAs(n *ast.AsExpr) (*wasmir.Expr, typesys.Type) {
	to := c.resolveType(n.Type)
	expr, from := c.compileExpressionNatural(n.X)
	out := c.convert(n.Pos(), expr, from, to, typesys.Explicit, true)
	return out, to
}

func (c *Compiler) compileTernary(n *ast.TernaryExpr) (*wasmir.Expr, typesys.Type) {
	condExpr, condType := c.compileExpressionNatural(n.Cond)
	cond := typesys.MakeIsTrueish(condExpr, condType, c.features())

	parent := c.currentFlow
	thenFlow := parent.Fork()
	c.currentFlow = thenFlow
	thenExpr, thenType := c.compileExpressionNatural(n.Then)

	elseFlow := parent.Fork()
	c.currentFlow = elseFlow
	elseExpr, elseType := c.compileExpressionNatural(n.Else)

	common, ok := typesys.CommonCompatible(thenType, elseType, false)
	if !ok {
		c.Diags.Error(diagnostics.TYP002, diagnostics.PhaseCompile,
			fmt.Sprintf("branches of conditional expression have incompatible types %q and %q", thenType, elseType), rngPtr(n.Pos()))
		common = thenType
	}
	thenExpr = c.convert(n.Then.Pos(), thenExpr, thenType, common, typesys.Implicit, true)
	elseExpr = c.convert(n.Else.Pos(), elseExpr, elseType, common, typesys.Implicit, true)

	parent.InheritMutual(thenFlow, elseFlow)
	parent.Free(thenFlow)
	parent.Free(elseFlow)
	c.currentFlow = parent

	c.currentType = common
	return wasmir.If(nativeOf(common), cond, thenExpr, elseExpr), common
}

func rngPtr(r ast.Range) *ast.Range { return &r }
