package compiler

import (
	"github.com/sunholo/wasmc/internal/typesys"
	"github.com/sunholo/wasmc/internal/wasmir"
	"github.com/sunholo/wasmc/internal/ast"
)

// convert wraps typesys.Convert with this compiler's diagnostics and
// feature set, and sets c.currentType to `to` unconditionally, upholding the
// design's invariant that "after any compileExpression(..., IMPLICIT, ...)
// call, the expression's type equals the requested contextual type unless an
// error was emitted" (the error itself is still emitted; execution continues
// with the contextual type so downstream code never observes a stale type).
func (c *Compiler) convert(rng ast.Range, expr *wasmir.Expr, from, to typesys.Type, kind typesys.ConversionKind, wrap bool) *wasmir.Expr {
	out := typesys.Convert(expr, from, to, kind, wrap, c.features(), c.diagsAt(rng))
	c.currentType = to
	return out
}

// ensureWrap calls typesys.EnsureSmallIntegerWrapWithFeatures using this
// compiler's SIGN_EXTENSION setting, but first consults the current Flow's
// CanOverflow to skip the wrap entirely when the value is already known
// wrapped, per the design's C1 "ensure-wrap" contract.
func (c *Compiler) ensureWrap(expr *wasmir.Expr, t typesys.Type) *wasmir.Expr {
	if !t.Short() {
		return expr
	}
	if !c.currentFlow.CanOverflow(expr, t) {
		return expr
	}
	return typesys.EnsureSmallIntegerWrapWithFeatures(expr, t, c.features())
}
