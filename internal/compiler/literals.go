package compiler

import (
	"strconv"

	"github.com/sunholo/wasmc/internal/ast"
	"github.com/sunholo/wasmc/internal/typesys"
	"github.com/sunholo/wasmc/internal/wasmir"
)

// compileLiteral parses n.Text against ctx (nil meaning "infer a default
// type": i32 for integers, f64 for floats, bool for booleans, a nullable
// reference of unspecified class for null — matching the design's note that
// globals with untyped declarations are "compiled with a neutral contextual
// type to enable literal inference").
func (c *Compiler) compileLiteral(n *ast.LiteralExpr, ctx *typesys.Type) (*wasmir.Expr, typesys.Type) {
	switch n.Kind {
	case ast.LitInteger:
		t := typesys.MakeI32()
		if ctx != nil && ctx.Integer() {
			t = *ctx
		}
		v, _ := strconv.ParseInt(n.Text, 0, 64)
		return literalIntExpr(v, t), t

	case ast.LitFloat:
		t := typesys.MakeF64()
		if ctx != nil && ctx.Float() {
			t = *ctx
		}
		v, _ := strconv.ParseFloat(n.Text, 64)
		if t.Kind == typesys.F32 {
			return wasmir.Const(wasmir.F32, float32(v)), t
		}
		return wasmir.Const(wasmir.F64, v), t

	case ast.LitBool:
		v := int32(0)
		if n.Text == "true" {
			v = 1
		}
		return wasmir.Const(wasmir.I32, v), typesys.MakeBool()

	case ast.LitString:
		ptr := c.Layout.EnsureStaticString(n.Text)
		t := typesys.MakeReference("String", false)
		return wasmir.Const(nativeOf(t), pointerValue(ptr, nativeOf(t))), t

	case ast.LitNull:
		t := typesys.MakeReference("", true)
		if ctx != nil && ctx.IsReference() {
			t = typesys.MakeReference(ctx.ClassName, true)
		}
		return wasmir.Const(nativeOf(t), pointerValue(0, nativeOf(t))), t
	}
	return wasmir.Unreachable(), typesys.MakeI32()
}

func pointerValue(p int32, n wasmir.NativeType) any {
	if n == wasmir.I64 {
		return int64(p)
	}
	return p
}

// literalIntExpr renders an integer literal in t's native representation.
func literalIntExpr(v int64, t typesys.Type) *wasmir.Expr {
	switch nativeOf(t) {
	case wasmir.I64:
		return wasmir.Const(wasmir.I64, v)
	default:
		return wasmir.Const(wasmir.I32, int32(v))
	}
}

// precompute attempts to fold expr to a constant value without emitting any
// IR side effects, returning (value, true) on success. It recognises exactly
// the IR shapes the design requires precompute to recognise: Const nodes,
// and nothing else. No caller in this package uses it; constant binary
// expressions are not folded.
func precompute(expr *wasmir.Expr) (any, bool) {
	if expr.Op == wasmir.OpConst {
		return expr.ConstValue, true
	}
	return nil, false
}

// isSyntacticConstant reports whether node is a literal, possibly wrapped in
// parentheses or a unary operator, as checked in the cases below. Its caller
// is allocate.go's compileArrayLiteral.
func isSyntacticConstant(node ast.Expr) bool {
	switch n := node.(type) {
	case *ast.LiteralExpr:
		return true
	case *ast.ParenExpr:
		return isSyntacticConstant(n.X)
	case *ast.UnaryExpr:
		return (n.Op == ast.OpMinus || n.Op == ast.OpPlus) && isSyntacticConstant(n.X)
	default:
		return false
	}
}

// foldConstant evaluates a syntactic constant (per isSyntacticConstant)
// directly into t's native representation, without emitting any IR; used by
// compileArrayLiteral to build a layout.EnsureStaticArray element slice.
func foldConstant(node ast.Expr, t typesys.Type) any {
	switch n := node.(type) {
	case *ast.ParenExpr:
		return foldConstant(n.X, t)
	case *ast.UnaryExpr:
		v := foldConstant(n.X, t)
		if n.Op == ast.OpMinus {
			return negateNative(v)
		}
		return v
	case *ast.LiteralExpr:
		switch n.Kind {
		case ast.LitFloat:
			f, _ := strconv.ParseFloat(n.Text, 64)
			if t.Kind == typesys.F32 {
				return float32(f)
			}
			return f
		default:
			v, _ := strconv.ParseInt(n.Text, 0, 64)
			if t.Long() {
				return v
			}
			return int32(v)
		}
	default:
		return t.NativeZero()
	}
}

func negateNative(v any) any {
	switch x := v.(type) {
	case int32:
		return -x
	case int64:
		return -x
	case float32:
		return -x
	case float64:
		return -x
	default:
		return v
	}
}
