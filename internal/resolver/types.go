package resolver

import (
	"strconv"

	"github.com/sunholo/wasmc/internal/ast"
	"github.com/sunholo/wasmc/internal/typesys"
)

// primitiveTypeNames mirrors internal/compiler/types.go's table; the
// resolver needs its own copy since it must not import internal/compiler
// (which imports internal/program, which resolver also depends on — the
// compiler core depends on resolver's output, never the reverse).
var primitiveTypeNames = map[string]typesys.Type{
	"i8": typesys.MakeI8(), "u8": typesys.MakeU8(),
	"i16": typesys.MakeI16(), "u16": typesys.MakeU16(),
	"i32": typesys.MakeI32(), "u32": typesys.MakeU32(),
	"i64": typesys.MakeI64(), "u64": typesys.MakeU64(),
	"isize": typesys.MakeIsize(), "usize": typesys.MakeUsize(),
	"f32": typesys.MakeF32(), "f64": typesys.MakeF64(),
	"bool": typesys.MakeBool(), "void": typesys.MakeVoid(),
}

// resolveTypeNode converts a parsed TypeNode into a typesys.Type. subst maps
// a generic prototype's type-parameter names to the concrete types supplied
// at one monomorphisation; it is nil when resolving a non-generic
// declaration. Unknown names are treated as class references, matching
// internal/compiler's own resolveType and the design's statement that the
// resolver is responsible for having validated the class exists.
func (r *resolver) resolveTypeNode(tn ast.TypeNode, subst map[string]typesys.Type) typesys.Type {
	if subst != nil {
		if t, ok := subst[tn.Name]; ok {
			t.Nullable = tn.Nullable
			return t
		}
	}
	if t, ok := primitiveTypeNames[tn.Name]; ok {
		t.Nullable = tn.Nullable
		return t
	}
	if len(tn.TypeArgs) > 0 {
		typeArgs := make([]typesys.Type, len(tn.TypeArgs))
		for i, a := range tn.TypeArgs {
			typeArgs[i] = r.resolveTypeNode(a, subst)
		}
		if proto, ok := r.classProtos[tn.Name]; ok {
			cls := r.instantiateClass(proto, typeArgs)
			return typesys.MakeReference(cls.Qualified, tn.Nullable)
		}
		// No user-declared prototype (the built-in Array<T> and similar):
		// compose the same "Name<arg, ...>" display name internal/compiler
		// builds by hand for these (see allocate.go's compileArrayLiteral),
		// so a field typed Array<i32> and an array literal's inferred type
		// name the same class reference.
		name := tn.Name + "<"
		for i, t := range typeArgs {
			if i > 0 {
				name += ", "
			}
			name += t.String()
		}
		name += ">"
		return typesys.MakeReference(name, tn.Nullable)
	}
	return typesys.MakeReference(tn.Name, tn.Nullable)
}

// inferGlobalType infers an untyped global's declared type from its
// initializer, restricted to the shapes the design calls out as literal
// inference (numeric/float/bool/string/null/class-reference literals);
// anything else defaults to i32, matching the compiler core's later
// conversion diagnostics catching any real mismatch.
func (r *resolver) inferGlobalType(e ast.Expr) typesys.Type {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		switch n.Kind {
		case ast.LitInteger:
			return typesys.MakeI32()
		case ast.LitFloat:
			return typesys.MakeF64()
		case ast.LitBool:
			return typesys.MakeBool()
		case ast.LitString:
			return typesys.MakeReference("String", false)
		case ast.LitNull:
			return typesys.MakeReference("Object", true)
		}
	case *ast.NewExpr:
		return typesys.MakeReference(n.ClassName, false)
	case *ast.ParenExpr:
		return r.inferGlobalType(n.X)
	case *ast.UnaryExpr:
		return r.inferGlobalType(n.X)
	}
	return typesys.MakeI32()
}

// foldGlobalConst const-folds a restricted set of initializer shapes to a Go
// value natively typed for t (int32/int64/float32/float64, matching
// typesys.Type.NativeZero's convention), suitable for wasmir.Const. Used for
// the design's rule that a global whose initializer precomputes to a
// constant may be inlined.
func foldGlobalConst(e ast.Expr, t typesys.Type) (any, bool) {
	switch n := e.(type) {
	case *ast.ParenExpr:
		return foldGlobalConst(n.X, t)
	case *ast.LiteralExpr:
		switch n.Kind {
		case ast.LitInteger:
			v, err := strconv.ParseInt(n.Text, 0, 64)
			if err != nil {
				return nil, false
			}
			return nativeInt(t, v), true
		case ast.LitFloat:
			v, err := strconv.ParseFloat(n.Text, 64)
			if err != nil {
				return nil, false
			}
			return nativeFloat(t, v), true
		case ast.LitBool:
			if n.Text == "true" {
				return nativeInt(t, 1), true
			}
			return nativeInt(t, 0), true
		}
		return nil, false
	case *ast.UnaryExpr:
		v, ok := foldGlobalConst(n.X, t)
		if !ok {
			return nil, false
		}
		switch x := v.(type) {
		case int32:
			switch n.Op {
			case ast.OpMinus:
				return -x, true
			case ast.OpPlus:
				return x, true
			case ast.OpBitNot:
				return ^x, true
			}
		case int64:
			switch n.Op {
			case ast.OpMinus:
				return -x, true
			case ast.OpPlus:
				return x, true
			case ast.OpBitNot:
				return ^x, true
			}
		case float32:
			switch n.Op {
			case ast.OpMinus:
				return -x, true
			case ast.OpPlus:
				return x, true
			}
		case float64:
			switch n.Op {
			case ast.OpMinus:
				return -x, true
			case ast.OpPlus:
				return x, true
			}
		}
		return nil, false
	default:
		return nil, false
	}
}

// foldGlobalConstSafe is foldGlobalConst guarded against a nil initializer
// (a global declared without one); such a global is reported as not
// foldable.
func foldGlobalConstSafe(e ast.Expr, t typesys.Type) (any, bool) {
	if e == nil {
		return nil, false
	}
	return foldGlobalConst(e, t)
}

func nativeInt(t typesys.Type, v int64) any {
	if t.Native(typesys.Wasm32) == typesys.NativeI64 {
		return v
	}
	return int32(v)
}

func nativeFloat(t typesys.Type, v float64) any {
	if t.Native(typesys.Wasm32) == typesys.NativeF32 {
		return float32(v)
	}
	return v
}
