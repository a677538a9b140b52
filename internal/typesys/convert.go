package typesys

import "github.com/sunholo/wasmc/internal/wasmir"

// ConversionKind distinguishes an implicit conversion (inserted by the
// compiler to satisfy a contextual type, which must report a diagnostic if
// unsafe) from an explicit one (`as` cast, which is always permitted between
// compatible native representations).
type ConversionKind int

const (
	Implicit ConversionKind = iota
	Explicit
)

// Diagnostics is the minimal surface convert.go needs from the diagnostics
// bag; kept as an interface here so typesys never imports the ast package's
// Range-carrying diagnostics.Bag directly (avoiding an import cycle is not
// strictly required, but keeping the type lattice a leaf package matches how
// the design separates components).
type Diagnostics interface {
	NotAssignable(from, to string)
	VoidToAny()
}

// nativeOf maps a Kind's bit width to the wasmir native type, used only
// inside this file to pick conversion op families.
func nativeOf(t Type) wasmir.NativeType {
	switch t.Native(Wasm32) {
	case NativeI32:
		return wasmir.I32
	case NativeI64:
		return wasmir.I64
	case NativeF32:
		return wasmir.F32
	case NativeF64:
		return wasmir.F64
	default:
		return wasmir.None
	}
}

// CommonCompatible returns the smallest type both a and b are assignable to,
// mirroring the design's C1 "common compatibility" rule used by every binary
// operator to pick the arithmetic type. When signednessIsSignificant is true
// (relational operators), a signed and an unsigned integer of the same width
// are reported incompatible rather than silently picking one.
func CommonCompatible(a, b Type, signednessIsSignificant bool) (Type, bool) {
	if a.Equals(b) {
		return a, true
	}
	if a.IsReference() || b.IsReference() {
		return Type{}, false
	}
	if a.Kind == Void || b.Kind == Void {
		return Type{}, false
	}

	// Float family: widen to the larger float.
	if a.Float() || b.Float() {
		if a.Float() && b.Float() {
			if a.rank() >= b.rank() {
				return a, true
			}
			return b, true
		}
		// float vs integer never unify implicitly without an explicit cast.
		return Type{}, false
	}

	if signednessIsSignificant && a.Signed() != b.Signed() && a.rank() == b.rank() {
		return Type{}, false
	}

	// Pick the wider integer kind; prefer the signed flavour of the winner
	// unless both are unsigned.
	wide, narrow := a, b
	if b.rank() > a.rank() {
		wide, narrow = b, a
	}
	if wide.AssignableTo(narrow) || narrow.AssignableTo(wide) {
		if wide.Signed() != narrow.Signed() && wide.rank() == narrow.rank() {
			return Type{}, false
		}
		return wide, true
	}
	return Type{}, false
}

// Convert lowers expr (already compiled, carrying native type `from`) to an
// expression of native type `to`, per the design's C1 conversion rules. wrap
// requests a trailing EnsureSmallIntegerWrapWithFeatures when the destination is a short
// integer kind, honouring features.SignExtension per the design's ensure-wrap
// contract. diags may be nil, in which case implicit-conversion errors are
// silently skipped (used by callers that already validated assignability).
func Convert(expr *wasmir.Expr, from, to Type, kind ConversionKind, wrap bool, features Features, diags Diagnostics) *wasmir.Expr {
	if from.Kind == Void && to.Kind == Void {
		// programming error per the design; callers must not reach this.
		return expr
	}
	if from.Kind != Void && to.Kind == Void {
		return wasmir.Drop(expr)
	}
	if from.Kind == Void && to.Kind != Void {
		if diags != nil {
			diags.VoidToAny()
		}
		return wasmir.Unreachable()
	}

	if kind == Implicit && !from.AssignableTo(to) && !from.Equals(to) {
		if diags != nil {
			diags.NotAssignable(from.String(), to.String())
		}
	}

	if from.Equals(to) {
		return expr
	}

	out := convertNative(expr, from, to, features)
	if wrap && to.Short() {
		out = EnsureSmallIntegerWrapWithFeatures(out, to, features)
	}
	return out
}

func convertNative(expr *wasmir.Expr, from, to Type, features Features) *wasmir.Expr {
	ton := nativeOf(to)

	switch {
	case from.Float() && to.Float():
		if from.Kind == F64 && to.Kind == F32 {
			return wasmir.Unary(wasmir.DemoteF64ToF32, wasmir.F32, expr)
		}
		if from.Kind == F32 && to.Kind == F64 {
			return wasmir.Unary(wasmir.PromoteF32ToF64, wasmir.F64, expr)
		}
		return expr

	case from.Float() && to.Integer():
		return truncFloatToInt(expr, from, to)

	case from.Integer() && to.Float():
		return convertIntToFloat(expr, from, to)

	case from.Integer() && to.Integer():
		return convertIntToInt(expr, from, to, ton, features)
	}
	return expr
}

func truncFloatToInt(expr *wasmir.Expr, from, to Type) *wasmir.Expr {
	long := to.Long()
	signed := to.Signed()
	var op wasmir.UnaryOp
	var rt wasmir.NativeType
	switch {
	case from.Kind == F32 && !long && signed:
		op, rt = wasmir.TruncF32ToI32S, wasmir.I32
	case from.Kind == F32 && !long && !signed:
		op, rt = wasmir.TruncF32ToI32U, wasmir.I32
	case from.Kind == F32 && long && signed:
		op, rt = wasmir.TruncF32ToI64S, wasmir.I64
	case from.Kind == F32 && long && !signed:
		op, rt = wasmir.TruncF32ToI64U, wasmir.I64
	case from.Kind == F64 && !long && signed:
		op, rt = wasmir.TruncF64ToI32S, wasmir.I32
	case from.Kind == F64 && !long && !signed:
		op, rt = wasmir.TruncF64ToI32U, wasmir.I32
	case from.Kind == F64 && long && signed:
		op, rt = wasmir.TruncF64ToI64S, wasmir.I64
	default:
		op, rt = wasmir.TruncF64ToI64U, wasmir.I64
	}
	return wasmir.Unary(op, rt, expr)
}

func convertIntToFloat(expr *wasmir.Expr, from, to Type) *wasmir.Expr {
	long := from.Long()
	signed := from.Signed()
	dstF32 := to.Kind == F32
	var op wasmir.UnaryOp
	switch {
	case !long && signed && dstF32:
		op = wasmir.ConvertI32SToF32
	case !long && !signed && dstF32:
		op = wasmir.ConvertI32UToF32
	case long && signed && dstF32:
		op = wasmir.ConvertI64SToF32
	case long && !signed && dstF32:
		op = wasmir.ConvertI64UToF32
	case !long && signed && !dstF32:
		op = wasmir.ConvertI32SToF64
	case !long && !signed && !dstF32:
		op = wasmir.ConvertI32UToF64
	case long && signed && !dstF32:
		op = wasmir.ConvertI64SToF64
	default:
		op = wasmir.ConvertI64UToF64
	}
	if dstF32 {
		return wasmir.Unary(op, wasmir.F32, expr)
	}
	return wasmir.Unary(op, wasmir.F64, expr)
}

func convertIntToInt(expr *wasmir.Expr, from, to Type, ton wasmir.NativeType, features Features) *wasmir.Expr {
	switch {
	case from.Long() && !to.Long():
		// 64 -> 32: wrap, then re-wrap narrower-to-wider small integers so
		// garbage bits above the logical width are cleared before any
		// subsequent widening use.
		w := wasmir.Unary(wasmir.WrapI64ToI32, wasmir.I32, expr)
		if to.Short() {
			w = EnsureSmallIntegerWrapWithFeatures(w, to, features)
		}
		return w

	case !from.Long() && to.Long():
		if from.Signed() {
			return wasmir.Unary(wasmir.ExtendI32SToI64, wasmir.I64, expr)
		}
		return wasmir.Unary(wasmir.ExtendI32UToI64, wasmir.I64, expr)

	default:
		// 32 (or narrower-in-32-slot) -> 32: only the logical width changes.
		if to.Short() {
			return EnsureSmallIntegerWrapWithFeatures(expr, to, features)
		}
		return expr
	}
}

// Features is the subset of compiler options convert.go needs to pick between
// sign-extension instructions and shift-pair emulation.
type Features struct {
	SignExtension bool
}

// EnsureSmallIntegerWrapWithFeatures clears the garbage bits of a logical
// 8/16/1-bit value living in a 32-bit native slot, per the design's C1.
// Callers that already know (via Flow.CanOverflow) that the value is wrapped
// should skip calling this at all; this function itself performs no such
// check. It is feature-aware: the compiler core threads its Options.Features
// through so SIGN_EXTENSION toggles between the dedicated extend op and the
// shift-pair emulation.
// compiler core, which threads its Options.Features through.
func EnsureSmallIntegerWrapWithFeatures(expr *wasmir.Expr, t Type, f Features) *wasmir.Expr {
	return ensureSmallIntegerWrap(expr, t, f)
}

func ensureSmallIntegerWrap(expr *wasmir.Expr, t Type, f Features) *wasmir.Expr {
	switch t.Kind {
	case I8:
		if f.SignExtension {
			return wasmir.Unary(wasmir.ExtendI8ToI32, wasmir.I32, expr)
		}
		return shiftWrap(expr, 24)
	case I16:
		if f.SignExtension {
			return wasmir.Unary(wasmir.ExtendI16ToI32, wasmir.I32, expr)
		}
		return shiftWrap(expr, 16)
	case U8:
		return maskWrap(expr, 0xff)
	case U16:
		return maskWrap(expr, 0xffff)
	case Bool:
		return maskWrap(expr, 1)
	default:
		return expr
	}
}

func shiftWrap(expr *wasmir.Expr, bits int32) *wasmir.Expr {
	shl := wasmir.Binary(wasmir.ShlI32, wasmir.I32, expr, wasmir.Const(wasmir.I32, bits))
	return wasmir.Binary(wasmir.ShrI32S, wasmir.I32, shl, wasmir.Const(wasmir.I32, bits))
}

func maskWrap(expr *wasmir.Expr, mask int32) *wasmir.Expr {
	return wasmir.Binary(wasmir.AndI32, wasmir.I32, expr, wasmir.Const(wasmir.I32, mask))
}

// MakeIsTrueish lowers expr of type t to an i32 boolean testing truthiness,
// per the design's C1 truthiness table: short ints require a wrap first, 32
// bit ints pass through as implicit booleans (EqzI32 for the falseish
// variant), 64 bit compares against zero, floats compare against 0.0.
func MakeIsTrueish(expr *wasmir.Expr, t Type, f Features) *wasmir.Expr {
	switch {
	case t.Short():
		return ensureSmallIntegerWrap(expr, t, f)
	case t.Kind == I32 || t.Kind == U32 || t.Kind == Isize || t.Kind == Usize:
		return expr
	case t.Long():
		return wasmir.Binary(wasmir.NeI64, wasmir.I32, expr, wasmir.Const(wasmir.I64, int64(0)))
	case t.Kind == F32:
		return wasmir.Binary(wasmir.NeF32, wasmir.I32, expr, wasmir.Const(wasmir.F32, float32(0)))
	case t.Kind == F64:
		return wasmir.Binary(wasmir.NeF64, wasmir.I32, expr, wasmir.Const(wasmir.F64, float64(0)))
	case t.IsReference():
		return wasmir.Binary(wasmir.NeI32, wasmir.I32, expr, wasmir.Const(wasmir.I32, int32(0)))
	default:
		return expr
	}
}

// MakeIsFalseish is the complement of MakeIsTrueish.
func MakeIsFalseish(expr *wasmir.Expr, t Type, f Features) *wasmir.Expr {
	switch {
	case t.Short():
		return wasmir.Unary(wasmir.EqzI32, wasmir.I32, ensureSmallIntegerWrap(expr, t, f))
	case t.Kind == I32 || t.Kind == U32:
		return wasmir.Unary(wasmir.EqzI32, wasmir.I32, expr)
	case t.Long():
		return wasmir.Unary(wasmir.EqzI64, wasmir.I32, expr)
	case t.Kind == F32:
		return wasmir.Binary(wasmir.EqF32, wasmir.I32, expr, wasmir.Const(wasmir.F32, float32(0)))
	case t.Kind == F64:
		return wasmir.Binary(wasmir.EqF64, wasmir.I32, expr, wasmir.Const(wasmir.F64, float64(0)))
	case t.IsReference():
		return wasmir.Unary(wasmir.EqzI32, wasmir.I32, expr)
	default:
		return wasmir.Unary(wasmir.EqzI32, wasmir.I32, expr)
	}
}
