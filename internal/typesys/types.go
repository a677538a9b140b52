// Package typesys implements the numeric type lattice described in the
// design's component C1: primitive kinds, their native WebAssembly
// representation, and the common-type and conversion rules every expression
// lowering consults.
package typesys

// Kind is the tag of a Type.
type Kind int

const (
	I8 Kind = iota
	U8
	I16
	U16
	I32
	U32
	I64
	U64
	Isize
	Usize
	F32
	F64
	Bool
	Void
	Reference // carries a class name
)

// NativeType is the IR-level representation backing a source Type.
type NativeType int

const (
	NativeNone NativeType = iota
	NativeI32
	NativeI64
	NativeF32
	NativeF64
)

func (n NativeType) String() string {
	switch n {
	case NativeI32:
		return "i32"
	case NativeI64:
		return "i64"
	case NativeF32:
		return "f32"
	case NativeF64:
		return "f64"
	default:
		return "none"
	}
}

// Target selects the pointer width for isize/usize/pointer-backed types.
type Target int

const (
	Wasm32 Target = iota
	Wasm64
)

// Type is a tagged variant over the primitive numeric kinds plus class
// references. Instances for non-reference kinds are interned singletons
// returned by the package-level constructors below; reference instances
// are constructed per class name.
type Type struct {
	Kind      Kind
	ClassName string // only meaningful when Kind == Reference
	Nullable  bool
}

// --- flags ---

// Signed reports whether the type is a signed integer kind.
func (t Type) Signed() bool {
	switch t.Kind {
	case I8, I16, I32, I64, Isize:
		return true
	default:
		return false
	}
}

// Integer reports whether the type is any integer kind (including bool,
// which occupies an i32 native slot and wraps like a short integer).
func (t Type) Integer() bool {
	switch t.Kind {
	case I8, U8, I16, U16, I32, U32, I64, U64, Isize, Usize, Bool:
		return true
	default:
		return false
	}
}

// Float reports whether the type is f32 or f64.
func (t Type) Float() bool { return t.Kind == F32 || t.Kind == F64 }

// Long reports whether the type occupies a 64-bit native slot.
func (t Type) Long() bool { return t.Kind == I64 || t.Kind == U64 }

// Short reports whether the type is narrower than 32 bits (plus bool): these
// values live in a 32-bit IR slot and require explicit wrapping whenever
// their observable width matters.
func (t Type) Short() bool {
	switch t.Kind {
	case I8, U8, I16, U16, Bool:
		return true
	default:
		return false
	}
}

// IsReference reports whether the type is a class reference.
func (t Type) IsReference() bool { return t.Kind == Reference }

// Size returns the byte size of the type for the given target (only isize
// and usize, and reference pointers, are target-dependent).
func (t Type) Size(target Target) int {
	switch t.Kind {
	case I8, U8, Bool:
		return 1
	case I16, U16:
		return 2
	case I32, U32, F32:
		return 4
	case I64, U64, F64:
		return 8
	case Isize, Usize, Reference:
		if target == Wasm64 {
			return 8
		}
		return 4
	default:
		return 0
	}
}

// Native returns the IR-level native type backing this Type.
func (t Type) Native(target Target) NativeType {
	switch t.Kind {
	case I8, U8, I16, U16, I32, U32, Bool:
		return NativeI32
	case I64, U64:
		return NativeI64
	case Isize, Usize, Reference:
		if target == Wasm64 {
			return NativeI64
		}
		return NativeI32
	case F32:
		return NativeF32
	case F64:
		return NativeF64
	case Void:
		return NativeNone
	default:
		return NativeNone
	}
}

// NativeZero returns the type's zero value spelled in its native representation.
func (t Type) NativeZero() any {
	switch t.Native(Wasm32) {
	case NativeI32:
		return int32(0)
	case NativeI64:
		return int64(0)
	case NativeF32:
		return float32(0)
	case NativeF64:
		return float64(0)
	default:
		return nil
	}
}

// NativeOne returns the type's native "one" value, used by prefix/postfix
// increment/decrement lowering.
func (t Type) NativeOne() any {
	switch t.Native(Wasm32) {
	case NativeI32:
		return int32(1)
	case NativeI64:
		return int64(1)
	case NativeF32:
		return float32(1)
	case NativeF64:
		return float64(1)
	default:
		return nil
	}
}

// IntegerCompanion returns the signed/unsigned integer type of the same
// native width, used for bitwise operations on floats (reinterpret through
// an integer of matching size).
func (t Type) IntegerCompanion(signed bool) Type {
	switch t.Native(Wasm32) {
	case NativeI64:
		if signed {
			return Type{Kind: I64}
		}
		return Type{Kind: U64}
	default:
		if signed {
			return Type{Kind: I32}
		}
		return Type{Kind: U32}
	}
}

// String renders the type the way source declarations spell it.
func (t Type) String() string {
	name := map[Kind]string{
		I8: "i8", U8: "u8", I16: "i16", U16: "u16", I32: "i32", U32: "u32",
		I64: "i64", U64: "u64", Isize: "isize", Usize: "usize",
		F32: "f32", F64: "f64", Bool: "bool", Void: "void",
	}[t.Kind]
	if t.Kind == Reference {
		name = t.ClassName
	}
	if t.Nullable {
		name += " | null"
	}
	return name
}

// Equals compares two types structurally, ignoring nullability (callers that
// care about nullability compare it separately since it does not affect
// native representation or arithmetic compatibility).
func (t Type) Equals(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	if t.Kind == Reference {
		return t.ClassName == o.ClassName
	}
	return true
}

// AssignableTo reports whether a value of type t may be used where o is
// expected without an explicit conversion. Widening float conversions and
// widening integer conversions between kinds of the same signedness are
// implicit; everything else (including float<->int, narrowing, conversions
// to bool and signed<->unsigned) requires an explicit conversion.
func (t Type) AssignableTo(o Type) bool {
	if t.Equals(o) {
		return true
	}
	if t.Kind == Void || o.Kind == Void {
		return false
	}
	if t.IsReference() || o.IsReference() {
		return false // class hierarchies beyond direct base are out of scope
	}
	if t.Integer() && o.Integer() && !t.Long() && o.rank() >= t.rank() && t.Signed() == o.Signed() {
		return true
	}
	if t.Float() && o.Float() && o.rank() >= t.rank() {
		return true
	}
	return false
}

// rank orders integer kinds by native width for the widening check above.
func (t Type) rank() int {
	switch t.Kind {
	case I8, U8, Bool:
		return 1
	case I16, U16:
		return 2
	case I32, U32, Isize, Usize:
		return 3
	case I64, U64:
		return 4
	case F32:
		return 1
	case F64:
		return 2
	default:
		return 0
	}
}

// Constructors for the primitive singletons.
func MakeI8() Type    { return Type{Kind: I8} }
func MakeU8() Type    { return Type{Kind: U8} }
func MakeI16() Type   { return Type{Kind: I16} }
func MakeU16() Type   { return Type{Kind: U16} }
func MakeI32() Type   { return Type{Kind: I32} }
func MakeU32() Type   { return Type{Kind: U32} }
func MakeI64() Type   { return Type{Kind: I64} }
func MakeU64() Type   { return Type{Kind: U64} }
func MakeIsize() Type { return Type{Kind: Isize} }
func MakeUsize() Type { return Type{Kind: Usize} }
func MakeF32() Type   { return Type{Kind: F32} }
func MakeF64() Type   { return Type{Kind: F64} }
func MakeBool() Type  { return Type{Kind: Bool} }
func MakeVoid() Type  { return Type{Kind: Void} }

// MakeReference returns the (possibly nullable) reference type to class.
func MakeReference(class string, nullable bool) Type {
	return Type{Kind: Reference, ClassName: class, Nullable: nullable}
}
