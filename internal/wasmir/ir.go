// Package wasmir is the IR builder ("module") the compiler core emits into.
// It plays the role the design calls an external collaborator: it knows
// nothing about source-level types, classes, or generics — only about
// WebAssembly instructions and module sections.
package wasmir

import "github.com/sunholo/wasmc/internal/ast"

// NativeType mirrors typesys.NativeType without importing it, keeping wasmir
// dependency-free of the type lattice (the IR builder is a leaf package).
type NativeType int

const (
	None NativeType = iota
	I32
	I64
	F32
	F64
)

// Op is the tag of an Expr node.
type Op int

const (
	OpConst Op = iota
	OpGetLocal
	OpSetLocal
	OpTeeLocal
	OpGetGlobal
	OpSetGlobal
	OpBinary
	OpUnary
	OpLoad
	OpStore
	OpCall
	OpCallImport
	OpCallIndirect
	OpBlock
	OpIf
	OpLoop
	OpBreak
	OpBreakIf
	OpSwitch
	OpDrop
	OpUnreachable
	OpNop
)

// BinaryOp enumerates the concrete WebAssembly binary instructions the
// compiler emits. Names follow the `<Op><Type>` convention of the IR builder
// this design describes (e.g. AddI32, DivU64, LtF64).
type BinaryOp int

const (
	AddI32 BinaryOp = iota
	SubI32
	MulI32
	DivI32S
	DivI32U
	RemI32S
	RemI32U
	AndI32
	OrI32
	XorI32
	ShlI32
	ShrI32S
	ShrI32U
	EqI32
	NeI32
	LtI32S
	LtI32U
	LeI32S
	LeI32U
	GtI32S
	GtI32U
	GeI32S
	GeI32U

	AddI64
	SubI64
	MulI64
	DivI64S
	DivI64U
	RemI64S
	RemI64U
	AndI64
	OrI64
	XorI64
	ShlI64
	ShrI64S
	ShrI64U
	EqI64
	NeI64
	LtI64S
	LtI64U
	LeI64S
	LeI64U
	GtI64S
	GtI64U
	GeI64S
	GeI64U

	AddF32
	SubF32
	MulF32
	DivF32
	EqF32
	NeF32
	LtF32
	LeF32
	GtF32
	GeF32

	AddF64
	SubF64
	MulF64
	DivF64
	EqF64
	NeF64
	LtF64
	LeF64
	GtF64
	GeF64
)

// UnaryOp enumerates the concrete unary/conversion instructions.
type UnaryOp int

const (
	EqzI32 UnaryOp = iota
	EqzI64
	NegF32
	NegF64

	WrapI64ToI32
	ExtendI32SToI64
	ExtendI32UToI64

	ExtendI8ToI32
	ExtendI16ToI32

	TruncF32ToI32S
	TruncF32ToI32U
	TruncF32ToI64S
	TruncF32ToI64U
	TruncF64ToI32S
	TruncF64ToI32U
	TruncF64ToI64S
	TruncF64ToI64U

	ConvertI32SToF32
	ConvertI32UToF32
	ConvertI64SToF32
	ConvertI64UToF32
	ConvertI32SToF64
	ConvertI32UToF64
	ConvertI64SToF64
	ConvertI64UToF64

	PromoteF32ToF64
	DemoteF64ToF32
)

// Expr is a single WebAssembly IR node. It is a plain struct rather than an
// interface hierarchy because the design treats the IR builder as producing
// opaque "ExprRef" handles the core never inspects beyond NativeType.
type Expr struct {
	Op   Op
	Type NativeType

	// OpConst
	ConstValue any

	// OpGetLocal / OpSetLocal / OpTeeLocal
	LocalIndex int
	Value      *Expr // set/tee value

	// OpGetGlobal / OpSetGlobal
	GlobalName string

	// OpBinary / OpUnary
	BinOp BinaryOp
	UnOp  UnaryOp
	Left  *Expr
	Right *Expr
	Operand *Expr

	// OpLoad / OpStore
	Offset     int32
	Ptr        *Expr
	StoreValue *Expr

	// OpCall / OpCallImport
	CalleeName string

	// OpCallIndirect
	TableIndex *Expr
	TypeKey    string

	Operands []*Expr

	// OpBlock / OpLoop
	Label      string
	Statements []*Expr

	// OpIf
	Cond *Expr
	Then *Expr
	Else *Expr

	// OpBreak / OpBreakIf
	TargetLabel string
	BreakValue  *Expr // OpBreakIf condition lives here for OpBreakIf

	// OpSwitch
	SwitchValue    *Expr
	SwitchLabels   []string
	DefaultLabel   string

	// Debug
	Range *ast.Range
}

func Const(t NativeType, v any) *Expr { return &Expr{Op: OpConst, Type: t, ConstValue: v} }

func GetLocal(idx int, t NativeType) *Expr {
	return &Expr{Op: OpGetLocal, Type: t, LocalIndex: idx}
}

func SetLocal(idx int, value *Expr) *Expr {
	return &Expr{Op: OpSetLocal, Type: None, LocalIndex: idx, Value: value}
}

func TeeLocal(idx int, value *Expr) *Expr {
	return &Expr{Op: OpTeeLocal, Type: value.Type, LocalIndex: idx, Value: value}
}

func GetGlobal(name string, t NativeType) *Expr {
	return &Expr{Op: OpGetGlobal, Type: t, GlobalName: name}
}

func SetGlobal(name string, value *Expr) *Expr {
	return &Expr{Op: OpSetGlobal, Type: None, GlobalName: name, Value: value}
}

func Binary(op BinaryOp, t NativeType, left, right *Expr) *Expr {
	return &Expr{Op: OpBinary, Type: t, BinOp: op, Left: left, Right: right}
}

func Unary(op UnaryOp, t NativeType, operand *Expr) *Expr {
	return &Expr{Op: OpUnary, Type: t, UnOp: op, Operand: operand}
}

func Load(t NativeType, offset int32, ptr *Expr) *Expr {
	return &Expr{Op: OpLoad, Type: t, Offset: offset, Ptr: ptr}
}

func Store(offset int32, ptr, value *Expr) *Expr {
	return &Expr{Op: OpStore, Type: None, Offset: offset, Ptr: ptr, StoreValue: value}
}

func Call(name string, t NativeType, operands ...*Expr) *Expr {
	return &Expr{Op: OpCall, Type: t, CalleeName: name, Operands: operands}
}

func CallImport(name string, t NativeType, operands ...*Expr) *Expr {
	return &Expr{Op: OpCallImport, Type: t, CalleeName: name, Operands: operands}
}

func CallIndirect(typeKey string, t NativeType, index *Expr, operands ...*Expr) *Expr {
	return &Expr{Op: OpCallIndirect, Type: t, TypeKey: typeKey, TableIndex: index, Operands: operands}
}

func Block(label string, t NativeType, stmts ...*Expr) *Expr {
	return &Expr{Op: OpBlock, Type: t, Label: label, Statements: stmts}
}

func Loop(label string, t NativeType, stmts ...*Expr) *Expr {
	return &Expr{Op: OpLoop, Type: t, Label: label, Statements: stmts}
}

func If(t NativeType, cond, then, els *Expr) *Expr {
	return &Expr{Op: OpIf, Type: t, Cond: cond, Then: then, Else: els}
}

func Break(label string) *Expr { return &Expr{Op: OpBreak, Type: None, TargetLabel: label} }

func BreakIf(label string, cond *Expr) *Expr {
	return &Expr{Op: OpBreakIf, Type: None, TargetLabel: label, BreakValue: cond}
}

func Switch(value *Expr, labels []string, defaultLabel string) *Expr {
	return &Expr{Op: OpSwitch, Type: None, SwitchValue: value, SwitchLabels: labels, DefaultLabel: defaultLabel}
}

func Drop(x *Expr) *Expr { return &Expr{Op: OpDrop, Type: None, Operand: x} }

func Unreachable() *Expr { return &Expr{Op: OpUnreachable, Type: None} }

func Nop() *Expr { return &Expr{Op: OpNop, Type: None} }
