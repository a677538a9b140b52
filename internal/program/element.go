// Package program holds the resolved program model the design's "out of
// scope" resolver collaborator would produce: element tables, signatures,
// and class layouts. The compiler core only ever reads these structures.
package program

import (
	"github.com/sunholo/wasmc/internal/ast"
	"github.com/sunholo/wasmc/internal/flow"
	"github.com/sunholo/wasmc/internal/typesys"
)

// Flags is the common flag set every Element carries, matching the design's
// Element flags (EXPORT, STATIC, CONST, ...). Decorator flags (BUILTIN,
// INLINE, EXTERNAL) are tracked separately below.
type Flags uint32

const (
	Export Flags = 1 << iota
	Static
	Const
	Readonly
	Private
	Instance
	Generic
	Ambient
	Constructor
	Main
	Inlined
	Compiled
	ModuleImport
	Trampoline
	UncheckedContext
	Allocates
)

func (f Flags) Has(x Flags) bool { return f&x != 0 }
func (f *Flags) Set(x Flags)     { *f |= x }
func (f *Flags) Clear(x Flags)   { *f &^= x }

// DecoratorFlags models @builtin/@inline/@external.
type DecoratorFlags uint32

const (
	DecoratorBuiltin DecoratorFlags = 1 << iota
	DecoratorInline
	DecoratorExternal
)

// Kind tags the Element variant.
type Kind int

const (
	KindGlobal Kind = iota
	KindLocal
	KindField
	KindFunction
	KindFunctionPrototype
	KindClass
	KindClassPrototype
	KindEnum
	KindEnumValue
	KindProperty
	KindNamespace
)

// Element is the common header every resolved entity embeds, matching the
// design's description of Element as a tagged variant with common flags.
type Element struct {
	Kind       Kind
	Name       string // simple name
	Qualified  string // fully-qualified internal name, e.g. "Foo#bar" or "ns.Foo"
	Parent     *Namespace
	Flags      Flags
	Decorators DecoratorFlags
	ExternalModule, ExternalName string // only set when Decorators has DecoratorExternal
	Range      ast.Range
}

// Global is a module-level (or static class) variable.
type Global struct {
	Element
	Type Type
	// ConstValue is set when the initializer precomputes to a constant,
	// enabling the INLINED treatment described in the design's C6.
	ConstValue   any
	ConstIsSet   bool
	Initializer  ast.Expr
}

// Type aliases typesys.Type to keep program's public surface short.
type Type = typesys.Type

// Local is a function-scoped variable (including parameters).
type Local struct {
	Element
	Type  Type
	Index int
}

// Field is an instance field of a Class.
type Field struct {
	Element
	Type         Type
	Offset       int32 // byte offset within the instance, precomputed by layout
	Initializer  ast.Expr
	CtorParamIdx int // >=0 if this field is populated from a constructor(public x) parameter
}

// Signature is a resolved function signature.
type Signature struct {
	ThisType       *Type // nil if no `this`
	ParameterTypes []Type
	ParameterNames []string
	Defaults       []ast.Expr // parallel to ParameterTypes; nil entries mean required
	RequiredCount  int
	ReturnType     Type
	HasRest        bool
}

func (s *Signature) HasThis() bool { return s.ThisType != nil }

// MaxOperands returns the total parameter count, excluding `this`.
func (s *Signature) MaxOperands() int { return len(s.ParameterTypes) }

// OperatorKind tags which overloadable operator a method implements.
type OperatorKind int

const (
	OpNone OperatorKind = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem
	OpPow
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpBitwiseAnd
	OpBitwiseOr
	OpBitwiseXor
	OpBitwiseNot
	OpShl
	OpShr
	OpShrU
	OpPlus
	OpMinus
	OpNot
	OpPrefixInc
	OpPrefixDec
	OpIndexedGet
	OpIndexedSet
)

// FunctionPrototype is the unresolved, possibly-generic declaration a
// Function is instantiated from.
type FunctionPrototype struct {
	Element
	Decl        *ast.FunctionDecl
	OwningClass *Class // nil for free functions
	Operator    OperatorKind
	TypeParams  []string
}

// Function is a resolved instance of a FunctionPrototype: one per distinct
// type-argument combination, matching the design's data model.
type Function struct {
	Element
	Prototype     *FunctionPrototype
	Sig           Signature
	TypeArgs      map[string]Type
	Locals        []Local // additional locals beyond parameters, appended during compilation
	Flow          *flow.Flow
	Trampoline    *Function // nil unless this function itself IS a trampoline's original
	TableIndex    int32     // -1 = not indexed
	NextInlineID  int
	Body          ast.Stmt // resolved body statement (nil for ambient)
}

func NewFunction(proto *FunctionPrototype, sig Signature) *Function {
	return &Function{
		Element:    proto.Element,
		Prototype:  proto,
		Sig:        sig,
		TypeArgs:   map[string]Type{},
		TableIndex: -1,
	}
}

// ClassPrototype is the unresolved, possibly-generic class declaration.
type ClassPrototype struct {
	Element
	Decl       *ast.ClassDecl
	TypeParams []string
}

// Class is a resolved instance of a ClassPrototype.
type Class struct {
	Element
	Prototype  *ClassPrototype
	Base       *Class // nil if none
	Fields     []*Field
	Methods    []*Function
	Properties []*Property
	Ctor       *Function // nil if implicit (default allocate-only constructor)
	InstanceSize int32   // total byte size of an instance, including GC header
	GCHookIndex  int32   // set by builtins.EnsureGCHook, -1 until then
}

// Property is a getter/setter pair.
type Property struct {
	Element
	Type   Type
	Getter *Function
	Setter *Function // nil if read-only
}

// Enum is a resolved enum declaration; each member is also registered as an
// EnumValue element for identifier lookup.
type Enum struct {
	Element
	IsConst bool
	Members []*EnumValue
}

// EnumValue is one member of an Enum; always i32-typed.
type EnumValue struct {
	Element
	Owner      *Enum
	Value      int32
	ValueIsSet bool
	Initializer ast.Expr
}

// Namespace groups declarations (including the implicit top-level namespace
// of a source file).
type Namespace struct {
	Element
	Members map[string]Entity
}

// Entity is implemented by every concrete resolved element (*Global, *Local,
// *Field, *Function, *FunctionPrototype, *Class, *ClassPrototype, *Enum,
// *EnumValue, *Property, *Namespace), giving Namespace lookups and
// diagnostics a uniform handle without a closed sum type.
type Entity interface {
	Header() *Element
}

func (g *Global) Header() *Element            { return &g.Element }
func (l *Local) Header() *Element             { return &l.Element }
func (f *Field) Header() *Element             { return &f.Element }
func (f *Function) Header() *Element          { return &f.Element }
func (p *FunctionPrototype) Header() *Element { return &p.Element }
func (c *Class) Header() *Element             { return &c.Element }
func (p *ClassPrototype) Header() *Element    { return &p.Element }
func (e *Enum) Header() *Element              { return &e.Element }
func (e *EnumValue) Header() *Element         { return &e.Element }
func (p *Property) Header() *Element          { return &p.Element }
func (n *Namespace) Header() *Element         { return &n.Element }
