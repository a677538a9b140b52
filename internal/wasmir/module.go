package wasmir

import "strings"

// FuncSig is the IR-level function type: a list of parameter native types
// and a single result native type (None = no result).
type FuncSig struct {
	Params []NativeType
	Result NativeType
}

// key returns the deduplication key used by the function-type pool, the
// string form of "(params) -> result".
func (s FuncSig) key() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, p := range s.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.String())
	}
	b.WriteString(")->")
	b.WriteString(s.Result.String())
	return b.String()
}

func (n NativeType) String() string {
	switch n {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	default:
		return "none"
	}
}

// Local describes one additional local slot beyond a function's parameters.
type Local struct {
	Type    NativeType
	Name    string // for debug only
}

// Function is one function definition in the module.
type Function struct {
	Name       string
	Sig        FuncSig
	Locals     []Local // additional locals beyond parameters
	Body       *Expr
	Exported   string // export name, "" if not exported
}

// Import is one imported function.
type Import struct {
	Module string
	Name   string
	Sig    FuncSig
	LocalName string // the name the rest of the module calls it by
}

// Global is one module-level global.
type Global struct {
	Name     string
	Type     NativeType
	Mutable  bool
	Init     *Expr // must be a constant expression
	Exported string // "" if not exported
	Imported bool
}

// MemorySegment is one static data segment.
type MemorySegment struct {
	Offset int32
	Bytes  []byte
}

// MemoryConfig describes how memory is surfaced: as an export, an import, or
// neither.
type MemoryConfig struct {
	InitialPages int32
	MaximumPages int32
	Imported     bool
	ImportModule string
	Exported     string // "" if not exported
}

// TableConfig describes the function table, if indirect calls are used.
type TableConfig struct {
	Size         int32
	Imported     bool
	ImportModule string
	Exported     string
	Entries      []string // function names, by table index
}

// FieldAccessorExport models a synthesised field accessor export: a
// tiny function reading or writing a fixed memory offset off `this`.
type FieldAccessorExport struct {
	Name   string
	Getter bool
	Offset int32
	Type   NativeType
}

// Module accumulates everything the driver (C5) and declaration/statement/
// expression lowering produce over one compilation.
type Module struct {
	sigPool   map[string]int
	Sigs      []FuncSig

	Imports   []Import
	Functions []Function

	Globals []Global

	Segments []MemorySegment
	Memory   MemoryConfig
	Table    TableConfig

	StartFunction string // "" if none
}

// NewModule returns an empty module ready for population.
func NewModule() *Module {
	return &Module{sigPool: map[string]int{}}
}

// EnsureSig interns sig into the function-type pool and returns its index.
func (m *Module) EnsureSig(sig FuncSig) int {
	k := sig.key()
	if i, ok := m.sigPool[k]; ok {
		return i
	}
	idx := len(m.Sigs)
	m.sigPool[k] = idx
	m.Sigs = append(m.Sigs, sig)
	return idx
}

// AddFunction appends a finished function definition.
func (m *Module) AddFunction(f Function) {
	m.EnsureSig(f.Sig)
	m.Functions = append(m.Functions, f)
}

// AddImport appends a function import as given; its LocalName is whatever
// the caller supplied.
func (m *Module) AddImport(imp Import) {
	m.EnsureSig(imp.Sig)
	m.Imports = append(m.Imports, imp)
}

// AddGlobal appends a module-level global.
func (m *Module) AddGlobal(g Global) { m.Globals = append(m.Globals, g) }

// FindGlobal returns the global named name, if any.
func (m *Module) FindGlobal(name string) (*Global, bool) {
	for i := range m.Globals {
		if m.Globals[i].Name == name {
			return &m.Globals[i], true
		}
	}
	return nil, false
}

// AddSegment appends a memory segment and returns nothing; callers
// (internal/layout) are responsible for offset bookkeeping.
func (m *Module) AddSegment(s MemorySegment) { m.Segments = append(m.Segments, s) }
