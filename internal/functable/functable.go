// Package functable implements the function table and trampoline synthesis
// described in the design's component C4.
package functable

import (
	"fmt"

	"github.com/sunholo/wasmc/internal/wasmir"
)

// Entry is the minimal view of a compiled function the table needs: its
// mangled name, IR signature, and optional-parameter window. The compiler
// package's *program.Function satisfies this via a small adapter so that
// functable stays independent of the program model (a leaf package, like
// flow and layout).
type Entry struct {
	Name        string
	Sig         wasmir.FuncSig
	MinArgs     int // required parameter count (excluding `this`)
	MaxArgs     int // total parameter count (excluding `this`)
	HasThis     bool
	IsTrampoline bool
}

// Initializer supplies one optional parameter's default-value IR, compiled
// in the trampoline's own function scope (so it may introduce locals and
// reference `this`), per the design's C4.
type Initializer func(paramIndex int) *wasmir.Expr

// Table indexes indirect-call targets and synthesises trampolines for
// functions with optional parameters.
type Table struct {
	module  *wasmir.Module
	indices map[string]int32
	order   []string
}

// New returns an empty function table bound to m.
func New(m *wasmir.Module) *Table {
	return &Table{module: m, indices: map[string]int32{}}
}

// Index returns the table index previously assigned to name, or -1.
func (t *Table) Index(name string) int32 {
	if i, ok := t.indices[name]; ok {
		return i
	}
	return -1
}

// EnsureEntry appends e to the table (if not already present) and returns
// its index. Once assigned, subsequent calls for the same name return the
// same index, per the design's function-table-indexing invariant. If e has
// optional parameters and is not already a trampoline, the recorded table
// entry is a synthesised trampoline, not the original function: init builds
// the IR for e's optional-parameter initialisers and is only consulted the
// first time e needs a trampoline.
func (t *Table) EnsureEntry(e Entry, init Initializer) int32 {
	targetName := e.Name
	if e.MaxArgs > e.MinArgs && !e.IsTrampoline {
		trampolineName := e.Name + "|trampoline"
		if i, ok := t.indices[trampolineName]; ok {
			return i
		}
		t.buildTrampoline(e, init, trampolineName)
		targetName = trampolineName
	}

	if i, ok := t.indices[targetName]; ok {
		return i
	}
	idx := int32(len(t.order))
	t.indices[targetName] = idx
	t.order = append(t.order, targetName)
	t.module.Table.Entries = append(t.module.Table.Entries, targetName)
	t.module.Table.Size = int32(len(t.order))
	return idx
}

// argcGlobal is the lazily-created global carrying the caller-supplied
// argument count, consulted by every trampoline's outer switch.
const argcGlobal = "~argc"

// buildTrampoline synthesises the wrapper function described in the design's
// C4: a nest of labelled blocks, one per optional parameter, selected by a
// switch over (~argc - minArgs), falling through all initialisers below the
// selected count, terminating in a direct call to the original function.
func (t *Table) buildTrampoline(e Entry, init Initializer, trampolineName string) {
	EnsureArgcGlobal(t.module)

	numOptional := e.MaxArgs - e.MinArgs
	paramNative := make([]wasmir.NativeType, e.MaxArgs)
	copy(paramNative, e.Sig.Params)

	// Forwarded operands: the full operand list, one GetLocal per parameter
	// (locals 0..MaxArgs-1, offset by one if the function has `this`).
	localOffset := 0
	if e.HasThis {
		localOffset = 1
	}
	operands := make([]*wasmir.Expr, e.MaxArgs)
	for i := 0; i < e.MaxArgs; i++ {
		operands[i] = wasmir.GetLocal(localOffset+i, paramNative[i])
	}

	labels := make([]string, numOptional+1)
	for i := range labels {
		labels[i] = fmt.Sprintf("%s|outOfRange%d", trampolineName, i)
	}

	argcExpr := wasmir.Binary(wasmir.SubI32, wasmir.I32,
		wasmir.GetGlobal(argcGlobal, wasmir.I32),
		wasmir.Const(wasmir.I32, int32(e.MinArgs)))

	body := wasmir.Block(labels[0], wasmir.None,
		wasmir.Block("outOfRange", wasmir.None,
			wasmir.Switch(argcExpr, labels, "outOfRange"),
		),
		wasmir.Unreachable(),
	)

	for i := 0; i < numOptional; i++ {
		paramIdx := e.MinArgs + i
		setDefault := wasmir.SetLocal(localOffset+paramIdx, init(paramIdx))
		body = wasmir.Block(labels[i+1], wasmir.None, body, setDefault)
	}

	call := wasmir.Call(e.Name, e.Sig.Result, operands...)
	result := wasmir.Block(trampolineName, e.Sig.Result, body, call)

	t.module.AddFunction(wasmir.Function{
		Name: trampolineName,
		Sig:  e.Sig,
		Body: result,
	})
}

// EnsureArgcGlobal lazily creates the `~argc` global and its `~setargc`
// export the first time a trampoline path needs them; a single instance per
// module, per the design's resource model.
func EnsureArgcGlobal(m *wasmir.Module) {
	if _, ok := m.FindGlobal(argcGlobal); ok {
		return
	}
	m.AddGlobal(wasmir.Global{
		Name:    argcGlobal,
		Type:    wasmir.I32,
		Mutable: true,
		Init:    wasmir.Const(wasmir.I32, int32(0)),
	})
	m.AddFunction(wasmir.Function{
		Name: "~setargc",
		Sig:  wasmir.FuncSig{Params: []wasmir.NativeType{wasmir.I32}},
		Body: wasmir.SetGlobal(argcGlobal, wasmir.GetLocal(0, wasmir.I32)),
		Exported: "~setargc",
	})
}
