// Package compiler implements the code-generation core: the Compiler that
// walks a resolved program.Program and produces a wasmir.Module, per the
// design's components C4 through C9 (the top-level driver, C5, lives in
// driver.go; the function table, C4, lives in internal/functable and is
// merely owned here).
package compiler

import (
	"github.com/sunholo/wasmc/internal/ast"
	"github.com/sunholo/wasmc/internal/builtins"
	"github.com/sunholo/wasmc/internal/diagnostics"
	"github.com/sunholo/wasmc/internal/flow"
	"github.com/sunholo/wasmc/internal/functable"
	"github.com/sunholo/wasmc/internal/layout"
	"github.com/sunholo/wasmc/internal/program"
	"github.com/sunholo/wasmc/internal/typesys"
	"github.com/sunholo/wasmc/internal/wasmir"
)

// Feature is a bitset entry for Options.Features.
type Feature uint32

const (
	FeatureSignExtension Feature = 1 << iota
	FeatureMutableGlobal
)

func (f Feature) Has(x Feature) bool { return f&x != 0 }

// Options mirrors the design's §6 Compiler options table.
type Options struct {
	Target         typesys.Target
	NoTreeShaking  bool
	NoAssert       bool
	ImportMemory   bool
	ImportTable    bool
	SourceMap      bool
	MemoryBase     int32
	GlobalAliases  map[string]string
	Features       Feature
}

func (o Options) hasFeature(f Feature) bool { return o.Features.Has(f) }

// sourceMapHook receives one (node, module-offset) pair per emitted IR node
// when Options.SourceMap is set; the design calls this "only a hook" since
// full source-map emission is out of scope.
type sourceMapHook func(rng *ast.Range)

// Compiler owns all per-compilation mutable state: the design notes this
// explicitly ("the compiler object holds essentially all state") and asks
// that currentType/currentFunction/currentFlow never be left stale across an
// error, which every lowering function here is responsible for upholding by
// always assigning c.currentType before returning.
type Compiler struct {
	Options Options
	Diags   *diagnostics.Bag

	Program *program.Program
	Module  *wasmir.Module
	Layout  *layout.Layout
	Table   *functable.Table
	Builtins *builtins.Registry

	currentFunction *program.Function
	currentFlow     *flow.Flow
	currentType     typesys.Type

	// currentInlineFunctions guards against re-entrant inlining: a function
	// currently being inlined into cannot be inlined into itself.
	currentInlineFunctions map[*program.Function]bool

	// breakContext is the monotonically increasing counter loops use to
	// generate break|N / continue|N labels.
	breakContext int

	// tempPool is the per-function free list of temporary locals, keyed by
	// native type; acquired via getTempLocal and released via freeTempLocal.
	tempPool map[wasmir.NativeType][]int

	sourceMap sourceMapHook

	// mainElement is set once compileFunctionDeclaration processes a
	// function named "main"; used by the driver to decide module-start wiring.
	mainElement *program.Function
	startedGlobalCreated bool

	// startStatements accumulates top-level initialisation code (global
	// initializers, top-level source statements) the driver assembles into
	// a single synthesized start function.
	startStatements []*wasmir.Expr

	// compiledSources guards against revisiting the same source twice when
	// an ImportDecl's target is reachable from more than one entry point.
	compiledSources map[*ast.Source]bool

	// compiledClasses records every class compileClass processed, in
	// compilation order, so the driver's export pass (exports.go) can walk
	// their fields for synthesised getter/setter exports without needing a
	// second traversal of the program model.
	compiledClasses []*program.Class
}

// New constructs a Compiler ready to compile a single program.Program.
func New(opts Options, prog *program.Program) *Compiler {
	m := wasmir.NewModule()
	gcHeaderSize := int32(0)
	if hasAnyClass(prog) {
		gcHeaderSize = 4 // one word: GC hook index
	}
	pointerSize := int32(4)
	if opts.Target == typesys.Wasm64 {
		pointerSize = 8
	}
	c := &Compiler{
		Options:                opts,
		Diags:                  diagnostics.NewBag(),
		Program:                prog,
		Module:                 m,
		Layout:                 layout.New(m, opts.MemoryBase, pointerSize, gcHeaderSize),
		Table:                  functable.New(m),
		currentInlineFunctions: map[*program.Function]bool{},
		tempPool:               map[wasmir.NativeType][]int{},
		compiledSources:        map[*ast.Source]bool{},
	}
	c.Builtins = builtins.NewRegistry(m, c.Layout, c.Diags)
	return c
}

// hasAnyClass reports whether prog declares any class anywhere in its
// namespace tree. The resolver leaves the original ClassPrototype stub in
// place alongside each instantiated Class (see internal/resolver), so a
// ClassPrototype counts here too: the program has exactly as many
// prototypes as user-written classes regardless of how many have been
// monomorphised yet.
func hasAnyClass(prog *program.Program) bool {
	return namespaceHasClass(prog.Root)
}

func namespaceHasClass(ns *program.Namespace) bool {
	for _, e := range ns.Members {
		switch v := e.(type) {
		case *program.Class, *program.ClassPrototype:
			return true
		case *program.Namespace:
			if namespaceHasClass(v) {
				return true
			}
		}
	}
	return false
}

func (c *Compiler) features() typesys.Features {
	return typesys.Features{SignExtension: c.Options.hasFeature(FeatureSignExtension)}
}

// getTempLocal acquires a temporary local of native type t from the current
// function's pool, allocating a fresh local slot if the pool is empty. wrapped
// seeds the flow's wrapped-bit for the returned index when t corresponds to a
// short integer use (callers pass false when the value is not yet known wrapped).
func (c *Compiler) getTempLocal(t wasmir.NativeType, wrapped bool) int {
	if pool := c.tempPool[t]; len(pool) > 0 {
		idx := pool[len(pool)-1]
		c.tempPool[t] = pool[:len(pool)-1]
		c.currentFlow.SetWrapped(idx, wrapped)
		return idx
	}
	idx := len(c.currentFunction.Locals) + c.localOffset()
	lt := typesys.MakeI32()
	switch t {
	case wasmir.I64:
		lt = typesys.MakeI64()
	case wasmir.F32:
		lt = typesys.MakeF32()
	case wasmir.F64:
		lt = typesys.MakeF64()
	}
	c.currentFunction.Locals = append(c.currentFunction.Locals, program.Local{Type: lt, Index: idx})
	c.currentFlow.SetWrapped(idx, wrapped)
	return idx
}

// localOffset returns the number of parameter (+ this) slots occupied before
// the additional-locals table begins.
func (c *Compiler) localOffset() int {
	n := len(c.currentFunction.Sig.ParameterTypes)
	if c.currentFunction.Sig.HasThis() {
		n++
	}
	return n
}

// freeTempLocal releases idx back to its type's pool for reuse within the
// current function. The pool is per compiler, not per inline scope: inline.go
// draws its temps from the same pool and keeps no separate push/pop.
func (c *Compiler) freeTempLocal(t wasmir.NativeType, idx int) {
	c.tempPool[t] = append(c.tempPool[t], idx)
}

// getAndFreeTempLocalType acquires a temp local for the native type of t. It
// does not release it; callers pair it with freeTempLocal themselves.
func (c *Compiler) getAndFreeTempLocalType(t typesys.Type) int {
	return c.getTempLocal(nativeOf(t), false)
}

func nativeOf(t typesys.Type) wasmir.NativeType {
	switch t.Native(typesys.Wasm32) {
	case typesys.NativeI32:
		return wasmir.I32
	case typesys.NativeI64:
		return wasmir.I64
	case typesys.NativeF32:
		return wasmir.F32
	case typesys.NativeF64:
		return wasmir.F64
	default:
		return wasmir.None
	}
}

// stampRange invokes the source-map hook for rng, if one is installed.
func (c *Compiler) stampRange(rng ast.Range) {
	if c.sourceMap != nil {
		c.sourceMap(&rng)
	}
}
