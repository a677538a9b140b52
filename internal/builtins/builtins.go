// Package builtins implements compilation of intrinsic calls, the design's
// "out of scope" builtins collaborator: allocate, abort, GC hooks, and
// iterateRoots. It depends only on wasmir, layout and diagnostics (never on
// the compiler package) so the compiler core can depend on it without an
// import cycle, matching the design's data-flow description that "indirect
// call targets and optional-parameter functions route through C4" while
// "builtin calls" route through this standalone collaborator.
package builtins

import (
	"github.com/sunholo/wasmc/internal/diagnostics"
	"github.com/sunholo/wasmc/internal/layout"
	"github.com/sunholo/wasmc/internal/wasmir"
)

// allocateImportName is the mangled import the registry calls for raw
// allocation; a real runtime would supply this from `env` or a GC runtime
// module, out of scope here per the design.
const allocateImportName = "env.allocate"
const abortImportName = "env.abort"

// Registry implements the builtins contract: compileBuiltinCall-equivalent
// methods that either return a valid IR expression or a diagnostic.
type Registry struct {
	module *wasmir.Module
	layout *layout.Layout
	diags  *diagnostics.Bag

	gcHooks    map[string]int32 // class qualified name -> hook index
	nextHook   int32
	rootsUsed  bool
	importsSeeded bool
}

// NewRegistry binds the registry to the module/layout/diagnostics of one
// compilation.
func NewRegistry(m *wasmir.Module, l *layout.Layout, diags *diagnostics.Bag) *Registry {
	return &Registry{module: m, layout: l, diags: diags, gcHooks: map[string]int32{}}
}

func (r *Registry) seedImports() {
	if r.importsSeeded {
		return
	}
	r.importsSeeded = true
	r.module.AddImport(wasmir.Import{
		Module: "env", Name: "allocate", LocalName: allocateImportName,
		Sig: wasmir.FuncSig{Params: []wasmir.NativeType{wasmir.I32}, Result: wasmir.I32},
	})
	r.module.AddImport(wasmir.Import{
		Module: "env", Name: "abort", LocalName: abortImportName,
		Sig: wasmir.FuncSig{Params: []wasmir.NativeType{wasmir.I32, wasmir.I32}},
	})
}

// Allocate emits a call to the `allocate` intrinsic requesting size bytes,
// returning an i32/i64 pointer (widened to the module's pointer native type).
func (r *Registry) Allocate(size int32, pointerNative wasmir.NativeType) *wasmir.Expr {
	r.seedImports()
	call := wasmir.CallImport(allocateImportName, wasmir.I32, wasmir.Const(wasmir.I32, size))
	if pointerNative == wasmir.I64 {
		return wasmir.Unary(wasmir.ExtendI32UToI64, wasmir.I64, call)
	}
	return call
}

// Abort emits a call to the `abort` intrinsic with a pointer to a static
// message string (or 0 if message is empty) and a single placeholder i32
// operand 0 (source positions are out of scope for this reduced builtins
// surface).
func (r *Registry) Abort(message string) *wasmir.Expr {
	r.seedImports()
	var msgPtr *wasmir.Expr
	if message == "" {
		msgPtr = wasmir.Const(wasmir.I32, int32(0))
	} else {
		msgPtr = wasmir.Const(wasmir.I32, r.layout.EnsureStaticString(message))
	}
	call := wasmir.CallImport(abortImportName, wasmir.None, msgPtr, wasmir.Const(wasmir.I32, int32(0)))
	return wasmir.Block("abort", wasmir.None, call, wasmir.Unreachable())
}

// EnsureGCHook returns the hook index written into the GC header word of
// heap objects for classQualifiedName, assigning a fresh one on first use
// and marking iterateRoots as needed.
func (r *Registry) EnsureGCHook(classQualifiedName string) int32 {
	if idx, ok := r.gcHooks[classQualifiedName]; ok {
		return idx
	}
	idx := r.nextHook
	r.nextHook++
	r.gcHooks[classQualifiedName] = idx
	r.rootsUsed = true
	return idx
}

// NeedsIterateRoots reports whether any compiled element registered a GC
// hook, per the design's driver rule ("if any compiled element registered a
// GC hook, an iterateRoots helper is generated").
func (r *Registry) NeedsIterateRoots() bool { return r.rootsUsed }

// BuildIterateRoots synthesises the `iterateRoots` helper function the
// driver adds to the module when NeedsIterateRoots is true. The helper's
// body is a placeholder that a real GC runtime would replace with per-class
// field-walking logic; this implementation emits one no-op switch arm per
// registered hook so every hook index is provably reachable.
func (r *Registry) BuildIterateRoots() wasmir.Function {
	labels := make([]string, 0, len(r.gcHooks))
	for i := int32(0); i < r.nextHook; i++ {
		labels = append(labels, "root.unused")
	}
	body := wasmir.Block("iterateRoots", wasmir.None,
		wasmir.Switch(wasmir.GetLocal(0, wasmir.I32), labels, "root.unused"),
	)
	return wasmir.Function{
		Name:     "~lib/rt/iterateRoots",
		Sig:      wasmir.FuncSig{Params: []wasmir.NativeType{wasmir.I32}},
		Body:     body,
		Exported: "",
	}
}
