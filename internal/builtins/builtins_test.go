package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/wasmc/internal/diagnostics"
	"github.com/sunholo/wasmc/internal/layout"
	"github.com/sunholo/wasmc/internal/wasmir"
)

func newRegistry() (*Registry, *wasmir.Module) {
	m := wasmir.NewModule()
	l := layout.New(m, 8, 4, 4)
	return NewRegistry(m, l, diagnostics.NewBag()), m
}

func TestAllocateSeedsImportOnce(t *testing.T) {
	r, m := newRegistry()
	r.Allocate(16, wasmir.I32)
	r.Allocate(24, wasmir.I32)

	count := 0
	for _, imp := range m.Imports {
		if imp.Module == "env" && imp.Name == "allocate" {
			count++
		}
	}
	assert.Equal(t, 1, count, "the allocate import must be seeded exactly once regardless of call count")
}

func TestAllocateWidensToPointerNative(t *testing.T) {
	r, _ := newRegistry()
	expr := r.Allocate(16, wasmir.I64)
	require.Equal(t, wasmir.OpUnary, expr.Op)
	assert.Equal(t, wasmir.ExtendI32UToI64, expr.UnOp)
}

func TestAllocateI32PointerIsBareCall(t *testing.T) {
	r, _ := newRegistry()
	expr := r.Allocate(16, wasmir.I32)
	assert.Equal(t, wasmir.OpCallImport, expr.Op)
}

func TestAbortWithEmptyMessageUsesNullPointer(t *testing.T) {
	r, _ := newRegistry()
	expr := r.Abort("")
	require.Equal(t, wasmir.OpBlock, expr.Op)
	call := expr.Statements[0]
	require.Equal(t, wasmir.OpCallImport, call.Op)
	assert.EqualValues(t, 0, call.Operands[0].ConstValue)
}

func TestAbortEndsUnreachable(t *testing.T) {
	r, _ := newRegistry()
	expr := r.Abort("boom")
	last := expr.Statements[len(expr.Statements)-1]
	assert.Equal(t, wasmir.OpUnreachable, last.Op)
}

func TestEnsureGCHookIsMemoizedByClassName(t *testing.T) {
	r, _ := newRegistry()
	a := r.EnsureGCHook("App/Foo")
	b := r.EnsureGCHook("App/Bar")
	c := r.EnsureGCHook("App/Foo")

	assert.Equal(t, a, c, "repeated lookups for the same class must return the same hook index")
	assert.NotEqual(t, a, b)
	assert.True(t, r.NeedsIterateRoots())
}

func TestNeedsIterateRootsFalseUntilHookRegistered(t *testing.T) {
	r, _ := newRegistry()
	assert.False(t, r.NeedsIterateRoots())
	r.EnsureGCHook("App/Foo")
	assert.True(t, r.NeedsIterateRoots())
}

func TestBuildIterateRootsOneArmPerHook(t *testing.T) {
	r, _ := newRegistry()
	r.EnsureGCHook("App/Foo")
	r.EnsureGCHook("App/Bar")

	fn := r.BuildIterateRoots()
	sw := fn.Body.Statements[0]
	require.Equal(t, wasmir.OpSwitch, sw.Op)
	assert.Len(t, sw.SwitchLabels, 2)
}
