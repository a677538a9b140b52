package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/wasmc/internal/typesys"
)

func TestInheritMutualBothReturnIsUnconditional(t *testing.T) {
	parent := New(typesys.MakeI32())
	then := parent.Fork()
	then.Set(Returns)
	els := parent.Fork()
	els.Set(Returns)

	parent.InheritMutual(then, els)

	assert.True(t, parent.Has(Returns))
}

func TestInheritMutualOneArmReturnIsNotUnconditional(t *testing.T) {
	parent := New(typesys.MakeI32())
	then := parent.Fork()
	then.Set(Returns)
	els := parent.Fork() // does not return

	parent.InheritMutual(then, els)

	assert.False(t, parent.Has(Returns), "only one arm returning must not set RETURNS on the parent")
}

func TestInheritConditionalWeakensBreak(t *testing.T) {
	parent := New(typesys.MakeI32())
	child := parent.Fork()
	child.Set(Breaks)

	parent.InheritConditional(child)

	assert.False(t, parent.Has(Breaks))
	assert.True(t, parent.Has(ConditionallyBreaks))
}

func TestForkFreeReuse(t *testing.T) {
	parent := New(typesys.MakeI32())
	child := parent.Fork()
	parent.Free(child)
	child2 := parent.Fork()
	require.NotNil(t, child2)
}

func TestWrappedLocalTrackingCopiedOnFork(t *testing.T) {
	parent := New(typesys.MakeI32())
	parent.SetWrapped(0, true)
	child := parent.Fork()
	assert.True(t, child.IsWrapped(0))

	child.SetWrapped(0, false)
	assert.True(t, parent.IsWrapped(0), "mutating the child must not retroactively affect the parent before Inherit")
}
