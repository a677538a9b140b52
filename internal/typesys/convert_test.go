package typesys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/wasmc/internal/wasmir"
)

func TestCommonCompatibleWidensToLargerInt(t *testing.T) {
	got, ok := CommonCompatible(MakeI8(), MakeI32(), false)
	require.True(t, ok)
	assert.Equal(t, MakeI32(), got)
}

func TestCommonCompatibleSignednessSignificant(t *testing.T) {
	_, ok := CommonCompatible(MakeI32(), MakeU32(), true)
	assert.False(t, ok, "signed/unsigned i32 must be incompatible for relational ops")
}

func TestCommonCompatibleFloatWins(t *testing.T) {
	got, ok := CommonCompatible(MakeF32(), MakeF64(), false)
	require.True(t, ok)
	assert.Equal(t, MakeF64(), got)
}

func TestCommonCompatibleReferencesNeverUnify(t *testing.T) {
	_, ok := CommonCompatible(MakeReference("A", false), MakeReference("B", false), false)
	assert.False(t, ok)
}

// TestShortIntegerWrapWithSignExtension matches literal scenario 1 from the
// design: foo(x: i8): i8 { return x + 1 } with SIGN_EXTENSION enabled emits
// ExtendI8ToI32(AddI32(GetLocal 0, 1)).
func TestShortIntegerWrapWithSignExtension(t *testing.T) {
	x := wasmir.GetLocal(0, wasmir.I32)
	sum := wasmir.Binary(wasmir.AddI32, wasmir.I32, x, wasmir.Const(wasmir.I32, int32(1)))
	wrapped := EnsureSmallIntegerWrapWithFeatures(sum, MakeI8(), Features{SignExtension: true})

	require.Equal(t, wasmir.OpUnary, wrapped.Op)
	assert.Equal(t, wasmir.ExtendI8ToI32, wrapped.UnOp)
	assert.Same(t, sum, wrapped.Operand)
}

// TestShortIntegerWrapWithoutSignExtension matches the same scenario without
// the feature: ShrI32(ShlI32(AddI32(...), 24), 24).
func TestShortIntegerWrapWithoutSignExtension(t *testing.T) {
	x := wasmir.GetLocal(0, wasmir.I32)
	sum := wasmir.Binary(wasmir.AddI32, wasmir.I32, x, wasmir.Const(wasmir.I32, int32(1)))
	wrapped := EnsureSmallIntegerWrapWithFeatures(sum, MakeI8(), Features{SignExtension: false})

	require.Equal(t, wasmir.OpBinary, wrapped.Op)
	assert.Equal(t, wasmir.ShrI32S, wrapped.BinOp)
	assert.Equal(t, wasmir.OpBinary, wrapped.Left.Op)
	assert.Equal(t, wasmir.ShlI32, wrapped.Left.BinOp)
	assert.Same(t, sum, wrapped.Left.Left)
}

func TestConvertI64ToI32Wraps(t *testing.T) {
	v := wasmir.GetLocal(0, wasmir.I64)
	out := Convert(v, MakeI64(), MakeI32(), Explicit, false, Features{}, nil)
	require.Equal(t, wasmir.OpUnary, out.Op)
	assert.Equal(t, wasmir.WrapI64ToI32, out.UnOp)
}

func TestConvertI32ToI64ExtendsSigned(t *testing.T) {
	v := wasmir.GetLocal(0, wasmir.I32)
	out := Convert(v, MakeI32(), MakeI64(), Implicit, false, Features{}, nil)
	require.Equal(t, wasmir.OpUnary, out.Op)
	assert.Equal(t, wasmir.ExtendI32SToI64, out.UnOp)
}

func TestConvertVoidToAnyIsUnreachable(t *testing.T) {
	v := wasmir.Nop()
	out := Convert(v, MakeVoid(), MakeI32(), Implicit, false, Features{}, nil)
	assert.Equal(t, wasmir.OpUnreachable, out.Op)
}

func TestConvertAnyToVoidDrops(t *testing.T) {
	v := wasmir.GetLocal(0, wasmir.I32)
	out := Convert(v, MakeI32(), MakeVoid(), Implicit, false, Features{}, nil)
	require.Equal(t, wasmir.OpDrop, out.Op)
	assert.Same(t, v, out.Operand)
}
