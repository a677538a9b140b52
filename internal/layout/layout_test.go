package layout

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/wasmc/internal/wasmir"
)

func TestMemoryBaseFloor(t *testing.T) {
	m := wasmir.NewModule()
	l := New(m, 0, 4, 0)
	assert.Equal(t, int32(8), l.Offset())
}

func TestSegmentOffsetsAreMonotonicAndContiguous(t *testing.T) {
	m := wasmir.NewModule()
	l := New(m, 8, 4, 0)

	s1 := l.AddSegment([]byte{1, 2, 3}, 4)
	s2 := l.AddSegment([]byte{4, 5}, 4)

	require.Len(t, m.Segments, 2)
	assert.Equal(t, s1, m.Segments[0].Offset)
	assert.Equal(t, s2, m.Segments[1].Offset)
	assert.GreaterOrEqual(t, s2, s1+int32(len(m.Segments[0].Bytes)))
}

func TestEnsureStaticStringCanonicalises(t *testing.T) {
	m := wasmir.NewModule()
	l := New(m, 8, 4, 0)

	p1 := l.EnsureStaticString("hello")
	p2 := l.EnsureStaticString("hello")
	assert.Equal(t, p1, p2, "identical string content must dedup to one pointer")

	p3 := l.EnsureStaticString("world")
	assert.NotEqual(t, p1, p3)

	// Exactly one segment per distinct string.
	assert.Len(t, m.Segments, 2)
}

func TestStaticStringBytesLayout(t *testing.T) {
	m := wasmir.NewModule()
	l := New(m, 8, 4, 0)

	ptr := l.EnsureStaticString("hi")
	seg := m.Segments[0]
	require.Equal(t, ptr, seg.Offset)

	length := binary.LittleEndian.Uint32(seg.Bytes[0:4])
	assert.Equal(t, uint32(2), length)
	assert.Equal(t, byte('h'), seg.Bytes[4])
	assert.Equal(t, byte(0), seg.Bytes[5])
	assert.Equal(t, byte('i'), seg.Bytes[6])
}

func TestSealExportsHeapBase(t *testing.T) {
	m := wasmir.NewModule()
	l := New(m, 8, 4, 0)
	l.EnsureStaticString("x")
	l.Seal()

	g, ok := m.FindGlobal("~lib/memory/HEAP_BASE")
	require.True(t, ok)
	assert.Equal(t, "HEAP_BASE", g.Exported)
	assert.False(t, g.Mutable)
	assert.Equal(t, l.HeapBase(), g.Init.ConstValue)
}
