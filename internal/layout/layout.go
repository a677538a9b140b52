// Package layout implements the static memory layout described in the
// design's component C3: a segment allocator, canonicalised static strings,
// static arrays (written fresh on every request, not canonicalised), and the
// HEAP_BASE sealing step.
package layout

import (
	"encoding/binary"
	"math"
	"unicode/utf16"

	"github.com/sunholo/wasmc/internal/wasmir"
)

// minMemoryBase is the floor applied to Options.MemoryBase: the first eight
// bytes of static memory are reserved as a null sentinel (so that a null
// reference, address 0, never aliases real data).
const minMemoryBase = 8

const pageSize = 64 * 1024

// Layout owns the module's memory segments and the monotonically
// non-decreasing offset cursor.
type Layout struct {
	PointerSize  int32 // 4 (wasm32) or 8 (wasm64)
	GCHeaderSize int32 // 0 if no GC headers are reserved

	offset   int32
	sealed   bool
	heapBase int32

	strings map[string]int32 // content -> pointer (to the string body, past any GC header)
	arrays  map[string]int32

	module *wasmir.Module
}

// New creates a Layout starting at max(memoryBase, 8), matching the design's
// rule that the first eight bytes are reserved as a null sentinel.
func New(m *wasmir.Module, memoryBase int32, pointerSize int32, gcHeaderSize int32) *Layout {
	base := memoryBase
	if base < minMemoryBase {
		base = minMemoryBase
	}
	return &Layout{
		PointerSize:  pointerSize,
		GCHeaderSize: gcHeaderSize,
		offset:       base,
		strings:      map[string]int32{},
		arrays:       map[string]int32{},
		module:       m,
	}
}

// align rounds v up to the next multiple of boundary (boundary must be a
// power of two).
func align(v, boundary int32) int32 {
	if boundary <= 1 {
		return v
	}
	return (v + boundary - 1) &^ (boundary - 1)
}

// AddSegment appends a data segment aligned to boundary, returning the
// segment's starting offset. Offsets are final once assigned: the design's
// memory-monotonicity invariant requires l.offset never to decrease, which
// this method alone is responsible for upholding.
func (l *Layout) AddSegment(bytes []byte, boundary int32) int32 {
	if l.sealed {
		panic("layout: AddSegment called after Seal")
	}
	start := align(l.offset, boundary)
	l.module.AddSegment(wasmir.MemorySegment{Offset: start, Bytes: bytes})
	l.offset = start + int32(len(bytes))
	return start
}

// EnsureStaticString canonicalises s by content: calling it twice with equal
// s returns the same pointer. The written bytes are exactly
// [optional GC header][length:i32][utf16 code units], and the returned
// pointer targets the body (past any GC header), matching the design's C3.
func (l *Layout) EnsureStaticString(s string) int32 {
	if p, ok := l.strings[s]; ok {
		return p
	}
	units := utf16.Encode([]rune(s))
	body := make([]byte, 4+2*len(units))
	binary.LittleEndian.PutUint32(body[0:4], uint32(len(units)))
	for i, u := range units {
		binary.LittleEndian.PutUint16(body[4+2*i:], u)
	}

	full := body
	headerOff := int32(0)
	if l.GCHeaderSize > 0 {
		full = make([]byte, int(l.GCHeaderSize)+len(body))
		copy(full[l.GCHeaderSize:], body)
		headerOff = l.GCHeaderSize
	}

	start := l.AddSegment(full, l.PointerSize)
	ptr := start + headerOff
	l.strings[s] = ptr
	return ptr
}

// ElementKind names a static array's element type; writeElement dispatches
// on it to the correctly-sized little-endian write, matching the design's
// per-element-size dispatch.
type ElementKind int

const (
	ElemI8 ElementKind = iota
	ElemI16
	ElemI32
	ElemI64
	ElemF32
	ElemF64
)

func elementSize(k ElementKind) int {
	switch k {
	case ElemI8:
		return 1
	case ElemI16:
		return 2
	case ElemI32, ElemF32:
		return 4
	case ElemI64, ElemF64:
		return 8
	default:
		return 0
	}
}

func writeElement(buf []byte, off int, kind ElementKind, v any) {
	switch kind {
	case ElemI8:
		buf[off] = byte(v.(int32))
	case ElemI16:
		binary.LittleEndian.PutUint16(buf[off:], uint16(v.(int32)))
	case ElemI32:
		binary.LittleEndian.PutUint32(buf[off:], uint32(v.(int32)))
	case ElemI64:
		binary.LittleEndian.PutUint64(buf[off:], uint64(v.(int64)))
	case ElemF32:
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v.(float32)))
	case ElemF64:
		binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(v.(float64)))
	}
}

// arrayHeaderFixedFields is the fixed size of an Array instance header: a
// data pointer, byte length, and element length. For simplicity (and because
// the design leaves the exact header layout to the program model) this is
// three 4-byte fields; a GC header, if any, is not included in it.
const arrayHeaderFixedFields = 12

// nextPowerOfTwo rounds n up to the next power of two, used to size a static
// array's backing buffer segment per the design's C3.
func nextPowerOfTwo(n int32) int32 {
	if n <= 1 {
		return 1
	}
	p := int32(1)
	for p < n {
		p <<= 1
	}
	return p
}

// EnsureStaticArray writes a static array's backing buffer segment and its
// Array header segment (which points into the buffer), returning the
// pointer to the header (the value the rest of the compiler treats as the
// array reference).
func (l *Layout) EnsureStaticArray(elements []any, kind ElementKind) int32 {
	elemSize := elementSize(kind)
	bufLen := arrayHeaderFixedFields + len(elements)*elemSize // buffer carries its own tiny header in this simplified model
	bufLen = int(nextPowerOfTwo(int32(bufLen)))
	buf := make([]byte, bufLen)
	for i, e := range elements {
		writeElement(buf, arrayHeaderFixedFields+i*elemSize, kind, e)
	}
	bufPtr := l.AddSegment(buf, l.PointerSize)

	header := make([]byte, arrayHeaderFixedFields)
	binary.LittleEndian.PutUint32(header[0:4], uint32(bufPtr))
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(buf)))
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(elements)))
	headerPtr := l.AddSegment(header, l.PointerSize)
	return headerPtr
}

// Seal aligns the end of static memory to the pointer size, freezes further
// AddSegment calls, exports HEAP_BASE, and sizes the memory in pages.
func (l *Layout) Seal() {
	if l.sealed {
		return
	}
	l.heapBase = align(l.offset, l.PointerSize)
	l.sealed = true

	l.module.AddGlobal(wasmir.Global{
		Name:     "~lib/memory/HEAP_BASE",
		Type:     nativeFor(l.PointerSize),
		Mutable:  false,
		Init:     wasmir.Const(nativeFor(l.PointerSize), heapBaseValue(l.heapBase, l.PointerSize)),
		Exported: "HEAP_BASE",
	})

	pages := (l.heapBase + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	l.module.Memory.InitialPages = pages
}

func nativeFor(pointerSize int32) wasmir.NativeType {
	if pointerSize == 8 {
		return wasmir.I64
	}
	return wasmir.I32
}

func heapBaseValue(v, pointerSize int32) any {
	if pointerSize == 8 {
		return int64(v)
	}
	return v
}

// HeapBase returns the sealed heap base, or 0 before Seal is called.
func (l *Layout) HeapBase() int32 { return l.heapBase }

// Offset returns the current (pre-seal) end of static memory.
func (l *Layout) Offset() int32 { return l.offset }
