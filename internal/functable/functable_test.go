package functable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/wasmc/internal/wasmir"
)

func TestEnsureEntryIsIdempotent(t *testing.T) {
	m := wasmir.NewModule()
	tbl := New(m)
	e := Entry{Name: "foo", Sig: wasmir.FuncSig{Params: []wasmir.NativeType{wasmir.I32}}, MinArgs: 1, MaxArgs: 1}

	i1 := tbl.EnsureEntry(e, nil)
	i2 := tbl.EnsureEntry(e, nil)
	assert.Equal(t, i1, i2)
}

func TestOptionalParamsRouteThroughTrampoline(t *testing.T) {
	m := wasmir.NewModule()
	tbl := New(m)
	e := Entry{
		Name:    "f",
		Sig:     wasmir.FuncSig{Params: []wasmir.NativeType{wasmir.I32, wasmir.I32}},
		MinArgs: 1,
		MaxArgs: 2,
	}
	init := func(paramIndex int) *wasmir.Expr { return wasmir.Const(wasmir.I32, int32(2)) }

	idx := tbl.EnsureEntry(e, init)
	require.GreaterOrEqual(t, idx, int32(0))
	assert.Equal(t, "f|trampoline", m.Table.Entries[idx])

	var tramp *wasmir.Function
	for i := range m.Functions {
		if m.Functions[i].Name == "f|trampoline" {
			tramp = &m.Functions[i]
		}
	}
	require.NotNil(t, tramp, "trampoline function must be added to the module")

	_, ok := m.FindGlobal("~argc")
	assert.True(t, ok, "~argc global must be created lazily for the first trampoline")
}

func TestNoOptionalParamsIndexesOriginalDirectly(t *testing.T) {
	m := wasmir.NewModule()
	tbl := New(m)
	e := Entry{Name: "g", Sig: wasmir.FuncSig{}, MinArgs: 0, MaxArgs: 0}

	idx := tbl.EnsureEntry(e, nil)
	assert.Equal(t, "g", m.Table.Entries[idx])
}
