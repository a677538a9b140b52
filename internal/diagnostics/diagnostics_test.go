package diagnostics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/wasmc/internal/ast"
)

func TestBagHasErrorsIgnoresWarnings(t *testing.T) {
	b := NewBag()
	b.Warning(WRN001, PhaseCompile, "demoted to mutable global", nil)
	assert.False(t, b.HasErrors())

	b.Error(TYP001, PhaseCompile, "not assignable", nil)
	assert.True(t, b.HasErrors())
}

func TestBagInternalCountsAsError(t *testing.T) {
	b := NewBag()
	b.Internal("invariant violated", nil)
	assert.True(t, b.HasErrors())
	assert.Equal(t, 1, b.Count(SeverityInternal))
}

func TestBagCountBySeverity(t *testing.T) {
	b := NewBag()
	b.Warning(WRN002, PhaseCompile, "could not inline", nil)
	b.Warning(WRN003, PhaseCompile, "possibly incomplete switch", nil)
	b.Error(SEM001, PhaseCompile, "break outside loop", nil)

	assert.Equal(t, 2, b.Count(SeverityWarning))
	assert.Equal(t, 1, b.Count(SeverityError))
	assert.Equal(t, 0, b.Count(SeverityInternal))
}

func TestReportJSONRoundTrip(t *testing.T) {
	rng := &ast.Range{}
	r := New(RES001, PhaseResolve, SeverityError, "unresolved reference", rng).WithData("name", "Foo")

	raw, err := r.ToJSON(true)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, Schema, decoded["schema"])
	assert.Equal(t, RES001, decoded["code"])
	assert.Equal(t, "error", decoded["severity"])
	assert.Equal(t, "Foo", decoded["data"].(map[string]any)["name"])
}

func TestReportErrorStringPrefixesCode(t *testing.T) {
	r := New(TYP002, PhaseCompile, SeverityError, "no arithmetic meaning", nil)
	assert.Equal(t, "TYP002: no arithmetic meaning", r.Error())
}
