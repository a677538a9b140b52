package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/wasmc/internal/ast"
	"github.com/sunholo/wasmc/internal/diagnostics"
	"github.com/sunholo/wasmc/internal/parser"
	"github.com/sunholo/wasmc/internal/program"
	"github.com/sunholo/wasmc/internal/typesys"
)

func resolveSource(t *testing.T, src string) (*program.Program, *diagnostics.Bag) {
	t.Helper()
	diags := diagnostics.NewBag()
	source := parser.Parse(src, "<test>", diags)
	require.False(t, diags.HasErrors(), "parse errors: %v", diags.Reports)
	prog := Resolve([]*ast.Source{source}, typesys.Wasm32, diags)
	return prog, diags
}

func TestResolveFunctionPrototypeRegistersSignature(t *testing.T) {
	prog, diags := resolveSource(t, `export function add(a: i32, b: i32): i32 { return a + b; }`)
	assert.False(t, diags.HasErrors())

	proto, ok := prog.LookupFunctionPrototype("add")
	require.True(t, ok)
	assert.True(t, proto.Flags.Has(program.Export))
}

func TestResolveClassRegistersFields(t *testing.T) {
	prog, diags := resolveSource(t, `
class Point {
  x: i32;
  y: i32;
  constructor(public x: i32, public y: i32) {}
}
export function main(): i32 { let p = new Point(1, 2); return p.x; }
`)
	assert.False(t, diags.HasErrors())

	_, ok := prog.LookupClassPrototype("Point")
	require.True(t, ok)
}

func TestResolveDuplicateDeclarationEmitsRES002(t *testing.T) {
	diags := diagnostics.NewBag()
	source := parser.Parse(`
function f(): i32 { return 1; }
function f(): i32 { return 2; }
`, "<test>", diags)
	require.False(t, diags.HasErrors())
	Resolve([]*ast.Source{source}, typesys.Wasm32, diags)

	require.True(t, diags.HasErrors())
	found := false
	for _, r := range diags.Reports {
		if r.Code == diagnostics.RES002 {
			found = true
		}
	}
	assert.True(t, found, "duplicate function declarations must emit RES002")
}

func TestResolveConstGlobalFoldsToConstValue(t *testing.T) {
	prog, diags := resolveSource(t, `const LIMIT: i32 = 100;`)
	assert.False(t, diags.HasErrors())

	g, ok := prog.LookupGlobal("LIMIT")
	require.True(t, ok)
	assert.True(t, g.ConstIsSet)
	assert.EqualValues(t, 100, g.ConstValue)
	assert.True(t, g.Flags.Has(program.Inlined))
}

func TestResolveConstGlobalWithNonConstInitializerWarnsAndStaysMutable(t *testing.T) {
	prog, diags := resolveSource(t, `
declare function external(): i32;
const LIMIT: i32 = external();
`)
	g, ok := prog.LookupGlobal("LIMIT")
	require.True(t, ok)
	assert.False(t, g.ConstIsSet)

	found := false
	for _, r := range diags.Reports {
		if r.Code == diagnostics.WRN001 {
			found = true
		}
	}
	assert.True(t, found, "a non-constant const global initializer must emit WRN001")
}

func TestResolveEnumMembersRegisterAsInlinedEnumValues(t *testing.T) {
	prog, diags := resolveSource(t, `enum Color { Red, Green, Blue = 9 }`)
	assert.False(t, diags.HasErrors())

	ev, ok := prog.Lookup("Color.Blue")
	require.True(t, ok)
	val, ok := ev.(*program.EnumValue)
	require.True(t, ok)
	assert.True(t, val.Flags.Has(program.Inlined))
}

