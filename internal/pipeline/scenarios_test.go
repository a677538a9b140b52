package pipeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/wasmc/internal/compiler"
	"github.com/sunholo/wasmc/internal/typesys"
	"github.com/sunholo/wasmc/internal/wasmir"
)

func findFunction(t *testing.T, m *wasmir.Module, name string) *wasmir.Function {
	t.Helper()
	for i := range m.Functions {
		if m.Functions[i].Name == name {
			return &m.Functions[i]
		}
	}
	t.Fatalf("no function named %q in module, have: %#v", name, m.Functions)
	return nil
}

// containsOp reports whether expr or any of its descendants is the op kind.
func containsOp(expr *wasmir.Expr, op wasmir.Op) bool {
	if expr == nil {
		return false
	}
	if expr.Op == op {
		return true
	}
	for _, s := range expr.Statements {
		if containsOp(s, op) {
			return true
		}
	}
	for _, o := range expr.Operands {
		if containsOp(o, op) {
			return true
		}
	}
	return containsOp(expr.Left, op) || containsOp(expr.Right, op) ||
		containsOp(expr.Operand, op) || containsOp(expr.Value, op) ||
		containsOp(expr.Ptr, op) || containsOp(expr.StoreValue, op) ||
		containsOp(expr.Cond, op) || containsOp(expr.Then, op) || containsOp(expr.Else, op)
}

// TestDoWhileAlwaysReturningBodyElidesConditionCheck matches literal scenario
// 2: `do { return 1; } while (x);` must not compile the trailing condition
// check since the body always returns.
func TestDoWhileAlwaysReturningBodyElidesConditionCheck(t *testing.T) {
	src := `export function foo(x: i32): i32 { do { return 1; } while (x > 0); }`
	result := Compile(src, "<test>", compiler.Options{Target: typesys.Wasm32})
	require.False(t, result.HasErrors(), "%v", result.Diags)
	require.NotNil(t, result.Module)

	fn := findFunction(t, result.Module, "foo")
	assert.False(t, containsOp(fn.Body, wasmir.OpBreakIf),
		"do-while with an always-returning body must not emit the trailing condition check")
}

// TestSwitchCaseLabelComparison matches spec §4.7: switch dispatch compares
// the tag against each case's own label expression, not the case's position
// in the source (a br_table on the raw tag value would make every
// non-dense, non-zero-based case unreachable).
func TestSwitchCaseLabelComparison(t *testing.T) {
	src := `
export function f(x: i32): i32 {
  switch (x) {
    case 10: return 1;
    case 20: return 2;
    default: return 3;
  }
  return 0;
}
`
	result := Compile(src, "<test>", compiler.Options{Target: typesys.Wasm32})
	require.False(t, result.HasErrors(), "%v", result.Diags)
	require.NotNil(t, result.Module)

	fn := findFunction(t, result.Module, "f")
	assert.False(t, containsOp(fn.Body, wasmir.OpSwitch),
		"switch over non-dense case labels must not lower to a raw br_table indexed by the tag value")

	labels := collectBreakIfEqConstants(fn.Body)
	require.Equal(t, []any{int32(10), int32(20)}, labels,
		"case dispatch must compare the tag against each case's own label expression in source order")
}

// collectBreakIfEqConstants walks expr for OpBreakIf nodes whose condition is
// an EqI32 comparison and returns the constant right-hand operand of each, in
// encounter order.
func collectBreakIfEqConstants(expr *wasmir.Expr) []any {
	if expr == nil {
		return nil
	}
	var out []any
	if expr.Op == wasmir.OpBreakIf && expr.BreakValue != nil &&
		expr.BreakValue.Op == wasmir.OpBinary && expr.BreakValue.BinOp == wasmir.EqI32 &&
		expr.BreakValue.Right != nil && expr.BreakValue.Right.Op == wasmir.OpConst {
		out = append(out, expr.BreakValue.Right.ConstValue)
	}
	for _, s := range expr.Statements {
		out = append(out, collectBreakIfEqConstants(s)...)
	}
	for _, o := range expr.Operands {
		out = append(out, collectBreakIfEqConstants(o)...)
	}
	out = append(out, collectBreakIfEqConstants(expr.Left)...)
	out = append(out, collectBreakIfEqConstants(expr.Right)...)
	out = append(out, collectBreakIfEqConstants(expr.Operand)...)
	out = append(out, collectBreakIfEqConstants(expr.Value)...)
	out = append(out, collectBreakIfEqConstants(expr.Ptr)...)
	out = append(out, collectBreakIfEqConstants(expr.StoreValue)...)
	out = append(out, collectBreakIfEqConstants(expr.Cond)...)
	out = append(out, collectBreakIfEqConstants(expr.Then)...)
	out = append(out, collectBreakIfEqConstants(expr.Else)...)
	out = append(out, collectBreakIfEqConstants(expr.BreakValue)...)
	return out
}

// TestOptionalParameterCallRouting matches literal scenario 3: a call
// supplying fewer operands than declared routes through the `~argc` global
// and the trampoline; a call supplying every operand calls the original
// directly.
func TestOptionalParameterCallRouting(t *testing.T) {
	src := `
function f(a: i32, b: i32 = 2): i32 { return a + b; }
export function callWithOne(): i32 { return f(5); }
export function callWithTwo(): i32 { return f(5, 7); }
`
	result := Compile(src, "<test>", compiler.Options{Target: typesys.Wasm32})
	require.False(t, result.HasErrors(), "%v", result.Diags)
	require.NotNil(t, result.Module)

	_, hasArgc := result.Module.FindGlobal("~argc")
	assert.True(t, hasArgc, "a trampoline-routed call must create the ~argc global")

	withOne := findFunction(t, result.Module, "callWithOne")
	assert.True(t, containsOp(withOne.Body, wasmir.OpSetGlobal),
		"supplying fewer operands than declared must set ~argc before calling the trampoline")

	withTwo := findFunction(t, result.Module, "callWithTwo")
	assert.False(t, containsOp(withTwo.Body, wasmir.OpSetGlobal),
		"supplying every operand must call the original directly, skipping ~argc")
}

// TestConstEnumPropagation matches literal scenario 4: referencing an
// enum member (a plain enum, whose members resolve to inlined constants)
// emits an i32 constant, not a global load.
func TestConstEnumPropagation(t *testing.T) {
	src := `
enum E { A, B, C = 99 }
export function main(): i32 { return E.C; }
`
	result := Compile(src, "<test>", compiler.Options{Target: typesys.Wasm32})
	require.False(t, result.HasErrors(), "%v", result.Diags)
	require.NotNil(t, result.Module)

	fn := findFunction(t, result.Module, "main")
	require.Equal(t, wasmir.OpBlock, fn.Body.Op)
	last := fn.Body.Statements[len(fn.Body.Statements)-1]
	require.Equal(t, wasmir.OpConst, last.Op, "E.C must lower to an inlined i32 constant")
	assert.EqualValues(t, 99, last.ConstValue)
}

// TestOperatorOverloadDispatch matches literal scenario 5: `a + b` where both
// operands are references to a class defining `@operator("+")` lowers to a
// direct call of that method, never to a numeric AddI32.
func TestOperatorOverloadDispatch(t *testing.T) {
	src := `
class V {
  x: i32;
  constructor(public x: i32) {}

  @operator("+")
  add(other: V): V { return new V(this.x + other.x); }
}
export function main(): i32 {
  let a = new V(1);
  let b = new V(2);
  let c = a + b;
  return c.x;
}
`
	result := Compile(src, "<test>", compiler.Options{Target: typesys.Wasm32})
	require.False(t, result.HasErrors(), "%v", result.Diags)
	require.NotNil(t, result.Module)

	fn := findFunction(t, result.Module, "main")
	assert.True(t, containsOp(fn.Body, wasmir.OpCall),
		"operator overload dispatch must lower to a direct call")
	assert.False(t, containsOp(fn.Body, wasmir.OpBinary) && hasAddI32(fn.Body),
		"the overloaded '+' must not lower to a numeric AddI32")
}

func hasAddI32(expr *wasmir.Expr) bool {
	if expr == nil {
		return false
	}
	if expr.Op == wasmir.OpBinary && expr.BinOp == wasmir.AddI32 {
		return true
	}
	for _, s := range expr.Statements {
		if hasAddI32(s) {
			return true
		}
	}
	for _, o := range expr.Operands {
		if hasAddI32(o) {
			return true
		}
	}
	return hasAddI32(expr.Left) || hasAddI32(expr.Right) || hasAddI32(expr.Operand) ||
		hasAddI32(expr.Value) || hasAddI32(expr.Ptr) || hasAddI32(expr.StoreValue) ||
		hasAddI32(expr.Cond) || hasAddI32(expr.Then) || hasAddI32(expr.Else)
}

// TestStaticStringDedup matches literal scenario 6: two distinct source
// literals with equal content dedup to one memory segment.
func TestStaticStringDedup(t *testing.T) {
	src := `
export function a(): string { return "hello"; }
export function b(): string { return "hello"; }
`
	result := Compile(src, "<test>", compiler.Options{Target: typesys.Wasm32})
	require.False(t, result.HasErrors(), "%v", result.Diags)
	require.NotNil(t, result.Module)

	count := 0
	for _, seg := range result.Module.Segments {
		_ = seg
		count++
	}
	assert.Equal(t, 1, count, "two equal string literals must dedup to exactly one memory segment")
}

// TestShortIntegerWrapGoldenTree is the full-pipeline counterpart to
// typesys.TestShortIntegerWrapWithSignExtension: it compiles literal
// scenario 1 end-to-end and golden-compares the emitted block body, ignoring
// only the source-range debug annotations.
func TestShortIntegerWrapGoldenTree(t *testing.T) {
	src := `export function foo(x: i8): i8 { return x + 1; }`
	result := Compile(src, "<test>", compiler.Options{
		Target:   typesys.Wasm32,
		Features: compiler.FeatureSignExtension,
	})
	require.False(t, result.HasErrors(), "%v", result.Diags)
	require.NotNil(t, result.Module)

	fn := findFunction(t, result.Module, "foo")

	want := &wasmir.Expr{
		Op:   wasmir.OpBlock,
		Type: wasmir.I32,
		Statements: []*wasmir.Expr{{
			Op:   wasmir.OpUnary,
			Type: wasmir.I32,
			UnOp: wasmir.ExtendI8ToI32,
			Operand: &wasmir.Expr{
				Op:   wasmir.OpBinary,
				Type: wasmir.I32,
				BinOp: wasmir.AddI32,
				Left:  &wasmir.Expr{Op: wasmir.OpGetLocal, Type: wasmir.I32, LocalIndex: 0},
				Right: &wasmir.Expr{Op: wasmir.OpConst, Type: wasmir.I32, ConstValue: int32(1)},
			},
		}},
	}

	ignoreRange := cmpopts.IgnoreFields(wasmir.Expr{}, "Range", "Label")
	if diff := cmp.Diff(want, fn.Body, ignoreRange); diff != "" {
		t.Errorf("wrapped return body mismatch (-want +got):\n%s", diff)
	}
}

// TestShortIntegerWrapWithoutSignExtensionFeature is the full-pipeline
// counterpart with the feature turned off: the trailing wrap must degrade to
// the shift-pair emulation instead of silently keeping the extend op, which
// is the bug this test guards against (the conversion path must actually
// thread compiler.Options.Features, not just the standalone helper).
func TestShortIntegerWrapWithoutSignExtensionFeature(t *testing.T) {
	src := `export function foo(x: i8): i8 { return x + 1; }`
	result := Compile(src, "<test>", compiler.Options{Target: typesys.Wasm32})
	require.False(t, result.HasErrors(), "%v", result.Diags)
	require.NotNil(t, result.Module)

	fn := findFunction(t, result.Module, "foo")
	last := fn.Body.Statements[len(fn.Body.Statements)-1]
	require.Equal(t, wasmir.OpBinary, last.Op, "without SIGN_EXTENSION the wrap must be the shift-pair emulation, not an extend op")
	assert.Equal(t, wasmir.ShrI32S, last.BinOp)
	require.Equal(t, wasmir.OpBinary, last.Left.Op)
	assert.Equal(t, wasmir.ShlI32, last.Left.BinOp)
}
