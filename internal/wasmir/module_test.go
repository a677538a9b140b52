package wasmir

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestSigPoolDedupesByShape is a golden-tree comparison (the design's
// go-cmp-based "golden-style IR assertions"): two structurally identical
// signatures submitted in sequence must intern to the same pool slot, and a
// differently-shaped signature must get its own.
func TestSigPoolDedupesByShape(t *testing.T) {
	m := NewModule()

	a := FuncSig{Params: []NativeType{I32, I32}, Result: I32}
	b := FuncSig{Params: []NativeType{I32, I32}, Result: I32}
	c := FuncSig{Params: []NativeType{I64}, Result: None}

	ia := m.EnsureSig(a)
	ib := m.EnsureSig(b)
	ic := m.EnsureSig(c)

	if ia != ib {
		t.Fatalf("structurally identical signatures must share a pool slot: %d vs %d", ia, ib)
	}
	if ia == ic {
		t.Fatalf("differently-shaped signatures must not share a pool slot")
	}
	if diff := cmp.Diff(a, m.Sigs[ia]); diff != "" {
		t.Errorf("pooled signature diverged from the original (-want +got):\n%s", diff)
	}
}

// TestAddFunctionGoldenTree builds a tiny function body by hand and compares
// it against the exact tree a caller would expect, the way a golden IR
// assertion over the compiler's own output would.
func TestAddFunctionGoldenTree(t *testing.T) {
	m := NewModule()
	body := Block("", I32,
		Binary(AddI32, I32, GetLocal(0, I32), Const(I32, int32(1))),
	)
	m.AddFunction(Function{
		Name: "incr",
		Sig:  FuncSig{Params: []NativeType{I32}, Result: I32},
		Body: body,
	})

	want := &Expr{
		Op:   OpBlock,
		Type: I32,
		Statements: []*Expr{{
			Op:   OpBinary,
			Type: I32,
			BinOp: AddI32,
			Left:  &Expr{Op: OpGetLocal, Type: I32, LocalIndex: 0},
			Right: &Expr{Op: OpConst, Type: I32, ConstValue: int32(1)},
		}},
	}

	if diff := cmp.Diff(want, m.Functions[0].Body); diff != "" {
		t.Errorf("function body tree mismatch (-want +got):\n%s", diff)
	}
}
