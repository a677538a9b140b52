package parser

import (
	"testing"

	"github.com/sunholo/wasmc/internal/ast"
)

// bodyOf parses a function with the given body text and returns its block's
// statements, which is the easiest way to exercise statement parsing without
// the top-level-vs-statement dispatch ambiguity getting in the way.
func bodyOf(t *testing.T, body string) []ast.Stmt {
	t.Helper()
	src := parseProgram(t, "function f() {\n"+body+"\n}")
	fn := src.Statements[0].(*ast.FunctionDecl)
	return fn.Body.(*ast.Block).Statements
}

func TestParseIfStmt(t *testing.T) {
	stmts := bodyOf(t, `if (x > 0) { return 1; } else { return 0; }`)
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	ifs, ok := stmts[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected *ast.IfStmt, got %T", stmts[0])
	}
	if ifs.Else == nil {
		t.Fatal("expected an else branch")
	}
}

func TestParseIfStmtNoElse(t *testing.T) {
	stmts := bodyOf(t, `if (x > 0) return 1;`)
	ifs, ok := stmts[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected *ast.IfStmt, got %T", stmts[0])
	}
	if ifs.Else != nil {
		t.Fatal("expected no else branch")
	}
}

func TestParseWhileStmt(t *testing.T) {
	stmts := bodyOf(t, `while (x < 10) { x = x + 1; }`)
	ws, ok := stmts[0].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("expected *ast.WhileStmt, got %T", stmts[0])
	}
	if _, ok := ws.Body.(*ast.Block); !ok {
		t.Fatalf("expected block body, got %T", ws.Body)
	}
}

func TestParseDoWhileStmt(t *testing.T) {
	stmts := bodyOf(t, `do { x = x + 1; } while (x < 10);`)
	ds, ok := stmts[0].(*ast.DoWhileStmt)
	if !ok {
		t.Fatalf("expected *ast.DoWhileStmt, got %T", stmts[0])
	}
	if ds.Cond == nil {
		t.Fatal("expected a condition")
	}
}

func TestParseForStmt(t *testing.T) {
	stmts := bodyOf(t, `for (let i: i32 = 0; i < 10; i++) { x = x + i; }`)
	fs, ok := stmts[0].(*ast.ForStmt)
	if !ok {
		t.Fatalf("expected *ast.ForStmt, got %T", stmts[0])
	}
	if _, ok := fs.Init.(*ast.VariableStmt); !ok {
		t.Fatalf("expected VariableStmt init, got %T", fs.Init)
	}
	if fs.Cond == nil || fs.Post == nil {
		t.Fatal("expected both a condition and a post expression")
	}
}

func TestParseForStmtEmptyClauses(t *testing.T) {
	stmts := bodyOf(t, `for (;;) { break; }`)
	fs, ok := stmts[0].(*ast.ForStmt)
	if !ok {
		t.Fatalf("expected *ast.ForStmt, got %T", stmts[0])
	}
	if fs.Init != nil || fs.Cond != nil || fs.Post != nil {
		t.Fatalf("expected all-empty for clauses, got %#v", fs)
	}
}

func TestParseSwitchStmt(t *testing.T) {
	stmts := bodyOf(t, `
switch (x) {
  case 1:
    return 1;
  case 2:
  case 3:
    return 2;
  default:
    return 0;
}`)
	sw, ok := stmts[0].(*ast.SwitchStmt)
	if !ok {
		t.Fatalf("expected *ast.SwitchStmt, got %T", stmts[0])
	}
	if len(sw.Cases) != 4 {
		t.Fatalf("expected 4 case clauses, got %d", len(sw.Cases))
	}
	if sw.Cases[0].Label == nil {
		t.Error("expected case 1 to have a label")
	}
	if len(sw.Cases[1].Body) != 0 {
		t.Errorf("expected fallthrough case 2 to have an empty body, got %#v", sw.Cases[1].Body)
	}
	if sw.Cases[3].Label != nil {
		t.Error("expected default clause to have a nil label")
	}
}

func TestParseReturnStmt(t *testing.T) {
	stmts := bodyOf(t, `return;`)
	rs, ok := stmts[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("expected *ast.ReturnStmt, got %T", stmts[0])
	}
	if rs.Value != nil {
		t.Fatalf("expected a bare return, got value %#v", rs.Value)
	}
}

func TestParseBreakContinueWithLabel(t *testing.T) {
	// This grammar has no labelled-statement syntax; break/continue still
	// accept a trailing identifier so the compiler can reject it precisely
	// (UNS002) rather than the parser silently dropping it.
	stmts := bodyOf(t, `while (true) { break outer; continue outer; }`)
	ws := stmts[0].(*ast.WhileStmt)
	block := ws.Body.(*ast.Block)
	bs, ok := block.Statements[0].(*ast.BreakStmt)
	if !ok || bs.Label != "outer" {
		t.Fatalf("expected labelled break \"outer\", got %#v", block.Statements[0])
	}
	cs, ok := block.Statements[1].(*ast.ContinueStmt)
	if !ok || cs.Label != "outer" {
		t.Fatalf("expected labelled continue \"outer\", got %#v", block.Statements[1])
	}
}

func TestParseBreakStmt(t *testing.T) {
	stmts := bodyOf(t, `while (true) { break; }`)
	ws := stmts[0].(*ast.WhileStmt)
	block := ws.Body.(*ast.Block)
	bs, ok := block.Statements[0].(*ast.BreakStmt)
	if !ok {
		t.Fatalf("expected *ast.BreakStmt, got %T", block.Statements[0])
	}
	if bs.Label != "" {
		t.Errorf("expected no label, got %q", bs.Label)
	}
}

func TestParseThrowStmt(t *testing.T) {
	stmts := bodyOf(t, `throw x;`)
	ts, ok := stmts[0].(*ast.ThrowStmt)
	if !ok {
		t.Fatalf("expected *ast.ThrowStmt, got %T", stmts[0])
	}
	if ts.Value == nil {
		t.Fatal("expected a thrown value")
	}
}

func TestParseTryCatchFinally(t *testing.T) {
	stmts := bodyOf(t, `
try {
  x = 1;
} catch (e) {
  x = 2;
} finally {
  x = 3;
}`)
	ts, ok := stmts[0].(*ast.TryStmt)
	if !ok {
		t.Fatalf("expected *ast.TryStmt, got %T", stmts[0])
	}
	if ts.Try == nil || ts.Catch == nil || ts.Finally == nil {
		t.Fatalf("expected all three clauses present, got %#v", ts)
	}
}

func TestParseTryNoCatchNoFinally(t *testing.T) {
	stmts := bodyOf(t, `try { x = 1; }`)
	ts, ok := stmts[0].(*ast.TryStmt)
	if !ok {
		t.Fatalf("expected *ast.TryStmt, got %T", stmts[0])
	}
	if ts.Catch != nil || ts.Finally != nil {
		t.Fatalf("expected no catch/finally, got %#v", ts)
	}
}

func TestParseLocalVariableStmt(t *testing.T) {
	stmts := bodyOf(t, `let a: i32 = 1, b: i32 = 2;`)
	vs, ok := stmts[0].(*ast.VariableStmt)
	if !ok {
		t.Fatalf("expected *ast.VariableStmt, got %T", stmts[0])
	}
	if len(vs.Declarators) != 2 {
		t.Fatalf("expected 2 declarators, got %d", len(vs.Declarators))
	}
}

func TestParseNestedBlock(t *testing.T) {
	stmts := bodyOf(t, `{ { x = 1; } }`)
	outer, ok := stmts[0].(*ast.Block)
	if !ok {
		t.Fatalf("expected *ast.Block, got %T", stmts[0])
	}
	if len(outer.Statements) != 1 {
		t.Fatalf("expected 1 nested statement, got %d", len(outer.Statements))
	}
	if _, ok := outer.Statements[0].(*ast.Block); !ok {
		t.Fatalf("expected nested block, got %T", outer.Statements[0])
	}
}

func TestParseEmptyStatementIsSkipped(t *testing.T) {
	stmts := bodyOf(t, `;;;x = 1;`)
	if len(stmts) != 1 {
		t.Fatalf("expected empty statements to be skipped, got %d statements", len(stmts))
	}
}
