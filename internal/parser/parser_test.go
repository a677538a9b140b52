package parser

import (
	"testing"

	"github.com/sunholo/wasmc/internal/ast"
	"github.com/sunholo/wasmc/internal/diagnostics"
)

// parseProgram parses input as a standalone source file and fails the test
// if any diagnostic was reported.
func parseProgram(t *testing.T, input string) *ast.Source {
	t.Helper()
	diag := diagnostics.NewBag()
	src := Parse(input, "test.ts", diag)
	if diag.HasErrors() {
		for _, r := range diag.Reports {
			t.Errorf("diagnostic: %s %s", r.Code, r.Message)
		}
		t.FailNow()
	}
	return src
}

// parseExpr parses input as a single expression statement and returns its
// expression node.
func parseExpr(t *testing.T, input string) ast.Expr {
	t.Helper()
	src := parseProgram(t, input+";")
	if len(src.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(src.Statements))
	}
	es, ok := src.Statements[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected *ast.ExprStmt, got %T", src.Statements[0])
	}
	return es.X
}

func TestParseSourceEmpty(t *testing.T) {
	src := parseProgram(t, "")
	if len(src.Statements) != 0 {
		t.Fatalf("expected no statements, got %d", len(src.Statements))
	}
}

func TestParseSourceRecordsErrorsWithoutPanicking(t *testing.T) {
	diag := diagnostics.NewBag()
	src := Parse("function (", "test.ts", diag)
	if src == nil {
		t.Fatal("Parse returned nil source on malformed input")
	}
	if !diag.HasErrors() {
		t.Fatal("expected at least one diagnostic for malformed input")
	}
}

func TestParseMultipleTopLevelStatements(t *testing.T) {
	src := parseProgram(t, `
function add(a: i32, b: i32): i32 {
  return a + b;
}

let total: i32 = add(1, 2);
`)
	if len(src.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(src.Statements))
	}
	if _, ok := src.Statements[0].(*ast.FunctionDecl); !ok {
		t.Fatalf("statement 0: expected *ast.FunctionDecl, got %T", src.Statements[0])
	}
	if _, ok := src.Statements[1].(*ast.GlobalDecl); !ok {
		t.Fatalf("statement 1: expected *ast.GlobalDecl, got %T", src.Statements[1])
	}
}
