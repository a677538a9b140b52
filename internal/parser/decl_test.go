package parser

import (
	"testing"

	"github.com/sunholo/wasmc/internal/ast"
)

func parseOneDecl(t *testing.T, input string) ast.Stmt {
	t.Helper()
	src := parseProgram(t, input)
	if len(src.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(src.Statements))
	}
	return src.Statements[0]
}

func TestParseFunctionDecl(t *testing.T) {
	fn, ok := parseOneDecl(t, `function add(a: i32, b: i32): i32 { return a + b; }`).(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("expected *ast.FunctionDecl")
	}
	if fn.Name != "add" {
		t.Errorf("expected name add, got %q", fn.Name)
	}
	if len(fn.Params) != 2 || fn.Params[0].Name != "a" || fn.Params[0].Type.Name != "i32" {
		t.Fatalf("unexpected params: %#v", fn.Params)
	}
	if fn.ReturnType.Name != "i32" {
		t.Errorf("expected return type i32, got %q", fn.ReturnType.Name)
	}
	block, ok := fn.Body.(*ast.Block)
	if !ok || len(block.Statements) != 1 {
		t.Fatalf("expected a one-statement block body, got %#v", fn.Body)
	}
}

func TestParseFunctionArrowBody(t *testing.T) {
	fn, ok := parseOneDecl(t, `function square(x: i32): i32 => x * x`).(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("expected *ast.FunctionDecl")
	}
	if !fn.IsArrow {
		t.Error("expected IsArrow to be true")
	}
	block, ok := fn.Body.(*ast.Block)
	if !ok || len(block.Statements) != 1 {
		t.Fatalf("expected a synthetic one-statement block, got %#v", fn.Body)
	}
	if _, ok := block.Statements[0].(*ast.ReturnStmt); !ok {
		t.Fatalf("expected synthetic return, got %T", block.Statements[0])
	}
}

func TestParseAmbientFunctionDecl(t *testing.T) {
	fn, ok := parseOneDecl(t, `declare function log(x: i32): void;`).(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("expected *ast.FunctionDecl")
	}
	if !fn.Mods.Ambient {
		t.Error("expected Ambient modifier")
	}
	if fn.Body != nil {
		t.Errorf("expected nil body, got %#v", fn.Body)
	}
}

func TestParseExternalDecorator(t *testing.T) {
	fn, ok := parseOneDecl(t, `@external("env", "log") declare function log(x: i32): void;`).(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("expected *ast.FunctionDecl")
	}
	if fn.Mods.ExternalMod != "env" || fn.Mods.ExternalName != "log" {
		t.Errorf("expected external(env, log), got (%q, %q)", fn.Mods.ExternalMod, fn.Mods.ExternalName)
	}
}

func TestParseGenericFunctionDecl(t *testing.T) {
	fn, ok := parseOneDecl(t, `function identity<T>(x: T): T { return x; }`).(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("expected *ast.FunctionDecl")
	}
	if len(fn.Mods.Generic) != 1 || fn.Mods.Generic[0] != "T" {
		t.Fatalf("expected generic param T, got %#v", fn.Mods.Generic)
	}
}

func TestParseExportedFunctionDecl(t *testing.T) {
	fn, ok := parseOneDecl(t, `export function main(): i32 { return 0; }`).(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("expected *ast.FunctionDecl")
	}
	if !fn.Mods.Export {
		t.Error("expected Export modifier")
	}
}

func TestParseClassDecl(t *testing.T) {
	cls, ok := parseOneDecl(t, `
class Point {
  label: string;
  scale: i32 = 0;

  constructor(public x: i32, private y: i32) {}

  length(): i32 {
    return this.x + this.y;
  }
}`).(*ast.ClassDecl)
	if !ok {
		t.Fatalf("expected *ast.ClassDecl")
	}
	if cls.Name != "Point" {
		t.Errorf("expected name Point, got %q", cls.Name)
	}
	// two declared fields plus two constructor-promoted fields
	if len(cls.Fields) != 4 {
		t.Fatalf("expected 4 fields, got %d: %#v", len(cls.Fields), cls.Fields)
	}
	if cls.Ctor == nil {
		t.Fatal("expected a constructor")
	}
	if len(cls.Ctor.Params) != 2 {
		t.Fatalf("expected 2 constructor params, got %d", len(cls.Ctor.Params))
	}
	if len(cls.Methods) != 1 || cls.Methods[0].Name != "length" {
		t.Fatalf("expected one method named length, got %#v", cls.Methods)
	}
	if cls.Methods[0].ThisType.Name != "Point" {
		t.Errorf("expected method ThisType Point, got %q", cls.Methods[0].ThisType.Name)
	}
}

func TestParseClassWithExtends(t *testing.T) {
	cls, ok := parseOneDecl(t, `class Circle extends Shape { radius: f64; }`).(*ast.ClassDecl)
	if !ok {
		t.Fatalf("expected *ast.ClassDecl")
	}
	if cls.BaseClass != "Shape" {
		t.Errorf("expected base class Shape, got %q", cls.BaseClass)
	}
}

func TestParseStaticMethod(t *testing.T) {
	cls, ok := parseOneDecl(t, `
class Util {
  static double(x: i32): i32 { return x * 2; }
}`).(*ast.ClassDecl)
	if !ok {
		t.Fatalf("expected *ast.ClassDecl")
	}
	if len(cls.Methods) != 1 {
		t.Fatalf("expected 1 method, got %d", len(cls.Methods))
	}
	m := cls.Methods[0]
	if !m.Mods.Static {
		t.Error("expected Static modifier")
	}
	if m.ThisType.Name != "" {
		t.Errorf("expected no ThisType on a static method, got %q", m.ThisType.Name)
	}
}

func TestParseEnumDecl(t *testing.T) {
	e, ok := parseOneDecl(t, `enum Color { Red, Green, Blue = 5 }`).(*ast.EnumDecl)
	if !ok {
		t.Fatalf("expected *ast.EnumDecl")
	}
	if len(e.Members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(e.Members))
	}
	if e.Members[0].Name != "Red" || e.Members[0].Init != nil {
		t.Errorf("expected implicit Red member, got %#v", e.Members[0])
	}
	if e.Members[2].Name != "Blue" || e.Members[2].Init == nil {
		t.Errorf("expected explicit Blue = 5, got %#v", e.Members[2])
	}
}

func TestParseConstEnumDecl(t *testing.T) {
	e, ok := parseOneDecl(t, `const enum Flags { None, All }`).(*ast.EnumDecl)
	if !ok {
		t.Fatalf("expected *ast.EnumDecl")
	}
	if !e.Mods.Const {
		t.Error("expected Const modifier")
	}
}

func TestParseGlobalDecl(t *testing.T) {
	g, ok := parseOneDecl(t, `let counter: i32 = 0;`).(*ast.GlobalDecl)
	if !ok {
		t.Fatalf("expected *ast.GlobalDecl")
	}
	if g.Name != "counter" || g.Type.Name != "i32" {
		t.Fatalf("unexpected decl: %#v", g)
	}
}

func TestParseMultiDeclaratorGlobalWrapsInBlock(t *testing.T) {
	stmt := parseOneDecl(t, `let a: i32 = 1, b: i32 = 2;`)
	b, ok := stmt.(*ast.Block)
	if !ok {
		t.Fatalf("expected *ast.Block wrapping the two declarators, got %T", stmt)
	}
	if len(b.Statements) != 2 {
		t.Fatalf("expected 2 wrapped declarations, got %d", len(b.Statements))
	}
}

func TestParseNamespaceDecl(t *testing.T) {
	ns, ok := parseOneDecl(t, `
namespace Math {
  function square(x: i32): i32 => x * x;
}`).(*ast.NamespaceDecl)
	if !ok {
		t.Fatalf("expected *ast.NamespaceDecl")
	}
	if ns.Name != "Math" {
		t.Errorf("expected name Math, got %q", ns.Name)
	}
	if len(ns.Statements) != 1 {
		t.Fatalf("expected 1 nested statement, got %d", len(ns.Statements))
	}
}

func TestParseImportDecl(t *testing.T) {
	imp, ok := parseOneDecl(t, `import "./util.ts";`).(*ast.ImportDecl)
	if !ok {
		t.Fatalf("expected *ast.ImportDecl")
	}
	if imp.SourcePath != "./util.ts" {
		t.Errorf("expected source path ./util.ts, got %q", imp.SourcePath)
	}
}

func TestParseBuiltinAndInlineDecorators(t *testing.T) {
	fn, ok := parseOneDecl(t, `@builtin @inline function abs(x: i32): i32 { return x; }`).(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("expected *ast.FunctionDecl")
	}
	if !fn.Mods.Builtin || !fn.Mods.Inline {
		t.Errorf("expected Builtin and Inline set, got %#v", fn.Mods)
	}
}

func TestParseOperatorDecorator(t *testing.T) {
	cls, ok := parseOneDecl(t, `
class Vec {
  @operator("+")
  add(other: Vec): Vec { return this; }
}`).(*ast.ClassDecl)
	if !ok {
		t.Fatalf("expected *ast.ClassDecl")
	}
	if len(cls.Methods) != 1 || cls.Methods[0].Mods.Operator != "+" {
		t.Fatalf("expected operator '+' method, got %#v", cls.Methods)
	}
}
