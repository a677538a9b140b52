package parser

import (
	"testing"

	"github.com/sunholo/wasmc/internal/ast"
)

func paramType(t *testing.T, typeAnnotation string) ast.TypeNode {
	t.Helper()
	fn := parseOneDecl(t, "function f(x: "+typeAnnotation+") {}").(*ast.FunctionDecl)
	return fn.Params[0].Type
}

func TestParseSimpleType(t *testing.T) {
	tn := paramType(t, "i32")
	if tn.Name != "i32" || len(tn.TypeArgs) != 0 || tn.Nullable {
		t.Fatalf("unexpected type node: %#v", tn)
	}
}

func TestParseNullableType(t *testing.T) {
	tn := paramType(t, "i32 | null")
	if !tn.Nullable {
		t.Fatalf("expected Nullable, got %#v", tn)
	}
}

func TestParseGenericType(t *testing.T) {
	tn := paramType(t, "Array<i32>")
	if tn.Name != "Array" || len(tn.TypeArgs) != 1 || tn.TypeArgs[0].Name != "i32" {
		t.Fatalf("unexpected type node: %#v", tn)
	}
}

func TestParseNestedGenericTypeClosesDoubleAngle(t *testing.T) {
	tn := paramType(t, "Array<Array<i32>>")
	if tn.Name != "Array" || len(tn.TypeArgs) != 1 {
		t.Fatalf("unexpected outer type node: %#v", tn)
	}
	inner := tn.TypeArgs[0]
	if inner.Name != "Array" || len(inner.TypeArgs) != 1 || inner.TypeArgs[0].Name != "i32" {
		t.Fatalf("unexpected inner type node: %#v", inner)
	}
}

func TestParseMultiArgGenericType(t *testing.T) {
	tn := paramType(t, "Map<string, i32>")
	if tn.Name != "Map" || len(tn.TypeArgs) != 2 {
		t.Fatalf("unexpected type node: %#v", tn)
	}
	if tn.TypeArgs[0].Name != "string" || tn.TypeArgs[1].Name != "i32" {
		t.Fatalf("unexpected type args: %#v", tn.TypeArgs)
	}
}

func TestParseTypeParamList(t *testing.T) {
	fn := parseOneDecl(t, "function identity<T, U>(x: T): U { return x as U; }").(*ast.FunctionDecl)
	if len(fn.Mods.Generic) != 2 || fn.Mods.Generic[0] != "T" || fn.Mods.Generic[1] != "U" {
		t.Fatalf("unexpected generic params: %#v", fn.Mods.Generic)
	}
}

func TestParseReturnTypeDefaultsToZeroValue(t *testing.T) {
	fn := parseOneDecl(t, "function f() {}").(*ast.FunctionDecl)
	if fn.ReturnType.Name != "" {
		t.Fatalf("expected no declared return type, got %#v", fn.ReturnType)
	}
}
