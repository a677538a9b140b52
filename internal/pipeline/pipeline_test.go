package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/wasmc/internal/compiler"
	"github.com/sunholo/wasmc/internal/typesys"
)

func TestCompileValidProgram(t *testing.T) {
	src := `export function main(): i32 { return 42; }`

	result := Compile(src, "<test>", compiler.Options{Target: typesys.Wasm32})

	require.False(t, result.HasErrors(), "%v", result.Diags)
	require.NotNil(t, result.Module)
	assert.NotEmpty(t, result.Module.Functions)

	found := false
	for _, fn := range result.Module.Functions {
		if fn.Name == "main" {
			found = true
		}
	}
	assert.True(t, found, "expected a compiled main function")
}

func TestCompileParseError(t *testing.T) {
	result := Compile(`function (: i32 {`, "<test>", compiler.Options{})
	assert.True(t, result.HasErrors())
	assert.Nil(t, result.Module)
}

func TestCompileUnresolvedIdentifier(t *testing.T) {
	src := `export function main(): i32 { return doesNotExist(); }`
	result := Compile(src, "<test>", compiler.Options{})
	assert.True(t, result.HasErrors())
	assert.Nil(t, result.Module)
}
