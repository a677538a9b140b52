package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sunholo/wasmc/internal/compiler"
	"github.com/sunholo/wasmc/internal/typesys"
)

func newSession() *REPL {
	return New(Config{Options: compiler.Options{Target: typesys.Wasm32}, Version: "test"})
}

func TestEvalLineAcceptsValidDeclaration(t *testing.T) {
	r := newSession()
	var out bytes.Buffer

	r.evalLine(`export function main(): i32 { return 1; }`, &out)

	assert.Contains(t, out.String(), "OK")
	assert.Len(t, r.lines, 1)
}

func TestEvalLineRejectsAndRollsBackInvalidInput(t *testing.T) {
	r := newSession()
	var out bytes.Buffer

	r.evalLine(`export function main(): i32 { return doesNotExist(); }`, &out)

	assert.Contains(t, strings.ToUpper(out.String()), "ERROR")
	assert.Empty(t, r.lines)
}

func TestEvalLineBuildsOnPriorLines(t *testing.T) {
	r := newSession()
	var out bytes.Buffer

	r.evalLine(`function helper(): i32 { return 7; }`, &out)
	assertNoErrorOutput(t, out.String())
	out.Reset()

	r.evalLine(`export function main(): i32 { return helper(); }`, &out)
	assert.Contains(t, out.String(), "OK")
	assert.Len(t, r.lines, 2)
}

func assertNoErrorOutput(t *testing.T, s string) {
	t.Helper()
	assert.NotContains(t, strings.ToUpper(s), "ERROR")
}

func TestHandleCommandReset(t *testing.T) {
	r := newSession()
	r.lines = []string{"export function main(): i32 { return 1; }"}
	var out bytes.Buffer

	quit := r.handleCommand(":reset", &out)

	assert.False(t, quit)
	assert.Empty(t, r.lines)
	assert.Contains(t, out.String(), "reset")
}

func TestHandleCommandQuit(t *testing.T) {
	r := newSession()
	var out bytes.Buffer

	assert.True(t, r.handleCommand(":quit", &out))
}

func TestHandleCommandHistory(t *testing.T) {
	r := newSession()
	r.history = []string{"a", "b"}
	var out bytes.Buffer

	r.handleCommand(":history", &out)

	assert.Contains(t, out.String(), "a")
	assert.Contains(t, out.String(), "b")
}
