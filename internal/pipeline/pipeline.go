// Package pipeline wires the lexer/parser, resolver, and compiler core
// together into the single "compile one buffer of source text" operation
// shared by cmd/wasmccli's compile subcommand and internal/repl's session
// loop, matching the design's data flow: parser output feeds the resolver,
// whose resolved program.Program feeds the compiler core.
package pipeline

import (
	"github.com/sunholo/wasmc/internal/ast"
	"github.com/sunholo/wasmc/internal/compiler"
	"github.com/sunholo/wasmc/internal/diagnostics"
	"github.com/sunholo/wasmc/internal/parser"
	"github.com/sunholo/wasmc/internal/resolver"
	"github.com/sunholo/wasmc/internal/wasmir"
)

// Result is the outcome of one compile run. Module is nil whenever Diags
// contains an error-or-worse report from any phase.
type Result struct {
	Module *wasmir.Module
	Diags  []*diagnostics.Report
}

// HasErrors reports whether any diagnostic in the result is error-or-worse
// severity.
func (r Result) HasErrors() bool {
	for _, d := range r.Diags {
		if d.Severity != diagnostics.SeverityWarning.String() {
			return true
		}
	}
	return false
}

// Compile parses source (named path for diagnostic ranges), resolves it into
// a program, and compiles that program. Parsing and resolving share one
// diagnostics.Bag; compiler.New always allocates its own, so the two report
// lists are concatenated into the single list callers render.
func Compile(source, path string, opts compiler.Options) Result {
	diags := diagnostics.NewBag()
	src := parser.Parse(source, path, diags)
	src.IsEntry = true
	if diags.HasErrors() {
		return Result{Diags: diags.Reports}
	}

	prog := resolver.Resolve([]*ast.Source{src}, opts.Target, diags)
	if diags.HasErrors() {
		return Result{Diags: diags.Reports}
	}

	c := compiler.New(opts, prog)
	module := c.Compile(prog)

	all := make([]*diagnostics.Report, 0, len(diags.Reports)+len(c.Diags.Reports))
	all = append(all, diags.Reports...)
	all = append(all, c.Diags.Reports...)

	result := Result{Diags: all}
	if !c.Diags.HasErrors() {
		result.Module = module
	}
	return result
}
