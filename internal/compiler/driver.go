package compiler

import (
	"github.com/sunholo/wasmc/internal/ast"
	"github.com/sunholo/wasmc/internal/flow"
	"github.com/sunholo/wasmc/internal/program"
	"github.com/sunholo/wasmc/internal/typesys"
	"github.com/sunholo/wasmc/internal/wasmir"
)

// startFunctionName is the synthesized function holding module-level
// initialisation code (global initialisers and top-level plain statements).
const startFunctionName = "~start"

// startedGlobalName guards `main` from re-running ~start on a second call,
// per the design's main-triggers-start wiring.
const startedGlobalName = "~started"

// Compile walks prog's sources and produces a finished wasmir.Module, per
// the design's C5: declarations are lowered if either tree-shaking is
// disabled or the declaration is exported (or is `main`) from an entry
// source; imports recursively pull in their target source; plain top-level
// statements accumulate into the synthesized start function.
func (c *Compiler) Compile(prog *program.Program) *wasmir.Module {
	c.Program = prog
	for _, src := range prog.Sources {
		if !src.IsEntry {
			continue
		}
		c.compileSource(src)
	}
	c.finish()
	return c.Module
}

func (c *Compiler) compileSource(src *ast.Source) {
	if c.compiledSources[src] {
		return
	}
	c.compiledSources[src] = true
	for _, stmt := range src.Statements {
		c.compileTopLevelStmt(stmt)
	}
}

func (c *Compiler) compileTopLevelStmt(stmt ast.Stmt) {
	if imp, ok := stmt.(*ast.ImportDecl); ok {
		for _, other := range c.Program.Sources {
			if other.Path == imp.SourcePath {
				c.compileSource(other)
			}
		}
		return
	}
	if decl, ok := stmt.(ast.Decl); ok {
		root := c.Program.Root.Members[decl.DeclName()]
		included := c.Options.NoTreeShaking || decl.IsExported() || decl.DeclName() == "main"
		if included && root != nil {
			c.compileEntity(root)
		}
		return
	}

	c.currentFunction = nil
	if c.currentFlow == nil {
		c.currentFlow = flow.New(typesys.MakeVoid())
	}
	c.startStatements = append(c.startStatements, c.compileStatement(stmt))
}

// finish assembles the synthesized start function (if there is any
// initialisation code, or a user `main` exists), seals the memory layout,
// materialises the function table/exports, and attaches the GC iterateRoots
// helper if any compiled element registered a hook.
func (c *Compiler) finish() {
	if len(c.startStatements) > 0 || c.mainElement != nil {
		body := wasmir.Block(startFunctionName, wasmir.None, c.startStatements...)
		c.Module.AddFunction(wasmir.Function{
			Name: startFunctionName,
			Sig:  wasmir.FuncSig{},
			Body: body,
		})
		if c.mainElement == nil {
			c.Module.StartFunction = startFunctionName
		}
	}

	c.Layout.Seal()
	c.compileExports()

	if c.Builtins.NeedsIterateRoots() {
		c.Module.AddFunction(c.Builtins.BuildIterateRoots())
	}

	c.Module.Memory.Imported = c.Options.ImportMemory
	c.Module.Table.Imported = c.Options.ImportTable
}
