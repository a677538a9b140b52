package compiler

import (
	"fmt"

	"github.com/sunholo/wasmc/internal/ast"
	"github.com/sunholo/wasmc/internal/diagnostics"
	"github.com/sunholo/wasmc/internal/program"
	"github.com/sunholo/wasmc/internal/typesys"
	"github.com/sunholo/wasmc/internal/wasmir"
)

// compileIdentifier resolves n.Name against, in order: the current Flow's
// scoped locals (virtual consts and inline parameter aliases), the current
// function's real locals (including `this` handled by compileThis instead),
// module globals, and enum values — substituting inlined-constant values
// directly rather than emitting a load, per the design's C8.
func (c *Compiler) compileIdentifier(n *ast.IdentExpr) (*wasmir.Expr, typesys.Type) {
	if l, ok := c.currentFlow.LookupScoped(n.Name); ok {
		return wasmir.GetLocal(l.Index, nativeOf(l.Type)), l.Type
	}

	if c.currentFunction != nil {
		for _, l := range c.currentFunction.Locals {
			if l.Name == n.Name {
				return wasmir.GetLocal(l.Index, nativeOf(l.Type)), l.Type
			}
		}
		for i, name := range c.currentFunction.Sig.ParameterNames {
			if name == n.Name {
				idx := i
				if c.currentFunction.Sig.HasThis() {
					idx++
				}
				t := c.currentFunction.Sig.ParameterTypes[i]
				return wasmir.GetLocal(idx, nativeOf(t)), t
			}
		}
	}

	if g, ok := c.Program.LookupGlobal(n.Name); ok {
		return c.compileGlobalReference(g)
	}

	if e, ok := c.Program.Lookup(n.Name); ok {
		if ev, ok := e.(*program.EnumValue); ok {
			return wasmir.Const(wasmir.I32, ev.Value), typesys.MakeI32()
		}
	}

	c.Diags.Error(diagnostics.SEM006, diagnostics.PhaseCompile,
		fmt.Sprintf("unresolved identifier %q", n.Name), rngPtr(n.Pos()))
	return wasmir.Unreachable(), typesys.MakeI32()
}

// compileGlobalReference loads a global, substituting its constant value
// directly when the global is INLINED (const with a precomputed initializer).
func (c *Compiler) compileGlobalReference(g *program.Global) (*wasmir.Expr, typesys.Type) {
	if g.Flags.Has(program.Inlined) && g.ConstIsSet {
		return wasmir.Const(nativeOf(g.Type), g.ConstValue), g.Type
	}
	return wasmir.GetGlobal(g.Qualified, nativeOf(g.Type)), g.Type
}

// compileThis loads local 0 as the enclosing class's instance type. Allocation
// always happens at the `new` call site (see allocate.go's compileNew), so by
// the time any expression inside a method or constructor references `this`,
// the local already holds a valid, fully-allocated instance.
func (c *Compiler) compileThis(n *ast.ThisExpr) (*wasmir.Expr, typesys.Type) {
	t := *c.currentFunction.Sig.ThisType
	return wasmir.GetLocal(0, nativeOf(t)), t
}

// compileSuper resolves to the base type viewed through local 0. Outside a
// derived class this is a semantic error (SEM002).
func (c *Compiler) compileSuper(n *ast.SuperExpr) (*wasmir.Expr, typesys.Type) {
	cls := c.currentFunction.Prototype.OwningClass
	if cls == nil || cls.Base == nil {
		c.Diags.Error(diagnostics.SEM002, diagnostics.PhaseCompile, "'super' used outside a derived class", rngPtr(n.Pos()))
		return wasmir.Unreachable(), typesys.MakeI32()
	}
	t := typesys.MakeReference(cls.Base.Name, false)
	return wasmir.GetLocal(0, nativeOf(t)), t
}
