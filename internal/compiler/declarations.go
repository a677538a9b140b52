package compiler

import (
	"fmt"
	"strconv"

	"github.com/sunholo/wasmc/internal/ast"
	"github.com/sunholo/wasmc/internal/diagnostics"
	"github.com/sunholo/wasmc/internal/flow"
	"github.com/sunholo/wasmc/internal/program"
	"github.com/sunholo/wasmc/internal/typesys"
	"github.com/sunholo/wasmc/internal/wasmir"
)

// compileGlobal lowers a module-level (or static class) variable, matching
// the design's memoisation rule: a global already marked Compiled is a
// no-op, so recursive or repeated references never re-emit its initialiser.
// A global whose initializer precomputes to a constant is emitted as a
// constant wasmir.Global instead of start-function code.
func (c *Compiler) compileGlobal(g *program.Global) {
	if g.Flags.Has(program.Compiled) {
		return
	}
	g.Flags.Set(program.Compiled)

	native := nativeOf(g.Type)
	if g.ConstIsSet {
		c.Module.AddGlobal(wasmir.Global{
			Name:     g.Qualified,
			Type:     native,
			Mutable:  !g.Flags.Has(program.Const),
			Init:     wasmir.Const(native, g.ConstValue),
			Exported: c.globalExportName(g),
		})
		return
	}

	zero := g.Type.NativeZero()
	c.Module.AddGlobal(wasmir.Global{
		Name:     g.Qualified,
		Type:     native,
		Mutable:  true,
		Init:     wasmir.Const(native, zero),
		Exported: c.globalExportName(g),
	})
	if g.Initializer != nil {
		c.currentFunction = nil
		c.currentFlow = flow.New(typesys.MakeVoid())
		val, from := c.compileExpressionNatural(g.Initializer)
		val = c.convert(g.Initializer.Pos(), val, from, g.Type, typesys.Implicit, true)
		c.startStatements = append(c.startStatements, wasmir.SetGlobal(g.Qualified, val))
	}
}

// globalExportName computes a global's export name, honouring the design's
// rule that a mutable global may only be exported under the
// FeatureMutableGlobal feature; otherwise SEM007 is raised and the global is
// compiled but left unexported.
func (c *Compiler) globalExportName(g *program.Global) string {
	if !g.Flags.Has(program.Export) {
		return ""
	}
	isConst := g.Flags.Has(program.Const) || g.ConstIsSet
	if !isConst && !c.Options.hasFeature(FeatureMutableGlobal) {
		c.Diags.Error(diagnostics.SEM007, diagnostics.PhaseCompile,
			"a mutable global cannot be exported without the mutable-globals feature", rngPtr(g.Range))
		return ""
	}
	return g.Qualified
}

// compileEnum lowers an enum's members as plain i32 constants folded at
// every reference site (see access.go's compilePropertyAccess); no IR is
// emitted for an enum itself beyond, optionally, its members' constant
// values being computed here once.
func (c *Compiler) compileEnum(e *program.Enum) {
	if e.Flags.Has(program.Compiled) {
		return
	}
	e.Flags.Set(program.Compiled)

	values := map[string]int32{}
	next := int32(0)
	for _, m := range e.Members {
		if m.Initializer != nil {
			if v, ok := foldEnumConst(m.Initializer, values); ok {
				m.Value = v
				m.ValueIsSet = true
			} else {
				c.Diags.Error(diagnostics.SEM008, diagnostics.PhaseCompile,
					fmt.Sprintf("enum member %q initializer is not a compile-time constant", m.Name), rngPtr(m.Range))
			}
		} else {
			m.Value = next
			m.ValueIsSet = true
		}
		next = m.Value + 1
		values[m.Name] = m.Value
	}
}

// foldEnumConst folds an enum member initializer to an i32 constant. Beyond
// the literal/paren/unary shapes foldConstant recognises, it also resolves
// binary arithmetic and references to earlier members of the same enum
// (looked up in prior), matching TypeScript's rule that a const enum member
// may be defined in terms of any member declared before it.
func foldEnumConst(node ast.Expr, prior map[string]int32) (int32, bool) {
	switch n := node.(type) {
	case *ast.ParenExpr:
		return foldEnumConst(n.X, prior)
	case *ast.UnaryExpr:
		v, ok := foldEnumConst(n.X, prior)
		if !ok {
			return 0, false
		}
		switch n.Op {
		case ast.OpMinus:
			return -v, true
		case ast.OpPlus:
			return v, true
		case ast.OpBitNot:
			return ^v, true
		default:
			return 0, false
		}
	case *ast.LiteralExpr:
		if n.Kind != ast.LitInteger {
			return 0, false
		}
		v, err := strconv.ParseInt(n.Text, 0, 64)
		if err != nil {
			return 0, false
		}
		return int32(v), true
	case *ast.IdentExpr:
		v, ok := prior[n.Name]
		return v, ok
	case *ast.BinaryExpr:
		l, ok := foldEnumConst(n.Left, prior)
		if !ok {
			return 0, false
		}
		r, ok := foldEnumConst(n.Right, prior)
		if !ok {
			return 0, false
		}
		switch n.Op {
		case ast.OpAdd:
			return l + r, true
		case ast.OpSub:
			return l - r, true
		case ast.OpMul:
			return l * r, true
		case ast.OpDiv:
			if r == 0 {
				return 0, false
			}
			return l / r, true
		case ast.OpAnd:
			return l & r, true
		case ast.OpOr:
			return l | r, true
		case ast.OpXor:
			return l ^ r, true
		case ast.OpShl:
			return l << uint32(r), true
		case ast.OpShr:
			return l >> uint32(r), true
		default:
			return 0, false
		}
	default:
		return 0, false
	}
}

// compileFunction lowers one resolved program.Function (the resolver is
// responsible for having instantiated one program.Function per distinct
// type-argument combination before this runs, per the design's data model);
// each is compiled at most once, memoised via its own Compiled flag.
func (c *Compiler) compileFunction(f *program.Function) {
	if f.Flags.Has(program.Compiled) {
		return
	}
	f.Flags.Set(program.Compiled)

	if f.Flags.Has(program.Ambient) {
		return
	}
	if f.Decorators&program.DecoratorExternal != 0 {
		f.Flags.Set(program.ModuleImport)
		return
	}

	savedFunction := c.currentFunction
	savedFlow := c.currentFlow
	c.currentFunction = f
	c.currentFlow = flow.New(f.Sig.ReturnType)
	f.Flow = c.currentFlow

	var body *wasmir.Expr
	if f.Body != nil {
		body = c.compileStatement(f.Body)
	} else {
		body = wasmir.Nop()
	}
	if f.Name == "main" && !f.Sig.HasThis() {
		body = c.wrapMainBody(body)
	}

	params := make([]wasmir.NativeType, 0, f.Sig.MaxOperands()+1)
	if f.Sig.HasThis() {
		params = append(params, nativeOf(*f.Sig.ThisType))
	}
	for _, t := range f.Sig.ParameterTypes {
		params = append(params, nativeOf(t))
	}
	locals := make([]wasmir.Local, len(f.Locals))
	for i, l := range f.Locals {
		locals[i] = wasmir.Local{Type: nativeOf(l.Type)}
	}

	exportName := ""
	if f.Flags.Has(program.Export) {
		exportName = f.Qualified
	}
	c.Module.AddFunction(wasmir.Function{
		Name:     f.Qualified,
		Sig:      wasmir.FuncSig{Params: params, Result: nativeOf(f.Sig.ReturnType)},
		Locals:   locals,
		Body:     body,
		Exported: exportName,
	})

	if f.Name == "main" && !f.Sig.HasThis() {
		c.mainElement = f
	}

	c.currentFunction = savedFunction
	c.currentFlow = savedFlow
}

// wrapMainBody implements the design's rule that `main` boots the module's
// start function on its own, for hosts that call an exported `main` instead
// of relying on the WebAssembly start section: `if (~started == 0) {
// call(~start); ~started = 1 }`, spliced before the user body.
func (c *Compiler) wrapMainBody(body *wasmir.Expr) *wasmir.Expr {
	if !c.startedGlobalCreated {
		c.startedGlobalCreated = true
		c.Module.AddGlobal(wasmir.Global{
			Name: startedGlobalName, Type: wasmir.I32, Mutable: true,
			Init: wasmir.Const(wasmir.I32, int32(0)),
		})
	}
	guard := wasmir.If(wasmir.None,
		wasmir.Binary(wasmir.EqI32, wasmir.I32,
			wasmir.GetGlobal(startedGlobalName, wasmir.I32), wasmir.Const(wasmir.I32, int32(0))),
		wasmir.Block("", wasmir.None,
			wasmir.Call(startFunctionName, wasmir.None),
			wasmir.SetGlobal(startedGlobalName, wasmir.Const(wasmir.I32, int32(1))),
		),
		wasmir.Nop(),
	)
	return wasmir.Block("", body.Type, guard, body)
}

// compileConstructor lowers a class's constructor. Allocation itself happens
// at each `new` call site (see allocate.go's compileNew); the constructor
// body runs against an already-allocated `this` and is preceded here by a
// synthesized prologue that stores each declared field: from the matching
// constructor parameter for `constructor(public x: T)`-promoted fields, or
// by evaluating the field's own initializer expression otherwise. A class
// with no base (or whose base fields were already stored by an explicit
// `super(...)` call inside the body) need not repeat that work, so only
// cls's own Fields (not the inherited ones already offset into Base) are
// stamped here.
func (c *Compiler) compileConstructor(cls *program.Class) {
	f := cls.Ctor
	if f == nil {
		return
	}
	if f.Flags.Has(program.Compiled) {
		return
	}
	f.Flags.Set(program.Compiled)

	savedFunction := c.currentFunction
	savedFlow := c.currentFlow
	c.currentFunction = f
	c.currentFlow = flow.New(f.Sig.ReturnType)
	f.Flow = c.currentFlow

	prologue := c.compileFieldPrologue(cls, f)

	var body *wasmir.Expr
	if f.Body != nil {
		body = c.compileStatement(f.Body)
	} else {
		body = wasmir.Nop()
	}
	combined := wasmir.Block("", wasmir.None, append(prologue, body)...)

	params := make([]wasmir.NativeType, 0, f.Sig.MaxOperands()+1)
	params = append(params, nativeOf(*f.Sig.ThisType))
	for _, t := range f.Sig.ParameterTypes {
		params = append(params, nativeOf(t))
	}
	locals := make([]wasmir.Local, len(f.Locals))
	for i, l := range f.Locals {
		locals[i] = wasmir.Local{Type: nativeOf(l.Type)}
	}

	c.Module.AddFunction(wasmir.Function{
		Name:   f.Qualified,
		Sig:    wasmir.FuncSig{Params: params, Result: wasmir.None},
		Locals: locals,
		Body:   combined,
	})

	c.currentFunction = savedFunction
	c.currentFlow = savedFlow
}

// compileFieldPrologue builds the store statements that populate cls's own
// fields from the constructor's parameters/initializers, evaluated with
// `this` bound to local 0 (the constructor's receiver).
func (c *Compiler) compileFieldPrologue(cls *program.Class, ctor *program.Function) []*wasmir.Expr {
	thisType := *ctor.Sig.ThisType
	var stmts []*wasmir.Expr
	for _, field := range cls.Fields {
		var value *wasmir.Expr
		switch {
		case field.CtorParamIdx >= 0:
			idx := field.CtorParamIdx + 1 // +1 for the `this` slot at 0
			value = wasmir.GetLocal(idx, nativeOf(field.Type))
		case field.Initializer != nil:
			expr, from := c.compileExpressionNatural(field.Initializer)
			value = c.convert(field.Initializer.Pos(), expr, from, field.Type, typesys.Implicit, true)
		default:
			continue
		}
		stmts = append(stmts, wasmir.Store(field.Offset, wasmir.GetLocal(0, nativeOf(thisType)), value))
	}
	return stmts
}

// compileClass lowers every field offset (already computed by the resolver
// into Field.Offset), the constructor, and every method, in that order,
// memoised via the class's own Compiled flag so a class referenced from
// multiple call sites is only processed once.
func (c *Compiler) compileClass(cls *program.Class) {
	if cls.Flags.Has(program.Compiled) {
		return
	}
	cls.Flags.Set(program.Compiled)
	c.compiledClasses = append(c.compiledClasses, cls)

	if cls.Base != nil {
		c.compileClass(cls.Base)
	}
	c.compileConstructor(cls)
	for _, m := range cls.Methods {
		c.compileFunction(m)
	}
	for _, p := range cls.Properties {
		if p.Getter != nil {
			c.compileFunction(p.Getter)
		}
		if p.Setter != nil {
			c.compileFunction(p.Setter)
		}
	}
}

// compileNamespace walks a namespace's members, lowering each declaration
// kind through its dedicated compile* entry point; namespaces themselves
// never emit IR, matching the design's treatment of them as pure scoping.
func (c *Compiler) compileNamespace(ns *program.Namespace) {
	for _, e := range ns.Members {
		c.compileEntity(e)
	}
}

// compileEntity dispatches a program.Entity to its declaration-lowering
// function, used both by compileNamespace and by the driver's top-level
// walk over program.Root.
func (c *Compiler) compileEntity(e program.Entity) {
	switch v := e.(type) {
	case *program.Global:
		c.compileGlobal(v)
	case *program.Enum:
		c.compileEnum(v)
	case *program.Function:
		c.compileFunction(v)
	case *program.FunctionPrototype:
		if fn, ok := c.Program.Lookup(v.Qualified); ok {
			c.compileEntity(fn)
		}
	case *program.Class:
		c.compileClass(v)
	case *program.ClassPrototype:
		if cls, ok := c.Program.Lookup(v.Qualified); ok {
			c.compileEntity(cls)
		}
	case *program.Namespace:
		c.compileNamespace(v)
	}
}
