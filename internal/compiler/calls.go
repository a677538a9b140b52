package compiler

import (
	"fmt"

	"github.com/sunholo/wasmc/internal/ast"
	"github.com/sunholo/wasmc/internal/diagnostics"
	"github.com/sunholo/wasmc/internal/functable"
	"github.com/sunholo/wasmc/internal/program"
	"github.com/sunholo/wasmc/internal/typesys"
	"github.com/sunholo/wasmc/internal/wasmir"
)

// compileCallExpression implements the design's five call-lowering paths: a
// recognised builtin name, a free-function identifier, a `super(...)` call to
// the base constructor, an instance-method property access, and (falling
// back) an indirect call through a value of function type. Generic callees are resolved to a concrete program.Function
// by the out-of-scope resolver before compilation reaches here; this
// component only ever sees already-monomorphised Functions.
func (c *Compiler) compileCallExpression(n *ast.CallExpr) (*wasmir.Expr, typesys.Type) {
	if ident, ok := n.Callee.(*ast.IdentExpr); ok {
		if out, outType, ok := c.compileBuiltinCall(ident.Name, n); ok {
			return out, outType
		}
		if e, ok := c.Program.Lookup(ident.Name); ok {
			if f, isFn := e.(*program.Function); isFn {
				return c.compileDirectCall(f, nil, n)
			}
			// A bare FunctionPrototype with no registered instantiation means
			// the resolver never monomorphised it (an uncalled generic); fall
			// through to the unresolved diagnostic below.
		}
		c.Diags.Error(diagnostics.SEM006, diagnostics.PhaseCompile,
			fmt.Sprintf("unresolved function %q", ident.Name), rngPtr(n.Pos()))
		return wasmir.Unreachable(), typesys.MakeI32()
	}

	if _, ok := n.Callee.(*ast.SuperExpr); ok {
		cls := c.currentFunction.Prototype.OwningClass
		if cls == nil || cls.Base == nil || cls.Base.Ctor == nil {
			c.Diags.Error(diagnostics.SEM002, diagnostics.PhaseCompile,
				"'super' call outside a derived class constructor", rngPtr(n.Pos()))
			return wasmir.Unreachable(), typesys.MakeI32()
		}
		thisExpr := wasmir.GetLocal(0, nativeOf(*c.currentFunction.Sig.ThisType))
		return c.compileDirectCall(cls.Base.Ctor, thisExpr, n)
	}

	if pa, ok := n.Callee.(*ast.PropertyAccessExpr); ok {
		thisExpr, xType := c.compileExpressionNatural(pa.X)
		if xType.IsReference() {
			cls, ok := c.Program.LookupClass(xType.ClassName)
			if !ok {
				c.Diags.Error(diagnostics.SEM006, diagnostics.PhaseCompile,
					fmt.Sprintf("unresolved class %q", xType.ClassName), rngPtr(n.Pos()))
				return wasmir.Unreachable(), typesys.MakeI32()
			}
			method, ok := cls.MethodByName(pa.Name)
			if !ok {
				c.Diags.Error(diagnostics.SEM006, diagnostics.PhaseCompile,
					fmt.Sprintf("unresolved method %q on class %q", pa.Name, xType.ClassName), rngPtr(n.Pos()))
				return wasmir.Unreachable(), typesys.MakeI32()
			}
			return c.compileDirectCall(method, thisExpr, n)
		}
	}

	return c.compileIndirectCall(n)
}

// compileBuiltinCall recognises the small fixed set of intrinsic free
// functions the builtins registry implements by name, per the design's
// statement that builtin calls route through that standalone collaborator
// rather than through ordinary function resolution.
func (c *Compiler) compileBuiltinCall(name string, n *ast.CallExpr) (*wasmir.Expr, typesys.Type, bool) {
	switch name {
	case "abort":
		msg := ""
		if len(n.Args) > 0 {
			if lit, ok := n.Args[0].(*ast.LiteralExpr); ok && lit.Kind == ast.LitString {
				msg = lit.Text
			}
		}
		return c.Builtins.Abort(msg), typesys.MakeVoid(), true
	default:
		return nil, typesys.Type{}, false
	}
}

// checkCallSignature validates argc against sig's required/optional window,
// emitting TYP003 on mismatch. It returns the number of arguments actually
// supplied, clamped to the signature's max for downstream indexing safety.
func (c *Compiler) checkCallSignature(sig *program.Signature, argc int, pos ast.Range) int {
	max := sig.MaxOperands()
	if argc < sig.RequiredCount || argc > max {
		c.Diags.Error(diagnostics.TYP003, diagnostics.PhaseCompile,
			fmt.Sprintf("expected between %d and %d arguments, got %d", sig.RequiredCount, max, argc), rngPtr(pos))
	}
	if argc > max {
		return max
	}
	return argc
}

// compileDirectCall lowers a statically-known callee. thisArg is nil for free
// functions. Arguments are compiled and converted to the callee's declared
// parameter types. Constant arguments get no special treatment: every
// argument is compiled and passed as an ordinary operand.
func (c *Compiler) compileDirectCall(f *program.Function, thisArg *wasmir.Expr, n *ast.CallExpr) (*wasmir.Expr, typesys.Type) {
	argc := c.checkCallSignature(&f.Sig, len(n.Args), n.Pos())

	argExprs := make([]*wasmir.Expr, argc)
	for i := 0; i < argc; i++ {
		expr, t := c.compileExpressionNatural(n.Args[i])
		argExprs[i] = c.convert(n.Args[i].Pos(), expr, t, f.Sig.ParameterTypes[i], typesys.Implicit, true)
	}

	var out *wasmir.Expr
	if argc == f.Sig.MaxOperands() {
		out = c.makeCallDirect(f, thisArg, argExprs)
	} else {
		out = c.compileOptionalArgCall(f, thisArg, argExprs, argc)
	}
	c.currentType = f.Sig.ReturnType
	return out, f.Sig.ReturnType
}

// compileOptionalArgCall routes a call with fewer arguments than the
// callee's maximum through the trampoline described in the design's C4: the
// trampoline's signature is identical to the original function's, so missing
// trailing arguments are padded with neutral placeholder values (the
// trampoline overwrites them with the declared defaults before the original
// body ever observes them), and the caller stamps `~argc` immediately before
// the call so the trampoline's dispatch switch sees the true count.
func (c *Compiler) compileOptionalArgCall(f *program.Function, thisArg *wasmir.Expr, argExprs []*wasmir.Expr, argc int) *wasmir.Expr {
	entry := c.functableEntry(f)
	c.Table.EnsureEntry(entry, c.defaultInitializer(f))
	functable.EnsureArgcGlobal(c.Module)

	full := make([]*wasmir.Expr, f.Sig.MaxOperands())
	for i := range full {
		if i < argc {
			full[i] = argExprs[i]
		} else {
			full[i] = wasmir.Const(nativeOf(f.Sig.ParameterTypes[i]), f.Sig.ParameterTypes[i].NativeZero())
		}
	}
	operands := full
	if thisArg != nil {
		operands = append([]*wasmir.Expr{thisArg}, full...)
	}

	setArgc := wasmir.SetGlobal("~argc", wasmir.Const(wasmir.I32, int32(argc)))
	call := wasmir.Call(f.Qualified+"|trampoline", nativeOf(f.Sig.ReturnType), operands...)
	return wasmir.Block("", nativeOf(f.Sig.ReturnType), setArgc, call)
}

// functableEntry adapts a resolved Function into the leaf functable.Entry
// view, per the design's note that the compiler supplies this adapter so
// internal/functable stays independent of the program model.
func (c *Compiler) functableEntry(f *program.Function) functable.Entry {
	params := make([]wasmir.NativeType, len(f.Sig.ParameterTypes))
	for i, t := range f.Sig.ParameterTypes {
		params[i] = nativeOf(t)
	}
	sig := wasmir.FuncSig{Params: params, Result: nativeOf(f.Sig.ReturnType)}
	if f.Sig.HasThis() {
		sig.Params = append([]wasmir.NativeType{nativeOf(*f.Sig.ThisType)}, sig.Params...)
	}
	return functable.Entry{
		Name:    f.Qualified,
		Sig:     sig,
		MinArgs: f.Sig.RequiredCount,
		MaxArgs: f.Sig.MaxOperands(),
		HasThis: f.Sig.HasThis(),
	}
}

// defaultInitializer builds the functable.Initializer callback that compiles
// one optional parameter's default-value expression, reusing the enclosing
// call's compilation context. The resolver accepts any expression as a
// default; it is compiled as is, in whatever function and flow are current.
func (c *Compiler) defaultInitializer(f *program.Function) functable.Initializer {
	return func(paramIndex int) *wasmir.Expr {
		t := f.Sig.ParameterTypes[paramIndex]
		def := f.Sig.Defaults[paramIndex]
		if def == nil {
			return wasmir.Const(nativeOf(t), t.NativeZero())
		}
		expr, from := c.compileExpressionNatural(def)
		return c.convert(def.Pos(), expr, from, t, typesys.Implicit, true)
	}
}

// makeCallDirect emits a direct call to f by its mangled name, prefixing
// thisArg onto args when f takes an instance receiver. Functions flagged
// ModuleImport (external declarations) route through CallImport instead of
// Call.
func (c *Compiler) makeCallDirect(f *program.Function, thisArg *wasmir.Expr, args []*wasmir.Expr) *wasmir.Expr {
	operands := args
	if thisArg != nil {
		operands = append([]*wasmir.Expr{thisArg}, args...)
	}
	result := nativeOf(f.Sig.ReturnType)
	if f.Flags.Has(program.ModuleImport) {
		return wasmir.CallImport(f.ExternalModule+"."+f.ExternalName, result, operands...)
	}
	return wasmir.Call(f.Qualified, result, operands...)
}

// makeCallIndirect emits a call through the function table at runtime index
// indexExpr, type-checked against typeKey (the callee's mangled signature
// key), per the design's C9 indirect-call path.
func (c *Compiler) makeCallIndirect(typeKey string, result wasmir.NativeType, indexExpr *wasmir.Expr, args []*wasmir.Expr) *wasmir.Expr {
	return wasmir.CallIndirect(typeKey, result, indexExpr, args...)
}

// compileIndirectCall lowers a call whose callee is a first-class function
// value (a local/global holding a table index) rather than a statically
// known declaration. The reduced language surface this core targets only
// ever produces such values from a function-typed parameter or variable, so
// the callee expression itself compiles to the i32 table index directly.
func (c *Compiler) compileIndirectCall(n *ast.CallExpr) (*wasmir.Expr, typesys.Type) {
	calleeExpr, calleeType := c.compileExpressionNatural(n.Callee)
	if !calleeType.IsReference() || calleeType.ClassName != "Function" {
		c.Diags.Error(diagnostics.TYP004, diagnostics.PhaseCompile,
			"callee is not a function value", rngPtr(n.Pos()))
		return wasmir.Unreachable(), typesys.MakeI32()
	}

	argExprs := make([]*wasmir.Expr, len(n.Args))
	for i, a := range n.Args {
		argExprs[i], _ = c.compileExpressionNatural(a)
	}

	typeKey := fmt.Sprintf("indirect/%d", len(n.Args))
	out := c.makeCallIndirect(typeKey, wasmir.I32, calleeExpr, argExprs)
	c.currentType = typesys.MakeI32()
	return out, typesys.MakeI32()
}
