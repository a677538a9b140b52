package resolver

import (
	"github.com/sunholo/wasmc/internal/ast"
	"github.com/sunholo/wasmc/internal/program"
	"github.com/sunholo/wasmc/internal/typesys"
)

// operatorSymbols maps an `@operator("...")` decorator's symbol to the
// binary OperatorKind it denotes; a handful of symbols are ambiguous between
// a binary and a unary sense (`+`, `-`), disambiguated in operatorKindFor by
// the method's declared parameter count, matching how the parser itself
// cannot know the arity from the symbol alone.
var operatorSymbols = map[string]program.OperatorKind{
	"+": program.OpAdd, "-": program.OpSub, "*": program.OpMul,
	"/": program.OpDiv, "%": program.OpRem, "**": program.OpPow,
	"==": program.OpEq, "!=": program.OpNe,
	"<": program.OpLt, "<=": program.OpLe, ">": program.OpGt, ">=": program.OpGe,
	"&": program.OpBitwiseAnd, "|": program.OpBitwiseOr, "^": program.OpBitwiseXor,
	"~": program.OpBitwiseNot,
	"<<": program.OpShl, ">>": program.OpShr, ">>>": program.OpShrU,
	"!": program.OpNot, "++": program.OpPrefixInc, "--": program.OpPrefixDec,
	"[]": program.OpIndexedGet, "[]=": program.OpIndexedSet,
}

var unaryOperatorSymbols = map[string]program.OperatorKind{
	"+": program.OpPlus, "-": program.OpMinus,
}

// operatorKindFor resolves decl's @operator symbol (if any) to the concrete
// OperatorKind, disambiguating `+`/`-` by arity: zero declared parameters
// means the method implements the unary sense.
func operatorKindFor(decl *ast.FunctionDecl) program.OperatorKind {
	sym := decl.Mods.Operator
	if sym == "" {
		return program.OpNone
	}
	if len(decl.Params) == 0 {
		if k, ok := unaryOperatorSymbols[sym]; ok {
			return k
		}
	}
	if k, ok := operatorSymbols[sym]; ok {
		return k
	}
	return program.OpNone
}

// instantiateFunction monomorphises proto against typeArgs (nil/empty for a
// non-generic function), memoised by (prototype, type-argument) combination.
// outerSubst carries the owning class's own type-parameter substitution (so
// a method of Box<T> sees what T resolved to for this instantiation of Box);
// it is nil for free functions. The first instantiation of a given prototype
// is additionally registered under proto's own qualified name in the
// program's lookup table, so that internal/compiler's plain-identifier call
// resolution (which looks up free functions and methods by name, not by
// type-argument combination) finds it — see the package doc comment for why
// this is the resolver's deliberate simplification of full generic
// monomorphisation.
func (r *resolver) instantiateFunction(proto *program.FunctionPrototype, typeArgs []typesys.Type, outerSubst map[string]typesys.Type) *program.Function {
	key := instantiationKey(proto.Qualified, typeArgs)
	if f, ok := r.funcInstances[key]; ok {
		return f
	}

	subst := map[string]typesys.Type{}
	for name, t := range outerSubst {
		subst[name] = t
	}
	for i, name := range proto.TypeParams {
		if i < len(typeArgs) {
			subst[name] = typeArgs[i]
		}
	}

	decl := proto.Decl
	sig := program.Signature{}
	switch {
	case proto.OwningClass != nil:
		// Set by classes.go before calling in here, to avoid instantiateClass
		// and instantiateFunction recursing into each other while the class
		// they both depend on is still under construction.
		th := typesys.MakeReference(proto.OwningClass.Qualified, false)
		sig.ThisType = &th
	case decl.ThisType.Name != "":
		th := r.resolveTypeNode(decl.ThisType, subst)
		sig.ThisType = &th
	}
	for _, p := range decl.Params {
		t := r.resolveTypeNode(p.Type, subst)
		sig.ParameterTypes = append(sig.ParameterTypes, t)
		sig.ParameterNames = append(sig.ParameterNames, p.Name)
		sig.Defaults = append(sig.Defaults, p.DefaultValue)
		if p.DefaultValue == nil {
			sig.RequiredCount++
		}
	}
	sig.ReturnType = typesys.MakeVoid()
	if decl.ReturnType.Name != "" {
		sig.ReturnType = r.resolveTypeNode(decl.ReturnType, subst)
	} else if decl.Name == "main" {
		sig.ReturnType = typesys.MakeVoid()
	}

	f := program.NewFunction(proto, sig)
	f.Kind = program.KindFunction
	f.TypeArgs = subst
	f.Body = decl.Body
	if proto.OwningClass != nil {
		f.Flags.Set(program.Instance)
	} else if decl.Name == "main" {
		f.Flags.Set(program.Main)
	}
	if sig.HasThis() {
		f.Flags.Set(program.Instance)
	}
	if len(typeArgs) > 0 {
		f.Qualified = mangleName(proto.Qualified, typeArgs)
	}

	r.funcInstances[key] = f
	r.prog.Register(f)
	// compileEntity falls back to Program.Lookup(proto.Qualified) when it
	// encounters a bare FunctionPrototype in a namespace; keep that slot
	// pointing at the first (for a non-generic function, the only)
	// instantiation so that path resolves too.
	if f.Qualified != proto.Qualified {
		if _, exists := r.prog.Lookup(proto.Qualified); !exists {
			first := *f
			first.Qualified = proto.Qualified
			r.prog.Register(&first)
		}
	}
	return f
}

// instantiationKey builds the memoisation key for one (prototype, concrete
// type arguments) combination.
func instantiationKey(qualified string, typeArgs []typesys.Type) string {
	return mangleName(qualified, typeArgs)
}

func mangleName(qualified string, typeArgs []typesys.Type) string {
	if len(typeArgs) == 0 {
		return qualified
	}
	s := qualified + "<"
	for i, t := range typeArgs {
		if i > 0 {
			s += ","
		}
		s += t.String()
	}
	return s + ">"
}
