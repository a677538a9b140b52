// Package resolver implements the design's "out of scope" resolver
// collaborator: it binds the parser's ast.Source trees to program.Element
// instances, builds Signatures and class layouts, and monomorphises generic
// functions/classes against the concrete type arguments actually used in the
// program, so that internal/compiler only ever sees an already-resolved
// program.Program, exactly as the design's data flow describes.
//
// This is a deliberately scaled-down resolver (the design calls it an
// external collaborator whose interface, not implementation, the core
// depends on): it supports the language surface internal/parser accepts,
// direct single-base inheritance, and single-instantiation generics (the
// first concrete type argument combination seen for a given prototype is the
// one registered under its simple name, matching how internal/compiler looks
// up free functions and classes by plain identifier). See DESIGN.md for the
// reasoning behind this simplification.
package resolver

import (
	"fmt"

	"github.com/sunholo/wasmc/internal/ast"
	"github.com/sunholo/wasmc/internal/diagnostics"
	"github.com/sunholo/wasmc/internal/program"
	"github.com/sunholo/wasmc/internal/typesys"
)

// resolver carries the shared state of one resolution pass, mirroring how
// internal/compiler.Compiler bundles its own per-compilation mutable state.
type resolver struct {
	prog   *program.Program
	diags  *diagnostics.Bag
	target typesys.Target

	classProtos map[string]*program.ClassPrototype
	funcProtos  map[string]*program.FunctionPrototype

	classInstances map[string]*program.Class
	funcInstances  map[string]*program.Function

	// classResolving tracks instantiation keys currently being built, purely
	// to turn a base-class cycle into a RES004 diagnostic instead of a stack
	// overflow; instantiateClass itself is re-entry safe via classInstances.
	classResolving map[string]bool

	hasAnyClass bool
}

// Resolve binds sources into a fully-resolved program.Program. Sources whose
// IsEntry flag is set are what the driver's tree-shaking walk starts from;
// every source is still registered so ImportDecl can find its target.
func Resolve(sources []*ast.Source, target typesys.Target, diags *diagnostics.Bag) *program.Program {
	r := &resolver{
		prog:           program.NewProgram(),
		diags:          diags,
		target:         target,
		classProtos:    map[string]*program.ClassPrototype{},
		funcProtos:     map[string]*program.FunctionPrototype{},
		classInstances: map[string]*program.Class{},
		funcInstances:  map[string]*program.Function{},
	}
	r.prog.Sources = sources

	for _, src := range sources {
		r.declarePass(r.prog.Root, src.Statements)
	}
	for _, src := range sources {
		if hasAnyClassDecl(src.Statements) {
			r.hasAnyClass = true
		}
	}

	for _, src := range sources {
		r.resolvePass(r.prog.Root, src.Statements)
	}

	r.instantiateGenericUsages(sources)

	return r.prog
}

func hasAnyClassDecl(stmts []ast.Stmt) bool {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.ClassDecl:
			return true
		case *ast.NamespaceDecl:
			if hasAnyClassDecl(n.Statements) {
				return true
			}
		}
	}
	return false
}

// qualify joins a namespace-qualified prefix and a simple name, matching the
// design's default import-mangling rule (module name defaults to the
// containing namespace's simple name).
func qualify(ns *program.Namespace, name string) string {
	if ns == nil || ns.Name == "" {
		return name
	}
	return ns.Qualified + "." + name
}

func flagsFromModifiers(m ast.Modifiers) program.Flags {
	var f program.Flags
	if m.Export {
		f.Set(program.Export)
	}
	if m.Static {
		f.Set(program.Static)
	}
	if m.Const {
		f.Set(program.Const)
	}
	if m.Readonly {
		f.Set(program.Readonly)
	}
	if m.Private {
		f.Set(program.Private)
	}
	if m.Ambient {
		f.Set(program.Ambient)
	}
	if len(m.Generic) > 0 {
		f.Set(program.Generic)
	}
	return f
}

func decoratorsFromModifiers(m ast.Modifiers) program.DecoratorFlags {
	var d program.DecoratorFlags
	if m.Builtin {
		d |= program.DecoratorBuiltin
	}
	if m.Inline {
		d |= program.DecoratorInline
	}
	if m.ExternalMod != "" || m.ExternalName != "" {
		d |= program.DecoratorExternal
	}
	return d
}

// declarePass registers a stub Entity for every declaration in stmts under
// ns, in source order, so that forward references within the same group of
// sources (a function referring to a class declared later in the file, two
// classes referencing each other as field types) resolve in the second pass
// regardless of textual order.
func (r *resolver) declarePass(ns *program.Namespace, stmts []ast.Stmt) {
	for _, stmt := range stmts {
		switch n := stmt.(type) {
		case *ast.NamespaceDecl:
			child := &program.Namespace{
				Element: program.Element{
					Kind: program.KindNamespace, Name: n.Name, Qualified: qualify(ns, n.Name),
					Parent: ns, Flags: flagsFromModifiers(n.Mods), Range: n.Pos(),
				},
				Members: map[string]program.Entity{},
			}
			if existing, ok := ns.Members[n.Name]; ok {
				if existingNS, ok := existing.(*program.Namespace); ok {
					child = existingNS
				} else {
					r.duplicateError(n.Name, n.Pos())
				}
			}
			ns.Members[n.Name] = child
			r.declarePass(child, n.Statements)

		case *ast.FunctionDecl:
			if _, dup := ns.Members[n.Name]; dup {
				r.duplicateError(n.Name, n.Pos())
				continue
			}
			proto := &program.FunctionPrototype{
				Element: program.Element{
					Kind: program.KindFunctionPrototype, Name: n.Name, Qualified: qualify(ns, n.Name),
					Parent: ns, Flags: flagsFromModifiers(n.Mods), Decorators: decoratorsFromModifiers(n.Mods),
					ExternalModule: n.Mods.ExternalMod, ExternalName: n.Mods.ExternalName, Range: n.Pos(),
				},
				Decl:       n,
				TypeParams: n.Mods.Generic,
			}
			ns.Members[n.Name] = proto
			r.funcProtos[proto.Qualified] = proto

		case *ast.ClassDecl:
			if _, dup := ns.Members[n.Name]; dup {
				r.duplicateError(n.Name, n.Pos())
				continue
			}
			proto := &program.ClassPrototype{
				Element: program.Element{
					Kind: program.KindClassPrototype, Name: n.Name, Qualified: qualify(ns, n.Name),
					Parent: ns, Flags: flagsFromModifiers(n.Mods), Range: n.Pos(),
				},
				Decl:       n,
				TypeParams: n.Mods.Generic,
			}
			ns.Members[n.Name] = proto
			r.classProtos[proto.Qualified] = proto

		case *ast.EnumDecl:
			if _, dup := ns.Members[n.Name]; dup {
				r.duplicateError(n.Name, n.Pos())
				continue
			}
			e := &program.Enum{
				Element: program.Element{
					Kind: program.KindEnum, Name: n.Name, Qualified: qualify(ns, n.Name),
					Parent: ns, Flags: flagsFromModifiers(n.Mods), Range: n.Pos(),
				},
				IsConst: n.Mods.Const,
			}
			ns.Members[n.Name] = e
			r.prog.Register(e)

		case *ast.GlobalDecl:
			if _, dup := ns.Members[n.Name]; dup {
				r.duplicateError(n.Name, n.Pos())
				continue
			}
			g := &program.Global{
				Element: program.Element{
					Kind: program.KindGlobal, Name: n.Name, Qualified: qualify(ns, n.Name),
					Parent: ns, Flags: flagsFromModifiers(n.Mods), Range: n.Pos(),
				},
			}
			ns.Members[n.Name] = g
			r.prog.Register(g)
		}
	}
}

func (r *resolver) duplicateError(name string, rng ast.Range) {
	r.diags.Error(diagnostics.RES002, diagnostics.PhaseResolve,
		fmt.Sprintf("duplicate declaration %q", name), &rng)
}

// resolvePass fills in every stub's type-bearing fields (signatures, field
// layouts, enum owners) and, for non-generic declarations, performs the
// single monomorphisation eagerly so plain-identifier lookups in
// internal/compiler succeed without any further resolver involvement.
func (r *resolver) resolvePass(ns *program.Namespace, stmts []ast.Stmt) {
	for _, stmt := range stmts {
		switch n := stmt.(type) {
		case *ast.NamespaceDecl:
			child := ns.Members[n.Name].(*program.Namespace)
			r.resolvePass(child, n.Statements)

		case *ast.FunctionDecl:
			proto := ns.Members[n.Name].(*program.FunctionPrototype)
			if len(proto.TypeParams) == 0 {
				r.instantiateFunction(proto, nil, nil)
			}

		case *ast.ClassDecl:
			proto := ns.Members[n.Name].(*program.ClassPrototype)
			if len(proto.TypeParams) == 0 {
				r.instantiateClass(proto, nil)
			}

		case *ast.EnumDecl:
			e := ns.Members[n.Name].(*program.Enum)
			r.resolveEnum(e, n)

		case *ast.GlobalDecl:
			g := ns.Members[n.Name].(*program.Global)
			r.resolveGlobal(g, n)
		}
	}
}

func (r *resolver) resolveEnum(e *program.Enum, n *ast.EnumDecl) {
	for _, m := range n.Members {
		ev := &program.EnumValue{
			Element: program.Element{
				Kind: program.KindEnumValue, Name: m.Name, Qualified: e.Qualified + "." + m.Name,
				Parent: e.Parent, Flags: program.Inlined, Range: e.Range,
			},
			Owner:       e,
			Initializer: m.Init,
		}
		e.Members = append(e.Members, ev)
		r.prog.Register(ev)
	}
}

func (r *resolver) resolveGlobal(g *program.Global, n *ast.GlobalDecl) {
	g.Initializer = n.Init
	if n.Type.Name != "" {
		g.Type = r.resolveTypeNode(n.Type, nil)
	} else if n.Init != nil {
		g.Type = r.inferGlobalType(n.Init)
	} else {
		g.Type = typesys.MakeI32()
	}
	if n.Mods.Ambient {
		g.Flags.Set(program.ModuleImport)
		return
	}
	if v, ok := foldGlobalConstSafe(n.Init, g.Type); ok {
		g.ConstValue = v
		g.ConstIsSet = true
		if g.Flags.Has(program.Const) {
			g.Flags.Set(program.Inlined)
		}
	} else if g.Flags.Has(program.Const) && n.Init != nil {
		rng := n.Pos()
		r.diags.Warning(diagnostics.WRN001, diagnostics.PhaseResolve,
			fmt.Sprintf("const global %q initializer is not a compile-time constant; compiling as mutable", g.Name), &rng)
	}
}
