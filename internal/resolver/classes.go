package resolver

import (
	"fmt"

	"github.com/sunholo/wasmc/internal/diagnostics"
	"github.com/sunholo/wasmc/internal/program"
	"github.com/sunholo/wasmc/internal/typesys"
)

// align rounds v up to the next multiple of size, mirroring
// internal/layout's own alignment rule for data segments; a class instance
// lays its fields out the same way, each one aligned to its own size so a
// 64-bit field is never split across a 4-byte boundary.
func align(v, size int32) int32 {
	if size <= 1 {
		return v
	}
	if r := v % size; r != 0 {
		return v + (size - r)
	}
	return v
}

// instantiateClass monomorphises proto against typeArgs (nil/empty for a
// non-generic class), memoised by (prototype, type-argument) combination.
// The instance is registered in r.classInstances before its base, fields, or
// methods are resolved so that a field or method whose type mentions the
// class itself (a linked-list `next: Node`, a method returning `this`'s own
// type) finds the in-progress Class instead of recursing forever.
func (r *resolver) instantiateClass(proto *program.ClassPrototype, typeArgs []typesys.Type) *program.Class {
	key := instantiationKey(proto.Qualified, typeArgs)
	if c, ok := r.classInstances[key]; ok {
		return c
	}

	subst := map[string]typesys.Type{}
	for i, name := range proto.TypeParams {
		if i < len(typeArgs) {
			subst[name] = typeArgs[i]
		}
	}

	cls := &program.Class{
		Element:     proto.Element,
		Prototype:   proto,
		GCHookIndex: -1,
	}
	cls.Kind = program.KindClass
	if len(typeArgs) > 0 {
		cls.Qualified = mangleName(proto.Qualified, typeArgs)
	}
	r.classInstances[key] = cls
	r.prog.Register(cls)
	if cls.Qualified != proto.Qualified {
		if _, exists := r.prog.Lookup(proto.Qualified); !exists {
			first := *cls
			first.Qualified = proto.Qualified
			r.prog.Register(&first)
		}
	}

	decl := proto.Decl
	declRange := decl.Pos()
	if decl.BaseClass != "" {
		baseProto, ok := r.classProtos[decl.BaseClass]
		if !ok {
			r.diags.Error(diagnostics.RES004, diagnostics.PhaseResolve,
				fmt.Sprintf("base class %q of %q not found", decl.BaseClass, proto.Name), &declRange)
		} else if baseKey := instantiationKey(baseProto.Qualified, nil); r.classResolving[baseKey] {
			r.diags.Error(diagnostics.RES004, diagnostics.PhaseResolve,
				fmt.Sprintf("class %q has a circular base class chain through %q", proto.Name, decl.BaseClass), &declRange)
		} else {
			if r.classResolving == nil {
				r.classResolving = map[string]bool{}
			}
			r.classResolving[key] = true
			cls.Base = r.instantiateClass(baseProto, nil)
			delete(r.classResolving, key)
		}
	}

	gcHeaderSize := int32(0)
	if r.hasAnyClass {
		gcHeaderSize = 4
	}
	offset := gcHeaderSize
	if cls.Base != nil {
		offset = cls.Base.InstanceSize
	}

	ctorParamIdx := map[string]int{}
	if decl.Ctor != nil {
		for i, p := range decl.Ctor.Params {
			ctorParamIdx[p.Name] = i
		}
	}

	for _, fd := range decl.Fields {
		ft := r.resolveTypeNode(fd.Type, subst)
		size := int32(ft.Size(r.target))
		offset = align(offset, size)
		field := &program.Field{
			Element: program.Element{
				Kind: program.KindField, Name: fd.Name, Qualified: cls.Qualified + "." + fd.Name,
				Parent: proto.Parent, Flags: flagsFromModifiers(fd.Mods), Range: fd.Pos(),
			},
			Type:         ft,
			Offset:       offset,
			Initializer:  fd.Init,
			CtorParamIdx: -1,
		}
		if fd.CtorParam {
			if idx, ok := ctorParamIdx[fd.Name]; ok {
				field.CtorParamIdx = idx
			}
		}
		cls.Fields = append(cls.Fields, field)
		offset += size
	}
	cls.InstanceSize = offset

	if decl.Ctor != nil {
		ctorProto := &program.FunctionPrototype{
			Element: program.Element{
				Kind: program.KindFunctionPrototype, Name: "constructor",
				Qualified: cls.Qualified + "#constructor", Parent: proto.Parent, Range: decl.Ctor.Pos(),
			},
			Decl:        decl.Ctor,
			OwningClass: cls,
		}
		cls.Ctor = r.instantiateFunction(ctorProto, nil, subst)
		cls.Ctor.Flags.Set(program.Constructor)
	}

	for _, m := range decl.Methods {
		mproto := &program.FunctionPrototype{
			Element: program.Element{
				Kind: program.KindFunctionPrototype, Name: m.Name,
				Qualified: cls.Qualified + "#" + m.Name, Parent: proto.Parent,
				Flags: flagsFromModifiers(m.Mods), Decorators: decoratorsFromModifiers(m.Mods), Range: m.Pos(),
			},
			Decl:       m,
			Operator:   operatorKindFor(m),
			TypeParams: m.Mods.Generic,
		}
		if !m.Mods.Static {
			mproto.OwningClass = cls
		}
		fn := r.instantiateFunction(mproto, nil, subst)
		cls.Methods = append(cls.Methods, fn)
	}

	return cls
}
