package compiler

import (
	"github.com/sunholo/wasmc/internal/program"
	"github.com/sunholo/wasmc/internal/typesys"
	"github.com/sunholo/wasmc/internal/wasmir"
)

func clsReferenceType(cls *program.Class) typesys.Type {
	return typesys.MakeReference(cls.Qualified, false)
}

// compileExports synthesises the export surface the design's C5 describes
// beyond the function/global exports already tagged inline by
// declarations.go: a getter/setter pair for every exported instance field.
// Private members are skipped even if marked exported, matching the
// design's note that "private members are skipped in classes".
func (c *Compiler) compileExports() {
	for _, cls := range c.compiledClasses {
		for _, f := range cls.Fields {
			if !f.Flags.Has(program.Export) || f.Flags.Has(program.Private) {
				continue
			}
			c.exportFieldAccessors(cls, f)
		}
	}
}

// exportFieldAccessors emits two tiny exported functions reading and writing
// f's fixed offset off an instance reference passed as parameter 0, per the
// design's "synthesised getter/setter pair for a field (direct load/store at
// the field offset)".
func (c *Compiler) exportFieldAccessors(cls *program.Class, f *program.Field) {
	native := nativeOf(f.Type)
	thisNative := nativeOf(clsReferenceType(cls))
	getterName := cls.Qualified + "#get:" + f.Name
	c.Module.AddFunction(wasmir.Function{
		Name:     getterName,
		Sig:      wasmir.FuncSig{Params: []wasmir.NativeType{thisNative}, Result: native},
		Body:     wasmir.Load(native, f.Offset, wasmir.GetLocal(0, thisNative)),
		Exported: getterName,
	})

	if f.Flags.Has(program.Readonly) {
		return
	}
	setterName := cls.Qualified + "#set:" + f.Name
	c.Module.AddFunction(wasmir.Function{
		Name: setterName,
		Sig:  wasmir.FuncSig{Params: []wasmir.NativeType{thisNative, native}},
		Body: wasmir.Store(f.Offset, wasmir.GetLocal(0, thisNative), wasmir.GetLocal(1, native)),
		Exported: setterName,
	})
}
