package compiler

import (
	"github.com/sunholo/wasmc/internal/ast"
	"github.com/sunholo/wasmc/internal/typesys"
)

// primitiveTypeNames maps the reduced language's primitive spellings to their
// typesys.Type singleton, per the design's C1 numeric lattice.
var primitiveTypeNames = map[string]typesys.Type{
	"i8": typesys.MakeI8(), "u8": typesys.MakeU8(),
	"i16": typesys.MakeI16(), "u16": typesys.MakeU16(),
	"i32": typesys.MakeI32(), "u32": typesys.MakeU32(),
	"i64": typesys.MakeI64(), "u64": typesys.MakeU64(),
	"isize": typesys.MakeIsize(), "usize": typesys.MakeUsize(),
	"f32": typesys.MakeF32(), "f64": typesys.MakeF64(),
	"bool": typesys.MakeBool(), "void": typesys.MakeVoid(),
}

// resolveType converts a parsed TypeNode into the typesys.Type the compiler
// core operates on. Names that do not match a primitive are treated as class
// references, matching the design's statement that the resolver has already
// validated the class exists by the time compilation reaches this core.
func (c *Compiler) resolveType(tn ast.TypeNode) typesys.Type {
	if t, ok := primitiveTypeNames[tn.Name]; ok {
		return t
	}
	return typesys.MakeReference(tn.Name, tn.Nullable)
}

// isTypeNodeEmpty reports whether tn is the zero value, used where a TypeNode
// field means "absent" rather than "explicit type" (e.g. an inferred array
// literal element type).
func isTypeNodeEmpty(tn ast.TypeNode) bool {
	return tn.Name == "" && len(tn.TypeArgs) == 0
}
