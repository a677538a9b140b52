package compiler

import (
	"fmt"

	"github.com/sunholo/wasmc/internal/ast"
	"github.com/sunholo/wasmc/internal/diagnostics"
	"github.com/sunholo/wasmc/internal/layout"
	"github.com/sunholo/wasmc/internal/program"
	"github.com/sunholo/wasmc/internal/typesys"
	"github.com/sunholo/wasmc/internal/wasmir"
)

// compileNew lowers `new Class(args)`: allocate an instance, stamp its GC
// header (if the class needs one), then run the resolved constructor (or, for
// the implicit default constructor, nothing further), per the design's C3/C9
// collaboration described for allocation sites.
func (c *Compiler) compileNew(n *ast.NewExpr) (*wasmir.Expr, typesys.Type) {
	cls, ok := c.Program.LookupClass(n.ClassName)
	if !ok {
		c.Diags.Error(diagnostics.SEM006, diagnostics.PhaseCompile,
			fmt.Sprintf("unresolved class %q", n.ClassName), rngPtr(n.Pos()))
		return wasmir.Unreachable(), typesys.MakeI32()
	}
	t := typesys.MakeReference(cls.Qualified, false)
	alloc := c.makeAllocate(cls)

	if cls.Ctor == nil {
		c.currentType = t
		return alloc, t
	}

	tmp := c.getTempLocal(nativeOf(t), false)
	argc := c.checkCallSignature(&cls.Ctor.Sig, len(n.Args), n.Pos())
	argExprs := make([]*wasmir.Expr, argc)
	for i := 0; i < argc; i++ {
		expr, at := c.compileExpressionNatural(n.Args[i])
		argExprs[i] = c.convert(n.Args[i].Pos(), expr, at, cls.Ctor.Sig.ParameterTypes[i], typesys.Implicit, true)
	}
	var ctorCall *wasmir.Expr
	thisGet := wasmir.GetLocal(tmp, nativeOf(t))
	if argc == cls.Ctor.Sig.MaxOperands() {
		ctorCall = c.makeCallDirect(cls.Ctor, thisGet, argExprs)
	} else {
		ctorCall = c.compileOptionalArgCall(cls.Ctor, thisGet, argExprs, argc)
	}

	block := wasmir.Block("", nativeOf(t),
		wasmir.SetLocal(tmp, alloc),
		wasmir.Drop(ctorCall),
		wasmir.GetLocal(tmp, nativeOf(t)),
	)
	c.freeTempLocal(nativeOf(t), tmp)
	c.currentType = t
	return block, t
}

// makeAllocate emits the raw-allocate call for cls's instance size, stamping
// the GC hook header word first time any class needs one, matching the
// design's "the builtins collaborator owns allocate/GC-hook wiring" split.
func (c *Compiler) makeAllocate(cls *program.Class) *wasmir.Expr {
	pointerNative := nativeOf(typesys.MakeReference(cls.Qualified, false))
	raw := c.Builtins.Allocate(cls.InstanceSize, pointerNative)
	if c.Layout.GCHeaderSize == 0 {
		return raw
	}

	hookIdx := c.Builtins.EnsureGCHook(cls.Qualified)
	cls.GCHookIndex = hookIdx
	tmp := c.getTempLocal(pointerNative, false)
	return wasmir.Block("", pointerNative,
		wasmir.SetLocal(tmp, raw),
		wasmir.Store(0, wasmir.GetLocal(tmp, pointerNative), wasmir.Const(wasmir.I32, hookIdx)),
		wasmir.GetLocal(tmp, pointerNative),
	)
}

// compileArrayLiteral lowers `[e0, e1, ...]`. When every element is a
// syntactic constant the whole array is folded into a single static segment
// via internal/layout; otherwise a buffer and header are allocated at
// runtime and each element is stored individually.
func (c *Compiler) compileArrayLiteral(n *ast.ArrayLiteralExpr) (*wasmir.Expr, typesys.Type) {
	elemType := typesys.MakeI32()
	if !isTypeNodeEmpty(n.ElementType) {
		elemType = c.resolveType(n.ElementType)
	} else if len(n.Elements) > 0 {
		_, elemType = c.compileExpressionNatural(n.Elements[0])
	}
	arrayType := typesys.MakeReference("Array<"+elemType.String()+">", false)

	allConst := true
	for _, e := range n.Elements {
		if !isSyntacticConstant(e) {
			allConst = false
			break
		}
	}

	if allConst {
		values := make([]any, len(n.Elements))
		for i, e := range n.Elements {
			values[i] = foldConstant(e, elemType)
		}
		ptr := c.Layout.EnsureStaticArray(values, elementKindOf(elemType))
		c.currentType = arrayType
		return wasmir.Const(nativeOf(arrayType), pointerValue(ptr, nativeOf(arrayType))), arrayType
	}

	elemSize := int32(elemType.Size(c.Options.Target))
	bufBytes := int32(len(n.Elements)) * elemSize
	bufPtr := c.Builtins.Allocate(bufBytes, wasmir.I32)
	bufTmp := c.getTempLocal(wasmir.I32, false)

	stmts := []*wasmir.Expr{wasmir.SetLocal(bufTmp, bufPtr)}
	for i, e := range n.Elements {
		expr, t := c.compileExpressionNatural(e)
		expr = c.convert(e.Pos(), expr, t, elemType, typesys.Implicit, true)
		stmts = append(stmts, wasmir.Store(int32(i)*elemSize, wasmir.GetLocal(bufTmp, wasmir.I32), expr))
	}

	headerPtr := c.Builtins.Allocate(arrayHeaderSize, nativeOf(arrayType))
	headerTmp := c.getTempLocal(nativeOf(arrayType), false)
	stmts = append(stmts,
		wasmir.SetLocal(headerTmp, headerPtr),
		wasmir.Store(0, wasmir.GetLocal(headerTmp, nativeOf(arrayType)), wasmir.GetLocal(bufTmp, wasmir.I32)),
		wasmir.Store(4, wasmir.GetLocal(headerTmp, nativeOf(arrayType)), wasmir.Const(wasmir.I32, bufBytes)),
		wasmir.Store(8, wasmir.GetLocal(headerTmp, nativeOf(arrayType)), wasmir.Const(wasmir.I32, int32(len(n.Elements)))),
		wasmir.GetLocal(headerTmp, nativeOf(arrayType)),
	)
	c.freeTempLocal(wasmir.I32, bufTmp)
	c.freeTempLocal(nativeOf(arrayType), headerTmp)
	c.currentType = arrayType
	return wasmir.Block("", nativeOf(arrayType), stmts...), arrayType
}

// arrayHeaderSize mirrors internal/layout's arrayHeaderFixedFields for
// runtime-allocated arrays (data pointer, byte length, element length).
const arrayHeaderSize = 12

func elementKindOf(t typesys.Type) layout.ElementKind {
	switch t.Native(typesys.Wasm32) {
	case typesys.NativeI64:
		return layout.ElemI64
	case typesys.NativeF32:
		return layout.ElemF32
	case typesys.NativeF64:
		return layout.ElemF64
	default:
		switch {
		case t.Kind == typesys.I8 || t.Kind == typesys.U8:
			return layout.ElemI8
		case t.Kind == typesys.I16 || t.Kind == typesys.U16:
			return layout.ElemI16
		default:
			return layout.ElemI32
		}
	}
}

// compileObjectLiteral lowers `{ a: 1, b: 2 }` targeting a known class: it
// allocates an instance and stores each field directly, bypassing the
// constructor (object literals name fields, not constructor parameters).
func (c *Compiler) compileObjectLiteral(n *ast.ObjectLiteralExpr) (*wasmir.Expr, typesys.Type) {
	if n.ClassName == "" {
		c.Diags.Error(diagnostics.SEM006, diagnostics.PhaseCompile,
			"object literal requires a known target class", rngPtr(n.Pos()))
		return wasmir.Unreachable(), typesys.MakeI32()
	}
	cls, ok := c.Program.LookupClass(n.ClassName)
	if !ok {
		c.Diags.Error(diagnostics.SEM006, diagnostics.PhaseCompile,
			fmt.Sprintf("unresolved class %q", n.ClassName), rngPtr(n.Pos()))
		return wasmir.Unreachable(), typesys.MakeI32()
	}
	t := typesys.MakeReference(cls.Qualified, false)
	tmp := c.getTempLocal(nativeOf(t), false)

	stmts := []*wasmir.Expr{wasmir.SetLocal(tmp, c.makeAllocate(cls))}
	for _, field := range n.Fields {
		f, ok := cls.FieldByName(field.Name)
		if !ok {
			c.Diags.Error(diagnostics.SEM006, diagnostics.PhaseCompile,
				fmt.Sprintf("unresolved field %q on class %q", field.Name, n.ClassName), rngPtr(n.Pos()))
			continue
		}
		expr, vt := c.compileExpressionNatural(field.Value)
		expr = c.convert(field.Value.Pos(), expr, vt, f.Type, typesys.Implicit, true)
		stmts = append(stmts, wasmir.Store(f.Offset, wasmir.GetLocal(tmp, nativeOf(t)), expr))
	}
	stmts = append(stmts, wasmir.GetLocal(tmp, nativeOf(t)))
	c.freeTempLocal(nativeOf(t), tmp)
	c.currentType = t
	return wasmir.Block("", nativeOf(t), stmts...), t
}
