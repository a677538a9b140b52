package compiler

import (
	"fmt"

	"github.com/sunholo/wasmc/internal/ast"
	"github.com/sunholo/wasmc/internal/diagnostics"
	"github.com/sunholo/wasmc/internal/program"
	"github.com/sunholo/wasmc/internal/typesys"
	"github.com/sunholo/wasmc/internal/wasmir"
)

// compileAssign resolves the target kind and dispatches to assignTo, per the
// design's C8 assignment section.
func (c *Compiler) compileAssign(n *ast.AssignExpr) (*wasmir.Expr, typesys.Type) {
	valueExpr, valueType := c.compileExpressionNatural(n.Value)
	targetType := c.targetType(n.Target)
	if targetType != nil {
		valueExpr = c.convert(n.Value.Pos(), valueExpr, valueType, *targetType, typesys.Implicit, true)
		valueType = *targetType
	}
	out := c.assignTo(n.Target, valueExpr, valueType, n.Tee)
	c.currentType = valueType
	return out, valueType
}

// targetType resolves the static type of an assignment target without
// emitting any IR, used so the RHS can be converted to the target's type
// before the store/set is built.
func (c *Compiler) targetType(target ast.Expr) *typesys.Type {
	switch t := target.(type) {
	case *ast.IdentExpr:
		if l, ok := c.currentFlow.LookupScoped(t.Name); ok {
			tt := l.Type
			return &tt
		}
		if c.currentFunction != nil {
			for _, l := range c.currentFunction.Locals {
				if l.Name == t.Name {
					tt := l.Type
					return &tt
				}
			}
		}
		if g, ok := c.Program.LookupGlobal(t.Name); ok {
			return &g.Type
		}
	case *ast.PropertyAccessExpr:
		_, xType := c.compileExpressionNatural(t.X)
		if xType.IsReference() {
			if cls, ok := c.Program.LookupClass(xType.ClassName); ok {
				if f, ok := cls.FieldByName(t.Name); ok {
					return &f.Type
				}
				if p, ok := cls.PropertyByName(t.Name); ok {
					return &p.Type
				}
			}
		}
	}
	return nil
}

// assignTo emits the store/set IR for target <- value (already converted to
// the target's type), returning value again if tee is requested (the
// assignment is used as an expression), or a void-typed set otherwise.
func (c *Compiler) assignTo(target ast.Expr, value *wasmir.Expr, valueType typesys.Type, tee bool) *wasmir.Expr {
	switch t := target.(type) {
	case *ast.IdentExpr:
		return c.assignIdent(t, value, valueType, tee)
	case *ast.PropertyAccessExpr:
		return c.assignProperty(t, value, valueType, tee)
	case *ast.ElementAccessExpr:
		return c.assignIndexed(t, value, valueType, tee)
	default:
		c.Diags.Internal(fmt.Sprintf("assignTo: unsupported target %T", target), rngPtr(target.Pos()))
		return wasmir.Unreachable()
	}
}

func (c *Compiler) assignIdent(t *ast.IdentExpr, value *wasmir.Expr, valueType typesys.Type, tee bool) *wasmir.Expr {
	if l, ok := c.currentFlow.LookupScoped(t.Name); ok {
		c.Diags.Error(diagnostics.SEM004, diagnostics.PhaseCompile,
			fmt.Sprintf("cannot assign to constant %q", t.Name), rngPtr(t.Pos()))
		_ = l
		return wasmir.Unreachable()
	}
	if c.currentFunction != nil {
		for i, l := range c.currentFunction.Locals {
			if l.Name == t.Name {
				idx := l.Index
				c.currentFunction.Locals[i] = l
				wrapped := !c.currentFlow.CanOverflow(value, valueType)
				c.currentFlow.SetWrapped(idx, wrapped)
				if tee {
					return wasmir.TeeLocal(idx, value)
				}
				return wasmir.SetLocal(idx, value)
			}
		}
		for i, name := range c.currentFunction.Sig.ParameterNames {
			if name == t.Name {
				idx := i
				if c.currentFunction.Sig.HasThis() {
					idx++
				}
				wrapped := !c.currentFlow.CanOverflow(value, valueType)
				c.currentFlow.SetWrapped(idx, wrapped)
				if tee {
					return wasmir.TeeLocal(idx, value)
				}
				return wasmir.SetLocal(idx, value)
			}
		}
	}
	if g, ok := c.Program.LookupGlobal(t.Name); ok {
		if g.Flags.Has(program.Const) {
			c.Diags.Error(diagnostics.SEM004, diagnostics.PhaseCompile,
				fmt.Sprintf("cannot assign to constant %q", t.Name), rngPtr(t.Pos()))
			return wasmir.Unreachable()
		}
		set := wasmir.SetGlobal(g.Qualified, value)
		if tee {
			// Globals have no native tee instruction; emulate as set followed
			// by get, per the design's assignment section.
			return wasmir.Block("", nativeOf(valueType), set, wasmir.GetGlobal(g.Qualified, nativeOf(valueType)))
		}
		return set
	}
	c.Diags.Error(diagnostics.SEM006, diagnostics.PhaseCompile, fmt.Sprintf("unresolved identifier %q", t.Name), rngPtr(t.Pos()))
	return wasmir.Unreachable()
}

func (c *Compiler) assignProperty(t *ast.PropertyAccessExpr, value *wasmir.Expr, valueType typesys.Type, tee bool) *wasmir.Expr {
	thisExpr, xType := c.compileExpressionNatural(t.X)
	if !xType.IsReference() {
		c.Diags.Internal("assignProperty: receiver is not a reference", rngPtr(t.Pos()))
		return wasmir.Unreachable()
	}
	cls, ok := c.Program.LookupClass(xType.ClassName)
	if !ok {
		c.Diags.Error(diagnostics.SEM006, diagnostics.PhaseCompile, fmt.Sprintf("unresolved class %q", xType.ClassName), rngPtr(t.Pos()))
		return wasmir.Unreachable()
	}

	if f, ok := cls.FieldByName(t.Name); ok {
		if f.Flags.Has(program.Readonly) && !c.inOwnConstructorOf(cls) {
			c.Diags.Error(diagnostics.SEM004, diagnostics.PhaseCompile,
				fmt.Sprintf("cannot assign to readonly field %q outside its constructor", t.Name), rngPtr(t.Pos()))
		}
		storeValue := value
		if f.Type.Kind == typesys.Bool {
			storeValue = c.ensureWrap(storeValue, f.Type)
		}
		store := wasmir.Store(f.Offset, thisExpr, storeValue)
		if !tee {
			return store
		}
		tmp := c.getTempLocal(nativeOf(xType), false)
		block := wasmir.Block("", nativeOf(valueType),
			wasmir.SetLocal(tmp, thisExpr),
			wasmir.Store(f.Offset, wasmir.GetLocal(tmp, nativeOf(xType)), storeValue),
			wasmir.Load(nativeOf(valueType), f.Offset, wasmir.GetLocal(tmp, nativeOf(xType))),
		)
		c.freeTempLocal(nativeOf(xType), tmp)
		return block
	}

	if p, ok := cls.PropertyByName(t.Name); ok {
		if p.Setter == nil {
			c.Diags.Error(diagnostics.SEM004, diagnostics.PhaseCompile,
				fmt.Sprintf("property %q has no setter", t.Name), rngPtr(t.Pos()))
			return wasmir.Unreachable()
		}
		if !tee {
			return c.makeCallDirect(p.Setter, thisExpr, []*wasmir.Expr{value})
		}
		tmp := c.getTempLocal(nativeOf(xType), false)
		setCall := c.makeCallDirect(p.Setter, wasmir.GetLocal(tmp, nativeOf(xType)), []*wasmir.Expr{value})
		getCall := c.makeCallDirect(p.Getter, wasmir.GetLocal(tmp, nativeOf(xType)), nil)
		block := wasmir.Block("", nativeOf(valueType),
			wasmir.SetLocal(tmp, thisExpr),
			wasmir.Drop(setCall),
			getCall,
		)
		c.freeTempLocal(nativeOf(xType), tmp)
		return block
	}

	c.Diags.Error(diagnostics.SEM006, diagnostics.PhaseCompile, fmt.Sprintf("unresolved field or property %q", t.Name), rngPtr(t.Pos()))
	return wasmir.Unreachable()
}

func (c *Compiler) inOwnConstructorOf(cls *program.Class) bool {
	return c.currentFunction != nil && c.currentFunction.Flags.Has(program.Constructor) &&
		c.currentFunction.Prototype != nil && c.currentFunction.Prototype.OwningClass == cls
}

func (c *Compiler) assignIndexed(t *ast.ElementAccessExpr, value *wasmir.Expr, valueType typesys.Type, tee bool) *wasmir.Expr {
	thisExpr, xType := c.compileExpressionNatural(t.X)
	if !xType.IsReference() {
		c.Diags.Internal("assignIndexed: receiver is not a reference", rngPtr(t.Pos()))
		return wasmir.Unreachable()
	}
	cls, ok := c.Program.LookupClass(xType.ClassName)
	if !ok {
		c.Diags.Error(diagnostics.SEM006, diagnostics.PhaseCompile, fmt.Sprintf("unresolved class %q", xType.ClassName), rngPtr(t.Pos()))
		return wasmir.Unreachable()
	}
	setter, okSet := cls.OperatorOverload(program.OpIndexedSet)
	getter, okGet := cls.OperatorOverload(program.OpIndexedGet)
	if !okSet || !okGet {
		c.Diags.Error(diagnostics.TYP005, diagnostics.PhaseCompile,
			fmt.Sprintf("class %q does not define both INDEXED_GET and INDEXED_SET", xType.ClassName), rngPtr(t.Pos()))
		return wasmir.Unreachable()
	}
	indexExpr, indexType := c.compileExpressionNatural(t.Index)
	indexExpr = c.convert(t.Index.Pos(), indexExpr, indexType, setter.Sig.ParameterTypes[0], typesys.Implicit, true)

	if !tee {
		return c.makeCallDirect(setter, thisExpr, []*wasmir.Expr{indexExpr, value})
	}

	thisTmp := c.getTempLocal(nativeOf(xType), false)
	idxTmp := c.getTempLocal(nativeOf(setter.Sig.ParameterTypes[0]), false)
	setCall := c.makeCallDirect(setter, wasmir.GetLocal(thisTmp, nativeOf(xType)),
		[]*wasmir.Expr{wasmir.GetLocal(idxTmp, nativeOf(setter.Sig.ParameterTypes[0])), value})
	getCall := c.makeCallDirect(getter, wasmir.GetLocal(thisTmp, nativeOf(xType)),
		[]*wasmir.Expr{wasmir.GetLocal(idxTmp, nativeOf(setter.Sig.ParameterTypes[0]))})
	block := wasmir.Block("", nativeOf(valueType),
		wasmir.SetLocal(thisTmp, thisExpr),
		wasmir.SetLocal(idxTmp, indexExpr),
		wasmir.Drop(setCall),
		getCall,
	)
	c.freeTempLocal(nativeOf(xType), thisTmp)
	c.freeTempLocal(nativeOf(setter.Sig.ParameterTypes[0]), idxTmp)
	return block
}
