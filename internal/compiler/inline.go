package compiler

import (
	"fmt"

	"github.com/sunholo/wasmc/internal/diagnostics"
	"github.com/sunholo/wasmc/internal/flow"
	"github.com/sunholo/wasmc/internal/program"
	"github.com/sunholo/wasmc/internal/typesys"
	"github.com/sunholo/wasmc/internal/wasmir"
)

// compileCallInlineUnchecked substitutes callee's body directly at the call
// site instead of emitting a Call, for functions decorated @inline. Each
// parameter that arrives as a plain local read becomes a scoped alias
// (DeclareScoped) pointing straight at it; anything else, globals and
// constants included, is stored into a real temp first so argument side effects still happen
// exactly once, in argument order. A function already being inlined into
// cannot be inlined into itself (WRN002); the guard is
// c.currentInlineFunctions.
func (c *Compiler) compileCallInlineUnchecked(callee *program.Function, thisArg *wasmir.Expr, args []*wasmir.Expr) (*wasmir.Expr, typesys.Type) {
	if c.currentInlineFunctions[callee] {
		c.Diags.Warning(diagnostics.WRN002, diagnostics.PhaseCompile,
			fmt.Sprintf("function %q could not be inlined into itself", callee.Qualified), rngPtr(callee.Range))
		return c.makeCallDirect(callee, thisArg, args), callee.Sig.ReturnType
	}
	c.currentInlineFunctions[callee] = true
	defer delete(c.currentInlineFunctions, callee)

	parent := c.currentFlow
	inlineFlow := parent.Fork()
	callee.NextInlineID++
	label := fmt.Sprintf("inline.%s.%d", callee.Qualified, callee.NextInlineID)
	inlineFlow.ReturnLabel = label

	resultType := callee.Sig.ReturnType
	resultLocal := -1
	if resultType.Kind != typesys.Void {
		resultLocal = c.getTempLocal(nativeOf(resultType), false)
	}
	inlineFlow.ResultLocal = resultLocal

	setup := []*wasmir.Expr{}
	bind := func(name string, t typesys.Type, val *wasmir.Expr) {
		if val.Op == wasmir.OpGetLocal {
			inlineFlow.DeclareScoped(name, flow.Local{Index: val.LocalIndex, Type: t})
			return
		}
		tmp := c.getTempLocal(nativeOf(t), false)
		setup = append(setup, wasmir.SetLocal(tmp, val))
		inlineFlow.DeclareScoped(name, flow.Local{Index: tmp, Type: t})
	}

	if thisArg != nil && callee.Sig.ThisType != nil {
		bind("this", *callee.Sig.ThisType, thisArg)
	}
	for i, name := range callee.Sig.ParameterNames {
		if i >= len(args) {
			break
		}
		bind(name, callee.Sig.ParameterTypes[i], args[i])
	}

	savedFunction := c.currentFunction
	c.currentFunction = callee
	c.currentFlow = inlineFlow

	body := c.compileStatement(callee.Body)

	c.currentFunction = savedFunction
	c.currentFlow = parent
	parent.Inherit(inlineFlow)
	parent.Free(inlineFlow)

	block := wasmir.Block(label, wasmir.None, append(setup, body)...)
	c.currentType = resultType
	if resultLocal < 0 {
		return block, resultType
	}
	native := nativeOf(resultType)
	out := wasmir.Block("", native, block, wasmir.GetLocal(resultLocal, native))
	c.freeTempLocal(native, resultLocal)
	return out, resultType
}
