package compiler

import (
	"fmt"

	"github.com/sunholo/wasmc/internal/ast"
	"github.com/sunholo/wasmc/internal/diagnostics"
	"github.com/sunholo/wasmc/internal/flow"
	"github.com/sunholo/wasmc/internal/program"
	"github.com/sunholo/wasmc/internal/typesys"
	"github.com/sunholo/wasmc/internal/wasmir"
)

// compileStatement is the single entry point for statement lowering (the
// design's C7), dispatching on the concrete node kind. It always runs inside
// c.currentFlow, which the caller is responsible for having forked/merged
// appropriately around control-flow constructs.
func (c *Compiler) compileStatement(node ast.Stmt) *wasmir.Expr {
	c.stampRange(node.Pos())
	switch n := node.(type) {
	case *ast.Block:
		return c.compileBlock(n)
	case *ast.ExprStmt:
		return wasmir.Drop(c.compileExpression(n.X, nil, typesys.Implicit, true))
	case *ast.VariableStmt:
		return c.compileVariableStmt(n)
	case *ast.IfStmt:
		return c.compileIfStmt(n)
	case *ast.WhileStmt:
		return c.compileWhileStmt(n)
	case *ast.DoWhileStmt:
		return c.compileDoWhileStmt(n)
	case *ast.ForStmt:
		return c.compileForStmt(n)
	case *ast.SwitchStmt:
		return c.compileSwitchStmt(n)
	case *ast.ReturnStmt:
		return c.compileReturnStmt(n)
	case *ast.BreakStmt:
		return c.compileBreakStmt(n)
	case *ast.ContinueStmt:
		return c.compileContinueStmt(n)
	case *ast.ThrowStmt:
		return c.compileThrowStmt(n)
	case *ast.TryStmt:
		c.Diags.Error(diagnostics.UNS001, diagnostics.PhaseCompile, "try/catch/finally is not supported", rngPtr(n.Pos()))
		return wasmir.Unreachable()
	case *ast.FunctionDecl, *ast.ClassDecl, *ast.EnumDecl, *ast.GlobalDecl, *ast.NamespaceDecl:
		// Nested declarations are hoisted and compiled by the driver/
		// declaration pass before statement bodies run; a bare reference here
		// contributes no additional code.
		return wasmir.Nop()
	default:
		c.Diags.Internal(fmt.Sprintf("compileStatement: unhandled node %T", node), rngPtr(node.Pos()))
		return wasmir.Unreachable()
	}
}

// compileBlock lowers a `{ ... }` statement sequence. Per the design, the
// resulting block's native type mirrors its last statement's (a trailing
// `return expr` or expression statement), so that a function body block
// carries its value through to the WebAssembly function result without a
// dedicated "return" IR op; a block with no statements is untyped.
func (c *Compiler) compileBlock(n *ast.Block) *wasmir.Expr {
	stmts := make([]*wasmir.Expr, 0, len(n.Statements))
	for _, s := range n.Statements {
		stmts = append(stmts, c.compileStatement(s))
	}
	t := wasmir.None
	if len(stmts) > 0 {
		t = stmts[len(stmts)-1].Type
	}
	return wasmir.Block("", t, stmts...)
}

// compileVariableStmt lowers `let`/`const` declarators, each to a real
// function local with an initializing SetLocal (const-ness is enforced by
// the resolver before compilation; this core trusts it and never reassigns a
// const binding through assignIdent because LookupScoped, not the locals
// table, is what assign.go consults for virtual aliases, and plain
// declarators never populate that table).
func (c *Compiler) compileVariableStmt(n *ast.VariableStmt) *wasmir.Expr {
	if c.currentFunction == nil {
		return c.compileTopLevelVariableStmt(n)
	}

	stmts := make([]*wasmir.Expr, 0, len(n.Declarators))
	for _, d := range n.Declarators {
		declType := typesys.MakeI32()
		hasType := !isTypeNodeEmpty(d.Type)
		if hasType {
			declType = c.resolveType(d.Type)
		}

		if d.Init == nil {
			idx := c.declareRealLocal(d.Name, declType)
			c.currentFlow.SetWrapped(idx, true)
			continue
		}

		initExpr, initType := c.compileExpressionNatural(d.Init)
		if !hasType {
			declType = initType
		}
		initExpr = c.convert(d.Init.Pos(), initExpr, initType, declType, typesys.Implicit, true)

		idx := c.declareRealLocal(d.Name, declType)
		c.currentFlow.SetWrapped(idx, !c.currentFlow.CanOverflow(initExpr, declType))
		stmts = append(stmts, wasmir.SetLocal(idx, initExpr))
	}
	return wasmir.Block("", wasmir.None, stmts...)
}

// compileTopLevelVariableStmt handles a `let`/`const` statement reached
// outside any function body (module top level, running inside the
// synthesized start function): each declarator becomes a module global
// instead of a function local, per the design's rule that "top-level or
// start-function-scope declarations become globals".
func (c *Compiler) compileTopLevelVariableStmt(n *ast.VariableStmt) *wasmir.Expr {
	stmts := make([]*wasmir.Expr, 0, len(n.Declarators))
	for _, d := range n.Declarators {
		declType := typesys.MakeI32()
		hasType := !isTypeNodeEmpty(d.Type)
		if hasType {
			declType = c.resolveType(d.Type)
		}

		native := nativeOf(declType)
		zero := declType.NativeZero()
		if d.Init == nil {
			c.Module.AddGlobal(wasmir.Global{Name: topLevelGlobalName(d.Name), Type: native, Mutable: true, Init: wasmir.Const(native, zero)})
			continue
		}

		initExpr, initType := c.compileExpressionNatural(d.Init)
		if !hasType {
			declType = initType
			native = nativeOf(declType)
		}
		initExpr = c.convert(d.Init.Pos(), initExpr, initType, declType, typesys.Implicit, true)

		name := topLevelGlobalName(d.Name)
		c.Module.AddGlobal(wasmir.Global{Name: name, Type: native, Mutable: true, Init: wasmir.Const(native, declType.NativeZero())})
		stmts = append(stmts, wasmir.SetGlobal(name, initExpr))
	}
	return wasmir.Block("", wasmir.None, stmts...)
}

// topLevelGlobalName mangles a bare top-level variable name the same way
// other module-level globals are keyed, avoiding a collision with a
// same-named resolved program.Global (which already owns the bare name).
func topLevelGlobalName(name string) string { return "~local." + name }

// declareRealLocal appends a fresh additional local named name to the current
// function and returns its index.
func (c *Compiler) declareRealLocal(name string, t typesys.Type) int {
	idx := len(c.currentFunction.Locals) + c.localOffset()
	c.currentFunction.Locals = append(c.currentFunction.Locals, program.Local{Element: program.Element{Name: name}, Type: t, Index: idx})
	return idx
}

func (c *Compiler) compileIfStmt(n *ast.IfStmt) *wasmir.Expr {
	condExpr, condType := c.compileExpressionNatural(n.Cond)
	cond := typesys.MakeIsTrueish(condExpr, condType, c.features())

	parent := c.currentFlow
	thenFlow := parent.Fork()
	c.currentFlow = thenFlow
	thenExpr := c.compileStatement(n.Then)

	var elseExpr *wasmir.Expr
	elseFlow := parent.Fork()
	if n.Else != nil {
		c.currentFlow = elseFlow
		elseExpr = c.compileStatement(n.Else)
	} else {
		elseExpr = wasmir.Nop()
	}

	if n.Else != nil {
		parent.InheritMutual(thenFlow, elseFlow)
	} else {
		parent.InheritConditional(thenFlow)
	}
	parent.Free(thenFlow)
	parent.Free(elseFlow)
	c.currentFlow = parent

	return wasmir.If(wasmir.None, cond, thenExpr, elseExpr)
}

// compileWhileStmt lowers `while(cond) body` as the canonical
// block{loop{ br_if done !cond; body; br loop }} shape, registering break and
// continue labels on the forked loop-body Flow.
func (c *Compiler) compileWhileStmt(n *ast.WhileStmt) *wasmir.Expr {
	c.breakContext++
	doneLabel := fmt.Sprintf("while.done.%d", c.breakContext)
	loopLabel := fmt.Sprintf("while.loop.%d", c.breakContext)

	parent := c.currentFlow
	bodyFlow := parent.Fork()
	bodyFlow.BreakLabel = doneLabel
	bodyFlow.ContinueLabel = loopLabel
	c.currentFlow = bodyFlow

	condExpr, condType := c.compileExpressionNatural(n.Cond)
	cond := typesys.MakeIsFalseish(condExpr, condType, c.features())
	body := c.compileStatement(n.Body)

	loop := wasmir.Loop(loopLabel, wasmir.None,
		wasmir.BreakIf(doneLabel, cond),
		body,
		wasmir.Break(loopLabel),
	)
	out := wasmir.Block(doneLabel, wasmir.None, loop)

	parent.InheritConditional(bodyFlow)
	parent.Free(bodyFlow)
	c.currentFlow = parent
	return out
}

// compileDoWhileStmt lowers `do body while(cond)`: the body always runs once,
// so its RETURNS/THROWS bits merge unconditionally, while the looped
// iterations' BREAKS/CONTINUES remain conditional.
func (c *Compiler) compileDoWhileStmt(n *ast.DoWhileStmt) *wasmir.Expr {
	c.breakContext++
	doneLabel := fmt.Sprintf("dowhile.done.%d", c.breakContext)
	loopLabel := fmt.Sprintf("dowhile.loop.%d", c.breakContext)

	parent := c.currentFlow
	bodyFlow := parent.Fork()
	bodyFlow.BreakLabel = doneLabel
	bodyFlow.ContinueLabel = loopLabel
	c.currentFlow = bodyFlow

	body := c.compileStatement(n.Body)

	// If the body unconditionally returns or throws, the condition check
	// is unreachable: compile it only for its side effects' sake would be
	// wrong (it can't reference locals freed by the return), so skip it.
	var loop *wasmir.Expr
	if bodyFlow.Has(flow.Returns) || bodyFlow.Has(flow.Throws) {
		loop = wasmir.Loop(loopLabel, wasmir.None, body)
	} else {
		condExpr, condType := c.compileExpressionNatural(n.Cond)
		cond := typesys.MakeIsTrueish(condExpr, condType, c.features())
		loop = wasmir.Loop(loopLabel, wasmir.None,
			body,
			wasmir.BreakIf(loopLabel, cond),
		)
	}
	out := wasmir.Block(doneLabel, wasmir.None, loop)

	loopBits := flow.Breaks | flow.Continues
	before := parent.Flags() & loopBits
	parent.Inherit(bodyFlow)
	merged := parent.Flags()&^loopBits | before
	if bodyFlow.Has(flow.Breaks) {
		merged |= flow.ConditionallyBreaks
	}
	if bodyFlow.Has(flow.Continues) {
		merged |= flow.ConditionallyContinues
	}
	parent.SetFlags(merged)
	parent.Free(bodyFlow)
	c.currentFlow = parent
	return out
}

// compileForStmt lowers the classic three-clause `for`, reusing the parent
// Flow for Init (which introduces the loop variable(s) in the enclosing
// scope, matching the teacher's and the source language's convention that a
// `for` loop variable is not block-scoped to just the condition).
func (c *Compiler) compileForStmt(n *ast.ForStmt) *wasmir.Expr {
	var initExpr *wasmir.Expr
	if n.Init != nil {
		initExpr = c.compileStatement(n.Init)
	} else {
		initExpr = wasmir.Nop()
	}

	c.breakContext++
	doneLabel := fmt.Sprintf("for.done.%d", c.breakContext)
	loopLabel := fmt.Sprintf("for.loop.%d", c.breakContext)
	continueLabel := fmt.Sprintf("for.continue.%d", c.breakContext)

	parent := c.currentFlow
	bodyFlow := parent.Fork()
	bodyFlow.BreakLabel = doneLabel
	bodyFlow.ContinueLabel = continueLabel
	c.currentFlow = bodyFlow

	var cond *wasmir.Expr
	if n.Cond != nil {
		condExpr, condType := c.compileExpressionNatural(n.Cond)
		cond = typesys.MakeIsFalseish(condExpr, condType, c.features())
	} else {
		cond = wasmir.Const(wasmir.I32, int32(0))
	}
	body := c.compileStatement(n.Body)

	var post *wasmir.Expr
	if n.Post != nil {
		post = wasmir.Drop(c.compileExpression(n.Post, nil, typesys.Implicit, true))
	} else {
		post = wasmir.Nop()
	}

	loop := wasmir.Loop(loopLabel, wasmir.None,
		wasmir.BreakIf(doneLabel, cond),
		body,
		wasmir.Block(continueLabel, wasmir.None, post),
		wasmir.Break(loopLabel),
	)
	out := wasmir.Block(doneLabel, wasmir.None, initExpr, loop)

	parent.InheritConditional(bodyFlow)
	parent.Free(bodyFlow)
	c.currentFlow = parent
	return out
}

// compileSwitchStmt lowers a tag-dispatched switch into nested labelled
// blocks, per the design: the tag is evaluated once into a temp local, then
// one br_if per labelled case equal-compares that local against the case's
// own label expression (not the case's position), falling through to a
// trailing br to the default (or done) label.
func (c *Compiler) compileSwitchStmt(n *ast.SwitchStmt) *wasmir.Expr {
	c.breakContext++
	doneLabel := fmt.Sprintf("switch.done.%d", c.breakContext)

	tagExpr, tagType := c.compileExpressionNatural(n.Tag)
	i32Type := typesys.MakeI32()
	tagExpr = c.convert(n.Tag.Pos(), tagExpr, tagType, i32Type, typesys.Implicit, true)
	tagLocal := c.getTempLocal(wasmir.I32, false)

	parent := c.currentFlow
	caseFlow := parent.Fork()
	caseFlow.BreakLabel = doneLabel
	c.currentFlow = caseFlow

	defaultLabel := doneLabel
	caseLabel := func(i int) string { return fmt.Sprintf("switch.case.%d.%d", c.breakContext, i) }
	for i, cc := range n.Cases {
		if cc.Label == nil {
			defaultLabel = caseLabel(i)
		}
	}

	dispatch := make([]*wasmir.Expr, 0, len(n.Cases)+2)
	dispatch = append(dispatch, wasmir.SetLocal(tagLocal, tagExpr))
	for i, cc := range n.Cases {
		if cc.Label == nil {
			continue
		}
		labelExpr := c.compileExpression(cc.Label, &i32Type, typesys.Implicit, true)
		cond := wasmir.Binary(wasmir.EqI32, wasmir.I32, wasmir.GetLocal(tagLocal, wasmir.I32), labelExpr)
		dispatch = append(dispatch, wasmir.BreakIf(caseLabel(i), cond))
	}
	dispatch = append(dispatch, wasmir.Break(defaultLabel))

	body := wasmir.Block("", wasmir.None, append(dispatch, wasmir.Unreachable())...)
	for i, cc := range n.Cases {
		stmts := make([]*wasmir.Expr, 0, len(cc.Body)+1)
		stmts = append(stmts, wasmir.Block(caseLabel(i), wasmir.None, body))
		for _, s := range cc.Body {
			stmts = append(stmts, c.compileStatement(s))
		}
		body = wasmir.Block("", wasmir.None, stmts...)
	}
	out := wasmir.Block(doneLabel, wasmir.None, body)
	c.freeTempLocal(wasmir.I32, tagLocal)

	parent.InheritConditional(caseFlow)
	parent.Free(caseFlow)
	c.currentFlow = parent
	return out
}

func (c *Compiler) compileReturnStmt(n *ast.ReturnStmt) *wasmir.Expr {
	retType := c.currentFlow.ReturnType
	var value *wasmir.Expr
	if n.Value != nil {
		if retType.Kind == typesys.Void {
			c.Diags.Error(diagnostics.TYP006, diagnostics.PhaseCompile, "returning a value from a void function", rngPtr(n.Pos()))
		}
		value = c.compileExpression(n.Value, &retType, typesys.Implicit, true)
	} else if retType.Kind != typesys.Void {
		c.Diags.Error(diagnostics.TYP006, diagnostics.PhaseCompile, "missing return value", rngPtr(n.Pos()))
		value = wasmir.Const(nativeOf(retType), retType.NativeZero())
	}

	c.currentFlow.Set(flow.Returns)
	if retType.Short() && n.Value != nil && !c.currentFlow.CanOverflow(value, retType) {
		c.currentFlow.Set(flow.ReturnsWrapped)
	}

	if c.currentFlow.ReturnLabel != "" {
		if value != nil && c.currentFlow.ResultLocal >= 0 {
			return wasmir.Block("", wasmir.None,
				wasmir.SetLocal(c.currentFlow.ResultLocal, value),
				wasmir.Break(c.currentFlow.ReturnLabel))
		}
		return wasmir.Break(c.currentFlow.ReturnLabel)
	}
	if value == nil {
		return wasmir.Nop()
	}
	return value
}

func (c *Compiler) compileBreakStmt(n *ast.BreakStmt) *wasmir.Expr {
	if n.Label != "" {
		c.Diags.Error(diagnostics.UNS002, diagnostics.PhaseCompile, "labelled break is not supported", rngPtr(n.Pos()))
		return wasmir.Unreachable()
	}
	if c.currentFlow.BreakLabel == "" {
		c.Diags.Error(diagnostics.SEM001, diagnostics.PhaseCompile, "'break' outside any enclosing loop or switch", rngPtr(n.Pos()))
		return wasmir.Unreachable()
	}
	c.currentFlow.Set(flow.Breaks)
	return wasmir.Break(c.currentFlow.BreakLabel)
}

func (c *Compiler) compileContinueStmt(n *ast.ContinueStmt) *wasmir.Expr {
	if n.Label != "" {
		c.Diags.Error(diagnostics.UNS002, diagnostics.PhaseCompile, "labelled continue is not supported", rngPtr(n.Pos()))
		return wasmir.Unreachable()
	}
	if c.currentFlow.ContinueLabel == "" {
		c.Diags.Error(diagnostics.SEM001, diagnostics.PhaseCompile, "'continue' outside any enclosing loop", rngPtr(n.Pos()))
		return wasmir.Unreachable()
	}
	c.currentFlow.Set(flow.Continues)
	return wasmir.Break(c.currentFlow.ContinueLabel)
}

// compileThrowStmt lowers `throw msg` to the abort intrinsic: the reduced
// language has no catchable exception model, matching UNS001's exclusion of
// try/catch, so throw is terminal.
func (c *Compiler) compileThrowStmt(n *ast.ThrowStmt) *wasmir.Expr {
	msg := ""
	if lit, ok := n.Value.(*ast.LiteralExpr); ok && lit.Kind == ast.LitString {
		msg = lit.Text
	}
	c.currentFlow.Set(flow.Throws)
	c.currentFlow.Set(flow.Returns)
	return c.Builtins.Abort(msg)
}
