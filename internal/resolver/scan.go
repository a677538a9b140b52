package resolver

import (
	"github.com/sunholo/wasmc/internal/ast"
	"github.com/sunholo/wasmc/internal/typesys"
)

// instantiateGenericUsages walks every source looking for an explicit
// type-argument call (`identity<i32>(x)`) or construction (`new Box<f64>(x)`)
// of a generic prototype that resolvePass skipped (resolvePass only
// eagerly instantiates non-generic declarations). Per the package's
// single-instantiation policy, the first such usage site wins; a generic
// prototype never explicitly instantiated this way is simply never compiled,
// which internal/compiler reports as an unresolved identifier if anything
// still references it by plain name.
func (r *resolver) instantiateGenericUsages(sources []*ast.Source) {
	for _, src := range sources {
		r.scanStmts(src.Statements)
	}
}

func (r *resolver) scanStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.scanStmt(s)
	}
}

func (r *resolver) scanStmt(s ast.Stmt) {
	switch n := s.(type) {
	case nil:
	case *ast.Block:
		r.scanStmts(n.Statements)
	case *ast.ExprStmt:
		r.scanExpr(n.X)
	case *ast.IfStmt:
		r.scanExpr(n.Cond)
		r.scanStmt(n.Then)
		r.scanStmt(n.Else)
	case *ast.WhileStmt:
		r.scanExpr(n.Cond)
		r.scanStmt(n.Body)
	case *ast.DoWhileStmt:
		r.scanStmt(n.Body)
		r.scanExpr(n.Cond)
	case *ast.ForStmt:
		r.scanStmt(n.Init)
		r.scanExpr(n.Cond)
		r.scanExpr(n.Post)
		r.scanStmt(n.Body)
	case *ast.SwitchStmt:
		r.scanExpr(n.Tag)
		for _, c := range n.Cases {
			r.scanExpr(c.Label)
			r.scanStmts(c.Body)
		}
	case *ast.ReturnStmt:
		r.scanExpr(n.Value)
	case *ast.ThrowStmt:
		r.scanExpr(n.Value)
	case *ast.TryStmt:
		r.scanBlock(n.Try)
		r.scanBlock(n.Catch)
		r.scanBlock(n.Finally)
	case *ast.VariableStmt:
		for _, d := range n.Declarators {
			r.scanExpr(d.Init)
		}
	case *ast.FunctionDecl:
		r.scanStmt(n.Body)
	case *ast.ClassDecl:
		r.scanClassBody(n)
	case *ast.EnumDecl:
		for _, m := range n.Members {
			r.scanExpr(m.Init)
		}
	case *ast.GlobalDecl:
		r.scanExpr(n.Init)
	case *ast.NamespaceDecl:
		r.scanStmts(n.Statements)
	case *ast.BreakStmt, *ast.ContinueStmt, *ast.ImportDecl:
		// leaves, nothing to scan
	}
}

func (r *resolver) scanBlock(b *ast.Block) {
	if b == nil {
		return
	}
	r.scanStmts(b.Statements)
}

func (r *resolver) scanClassBody(n *ast.ClassDecl) {
	for _, fd := range n.Fields {
		r.scanExpr(fd.Init)
	}
	if n.Ctor != nil {
		r.scanStmt(n.Ctor.Body)
	}
	for _, m := range n.Methods {
		r.scanStmt(m.Body)
	}
}

func (r *resolver) scanExpr(e ast.Expr) {
	switch n := e.(type) {
	case nil:
	case *ast.BinaryExpr:
		r.scanExpr(n.Left)
		r.scanExpr(n.Right)
	case *ast.UnaryExpr:
		r.scanExpr(n.X)
	case *ast.AssignExpr:
		r.scanExpr(n.Target)
		r.scanExpr(n.Value)
	case *ast.TernaryExpr:
		r.scanExpr(n.Cond)
		r.scanExpr(n.Then)
		r.scanExpr(n.Else)
	case *ast.CallExpr:
		r.scanCall(n)
	case *ast.NewExpr:
		r.scanNew(n)
	case *ast.PropertyAccessExpr:
		r.scanExpr(n.X)
	case *ast.ElementAccessExpr:
		r.scanExpr(n.X)
		r.scanExpr(n.Index)
	case *ast.ArrayLiteralExpr:
		for _, el := range n.Elements {
			r.scanExpr(el)
		}
	case *ast.ObjectLiteralExpr:
		for _, f := range n.Fields {
			r.scanExpr(f.Value)
		}
	case *ast.ParenExpr:
		r.scanExpr(n.X)
	case *ast.AsExpr:
		r.scanExpr(n.X)
	case *ast.IdentExpr, *ast.ThisExpr, *ast.SuperExpr, *ast.LiteralExpr:
		// leaves
	}
}

func (r *resolver) scanCall(n *ast.CallExpr) {
	r.scanExpr(n.Callee)
	for _, a := range n.Args {
		r.scanExpr(a)
	}
	if len(n.TypeArgs) == 0 {
		return
	}
	ident, ok := n.Callee.(*ast.IdentExpr)
	if !ok {
		return
	}
	proto, ok := r.funcProtos[ident.Name]
	if !ok || len(proto.TypeParams) == 0 {
		return
	}
	r.instantiateFunction(proto, r.resolveTypeArgs(n.TypeArgs), nil)
}

func (r *resolver) scanNew(n *ast.NewExpr) {
	for _, a := range n.Args {
		r.scanExpr(a)
	}
	if len(n.TypeArgs) == 0 {
		return
	}
	proto, ok := r.classProtos[n.ClassName]
	if !ok || len(proto.TypeParams) == 0 {
		return
	}
	r.instantiateClass(proto, r.resolveTypeArgs(n.TypeArgs))
}

func (r *resolver) resolveTypeArgs(nodes []ast.TypeNode) []typesys.Type {
	out := make([]typesys.Type, len(nodes))
	for i, tn := range nodes {
		out[i] = r.resolveTypeNode(tn, nil)
	}
	return out
}
