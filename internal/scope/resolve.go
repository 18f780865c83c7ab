package scope

import (
	"fmt"

	"github.com/xyproto/c64c/internal/ast"
)

// BindAll walks m and resolves every identifier reference (IdentExpr,
// CallExpr, IdentTarget) against ns, populating each node's Decl field.
// Unresolved names are reported as errors but do not stop the walk — the
// checker's own NameError rules surface them again with fuller context,
// consistent with §5's read-only, best-effort namespace queries.
func (ns *Namespace) BindAll(m *ast.Module) []error {
	var errs []error
	bindStatements(ns, ns.Module, m.Statements, &errs)
	return errs
}

func bindStatements(ns *Namespace, s *Scope, stmts []ast.Stmt, errs *[]error) {
	for _, stmt := range stmts {
		bindStmt(ns, s, stmt, errs)
	}
}

func bindStmt(ns *Namespace, s *Scope, stmt ast.Stmt, errs *[]error) {
	switch n := stmt.(type) {
	case *ast.VarDecl:
		if n.Value != nil {
			bindExpr(ns, s, n.Value, errs)
		}
		if n.ArraySize != nil {
			bindExpr(ns, s, n.ArraySize, errs)
		}
	case *ast.Subroutine:
		childSc, ok := ns.ScopeOf(n)
		if !ok {
			childSc = s
		}
		bindStatements(ns, childSc, n.Statements, errs)
	case *ast.Block:
		childSc, ok := ns.ScopeOf(n)
		if !ok {
			childSc = s
		}
		bindStatements(ns, childSc, n.Statements, errs)
	case *ast.AnonymousScope:
		childSc, ok := ns.ScopeOf(n)
		if !ok {
			childSc = s
		}
		bindStatements(ns, childSc, n.Statements, errs)
	case *ast.Assignment:
		bindExpr(ns, s, n.Value, errs)
		for _, t := range n.Targets {
			bindTarget(ns, s, t, errs)
		}
	case *ast.PostIncrDecr:
		bindTarget(ns, s, n.Target, errs)
	case *ast.IfStatement:
		bindExpr(ns, s, n.Cond, errs)
		bindStatements(ns, s, n.True, errs)
		bindStatements(ns, s, n.False, errs)
	case *ast.ForLoop:
		bindExpr(ns, s, n.Iterable, errs)
		bindStatements(ns, s, n.Body, errs)
	case *ast.WhileLoop:
		bindExpr(ns, s, n.Cond, errs)
		bindStatements(ns, s, n.Body, errs)
	case *ast.RepeatLoop:
		if n.Cond != nil {
			bindExpr(ns, s, n.Cond, errs)
		}
		bindStatements(ns, s, n.Body, errs)
	case *ast.Return:
		for _, v := range n.Values {
			bindExpr(ns, s, v, errs)
		}
	case *ast.FunctionCallStatement:
		bindExpr(ns, s, n.Call, errs)
	}
}

func bindExpr(ns *Namespace, s *Scope, e ast.Expr, errs *[]error) {
	switch n := e.(type) {
	case *ast.IdentExpr:
		decl, ok := ns.Resolve(s, n.Name)
		if !ok {
			*errs = append(*errs, fmt.Errorf("%s: undefined identifier %q", n.Pos(), n.Name))
			return
		}
		n.Decl = decl
	case *ast.PrefixExpr:
		bindExpr(ns, s, n.Operand, errs)
	case *ast.BinaryExpr:
		bindExpr(ns, s, n.Left, errs)
		bindExpr(ns, s, n.Right, errs)
	case *ast.CallExpr:
		for _, a := range n.Args {
			bindExpr(ns, s, a, errs)
		}
		if decl, ok := ns.Resolve(s, n.Target); ok {
			if _, isSub := decl.(*ast.Subroutine); isSub {
				n.Decl = decl
			}
		}
	case *ast.IndexExpr:
		bindExpr(ns, s, n.Array, errs)
		bindExpr(ns, s, n.Index, errs)
	case *ast.TypecastExpr:
		bindExpr(ns, s, n.Value, errs)
	case *ast.RangeExpr:
		bindExpr(ns, s, n.From, errs)
		bindExpr(ns, s, n.To, errs)
		if n.Step != nil {
			bindExpr(ns, s, n.Step, errs)
		}
	case *ast.DirectMemoryReadExpr:
		bindExpr(ns, s, n.Addr, errs)
	}
}

func bindTarget(ns *Namespace, s *Scope, t ast.AssignTarget, errs *[]error) {
	switch n := t.(type) {
	case *ast.IdentTarget:
		decl, ok := ns.Resolve(s, n.Name)
		if !ok {
			*errs = append(*errs, fmt.Errorf("%s: undefined identifier %q", n.Pos(), n.Name))
			return
		}
		n.Decl = decl
	case *ast.IndexTarget:
		bindExpr(ns, s, n.Array, errs)
		bindExpr(ns, s, n.Index, errs)
	case *ast.MemoryTarget:
		bindExpr(ns, s, n.Addr, errs)
	}
}
