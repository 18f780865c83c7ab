package optimize

import "github.com/xyproto/c64c/internal/ast"

// cloneExpr returns a structurally independent copy of e. Several rewrite
// rules need the same sub-expression to appear in more than one synthesized
// statement (expanding x <<= 3 into three lsl(x) calls, for instance);
// sharing one node across statements would let Relink's parent
// back-reference bookkeeping silently clobber itself, since the last
// relink visit wins.
func cloneExpr(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case nil:
		return nil
	case *ast.LiteralExpr:
		return ast.NewLiteralExpr(n.Value)
	case *ast.IdentExpr:
		c := ast.NewIdentExpr(n.Name, n.Pos())
		c.Decl = n.Decl
		return c
	case *ast.PrefixExpr:
		return ast.NewPrefixExpr(n.Op, cloneExpr(n.Operand), n.Pos())
	case *ast.BinaryExpr:
		return ast.NewBinaryExpr(cloneExpr(n.Left), n.Op, cloneExpr(n.Right), n.Pos())
	case *ast.CallExpr:
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = cloneExpr(a)
		}
		c := ast.NewCallExpr(n.Target, args, n.Pos())
		c.Decl = n.Decl
		return c
	case *ast.IndexExpr:
		return ast.NewIndexExpr(cloneExpr(n.Array), cloneExpr(n.Index), n.Pos())
	case *ast.AddressOfExpr:
		c := ast.NewAddressOfExpr(n.Name, n.Pos())
		c.ScopedName = n.ScopedName
		return c
	case *ast.TypecastExpr:
		return ast.NewTypecastExpr(cloneExpr(n.Value), n.Type, n.Pos())
	case *ast.RangeExpr:
		return ast.NewRangeExpr(cloneExpr(n.From), cloneExpr(n.To), cloneExpr(n.Step), n.Pos())
	case *ast.RegisterExpr:
		return ast.NewRegisterExpr(n.Register, n.Pos())
	case *ast.DirectMemoryReadExpr:
		return ast.NewDirectMemoryReadExpr(cloneExpr(n.Addr), n.Pos())
	default:
		return e
	}
}

// cloneTarget returns a structurally independent copy of t, for the same
// reason as cloneExpr.
func cloneTarget(t ast.AssignTarget) ast.AssignTarget {
	switch n := t.(type) {
	case *ast.RegisterTarget:
		return ast.NewRegisterTarget(n.Register, n.Pos())
	case *ast.IdentTarget:
		c := ast.NewIdentTarget(n.Name, n.Pos())
		c.Decl = n.Decl
		return c
	case *ast.IndexTarget:
		return ast.NewIndexTarget(cloneExpr(n.Array), cloneExpr(n.Index), n.Pos())
	case *ast.MemoryTarget:
		return ast.NewMemoryTarget(cloneExpr(n.Addr), n.Pos())
	default:
		return t
	}
}
