package ast

// TransformExpr recurses into e's children first (post-order / bottom-up),
// replacing each child with the result of the same recursion, then applies
// fn to the (child-updated) node and returns fn's result. This is the
// traversal the expression optimizer (component E) drives: fn performs one
// rewrite rule and the caller loops TransformExpr until a fixed point.
func TransformExpr(e Expr, fn func(Expr) Expr) Expr {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *PrefixExpr:
		n.Operand = TransformExpr(n.Operand, fn)
	case *BinaryExpr:
		n.Left = TransformExpr(n.Left, fn)
		n.Right = TransformExpr(n.Right, fn)
	case *CallExpr:
		for i, a := range n.Args {
			n.Args[i] = TransformExpr(a, fn)
		}
	case *IndexExpr:
		n.Array = TransformExpr(n.Array, fn)
		n.Index = TransformExpr(n.Index, fn)
	case *TypecastExpr:
		n.Value = TransformExpr(n.Value, fn)
	case *RangeExpr:
		n.From = TransformExpr(n.From, fn)
		n.To = TransformExpr(n.To, fn)
		if n.Step != nil {
			n.Step = TransformExpr(n.Step, fn)
		}
	case *DirectMemoryReadExpr:
		n.Addr = TransformExpr(n.Addr, fn)
	// LiteralExpr, IdentExpr, AddressOfExpr, RegisterExpr have no expr children.
	default:
	}
	return fn(e)
}

// transformTarget applies exprFn to the sub-expressions of an assign
// target (array/index targets embed expressions; the others do not).
func transformTarget(t AssignTarget, exprFn func(Expr) Expr) AssignTarget {
	switch n := t.(type) {
	case *IndexTarget:
		n.Array = TransformExpr(n.Array, exprFn)
		n.Index = TransformExpr(n.Index, exprFn)
	case *MemoryTarget:
		n.Addr = TransformExpr(n.Addr, exprFn)
	}
	return t
}

// TransformStmtList rewrites a statement list bottom-up: for each
// statement, nested statement lists and expressions are transformed first,
// then stmtFn is applied to the statement itself. stmtFn returning nil
// marks the statement for removal; removals are applied once the whole
// input list has been walked (never by mutating the slice mid-iteration),
// matching the deferred-removal invariant in §3/§5.
func TransformStmtList(stmts []Stmt, exprFn func(Expr) Expr, stmtFn func(Stmt) Stmt) []Stmt {
	out := make([]Stmt, 0, len(stmts))
	for _, s := range stmts {
		rewritten := transformStmt(s, exprFn, stmtFn)
		if rewritten != nil {
			out = append(out, rewritten)
		}
	}
	return out
}

func transformStmt(s Stmt, exprFn func(Expr) Expr, stmtFn func(Stmt) Stmt) Stmt {
	switch n := s.(type) {
	case *Assignment:
		for i, t := range n.Targets {
			n.Targets[i] = transformTarget(t, exprFn)
		}
		n.Value = TransformExpr(n.Value, exprFn)
	case *Return:
		for i, v := range n.Values {
			n.Values[i] = TransformExpr(v, exprFn)
		}
	case *IfStatement:
		n.Cond = TransformExpr(n.Cond, exprFn)
		n.True = TransformStmtList(n.True, exprFn, stmtFn)
		n.False = TransformStmtList(n.False, exprFn, stmtFn)
	case *ForLoop:
		n.Iterable = TransformExpr(n.Iterable, exprFn)
		n.Body = TransformStmtList(n.Body, exprFn, stmtFn)
	case *WhileLoop:
		n.Cond = TransformExpr(n.Cond, exprFn)
		n.Body = TransformStmtList(n.Body, exprFn, stmtFn)
	case *RepeatLoop:
		n.Body = TransformStmtList(n.Body, exprFn, stmtFn)
		if n.Cond != nil {
			n.Cond = TransformExpr(n.Cond, exprFn)
		}
	case *PostIncrDecr:
		n.Target = transformTarget(n.Target, exprFn)
	case *FunctionCallStatement:
		for i, a := range n.Call.Args {
			n.Call.Args[i] = TransformExpr(a, exprFn)
		}
	case *BuiltinFunctionStatementPlaceholder:
		for i, a := range n.Args {
			n.Args[i] = TransformExpr(a, exprFn)
		}
	case *AnonymousScope:
		n.Statements = TransformStmtList(n.Statements, exprFn, stmtFn)
	case *VarDecl:
		if n.Value != nil {
			n.Value = TransformExpr(n.Value, exprFn)
		}
		if n.ArraySize != nil {
			n.ArraySize = TransformExpr(n.ArraySize, exprFn)
		}
	case *Subroutine:
		n.Statements = TransformStmtList(n.Statements, exprFn, stmtFn)
	case *Block:
		n.Statements = TransformStmtList(n.Statements, exprFn, stmtFn)
	// Jump, Label, InlineAssembly, Directive, NopStatement have no nested
	// statements or expressions to recurse into.
	default:
	}
	return stmtFn(s)
}

// TransformModule rewrites every top-level statement of a module and
// re-relinks the tree afterward.
func TransformModule(m *Module, exprFn func(Expr) Expr, stmtFn func(Stmt) Stmt) {
	m.Statements = TransformStmtList(m.Statements, exprFn, stmtFn)
	Relink(m)
}

// Relink walks the whole tree from the module root and re-establishes every
// node's parent back-reference. It is the single place parent links are
// ever written; no pass updates them incrementally (§9 DESIGN NOTES).
func Relink(m *Module) {
	for _, s := range m.Statements {
		relinkStmt(s, m)
	}
}

func relinkStmt(s Stmt, parent Node) {
	if s == nil {
		return
	}
	s.setParent(parent)
	switch n := s.(type) {
	case *Assignment:
		for _, t := range n.Targets {
			relinkTarget(t, s)
		}
		relinkExpr(n.Value, s)
	case *Return:
		for _, v := range n.Values {
			relinkExpr(v, s)
		}
	case *IfStatement:
		relinkExpr(n.Cond, s)
		for _, c := range n.True {
			relinkStmt(c, s)
		}
		for _, c := range n.False {
			relinkStmt(c, s)
		}
	case *ForLoop:
		relinkExpr(n.Iterable, s)
		for _, c := range n.Body {
			relinkStmt(c, s)
		}
	case *WhileLoop:
		relinkExpr(n.Cond, s)
		for _, c := range n.Body {
			relinkStmt(c, s)
		}
	case *RepeatLoop:
		for _, c := range n.Body {
			relinkStmt(c, s)
		}
		relinkExpr(n.Cond, s)
	case *PostIncrDecr:
		relinkTarget(n.Target, s)
	case *FunctionCallStatement:
		relinkExpr(n.Call, s)
	case *BuiltinFunctionStatementPlaceholder:
		for _, a := range n.Args {
			relinkExpr(a, s)
		}
	case *AnonymousScope:
		for _, c := range n.Statements {
			relinkStmt(c, s)
		}
	case *VarDecl:
		relinkExpr(n.Value, s)
		relinkExpr(n.ArraySize, s)
	case *Subroutine:
		for _, c := range n.Statements {
			relinkStmt(c, s)
		}
	case *Block:
		for _, c := range n.Statements {
			relinkStmt(c, s)
		}
	}
}

func relinkTarget(t AssignTarget, parent Node) {
	if t == nil {
		return
	}
	t.setParent(parent)
	switch n := t.(type) {
	case *IndexTarget:
		relinkExpr(n.Array, t)
		relinkExpr(n.Index, t)
	case *MemoryTarget:
		relinkExpr(n.Addr, t)
	}
}

func relinkExpr(e Expr, parent Node) {
	if e == nil {
		return
	}
	e.setParent(parent)
	switch n := e.(type) {
	case *PrefixExpr:
		relinkExpr(n.Operand, e)
	case *BinaryExpr:
		relinkExpr(n.Left, e)
		relinkExpr(n.Right, e)
	case *CallExpr:
		for _, a := range n.Args {
			relinkExpr(a, e)
		}
	case *IndexExpr:
		relinkExpr(n.Array, e)
		relinkExpr(n.Index, e)
	case *TypecastExpr:
		relinkExpr(n.Value, e)
	case *RangeExpr:
		relinkExpr(n.From, e)
		relinkExpr(n.To, e)
		relinkExpr(n.Step, e)
	case *DirectMemoryReadExpr:
		relinkExpr(n.Addr, e)
	}
}
