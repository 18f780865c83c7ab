// Package optimize implements components E and F: the expression-level
// constant folder and the statement-level structural optimizer the pipeline
// drives to a fixed point before handing the tree to the checker.
package optimize

import (
	"github.com/xyproto/c64c/internal/ast"
	"github.com/xyproto/c64c/internal/builtin"
	"github.com/xyproto/c64c/internal/eval"
	"github.com/xyproto/c64c/internal/value"
)

// ExprFolder drives component E over one pass of the tree. Each rule fires
// only when its operands are already literal — TransformExpr recurses
// bottom-up, so a nested binary expression is folded before its parent is
// visited — and an evaluation error simply leaves the node untouched for
// the next pass, per §4.D.
type ExprFolder struct {
	Heap  *value.Heap
	Count int
}

// OptimizeExpressions runs one pass of expression folding over m and
// returns the number of rewrites applied; the pipeline's fixed-point driver
// calls this repeatedly until it returns zero.
func OptimizeExpressions(m *ast.Module, heap *value.Heap) int {
	f := &ExprFolder{Heap: heap}
	identityStmt := func(s ast.Stmt) ast.Stmt { return s }
	ast.TransformModule(m, f.rewrite, identityStmt)
	return f.Count
}

func (f *ExprFolder) rewrite(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.IdentExpr:
		return f.foldConstIdent(n)
	case *ast.PrefixExpr:
		return f.foldPrefix(n)
	case *ast.BinaryExpr:
		return f.foldBinary(n)
	case *ast.RangeExpr:
		return f.materializeRange(n)
	case *ast.CallExpr:
		return f.foldPureCall(n)
	default:
		return e
	}
}

// foldConstIdent inlines a reference to a CONST whose own initializer has
// already folded to a literal.
func (f *ExprFolder) foldConstIdent(n *ast.IdentExpr) ast.Expr {
	vd, ok := n.Decl.(*ast.VarDecl)
	if !ok || vd.Kind != ast.CONST {
		return n
	}
	lit, ok := vd.Value.(*ast.LiteralExpr)
	if !ok {
		return n
	}
	f.Count++
	return ast.NewLiteralExpr(lit.Value)
}

func (f *ExprFolder) foldPrefix(n *ast.PrefixExpr) ast.Expr {
	lit, ok := n.Operand.(*ast.LiteralExpr)
	if !ok {
		return n
	}
	result, err := eval.EvaluateUnary(n.Op, lit.Value)
	if err != nil {
		return n
	}
	f.Count++
	return ast.NewLiteralExpr(result)
}

func (f *ExprFolder) foldBinary(n *ast.BinaryExpr) ast.Expr {
	left, ok1 := n.Left.(*ast.LiteralExpr)
	right, ok2 := n.Right.(*ast.LiteralExpr)
	if !ok1 || !ok2 {
		return n
	}
	result, err := eval.Evaluate(f.Heap, left.Value, n.Op, right.Value)
	if err != nil {
		return n
	}
	f.Count++
	return ast.NewLiteralExpr(result)
}

// materializeRange folds a from..to[:step] range with constant endpoints
// into an array (integer endpoints) or string (single-character endpoints)
// literal.
func (f *ExprFolder) materializeRange(n *ast.RangeExpr) ast.Expr {
	from, ok1 := n.From.(*ast.LiteralExpr)
	to, ok2 := n.To.(*ast.LiteralExpr)
	if !ok1 || !ok2 {
		return n
	}
	var step value.Literal
	if n.Step != nil {
		s, ok := n.Step.(*ast.LiteralExpr)
		if !ok {
			return n
		}
		step = s.Value
	}

	if from.Value.Type.IsString() && to.Value.Type.IsString() {
		fromCh, ok1 := singleChar(f.Heap, from.Value)
		toCh, ok2 := singleChar(f.Heap, to.Value)
		if !ok1 || !ok2 {
			return n
		}
		result, err := eval.MaterializeCharRange(f.Heap, fromCh, toCh, from.Value.Type, n.Pos())
		if err != nil {
			return n
		}
		f.Count++
		return ast.NewLiteralExpr(result)
	}

	result, err := eval.MaterializeIntRange(f.Heap, from.Value, to.Value, step, n.Pos())
	if err != nil {
		return n
	}
	f.Count++
	return ast.NewLiteralExpr(result)
}

// singleChar extracts the lone byte of a one-character STR/STR_S literal.
func singleChar(heap *value.Heap, lit value.Literal) (byte, bool) {
	entry, err := heap.String(lit.HeapID())
	if err != nil || len(entry.Str) != 1 {
		return 0, false
	}
	return entry.Str[0], true
}

func (f *ExprFolder) foldPureCall(n *ast.CallExpr) ast.Expr {
	if !builtin.IsPure(n.Target) {
		return n
	}
	args := make([]value.Literal, len(n.Args))
	for i, a := range n.Args {
		lit, ok := a.(*ast.LiteralExpr)
		if !ok {
			return n
		}
		args[i] = lit.Value
	}
	result, err := foldBuiltinCall(f.Heap, n.Target, args, n.Pos())
	if err != nil {
		return n
	}
	f.Count++
	return ast.NewLiteralExpr(result)
}
