package check

import (
	"github.com/xyproto/c64c/internal/ast"
	"github.com/xyproto/c64c/internal/diag"
	"github.com/xyproto/c64c/internal/scope"
	"github.com/xyproto/c64c/internal/value"
)

// checkReturn enforces §4.G "return": the number of returned values must
// match the enclosing subroutine's declared return types, and each value's
// type must match (or the sole returned expression may be a function call,
// whose own arity/type the callee already guarantees).
func (c *Checker) checkReturn(sc *scope.Scope, container ast.Node, r *ast.Return) {
	for _, v := range r.Values {
		c.checkExprIn(sc, v)
	}

	sub := enclosingSubroutine(container)
	if sub == nil {
		c.errorf(diag.CategorySyntax, r.Pos(), "return statement is not inside a subroutine")
		return
	}
	if r.FromIRQ {
		return
	}

	if len(r.Values) == 1 {
		if _, ok := r.Values[0].(*ast.CallExpr); ok {
			return
		}
	}

	if len(r.Values) != len(sub.ReturnType) {
		c.errorf(diag.CategorySyntax, r.Pos(), "subroutine %q returns %d value(s), statement returns %d", sub.Name, len(sub.ReturnType), len(r.Values))
		return
	}
	for i, v := range r.Values {
		vt := c.typeOf(sc, v)
		if vt == value.UNDEFINED {
			continue
		}
		if !assignableTo(sub.ReturnType[i], vt) {
			c.errorf(diag.CategoryExpression, v.Pos(), "return value %d has type %s, want %s", i+1, vt, sub.ReturnType[i])
		}
	}
}

// enclosingSubroutine returns container itself if it is a Subroutine.
// container always names the nearest enclosing Block/Subroutine/Module as
// tracked by checkStatements's traversal, and AnonymousScope bodies keep their outer container rather than replacing
// it, so a Subroutine value here always means "this return sits directly
// or indirectly inside that subroutine's own statement list."
func enclosingSubroutine(container ast.Node) *ast.Subroutine {
	sub, _ := container.(*ast.Subroutine)
	return sub
}
