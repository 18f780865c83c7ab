package check

import (
	"github.com/xyproto/c64c/internal/ast"
	"github.com/xyproto/c64c/internal/diag"
)

// checkLabelPlacement enforces §4.G "Scope": labels are valid only directly
// inside a Block, Subroutine, or AnonymousScope.
func (c *Checker) checkLabelPlacement(container ast.Node, l *ast.Label) {
	switch container.(type) {
	case *ast.Block, *ast.Subroutine, *ast.AnonymousScope:
		return
	default:
		c.errorf(diag.CategorySyntax, l.Pos(), "label %q is not valid outside a block, subroutine, or anonymous scope", l.Name)
	}
}

// checkSubroutinePlacement enforces §4.G "Scope": subroutines are valid
// only directly inside a Block or another Subroutine.
func (c *Checker) checkSubroutinePlacement(container ast.Node, s *ast.Subroutine) {
	switch container.(type) {
	case *ast.Block, *ast.Subroutine:
		return
	default:
		c.errorf(diag.CategorySyntax, s.Pos(), "subroutine %q is not valid outside a block or another subroutine", s.Name)
	}
}
