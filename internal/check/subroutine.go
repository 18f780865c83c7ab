package check

import (
	"github.com/xyproto/c64c/internal/ast"
	"github.com/xyproto/c64c/internal/diag"
	"github.com/xyproto/c64c/internal/scope"
)

// checkSubroutine enforces §4.G "Subroutine": unique parameter names, at
// most one return value for user-defined subs, numeric-only parameters for
// non-asm subs, and the asm register-binding rules.
func (c *Checker) checkSubroutine(sc *scope.Scope, s *ast.Subroutine) {
	seen := make(map[string]bool)
	for _, p := range s.Params {
		if seen[p.Name] {
			c.errorf(diag.CategoryName, s.Pos(), "subroutine %q has a duplicate parameter name %q", s.Name, p.Name)
		}
		seen[p.Name] = true
	}

	if s.IsAsmSubroutine {
		c.checkAsmRegisters(s)
	} else {
		if len(s.ReturnType) > 1 {
			c.errorf(diag.CategorySyntax, s.Pos(), "subroutine %q returns %d values, user-defined subroutines return at most 1", s.Name, len(s.ReturnType))
		}
		for _, p := range s.Params {
			if !p.Type.IsNumeric() {
				c.errorf(diag.CategoryExpression, s.Pos(), "parameter %q of subroutine %q must be numeric, got %s", p.Name, s.Name, p.Type)
			}
		}
	}

	if len(s.ReturnType) > 0 && !s.IsAsmSubroutine {
		if !containsReturnOrJump(s.Statements) {
			c.errorf(diag.CategorySyntax, s.Pos(), "subroutine %q declares a return type but contains no return or goto", s.Name)
		}
	}

	childSc, _ := c.ns.ScopeOf(s)
	if childSc == nil {
		childSc = sc
	}
	c.checkStatements(childSc, s.Statements, s)
}

func containsReturnOrJump(stmts []ast.Stmt) bool {
	for _, stmt := range stmts {
		switch n := stmt.(type) {
		case *ast.Return, *ast.Jump:
			return true
		case *ast.IfStatement:
			if containsReturnOrJump(n.True) || containsReturnOrJump(n.False) {
				return true
			}
		case *ast.WhileLoop:
			if containsReturnOrJump(n.Body) {
				return true
			}
		case *ast.RepeatLoop:
			if containsReturnOrJump(n.Body) {
				return true
			}
		case *ast.ForLoop:
			if containsReturnOrJump(n.Body) {
				return true
			}
		case *ast.AnonymousScope:
			if containsReturnOrJump(n.Statements) {
				return true
			}
		}
	}
	return false
}

// checkAsmRegisters enforces the asm-subroutine register rules: no register
// reused across parameters, none reused across return values, and no
// overlap between clobbers and return registers.
func (c *Checker) checkAsmRegisters(s *ast.Subroutine) {
	paramRegs := make(map[string]bool)
	for _, rs := range s.AsmParamRegisters {
		if paramRegs[rs.Register] {
			c.errorf(diag.CategorySyntax, s.Pos(), "asm subroutine %q reuses register %q across parameters", s.Name, rs.Register)
		}
		paramRegs[rs.Register] = true
	}

	retRegs := make(map[string]bool)
	for _, rs := range s.AsmReturnRegisters {
		if retRegs[rs.Register] {
			c.errorf(diag.CategorySyntax, s.Pos(), "asm subroutine %q reuses register %q across return values", s.Name, rs.Register)
		}
		retRegs[rs.Register] = true
	}

	for clobber := range clobberSet(s.AsmClobbers) {
		if retRegs[clobber] {
			c.errorf(diag.CategorySyntax, s.Pos(), "asm subroutine %q clobbers return register %q", s.Name, clobber)
		}
	}
}

func clobberSet(clobbers []string) map[string]bool {
	out := make(map[string]bool, len(clobbers))
	for _, r := range clobbers {
		out[r] = true
	}
	return out
}
