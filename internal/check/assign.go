package check

import (
	"github.com/xyproto/c64c/internal/ast"
	"github.com/xyproto/c64c/internal/diag"
	"github.com/xyproto/c64c/internal/scope"
	"github.com/xyproto/c64c/internal/value"
)

// checkAssignment enforces §4.G "Assignment": the target must be a
// register, variable, array index, or memory address; CONST targets are
// rejected; augmented assignment is desugared in place; and the
// right-hand-side type must be compatible with the target's type.
func (c *Checker) checkAssignment(sc *scope.Scope, a *ast.Assignment) {
	if a.AugOp != "" {
		desugarAugmentedAssignment(a)
	}

	c.checkExprIn(sc, a.Value)

	isAsmCall := isAsmSubroutineCall(a.Value)
	if len(a.Targets) > 1 && !isAsmCall {
		c.errorf(diag.CategorySyntax, a.Pos(), "multi-target assignment is only valid for calls to asm subroutines with matching return arity")
	}

	valueType := c.typeOf(sc, a.Value)
	for i, target := range a.Targets {
		c.checkAssignTarget(sc, target)
		if isAsmCall && len(a.Targets) > 1 {
			continue // per-slot arity/type match already enforced by checkCall
		}
		if i > 0 {
			continue
		}
		targetType := c.targetType(sc, target)
		if targetType == value.UNDEFINED || valueType == value.UNDEFINED {
			continue
		}
		if !assignableTo(targetType, valueType) {
			c.errorf(diag.CategoryExpression, a.Pos(), "cannot assign %s to target of type %s", valueType, targetType)
		}
	}
}

func isAsmSubroutineCall(e ast.Expr) bool {
	call, ok := e.(*ast.CallExpr)
	if !ok {
		return false
	}
	sub, ok := call.Decl.(*ast.Subroutine)
	return ok && sub.IsAsmSubroutine
}

// desugarAugmentedAssignment rewrites `target op= value` in place to
// `target = target op value`, per §4.G; the statement optimizer's strength
// reduction rules then operate uniformly on the expanded form.
func desugarAugmentedAssignment(a *ast.Assignment) {
	if len(a.Targets) != 1 {
		return
	}
	lhs := targetToExpr(a.Targets[0])
	if lhs == nil {
		return
	}
	a.Value = ast.NewBinaryExpr(lhs, a.AugOp, a.Value, a.Pos())
	a.AugOp = ""
}

func targetToExpr(t ast.AssignTarget) ast.Expr {
	switch n := t.(type) {
	case *ast.IdentTarget:
		id := ast.NewIdentExpr(n.Name, n.Pos())
		id.Decl = n.Decl
		return id
	case *ast.RegisterTarget:
		return ast.NewRegisterExpr(n.Register, n.Pos())
	case *ast.IndexTarget:
		return ast.NewIndexExpr(n.Array, n.Index, n.Pos())
	case *ast.MemoryTarget:
		return ast.NewDirectMemoryReadExpr(n.Addr, n.Pos())
	default:
		return nil
	}
}

func (c *Checker) checkAssignTarget(sc *scope.Scope, t ast.AssignTarget) {
	switch n := t.(type) {
	case *ast.IdentTarget:
		if vd, ok := n.Decl.(*ast.VarDecl); ok && vd.Kind == ast.CONST {
			c.errorf(diag.CategoryExpression, n.Pos(), "cannot assign to const %q", n.Name)
		}
	case *ast.IndexTarget:
		c.checkExprIn(sc, n.Array)
		c.checkExprIn(sc, n.Index)
	case *ast.MemoryTarget:
		c.checkExprIn(sc, n.Addr)
	}
}

func (c *Checker) targetType(sc *scope.Scope, t ast.AssignTarget) value.DataType {
	switch n := t.(type) {
	case *ast.IdentTarget:
		return c.declType(n.Decl)
	case *ast.RegisterTarget:
		return value.UBYTE
	case *ast.IndexTarget:
		return c.typeOf(sc, n.Array).ElementType()
	case *ast.MemoryTarget:
		return value.UBYTE
	default:
		return value.UNDEFINED
	}
}

// assignableTo implements §4.G's assignment compatibility table: BYTE<-BYTE,
// UBYTE<-UBYTE, WORD<-{BYTE,UBYTE,WORD}, UWORD<-{UBYTE,UWORD}, FLOAT<-Numeric,
// STR<-STR, STR_S<-STR_S. Word->Byte narrowing requires an explicit
// msb/lsb call and Float->Integer is always forbidden, so neither appears
// on the right-hand side of this table.
func assignableTo(target, source value.DataType) bool {
	switch target {
	case value.BYTE:
		return source == value.BYTE
	case value.UBYTE:
		return source == value.UBYTE
	case value.WORD:
		return source == value.BYTE || source == value.UBYTE || source == value.WORD
	case value.UWORD:
		return source == value.UBYTE || source == value.UWORD
	case value.FLOAT:
		return source.IsNumeric()
	case value.STR:
		return source == value.STR
	case value.STR_S:
		return source == value.STR_S
	default:
		if target.IsArray() {
			return target == source
		}
		return false
	}
}

// checkPostIncrDecr enforces §4.G "PostIncrDecr": the target must be a
// numeric variable, numeric array element, or memory address.
func (c *Checker) checkPostIncrDecr(sc *scope.Scope, p *ast.PostIncrDecr) {
	c.checkAssignTarget(sc, p.Target)
	t := c.targetType(sc, p.Target)
	if t == value.UNDEFINED {
		return
	}
	if _, ok := p.Target.(*ast.RegisterTarget); ok {
		return
	}
	if !t.IsNumeric() {
		c.errorf(diag.CategoryExpression, p.Pos(), "%s target must be numeric, got %s", p.Op, t)
	}
}
