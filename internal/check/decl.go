package check

import (
	"github.com/xyproto/c64c/internal/ast"
	"github.com/xyproto/c64c/internal/diag"
	"github.com/xyproto/c64c/internal/scope"
	"github.com/xyproto/c64c/internal/value"
)

// checkVarDecl enforces §4.G "Declarations" and performs the checker's one
// permitted mutation: injecting a default initializer into an uninitialized
// VAR declaration.
func (c *Checker) checkVarDecl(sc *scope.Scope, d *ast.VarDecl) {
	if d.Kind == ast.CONST && !d.DataType.IsNumeric() {
		c.errorf(diag.CategoryExpression, d.Pos(), "const %q must have a numeric type, got %s", d.Name, d.DataType)
	}

	if d.DataType == value.FLOAT && !c.floatsEnabled {
		c.errorf(diag.CategorySyntax, d.Pos(), "%q uses FLOAT but the module does not declare %%option enable_floats", d.Name)
	}

	if d.Address != nil && (*d.Address < 0 || *d.Address > 65535) {
		c.errorf(diag.CategoryExpression, d.Pos(), "memory address %d for %q is out of range 0..65535", *d.Address, d.Name)
	}

	if d.ArraySize == nil && d.DataType.IsArray() {
		if d.Value == nil || !c.isIterableInitializer(d.Value) {
			c.errorf(diag.CategorySyntax, d.Pos(), "unsized array %q must have an iterable initializer", d.Name)
		}
	}
	if d.Kind == ast.MEMORY && d.DataType.IsArray() && d.ArraySize == nil {
		c.errorf(diag.CategorySyntax, d.Pos(), "memory-mapped array %q must declare a size", d.Name)
	}

	if d.ArraySize != nil {
		c.checkArraySize(sc, d)
	}

	if d.Value != nil && referencesSelf(d, d.Value) {
		c.errorf(diag.CategoryName, d.Pos(), "initializer of %q recursively refers to itself", d.Name)
	}

	if d.Value != nil {
		c.checkExprIn(sc, d.Value)
	}

	if d.Kind == ast.VAR && d.Value == nil {
		c.injectDefault(d)
	}
}

func (c *Checker) isIterableInitializer(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		return n.Value.Type.IsIterable()
	case *ast.RangeExpr:
		return true
	default:
		return false
	}
}

func (c *Checker) checkArraySize(sc *scope.Scope, d *ast.VarDecl) {
	lit, ok := c.foldConst(d.ArraySize)
	if !ok || !lit.Type.IsInteger() {
		c.errorf(diag.CategoryExpression, d.Pos(), "array size of %q must be a constant integer expression", d.Name)
		return
	}
	n := lit.AsIntegerValue()
	arrType := value.ArrayOf(d.DataType)
	max := value.MaxArrayLen(arrType)
	if n <= 0 || int(n) > max {
		c.errorf(diag.CategoryExpression, d.Pos(), "array size %d for %q is out of bounds 1..%d", n, d.Name, max)
	}
}

// referencesSelf reports whether e contains an IdentExpr resolved to d
// itself — a recursive initializer, forbidden per §4.G.
func referencesSelf(d *ast.VarDecl, e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.IdentExpr:
		return n.Decl == d
	case *ast.BinaryExpr:
		return referencesSelf(d, n.Left) || referencesSelf(d, n.Right)
	case *ast.PrefixExpr:
		return referencesSelf(d, n.Operand)
	case *ast.IndexExpr:
		return referencesSelf(d, n.Array) || referencesSelf(d, n.Index)
	case *ast.TypecastExpr:
		return referencesSelf(d, n.Value)
	case *ast.CallExpr:
		for _, a := range n.Args {
			if referencesSelf(d, a) {
				return true
			}
		}
	}
	return false
}

// injectDefault gives an uninitialized VAR declaration its default value:
// numeric zero for numeric types, or the heap's empty-string sentinel for
// string types. This is the checker's one sanctioned tree mutation (§4.G).
func (c *Checker) injectDefault(d *ast.VarDecl) {
	switch {
	case d.DataType.IsNumeric():
		zero, err := value.FromNumber(0, d.DataType, d.Pos())
		if err == nil {
			d.Value = ast.NewLiteralExpr(zero)
		}
	case d.DataType.IsString():
		id := c.heap.StringSentinel()
		d.Value = ast.NewLiteralExpr(value.NewHeapLiteral(d.DataType, id, d.Pos()))
	}
}
