// Package check implements component G: the semantic checker. It walks a
// resolved module once, accumulating SyntaxError/ExpressionError/NameError
// diagnostics into a deduplicated diag.Bag, and performs the one tree
// mutation the checker is permitted — injecting a default initializer
// (numeric zero or the empty-string sentinel) into an uninitialized VAR
// declaration.
package check

import (
	"github.com/xyproto/c64c/internal/ast"
	"github.com/xyproto/c64c/internal/builtin"
	"github.com/xyproto/c64c/internal/diag"
	"github.com/xyproto/c64c/internal/eval"
	"github.com/xyproto/c64c/internal/scope"
	"github.com/xyproto/c64c/internal/value"
)

// Checker holds the state shared by every rule: the namespace built by
// component C, the heap literals are allocated on, and the diagnostic bag
// rules report into.
type Checker struct {
	ns   *scope.Namespace
	heap *value.Heap
	bag  *diag.Bag

	floatsEnabled bool
	seenMain      int
	seenIRQ       int
	directives    map[string]int // module-level directive name -> count
}

// New creates a Checker over an already-built namespace and heap.
func New(ns *scope.Namespace, heap *value.Heap) *Checker {
	return &Checker{ns: ns, heap: heap, bag: diag.NewBag(), directives: make(map[string]int)}
}

// Bag exposes the accumulated diagnostics.
func (c *Checker) Bag() *diag.Bag { return c.bag }

// errorf records an error-level diagnostic at pos.
func (c *Checker) errorf(cat diag.Category, pos value.Position, format string, args ...any) {
	c.bag.Add(diag.New(cat, pos, format, args...))
}

// warnf records a warning-level diagnostic at pos.
func (c *Checker) warnf(cat diag.Category, pos value.Position, format string, args ...any) {
	c.bag.Add(diag.Warningf(cat, pos, format, args...))
}

// Check runs every rule over m and returns the resulting diagnostics. The
// caller should treat c.Bag().HasErrors() as the signal to stop compilation;
// per §4.G warnings never do.
func Check(m *ast.Module, ns *scope.Namespace, heap *value.Heap) *diag.Bag {
	c := New(ns, heap)
	c.checkModuleStructure(m)
	c.checkStatements(ns.Module, m.Statements, m)
	return c.bag
}

// checkStatements dispatches every statement in stmts (whose enclosing
// scope is sc) to its rule set. container is the nearest enclosing
// Block/Subroutine/Module (an AnonymousScope's body keeps its outer
// container), used by the scope-placement rules.
func (c *Checker) checkStatements(sc *scope.Scope, stmts []ast.Stmt, container ast.Node) {
	for _, stmt := range stmts {
		c.checkStmt(sc, stmt, container)
	}
}

func (c *Checker) checkStmt(sc *scope.Scope, stmt ast.Stmt, container ast.Node) {
	switch n := stmt.(type) {
	case *ast.VarDecl:
		c.checkVarDecl(sc, n)
	case *ast.Subroutine:
		c.checkSubroutinePlacement(container, n)
		c.checkSubroutine(sc, n)
	case *ast.Block:
		c.checkBlockContents(n)
		childSc, _ := c.ns.ScopeOf(n)
		c.checkStatements(childSc, n.Statements, n)
	case *ast.AnonymousScope:
		childSc, _ := c.ns.ScopeOf(n)
		c.checkStatements(childSc, n.Statements, container)
	case *ast.Label:
		c.checkLabelPlacement(container, n)
	case *ast.Assignment:
		c.checkAssignment(sc, n)
	case *ast.PostIncrDecr:
		c.checkPostIncrDecr(sc, n)
	case *ast.IfStatement:
		c.checkExprIn(sc, n.Cond)
		c.checkStatements(sc, n.True, container)
		c.checkStatements(sc, n.False, container)
		c.checkConstantConditional(sc, n)
	case *ast.ForLoop:
		c.checkForLoop(sc, n)
		c.checkStatements(sc, n.Body, container)
	case *ast.WhileLoop:
		c.checkExprIn(sc, n.Cond)
		c.checkStatements(sc, n.Body, container)
	case *ast.RepeatLoop:
		if n.Cond != nil {
			c.checkExprIn(sc, n.Cond)
		}
		c.checkStatements(sc, n.Body, container)
	case *ast.Return:
		c.checkReturn(sc, container, n)
	case *ast.FunctionCallStatement:
		c.checkExprIn(sc, n.Call)
	case *ast.Directive:
		c.checkDirective(container, n)
	case *ast.Jump, *ast.InlineAssembly, *ast.NopStatement, *ast.BuiltinFunctionStatementPlaceholder:
		// No standing rule in §4.G beyond what name resolution already
		// enforces on Jump's target.
	}
}

// checkExprIn runs the expression-level rules (binary typing, call, index,
// typecast) over every node of e.
func (c *Checker) checkExprIn(sc *scope.Scope, e ast.Expr) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.BinaryExpr:
		c.checkExprIn(sc, n.Left)
		c.checkExprIn(sc, n.Right)
		c.checkBinaryOperator(sc, n)
	case *ast.PrefixExpr:
		c.checkExprIn(sc, n.Operand)
	case *ast.CallExpr:
		for _, a := range n.Args {
			c.checkExprIn(sc, a)
		}
		c.checkCall(sc, n)
	case *ast.IndexExpr:
		c.checkExprIn(sc, n.Array)
		c.checkExprIn(sc, n.Index)
		c.checkIndex(sc, n)
	case *ast.TypecastExpr:
		c.checkExprIn(sc, n.Value)
		c.checkTypecast(n)
	case *ast.RangeExpr:
		c.checkExprIn(sc, n.From)
		c.checkExprIn(sc, n.To)
		if n.Step != nil {
			c.checkExprIn(sc, n.Step)
		}
		c.checkRange(n)
	case *ast.DirectMemoryReadExpr:
		c.checkExprIn(sc, n.Addr)
	}
}

// typeOf computes the static datatype of e, or value.UNDEFINED if it cannot
// be determined (an already-reported error in a subexpression, typically).
func (c *Checker) typeOf(sc *scope.Scope, e ast.Expr) value.DataType {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		return n.Value.Type
	case *ast.IdentExpr:
		return c.declType(n.Decl)
	case *ast.PrefixExpr:
		if n.Op == "not" {
			return value.UBYTE
		}
		return c.typeOf(sc, n.Operand)
	case *ast.BinaryExpr:
		return c.binaryResultType(sc, n)
	case *ast.CallExpr:
		return c.callReturnType(n)
	case *ast.IndexExpr:
		arrType := c.typeOf(sc, n.Array)
		return arrType.ElementType()
	case *ast.TypecastExpr:
		return n.Type
	case *ast.RangeExpr:
		return value.UNDEFINED // only meaningful after materialization
	case *ast.RegisterExpr:
		return value.UBYTE
	case *ast.DirectMemoryReadExpr:
		return value.UBYTE
	case *ast.AddressOfExpr:
		return value.UWORD
	default:
		return value.UNDEFINED
	}
}

func (c *Checker) declType(decl ast.Node) value.DataType {
	switch d := decl.(type) {
	case *ast.VarDecl:
		if d.ArraySize != nil {
			return value.ArrayOf(d.DataType)
		}
		return d.DataType
	case *ast.Param:
		return d.Type
	default:
		return value.UNDEFINED
	}
}

func (c *Checker) binaryResultType(sc *scope.Scope, n *ast.BinaryExpr) value.DataType {
	switch n.Op {
	case "and", "or", "xor", "<", ">", "<=", ">=", "==", "!=":
		return value.UBYTE
	case "**":
		return value.FLOAT
	default:
		lt, rt := c.typeOf(sc, n.Left), c.typeOf(sc, n.Right)
		if lt == value.FLOAT || rt == value.FLOAT {
			return value.FLOAT
		}
		return lt
	}
}

func (c *Checker) callReturnType(n *ast.CallExpr) value.DataType {
	if sub, ok := n.Decl.(*ast.Subroutine); ok {
		if len(sub.ReturnType) > 0 {
			return sub.ReturnType[0]
		}
		return value.UNDEFINED
	}
	if f, ok := builtin.Lookup(n.Target); ok {
		return f.ReturnType
	}
	return value.UNDEFINED
}

// foldConst attempts to evaluate e to a literal using the already-resolved
// tree; it does not itself perform any rewriting (that is component E's
// job) and is used only to test constant-ness for checker rules (zero
// divisor, range endpoints, directive argument validation).
func (c *Checker) foldConst(e ast.Expr) (value.Literal, bool) {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		return n.Value, true
	case *ast.PrefixExpr:
		operand, ok := c.foldConst(n.Operand)
		if !ok {
			return value.Literal{}, false
		}
		lit, err := eval.EvaluateUnary(n.Op, operand)
		return lit, err == nil
	case *ast.BinaryExpr:
		l, ok1 := c.foldConst(n.Left)
		r, ok2 := c.foldConst(n.Right)
		if !ok1 || !ok2 {
			return value.Literal{}, false
		}
		lit, err := eval.Evaluate(c.heap, l, n.Op, r)
		return lit, err == nil
	case *ast.IdentExpr:
		if vd, ok := n.Decl.(*ast.VarDecl); ok && vd.Kind == ast.CONST {
			return c.foldConst(vd.Value)
		}
	}
	return value.Literal{}, false
}
