package check

import (
	"github.com/xyproto/c64c/internal/ast"
	"github.com/xyproto/c64c/internal/builtin"
	"github.com/xyproto/c64c/internal/diag"
	"github.com/xyproto/c64c/internal/scope"
	"github.com/xyproto/c64c/internal/value"
)

// checkBinaryOperator enforces §4.G "Binary operator typing".
func (c *Checker) checkBinaryOperator(sc *scope.Scope, n *ast.BinaryExpr) {
	lt, rt := c.typeOf(sc, n.Left), c.typeOf(sc, n.Right)
	if lt == value.UNDEFINED || rt == value.UNDEFINED {
		return
	}
	if !lt.IsNumeric() || !rt.IsNumeric() {
		if !(n.Op == "+" && lt.IsString() && rt.IsString()) &&
			!((n.Op == "*") && ((lt.IsString() && rt.IsInteger()) || (rt.IsString() && lt.IsInteger()))) {
			c.errorf(diag.CategoryExpression, n.Pos(), "operands of %q must be numeric, got %s and %s", n.Op, lt, rt)
		}
		return
	}

	switch n.Op {
	case "/", "%":
		if zero, ok := c.foldConst(n.Right); ok && zero.AsNumericValue() == 0 {
			c.errorf(diag.CategoryExpression, n.Pos(), "division by zero")
		}
		if n.Op == "%" && (!lt.IsUnsigned() && lt.IsInteger() || !rt.IsUnsigned() && rt.IsInteger()) {
			c.errorf(diag.CategoryExpression, n.Pos(), "%% requires both operands to be unsigned integers")
		}
	case "**":
		if lt != value.FLOAT && rt != value.FLOAT {
			c.errorf(diag.CategoryExpression, n.Pos(), "** requires at least one FLOAT operand")
		}
	case "and", "or", "xor":
		if !lt.IsInteger() || !rt.IsInteger() {
			c.errorf(diag.CategoryExpression, n.Pos(), "%s requires integer operands", n.Op)
		}
		c.warnNonBooleanLiteral(n.Left, n.Op)
		c.warnNonBooleanLiteral(n.Right, n.Op)
	case "&", "|", "^":
		if !lt.IsInteger() || !rt.IsInteger() {
			c.errorf(diag.CategoryExpression, n.Pos(), "%s requires integer operands", n.Op)
		}
	}
}

func (c *Checker) warnNonBooleanLiteral(e ast.Expr, op string) {
	lit, ok := e.(*ast.LiteralExpr)
	if !ok || !lit.Value.Type.IsInteger() {
		return
	}
	v := lit.Value.AsIntegerValue()
	if v != 0 && v != 1 {
		c.warnf(diag.CategoryExpression, lit.Pos(), "operand %d of %q is neither 0 nor 1", v, op)
	}
}

// checkCall enforces §4.G "Call": arity and argument types must match the
// callee (built-in or subroutine); swap has its own special-case rule; asm
// subroutine arguments must match their declared register class.
func (c *Checker) checkCall(sc *scope.Scope, call *ast.CallExpr) {
	if call.Target == "swap" {
		c.checkSwapCall(sc, call)
		return
	}

	if sub, ok := call.Decl.(*ast.Subroutine); ok {
		c.checkSubroutineCallArgs(sc, call, sub)
		return
	}

	f, ok := builtin.Lookup(call.Target)
	if !ok {
		return // unresolved call; name resolution already reported it
	}
	if len(call.Args) != len(f.Params) {
		c.errorf(diag.CategoryExpression, call.Pos(), "%s expects %d argument(s), got %d", call.Target, len(f.Params), len(call.Args))
		return
	}
	for i, arg := range call.Args {
		at := c.typeOf(sc, arg)
		if at == value.UNDEFINED {
			continue
		}
		if !f.Params[i].Accepts(at) {
			c.errorf(diag.CategoryExpression, arg.Pos(), "%s argument %d has type %s, which is not accepted", call.Target, i+1, at)
		}
	}
}

func (c *Checker) checkSwapCall(sc *scope.Scope, call *ast.CallExpr) {
	if len(call.Args) != 2 {
		c.errorf(diag.CategoryExpression, call.Pos(), "swap expects 2 arguments, got %d", len(call.Args))
		return
	}
	a, b := call.Args[0], call.Args[1]
	at, bt := c.typeOf(sc, a), c.typeOf(sc, b)
	if at != value.UNDEFINED && bt != value.UNDEFINED && at != bt {
		c.errorf(diag.CategoryExpression, call.Pos(), "swap arguments must have the same type, got %s and %s", at, bt)
	}
	if at != value.UNDEFINED && !at.IsNumeric() {
		c.errorf(diag.CategoryExpression, a.Pos(), "swap arguments must be numeric, got %s", at)
	}
	if _, ok := c.foldConst(a); ok {
		c.errorf(diag.CategoryExpression, a.Pos(), "swap argument must not be constant")
	}
	if _, ok := c.foldConst(b); ok {
		c.errorf(diag.CategoryExpression, b.Pos(), "swap argument must not be constant")
	}
	if identEqual(a, b) {
		c.errorf(diag.CategoryExpression, call.Pos(), "swap arguments must be distinct")
	}
}

func identEqual(a, b ast.Expr) bool {
	ia, ok1 := a.(*ast.IdentExpr)
	ib, ok2 := b.(*ast.IdentExpr)
	return ok1 && ok2 && ia.Decl == ib.Decl
}

func (c *Checker) checkSubroutineCallArgs(sc *scope.Scope, call *ast.CallExpr, sub *ast.Subroutine) {
	if sub.IsAsmSubroutine {
		c.checkAsmCallArgs(sc, call, sub)
		return
	}
	if len(call.Args) != len(sub.Params) {
		c.errorf(diag.CategoryExpression, call.Pos(), "%s expects %d argument(s), got %d", sub.Name, len(sub.Params), len(call.Args))
		return
	}
	for i, arg := range call.Args {
		at := c.typeOf(sc, arg)
		if at == value.UNDEFINED {
			continue
		}
		if !assignableTo(sub.Params[i].Type, at) {
			c.errorf(diag.CategoryExpression, arg.Pos(), "%s argument %d (%s) is not compatible with parameter type %s", sub.Name, i+1, at, sub.Params[i].Type)
		}
	}
}

// checkAsmCallArgs enforces the register-class compatibility rule: an
// argument bound to a single register or status flag must be byte-sized; an
// argument bound to a register pair must be word-sized or iterable.
func (c *Checker) checkAsmCallArgs(sc *scope.Scope, call *ast.CallExpr, sub *ast.Subroutine) {
	if len(call.Args) != len(sub.AsmParamRegisters) {
		c.errorf(diag.CategoryExpression, call.Pos(), "%s expects %d argument(s), got %d", sub.Name, len(sub.AsmParamRegisters), len(call.Args))
		return
	}
	for i, arg := range call.Args {
		at := c.typeOf(sc, arg)
		if at == value.UNDEFINED {
			continue
		}
		reg := sub.AsmParamRegisters[i].Register
		if isRegisterPair(reg) {
			if !at.IsWord() && !at.IsIterable() {
				c.errorf(diag.CategoryExpression, arg.Pos(), "%s argument %d bound to register pair %s must be word-sized or iterable, got %s", sub.Name, i+1, reg, at)
			}
		} else {
			if !at.IsByte() {
				c.errorf(diag.CategoryExpression, arg.Pos(), "%s argument %d bound to register %s must be byte-sized, got %s", sub.Name, i+1, reg, at)
			}
		}
	}
}

// isRegisterPair reports whether a register name denotes a 16-bit pair
// (e.g. "AX", "XY") rather than a single 8-bit register or status flag
// ("A", "X", "Y", "C", "FLAGS").
func isRegisterPair(reg string) bool {
	return len(reg) > 1 && reg != "FLAGS"
}

// checkIndex enforces §4.G "Indexing": the target must be iterable,
// constant indices must be in bounds, and the index expression's type must
// be a byte.
func (c *Checker) checkIndex(sc *scope.Scope, n *ast.IndexExpr) {
	arrType := c.typeOf(sc, n.Array)
	if arrType != value.UNDEFINED && !arrType.IsIterable() {
		c.errorf(diag.CategoryExpression, n.Pos(), "index target must be iterable, got %s", arrType)
	}
	idxType := c.typeOf(sc, n.Index)
	if idxType != value.UNDEFINED && !idxType.IsByte() {
		c.errorf(diag.CategoryExpression, n.Index.Pos(), "index expression must be byte-typed, got %s", idxType)
	}
	if lit, ok := c.foldConst(n.Index); ok && lit.Type.IsInteger() {
		if bound, ok := c.staticLength(sc, n.Array); ok {
			idx := lit.AsIntegerValue()
			if idx < 0 || int(idx) >= bound {
				c.errorf(diag.CategoryExpression, n.Pos(), "index %d is out of bounds for length %d", idx, bound)
			}
		}
	}
}

// staticLength returns the known element/character count of an array or
// string-typed expression, when it can be determined without running the
// IR emitter (a literal array on the heap, or a declared fixed-size array).
func (c *Checker) staticLength(sc *scope.Scope, e ast.Expr) (int, bool) {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		switch {
		case n.Value.Type.IsArray():
			arr, err := c.heap.Array(n.Value.HeapID())
			if err == nil {
				return len(arr.Values), true
			}
		case n.Value.Type.IsString():
			entry, err := c.heap.String(n.Value.HeapID())
			if err == nil {
				return len(entry.Str), true
			}
		}
	case *ast.IdentExpr:
		if vd, ok := n.Decl.(*ast.VarDecl); ok && vd.ArraySize != nil {
			if lit, ok := c.foldConst(vd.ArraySize); ok && lit.Type.IsInteger() {
				return int(lit.AsIntegerValue()), true
			}
		}
	}
	return 0, false
}

// checkTypecast enforces §4.G "Typecast": the target type must not be
// iterable.
func (c *Checker) checkTypecast(n *ast.TypecastExpr) {
	if n.Type.IsIterable() {
		c.errorf(diag.CategoryExpression, n.Pos(), "cannot typecast to iterable type %s", n.Type)
	}
}

// checkRange enforces §4.G "range": endpoints must be constant; ascending
// ranges require step>0, descending step<0; string-range endpoints must be
// single characters.
func (c *Checker) checkRange(n *ast.RangeExpr) {
	from, fromOK := c.foldConst(n.From)
	to, toOK := c.foldConst(n.To)
	if !fromOK || !toOK {
		c.errorf(diag.CategoryExpression, n.Pos(), "range endpoints must be constant")
		return
	}
	if from.Type.IsString() || to.Type.IsString() {
		for _, lit := range []value.Literal{from, to} {
			if lit.Type.IsString() {
				entry, err := c.heap.String(lit.HeapID())
				if err == nil && len(entry.Str) != 1 {
					c.errorf(diag.CategoryExpression, n.Pos(), "string-range endpoints must be single characters")
				}
			}
		}
		return
	}
	if !from.Type.IsInteger() || !to.Type.IsInteger() {
		return
	}
	step := int64(1)
	if n.Step != nil {
		s, ok := c.foldConst(n.Step)
		if !ok || !s.Type.IsInteger() {
			c.errorf(diag.CategoryExpression, n.Pos(), "range step must be a constant integer")
			return
		}
		step = s.AsIntegerValue()
	}
	if step == 0 {
		c.errorf(diag.CategoryExpression, n.Pos(), "range step must be nonzero")
		return
	}
	ascending := to.AsIntegerValue() >= from.AsIntegerValue()
	if ascending && step < 0 {
		c.errorf(diag.CategoryExpression, n.Pos(), "ascending range requires a positive step")
	}
	if !ascending && step > 0 {
		c.errorf(diag.CategoryExpression, n.Pos(), "descending range requires a negative step")
	}
}

// checkConstantConditional warns when an if's condition folds to a constant
// (the statement optimizer performs the actual branch elimination; the
// checker's job is only to surface the diagnostic §8 scenario 4 names).
func (c *Checker) checkConstantConditional(sc *scope.Scope, n *ast.IfStatement) {
	lit, ok := c.foldConst(n.Cond)
	if !ok {
		return
	}
	if lit.AsBooleanValue() {
		if len(n.False) > 0 {
			c.warnf(diag.CategoryExpression, n.Pos(), "condition is always true")
		}
	} else {
		c.warnf(diag.CategoryExpression, n.Pos(), "condition is always false")
	}
}

// checkForLoop enforces §4.G "for": the iterable must be an iterable type,
// and the loop variable/register's type must admit the iterable's element
// type. An empty body warns.
func (c *Checker) checkForLoop(sc *scope.Scope, n *ast.ForLoop) {
	c.checkExprIn(sc, n.Iterable)
	if len(n.Body) == 0 {
		c.warnf(diag.CategorySyntax, n.Pos(), "for loop body is empty")
	}

	iterType := c.iterableElementType(sc, n.Iterable)
	if iterType == value.UNDEFINED {
		return
	}
	if n.LoopRegister != "" {
		if !iterType.IsByte() {
			c.errorf(diag.CategoryExpression, n.Pos(), "for loop register %s cannot hold element type %s", n.LoopRegister, iterType)
		}
		return
	}
	decl, ok := sc.Lookup(n.LoopVar)
	if !ok {
		return
	}
	vd, ok := decl.(*ast.VarDecl)
	if !ok {
		return
	}
	if !assignableTo(vd.DataType, iterType) {
		c.errorf(diag.CategoryExpression, n.Pos(), "for loop variable %q of type %s cannot hold element type %s", n.LoopVar, vd.DataType, iterType)
	}
}

// iterableElementType returns the element type n.Iterable yields: a
// RangeExpr with integer endpoints yields UBYTE/UWORD depending on magnitude
// (approximated here as the promoted endpoint type); any other iterable
// expression yields its static element type.
func (c *Checker) iterableElementType(sc *scope.Scope, e ast.Expr) value.DataType {
	if r, ok := e.(*ast.RangeExpr); ok {
		ft, tt := c.typeOf(sc, r.From), c.typeOf(sc, r.To)
		if ft.IsString() || tt.IsString() {
			return value.UBYTE
		}
		if ft == value.UWORD || tt == value.UWORD {
			return value.UWORD
		}
		return value.UBYTE
	}
	t := c.typeOf(sc, e)
	return t.ElementType()
}
