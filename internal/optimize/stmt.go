package optimize

import (
	"fmt"

	"github.com/xyproto/c64c/internal/ast"
	"github.com/xyproto/c64c/internal/scope"
	"github.com/xyproto/c64c/internal/value"
)

// StmtOptimizer drives component F over one pass of the tree: structural
// simplification of blocks, subroutines, loops, and assignments. Unlike the
// expression folder it does not use ast.TransformStmtList's single-node
// replacement — several rules (branch-taking, strength reduction,
// print-literal lowering) expand one statement into several, or remove one
// entirely, so rewriteOne returns a slice instead.
type StmtOptimizer struct {
	NS   *scope.Namespace
	Heap *value.Heap
	Count int

	// Subs indexes every subroutine in the module by its bare (undotted)
	// name, built once per pass for the tail-call threading and
	// single-return removal rules.
	Subs map[string]*ast.Subroutine
	// Removable names the subroutines this pass has determined are pure
	// no-ops (empty body, or a single void return with no fixed address)
	// and will drop; call sites naming them are rewritten to a nop in the
	// same pass rather than left dangling.
	Removable map[string]bool
}

// OptimizeStatements runs one pass of structural optimization over m and
// returns the number of rewrites applied.
func OptimizeStatements(m *ast.Module, ns *scope.Namespace, heap *value.Heap) int {
	subs := buildSubsByName(m)
	o := &StmtOptimizer{NS: ns, Heap: heap, Subs: subs, Removable: buildRemovableSubs(subs)}

	identityStmt := func(s ast.Stmt) ast.Stmt { return s }
	ast.TransformModule(m, o.threadCallExpr, identityStmt)

	m.Statements = o.rewriteList(m.Statements)
	ast.Relink(m)
	return o.Count
}

// buildSubsByName collects every Subroutine in m, keyed by its bare name,
// regardless of nesting depth — Jump and call targets are always bare
// names, never scope-qualified.
func buildSubsByName(m *ast.Module) map[string]*ast.Subroutine {
	out := make(map[string]*ast.Subroutine)
	var walk func([]ast.Stmt)
	walk = func(stmts []ast.Stmt) {
		for _, s := range stmts {
			switch n := s.(type) {
			case *ast.Subroutine:
				out[n.Name] = n
				walk(n.Statements)
			case *ast.Block:
				walk(n.Statements)
			case *ast.AnonymousScope:
				walk(n.Statements)
			case *ast.IfStatement:
				walk(n.True)
				walk(n.False)
			case *ast.ForLoop:
				walk(n.Body)
			case *ast.WhileLoop:
				walk(n.Body)
			case *ast.RepeatLoop:
				walk(n.Body)
			}
		}
	}
	walk(m.Statements)
	return out
}

// buildRemovableSubs determines which of subs are eligible for removal: no
// fixed address, and either an empty body or a body of exactly one
// void return/return-from-irq statement.
func buildRemovableSubs(subs map[string]*ast.Subroutine) map[string]bool {
	out := make(map[string]bool)
	for name, s := range subs {
		if s.AsmAddress != nil {
			continue
		}
		if len(s.Statements) == 0 {
			out[name] = true
			continue
		}
		if len(s.ReturnType) == 0 && isSingleVoidReturn(s.Statements) {
			out[name] = true
		}
	}
	return out
}

func isSingleVoidReturn(stmts []ast.Stmt) bool {
	if len(stmts) != 1 {
		return false
	}
	ret, ok := stmts[0].(*ast.Return)
	return ok && len(ret.Values) == 0
}

// firstNonDeclJumpTarget returns the target of stmts' first statement that
// is not a declaration or directive, if that statement is a Jump. This is
// the precondition for tail-call threading: a subroutine whose real body
// immediately jumps elsewhere can have its callers redirected straight to
// that destination.
func firstNonDeclJumpTarget(stmts []ast.Stmt) (string, bool) {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.VarDecl, *ast.Directive:
			continue
		case *ast.Jump:
			return n.Target, true
		default:
			return "", false
		}
	}
	return "", false
}

// threadCallExpr retargets a CallExpr naming a subroutine whose body is
// itself just a jump, wherever that call appears in an expression — "same
// rewrite applies to FunctionCall expressions" per §4.F.
func (o *StmtOptimizer) threadCallExpr(e ast.Expr) ast.Expr {
	call, ok := e.(*ast.CallExpr)
	if !ok {
		return e
	}
	sub, ok := o.Subs[call.Target]
	if !ok {
		return e
	}
	target, ok := firstNonDeclJumpTarget(sub.Statements)
	if !ok || target == call.Target {
		return e
	}
	o.Count++
	newCall := ast.NewCallExpr(target, call.Args, call.Pos())
	if tsub, ok := o.Subs[target]; ok {
		newCall.Decl = tsub
	}
	return newCall
}

// rewriteList applies recursion into nested bodies, then per-statement
// rewrites, then the adjacency-based redundant-store pass, to stmts.
func (o *StmtOptimizer) rewriteList(stmts []ast.Stmt) []ast.Stmt {
	var out []ast.Stmt
	for _, s := range stmts {
		o.recurseInto(s)
		out = append(out, o.rewriteOne(s)...)
	}
	return o.removeRedundantStores(out)
}

func (o *StmtOptimizer) recurseInto(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.Block:
		n.Statements = o.rewriteList(n.Statements)
	case *ast.Subroutine:
		n.Statements = o.rewriteList(n.Statements)
	case *ast.AnonymousScope:
		n.Statements = o.rewriteList(n.Statements)
	case *ast.IfStatement:
		n.True = o.rewriteList(n.True)
		n.False = o.rewriteList(n.False)
	case *ast.ForLoop:
		n.Body = o.rewriteList(n.Body)
	case *ast.WhileLoop:
		n.Body = o.rewriteList(n.Body)
	case *ast.RepeatLoop:
		n.Body = o.rewriteList(n.Body)
	}
}

func (o *StmtOptimizer) rewriteOne(s ast.Stmt) []ast.Stmt {
	switch n := s.(type) {
	case *ast.Block:
		if len(n.Statements) == 0 {
			o.Count++
			return nil
		}
	case *ast.Subroutine:
		if o.Removable[n.Name] {
			o.Count++
			return nil
		}
	case *ast.ForLoop:
		if result, ok := o.elideSingleValueFor(n); ok {
			o.Count++
			return result
		}
		if len(n.Body) == 0 {
			o.Count++
			return nil
		}
	case *ast.WhileLoop:
		if lit, ok := constLiteral(n.Cond); ok {
			o.Count++
			if lit.AsBooleanValue() {
				return o.infiniteLoop(n.Body, n.Pos())
			}
			return []ast.Stmt{ast.NewNopStatement(n.Pos())}
		}
		if len(n.Body) == 0 {
			o.Count++
			return nil
		}
	case *ast.RepeatLoop:
		if n.Cond == nil {
			o.Count++
			return o.infiniteLoop(n.Body, n.Pos())
		}
		if lit, ok := constLiteral(n.Cond); ok {
			o.Count++
			if lit.AsBooleanValue() {
				return o.wrapBranch(n.Body, n.Pos())
			}
			return o.infiniteLoop(n.Body, n.Pos())
		}
		if len(n.Body) == 0 {
			o.Count++
			return nil
		}
	case *ast.IfStatement:
		return o.rewriteIf(n)
	case *ast.Assignment:
		return o.rewriteAssignment(n)
	case *ast.Jump:
		if sub, ok := o.Subs[n.Target]; ok {
			if target, ok := firstNonDeclJumpTarget(sub.Statements); ok && target != n.Target {
				o.Count++
				return []ast.Stmt{ast.NewJump(target, n.Pos())}
			}
		}
	case *ast.FunctionCallStatement:
		if o.Removable[n.Call.Target] {
			o.Count++
			return []ast.Stmt{ast.NewNopStatement(n.Pos())}
		}
		if result, ok := o.lowerPrintLiteral(n); ok {
			o.Count++
			return result
		}
		if sub, ok := o.Subs[n.Call.Target]; ok {
			if target, ok := firstNonDeclJumpTarget(sub.Statements); ok && target != n.Call.Target {
				o.Count++
				newCall := ast.NewCallExpr(target, n.Call.Args, n.Pos())
				if tsub, ok := o.Subs[target]; ok {
					newCall.Decl = tsub
				}
				return []ast.Stmt{ast.NewFunctionCallStatement(newCall, n.Pos())}
			}
		}
	}
	return []ast.Stmt{s}
}

func constLiteral(e ast.Expr) (value.Literal, bool) {
	lit, ok := e.(*ast.LiteralExpr)
	if !ok {
		return value.Literal{}, false
	}
	return lit.Value, true
}

// rewriteIf handles the three if-statement rules: both branches empty
// (removed), empty true with non-empty false (swap and negate), and
// constant condition (replaced by the taken branch).
func (o *StmtOptimizer) rewriteIf(n *ast.IfStatement) []ast.Stmt {
	if len(n.True) == 0 && len(n.False) == 0 {
		o.Count++
		return nil
	}
	if len(n.True) == 0 && len(n.False) > 0 {
		o.Count++
		n.True, n.False = n.False, nil
		n.Cond = ast.NewPrefixExpr("not", n.Cond, n.Cond.Pos())
		return []ast.Stmt{n}
	}
	if lit, ok := constLiteral(n.Cond); ok {
		o.Count++
		if lit.AsBooleanValue() {
			return o.wrapBranch(n.True, n.Pos())
		}
		return o.wrapBranch(n.False, n.Pos())
	}
	return []ast.Stmt{n}
}

// wrapBranch returns stmts wrapped in a fresh AnonymousScope, so a taken
// branch's own declarations keep a scope of their own when it is spliced
// into its parent's statement list.
func (o *StmtOptimizer) wrapBranch(stmts []ast.Stmt, pos value.Position) []ast.Stmt {
	if len(stmts) == 0 {
		return nil
	}
	return []ast.Stmt{ast.NewAnonymousScope(stmts, pos)}
}

// infiniteLoop lowers an unconditionally-looping construct (while true, or
// a cond-less repeat) to the label/body/jump form the IR emitter can lower
// directly, rather than removing it — the loop genuinely never terminates,
// so collapsing it to a nop would change behavior.
func (o *StmtOptimizer) infiniteLoop(body []ast.Stmt, pos value.Position) []ast.Stmt {
	name := freshLoopLabel(pos)
	label := ast.NewLabel(name, pos)
	jump := ast.NewJump(name, pos)
	out := make([]ast.Stmt, 0, len(body)+2)
	out = append(out, label)
	out = append(out, body...)
	out = append(out, jump)
	return out
}

// freshLoopLabel derives a label name from pos rather than a running
// counter, so two passes lowering different loops never collide and the
// same loop lowered twice (it won't be, since it stops being a
// WhileLoop/RepeatLoop node once rewritten) would be idempotent anyway.
func freshLoopLabel(pos value.Position) string {
	return fmt.Sprintf("__opt_loop_%d_%d", pos.Line, pos.Column)
}

// elideSingleValueFor replaces a for loop whose iterable has folded to a
// single-element array or a one-character string with a plain assignment
// of that one element followed by the loop body, eliding the loop
// entirely.
func (o *StmtOptimizer) elideSingleValueFor(n *ast.ForLoop) ([]ast.Stmt, bool) {
	lit, ok := n.Iterable.(*ast.LiteralExpr)
	if !ok {
		return nil, false
	}
	elem, ok := o.singleElement(lit.Value)
	if !ok {
		return nil, false
	}
	var target ast.AssignTarget
	if n.LoopRegister != "" {
		target = ast.NewRegisterTarget(n.LoopRegister, n.Pos())
	} else {
		target = ast.NewIdentTarget(n.LoopVar, n.Pos())
	}
	assign := ast.NewAssignment([]ast.AssignTarget{target}, "", ast.NewLiteralExpr(elem), n.Pos())
	out := make([]ast.Stmt, 0, len(n.Body)+1)
	out = append(out, assign)
	out = append(out, n.Body...)
	return out, true
}

func (o *StmtOptimizer) singleElement(lit value.Literal) (value.Literal, bool) {
	switch {
	case lit.Type.IsArray():
		arr, err := o.Heap.Array(lit.HeapID())
		if err != nil || len(arr.Values) != 1 {
			return value.Literal{}, false
		}
		elem, err := value.FromNumber(float64(arr.Values[0]), lit.Type.ElementType(), lit.Position)
		if err != nil {
			return value.Literal{}, false
		}
		return elem, true
	case lit.Type.IsString():
		entry, err := o.Heap.String(lit.HeapID())
		if err != nil || len(entry.Str) != 1 {
			return value.Literal{}, false
		}
		elem, err := value.FromNumber(float64(entry.Str[0]), value.UBYTE, lit.Position)
		if err != nil {
			return value.Literal{}, false
		}
		return elem, true
	default:
		return value.Literal{}, false
	}
}

// removeRedundantStores drops an assignment immediately followed by
// another assignment to the structurally identical target, keeping only
// the last store, except when that target is a memory-mapped variable or
// a raw memory address — a write there may have a hardware side effect
// beyond storage, so no store to one is ever redundant.
func (o *StmtOptimizer) removeRedundantStores(stmts []ast.Stmt) []ast.Stmt {
	if len(stmts) < 2 {
		return stmts
	}
	out := make([]ast.Stmt, 0, len(stmts))
	for i := 0; i < len(stmts); i++ {
		cur := stmts[i]
		if i+1 < len(stmts) && redundantPair(cur, stmts[i+1]) {
			o.Count++
			continue
		}
		out = append(out, cur)
	}
	return out
}

func redundantPair(first, second ast.Stmt) bool {
	a1, ok1 := first.(*ast.Assignment)
	a2, ok2 := second.(*ast.Assignment)
	if !ok1 || !ok2 || len(a1.Targets) != 1 || len(a2.Targets) != 1 {
		return false
	}
	if isMemoryMapped(a1.Targets[0]) || isMemoryMapped(a2.Targets[0]) {
		return false
	}
	return ast.TargetsEqual(a1.Targets[0], a2.Targets[0])
}

// isMemoryMapped reports whether t is a variable declared MEMORY or a raw
// computed-address target — both carry hardware side effects a redundant
// earlier store could not simply discard.
func isMemoryMapped(t ast.AssignTarget) bool {
	switch n := t.(type) {
	case *ast.IdentTarget:
		vd, ok := n.Decl.(*ast.VarDecl)
		return ok && vd.Kind == ast.MEMORY
	case *ast.MemoryTarget:
		return true
	default:
		return false
	}
}

// lowerPrintLiteral expands a c64scr.print call on a one- or two-character
// string literal into direct c64.CHROUT(petscii(ch)) calls, per §4.F's
// target-specific print-literal lowering rule.
func (o *StmtOptimizer) lowerPrintLiteral(n *ast.FunctionCallStatement) ([]ast.Stmt, bool) {
	call := n.Call
	if call.Target != "c64scr.print" || len(call.Args) != 1 {
		return nil, false
	}
	lit, ok := call.Args[0].(*ast.LiteralExpr)
	if !ok || !lit.Value.Type.IsString() {
		return nil, false
	}
	entry, err := o.Heap.String(lit.Value.HeapID())
	if err != nil || len(entry.Str) == 0 || len(entry.Str) > 2 {
		return nil, false
	}
	pos := n.Pos()
	out := make([]ast.Stmt, 0, len(entry.Str))
	for i := 0; i < len(entry.Str); i++ {
		id := o.Heap.AddString(entry.Str[i:i+1], lit.Value.Type)
		charLit := value.NewHeapLiteral(lit.Value.Type, id, pos)
		petsciiCall := ast.NewCallExpr("petscii", []ast.Expr{ast.NewLiteralExpr(charLit)}, pos)
		chroutCall := ast.NewCallExpr("c64.CHROUT", []ast.Expr{petsciiCall}, pos)
		out = append(out, ast.NewFunctionCallStatement(chroutCall, pos))
	}
	if len(out) == 1 {
		return out, true
	}
	return []ast.Stmt{ast.NewAnonymousScope(out, pos)}, true
}

// rewriteAssignment desugars a compound assignment, collapses x = x to a
// nop, and applies strength reduction, in that order, so strength
// reduction always sees the expanded target = target op value form. The
// checker's assignment rule (check/assign.go) performs the same
// desugaring on its own.
func (o *StmtOptimizer) rewriteAssignment(a *ast.Assignment) []ast.Stmt {
	if desugarAugmented(a) {
		o.Count++
	}

	if len(a.Targets) == 1 {
		if lhs := targetToExpr(a.Targets[0]); lhs != nil && ast.ExprsEqual(lhs, a.Value) {
			o.Count++
			return []ast.Stmt{ast.NewNopStatement(a.Pos())}
		}
	}

	if reduced, ok := o.strengthReduce(a); ok {
		o.Count++
		return reduced
	}

	return []ast.Stmt{a}
}

func desugarAugmented(a *ast.Assignment) bool {
	if a.AugOp == "" || len(a.Targets) != 1 {
		return false
	}
	lhs := targetToExpr(a.Targets[0])
	if lhs == nil {
		return false
	}
	a.Value = ast.NewBinaryExpr(lhs, a.AugOp, a.Value, a.Pos())
	a.AugOp = ""
	return true
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

func targetDataType(t ast.AssignTarget) value.DataType {
	switch n := t.(type) {
	case *ast.IdentTarget:
		switch d := n.Decl.(type) {
		case *ast.VarDecl:
			if d.ArraySize != nil {
				return value.ArrayOf(d.DataType)
			}
			return d.DataType
		case *ast.Param:
			return d.Type
		}
	case *ast.IndexTarget:
		if id, ok := n.Array.(*ast.IdentExpr); ok {
			if vd, ok := id.Decl.(*ast.VarDecl); ok {
				return vd.DataType
			}
		}
	case *ast.RegisterTarget, *ast.MemoryTarget:
		return value.UBYTE
	}
	return value.UNDEFINED
}

// strengthReduce rewrites an already-desugared target = target op value
// assignment into cheaper equivalents per §4.F: identity operations become
// a nop, small +-N become repeated ++/--, x = x + x becomes x = x * 2, a
// shift wider than the target's bit width becomes a plain zero store, and
// any other constant shift expands into repeated lsl/lsr calls.
func (o *StmtOptimizer) strengthReduce(a *ast.Assignment) ([]ast.Stmt, bool) {
	if len(a.Targets) != 1 {
		return nil, false
	}
	bin, ok := a.Value.(*ast.BinaryExpr)
	if !ok {
		return nil, false
	}
	targetExpr := targetToExpr(a.Targets[0])
	if targetExpr == nil || !ast.ExprsEqual(targetExpr, bin.Left) {
		return nil, false
	}

	if bin.Op == "+" && ast.ExprsEqual(bin.Left, bin.Right) {
		if dt := targetDataType(a.Targets[0]); dt != value.FLOAT {
			two, err := value.OptimalInteger(2, a.Pos())
			if err == nil {
				a.Value = ast.NewBinaryExpr(bin.Left, "*", ast.NewLiteralExpr(two), a.Pos())
				return []ast.Stmt{a}, true
			}
		}
	}

	lit, ok := bin.Right.(*ast.LiteralExpr)
	if !ok || !lit.Value.Type.IsInteger() {
		return nil, false
	}
	n := lit.Value.AsIntegerValue()
	memory := isMemoryMapped(a.Targets[0])

	switch bin.Op {
	case "+", "-":
		if n == 0 {
			return []ast.Stmt{ast.NewNopStatement(a.Pos())}, true
		}
		maxRepeat := int64(8)
		if memory {
			maxRepeat = 3
		}
		if n > 0 && n <= maxRepeat {
			op := "++"
			if bin.Op == "-" {
				op = "--"
			}
			stmts := make([]ast.Stmt, n)
			for i := range stmts {
				stmts[i] = ast.NewPostIncrDecr(cloneTarget(a.Targets[0]), op, a.Pos())
			}
			return stmts, true
		}
	case "*", "/", "**":
		if n == 1 {
			return []ast.Stmt{ast.NewNopStatement(a.Pos())}, true
		}
	case "|", "^":
		if n == 0 {
			return []ast.Stmt{ast.NewNopStatement(a.Pos())}, true
		}
	case "<<", ">>":
		if n == 0 {
			return []ast.Stmt{ast.NewNopStatement(a.Pos())}, true
		}
		dt := targetDataType(a.Targets[0])
		var width int64
		switch {
		case dt.IsByte():
			width = 8
		case dt.IsWord():
			width = 16
		default:
			return nil, false
		}
		if n >= width {
			zero, err := value.FromNumber(0, dt, a.Pos())
			if err != nil {
				return nil, false
			}
			a.Value = ast.NewLiteralExpr(zero)
			return []ast.Stmt{a}, true
		}
		fname := "lsl"
		if bin.Op == ">>" {
			fname = "lsr"
		}
		stmts := make([]ast.Stmt, n)
		for i := range stmts {
			call := ast.NewCallExpr(fname, []ast.Expr{cloneExpr(targetExpr)}, a.Pos())
			stmts[i] = ast.NewFunctionCallStatement(call, a.Pos())
		}
		return stmts, true
	}
	return nil, false
}
