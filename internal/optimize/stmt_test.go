package optimize

import (
	"testing"

	"github.com/xyproto/c64c/internal/ast"
	"github.com/xyproto/c64c/internal/scope"
	"github.com/xyproto/c64c/internal/value"
)

func runStmtOpt(t *testing.T, m *ast.Module, heap *value.Heap) int {
	t.Helper()
	ns, errs := scope.Build(m)
	if len(errs) != 0 {
		t.Fatalf("scope.Build errors: %v", errs)
	}
	return OptimizeStatements(m, ns, heap)
}

func mainBody(m *ast.Module) []ast.Stmt {
	return m.Statements[0].(*ast.Block).Statements
}

func TestEmptyBlockRemoved(t *testing.T) {
	heap := value.NewHeap()
	empty := ast.NewBlock("scratch", p())
	// keep survives optimization; without it the empty start subroutine and
	// the scratch block both go, and main, left empty, is removed as well.
	keep := ast.NewVarDecl(ast.VAR, value.UBYTE, "x", p())
	keep.Value = lit(0)
	m := wrapMain(heap, keep, empty)

	runStmtOpt(t, m, heap)
	for _, s := range mainBody(m) {
		if b, ok := s.(*ast.Block); ok && b.Name == "scratch" {
			t.Fatal("expected empty block to be removed")
		}
	}
}

func TestSelfAssignmentBecomesNop(t *testing.T) {
	heap := value.NewHeap()
	v := ast.NewVarDecl(ast.VAR, value.UBYTE, "x", p())
	v.Value = lit(0)
	target := ast.NewIdentTarget("x", p())
	target.Decl = v
	self := ast.NewIdentExpr("x", p())
	self.Decl = v
	a := ast.NewAssignment([]ast.AssignTarget{target}, "", self, p())
	m := wrapMain(heap, v, a)

	runStmtOpt(t, m, heap)
	body := mainBody(m)
	if _, ok := body[len(body)-1].(*ast.NopStatement); !ok {
		t.Fatalf("last statement is %T, want *ast.NopStatement", body[len(body)-1])
	}
}

func TestAugmentedAssignmentDesugarsAndStrengthReduces(t *testing.T) {
	heap := value.NewHeap()
	v := ast.NewVarDecl(ast.VAR, value.UBYTE, "x", p())
	v.Value = lit(0)
	target := ast.NewIdentTarget("x", p())
	target.Decl = v
	a := ast.NewAssignment([]ast.AssignTarget{target}, "+", lit(1), p())
	m := wrapMain(heap, v, a)

	runStmtOpt(t, m, heap)
	body := mainBody(m)
	incr, ok := body[len(body)-1].(*ast.PostIncrDecr)
	if !ok {
		t.Fatalf("last statement is %T, want *ast.PostIncrDecr", body[len(body)-1])
	}
	if incr.Op != "++" {
		t.Errorf("incr.Op = %q, want ++", incr.Op)
	}
}

func TestShiftWiderThanTargetBecomesZeroStore(t *testing.T) {
	heap := value.NewHeap()
	v := ast.NewVarDecl(ast.VAR, value.UBYTE, "x", p())
	v.Value = lit(0)
	target := ast.NewIdentTarget("x", p())
	target.Decl = v
	a := ast.NewAssignment([]ast.AssignTarget{target}, "<<", lit(8), p())
	m := wrapMain(heap, v, a)

	runStmtOpt(t, m, heap)
	body := mainBody(m)
	assign, ok := body[len(body)-1].(*ast.Assignment)
	if !ok {
		t.Fatalf("last statement is %T, want *ast.Assignment", body[len(body)-1])
	}
	got, ok := assign.Value.(*ast.LiteralExpr)
	if !ok || got.Value.AsIntegerValue() != 0 {
		t.Errorf("shift-overflow assignment = %v, want literal 0", assign.Value)
	}
}

func TestRedundantStoreElided(t *testing.T) {
	heap := value.NewHeap()
	v := ast.NewVarDecl(ast.VAR, value.UBYTE, "x", p())
	v.Value = lit(0)
	t1 := ast.NewIdentTarget("x", p())
	t1.Decl = v
	t2 := ast.NewIdentTarget("x", p())
	t2.Decl = v
	a1 := ast.NewAssignment([]ast.AssignTarget{t1}, "", lit(1), p())
	a2 := ast.NewAssignment([]ast.AssignTarget{t2}, "", lit(2), p())
	m := wrapMain(heap, v, a1, a2)

	runStmtOpt(t, m, heap)
	body := mainBody(m)
	count := 0
	for _, s := range body {
		if _, ok := s.(*ast.Assignment); ok {
			count++
		}
	}
	if count != 1 {
		t.Errorf("found %d assignments after redundant-store elimination, want 1", count)
	}
}

func TestMemoryMappedStoreNeverElided(t *testing.T) {
	heap := value.NewHeap()
	addr := 0xd020
	v := ast.NewVarDecl(ast.MEMORY, value.UBYTE, "border", p())
	v.Address = &addr
	t1 := ast.NewIdentTarget("border", p())
	t1.Decl = v
	t2 := ast.NewIdentTarget("border", p())
	t2.Decl = v
	a1 := ast.NewAssignment([]ast.AssignTarget{t1}, "", lit(1), p())
	a2 := ast.NewAssignment([]ast.AssignTarget{t2}, "", lit(2), p())
	m := wrapMain(heap, v, a1, a2)

	runStmtOpt(t, m, heap)
	body := mainBody(m)
	count := 0
	for _, s := range body {
		if _, ok := s.(*ast.Assignment); ok {
			count++
		}
	}
	if count != 2 {
		t.Errorf("found %d assignments to a memory-mapped target, want both kept (2)", count)
	}
}

func TestConstantTrueIfReplacedByTrueBranch(t *testing.T) {
	heap := value.NewHeap()
	v := ast.NewVarDecl(ast.VAR, value.UBYTE, "x", p())
	v.Value = lit(0)
	target := ast.NewIdentTarget("x", p())
	target.Decl = v
	inner := ast.NewAssignment([]ast.AssignTarget{target}, "", lit(9), p())
	ifs := ast.NewIfStatement(lit(1), []ast.Stmt{inner}, nil, p())
	m := wrapMain(heap, v, ifs)

	runStmtOpt(t, m, heap)
	for _, s := range mainBody(m) {
		if _, ok := s.(*ast.IfStatement); ok {
			t.Fatal("expected constant-true if to be replaced")
		}
	}
}

func TestConstantFalseIfRemoved(t *testing.T) {
	heap := value.NewHeap()
	v := ast.NewVarDecl(ast.VAR, value.UBYTE, "x", p())
	v.Value = lit(0)
	target := ast.NewIdentTarget("x", p())
	target.Decl = v
	inner := ast.NewAssignment([]ast.AssignTarget{target}, "", lit(9), p())
	ifs := ast.NewIfStatement(lit(0), []ast.Stmt{inner}, nil, p())
	m := wrapMain(heap, v, ifs)

	runStmtOpt(t, m, heap)
	for _, s := range mainBody(m) {
		if a, ok := s.(*ast.Assignment); ok {
			if litVal, ok := a.Value.(*ast.LiteralExpr); ok && litVal.Value.AsIntegerValue() == 9 {
				t.Fatal("expected the dead branch's assignment to be dropped")
			}
		}
	}
}

func TestEmptyTrueBranchSwapsAndNegates(t *testing.T) {
	heap := value.NewHeap()
	v := ast.NewVarDecl(ast.VAR, value.UBYTE, "x", p())
	v.Value = lit(0)
	target := ast.NewIdentTarget("x", p())
	target.Decl = v
	elseBody := ast.NewAssignment([]ast.AssignTarget{target}, "", lit(1), p())
	cond := ast.NewIdentExpr("flag", p())
	ifs := ast.NewIfStatement(cond, nil, []ast.Stmt{elseBody}, p())
	m := wrapMain(heap, v, ifs)

	runStmtOpt(t, m, heap)
	var found *ast.IfStatement
	for _, s := range mainBody(m) {
		if n, ok := s.(*ast.IfStatement); ok {
			found = n
		}
	}
	if found == nil {
		t.Fatal("expected the if statement to survive with swapped branches")
	}
	if len(found.True) != 1 || len(found.False) != 0 {
		t.Fatalf("branches not swapped: True=%d False=%d", len(found.True), len(found.False))
	}
	pre, ok := found.Cond.(*ast.PrefixExpr)
	if !ok || pre.Op != "not" {
		t.Errorf("cond = %v, want negated", found.Cond)
	}
}

func TestInfiniteWhileLoweredToLabelAndJump(t *testing.T) {
	heap := value.NewHeap()
	v := ast.NewVarDecl(ast.VAR, value.UBYTE, "x", p())
	v.Value = lit(0)
	target := ast.NewIdentTarget("x", p())
	target.Decl = v
	body := []ast.Stmt{ast.NewAssignment([]ast.AssignTarget{target}, "", lit(1), p())}
	loop := ast.NewWhileLoop(lit(1), body, p())
	m := wrapMain(heap, v, loop)

	runStmtOpt(t, m, heap)
	var sawLabel, sawJump bool
	for _, s := range mainBody(m) {
		switch s.(type) {
		case *ast.Label:
			sawLabel = true
		case *ast.Jump:
			sawJump = true
		}
	}
	if !sawLabel || !sawJump {
		t.Errorf("expected while(true) lowered to label+jump, sawLabel=%v sawJump=%v", sawLabel, sawJump)
	}
}

func TestTailCallThreadingRetargetsJumpThroughSub(t *testing.T) {
	heap := value.NewHeap()
	real := ast.NewSubroutine("real_work", p())
	rv := ast.NewVarDecl(ast.VAR, value.UBYTE, "done", p())
	rv.Value = lit(0)
	real.Statements = []ast.Stmt{rv, ast.NewReturn(nil, p())}
	stub := ast.NewSubroutine("stub", p())
	stub.Statements = []ast.Stmt{ast.NewJump("real_work", p())}
	caller := ast.NewFunctionCallStatement(ast.NewCallExpr("stub", nil, p()), p())
	m := wrapMain(heap, real, stub, caller)

	runStmtOpt(t, m, heap)
	var found *ast.FunctionCallStatement
	for _, s := range mainBody(m) {
		if n, ok := s.(*ast.FunctionCallStatement); ok {
			found = n
		}
	}
	if found == nil {
		t.Fatal("expected the call statement to survive")
	}
	if found.Call.Target != "real_work" {
		t.Errorf("call target = %q, want real_work", found.Call.Target)
	}
}

func TestPrintLiteralLoweredToChrout(t *testing.T) {
	heap := value.NewHeap()
	id := heap.AddString("H", value.STR)
	strLit := value.NewHeapLiteral(value.STR, id, p())
	call := ast.NewCallExpr("c64scr.print", []ast.Expr{ast.NewLiteralExpr(strLit)}, p())
	stmt := ast.NewFunctionCallStatement(call, p())
	m := wrapMain(heap, stmt)

	runStmtOpt(t, m, heap)
	var found *ast.FunctionCallStatement
	for _, s := range mainBody(m) {
		if n, ok := s.(*ast.FunctionCallStatement); ok {
			found = n
		}
	}
	if found == nil || found.Call.Target != "c64.CHROUT" {
		t.Fatalf("expected print('H') lowered to a c64.CHROUT call, got %#v", found)
	}
}

func TestEmptySubroutineRemovedAndCallSiteNopped(t *testing.T) {
	heap := value.NewHeap()
	noop := ast.NewSubroutine("noop", p())
	call := ast.NewFunctionCallStatement(ast.NewCallExpr("noop", nil, p()), p())
	m := wrapMain(heap, noop, call)

	runStmtOpt(t, m, heap)
	for _, s := range mainBody(m) {
		if sub, ok := s.(*ast.Subroutine); ok && sub.Name == "noop" {
			t.Fatal("expected the empty subroutine to be removed")
		}
	}
	var sawNop bool
	for _, s := range mainBody(m) {
		if _, ok := s.(*ast.NopStatement); ok {
			sawNop = true
		}
	}
	if !sawNop {
		t.Error("expected the call site to become a nop")
	}
}
