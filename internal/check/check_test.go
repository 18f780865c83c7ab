package check

import (
	"testing"

	"github.com/xyproto/c64c/internal/ast"
	"github.com/xyproto/c64c/internal/diag"
	"github.com/xyproto/c64c/internal/scope"
	"github.com/xyproto/c64c/internal/value"
)

func p() value.Position { return value.Position{File: "t.prg", Line: 1} }

func lit(n int64) *ast.LiteralExpr {
	l, err := value.OptimalInteger(n, p())
	if err != nil {
		panic(err)
	}
	return ast.NewLiteralExpr(l)
}

func wrapMain(start *ast.Subroutine, extra ...ast.Stmt) *ast.Module {
	main := ast.NewBlock("main", p())
	main.Statements = append(main.Statements, start)
	main.Statements = append(main.Statements, extra...)
	m := ast.NewModule()
	m.Statements = []ast.Stmt{main}
	return m
}

func runCheck(t *testing.T, m *ast.Module) *checkResult {
	t.Helper()
	ns, errs := scope.Build(m)
	if len(errs) != 0 {
		t.Fatalf("scope.Build errors: %v", errs)
	}
	heap := value.NewHeap()
	bag := Check(m, ns, heap)
	return &checkResult{bag: bag, ns: ns, heap: heap}
}

type checkResult struct {
	bag  *diag.Bag
	ns   *scope.Namespace
	heap *value.Heap
}

func TestModuleRequiresExactlyOneMainBlock(t *testing.T) {
	m := ast.NewModule()
	res := runCheck(t, m)
	if !res.bag.HasErrors() {
		t.Error("expected an error for a module with no main block")
	}
}

func TestMainBlockRequiresStartSubroutine(t *testing.T) {
	main := ast.NewBlock("main", p())
	m := ast.NewModule()
	m.Statements = []ast.Stmt{main}
	res := runCheck(t, m)
	if !res.bag.HasErrors() {
		t.Error("expected an error for a main block with no start subroutine")
	}
}

func TestValidMainBlockHasNoStructureErrors(t *testing.T) {
	start := ast.NewSubroutine("start", p())
	m := wrapMain(start)
	res := runCheck(t, m)
	if res.bag.HasErrors() {
		t.Errorf("unexpected errors: %v", res.bag.Errors())
	}
}

func TestStartMustBeParameterlessAndVoid(t *testing.T) {
	start := ast.NewSubroutine("start", p())
	start.Params = []ast.Param{{Name: "x", Type: value.UBYTE}}
	start.ReturnType = []value.DataType{value.UBYTE}
	m := wrapMain(start)
	res := runCheck(t, m)
	if len(res.bag.Errors()) < 2 {
		t.Errorf("expected errors for both params and return type, got %v", res.bag.Errors())
	}
}

func TestConstMustBeNumeric(t *testing.T) {
	start := ast.NewSubroutine("start", p())
	badConst := ast.NewVarDecl(ast.CONST, value.STR, "greeting", p())
	badConst.Value = lit(0)
	m := wrapMain(start, badConst)
	res := runCheck(t, m)
	if !res.bag.HasErrors() {
		t.Error("expected an error for a non-numeric const")
	}
}

func TestUninitializedVarGetsDefaultInitializer(t *testing.T) {
	start := ast.NewSubroutine("start", p())
	v := ast.NewVarDecl(ast.VAR, value.UBYTE, "counter", p())
	m := wrapMain(start, v)
	runCheck(t, m)
	if v.Value == nil {
		t.Fatal("expected checker to inject a default initializer")
	}
	litExpr, ok := v.Value.(*ast.LiteralExpr)
	if !ok {
		t.Fatalf("default initializer is %T, want *ast.LiteralExpr", v.Value)
	}
	if litExpr.Value.AsIntegerValue() != 0 {
		t.Errorf("default value = %v, want 0", litExpr.Value)
	}
}

func TestInitializedVarIsNotOverwritten(t *testing.T) {
	start := ast.NewSubroutine("start", p())
	v := ast.NewVarDecl(ast.VAR, value.UBYTE, "counter", p())
	v.Value = lit(42)
	m := wrapMain(start, v)
	runCheck(t, m)
	litExpr := v.Value.(*ast.LiteralExpr)
	if litExpr.Value.AsIntegerValue() != 42 {
		t.Errorf("initializer was overwritten: got %v", litExpr.Value)
	}
}

func TestAssignmentRejectsIncompatibleType(t *testing.T) {
	start := ast.NewSubroutine("start", p())
	v := ast.NewVarDecl(ast.VAR, value.BYTE, "b", p())
	v.Value = lit(0)
	wordLit, _ := value.FromNumber(1000, value.WORD, p())
	assign := ast.NewAssignment(
		[]ast.AssignTarget{ast.NewIdentTarget("b", p())},
		"", ast.NewLiteralExpr(wordLit), p(),
	)
	assign.Targets[0].(*ast.IdentTarget).Decl = v
	start.Statements = []ast.Stmt{assign}
	m := wrapMain(start, v)
	res := runCheck(t, m)
	if !res.bag.HasErrors() {
		t.Error("expected an error assigning WORD to a BYTE target")
	}
}

func TestAssignmentToConstIsRejected(t *testing.T) {
	start := ast.NewSubroutine("start", p())
	c := ast.NewVarDecl(ast.CONST, value.UBYTE, "limit", p())
	c.Value = lit(10)
	assign := ast.NewAssignment([]ast.AssignTarget{ast.NewIdentTarget("limit", p())}, "", lit(5), p())
	assign.Targets[0].(*ast.IdentTarget).Decl = c
	start.Statements = []ast.Stmt{assign}
	m := wrapMain(start, c)
	res := runCheck(t, m)
	if !res.bag.HasErrors() {
		t.Error("expected an error assigning to a const")
	}
}

func TestBinaryDivisionByConstantZero(t *testing.T) {
	start := ast.NewSubroutine("start", p())
	expr := ast.NewBinaryExpr(lit(10), "/", lit(0), p())
	start.Statements = []ast.Stmt{ast.NewFunctionCallStatement(
		ast.NewCallExpr("abs", []ast.Expr{expr}, p()), p())}
	m := wrapMain(start)
	res := runCheck(t, m)
	if !res.bag.HasErrors() {
		t.Error("expected division-by-zero error")
	}
}

func TestSwapRequiresDistinctArguments(t *testing.T) {
	start := ast.NewSubroutine("start", p())
	v := ast.NewVarDecl(ast.VAR, value.UBYTE, "x", p())
	v.Value = lit(0)
	xRef := func() *ast.IdentExpr {
		e := ast.NewIdentExpr("x", p())
		e.Decl = v
		return e
	}
	call := ast.NewCallExpr("swap", []ast.Expr{xRef(), xRef()}, p())
	start.Statements = []ast.Stmt{ast.NewFunctionCallStatement(call, p())}
	m := wrapMain(start, v)
	res := runCheck(t, m)
	if !res.bag.HasErrors() {
		t.Error("expected an error for swap(x, x)")
	}
}

func TestTypecastToIterableIsRejected(t *testing.T) {
	start := ast.NewSubroutine("start", p())
	cast := ast.NewTypecastExpr(lit(1), value.ARRAY_UB, p())
	start.Statements = []ast.Stmt{ast.NewFunctionCallStatement(
		ast.NewCallExpr("abs", []ast.Expr{cast}, p()), p())}
	m := wrapMain(start)
	res := runCheck(t, m)
	if !res.bag.HasErrors() {
		t.Error("expected an error for a typecast to an iterable type")
	}
}

func TestAscendingRangeRejectsNegativeStep(t *testing.T) {
	start := ast.NewSubroutine("start", p())
	r := ast.NewRangeExpr(lit(0), lit(10), lit(-1), p())
	forLoop := ast.NewForLoop("i", r, nil, p())
	forLoop.Body = []ast.Stmt{ast.NewNopStatement(p())}
	loopVar := ast.NewVarDecl(ast.VAR, value.UBYTE, "i", p())
	loopVar.Value = lit(0)
	start.Statements = []ast.Stmt{loopVar, forLoop}
	m := wrapMain(start)
	res := runCheck(t, m)
	if !res.bag.HasErrors() {
		t.Error("expected an error for an ascending range with a negative step")
	}
}

func TestReturnArityMustMatchDeclaration(t *testing.T) {
	start := ast.NewSubroutine("start", p())
	sub := ast.NewSubroutine("getValue", p())
	sub.ReturnType = []value.DataType{value.UBYTE}
	sub.Statements = []ast.Stmt{ast.NewReturn(nil, p())}
	start.Statements = []ast.Stmt{sub}
	m := wrapMain(start)
	res := runCheck(t, m)
	if !res.bag.HasErrors() {
		t.Error("expected an error for a return with too few values")
	}
}

func TestLabelOutsideScopeIsRejected(t *testing.T) {
	m := ast.NewModule()
	m.Statements = []ast.Stmt{ast.NewLabel("loop", p())}
	res := runCheck(t, m)
	if !res.bag.HasErrors() {
		t.Error("expected an error for a label directly at module scope")
	}
}
