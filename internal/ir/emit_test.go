package ir

import (
	"testing"

	"github.com/xyproto/c64c/internal/ast"
	"github.com/xyproto/c64c/internal/value"
)

func pos() value.Position { return value.Position{File: "t.prg", Line: 1} }

func lit(n int64) *ast.LiteralExpr {
	l, err := value.OptimalInteger(n, pos())
	if err != nil {
		panic(err)
	}
	return ast.NewLiteralExpr(l)
}

func findOp(instrs []Instruction, op Opcode) (Instruction, bool) {
	for _, i := range instrs {
		if i.Op == op {
			return i, true
		}
	}
	return Instruction{}, false
}

func countOp(instrs []Instruction, op Opcode) int {
	n := 0
	for _, i := range instrs {
		if i.Op == op {
			n++
		}
	}
	return n
}

func TestEmitLiteralAssignment(t *testing.T) {
	v := ast.NewVarDecl(ast.VAR, value.UBYTE, "x", pos())
	target := ast.NewIdentTarget("x", pos())
	target.Decl = v
	a := ast.NewAssignment([]ast.AssignTarget{target}, "", lit(7), pos())

	sub := ast.NewSubroutine("start", pos())
	sub.Statements = []ast.Stmt{v, a}
	block := ast.NewBlock("main", pos())
	block.Statements = []ast.Stmt{sub}
	m := &ast.Module{Statements: []ast.Stmt{block}}

	prog := NewEmitter(value.NewHeap()).EmitModule(m)
	pb := prog.BlockByName("main")
	if pb == nil {
		t.Fatal("expected a \"main\" block")
	}
	push, ok := findOp(pb.Instructions, PushByte)
	if !ok || push.Arg != "7" {
		t.Fatalf("expected PUSH_BYTE 7, got %v", pb.Instructions)
	}
	if _, ok := findOp(pb.Instructions, PopVar); !ok {
		t.Error("expected a POP_VAR for the assignment")
	}
}

func TestEmitBinaryExprPostOrder(t *testing.T) {
	v := ast.NewVarDecl(ast.VAR, value.UBYTE, "x", pos())
	v.Value = ast.NewBinaryExpr(lit(2), "+", lit(3), pos())
	sub := ast.NewSubroutine("start", pos())
	sub.Statements = []ast.Stmt{v}
	block := ast.NewBlock("main", pos())
	block.Statements = []ast.Stmt{sub}
	m := &ast.Module{Statements: []ast.Stmt{block}}

	prog := NewEmitter(value.NewHeap()).EmitModule(m)
	pb := prog.BlockByName("main")
	ops := make([]Opcode, 0, len(pb.Instructions))
	for _, i := range pb.Instructions {
		ops = append(ops, i.Op)
	}
	wantSeq := []Opcode{LabelOp, PushByte, PushByte, Add, PopVar, Return}
	if len(ops) != len(wantSeq) {
		t.Fatalf("got %v, want a sequence of length %d", ops, len(wantSeq))
	}
	for i, w := range wantSeq {
		if ops[i] != w {
			t.Errorf("ops[%d] = %s, want %s", i, ops[i], w)
		}
	}
}

func TestEmitIfWithElseSwapsToLabeledBranches(t *testing.T) {
	v := ast.NewVarDecl(ast.VAR, value.UBYTE, "x", pos())
	target := ast.NewIdentTarget("x", pos())
	target.Decl = v
	trueBranch := ast.NewAssignment([]ast.AssignTarget{target}, "", lit(1), pos())
	falseBranch := ast.NewAssignment([]ast.AssignTarget{target}, "", lit(2), pos())
	ifs := ast.NewIfStatement(lit(1), []ast.Stmt{trueBranch}, []ast.Stmt{falseBranch}, pos())

	sub := ast.NewSubroutine("start", pos())
	sub.Statements = []ast.Stmt{v, ifs}
	block := ast.NewBlock("main", pos())
	block.Statements = []ast.Stmt{sub}
	m := &ast.Module{Statements: []ast.Stmt{block}}

	prog := NewEmitter(value.NewHeap()).EmitModule(m)
	pb := prog.BlockByName("main")
	if countOp(pb.Instructions, Jz) != 1 {
		t.Errorf("expected exactly one JZ, got %v", pb.Instructions)
	}
	if countOp(pb.Instructions, Jump) != 1 {
		t.Errorf("expected exactly one unconditional JUMP for the true branch's fallthrough skip, got %v", pb.Instructions)
	}
	// two labels from the if, plus the subroutine's own entry label.
	if countOp(pb.Instructions, LabelOp) != 3 {
		t.Errorf("expected 3 labels (sub entry + else + end), got %v", pb.Instructions)
	}
}

func TestEmitWhileLoop(t *testing.T) {
	v := ast.NewVarDecl(ast.VAR, value.UBYTE, "x", pos())
	target := ast.NewIdentTarget("x", pos())
	target.Decl = v
	body := []ast.Stmt{ast.NewAssignment([]ast.AssignTarget{target}, "", lit(1), pos())}
	loop := ast.NewWhileLoop(ast.NewIdentExpr("flag", pos()), body, pos())

	sub := ast.NewSubroutine("start", pos())
	sub.Statements = []ast.Stmt{v, loop}
	block := ast.NewBlock("main", pos())
	block.Statements = []ast.Stmt{sub}
	m := &ast.Module{Statements: []ast.Stmt{block}}

	prog := NewEmitter(value.NewHeap()).EmitModule(m)
	pb := prog.BlockByName("main")
	if countOp(pb.Instructions, Jz) != 1 {
		t.Errorf("expected one loop-exit JZ, got %v", pb.Instructions)
	}
	if countOp(pb.Instructions, Jump) != 1 {
		t.Errorf("expected one back-edge JUMP, got %v", pb.Instructions)
	}
}

func TestEmitIndexedLoadAndStore(t *testing.T) {
	arr := ast.NewVarDecl(ast.VAR, value.ARRAY_UB, "a", pos())
	arr.ArraySize = lit(10)
	arrRef := ast.NewIdentExpr("a", pos())
	arrRef.Decl = arr
	idxTarget := ast.NewIndexTarget(arrRef, lit(0), pos())
	store := ast.NewAssignment([]ast.AssignTarget{idxTarget}, "", lit(9), pos())

	sub := ast.NewSubroutine("start", pos())
	sub.Statements = []ast.Stmt{arr, store}
	block := ast.NewBlock("main", pos())
	block.Statements = []ast.Stmt{sub}
	m := &ast.Module{Statements: []ast.Stmt{block}}

	prog := NewEmitter(value.NewHeap()).EmitModule(m)
	pb := prog.BlockByName("main")
	popIndexed, ok := findOp(pb.Instructions, PopIndexed)
	if !ok || popIndexed.Arg != "a" {
		t.Fatalf("expected POP_INDEXED a, got %v", pb.Instructions)
	}
}

func TestEmitFunctionCallStatement(t *testing.T) {
	call := ast.NewCallExpr("c64.CHROUT", []ast.Expr{lit(65)}, pos())
	stmt := ast.NewFunctionCallStatement(call, pos())
	sub := ast.NewSubroutine("start", pos())
	sub.Statements = []ast.Stmt{stmt}
	block := ast.NewBlock("main", pos())
	block.Statements = []ast.Stmt{sub}
	m := &ast.Module{Statements: []ast.Stmt{block}}

	prog := NewEmitter(value.NewHeap()).EmitModule(m)
	pb := prog.BlockByName("main")
	callInstr, ok := findOp(pb.Instructions, Call)
	if !ok || callInstr.CallLabel != "c64.CHROUT" {
		t.Fatalf("expected a CALL c64.CHROUT, got %v", pb.Instructions)
	}
}

func TestEmitMemoryDeclRegistersPointerWithoutCode(t *testing.T) {
	addr := 0xd020
	v := ast.NewVarDecl(ast.MEMORY, value.UBYTE, "border", pos())
	v.Address = &addr
	block := ast.NewBlock("main", pos())
	block.Statements = []ast.Stmt{v}
	m := &ast.Module{Statements: []ast.Stmt{block}}

	prog := NewEmitter(value.NewHeap()).EmitModule(m)
	pb := prog.BlockByName("main")
	if len(pb.Instructions) != 0 {
		t.Errorf("expected no instructions for a bare memory declaration, got %v", pb.Instructions)
	}
	if pb.MemoryPointers["border"] != 0xd020 {
		t.Errorf("MemoryPointers[border] = %#x, want 0xd020", pb.MemoryPointers["border"])
	}
}

func TestEmitZeroPageFlagCarried(t *testing.T) {
	v := ast.NewVarDecl(ast.VAR, value.UBYTE, "counter", pos())
	v.ZeroPage = true
	block := ast.NewBlock("main", pos())
	block.Statements = []ast.Stmt{v}
	m := &ast.Module{Statements: []ast.Stmt{block}}

	prog := NewEmitter(value.NewHeap()).EmitModule(m)
	pb := prog.BlockByName("main")
	if !pb.ZeroPage["counter"] {
		t.Error("expected counter to be recorded as zero-page-requested")
	}
}
