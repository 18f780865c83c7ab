package ir

import (
	"fmt"
	"strconv"

	"github.com/xyproto/c64c/internal/ast"
	"github.com/xyproto/c64c/internal/value"
)

// binaryOp maps a BinaryExpr.Op token to its instruction. "and"/"or" are
// folded onto the bitwise opcodes: the language has no short-circuit
// control-flow form for them (§9 open question on & vs or notwithstanding),
// so there is nothing for a dedicated logical opcode to do differently.
var binaryOp = map[string]Opcode{
	"+": Add, "-": Sub, "*": Mul, "/": Div, "%": Mod,
	"&": And, "|": Or, "^": Xor, "and": And, "or": Or,
	"<<": Shl, ">>": Shr,
	"==": CmpEq, "!=": CmpNe, "<": CmpLt, "<=": CmpLe, ">": CmpGt, ">=": CmpGe,
}

var castOp = map[value.DataType]Opcode{}

func init() {
	for _, t := range []value.DataType{value.UBYTE, value.BYTE} {
		castOp[t] = CastByte
	}
	for _, t := range []value.DataType{value.UWORD, value.WORD} {
		castOp[t] = CastWord
	}
	castOp[value.FLOAT] = CastFloat
}

func peekOpFor(elem value.DataType) Opcode {
	if elem.IsWord() {
		return PeekVarWord
	}
	return PeekVarByte
}

// Emitter lowers a checked, optimized AST into a Program. Its only mutable
// state is labelSeq, the counter freshLabel advances; there are no globals
// (§9), and every helper takes the ProgramBlock it is appending to.
type Emitter struct {
	Heap     *value.Heap
	labelSeq int
}

// NewEmitter creates an Emitter over heap, the same heap the optimizer and
// checker already ran against.
func NewEmitter(heap *value.Heap) *Emitter {
	return &Emitter{Heap: heap}
}

// EmitModule lowers every top-level Block into its own ProgramBlock. Any
// top-level statement that isn't a Block (rare — §3 allows it) collects
// into one implicit block named "".
func (em *Emitter) EmitModule(m *ast.Module) *Program {
	p := &Program{}
	var implicit *ProgramBlock
	for _, stmt := range m.Statements {
		if b, ok := stmt.(*ast.Block); ok {
			p.Blocks = append(p.Blocks, em.emitBlock(b))
			continue
		}
		if implicit == nil {
			implicit = newProgramBlock("")
			p.Blocks = append(p.Blocks, implicit)
		}
		em.emitDecl(implicit, stmt)
	}
	for _, b := range p.Blocks {
		b.ReindexLabels()
	}
	return p
}

func (em *Emitter) emitBlock(b *ast.Block) *ProgramBlock {
	pb := newProgramBlock(b.Name)
	pb.Address = b.Address
	pb.ForceOutput = b.ForceOutput
	for _, stmt := range b.Statements {
		em.emitDecl(pb, stmt)
	}
	return pb
}

// emitDecl handles the declarative context at a Block's own top level:
// variable/constant/memory declarations register storage but emit no code
// (their initializer is data, not an executed statement), subroutines
// become labeled code regions, and anything else falls through to the
// executable-statement lowering for the rare stray top-level statement.
func (em *Emitter) emitDecl(pb *ProgramBlock, stmt ast.Stmt) {
	switch n := stmt.(type) {
	case *ast.VarDecl:
		em.registerVar(pb, n)
	case *ast.Subroutine:
		em.emitSubroutine(pb, n)
	case *ast.Directive:
		// directives are consumed by the checker/zero-page pass before
		// emission; nothing left to lower into code.
	default:
		em.emitStmt(pb, stmt)
	}
}

func (em *Emitter) registerVar(pb *ProgramBlock, v *ast.VarDecl) {
	pb.Variables[v.Name] = v.DataType
	if v.ZeroPage {
		pb.ZeroPage[v.Name] = true
	}
	if v.Kind == ast.MEMORY {
		addr := 0
		if v.Address != nil {
			addr = *v.Address
		}
		pb.MemoryPointers[v.Name] = addr
	}
}

func (em *Emitter) emitSubroutine(pb *ProgramBlock, sub *ast.Subroutine) {
	pb.Instructions = append(pb.Instructions, LabelInstr(sub.Name, sub.Pos()))
	for i := range sub.Params {
		pb.Variables[sub.Params[i].Name] = sub.Params[i].Type
	}
	if sub.IsAsmSubroutine {
		return
	}
	for _, inner := range sub.Statements {
		em.emitStmt(pb, inner)
	}
	if !endsInReturn(sub.Statements) {
		pb.Instructions = append(pb.Instructions, Instruction{Op: Return, Pos: sub.Pos()})
	}
}

func endsInReturn(stmts []ast.Stmt) bool {
	if len(stmts) == 0 {
		return false
	}
	_, ok := stmts[len(stmts)-1].(*ast.Return)
	return ok
}

// emitStmt lowers one executable statement, appending to pb.Instructions.
// Traversal order matches §5: statements in source order, expressions
// left-to-right post-order (operands pushed before the operator that
// consumes them).
func (em *Emitter) emitStmt(pb *ProgramBlock, stmt ast.Stmt) {
	pos := stmt.Pos()
	switch n := stmt.(type) {
	case *ast.VarDecl:
		em.registerVar(pb, n)
		if n.Value != nil && n.Kind != ast.MEMORY {
			em.emitExpr(pb, n.Value)
			pb.Instructions = append(pb.Instructions, Instruction{Op: PopVar, Arg: n.Name, Pos: pos})
		}
	case *ast.Assignment:
		em.emitAssignment(pb, n.Targets, n.Value, pos)
	case *ast.PostIncrDecr:
		em.emitPostIncrDecr(pb, n)
	case *ast.Jump:
		pb.Instructions = append(pb.Instructions, Instruction{Op: Jump, CallLabel: n.Target, Pos: pos})
	case *ast.Return:
		for _, v := range n.Values {
			em.emitExpr(pb, v)
		}
		pb.Instructions = append(pb.Instructions, Instruction{Op: Return, Pos: pos})
	case *ast.Label:
		pb.Instructions = append(pb.Instructions, LabelInstr(n.Name, pos))
	case *ast.IfStatement:
		em.emitIf(pb, n)
	case *ast.WhileLoop:
		em.emitWhile(pb, n)
	case *ast.RepeatLoop:
		em.emitRepeat(pb, n)
	case *ast.ForLoop:
		panic("ir: ForLoop reached the emitter — the statement optimizer should have lowered every range-based loop to a while loop by the time the checker stabilizes the tree")
	case *ast.FunctionCallStatement:
		em.emitCallForEffect(pb, n.Call)
	case *ast.InlineAssembly:
		pb.Instructions = append(pb.Instructions, Instruction{Op: Nop, Arg: n.Code, Pos: pos})
	case *ast.AnonymousScope:
		for _, inner := range n.Statements {
			em.emitStmt(pb, inner)
		}
	case *ast.NopStatement:
		pb.Instructions = append(pb.Instructions, Instruction{Op: Nop, Pos: pos})
	case *ast.Subroutine:
		em.emitSubroutine(pb, n)
	case *ast.Directive:
		// no runtime effect.
	case *ast.BuiltinFunctionStatementPlaceholder:
		panic("ir: BuiltinFunctionStatementPlaceholder reached the emitter — the statement optimizer must resolve it to a call or drop it before the checker runs")
	default:
		panic(fmt.Sprintf("ir: unhandled statement type %T", stmt))
	}
}

func (em *Emitter) emitCallForEffect(pb *ProgramBlock, call *ast.CallExpr) {
	for _, a := range call.Args {
		em.emitExpr(pb, a)
	}
	pb.Instructions = append(pb.Instructions, Instruction{Op: Call, CallLabel: call.Target, Pos: call.Pos()})
}

func (em *Emitter) emitIf(pb *ProgramBlock, n *ast.IfStatement) {
	pos := n.Pos()
	em.emitExpr(pb, n.Cond)
	if len(n.False) == 0 {
		end := em.freshLabel(pos)
		pb.Instructions = append(pb.Instructions, Instruction{Op: Jz, CallLabel: end, Pos: pos})
		for _, s := range n.True {
			em.emitStmt(pb, s)
		}
		pb.Instructions = append(pb.Instructions, LabelInstr(end, pos))
		return
	}
	elseLabel := em.freshLabel(pos)
	end := em.freshLabel(pos)
	pb.Instructions = append(pb.Instructions, Instruction{Op: Jz, CallLabel: elseLabel, Pos: pos})
	for _, s := range n.True {
		em.emitStmt(pb, s)
	}
	pb.Instructions = append(pb.Instructions, Instruction{Op: Jump, CallLabel: end, Pos: pos})
	pb.Instructions = append(pb.Instructions, LabelInstr(elseLabel, pos))
	for _, s := range n.False {
		em.emitStmt(pb, s)
	}
	pb.Instructions = append(pb.Instructions, LabelInstr(end, pos))
}

func (em *Emitter) emitWhile(pb *ProgramBlock, n *ast.WhileLoop) {
	pos := n.Pos()
	top := em.freshLabel(pos)
	end := em.freshLabel(pos)
	pb.Instructions = append(pb.Instructions, LabelInstr(top, pos))
	em.emitExpr(pb, n.Cond)
	pb.Instructions = append(pb.Instructions, Instruction{Op: Jz, CallLabel: end, Pos: pos})
	for _, s := range n.Body {
		em.emitStmt(pb, s)
	}
	pb.Instructions = append(pb.Instructions, Instruction{Op: Jump, CallLabel: top, Pos: pos})
	pb.Instructions = append(pb.Instructions, LabelInstr(end, pos))
}

func (em *Emitter) emitRepeat(pb *ProgramBlock, n *ast.RepeatLoop) {
	pos := n.Pos()
	top := em.freshLabel(pos)
	pb.Instructions = append(pb.Instructions, LabelInstr(top, pos))
	for _, s := range n.Body {
		em.emitStmt(pb, s)
	}
	if n.Cond == nil {
		pb.Instructions = append(pb.Instructions, Instruction{Op: Jump, CallLabel: top, Pos: pos})
		return
	}
	em.emitExpr(pb, n.Cond)
	pb.Instructions = append(pb.Instructions, Instruction{Op: Jz, CallLabel: top, Pos: pos})
}

// freshLabel derives a label name from source position plus a per-Emitter
// sequence number, so two labels at the same position never collide with
// each other. The statement optimizer names its synthesized labels from
// position alone under its own "__opt_loop_" prefix, so the two passes
// never collide on a name.
func (em *Emitter) freshLabel(pos value.Position) string {
	em.labelSeq++
	return fmt.Sprintf("__ir_%d_%d_%d", pos.Line, pos.Column, em.labelSeq)
}

func (em *Emitter) emitAssignment(pb *ProgramBlock, targets []ast.AssignTarget, val ast.Expr, pos value.Position) {
	if len(targets) == 1 {
		em.emitStoreSingle(pb, targets[0], val)
		return
	}
	em.emitExpr(pb, val)
	for i := len(targets) - 1; i >= 0; i-- {
		em.popSimple(pb, targets[i])
	}
}

func (em *Emitter) emitStoreSingle(pb *ProgramBlock, target ast.AssignTarget, val ast.Expr) {
	pos := target.Pos()
	switch t := target.(type) {
	case *ast.IndexTarget:
		em.emitExpr(pb, val)
		em.emitExpr(pb, t.Index)
		pb.Instructions = append(pb.Instructions, Instruction{Op: PopIndexed, Arg: identName(t.Array), Pos: pos})
	case *ast.MemoryTarget:
		em.emitExpr(pb, val)
		em.emitExpr(pb, t.Addr)
		pb.Instructions = append(pb.Instructions, Instruction{Op: PopMem, Pos: pos})
	default:
		em.emitExpr(pb, val)
		em.popSimple(pb, target)
	}
}

// popSimple pops the value already on top of the stack into a register or
// named variable. It panics on an indexed or memory target because those
// need their address pushed after the value (emitStoreSingle handles that
// ordering); reaching here with one means a caller skipped that step.
func (em *Emitter) popSimple(pb *ProgramBlock, target ast.AssignTarget) {
	pos := target.Pos()
	switch t := target.(type) {
	case *ast.RegisterTarget:
		pb.Instructions = append(pb.Instructions, Instruction{Op: PopReg, Arg: t.Register, Pos: pos})
	case *ast.IdentTarget:
		pb.Instructions = append(pb.Instructions, Instruction{Op: PopVar, Arg: t.Name, Pos: pos})
	default:
		panic(fmt.Sprintf("ir: %T cannot be popped without its address pushed first", target))
	}
}

func (em *Emitter) emitPostIncrDecr(pb *ProgramBlock, s *ast.PostIncrDecr) {
	pos := s.Pos()
	delta := func() {
		pb.Instructions = append(pb.Instructions, Instruction{Op: PushByte, Arg: "1", Pos: pos})
		op := Add
		if s.Op == "--" {
			op = Sub
		}
		pb.Instructions = append(pb.Instructions, Instruction{Op: op, Pos: pos})
	}
	switch t := s.Target.(type) {
	case *ast.IndexTarget:
		em.emitExpr(pb, t.Index)
		pb.Instructions = append(pb.Instructions, Instruction{Op: peekOpFor(elementTypeOf(t.Array)), Arg: identName(t.Array), Pos: pos})
		delta()
		em.emitExpr(pb, t.Index)
		pb.Instructions = append(pb.Instructions, Instruction{Op: PopIndexed, Arg: identName(t.Array), Pos: pos})
	case *ast.MemoryTarget:
		em.emitExpr(pb, t.Addr)
		pb.Instructions = append(pb.Instructions, Instruction{Op: PeekMem, Pos: pos})
		delta()
		em.emitExpr(pb, t.Addr)
		pb.Instructions = append(pb.Instructions, Instruction{Op: PopMem, Pos: pos})
	case *ast.RegisterTarget:
		pb.Instructions = append(pb.Instructions, Instruction{Op: PushReg, Arg: t.Register, Pos: pos})
		delta()
		pb.Instructions = append(pb.Instructions, Instruction{Op: PopReg, Arg: t.Register, Pos: pos})
	case *ast.IdentTarget:
		pb.Instructions = append(pb.Instructions, Instruction{Op: PushVar, Arg: t.Name, Pos: pos})
		delta()
		pb.Instructions = append(pb.Instructions, Instruction{Op: PopVar, Arg: t.Name, Pos: pos})
	}
}

// elementTypeOf resolves the array variable behind an IndexTarget/IndexExpr
// array operand to its element type, via the declaration the resolver left
// on the identifier. It falls back to UBYTE (the narrowest encoding) if the
// operand isn't a resolved identifier, which only happens for a tree the
// checker should already have rejected.
func elementTypeOf(arrayExpr ast.Expr) value.DataType {
	id, ok := arrayExpr.(*ast.IdentExpr)
	if !ok {
		return value.UBYTE
	}
	decl, ok := id.Decl.(*ast.VarDecl)
	if !ok {
		return value.UBYTE
	}
	return decl.DataType.ElementType()
}

func identName(e ast.Expr) string {
	if id, ok := e.(*ast.IdentExpr); ok {
		return id.Name
	}
	return ""
}

// emitExpr lowers e in expression (value-producing) position, pushing
// exactly one value (or, for a multi-return asm call, one value per return
// register in declaration order).
func (em *Emitter) emitExpr(pb *ProgramBlock, e ast.Expr) {
	pos := e.Pos()
	switch n := e.(type) {
	case *ast.LiteralExpr:
		em.pushLiteral(pb, n.Value, pos)
	case *ast.IdentExpr:
		pb.Instructions = append(pb.Instructions, Instruction{Op: PushVar, Arg: n.Name, Pos: pos})
	case *ast.PrefixExpr:
		em.emitExpr(pb, n.Operand)
		switch n.Op {
		case "-":
			pb.Instructions = append(pb.Instructions, Instruction{Op: Neg, Pos: pos})
		case "~", "not":
			pb.Instructions = append(pb.Instructions, Instruction{Op: Not, Pos: pos})
		case "+":
			// unary plus is a no-op; the operand is already on the stack.
		default:
			panic(fmt.Sprintf("ir: unhandled prefix operator %q", n.Op))
		}
	case *ast.BinaryExpr:
		em.emitExpr(pb, n.Left)
		em.emitExpr(pb, n.Right)
		op, ok := binaryOp[n.Op]
		if !ok {
			panic(fmt.Sprintf("ir: unhandled binary operator %q", n.Op))
		}
		pb.Instructions = append(pb.Instructions, Instruction{Op: op, Pos: pos})
	case *ast.CallExpr:
		for _, a := range n.Args {
			em.emitExpr(pb, a)
		}
		pb.Instructions = append(pb.Instructions, Instruction{Op: Call, CallLabel: n.Target, Pos: pos})
	case *ast.IndexExpr:
		em.emitExpr(pb, n.Index)
		pb.Instructions = append(pb.Instructions, Instruction{Op: peekOpFor(elementTypeOf(n.Array)), Arg: identName(n.Array), Pos: pos})
	case *ast.AddressOfExpr:
		pb.Instructions = append(pb.Instructions, Instruction{Op: PushAddr, Arg: n.ScopedName, Pos: pos})
	case *ast.TypecastExpr:
		em.emitExpr(pb, n.Value)
		op, ok := castOp[n.Type]
		if !ok {
			panic(fmt.Sprintf("ir: %s is not a valid typecast target", n.Type))
		}
		pb.Instructions = append(pb.Instructions, Instruction{Op: op, Pos: pos})
	case *ast.RegisterExpr:
		pb.Instructions = append(pb.Instructions, Instruction{Op: PushReg, Arg: n.Register, Pos: pos})
	case *ast.DirectMemoryReadExpr:
		em.emitExpr(pb, n.Addr)
		pb.Instructions = append(pb.Instructions, Instruction{Op: PeekMem, Pos: pos})
	case *ast.RangeExpr:
		panic("ir: RangeExpr reached the emitter — the expression optimizer should have materialized every constant range by the time the checker stabilizes the tree")
	default:
		panic(fmt.Sprintf("ir: unhandled expression type %T", e))
	}
}

func (em *Emitter) pushLiteral(pb *ProgramBlock, lit value.Literal, pos value.Position) {
	switch {
	case lit.Type.IsByte():
		pb.Instructions = append(pb.Instructions, Instruction{Op: PushByte, Arg: strconv.FormatInt(lit.AsIntegerValue(), 10), Pos: pos})
	case lit.Type.IsWord():
		pb.Instructions = append(pb.Instructions, Instruction{Op: PushWord, Arg: strconv.FormatInt(lit.AsIntegerValue(), 10), Pos: pos})
	case lit.Type.IsFloat():
		pb.Instructions = append(pb.Instructions, Instruction{Op: PushFloat, Arg: strconv.FormatFloat(lit.AsNumericValue(), 'g', -1, 64), Pos: pos})
	case lit.Type.IsString():
		pb.Instructions = append(pb.Instructions, Instruction{Op: PushStr, Arg: strconv.Itoa(lit.HeapID()), Pos: pos})
	case lit.Type.IsArray():
		pb.Instructions = append(pb.Instructions, Instruction{Op: PushArr, Arg: strconv.Itoa(lit.HeapID()), Pos: pos})
	default:
		panic(fmt.Sprintf("ir: literal of type %s has no push encoding", lit.Type))
	}
}
