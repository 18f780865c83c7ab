package ir

import (
	"fmt"
	"strconv"
)

// Peephole runs every rule below to a fixed point over pb.Instructions and
// returns the number of rewrites performed, mirroring the expression and
// statement optimizers' own "optimizations performed" counters (§5). The
// loop has no iteration cap: it stops on the first pass in which no rule
// fires.
func Peephole(pb *ProgramBlock) int {
	total := 0
	for {
		n := removeNops(pb)
		n += foldConsecutiveLines(pb)
		n += foldTailCalls(pb)
		n += foldConstBranches(pb)
		n += invertNotBranches(pb)
		n += elideRedundantPushPop(pb)
		n += foldCastAfterPush(pb)
		n += elideDiscardAfterPush(pb)
		total += n
		if n == 0 {
			break
		}
	}
	pb.ReindexLabels()
	return total
}

// PeepholeProgram runs Peephole over every block and returns the total
// rewrite count.
func PeepholeProgram(p *Program) int {
	total := 0
	for _, pb := range p.Blocks {
		total += Peephole(pb)
	}
	return total
}

// removeNops drops every bare NOP (Op == Nop with an empty Arg). A NOP
// whose Arg carries inline assembly text is kept. A LabelInstr is also a
// NOP at runtime but is never dropped here — it is a jump target, the one
// exception §4.H's "LINE-NOPs that are not labels" calls out by name.
func removeNops(pb *ProgramBlock) int {
	out := pb.Instructions[:0:0]
	removed := 0
	for _, instr := range pb.Instructions {
		if instr.Op == Nop && instr.Arg == "" {
			removed++
			continue
		}
		out = append(out, instr)
	}
	pb.Instructions = out
	return removed
}

// foldConsecutiveLines collapses a run of LINE instructions into the last
// one — only the most recent position matters for diagnostics once a
// later LINE instruction has superseded it.
func foldConsecutiveLines(pb *ProgramBlock) int {
	out := pb.Instructions[:0:0]
	folded := 0
	for i, instr := range pb.Instructions {
		if instr.Op == Line && i+1 < len(pb.Instructions) && pb.Instructions[i+1].Op == Line {
			folded++
			continue
		}
		out = append(out, instr)
	}
	pb.Instructions = out
	return folded
}

// foldTailCalls rewrites "CALL X; RETURN" to "JUMP X". The two
// instructions must be strictly adjacent: a RETURN carrying its own
// values would have pushes between the CALL and it, breaking adjacency,
// so this never drops a value the caller still needed.
func foldTailCalls(pb *ProgramBlock) int {
	n := 0
	out := make([]Instruction, 0, len(pb.Instructions))
	i := 0
	for i < len(pb.Instructions) {
		cur := pb.Instructions[i]
		if cur.Op == Call && i+1 < len(pb.Instructions) && pb.Instructions[i+1].Op == Return {
			out = append(out, Instruction{Op: Jump, CallLabel: cur.CallLabel, Pos: cur.Pos})
			i += 2
			n++
			continue
		}
		out = append(out, cur)
		i++
	}
	pb.Instructions = out
	return n
}

func isConditionalBranch(op Opcode) bool {
	switch op {
	case Jz, Jnz, JzW, JnzW:
		return true
	default:
		return false
	}
}

func invertedBranch(op Opcode) Opcode {
	switch op {
	case Jz:
		return Jnz
	case Jnz:
		return Jz
	case JzW:
		return JnzW
	case JnzW:
		return JzW
	default:
		return op
	}
}

func branchTakesOnZero(op Opcode) bool {
	return op == Jz || op == JzW
}

// foldConstBranches collapses "PUSH const; Jcond" into an unconditional
// JUMP or a NOP once the pushed constant's truthiness is known, dropping
// the push.
func foldConstBranches(pb *ProgramBlock) int {
	n := 0
	out := make([]Instruction, 0, len(pb.Instructions))
	i := 0
	for i < len(pb.Instructions) {
		cur := pb.Instructions[i]
		if (cur.Op == PushByte || cur.Op == PushWord) && i+1 < len(pb.Instructions) && isConditionalBranch(pb.Instructions[i+1].Op) {
			branch := pb.Instructions[i+1]
			v, err := strconv.ParseInt(cur.Arg, 10, 64)
			if err == nil {
				taken := (v == 0) == branchTakesOnZero(branch.Op)
				if taken {
					out = append(out, Instruction{Op: Jump, CallLabel: branch.CallLabel, Pos: branch.Pos})
				} else {
					out = append(out, Instruction{Op: Nop, Pos: branch.Pos})
				}
				i += 2
				n++
				continue
			}
		}
		out = append(out, cur)
		i++
	}
	pb.Instructions = out
	return n
}

// invertNotBranches rewrites "NOT; Jcond" to the inverted Jcond, dropping
// the NOT.
func invertNotBranches(pb *ProgramBlock) int {
	n := 0
	out := make([]Instruction, 0, len(pb.Instructions))
	i := 0
	for i < len(pb.Instructions) {
		cur := pb.Instructions[i]
		if cur.Op == Not && i+1 < len(pb.Instructions) && isConditionalBranch(pb.Instructions[i+1].Op) {
			branch := pb.Instructions[i+1]
			out = append(out, Instruction{Op: invertedBranch(branch.Op), CallLabel: branch.CallLabel, Pos: branch.Pos})
			i += 2
			n++
			continue
		}
		out = append(out, cur)
		i++
	}
	pb.Instructions = out
	return n
}

// elideRedundantPushPop drops "PUSH_VAR x; POP_VAR x" and
// "PUSH_REG r; POP_REG r" pairs: the value never changes between the push
// and the pop, so the round trip has no effect.
func elideRedundantPushPop(pb *ProgramBlock) int {
	n := 0
	out := make([]Instruction, 0, len(pb.Instructions))
	i := 0
	for i < len(pb.Instructions) {
		cur := pb.Instructions[i]
		if i+1 < len(pb.Instructions) {
			next := pb.Instructions[i+1]
			if cur.Op == PushVar && next.Op == PopVar && cur.Arg == next.Arg {
				i += 2
				n++
				continue
			}
			if cur.Op == PushReg && next.Op == PopReg && cur.Arg == next.Arg {
				i += 2
				n++
				continue
			}
		}
		out = append(out, cur)
		i++
	}
	pb.Instructions = out
	return n
}

// foldCastAfterPush rewrites "PUSH_BYTE/WORD/FLOAT const; CAST_*" into a
// single push of the already-converted constant, masking to the low byte
// when narrowing a word constant to a byte (the "UB/MSB" masking named by
// §4.H item 6).
func foldCastAfterPush(pb *ProgramBlock) int {
	n := 0
	out := make([]Instruction, 0, len(pb.Instructions))
	i := 0
	for i < len(pb.Instructions) {
		cur := pb.Instructions[i]
		if isConstPush(cur.Op) && i+1 < len(pb.Instructions) && isCast(pb.Instructions[i+1].Op) {
			cast := pb.Instructions[i+1]
			if rewritten, ok := castConstPush(cur, cast.Op); ok {
				out = append(out, rewritten)
				i += 2
				n++
				continue
			}
		}
		out = append(out, cur)
		i++
	}
	pb.Instructions = out
	return n
}

func isConstPush(op Opcode) bool {
	return op == PushByte || op == PushWord || op == PushFloat
}

func isCast(op Opcode) bool {
	return op == CastByte || op == CastWord || op == CastFloat
}

func castConstPush(push Instruction, cast Opcode) (Instruction, bool) {
	switch {
	case push.Op == PushFloat || cast == CastFloat:
		// floats don't fold through the integer masking path below; leave
		// the pair alone rather than guess a lossy conversion.
		return Instruction{}, false
	}
	v, err := strconv.ParseInt(push.Arg, 10, 64)
	if err != nil {
		return Instruction{}, false
	}
	switch cast {
	case CastByte:
		return Instruction{Op: PushByte, Arg: strconv.FormatInt(v&0xFF, 10), Pos: push.Pos}, true
	case CastWord:
		return Instruction{Op: PushWord, Arg: strconv.FormatInt(v&0xFFFF, 10), Pos: push.Pos}, true
	default:
		return Instruction{}, false
	}
}

func discardFor(op Opcode) (Opcode, bool) {
	switch op {
	case PushByte:
		return DiscardByte, true
	case PushWord:
		return DiscardWord, true
	case PushFloat:
		return DiscardFloat, true
	default:
		return "", false
	}
}

// elideDiscardAfterPush drops "PUSH_*; DISCARD_*" pairs of matching type.
// A mismatched pair means the checker or an earlier pass attached the
// wrong discard width to a push — an invariant violation this core treats
// as fatal rather than silently masking it (§7 "the IR emitter treats
// inconsistencies as fatal").
func elideDiscardAfterPush(pb *ProgramBlock) int {
	n := 0
	out := make([]Instruction, 0, len(pb.Instructions))
	i := 0
	for i < len(pb.Instructions) {
		cur := pb.Instructions[i]
		if isConstPush(cur.Op) && i+1 < len(pb.Instructions) && isDiscard(pb.Instructions[i+1].Op) {
			want, _ := discardFor(cur.Op)
			got := pb.Instructions[i+1].Op
			if got != want {
				panic(fmt.Sprintf("ir: %s push discarded with mismatched %s at %s", cur.Op, got, cur.Pos))
			}
			i += 2
			n++
			continue
		}
		out = append(out, cur)
		i++
	}
	pb.Instructions = out
	return n
}

func isDiscard(op Opcode) bool {
	switch op {
	case DiscardByte, DiscardWord, DiscardFloat:
		return true
	default:
		return false
	}
}
