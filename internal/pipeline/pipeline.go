// Package pipeline wires components A-H into the control flow described by
// §2: parser → (repeat until fixed point: expression optimization,
// statement optimization) → semantic checking → IR emission → peephole IR
// optimization. It owns no analysis of its own; every rule lives in the
// package named for its component.
package pipeline

import "fmt"

// Stage is one step of the compilation pipeline, grounded on the teacher's
// CompilationStage state machine: an enumerated, validated sequence a
// Pipeline can only advance through in order.
type Stage int

const (
	StageParse Stage = iota
	StageOptimizeExpr
	StageOptimizeStmt
	StageCheck
	StageEmitIR
	StagePeephole
	StageComplete
)

func (s Stage) String() string {
	switch s {
	case StageParse:
		return "Parse"
	case StageOptimizeExpr:
		return "Optimize: Expressions"
	case StageOptimizeStmt:
		return "Optimize: Statements"
	case StageCheck:
		return "Semantic Check"
	case StageEmitIR:
		return "IR Emission"
	case StagePeephole:
		return "IR Peephole"
	case StageComplete:
		return "Complete"
	default:
		return fmt.Sprintf("unknown stage %d", int(s))
	}
}

// validNext enumerates the one legal successor of every stage. The
// expression/statement optimizer stages are each other's legal successor
// in both directions because the fixed-point driver alternates between
// them; every other edge is a strict, one-way walk through the list.
var validNext = map[Stage]map[Stage]bool{
	StageParse:         {StageOptimizeExpr: true},
	StageOptimizeExpr:  {StageOptimizeStmt: true, StageCheck: true},
	StageOptimizeStmt:  {StageOptimizeExpr: true, StageCheck: true},
	StageCheck:         {StageEmitIR: true},
	StageEmitIR:        {StagePeephole: true},
	StagePeephole:      {StageComplete: true},
	StageComplete:      {},
}

// Pipeline tracks the current stage and rejects any transition not named
// by validNext, the same stage-discipline the teacher's
// CompilationPipeline enforces over its own (differently named) stages.
type Pipeline struct {
	current Stage
	history []Stage
}

// NewPipeline creates a Pipeline positioned at StageParse.
func NewPipeline() *Pipeline {
	return &Pipeline{current: StageParse, history: []Stage{StageParse}}
}

// Current returns the pipeline's current stage.
func (p *Pipeline) Current() Stage { return p.current }

// History returns every stage visited, in order, including repeats from
// the optimizer's back-and-forth.
func (p *Pipeline) History() []Stage {
	return append([]Stage(nil), p.history...)
}

// Advance transitions to next, panicking if the transition is not legal
// from the current stage — an internal invariant violation, the same
// class of fatal error the teacher's AdvanceTo raises on an invalid stage
// transition.
func (p *Pipeline) Advance(next Stage) {
	if !validNext[p.current][next] {
		panic(fmt.Sprintf("pipeline: invalid stage transition %s -> %s (history: %v)", p.current, next, p.history))
	}
	p.current = next
	p.history = append(p.history, next)
}

// Require panics unless the pipeline is currently at expected, matching
// the teacher's ValidateStage guard against an operation running out of
// order.
func (p *Pipeline) Require(expected Stage, operation string) {
	if p.current != expected {
		panic(fmt.Sprintf("pipeline: %q requires stage %s, currently at %s", operation, expected, p.current))
	}
}
