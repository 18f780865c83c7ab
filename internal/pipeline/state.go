package pipeline

import (
	"github.com/xyproto/c64c/internal/diag"
	"github.com/xyproto/c64c/internal/ir"
	"github.com/xyproto/c64c/internal/scope"
	"github.com/xyproto/c64c/internal/value"
)

// State bundles everything a compilation run threads through components
// A-H, grounded on the teacher's CompilerState: the heap, the namespace
// built once after parsing, the accumulated diagnostics, the chosen
// options, and the stage tracker. Nothing here is global (§9).
type State struct {
	Heap      *value.Heap
	Namespace *scope.Namespace
	Diags     *diag.Bag
	Options   CompileOptions
	Stage     *Pipeline
	Program   *ir.Program
}

// NewState returns a State positioned at StageParse with a fresh heap,
// diagnostics bag, and pipeline, ready for Run to drive forward.
func NewState(opts CompileOptions) *State {
	return &State{
		Heap:    value.NewHeap(),
		Diags:   diag.NewBag(),
		Options: opts,
		Stage:   NewPipeline(),
	}
}
