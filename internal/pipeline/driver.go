package pipeline

import (
	"fmt"

	"github.com/xyproto/c64c/internal/ast"
	"github.com/xyproto/c64c/internal/check"
	"github.com/xyproto/c64c/internal/ir"
	"github.com/xyproto/c64c/internal/optimize"
	"github.com/xyproto/c64c/internal/scope"
	"github.com/xyproto/c64c/internal/zpalloc"
)

// maxRewriteLogLines bounds how many "iter N: expr=.. stmt=.." entries the
// overflow panic carries, mirroring stack_validator.go's habit of dumping
// only the tail of its operation history rather than the whole run.
const maxRewriteLogLines = 10

// Run drives a parsed module through every remaining stage: the
// expression/statement optimizer fixed point, semantic checking, IR
// emission, zero-page allocation, and peephole optimization. It returns
// the final program alongside the State a caller can inspect for
// diagnostics, or an error if semantic checking rejected the module.
func Run(m *ast.Module, opts CompileOptions) (*ir.Program, *State, error) {
	st := NewState(opts)

	ns, errs := scope.Build(m)
	if len(errs) > 0 {
		return nil, st, fmt.Errorf("pipeline: namespace build failed: %v", errs)
	}
	if errs := ns.BindAll(m); len(errs) > 0 {
		return nil, st, fmt.Errorf("pipeline: name resolution failed: %v", errs)
	}
	st.Namespace = ns

	st.Stage.Advance(StageOptimizeExpr)
	rewriteLog := make([]string, 0, maxRewriteLogLines)
	for iteration := 1; ; iteration++ {
		if iteration > opts.MaxFixedPointIterations {
			panic(fmt.Sprintf("pipeline: optimizer did not reach a fixed point after %d iterations; last rewrites: %v",
				opts.MaxFixedPointIterations, rewriteLog))
		}

		nExpr := optimize.OptimizeExpressions(m, st.Heap)
		st.Stage.Advance(StageOptimizeStmt)
		nStmt := optimize.OptimizeStatements(m, ns, st.Heap)

		rewriteLog = append(rewriteLog, fmt.Sprintf("iter %d: expr=%d stmt=%d", iteration, nExpr, nStmt))
		if len(rewriteLog) > maxRewriteLogLines {
			rewriteLog = rewriteLog[len(rewriteLog)-maxRewriteLogLines:]
		}

		if nExpr == 0 && nStmt == 0 {
			break
		}
		st.Stage.Advance(StageOptimizeExpr)
	}

	st.Stage.Advance(StageCheck)
	st.Diags = check.Check(m, ns, st.Heap)
	if st.Diags.HasErrors() {
		return nil, st, fmt.Errorf("%s", st.Diags.Summary("module"))
	}

	st.Stage.Advance(StageEmitIR)
	prog := ir.NewEmitter(st.Heap).EmitModule(m)
	st.Program = prog

	alloc := zpalloc.NewBump(opts.Zeropage)
	ir.AllocateZeroPage(prog, alloc, st.Diags)

	st.Stage.Advance(StagePeephole)
	ir.PeepholeProgram(prog)

	st.Stage.Advance(StageComplete)
	return prog, st, nil
}
