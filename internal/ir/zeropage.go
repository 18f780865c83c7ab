package ir

import (
	"github.com/xyproto/c64c/internal/diag"
	"github.com/xyproto/c64c/internal/value"
	"github.com/xyproto/c64c/internal/zpalloc"
)

// AllocateZeroPage walks every block's variables flagged @zp and asks
// alloc for an address of the variable's declared type. Successes are
// returned in the "allocatedZeropageVariables" map named by §5/§6;
// failures (zpalloc.Depleted) are reported as warnings and leave the
// variable in normal memory rather than aborting the pass.
func AllocateZeroPage(p *Program, alloc zpalloc.Allocator, diags *diag.Bag) map[string]int {
	for _, pb := range p.Blocks {
		for name := range pb.ZeroPage {
			dt, ok := pb.Variables[name]
			if !ok {
				continue
			}
			if _, err := alloc.Allocate(name, dt, ""); err != nil {
				diags.Add(diag.Error{
					Level:    diag.LevelWarning,
					Category: diag.CategoryInternal,
					Message:  err.Error(),
					Position: value.Position{},
				})
			}
		}
	}
	return alloc.Allocated()
}
