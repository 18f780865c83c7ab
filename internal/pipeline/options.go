package pipeline

import (
	"github.com/xyproto/c64c/internal/zpalloc"
	"github.com/xyproto/env/v2"
)

// CompileOptions parallels the teacher's compiler_state.go CompileOptions:
// a small struct of driver-tunable knobs, passed explicitly rather than
// read from globals (§9 "No globals").
type CompileOptions struct {
	// EnableFloats is set from C64C_ENABLE_FLOATS for a driver to read.
	// Run does not pass it to the checker, which accepts FLOAT declarations
	// only in a module carrying "%option enable_floats", whatever this
	// field says.
	EnableFloats bool
	// Zeropage selects which %zeropage policy the allocation pass uses
	// when no explicit directive overrides it.
	Zeropage zpalloc.Policy
	// MaxFixedPointIterations bounds the expression/statement optimizer
	// alternation (§9 DESIGN NOTES: "bound iterations defensively (e.g.,
	// 100) and fail fatally if exceeded").
	MaxFixedPointIterations int
	// Verbose is the teacher's VerboseMode global threaded as a field,
	// since this is a library with no process-wide CLI state. No stage in
	// this module reads it or writes trace lines.
	Verbose bool
}

// DefaultOptions returns the options a driver gets with no environment
// overrides: floats enabled, the safest zero-page policy, a 100-iteration
// fixed-point bound, and no trace output.
func DefaultOptions() CompileOptions {
	return CompileOptions{
		EnableFloats:            true,
		Zeropage:                zpalloc.BasicSafe,
		MaxFixedPointIterations: 100,
		Verbose:                 false,
	}
}

// OptionsFromEnv starts from DefaultOptions and overrides fields from
// C64C_ENABLE_FLOATS, C64C_ZEROPAGE_POLICY, and C64C_MAX_FIXPOINT_ITERATIONS,
// the same pattern the teacher's CLI uses env for NO_COLOR and related
// overrides instead of raw os.Getenv, so a driver can tune the fixed-point
// bound and zero-page policy without recompiling.
func OptionsFromEnv() CompileOptions {
	opts := DefaultOptions()
	if env.Has("C64C_ENABLE_FLOATS") {
		opts.EnableFloats = env.Bool("C64C_ENABLE_FLOATS")
	}
	opts.MaxFixedPointIterations = env.Int("C64C_MAX_FIXPOINT_ITERATIONS", opts.MaxFixedPointIterations)
	if name := env.Str("C64C_ZEROPAGE_POLICY"); name != "" {
		if p, ok := zpalloc.ParsePolicy(name); ok {
			opts.Zeropage = p
		}
	}
	return opts
}
