// Package value implements the compiler's value model: source positions, the
// closed DataType lattice, literal values, and the append-only heap that
// backs out-of-line string and array literals.
package value

import "fmt"

// Position identifies a location in source text. It is attached to every AST
// node and every literal value, and is used for diagnostics and for LINE
// instructions emitted into the IR.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// IsZero reports whether the position was never set.
func (p Position) IsZero() bool {
	return p.File == "" && p.Line == 0 && p.Column == 0
}
