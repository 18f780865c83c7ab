// Package diag implements the diagnostic model described in §7: typed,
// positioned errors and warnings, accumulated into a deduplicated bag by
// the semantic checker, with a terminal summary line and optional ANSI
// color rendering.
package diag

import (
	"fmt"
	"strings"

	"github.com/xyproto/c64c/internal/value"
)

// Level is a diagnostic's severity.
type Level int

const (
	LevelWarning Level = iota
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelFatal:
		return "fatal error"
	default:
		return "error"
	}
}

// Category classifies a diagnostic per §7: SyntaxError (structural rule
// violation), ExpressionError (type/value mismatch in an expression
// context), NameError (unresolved or mis-kinded name), or Internal (an
// AstException/CompilerException-class invariant violation).
type Category int

const (
	CategorySyntax Category = iota
	CategoryExpression
	CategoryName
	CategoryInternal
)

func (c Category) String() string {
	switch c {
	case CategorySyntax:
		return "syntax"
	case CategoryExpression:
		return "expression"
	case CategoryName:
		return "name"
	case CategoryInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Context carries optional extra detail for a diagnostic.
type Context struct {
	SourceLine string
	Suggestion string // "did you mean 'x'?"
	HelpText   string
}

// Error is a single positioned diagnostic.
type Error struct {
	Level    Level
	Category Category
	Message  string
	Position value.Position
	Context  Context
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Position, e.Level, e.Message)
}

// Format renders the diagnostic the way the checker prints it to stderr:
// one line of "level: message", a "--> position" line, and optionally a
// source-line-with-caret block.
func (e Error) Format(useColor bool) string {
	var sb strings.Builder
	levelColor, reset := "", ""
	if useColor {
		reset = "\033[0m"
		if e.Level == LevelWarning {
			levelColor = "\033[1;33m" // bold yellow
		} else {
			levelColor = "\033[1;31m" // bold red
		}
	}
	sb.WriteString(levelColor)
	sb.WriteString(e.Level.String())
	sb.WriteString(reset)
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	sb.WriteString("\n  --> ")
	sb.WriteString(e.Position.String())
	if e.Context.SourceLine != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Context.SourceLine)
		if e.Position.Column > 0 {
			sb.WriteString("\n")
			sb.WriteString(strings.Repeat(" ", e.Position.Column-1))
			sb.WriteString("^")
		}
	}
	if e.Context.Suggestion != "" {
		sb.WriteString("\n  ")
		sb.WriteString(e.Context.Suggestion)
	}
	return sb.String()
}

// New constructs an error-level diagnostic.
func New(category Category, pos value.Position, format string, args ...any) Error {
	return Error{Level: LevelError, Category: category, Position: pos, Message: fmt.Sprintf(format, args...)}
}

// Warningf constructs a warning-level diagnostic.
func Warningf(category Category, pos value.Position, format string, args ...any) Error {
	return Error{Level: LevelWarning, Category: category, Position: pos, Message: fmt.Sprintf(format, args...)}
}
