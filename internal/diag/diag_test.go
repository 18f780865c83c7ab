package diag

import (
	"strings"
	"testing"

	"github.com/xyproto/c64c/internal/value"
)

func pos(line int) value.Position {
	return value.Position{File: "test.prg", Line: line, Column: 1}
}

func TestFormatIncludesLevelAndPosition(t *testing.T) {
	e := New(CategoryExpression, pos(3), "division by zero")
	out := e.Format(false)
	if !strings.Contains(out, "error") || !strings.Contains(out, "division by zero") {
		t.Errorf("Format output missing level or message: %q", out)
	}
	if !strings.Contains(out, "test.prg") {
		t.Errorf("Format output missing position: %q", out)
	}
}

func TestWarningfIsLevelWarning(t *testing.T) {
	w := Warningf(CategorySyntax, pos(1), "for loop body is empty")
	if w.Level != LevelWarning {
		t.Errorf("Warningf produced level %v, want LevelWarning", w.Level)
	}
}

func TestBagDeduplicatesByMessage(t *testing.T) {
	b := NewBag()
	b.Add(New(CategoryName, pos(5), "undefined identifier %q", "foo"))
	b.Add(New(CategoryName, pos(5), "undefined identifier %q", "foo"))
	if len(b.All()) != 1 {
		t.Errorf("expected duplicate diagnostic to be suppressed, got %d entries", len(b.All()))
	}
}

func TestBagSeparatesWarningsFromErrors(t *testing.T) {
	b := NewBag()
	b.Add(New(CategorySyntax, pos(1), "bad"))
	b.Add(Warningf(CategorySyntax, pos(2), "careful"))
	if len(b.Errors()) != 1 || len(b.Warnings()) != 1 {
		t.Errorf("expected 1 error and 1 warning, got %d errors, %d warnings", len(b.Errors()), len(b.Warnings()))
	}
	if !b.HasErrors() {
		t.Error("HasErrors should be true when an error-level diagnostic is present")
	}
}

func TestBagHasErrorsFalseForWarningsOnly(t *testing.T) {
	b := NewBag()
	b.Add(Warningf(CategorySyntax, pos(1), "careful"))
	if b.HasErrors() {
		t.Error("HasErrors should be false when only warnings are present")
	}
}

func TestSummaryCountsOnlyErrors(t *testing.T) {
	b := NewBag()
	b.Add(New(CategorySyntax, pos(1), "bad one"))
	b.Add(New(CategorySyntax, pos(2), "bad two"))
	b.Add(Warningf(CategorySyntax, pos(3), "careful"))
	summary := b.Summary("demo")
	if !strings.Contains(summary, "2 errors") || !strings.Contains(summary, "'demo'") {
		t.Errorf("Summary = %q, want mention of 2 errors in module 'demo'", summary)
	}
}
