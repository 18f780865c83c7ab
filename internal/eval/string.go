package eval

import (
	"strings"

	"github.com/xyproto/c64c/internal/value"
)

func evalStringConcat(h *value.Heap, left, right value.Literal, pos value.Position) (value.Literal, error) {
	if !left.Type.IsString() || !right.Type.IsString() {
		return value.Literal{}, errAt(pos, "+ between a string and a non-string is not defined")
	}
	if left.Type != right.Type {
		return value.Literal{}, errAt(pos, "cannot concatenate %s with %s", left.Type, right.Type)
	}
	ls, err := h.String(left.HeapID())
	if err != nil {
		return value.Literal{}, err
	}
	rs, err := h.String(right.HeapID())
	if err != nil {
		return value.Literal{}, err
	}
	result := ls.Str + rs.Str
	if len(result) > value.MaxStringLen {
		return value.Literal{}, errAt(pos, "string too long")
	}
	id := h.AddString(result, left.Type)
	return value.NewHeapLiteral(left.Type, id, pos), nil
}

// evalStringRepeat implements Integer * STR and STR * Integer by repeating
// the string that many times.
func evalStringRepeat(h *value.Heap, left, right value.Literal, pos value.Position) (value.Literal, error) {
	var str value.Literal
	var count value.Literal
	switch {
	case left.Type.IsString() && right.Type.IsInteger():
		str, count = left, right
	case right.Type.IsString() && left.Type.IsInteger():
		str, count = right, left
	default:
		return value.Literal{}, errAt(pos, "* requires a string and an integer operand")
	}
	n := count.AsIntegerValue()
	if n < 0 {
		return value.Literal{}, errAt(pos, "cannot repeat a string a negative number of times")
	}
	entry, err := h.String(str.HeapID())
	if err != nil {
		return value.Literal{}, err
	}
	result := strings.Repeat(entry.Str, int(n))
	if len(result) > value.MaxStringLen {
		return value.Literal{}, errAt(pos, "string too long")
	}
	id := h.AddString(result, str.Type)
	return value.NewHeapLiteral(str.Type, id, pos), nil
}
