package eval

import (
	"testing"

	"github.com/xyproto/c64c/internal/value"
)

func ub(n int64) value.Literal {
	lit, err := value.OptimalInteger(n, value.Position{})
	if err != nil {
		panic(err)
	}
	return lit
}

func word(n int64) value.Literal {
	lit, err := value.FromNumber(float64(n), value.WORD, value.Position{})
	if err != nil {
		panic(err)
	}
	return lit
}

func TestAdditiveAndMultiplicativeIdentity(t *testing.T) {
	h := value.NewHeap()
	for _, n := range []int64{0, 1, 127, 255, 1000, -1, -128} {
		var a value.Literal
		var err error
		if n < 0 {
			a, err = value.FromNumber(float64(n), value.WORD, value.Position{})
		} else {
			a = ub(n)
		}
		if err != nil {
			t.Fatal(err)
		}
		zero, _ := value.OptimalInteger(0, value.Position{})
		sum, err := Evaluate(h, a, "+", zero)
		if err != nil {
			t.Fatalf("eval(%v,+,0): %v", a, err)
		}
		if sum.AsNumericValue() != a.AsNumericValue() {
			t.Errorf("eval(%v,+,0) = %v, want %v", a, sum, a)
		}

		one, _ := value.OptimalInteger(1, value.Position{})
		prod, err := Evaluate(h, a, "*", one)
		if err != nil {
			t.Fatalf("eval(%v,*,1): %v", a, err)
		}
		if prod.AsNumericValue() != a.AsNumericValue() {
			t.Errorf("eval(%v,*,1) = %v, want %v", a, prod, a)
		}
	}
}

func TestAddThenSubtractRoundTrips(t *testing.T) {
	h := value.NewHeap()
	a := word(100)
	b := word(37)
	sum, err := Evaluate(h, a, "+", b)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Evaluate(h, sum, "-", b)
	if err != nil {
		t.Fatal(err)
	}
	if back.AsNumericValue() != a.AsNumericValue() {
		t.Errorf("round trip got %v, want %v", back, a)
	}
}

func TestDivisionByZero(t *testing.T) {
	h := value.NewHeap()
	a := ub(10)
	zero := ub(0)
	if _, err := Evaluate(h, a, "/", zero); err == nil {
		t.Error("expected division by zero error")
	}
	ff, _ := value.FromNumber(10.0, value.FLOAT, value.Position{})
	zf, _ := value.FromNumber(0.0, value.FLOAT, value.Position{})
	if _, err := Evaluate(h, ff, "/", zf); err == nil {
		t.Error("expected float division by zero error")
	}
}

func TestStringRepeatTooLong(t *testing.T) {
	h := value.NewHeap()
	id := h.AddString("ab", value.STR)
	str := value.NewHeapLiteral(value.STR, id, value.Position{})
	n, _ := value.OptimalInteger(200, value.Position{})
	if _, err := Evaluate(h, str, "*", n); err == nil {
		t.Error("expected 'string too long' error for 400-char result")
	}
}

func TestStringConcat(t *testing.T) {
	h := value.NewHeap()
	id1 := h.AddString("foo", value.STR)
	id2 := h.AddString("bar", value.STR)
	a := value.NewHeapLiteral(value.STR, id1, value.Position{})
	b := value.NewHeapLiteral(value.STR, id2, value.Position{})
	result, err := Evaluate(h, a, "+", b)
	if err != nil {
		t.Fatal(err)
	}
	entry, err := h.String(result.HeapID())
	if err != nil {
		t.Fatal(err)
	}
	if entry.Str != "foobar" {
		t.Errorf("concat result = %q, want foobar", entry.Str)
	}
}

func TestUByte255Plus1PromotesToUword(t *testing.T) {
	h := value.NewHeap()
	a := ub(255)
	one := ub(1)
	result, err := Evaluate(h, a, "+", one)
	if err != nil {
		t.Fatal(err)
	}
	if result.Type != value.UWORD {
		t.Errorf("255+1 should promote to UWORD, got %s", result.Type)
	}
	if result.AsIntegerValue() != 256 {
		t.Errorf("255+1 = %d, want 256", result.AsIntegerValue())
	}
}

func TestUnaryMinusOnUnsignedRejected(t *testing.T) {
	if _, err := EvaluateUnary("-", ub(5)); err == nil {
		t.Error("expected unary - on UBYTE to be rejected")
	}
}

func TestUnaryMinusOverflowOnByteMin(t *testing.T) {
	b, err := value.FromNumber(-128, value.BYTE, value.Position{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := EvaluateUnary("-", b); err == nil {
		t.Error("expected overflow negating BYTE -128")
	}
}

func TestModuloRequiresUnsigned(t *testing.T) {
	h := value.NewHeap()
	a := word(-10)
	b := word(3)
	if _, err := Evaluate(h, a, "%", b); err == nil {
		t.Error("expected %% on signed operands to be rejected")
	}
}

func TestShiftRightArithmeticVsLogical(t *testing.T) {
	h := value.NewHeap()
	negOne, err := value.FromNumber(-1, value.BYTE, value.Position{})
	if err != nil {
		t.Fatal(err)
	}
	one := ub(1)
	result, err := Evaluate(h, negOne, ">>", one)
	if err != nil {
		t.Fatal(err)
	}
	if result.AsIntegerValue() != -1 {
		t.Errorf("arithmetic >> of -1 should stay -1, got %d", result.AsIntegerValue())
	}

	uMax := ub(255)
	uResult, err := Evaluate(h, uMax, ">>", one)
	if err != nil {
		t.Fatal(err)
	}
	if uResult.AsIntegerValue() != 127 {
		t.Errorf("logical >> of 255 by 1 should be 127, got %d", uResult.AsIntegerValue())
	}
}

func TestMaterializeIntRangeRejectsOversizeCardinality(t *testing.T) {
	h := value.NewHeap()
	from, _ := value.FromNumber(0, value.UWORD, value.Position{})
	to, _ := value.FromNumber(65536, value.UWORD, value.Position{})
	_, err := MaterializeIntRange(h, from, to, value.Literal{}, value.Position{})
	if err == nil {
		t.Error("expected range 0 to 65536 to be rejected")
	}
}

func TestMaterializeIntRangeAcceptsFullWordRange(t *testing.T) {
	h := value.NewHeap()
	from, _ := value.FromNumber(0, value.UWORD, value.Position{})
	to, _ := value.FromNumber(65535, value.UWORD, value.Position{})
	lit, err := MaterializeIntRange(h, from, to, value.Literal{}, value.Position{})
	if err != nil {
		t.Fatalf("expected 0 to 65535 to be accepted: %v", err)
	}
	arr, err := h.Array(lit.HeapID())
	if err != nil {
		t.Fatal(err)
	}
	if len(arr.Values) != 65536 {
		t.Errorf("expected 65536 elements, got %d", len(arr.Values))
	}
}
