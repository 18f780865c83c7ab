package builtin

import (
	"testing"

	"github.com/xyproto/c64c/internal/value"
)

func TestLookupKnownBuiltin(t *testing.T) {
	f, ok := Lookup("msb")
	if !ok {
		t.Fatal("expected msb to be a known builtin")
	}
	if len(f.Params) != 1 || f.ReturnType != value.UBYTE {
		t.Errorf("msb signature = %+v, want one anyWord param returning UBYTE", f)
	}
}

func TestLookupUnknownBuiltin(t *testing.T) {
	if _, ok := Lookup("frobnicate"); ok {
		t.Error("expected frobnicate to be unknown")
	}
}

func TestIsPureDistinguishesSwapFromMsb(t *testing.T) {
	if !IsPure("msb") {
		t.Error("msb should be pure")
	}
	if IsPure("swap") {
		t.Error("swap should not be pure, it mutates its arguments")
	}
}

func TestIsPureUnknownBuiltinIsFalse(t *testing.T) {
	if IsPure("frobnicate") {
		t.Error("unknown builtins must not be considered pure")
	}
}

func TestParamAcceptsRejectsOutOfSetType(t *testing.T) {
	p := Param{Allowed: []value.DataType{value.UBYTE, value.BYTE}}
	if !p.Accepts(value.UBYTE) {
		t.Error("expected UBYTE to be accepted")
	}
	if p.Accepts(value.FLOAT) {
		t.Error("expected FLOAT to be rejected")
	}
}

func TestCHROUTAndPrintAreImpure(t *testing.T) {
	for _, name := range []string{"c64.CHROUT", "c64scr.print", "lsl", "lsr"} {
		if IsPure(name) {
			t.Errorf("%s should not be pure (it has a side effect on the target)", name)
		}
	}
}
