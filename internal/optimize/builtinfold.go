package optimize

import (
	"fmt"
	"math"

	"github.com/xyproto/c64c/internal/value"
)

// foldBuiltinCall evaluates a call to one of the built-in table's pure
// functions with all-literal arguments. §4.D has no arithmetic rule for
// these since they are calls rather than operators, so each case here
// matches the return type builtin.Lookup declares for that name exactly,
// so the folded literal never disagrees with what the checker already
// expects from callReturnType.
func foldBuiltinCall(heap *value.Heap, name string, args []value.Literal, pos value.Position) (value.Literal, error) {
	switch name {
	case "abs":
		return value.FromNumber(math.Abs(args[0].AsNumericValue()), value.FLOAT, pos)
	case "min":
		return value.FromNumber(math.Min(args[0].AsNumericValue(), args[1].AsNumericValue()), value.FLOAT, pos)
	case "max":
		return value.FromNumber(math.Max(args[0].AsNumericValue(), args[1].AsNumericValue()), value.FLOAT, pos)
	case "msb":
		return value.FromNumber(float64((args[0].AsIntegerValue()>>8)&0xFF), value.UBYTE, pos)
	case "lsb":
		return value.FromNumber(float64(args[0].AsIntegerValue()&0xFF), value.UBYTE, pos)
	case "mkword":
		lo := args[0].AsIntegerValue() & 0xFF
		hi := args[1].AsIntegerValue() & 0xFF
		return value.FromNumber(float64(hi<<8|lo), value.UWORD, pos)
	case "petscii":
		return foldPetscii(heap, args[0], pos)
	default:
		return value.Literal{}, fmt.Errorf("optimize: %q has no constant-folding rule", name)
	}
}

func foldPetscii(heap *value.Heap, arg value.Literal, pos value.Position) (value.Literal, error) {
	ch, ok := singleChar(heap, arg)
	if !ok {
		return value.Literal{}, fmt.Errorf("optimize: petscii() requires a single-character string argument")
	}
	return value.FromNumber(float64(PetsciiOf(ch)), value.UBYTE, pos)
}
