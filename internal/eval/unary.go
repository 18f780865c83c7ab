package eval

import "github.com/xyproto/c64c/internal/value"

// EvaluateUnary folds a prefix operator applied to a literal: +x = x; -x
// (signed numeric only — UBYTE/UWORD reject); ~x bitwise-invert (integer
// only); not x logical-not (numeric, result UBYTE 1/0).
func EvaluateUnary(op string, operand value.Literal) (value.Literal, error) {
	pos := operand.Position
	switch op {
	case "+":
		if err := requireNumeric(operand, "operand", pos); err != nil {
			return value.Literal{}, err
		}
		return operand, nil
	case "-":
		if !operand.Type.IsNumeric() {
			return value.Literal{}, errAt(pos, "operand is not numeric")
		}
		if operand.Type.IsUnsigned() {
			return value.Literal{}, errAt(pos, "unary - is not defined for unsigned type %s", operand.Type)
		}
		if operand.Type == value.FLOAT {
			lit, err := value.OptimalNumeric(-operand.AsNumericValue(), pos)
			if err != nil {
				return value.Literal{}, errAt(pos, "%v", err)
			}
			return lit, nil
		}
		lit, err := value.FromNumber(-operand.AsNumericValue(), operand.Type, pos)
		if err != nil {
			return value.Literal{}, errAt(pos, "overflow negating %s", operand.Type)
		}
		return lit, nil
	case "~":
		if !operand.Type.IsInteger() {
			return value.Literal{}, errAt(pos, "~ requires an integer operand")
		}
		inverted := ^operand.AsIntegerValue()
		if operand.Type.IsByte() {
			inverted &= 0xFF
		} else {
			inverted &= 0xFFFF
		}
		// Signed types read the masked bits back as two's complement.
		if !operand.Type.IsUnsigned() {
			if operand.Type.IsByte() && inverted > 0x7F {
				inverted -= 0x100
			} else if operand.Type.IsWord() && inverted > 0x7FFF {
				inverted -= 0x10000
			}
		}
		lit, err := value.FromNumber(float64(inverted), operand.Type, pos)
		if err != nil {
			return value.Literal{}, errAt(pos, "%v", err)
		}
		return lit, nil
	case "not":
		if err := requireNumeric(operand, "operand", pos); err != nil {
			return value.Literal{}, err
		}
		return value.FromBoolean(!operand.AsBooleanValue(), pos), nil
	default:
		return value.Literal{}, errAt(pos, "unknown unary operator %q", op)
	}
}
