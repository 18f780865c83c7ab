package value

// DataType is the closed set of primitive types the language supports.
// Grouping membership (Byte/Word/Float/String/Array and the derived
// Numeric/Integer/Iterable predicates) drives most of the checker's rule
// table, so it is exposed as methods rather than duplicated ad hoc.
type DataType int

const (
	UNDEFINED DataType = iota
	UBYTE
	BYTE
	UWORD
	WORD
	FLOAT
	STR
	STR_S
	ARRAY_UB
	ARRAY_B
	ARRAY_UW
	ARRAY_W
	ARRAY_F
)

func (t DataType) String() string {
	switch t {
	case UBYTE:
		return "ubyte"
	case BYTE:
		return "byte"
	case UWORD:
		return "uword"
	case WORD:
		return "word"
	case FLOAT:
		return "float"
	case STR:
		return "str"
	case STR_S:
		return "str_s"
	case ARRAY_UB:
		return "array(ubyte)"
	case ARRAY_B:
		return "array(byte)"
	case ARRAY_UW:
		return "array(uword)"
	case ARRAY_W:
		return "array(word)"
	case ARRAY_F:
		return "array(float)"
	default:
		return "undefined"
	}
}

// IsByte reports membership in the Byte group: UBYTE, BYTE.
func (t DataType) IsByte() bool { return t == UBYTE || t == BYTE }

// IsWord reports membership in the Word group: UWORD, WORD.
func (t DataType) IsWord() bool { return t == UWORD || t == WORD }

// IsFloat reports membership in the Float group: FLOAT.
func (t DataType) IsFloat() bool { return t == FLOAT }

// IsString reports membership in the String group: STR, STR_S.
func (t DataType) IsString() bool { return t == STR || t == STR_S }

// IsArray reports membership in the Array group.
func (t DataType) IsArray() bool {
	switch t {
	case ARRAY_UB, ARRAY_B, ARRAY_UW, ARRAY_W, ARRAY_F:
		return true
	default:
		return false
	}
}

// IsInteger reports membership in Integer = Byte ∪ Word.
func (t DataType) IsInteger() bool { return t.IsByte() || t.IsWord() }

// IsNumeric reports membership in Numeric = Byte ∪ Word ∪ {FLOAT}.
func (t DataType) IsNumeric() bool { return t.IsInteger() || t.IsFloat() }

// IsIterable reports membership in Iterable = String ∪ Array.
func (t DataType) IsIterable() bool { return t.IsString() || t.IsArray() }

// IsUnsigned reports whether an integer type is unsigned. Undefined for
// non-integer types.
func (t DataType) IsUnsigned() bool { return t == UBYTE || t == UWORD }

// IsSigned reports whether an integer type is signed. Undefined for
// non-integer types.
func (t DataType) IsSigned() bool { return t == BYTE || t == WORD }

// ElementType returns the element DataType of an Array type, or UNDEFINED if
// t is not an array.
func (t DataType) ElementType() DataType {
	switch t {
	case ARRAY_UB:
		return UBYTE
	case ARRAY_B:
		return BYTE
	case ARRAY_UW:
		return UWORD
	case ARRAY_W:
		return WORD
	case ARRAY_F:
		return FLOAT
	default:
		return UNDEFINED
	}
}

// ArrayOf returns the Array type whose elements have type t, or UNDEFINED if
// t has no corresponding array type.
func ArrayOf(elem DataType) DataType {
	switch elem {
	case UBYTE:
		return ARRAY_UB
	case BYTE:
		return ARRAY_B
	case UWORD:
		return ARRAY_UW
	case WORD:
		return ARRAY_W
	case FLOAT:
		return ARRAY_F
	default:
		return UNDEFINED
	}
}

// Range bounds for the integer types, inclusive.
const (
	UByteMin, UByteMax = 0, 255
	ByteMin, ByteMax   = -128, 127
	UWordMin, UWordMax = 0, 65535
	WordMin, WordMax   = -32768, 32767
)

// FloatMax is the largest representable magnitude of the 5-byte MFLPT float
// format used by the target platform.
const FloatMax = 1.7014118345e38

// MaxArrayLen returns the inclusive maximum element count for an array type.
func MaxArrayLen(t DataType) int {
	switch t {
	case ARRAY_UB, ARRAY_B:
		return 256
	case ARRAY_UW, ARRAY_W:
		return 128
	case ARRAY_F:
		return 51
	default:
		return 0
	}
}

// MaxStringLen is the maximum encodable length of a STR or STR_S literal.
const MaxStringLen = 255

// InIntRange reports whether n fits within t's range. t must be an integer
// type.
func InIntRange(t DataType, n int64) bool {
	switch t {
	case UBYTE:
		return n >= UByteMin && n <= UByteMax
	case BYTE:
		return n >= ByteMin && n <= ByteMax
	case UWORD:
		return n >= UWordMin && n <= UWordMax
	case WORD:
		return n >= WordMin && n <= WordMax
	default:
		return false
	}
}
