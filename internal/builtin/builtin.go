// Package builtin is the external built-in function table described in
// §6: each entry names a function, its parameter arity and per-parameter
// allowed datatype set, and a purity flag the constant folder consults
// before folding a call with all-literal arguments.
package builtin

import "github.com/xyproto/c64c/internal/value"

// Param describes one parameter slot's accepted datatypes.
type Param struct {
	Allowed []value.DataType
}

// Accepts reports whether t is one of the parameter's allowed types.
func (p Param) Accepts(t value.DataType) bool {
	for _, a := range p.Allowed {
		if a == t {
			return true
		}
	}
	return false
}

// Func is one built-in function's signature.
type Func struct {
	Name       string
	Params     []Param
	ReturnType value.DataType // value.UNDEFINED for a void (statement-only) builtin
	Pure       bool           // consulted by the expression optimizer (§4.E rule 6)
}

var numeric = []value.DataType{value.UBYTE, value.BYTE, value.UWORD, value.WORD, value.FLOAT}
var integer = []value.DataType{value.UBYTE, value.BYTE, value.UWORD, value.WORD}
var anyByte = []value.DataType{value.UBYTE, value.BYTE}
var anyWord = []value.DataType{value.UWORD, value.WORD}

// table is the closed set of built-ins this core knows about. A real driver
// assembles the production table from the target's runtime library; this
// one supplies the functions §4 and §8 name directly (lsl/lsr, msb/lsb,
// mkword, swap, petscii, and the CHROUT/print pair used by the print-
// literal lowering rule).
var table = map[string]Func{
	"abs":  {Name: "abs", Params: []Param{{numeric}}, ReturnType: value.FLOAT, Pure: true},
	"min":  {Name: "min", Params: []Param{{numeric}, {numeric}}, ReturnType: value.FLOAT, Pure: true},
	"max":  {Name: "max", Params: []Param{{numeric}, {numeric}}, ReturnType: value.FLOAT, Pure: true},
	"msb":  {Name: "msb", Params: []Param{{anyWord}}, ReturnType: value.UBYTE, Pure: true},
	"lsb":  {Name: "lsb", Params: []Param{{anyWord}}, ReturnType: value.UBYTE, Pure: true},
	"mkword": {
		Name:       "mkword",
		Params:     []Param{{anyByte}, {anyByte}},
		ReturnType: value.UWORD,
		Pure:       true,
	},
	"petscii": {Name: "petscii", Params: []Param{{[]value.DataType{value.STR, value.STR_S}}}, ReturnType: value.UBYTE, Pure: true},
	"swap": {
		Name:       "swap",
		Params:     []Param{{numeric}, {numeric}},
		ReturnType: value.UNDEFINED,
		Pure:       false,
	},
	"lsl": {Name: "lsl", Params: []Param{{integer}}, ReturnType: value.UNDEFINED, Pure: false},
	"lsr": {Name: "lsr", Params: []Param{{integer}}, ReturnType: value.UNDEFINED, Pure: false},
	"c64.CHROUT": {
		Name:       "c64.CHROUT",
		Params:     []Param{{anyByte}},
		ReturnType: value.UNDEFINED,
		Pure:       false,
	},
	"c64scr.print": {
		Name:       "c64scr.print",
		Params:     []Param{{[]value.DataType{value.STR, value.STR_S}}},
		ReturnType: value.UNDEFINED,
		Pure:       false,
	},
}

// Lookup returns the built-in named name, if any.
func Lookup(name string) (Func, bool) {
	f, ok := table[name]
	return f, ok
}

// IsPure reports whether name is a known, pure built-in. Unknown built-ins
// are non-pure per §4.E rule 6.
func IsPure(name string) bool {
	f, ok := table[name]
	return ok && f.Pure
}
