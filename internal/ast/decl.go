package ast

import "github.com/xyproto/c64c/internal/value"

// VarKind distinguishes the three declaration forms.
type VarKind int

const (
	VAR VarKind = iota
	CONST
	MEMORY
)

func (k VarKind) String() string {
	switch k {
	case CONST:
		return "const"
	case MEMORY:
		return "memory"
	default:
		return "var"
	}
}

// VarDecl declares a variable, constant, or memory-mapped location.
type VarDecl struct {
	base
	Kind      VarKind
	DataType  value.DataType
	Name      string
	Value     Expr // initializer; may be nil (checker injects a default)
	ArraySize Expr // element count for array types; nil for scalars
	ZeroPage  bool // @zp flag; consumed by the IR emitter's allocation pass
	Address   *int // fixed address for MEMORY declarations
}

func NewVarDecl(kind VarKind, dt value.DataType, name string, pos value.Position) *VarDecl {
	return &VarDecl{base: base{position: pos}, Kind: kind, DataType: dt, Name: name}
}
func (d *VarDecl) stmtNode() {}

// Param is one parameter of a user-defined (non-asm) subroutine. It
// implements Node (with a zero position and no parent) so the namespace can
// register a parameter name against its own &Subroutine.Params[i] rather
// than against the owning Subroutine, which would lose the parameter's
// individual type.
type Param struct {
	Name string
	Type value.DataType
}

func (p *Param) Pos() value.Position { return value.Position{} }
func (p *Param) Parent() Node        { return nil }
func (p *Param) setParent(Node)      {}

// RegisterSpec binds an asm subroutine parameter or return value to a
// hardware register or status flag.
type RegisterSpec struct {
	ParamIndex int // index into Subroutine.Params, or -1 for a return value
	Register   string
}

// Subroutine is a named, callable unit. Nested subroutines are valid only
// inside a Block or another Subroutine (§4.G "Scope").
type Subroutine struct {
	base
	Name       string
	Params     []Param
	ReturnType []value.DataType
	Statements []Stmt

	IsAsmSubroutine      bool
	AsmAddress           *int
	AsmParamRegisters    []RegisterSpec
	AsmReturnRegisters   []RegisterSpec
	AsmClobbers          []string
}

func NewSubroutine(name string, pos value.Position) *Subroutine {
	return &Subroutine{base: base{position: pos}, Name: name}
}
func (s *Subroutine) stmtNode() {}

// Block is both a statement container and a lexical name scope.
type Block struct {
	base
	Name        string
	Address     *int
	Statements  []Stmt
	ForceOutput bool
}

func NewBlock(name string, pos value.Position) *Block {
	return &Block{base: base{position: pos}, Name: name}
}
func (b *Block) stmtNode() {}

// Module is the root of the tree: the set of top-level blocks, directives,
// and (rarely) top-level declarations produced by the parser.
type Module struct {
	Statements []Stmt
}

func NewModule() *Module {
	return &Module{}
}

// Pos/Parent/setParent for Module: it is always the tree root, so Parent is
// always nil and setParent is a no-op guard against misuse.
func (m *Module) Pos() value.Position { return value.Position{} }
func (m *Module) Parent() Node        { return nil }
func (m *Module) setParent(Node)      {}
