package ast

import "github.com/xyproto/c64c/internal/value"

// LiteralExpr wraps a constant value.Literal in expression position.
type LiteralExpr struct {
	base
	Value value.Literal
}

func NewLiteralExpr(v value.Literal) *LiteralExpr {
	return &LiteralExpr{base: base{position: v.Position}, Value: v}
}
func (e *LiteralExpr) exprNode() {}

// IdentExpr references a name that must be resolved against the scope
// chain. Decl is populated by name resolution (component C); it is nil
// until resolved.
type IdentExpr struct {
	base
	Name string
	Decl Node // resolved declaration (e.g. *VarDecl), or nil pre-resolution
}

func NewIdentExpr(name string, pos value.Position) *IdentExpr {
	return &IdentExpr{base: base{position: pos}, Name: name}
}
func (e *IdentExpr) exprNode() {}

// PrefixExpr is a unary operator applied to an expression: + - ~ not.
type PrefixExpr struct {
	base
	Op      string
	Operand Expr
}

func NewPrefixExpr(op string, operand Expr, pos value.Position) *PrefixExpr {
	return &PrefixExpr{base: base{position: pos}, Op: op, Operand: operand}
}
func (e *PrefixExpr) exprNode() {}

// BinaryExpr is a binary operator applied to two expressions.
type BinaryExpr struct {
	base
	Left  Expr
	Op    string
	Right Expr
}

func NewBinaryExpr(left Expr, op string, right Expr, pos value.Position) *BinaryExpr {
	return &BinaryExpr{base: base{position: pos}, Left: left, Op: op, Right: right}
}
func (e *BinaryExpr) exprNode() {}

// CallExpr calls a built-in or user subroutine in expression position.
// Target is the (possibly dotted) callee name; resolution fills Decl.
type CallExpr struct {
	base
	Target string
	Args   []Expr
	Decl   Node // resolved *Subroutine, or nil for an unresolved/built-in call
}

func NewCallExpr(target string, args []Expr, pos value.Position) *CallExpr {
	return &CallExpr{base: base{position: pos}, Target: target, Args: args}
}
func (e *CallExpr) exprNode() {}

// IndexExpr indexes into an iterable-typed identifier.
type IndexExpr struct {
	base
	Array Expr
	Index Expr
}

func NewIndexExpr(arr, idx Expr, pos value.Position) *IndexExpr {
	return &IndexExpr{base: base{position: pos}, Array: arr, Index: idx}
}
func (e *IndexExpr) exprNode() {}

// AddressOfExpr takes the address of a declared name. ScopedName is the
// fully-qualified name, set before IR emission per the AST invariant.
type AddressOfExpr struct {
	base
	Name       string
	ScopedName string
}

func NewAddressOfExpr(name string, pos value.Position) *AddressOfExpr {
	return &AddressOfExpr{base: base{position: pos}, Name: name}
}
func (e *AddressOfExpr) exprNode() {}

// TypecastExpr casts Value to Type. Type must not be an iterable type.
type TypecastExpr struct {
	base
	Value Expr
	Type  value.DataType
}

func NewTypecastExpr(v Expr, t value.DataType, pos value.Position) *TypecastExpr {
	return &TypecastExpr{base: base{position: pos}, Value: v, Type: t}
}
func (e *TypecastExpr) exprNode() {}

// RangeExpr is a from..to[:step] range, materialized to an array/string
// literal by the expression optimizer when its endpoints are constant.
type RangeExpr struct {
	base
	From Expr
	To   Expr
	Step Expr // nil means step 1 (ascending) implied by From/To order
}

func NewRangeExpr(from, to, step Expr, pos value.Position) *RangeExpr {
	return &RangeExpr{base: base{position: pos}, From: from, To: to, Step: step}
}
func (e *RangeExpr) exprNode() {}

// RegisterExpr reads a hardware register (asm calling-convention value).
type RegisterExpr struct {
	base
	Register string
}

func NewRegisterExpr(reg string, pos value.Position) *RegisterExpr {
	return &RegisterExpr{base: base{position: pos}, Register: reg}
}
func (e *RegisterExpr) exprNode() {}

// DirectMemoryReadExpr reads the byte/word at a computed memory address.
type DirectMemoryReadExpr struct {
	base
	Addr Expr
}

func NewDirectMemoryReadExpr(addr Expr, pos value.Position) *DirectMemoryReadExpr {
	return &DirectMemoryReadExpr{base: base{position: pos}, Addr: addr}
}
func (e *DirectMemoryReadExpr) exprNode() {}
