package ast

import "github.com/xyproto/c64c/internal/value"

// AssignTarget is implemented by the four kinds of assignable location:
// register, identifier, indexed array element, or memory address.
type AssignTarget interface {
	Node
	assignTargetNode()
}

// TargetsEqual reports whether two assign targets are structurally equal —
// used by the statement optimizer's redundant-store rule, which only fires
// when two consecutive assignment targets match exactly.
func TargetsEqual(a, b AssignTarget) bool {
	switch ta := a.(type) {
	case *RegisterTarget:
		tb, ok := b.(*RegisterTarget)
		return ok && ta.Register == tb.Register
	case *IdentTarget:
		tb, ok := b.(*IdentTarget)
		return ok && ta.Name == tb.Name
	case *IndexTarget:
		tb, ok := b.(*IndexTarget)
		return ok && exprsEqual(ta.Array, tb.Array) && exprsEqual(ta.Index, tb.Index)
	case *MemoryTarget:
		tb, ok := b.(*MemoryTarget)
		return ok && exprsEqual(ta.Addr, tb.Addr)
	default:
		return false
	}
}

// RegisterTarget assigns to a hardware register (asm calling convention).
type RegisterTarget struct {
	base
	Register string
}

func NewRegisterTarget(reg string, pos value.Position) *RegisterTarget {
	return &RegisterTarget{base: base{position: pos}, Register: reg}
}
func (t *RegisterTarget) assignTargetNode() {}

// IdentTarget assigns to a plain variable name.
type IdentTarget struct {
	base
	Name string
	Decl Node
}

func NewIdentTarget(name string, pos value.Position) *IdentTarget {
	return &IdentTarget{base: base{position: pos}, Name: name}
}
func (t *IdentTarget) assignTargetNode() {}

// IndexTarget assigns to a single element of an array-typed variable.
type IndexTarget struct {
	base
	Array Expr
	Index Expr
}

func NewIndexTarget(arr, idx Expr, pos value.Position) *IndexTarget {
	return &IndexTarget{base: base{position: pos}, Array: arr, Index: idx}
}
func (t *IndexTarget) assignTargetNode() {}

// MemoryTarget assigns to the byte/word at a computed memory address.
type MemoryTarget struct {
	base
	Addr Expr
}

func NewMemoryTarget(addr Expr, pos value.Position) *MemoryTarget {
	return &MemoryTarget{base: base{position: pos}, Addr: addr}
}
func (t *MemoryTarget) assignTargetNode() {}
