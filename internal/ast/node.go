// Package ast defines the AST node variants described in spec component B:
// a tagged-interface tree (statements, expressions, declarations, scopes)
// with non-owning parent back-references, plus the bottom-up rewrite
// traversal that keeps them consistent after a structural edit.
package ast

import "github.com/xyproto/c64c/internal/value"

// Node is implemented by every AST entity. Parent is a weak, non-owning
// back-reference maintained by Relink; it is nil until the first relink
// pass runs.
type Node interface {
	Pos() value.Position
	Parent() Node
	setParent(Node)
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// base is embedded by every concrete node to provide Pos/Parent bookkeeping
// without repeating it on each type, per DESIGN NOTES §9 (parent links are
// non-owning handles, not maintained incrementally — only by Relink).
type base struct {
	position value.Position
	parent   Node
}

func (b *base) Pos() value.Position { return b.position }
func (b *base) Parent() Node        { return b.parent }
func (b *base) setParent(p Node)    { b.parent = p }
