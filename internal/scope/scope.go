// Package scope implements component C: a lexically nested symbol table
// built once from the post-parse AST and queried read-only by the
// evaluator, optimizer, and checker. Names that optimizer rewrites
// introduce (the statement optimizer's synthesized loop labels) are not
// added to it.
package scope

import (
	"fmt"
	"strings"

	"github.com/xyproto/c64c/internal/ast"
)

// Scope is one lexical level: a block, subroutine, or anonymous scope body.
// Scopes form a tree rooted at the module scope; Parent is non-owning.
type Scope struct {
	Name   string // the scope's own name, "" for anonymous/module scopes
	Parent *Scope
	decls  map[string]ast.Node
	order  []string // declaration order, for "did you mean" suggestions
}

// NewScope creates a child scope of parent. parent may be nil for the
// module root scope.
func NewScope(name string, parent *Scope) *Scope {
	return &Scope{Name: name, Parent: parent, decls: make(map[string]ast.Node)}
}

// Define registers name in this scope. It is an error to redefine a name
// already present in the same scope (shadowing an outer scope is allowed).
func (s *Scope) Define(name string, decl ast.Node) error {
	if _, exists := s.decls[name]; exists {
		return fmt.Errorf("redefinition of %q in this scope", name)
	}
	s.decls[name] = decl
	s.order = append(s.order, name)
	return nil
}

// LookupLocal looks up name in this scope only, without walking to Parent.
func (s *Scope) LookupLocal(name string) (ast.Node, bool) {
	d, ok := s.decls[name]
	return d, ok
}

// Lookup looks up name in this scope, then each enclosing scope in turn.
func (s *Scope) Lookup(name string) (ast.Node, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if d, ok := cur.decls[name]; ok {
			return d, true
		}
	}
	return nil, false
}

// Names returns every name visible from this scope, in declaration order,
// innermost scope first — the candidate list for "did you mean"
// suggestions. No caller in this module builds such a suggestion.
func (s *Scope) Names() []string {
	var names []string
	for cur := s; cur != nil; cur = cur.Parent {
		names = append(names, cur.order...)
	}
	return names
}

// Namespace is the whole-module symbol table: one Scope per Block,
// Subroutine, and AnonymousScope, plus an index from each scope-owning node
// to its child Scope so dotted names (c64scr.print) can be resolved by
// descending into a named Block's scope.
type Namespace struct {
	Module    *Scope
	scopeOf   map[ast.Node]*Scope
}

// Build walks m and constructs its Namespace. It is the only place scopes
// are created; every later pass queries the result read-only (§5). The
// optimizer never calls Define, so a name one of its rewrites introduces
// is absent from the namespace.
func Build(m *ast.Module) (*Namespace, []error) {
	ns := &Namespace{
		Module:  NewScope("", nil),
		scopeOf: make(map[ast.Node]*Scope),
	}
	var errs []error
	collectInto(ns, ns.Module, m.Statements, &errs)
	return ns, errs
}

func collectInto(ns *Namespace, s *Scope, stmts []ast.Stmt, errs *[]error) {
	for _, stmt := range stmts {
		switch n := stmt.(type) {
		case *ast.VarDecl:
			if err := s.Define(n.Name, n); err != nil {
				*errs = append(*errs, fmt.Errorf("%s: %w", n.Pos(), err))
			}
		case *ast.Subroutine:
			if err := s.Define(n.Name, n); err != nil {
				*errs = append(*errs, fmt.Errorf("%s: %w", n.Pos(), err))
			}
			sub := NewScope(n.Name, s)
			for i := range n.Params {
				if err := sub.Define(n.Params[i].Name, &n.Params[i]); err != nil {
					*errs = append(*errs, fmt.Errorf("%s: %w", n.Pos(), err))
				}
			}
			ns.scopeOf[n] = sub
			collectInto(ns, sub, n.Statements, errs)
		case *ast.Block:
			if err := s.Define(n.Name, n); err != nil {
				*errs = append(*errs, fmt.Errorf("%s: %w", n.Pos(), err))
			}
			blockScope := NewScope(n.Name, s)
			ns.scopeOf[n] = blockScope
			collectInto(ns, blockScope, n.Statements, errs)
		case *ast.AnonymousScope:
			anonScope := NewScope("", s)
			ns.scopeOf[n] = anonScope
			collectInto(ns, anonScope, n.Statements, errs)
		case *ast.Label:
			if err := s.Define(n.Name, n); err != nil {
				*errs = append(*errs, fmt.Errorf("%s: %w", n.Pos(), err))
			}
		case *ast.IfStatement:
			collectInto(ns, s, n.True, errs)
			collectInto(ns, s, n.False, errs)
		case *ast.ForLoop:
			collectInto(ns, s, n.Body, errs)
		case *ast.WhileLoop:
			collectInto(ns, s, n.Body, errs)
		case *ast.RepeatLoop:
			collectInto(ns, s, n.Body, errs)
		}
	}
}

// ScopeOf returns the child scope owned by a Block, Subroutine, or
// AnonymousScope node (the scope containing that node's own statements).
func (ns *Namespace) ScopeOf(n ast.Node) (*Scope, bool) {
	sc, ok := ns.scopeOf[n]
	return sc, ok
}

// Resolve looks up a possibly-dotted name starting from scope. A dotted
// name's first segment is resolved via the normal lexical chain; if that
// resolves to a Block, each subsequent segment is resolved as a local
// lookup within that block's own scope (§6: "Identifiers may be dotted
// (c64scr.print); resolution is lexical up the scope chain").
func (ns *Namespace) Resolve(scope *Scope, dotted string) (ast.Node, bool) {
	parts := strings.Split(dotted, ".")
	decl, ok := scope.Lookup(parts[0])
	if !ok {
		return nil, false
	}
	for _, part := range parts[1:] {
		blockScope, ok := ns.scopeOf[decl]
		if !ok {
			return nil, false
		}
		decl, ok = blockScope.LookupLocal(part)
		if !ok {
			return nil, false
		}
	}
	return decl, true
}
