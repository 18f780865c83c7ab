package scope

import (
	"testing"

	"github.com/xyproto/c64c/internal/ast"
	"github.com/xyproto/c64c/internal/value"
)

func buildSample(t *testing.T) (*ast.Module, *Namespace) {
	decl := ast.NewVarDecl(ast.CONST, value.UBYTE, "limit", value.Position{})
	sub := ast.NewSubroutine("start", value.Position{})
	main := ast.NewBlock("main", value.Position{})
	main.Statements = []ast.Stmt{decl, sub}
	m := ast.NewModule()
	m.Statements = []ast.Stmt{main}

	ns, errs := Build(m)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors building namespace: %v", errs)
	}
	return m, ns
}

func TestResolveDottedName(t *testing.T) {
	_, ns := buildSample(t)

	blockScope, ok := ns.ScopeOf(mustBlock(t, ns))
	if !ok {
		t.Fatal("expected a scope for the main block")
	}
	if _, ok := blockScope.LookupLocal("limit"); !ok {
		t.Fatal("expected 'limit' defined in main's scope")
	}

	decl, ok := ns.Resolve(ns.Module, "main.limit")
	if !ok {
		t.Fatal("expected main.limit to resolve")
	}
	vd, ok := decl.(*ast.VarDecl)
	if !ok || vd.Name != "limit" {
		t.Errorf("resolved node is not the 'limit' VarDecl: %v", decl)
	}
}

func mustBlock(t *testing.T, ns *Namespace) ast.Node {
	decl, ok := ns.Module.LookupLocal("main")
	if !ok {
		t.Fatal("expected 'main' block registered in module scope")
	}
	return decl
}

func TestRedefinitionIsAnError(t *testing.T) {
	a := ast.NewVarDecl(ast.VAR, value.UBYTE, "x", value.Position{})
	b := ast.NewVarDecl(ast.VAR, value.UBYTE, "x", value.Position{})
	main := ast.NewBlock("main", value.Position{})
	main.Statements = []ast.Stmt{a, b}
	m := ast.NewModule()
	m.Statements = []ast.Stmt{main}

	_, errs := Build(m)
	if len(errs) == 0 {
		t.Fatal("expected a redefinition error")
	}
}
