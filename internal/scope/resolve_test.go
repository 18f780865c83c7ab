package scope

import (
	"testing"

	"github.com/xyproto/c64c/internal/ast"
	"github.com/xyproto/c64c/internal/value"
)

func TestBindAllResolvesIdentifierToVarDecl(t *testing.T) {
	decl := ast.NewVarDecl(ast.VAR, value.UBYTE, "x", value.Position{})
	ref := ast.NewIdentExpr("x", value.Position{})
	assign := ast.NewAssignment(nil, "", ref, value.Position{})
	target := ast.NewIdentTarget("x", value.Position{})
	assign.Targets = []ast.AssignTarget{target}

	sub := ast.NewSubroutine("start", value.Position{})
	sub.Statements = []ast.Stmt{decl, assign}
	main := ast.NewBlock("main", value.Position{})
	main.Statements = []ast.Stmt{sub}
	m := ast.NewModule()
	m.Statements = []ast.Stmt{main}

	ns, errs := Build(m)
	if len(errs) != 0 {
		t.Fatalf("unexpected build errors: %v", errs)
	}
	if errs := ns.BindAll(m); len(errs) != 0 {
		t.Fatalf("unexpected bind errors: %v", errs)
	}

	if ref.Decl != decl {
		t.Errorf("IdentExpr.Decl = %v, want the 'x' VarDecl", ref.Decl)
	}
	if target.Decl != decl {
		t.Errorf("IdentTarget.Decl = %v, want the 'x' VarDecl", target.Decl)
	}
}

func TestBindAllResolvesParamByItsOwnType(t *testing.T) {
	sub := ast.NewSubroutine("add", value.Position{})
	sub.Params = []ast.Param{{Name: "n", Type: value.WORD}}
	ref := ast.NewIdentExpr("n", value.Position{})
	sub.Statements = []ast.Stmt{ast.NewReturn([]ast.Expr{ref}, value.Position{})}
	sub.ReturnType = []value.DataType{value.WORD}
	main := ast.NewBlock("main", value.Position{})
	main.Statements = []ast.Stmt{sub}
	m := ast.NewModule()
	m.Statements = []ast.Stmt{main}

	ns, errs := Build(m)
	if len(errs) != 0 {
		t.Fatalf("unexpected build errors: %v", errs)
	}
	if errs := ns.BindAll(m); len(errs) != 0 {
		t.Fatalf("unexpected bind errors: %v", errs)
	}

	p, ok := ref.Decl.(*ast.Param)
	if !ok {
		t.Fatalf("IdentExpr.Decl = %T, want *ast.Param", ref.Decl)
	}
	if p.Type != value.WORD {
		t.Errorf("resolved param type = %s, want WORD", p.Type)
	}
}

func TestBindAllReportsUndefinedIdentifier(t *testing.T) {
	ref := ast.NewIdentExpr("ghost", value.Position{})
	assign := ast.NewAssignment([]ast.AssignTarget{ast.NewIdentTarget("whatever", value.Position{})}, "", ref, value.Position{})
	sub := ast.NewSubroutine("start", value.Position{})
	decl := ast.NewVarDecl(ast.VAR, value.UBYTE, "whatever", value.Position{})
	sub.Statements = []ast.Stmt{decl, assign}
	main := ast.NewBlock("main", value.Position{})
	main.Statements = []ast.Stmt{sub}
	m := ast.NewModule()
	m.Statements = []ast.Stmt{main}

	ns, errs := Build(m)
	if len(errs) != 0 {
		t.Fatalf("unexpected build errors: %v", errs)
	}
	if errs := ns.BindAll(m); len(errs) == 0 {
		t.Error("expected an error resolving 'ghost'")
	}
}
