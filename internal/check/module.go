package check

import (
	"github.com/xyproto/c64c/internal/ast"
	"github.com/xyproto/c64c/internal/diag"
)

var onceModuleDirectives = map[string]bool{
	"%output": true, "%launcher": true, "%zeropage": true, "%address": true,
}

// checkModuleStructure enforces §4.G "Module structure": exactly one main
// block with a parameterless, no-return start subroutine, and at most one
// of each cardinality-limited module directive.
func (c *Checker) checkModuleStructure(m *ast.Module) {
	seen := make(map[string]int)
	var mainBlock *ast.Block
	for _, stmt := range m.Statements {
		switch n := stmt.(type) {
		case *ast.Block:
			if n.Name == "main" {
				c.seenMain++
				mainBlock = n
			}
		case *ast.Directive:
			if onceModuleDirectives[n.Name] {
				seen[n.Name]++
				if seen[n.Name] > 1 {
					c.errorf(diag.CategorySyntax, n.Pos(), "directive %s may appear at most once per module", n.Name)
				}
			}
			if n.Name == "%option" {
				for _, a := range n.Args {
					if a == "enable_floats" {
						c.floatsEnabled = true
					}
				}
			}
		}
	}
	switch c.seenMain {
	case 0:
		c.errorf(diag.CategorySyntax, m.Pos(), "module must contain exactly one 'main' block")
	case 1:
		c.checkMainBlock(mainBlock)
	default:
		c.errorf(diag.CategorySyntax, mainBlock.Pos(), "module contains %d 'main' blocks, want exactly one", c.seenMain)
	}
}

// checkMainBlock verifies main contains a parameterless, no-return start
// subroutine and that its top-level contents are restricted to the forms
// §4.G allows: scopes, directives, labels, declarations, inline-asm, and
// initialization assignments.
func (c *Checker) checkMainBlock(b *ast.Block) {
	var start *ast.Subroutine
	for _, stmt := range b.Statements {
		switch n := stmt.(type) {
		case *ast.Subroutine:
			if n.Name == "start" {
				start = n
			}
		case *ast.VarDecl, *ast.Directive, *ast.Label, *ast.InlineAssembly,
			*ast.Block, *ast.AnonymousScope:
		case *ast.Assignment:
		default:
			c.errorf(diag.CategorySyntax, n.Pos(),
				"main block may only contain scopes, directives, labels, declarations, inline assembly, and initialization assignments")
		}
	}
	if start == nil {
		c.errorf(diag.CategorySyntax, b.Pos(), "main block must contain a 'start' subroutine")
		return
	}
	if len(start.Params) != 0 {
		c.errorf(diag.CategorySyntax, start.Pos(), "start subroutine must be parameterless")
	}
	if len(start.ReturnType) != 0 {
		c.errorf(diag.CategorySyntax, start.Pos(), "start subroutine must not return a value")
	}
}

// checkBlockContents applies the irq entrypoint rule: if a block contains a
// subroutine named irq, it must be parameterless and no-return.
func (c *Checker) checkBlockContents(b *ast.Block) {
	for _, stmt := range b.Statements {
		sub, ok := stmt.(*ast.Subroutine)
		if !ok || sub.Name != "irq" {
			continue
		}
		c.seenIRQ++
		if len(sub.Params) != 0 {
			c.errorf(diag.CategorySyntax, sub.Pos(), "irq subroutine must be parameterless")
		}
		if len(sub.ReturnType) != 0 {
			c.errorf(diag.CategorySyntax, sub.Pos(), "irq subroutine must not return a value")
		}
	}
}

var validOutputs = map[string]bool{"raw": true, "prg": true}
var validLaunchers = map[string]bool{"basic": true, "none": true}
var validZeropagePolicies = map[string]bool{"basicsafe": true, "floatsafe": true, "kernalsafe": true, "full": true}

// checkDirective validates a %-prefixed directive's arguments per the
// closed vocabularies §4.G names. container is the directive's enclosing
// Block or Module, used by the self-import check.
func (c *Checker) checkDirective(container ast.Node, d *ast.Directive) {
	switch d.Name {
	case "%output":
		if len(d.Args) != 1 || !validOutputs[d.Args[0]] {
			c.errorf(diag.CategorySyntax, d.Pos(), "%%output must be one of raw, prg")
		}
	case "%launcher":
		if len(d.Args) != 1 || !validLaunchers[d.Args[0]] {
			c.errorf(diag.CategorySyntax, d.Pos(), "%%launcher must be one of basic, none")
		}
	case "%zeropage":
		if len(d.Args) != 1 || !validZeropagePolicies[d.Args[0]] {
			c.errorf(diag.CategorySyntax, d.Pos(), "%%zeropage must be one of basicsafe, floatsafe, kernalsafe, full")
		}
	case "%zpreserved":
		if len(d.Args) != 2 {
			c.errorf(diag.CategorySyntax, d.Pos(), "%%zpreserved requires two integer addresses")
		}
	case "%import":
		if len(d.Args) != 1 {
			c.errorf(diag.CategorySyntax, d.Pos(), "%%import requires exactly one module name")
			return
		}
		if blk, ok := container.(*ast.Block); ok && d.Args[0] == blk.Name {
			c.errorf(diag.CategorySyntax, d.Pos(), "module cannot import itself")
		}
	case "%asminclude", "%asmbinary":
		if len(d.Args) < 1 {
			c.errorf(diag.CategorySyntax, d.Pos(), "%s requires a file path argument", d.Name)
			return
		}
		if err := c.checkIncludeFileExists(d.Args[0]); err != nil {
			c.errorf(diag.CategorySyntax, d.Pos(), "%s: %v", d.Name, err)
		}
	}
}
