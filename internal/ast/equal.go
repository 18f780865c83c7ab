package ast

// exprsEqual reports structural equality of two expressions — used by the
// statement optimizer's redundant-store and self-assignment rules, which
// must compare targets/operands without evaluating them. This is a simple
// recursive structural comparison, not semantic equivalence (two
// differently-written but equal-valued expressions are not considered
// equal here).
func exprsEqual(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch ea := a.(type) {
	case *LiteralExpr:
		eb, ok := b.(*LiteralExpr)
		return ok && ea.Value.Equal(eb.Value)
	case *IdentExpr:
		eb, ok := b.(*IdentExpr)
		return ok && ea.Name == eb.Name
	case *PrefixExpr:
		eb, ok := b.(*PrefixExpr)
		return ok && ea.Op == eb.Op && exprsEqual(ea.Operand, eb.Operand)
	case *BinaryExpr:
		eb, ok := b.(*BinaryExpr)
		return ok && ea.Op == eb.Op && exprsEqual(ea.Left, eb.Left) && exprsEqual(ea.Right, eb.Right)
	case *CallExpr:
		eb, ok := b.(*CallExpr)
		if !ok || ea.Target != eb.Target || len(ea.Args) != len(eb.Args) {
			return false
		}
		for i := range ea.Args {
			if !exprsEqual(ea.Args[i], eb.Args[i]) {
				return false
			}
		}
		return true
	case *IndexExpr:
		eb, ok := b.(*IndexExpr)
		return ok && exprsEqual(ea.Array, eb.Array) && exprsEqual(ea.Index, eb.Index)
	case *AddressOfExpr:
		eb, ok := b.(*AddressOfExpr)
		return ok && ea.Name == eb.Name
	case *TypecastExpr:
		eb, ok := b.(*TypecastExpr)
		return ok && ea.Type == eb.Type && exprsEqual(ea.Value, eb.Value)
	case *RegisterExpr:
		eb, ok := b.(*RegisterExpr)
		return ok && ea.Register == eb.Register
	case *DirectMemoryReadExpr:
		eb, ok := b.(*DirectMemoryReadExpr)
		return ok && exprsEqual(ea.Addr, eb.Addr)
	case *RangeExpr:
		eb, ok := b.(*RangeExpr)
		return ok && exprsEqual(ea.From, eb.From) && exprsEqual(ea.To, eb.To) && exprsEqual(ea.Step, eb.Step)
	default:
		return false
	}
}

// ExprsEqual is the exported form of exprsEqual, used by the optimizer
// package to detect self-assignment (x = x) and other structural matches.
func ExprsEqual(a, b Expr) bool { return exprsEqual(a, b) }
