package parser

import (
	"github.com/gmofishsauce/cc9/internal/ast"
	"github.com/gmofishsauce/cc9/internal/sema"
)

// constExpr parses a conditional-expression and evaluates it at parse
// time; used for enumerator values, array dimensions, case labels, and
// global initializers (spec.md §4.3, §4.4).
func (p *Parser) constExpr() int64 {
	node := p.conditional()
	return p.evalConst(node)
}

// evalConst is the pure recursive constant-expression evaluator: binary
// arithmetic, shifts, bitwise ops, comparisons, ternary, comma (right
// operand only), logical, unary !/~, sizeof, and integer literal.
// Anything else is a diagnostic (spec.md §4.3).
func (p *Parser) evalConst(n *ast.Node) int64 {
	switch n.Kind {
	case ast.Num:
		return n.Val
	case ast.Sizeof:
		sema.New(p.src).Type(n)
		return n.Val // visitSizeof rewrites n to a Num in place
	case ast.Add:
		return p.evalConst(n.Lhs) + p.evalConst(n.Rhs)
	case ast.Sub:
		return p.evalConst(n.Lhs) - p.evalConst(n.Rhs)
	case ast.Mul:
		return p.evalConst(n.Lhs) * p.evalConst(n.Rhs)
	case ast.Div:
		rhs := p.evalConst(n.Rhs)
		if rhs == 0 {
			p.errorfAt(n.Tok, "division by zero in constant expression")
		}
		return p.evalConst(n.Lhs) / rhs
	case ast.Mod:
		rhs := p.evalConst(n.Rhs)
		if rhs == 0 {
			p.errorfAt(n.Tok, "division by zero in constant expression")
		}
		return p.evalConst(n.Lhs) % rhs
	case ast.Shl:
		return p.evalConst(n.Lhs) << uint64(p.evalConst(n.Rhs))
	case ast.Shr:
		return p.evalConst(n.Lhs) >> uint64(p.evalConst(n.Rhs))
	case ast.BitAnd:
		return p.evalConst(n.Lhs) & p.evalConst(n.Rhs)
	case ast.BitOr:
		return p.evalConst(n.Lhs) | p.evalConst(n.Rhs)
	case ast.BitXor:
		return p.evalConst(n.Lhs) ^ p.evalConst(n.Rhs)
	case ast.BitNot:
		return ^p.evalConst(n.Lhs)
	case ast.Not:
		if p.evalConst(n.Lhs) == 0 {
			return 1
		}
		return 0
	case ast.Neg:
		return -p.evalConst(n.Lhs)
	case ast.Eq:
		return boolToInt(p.evalConst(n.Lhs) == p.evalConst(n.Rhs))
	case ast.Ne:
		return boolToInt(p.evalConst(n.Lhs) != p.evalConst(n.Rhs))
	case ast.Lt:
		return boolToInt(p.evalConst(n.Lhs) < p.evalConst(n.Rhs))
	case ast.Le:
		return boolToInt(p.evalConst(n.Lhs) <= p.evalConst(n.Rhs))
	case ast.LogAnd:
		return boolToInt(p.evalConst(n.Lhs) != 0 && p.evalConst(n.Rhs) != 0)
	case ast.LogOr:
		return boolToInt(p.evalConst(n.Lhs) != 0 || p.evalConst(n.Rhs) != 0)
	case ast.Cond:
		if p.evalConst(n.Cond) != 0 {
			return p.evalConst(n.Then)
		}
		return p.evalConst(n.Els)
	case ast.Comma:
		p.evalConst(n.Lhs)
		return p.evalConst(n.Rhs)
	default:
		p.errorfAt(n.Tok, "not a constant expression")
		return 0
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
