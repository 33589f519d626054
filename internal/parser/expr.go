package parser

import (
	"github.com/gmofishsauce/cc9/internal/ast"
	"github.com/gmofishsauce/cc9/internal/token"
)

func newNode(kind ast.Kind, tok *token.Token) *ast.Node {
	return &ast.Node{Kind: kind, Tok: tok}
}

func newBinary(kind ast.Kind, lhs, rhs *ast.Node, tok *token.Token) *ast.Node {
	return &ast.Node{Kind: kind, Lhs: lhs, Rhs: rhs, Tok: tok}
}

func newUnary(kind ast.Kind, operand *ast.Node, tok *token.Token) *ast.Node {
	return &ast.Node{Kind: kind, Lhs: operand, Tok: tok}
}

func newNum(val int64, tok *token.Token) *ast.Node {
	return &ast.Node{Kind: ast.Num, Val: val, Tok: tok}
}

// expr = assign ("," assign)*
func (p *Parser) expr() *ast.Node {
	node := p.assign()
	for p.consume(",") {
		tok := p.tok
		node = newBinary(ast.Comma, node, p.assign(), tok)
	}
	return node
}

// assign = conditional (assign-op assign)?
func (p *Parser) assign() *ast.Node {
	node := p.conditional()

	if tok := p.tok; p.consume("=") {
		return newBinary(ast.Assign, node, p.assign(), tok)
	}
	compound := map[string]ast.Kind{
		"+=": ast.AddAssign, "-=": ast.SubAssign, "*=": ast.MulAssign,
		"/=": ast.DivAssign, "<<=": ast.ShlAssign, ">>=": ast.ShrAssign,
	}
	for op, kind := range compound {
		if tok := p.tok; p.consume(op) {
			return newBinary(kind, node, p.assign(), tok)
		}
	}
	return node
}

// conditional = logor ("?" expr ":" conditional)?
func (p *Parser) conditional() *ast.Node {
	node := p.logOr()
	tok := p.tok
	if !p.consume("?") {
		return node
	}
	n := &ast.Node{Kind: ast.Cond, Tok: tok, Cond: node}
	n.Then = p.expr()
	p.expect(":")
	n.Els = p.conditional()
	return n
}

func (p *Parser) logOr() *ast.Node {
	node := p.logAnd()
	for {
		tok := p.tok
		if !p.consume("||") {
			return node
		}
		node = newBinary(ast.LogOr, node, p.logAnd(), tok)
	}
}

func (p *Parser) logAnd() *ast.Node {
	node := p.bitOr()
	for {
		tok := p.tok
		if !p.consume("&&") {
			return node
		}
		node = newBinary(ast.LogAnd, node, p.bitOr(), tok)
	}
}

func (p *Parser) bitOr() *ast.Node {
	node := p.bitXor()
	for {
		tok := p.tok
		if !p.consume("|") {
			return node
		}
		node = newBinary(ast.BitOr, node, p.bitXor(), tok)
	}
}

func (p *Parser) bitXor() *ast.Node {
	node := p.bitAnd()
	for {
		tok := p.tok
		if !p.consume("^") {
			return node
		}
		node = newBinary(ast.BitXor, node, p.bitAnd(), tok)
	}
}

func (p *Parser) bitAnd() *ast.Node {
	node := p.equality()
	for {
		tok := p.tok
		if !p.consume("&") {
			return node
		}
		node = newBinary(ast.BitAnd, node, p.equality(), tok)
	}
}

// equality = relational (("==" | "!=") relational)*
func (p *Parser) equality() *ast.Node {
	node := p.relational()
	for {
		tok := p.tok
		switch {
		case p.consume("=="):
			node = newBinary(ast.Eq, node, p.relational(), tok)
		case p.consume("!="):
			node = newBinary(ast.Ne, node, p.relational(), tok)
		default:
			return node
		}
	}
}

// relational = shift (("<" | "<=" | ">" | ">=") shift)*
func (p *Parser) relational() *ast.Node {
	node := p.shift()
	for {
		tok := p.tok
		switch {
		case p.consume("<"):
			node = newBinary(ast.Lt, node, p.shift(), tok)
		case p.consume("<="):
			node = newBinary(ast.Le, node, p.shift(), tok)
		case p.consume(">"):
			node = newBinary(ast.Lt, p.shift(), node, tok)
		case p.consume(">="):
			node = newBinary(ast.Le, p.shift(), node, tok)
		default:
			return node
		}
	}
}

func (p *Parser) shift() *ast.Node {
	node := p.add()
	for {
		tok := p.tok
		switch {
		case p.consume("<<"):
			node = newBinary(ast.Shl, node, p.add(), tok)
		case p.consume(">>"):
			node = newBinary(ast.Shr, node, p.add(), tok)
		default:
			return node
		}
	}
}

// add = mul (("+" | "-") mul)*
func (p *Parser) add() *ast.Node {
	node := p.mul()
	for {
		tok := p.tok
		switch {
		case p.consume("+"):
			node = newBinary(ast.Add, node, p.mul(), tok)
		case p.consume("-"):
			node = newBinary(ast.Sub, node, p.mul(), tok)
		default:
			return node
		}
	}
}

// mul = cast (("*" | "/" | "%") cast)*
func (p *Parser) mul() *ast.Node {
	node := p.cast()
	for {
		tok := p.tok
		switch {
		case p.consume("*"):
			node = newBinary(ast.Mul, node, p.cast(), tok)
		case p.consume("/"):
			node = newBinary(ast.Div, node, p.cast(), tok)
		case p.consume("%"):
			node = newBinary(ast.Mod, node, p.cast(), tok)
		default:
			return node
		}
	}
}

// cast = "(" type-name ")" cast | unary
//
// Distinguishing a cast from a parenthesized expression is the second of
// spec.md §4.3's two backtracking points: try a type-specifier after "(",
// and only commit to the cast reading if one is actually there.
func (p *Parser) cast() *ast.Node {
	if p.tok.Is("(") {
		save := p.save()
		p.tok = p.tok.Next
		if p.isTypename() {
			ty, _, _ := p.basetype()
			ty = p.abstractDeclarator(ty)
			p.expect(")")
			tok := save
			return &ast.Node{Kind: ast.Cast, Tok: tok, Lhs: p.cast(), ParsedType: ty}
		}
		p.restore(save)
	}
	return p.unary()
}

// unary = ("+" | "-" | "*" | "&" | "!" | "~") cast
//       | ("++" | "--") unary
//       | postfix
func (p *Parser) unary() *ast.Node {
	tok := p.tok
	switch {
	case p.consume("+"):
		// unary + is a no-op: its type is the operand's type unchanged
		// (original_source/parse.c's unary(), recovered per SPEC_FULL).
		return p.cast()
	case p.consume("-"):
		return newUnary(ast.Neg, p.cast(), tok)
	case p.consume("*"):
		return newUnary(ast.Deref, p.cast(), tok)
	case p.consume("&"):
		return newUnary(ast.Addr, p.cast(), tok)
	case p.consume("!"):
		return newUnary(ast.Not, p.cast(), tok)
	case p.consume("~"):
		return newUnary(ast.BitNot, p.cast(), tok)
	case p.consume("++"):
		return newUnary(ast.PreInc, p.unary(), tok)
	case p.consume("--"):
		return newUnary(ast.PreDec, p.unary(), tok)
	}
	return p.postfix()
}

// postfix = primary ("[" expr "]" | "." ident | "->" ident | "++" | "--" | call-args)*
func (p *Parser) postfix() *ast.Node {
	node := p.primary()
	for {
		tok := p.tok
		switch {
		case p.consume("["):
			// a[b] -> *(a + b)
			idx := p.expr()
			p.expect("]")
			node = newUnary(ast.Deref, newBinary(ast.Add, node, idx, tok), tok)
		case p.consume("."):
			node = p.structRef(node, tok)
		case p.consume("->"):
			// a->b -> (*a).b
			node = p.structRef(newUnary(ast.Deref, node, tok), tok)
		case p.consume("++"):
			node = newUnary(ast.PostInc, node, tok)
		case p.consume("--"):
			node = newUnary(ast.PostDec, node, tok)
		default:
			return node
		}
	}
}

func (p *Parser) structRef(lhs *ast.Node, tok *token.Token) *ast.Node {
	name := p.expectIdent()
	return &ast.Node{Kind: ast.Member, Lhs: lhs, MemberName: name, Tok: tok}
}

// primary = "(" "{" stmt-expr-tail
//         | "(" expr ")"
//         | "sizeof" unary
//         | "sizeof" "(" type-name ")"
//         | ident call-args?
//         | str
//         | num
func (p *Parser) primary() *ast.Node {
	tok := p.tok

	if p.consume("(") {
		if p.consume("{") {
			return p.stmtExprTail(tok)
		}
		node := p.expr()
		p.expect(")")
		return node
	}

	if p.consume("sizeof") {
		if p.tok.Is("(") {
			save := p.save()
			p.tok = p.tok.Next
			if p.isTypename() {
				ty, _, _ := p.basetype()
				ty = p.abstractDeclarator(ty)
				p.expect(")")
				return &ast.Node{Kind: ast.Sizeof, ParsedType: ty, Tok: tok}
			}
			p.restore(save)
		}
		operand := p.unary()
		return newUnary(ast.Sizeof, operand, tok)
	}

	if name, ok := p.consumeIdent(); ok {
		if p.tok.Is("(") {
			return p.funcall(name, tok)
		}
		vs := p.findVar(name)
		if vs == nil {
			p.errorfAt(tok, "undefined variable %q", name)
		}
		if vs.isEnum {
			return newNum(vs.enumVal, tok)
		}
		if vs.v == nil {
			p.errorfAt(tok, "%q is not a variable", name)
		}
		return &ast.Node{Kind: ast.Var_, V: vs.v, Tok: tok}
	}

	if p.tok.Kind == token.Str {
		return p.stringLiteral(tok)
	}

	return newNum(p.expectNumber(), tok)
}

func (p *Parser) funcall(name string, tok *token.Token) *ast.Node {
	p.expect("(")
	var head ast.Node
	cur := &head
	for !p.tok.Is(")") {
		cur.Next = p.assign()
		cur = cur.Next
		if !p.consume(",") {
			break
		}
	}
	p.expect(")")
	return &ast.Node{Kind: ast.Funcall, FuncName: name, Args: head.Next, Tok: tok}
}

func (p *Parser) stmtExprTail(tok *token.Token) *ast.Node {
	vHead, tHead := p.enterScope()
	defer p.leaveScope(vHead, tHead)

	var head ast.Node
	cur := &head
	for !p.tok.Is("}") {
		cur.Next = p.stmt()
		cur = cur.Next
	}
	p.expect("}")
	p.expect(")")
	if head.Next == nil {
		p.errorfAt(tok, "statement expression returning void is not supported")
	}
	return &ast.Node{Kind: ast.StmtExpr, Body: head.Next, Tok: tok}
}

func (p *Parser) stringLiteral(tok *token.Token) *ast.Node {
	p.tok = p.tok.Next
	label := p.newStringLabel()
	gv := p.newStringVar(label, tok.Str, tok.StrLen)
	return &ast.Node{Kind: ast.Var_, V: gv, Tok: tok}
}
