package parser

import (
	"github.com/gmofishsauce/cc9/internal/ast"
	"github.com/gmofishsauce/cc9/internal/token"
	"github.com/gmofishsauce/cc9/internal/types"
)

// compoundStmt parses "{" stmt* "}", snapshotting and restoring the scope
// stacks around the block (spec.md §3, §4.3).
func (p *Parser) compoundStmt() *ast.Node {
	tok := p.tok
	p.expect("{")
	vHead, tHead := p.enterScope()
	defer p.leaveScope(vHead, tHead)

	var head ast.Node
	cur := &head
	for !p.consume("}") {
		cur.Next = p.stmt()
		cur = cur.Next
	}
	return &ast.Node{Kind: ast.Block, Body: head.Next, Tok: tok}
}

// stmt parses one statement: block, if/else, while, for, do/while, switch,
// case/default, break, continue, goto, label, return, a declaration, or an
// expression statement (spec.md §4.3's statement grammar).
func (p *Parser) stmt() *ast.Node {
	tok := p.tok

	switch {
	case p.tok.Is("{"):
		return p.compoundStmt()

	case p.consume("return"):
		n := &ast.Node{Kind: ast.Return, Tok: tok}
		if !p.consume(";") {
			n.Lhs = p.expr()
			p.expect(";")
		}
		return n

	case p.consume("if"):
		p.expect("(")
		n := &ast.Node{Kind: ast.If, Tok: tok, Cond: p.expr()}
		p.expect(")")
		n.Then = p.stmt()
		if p.consume("else") {
			n.Els = p.stmt()
		}
		return n

	case p.consume("while"):
		p.expect("(")
		n := &ast.Node{Kind: ast.While, Tok: tok, Cond: p.expr()}
		p.expect(")")
		n.Then = p.stmt()
		return n

	case p.consume("do"):
		n := &ast.Node{Kind: ast.Do, Tok: tok}
		n.Then = p.stmt()
		p.expect("while")
		p.expect("(")
		n.Cond = p.expr()
		p.expect(")")
		p.expect(";")
		return n

	case p.consume("for"):
		p.expect("(")
		vHead, tHead := p.enterScope()
		defer p.leaveScope(vHead, tHead)

		n := &ast.Node{Kind: ast.For, Tok: tok}
		if p.isTypename() {
			n.Init = p.declStmt()
		} else if !p.consume(";") {
			n.Init = p.exprStmt()
		}
		if !p.tok.Is(";") {
			n.Cond = p.expr()
		}
		p.expect(";")
		if !p.tok.Is(")") {
			n.Inc = p.expr()
		}
		p.expect(")")
		n.Then = p.stmt()
		return n

	case p.consume("switch"):
		p.expect("(")
		n := &ast.Node{Kind: ast.Switch, Tok: tok, Cond: p.expr()}
		p.expect(")")

		outer := p.currentSwitch
		p.currentSwitch = n
		n.Then = p.stmt()
		p.currentSwitch = outer
		return n

	case p.consume("case"):
		if p.currentSwitch == nil {
			p.errorfAt(tok, "a case label may only appear inside a switch")
		}
		val := p.constExpr()
		p.expect(":")
		n := &ast.Node{Kind: ast.Case, Tok: tok, CaseLabel: val}
		n.Lhs = p.stmt()
		n.CaseNext = p.currentSwitch.CaseNext
		p.currentSwitch.CaseNext = n
		return n

	case p.consume("default"):
		if p.currentSwitch == nil {
			p.errorfAt(tok, "a default label may only appear inside a switch")
		}
		p.expect(":")
		n := &ast.Node{Kind: ast.Case, Tok: tok, IsDefault: true}
		n.Lhs = p.stmt()
		p.currentSwitch.DefaultCase = n
		return n

	case p.consume("break"):
		p.expect(";")
		return &ast.Node{Kind: ast.Break, Tok: tok}

	case p.consume("continue"):
		p.expect(";")
		return &ast.Node{Kind: ast.Continue, Tok: tok}

	case p.consume("goto"):
		name := p.expectIdent()
		p.expect(";")
		return &ast.Node{Kind: ast.Goto, Tok: tok, LabelName: name}

	case p.tok.Kind == token.Ident && p.tok.Next != nil && p.tok.Next.Is(":"):
		name := p.tok.Text
		p.tok = p.tok.Next.Next
		n := &ast.Node{Kind: ast.Label, Tok: tok, LabelName: name}
		n.Lhs = p.stmt()
		return n

	case p.consume(";"):
		return &ast.Node{Kind: ast.NullStmt, Tok: tok}

	case p.isTypename():
		return p.declStmt()
	}

	return p.exprStmt()
}

func (p *Parser) exprStmt() *ast.Node {
	tok := p.tok
	n := &ast.Node{Kind: ast.ExprStmt, Tok: tok, Lhs: p.expr()}
	p.expect(";")
	return n
}

// declStmt parses a local declaration and lowers it to a statement chain:
// one ExprStmt per declarator that carries an initializer, wrapped in a
// Block so declStmt always returns exactly one Node (spec.md §4.3's
// designator-based lowering of local initializers to assignments).
func (p *Parser) declStmt() *ast.Node {
	tok := p.tok
	ty, isTypedef, isStatic := p.basetype()

	if p.consume(";") {
		return &ast.Node{Kind: ast.NullStmt, Tok: tok}
	}

	if isTypedef {
		for {
			var name string
			dty := p.declarator(ty, &name)
			p.pushTypedef(name, dty)
			if !p.consume(",") {
				break
			}
		}
		p.expect(";")
		return &ast.Node{Kind: ast.NullStmt, Tok: tok}
	}

	var head ast.Node
	cur := &head
	for {
		var name string
		vty := p.declarator(ty, &name)
		if vty.Kind == types.Void {
			p.errorfAt(tok, "variable declared void")
		}

		if isStatic {
			gv := &ast.Var{Name: p.staticLocalName(name), Ty: vty, IsStatic: true}
			if p.consume("=") {
				p.globalInitializer(gv)
			} else if !vty.IsIncomplete {
				gv.Init = []*ast.GlobalInit{{Kind: ast.InitZero, Len: types.MustSizeOf(vty)}}
			}
			p.pushStaticLocal(name, gv)
		} else {
			lv := &ast.Var{Name: name, Ty: vty, IsLocal: true}
			p.locals = append([]*ast.Var{lv}, p.locals...)
			p.pushVar(name, lv)
			if p.consume("=") {
				varNode := &ast.Node{Kind: ast.Var_, V: lv, Tok: p.tok}
				init := p.lvarInitializer(varNode)
				cur.Next = &ast.Node{Kind: ast.ExprStmt, Tok: tok, Lhs: init}
				cur = cur.Next
			}
		}

		if !p.consume(",") {
			break
		}
	}
	p.expect(";")
	return &ast.Node{Kind: ast.Block, Body: head.Next, Tok: tok}
}
