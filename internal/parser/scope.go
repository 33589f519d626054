package parser

import (
	"github.com/gmofishsauce/cc9/internal/ast"
	"github.com/gmofishsauce/cc9/internal/types"
)

// varScope binds an identifier to a variable, a typedef'd type, or an
// enumerator (type + constant value). Enumerators live in this scope, not
// tagScope, per spec.md §3.
type varScope struct {
	next *varScope
	name string
	// exactly one of the following three is set
	v       *ast.Var
	typedef *types.Type
	isEnum  bool
	enumTy  *types.Type
	enumVal int64
	depth   int
}

// tagScope binds a struct/enum tag to its type.
type tagScope struct {
	next  *tagScope
	name  string
	ty    *types.Type
	depth int
}

func (p *Parser) findVar(name string) *varScope {
	for s := p.vars; s != nil; s = s.next {
		if s.name == name {
			return s
		}
	}
	return nil
}

func (p *Parser) findTag(name string) *tagScope {
	for s := p.tags; s != nil; s = s.next {
		if s.name == name {
			return s
		}
	}
	return nil
}

func (p *Parser) pushVar(name string, v *ast.Var) *varScope {
	s := &varScope{next: p.vars, name: name, v: v, depth: p.scopeDepth}
	p.vars = s
	return s
}

func (p *Parser) pushTypedef(name string, ty *types.Type) {
	p.vars = &varScope{next: p.vars, name: name, typedef: ty, depth: p.scopeDepth}
}

func (p *Parser) pushEnum(name string, ty *types.Type, val int64) {
	p.vars = &varScope{next: p.vars, name: name, isEnum: true, enumTy: ty, enumVal: val, depth: p.scopeDepth}
}

func (p *Parser) pushTag(name string, ty *types.Type) {
	p.tags = &tagScope{next: p.tags, name: name, ty: ty, depth: p.scopeDepth}
}

// enterScope snapshots the heads of both scope stacks and increments the
// nesting depth; leaveScope restores the heads (popping everything pushed
// since) and decrements the depth. This is the §3 "entering a block
// snapshots the heads... leaving restores them" discipline.
func (p *Parser) enterScope() (v *varScope, t *tagScope) {
	p.scopeDepth++
	return p.vars, p.tags
}

func (p *Parser) leaveScope(v *varScope, t *tagScope) {
	p.vars = v
	p.tags = t
	p.scopeDepth--
}
