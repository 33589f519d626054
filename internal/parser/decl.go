package parser

import (
	"github.com/gmofishsauce/cc9/internal/token"
	"github.com/gmofishsauce/cc9/internal/types"
)

// Integral-keyword accumulator bits. Gaps between bits (as in the
// original 9cc type.c) let "short"/"long" each be added once or twice
// without colliding with a neighboring keyword's bit.
const (
	bitVoid  = 1 << 0
	bitBool  = 1 << 2
	bitChar  = 1 << 4
	bitShort = 1 << 6
	bitInt   = 1 << 8
	bitLong  = 1 << 10
)

// isTypename reports whether the current token can start a type-specifier:
// a storage-class keyword, a builtin type keyword, struct/enum, or an
// identifier bound to a typedef in scope.
func (p *Parser) isTypename() bool {
	t := p.tok
	if t.Kind == token.Reserved {
		switch t.Text {
		case "typedef", "static", "void", "_Bool", "char", "short", "int",
			"long", "struct", "enum":
			return true
		}
		return false
	}
	if t.Kind == token.Ident {
		if vs := p.findVar(t.Text); vs != nil && vs.typedef != nil {
			return true
		}
	}
	return false
}

// basetype parses storage* (builtin+ | struct-decl | enum-spec |
// typedef-name) and returns the resulting type plus the isTypedef/
// isStatic storage flags (spec.md §4.3). The flags are returned
// separately, not stored on the Type, because struct tags and typedef
// names resolve to a shared *Type whose identity must not be disturbed by
// a storage-class flag belonging to one particular declaration (spec.md
// §9's "box each type behind a stable handle": mutating a shared struct
// type's fields here would corrupt every other reference to that tag).
func (p *Parser) basetype() (ty *types.Type, isTypedef, isStatic bool) {
	if !p.isTypename() {
		p.errorf("typename expected")
	}

	var counter int
	sawTagOrTypedef := false
	ty = types.NewInt()

	for p.isTypename() {
		t := p.tok

		if t.Is("typedef") {
			isTypedef = true
			p.tok = p.tok.Next
			continue
		}
		if t.Is("static") {
			isStatic = true
			p.tok = p.tok.Next
			continue
		}

		if t.Is("struct") {
			if counter != 0 || sawTagOrTypedef {
				p.errorf("invalid type")
			}
			ty = p.structDecl()
			sawTagOrTypedef = true
			continue
		}
		if t.Is("enum") {
			if counter != 0 || sawTagOrTypedef {
				p.errorf("invalid type")
			}
			ty = p.enumSpec()
			sawTagOrTypedef = true
			continue
		}
		if t.Kind == token.Ident {
			vs := p.findVar(t.Text)
			if counter != 0 || sawTagOrTypedef {
				p.errorf("invalid type")
			}
			ty = vs.typedef
			sawTagOrTypedef = true
			p.tok = p.tok.Next
			continue
		}

		if sawTagOrTypedef {
			p.errorf("invalid type")
		}
		switch t.Text {
		case "void":
			counter += bitVoid
		case "_Bool":
			counter += bitBool
		case "char":
			counter += bitChar
		case "short":
			counter += bitShort
		case "int":
			counter += bitInt
		case "long":
			counter += bitLong
		default:
			p.errorf("invalid type")
		}
		p.tok = p.tok.Next

		switch counter {
		case bitVoid:
			ty = types.NewVoid()
		case bitBool:
			ty = types.NewBool()
		case bitChar:
			ty = types.NewChar()
		case bitShort, bitShort + bitInt:
			ty = types.NewShort()
		case bitInt:
			ty = types.NewInt()
		case bitLong, bitLong + bitInt, bitLong + bitLong, bitLong + bitLong + bitInt:
			ty = types.NewLong()
		default:
			p.errorf("invalid type")
		}
	}

	return ty, isTypedef, isStatic
}

// declarator implements spec.md §4.3's placeholder-patching strategy for
// nested declarators: the outer call allocates a blank Type, recurses to
// learn the identifier and the wrapping order, then overwrites the
// placeholder's fields in place (same address) once the suffix parse
// completes, so outer wrappers observe the finished type.
func (p *Parser) declarator(ty *types.Type, name *string) *types.Type {
	for p.consume("*") {
		ty = types.PointerTo(ty)
	}

	if p.consume("(") {
		placeholder := &types.Type{}
		newTy := p.declarator(placeholder, name)
		p.expect(")")
		*placeholder = *p.typeSuffix(ty)
		return newTy
	}

	*name = p.expectIdent()
	return p.typeSuffix(ty)
}

// abstractDeclarator is declarator without a required identifier, for
// sizeof(T) / cast (T) type-names.
func (p *Parser) abstractDeclarator(ty *types.Type) *types.Type {
	for p.consume("*") {
		ty = types.PointerTo(ty)
	}
	if p.consume("(") {
		placeholder := &types.Type{}
		newTy := p.abstractDeclarator(placeholder)
		p.expect(")")
		*placeholder = *p.typeSuffix(ty)
		return newTy
	}
	return p.typeSuffix(ty)
}

// typeSuffix parses ( "[" const-expr? "]" )*, recursing before wrapping so
// that "int a[2][3]" reads as array[2] of array[3] of int.
func (p *Parser) typeSuffix(ty *types.Type) *types.Type {
	if !p.consume("[") {
		return ty
	}
	length := -1
	if !p.tok.Is("]") {
		length = int(p.constExpr())
	}
	p.expect("]")
	ty = p.typeSuffix(ty)
	return types.ArrayOf(ty, length)
}

// structDecl parses `struct` [tag] ["{" member-decl* "}"]. A bare
// `struct Tag;` or a use of `struct Tag` before its body installs (or
// finds) an incomplete struct type under Tag so pointers can reference it
// before completion. A body mutates that same type in place.
func (p *Parser) structDecl() *types.Type {
	p.expect("struct")

	var tagTok *token.Token
	var tagName string
	if p.tok.Kind == token.Ident {
		tagTok = p.tok
		tagName = p.tok.Text
		p.tok = p.tok.Next
	}

	if tagName != "" && !p.tok.Is("{") {
		if ts := p.findTag(tagName); ts != nil {
			return ts.ty
		}
		ty := types.NewIncompleteStruct()
		p.pushTag(tagName, ty)
		return ty
	}

	var ty *types.Type
	if tagName != "" {
		if ts := p.findTag(tagName); ts != nil && ts.depth == p.scopeDepth {
			if !ts.ty.IsIncomplete {
				p.errorfAt(tagTok, "redefinition of %q", tagName)
			}
			ty = ts.ty
		} else {
			ty = types.NewIncompleteStruct()
			p.pushTag(tagName, ty)
		}
	} else {
		ty = types.NewIncompleteStruct()
	}

	p.expect("{")
	var members []*types.Member
	for !p.consume("}") {
		mty, isTypedef, _ := p.basetype()
		if isTypedef {
			p.errorf("typedef not allowed in struct member list")
		}
		for {
			var name string
			fty := p.declarator(mty, &name)
			members = append(members, &types.Member{Name: name, Ty: fty, Tok: p.tok.Offset})
			if !p.consume(",") {
				break
			}
		}
		p.expect(";")
	}

	types.CompleteStruct(ty, members)
	return ty
}

// enumSpec parses `enum` [tag] ["{" enumerator ("," enumerator)* ","? "}"].
// Enumerators are bound in var scope, not tag scope (spec.md §3);
// a value defaults to previous+1, starting at 0, overridable by "= const".
func (p *Parser) enumSpec() *types.Type {
	p.expect("enum")

	if p.tok.Kind == token.Ident && !p.peekAheadIsBrace() {
		name := p.tok.Text
		p.tok = p.tok.Next
		if ts := p.findTag(name); ts != nil {
			return ts.ty
		}
		p.errorf("unknown enum type %q", name)
	}

	if p.tok.Kind == token.Ident {
		name := p.tok.Text
		p.tok = p.tok.Next
		ty := types.NewEnum()
		p.pushTag(name, ty)
		p.enumBody(ty)
		return ty
	}

	ty := types.NewEnum()
	p.enumBody(ty)
	return ty
}

func (p *Parser) peekAheadIsBrace() bool {
	return p.tok.Next != nil && p.tok.Next.Is("{")
}

func (p *Parser) enumBody(ty *types.Type) {
	p.expect("{")
	var val int64
	for !p.consume("}") {
		name := p.expectIdent()
		if p.consume("=") {
			val = p.constExpr()
		}
		p.pushEnum(name, ty, val)
		val++
		if !p.consume(",") {
			p.expect("}")
			break
		}
	}
}
