package parser

import (
	"fmt"

	"github.com/gmofishsauce/cc9/internal/ast"
	"github.com/gmofishsauce/cc9/internal/token"
	"github.com/gmofishsauce/cc9/internal/types"
)

// --- global / static-local initializers: flattened to byte chunks ---

// globalInitializer parses "= initializer" for a global or function-local
// static variable into the flat chunk list the code generator emits as
// .byte/.word/.long/.quad/.zero directives (spec.md §4.3, §6). Recovered
// from original_source/parse.c's global_var initializer handling, extended
// here to structs and nested arrays, which that checkpoint didn't yet
// support.
func (p *Parser) globalInitializer(gv *ast.Var) {
	gv.Init = p.globalInitChunks(gv.Ty)
}

func (p *Parser) globalInitChunks(ty *types.Type) []*ast.GlobalInit {
	switch {
	case ty.Kind == types.Array && ty.Base.Kind == types.Char && p.tok.Kind == token.Str:
		return p.globalStringChunks(ty)
	case ty.Kind == types.Ptr && p.tok.Kind == token.Str:
		return []*ast.GlobalInit{p.globalStringPointerChunk()}
	case ty.Kind == types.Array:
		return p.globalArrayChunks(ty)
	case ty.Kind == types.Struct:
		return p.globalStructChunks(ty)
	default:
		val := p.constExpr()
		return []*ast.GlobalInit{scalarChunk(ty, val)}
	}
}

// globalStringChunks lowers `char buf[...] = "text"` to its byte image,
// completing an incomplete array's length or zero-padding a shorter
// literal out to a declared length.
func (p *Parser) globalStringChunks(ty *types.Type) []*ast.GlobalInit {
	tok := p.tok
	p.tok = p.tok.Next
	chunks := bytesToChunks(tok.Str)
	switch {
	case ty.IsIncomplete:
		ty.ArrayLen = len(tok.Str)
		ty.Size = len(tok.Str)
		ty.IsIncomplete = false
	case len(tok.Str) < ty.ArrayLen:
		chunks = append(chunks, &ast.GlobalInit{Kind: ast.InitZero, Len: ty.ArrayLen - len(tok.Str)})
	}
	return chunks
}

// globalStringPointerChunk lowers `char *p = "text"` by spilling the
// literal into its own anonymous global and pointing p at its label.
func (p *Parser) globalStringPointerChunk() *ast.GlobalInit {
	tok := p.tok
	p.tok = p.tok.Next
	label := p.newStringLabel()
	sv := &ast.Var{Name: label, Ty: types.ArrayOf(types.NewChar(), len(tok.Str)), Init: bytesToChunks(tok.Str)}
	p.prog.Globals = append(p.prog.Globals, sv)
	return &ast.GlobalInit{Kind: ast.InitLabel, Label: label}
}

func (p *Parser) globalArrayChunks(ty *types.Type) []*ast.GlobalInit {
	p.expect("{")
	var chunks []*ast.GlobalInit
	n := 0
	for !p.tok.Is("}") {
		chunks = append(chunks, p.globalInitChunks(ty.Base)...)
		n++
		if !p.consume(",") {
			break
		}
	}
	p.expect("}")
	if ty.IsIncomplete {
		ty.ArrayLen = n
		ty.Size = ty.Base.Size * n
		ty.IsIncomplete = false
		return chunks
	}
	if n < ty.ArrayLen {
		chunks = append(chunks, &ast.GlobalInit{Kind: ast.InitZero, Len: ty.Base.Size * (ty.ArrayLen - n)})
	}
	return chunks
}

// globalStructChunks inserts explicit zero-padding between members so the
// emitted image matches CompleteStruct's alignment-rounded layout exactly.
func (p *Parser) globalStructChunks(ty *types.Type) []*ast.GlobalInit {
	p.expect("{")
	var chunks []*ast.GlobalInit
	offset := 0
	idx := 0
	for !p.tok.Is("}") && idx < len(ty.Members) {
		m := ty.Members[idx]
		if m.Offset > offset {
			chunks = append(chunks, &ast.GlobalInit{Kind: ast.InitZero, Len: m.Offset - offset})
		}
		chunks = append(chunks, p.globalInitChunks(m.Ty)...)
		offset = m.Offset + m.Ty.Size
		idx++
		if !p.consume(",") {
			break
		}
	}
	p.expect("}")
	if offset < ty.Size {
		chunks = append(chunks, &ast.GlobalInit{Kind: ast.InitZero, Len: ty.Size - offset})
	}
	return chunks
}

func scalarChunk(ty *types.Type, val int64) *ast.GlobalInit {
	switch types.MustSizeOf(ty) {
	case 1:
		return &ast.GlobalInit{Kind: ast.InitByte, IntVal: val}
	case 2:
		return &ast.GlobalInit{Kind: ast.InitWord, IntVal: val}
	case 4:
		return &ast.GlobalInit{Kind: ast.InitLong, IntVal: val}
	default:
		return &ast.GlobalInit{Kind: ast.InitQuad, IntVal: val}
	}
}

func bytesToChunks(b []byte) []*ast.GlobalInit {
	chunks := make([]*ast.GlobalInit, len(b))
	for i, c := range b {
		chunks[i] = &ast.GlobalInit{Kind: ast.InitByte, IntVal: int64(c)}
	}
	return chunks
}

// newStringVar spills a string literal's decoded bytes into an anonymous
// char-array global, returned for the parser to reference by address
// wherever the literal appears in an expression (spec.md §3).
func (p *Parser) newStringVar(label string, str []byte, strLen int) *ast.Var {
	gv := &ast.Var{Name: label, Ty: types.ArrayOf(types.NewChar(), strLen), Init: bytesToChunks(str)}
	p.prog.Globals = append(p.prog.Globals, gv)
	return gv
}

// pushStaticLocal binds a block-scoped static to its ordinary (block-
// local) name while giving it linker-visible, uniquely-labeled storage —
// spec.md §4.3's "compiled as a global with internal linkage".
func (p *Parser) pushStaticLocal(name string, gv *ast.Var) {
	p.pushVar(name, gv)
	p.prog.Globals = append(p.prog.Globals, gv)
}

func (p *Parser) staticLocalName(name string) string {
	n := p.staticLocalSeq
	p.staticLocalSeq++
	return fmt.Sprintf(".L.static.%s.%d", name, n)
}

// --- local initializers: lowered to assignment expressions ---

// lvarInitializer parses "= initializer" for one local variable and
// lowers it to a single expression — one assignment for a scalar, or a
// comma-chain of per-element/per-member assignments for an array or
// struct — so declStmt can wrap the whole thing in one ExprStmt (spec.md
// §4.3's designator-based lowering; original_source/parse.c has no
// equivalent at this checkpoint, so the shape here is original, built the
// way the rest of this parser builds everything else: recursively, off an
// explicit address rather than a textual designator string).
func (p *Parser) lvarInitializer(lhs *ast.Node) *ast.Node {
	ty := lhs.V.Ty
	tok := lhs.Tok

	if ty.Kind != types.Array && ty.Kind != types.Struct {
		rhs := p.assign()
		return newBinary(ast.Assign, lhs, rhs, tok)
	}

	var baseTy *types.Type
	if ty.Kind == types.Array {
		baseTy = ty.Base
	} else {
		baseTy = ty
	}
	addr := &ast.Node{Kind: ast.Addr, Lhs: lhs, Tok: tok, Ty: types.PointerTo(baseTy)}
	return p.initFromAddr(addr, ty)
}

// initFromAddr parses one initializer (scalar, string, array, or struct)
// given the address of the storage it fills, dispatching recursively on
// ty's kind.
func (p *Parser) initFromAddr(addr *ast.Node, ty *types.Type) *ast.Node {
	tok := p.tok
	switch {
	case ty.Kind == types.Array && ty.Base.Kind == types.Char && p.tok.Kind == token.Str:
		return p.stringInitFromAddr(addr, ty)
	case ty.Kind == types.Array:
		return p.arrayInitFromAddr(addr, ty)
	case ty.Kind == types.Struct:
		return p.structInitFromAddr(addr, ty)
	default:
		lv := &ast.Node{Kind: ast.Deref, Lhs: addr, Tok: tok, Ty: ty}
		rhs := p.assign()
		return newBinary(ast.Assign, lv, rhs, tok)
	}
}

func (p *Parser) stringInitFromAddr(addr *ast.Node, ty *types.Type) *ast.Node {
	tok := p.tok
	str := p.tok.Str
	p.tok = p.tok.Next

	if ty.IsIncomplete {
		ty.ArrayLen = len(str)
		ty.Size = len(str)
		ty.IsIncomplete = false
	}

	var result *ast.Node
	for i := 0; i < ty.ArrayLen; i++ {
		var v byte
		if i < len(str) {
			v = str[i]
		}
		elemA := elemAddr(addr, ty.Base, i, tok)
		lv := &ast.Node{Kind: ast.Deref, Lhs: elemA, Tok: tok, Ty: ty.Base}
		result = chainComma(result, newBinary(ast.Assign, lv, newNum(int64(int8(v)), tok), tok), tok)
	}
	return result
}

func (p *Parser) arrayInitFromAddr(addr *ast.Node, ty *types.Type) *ast.Node {
	tok := p.tok
	p.expect("{")
	var result *ast.Node
	i := 0
	for !p.tok.Is("}") {
		elemA := elemAddr(addr, ty.Base, i, tok)
		result = chainComma(result, p.initFromAddr(elemA, ty.Base), tok)
		i++
		if !p.consume(",") {
			break
		}
	}
	p.expect("}")

	if ty.IsIncomplete {
		ty.ArrayLen = i
		ty.Size = ty.Base.Size * i
		ty.IsIncomplete = false
		return result
	}
	for ; i < ty.ArrayLen; i++ {
		elemA := elemAddr(addr, ty.Base, i, tok)
		result = chainComma(result, zeroInit(elemA, ty.Base, tok), tok)
	}
	return result
}

func (p *Parser) structInitFromAddr(addr *ast.Node, ty *types.Type) *ast.Node {
	tok := p.tok
	p.expect("{")
	var result *ast.Node
	idx := 0
	for !p.tok.Is("}") && idx < len(ty.Members) {
		m := ty.Members[idx]
		memberA := memberAddr(addr, m, tok)
		result = chainComma(result, p.initFromAddr(memberA, m.Ty), tok)
		idx++
		if !p.consume(",") {
			break
		}
	}
	p.expect("}")

	for ; idx < len(ty.Members); idx++ {
		m := ty.Members[idx]
		memberA := memberAddr(addr, m, tok)
		result = chainComma(result, zeroInit(memberA, m.Ty, tok), tok)
	}
	return result
}

// zeroInit builds a (possibly nested) zero-assignment expression for an
// uninitialized tail of members/elements, so a partial initializer list
// zero-fills the rest exactly like a global's implicit zero chunk does.
func zeroInit(addr *ast.Node, ty *types.Type, tok *token.Token) *ast.Node {
	switch ty.Kind {
	case types.Array:
		var result *ast.Node
		for i := 0; i < ty.ArrayLen; i++ {
			elemA := elemAddr(addr, ty.Base, i, tok)
			result = chainComma(result, zeroInit(elemA, ty.Base, tok), tok)
		}
		return result
	case types.Struct:
		var result *ast.Node
		for _, m := range ty.Members {
			memberA := memberAddr(addr, m, tok)
			result = chainComma(result, zeroInit(memberA, m.Ty, tok), tok)
		}
		return result
	default:
		lv := &ast.Node{Kind: ast.Deref, Lhs: addr, Tok: tok, Ty: ty}
		return newBinary(ast.Assign, lv, newNum(0, tok), tok)
	}
}

// elemAddr returns the (pointer-typed) address of addr[idx], scaled by
// elemTy's size — codegen's job for any pointer-typed Add, per spec.md
// §4.5's pointer-arithmetic scaling rule.
func elemAddr(addr *ast.Node, elemTy *types.Type, idx int, tok *token.Token) *ast.Node {
	return &ast.Node{Kind: ast.Add, Lhs: addr, Rhs: newNum(int64(idx), tok), Tok: tok, Ty: types.PointerTo(elemTy)}
}

// memberAddr returns the address of member m within the struct addressed
// by addr, computed via an explicit cast through char* so the byte offset
// is never rescaled by the struct's own size.
func memberAddr(addr *ast.Node, m *types.Member, tok *token.Token) *ast.Node {
	bytePtr := types.PointerTo(types.NewChar())
	asBytes := &ast.Node{Kind: ast.Cast, Lhs: addr, Tok: tok, Ty: bytePtr}
	offset := &ast.Node{Kind: ast.Add, Lhs: asBytes, Rhs: newNum(int64(m.Offset), tok), Tok: tok, Ty: bytePtr}
	return &ast.Node{Kind: ast.Cast, Lhs: offset, Tok: tok, Ty: types.PointerTo(m.Ty)}
}

func chainComma(acc, next *ast.Node, tok *token.Token) *ast.Node {
	if acc == nil {
		return next
	}
	return &ast.Node{Kind: ast.Comma, Lhs: acc, Rhs: next, Tok: tok}
}
