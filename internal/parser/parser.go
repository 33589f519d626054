// Package parser implements the recursive-descent parser: declarator
// grammar, nested scope/tag tables, and AST construction. Structurally
// grounded on lang/parse/parser.go (Parser struct threading a token
// cursor + symbol table + current-function-scope pointer through the
// recursion, with error/errorAt helpers keyed off the current token), but
// reworked for spec.md's C declarator grammar (placeholder-patched nested
// declarators, struct/enum/typedef specifiers, is_function backtracking)
// and for fail-fast diagnostics instead of the teacher's panic-mode
// recovery (spec.md §7: every diagnostic is fatal).
package parser

import (
	"strconv"

	"github.com/gmofishsauce/cc9/internal/ast"
	"github.com/gmofishsauce/cc9/internal/diag"
	"github.com/gmofishsauce/cc9/internal/token"
	"github.com/gmofishsauce/cc9/internal/types"
)

// Parser holds every piece of the mutable parse state that, in a
// less disciplined port, would be package-level globals (spec.md §5 and
// §9): the token cursor, the two scope stacks and current nesting depth,
// the current function's locals, and the innermost enclosing switch.
type Parser struct {
	src *diag.Source
	tok *token.Token

	vars *varScope
	tags *tagScope
	scopeDepth int

	locals []*ast.Var // current function, reverse declaration order

	currentSwitch *ast.Node

	stringLabelSeq int
	staticLocalSeq int

	// prog accumulates globals discovered mid-function: string-literal
	// backing stores and function-local statics (spec.md §4.3's lowering
	// of a block-scoped static to a uniquely-labeled global).
	prog *ast.Program
}

// New creates a Parser over the token stream produced by the lexer.
func New(src *diag.Source, tokens *token.Token) *Parser {
	return &Parser{src: src, tok: tokens}
}

func (p *Parser) errorf(format string, args ...any) {
	if p.tok == nil {
		diag.Fatal(format, args...)
		return
	}
	p.src.FatalAt(p.tok.Offset, format, args...)
}

func (p *Parser) errorfAt(tok *token.Token, format string, args ...any) {
	if tok == nil {
		diag.Fatal(format, args...)
		return
	}
	p.src.FatalAt(tok.Offset, format, args...)
}

// --- token cursor helpers ---

func (p *Parser) atEOF() bool { return p.tok.Kind == token.EOF }

func (p *Parser) consume(op string) bool {
	if p.tok.Kind != token.EOF && p.tok.Is(op) {
		p.tok = p.tok.Next
		return true
	}
	return false
}

func (p *Parser) consumeIdent() (string, bool) {
	if p.tok.Kind == token.Ident {
		name := p.tok.Text
		p.tok = p.tok.Next
		return name, true
	}
	return "", false
}

func (p *Parser) expect(op string) {
	if !p.consume(op) {
		p.errorf("expected %q", op)
	}
}

func (p *Parser) expectIdent() string {
	name, ok := p.consumeIdent()
	if !ok {
		p.errorf("expected an identifier")
	}
	return name
}

func (p *Parser) expectNumber() int64 {
	if p.tok.Kind != token.Num {
		p.errorf("expected a number")
	}
	v := p.tok.Val
	p.tok = p.tok.Next
	return v
}

// save/restore support the two bounded backtracking points spec.md §4.3
// names: distinguishing a function definition from a global declaration,
// and distinguishing a cast from a parenthesized expression.
func (p *Parser) save() *token.Token   { return p.tok }
func (p *Parser) restore(t *token.Token) { p.tok = t }

// Parse consumes the whole token stream and returns the AST: every global
// variable and function, in declaration order.
func Parse(src *diag.Source, tokens *token.Token) *ast.Program {
	p := New(src, tokens)
	p.registerBuiltinTypeNames()

	prog := &ast.Program{}
	p.prog = prog
	for !p.atEOF() {
		if p.isFunction() {
			fn := p.functionDef()
			if fn != nil {
				prog.Funcs = append(prog.Funcs, fn)
			}
		} else {
			p.globalDecl(prog)
		}
	}
	return prog
}

// registerBuiltinTypeNames is a no-op placeholder kept for symmetry with
// the teacher's NewSymbolTable() seeding step; builtin type keywords are
// recognized directly by the lexer's keyword table, not via scope entries.
func (p *Parser) registerBuiltinTypeNames() {}

// isFunction speculatively parses a type-specifier and a declarator,
// then checks for "(" to distinguish a function definition/prototype from
// a global variable declaration, restoring the cursor either way
// (spec.md §4.3). Tags and enumerators pushed by the speculative parse are
// popped again, and a forward-declared struct whose body it completed is
// reset to incomplete, so the real parse does not see a redefinition.
func (p *Parser) isFunction() bool {
	tok := p.save()
	vars, tags := p.vars, p.tags
	var pending *types.Type
	t := p.tok
	for t.Is("typedef") || t.Is("static") {
		t = t.Next
	}
	if t.Is("struct") && t.Next.IsIdent("") {
		if ts := p.findTag(t.Next.Text); ts != nil && ts.ty.IsIncomplete {
			pending = ts.ty
		}
	}
	defer func() {
		p.restore(tok)
		p.vars, p.tags = vars, tags
		if pending != nil && !pending.IsIncomplete {
			*pending = *types.NewIncompleteStruct()
		}
	}()

	ty, _, _ := p.basetype()
	if ty == nil {
		return false
	}
	if p.consume(";") {
		return false
	}
	var name string
	p.declarator(ty, &name)
	return name != "" && p.tok.Is("(")
}

// globalDecl parses `typedef`s, struct/enum-only declarations, and
// comma-separated global variable declarators sharing one base type
// (spec.md §6 surface list; the comma-separated form is recovered from
// original_source/parse.c's global_var, which loops on "," between
// declarators).
func (p *Parser) globalDecl(prog *ast.Program) {
	ty, isTypedef, isStatic := p.basetype()
	if p.consume(";") {
		return // struct/enum tag declaration with no variable
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
		return
	}

	for {
		var name string
		vty := p.declarator(ty, &name)
		gv := &ast.Var{Name: name, Ty: vty, IsLocal: false, IsStatic: isStatic}
		if p.consume("=") {
			p.globalInitializer(gv)
		} else if !vty.IsIncomplete {
			gv.Init = []*ast.GlobalInit{{Kind: ast.InitZero, Len: types.MustSizeOf(vty)}}
		}
		p.pushVar(name, gv)
		prog.Globals = append(prog.Globals, gv)
		if !p.consume(",") {
			break
		}
	}
	p.expect(";")
}

// functionDef parses one function definition or prototype. Prototypes
// (no body) return nil and are not added to the program (spec.md §6:
// "function declarations (prototypes, no body; return early)").
func (p *Parser) functionDef() *ast.Function {
	ty, _, isStatic := p.basetype()
	var name string
	p.declarator(ty, &name)

	fn := &ast.Function{Name: name, ReturnType: ty, IsStatic: isStatic}

	vHead, tHead := p.enterScope()
	p.locals = nil

	p.expect("(")
	if !p.tok.Is(")") {
		for {
			pty, _, _ := p.basetype()
			var pname string
			pty = p.declarator(pty, &pname)
			pty = decayParam(pty)
			pv := &ast.Var{Name: pname, Ty: pty, IsLocal: true}
			p.locals = append([]*ast.Var{pv}, p.locals...)
			p.pushVar(pname, pv)
			fn.Params = append(fn.Params, pv)
			if !p.consume(",") {
				break
			}
		}
	}
	p.expect(")")

	p.pushVar(name, &ast.Var{Name: name, Ty: types.FuncType(ty)})

	if p.consume(";") {
		// prototype only
		p.leaveScope(vHead, tHead)
		return nil
	}

	fn.Body = p.compoundStmt()
	fn.Locals = p.locals
	p.leaveScope(vHead, tHead)
	return fn
}

// decayParam applies the parameter-position array-to-pointer decay: a
// declared array parameter type is adjusted to pointer-to-element.
func decayParam(ty *types.Type) *types.Type {
	if ty.Kind == types.Array {
		return types.PointerTo(ty.Base)
	}
	return ty
}

// newStringLabel mints the next ".L.data.N" anonymous global label for a string
// literal (spec.md §3).
func (p *Parser) newStringLabel() string {
	l := p.stringLabelSeq
	p.stringLabelSeq++
	return ".L.data." + strconv.Itoa(l)
}
