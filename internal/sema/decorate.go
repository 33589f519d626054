// Package sema is the semantic decorator: a post-order walk over the
// parsed AST that assigns a type to every expression node, resolves
// struct member references, performs array-to-pointer decay, and folds
// `sizeof` nodes into integer literals (spec.md §4.4).
//
// Grounded on lang/sem/analyzer.go's visitor shape (one method per node
// kind, called post-order from a dispatcher), adapted to spec.md's exact
// per-kind typing rules. Type is idempotent and exported so the parser's
// constant-expression evaluator can type a sizeof operand at parse time;
// everything else is typed by one whole-program Decorate pass after
// parsing completes, matching original_source/type.c's add_type(Program*)
// entry point.
package sema

import (
	"github.com/gmofishsauce/cc9/internal/ast"
	"github.com/gmofishsauce/cc9/internal/diag"
	"github.com/gmofishsauce/cc9/internal/types"
)

// Decorator walks a whole program, typing every node reachable from a
// function body. Global initializers are folded to data chunks by the
// parser and are not walked here.
type Decorator struct {
	src *diag.Source
}

func New(src *diag.Source) *Decorator {
	return &Decorator{src: src}
}

func (d *Decorator) errorfAt(n *ast.Node, format string, args ...any) {
	if n == nil || n.Tok == nil {
		diag.Fatal(format, args...)
		return
	}
	d.src.FatalAt(n.Tok.Offset, format, args...)
}

// Decorate types every statement/expression in every function body. Non-
// expression (pure statement) nodes are visited for their children's
// sake; their own .Ty is left nil, and the generator never consults it
// (spec.md §8's testable property).
func (d *Decorator) Decorate(prog *ast.Program) {
	for _, fn := range prog.Funcs {
		for n := fn.Body; n != nil; n = n.Next {
			d.visit(n)
		}
	}
}

// Type runs the same post-order typing visit as Decorate, but on one
// detached expression subtree rather than a whole function body. Used by
// the parser's constant-expression evaluator so that `sizeof` occurring
// inside an array dimension, case label, enum value, or global
// initializer — all evaluated at parse time, before Decorate ever runs —
// is still resolved correctly.
func (d *Decorator) Type(n *ast.Node) {
	d.visit(n)
}

// visit types n and, transitively, every node it's the sole owner of.
// Idempotent: a node whose Ty is already set (e.g. a sizeof folded by a
// constant-expression context during parsing, or one of init.go's
// elemAddr/memberAddr address nodes built fully pre-typed) is not
// revisited. Cast and Sizeof(type-name) carry their parser-known type in
// ParsedType instead of Ty for exactly this reason: unlike those fully
// self-typed synthetic nodes, their own Lhs subtree (the cast operand, or
// nothing at all) still needs this pass to run.
func (d *Decorator) visit(n *ast.Node) {
	if n == nil || n.Ty != nil {
		return
	}

	d.visit(n.Lhs)
	d.visit(n.Rhs)
	d.visit(n.Cond)
	d.visit(n.Then)
	d.visit(n.Els)
	d.visit(n.Init)
	d.visit(n.Inc)
	for b := n.Body; b != nil; b = b.Next {
		d.visit(b)
	}
	for a := n.Args; a != nil; a = a.Next {
		d.visit(a)
	}

	switch n.Kind {
	case ast.Add, ast.Sub:
		d.visitAddSub(n)
	case ast.Mul, ast.Div, ast.Mod, ast.Shl, ast.Shr, ast.BitAnd, ast.BitOr,
		ast.BitXor, ast.Eq, ast.Ne, ast.Lt, ast.Le, ast.Not, ast.BitNot,
		ast.LogAnd, ast.LogOr, ast.Funcall:
		n.Ty = types.NewInt()
	case ast.Neg:
		n.Ty = n.Lhs.Ty
	case ast.Assign, ast.AddAssign, ast.SubAssign, ast.MulAssign,
		ast.DivAssign, ast.ShlAssign, ast.ShrAssign:
		if n.Lhs.Ty != nil && n.Lhs.Ty.Kind == types.Array {
			d.errorfAt(n, "not an lvalue")
		}
		n.Ty = n.Lhs.Ty
	case ast.PreInc, ast.PreDec, ast.PostInc, ast.PostDec:
		n.Ty = n.Lhs.Ty
	case ast.Comma:
		n.Ty = n.Rhs.Ty
	case ast.Cond:
		n.Ty = n.Then.Ty // the common type of the two arms: the left arm's
	case ast.Member:
		d.visitMember(n)
	case ast.Addr:
		d.visitAddr(n)
	case ast.Deref:
		d.visitDeref(n)
	case ast.Var_:
		n.Ty = n.V.Ty
	case ast.Num:
		n.Ty = numLiteralType(n.Val)
	case ast.Cast:
		n.Ty = n.ParsedType
	case ast.Sizeof:
		d.visitSizeof(n)
	case ast.StmtExpr:
		n.Ty = lastExprType(n.Body)
	}
}

// visitAddSub implements spec.md §4.4's pointer-arithmetic swap and
// both-pointers diagnostic.
func (d *Decorator) visitAddSub(n *ast.Node) {
	lhs, rhs := n.Lhs, n.Rhs

	if rhs.Ty.HasBase() && n.Kind == ast.Add {
		lhs, rhs = rhs, lhs
		n.Lhs, n.Rhs = lhs, rhs
	}
	if lhs.Ty.HasBase() && rhs.Ty.HasBase() {
		d.errorfAt(n, "invalid operands: pointer arithmetic between two pointers")
	}
	n.Ty = lhs.Ty
}

func (d *Decorator) visitMember(n *ast.Node) {
	lty := n.Lhs.Ty
	if lty.Kind != types.Struct {
		d.errorfAt(n, "not a struct")
	}
	m := types.FindMember(lty, n.MemberName)
	if m == nil {
		d.errorfAt(n, "unknown struct member %q", n.MemberName)
	}
	n.MemberInfo = m
	n.Ty = m.Ty
}

func (d *Decorator) visitAddr(n *ast.Node) {
	if n.Lhs.Ty.Kind == types.Array {
		n.Ty = types.PointerTo(n.Lhs.Ty.Base)
		return
	}
	n.Ty = types.PointerTo(n.Lhs.Ty)
}

func (d *Decorator) visitDeref(n *ast.Node) {
	if n.Lhs.Ty.Base == nil {
		d.errorfAt(n, "invalid pointer dereference")
	}
	n.Ty = n.Lhs.Ty.Base
	if n.Ty.Kind == types.Void {
		d.errorfAt(n, "dereferencing a void pointer")
	}
}

// visitSizeof rewrites the node in place to an integer literal whose
// value is size_of(operand type); the operand subtree is discarded
// (spec.md §4.4 and the §8 invariant that no Sizeof nodes survive).
func (d *Decorator) visitSizeof(n *ast.Node) {
	var operandTy *types.Type
	if n.ParsedType != nil {
		operandTy = n.ParsedType // sizeof(type-name) form
	} else {
		operandTy = n.Lhs.Ty // sizeof expr form
	}
	size, err := types.SizeOf(operandTy)
	if err != nil {
		d.errorfAt(n, "%s", err.Error())
	}
	n.Kind = ast.Num
	n.Val = int64(size)
	n.Ty = types.NewInt()
	n.Lhs = nil
}

// numLiteralType types an integer literal int if it fits 32 bits signed,
// else long (spec.md §4.4, §8 boundary behavior).
func numLiteralType(v int64) *types.Type {
	if v >= -2147483648 && v <= 2147483647 {
		return types.NewInt()
	}
	return types.NewLong()
}

func lastExprType(body *ast.Node) *types.Type {
	if body == nil {
		return types.NewVoid()
	}
	last := body
	for last.Next != nil {
		last = last.Next
	}
	return last.Ty
}
