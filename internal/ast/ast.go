// Package ast defines the tagged abstract syntax tree produced by the
// parser and consumed by the semantic decorator and code generator, plus
// the Var/Function/Program records that sit alongside it.
//
// Node-kind shape and the switch-plumbing fields (CaseNext, DefaultCase,
// CaseLabel, CaseEndLabel) follow original_source/9cc.h's Node struct,
// translated from one C union-of-everything into a single Go struct with
// kind-specific fields left zero when unused, per spec.md §9's preference
// for a tagged sum over a maximally-slotted record; Go's lack of tagged
// unions makes an all-fields struct the idiomatic compromise, same as
// lang/sem/ast.go's Stmt/Expr shapes do for YAPL.
package ast

import (
	"github.com/gmofishsauce/cc9/internal/token"
	"github.com/gmofishsauce/cc9/internal/types"
)

// Kind tags a Node variant.
type Kind int

const (
	Add Kind = iota
	Sub
	Mul
	Div
	Mod
	BitAnd
	BitOr
	BitXor
	BitNot
	Shl
	Shr
	Eq
	Ne
	Lt
	Le
	Assign
	AddAssign
	SubAssign
	MulAssign
	DivAssign
	ShlAssign
	ShrAssign
	Comma
	Member
	Addr
	Deref
	Not
	LogAnd
	LogOr
	Return
	If
	While
	For
	Do
	Switch
	Case
	Block
	Funcall
	ExprStmt
	StmtExpr
	Var_
	Num
	Cast
	Cond
	Goto
	Label
	Break
	Continue
	PreInc
	PreDec
	PostInc
	PostDec
	Neg
	NullStmt
	Sizeof // transient: rewritten to Num by the decorator; never reaches codegen
)

// Var is a variable or function-name binding: a local, a global, or (when
// Init is non-nil with no body attached elsewhere) a string-literal-backed
// anonymous global.
type Var struct {
	Name string
	Ty   *types.Type
	Tok  *token.Token

	IsLocal bool
	Offset  int // stack offset for locals, assigned after parsing

	// Init is non-nil only for globals (including anonymous string
	// literals); locals never carry one here — their initializers are
	// lowered to assignment statements by the parser (spec.md §4.3).
	Init []*GlobalInit

	IsStatic bool
}

// GlobalInitKind tags one chunk of a global's initializer image.
type GlobalInitKind int

const (
	InitByte GlobalInitKind = iota
	InitWord
	InitLong
	InitQuad
	InitLabel // .quad LABEL — pointer-to-global
	InitZero  // N bytes of zero fill
)

// GlobalInit is one chunk of a global variable's initializer, emitted in
// order by the code generator as a .byte/.word/.long/.quad directive (or
// a run of .zero bytes).
type GlobalInit struct {
	Kind   GlobalInitKind
	IntVal int64
	Label  string
	Len    int // byte count, for InitZero
}

// Node is one AST node. Next chains siblings: statement lists, argument
// lists, and (via CaseNext) case chains under a switch.
type Node struct {
	Kind Kind
	Next *Node
	Tok  *token.Token
	Ty   *types.Type // filled by the decorator for expressions

	// ParsedType carries a type the parser already knows before the node
	// has been decorated: the cast's target type, or a sizeof(type-name)
	// operand's type. It is kept separate from Ty so that visit()'s
	// "Ty != nil means already decorated" idempotency check doesn't
	// mistake a not-yet-decorated Cast/Sizeof node for one that is —
	// which would skip typing (Cast) or rewriting (Sizeof) it entirely.
	ParsedType *types.Type

	Lhs, Rhs           *Node
	Cond, Then, Els    *Node
	Init, Inc          *Node
	Body               *Node // block / statement-expression statement chain
	Args               *Node // call argument chain

	FuncName string
	FuncType *types.Type // call result type

	MemberName string
	MemberInfo *types.Member

	LabelName  string
	GotoTarget string // not set: codegen builds ".L.label.<func>.<name>" from LabelName

	CaseNext    *Node // switch: chain of case/default nodes inside its body
	DefaultCase *Node // switch: the default node, if any
	CaseLabel   int64 // case: constant label value
	IsDefault   bool
	CaseEndLabel string // case: resolved jump target, assigned by codegen

	V   *Var // Var_ node
	Val int64 // Num node
}

// Function is one function definition or declaration. Declarations (no
// body) carry a nil Body and are skipped by the code generator.
type Function struct {
	Name       string
	Params     []*Var
	ReturnType *types.Type
	Body       *Node

	// Locals is in reverse declaration order (most-recently-declared
	// first), matching the parser's prepend-on-declare discipline; the
	// code generator's assignLvarOffsets walks it to assign stack offsets.
	Locals    []*Var
	StackSize int

	IsStatic bool
}

// Program is the parse result: every global variable and function seen,
// in declaration order.
type Program struct {
	Globals []*Var
	Funcs   []*Function
}
