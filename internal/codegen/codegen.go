package codegen

import (
	"fmt"
	"io"

	"github.com/samber/lo"

	"github.com/gmofishsauce/cc9/internal/ast"
	"github.com/gmofishsauce/cc9/internal/diag"
	"github.com/gmofishsauce/cc9/internal/types"
)

// Generator walks one decorated Program and emits its assembly text.
// Structurally grounded on lang/ygen (one Emitter instance threaded
// through a tree-walking generator, labels minted from a monotonic
// counter), reworked for x86-64's stack-based expression evaluation
// model: every gen_expr leaves its result in rax, and binary operators
// spill one operand to the machine stack around evaluating the other
// (spec.md §4.5).
type Generator struct {
	e   *Emitter
	src *diag.Source

	fn          *ast.Function
	returnLabel string

	labelSeq int

	breakLabels    []string
	continueLabels []string
}

// Generate emits prog's assembly text to w.
func Generate(prog *ast.Program, src *diag.Source, w io.Writer) error {
	g := &Generator{e: newEmitter(w), src: src}

	g.e.Directive(".intel_syntax noprefix")
	g.genData(prog)

	for _, fn := range prog.Funcs {
		if fn.Body == nil {
			continue // prototype only
		}
		assignLvarOffsets(fn)
		g.genFunction(fn)
	}

	return g.e.Flush()
}

func (g *Generator) errorf(n *ast.Node, format string, args ...any) {
	if n == nil || n.Tok == nil {
		diag.Fatal(format, args...)
		return
	}
	g.src.FatalAt(n.Tok.Offset, format, args...)
}

func (g *Generator) newLabel(prefix string) string {
	g.labelSeq++
	return fmt.Sprintf(".L.%s.%d", prefix, g.labelSeq)
}

func (g *Generator) funcLabel(name string) string {
	return fmt.Sprintf(".L.label.%s.%s", g.fn.Name, name)
}

// assignLvarOffsets lays out a function's locals below rbp, each aligned
// to its own type's alignment, and rounds the total frame to 16 bytes
// (spec.md §4.5).
func assignLvarOffsets(fn *ast.Function) {
	offset := 0
	for _, v := range fn.Locals {
		offset = types.AlignTo(offset+types.MustSizeOf(v.Ty), v.Ty.Align)
		v.Offset = -offset
	}
	fn.StackSize = types.AlignTo(offset, 16)
}

// --- data section ---

func (g *Generator) genData(prog *ast.Program) {
	for _, v := range prog.Globals {
		if !v.IsStatic {
			g.e.Directive(".globl %s", v.Name)
		}
	}
	if len(prog.Globals) == 0 {
		return
	}
	g.e.Directive(".data")
	for _, v := range prog.Globals {
		g.e.Directive(".align %d", v.Ty.Align)
		g.e.Label(v.Name)
		for _, chunk := range v.Init {
			switch chunk.Kind {
			case ast.InitByte:
				g.e.Directive(".byte %d", int8(chunk.IntVal))
			case ast.InitWord:
				g.e.Directive(".word %d", int16(chunk.IntVal))
			case ast.InitLong:
				g.e.Directive(".long %d", int32(chunk.IntVal))
			case ast.InitQuad:
				g.e.Directive(".quad %d", chunk.IntVal)
			case ast.InitLabel:
				g.e.Directive(".quad %s", chunk.Label)
			case ast.InitZero:
				g.e.Directive(".zero %d", chunk.Len)
			}
		}
	}
}

// --- function prologue / epilogue ---

func (g *Generator) genFunction(fn *ast.Function) {
	g.fn = fn
	g.returnLabel = fmt.Sprintf(".L.return.%s", fn.Name)
	g.breakLabels = nil
	g.continueLabels = nil

	if !fn.IsStatic {
		g.e.Directive(".globl %s", fn.Name)
	}
	g.e.Directive(".text")
	g.e.Label(fn.Name)

	g.e.Instr("push rbp")
	g.e.Instr("mov rbp, rsp")
	g.e.Instr("sub rsp, %d", fn.StackSize)

	for i, p := range fn.Params {
		g.storeParam(p, i)
	}

	for s := fn.Body; s != nil; s = s.Next {
		g.genStmt(s)
	}

	g.e.Label(g.returnLabel)
	g.e.Instr("mov rsp, rbp")
	g.e.Instr("pop rbp")
	g.e.Instr("ret")
}

func (g *Generator) storeParam(p *ast.Var, idx int) {
	g.e.Instr("lea rax, [rbp%+d]", p.Offset)
	switch types.MustSizeOf(p.Ty) {
	case 1:
		g.e.Instr("mov [rax], %s", argRegs8[idx])
	case 2:
		g.e.Instr("mov [rax], %s", argRegs16[idx])
	case 4:
		g.e.Instr("mov [rax], %s", argRegs32[idx])
	default:
		g.e.Instr("mov [rax], %s", argRegs64[idx])
	}
}

// --- statements ---

func (g *Generator) genStmt(n *ast.Node) {
	switch n.Kind {
	case ast.NullStmt:
		return
	case ast.ExprStmt:
		g.genExpr(n.Lhs)
		return
	case ast.Block:
		for s := n.Body; s != nil; s = s.Next {
			g.genStmt(s)
		}
		return
	case ast.Return:
		if n.Lhs != nil {
			g.genExpr(n.Lhs)
		}
		g.e.Instr("jmp %s", g.returnLabel)
		return
	case ast.If:
		g.genIf(n)
		return
	case ast.While:
		g.genLoop(nil, n.Cond, nil, n.Then)
		return
	case ast.For:
		g.genLoop(n.Init, n.Cond, n.Inc, n.Then)
		return
	case ast.Do:
		g.genDoWhile(n)
		return
	case ast.Switch:
		g.genSwitch(n)
		return
	case ast.Case:
		if n.CaseEndLabel != "" {
			g.e.Label(n.CaseEndLabel)
		}
		g.genStmt(n.Lhs)
		return
	case ast.Break:
		if len(g.breakLabels) == 0 {
			g.errorf(n, "break statement not within a loop or switch")
		}
		g.e.Instr("jmp %s", g.breakLabels[len(g.breakLabels)-1])
		return
	case ast.Continue:
		if len(g.continueLabels) == 0 {
			g.errorf(n, "continue statement not within a loop")
		}
		g.e.Instr("jmp %s", g.continueLabels[len(g.continueLabels)-1])
		return
	case ast.Goto:
		g.e.Instr("jmp %s", g.funcLabel(n.LabelName))
		return
	case ast.Label:
		g.e.Label(g.funcLabel(n.LabelName))
		g.genStmt(n.Lhs)
		return
	}
	g.errorf(n, "not a statement")
}

func (g *Generator) genIf(n *ast.Node) {
	endLabel := g.newLabel("endif")
	elseLabel := endLabel
	if n.Els != nil {
		elseLabel = g.newLabel("else")
	}

	g.genExpr(n.Cond)
	g.e.Instr("cmp rax, 0")
	g.e.Instr("je %s", elseLabel)
	g.genStmt(n.Then)
	if n.Els != nil {
		g.e.Instr("jmp %s", endLabel)
		g.e.Label(elseLabel)
		g.genStmt(n.Els)
	}
	g.e.Label(endLabel)
}

// genLoop implements while (init == nil, inc == nil) and for alike.
func (g *Generator) genLoop(init, cond, inc, body *ast.Node) {
	if init != nil {
		g.genStmt(init)
	}
	startLabel := g.newLabel("loop")
	contLabel := g.newLabel("continue")
	endLabel := g.newLabel("end")
	g.breakLabels = append(g.breakLabels, endLabel)
	g.continueLabels = append(g.continueLabels, contLabel)

	g.e.Label(startLabel)
	if cond != nil {
		g.genExpr(cond)
		g.e.Instr("cmp rax, 0")
		g.e.Instr("je %s", endLabel)
	}
	g.genStmt(body)
	g.e.Label(contLabel)
	if inc != nil {
		g.genExpr(inc)
	}
	g.e.Instr("jmp %s", startLabel)
	g.e.Label(endLabel)

	g.breakLabels = g.breakLabels[:len(g.breakLabels)-1]
	g.continueLabels = g.continueLabels[:len(g.continueLabels)-1]
}

func (g *Generator) genDoWhile(n *ast.Node) {
	startLabel := g.newLabel("do")
	contLabel := g.newLabel("continue")
	endLabel := g.newLabel("end")
	g.breakLabels = append(g.breakLabels, endLabel)
	g.continueLabels = append(g.continueLabels, contLabel)

	g.e.Label(startLabel)
	g.genStmt(n.Then)
	g.e.Label(contLabel)
	g.genExpr(n.Cond)
	g.e.Instr("cmp rax, 0")
	g.e.Instr("jne %s", startLabel)
	g.e.Label(endLabel)

	g.breakLabels = g.breakLabels[:len(g.breakLabels)-1]
	g.continueLabels = g.continueLabels[:len(g.continueLabels)-1]
}

// genSwitch compares the switch value against each case in source order
// (CaseNext was built newest-first by the parser, so it's reversed here),
// dispatches to the first match, and falls through to default or past the
// body when nothing matches (spec.md §4.5, §9's first-occurrence-wins
// rule for duplicate case constants).
func (g *Generator) genSwitch(n *ast.Node) {
	endLabel := g.newLabel("switch_end")
	g.breakLabels = append(g.breakLabels, endLabel)

	var cases []*ast.Node
	for c := n.CaseNext; c != nil; c = c.CaseNext {
		cases = append(cases, c)
	}
	for i, j := 0, len(cases)-1; i < j; i, j = i+1, j-1 {
		cases[i], cases[j] = cases[j], cases[i]
	}

	g.genExpr(n.Cond)
	for _, c := range cases {
		label := g.newLabel("case")
		c.CaseEndLabel = label
		g.e.Instr("cmp rax, %d", c.CaseLabel)
		g.e.Instr("je %s", label)
	}
	if n.DefaultCase != nil {
		label := g.newLabel("default")
		n.DefaultCase.CaseEndLabel = label
		g.e.Instr("jmp %s", label)
	} else {
		g.e.Instr("jmp %s", endLabel)
	}

	g.genStmt(n.Then)
	g.e.Label(endLabel)

	g.breakLabels = g.breakLabels[:len(g.breakLabels)-1]
}

// --- expressions ---

func (g *Generator) push() { g.e.Instr("push rax") }
func (g *Generator) pop(reg string) { g.e.Instr("pop %s", reg) }

func (g *Generator) genAddr(n *ast.Node) {
	switch n.Kind {
	case ast.Var_:
		if n.V.IsLocal {
			g.e.Instr("lea rax, [rbp%+d]", n.V.Offset)
		} else {
			g.e.Instr("lea rax, [rip + %s]", n.V.Name)
		}
		return
	case ast.Deref:
		g.genExpr(n.Lhs)
		return
	case ast.Member:
		g.genAddr(n.Lhs)
		g.e.Instr("add rax, %d", n.MemberInfo.Offset)
		return
	case ast.Comma:
		g.genExpr(n.Lhs)
		g.genAddr(n.Rhs)
		return
	case ast.Cast:
		g.genAddr(n.Lhs)
		return
	}
	g.errorf(n, "not an lvalue")
}

// load reads the value addressed by rax into rax, sign/zero-extending
// sub-quadword integer types. Arrays, structs, and functions decay to
// their own address, so loading one is a no-op (spec.md §4.4, §4.5).
func (g *Generator) load(ty *types.Type) {
	switch ty.Kind {
	case types.Array, types.Struct, types.Func:
		return
	case types.Bool, types.Char:
		g.e.Instr("movsx eax, byte ptr [rax]")
	case types.Short:
		g.e.Instr("movsx eax, word ptr [rax]")
	case types.Int, types.Enum:
		g.e.Instr("movsxd rax, dword ptr [rax]")
	default:
		g.e.Instr("mov rax, [rax]")
	}
}

// store pops an address into rdi and writes rax (sized to ty, normalized
// to 0/1 first for _Bool) to [rdi].
func (g *Generator) store(ty *types.Type) {
	g.pop("rdi")
	g.storeRaw(ty, "rdi")
}

// storeRaw writes rax to [addr] without touching the evaluation stack;
// used directly by the increment/decrement operators, which keep the
// address in a scratch register instead of spilling it.
func (g *Generator) storeRaw(ty *types.Type, addr string) {
	if ty.Kind == types.Struct || ty.Kind == types.Array {
		for i := 0; i < ty.Size; i++ {
			g.e.Instr("mov r8b, [rax+%d]", i)
			g.e.Instr("mov [%s+%d], r8b", addr, i)
		}
		g.e.Instr("mov rax, %s", addr)
		return
	}
	if ty.Kind == types.Bool {
		g.e.Instr("cmp rax, 0")
		g.e.Instr("setne al")
		g.e.Instr("movzx rax, al")
	}
	switch types.MustSizeOf(ty) {
	case 1:
		g.e.Instr("mov byte ptr [%s], al", addr)
	case 2:
		g.e.Instr("mov word ptr [%s], ax", addr)
	case 4:
		g.e.Instr("mov dword ptr [%s], eax", addr)
	default:
		g.e.Instr("mov qword ptr [%s], rax", addr)
	}
}

// castTo narrows or widens rax from one integer representation to
// another, matching the width/sign rules of a C cast (spec.md §4.5).
func (g *Generator) castTo(from, to *types.Type) {
	if to.Kind == types.Void {
		return
	}
	if to.Kind == types.Bool {
		g.e.Instr("cmp rax, 0")
		g.e.Instr("setne al")
		g.e.Instr("movzx eax, al")
		return
	}
	switch types.MustSizeOf(to) {
	case 1:
		g.e.Instr("movsx eax, al")
	case 2:
		g.e.Instr("movsx eax, ax")
	case 4:
		g.e.Instr("movsxd rax, eax")
	default:
		if !from.HasBase() && from.Kind != types.Long && types.MustSizeOf(from) <= 4 {
			g.e.Instr("movsxd rax, eax")
		}
	}
}

var compareSetcc = map[ast.Kind]string{
	ast.Eq: "sete", ast.Ne: "setne", ast.Lt: "setl", ast.Le: "setle",
}

func (g *Generator) genExpr(n *ast.Node) {
	switch n.Kind {
	case ast.Num:
		g.e.Instr("movabs rax, %d", n.Val)
		return
	case ast.Neg:
		g.genExpr(n.Lhs)
		g.e.Instr("neg rax")
		return
	case ast.Var_, ast.Member:
		g.genAddr(n)
		g.load(n.Ty)
		return
	case ast.Deref:
		g.genExpr(n.Lhs)
		g.load(n.Ty)
		return
	case ast.Addr:
		g.genAddr(n.Lhs)
		return
	case ast.Assign:
		g.genAddr(n.Lhs)
		g.push()
		g.genExpr(n.Rhs)
		g.store(n.Ty)
		return
	case ast.AddAssign, ast.SubAssign, ast.MulAssign, ast.DivAssign, ast.ShlAssign, ast.ShrAssign:
		g.genCompoundAssign(n)
		return
	case ast.PreInc:
		g.genPreIncDec(n, 1)
		return
	case ast.PreDec:
		g.genPreIncDec(n, -1)
		return
	case ast.PostInc:
		g.genPostIncDec(n, 1)
		return
	case ast.PostDec:
		g.genPostIncDec(n, -1)
		return
	case ast.StmtExpr:
		// The statement-expression's value is that of its last
		// statement; genStmt(ExprStmt) already leaves a value in rax.
		for s := n.Body; s != nil; s = s.Next {
			g.genStmt(s)
		}
		return
	case ast.Comma:
		g.genExpr(n.Lhs)
		g.genExpr(n.Rhs)
		return
	case ast.Cast:
		g.genExpr(n.Lhs)
		g.castTo(n.Lhs.Ty, n.Ty)
		return
	case ast.Cond:
		g.genCond(n)
		return
	case ast.Not:
		g.genExpr(n.Lhs)
		g.e.Instr("cmp rax, 0")
		g.e.Instr("sete al")
		g.e.Instr("movzx rax, al")
		return
	case ast.BitNot:
		g.genExpr(n.Lhs)
		g.e.Instr("not rax")
		return
	case ast.LogAnd:
		g.genLogAnd(n)
		return
	case ast.LogOr:
		g.genLogOr(n)
		return
	case ast.Funcall:
		g.genFuncall(n)
		return
	}

	// Binary arithmetic / bitwise / shift / comparison: evaluate rhs
	// first and spill it, so lhs ends up in rax and rhs in rdi — matches
	// original_source/codegen.c's evaluation order.
	g.genExpr(n.Rhs)
	g.push()
	g.genExpr(n.Lhs)
	g.pop("rdi")

	switch n.Kind {
	case ast.Add:
		if n.Ty.HasBase() {
			g.e.Instr("imul rdi, %d", types.MustSizeOf(n.Ty.Base))
		}
		g.e.Instr("add rax, rdi")
	case ast.Sub:
		if n.Ty.HasBase() {
			g.e.Instr("imul rdi, %d", types.MustSizeOf(n.Ty.Base))
		}
		g.e.Instr("sub rax, rdi")
	case ast.Mul:
		g.e.Instr("imul rax, rdi")
	case ast.Div:
		g.e.Instr("cqo")
		g.e.Instr("idiv rdi")
	case ast.Mod:
		g.e.Instr("cqo")
		g.e.Instr("idiv rdi")
		g.e.Instr("mov rax, rdx")
	case ast.BitAnd:
		g.e.Instr("and rax, rdi")
	case ast.BitOr:
		g.e.Instr("or rax, rdi")
	case ast.BitXor:
		g.e.Instr("xor rax, rdi")
	case ast.Shl:
		g.e.Instr("mov rcx, rdi")
		g.e.Instr("shl rax, cl")
	case ast.Shr:
		g.e.Instr("mov rcx, rdi")
		g.e.Instr("sar rax, cl")
	case ast.Eq, ast.Ne, ast.Lt, ast.Le:
		g.e.Instr("cmp rax, rdi")
		g.e.Instr("%s al", compareSetcc[n.Kind])
		g.e.Instr("movzx rax, al")
	default:
		g.errorf(n, "not an expression")
	}
}

var compoundOp = map[ast.Kind]ast.Kind{
	ast.AddAssign: ast.Add, ast.SubAssign: ast.Sub, ast.MulAssign: ast.Mul,
	ast.DivAssign: ast.Div, ast.ShlAssign: ast.Shl, ast.ShrAssign: ast.Shr,
}

// genCompoundAssign evaluates "lhs op= rhs" by loading lhs's current
// value once, folding in rhs, and storing the result back through the
// same address (spec.md §4.5).
func (g *Generator) genCompoundAssign(n *ast.Node) {
	op := compoundOp[n.Kind]

	g.genAddr(n.Lhs)
	g.push()
	g.e.Instr("mov rax, [rsp]")
	g.load(n.Lhs.Ty)
	g.push()
	g.genExpr(n.Rhs)
	g.e.Instr("mov rdi, rax")
	g.pop("rax")

	switch op {
	case ast.Add:
		if n.Lhs.Ty.HasBase() {
			g.e.Instr("imul rdi, %d", types.MustSizeOf(n.Lhs.Ty.Base))
		}
		g.e.Instr("add rax, rdi")
	case ast.Sub:
		if n.Lhs.Ty.HasBase() {
			g.e.Instr("imul rdi, %d", types.MustSizeOf(n.Lhs.Ty.Base))
		}
		g.e.Instr("sub rax, rdi")
	case ast.Mul:
		g.e.Instr("imul rax, rdi")
	case ast.Div:
		g.e.Instr("cqo")
		g.e.Instr("idiv rdi")
	case ast.Shl:
		g.e.Instr("mov rcx, rdi")
		g.e.Instr("shl rax, cl")
	case ast.Shr:
		g.e.Instr("mov rcx, rdi")
		g.e.Instr("sar rax, cl")
	}
	g.store(n.Lhs.Ty)
}

func (g *Generator) genPreIncDec(n *ast.Node, delta int64) {
	elemSize := int64(1)
	if n.Lhs.Ty.HasBase() {
		elemSize = int64(types.MustSizeOf(n.Lhs.Ty.Base))
	}
	g.genAddr(n.Lhs)
	g.e.Instr("mov r10, rax")
	g.load(n.Lhs.Ty)
	g.e.Instr("add rax, %d", delta*elemSize)
	g.storeRaw(n.Lhs.Ty, "r10")
}

func (g *Generator) genPostIncDec(n *ast.Node, delta int64) {
	elemSize := int64(1)
	if n.Lhs.Ty.HasBase() {
		elemSize = int64(types.MustSizeOf(n.Lhs.Ty.Base))
	}
	g.genAddr(n.Lhs)
	g.e.Instr("mov r10, rax")
	g.load(n.Lhs.Ty)
	g.e.Instr("mov r11, rax")
	g.e.Instr("add rax, %d", delta*elemSize)
	g.storeRaw(n.Lhs.Ty, "r10")
	g.e.Instr("mov rax, r11")
}

func (g *Generator) genCond(n *ast.Node) {
	elseLabel := g.newLabel("cond_else")
	endLabel := g.newLabel("cond_end")
	g.genExpr(n.Cond)
	g.e.Instr("cmp rax, 0")
	g.e.Instr("je %s", elseLabel)
	g.genExpr(n.Then)
	g.e.Instr("jmp %s", endLabel)
	g.e.Label(elseLabel)
	g.genExpr(n.Els)
	g.e.Label(endLabel)
}

func (g *Generator) genLogAnd(n *ast.Node) {
	falseLabel := g.newLabel("and_false")
	endLabel := g.newLabel("and_end")
	g.genExpr(n.Lhs)
	g.e.Instr("cmp rax, 0")
	g.e.Instr("je %s", falseLabel)
	g.genExpr(n.Rhs)
	g.e.Instr("cmp rax, 0")
	g.e.Instr("je %s", falseLabel)
	g.e.Instr("mov rax, 1")
	g.e.Instr("jmp %s", endLabel)
	g.e.Label(falseLabel)
	g.e.Instr("mov rax, 0")
	g.e.Label(endLabel)
}

func (g *Generator) genLogOr(n *ast.Node) {
	trueLabel := g.newLabel("or_true")
	endLabel := g.newLabel("or_end")
	g.genExpr(n.Lhs)
	g.e.Instr("cmp rax, 0")
	g.e.Instr("jne %s", trueLabel)
	g.genExpr(n.Rhs)
	g.e.Instr("cmp rax, 0")
	g.e.Instr("jne %s", trueLabel)
	g.e.Instr("mov rax, 0")
	g.e.Instr("jmp %s", endLabel)
	g.e.Label(trueLabel)
	g.e.Instr("mov rax, 1")
	g.e.Label(endLabel)
}

// genFuncall evaluates arguments left to right, spills each to the stack,
// then pops them into the System V integer argument registers in
// right-to-left order so side effects still happen left to right. The
// call site itself runtime-checks rsp's 16-byte alignment rather than
// relying on static push/pop parity tracking, which a goto or a switch's
// multiple entry points can defeat (spec.md §4.5, §9).
func (g *Generator) genFuncall(n *ast.Node) {
	var args []*ast.Node
	for a := n.Args; a != nil; a = a.Next {
		args = append(args, a)
	}
	if len(args) > 6 {
		g.errorf(n, "function call has more than 6 arguments")
	}

	// Pair each argument with the register it will land in, goat's
	// []lo.Tuple2[int, Parameter] stack-building pattern adapted from
	// offset/Parameter pairs to register/argument-node pairs.
	var slots []lo.Tuple2[string, *ast.Node]
	for i, a := range args {
		slots = append(slots, lo.Tuple2[string, *ast.Node]{A: argRegs64[i], B: a})
	}

	for _, slot := range slots {
		g.genExpr(slot.B)
		g.push()
	}
	for _, slot := range lo.Reverse(slots) {
		g.pop(slot.A)
	}

	adjust := g.newLabel("call_adjust")
	done := g.newLabel("call_done")
	g.e.Instr("mov rax, rsp")
	g.e.Instr("and rax, 15")
	g.e.Instr("jnz %s", adjust)
	g.e.Instr("mov rax, 0")
	g.e.Instr("call %s", n.FuncName)
	g.e.Instr("jmp %s", done)
	g.e.Label(adjust)
	g.e.Instr("sub rsp, 8")
	g.e.Instr("mov rax, 0")
	g.e.Instr("call %s", n.FuncName)
	g.e.Instr("add rsp, 8")
	g.e.Label(done)
}
