// Package codegen walks a decorated AST and emits GNU-assembler,
// Intel-syntax x86-64 text targeting the System V AMD64 ABI (spec.md
// §4.5).
//
// Emitter is grounded on lang/ygen/emit.go's shape: a bufio.Writer wrapped
// with small Instr/Label/Directive helpers instead of raw Fprintf calls
// scattered through the generator, adapted from WUT-4's three-operand
// fixed-width instruction set to x86-64's variable-operand Intel-syntax
// mnemonics.
package codegen

import (
	"bufio"
	"fmt"
	"io"
)

// Register name tables for the System V integer argument registers, one
// row per operand width (spec.md §4.5's width-correct store rule applies
// to parameter spill as much as to ordinary loads/stores).
var (
	argRegs64 = [6]string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}
	argRegs32 = [6]string{"edi", "esi", "edx", "ecx", "r8d", "r9d"}
	argRegs16 = [6]string{"di", "si", "dx", "cx", "r8w", "r9w"}
	argRegs8  = [6]string{"dil", "sil", "dl", "cl", "r8b", "r9b"}
)

// Emitter renders assembly text to an underlying writer.
type Emitter struct {
	out *bufio.Writer
}

func newEmitter(w io.Writer) *Emitter {
	return &Emitter{out: bufio.NewWriter(w)}
}

// Instr emits one indented instruction line.
func (e *Emitter) Instr(format string, args ...any) {
	fmt.Fprintf(e.out, "  %s\n", fmt.Sprintf(format, args...))
}

// Directive emits one indented assembler directive line.
func (e *Emitter) Directive(format string, args ...any) {
	fmt.Fprintf(e.out, "  %s\n", fmt.Sprintf(format, args...))
}

// Label emits a label definition at column zero.
func (e *Emitter) Label(name string) {
	fmt.Fprintf(e.out, "%s:\n", name)
}

// Flush flushes buffered output; callers must call this once generation
// completes.
func (e *Emitter) Flush() error {
	return e.out.Flush()
}
