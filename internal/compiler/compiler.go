// Package compiler wires the lexer, parser, semantic decorator, and code
// generator into the single entry point the CLI calls (spec.md §6).
package compiler

import (
	"io"

	"github.com/gmofishsauce/cc9/internal/codegen"
	"github.com/gmofishsauce/cc9/internal/diag"
	"github.com/gmofishsauce/cc9/internal/lexer"
	"github.com/gmofishsauce/cc9/internal/parser"
	"github.com/gmofishsauce/cc9/internal/sema"
)

// Compile translates the C source named by filename into x86-64 GNU
// assembler text, written to w. Any lexical, syntactic, or semantic error
// is fatal: cc9 reports it to stderr and exits immediately rather than
// collecting further diagnostics (spec.md §7).
func Compile(filename, text string, w io.Writer) error {
	src := diag.New(filename, text)

	tokens := lexer.New(src).Tokenize()
	prog := parser.Parse(src, tokens)
	sema.New(src).Decorate(prog)
	return codegen.Generate(prog, src, w)
}
