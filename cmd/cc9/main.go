// Command cc9 compiles a single C source file to x86-64 GNU-assembler
// text on stdout (spec.md §6).
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gmofishsauce/cc9/internal/compiler"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "cc9 source-file",
		Short: "cc9 compiles one C source file to x86-64 assembly",
		Args:  cobra.ExactArgs(1),
		Run:   run,
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "cc9: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) {
	filename := args[0]

	buf, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cc9: %v\n", err)
		os.Exit(1)
	}

	text := string(buf)
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	if err := compiler.Compile(filename, text, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "cc9: %v\n", err)
		os.Exit(1)
	}
}
