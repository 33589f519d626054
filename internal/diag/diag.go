// Package diag formats and reports the single fatal diagnostic that ends a
// compilation. There is no recovery and no multi-error accumulation: the
// first call to Fatal or FatalAt terminates the process with status 1.
//
// The formatting convention (file:line: source line, caret under the
// column) is adapted from lang/parse/parser.go's (*Parser).error /
// errorAt, which format file:line-prefixed messages; this version adds the
// source-line-and-caret rendering spec.md §7 requires and drops the
// teacher's panic-mode error list in favor of fail-fast.
package diag

import (
	"fmt"
	"os"
	"strings"
)

// Source holds the buffer a set of diagnostics are located against.
type Source struct {
	Filename string
	Text     string
}

// New wraps a filename and source buffer for later diagnostics.
func New(filename, text string) *Source {
	return &Source{Filename: filename, Text: text}
}

// lineAt returns the 1-based line number and the full text of the line
// containing byte offset pos, plus pos's column within that line.
func (s *Source) lineAt(pos int) (line int, lineText string, col int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(s.Text) {
		pos = len(s.Text)
	}
	line = 1
	lineStart := 0
	for i := 0; i < pos; i++ {
		if s.Text[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	lineEnd := strings.IndexByte(s.Text[lineStart:], '\n')
	if lineEnd < 0 {
		lineText = s.Text[lineStart:]
	} else {
		lineText = s.Text[lineStart : lineStart+lineEnd]
	}
	col = pos - lineStart
	return
}

// FatalAt reports a located diagnostic and exits the process with status 1.
func (s *Source) FatalAt(pos int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	line, lineText, col := s.lineAt(pos)
	fmt.Fprintf(os.Stderr, "%s:%d: %s\n", s.Filename, line, lineText)
	fmt.Fprintf(os.Stderr, "%s^ %s\n", strings.Repeat(" ", col), msg)
	os.Exit(1)
}

// Fatal reports a diagnostic with no source location (the null-token case:
// spec.md §9 specifies printing the message without source context, then
// exiting 1) and exits the process with status 1.
func Fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "cc9: %s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
