package lexer

import (
	"testing"

	"github.com/gmofishsauce/cc9/internal/diag"
	"github.com/gmofishsauce/cc9/internal/token"
)

func tokenize(t *testing.T, src string) *token.Token {
	t.Helper()
	return New(diag.New("test.c", src)).Tokenize()
}

func TestPunctuatorLongestMatch(t *testing.T) {
	tok := tokenize(t, "a <<= b;\n")
	// skip "a"
	tok = tok.Next
	if !tok.Is("<<=") {
		t.Fatalf("Text = %q, want %q", tok.Text, "<<=")
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		src  string
		want int64
	}{
		{"42;\n", 42},
		{"0x2A;\n", 42},
		{"052;\n", 42}, // octal
		{"2147483648;\n", 2147483648},
	}
	for _, tt := range tests {
		tok := tokenize(t, tt.src)
		if tok.Kind != token.Num || tok.Val != tt.want {
			t.Errorf("tokenize(%q) = {%s %d}, want Num %d", tt.src, tok.Kind, tok.Val, tt.want)
		}
	}
}

func TestStringLiteralIncludesTrailingNUL(t *testing.T) {
	tok := tokenize(t, `"ab";` + "\n")
	if tok.Kind != token.Str {
		t.Fatalf("Kind = %s, want STRING", tok.Kind)
	}
	if tok.StrLen != 3 {
		t.Errorf("StrLen = %d, want 3 (2 chars + NUL)", tok.StrLen)
	}
	want := []byte{'a', 'b', 0}
	if string(tok.Str) != string(want) {
		t.Errorf("Str = %v, want %v", tok.Str, want)
	}
}

func TestStringEscapes(t *testing.T) {
	tok := tokenize(t, `"a\nb\\"` + ";\n")
	want := []byte{'a', '\n', 'b', '\\', 0}
	if string(tok.Str) != string(want) {
		t.Errorf("Str = %v, want %v", tok.Str, want)
	}
}

func TestCharLiteral(t *testing.T) {
	tok := tokenize(t, "'a';\n")
	if tok.Val != int64('a') {
		t.Errorf("'a' = %d, want %d", tok.Val, int64('a'))
	}
}

func TestKeywordsAreReserved(t *testing.T) {
	tok := tokenize(t, "return\n")
	if tok.Kind != token.Reserved {
		t.Errorf("Kind = %s, want RESERVED for keyword", tok.Kind)
	}
}

func TestIdentVsKeyword(t *testing.T) {
	tok := tokenize(t, "returnValue\n")
	if tok.Kind != token.Ident {
		t.Errorf("Kind = %s, want IDENT", tok.Kind)
	}
}

func TestLineCommentAndBlockComment(t *testing.T) {
	tok := tokenize(t, "// comment\n/* block */ 7;\n")
	if tok.Kind != token.Num || tok.Val != 7 {
		t.Errorf("first non-comment token = {%s %d}, want Num 7", tok.Kind, tok.Val)
	}
}

func TestTokenChainEndsInEOF(t *testing.T) {
	tok := tokenize(t, "1;\n")
	for tok.Next != nil {
		tok = tok.Next
	}
	if tok.Kind != token.EOF {
		t.Errorf("last token Kind = %s, want EOF", tok.Kind)
	}
}
