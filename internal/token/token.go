// Package token defines the lexical token representation shared by the
// lexer and parser.
package token

// Kind is the tag of a Token variant.
type Kind int

const (
	Reserved Kind = iota // punctuator or keyword; Text holds the spelling
	Ident
	Str
	Num
	EOF
)

func (k Kind) String() string {
	switch k {
	case Reserved:
		return "RESERVED"
	case Ident:
		return "IDENT"
	case Str:
		return "STRING"
	case Num:
		return "NUM"
	case EOF:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}

// Token is one lexical token. Tokens form a singly-linked sequence via Next,
// terminated by a Kind == EOF token. The lexer never copies identifier or
// punctuator text out of the source buffer; Text is a slice of it. String
// literals are the one case where contents are decoded into an owned byte
// slice, since escapes change their length and contents.
type Token struct {
	Kind Kind
	Next *Token

	// Offset and Text locate this token in the source buffer, for
	// diagnostics and for re-deriving the spelling of identifiers and
	// punctuators.
	Offset int
	Text   string

	Val int64 // decoded value, for Kind == Num

	Str    []byte // decoded contents, for Kind == Str (includes trailing NUL)
	StrLen int
}

// Is reports whether t is a Reserved token spelled exactly s.
func (t *Token) Is(s string) bool {
	return t != nil && t.Kind == Reserved && t.Text == s
}

// IsIdent reports whether t is an identifier, optionally matching name.
func (t *Token) IsIdent(name string) bool {
	if t == nil || t.Kind != Ident {
		return false
	}
	return name == "" || t.Text == name
}

// Keywords is the fixed keyword table. A maximal identifier candidate is
// looked up here after being read; if found, the token is tagged Reserved
// instead of Ident so the parser can dispatch on Text with the same
// machinery it uses for punctuators.
var Keywords = map[string]bool{
	"return": true, "if": true, "else": true, "while": true, "for": true,
	"do": true, "int": true, "char": true, "short": true, "long": true,
	"void": true, "_Bool": true, "enum": true, "struct": true,
	"typedef": true, "static": true, "sizeof": true, "switch": true,
	"case": true, "default": true, "break": true, "continue": true,
	"goto": true,
}

// Punctuators is tried in this exact order by the lexer: longest-match
// first, so that e.g. "<<=" is recognized before "<<" before "<".
var Punctuators = []string{
	"<<=", ">>=",
	"==", "!=", "<=", ">=", "->", "++", "--",
	"+=", "-=", "*=", "/=", "<<", ">>", "&&", "||",
	"+", "-", "*", "&", "/", "%", "(", ")", "<", ">", ";", "=",
	"{", "}", ",", "[", "]", ".", "!", "~", "^", "|", "?", ":",
}
