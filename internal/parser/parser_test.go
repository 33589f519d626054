package parser

import (
	"testing"

	"github.com/gmofishsauce/cc9/internal/ast"
	"github.com/gmofishsauce/cc9/internal/diag"
	"github.com/gmofishsauce/cc9/internal/lexer"
	"github.com/gmofishsauce/cc9/internal/sema"
	"github.com/gmofishsauce/cc9/internal/types"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	d := diag.New("test.c", src)
	toks := lexer.New(d).Tokenize()
	prog := Parse(d, toks)
	sema.New(d).Decorate(prog)
	return prog
}

func findGlobal(prog *ast.Program, name string) *ast.Var {
	for _, g := range prog.Globals {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// TestCharArrayStringInitCompletesLength exercises spec.md §8's
// "char x[] = \"ab\"" boundary case: the array completes to length 3 (two
// characters plus the trailing NUL baked into every string literal).
func TestCharArrayStringInitCompletesLength(t *testing.T) {
	prog := parse(t, `char x[] = "ab";`)
	x := findGlobal(prog, "x")
	if x == nil {
		t.Fatal("global x not found")
	}
	if x.Ty.ArrayLen != 3 {
		t.Errorf("ArrayLen = %d, want 3", x.Ty.ArrayLen)
	}
	if x.Ty.Size != 3 {
		t.Errorf("Size = %d, want 3", x.Ty.Size)
	}
}

// TestSizeofSizeofIsInt exercises spec.md §8's "sizeof(sizeof(x)) == 4":
// sizeof always folds to an int-typed constant, so the outer sizeof
// measures a 4-byte int.
func TestSizeofSizeofIsInt(t *testing.T) {
	prog := parse(t, `
int main() {
  int x;
  return sizeof(sizeof(x));
}
`)
	fn := prog.Funcs[0]
	var ret *ast.Node
	for n := fn.Body.Body; n != nil; n = n.Next {
		if n.Kind == ast.Return {
			ret = n
		}
	}
	if ret == nil {
		t.Fatal("return statement not found")
	}
	if ret.Lhs.Val != 4 {
		t.Errorf("sizeof(sizeof(x)) = %d, want 4", ret.Lhs.Val)
	}
}

// TestForwardDeclaredStructPointerMember confirms a pointer to a
// forward-declared struct observes the completed member layout once the
// body is parsed later in the same translation unit (the boxed-Type
// identity invariant).
func TestForwardDeclaredStructPointerMember(t *testing.T) {
	prog := parse(t, `
struct node;
struct node { int val; struct node *next; };
int main() {
  struct node n;
  n.val = 1;
  return n.val;
}
`)
	fn := prog.Funcs[0]
	if fn == nil {
		t.Fatal("main not found")
	}
	var nVar *ast.Var
	for _, lv := range fn.Locals {
		if lv.Name == "n" {
			nVar = lv
		}
	}
	if nVar == nil {
		t.Fatal("local n not found")
	}
	if nVar.Ty.IsIncomplete {
		t.Error("struct node still incomplete at use site")
	}
	next := types.FindMember(nVar.Ty, "next")
	if next == nil {
		t.Fatal("member next not found")
	}
	if next.Ty.Kind != types.Ptr {
		t.Errorf("next.Ty.Kind = %v, want Ptr", next.Ty.Kind)
	}
}

// TestSwitchCaseLabelsInSourceOrder confirms the parser's prepend-during-
// parse CaseNext chain holds every case newest-first, so that reading it
// back to front (as the code generator does) yields source order, matching
// the first-occurrence-wins duplicate-label rule.
func TestSwitchCaseLabelsInSourceOrder(t *testing.T) {
	prog := parse(t, `
int main() {
  int x;
  x = 1;
  switch (x) {
  case 1: return 1;
  case 2: return 2;
  }
  return 0;
}
`)
	fn := prog.Funcs[0]
	var sw *ast.Node
	for n := fn.Body.Body; n != nil; n = n.Next {
		if n.Kind == ast.Switch {
			sw = n
		}
	}
	if sw == nil {
		t.Fatal("switch not found")
	}
	var labels []int64
	for c := sw.CaseNext; c != nil; c = c.CaseNext {
		labels = append(labels, c.CaseLabel)
	}
	if len(labels) != 2 {
		t.Fatalf("got %d case labels, want 2", len(labels))
	}
	if labels[1] != 1 || labels[0] != 2 {
		t.Errorf("case chain = %v, want [2 1] (newest first, source order when reversed)", labels)
	}
}

func TestConstExprFoldsArithmetic(t *testing.T) {
	prog := parse(t, `int arr[2 + 3];`)
	arr := findGlobal(prog, "arr")
	if arr == nil {
		t.Fatal("global arr not found")
	}
	if arr.Ty.ArrayLen != 5 {
		t.Errorf("ArrayLen = %d, want 5", arr.Ty.ArrayLen)
	}
}
