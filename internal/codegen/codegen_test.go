package codegen

import (
	"testing"

	"github.com/gmofishsauce/cc9/internal/ast"
	"github.com/gmofishsauce/cc9/internal/types"
)

// TestAssignLvarOffsetsAlignsAndPacks exercises spec.md §4.5's stack-frame
// layout: each local is packed downward from rbp, rounded to its own
// alignment, and the frame size itself is rounded up to 16.
func TestAssignLvarOffsetsAlignsAndPacks(t *testing.T) {
	// Declared order a, b, c; Locals carries them most-recently-declared
	// first (the parser's prepend discipline), so c, b, a.
	a := &ast.Var{Name: "a", Ty: types.NewChar()}
	b := &ast.Var{Name: "b", Ty: types.NewInt()}
	c := &ast.Var{Name: "c", Ty: types.NewChar()}
	fn := &ast.Function{Locals: []*ast.Var{c, b, a}}

	assignLvarOffsets(fn)

	if c.Offset != -1 {
		t.Errorf("c.Offset = %d, want -1", c.Offset)
	}
	if b.Offset != -8 {
		t.Errorf("b.Offset = %d, want -8 (aligned up to 4 from 5)", b.Offset)
	}
	if a.Offset != -9 {
		t.Errorf("a.Offset = %d, want -9", a.Offset)
	}
	if fn.StackSize != 16 {
		t.Errorf("StackSize = %d, want 16", fn.StackSize)
	}
}

func TestAssignLvarOffsetsEmptyFrame(t *testing.T) {
	fn := &ast.Function{}
	assignLvarOffsets(fn)
	if fn.StackSize != 0 {
		t.Errorf("StackSize = %d, want 0", fn.StackSize)
	}
}
