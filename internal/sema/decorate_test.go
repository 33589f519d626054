package sema

import (
	"testing"

	"github.com/gmofishsauce/cc9/internal/ast"
	"github.com/gmofishsauce/cc9/internal/diag"
	"github.com/gmofishsauce/cc9/internal/types"
)

func newDecorator() *Decorator {
	return New(diag.New("test.c", ""))
}

func TestNumLiteralTypeBoundary(t *testing.T) {
	tests := []struct {
		val      int64
		wantKind types.Kind
	}{
		{2147483647, types.Int},
		{2147483648, types.Long},
		{-2147483648, types.Int},
		{-2147483649, types.Long},
	}
	for _, tt := range tests {
		n := &ast.Node{Kind: ast.Num, Val: tt.val}
		newDecorator().Type(n)
		if n.Ty.Kind != tt.wantKind {
			t.Errorf("numLiteralType(%d) = %v, want %v", tt.val, n.Ty.Kind, tt.wantKind)
		}
	}
}

// TestPointerArithmeticOperandSwap exercises spec.md §4.4's rule that
// "int + pointer" is normalized to "pointer + int" so codegen's binary-op
// tail only ever needs to scale the right-hand operand.
func TestPointerArithmeticOperandSwap(t *testing.T) {
	intLit := &ast.Node{Kind: ast.Num, Val: 1}
	ptrVar := &ast.Node{Kind: ast.Var_, V: &ast.Var{Ty: types.PointerTo(types.NewInt())}}
	add := &ast.Node{Kind: ast.Add, Lhs: intLit, Rhs: ptrVar}

	newDecorator().Type(add)

	if add.Lhs != ptrVar || add.Rhs != intLit {
		t.Error("expected operands swapped so the pointer operand is Lhs")
	}
	if add.Ty.Kind != types.Ptr {
		t.Errorf("Ty.Kind = %v, want Ptr", add.Ty.Kind)
	}
}

// TestArrayDecayOnAddr confirms &array yields a pointer to the element
// type, not a pointer to the array type itself.
func TestArrayDecayOnAddr(t *testing.T) {
	arrVar := &ast.Node{Kind: ast.Var_, V: &ast.Var{Ty: types.ArrayOf(types.NewInt(), 4)}}
	addr := &ast.Node{Kind: ast.Addr, Lhs: arrVar}

	newDecorator().Type(addr)

	if addr.Ty.Kind != types.Ptr || addr.Ty.Base.Kind != types.Int {
		t.Errorf("Ty = %+v, want *int", addr.Ty)
	}
}

// TestSizeofRewritesNodeInPlace confirms no Sizeof node survives
// decoration: it is rewritten to a folded integer literal.
func TestSizeofRewritesNodeInPlace(t *testing.T) {
	operand := &ast.Node{Kind: ast.Var_, V: &ast.Var{Ty: types.NewInt()}}
	sz := &ast.Node{Kind: ast.Sizeof, Lhs: operand}

	newDecorator().Type(sz)

	if sz.Kind != ast.Num {
		t.Errorf("Kind = %v, want Num after decoration", sz.Kind)
	}
	if sz.Val != 4 {
		t.Errorf("Val = %d, want 4", sz.Val)
	}
	if sz.Lhs != nil {
		t.Error("Lhs should be discarded once folded")
	}
}

// TestSizeofTypeNameRewritesNodeInPlace covers the sizeof(type-name) form
// (e.g. sizeof(int)), which carries its operand type in ParsedType rather
// than Lhs. It must fold exactly like the sizeof-expression form.
func TestSizeofTypeNameRewritesNodeInPlace(t *testing.T) {
	sz := &ast.Node{Kind: ast.Sizeof, ParsedType: types.NewInt()}

	newDecorator().Type(sz)

	if sz.Kind != ast.Num {
		t.Errorf("Kind = %v, want Num after decoration", sz.Kind)
	}
	if sz.Val != 4 {
		t.Errorf("Val = %d, want 4", sz.Val)
	}
}

// TestCastDecoratesOperandSubtree confirms a Cast node's operand is
// actually typed, not skipped because the Cast node itself arrives with
// ParsedType (not Ty) already set.
func TestCastDecoratesOperandSubtree(t *testing.T) {
	operand := &ast.Node{Kind: ast.Var_, V: &ast.Var{Ty: types.NewInt()}}
	cast := &ast.Node{Kind: ast.Cast, Lhs: operand, ParsedType: types.NewLong()}

	newDecorator().Type(cast)

	if operand.Ty == nil {
		t.Fatal("cast operand was never decorated")
	}
	if operand.Ty.Kind != types.Int {
		t.Errorf("operand.Ty.Kind = %v, want Int", operand.Ty.Kind)
	}
	if cast.Ty == nil || cast.Ty.Kind != types.Long {
		t.Errorf("cast.Ty = %+v, want Long", cast.Ty)
	}
}

// TestIdempotentVisitSkipsAlreadyTypedNode exercises the "skip if .Ty !=
// nil" rule a constant-expression-folded sizeof relies on: visiting a
// node whose Ty is already set must not re-run its typing rule.
func TestIdempotentVisitSkipsAlreadyTypedNode(t *testing.T) {
	n := &ast.Node{Kind: ast.Num, Val: 1, Ty: types.NewLong()}
	newDecorator().Type(n)
	if n.Ty.Kind != types.Long {
		t.Errorf("Ty.Kind = %v, want Long (unchanged)", n.Ty.Kind)
	}
}

func TestMemberAccessResolvesOffsetAndType(t *testing.T) {
	structTy := types.NewIncompleteStruct()
	types.CompleteStruct(structTy, []*types.Member{
		{Name: "a", Ty: types.NewChar()},
		{Name: "b", Ty: types.NewInt()},
	})
	lhs := &ast.Node{Kind: ast.Var_, V: &ast.Var{Ty: structTy}}
	member := &ast.Node{Kind: ast.Member, Lhs: lhs, MemberName: "b"}

	newDecorator().Type(member)

	if member.MemberInfo == nil || member.MemberInfo.Offset != 4 {
		t.Errorf("MemberInfo = %+v, want offset 4", member.MemberInfo)
	}
	if member.Ty.Kind != types.Int {
		t.Errorf("Ty.Kind = %v, want Int", member.Ty.Kind)
	}
}
