package types

import "testing"

func TestScalarSizesAndAlign(t *testing.T) {
	tests := []struct {
		name      string
		ty        *Type
		wantSize  int
		wantAlign int
	}{
		{"void", NewVoid(), 1, 1},
		{"_Bool", NewBool(), 1, 1},
		{"char", NewChar(), 1, 1},
		{"short", NewShort(), 2, 2},
		{"int", NewInt(), 4, 4},
		{"long", NewLong(), 8, 8},
		{"enum", NewEnum(), 4, 4},
		{"pointer", PointerTo(NewChar()), 8, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.ty.Size != tt.wantSize {
				t.Errorf("Size = %d, want %d", tt.ty.Size, tt.wantSize)
			}
			if tt.ty.Align != tt.wantAlign {
				t.Errorf("Align = %d, want %d", tt.ty.Align, tt.wantAlign)
			}
		})
	}
}

func TestArrayOf(t *testing.T) {
	arr := ArrayOf(NewInt(), 5)
	if arr.Size != 20 {
		t.Errorf("Size = %d, want 20", arr.Size)
	}
	if arr.Align != 4 {
		t.Errorf("Align = %d, want 4", arr.Align)
	}
	if !arr.HasBase() {
		t.Error("array HasBase() = false, want true")
	}

	incomplete := ArrayOf(NewChar(), -1)
	if !incomplete.IsIncomplete {
		t.Error("negative length array should be incomplete")
	}
}

func TestPointerHasBase(t *testing.T) {
	if !PointerTo(NewInt()).HasBase() {
		t.Error("pointer HasBase() = false, want true")
	}
	if NewInt().HasBase() {
		t.Error("int HasBase() = true, want false")
	}
}

// TestCompleteStructPadding exercises a classic alignment-padding case:
// "char; int; char;" lays out to offsets 0, 4, 8 with trailing pad to 12.
func TestCompleteStructPadding(t *testing.T) {
	ty := NewIncompleteStruct()
	members := []*Member{
		{Name: "a", Ty: NewChar()},
		{Name: "b", Ty: NewInt()},
		{Name: "c", Ty: NewChar()},
	}
	CompleteStruct(ty, members)

	if ty.IsIncomplete {
		t.Error("struct still incomplete after CompleteStruct")
	}
	if members[0].Offset != 0 {
		t.Errorf("a.Offset = %d, want 0", members[0].Offset)
	}
	if members[1].Offset != 4 {
		t.Errorf("b.Offset = %d, want 4", members[1].Offset)
	}
	if members[2].Offset != 8 {
		t.Errorf("c.Offset = %d, want 8", members[2].Offset)
	}
	if ty.Align != 4 {
		t.Errorf("Align = %d, want 4", ty.Align)
	}
	if ty.Size != 12 {
		t.Errorf("Size = %d, want 12", ty.Size)
	}
}

// TestCompleteStructPreservesIdentity confirms the forward-declared-struct
// boxing invariant: completing ty in place must not require callers to
// rebind the pointer they already hold for this tag.
func TestCompleteStructPreservesIdentity(t *testing.T) {
	ty := NewIncompleteStruct()
	ptrToTy := PointerTo(ty)

	CompleteStruct(ty, []*Member{{Name: "x", Ty: NewInt()}})

	if ptrToTy.Base.IsIncomplete {
		t.Error("pointer's Base still reports incomplete after CompleteStruct")
	}
	if ptrToTy.Base.Size != 4 {
		t.Errorf("pointer's Base.Size = %d, want 4", ptrToTy.Base.Size)
	}
}

func TestFindMember(t *testing.T) {
	ty := NewIncompleteStruct()
	CompleteStruct(ty, []*Member{
		{Name: "x", Ty: NewInt()},
		{Name: "y", Ty: NewInt()},
	})

	if m := FindMember(ty, "y"); m == nil || m.Offset != 4 {
		t.Errorf("FindMember(y) = %+v, want offset 4", m)
	}
	if m := FindMember(ty, "z"); m != nil {
		t.Errorf("FindMember(z) = %+v, want nil", m)
	}
	if m := FindMember(NewInt(), "x"); m != nil {
		t.Errorf("FindMember on non-struct = %+v, want nil", m)
	}
}

func TestAlignTo(t *testing.T) {
	tests := []struct{ n, a, want int }{
		{0, 8, 0},
		{1, 8, 8},
		{8, 8, 8},
		{9, 8, 16},
		{3, 4, 4},
	}
	for _, tt := range tests {
		if got := AlignTo(tt.n, tt.a); got != tt.want {
			t.Errorf("AlignTo(%d, %d) = %d, want %d", tt.n, tt.a, got, tt.want)
		}
	}
}

func TestSizeOfIncompleteIsError(t *testing.T) {
	if _, err := SizeOf(NewVoid()); err == nil {
		t.Error("SizeOf(void) should error")
	}
	if _, err := SizeOf(ArrayOf(NewChar(), -1)); err == nil {
		t.Error("SizeOf(incomplete array) should error")
	}
	if _, err := SizeOf(NewInt()); err != nil {
		t.Errorf("SizeOf(int) unexpected error: %v", err)
	}
}
