// Package types constructs and queries the compiler's type descriptors:
// size, alignment, struct member layout, and array/pointer decay targets.
//
// Struct types are boxed behind the *Type pointer identity itself (spec.md
// §9's "box each type behind a stable handle"): a forward-declared struct
// installs one *Type into the tag scope, and completing the definition
// mutates that same pointer's Members/Size/Align/IsIncomplete fields in
// place, so every earlier reference (through a pointer type, say) observes
// the completed struct without being revisited.
package types

import (
	"fmt"

	"github.com/samber/lo"
)

// Kind is the tag of a Type variant.
type Kind int

const (
	Void Kind = iota
	Bool
	Char
	Short
	Int
	Long
	Enum
	Ptr
	Array
	Struct
	Func
)

func (k Kind) String() string {
	switch k {
	case Void:
		return "void"
	case Bool:
		return "_Bool"
	case Char:
		return "char"
	case Short:
		return "short"
	case Int:
		return "int"
	case Long:
		return "long"
	case Enum:
		return "enum"
	case Ptr:
		return "pointer"
	case Array:
		return "array"
	case Struct:
		return "struct"
	case Func:
		return "function"
	default:
		return "?"
	}
}

// Member is one field of a struct, in declaration order.
type Member struct {
	Name   string
	Ty     *Type
	Offset int
	// Tok records the offset into the source where the member was
	// declared, for diagnostics; 0 when synthesized.
	Tok int
}

// Type is a tagged type descriptor. Pointer/array types carry Base; array
// types additionally carry ArrayLen and IsIncomplete (an array declared
// without a bound, pending completion from an initializer). Struct types
// carry Members; IsIncomplete on a struct tracks "tag seen, body not yet
// parsed" separately from whatever scope entry refers to it, so a forward
// reference can be patched in place once the body is parsed. Func types
// carry only a return type; parameter types live on ast.Function.
//
// IsTypedef and IsStatic are storage-class flags that the parser does not
// set: parser.basetype returns typedef/static separately, so a shared
// struct or typedef'd *Type is never marked by one declaration's storage
// class.
type Type struct {
	Kind  Kind
	Size  int
	Align int

	Base     *Type
	ArrayLen int

	Members []*Member

	IsIncomplete bool
	IsTypedef    bool
	IsStatic     bool
}

func NewVoid() *Type { return &Type{Kind: Void, Size: 1, Align: 1} }
func NewBool() *Type { return &Type{Kind: Bool, Size: 1, Align: 1} }
func NewChar() *Type { return &Type{Kind: Char, Size: 1, Align: 1} }
func NewShort() *Type { return &Type{Kind: Short, Size: 2, Align: 2} }
func NewInt() *Type  { return &Type{Kind: Int, Size: 4, Align: 4} }
func NewLong() *Type { return &Type{Kind: Long, Size: 8, Align: 8} }
func NewEnum() *Type { return &Type{Kind: Enum, Size: 4, Align: 4} }

// NewIncompleteStruct allocates the boxed, not-yet-complete struct type
// installed when a tag is first seen (forward declaration or first use).
func NewIncompleteStruct() *Type {
	return &Type{Kind: Struct, IsIncomplete: true}
}

// CompleteStruct fills in ty in place (ty must be the same pointer that
// was installed in the tag scope for this tag) with laid-out members.
// Member offsets are assigned in declaration order, each offset rounded up
// to the member's alignment; the struct's own size is the last member's
// offset+size rounded up to the struct's alignment, which is the max
// member alignment.
func CompleteStruct(ty *Type, members []*Member) {
	offset := 0
	align := 1
	for _, m := range members {
		offset = AlignTo(offset, m.Ty.Align)
		m.Offset = offset
		offset += m.Ty.Size
		if m.Ty.Align > align {
			align = m.Ty.Align
		}
	}
	ty.Members = members
	ty.Align = align
	ty.Size = AlignTo(offset, align)
	ty.IsIncomplete = false
}

// PointerTo returns a new pointer-to-base type. Pointers are always 8
// bytes, 8-byte aligned, regardless of the pointee.
func PointerTo(base *Type) *Type {
	return &Type{Kind: Ptr, Size: 8, Align: 8, Base: base}
}

// ArrayOf returns a new array-of-base type with the given element count.
// len < 0 marks the array incomplete (bound pending an initializer).
func ArrayOf(base *Type, length int) *Type {
	if length < 0 {
		return &Type{Kind: Array, Base: base, Align: base.Align, IsIncomplete: true}
	}
	return &Type{Kind: Array, Base: base, ArrayLen: length, Align: base.Align, Size: base.Size * length}
}

// FuncType returns a new function type with the given return type.
func FuncType(ret *Type) *Type {
	return &Type{Kind: Func, Base: ret}
}

// IsInteger reports whether ty is one of the scalar integer kinds.
func (ty *Type) IsInteger() bool {
	switch ty.Kind {
	case Bool, Char, Short, Int, Long, Enum:
		return true
	default:
		return false
	}
}

// HasBase reports whether ty decays to or already is an address-like type
// (pointer or array) — the §4.4 "operand has a base" test for pointer
// arithmetic and unary &/*.
func (ty *Type) HasBase() bool {
	return ty.Kind == Ptr || ty.Kind == Array
}

// AlignTo rounds n up to the nearest multiple of a, which must be a power
// of two.
func AlignTo(n, a int) int {
	return (n + a - 1) &^ (a - 1)
}

// SizeOf returns ty's total size in bytes. It is a diagnostic to call this
// on void or on a type that is still incomplete.
func SizeOf(ty *Type) (int, error) {
	if ty.Kind == Void {
		return 0, fmt.Errorf("invalid application of 'sizeof' to incomplete type 'void'")
	}
	if ty.IsIncomplete {
		return 0, fmt.Errorf("invalid application of 'sizeof' to an incomplete type")
	}
	return ty.Size, nil
}

// MustSizeOf is SizeOf for callers (codegen, already-decorated nodes) that
// have established ty is complete and non-void.
func MustSizeOf(ty *Type) int {
	n, err := SizeOf(ty)
	if err != nil {
		panic(err)
	}
	return n
}

// FindMember looks up name in ty's member list, first match wins, in
// declaration order. Returns nil if ty is not a struct or has no such
// member.
func FindMember(ty *Type, name string) *Member {
	if ty.Kind != Struct {
		return nil
	}
	return lo.FindOrElse(ty.Members, nil, func(m *Member) bool {
		return m.Name == name
	})
}
