package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// DeclID identifies a named struct or union declaration.
type DeclID uint32

// NoDeclID marks the absence of a declaration.
const NoDeclID DeclID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindOwn
	KindRef
	KindArray
	KindStruct
	KindUnion
	KindExcRecord
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindOwn:
		return "own"
	case KindRef:
		return "ref"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	case KindUnion:
		return "union"
	case KindExcRecord:
		return "excrecord"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integers/floats.
type Width uint8

const (
	WidthAny Width = 0
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
)

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind  Kind
	Elem  TypeID // element for own/ref/array
	Count uint32 // for arrays
	Width Width  // for numeric primitives
	Decl  DeclID // for structs and unions
}

// Field is one named component of a struct or union variant.
type Field struct {
	Name string
	Type TypeID
}

// StructInfo describes a named struct declaration.
type StructInfo struct {
	Name    string
	Fields  []Field
	HasDtor bool // the type declares its own destructor hook
}

// Variant is one alternative of a tagged union.
type Variant struct {
	Name   string
	Fields []Field
}

// UnionInfo describes a named tagged-union declaration.
type UnionInfo struct {
	Name     string
	Variants []Variant
	HasDtor  bool
}

// MakeInt returns an int descriptor of the requested width.
func MakeInt(w Width) Type {
	return Type{Kind: KindInt, Width: w}
}

// MakeUint returns a uint descriptor of the requested width.
func MakeUint(w Width) Type {
	return Type{Kind: KindUint, Width: w}
}

// MakeFloat returns a float descriptor of the requested width.
func MakeFloat(w Width) Type {
	return Type{Kind: KindFloat, Width: w}
}

// MakeOwn returns an owning-pointer descriptor over elem.
func MakeOwn(elem TypeID) Type {
	return Type{Kind: KindOwn, Elem: elem}
}

// MakeRef returns a borrowed-reference descriptor over elem.
func MakeRef(elem TypeID) Type {
	return Type{Kind: KindRef, Elem: elem}
}

// MakeArray returns a fixed-length array descriptor.
func MakeArray(elem TypeID, count uint32) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}
