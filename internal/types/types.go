package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindBool
	KindInt
	KindComptimeInt
	KindFloat
	KindPointer
	KindArray
	KindVector
	KindStruct
	KindUnion
	KindOptional
	KindErrorUnion
	KindErrorSet
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindComptimeInt:
		return "comptime_int"
	case KindFloat:
		return "float"
	case KindPointer:
		return "pointer"
	case KindArray:
		return "array"
	case KindVector:
		return "vector"
	case KindStruct:
		return "struct"
	case KindUnion:
		return "union"
	case KindOptional:
		return "optional"
	case KindErrorUnion:
		return "error_union"
	case KindErrorSet:
		return "error_set"
	case KindEnum:
		return "enum"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// PtrSize classifies how a pointer addresses its pointee.
type PtrSize uint8

const (
	PtrSingle PtrSize = iota
	PtrMany
	PtrC
	PtrSlice
)

// Type is a compact descriptor for any supported type. Nominal kinds
// (struct, union, enum, error set) carry a side-table slot in Payload and
// are never deduplicated against each other.
type Type struct {
	Kind    Kind
	Elem    TypeID  // array/vector element, pointer child, optional child, error-union payload
	Extra   TypeID  // error-union error set
	Count   uint32  // array/vector length
	Bits    uint16  // int/float bit width
	Signed  bool    // ints only
	Ptr     PtrSize // pointers only
	Payload uint32  // side-table slot for nominal kinds
}

// MakeInt describes a fixed-width integer.
func MakeInt(bits uint16, signed bool) Type {
	return Type{Kind: KindInt, Bits: bits, Signed: signed}
}

// MakeFloat describes a float of one of the five supported widths.
func MakeFloat(bits uint16) Type {
	return Type{Kind: KindFloat, Bits: bits}
}

// MakeArray describes a fixed-length array.
func MakeArray(elem TypeID, count uint32) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}

// MakeVector describes a SIMD-style vector of scalar lanes.
func MakeVector(elem TypeID, lanes uint32) Type {
	return Type{Kind: KindVector, Elem: elem, Count: lanes}
}

// MakePointer describes a pointer with the given size class.
func MakePointer(elem TypeID, size PtrSize) Type {
	return Type{Kind: KindPointer, Elem: elem, Ptr: size}
}

// MakeOptional describes ?T.
func MakeOptional(child TypeID) Type {
	return Type{Kind: KindOptional, Elem: child}
}

// MakeErrorUnion describes E!T with error set E and payload T.
func MakeErrorUnion(errSet, payload TypeID) Type {
	return Type{Kind: KindErrorUnion, Elem: payload, Extra: errSet}
}
