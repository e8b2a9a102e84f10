package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// ContainerLayout selects how a struct/union lays out its fields.
type ContainerLayout uint8

const (
	LayoutAuto ContainerLayout = iota
	LayoutExtern
	LayoutPacked
)

func (l ContainerLayout) String() string {
	switch l {
	case LayoutAuto:
		return "auto"
	case LayoutExtern:
		return "extern"
	case LayoutPacked:
		return "packed"
	default:
		return fmt.Sprintf("ContainerLayout(%d)", l)
	}
}

// Field describes a single field inside a struct or union.
type Field struct {
	Name string
	Type TypeID
}

// StructInfo stores metadata for a struct type.
type StructInfo struct {
	Name   string
	Layout ContainerLayout
	Fields []Field
}

// UnionInfo stores metadata for a union type. Tag is the enum type used to
// discriminate the active field; its value order parallels Fields.
type UnionInfo struct {
	Name   string
	Layout ContainerLayout
	Tag    TypeID
	Fields []Field
}

// EnumInfo stores metadata for an enum type. Tag is the backing integer type.
type EnumInfo struct {
	Name string
	Tag  TypeID
}

// ErrorSetInfo stores the error names a set admits, in declaration order.
type ErrorSetInfo struct {
	Names []string
}

// RegisterStruct allocates a nominal struct type and returns its TypeID.
func (in *Interner) RegisterStruct(name string, layout ContainerLayout, fields []Field) TypeID {
	slot := in.appendSlot(len(in.structs))
	in.structs = append(in.structs, StructInfo{Name: name, Layout: layout, Fields: slices.Clone(fields)})
	return in.internRaw(Type{Kind: KindStruct, Payload: slot})
}

// RegisterUnion allocates a nominal union type and returns its TypeID.
func (in *Interner) RegisterUnion(name string, layout ContainerLayout, tag TypeID, fields []Field) TypeID {
	slot := in.appendSlot(len(in.unions))
	in.unions = append(in.unions, UnionInfo{Name: name, Layout: layout, Tag: tag, Fields: slices.Clone(fields)})
	return in.internRaw(Type{Kind: KindUnion, Payload: slot})
}

// RegisterEnum allocates a nominal enum type backed by the given integer type.
func (in *Interner) RegisterEnum(name string, tag TypeID) TypeID {
	slot := in.appendSlot(len(in.enums))
	in.enums = append(in.enums, EnumInfo{Name: name, Tag: tag})
	return in.internRaw(Type{Kind: KindEnum, Payload: slot})
}

// RegisterErrorSet allocates an error set over the given names.
func (in *Interner) RegisterErrorSet(names []string) TypeID {
	slot := in.appendSlot(len(in.errorSets))
	in.errorSets = append(in.errorSets, ErrorSetInfo{Names: slices.Clone(names)})
	return in.internRaw(Type{Kind: KindErrorSet, Payload: slot})
}

func (in *Interner) appendSlot(n int) uint32 {
	slot, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("side table overflow: %w", err))
	}
	return slot
}

// StructInfo returns metadata for the provided struct TypeID.
func (in *Interner) StructInfo(id TypeID) (*StructInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindStruct || tt.Payload == 0 || int(tt.Payload) >= len(in.structs) {
		return nil, false
	}
	return &in.structs[tt.Payload], true
}

// UnionInfo returns metadata for the provided union TypeID.
func (in *Interner) UnionInfo(id TypeID) (*UnionInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindUnion || tt.Payload == 0 || int(tt.Payload) >= len(in.unions) {
		return nil, false
	}
	return &in.unions[tt.Payload], true
}

// EnumInfo returns metadata for the provided enum TypeID.
func (in *Interner) EnumInfo(id TypeID) (*EnumInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindEnum || tt.Payload == 0 || int(tt.Payload) >= len(in.enums) {
		return nil, false
	}
	return &in.enums[tt.Payload], true
}

// ErrorSetInfo returns metadata for the provided error set TypeID.
func (in *Interner) ErrorSetInfo(id TypeID) (*ErrorSetInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindErrorSet || tt.Payload == 0 || int(tt.Payload) >= len(in.errorSets) {
		return nil, false
	}
	return &in.errorSets[tt.Payload], true
}

// IntInfo describes a fixed-width integer type.
type IntInfo struct {
	Signed bool
	Bits   uint16
}

// IntInfo reports signedness and width for int and enum types. Enums answer
// with their backing tag's info.
func (in *Interner) IntInfo(id TypeID) (IntInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok {
		return IntInfo{}, false
	}
	switch tt.Kind {
	case KindInt:
		return IntInfo{Signed: tt.Signed, Bits: tt.Bits}, true
	case KindBool:
		return IntInfo{Signed: false, Bits: 1}, true
	case KindEnum:
		info, ok := in.EnumInfo(id)
		if !ok {
			return IntInfo{}, false
		}
		return in.IntInfo(info.Tag)
	default:
		return IntInfo{}, false
	}
}

// FloatBits returns the declared float width, or 0 for non-floats.
func (in *Interner) FloatBits(id TypeID) uint16 {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindFloat {
		return 0
	}
	return tt.Bits
}

// Elem returns the element/child type of arrays, vectors, pointers,
// optionals and error unions.
func (in *Interner) Elem(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if !ok {
		return NoTypeID
	}
	switch tt.Kind {
	case KindArray, KindVector, KindPointer, KindOptional, KindErrorUnion:
		return tt.Elem
	default:
		return NoTypeID
	}
}

// ArrayLen returns the length of a fixed array type.
func (in *Interner) ArrayLen(id TypeID) (uint32, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindArray {
		return 0, false
	}
	return tt.Count, true
}

// VectorLen returns the lane count of a vector type.
func (in *Interner) VectorLen(id TypeID) (uint32, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindVector {
		return 0, false
	}
	return tt.Count, true
}

// PtrInfo describes a pointer type.
type PtrInfo struct {
	Size PtrSize
	Elem TypeID
}

// PtrInfo returns the size class and pointee for a pointer type.
func (in *Interner) PtrInfo(id TypeID) (PtrInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindPointer {
		return PtrInfo{}, false
	}
	return PtrInfo{Size: tt.Ptr, Elem: tt.Elem}, true
}

// ErrorUnionParts returns the error set and payload type of an error union.
func (in *Interner) ErrorUnionParts(id TypeID) (errSet, payload TypeID, ok bool) {
	tt, found := in.Lookup(id)
	if !found || tt.Kind != KindErrorUnion {
		return NoTypeID, NoTypeID, false
	}
	return tt.Extra, tt.Elem, true
}
