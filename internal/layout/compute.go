package layout

import (
	"sable/internal/types"
)

func scalarLayout(bytes uint64, bits uint64) TypeLayout {
	return TypeLayout{Size: bytes, Align: bytes, Bits: bits}
}

// intContainerBytes is the ABI size of an integer of the given bit width:
// the byte count rounded up to the next power of two.
func intContainerBytes(bits uint64) uint64 {
	if bits == 0 {
		return 0
	}
	bytes := (bits + 7) / 8
	n := uint64(1)
	for n < bytes {
		n <<= 1
	}
	return n
}

func capAlign(size uint64) uint64 {
	if size == 0 {
		return 1
	}
	if size > 16 {
		return 16
	}
	return size
}

func (e *Engine) ptrLayout() TypeLayout {
	pb := e.Target.PtrBytes()
	return TypeLayout{Size: pb, Align: pb, Bits: pb * 8}
}

func (e *Engine) intLayout(bits uint64) TypeLayout {
	size := intContainerBytes(bits)
	return TypeLayout{Size: size, Align: capAlign(size), Bits: bits}
}

func (e *Engine) computeLayout(id types.TypeID) (TypeLayout, error) {
	tt, ok := e.Types.Lookup(id)
	if !ok {
		return TypeLayout{}, &Error{Kind: ErrUnknownType, Type: id}
	}

	switch tt.Kind {
	case types.KindVoid:
		return TypeLayout{Size: 0, Align: 1, Bits: 0}, nil

	case types.KindBool:
		return TypeLayout{Size: 1, Align: 1, Bits: 1}, nil

	case types.KindInt:
		return e.intLayout(uint64(tt.Bits)), nil

	case types.KindComptimeInt:
		return TypeLayout{}, &Error{Kind: ErrNotSized, Type: id}

	case types.KindFloat:
		if tt.Bits == 80 {
			// x87 extended real: 80 value bits in a 16-byte slot.
			return TypeLayout{Size: 16, Align: 16, Bits: 80}, nil
		}
		b := uint64(tt.Bits) / 8
		return scalarLayout(b, uint64(tt.Bits)), nil

	case types.KindPointer:
		if tt.Ptr == types.PtrSlice {
			pb := e.Target.PtrBytes()
			return TypeLayout{Size: 2 * pb, Align: pb, Bits: 2 * pb * 8}, nil
		}
		return e.ptrLayout(), nil

	case types.KindArray:
		elem, err := e.LayoutOf(tt.Elem)
		if err != nil {
			return TypeLayout{}, err
		}
		n := uint64(tt.Count)
		return TypeLayout{Size: elem.Size * n, Align: elem.Align, Bits: elem.Size * n * 8}, nil

	case types.KindVector:
		elem, err := e.LayoutOf(tt.Elem)
		if err != nil {
			return TypeLayout{}, err
		}
		bits := elem.Bits * uint64(tt.Count)
		size := intContainerBytes(bits)
		return TypeLayout{Size: size, Align: capAlign(size), Bits: bits}, nil

	case types.KindStruct:
		info, ok := e.Types.StructInfo(id)
		if !ok {
			return TypeLayout{}, &Error{Kind: ErrUnknownType, Type: id}
		}
		if info.Layout == types.LayoutPacked {
			return e.packedFieldsLayout(info.Fields, false)
		}
		return e.structLayout(info.Fields)

	case types.KindUnion:
		info, ok := e.Types.UnionInfo(id)
		if !ok {
			return TypeLayout{}, &Error{Kind: ErrUnknownType, Type: id}
		}
		if info.Layout == types.LayoutPacked {
			return e.packedFieldsLayout(info.Fields, true)
		}
		return e.unionLayout(info)

	case types.KindOptional:
		child, err := e.LayoutOf(tt.Elem)
		if err != nil {
			return TypeLayout{}, err
		}
		if e.Types.KindOf(tt.Elem) == types.KindPointer {
			// Null pointer doubles as the "none" marker.
			return child, nil
		}
		size := child.Size + child.Align
		return TypeLayout{Size: size, Align: child.Align, Bits: size * 8}, nil

	case types.KindErrorSet:
		return e.intLayout(16), nil

	case types.KindErrorUnion:
		payload, err := e.LayoutOf(tt.Elem)
		if err != nil {
			return TypeLayout{}, err
		}
		errL := e.intLayout(16)
		align := max(payload.Align, errL.Align)
		size := alignForward(payload.Size, errL.Align) + errL.Size
		size = alignForward(size, align)
		return TypeLayout{Size: size, Align: align, Bits: size * 8}, nil

	case types.KindEnum:
		info, ok := e.Types.EnumInfo(id)
		if !ok {
			return TypeLayout{}, &Error{Kind: ErrUnknownType, Type: id}
		}
		return e.LayoutOf(info.Tag)

	default:
		return TypeLayout{}, &Error{Kind: ErrNotSized, Type: id}
	}
}

func alignForward(n, align uint64) uint64 {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}

// structLayout applies C struct rules: each field at the next offset aligned
// to its own alignment, total size padded to the struct's alignment.
func (e *Engine) structLayout(fields []types.Field) (TypeLayout, error) {
	var (
		offset  uint64
		align   uint64 = 1
		offsets        = make([]uint64, 0, len(fields))
	)
	for _, f := range fields {
		fl, err := e.LayoutOf(f.Type)
		if err != nil {
			return TypeLayout{}, err
		}
		offset = alignForward(offset, fl.Align)
		offsets = append(offsets, offset)
		offset += fl.Size
		align = max(align, fl.Align)
	}
	size := alignForward(offset, align)
	return TypeLayout{Size: size, Align: align, Bits: size * 8, FieldOffsets: offsets}, nil
}

// packedFieldsLayout sums field bit widths (struct) or takes their max
// (union); the container is the integer that holds that many bits.
func (e *Engine) packedFieldsLayout(fields []types.Field, isUnion bool) (TypeLayout, error) {
	var bits uint64
	for _, f := range fields {
		fb, err := e.BitSize(f.Type)
		if err != nil {
			return TypeLayout{}, err
		}
		if isUnion {
			bits = max(bits, fb)
		} else {
			bits += fb
		}
	}
	size := intContainerBytes(bits)
	return TypeLayout{Size: size, Align: capAlign(size), Bits: bits}, nil
}

func (e *Engine) unionLayout(info *types.UnionInfo) (TypeLayout, error) {
	var (
		size  uint64
		align uint64 = 1
	)
	for _, f := range info.Fields {
		fl, err := e.LayoutOf(f.Type)
		if err != nil {
			return TypeLayout{}, err
		}
		size = max(size, fl.Size)
		align = max(align, fl.Align)
	}
	size = alignForward(size, align)
	return TypeLayout{Size: size, Align: align, Bits: size * 8}, nil
}
