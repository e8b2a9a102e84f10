package layout

import (
	"sable/internal/target"
	"sable/internal/types"
)

// TypeLayout is the ABI layout of a type for a specific Target.
type TypeLayout struct {
	Size  uint64 // bytes
	Align uint64 // bytes
	Bits  uint64 // exact bit size, <= Size*8

	// Struct-only: byte offsets per field in declared order (extern/auto).
	FieldOffsets []uint64
}

// Engine computes memory layout for types against one target.
type Engine struct {
	Target target.Target
	Types  *types.Interner

	cache map[types.TypeID]TypeLayout
}

// New creates a layout engine for the specified target.
func New(tgt target.Target, typesIn *types.Interner) *Engine {
	return &Engine{
		Target: tgt,
		Types:  typesIn,
		cache:  make(map[types.TypeID]TypeLayout, 256),
	}
}

// LayoutOf computes and caches the layout of a type.
func (e *Engine) LayoutOf(t types.TypeID) (TypeLayout, error) {
	if cached, ok := e.cache[t]; ok {
		return cached, nil
	}
	l, err := e.computeLayout(t)
	if err != nil {
		return l, err
	}
	e.cache[t] = l
	return l, nil
}

// ABISize returns the size of a type in bytes.
func (e *Engine) ABISize(t types.TypeID) (uint64, error) {
	l, err := e.LayoutOf(t)
	return l.Size, err
}

// ABIAlign returns the alignment requirement of a type in bytes.
func (e *Engine) ABIAlign(t types.TypeID) (uint64, error) {
	l, err := e.LayoutOf(t)
	return l.Align, err
}

// BitSize returns the exact number of value bits a type occupies.
func (e *Engine) BitSize(t types.TypeID) (uint64, error) {
	l, err := e.LayoutOf(t)
	return l.Bits, err
}

// FieldOffset returns the byte offset of a struct field under the struct's
// extern/auto layout.
func (e *Engine) FieldOffset(structT types.TypeID, fieldIdx int) (uint64, error) {
	l, err := e.LayoutOf(structT)
	if err != nil {
		return 0, err
	}
	if fieldIdx < 0 || fieldIdx >= len(l.FieldOffsets) {
		return 0, nil
	}
	return l.FieldOffsets[fieldIdx], nil
}

// PackedFieldBitOffset returns the running bit offset of a packed struct
// field: the sum of the bit sizes of all preceding fields in declared order.
func (e *Engine) PackedFieldBitOffset(structT types.TypeID, fieldIdx int) (uint64, error) {
	info, ok := e.Types.StructInfo(structT)
	if !ok {
		return 0, &Error{Kind: ErrUnknownType, Type: structT}
	}
	var off uint64
	for i, f := range info.Fields {
		if i == fieldIdx {
			break
		}
		bits, err := e.BitSize(f.Type)
		if err != nil {
			return 0, err
		}
		off += bits
	}
	return off, nil
}
