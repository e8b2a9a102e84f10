package value

import (
	"fmt"

	"sable/internal/types"
)

// scalarOp computes one lane of an elementwise operation. args hold the
// scalar operands for that lane.
type scalarOp func(scalarTy types.TypeID, args []Value) (Value, error)

// mapLanes is the single driver behind every vector operation: when ty is a
// vector it applies op per lane over the operands' lanes and interns the
// results as an aggregate; otherwise it applies op once. A failing lane
// aborts the whole operation.
func (p *Pool) mapLanes(ty types.TypeID, args []Value, op scalarOp) (Value, error) {
	lanes, ok := p.Types.VectorLen(ty)
	if !ok {
		return op(ty, args)
	}
	elemTy := p.Types.Elem(ty)
	elems := make([]Index, lanes)
	scratch := make([]Value, len(args))
	for lane := range elems {
		for i, a := range args {
			scratch[i] = p.ElemValue(a, uint64(lane))
		}
		r, err := op(elemTy, scratch)
		if err != nil {
			return Value{}, err
		}
		elems[lane] = r.idx
	}
	return FromIndex(p.Intern(AggregateKey{Type: ty, Storage: AggElems, Elems: elems})), nil
}

// ElemValue returns element i of an array, vector or struct value.
func (p *Pool) ElemValue(v Value, i uint64) Value {
	if !v.IsInterned() {
		switch pl := v.payload.(type) {
		case *BytesPayload:
			return p.UintValue(p.Types.Builtins().U8, uint64(pl.Data[i]))
		case *AggregatePayload:
			return pl.Elems[i]
		case *SubValuePayload:
			return pl.Val
		default:
			panic(fmt.Sprintf("value: ElemValue on payload %T", v.payload))
		}
	}
	switch k := v.Key(p).(type) {
	case UndefKey:
		return p.UndefValue(p.Types.Elem(k.Type))
	case AggregateKey:
		switch k.Storage {
		case AggBytes:
			return p.UintValue(p.Types.Builtins().U8, uint64(k.Bytes[i]))
		case AggElems:
			return FromIndex(k.Elems[i])
		case AggRepeated:
			return FromIndex(k.Repeated)
		}
	}
	panic("value: ElemValue on non-aggregate value")
}

// FieldValue returns field i of a struct or union value. For unions the
// active payload is returned regardless of i; callers are expected to have
// checked the tag.
func (p *Pool) FieldValue(v Value, i uint64) Value {
	if !v.IsInterned() {
		if pl, ok := v.payload.(*UnionPayload); ok {
			return pl.Val
		}
		return p.ElemValue(v, i)
	}
	if k, ok := v.Key(p).(UnionKey); ok {
		return FromIndex(k.Val)
	}
	return p.ElemValue(v, i)
}

// ElemPtr derives a pointer to element i of the pointee. Slice pointers are
// first narrowed to their pointer half.
func (p *Pool) ElemPtr(ptr Value, elemPtrTy types.TypeID, i uint64) Value {
	base := ptr.idx
	if k, ok := ptr.Key(p).(PtrKey); ok && k.Len.IsValid() {
		base = p.SlicePtr(base)
	}
	return FromIndex(p.Intern(PtrKey{
		Type: elemPtrTy,
		Addr: AddrElem,
		Base: base,
		Off:  i,
	}))
}

// FieldPtr derives a pointer to field i of the pointee.
func (p *Pool) FieldPtr(ptr Value, fieldPtrTy types.TypeID, i uint64) Value {
	return FromIndex(p.Intern(PtrKey{
		Type: fieldPtrTy,
		Addr: AddrField,
		Base: ptr.idx,
		Off:  i,
	}))
}

// SliceArray takes the [start, start+length) window of an array value,
// producing a value of the narrower array type ty.
func (p *Pool) SliceArray(v Value, ty types.TypeID, start, length uint64) Value {
	if !v.IsInterned() {
		switch pl := v.payload.(type) {
		case *BytesPayload:
			return FromPayload(&BytesPayload{Data: pl.Data[start : start+length]})
		case *AggregatePayload:
			return FromPayload(&AggregatePayload{Elems: pl.Elems[start : start+length]})
		case *SubValuePayload:
			return v
		default:
			panic(fmt.Sprintf("value: SliceArray on payload %T", v.payload))
		}
	}
	switch k := v.Key(p).(type) {
	case UndefKey:
		return p.UndefValue(ty)
	case AggregateKey:
		out := AggregateKey{Type: ty, Storage: k.Storage}
		switch k.Storage {
		case AggBytes:
			out.Bytes = k.Bytes[start : start+length]
		case AggElems:
			out.Elems = k.Elems[start : start+length]
		case AggRepeated:
			out.Repeated = k.Repeated
		}
		return FromIndex(p.Intern(out))
	}
	panic("value: SliceArray on non-aggregate value")
}
