package value

import (
	"fmt"
	"slices"

	"sable/internal/types"
)

// Payload is the legacy, non-deduplicated heap representation kept alive
// for call sites not yet migrated to the intern pool. The kind set is
// closed and shrinking; new code must only construct interned values.
// A payload is exclusively owned by its Value; sharing requires Copy.
type Payload interface {
	isPayload()
}

// BytesPayload owns a raw byte string, sentinel included when present.
type BytesPayload struct {
	Data []byte
}

func (*BytesPayload) isPayload() {}

// SubValueKind says what a single-child wrapper payload means.
type SubValueKind uint8

const (
	// SubRepeated repeats the child for every element of the owning type.
	SubRepeated SubValueKind = iota
	// SubOptPayload wraps an optional's payload.
	SubOptPayload
	// SubErrUnionPayload wraps an error union's success payload.
	SubErrUnionPayload
)

// SubValuePayload owns exactly one child value.
type SubValuePayload struct {
	Kind SubValueKind
	Val  Value
}

func (*SubValuePayload) isPayload() {}

// AggregatePayload owns one child per field/element, parallel to the owning
// type's field order.
type AggregatePayload struct {
	Elems []Value
}

func (*AggregatePayload) isPayload() {}

// UnionPayload owns the active tag value and the payload value.
type UnionPayload struct {
	Tag Value
	Val Value
}

func (*UnionPayload) isPayload() {}

// Copy deep-copies a legacy value so the clone owns its payload outright.
// Interned values are copied by handle; their storage is shared by design.
func (v Value) Copy() Value {
	if v.IsInterned() {
		return v
	}
	switch pl := v.payload.(type) {
	case *BytesPayload:
		return FromPayload(&BytesPayload{Data: slices.Clone(pl.Data)})
	case *SubValuePayload:
		return FromPayload(&SubValuePayload{Kind: pl.Kind, Val: pl.Val.Copy()})
	case *AggregatePayload:
		elems := make([]Value, len(pl.Elems))
		for i, e := range pl.Elems {
			elems[i] = e.Copy()
		}
		return FromPayload(&AggregatePayload{Elems: elems})
	case *UnionPayload:
		return FromPayload(&UnionPayload{Tag: pl.Tag.Copy(), Val: pl.Val.Copy()})
	default:
		panic(fmt.Sprintf("value: Copy on payload %T", v.payload))
	}
}

// InternValue migrates a legacy value of type ty into the pool. Interned
// inputs pass through unchanged. Unintern is its inverse.
func (p *Pool) InternValue(v Value, ty types.TypeID) Value {
	if v.IsInterned() {
		return v
	}
	switch pl := v.payload.(type) {
	case *BytesPayload:
		return FromIndex(p.Intern(AggregateKey{
			Type:    ty,
			Storage: AggBytes,
			Bytes:   slices.Clone(pl.Data),
		}))
	case *SubValuePayload:
		switch pl.Kind {
		case SubRepeated:
			child := p.InternValue(pl.Val, p.Types.Elem(ty))
			return FromIndex(p.Intern(AggregateKey{
				Type:     ty,
				Storage:  AggRepeated,
				Repeated: child.idx,
			}))
		case SubOptPayload:
			child := p.InternValue(pl.Val, p.Types.Elem(ty))
			return FromIndex(p.Intern(OptKey{Type: ty, Child: child.idx}))
		case SubErrUnionPayload:
			child := p.InternValue(pl.Val, p.Types.Elem(ty))
			return FromIndex(p.Intern(ErrorUnionKey{Type: ty, Payload: child.idx}))
		}
	case *AggregatePayload:
		elems := make([]Index, len(pl.Elems))
		for i, e := range pl.Elems {
			elems[i] = p.InternValue(e, p.aggregateElemType(ty, i)).idx
		}
		return FromIndex(p.Intern(AggregateKey{
			Type:    ty,
			Storage: AggElems,
			Elems:   elems,
		}))
	case *UnionPayload:
		info, ok := p.Types.UnionInfo(ty)
		if !ok {
			panic("value: InternValue union payload with non-union type")
		}
		tag := p.InternValue(pl.Tag, info.Tag)
		fieldTy := p.unionActiveFieldType(info, tag)
		val := p.InternValue(pl.Val, fieldTy)
		return FromIndex(p.Intern(UnionKey{Type: ty, Tag: tag.idx, Val: val.idx}))
	}
	panic(fmt.Sprintf("value: InternValue on payload %T", v.payload))
}

// Unintern converts an interned value back into a legacy payload for the
// kinds that still have one; everything else stays interned. The result is
// observably equal to the input.
func (p *Pool) Unintern(i Index) Value {
	switch k := p.IndexToKey(i).(type) {
	case AggregateKey:
		switch k.Storage {
		case AggBytes:
			return FromPayload(&BytesPayload{Data: slices.Clone(k.Bytes)})
		case AggElems:
			elems := make([]Value, len(k.Elems))
			for j, e := range k.Elems {
				elems[j] = FromIndex(e)
			}
			return FromPayload(&AggregatePayload{Elems: elems})
		case AggRepeated:
			return FromPayload(&SubValuePayload{Kind: SubRepeated, Val: FromIndex(k.Repeated)})
		}
	case UnionKey:
		return FromPayload(&UnionPayload{Tag: FromIndex(k.Tag), Val: FromIndex(k.Val)})
	}
	return FromIndex(i)
}

// aggregateElemType answers what type element i of an aggregate of ty has.
func (p *Pool) aggregateElemType(ty types.TypeID, i int) types.TypeID {
	if info, ok := p.Types.StructInfo(ty); ok {
		return info.Fields[i].Type
	}
	return p.Types.Elem(ty)
}

// unionActiveFieldType resolves the field type selected by a tag value.
func (p *Pool) unionActiveFieldType(info *types.UnionInfo, tag Value) types.TypeID {
	if !tag.IsInterned() || tag.IsUndef(p) {
		return types.NoTypeID
	}
	idx := tag.ToUnsignedInt(p)
	if int(idx) >= len(info.Fields) {
		panic("value: union tag out of range")
	}
	return info.Fields[idx].Type
}
