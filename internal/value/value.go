package value

import (
	"math/big"

	"sable/internal/bigint"
	"sable/internal/layout"
	"sable/internal/types"
)

// Value is a lightweight handle over a compile-time value: either an intern
// pool Index (the canonical form) or, for call sites not yet migrated, an
// owned legacy payload. Exactly one of the two is set; the None index is
// the discriminant.
type Value struct {
	idx     Index
	payload Payload
}

// FromIndex wraps an interned index.
func FromIndex(i Index) Value {
	return Value{idx: i}
}

// FromPayload wraps a legacy payload. The Value takes exclusive ownership.
func FromPayload(p Payload) Value {
	return Value{payload: p}
}

// IsInterned reports whether the value is pool-backed.
func (v Value) IsInterned() bool {
	return v.idx.IsValid()
}

// Index returns the interned index, None for legacy values.
func (v Value) Index() Index {
	return v.idx
}

// Payload returns the legacy payload, nil for interned values.
func (v Value) Payload() Payload {
	return v.payload
}

// Key returns the structural key of an interned value.
func (v Value) Key(p *Pool) Key {
	return p.IndexToKey(v.idx)
}

// IsUndef reports whether the value is undefined (typed or untyped undef).
func (v Value) IsUndef(p *Pool) bool {
	if !v.IsInterned() {
		return false
	}
	return p.IsUndef(v.idx)
}

// IsNull reports whether the value is null or an optional with no payload.
func (v Value) IsNull(p *Pool) bool {
	if !v.IsInterned() {
		return false
	}
	switch k := v.Key(p).(type) {
	case SimpleKey:
		return k.Kind == SimpleNull
	case OptKey:
		return !k.Child.IsValid()
	default:
		return false
	}
}

// ToBigInt extracts an integer view of the value into caller-owned scratch
// space. Panics on non-integer or unresolved lazy values: those are bugs in
// the layer above, not recoverable conditions.
func (v Value) ToBigInt(p *Pool, space *bigint.Space) *big.Int {
	x := space.Int()
	switch k := v.Key(p).(type) {
	case SimpleKey:
		switch k.Kind {
		case SimpleTrue:
			return x.SetInt64(1)
		case SimpleFalse:
			return x.SetInt64(0)
		}
	case IntKey:
		switch k.Storage {
		case StorageU64:
			return x.SetUint64(k.U64)
		case StorageI64:
			return x.SetInt64(k.I64)
		case StorageBig:
			return x.Set(k.Big)
		case StorageLazyAlign, StorageLazySize:
			panic("value: ToBigInt on unresolved lazy integer")
		}
	}
	panic("value: ToBigInt on non-integer value")
}

// ToUnsignedInt extracts a u64 magnitude; panics when the value is negative
// or does not fit.
func (v Value) ToUnsignedInt(p *Pool) uint64 {
	var space bigint.Space
	x := v.ToBigInt(p, &space)
	if !x.IsUint64() {
		panic("value: ToUnsignedInt out of range")
	}
	return x.Uint64()
}

// ToSignedInt extracts an i64 magnitude; panics when it does not fit.
func (v Value) ToSignedInt(p *Pool) int64 {
	var space bigint.Space
	x := v.ToBigInt(p, &space)
	if !x.IsInt64() {
		panic("value: ToSignedInt out of range")
	}
	return x.Int64()
}

// ToBool extracts a boolean. Panics on non-boolean values.
func (v Value) ToBool(p *Pool) bool {
	if k, ok := v.Key(p).(SimpleKey); ok {
		switch k.Kind {
		case SimpleTrue:
			return true
		case SimpleFalse:
			return false
		}
	}
	panic("value: ToBool on non-boolean value")
}

// ResolveLazy replaces a lazy-alignment/lazy-size integer with its concrete
// magnitude, running layout resolution through e. Non-lazy values pass
// through unchanged. Callers must resolve before arithmetic.
func (v Value) ResolveLazy(p *Pool, e *layout.Engine) (Value, error) {
	if !v.IsInterned() {
		return v, nil
	}
	k, ok := v.Key(p).(IntKey)
	if !ok || !k.IsLazy() {
		return v, nil
	}
	var n uint64
	var err error
	switch k.Storage {
	case StorageLazyAlign:
		n, err = e.ABIAlign(k.Lazy)
	case StorageLazySize:
		n, err = e.ABISize(k.Lazy)
	}
	if err != nil {
		return Value{}, err
	}
	return p.UintValue(k.Type, n), nil
}

// typeOf returns the value's type when interned, NoTypeID for legacy
// payloads (their type always arrives from the call site).
func (v Value) typeOf(p *Pool) types.TypeID {
	if !v.IsInterned() {
		return types.NoTypeID
	}
	return p.TypeOf(v.idx)
}
