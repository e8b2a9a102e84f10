package value

import (
	"fmt"
	"math/big"

	"fortio.org/safecast"

	"sable/internal/decls"
	"sable/internal/types"
)

// Pool is the deduplicating store for compile-time values. It owns every
// interned key for the lifetime of a compilation; indices it issues stay
// valid until the pool is dropped. Single-threaded by design.
type Pool struct {
	Types *types.Interner

	items []Key
	index map[string]Index
}

// NewPool constructs a pool with the well-known constants reserved at the
// fixed indices declared in index.go.
func NewPool(typesIn *types.Interner) *Pool {
	p := &Pool{
		Types: typesIn,
		items: make([]Key, 1, 256), // slot 0 = None
		index: make(map[string]Index, 256),
	}
	b := typesIn.Builtins()
	mustBe := func(want Index, k Key) {
		if got := p.Intern(k); got != want {
			panic(fmt.Sprintf("value: bootstrap index mismatch: got %d want %d", got, want))
		}
	}
	mustBe(IndexVoidValue, SimpleKey{Kind: SimpleVoid, Type: b.Void})
	mustBe(IndexTrue, SimpleKey{Kind: SimpleTrue, Type: b.Bool})
	mustBe(IndexFalse, SimpleKey{Kind: SimpleFalse, Type: b.Bool})
	mustBe(IndexNull, SimpleKey{Kind: SimpleNull})
	mustBe(IndexUndef, UndefKey{})
	mustBe(IndexGenericPoison, SimpleKey{Kind: SimpleGenericPoison})
	mustBe(IndexZeroUsize, IntKey{Type: b.Usize, Storage: StorageU64, U64: 0})
	mustBe(IndexOneUsize, IntKey{Type: b.Usize, Storage: StorageU64, U64: 1})
	return p
}

// Intern returns the stable Index for a key, deduplicating against every
// previously interned value of identical structure. Duplicate content is
// silently shared; already-interned entries are never touched.
func (p *Pool) Intern(k Key) Index {
	if ik, ok := k.(IntKey); ok {
		k = ik.normalize()
	}
	enc := encodeKey(k)
	if idx, ok := p.index[enc]; ok {
		return idx
	}
	n, err := safecast.Conv[uint32](len(p.items))
	if err != nil {
		panic(fmt.Errorf("intern pool overflow: %w", err))
	}
	idx := Index(n)
	p.items = append(p.items, k)
	p.index[enc] = idx
	return idx
}

// IndexToKey returns the key for an Index this pool issued. Foreign or None
// indices are a bug in the caller and abort.
func (p *Pool) IndexToKey(i Index) Key {
	if !i.IsValid() || int(i) >= len(p.items) {
		panic(fmt.Sprintf("value: foreign intern pool index %d", i))
	}
	return p.items[i]
}

// Len reports how many values the pool holds, the None sentinel included.
func (p *Pool) Len() int {
	return len(p.items)
}

// TypeOf returns the type the interned value carries.
func (p *Pool) TypeOf(i Index) types.TypeID {
	return p.IndexToKey(i).Ty()
}

// IsUndef reports whether the index is an undefined value (typed or not).
func (p *Pool) IsUndef(i Index) bool {
	_, ok := p.IndexToKey(i).(UndefKey)
	return ok
}

// SlicePtr returns the pointer half of a slice pointer value, dropping the
// length.
func (p *Pool) SlicePtr(i Index) Index {
	k, ok := p.IndexToKey(i).(PtrKey)
	if !ok {
		panic("value: SlicePtr on non-pointer")
	}
	if !k.Len.IsValid() {
		return i
	}
	k.Len = None
	return p.Intern(k)
}

// BackingDecl walks through field/element projections and anonymous
// wrappers to the ultimate declaration a pointer addresses, or NoDeclID
// when the pointer is not declaration-backed.
func (p *Pool) BackingDecl(i Index) decls.DeclID {
	for i.IsValid() {
		k, ok := p.IndexToKey(i).(PtrKey)
		if !ok {
			return decls.NoDeclID
		}
		switch k.Addr {
		case AddrDecl, AddrMutDecl:
			return k.Decl
		case AddrField, AddrElem:
			i = k.Base
		default:
			return decls.NoDeclID
		}
	}
	return decls.NoDeclID
}

// Convenience constructors -------------------------------------------------

// IntValue interns an integer of ty with the given magnitude.
func (p *Pool) IntValue(ty types.TypeID, x int64) Value {
	if x < 0 {
		return FromIndex(p.Intern(IntKey{Type: ty, Storage: StorageI64, I64: x}))
	}
	return FromIndex(p.Intern(IntKey{Type: ty, Storage: StorageU64, U64: uint64(x)}))
}

// UintValue interns an unsigned integer of ty.
func (p *Pool) UintValue(ty types.TypeID, x uint64) Value {
	return FromIndex(p.Intern(IntKey{Type: ty, Storage: StorageU64, U64: x}))
}

// BigValue interns an arbitrary-precision integer of ty.
func (p *Pool) BigValue(ty types.TypeID, x *big.Int) Value {
	return FromIndex(p.Intern(IntKey{Type: ty, Storage: StorageBig, Big: x}))
}

// BoolValue returns the interned true or false.
func (p *Pool) BoolValue(b bool) Value {
	if b {
		return FromIndex(IndexTrue)
	}
	return FromIndex(IndexFalse)
}

// UndefValue interns the undefined value of ty.
func (p *Pool) UndefValue(ty types.TypeID) Value {
	return FromIndex(p.Intern(UndefKey{Type: ty}))
}

// LazyAlignValue interns "the ABI alignment of ty" as a usize-typed lazy
// integer.
func (p *Pool) LazyAlignValue(ty types.TypeID) Value {
	return FromIndex(p.Intern(IntKey{
		Type:    p.Types.Builtins().Usize,
		Storage: StorageLazyAlign,
		Lazy:    ty,
	}))
}

// LazySizeValue interns "the ABI size of ty" as a usize-typed lazy integer.
func (p *Pool) LazySizeValue(ty types.TypeID) Value {
	return FromIndex(p.Intern(IntKey{
		Type:    p.Types.Builtins().Usize,
		Storage: StorageLazySize,
		Lazy:    ty,
	}))
}
