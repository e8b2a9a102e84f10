package value

import (
	"math/big"

	"sable/internal/decls"
	"sable/internal/types"
)

// Key is the structural identity of an interned value: kind plus payload.
// Two structurally equal keys always intern to the same Index. The set of
// key kinds is closed.
type Key interface {
	isKey()
	// Ty is the value's type. NoTypeID only for the untyped simple
	// constants (null, undef marker, generic poison).
	Ty() types.TypeID
}

// SimpleKind tags the payload-free constants.
type SimpleKind uint8

const (
	SimpleVoid SimpleKind = iota
	SimpleTrue
	SimpleFalse
	SimpleNull
	SimpleGenericPoison
)

// SimpleKey is a payload-free constant.
type SimpleKey struct {
	Kind SimpleKind
	Type types.TypeID
}

func (k SimpleKey) isKey()           {}
func (k SimpleKey) Ty() types.TypeID { return k.Type }

// UndefKey is the undefined value of a type. The untyped undef marker uses
// NoTypeID.
type UndefKey struct {
	Type types.TypeID
}

func (k UndefKey) isKey()           {}
func (k UndefKey) Ty() types.TypeID { return k.Type }

// IntStorage selects how an integer key stores its magnitude.
type IntStorage uint8

const (
	// StorageU64 holds values in [0, 1<<64).
	StorageU64 IntStorage = iota
	// StorageI64 holds negative values in [-1<<63, 0).
	StorageI64
	// StorageBig holds everything else.
	StorageBig
	// StorageLazyAlign is the not-yet-resolved ABI alignment of a type.
	StorageLazyAlign
	// StorageLazySize is the not-yet-resolved ABI size of a type.
	StorageLazySize
)

// IntKey is an integer of a specific type. Keys are canonical: a magnitude
// that fits u64 is always StorageU64, a negative one that fits i64 is
// always StorageI64, and Big is reserved for the rest. normalize enforces
// this before interning.
type IntKey struct {
	Type    types.TypeID
	Storage IntStorage
	U64     uint64
	I64     int64
	Big     *big.Int
	Lazy    types.TypeID
}

func (k IntKey) isKey()           {}
func (k IntKey) Ty() types.TypeID { return k.Type }

// IsLazy reports whether the magnitude still depends on layout resolution.
func (k IntKey) IsLazy() bool {
	return k.Storage == StorageLazyAlign || k.Storage == StorageLazySize
}

// normalize rewrites the storage to the canonical sub-kind for the
// magnitude.
func (k IntKey) normalize() IntKey {
	if k.Storage != StorageBig {
		return k
	}
	if k.Big.IsUint64() {
		return IntKey{Type: k.Type, Storage: StorageU64, U64: k.Big.Uint64()}
	}
	if k.Big.IsInt64() {
		return IntKey{Type: k.Type, Storage: StorageI64, I64: k.Big.Int64()}
	}
	return IntKey{Type: k.Type, Storage: StorageBig, Big: new(big.Int).Set(k.Big)}
}

// FloatKey is a float of one of the five supported widths, keyed by its
// exact bit pattern. Distinct NaN payloads are distinct keys.
type FloatKey struct {
	Type types.TypeID
	Bits uint16
	// Pattern, low 64 bits and high 64 bits. Widths up to 64 use Lo
	// only; f80 keeps its 64-bit significand in Lo and the sign/exponent
	// word in Hi; f128 splits its pattern across both.
	Lo uint64
	Hi uint64
}

func (k FloatKey) isKey()           {}
func (k FloatKey) Ty() types.TypeID { return k.Type }

// ErrKey is a named error value of an error set type.
type ErrKey struct {
	Type types.TypeID
	Name string
}

func (k ErrKey) isKey()           {}
func (k ErrKey) Ty() types.TypeID { return k.Type }

// ErrorUnionKey is either an error name or a payload value. ErrName != ""
// selects the error case.
type ErrorUnionKey struct {
	Type    types.TypeID
	ErrName string
	Payload Index
}

func (k ErrorUnionKey) isKey()           {}
func (k ErrorUnionKey) Ty() types.TypeID { return k.Type }

// OptKey is an optional: None child means "null of this optional type".
type OptKey struct {
	Type  types.TypeID
	Child Index
}

func (k OptKey) isKey()           {}
func (k OptKey) Ty() types.TypeID { return k.Type }

// PtrAddr is a pointer value's address mode.
type PtrAddr uint8

const (
	// AddrInt is an absolute integer address.
	AddrInt PtrAddr = iota
	// AddrDecl references an immutable declaration.
	AddrDecl
	// AddrMutDecl references a mutable declaration.
	AddrMutDecl
	// AddrAnon references an anonymous interned value.
	AddrAnon
	// AddrComptime references a comptime-allocated slot.
	AddrComptime
	// AddrField projects a field out of a base pointer.
	AddrField
	// AddrElem projects an array element out of a base pointer.
	AddrElem
)

// PtrKey is a pointer value: an address mode plus an optional slice length.
type PtrKey struct {
	Type types.TypeID
	Addr PtrAddr
	Int  uint64       // AddrInt: the address
	Decl decls.DeclID // AddrDecl / AddrMutDecl
	Anon Index        // AddrAnon: the referenced value
	Base Index        // AddrField / AddrElem: the base pointer
	Off  uint64       // AddrField: field index; AddrElem: element index; AddrComptime: slot id
	Len  Index        // interned usize length for slices, None otherwise
}

func (k PtrKey) isKey()           {}
func (k PtrKey) Ty() types.TypeID { return k.Type }

// AggStorage selects how an aggregate key stores its elements.
type AggStorage uint8

const (
	// AggBytes is a raw byte buffer, one byte per u8 element.
	AggBytes AggStorage = iota
	// AggElems is an explicit per-element index list.
	AggElems
	// AggRepeated is a single element repeated to the type's length.
	AggRepeated
)

// AggregateKey is an array, vector, struct or slice-backing value.
type AggregateKey struct {
	Type     types.TypeID
	Storage  AggStorage
	Bytes    []byte
	Elems    []Index
	Repeated Index
}

func (k AggregateKey) isKey()           {}
func (k AggregateKey) Ty() types.TypeID { return k.Type }

// UnionKey is a union instance: the active tag value plus the payload.
// Tag may be None when the active field is unknown (byte-reinterpreted
// unions).
type UnionKey struct {
	Type types.TypeID
	Tag  Index
	Val  Index
}

func (k UnionKey) isKey()           {}
func (k UnionKey) Ty() types.TypeID { return k.Type }
