package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for the primitive types every compilation needs.
type Builtins struct {
	Invalid     TypeID
	Void        TypeID
	Bool        TypeID
	U1          TypeID
	U8          TypeID
	U16         TypeID
	U32         TypeID
	U64         TypeID
	I8          TypeID
	I16         TypeID
	I32         TypeID
	I64         TypeID
	Usize       TypeID
	ComptimeInt TypeID
	F16         TypeID
	F32         TypeID
	F64         TypeID
	F80         TypeID
	F128        TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Nominal kinds bypass the dedup map: each registration gets a fresh ID.
type Interner struct {
	types    []Type
	index    map[Type]TypeID
	builtins Builtins

	structs   []StructInfo
	unions    []UnionInfo
	enums     []EnumInfo
	errorSets []ErrorSetInfo
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[Type]TypeID, 64),
	}
	// Reserve slot 0 of every side table as an invalid sentinel.
	in.structs = append(in.structs, StructInfo{})
	in.unions = append(in.unions, UnionInfo{})
	in.enums = append(in.enums, EnumInfo{})
	in.errorSets = append(in.errorSets, ErrorSetInfo{})

	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Void = in.Intern(Type{Kind: KindVoid})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.U1 = in.Intern(MakeInt(1, false))
	in.builtins.U8 = in.Intern(MakeInt(8, false))
	in.builtins.U16 = in.Intern(MakeInt(16, false))
	in.builtins.U32 = in.Intern(MakeInt(32, false))
	in.builtins.U64 = in.Intern(MakeInt(64, false))
	in.builtins.I8 = in.Intern(MakeInt(8, true))
	in.builtins.I16 = in.Intern(MakeInt(16, true))
	in.builtins.I32 = in.Intern(MakeInt(32, true))
	in.builtins.I64 = in.Intern(MakeInt(64, true))
	in.builtins.Usize = in.builtins.U64
	in.builtins.ComptimeInt = in.Intern(Type{Kind: KindComptimeInt})
	in.builtins.F16 = in.Intern(MakeFloat(16))
	in.builtins.F32 = in.Intern(MakeFloat(32))
	in.builtins.F64 = in.Intern(MakeFloat(64))
	in.builtins.F80 = in.Intern(MakeFloat(80))
	in.builtins.F128 = in.Intern(MakeFloat(128))
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// KindOf returns the kind for a TypeID, KindInvalid for bad IDs.
func (in *Interner) KindOf(id TypeID) Kind {
	tt, ok := in.Lookup(id)
	if !ok {
		return KindInvalid
	}
	return tt.Kind
}
