package types

import "testing"

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if b.Void == NoTypeID || b.Bool == NoTypeID || b.ComptimeInt == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	void, _ := in.Lookup(b.Void)
	if void.Kind != KindVoid {
		t.Fatalf("expected void kind, got %v", void.Kind)
	}
	if b.Usize != b.U64 {
		t.Fatalf("usize must alias u64 on 64-bit targets")
	}
}

func TestInternerDeduplicatesDescriptors(t *testing.T) {
	in := NewInterner()
	elem := in.Builtins().U8
	arr1 := in.Intern(MakeArray(elem, 4))
	arr2 := in.Intern(MakeArray(elem, 4))
	if arr1 != arr2 {
		t.Fatalf("array types should be deduplicated")
	}
	if arr3 := in.Intern(MakeArray(elem, 5)); arr3 == arr1 {
		t.Fatalf("length must affect identity")
	}
}

func TestSignednessAffectsIdentity(t *testing.T) {
	in := NewInterner()
	u := in.Intern(MakeInt(33, false))
	i := in.Intern(MakeInt(33, true))
	if u == i {
		t.Fatalf("u33 and i33 must differ")
	}
}

func TestNominalTypesBypassDedup(t *testing.T) {
	in := NewInterner()
	fields := []Field{{Name: "x", Type: in.Builtins().U8}}
	s1 := in.RegisterStruct("point", LayoutExtern, fields)
	s2 := in.RegisterStruct("point", LayoutExtern, fields)
	if s1 == s2 {
		t.Fatalf("nominal structs must get fresh ids")
	}
	info, ok := in.StructInfo(s1)
	if !ok || info.Name != "point" || len(info.Fields) != 1 {
		t.Fatalf("struct info lost: %+v", info)
	}
}

func TestIntInfoThroughEnum(t *testing.T) {
	in := NewInterner()
	enum := in.RegisterEnum("color", in.Builtins().U8)
	info, ok := in.IntInfo(enum)
	if !ok || info.Bits != 8 || info.Signed {
		t.Fatalf("enum int info = %+v, want u8", info)
	}
	binfo, ok := in.IntInfo(in.Builtins().Bool)
	if !ok || binfo.Bits != 1 {
		t.Fatalf("bool int info = %+v, want 1 bit", binfo)
	}
}

func TestErrorUnionParts(t *testing.T) {
	in := NewInterner()
	es := in.RegisterErrorSet([]string{"OutOfMemory", "Overflow"})
	eu := in.Intern(MakeErrorUnion(es, in.Builtins().U32))
	gotSet, gotPayload, ok := in.ErrorUnionParts(eu)
	if !ok || gotSet != es || gotPayload != in.Builtins().U32 {
		t.Fatalf("error union parts = %v %v", gotSet, gotPayload)
	}
	info, ok := in.ErrorSetInfo(es)
	if !ok || len(info.Names) != 2 {
		t.Fatalf("error set info lost")
	}
}

func TestVectorAndPointerQueries(t *testing.T) {
	in := NewInterner()
	vec := in.Intern(MakeVector(in.Builtins().U8, 4))
	if n, ok := in.VectorLen(vec); !ok || n != 4 {
		t.Fatalf("vector len = %d", n)
	}
	ptr := in.Intern(MakePointer(in.Builtins().U8, PtrSlice))
	pi, ok := in.PtrInfo(ptr)
	if !ok || pi.Size != PtrSlice || pi.Elem != in.Builtins().U8 {
		t.Fatalf("ptr info = %+v", pi)
	}
}
