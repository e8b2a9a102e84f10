package value

import (
	"math/big"
	"testing"

	"sable/internal/bigint"
	"sable/internal/layout"
	"sable/internal/target"
	"sable/internal/types"
)

func newPool(t *testing.T) *Pool {
	t.Helper()
	return NewPool(types.NewInterner())
}

func vecType(p *Pool, elem types.TypeID, lanes uint32) types.TypeID {
	return p.Types.Intern(types.MakeVector(elem, lanes))
}

func vecOf(p *Pool, vecTy types.TypeID, vals []uint64) Value {
	elemTy := p.Types.Elem(vecTy)
	elems := make([]Index, len(vals))
	for i, v := range vals {
		elems[i] = p.UintValue(elemTy, v).Index()
	}
	return FromIndex(p.Intern(AggregateKey{Type: vecTy, Storage: AggElems, Elems: elems}))
}

func TestBootstrapIndices(t *testing.T) {
	p := newPool(t)
	if p.BoolValue(true).Index() != IndexTrue || p.BoolValue(false).Index() != IndexFalse {
		t.Fatalf("booleans not at their reserved indices")
	}
	if got := p.Intern(IntKey{Type: p.Types.Builtins().Usize, Storage: StorageU64, U64: 1}); got != IndexOneUsize {
		t.Fatalf("one_usize interned at %d", got)
	}
	if !p.IsUndef(IndexUndef) {
		t.Fatalf("undef marker lost")
	}
}

func TestInternDeduplicates(t *testing.T) {
	p := newPool(t)
	i32 := p.Types.Builtins().I32
	a := p.IntValue(i32, 42)
	b := p.IntValue(i32, 42)
	if a.Index() != b.Index() {
		t.Fatalf("same value interned twice: %d vs %d", a.Index(), b.Index())
	}
	c := p.IntValue(p.Types.Builtins().I64, 42)
	if c.Index() == a.Index() {
		t.Fatalf("type must be part of identity")
	}
}

func TestInternNormalizesBigStorage(t *testing.T) {
	p := newPool(t)
	u64 := p.Types.Builtins().U64
	viaU64 := p.UintValue(u64, 7)
	viaBig := p.BigValue(u64, big.NewInt(7))
	if viaU64.Index() != viaBig.Index() {
		t.Fatalf("big-stored 7 must collapse onto u64-stored 7")
	}
}

func TestToBigIntRoundTrip(t *testing.T) {
	p := newPool(t)
	ci := p.Types.Builtins().ComptimeInt
	huge, _ := new(big.Int).SetString("340282366920938463463374607431768211456", 10) // 2^128
	v := p.BigValue(ci, huge)
	var space bigint.Space
	got := v.ToBigInt(p, &space)
	if got.Cmp(huge) != 0 {
		t.Fatalf("round trip = %s", got)
	}
}

func TestLazyResolution(t *testing.T) {
	p := newPool(t)
	e := layout.New(target.X8664(), p.Types)
	v := p.LazySizeValue(p.Types.Builtins().U32)
	resolved, err := v.ResolveLazy(p, e)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := resolved.ToUnsignedInt(p); got != 4 {
		t.Fatalf("size_of(u32) = %d, want 4", got)
	}
	a := p.LazyAlignValue(p.Types.Builtins().U64)
	resolved, err = a.ResolveLazy(p, e)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := resolved.ToUnsignedInt(p); got != 8 {
		t.Fatalf("align_of(u64) = %d, want 8", got)
	}
}

func TestSlicePtrDropsLength(t *testing.T) {
	p := newPool(t)
	b := p.Types.Builtins()
	slicePtr := p.Types.Intern(types.MakePointer(b.U8, types.PtrSlice))
	lenIdx := p.UintValue(b.Usize, 3).Index()
	full := p.Intern(PtrKey{Type: slicePtr, Addr: AddrInt, Int: 0x1000, Len: lenIdx})
	bare := p.SlicePtr(full)
	k := p.IndexToKey(bare).(PtrKey)
	if k.Len.IsValid() || k.Int != 0x1000 {
		t.Fatalf("slice ptr half = %+v", k)
	}
}

func TestBackingDeclWalksProjections(t *testing.T) {
	p := newPool(t)
	b := p.Types.Builtins()
	ptrTy := p.Types.Intern(types.MakePointer(b.U8, types.PtrSingle))
	root := p.Intern(PtrKey{Type: ptrTy, Addr: AddrMutDecl, Decl: 7})
	field := p.Intern(PtrKey{Type: ptrTy, Addr: AddrField, Base: root, Off: 2})
	elem := p.Intern(PtrKey{Type: ptrTy, Addr: AddrElem, Base: field, Off: 0})
	if got := p.BackingDecl(elem); got != 7 {
		t.Fatalf("backing decl = %d, want 7", got)
	}
	anon := p.Intern(PtrKey{Type: ptrTy, Addr: AddrInt, Int: 1})
	if p.BackingDecl(anon).IsValid() {
		t.Fatalf("absolute pointer has no backing decl")
	}
}
