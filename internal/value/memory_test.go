package value

import (
	"errors"
	"math/big"
	"testing"

	"sable/internal/layout"
	"sable/internal/target"
	"sable/internal/types"
)

func engines(p *Pool) (le, be *layout.Engine) {
	return layout.New(target.X8664(), p.Types), layout.New(target.Sparc64(), p.Types)
}

func roundTrip(t *testing.T, p *Pool, e *layout.Engine, v Value, ty types.TypeID) Value {
	t.Helper()
	size, err := e.ABISize(ty)
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	buf := make([]byte, size)
	if err := p.WriteToMemory(v, ty, e, buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	back, err := p.ReadFromMemory(ty, e, buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return back
}

func TestIntRoundTripWidths(t *testing.T) {
	p := newPool(t)
	le, be := engines(p)
	huge, _ := new(big.Int).SetString("170141183460469231731687303715884105727", 10) // 2^127-1
	cases := []struct {
		bits   uint16
		signed bool
		val    *big.Int
	}{
		{1, false, big.NewInt(1)},
		{8, false, big.NewInt(200)},
		{8, true, big.NewInt(-56)},
		{16, true, big.NewInt(-12345)},
		{33, false, big.NewInt(1 << 32)},
		{33, true, big.NewInt(-(1 << 31))},
		{64, false, new(big.Int).SetUint64(^uint64(0))},
		{128, true, huge},
		{128, true, new(big.Int).Neg(huge)},
	}
	for _, e := range []*layout.Engine{le, be} {
		for _, c := range cases {
			ty := p.Types.Intern(types.MakeInt(c.bits, c.signed))
			v := p.BigValue(ty, c.val)
			back := roundTrip(t, p, e, v, ty)
			if !p.Eql(v, back) {
				t.Fatalf("%s width %d signed %v: %s came back different", e.Target.Name, c.bits, c.signed, c.val)
			}
		}
	}
}

func TestBoolAndVoidRoundTrip(t *testing.T) {
	p := newPool(t)
	le, _ := engines(p)
	b := p.Types.Builtins()
	if back := roundTrip(t, p, le, p.BoolValue(true), b.Bool); !back.ToBool(p) {
		t.Fatalf("true came back %v", back.ToBool(p))
	}
	if back := roundTrip(t, p, le, FromIndex(IndexVoidValue), b.Void); back.Index() != IndexVoidValue {
		t.Fatalf("void came back %d", back.Index())
	}
}

func TestFloatRoundTripAllWidths(t *testing.T) {
	p := newPool(t)
	le, be := engines(p)
	b := p.Types.Builtins()
	widths := []types.TypeID{b.F16, b.F32, b.F64, b.F80, b.F128}
	for _, e := range []*layout.Engine{le, be} {
		for _, ty := range widths {
			v := p.FloatValue(ty, -2.5)
			back := roundTrip(t, p, e, v, ty)
			if v.Index() != back.Index() {
				t.Fatalf("%s f%d: -2.5 came back different", e.Target.Name, p.Types.FloatBits(ty))
			}
		}
	}
}

func TestArrayAndExternStructRoundTrip(t *testing.T) {
	p := newPool(t)
	le, be := engines(p)
	b := p.Types.Builtins()
	arr := p.Types.Intern(types.MakeArray(b.U16, 3))
	s := p.Types.RegisterStruct("hdr", types.LayoutExtern, []types.Field{
		{Name: "tag", Type: b.U8},
		{Name: "len", Type: b.U32},
	})
	for _, e := range []*layout.Engine{le, be} {
		av := FromIndex(p.Intern(AggregateKey{Type: arr, Storage: AggElems, Elems: []Index{
			p.UintValue(b.U16, 1).Index(),
			p.UintValue(b.U16, 500).Index(),
			p.UintValue(b.U16, 65535).Index(),
		}}))
		if back := roundTrip(t, p, e, av, arr); av.Index() != back.Index() {
			t.Fatalf("%s: array came back different", e.Target.Name)
		}
		sv := FromIndex(p.Intern(AggregateKey{Type: s, Storage: AggElems, Elems: []Index{
			p.UintValue(b.U8, 7).Index(),
			p.UintValue(b.U32, 0xDEADBEEF).Index(),
		}}))
		if back := roundTrip(t, p, e, sv, s); sv.Index() != back.Index() {
			t.Fatalf("%s: extern struct came back different", e.Target.Name)
		}
	}
}

func TestPackedStructRoundTripWithBitOffset(t *testing.T) {
	p := newPool(t)
	le, be := engines(p)
	u5 := p.Types.Intern(types.MakeInt(5, false))
	b := p.Types.Builtins()
	s := p.Types.RegisterStruct("pair", types.LayoutPacked, []types.Field{
		{Name: "a", Type: u5},
		{Name: "b", Type: b.U8},
	})
	sv := FromIndex(p.Intern(AggregateKey{Type: s, Storage: AggElems, Elems: []Index{
		p.UintValue(u5, 0b10110).Index(),
		p.UintValue(b.U8, 0xA5).Index(),
	}}))
	for _, e := range []*layout.Engine{le, be} {
		buf := make([]byte, 3)
		if err := p.WriteToPackedMemory(sv, s, e, buf, 3); err != nil {
			t.Fatalf("%s: packed write: %v", e.Target.Name, err)
		}
		back, err := p.ReadFromPackedMemory(s, e, buf, 3)
		if err != nil {
			t.Fatalf("%s: packed read: %v", e.Target.Name, err)
		}
		if got := p.ElemValue(back, 0).ToUnsignedInt(p); got != 0b10110 {
			t.Fatalf("%s: field a = %#b, want 10110", e.Target.Name, got)
		}
		if got := p.ElemValue(back, 1).ToUnsignedInt(p); got != 0xA5 {
			t.Fatalf("%s: field b = %#x, want 0xA5", e.Target.Name, got)
		}
	}
}

func TestBigEndianPackedWritesFromTheEnd(t *testing.T) {
	p := newPool(t)
	_, be := engines(p)
	u8 := p.Types.Builtins().U8
	buf := make([]byte, 3)
	if err := p.WriteToPackedMemory(p.UintValue(u8, 0xFF), u8, be, buf, 0); err != nil {
		t.Fatalf("packed write: %v", err)
	}
	if buf[2] != 0xFF || buf[0] != 0 {
		t.Fatalf("big endian bit 0 must sit in the last byte: % x", buf)
	}
}

func TestVectorRoundTripReversesLanesForBigEndian(t *testing.T) {
	p := newPool(t)
	le, be := engines(p)
	b := p.Types.Builtins()
	vec := vecType(p, b.U8, 2)
	v := vecOf(p, vec, []uint64{0x11, 0x22})
	for _, e := range []*layout.Engine{le, be} {
		if back := roundTrip(t, p, e, v, vec); v.Index() != back.Index() {
			t.Fatalf("%s: vector came back different", e.Target.Name)
		}
	}
	// Lane 0 occupies the low bit positions under both endiannesses, which
	// puts it at opposite ends of the byte buffer.
	bufLE := make([]byte, 2)
	bufBE := make([]byte, 2)
	if err := p.WriteToMemory(v, vec, le, bufLE); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := p.WriteToMemory(v, vec, be, bufBE); err != nil {
		t.Fatalf("write: %v", err)
	}
	if bufLE[0] != 0x11 || bufLE[1] != 0x22 {
		t.Fatalf("little endian lanes = % x", bufLE)
	}
	if bufBE[0] != 0x11 || bufBE[1] != 0x22 {
		t.Fatalf("big endian lanes = % x", bufBE)
	}
}

func TestUndefWritesMarkerBytes(t *testing.T) {
	p := newPool(t)
	le, _ := engines(p)
	u32 := p.Types.Builtins().U32
	buf := make([]byte, 4)
	if err := p.WriteToMemory(p.UndefValue(u32), u32, le, buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	for i, b := range buf {
		if b != 0xAA {
			t.Fatalf("byte %d = %#x, want the undef marker", i, b)
		}
	}
}

func TestAutoStructHasIllDefinedLayout(t *testing.T) {
	p := newPool(t)
	le, _ := engines(p)
	b := p.Types.Builtins()
	s := p.Types.RegisterStruct("auto", types.LayoutAuto, []types.Field{{Name: "x", Type: b.U8}})
	sv := FromIndex(p.Intern(AggregateKey{Type: s, Storage: AggElems, Elems: []Index{p.UintValue(b.U8, 1).Index()}}))
	err := p.WriteToMemory(sv, s, le, make([]byte, 8))
	if !errors.Is(err, ErrIllDefinedMemoryLayout) {
		t.Fatalf("auto struct write = %v, want ill-defined layout", err)
	}
}

func TestDeclPointerCannotReinterpret(t *testing.T) {
	p := newPool(t)
	le, _ := engines(p)
	ptrTy := p.Types.Intern(types.MakePointer(p.Types.Builtins().U8, types.PtrSingle))
	v := FromIndex(p.Intern(PtrKey{Type: ptrTy, Addr: AddrDecl, Decl: 3}))
	err := p.WriteToMemory(v, ptrTy, le, make([]byte, 8))
	if !errors.Is(err, ErrReinterpretDeclRef) {
		t.Fatalf("decl pointer write = %v, want decl-ref error", err)
	}
}

func TestAbsolutePointerRoundTrip(t *testing.T) {
	p := newPool(t)
	le, be := engines(p)
	ptrTy := p.Types.Intern(types.MakePointer(p.Types.Builtins().U8, types.PtrSingle))
	v := FromIndex(p.Intern(PtrKey{Type: ptrTy, Addr: AddrInt, Int: 0xDEADBEEF}))
	for _, e := range []*layout.Engine{le, be} {
		if back := roundTrip(t, p, e, v, ptrTy); v.Index() != back.Index() {
			t.Fatalf("%s: pointer came back different", e.Target.Name)
		}
	}
}

func TestErrorSetSerializationUnimplemented(t *testing.T) {
	p := newPool(t)
	le, _ := engines(p)
	es := p.Types.RegisterErrorSet([]string{"OutOfMemory"})
	v := FromIndex(p.Intern(ErrKey{Type: es, Name: "OutOfMemory"}))
	err := p.WriteToMemory(v, es, le, make([]byte, 2))
	if !errors.Is(err, ErrUnimplemented) {
		t.Fatalf("error set write = %v, want unimplemented", err)
	}
}

func TestHasRepeatedByteRepr(t *testing.T) {
	p := newPool(t)
	le, _ := engines(p)
	b := p.Types.Builtins()
	v := p.UintValue(b.U32, 0x42424242)
	if byteVal, ok := p.HasRepeatedByteRepr(v, b.U32, le); !ok || byteVal != 0x42 {
		t.Fatalf("repeated repr = %#x %v", byteVal, ok)
	}
	if _, ok := p.HasRepeatedByteRepr(p.UintValue(b.U32, 0x42424243), b.U32, le); ok {
		t.Fatalf("mixed bytes must not report repeated")
	}
	// comptime_int has no layout; that is a plain "no", not an error.
	if _, ok := p.HasRepeatedByteRepr(p.UintValue(b.ComptimeInt, 1), b.ComptimeInt, le); ok {
		t.Fatalf("unsized type must answer false")
	}
}
