package value

import "testing"

func TestBitwiseOps(t *testing.T) {
	p := newPool(t)
	u8 := p.Types.Builtins().U8
	a := p.UintValue(u8, 0b1100)
	b := p.UintValue(u8, 0b1010)
	and, err := p.BitwiseAnd(a, b, u8)
	if err != nil {
		t.Fatalf("and: %v", err)
	}
	if and.ToUnsignedInt(p) != 0b1000 {
		t.Fatalf("and = %#b", and.ToUnsignedInt(p))
	}
	or, _ := p.BitwiseOr(a, b, u8)
	if or.ToUnsignedInt(p) != 0b1110 {
		t.Fatalf("or = %#b", or.ToUnsignedInt(p))
	}
	xor, _ := p.BitwiseXor(a, b, u8)
	if xor.ToUnsignedInt(p) != 0b0110 {
		t.Fatalf("xor = %#b", xor.ToUnsignedInt(p))
	}
	not, _ := p.BitwiseNot(a, u8)
	if not.ToUnsignedInt(p) != 0b11110011 {
		t.Fatalf("not = %#b", not.ToUnsignedInt(p))
	}
}

func TestBitwiseOnBooleans(t *testing.T) {
	p := newPool(t)
	boolTy := p.Types.Builtins().Bool
	and, err := p.BitwiseAnd(p.BoolValue(true), p.BoolValue(false), boolTy)
	if err != nil {
		t.Fatalf("and: %v", err)
	}
	if and.ToBool(p) {
		t.Fatalf("true & false must be false")
	}
	nand, _ := p.BitwiseNand(p.BoolValue(true), p.BoolValue(true), boolTy)
	if nand.ToBool(p) {
		t.Fatalf("true !& true must be false")
	}
}

func TestVectorXorLanes(t *testing.T) {
	p := newPool(t)
	u8 := p.Types.Builtins().U8
	vec := vecType(p, u8, 4)
	as := []uint64{1, 2, 3, 4}
	bs := []uint64{10, 20, 30, 40}
	a := vecOf(p, vec, as)
	b := vecOf(p, vec, bs)
	r, err := p.BitwiseXor(a, b, vec)
	if err != nil {
		t.Fatalf("xor: %v", err)
	}
	// The vector op must be observably the scalar op mapped per lane.
	for lane := uint64(0); lane < 4; lane++ {
		scalar, err := p.BitwiseXor(p.UintValue(u8, as[lane]), p.UintValue(u8, bs[lane]), u8)
		if err != nil {
			t.Fatalf("scalar xor lane %d: %v", lane, err)
		}
		got := p.ElemValue(r, lane)
		if got.ToUnsignedInt(p) != as[lane]^bs[lane] {
			t.Fatalf("lane %d = %d, want %d", lane, got.ToUnsignedInt(p), as[lane]^bs[lane])
		}
		if got.Index() != scalar.Index() {
			t.Fatalf("lane %d interned apart from the scalar result", lane)
		}
	}
	z, err := p.BitwiseXor(a, a, vec)
	if err != nil {
		t.Fatalf("self xor: %v", err)
	}
	// Self-xor zeroes every lane; dedup must collapse them onto one index.
	if p.ElemValue(z, 0).ToUnsignedInt(p) != 0 || p.ElemValue(z, 0).Index() != p.ElemValue(z, 3).Index() {
		t.Fatalf("self xor lanes must be the shared zero value")
	}
}

func TestByteSwapValue(t *testing.T) {
	p := newPool(t)
	u16 := p.Types.Builtins().U16
	v, err := p.ByteSwap(p.UintValue(u16, 0x1234), u16)
	if err != nil {
		t.Fatalf("byteswap: %v", err)
	}
	if v.ToUnsignedInt(p) != 0x3412 {
		t.Fatalf("byteswap = %#x", v.ToUnsignedInt(p))
	}
}

func TestCountOpsOnValues(t *testing.T) {
	p := newPool(t)
	b := p.Types.Builtins()
	v := p.UintValue(b.U8, 0b00101100)
	pc, err := p.PopCount(v, b.U8, b.U8)
	if err != nil {
		t.Fatalf("popcount: %v", err)
	}
	if pc.ToUnsignedInt(p) != 3 {
		t.Fatalf("popcount = %d", pc.ToUnsignedInt(p))
	}
	clz, _ := p.Clz(v, b.U8, b.U8)
	if clz.ToUnsignedInt(p) != 2 {
		t.Fatalf("clz = %d", clz.ToUnsignedInt(p))
	}
	ctz, _ := p.Ctz(v, b.U8, b.U8)
	if ctz.ToUnsignedInt(p) != 2 {
		t.Fatalf("ctz = %d", ctz.ToUnsignedInt(p))
	}
}
