package value

import (
	"math/big"
	"testing"

	"sable/internal/types"
)

func TestOrderMixedWidths(t *testing.T) {
	p := newPool(t)
	b := p.Types.Builtins()
	if got := p.Order(p.IntValue(b.I8, -1), p.UintValue(b.U64, 1)); got != OrderLt {
		t.Fatalf("-1 vs 1 = %v", got)
	}
	if got := p.Order(p.FloatValue(b.F64, 2.5), p.IntValue(b.I32, 2)); got != OrderGt {
		t.Fatalf("2.5 vs 2 = %v", got)
	}
	if got := p.Order(p.FloatValue(b.F32, 3), p.IntValue(b.I32, 3)); got != OrderEq {
		t.Fatalf("3.0 vs 3 = %v", got)
	}
}

func TestOrderAgainstZero(t *testing.T) {
	p := newPool(t)
	b := p.Types.Builtins()
	if p.OrderAgainstZero(p.IntValue(b.I32, -5)) != OrderLt {
		t.Fatalf("-5 must order below zero")
	}
	if p.OrderAgainstZero(p.UintValue(b.U32, 0)) != OrderEq {
		t.Fatalf("0 must order equal to zero")
	}
	if p.OrderAgainstZero(p.FloatValue(b.F64, 0.5)) != OrderGt {
		t.Fatalf("0.5 must order above zero")
	}
	if !p.BoolValue(true).IsInterned() || p.OrderAgainstZero(p.BoolValue(true)) != OrderGt {
		t.Fatalf("true must order above zero")
	}
}

func TestCompareAllVectorLanes(t *testing.T) {
	p := newPool(t)
	vec := vecType(p, p.Types.Builtins().U8, 3)
	a := vecOf(p, vec, []uint64{1, 2, 3})
	b := vecOf(p, vec, []uint64{1, 2, 3})
	c := vecOf(p, vec, []uint64{1, 9, 3})
	if !p.CompareAll(OpEq, a, b, vec) {
		t.Fatalf("identical vectors must compare equal on all lanes")
	}
	if p.CompareAll(OpEq, a, c, vec) {
		t.Fatalf("differing lane must fail all-lanes equality")
	}
	if !p.CompareAll(OpLte, a, c, vec) {
		t.Fatalf("1,2,3 <= 1,9,3 lane-wise")
	}
}

func TestCompareAllWithZero(t *testing.T) {
	p := newPool(t)
	vec := vecType(p, p.Types.Builtins().U8, 2)
	v := vecOf(p, vec, []uint64{1, 2})
	if !p.CompareAllWithZero(OpGt, v, vec) {
		t.Fatalf("all lanes above zero")
	}
	z := vecOf(p, vec, []uint64{1, 0})
	if p.CompareAllWithZero(OpGt, z, vec) {
		t.Fatalf("zero lane must fail strict positivity")
	}
}

func TestCompareWithZeroNanSatisfiesOnlyNeq(t *testing.T) {
	p := newPool(t)
	f64 := p.Types.Builtins().F64
	nan := FromIndex(p.Intern(nanKey(f64, 64)))
	if !p.CompareAllWithZero(OpNeq, nan, f64) {
		t.Fatalf("NaN != 0 must hold")
	}
	for _, op := range []Op{OpEq, OpLt, OpLte, OpGt, OpGte} {
		if p.CompareAllWithZero(op, nan, f64) {
			t.Fatalf("NaN must not satisfy op %d against zero", op)
		}
	}
}

func TestCompareHeteroPointerIdentity(t *testing.T) {
	p := newPool(t)
	ptrTy := p.Types.Intern(types.MakePointer(p.Types.Builtins().U8, types.PtrSingle))
	a := FromIndex(p.Intern(PtrKey{Type: ptrTy, Addr: AddrDecl, Decl: 1}))
	b := FromIndex(p.Intern(PtrKey{Type: ptrTy, Addr: AddrDecl, Decl: 1}))
	c := FromIndex(p.Intern(PtrKey{Type: ptrTy, Addr: AddrDecl, Decl: 2}))
	if !p.CompareHetero(OpEq, a, b) {
		t.Fatalf("same decl must compare equal")
	}
	if !p.CompareHetero(OpNeq, a, c) {
		t.Fatalf("different decls must compare unequal")
	}
}

func TestCompareAbsolutePointerAgainstInteger(t *testing.T) {
	p := newPool(t)
	b := p.Types.Builtins()
	ptrTy := p.Types.Intern(types.MakePointer(b.U8, types.PtrSingle))
	ptr := FromIndex(p.Intern(PtrKey{Type: ptrTy, Addr: AddrInt, Int: 0x42}))
	same := p.UintValue(b.Usize, 0x42)
	below := p.UintValue(b.Usize, 0x41)
	if !p.CompareHetero(OpEq, ptr, same) {
		t.Fatalf("absolute pointer must equal the integer carrying its address")
	}
	if !p.CompareHetero(OpEq, same, ptr) {
		t.Fatalf("operand order must not change the result")
	}
	if !p.CompareHetero(OpGt, ptr, below) || !p.CompareHetero(OpLt, below, ptr) {
		t.Fatalf("absolute pointer must order numerically against integers")
	}
	if !p.CompareScalar(OpNeq, ptr, below) {
		t.Fatalf("differing address and integer must compare unequal")
	}
}

func TestCompareDeclPointerAgainstIntegerIsUnequal(t *testing.T) {
	p := newPool(t)
	b := p.Types.Builtins()
	ptrTy := p.Types.Intern(types.MakePointer(b.U8, types.PtrSingle))
	ptr := FromIndex(p.Intern(PtrKey{Type: ptrTy, Addr: AddrDecl, Decl: 1}))
	n := p.UintValue(b.Usize, 0x42)
	if p.CompareHetero(OpEq, ptr, n) {
		t.Fatalf("declaration-backed pointer must never equal a plain integer")
	}
	if !p.CompareHetero(OpNeq, n, ptr) {
		t.Fatalf("declaration-backed pointer vs integer must be unequal")
	}
}

func TestOrderAgainstZeroWideFloatTinyMagnitude(t *testing.T) {
	p := newPool(t)
	b := p.Types.Builtins()
	// 2^-1200 is nonzero at 113-bit precision but far below anything a
	// float64 can represent.
	tiny := p.FloatValueBig(b.F128, new(big.Float).SetMantExp(big.NewFloat(1), -1200))
	if got := p.OrderAgainstZero(tiny); got != OrderGt {
		t.Fatalf("tiny positive f128 = %v, want above zero", got)
	}
	negTiny := p.FloatValueBig(b.F128, new(big.Float).SetMantExp(big.NewFloat(-1), -1200))
	if got := p.OrderAgainstZero(negTiny); got != OrderLt {
		t.Fatalf("tiny negative f128 = %v, want below zero", got)
	}
	zero := p.FloatValueBig(b.F80, big.NewFloat(0))
	if got := p.OrderAgainstZero(zero); got != OrderEq {
		t.Fatalf("f80 zero = %v, want equal to zero", got)
	}
}

func TestEqlLegacyStructural(t *testing.T) {
	p := newPool(t)
	a := FromPayload(&BytesPayload{Data: []byte{1, 2, 3}})
	b := FromPayload(&BytesPayload{Data: []byte{1, 2, 3}})
	c := FromPayload(&BytesPayload{Data: []byte{1, 2, 4}})
	if !p.Eql(a, b) {
		t.Fatalf("equal byte payloads must compare equal")
	}
	if p.Eql(a, c) {
		t.Fatalf("differing byte payloads must compare unequal")
	}
}
