package value

import (
	"bytes"
	"math/big"

	"sable/internal/bigint"
	"sable/internal/types"
)

// Op is a comparison operator.
type Op uint8

const (
	OpEq Op = iota
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
)

// Order is a three-way comparison result.
type Order int8

const (
	OrderLt Order = -1
	OrderEq Order = 0
	OrderGt Order = 1
)

func (o Order) satisfies(op Op) bool {
	switch op {
	case OpEq:
		return o == OrderEq
	case OpNeq:
		return o != OrderEq
	case OpLt:
		return o == OrderLt
	case OpLte:
		return o != OrderGt
	case OpGt:
		return o == OrderGt
	case OpGte:
		return o != OrderLt
	default:
		panic("value: unknown comparison op")
	}
}

// Eql reports structural equality. Interned values compare by Index alone:
// the pool's hash-consing makes identity equality structural equality, and
// NaNs with distinct payloads stay unequal. Legacy values compare deeply;
// a legacy value never equals an interned one (migrate first).
func (p *Pool) Eql(a, b Value) bool {
	if a.IsInterned() && b.IsInterned() {
		return a.idx == b.idx
	}
	if a.IsInterned() != b.IsInterned() {
		return false
	}
	return p.payloadEql(a.payload, b.payload)
}

func (p *Pool) payloadEql(a, b Payload) bool {
	switch ap := a.(type) {
	case *BytesPayload:
		bp, ok := b.(*BytesPayload)
		return ok && bytes.Equal(ap.Data, bp.Data)
	case *SubValuePayload:
		bp, ok := b.(*SubValuePayload)
		return ok && ap.Kind == bp.Kind && p.Eql(ap.Val, bp.Val)
	case *AggregatePayload:
		bp, ok := b.(*AggregatePayload)
		if !ok || len(ap.Elems) != len(bp.Elems) {
			return false
		}
		for i := range ap.Elems {
			if !p.Eql(ap.Elems[i], bp.Elems[i]) {
				return false
			}
		}
		return true
	case *UnionPayload:
		bp, ok := b.(*UnionPayload)
		return ok && p.Eql(ap.Tag, bp.Tag) && p.Eql(ap.Val, bp.Val)
	default:
		return false
	}
}

// numOrder compares two scalar numeric values. ordered is false when either
// side is NaN.
func (p *Pool) numOrder(a, b Value) (o Order, ordered bool) {
	if a.IsNan(p) || b.IsNan(p) {
		return OrderEq, false
	}
	ak, aFloat := a.Key(p).(FloatKey)
	bk, bFloat := b.Key(p).(FloatKey)
	if aFloat || bFloat {
		var x, y *big.Float
		if aFloat {
			x = floatKeyToBig(ak)
		} else {
			var space bigint.Space
			x = new(big.Float).SetInt(a.ToBigInt(p, &space))
		}
		if bFloat {
			y = floatKeyToBig(bk)
		} else {
			var space bigint.Space
			y = new(big.Float).SetInt(b.ToBigInt(p, &space))
		}
		return Order(x.Cmp(y)), true
	}
	apk, aPtr := a.Key(p).(PtrKey)
	bpk, bPtr := b.Key(p).(PtrKey)
	if aPtr || bPtr {
		if (aPtr && apk.Addr != AddrInt) || (bPtr && bpk.Addr != AddrInt) {
			panic("value: ordering of non-absolute pointers")
		}
		// An absolute pointer is its address; either side may be a plain
		// integer instead.
		var as, bs bigint.Space
		x, y := new(big.Int), new(big.Int)
		if aPtr {
			x.SetUint64(apk.Int)
		} else {
			x = a.ToBigInt(p, &as)
		}
		if bPtr {
			y.SetUint64(bpk.Int)
		} else {
			y = b.ToBigInt(p, &bs)
		}
		return Order(x.Cmp(y)), true
	}
	var as, bs bigint.Space
	return Order(a.ToBigInt(p, &as).Cmp(b.ToBigInt(p, &bs))), true
}

// Order compares two scalar numerics; NaN operands are a caller bug here,
// use CompareScalar for NaN-aware comparison.
func (p *Pool) Order(a, b Value) Order {
	o, ordered := p.numOrder(a, b)
	if !ordered {
		panic("value: Order on NaN operand")
	}
	return o
}

// OrderAgainstZero classifies a scalar's sign.
func (p *Pool) OrderAgainstZero(v Value) Order {
	switch k := v.Key(p).(type) {
	case FloatKey:
		if floatKeyIsNan(k) {
			panic("value: OrderAgainstZero on NaN")
		}
		if k.Bits > 64 {
			// Squeezing through float64 would flush magnitudes below its
			// subnormal range to zero.
			return Order(floatKeyToBig(k).Sign())
		}
		f := floatKeyToF64(k)
		switch {
		case f < 0:
			return OrderLt
		case f > 0:
			return OrderGt
		default:
			return OrderEq
		}
	case PtrKey:
		if k.Addr == AddrInt {
			if k.Int == 0 {
				return OrderEq
			}
			return OrderGt
		}
		// Declaration-backed pointers are known non-null.
		return OrderGt
	default:
		var space bigint.Space
		return Order(v.ToBigInt(p, &space).Sign())
	}
}

// CompareScalar applies op to two scalars with IEEE NaN semantics: a NaN
// operand satisfies only Neq.
func (p *Pool) CompareScalar(op Op, a, b Value) bool {
	if a.IsNan(p) || b.IsNan(p) {
		return op == OpNeq
	}
	if op == OpEq || op == OpNeq {
		// Interned identity settles bit-equal values without arithmetic,
		// but distinct indices may still be numerically equal under
		// different types, so fall through when identity says no.
		if a.IsInterned() && b.IsInterned() && a.idx == b.idx {
			return op == OpEq
		}
	}
	o, _ := p.numOrder(a, b)
	return o.satisfies(op)
}

// CompareHetero applies op across representations: two declaration-backed
// pointers compare by backing declaration identity, a declaration-backed
// pointer never equals a bit-pattern value, and everything else compares
// numerically.
func (p *Pool) CompareHetero(op Op, a, b Value) bool {
	if a.IsInterned() && b.IsInterned() {
		aDecl := p.BackingDecl(a.idx)
		bDecl := p.BackingDecl(b.idx)
		if aDecl.IsValid() || bDecl.IsValid() {
			switch op {
			case OpEq:
				return aDecl == bDecl
			case OpNeq:
				return aDecl != bDecl
			default:
				panic("value: ordering of declaration-backed pointers")
			}
		}
	}
	return p.CompareScalar(op, a, b)
}

// CompareAll applies op lane-wise over vectors of ty and reports whether
// every lane satisfies it; scalars compare directly.
func (p *Pool) CompareAll(op Op, a, b Value, ty types.TypeID) bool {
	lanes, ok := p.Types.VectorLen(ty)
	if !ok {
		return p.CompareScalar(op, a, b)
	}
	for lane := uint64(0); lane < uint64(lanes); lane++ {
		if !p.CompareScalar(op, p.ElemValue(a, lane), p.ElemValue(b, lane)) {
			return false
		}
	}
	return true
}

// CompareAllWithZero applies op against zero lane-wise. NaN lanes satisfy
// only Neq, per IEEE.
func (p *Pool) CompareAllWithZero(op Op, v Value, ty types.TypeID) bool {
	lanes, isVec := p.Types.VectorLen(ty)
	if !isVec {
		return p.compareScalarWithZero(op, v)
	}
	for lane := uint64(0); lane < uint64(lanes); lane++ {
		if !p.compareScalarWithZero(op, p.ElemValue(v, lane)) {
			return false
		}
	}
	return true
}

func (p *Pool) compareScalarWithZero(op Op, v Value) bool {
	if v.IsNan(p) {
		return op == OpNeq
	}
	return p.OrderAgainstZero(v).satisfies(op)
}
