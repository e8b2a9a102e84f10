package value

import (
	"math/big"

	"sable/internal/bigint"
	"sable/internal/types"
)

// Bitwise operations. Boolean-typed operands take the logical path; integer
// operands go through the bigint engine with the result truncated back into
// the declared width (two's-complement, so And/Xor/Nand of negative values
// stay in range).

func (p *Pool) bitwiseBin(ty types.TypeID, a, b Value, logical func(x, y bool) bool, op func(out, x, y *big.Int)) (Value, error) {
	if a.IsUndef(p) || b.IsUndef(p) {
		return p.UndefValue(ty), nil
	}
	if p.Types.KindOf(ty) == types.KindBool {
		return p.BoolValue(logical(a.ToBool(p), b.ToBool(p))), nil
	}
	var as, bs bigint.Space
	x := a.ToBigInt(p, &as)
	y := b.ToBigInt(p, &bs)
	var r big.Int
	op(&r, x, y)
	if info, bounded := p.intInfoOf(ty); bounded {
		bigint.Truncate(&r, &r, info.Bits, info.Signed)
	}
	return p.BigValue(ty, &r), nil
}

// BitwiseAnd computes a & b (logical and for bools).
func (p *Pool) BitwiseAnd(a, b Value, ty types.TypeID) (Value, error) {
	return p.mapLanes(ty, []Value{a, b}, func(sty types.TypeID, args []Value) (Value, error) {
		return p.bitwiseBin(sty, args[0], args[1],
			func(x, y bool) bool { return x && y },
			func(out, x, y *big.Int) { out.And(x, y) })
	})
}

// BitwiseOr computes a | b (logical or for bools).
func (p *Pool) BitwiseOr(a, b Value, ty types.TypeID) (Value, error) {
	return p.mapLanes(ty, []Value{a, b}, func(sty types.TypeID, args []Value) (Value, error) {
		return p.bitwiseBin(sty, args[0], args[1],
			func(x, y bool) bool { return x || y },
			func(out, x, y *big.Int) { out.Or(x, y) })
	})
}

// BitwiseXor computes a ^ b (logical inequality for bools).
func (p *Pool) BitwiseXor(a, b Value, ty types.TypeID) (Value, error) {
	return p.mapLanes(ty, []Value{a, b}, func(sty types.TypeID, args []Value) (Value, error) {
		return p.bitwiseBin(sty, args[0], args[1],
			func(x, y bool) bool { return x != y },
			func(out, x, y *big.Int) { out.Xor(x, y) })
	})
}

// BitwiseNand computes ^(a & b) (logical nand for bools).
func (p *Pool) BitwiseNand(a, b Value, ty types.TypeID) (Value, error) {
	return p.mapLanes(ty, []Value{a, b}, func(sty types.TypeID, args []Value) (Value, error) {
		return p.bitwiseBin(sty, args[0], args[1],
			func(x, y bool) bool { return !(x && y) },
			func(out, x, y *big.Int) { out.And(x, y); out.Not(out) })
	})
}

// BitwiseNot computes ^a (logical not for bools).
func (p *Pool) BitwiseNot(a Value, ty types.TypeID) (Value, error) {
	return p.mapLanes(ty, []Value{a}, func(sty types.TypeID, args []Value) (Value, error) {
		v := args[0]
		if v.IsUndef(p) {
			return p.UndefValue(sty), nil
		}
		if p.Types.KindOf(sty) == types.KindBool {
			return p.BoolValue(!v.ToBool(p)), nil
		}
		var space bigint.Space
		x := v.ToBigInt(p, &space)
		var r big.Int
		r.Not(x)
		if info, bounded := p.intInfoOf(sty); bounded {
			bigint.Truncate(&r, &r, info.Bits, info.Signed)
		}
		return p.BigValue(sty, &r), nil
	})
}

// intUnaryFixed runs a width-aware unary op from the bigint engine.
func (p *Pool) intUnaryFixed(a Value, ty types.TypeID, op func(out, x *big.Int, bits uint16, signed bool)) (Value, error) {
	return p.mapLanes(ty, []Value{a}, func(sty types.TypeID, args []Value) (Value, error) {
		v := args[0]
		if v.IsUndef(p) {
			return p.UndefValue(sty), nil
		}
		info, bounded := p.intInfoOf(sty)
		if !bounded {
			panic("value: width-dependent op on comptime_int")
		}
		var space bigint.Space
		x := v.ToBigInt(p, &space)
		var r big.Int
		op(&r, x, info.Bits, info.Signed)
		return p.BigValue(sty, &r), nil
	})
}

// ByteSwap reverses the bytes of each lane.
func (p *Pool) ByteSwap(a Value, ty types.TypeID) (Value, error) {
	return p.intUnaryFixed(a, ty, func(out, x *big.Int, bits uint16, signed bool) {
		bigint.ByteSwap(out, x, bits, signed)
	})
}

// BitReverse reverses the bits of each lane.
func (p *Pool) BitReverse(a Value, ty types.TypeID) (Value, error) {
	return p.intUnaryFixed(a, ty, func(out, x *big.Int, bits uint16, signed bool) {
		bigint.BitReverse(out, x, bits, signed)
	})
}

// PopCount counts set bits per lane; the result is typed resultTy.
func (p *Pool) PopCount(a Value, ty, resultTy types.TypeID) (Value, error) {
	return p.countOp(a, ty, resultTy, bigint.PopCount)
}

// Clz counts leading zero bits per lane; the result is typed resultTy.
func (p *Pool) Clz(a Value, ty, resultTy types.TypeID) (Value, error) {
	return p.countOp(a, ty, resultTy, bigint.LeadingZeros)
}

// Ctz counts trailing zero bits per lane; the result is typed resultTy.
func (p *Pool) Ctz(a Value, ty, resultTy types.TypeID) (Value, error) {
	return p.countOp(a, ty, resultTy, bigint.TrailingZeros)
}

func (p *Pool) countOp(a Value, ty, resultTy types.TypeID, count func(x *big.Int, bits uint16) uint64) (Value, error) {
	return p.mapLanes(resultTy, []Value{a}, func(sty types.TypeID, args []Value) (Value, error) {
		v := args[0]
		if v.IsUndef(p) {
			return p.UndefValue(sty), nil
		}
		srcTy := ty
		if p.Types.KindOf(ty) == types.KindVector {
			srcTy = p.Types.Elem(ty)
		}
		info, ok := p.Types.IntInfo(srcTy)
		if !ok {
			panic("value: bit count on non-integer type")
		}
		var space bigint.Space
		x := v.ToBigInt(p, &space)
		return p.UintValue(sty, count(x, info.Bits)), nil
	})
}
