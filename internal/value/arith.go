package value

import (
	"errors"
	"math/big"

	"sable/internal/bigint"
	"sable/internal/types"
)

// ErrOverflow signals that a result does not fit the declared fixed-width
// type. Callers retry the operation at the unbounded comptime-int type; the
// error never reaches the ultimate caller.
var ErrOverflow = errors.New("overflow")

// intInfoOf classifies the scalar integer type: fixed width vs. unbounded
// comptime_int.
func (p *Pool) intInfoOf(ty types.TypeID) (info types.IntInfo, bounded bool) {
	switch p.Types.KindOf(ty) {
	case types.KindComptimeInt:
		return types.IntInfo{Signed: true}, false
	default:
		ii, ok := p.Types.IntInfo(ty)
		if !ok {
			panic("value: integer op on non-integer type")
		}
		return ii, true
	}
}

func anyUndef(p *Pool, args []Value) bool {
	for _, a := range args {
		if a.IsUndef(p) {
			return true
		}
	}
	return false
}

// intBinSat runs one saturating scalar op.
func (p *Pool) intBinSat(ty types.TypeID, a, b Value, op func(out, x, y *big.Int)) (Value, error) {
	if a.IsUndef(p) || b.IsUndef(p) {
		return p.UndefValue(ty), nil
	}
	var as, bs bigint.Space
	x := a.ToBigInt(p, &as)
	y := b.ToBigInt(p, &bs)
	var r big.Int
	op(&r, x, y)
	if info, bounded := p.intInfoOf(ty); bounded {
		bigint.Clamp(&r, &r, info.Bits, info.Signed)
	}
	return p.BigValue(ty, &r), nil
}

// IntAddSat adds, clamping to the type's representable range.
func (p *Pool) IntAddSat(a, b Value, ty types.TypeID) (Value, error) {
	return p.mapLanes(ty, []Value{a, b}, func(sty types.TypeID, args []Value) (Value, error) {
		return p.intBinSat(sty, args[0], args[1], func(out, x, y *big.Int) { out.Add(x, y) })
	})
}

// IntSubSat subtracts, clamping to the type's representable range.
func (p *Pool) IntSubSat(a, b Value, ty types.TypeID) (Value, error) {
	return p.mapLanes(ty, []Value{a, b}, func(sty types.TypeID, args []Value) (Value, error) {
		return p.intBinSat(sty, args[0], args[1], func(out, x, y *big.Int) { out.Sub(x, y) })
	})
}

// IntMulSat multiplies, clamping to the type's representable range.
func (p *Pool) IntMulSat(a, b Value, ty types.TypeID) (Value, error) {
	return p.mapLanes(ty, []Value{a, b}, func(sty types.TypeID, args []Value) (Value, error) {
		return p.intBinSat(sty, args[0], args[1], func(out, x, y *big.Int) { out.Mul(x, y) })
	})
}

// ShlSat shifts left, clamping on overflow instead of wrapping.
func (p *Pool) ShlSat(a, shift Value, ty types.TypeID) (Value, error) {
	return p.mapLanes(ty, []Value{a, shift}, func(sty types.TypeID, args []Value) (Value, error) {
		return p.intBinSat(sty, args[0], args[1], func(out, x, y *big.Int) {
			n := y.Uint64()
			// Anything past the width saturates; cap the shift so the
			// intermediate stays small.
			if n > 4096 {
				n = 4096
			}
			out.Lsh(x, uint(n))
		})
	})
}

// intBinOverflowing runs an exact scalar op that errors with ErrOverflow
// when the result does not fit a bounded type.
func (p *Pool) intBinOverflowing(ty types.TypeID, a, b Value, op func(out, x, y *big.Int) error) (Value, error) {
	if a.IsUndef(p) || b.IsUndef(p) {
		return p.UndefValue(ty), nil
	}
	var as, bs bigint.Space
	x := a.ToBigInt(p, &as)
	y := b.ToBigInt(p, &bs)
	var r big.Int
	if err := op(&r, x, y); err != nil {
		return Value{}, err
	}
	if info, bounded := p.intInfoOf(ty); bounded {
		if !bigint.FitsIn(&r, info.Bits, info.Signed) {
			return Value{}, ErrOverflow
		}
	}
	return p.BigValue(ty, &r), nil
}

// overflowingOp wraps intBinOverflowing with lane tracking: on ErrOverflow
// the failing vector lane (0 for scalars) lands in *overflowIdx.
func (p *Pool) overflowingOp(a, b Value, ty types.TypeID, overflowIdx *int, op func(out, x, y *big.Int) error) (Value, error) {
	lane := -1
	v, err := p.mapLanes(ty, []Value{a, b}, func(sty types.TypeID, args []Value) (Value, error) {
		lane++
		return p.intBinOverflowing(sty, args[0], args[1], op)
	})
	if errors.Is(err, ErrOverflow) && overflowIdx != nil {
		if lane < 0 {
			lane = 0
		}
		*overflowIdx = lane
	}
	return v, err
}

// IntAdd adds exactly. A bounded result that does not fit reports
// ErrOverflow with the failing lane; comptime_int never overflows.
func (p *Pool) IntAdd(a, b Value, ty types.TypeID, overflowIdx *int) (Value, error) {
	return p.overflowingOp(a, b, ty, overflowIdx, func(out, x, y *big.Int) error {
		out.Add(x, y)
		return nil
	})
}

// IntSub subtracts exactly, with IntAdd's overflow contract.
func (p *Pool) IntSub(a, b Value, ty types.TypeID, overflowIdx *int) (Value, error) {
	return p.overflowingOp(a, b, ty, overflowIdx, func(out, x, y *big.Int) error {
		out.Sub(x, y)
		return nil
	})
}

// IntMul multiplies exactly, with IntAdd's overflow contract. Callers
// catching ErrOverflow retry at comptime_int and get the full product.
func (p *Pool) IntMul(a, b Value, ty types.TypeID, overflowIdx *int) (Value, error) {
	return p.overflowingOp(a, b, ty, overflowIdx, func(out, x, y *big.Int) error {
		out.Mul(x, y)
		return nil
	})
}

// IntDiv divides, truncating toward zero.
func (p *Pool) IntDiv(a, b Value, ty types.TypeID, overflowIdx *int) (Value, error) {
	return p.overflowingOp(a, b, ty, overflowIdx, func(out, x, y *big.Int) error {
		if y.Sign() == 0 {
			panic("value: division by zero")
		}
		out.Quo(x, y)
		return nil
	})
}

// IntDivFloor divides, rounding toward negative infinity.
func (p *Pool) IntDivFloor(a, b Value, ty types.TypeID, overflowIdx *int) (Value, error) {
	return p.overflowingOp(a, b, ty, overflowIdx, func(out, x, y *big.Int) error {
		if y.Sign() == 0 {
			panic("value: division by zero")
		}
		bigint.DivFloor(out, x, y)
		return nil
	})
}

// IntMod computes the floored remainder; the result carries the divisor's
// sign.
func (p *Pool) IntMod(a, b Value, ty types.TypeID) (Value, error) {
	return p.mapLanes(ty, []Value{a, b}, func(sty types.TypeID, args []Value) (Value, error) {
		return p.intBinOverflowing(sty, args[0], args[1], func(out, x, y *big.Int) error {
			if y.Sign() == 0 {
				panic("value: division by zero")
			}
			bigint.ModFloor(out, x, y)
			return nil
		})
	})
}

// IntRem computes the truncated remainder; the result carries the
// dividend's sign.
func (p *Pool) IntRem(a, b Value, ty types.TypeID) (Value, error) {
	return p.mapLanes(ty, []Value{a, b}, func(sty types.TypeID, args []Value) (Value, error) {
		return p.intBinOverflowing(sty, args[0], args[1], func(out, x, y *big.Int) error {
			if y.Sign() == 0 {
				panic("value: division by zero")
			}
			out.Rem(x, y)
			return nil
		})
	})
}

// OverflowResult pairs a wrapped result with its u1 overflow flag; both are
// vectors for vector operands.
type OverflowResult struct {
	Overflowed Value
	Wrapped    Value
}

// intWithOverflow computes the full-width result, then wraps it into the
// declared width and flags whether wrapping changed it.
func (p *Pool) intWithOverflow(a, b Value, ty types.TypeID, op func(out, x, y *big.Int)) (OverflowResult, error) {
	lanes, isVec := p.Types.VectorLen(ty)
	u1 := p.Types.Builtins().U1
	ovTy := u1
	if isVec {
		ovTy = p.Types.Intern(types.MakeVector(u1, lanes))
	}
	var ovBits []Index
	wrapped, err := p.mapLanes(ty, []Value{a, b}, func(sty types.TypeID, args []Value) (Value, error) {
		if anyUndef(p, args) {
			ovBits = append(ovBits, p.UndefValue(u1).idx)
			return p.UndefValue(sty), nil
		}
		var as, bs bigint.Space
		x := args[0].ToBigInt(p, &as)
		y := args[1].ToBigInt(p, &bs)
		var full big.Int
		op(&full, x, y)
		info, bounded := p.intInfoOf(sty)
		if !bounded {
			ovBits = append(ovBits, p.UintValue(u1, 0).idx)
			return p.BigValue(sty, &full), nil
		}
		var wrappedLane big.Int
		bigint.Truncate(&wrappedLane, &full, info.Bits, info.Signed)
		flag := uint64(0)
		if wrappedLane.Cmp(&full) != 0 {
			flag = 1
		}
		ovBits = append(ovBits, p.UintValue(u1, flag).idx)
		return p.BigValue(sty, &wrappedLane), nil
	})
	if err != nil {
		return OverflowResult{}, err
	}
	var ov Value
	if isVec {
		ov = FromIndex(p.Intern(AggregateKey{Type: ovTy, Storage: AggElems, Elems: ovBits}))
	} else {
		ov = FromIndex(ovBits[0])
	}
	return OverflowResult{Overflowed: ov, Wrapped: wrapped}, nil
}

// IntAddWithOverflow wraps addition into the declared width.
func (p *Pool) IntAddWithOverflow(a, b Value, ty types.TypeID) (OverflowResult, error) {
	return p.intWithOverflow(a, b, ty, func(out, x, y *big.Int) { out.Add(x, y) })
}

// IntSubWithOverflow wraps subtraction into the declared width.
func (p *Pool) IntSubWithOverflow(a, b Value, ty types.TypeID) (OverflowResult, error) {
	return p.intWithOverflow(a, b, ty, func(out, x, y *big.Int) { out.Sub(x, y) })
}

// IntMulWithOverflow wraps multiplication into the declared width.
func (p *Pool) IntMulWithOverflow(a, b Value, ty types.TypeID) (OverflowResult, error) {
	return p.intWithOverflow(a, b, ty, func(out, x, y *big.Int) { out.Mul(x, y) })
}

// ShlWithOverflow wraps a left shift into the declared width.
func (p *Pool) ShlWithOverflow(a, shift Value, ty types.TypeID) (OverflowResult, error) {
	return p.intWithOverflow(a, shift, ty, func(out, x, y *big.Int) {
		out.Lsh(x, uint(y.Uint64()))
	})
}

// Shl shifts left exactly, with the overflow-widening contract.
func (p *Pool) Shl(a, shift Value, ty types.TypeID, overflowIdx *int) (Value, error) {
	return p.overflowingOp(a, shift, ty, overflowIdx, func(out, x, y *big.Int) error {
		out.Lsh(x, uint(y.Uint64()))
		return nil
	})
}

// Shr shifts right arithmetically (floor division by the power of two).
func (p *Pool) Shr(a, shift Value, ty types.TypeID) (Value, error) {
	return p.mapLanes(ty, []Value{a, shift}, func(sty types.TypeID, args []Value) (Value, error) {
		return p.intBinOverflowing(sty, args[0], args[1], func(out, x, y *big.Int) error {
			out.Rsh(x, uint(y.Uint64()))
			return nil
		})
	})
}
