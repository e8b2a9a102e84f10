package value

import (
	"math/big"

	"sable/internal/bigint"
	"sable/internal/types"
)

func floatKeySignBit(k FloatKey) bool {
	switch k.Bits {
	case 80:
		return k.Hi&0x8000 != 0
	case 128:
		return k.Hi&0x8000000000000000 != 0
	default:
		return k.Lo>>(k.Bits-1) != 0
	}
}

// floatPrec is the mantissa precision for exact single rounding at a width.
func floatPrec(bits uint16) uint {
	switch bits {
	case 16:
		return 11
	case 32:
		return 24
	case 64:
		return 53
	case 80:
		return f80Prec
	default:
		return f128Prec
	}
}

// IntFromFloat truncates a float toward zero into resultTy. NaN, infinity
// and out-of-range magnitudes produce ErrOverflow.
func (p *Pool) IntFromFloat(v Value, resultTy types.TypeID) (Value, error) {
	return p.mapLanes(resultTy, []Value{v}, func(ty types.TypeID, args []Value) (Value, error) {
		a := args[0]
		if a.IsUndef(p) {
			return p.UndefValue(ty), nil
		}
		k := a.floatKey(p)
		if floatKeyIsNan(k) || floatKeyIsInf(k) {
			return Value{}, ErrOverflow
		}
		z, _ := floatKeyToBig(k).Int(nil)
		info, bounded := p.intInfoOf(ty)
		if bounded && !bigint.FitsIn(z, info.Bits, info.Signed) {
			return Value{}, ErrOverflow
		}
		return p.BigValue(ty, z), nil
	})
}

// FloatFromInt rounds an integer to the nearest representable float of
// resultTy; magnitudes past the width's range become infinity.
func (p *Pool) FloatFromInt(v Value, resultTy types.TypeID) (Value, error) {
	return p.mapLanes(resultTy, []Value{v}, func(ty types.TypeID, args []Value) (Value, error) {
		a := args[0]
		if a.IsUndef(p) {
			return p.UndefValue(ty), nil
		}
		bits := p.Types.FloatBits(ty)
		var space bigint.Space
		f := new(big.Float).SetPrec(floatPrec(bits)).SetInt(a.ToBigInt(p, &space))
		return FromIndex(p.Intern(bigToFloatKey(ty, bits, f))), nil
	})
}

// FloatCast re-rounds a float value at resultTy's width. NaN casts to the
// canonical NaN, infinities keep their sign.
func (p *Pool) FloatCast(v Value, resultTy types.TypeID) (Value, error) {
	return p.mapLanes(resultTy, []Value{v}, func(ty types.TypeID, args []Value) (Value, error) {
		a := args[0]
		if a.IsUndef(p) {
			return p.UndefValue(ty), nil
		}
		k := a.floatKey(p)
		bits := p.Types.FloatBits(ty)
		if floatKeyIsNan(k) {
			return FromIndex(p.Intern(nanKey(ty, bits))), nil
		}
		if floatKeyIsInf(k) {
			return FromIndex(p.Intern(infKey(ty, bits, floatKeySignBit(k)))), nil
		}
		f := floatKeyToBig(k)
		f.SetPrec(floatPrec(bits))
		return FromIndex(p.Intern(bigToFloatKey(ty, bits, f))), nil
	})
}

// IntCast re-types an integer, requiring the magnitude to fit; a value out
// of resultTy's range produces ErrOverflow.
func (p *Pool) IntCast(v Value, resultTy types.TypeID) (Value, error) {
	return p.mapLanes(resultTy, []Value{v}, func(ty types.TypeID, args []Value) (Value, error) {
		a := args[0]
		if a.IsUndef(p) {
			return p.UndefValue(ty), nil
		}
		var space bigint.Space
		x := a.ToBigInt(p, &space)
		info, bounded := p.intInfoOf(ty)
		if bounded && !bigint.FitsIn(x, info.Bits, info.Signed) {
			return Value{}, ErrOverflow
		}
		return p.BigValue(ty, x), nil
	})
}

// Truncate discards high bits, reinterpreting the rest at resultTy's width
// and signedness.
func (p *Pool) Truncate(v Value, resultTy types.TypeID) (Value, error) {
	return p.mapLanes(resultTy, []Value{v}, func(ty types.TypeID, args []Value) (Value, error) {
		a := args[0]
		if a.IsUndef(p) {
			return p.UndefValue(ty), nil
		}
		var space bigint.Space
		x := a.ToBigInt(p, &space)
		info, bounded := p.intInfoOf(ty)
		if !bounded {
			return p.BigValue(ty, x), nil
		}
		var out big.Int
		bigint.Truncate(&out, x, info.Bits, info.Signed)
		return p.BigValue(ty, &out), nil
	})
}
