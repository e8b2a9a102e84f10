package value

import (
	"math"
	"math/big"

	"sable/internal/bigint"
	"sable/internal/types"
)

// Float operations dispatch on the declared bit width: 16/32/64 compute on
// host floats (f16 rounds through its encoder), 80/128 on big.Float at the
// width's working precision. Width is a closed set; there is no generic
// path.

// FloatValue interns a float of ty, rounding the host value to ty's width.
func (p *Pool) FloatValue(ty types.TypeID, f float64) Value {
	bits := p.Types.FloatBits(ty)
	if bits == 0 {
		panic("value: FloatValue on non-float type")
	}
	return FromIndex(p.Intern(floatKeyFromF64(ty, bits, f)))
}

// FloatValueBig interns a float of ty from a big.Float, for construction at
// f80/f128 precision.
func (p *Pool) FloatValueBig(ty types.TypeID, f *big.Float) Value {
	bits := p.Types.FloatBits(ty)
	if bits == 0 {
		panic("value: FloatValueBig on non-float type")
	}
	return FromIndex(p.Intern(bigToFloatKey(ty, bits, f)))
}

// ToFloat extracts the nearest host float64.
func (v Value) ToFloat(p *Pool) float64 {
	switch k := v.Key(p).(type) {
	case FloatKey:
		return floatKeyToF64(k)
	case IntKey, SimpleKey:
		var space bigint.Space
		f, _ := new(big.Float).SetInt(v.ToBigInt(p, &space)).Float64()
		return f
	default:
		panic("value: ToFloat on non-numeric value")
	}
}

// IsNan reports whether the value is a float NaN of any payload.
func (v Value) IsNan(p *Pool) bool {
	if !v.IsInterned() {
		return false
	}
	k, ok := v.Key(p).(FloatKey)
	return ok && floatKeyIsNan(k)
}

// IsInf reports whether the value is a float infinity of either sign.
func (v Value) IsInf(p *Pool) bool {
	if !v.IsInterned() {
		return false
	}
	k, ok := v.Key(p).(FloatKey)
	return ok && floatKeyIsInf(k)
}

func (v Value) floatKey(p *Pool) FloatKey {
	k, ok := v.Key(p).(FloatKey)
	if !ok {
		panic("value: float op on non-float value")
	}
	return k
}

type floatBinOp uint8

const (
	fopAdd floatBinOp = iota
	fopSub
	fopMul
	fopDiv
	fopRem
	fopMod
)

func (p *Pool) floatBin(ty types.TypeID, a, b Value, op floatBinOp) (Value, error) {
	if a.IsUndef(p) || b.IsUndef(p) {
		return p.UndefValue(ty), nil
	}
	ak := a.floatKey(p)
	bk := b.floatKey(p)
	bits := p.Types.FloatBits(ty)
	if floatKeyIsNan(ak) || floatKeyIsNan(bk) {
		return FromIndex(p.Intern(nanKey(ty, bits))), nil
	}
	switch bits {
	case 32:
		x := float32(floatKeyToF64(ak))
		y := float32(floatKeyToF64(bk))
		var r float32
		switch op {
		case fopAdd:
			r = x + y
		case fopSub:
			r = x - y
		case fopMul:
			r = x * y
		case fopDiv:
			r = x / y
		case fopRem:
			r = float32(math.Mod(float64(x), float64(y)))
		case fopMod:
			r = float32(floorMod(float64(x), float64(y)))
		}
		return p.FloatValue(ty, float64(r)), nil
	case 16, 64:
		x := floatKeyToF64(ak)
		y := floatKeyToF64(bk)
		var r float64
		switch op {
		case fopAdd:
			r = x + y
		case fopSub:
			r = x - y
		case fopMul:
			r = x * y
		case fopDiv:
			r = x / y
		case fopRem:
			r = math.Mod(x, y)
		case fopMod:
			r = floorMod(x, y)
		}
		return p.FloatValue(ty, r), nil
	case 80, 128:
		return p.floatBinBig(ty, bits, ak, bk, op), nil
	default:
		panic("value: unsupported float width")
	}
}

// floatBinBig computes at extended precision. Non-finite operands and
// division by zero fall back to host float64 semantics: infinities and NaN
// encode exactly at any width, so nothing is lost.
func (p *Pool) floatBinBig(ty types.TypeID, bits uint16, ak, bk FloatKey, op floatBinOp) Value {
	xf := floatKeyToF64(ak)
	yf := floatKeyToF64(bk)
	special := floatKeyIsInf(ak) || floatKeyIsInf(bk) ||
		(op == fopDiv && yf == 0) || (op == fopRem && yf == 0) || (op == fopMod && yf == 0)
	if !special {
		switch op {
		case fopAdd, fopSub, fopMul, fopDiv:
			prec := uint(f80Prec)
			if bits == 128 {
				prec = f128Prec
			}
			x := floatKeyToBig(ak)
			y := floatKeyToBig(bk)
			r := new(big.Float).SetPrec(prec)
			switch op {
			case fopAdd:
				r.Add(x, y)
			case fopSub:
				r.Sub(x, y)
			case fopMul:
				r.Mul(x, y)
			case fopDiv:
				r.Quo(x, y)
			}
			return FromIndex(p.Intern(bigToFloatKey(ty, bits, r)))
		}
	}
	var r float64
	switch op {
	case fopAdd:
		r = xf + yf
	case fopSub:
		r = xf - yf
	case fopMul:
		r = xf * yf
	case fopDiv:
		r = xf / yf
	case fopRem:
		r = math.Mod(xf, yf)
	case fopMod:
		r = floorMod(xf, yf)
	}
	return p.FloatValue(ty, r)
}

// floorMod is @mod for floats: the remainder takes the divisor's sign.
func floorMod(x, y float64) float64 {
	m := math.Mod(x, y)
	if m != 0 && (m < 0) != (y < 0) {
		m += y
	}
	return m
}

// FloatAdd adds lane-wise at the declared width.
func (p *Pool) FloatAdd(a, b Value, ty types.TypeID) (Value, error) {
	return p.floatBinVec(a, b, ty, fopAdd)
}

// FloatSub subtracts lane-wise at the declared width.
func (p *Pool) FloatSub(a, b Value, ty types.TypeID) (Value, error) {
	return p.floatBinVec(a, b, ty, fopSub)
}

// FloatMul multiplies lane-wise at the declared width.
func (p *Pool) FloatMul(a, b Value, ty types.TypeID) (Value, error) {
	return p.floatBinVec(a, b, ty, fopMul)
}

// FloatDiv divides lane-wise at the declared width.
func (p *Pool) FloatDiv(a, b Value, ty types.TypeID) (Value, error) {
	return p.floatBinVec(a, b, ty, fopDiv)
}

// FloatRem computes the truncated remainder lane-wise.
func (p *Pool) FloatRem(a, b Value, ty types.TypeID) (Value, error) {
	return p.floatBinVec(a, b, ty, fopRem)
}

// FloatMod computes the floored remainder lane-wise.
func (p *Pool) FloatMod(a, b Value, ty types.TypeID) (Value, error) {
	return p.floatBinVec(a, b, ty, fopMod)
}

func (p *Pool) floatBinVec(a, b Value, ty types.TypeID, op floatBinOp) (Value, error) {
	return p.mapLanes(ty, []Value{a, b}, func(sty types.TypeID, args []Value) (Value, error) {
		return p.floatBin(sty, args[0], args[1], op)
	})
}

// FloatUnaryFn identifies a unary float builtin.
type FloatUnaryFn uint8

const (
	FnSqrt FloatUnaryFn = iota
	FnSin
	FnCos
	FnTan
	FnExp
	FnExp2
	FnLog
	FnLog2
	FnLog10
	FnFabs
	FnFloor
	FnCeil
	FnRound
	FnTrunc
)

var floatUnaryHost = [...]func(float64) float64{
	FnSqrt:  math.Sqrt,
	FnSin:   math.Sin,
	FnCos:   math.Cos,
	FnTan:   math.Tan,
	FnExp:   math.Exp,
	FnExp2:  math.Exp2,
	FnLog:   math.Log,
	FnLog2:  math.Log2,
	FnLog10: math.Log10,
	FnFabs:  math.Abs,
	FnFloor: math.Floor,
	FnCeil:  math.Ceil,
	FnRound: math.Round,
	FnTrunc: math.Trunc,
}

// FloatUnary applies a transcendental or rounding builtin lane-wise at the
// declared width. f80/f128 sqrt and abs stay at extended precision;
// everything else computes through float64.
func (p *Pool) FloatUnary(a Value, ty types.TypeID, fn FloatUnaryFn) (Value, error) {
	return p.mapLanes(ty, []Value{a}, func(sty types.TypeID, args []Value) (Value, error) {
		v := args[0]
		if v.IsUndef(p) {
			return p.UndefValue(sty), nil
		}
		k := v.floatKey(p)
		bits := p.Types.FloatBits(sty)
		if floatKeyIsNan(k) {
			return FromIndex(p.Intern(nanKey(sty, bits))), nil
		}
		if bits >= 80 && !floatKeyIsInf(k) {
			switch fn {
			case FnSqrt:
				x := floatKeyToBig(k)
				if x.Sign() < 0 {
					return FromIndex(p.Intern(nanKey(sty, bits))), nil
				}
				r := new(big.Float).SetPrec(x.Prec()).Sqrt(x)
				return FromIndex(p.Intern(bigToFloatKey(sty, bits, r))), nil
			case FnFabs:
				x := floatKeyToBig(k)
				r := new(big.Float).SetPrec(x.Prec()).Abs(x)
				return FromIndex(p.Intern(bigToFloatKey(sty, bits, r))), nil
			}
		}
		switch bits {
		case 32:
			r := float32(floatUnaryHost[fn](floatKeyToF64(k)))
			return p.FloatValue(sty, float64(r)), nil
		default:
			return p.FloatValue(sty, floatUnaryHost[fn](floatKeyToF64(k))), nil
		}
	})
}

// MulAdd computes a*b + c lane-wise with a single rounding.
func (p *Pool) MulAdd(a, b, c Value, ty types.TypeID) (Value, error) {
	return p.mapLanes(ty, []Value{a, b, c}, func(sty types.TypeID, args []Value) (Value, error) {
		if anyUndef(p, args) {
			return p.UndefValue(sty), nil
		}
		ak := args[0].floatKey(p)
		bk := args[1].floatKey(p)
		ck := args[2].floatKey(p)
		bits := p.Types.FloatBits(sty)
		if floatKeyIsNan(ak) || floatKeyIsNan(bk) || floatKeyIsNan(ck) {
			return FromIndex(p.Intern(nanKey(sty, bits))), nil
		}
		switch bits {
		case 80, 128:
			if !floatKeyIsInf(ak) && !floatKeyIsInf(bk) && !floatKeyIsInf(ck) {
				// Wide intermediate keeps the product exact; the one
				// rounding happens at encode.
				x := floatKeyToBig(ak)
				y := floatKeyToBig(bk)
				z := floatKeyToBig(ck)
				prod := new(big.Float).SetPrec(2 * f128Prec).Mul(x, y)
				prod.Add(prod, z)
				return FromIndex(p.Intern(bigToFloatKey(sty, bits, prod))), nil
			}
		}
		r := math.FMA(floatKeyToF64(ak), floatKeyToF64(bk), floatKeyToF64(ck))
		if bits == 32 {
			r = float64(float32(r))
		}
		return p.FloatValue(sty, r), nil
	})
}

// FloatNeg flips the sign bit lane-wise, NaN payloads included.
func (p *Pool) FloatNeg(a Value, ty types.TypeID) (Value, error) {
	return p.mapLanes(ty, []Value{a}, func(sty types.TypeID, args []Value) (Value, error) {
		v := args[0]
		if v.IsUndef(p) {
			return p.UndefValue(sty), nil
		}
		k := v.floatKey(p)
		switch k.Bits {
		case 16:
			k.Lo ^= 0x8000
		case 32:
			k.Lo ^= 0x80000000
		case 64:
			k.Lo ^= 0x8000000000000000
		case 80:
			k.Hi ^= 0x8000
		case 128:
			k.Hi ^= 0x8000000000000000
		}
		k.Type = sty
		return FromIndex(p.Intern(k)), nil
	})
}
