package value

import (
	"math"
	"math/big"

	"sable/internal/types"
)

// Soft-float support for the two widths the host cannot represent (f80,
// f128) and for f16. Values are keyed by exact bit pattern; arithmetic
// decodes the pattern, computes at the declared width, and re-encodes.
// f80/f128 round through big.Float with mantissa precision 64 and 113.

const (
	f80Prec  = 64
	f128Prec = 113
)

// Canonical quiet-NaN patterns per width.
func nanKey(ty types.TypeID, bits uint16) FloatKey {
	k := FloatKey{Type: ty, Bits: bits}
	switch bits {
	case 16:
		k.Lo = 0x7E00
	case 32:
		k.Lo = 0x7FC00000
	case 64:
		k.Lo = 0x7FF8000000000000
	case 80:
		k.Hi = 0x7FFF
		k.Lo = 0xC000000000000000
	case 128:
		k.Hi = 0x7FFF800000000000
	default:
		panic("value: unsupported float width")
	}
	return k
}

func infKey(ty types.TypeID, bits uint16, neg bool) FloatKey {
	k := FloatKey{Type: ty, Bits: bits}
	switch bits {
	case 16:
		k.Lo = 0x7C00
	case 32:
		k.Lo = 0x7F800000
	case 64:
		k.Lo = 0x7FF0000000000000
	case 80:
		k.Hi = 0x7FFF
		k.Lo = 0x8000000000000000
	case 128:
		k.Hi = 0x7FFF000000000000
	default:
		panic("value: unsupported float width")
	}
	if neg {
		k = setFloatSign(k)
	}
	return k
}

func setFloatSign(k FloatKey) FloatKey {
	switch k.Bits {
	case 16:
		k.Lo |= 0x8000
	case 32:
		k.Lo |= 0x80000000
	case 64:
		k.Lo |= 0x8000000000000000
	case 80:
		k.Hi |= 0x8000
	case 128:
		k.Hi |= 0x8000000000000000
	}
	return k
}

func floatKeyIsNan(k FloatKey) bool {
	switch k.Bits {
	case 16:
		return k.Lo&0x7C00 == 0x7C00 && k.Lo&0x03FF != 0
	case 32:
		return k.Lo&0x7F800000 == 0x7F800000 && k.Lo&0x007FFFFF != 0
	case 64:
		return k.Lo&0x7FF0000000000000 == 0x7FF0000000000000 && k.Lo&0x000FFFFFFFFFFFFF != 0
	case 80:
		return k.Hi&0x7FFF == 0x7FFF && k.Lo&0x7FFFFFFFFFFFFFFF != 0
	case 128:
		return k.Hi&0x7FFF000000000000 == 0x7FFF000000000000 &&
			(k.Hi&0x0000FFFFFFFFFFFF != 0 || k.Lo != 0)
	default:
		return false
	}
}

func floatKeyIsInf(k FloatKey) bool {
	switch k.Bits {
	case 16:
		return k.Lo&0x7FFF == 0x7C00
	case 32:
		return k.Lo&0x7FFFFFFF == 0x7F800000
	case 64:
		return k.Lo&0x7FFFFFFFFFFFFFFF == 0x7FF0000000000000
	case 80:
		return k.Hi&0x7FFF == 0x7FFF && k.Lo == 0x8000000000000000
	case 128:
		return k.Hi&0x7FFFFFFFFFFFFFFF == 0x7FFF000000000000 && k.Lo == 0
	default:
		return false
	}
}

// f16 <-> f64 ---------------------------------------------------------------

func f16ToF64(b uint16) float64 {
	sign := float64(1)
	if b&0x8000 != 0 {
		sign = -1
	}
	exp := int(b >> 10 & 0x1F)
	frac := uint64(b & 0x03FF)
	switch exp {
	case 0x1F:
		if frac != 0 {
			return math.NaN()
		}
		return sign * math.Inf(1)
	case 0:
		return sign * float64(frac) * math.Ldexp(1, -24)
	default:
		return sign * float64(1024+frac) * math.Ldexp(1, exp-25)
	}
}

func f64ToF16(f float64) uint16 {
	f32 := float32(f)
	b := math.Float32bits(f32)
	sign := uint16(b >> 16 & 0x8000)
	frac := b & 0x7FFFFF
	if b>>23&0xFF == 0xFF {
		if frac != 0 {
			return sign | 0x7E00
		}
		return sign | 0x7C00
	}
	exp := int32(b>>23&0xFF) - 127 + 15
	if exp >= 0x1F {
		return sign | 0x7C00
	}
	if exp <= 0 {
		if exp < -10 {
			return sign
		}
		frac |= 0x800000
		shift := uint32(14 - exp)
		half := uint32(1) << (shift - 1)
		v := frac >> shift
		rem := frac & ((uint32(1) << shift) - 1)
		if rem > half || (rem == half && v&1 == 1) {
			v++
		}
		return sign | uint16(v)
	}
	v := uint32(exp)<<10 | frac>>13
	rem := frac & 0x1FFF
	if rem > 0x1000 || (rem == 0x1000 && v&1 == 1) {
		v++
	}
	return sign | uint16(v)
}

// f80/f128 <-> big.Float ----------------------------------------------------

// f80ToBig decodes an x87 extended real. The significand keeps its integer
// bit explicitly in Lo.
func f80ToBig(hi, lo uint64) *big.Float {
	exp := int(hi & 0x7FFF)
	neg := hi&0x8000 != 0
	mant := new(big.Int).SetUint64(lo)
	var e2 int
	if exp == 0 {
		e2 = -16382 - 63
	} else {
		e2 = exp - 16383 - 63
	}
	f := new(big.Float).SetPrec(f80Prec).SetInt(mant)
	f.SetMantExp(f, e2)
	if neg {
		f.Neg(f)
	}
	return f
}

// f128ToBig decodes an IEEE binary128 value with its implicit leading bit.
func f128ToBig(hi, lo uint64) *big.Float {
	exp := int(hi >> 48 & 0x7FFF)
	neg := hi>>63 != 0
	frac := new(big.Int).SetUint64(hi & 0x0000FFFFFFFFFFFF)
	frac.Lsh(frac, 64)
	frac.Or(frac, new(big.Int).SetUint64(lo))
	mant := frac
	var e2 int
	if exp == 0 {
		e2 = 1 - 16383 - 112
	} else {
		mant = new(big.Int).Or(frac, new(big.Int).Lsh(big.NewInt(1), 112))
		e2 = exp - 16383 - 112
	}
	f := new(big.Float).SetPrec(f128Prec).SetInt(mant)
	f.SetMantExp(f, e2)
	if neg {
		f.Neg(f)
	}
	return f
}

// bigToF80 encodes with truncation on subnormal underflow.
func bigToF80(ty types.TypeID, f *big.Float) FloatKey {
	neg := f.Signbit()
	if f.IsInf() {
		return infKey(ty, 80, neg)
	}
	if f.Sign() == 0 {
		k := FloatKey{Type: ty, Bits: 80}
		if neg {
			k = setFloatSign(k)
		}
		return k
	}
	var mant big.Float
	exp := f.MantExp(&mant)
	mant.Abs(&mant)
	// mant64 = |mant| * 2^64, an integer in [2^63, 2^64).
	var scaled big.Float
	scaled.SetPrec(f80Prec).SetMantExp(&mant, 64)
	mantInt, _ := scaled.Int(nil)
	e := exp - 1 + 16383
	if mantInt.BitLen() > 64 {
		// Rounding to working precision carried past the top bit.
		mantInt.Rsh(mantInt, 1)
		e++
	}
	if e >= 0x7FFF {
		return infKey(ty, 80, neg)
	}
	if e <= 0 {
		shift := uint(1 - e)
		if shift >= 64 {
			k := FloatKey{Type: ty, Bits: 80}
			if neg {
				k = setFloatSign(k)
			}
			return k
		}
		mantInt.Rsh(mantInt, shift)
		e = 0
	}
	k := FloatKey{Type: ty, Bits: 80, Hi: uint64(e), Lo: mantInt.Uint64()}
	if neg {
		k = setFloatSign(k)
	}
	return k
}

func bigToF128(ty types.TypeID, f *big.Float) FloatKey {
	neg := f.Signbit()
	if f.IsInf() {
		return infKey(ty, 128, neg)
	}
	if f.Sign() == 0 {
		k := FloatKey{Type: ty, Bits: 128}
		if neg {
			k = setFloatSign(k)
		}
		return k
	}
	var mant big.Float
	exp := f.MantExp(&mant)
	mant.Abs(&mant)
	var scaled big.Float
	scaled.SetPrec(f128Prec).SetMantExp(&mant, 113)
	mantInt, _ := scaled.Int(nil) // integer in [2^112, 2^113)
	e := exp - 1 + 16383
	if mantInt.BitLen() > 113 {
		mantInt.Rsh(mantInt, 1)
		e++
	}
	if e >= 0x7FFF {
		return infKey(ty, 128, neg)
	}
	if e <= 0 {
		shift := uint(1 - e)
		if shift >= 113 {
			k := FloatKey{Type: ty, Bits: 128}
			if neg {
				k = setFloatSign(k)
			}
			return k
		}
		mantInt.Rsh(mantInt, shift)
		e = 0
	} else {
		mantInt.SetBit(mantInt, 112, 0) // drop the implicit bit
	}
	var hiInt big.Int
	hiInt.Rsh(mantInt, 64)
	lo := new(big.Int).And(mantInt, new(big.Int).SetUint64(^uint64(0))).Uint64()
	k := FloatKey{
		Type: ty,
		Bits: 128,
		Hi:   uint64(e)<<48 | hiInt.Uint64(),
		Lo:   lo,
	}
	if neg {
		k = setFloatSign(k)
	}
	return k
}

// floatKeyFromF64 encodes a host float64 at the declared width.
func floatKeyFromF64(ty types.TypeID, bits uint16, f float64) FloatKey {
	if math.IsNaN(f) {
		return nanKey(ty, bits)
	}
	switch bits {
	case 16:
		return FloatKey{Type: ty, Bits: 16, Lo: uint64(f64ToF16(f))}
	case 32:
		return FloatKey{Type: ty, Bits: 32, Lo: uint64(math.Float32bits(float32(f)))}
	case 64:
		return FloatKey{Type: ty, Bits: 64, Lo: math.Float64bits(f)}
	case 80:
		return bigToF80(ty, new(big.Float).SetPrec(f80Prec).SetFloat64(f))
	case 128:
		return bigToF128(ty, new(big.Float).SetPrec(f128Prec).SetFloat64(f))
	default:
		panic("value: unsupported float width")
	}
}

// floatKeyToF64 decodes a pattern to the nearest host float64.
func floatKeyToF64(k FloatKey) float64 {
	if floatKeyIsNan(k) {
		return math.NaN()
	}
	switch k.Bits {
	case 16:
		return f16ToF64(uint16(k.Lo))
	case 32:
		return float64(math.Float32frombits(uint32(k.Lo)))
	case 64:
		return math.Float64frombits(k.Lo)
	case 80:
		f, _ := f80ToBig(k.Hi, k.Lo).Float64()
		return f
	case 128:
		f, _ := f128ToBig(k.Hi, k.Lo).Float64()
		return f
	default:
		panic("value: unsupported float width")
	}
}

// floatKeyToBig decodes a pattern for a big.Float computation at the
// width's working precision. NaN must be screened out by the caller.
func floatKeyToBig(k FloatKey) *big.Float {
	if floatKeyIsInf(k) {
		return new(big.Float).SetInf(floatKeySignBit(k))
	}
	switch k.Bits {
	case 80:
		return f80ToBig(k.Hi, k.Lo)
	case 128:
		return f128ToBig(k.Hi, k.Lo)
	default:
		return new(big.Float).SetPrec(f80Prec).SetFloat64(floatKeyToF64(k))
	}
}

// bigToFloatKey encodes a big.Float result at the declared width.
func bigToFloatKey(ty types.TypeID, bits uint16, f *big.Float) FloatKey {
	switch bits {
	case 80:
		return bigToF80(ty, f)
	case 128:
		return bigToF128(ty, f)
	default:
		v, _ := f.Float64()
		return floatKeyFromF64(ty, bits, v)
	}
}
