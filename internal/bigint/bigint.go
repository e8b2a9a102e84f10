// Package bigint adapts math/big to the two's-complement, fixed-width
// semantics compile-time integer arithmetic needs: wrap, saturate, detect
// overflow against a declared bit width, and move values to and from packed
// memory at explicit bit offsets.
package bigint

import (
	"math/big"
	"math/bits"
)

// Space is a caller-owned scratch slot used to view an integer value as a
// big.Int without allocating per call. It must not outlive the call frame
// that declared it.
type Space struct {
	val big.Int
}

// Int returns the scratch big.Int backing the space.
func (s *Space) Int() *big.Int {
	return &s.val
}

// TwosCompLimbCount returns the number of machine-word limbs needed to hold
// a two's-complement value of the given bit width.
func TwosCompLimbCount(bitCount uint64) int {
	if bitCount == 0 {
		return 1
	}
	return int((bitCount + uint64(bits.UintSize) - 1) / uint64(bits.UintSize))
}

// MulLimbsLen sizes a buffer able to hold the product of operands with the
// given limb counts.
func MulLimbsLen(aLen, bLen int) int {
	return aLen + bLen + 1
}

// DivLimbsLen sizes quotient/remainder buffers for operands with the given
// limb counts.
func DivLimbsLen(aLen, bLen int) int {
	return aLen + bLen + 2
}

// Min returns the smallest value representable by the width.
func Min(bitCount uint16, signed bool) *big.Int {
	if !signed || bitCount == 0 {
		return new(big.Int)
	}
	// -2^(n-1)
	m := new(big.Int).Lsh(big.NewInt(1), uint(bitCount-1))
	return m.Neg(m)
}

// Max returns the largest value representable by the width.
func Max(bitCount uint16, signed bool) *big.Int {
	if bitCount == 0 {
		return new(big.Int)
	}
	n := uint(bitCount)
	if signed {
		n--
	}
	m := new(big.Int).Lsh(big.NewInt(1), n)
	return m.Sub(m, big.NewInt(1))
}

// FitsIn reports whether x is representable in the given width without
// wrapping.
func FitsIn(x *big.Int, bitCount uint16, signed bool) bool {
	if x.Sign() < 0 && !signed {
		return false
	}
	return x.Cmp(Min(bitCount, signed)) >= 0 && x.Cmp(Max(bitCount, signed)) <= 0
}

// Truncate wraps x into the width's range, two's-complement style, storing
// the result in out and returning it.
func Truncate(out, x *big.Int, bitCount uint16, signed bool) *big.Int {
	if bitCount == 0 {
		return out.SetInt64(0)
	}
	mod := new(big.Int).Lsh(big.NewInt(1), uint(bitCount))
	out.Mod(x, mod) // non-negative remainder
	if signed {
		half := new(big.Int).Rsh(mod, 1)
		if out.Cmp(half) >= 0 {
			out.Sub(out, mod)
		}
	}
	return out
}

// Clamp saturates x into the width's range, storing the result in out.
func Clamp(out, x *big.Int, bitCount uint16, signed bool) *big.Int {
	if min := Min(bitCount, signed); x.Cmp(min) < 0 {
		return out.Set(min)
	}
	if max := Max(bitCount, signed); x.Cmp(max) > 0 {
		return out.Set(max)
	}
	return out.Set(x)
}

// DivFloor stores the floored quotient of a/b in out. math/big's Quo
// truncates toward zero, so a correction is applied when the signs differ
// and the division is inexact.
func DivFloor(out, a, b *big.Int) *big.Int {
	var r big.Int
	out.QuoRem(a, b, &r)
	if r.Sign() != 0 && (a.Sign() < 0) != (b.Sign() < 0) {
		out.Sub(out, big.NewInt(1))
	}
	return out
}

// ModFloor stores the floored remainder of a/b in out; the result carries
// the divisor's sign.
func ModFloor(out, a, b *big.Int) *big.Int {
	out.Rem(a, b)
	if out.Sign() != 0 && (out.Sign() < 0) != (b.Sign() < 0) {
		out.Add(out, b)
	}
	return out
}

// ByteSwap reverses the byte order of x viewed as a bitCount-wide
// two's-complement value. bitCount must be a multiple of 8.
func ByteSwap(out, x *big.Int, bitCount uint16, signed bool) *big.Int {
	if bitCount%8 != 0 {
		panic("bigint: ByteSwap width not byte-sized")
	}
	var m big.Int
	Truncate(&m, x, bitCount, false)
	byteLen := int(bitCount) / 8
	buf := make([]byte, byteLen)
	m.FillBytes(buf) // big-endian
	for i, j := 0, byteLen-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	out.SetBytes(buf)
	return Truncate(out, out, bitCount, signed)
}

// BitReverse reverses the bit order of x viewed as a bitCount-wide
// two's-complement value.
func BitReverse(out, x *big.Int, bitCount uint16, signed bool) *big.Int {
	var m big.Int
	Truncate(&m, x, bitCount, false)
	var rev big.Int
	for i := 0; i < int(bitCount); i++ {
		if m.Bit(i) != 0 {
			rev.SetBit(&rev, int(bitCount)-1-i, 1)
		}
	}
	out.Set(&rev)
	return Truncate(out, out, bitCount, signed)
}

// PopCount counts set bits of x viewed as a bitCount-wide two's-complement
// value.
func PopCount(x *big.Int, bitCount uint16) uint64 {
	var m big.Int
	Truncate(&m, x, bitCount, false)
	var n uint64
	for _, w := range m.Bits() {
		n += uint64(bits.OnesCount(uint(w)))
	}
	return n
}

// LeadingZeros counts zero bits above the highest set bit within the width.
func LeadingZeros(x *big.Int, bitCount uint16) uint64 {
	var m big.Int
	Truncate(&m, x, bitCount, false)
	return uint64(bitCount) - uint64(m.BitLen())
}

// TrailingZeros counts zero bits below the lowest set bit; a zero value has
// bitCount trailing zeros.
func TrailingZeros(x *big.Int, bitCount uint16) uint64 {
	var m big.Int
	Truncate(&m, x, bitCount, false)
	if m.Sign() == 0 {
		return uint64(bitCount)
	}
	var n uint64
	for m.Bit(int(n)) == 0 {
		n++
	}
	return n
}
