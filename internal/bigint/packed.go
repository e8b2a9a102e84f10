package bigint

import (
	"encoding/binary"
	"math/big"
)

// Packed two's-complement memory access.
//
// Bit i of the value (i = 0 is the least significant bit) lives at absolute
// bit position p = bitOffset + i of the buffer. Under little endian p maps
// forward from the first byte; under big endian the buffer is a big-endian
// integer, so p maps backward from the last byte. Callers choose the buffer
// window; for big-endian packed containers that means handing in a window
// that ends where the container ends.
func bitAddr(buf []byte, p uint64, order binary.ByteOrder) (byteIdx int, bit uint) {
	if order == binary.ByteOrder(binary.BigEndian) {
		return len(buf) - 1 - int(p/8), uint(p % 8)
	}
	return int(p / 8), uint(p % 8)
}

func isBigEndian(order binary.ByteOrder) bool {
	return order == binary.ByteOrder(binary.BigEndian)
}

// WriteTwosComplement stores x into buf as a bitCount-wide two's-complement
// field starting at bitOffset. Bits outside the field are preserved.
func WriteTwosComplement(buf []byte, x *big.Int, bitOffset, bitCount uint64, order binary.ByteOrder) {
	var m big.Int
	if bitCount > 0 && bitCount <= uint64(^uint16(0)) {
		Truncate(&m, x, uint16(bitCount), false)
	} else {
		twosComp(&m, x, bitCount)
	}
	for i := uint64(0); i < bitCount; i++ {
		byteIdx, bit := bitAddr(buf, bitOffset+i, order)
		if m.Bit(int(i)) != 0 {
			buf[byteIdx] |= 1 << bit
		} else {
			buf[byteIdx] &^= 1 << bit
		}
	}
}

// ReadTwosComplement extracts a bitCount-wide field starting at bitOffset,
// sign-extending when signed.
func ReadTwosComplement(out *big.Int, buf []byte, bitOffset, bitCount uint64, order binary.ByteOrder, signed bool) *big.Int {
	// Pre-size the result's limbs for the width being read.
	limbs := make([]big.Word, TwosCompLimbCount(bitCount))
	out.SetBits(limbs)
	for i := uint64(0); i < bitCount; i++ {
		byteIdx, bit := bitAddr(buf, bitOffset+i, order)
		if buf[byteIdx]&(1<<bit) != 0 {
			out.SetBit(out, int(i), 1)
		}
	}
	if signed && bitCount > 0 && out.Bit(int(bitCount-1)) != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(bitCount))
		out.Sub(out, mod)
	}
	return out
}

// twosComp handles widths beyond uint16 range (arbitrary-precision reads
// never need this today, but the engine contract allows it).
func twosComp(out, x *big.Int, bitCount uint64) *big.Int {
	mod := new(big.Int).Lsh(big.NewInt(1), uint(bitCount))
	return out.Mod(x, mod)
}

// WriteFixed stores a value of byte-aligned width into buf[0:byteLen] in the
// given byte order, for the fast fixed-width scalar path.
func WriteFixed(buf []byte, x uint64, byteLen int, order binary.ByteOrder) {
	var tmp [8]byte
	order.PutUint64(tmp[:], x)
	if isBigEndian(order) {
		copy(buf[:byteLen], tmp[8-byteLen:])
	} else {
		copy(buf[:byteLen], tmp[:byteLen])
	}
}

// ReadFixed extracts a byte-aligned scalar of byteLen bytes, sign-extending
// when signed.
func ReadFixed(buf []byte, byteLen int, order binary.ByteOrder, signed bool, bitCount uint16) (u uint64, i int64) {
	var tmp [8]byte
	if isBigEndian(order) {
		copy(tmp[8-byteLen:], buf[:byteLen])
	} else {
		copy(tmp[:byteLen], buf[:byteLen])
	}
	u = order.Uint64(tmp[:])
	if bitCount > 0 && bitCount < 64 {
		u &= (1 << bitCount) - 1
	}
	if signed {
		shift := 64 - uint(bitCount)
		i = int64(u<<shift) >> shift
	} else {
		i = int64(u)
	}
	return u, i
}
