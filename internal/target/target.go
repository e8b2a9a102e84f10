package target

import (
	"encoding/binary"
	"fmt"
)

// Endianness is the byte order a target stores multi-byte scalars in.
type Endianness uint8

const (
	Little Endianness = iota
	Big
)

func (e Endianness) String() string {
	switch e {
	case Little:
		return "little"
	case Big:
		return "big"
	default:
		return fmt.Sprintf("Endianness(%d)", e)
	}
}

// Target describes the machine the compiled program runs on. Every
// memory-codec and float operation consults the target, never the host.
type Target struct {
	Name    string
	Endian  Endianness
	PtrBits uint16
}

// X8664 is the default development target.
func X8664() Target {
	return Target{
		Name:    "x86_64-linux-gnu",
		Endian:  Little,
		PtrBits: 64,
	}
}

// Sparc64 is the big-endian target used by the codec tests.
func Sparc64() Target {
	return Target{
		Name:    "sparc64-linux-gnu",
		Endian:  Big,
		PtrBits: 64,
	}
}

// ByteOrder maps the declared endianness onto encoding/binary.
func (t Target) ByteOrder() binary.ByteOrder {
	if t.Endian == Big {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// PtrBytes returns the pointer size in bytes.
func (t Target) PtrBytes() uint64 {
	return uint64(t.PtrBits) / 8
}
