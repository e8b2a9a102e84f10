package value

import (
	"encoding/binary"
	"fmt"
	"math/big"
)

// Canonical key encoding used for hash-consing: structurally equal keys
// produce byte-equal encodings, so the pool's dedup map can be keyed by the
// encoded string. Kind tags are distinct across key kinds; variable-length
// payloads are length-prefixed so encodings never alias.

type keyTag uint8

const (
	tagSimple keyTag = iota + 1
	tagUndef
	tagInt
	tagFloat
	tagErr
	tagErrorUnion
	tagOpt
	tagPtr
	tagAggregate
	tagUnion
)

type keyEncoder struct {
	buf []byte
}

func (e *keyEncoder) u8(v uint8) {
	e.buf = append(e.buf, v)
}

func (e *keyEncoder) u32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

func (e *keyEncoder) u64(v uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}

func (e *keyEncoder) str(s string) {
	e.u32(uint32(len(s)))
	e.buf = append(e.buf, s...)
}

func (e *keyEncoder) bytes(b []byte) {
	e.u32(uint32(len(b)))
	e.buf = append(e.buf, b...)
}

func (e *keyEncoder) bigInt(x *big.Int) {
	if x.Sign() < 0 {
		e.u8(1)
	} else {
		e.u8(0)
	}
	e.bytes(x.Bytes())
}

func encodeKey(k Key) string {
	var e keyEncoder
	switch k := k.(type) {
	case SimpleKey:
		e.u8(uint8(tagSimple))
		e.u8(uint8(k.Kind))
		e.u32(uint32(k.Type))
	case UndefKey:
		e.u8(uint8(tagUndef))
		e.u32(uint32(k.Type))
	case IntKey:
		e.u8(uint8(tagInt))
		e.u32(uint32(k.Type))
		e.u8(uint8(k.Storage))
		switch k.Storage {
		case StorageU64:
			e.u64(k.U64)
		case StorageI64:
			e.u64(uint64(k.I64))
		case StorageBig:
			e.bigInt(k.Big)
		case StorageLazyAlign, StorageLazySize:
			e.u32(uint32(k.Lazy))
		}
	case FloatKey:
		e.u8(uint8(tagFloat))
		e.u32(uint32(k.Type))
		e.u64(uint64(k.Bits))
		e.u64(k.Lo)
		e.u64(k.Hi)
	case ErrKey:
		e.u8(uint8(tagErr))
		e.u32(uint32(k.Type))
		e.str(k.Name)
	case ErrorUnionKey:
		e.u8(uint8(tagErrorUnion))
		e.u32(uint32(k.Type))
		e.str(k.ErrName)
		e.u32(uint32(k.Payload))
	case OptKey:
		e.u8(uint8(tagOpt))
		e.u32(uint32(k.Type))
		e.u32(uint32(k.Child))
	case PtrKey:
		e.u8(uint8(tagPtr))
		e.u32(uint32(k.Type))
		e.u8(uint8(k.Addr))
		e.u64(k.Int)
		e.u32(uint32(k.Decl))
		e.u32(uint32(k.Anon))
		e.u32(uint32(k.Base))
		e.u64(k.Off)
		e.u32(uint32(k.Len))
	case AggregateKey:
		e.u8(uint8(tagAggregate))
		e.u32(uint32(k.Type))
		e.u8(uint8(k.Storage))
		switch k.Storage {
		case AggBytes:
			e.bytes(k.Bytes)
		case AggElems:
			e.u32(uint32(len(k.Elems)))
			for _, el := range k.Elems {
				e.u32(uint32(el))
			}
		case AggRepeated:
			e.u32(uint32(k.Repeated))
		}
	case UnionKey:
		e.u8(uint8(tagUnion))
		e.u32(uint32(k.Type))
		e.u32(uint32(k.Tag))
		e.u32(uint32(k.Val))
	default:
		panic(fmt.Sprintf("value: unknown key kind %T", k))
	}
	return string(e.buf)
}
