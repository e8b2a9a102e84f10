package value

import (
	"sable/internal/layout"
	"sable/internal/types"
)

// HasRepeatedByteRepr serializes the value and reports whether every byte of
// its representation is identical, which lets codegen lower the store as a
// memset. A value whose layout is undefined or not serializable simply
// answers false; the codec's errors are not interesting here.
func (p *Pool) HasRepeatedByteRepr(v Value, ty types.TypeID, e *layout.Engine) (byte, bool) {
	size, err := sizeOf(e, ty)
	if err != nil || size == 0 {
		return 0, false
	}
	buf := make([]byte, size)
	if err := p.WriteToMemory(v, ty, e, buf); err != nil {
		return 0, false
	}
	first := buf[0]
	for _, b := range buf[1:] {
		if b != first {
			return 0, false
		}
	}
	return first, true
}
