package value

import (
	"errors"
	"testing"
)

func TestIntFromFloatTruncatesTowardZero(t *testing.T) {
	p := newPool(t)
	b := p.Types.Builtins()
	v, err := p.IntFromFloat(p.FloatValue(b.F64, -2.9), b.I32)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if v.ToSignedInt(p) != -2 {
		t.Fatalf("trunc(-2.9) = %d, want -2", v.ToSignedInt(p))
	}
	if _, err := p.IntFromFloat(p.FloatValue(b.F64, 300), b.U8); !errors.Is(err, ErrOverflow) {
		t.Fatalf("300 into u8 = %v, want overflow", err)
	}
	nan := FromIndex(p.Intern(nanKey(b.F64, 64)))
	if _, err := p.IntFromFloat(nan, b.I32); !errors.Is(err, ErrOverflow) {
		t.Fatalf("NaN conversion = %v, want overflow", err)
	}
}

func TestFloatFromIntRounds(t *testing.T) {
	p := newPool(t)
	b := p.Types.Builtins()
	v, err := p.FloatFromInt(p.UintValue(b.U32, 7), b.F32)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if v.ToFloat(p) != 7 {
		t.Fatalf("float(7) = %v", v.ToFloat(p))
	}
	// 2^24+1 is the first integer f32 cannot represent; nearest-even
	// rounds it down.
	big24, err := p.FloatFromInt(p.UintValue(b.U32, 1<<24+1), b.F32)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if big24.ToFloat(p) != 1<<24 {
		t.Fatalf("float(2^24+1) = %v, want 2^24", big24.ToFloat(p))
	}
}

func TestFloatCastNarrows(t *testing.T) {
	p := newPool(t)
	b := p.Types.Builtins()
	src := p.FloatValue(b.F64, 1.1)
	v, err := p.FloatCast(src, b.F32)
	if err != nil {
		t.Fatalf("cast: %v", err)
	}
	if got, want := v.ToFloat(p), float64(float32(1.1)); got != want {
		t.Fatalf("f64->f32 = %v, want %v", got, want)
	}
	nan := FromIndex(p.Intern(FloatKey{Type: b.F64, Bits: 64, Lo: 0x7FF8000000000001}))
	cast, err := p.FloatCast(nan, b.F16)
	if err != nil {
		t.Fatalf("cast: %v", err)
	}
	if !cast.IsNan(p) {
		t.Fatalf("NaN must cast to NaN")
	}
}

func TestIntCastChecksRange(t *testing.T) {
	p := newPool(t)
	b := p.Types.Builtins()
	v, err := p.IntCast(p.UintValue(b.U32, 200), b.U8)
	if err != nil {
		t.Fatalf("cast: %v", err)
	}
	if v.ToUnsignedInt(p) != 200 {
		t.Fatalf("cast(200) = %d", v.ToUnsignedInt(p))
	}
	if _, err := p.IntCast(p.UintValue(b.U32, 300), b.U8); !errors.Is(err, ErrOverflow) {
		t.Fatalf("cast(300) into u8 = %v, want overflow", err)
	}
}

func TestTruncateDiscardsHighBits(t *testing.T) {
	p := newPool(t)
	b := p.Types.Builtins()
	v, err := p.Truncate(p.UintValue(b.U32, 0x1FF), b.U8)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
	if v.ToUnsignedInt(p) != 0xFF {
		t.Fatalf("truncate(0x1FF) = %#x, want 0xFF", v.ToUnsignedInt(p))
	}
	s, err := p.Truncate(p.UintValue(b.U32, 0xFF), b.I8)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
	if s.ToSignedInt(p) != -1 {
		t.Fatalf("truncate(0xFF) as i8 = %d, want -1", s.ToSignedInt(p))
	}
}
