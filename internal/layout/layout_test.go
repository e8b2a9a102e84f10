package layout

import (
	"errors"
	"testing"

	"sable/internal/target"
	"sable/internal/types"
)

func newEngine(t *testing.T) (*Engine, *types.Interner) {
	t.Helper()
	in := types.NewInterner()
	return New(target.X8664(), in), in
}

func TestIntContainerRounding(t *testing.T) {
	e, in := newEngine(t)
	cases := []struct {
		bits uint16
		size uint64
	}{
		{1, 1}, {8, 1}, {16, 2}, {33, 8}, {64, 8}, {128, 16},
	}
	for _, c := range cases {
		ty := in.Intern(types.MakeInt(c.bits, false))
		l, err := e.LayoutOf(ty)
		if err != nil {
			t.Fatalf("u%d: %v", c.bits, err)
		}
		if l.Size != c.size {
			t.Fatalf("u%d size = %d, want %d", c.bits, l.Size, c.size)
		}
		if l.Bits != uint64(c.bits) {
			t.Fatalf("u%d bits = %d", c.bits, l.Bits)
		}
	}
}

func TestComptimeIntHasNoSize(t *testing.T) {
	e, in := newEngine(t)
	_, err := e.LayoutOf(in.Builtins().ComptimeInt)
	var lerr *Error
	if !errors.As(err, &lerr) || lerr.Kind != ErrNotSized {
		t.Fatalf("expected not-sized error, got %v", err)
	}
}

func TestF80Slot(t *testing.T) {
	e, in := newEngine(t)
	l, err := e.LayoutOf(in.Builtins().F80)
	if err != nil {
		t.Fatalf("f80: %v", err)
	}
	if l.Size != 16 || l.Bits != 80 {
		t.Fatalf("f80 layout = %+v", l)
	}
}

func TestExternStructOffsets(t *testing.T) {
	e, in := newEngine(t)
	b := in.Builtins()
	s := in.RegisterStruct("mix", types.LayoutExtern, []types.Field{
		{Name: "a", Type: b.U8},
		{Name: "b", Type: b.U32},
		{Name: "c", Type: b.U8},
	})
	l, err := e.LayoutOf(s)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	want := []uint64{0, 4, 8}
	for i, off := range want {
		got, _ := e.FieldOffset(s, i)
		if got != off {
			t.Fatalf("field %d offset = %d, want %d", i, got, off)
		}
	}
	if l.Size != 12 || l.Align != 4 {
		t.Fatalf("struct layout = %+v", l)
	}
}

func TestPackedStructBits(t *testing.T) {
	e, in := newEngine(t)
	u5 := in.Intern(types.MakeInt(5, false))
	s := in.RegisterStruct("pair", types.LayoutPacked, []types.Field{
		{Name: "a", Type: u5},
		{Name: "b", Type: in.Builtins().U8},
	})
	l, err := e.LayoutOf(s)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if l.Bits != 13 || l.Size != 2 {
		t.Fatalf("packed layout = %+v, want 13 bits in 2 bytes", l)
	}
	off, err := e.PackedFieldBitOffset(s, 1)
	if err != nil || off != 5 {
		t.Fatalf("field b bit offset = %d (%v), want 5", off, err)
	}
}

func TestSlicePointerIsTwoWords(t *testing.T) {
	e, in := newEngine(t)
	slice := in.Intern(types.MakePointer(in.Builtins().U8, types.PtrSlice))
	l, err := e.LayoutOf(slice)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if l.Size != 16 || l.Align != 8 {
		t.Fatalf("slice layout = %+v", l)
	}
}

func TestOptionalPointerReusesNull(t *testing.T) {
	e, in := newEngine(t)
	ptr := in.Intern(types.MakePointer(in.Builtins().U8, types.PtrSingle))
	opt := in.Intern(types.MakeOptional(ptr))
	pl, _ := e.LayoutOf(ptr)
	ol, err := e.LayoutOf(opt)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if ol.Size != pl.Size || ol.Align != pl.Align || ol.Bits != pl.Bits {
		t.Fatalf("optional pointer layout %+v, want pointer's %+v", ol, pl)
	}
}

func TestVectorBits(t *testing.T) {
	e, in := newEngine(t)
	u1 := in.Builtins().U1
	vec := in.Intern(types.MakeVector(u1, 13))
	l, err := e.LayoutOf(vec)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if l.Bits != 13 || l.Size != 2 {
		t.Fatalf("vector<13 x u1> layout = %+v", l)
	}
}

func TestEnumUsesTagLayout(t *testing.T) {
	e, in := newEngine(t)
	enum := in.RegisterEnum("color", in.Builtins().U16)
	l, err := e.LayoutOf(enum)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if l.Size != 2 || l.Bits != 16 {
		t.Fatalf("enum layout = %+v", l)
	}
}
