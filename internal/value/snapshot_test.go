package value

import (
	"bytes"
	"math/big"
	"path/filepath"
	"testing"

	"sable/internal/types"
)

func populate(p *Pool) []Index {
	b := p.Types.Builtins()
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	arr := p.Types.Intern(types.MakeArray(b.U8, 2))
	var out []Index
	out = append(out, p.IntValue(b.I32, -42).Index())
	out = append(out, p.BigValue(b.ComptimeInt, huge).Index())
	out = append(out, p.FloatValue(b.F80, 1.25).Index())
	out = append(out, p.UndefValue(b.U64).Index())
	out = append(out, p.LazySizeValue(b.U32).Index())
	out = append(out, p.Intern(AggregateKey{Type: arr, Storage: AggBytes, Bytes: []byte{9, 8}}))
	out = append(out, p.Intern(AggregateKey{Type: arr, Storage: AggRepeated, Repeated: p.UintValue(b.U8, 7).Index()}))
	ptrTy := p.Types.Intern(types.MakePointer(b.U8, types.PtrSingle))
	out = append(out, p.Intern(PtrKey{Type: ptrTy, Addr: AddrMutDecl, Decl: 5}))
	es := p.Types.RegisterErrorSet([]string{"Bad"})
	out = append(out, p.Intern(ErrKey{Type: es, Name: "Bad"}))
	opt := p.Types.Intern(types.MakeOptional(ptrTy))
	out = append(out, p.Intern(OptKey{Type: opt}))
	return out
}

func TestSnapshotRoundTripPreservesIndices(t *testing.T) {
	in := types.NewInterner()
	p := NewPool(in)
	idxs := populate(p)

	var buf bytes.Buffer
	if err := p.WriteSnapshot(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	restored, err := ReadSnapshot(&buf, in)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if restored.Len() != p.Len() {
		t.Fatalf("restored %d entries, want %d", restored.Len(), p.Len())
	}
	for _, idx := range idxs {
		want := encodeKey(p.IndexToKey(idx))
		got := encodeKey(restored.IndexToKey(idx))
		if want != got {
			t.Fatalf("index %d diverged after restore", idx)
		}
	}
	// Interning the same content into the restored pool must dedup onto
	// the original indices.
	if got := restored.IntValue(restored.Types.Builtins().I32, -42).Index(); got != idxs[0] {
		t.Fatalf("re-intern landed at %d, want %d", got, idxs[0])
	}
}

func TestSnapshotFileMissIsNotAnError(t *testing.T) {
	in := types.NewInterner()
	_, ok, err := LoadSnapshotFile(filepath.Join(t.TempDir(), "absent.mp"), in)
	if err != nil || ok {
		t.Fatalf("missing file = (%v, %v), want clean miss", ok, err)
	}
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	in := types.NewInterner()
	p := NewPool(in)
	populate(p)
	path := filepath.Join(t.TempDir(), "pool.mp")
	if err := p.SaveSnapshotFile(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	restored, ok, err := LoadSnapshotFile(path, in)
	if err != nil || !ok {
		t.Fatalf("load = (%v, %v)", ok, err)
	}
	if restored.Len() != p.Len() {
		t.Fatalf("restored %d entries, want %d", restored.Len(), p.Len())
	}
}
