package value

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"sable/internal/decls"
	"sable/internal/types"
)

// Current schema version - increment when keyRecord format changes
const snapshotSchemaVersion uint16 = 1

// ErrSnapshotSchema reports a snapshot written by an incompatible build.
var ErrSnapshotSchema = errors.New("pool snapshot schema mismatch")

// keyRecord is the flat on-disk form of one interned key. One struct covers
// every key kind; Tag selects which fields are live.
type keyRecord struct {
	Tag  keyTag
	Type uint32

	Sub   uint8  // simple kind / int storage / ptr addr mode / agg storage
	Bits  uint16 // float width
	Lo    uint64 // float lo word, int magnitude, ptr address, projection off
	Hi    uint64 // float hi word
	Ref   uint32 // child/payload/anon/base/repeated index, lazy type, decl
	Ref2  uint32 // slice len index, union tag
	Name  string // error name
	Bytes []byte // aggregate bytes, big.Int magnitude
	Neg   bool
	Elems []uint32
}

// poolSnapshot is the serialized pool: every key in index order, index 1
// first.
type poolSnapshot struct {
	Schema uint16
	Keys   []keyRecord
}

func keyToRecord(k Key) keyRecord {
	switch kk := k.(type) {
	case SimpleKey:
		return keyRecord{Tag: tagSimple, Type: uint32(kk.Type), Sub: uint8(kk.Kind)}
	case UndefKey:
		return keyRecord{Tag: tagUndef, Type: uint32(kk.Type)}
	case IntKey:
		r := keyRecord{Tag: tagInt, Type: uint32(kk.Type), Sub: uint8(kk.Storage)}
		switch kk.Storage {
		case StorageU64:
			r.Lo = kk.U64
		case StorageI64:
			r.Lo = uint64(kk.I64)
		case StorageBig:
			r.Bytes = kk.Big.Bytes()
			r.Neg = kk.Big.Sign() < 0
		case StorageLazyAlign, StorageLazySize:
			r.Ref = uint32(kk.Lazy)
		}
		return r
	case FloatKey:
		return keyRecord{Tag: tagFloat, Type: uint32(kk.Type), Bits: kk.Bits, Lo: kk.Lo, Hi: kk.Hi}
	case ErrKey:
		return keyRecord{Tag: tagErr, Type: uint32(kk.Type), Name: kk.Name}
	case ErrorUnionKey:
		return keyRecord{Tag: tagErrorUnion, Type: uint32(kk.Type), Name: kk.ErrName, Ref: uint32(kk.Payload)}
	case OptKey:
		return keyRecord{Tag: tagOpt, Type: uint32(kk.Type), Ref: uint32(kk.Child)}
	case PtrKey:
		return keyRecord{
			Tag:  tagPtr,
			Type: uint32(kk.Type),
			Sub:  uint8(kk.Addr),
			Lo:   kk.Int,
			Hi:   kk.Off,
			Ref:  ptrRecordRef(kk),
			Ref2: uint32(kk.Len),
		}
	case AggregateKey:
		r := keyRecord{Tag: tagAggregate, Type: uint32(kk.Type), Sub: uint8(kk.Storage)}
		switch kk.Storage {
		case AggBytes:
			r.Bytes = kk.Bytes
		case AggElems:
			r.Elems = make([]uint32, len(kk.Elems))
			for i, e := range kk.Elems {
				r.Elems[i] = uint32(e)
			}
		case AggRepeated:
			r.Ref = uint32(kk.Repeated)
		}
		return r
	case UnionKey:
		return keyRecord{Tag: tagUnion, Type: uint32(kk.Type), Ref: uint32(kk.Val), Ref2: uint32(kk.Tag)}
	default:
		panic(fmt.Sprintf("value: snapshot of unknown key %T", k))
	}
}

func ptrRecordRef(k PtrKey) uint32 {
	switch k.Addr {
	case AddrDecl, AddrMutDecl:
		return uint32(k.Decl)
	case AddrAnon:
		return uint32(k.Anon)
	case AddrField, AddrElem:
		return uint32(k.Base)
	default:
		return 0
	}
}

func recordToKey(r keyRecord) (Key, error) {
	ty := types.TypeID(r.Type)
	switch r.Tag {
	case tagSimple:
		return SimpleKey{Kind: SimpleKind(r.Sub), Type: ty}, nil
	case tagUndef:
		return UndefKey{Type: ty}, nil
	case tagInt:
		k := IntKey{Type: ty, Storage: IntStorage(r.Sub)}
		switch k.Storage {
		case StorageU64:
			k.U64 = r.Lo
		case StorageI64:
			k.I64 = int64(r.Lo)
		case StorageBig:
			k.Big = new(big.Int).SetBytes(r.Bytes)
			if r.Neg {
				k.Big.Neg(k.Big)
			}
		case StorageLazyAlign, StorageLazySize:
			k.Lazy = types.TypeID(r.Ref)
		default:
			return nil, fmt.Errorf("pool snapshot: bad int storage %d", r.Sub)
		}
		return k, nil
	case tagFloat:
		return FloatKey{Type: ty, Bits: r.Bits, Lo: r.Lo, Hi: r.Hi}, nil
	case tagErr:
		return ErrKey{Type: ty, Name: r.Name}, nil
	case tagErrorUnion:
		return ErrorUnionKey{Type: ty, ErrName: r.Name, Payload: Index(r.Ref)}, nil
	case tagOpt:
		return OptKey{Type: ty, Child: Index(r.Ref)}, nil
	case tagPtr:
		k := PtrKey{Type: ty, Addr: PtrAddr(r.Sub), Int: r.Lo, Off: r.Hi, Len: Index(r.Ref2)}
		switch k.Addr {
		case AddrDecl, AddrMutDecl:
			k.Decl = decls.DeclID(r.Ref)
		case AddrAnon:
			k.Anon = Index(r.Ref)
		case AddrField, AddrElem:
			k.Base = Index(r.Ref)
		}
		return k, nil
	case tagAggregate:
		k := AggregateKey{Type: ty, Storage: AggStorage(r.Sub)}
		switch k.Storage {
		case AggBytes:
			k.Bytes = r.Bytes
		case AggElems:
			k.Elems = make([]Index, len(r.Elems))
			for i, e := range r.Elems {
				k.Elems[i] = Index(e)
			}
		case AggRepeated:
			k.Repeated = Index(r.Ref)
		default:
			return nil, fmt.Errorf("pool snapshot: bad aggregate storage %d", r.Sub)
		}
		return k, nil
	case tagUnion:
		return UnionKey{Type: ty, Tag: Index(r.Ref2), Val: Index(r.Ref)}, nil
	default:
		return nil, fmt.Errorf("pool snapshot: unknown key tag %d", r.Tag)
	}
}

// WriteSnapshot serializes the pool's keys in index order.
func (p *Pool) WriteSnapshot(w io.Writer) error {
	snap := poolSnapshot{
		Schema: snapshotSchemaVersion,
		Keys:   make([]keyRecord, 0, len(p.items)-1),
	}
	for _, k := range p.items[1:] {
		snap.Keys = append(snap.Keys, keyToRecord(k))
	}
	return msgpack.NewEncoder(w).Encode(&snap)
}

// ReadSnapshot rebuilds a pool over typesIn from a serialized snapshot.
// Interning the records in order reproduces the original indices exactly;
// any divergence means the snapshot was taken against a different type
// table and is rejected.
func ReadSnapshot(r io.Reader, typesIn *types.Interner) (*Pool, error) {
	var snap poolSnapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return nil, err
	}
	if snap.Schema != snapshotSchemaVersion {
		return nil, fmt.Errorf("%w: got %d want %d", ErrSnapshotSchema, snap.Schema, snapshotSchemaVersion)
	}
	p := NewPool(typesIn)
	for i, rec := range snap.Keys {
		k, err := recordToKey(rec)
		if err != nil {
			return nil, err
		}
		want := Index(i + 1)
		if got := p.Intern(k); got != want {
			return nil, fmt.Errorf("pool snapshot: index drift at %d (re-interned as %d)", want, got)
		}
	}
	return p, nil
}

// SaveSnapshotFile writes the snapshot with an atomic rename.
func (p *Pool) SaveSnapshotFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()
	if err := p.WriteSnapshot(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// LoadSnapshotFile reads a snapshot produced by SaveSnapshotFile. A missing
// file is reported as (nil, false, nil), matching cache-miss semantics.
func LoadSnapshotFile(path string, typesIn *types.Interner) (*Pool, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer func() {
		_ = f.Close()
	}()
	p, err := ReadSnapshot(f, typesIn)
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}
