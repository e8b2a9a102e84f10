package value

// Index is a stable handle into the intern pool. Two Values with the same
// Index are structurally identical; the pool never issues two Indices for
// structurally equal keys.
type Index uint32

// None marks the absence of an interned value. A Value whose index is None
// is carrying a legacy payload instead.
const None Index = 0

// IsValid reports whether the index refers to an interned value.
func (i Index) IsValid() bool {
	return i != None
}

// Well-known indices reserved by NewPool, in reservation order. They are
// fixed for the lifetime of every pool, so callers may compare against them
// directly.
const (
	IndexVoidValue Index = iota + 1
	IndexTrue
	IndexFalse
	IndexNull
	IndexUndef
	IndexGenericPoison
	IndexZeroUsize
	IndexOneUsize

	firstFreeIndex
)
