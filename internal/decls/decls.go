// Package decls is the slice of the module graph the value core sees:
// opaque declaration records a pointer value can reference by ID. The core
// only ever compares these IDs for identity and looks up the declared type.
package decls

import (
	"fmt"

	"fortio.org/safecast"

	"sable/internal/types"
)

// DeclID identifies a declaration inside the graph.
type DeclID uint32

// NoDeclID marks the absence of a declaration.
const NoDeclID DeclID = 0

// IsValid reports whether the ID refers to a declaration.
func (id DeclID) IsValid() bool {
	return id != NoDeclID
}

// Decl is a named storage location in the program under compilation.
type Decl struct {
	Name    string
	Ty      types.TypeID
	Mutable bool
}

// Graph owns the declaration records for one compilation.
type Graph struct {
	decls []Decl
}

// NewGraph constructs an empty graph with slot 0 reserved as a sentinel.
func NewGraph() *Graph {
	return &Graph{decls: make([]Decl, 1, 64)}
}

// Add records a declaration and returns its ID.
func (g *Graph) Add(d Decl) DeclID {
	n, err := safecast.Conv[uint32](len(g.decls))
	if err != nil {
		panic(fmt.Errorf("decl count overflow: %w", err))
	}
	g.decls = append(g.decls, d)
	return DeclID(n)
}

// Get returns the declaration for an ID.
func (g *Graph) Get(id DeclID) (Decl, bool) {
	if !id.IsValid() || int(id) >= len(g.decls) {
		return Decl{}, false
	}
	return g.decls[id], true
}
