package layout

import (
	"fmt"

	"sable/internal/types"
)

// ErrorKind enumerates layout computation failures.
type ErrorKind uint8

const (
	// ErrNotSized indicates a type with no machine representation
	// (comptime_int, invalid).
	ErrNotSized ErrorKind = iota + 1
	ErrUnknownType
)

// Error reports why a layout could not be computed.
type Error struct {
	Kind ErrorKind
	Type types.TypeID
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ErrNotSized:
		return fmt.Sprintf("type#%d has no machine size", e.Type)
	case ErrUnknownType:
		return fmt.Sprintf("unknown type#%d", e.Type)
	default:
		return fmt.Sprintf("layout error kind=%d type#%d", e.Kind, e.Type)
	}
}
