// Package table provides homogeneous numeric tables over shared arrays.
package table

import (
	"github.com/born-ml/numtab/internal/array"
)

// Kind identifies the table variant for dispatch.
type Kind int

// Table kinds. The set is closed.
const (
	KindEmpty Kind = iota
	KindHomogen
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindHomogen:
		return "homogen"
	default:
		return "unknown"
	}
}

// Table is the capability set shared by every table kind.
type Table interface {
	Kind() Kind
	RowCount() int
	ColumnCount() int
	DataType() array.DataType
	Layout() Layout
	Metadata() Metadata
}

// Store is a table whose elements live in one raw buffer.
// Homogen and Builder implement it.
type Store interface {
	Table
	Descriptor() Descriptor
	// Raw returns a new handle to the raw buffer. The caller releases it.
	Raw() *array.Array[byte]
}

// MutableStore is a Store accepting writes.
type MutableStore interface {
	Store
	// MutableRaw returns the raw buffer with exclusive writable storage.
	// Unless inPlace is set, shared or read-only storage is first replaced
	// by a private copy; with inPlace it fails with array.ErrImmutable.
	// The returned handle belongs to the store and must not be released.
	MutableRaw(inPlace bool) (*array.Array[byte], error)
}
