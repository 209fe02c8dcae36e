// Package legacy bridges tables to the older numeric table representation
// still consumed by some kernels.
package legacy

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/born-ml/numtab/internal/array"
)

// Common errors.
var (
	ErrEmpty      = errors.New("legacy: table has no elements")
	ErrBlockRange = errors.New("legacy: block of rows out of range")
)

// Mode is the access mode of an acquired block.
type Mode int

// Access modes.
const (
	ReadOnly Mode = iota
	ReadWrite
)

// Block is a window of consecutive rows of a NumericTable.
type Block[T array.Numeric] struct {
	Data  []T // Row-major elements of the block
	Start int // First row
	Rows  int // Number of rows
	Mode  Mode
}

// NumericTable is the legacy dense row-major table. It keeps its own
// reference count; onFree runs once when the count drops to zero.
type NumericTable[T array.Numeric] struct {
	cols   int
	rows   int
	data   []T
	refs   atomic.Int64
	blocks atomic.Int64
	once   sync.Once
	onFree func()
}

// New wraps data as a cols x rows legacy table. Column count comes first,
// as in the legacy API. onFree may be nil.
func New[T array.Numeric](cols, rows int, data []T, onFree func()) (*NumericTable[T], error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("legacy: invalid dimensions %d columns x %d rows", cols, rows)
	}
	if len(data) < cols*rows {
		return nil, fmt.Errorf("legacy: %d elements for %d x %d table", len(data), rows, cols)
	}
	nt := &NumericTable[T]{cols: cols, rows: rows, data: data, onFree: onFree}
	nt.refs.Store(1)
	return nt, nil
}

// Allocate creates a legacy table owning zeroed memory.
func Allocate[T array.Numeric](cols, rows int) (*NumericTable[T], error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("legacy: invalid dimensions %d columns x %d rows", cols, rows)
	}
	return New(cols, rows, make([]T, cols*rows), nil)
}

// Columns returns the number of columns.
func (nt *NumericTable[T]) Columns() int {
	return nt.cols
}

// Rows returns the number of rows.
func (nt *NumericTable[T]) Rows() int {
	return nt.rows
}

// Retain adds a reference.
func (nt *NumericTable[T]) Retain() {
	nt.refs.Add(1)
}

// Release drops a reference and frees the table with the last one.
func (nt *NumericTable[T]) Release() {
	if nt.refs.Add(-1) != 0 {
		return
	}
	nt.once.Do(func() {
		if nt.onFree != nil {
			nt.onFree()
		}
		nt.data = nil
	})
}

// GetBlockOfRows acquires rows [start, start+n). The block must be given
// back with ReleaseBlockOfRows.
func (nt *NumericTable[T]) GetBlockOfRows(start, n int, mode Mode) (Block[T], error) {
	if start < 0 || n <= 0 || start+n > nt.rows {
		return Block[T]{}, fmt.Errorf("%w: rows [%d, %d) of %d", ErrBlockRange, start, start+n, nt.rows)
	}
	nt.blocks.Add(1)
	return Block[T]{
		Data:  nt.data[start*nt.cols : (start+n)*nt.cols],
		Start: start,
		Rows:  n,
		Mode:  mode,
	}, nil
}

// ReleaseBlockOfRows gives back a block acquired by GetBlockOfRows.
func (nt *NumericTable[T]) ReleaseBlockOfRows(Block[T]) {
	nt.blocks.Add(-1)
}

// PendingBlocks returns the number of acquired, unreleased blocks.
func (nt *NumericTable[T]) PendingBlocks() int {
	return int(nt.blocks.Load())
}
