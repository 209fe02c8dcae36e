package table

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrInvalidLayout = errors.New("invalid table layout")
	ErrEmptyTable    = errors.New("table holds no data")
)

// DimensionError reports a non-positive row or column count.
type DimensionError struct {
	Rows int
	Cols int
}

// Error implements the error interface.
func (e *DimensionError) Error() string {
	return fmt.Sprintf("table dimensions must be positive, got %d rows and %d columns", e.Rows, e.Cols)
}

// SizeMismatchError reports a buffer holding fewer elements than the
// table dimensions require.
type SizeMismatchError struct {
	Have int // Elements in the buffer
	Want int // Elements required
}

// Error implements the error interface.
func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("buffer has %d elements, table needs %d", e.Have, e.Want)
}
