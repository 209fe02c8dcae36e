package array

import (
	"errors"
)

// Common errors.
var (
	ErrInvalidCount  = errors.New("element count must be non-negative")
	ErrImmutable     = errors.New("array has no exclusive writable storage")
	ErrCountMismatch = errors.New("arrays have different element counts")
)
