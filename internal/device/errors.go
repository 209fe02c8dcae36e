package device

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrOutOfMemory       = errors.New("out of memory")
	ErrContextMismatch   = errors.New("memory belongs to a different device context")
	ErrUnknownKind       = errors.New("unknown allocation kind")
	ErrNotHostAccessible = errors.New("memory is not host accessible")
	ErrInvalidSize       = errors.New("invalid allocation size")
	ErrOutOfBounds       = errors.New("copy range exceeds allocation")
)

// AllocationError reports a failed allocation. Space tells host failures apart
// from device failures so callers can decide whether to retry elsewhere; the
// library itself never falls back.
type AllocationError struct {
	Space AddressSpace // Address space the allocation was requested in
	Bytes int          // Requested size in bytes
	Err   error        // Underlying cause
}

// Error implements the error interface.
func (e *AllocationError) Error() string {
	return fmt.Sprintf("%s allocation of %d bytes failed: %v", e.Space, e.Bytes, e.Err)
}

// Unwrap returns the underlying cause.
func (e *AllocationError) Unwrap() error {
	return e.Err
}

// IsHost reports whether host-visible memory could not be allocated.
// Shared memory counts as host memory, as it is backed by host pages.
func (e *AllocationError) IsHost() bool {
	return e.Space == Host || e.Space == Shared
}

// IsDevice reports whether device-only memory could not be allocated.
func (e *AllocationError) IsDevice() bool {
	return e.Space == Device
}

// TransferError reports a copy that did not complete. It is only ever
// observed by waiting on the Event of the failed submission.
type TransferError struct {
	Src, Dst AddressSpace
	Bytes    int
	Err      error
}

// Error implements the error interface.
func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer of %d bytes from %s to %s failed: %v", e.Bytes, e.Src, e.Dst, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransferError) Unwrap() error {
	return e.Err
}
