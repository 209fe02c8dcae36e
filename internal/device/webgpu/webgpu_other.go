//go:build !windows

package webgpu

import (
	"github.com/google/uuid"

	"github.com/born-ml/numtab/internal/device"
)

// Backend is unavailable on this platform.
type Backend struct{}

var _ device.Backend = (*Backend)(nil)

// New always returns ErrUnavailable.
func New() (*Backend, error) {
	return nil, ErrUnavailable
}

// Name implements device.Backend.
func (b *Backend) Name() string { return "webgpu" }

// ContextID implements device.Backend.
func (b *Backend) ContextID() uuid.UUID { return uuid.Nil }

// Alloc implements device.Backend.
func (b *Backend) Alloc(int, device.AllocKind) (device.Allocation, error) {
	return nil, ErrUnavailable
}

// Free implements device.Backend.
func (b *Backend) Free(device.Allocation) {}

// Copy implements device.Backend.
func (b *Backend) Copy(device.Ptr, device.Ptr, int) error { return ErrUnavailable }

// Fill implements device.Backend.
func (b *Backend) Fill(device.Ptr, int, byte) error { return ErrUnavailable }

// Close implements io.Closer.
func (b *Backend) Close() error { return nil }
