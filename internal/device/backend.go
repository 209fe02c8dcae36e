package device

import (
	"github.com/google/uuid"
)

// Allocation is a block of memory owned by a Backend.
type Allocation interface {
	// Size returns the usable size in bytes.
	Size() int
	// Kind returns the allocation kind it was created with.
	Kind() AllocKind
	// Bytes returns a host view of the memory, or nil for device-only memory.
	Bytes() []byte
	// ContextID returns the device context the allocation belongs to.
	ContextID() uuid.UUID
}

// Backend implements memory management for one device context.
//
// Implementations:
//   - sim: in-process accelerator emulation
//   - webgpu: GPU buffers via WebGPU (windows)
type Backend interface {
	// Name identifies the backend in logs.
	Name() string
	// ContextID identifies the device context. Allocations of one context
	// can only be used by queues of the same context.
	ContextID() uuid.UUID
	// Alloc returns size bytes of memory of the given kind.
	Alloc(size int, kind AllocKind) (Allocation, error)
	// Free returns an allocation to the backend.
	Free(a Allocation)
	// Copy copies n bytes from src to dst, blocking until done.
	Copy(dst, src Ptr, n int) error
	// Fill sets n bytes at dst to value, blocking until done.
	Fill(dst Ptr, n int, value byte) error
}

// Ptr addresses memory either inside a backend allocation or in plain host memory.
type Ptr struct {
	Alloc  Allocation // nil for plain host memory
	Host   []byte     // plain host memory, used when Alloc is nil
	Offset int        // byte offset into Alloc or Host
}

// HostPtr addresses plain host memory.
func HostPtr(b []byte) Ptr {
	return Ptr{Host: b}
}

// AllocPtr addresses an allocation at a byte offset.
func AllocPtr(a Allocation, offset int) Ptr {
	return Ptr{Alloc: a, Offset: offset}
}

// Space returns the address space of the memory p points into.
func (p Ptr) Space() AddressSpace {
	if p.Alloc == nil {
		return Host
	}
	return p.Alloc.Kind().Space()
}

// Len returns the number of bytes addressable from p.
func (p Ptr) Len() int {
	if p.Alloc == nil {
		return len(p.Host) - p.Offset
	}
	return p.Alloc.Size() - p.Offset
}

// HostBytes returns a host view of n bytes at p, or nil if p is not host accessible.
func (p Ptr) HostBytes(n int) []byte {
	var b []byte
	if p.Alloc == nil {
		b = p.Host
	} else {
		b = p.Alloc.Bytes()
	}
	if b == nil || p.Offset < 0 || n < 0 || p.Offset+n > len(b) {
		return nil
	}
	return b[p.Offset : p.Offset+n]
}
