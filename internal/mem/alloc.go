package mem

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// Alignment is the byte alignment of every block returned by Alloc.
var Alignment = detectAlignment()

func detectAlignment() int {
	switch {
	case cpu.X86.HasAVX512F:
		return 64
	case cpu.X86.HasAVX2, cpu.ARM64.HasASIMD:
		return 32
	default:
		return 16
	}
}

// Alloc returns a zeroed byte slice of the given size whose first element is
// aligned to Alignment. Returns nil for size <= 0.
//
// The slice keeps the whole over-allocated backing array alive.
func Alloc(size int) []byte {
	if size <= 0 {
		return nil
	}

	buf := make([]byte, size+Alignment)
	//nolint:gosec // unsafe is required for memory alignment
	addr := uintptr(unsafe.Pointer(&buf[0]))
	offset := (uintptr(Alignment) - (addr & uintptr(Alignment-1))) & uintptr(Alignment-1)

	return buf[offset : offset+uintptr(size) : offset+uintptr(size)]
}

// IsAligned reports whether b starts at an Alignment boundary.
func IsAligned(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	//nolint:gosec // address inspection only
	return uintptr(unsafe.Pointer(&b[0]))%uintptr(Alignment) == 0
}
