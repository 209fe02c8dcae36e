package device

// AddressSpace identifies where a block of memory lives.
type AddressSpace int

// Address spaces.
const (
	Host AddressSpace = iota
	Device
	Shared
	Unknown
)

// String returns a human-readable address space name.
func (s AddressSpace) String() string {
	switch s {
	case Host:
		return "host"
	case Device:
		return "device"
	case Shared:
		return "shared"
	default:
		return "unknown"
	}
}

// HostAccessible reports whether the host can read memory in this space directly.
func (s AddressSpace) HostAccessible() bool {
	return s == Host || s == Shared
}

// AllocKind selects the allocator used for a device-context allocation.
type AllocKind int

// Allocation kinds.
const (
	// AllocDevice is device-only memory; the host cannot dereference it.
	AllocDevice AllocKind = iota
	// AllocShared is memory visible to both host and device.
	AllocShared
	// AllocHost is pinned host memory the device can copy from and to efficiently.
	AllocHost
)

// Space returns the address space memory of this kind lives in.
func (k AllocKind) Space() AddressSpace {
	switch k {
	case AllocDevice:
		return Device
	case AllocShared:
		return Shared
	case AllocHost:
		return Host
	default:
		return Unknown
	}
}

// String returns a human-readable allocation kind.
func (k AllocKind) String() string {
	switch k {
	case AllocDevice:
		return "device"
	case AllocShared:
		return "shared"
	case AllocHost:
		return "host-pinned"
	default:
		return "unknown"
	}
}

// Valid reports whether k is a known allocation kind.
func (k AllocKind) Valid() bool {
	return k >= AllocDevice && k <= AllocHost
}
