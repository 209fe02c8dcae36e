package webgpu

import (
	"errors"
)

// Common errors.
var (
	ErrUnavailable = errors.New("webgpu: backend not available on this platform")
	ErrUnaligned   = errors.New("webgpu: buffer copies need 4-byte aligned offsets")
	ErrMapFailed   = errors.New("webgpu: mapping staging buffer failed")
)
