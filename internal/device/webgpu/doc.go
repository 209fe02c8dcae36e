// Package webgpu implements device.Backend on a WebGPU adapter.
//
// Device allocations are GPU storage buffers. WebGPU exposes no memory that
// is visible to host and GPU at once, so shared and host allocations are
// host memory that copies move to and from the GPU through staging buffers.
//
// The backend needs the wgpu-native library and is only built on Windows;
// elsewhere New returns ErrUnavailable.
package webgpu
