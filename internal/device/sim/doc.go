// Package sim implements an in-process accelerator for the device package.
//
// Device allocations live in Go memory but are never exposed to the host:
// Allocation.Bytes returns nil for them, so any code path that forgets to
// transfer data behaves as it would on real hardware. Shared and pinned host
// allocations are host visible.
//
// Copies can be throttled to emulate bus bandwidth, and a fault hook lets
// tests fail allocations or transfers on demand.
package sim
