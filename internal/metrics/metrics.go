// Package metrics collects allocation and transfer statistics for device queues.
package metrics

import (
	"sync/atomic"
	"time"
)

// Direction of a memory transfer.
type Direction string

// Transfer directions as seen from the host.
const (
	HostToDevice   Direction = "h2d"
	DeviceToHost   Direction = "d2h"
	DeviceToDevice Direction = "d2d"
	HostToHost     Direction = "h2h"
)

// Collector receives allocation and transfer events from a device queue.
// Implementations must be safe for concurrent use.
type Collector interface {
	// RecordAlloc is called after each allocation attempt. err is nil on success.
	RecordAlloc(space string, bytes int, err error)

	// RecordFree is called when an allocation is returned to its backend.
	RecordFree(space string, bytes int)

	// RecordTransfer is called when an asynchronous copy completes.
	RecordTransfer(dir Direction, bytes int, duration time.Duration, err error)
}

// Noop discards everything.
type Noop struct{}

// RecordAlloc implements Collector.
func (Noop) RecordAlloc(string, int, error) {}

// RecordFree implements Collector.
func (Noop) RecordFree(string, int) {}

// RecordTransfer implements Collector.
func (Noop) RecordTransfer(Direction, int, time.Duration, error) {}

// Basic keeps in-memory counters. Useful for tests and debugging.
type Basic struct {
	Allocs         atomic.Int64
	AllocErrors    atomic.Int64
	AllocatedBytes atomic.Int64
	Frees          atomic.Int64
	FreedBytes     atomic.Int64
	Transfers      atomic.Int64
	TransferErrors atomic.Int64
	TransferBytes  atomic.Int64
	TransferNanos  atomic.Int64
}

// RecordAlloc implements Collector.
func (b *Basic) RecordAlloc(_ string, bytes int, err error) {
	if err != nil {
		b.AllocErrors.Add(1)
		return
	}
	b.Allocs.Add(1)
	b.AllocatedBytes.Add(int64(bytes))
}

// RecordFree implements Collector.
func (b *Basic) RecordFree(_ string, bytes int) {
	b.Frees.Add(1)
	b.FreedBytes.Add(int64(bytes))
}

// RecordTransfer implements Collector.
func (b *Basic) RecordTransfer(_ Direction, bytes int, d time.Duration, err error) {
	if err != nil {
		b.TransferErrors.Add(1)
		return
	}
	b.Transfers.Add(1)
	b.TransferBytes.Add(int64(bytes))
	b.TransferNanos.Add(d.Nanoseconds())
}

// LiveBytes returns allocated minus freed bytes.
func (b *Basic) LiveBytes() int64 {
	return b.AllocatedBytes.Load() - b.FreedBytes.Load()
}
