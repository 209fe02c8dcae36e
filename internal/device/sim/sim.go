package sim

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/born-ml/numtab/internal/device"
)

// Op names an operation passed to a FaultFunc.
type Op string

// Operations that can be failed by a FaultFunc.
const (
	OpAlloc Op = "alloc"
	OpCopy  Op = "copy"
	OpFill  Op = "fill"
)

// FaultFunc is consulted before every operation. A non-nil error makes the
// operation fail with it.
type FaultFunc func(op Op, kind device.AllocKind, bytes int) error

// ErrUseAfterFree is returned when a copy touches an allocation already freed.
var ErrUseAfterFree = errors.New("sim: allocation used after free")

// Config configures the simulated device.
type Config struct {
	Name string // Backend name in logs. Default: "sim".

	// BandwidthBytesPerSec throttles copies touching device memory.
	// If 0, copies are unthrottled.
	BandwidthBytesPerSec int64

	// PoolMaxPerBucket is the number of freed buffers kept per size bucket.
	// If 0, freed buffers are dropped immediately.
	PoolMaxPerBucket int

	// Faults injects failures. Optional.
	Faults FaultFunc
}

// DefaultConfig returns an unthrottled device with pooling enabled.
func DefaultConfig() Config {
	return Config{
		Name:             "sim",
		PoolMaxPerBucket: 16,
	}
}

// Backend is the simulated device. It implements device.Backend.
type Backend struct {
	cfg     Config
	ctx     uuid.UUID
	limiter *rate.Limiter // nil if unthrottled
	pool    *pool

	liveBytes atomic.Int64
}

var _ device.Backend = (*Backend)(nil)

// New creates a simulated device with its own device context.
func New(cfg Config) *Backend {
	if cfg.Name == "" {
		cfg.Name = "sim"
	}
	b := &Backend{
		cfg:  cfg,
		ctx:  uuid.New(),
		pool: newPool(cfg.PoolMaxPerBucket),
	}
	if cfg.BandwidthBytesPerSec > 0 {
		b.limiter = rate.NewLimiter(rate.Limit(cfg.BandwidthBytesPerSec), int(cfg.BandwidthBytesPerSec))
	}
	return b
}

// Name implements device.Backend.
func (b *Backend) Name() string {
	return b.cfg.Name
}

// ContextID implements device.Backend.
func (b *Backend) ContextID() uuid.UUID {
	return b.ctx
}

// Alloc implements device.Backend. Memory is zero-initialised.
func (b *Backend) Alloc(size int, kind device.AllocKind) (device.Allocation, error) {
	if err := b.fault(OpAlloc, kind, size); err != nil {
		return nil, err
	}
	buf, err := b.pool.acquire(size, kind)
	if err != nil {
		return nil, err
	}
	a := &allocation{
		buf:  buf,
		size: size,
		kind: kind,
		ctx:  b.ctx,
	}
	b.liveBytes.Add(int64(size))
	return a, nil
}

// Free implements device.Backend. Freeing an allocation twice panics.
func (b *Backend) Free(a device.Allocation) {
	sa, ok := a.(*allocation)
	if !ok || sa.ctx != b.ctx {
		panic("sim: freeing an allocation of another device context")
	}
	if sa.freed.Swap(true) {
		panic("sim: double free")
	}
	b.liveBytes.Add(-int64(sa.size))
	b.pool.release(sa.buf, sa.kind)
}

// Copy implements device.Backend.
func (b *Backend) Copy(dst, src device.Ptr, n int) error {
	kind := device.AllocHost
	if dst.Alloc != nil {
		kind = dst.Alloc.Kind()
	}
	if err := b.fault(OpCopy, kind, n); err != nil {
		return err
	}
	d, err := b.resolve(dst, n)
	if err != nil {
		return err
	}
	s, err := b.resolve(src, n)
	if err != nil {
		return err
	}
	if err := b.throttle(dst, src, n); err != nil {
		return err
	}
	copy(d, s)
	return nil
}

// Fill implements device.Backend.
func (b *Backend) Fill(dst device.Ptr, n int, value byte) error {
	kind := device.AllocHost
	if dst.Alloc != nil {
		kind = dst.Alloc.Kind()
	}
	if err := b.fault(OpFill, kind, n); err != nil {
		return err
	}
	d, err := b.resolve(dst, n)
	if err != nil {
		return err
	}
	if value == 0 {
		clear(d)
		return nil
	}
	for i := range d {
		d[i] = value
	}
	return nil
}

// LiveBytes returns the number of bytes currently allocated.
func (b *Backend) LiveBytes() int64 {
	return b.liveBytes.Load()
}

// PoolStats returns statistics about buffer reuse.
func (b *Backend) PoolStats() Stats {
	return b.pool.stats()
}

// Close drops all pooled buffers.
func (b *Backend) Close() error {
	b.pool.clear()
	return nil
}

func (b *Backend) fault(op Op, kind device.AllocKind, n int) error {
	if b.cfg.Faults == nil {
		return nil
	}
	return b.cfg.Faults(op, kind, n)
}

// resolve returns the n bytes p addresses, including device-only memory.
func (b *Backend) resolve(p device.Ptr, n int) ([]byte, error) {
	if p.Alloc == nil {
		if p.Offset < 0 || p.Offset+n > len(p.Host) {
			return nil, fmt.Errorf("%w: host range [%d, %d) of %d", device.ErrOutOfBounds, p.Offset, p.Offset+n, len(p.Host))
		}
		return p.Host[p.Offset : p.Offset+n], nil
	}

	a, ok := p.Alloc.(*allocation)
	if !ok || a.ctx != b.ctx {
		return nil, device.ErrContextMismatch
	}
	if a.freed.Load() {
		return nil, ErrUseAfterFree
	}
	if p.Offset < 0 || p.Offset+n > a.size {
		return nil, fmt.Errorf("%w: range [%d, %d) of %d", device.ErrOutOfBounds, p.Offset, p.Offset+n, a.size)
	}
	return a.buf[p.Offset : p.Offset+n], nil
}

// throttle blocks until the limiter admits n bytes for copies touching the device.
func (b *Backend) throttle(dst, src device.Ptr, n int) error {
	if b.limiter == nil || (dst.Alloc == nil && src.Alloc == nil) {
		return nil
	}
	burst := b.limiter.Burst()
	for n > 0 {
		step := min(n, burst)
		if err := b.limiter.WaitN(context.Background(), step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}

type allocation struct {
	buf   []byte
	size  int
	kind  device.AllocKind
	ctx   uuid.UUID
	freed atomic.Bool
}

func (a *allocation) Size() int {
	return a.size
}

func (a *allocation) Kind() device.AllocKind {
	return a.kind
}

func (a *allocation) Bytes() []byte {
	if a.kind == device.AllocDevice {
		return nil
	}
	return a.buf[:a.size:a.size]
}

func (a *allocation) ContextID() uuid.UUID {
	return a.ctx
}
