//go:build windows

package webgpu

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/google/uuid"

	"github.com/born-ml/numtab/internal/device"
	"github.com/born-ml/numtab/internal/mathutil"
	"github.com/born-ml/numtab/internal/mem"
)

const (
	storageUsage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst

	// copyAlignment is the WebGPU requirement for buffer copy offsets and sizes.
	copyAlignment = 4

	defaultPoolSize = 100
)

// Backend is a WebGPU device context. It implements device.Backend.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	ctx      uuid.UUID
	pool     *bufferPool

	// WebGPU queues are not safe for concurrent submission.
	mu        sync.Mutex
	liveBytes atomic.Int64
}

var _ device.Backend = (*Backend)(nil)

// New opens the default high-performance adapter.
func New() (backend *Backend, err error) {
	// wgpu panics when the native library cannot be loaded.
	defer func() {
		if r := recover(); r != nil {
			backend = nil
			err = fmt.Errorf("%w: native library not available: %v", ErrUnavailable, r)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: request adapter: %w", err)
	}

	dev, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: request device: %w", err)
	}

	queue := dev.GetQueue()
	if queue == nil {
		dev.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: device has no queue")
	}

	return &Backend{
		instance: instance,
		adapter:  adapter,
		device:   dev,
		queue:    queue,
		ctx:      uuid.New(),
		pool:     newBufferPool(dev, defaultPoolSize),
	}, nil
}

// Name implements device.Backend.
func (b *Backend) Name() string {
	return "webgpu"
}

// ContextID implements device.Backend.
func (b *Backend) ContextID() uuid.UUID {
	return b.ctx
}

// Alloc implements device.Backend.
func (b *Backend) Alloc(size int, kind device.AllocKind) (device.Allocation, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d bytes", device.ErrInvalidSize, size)
	}
	a := &allocation{size: size, kind: kind, ctx: b.ctx}
	switch kind {
	case device.AllocDevice:
		a.buffer, a.capacity = b.pool.acquire(uint64(mathutil.UpMultiple(size, copyAlignment)), storageUsage)
	case device.AllocShared, device.AllocHost:
		host, err := hostAlloc(size)
		if err != nil {
			return nil, err
		}
		a.host = host
	default:
		return nil, fmt.Errorf("%w: %d", device.ErrUnknownKind, kind)
	}
	b.liveBytes.Add(int64(size))
	return a, nil
}

// Free implements device.Backend.
func (b *Backend) Free(a device.Allocation) {
	wa, ok := a.(*allocation)
	if !ok || wa.ctx != b.ctx {
		panic("webgpu: freeing an allocation of another device context")
	}
	if wa.freed.Swap(true) {
		panic("webgpu: double free")
	}
	if wa.buffer != nil {
		b.pool.release(wa.buffer, wa.capacity, storageUsage)
	}
	b.liveBytes.Add(-int64(wa.size))
}

// Copy implements device.Backend.
func (b *Backend) Copy(dst, src device.Ptr, n int) error {
	dstBuf, dstOff := b.gpuBuffer(dst)
	srcBuf, srcOff := b.gpuBuffer(src)

	switch {
	case dstBuf == nil && srcBuf == nil:
		copy(dst.HostBytes(n), src.HostBytes(n))
		return nil
	case srcBuf == nil:
		return b.upload(dstBuf, dstOff, src.HostBytes(n))
	case dstBuf == nil:
		return b.download(dst.HostBytes(n), srcBuf, srcOff)
	default:
		if srcOff%copyAlignment != 0 || dstOff%copyAlignment != 0 {
			return ErrUnaligned
		}
		if n%copyAlignment != 0 {
			tmp := make([]byte, n)
			if err := b.download(tmp, srcBuf, srcOff); err != nil {
				return err
			}
			return b.upload(dstBuf, dstOff, tmp)
		}
		b.submitCopy(srcBuf, srcOff, dstBuf, dstOff, uint64(n))
		return nil
	}
}

// Fill implements device.Backend.
func (b *Backend) Fill(dst device.Ptr, n int, value byte) error {
	buf, off := b.gpuBuffer(dst)
	if buf == nil {
		host := dst.HostBytes(n)
		for i := range host {
			host[i] = value
		}
		return nil
	}
	data := make([]byte, n)
	for i := range data {
		data[i] = value
	}
	return b.upload(buf, off, data)
}

// LiveBytes returns the number of bytes currently allocated.
func (b *Backend) LiveBytes() int64 {
	return b.liveBytes.Load()
}

// PoolStats returns buffer pool statistics.
func (b *Backend) PoolStats() PoolStats {
	return b.pool.snapshot()
}

// Close releases pooled buffers and the device.
func (b *Backend) Close() error {
	b.pool.clear()
	b.device.Release()
	b.adapter.Release()
	b.instance.Release()
	return nil
}

// hostAlloc turns a runtime allocation panic into device.ErrOutOfMemory.
func hostAlloc(size int) (buf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, fmt.Errorf("%w: %v", device.ErrOutOfMemory, r)
		}
	}()
	return mem.Alloc(size), nil
}

// gpuBuffer returns the storage buffer p points into, or nil for host memory.
func (b *Backend) gpuBuffer(p device.Ptr) (*wgpu.Buffer, uint64) {
	if wa, ok := p.Alloc.(*allocation); ok && wa.buffer != nil {
		return wa.buffer, uint64(p.Offset)
	}
	return nil, 0
}

// upload writes data into dst at offset through a mapped staging buffer.
func (b *Backend) upload(dst *wgpu.Buffer, offset uint64, data []byte) error {
	if offset%copyAlignment != 0 {
		return ErrUnaligned
	}
	size := uint64(mathutil.UpMultiple(len(data), copyAlignment))
	buf := data
	if int(size) != len(data) {
		// Preserve the bytes past len(data) in the last word.
		buf = make([]byte, size)
		if err := b.download(buf[size-copyAlignment:], dst, offset+size-copyAlignment); err != nil {
			return err
		}
		copy(buf, data)
	}

	staging := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageCopySrc,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	defer staging.Release()

	ptr := staging.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy access to mapped GPU memory
	copy(unsafe.Slice((*byte)(ptr), size), buf)
	staging.Unmap()

	b.submitCopy(staging, 0, dst, offset, size)
	return nil
}

// download reads len(out) bytes of src at offset through a staging buffer.
func (b *Backend) download(out []byte, src *wgpu.Buffer, offset uint64) error {
	if offset%copyAlignment != 0 {
		return ErrUnaligned
	}
	size := uint64(mathutil.UpMultiple(len(out), copyAlignment))
	staging := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer staging.Release()

	b.submitCopy(src, offset, staging, 0, size)

	if err := staging.MapAsync(b.device, wgpu.MapModeRead, 0, size); err != nil {
		return fmt.Errorf("%w: %w", ErrMapFailed, err)
	}
	ptr := staging.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy access to mapped GPU memory
	copy(out, unsafe.Slice((*byte)(ptr), size))
	staging.Unmap()
	return nil
}

func (b *Backend) submitCopy(src *wgpu.Buffer, srcOff uint64, dst *wgpu.Buffer, dstOff, size uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src, srcOff, dst, dstOff, size)
	b.queue.Submit(encoder.Finish(nil))
}

// allocation is a storage buffer (device kind) or host memory (shared and
// host kinds).
type allocation struct {
	buffer   *wgpu.Buffer
	capacity uint64
	host     []byte
	size     int
	kind     device.AllocKind
	ctx      uuid.UUID
	freed    atomic.Bool
}

func (a *allocation) Size() int {
	return a.size
}

func (a *allocation) Kind() device.AllocKind {
	return a.kind
}

func (a *allocation) Bytes() []byte {
	return a.host
}

func (a *allocation) ContextID() uuid.UUID {
	return a.ctx
}
