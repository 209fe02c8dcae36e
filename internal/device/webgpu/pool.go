//go:build windows

package webgpu

import (
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
)

// sizeClass is the pooling category of a GPU buffer.
type sizeClass int

const (
	smallClass sizeClass = iota // < 4KB
	mediumClass                 // 4KB - 1MB
	largeClass                  // > 1MB
)

const (
	smallThreshold  = 4 * 1024
	mediumThreshold = 1024 * 1024
)

type pooledBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
	usage  wgpu.BufferUsage
}

// bufferPool keeps released storage buffers for reuse, grouped by size class.
type bufferPool struct {
	device  *wgpu.Device
	maxSize int // per class

	mu      sync.Mutex
	classes [3][]*pooledBuffer
	stats   PoolStats
}

// PoolStats reports buffer pool activity.
type PoolStats struct {
	Allocated uint64
	Released  uint64
	Hits      uint64
	Misses    uint64
	Pooled    int
}

func newBufferPool(device *wgpu.Device, maxSize int) *bufferPool {
	return &bufferPool{device: device, maxSize: maxSize}
}

func classify(size uint64) sizeClass {
	switch {
	case size < smallThreshold:
		return smallClass
	case size < mediumThreshold:
		return mediumClass
	default:
		return largeClass
	}
}

// acquire returns a buffer of at least size bytes with every usage bit set.
func (p *bufferPool) acquire(size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	class := classify(size)
	for i, pb := range p.classes[class] {
		if pb.size >= size && pb.usage&usage == usage {
			p.classes[class] = append(p.classes[class][:i], p.classes[class][i+1:]...)
			p.stats.Hits++
			return pb.buffer, pb.size
		}
	}

	p.stats.Misses++
	p.stats.Allocated++
	buffer := p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: usage,
		Size:  size,
	})
	return buffer, size
}

// release keeps buffer for reuse, or frees it when its class is full.
func (p *bufferPool) release(buffer *wgpu.Buffer, size uint64, usage wgpu.BufferUsage) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.Released++
	class := classify(size)
	if len(p.classes[class]) >= p.maxSize {
		buffer.Release()
		return
	}
	p.classes[class] = append(p.classes[class], &pooledBuffer{buffer: buffer, size: size, usage: usage})
}

func (p *bufferPool) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.classes {
		for _, pb := range p.classes[i] {
			pb.buffer.Release()
		}
		p.classes[i] = nil
	}
}

func (p *bufferPool) snapshot() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.stats
	for i := range p.classes {
		s.Pooled += len(p.classes[i])
	}
	return s
}
