package sim

import (
	"fmt"
	"math"
	"sync"

	"github.com/born-ml/numtab/internal/device"
	"github.com/born-ml/numtab/internal/mathutil"
	"github.com/born-ml/numtab/internal/mem"
)

type poolKey struct {
	capacity int
	kind     device.AllocKind
}

// pool reuses freed allocations. Buffers are bucketed by their power-of-two
// capacity and allocation kind.
type pool struct {
	maxPerBucket int

	mu      sync.Mutex
	buckets map[poolKey][][]byte

	// Statistics
	totalAllocated uint64
	totalReleased  uint64
	hits           uint64
	misses         uint64
}

func newPool(maxPerBucket int) *pool {
	return &pool{
		maxPerBucket: maxPerBucket,
		buckets:      make(map[poolKey][][]byte),
	}
}

// maxCapacity is the largest bucket; UpPow2 overflows past it.
const maxCapacity = math.MaxInt>>1 + 1

// acquire returns a zeroed buffer with capacity for at least size bytes.
// Requests the Go runtime cannot satisfy fail with device.ErrOutOfMemory.
func (p *pool) acquire(size int, kind device.AllocKind) ([]byte, error) {
	if size > maxCapacity {
		return nil, fmt.Errorf("%w: %d bytes exceeds the largest bucket", device.ErrOutOfMemory, size)
	}
	key := poolKey{capacity: mathutil.UpPow2(size), kind: kind}

	p.mu.Lock()
	bucket := p.buckets[key]
	if n := len(bucket); n > 0 {
		buf := bucket[n-1]
		p.buckets[key] = bucket[:n-1]
		p.hits++
		p.mu.Unlock()

		clear(buf)
		return buf, nil
	}
	p.misses++
	p.totalAllocated++
	p.mu.Unlock()

	return alloc(key.capacity)
}

// alloc turns a runtime allocation panic into device.ErrOutOfMemory.
func alloc(size int) (buf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, fmt.Errorf("%w: %v", device.ErrOutOfMemory, r)
		}
	}()
	return mem.Alloc(size), nil
}

// release returns buf to its bucket, dropping it if the bucket is full.
func (p *pool) release(buf []byte, kind device.AllocKind) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.totalReleased++
	key := poolKey{capacity: len(buf), kind: kind}
	if len(p.buckets[key]) >= p.maxPerBucket {
		return
	}
	p.buckets[key] = append(p.buckets[key], buf)
}

// clear drops every pooled buffer.
func (p *pool) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	clear(p.buckets)
}

// Stats describes pool usage.
type Stats struct {
	Allocated uint64
	Released  uint64
	Hits      uint64
	Misses    uint64
	Pooled    int
}

func (p *pool) stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	pooled := 0
	for _, b := range p.buckets {
		pooled += len(b)
	}
	return Stats{
		Allocated: p.totalAllocated,
		Released:  p.totalReleased,
		Hits:      p.hits,
		Misses:    p.misses,
		Pooled:    pooled,
	}
}
