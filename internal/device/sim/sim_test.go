package sim

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/numtab/internal/device"
)

func TestDeviceMemoryIsNotHostVisible(t *testing.T) {
	b := New(DefaultConfig())

	dev, err := b.Alloc(64, device.AllocDevice)
	require.NoError(t, err)
	assert.Nil(t, dev.Bytes())
	assert.Equal(t, 64, dev.Size())

	shared, err := b.Alloc(64, device.AllocShared)
	require.NoError(t, err)
	assert.Len(t, shared.Bytes(), 64)

	host, err := b.Alloc(64, device.AllocHost)
	require.NoError(t, err)
	assert.Len(t, host.Bytes(), 64)

	b.Free(dev)
	b.Free(shared)
	b.Free(host)
	assert.Equal(t, int64(0), b.LiveBytes())
}

func TestAllocTooLargeIsOutOfMemory(t *testing.T) {
	b := New(DefaultConfig())

	for _, size := range []int{1 << 52, math.MaxInt} {
		_, err := b.Alloc(size, device.AllocDevice)
		require.ErrorIs(t, err, device.ErrOutOfMemory, "size %d", size)
	}
	assert.Equal(t, int64(0), b.LiveBytes())
}

func TestCopyRoundTrip(t *testing.T) {
	b := New(DefaultConfig())

	src := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	dev, err := b.Alloc(len(src), device.AllocDevice)
	require.NoError(t, err)
	defer b.Free(dev)

	require.NoError(t, b.Copy(device.AllocPtr(dev, 0), device.HostPtr(src), len(src)))

	out := make([]byte, 4)
	require.NoError(t, b.Copy(device.HostPtr(out), device.AllocPtr(dev, 2), 4))
	assert.Equal(t, []byte{3, 4, 5, 6}, out)
}

func TestCopyOutOfBounds(t *testing.T) {
	b := New(DefaultConfig())
	dev, err := b.Alloc(4, device.AllocDevice)
	require.NoError(t, err)
	defer b.Free(dev)

	err = b.Copy(device.AllocPtr(dev, 2), device.HostPtr(make([]byte, 8)), 8)
	require.ErrorIs(t, err, device.ErrOutOfBounds)
}

func TestCopyAcrossContextsFails(t *testing.T) {
	b1 := New(DefaultConfig())
	b2 := New(DefaultConfig())

	a, err := b1.Alloc(8, device.AllocDevice)
	require.NoError(t, err)
	defer b1.Free(a)

	err = b2.Copy(device.HostPtr(make([]byte, 8)), device.AllocPtr(a, 0), 8)
	require.ErrorIs(t, err, device.ErrContextMismatch)
}

func TestUseAfterFree(t *testing.T) {
	b := New(Config{})
	a, err := b.Alloc(8, device.AllocShared)
	require.NoError(t, err)
	b.Free(a)

	err = b.Copy(device.HostPtr(make([]byte, 8)), device.AllocPtr(a, 0), 8)
	require.ErrorIs(t, err, ErrUseAfterFree)
	assert.Panics(t, func() { b.Free(a) })
}

func TestPoolReuseClearsMemory(t *testing.T) {
	b := New(DefaultConfig())

	a, err := b.Alloc(100, device.AllocShared)
	require.NoError(t, err)
	for i := range a.Bytes() {
		a.Bytes()[i] = 0xff
	}
	b.Free(a)

	// 120 rounds up to the same 128-byte bucket.
	c, err := b.Alloc(120, device.AllocShared)
	require.NoError(t, err)
	defer b.Free(c)

	for i, v := range c.Bytes() {
		require.Zero(t, v, "byte %d not cleared", i)
	}

	stats := b.PoolStats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(1), stats.Released)
	assert.Equal(t, 0, stats.Pooled)
}

func TestPoolKindsDoNotMix(t *testing.T) {
	b := New(DefaultConfig())

	a, err := b.Alloc(64, device.AllocDevice)
	require.NoError(t, err)
	b.Free(a)

	c, err := b.Alloc(64, device.AllocShared)
	require.NoError(t, err)
	defer b.Free(c)

	assert.Equal(t, uint64(0), b.PoolStats().Hits)
	assert.Equal(t, 1, b.PoolStats().Pooled)

	require.NoError(t, b.Close())
	assert.Equal(t, 0, b.PoolStats().Pooled)
}

func TestFill(t *testing.T) {
	b := New(DefaultConfig())
	a, err := b.Alloc(8, device.AllocShared)
	require.NoError(t, err)
	defer b.Free(a)

	require.NoError(t, b.Fill(device.AllocPtr(a, 4), 4, 7))
	assert.Equal(t, []byte{0, 0, 0, 0, 7, 7, 7, 7}, a.Bytes())
}

func TestFaultInjection(t *testing.T) {
	errInjected := errors.New("injected")
	b := New(Config{
		Faults: func(op Op, kind device.AllocKind, _ int) error {
			if op == OpAlloc && kind == device.AllocDevice {
				return errInjected
			}
			if op == OpCopy {
				return errInjected
			}
			return nil
		},
	})

	_, err := b.Alloc(8, device.AllocDevice)
	require.ErrorIs(t, err, errInjected)

	a, err := b.Alloc(8, device.AllocShared)
	require.NoError(t, err)
	defer b.Free(a)

	err = b.Copy(device.AllocPtr(a, 0), device.HostPtr(make([]byte, 8)), 8)
	require.ErrorIs(t, err, errInjected)
}

func TestBandwidthThrottle(t *testing.T) {
	b := New(Config{BandwidthBytesPerSec: 1000})
	a, err := b.Alloc(1500, device.AllocDevice)
	require.NoError(t, err)
	defer b.Free(a)

	start := time.Now()
	// The first 1000 bytes use the initial burst, the remaining 500 wait ~0.5s.
	require.NoError(t, b.Copy(device.AllocPtr(a, 0), device.HostPtr(make([]byte, 1500)), 1500))
	assert.GreaterOrEqual(t, time.Since(start), 400*time.Millisecond)

	// Host-to-host copies are never throttled.
	start = time.Now()
	require.NoError(t, b.Copy(device.HostPtr(make([]byte, 4000)), device.HostPtr(make([]byte, 4000)), 4000))
	assert.Less(t, time.Since(start), 200*time.Millisecond)
}
