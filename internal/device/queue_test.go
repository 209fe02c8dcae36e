package device_test

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/numtab/internal/device"
	"github.com/born-ml/numtab/internal/device/sim"
	"github.com/born-ml/numtab/internal/metrics"
)

func newQueue(t *testing.T, opts ...device.Option) (*device.Queue, *sim.Backend) {
	t.Helper()
	b := sim.New(sim.DefaultConfig())
	t.Cleanup(func() { _ = b.Close() })
	return device.NewQueue(b, opts...), b
}

func TestMallocTagsAddressSpace(t *testing.T) {
	q, _ := newQueue(t)

	for _, kind := range []device.AllocKind{device.AllocDevice, device.AllocShared, device.AllocHost} {
		a, err := q.Malloc(32, kind)
		require.NoError(t, err, kind.String())
		assert.Equal(t, kind, a.Kind())
		assert.Equal(t, kind.Space(), device.AllocPtr(a, 0).Space())
		q.Free(a)
	}
}

func TestMallocRejectsBadArguments(t *testing.T) {
	q, _ := newQueue(t)

	_, err := q.Malloc(0, device.AllocDevice)
	require.ErrorIs(t, err, device.ErrInvalidSize)

	_, err = q.Malloc(8, device.AllocKind(42))
	require.ErrorIs(t, err, device.ErrUnknownKind)
}

func TestMallocBudgetDistinguishesHostAndDevice(t *testing.T) {
	var m metrics.Basic
	q, _ := newQueue(t,
		device.WithLimits(device.Limits{DeviceBytes: 100, HostBytes: 50}),
		device.WithMetrics(&m),
	)

	a, err := q.Malloc(80, device.AllocDevice)
	require.NoError(t, err)

	_, err = q.Malloc(40, device.AllocShared)
	var aerr *device.AllocationError
	require.ErrorAs(t, err, &aerr)
	assert.True(t, aerr.IsHost(), "shared memory is host backed")
	assert.Equal(t, device.Shared, aerr.Space)
	require.ErrorIs(t, err, device.ErrOutOfMemory)

	_, err = q.Malloc(40, device.AllocDevice)
	require.ErrorAs(t, err, &aerr)
	assert.True(t, aerr.IsDevice())

	_, err = q.Malloc(60, device.AllocHost)
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, device.Host, aerr.Space)

	// The device budget is returned on free.
	q.Free(a)
	b, err := q.Malloc(100, device.AllocDevice)
	require.NoError(t, err)
	q.Free(b)

	assert.Equal(t, int64(3), m.AllocErrors.Load())
	assert.Equal(t, int64(0), m.LiveBytes())
}

func TestMallocBackendFailureIsAllocationError(t *testing.T) {
	errNoMem := errors.New("adapter out of memory")
	b := sim.New(sim.Config{Faults: func(op sim.Op, _ device.AllocKind, _ int) error {
		if op == sim.OpAlloc {
			return errNoMem
		}
		return nil
	}})
	q := device.NewQueue(b, device.WithLimits(device.Limits{DeviceBytes: 64}))

	_, err := q.Malloc(64, device.AllocDevice)
	var aerr *device.AllocationError
	require.ErrorAs(t, err, &aerr)
	require.ErrorIs(t, err, errNoMem)
	assert.True(t, aerr.IsDevice())
}

func TestMemcpyRoundTrip(t *testing.T) {
	var m metrics.Basic
	q, _ := newQueue(t, device.WithMetrics(&m))

	a, err := q.Malloc(4, device.AllocDevice)
	require.NoError(t, err)
	defer q.Free(a)

	in := []byte{9, 8, 7, 6}
	out := make([]byte, 4)

	up := q.Memcpy(device.AllocPtr(a, 0), device.HostPtr(in), 4)
	down := q.Memcpy(device.HostPtr(out), device.AllocPtr(a, 0), 4, up)
	require.NoError(t, down.Wait())
	assert.Equal(t, in, out)
	assert.True(t, up.Finished())

	assert.Equal(t, int64(2), m.Transfers.Load())
	assert.Equal(t, int64(8), m.TransferBytes.Load())
}

func TestMemcpyFailureIsDeferred(t *testing.T) {
	errBus := errors.New("bus error")
	var fail atomic.Bool
	b := sim.New(sim.Config{Faults: func(op sim.Op, _ device.AllocKind, _ int) error {
		if op == sim.OpCopy && fail.Load() {
			return errBus
		}
		return nil
	}})
	q := device.NewQueue(b)

	a, err := q.Malloc(4, device.AllocDevice)
	require.NoError(t, err)
	defer q.Free(a)

	fail.Store(true)
	ev := q.Memcpy(device.AllocPtr(a, 0), device.HostPtr(make([]byte, 4)), 4)

	err = ev.Wait()
	var terr *device.TransferError
	require.ErrorAs(t, err, &terr)
	require.ErrorIs(t, err, errBus)
	assert.Equal(t, device.Host, terr.Src)
	assert.Equal(t, device.Device, terr.Dst)

	// Dependents fail too.
	fail.Store(false)
	next := q.Memcpy(device.HostPtr(make([]byte, 4)), device.AllocPtr(a, 0), 4, ev)
	require.ErrorIs(t, next.Wait(), errBus)
}

func TestMemcpyOtherContext(t *testing.T) {
	q1, _ := newQueue(t)
	q2, _ := newQueue(t)
	assert.False(t, q1.SameContext(q2))

	a, err := q1.Malloc(4, device.AllocDevice)
	require.NoError(t, err)
	defer q1.Free(a)

	ev := q2.Memcpy(device.HostPtr(make([]byte, 4)), device.AllocPtr(a, 0), 4)
	require.ErrorIs(t, ev.Wait(), device.ErrContextMismatch)
}

func TestSameContext(t *testing.T) {
	b := sim.New(sim.DefaultConfig())
	q1 := device.NewQueue(b)
	q2 := device.NewQueue(b)

	assert.True(t, q1.SameContext(q2))
	assert.NotEqual(t, q1.ID(), q2.ID())
}

func TestFill(t *testing.T) {
	q, _ := newQueue(t)
	a, err := q.Malloc(4, device.AllocShared)
	require.NoError(t, err)
	defer q.Free(a)

	require.NoError(t, q.Fill(device.AllocPtr(a, 0), 4, 3).Wait())
	assert.Equal(t, []byte{3, 3, 3, 3}, a.Bytes())

	require.ErrorIs(t, q.Fill(device.AllocPtr(a, 2), 4, 0).Wait(), device.ErrOutOfBounds)
}

func TestQueueWait(t *testing.T) {
	q, _ := newQueue(t)
	a, err := q.Malloc(1024, device.AllocDevice)
	require.NoError(t, err)
	defer q.Free(a)

	events := make([]*device.Event, 0, 8)
	for i := 0; i < 8; i++ {
		events = append(events, q.Memcpy(device.AllocPtr(a, i*128), device.HostPtr(make([]byte, 128)), 128))
	}
	q.Wait()
	for _, ev := range events {
		assert.True(t, ev.Finished())
	}
}

func TestWaitAll(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")

	require.NoError(t, device.WaitAll())
	require.NoError(t, device.WaitAll(device.Completed(), nil))

	err := device.WaitAll(device.Completed(), device.Failed(errA))
	assert.Equal(t, errA, err)

	err = device.WaitAll(device.Failed(errA), device.Failed(errB))
	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 2)
	require.ErrorIs(t, err, errB)
}

func TestNilEventIsCompleted(t *testing.T) {
	var ev *device.Event
	require.NoError(t, ev.Wait())
	assert.True(t, ev.Finished())
}
