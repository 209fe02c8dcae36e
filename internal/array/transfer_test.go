package array

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/numtab/internal/device"
	"github.com/born-ml/numtab/internal/device/sim"
)

func TestToDeviceRoundTrip(t *testing.T) {
	q := newQueue(t)
	src, err := FromSlice([]float64{1.5, -2, 3})
	require.NoError(t, err)
	defer src.Release()

	dev, ev, err := ToDevice(q, src)
	require.NoError(t, err)
	defer dev.Release()
	require.NoError(t, ev.Wait())
	assert.Equal(t, device.Device, dev.Space())

	back, ev, err := ToHost(dev)
	require.NoError(t, err)
	defer back.Release()
	require.NoError(t, ev.Wait())
	assert.True(t, back.Space().HostAccessible())
	assert.Equal(t, []float64{1.5, -2, 3}, back.Data())
}

func TestToDeviceEmptyIsUnchanged(t *testing.T) {
	q := newQueue(t)
	a, err := Empty[int8](0)
	require.NoError(t, err)

	d, ev, err := ToDevice(q, a)
	require.NoError(t, err)
	assert.True(t, ev.Finished())
	assert.Equal(t, 0, d.Count())
	assert.Equal(t, device.Host, d.Space())
}

func TestToDeviceAlreadyOnDevice(t *testing.T) {
	q := newQueue(t)
	a, err := ZerosOn[float32](q, 4, device.AllocDevice)
	require.NoError(t, err)
	defer a.Release()

	d, ev, err := ToDevice(q, a)
	require.NoError(t, err)
	defer d.Release()
	assert.True(t, ev.Finished())
	assert.False(t, a.IsUnique())
}

func TestToDeviceCopiesShared(t *testing.T) {
	q := newQueue(t)
	a, err := ZerosOn[float32](q, 4, device.AllocShared)
	require.NoError(t, err)
	defer a.Release()

	d, err := ToDeviceSync(q, a)
	require.NoError(t, err)
	defer d.Release()
	assert.Equal(t, device.Device, d.Space())
	assert.True(t, a.IsUnique())
}

func TestToDeviceContextMismatch(t *testing.T) {
	q1 := newQueue(t)
	q2 := newQueue(t)
	a, err := ZerosOn[int32](q1, 2, device.AllocDevice)
	require.NoError(t, err)
	defer a.Release()

	_, _, err = ToDevice(q2, a)
	require.ErrorIs(t, err, device.ErrContextMismatch)
}

func TestToHostReturnsHostArraysUnchanged(t *testing.T) {
	q := newQueue(t)
	h, err := FromSlice([]int32{1})
	require.NoError(t, err)
	s, err := ZerosOn[int32](q, 1, device.AllocShared)
	require.NoError(t, err)

	for _, a := range []*Array[int32]{h, s} {
		out, ev, err := ToHost(a)
		require.NoError(t, err)
		assert.True(t, ev.Finished())
		assert.Same(t, &a.Data()[0], &out.Data()[0])
		out.Release()
		a.Release()
	}
}

func TestTransferFailureSurfacesOnWait(t *testing.T) {
	errLink := errors.New("link down")
	cfg := sim.DefaultConfig()
	cfg.Faults = func(op sim.Op, _ device.AllocKind, _ int) error {
		if op == sim.OpCopy {
			return errLink
		}
		return nil
	}
	b := sim.New(cfg)
	q := device.NewQueue(b)

	src, err := FromSlice([]float32{1, 2})
	require.NoError(t, err)
	defer src.Release()

	dev, ev, err := ToDevice(q, src)
	require.NoError(t, err, "transfer errors are deferred to the event")
	defer dev.Release()

	err = ev.Wait()
	var terr *device.TransferError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, device.Host, terr.Src)
	assert.Equal(t, device.Device, terr.Dst)
	require.ErrorIs(t, err, errLink)

	_, err = ToDeviceSync(q, src)
	require.ErrorIs(t, err, errLink)
	assert.Equal(t, int64(dev.ByteSize()), b.LiveBytes())
}

func TestCopyFrom(t *testing.T) {
	q := newQueue(t)
	src, err := FromSlice([]uint16{7, 8, 9})
	require.NoError(t, err)
	defer src.Release()

	dev, err := EmptyOn[uint16](q, 3, device.AllocDevice)
	require.NoError(t, err)
	defer dev.Release()
	ev, err := CopyFrom(dev, src)
	require.NoError(t, err)

	host, err := Empty[uint16](3)
	require.NoError(t, err)
	defer host.Release()
	ev, err = CopyFrom(host, dev, ev)
	require.NoError(t, err)
	require.NoError(t, ev.Wait())
	assert.Equal(t, []uint16{7, 8, 9}, host.Data())

	plain, err := Empty[uint16](3)
	require.NoError(t, err)
	ev, err = CopyFrom(plain, host)
	require.NoError(t, err)
	assert.True(t, ev.Finished())
	assert.Equal(t, []uint16{7, 8, 9}, plain.Data())

	short, err := Empty[uint16](2)
	require.NoError(t, err)
	_, err = CopyFrom(short, src)
	require.ErrorIs(t, err, ErrCountMismatch)

	ro := src.Clone()
	defer ro.Release()
	_, err = CopyFrom(src, plain)
	require.ErrorIs(t, err, ErrImmutable)
}
