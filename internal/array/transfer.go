package array

import (
	"fmt"

	"github.com/born-ml/numtab/internal/device"
)

// ToDevice moves a to device memory of q's context.
//
// Empty arrays and arrays already resident on a device of the same context
// are returned as new handles to the same storage with a completed event.
// Memory of another context yields ErrContextMismatch. Otherwise a device
// allocation is made and an asynchronous copy submitted; the returned array
// must not be read before the event completes.
func ToDevice[T Numeric](q *device.Queue, a *Array[T], deps ...*device.Event) (*Array[T], *device.Event, error) {
	if a.count == 0 {
		return a.Clone(), device.Completed(), nil
	}
	if src := a.Queue(); src != nil {
		if !src.SameContext(q) {
			return nil, nil, fmt.Errorf("array: %w", device.ErrContextMismatch)
		}
		if a.Space() == device.Device {
			return a.Clone(), device.Completed(), nil
		}
	}
	dst, err := EmptyOn[T](q, a.count, device.AllocDevice)
	if err != nil {
		return nil, nil, err
	}
	return dst, q.Memcpy(dst.Ptr(), a.Ptr(), a.ByteSize(), deps...), nil
}

// ToHost moves a to host-accessible memory.
//
// Host and shared arrays are returned as new handles to the same storage.
// Device arrays are copied into pinned host memory of their context.
func ToHost[T Numeric](a *Array[T], deps ...*device.Event) (*Array[T], *device.Event, error) {
	if a.count == 0 || a.Space().HostAccessible() {
		return a.Clone(), device.Completed(), nil
	}
	q := a.Queue()
	dst, err := EmptyOn[T](q, a.count, device.AllocHost)
	if err != nil {
		return nil, nil, err
	}
	return dst, q.Memcpy(dst.Ptr(), a.Ptr(), a.ByteSize(), deps...), nil
}

// ToDeviceSync is ToDevice followed by waiting for the copy.
func ToDeviceSync[T Numeric](q *device.Queue, a *Array[T]) (*Array[T], error) {
	dst, ev, err := ToDevice(q, a)
	if err != nil {
		return nil, err
	}
	if err := ev.Wait(); err != nil {
		dst.Release()
		return nil, err
	}
	return dst, nil
}

// ToHostSync is ToHost followed by waiting for the copy.
func ToHostSync[T Numeric](a *Array[T]) (*Array[T], error) {
	dst, ev, err := ToHost(a)
	if err != nil {
		return nil, err
	}
	if err := ev.Wait(); err != nil {
		dst.Release()
		return nil, err
	}
	return dst, nil
}

// CopyFrom submits a copy of every element of src into dst.
//
// The copy runs on the queue owning dst (or src when dst is host memory).
// Plain host to host copies complete before CopyFrom returns.
// dst must have mutable data and the same element count as src.
func CopyFrom[T Numeric](dst, src *Array[T], deps ...*device.Event) (*device.Event, error) {
	if dst.count != src.count {
		return nil, fmt.Errorf("%w: %d and %d", ErrCountMismatch, dst.count, src.count)
	}
	ptr, err := dst.MutablePtr()
	if err != nil {
		return nil, err
	}
	if dst.count == 0 {
		return device.Completed(), nil
	}
	q := dst.Queue()
	if q == nil {
		q = src.Queue()
	}
	if q == nil {
		if err := device.WaitAll(deps...); err != nil {
			return device.Failed(err), nil
		}
		copy(dst.data, src.data)
		return device.Completed(), nil
	}
	if dst.Queue() != nil && src.Queue() != nil && !dst.Queue().SameContext(src.Queue()) {
		return nil, fmt.Errorf("array: %w", device.ErrContextMismatch)
	}
	return q.Memcpy(ptr, src.Ptr(), dst.ByteSize(), deps...), nil
}
