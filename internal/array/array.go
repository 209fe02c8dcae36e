package array

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/born-ml/numtab/internal/device"
	"github.com/born-ml/numtab/internal/mathutil"
	"github.com/born-ml/numtab/internal/mem"
)

// Ownership tells whether an array allocated its memory or borrows it.
type Ownership int

// Ownership modes.
const (
	Owned Ownership = iota
	Borrowed
)

// String returns a human-readable ownership name.
func (o Ownership) String() string {
	if o == Owned {
		return "owned"
	}
	return "borrowed"
}

// storage is the reference-counted memory shared by array handles.
// The release action runs exactly once, when the last reference drops.
type storage struct {
	refs      atomic.Int64
	once      sync.Once
	release   func()
	host      []byte            // host view; nil for device-only memory
	alloc     device.Allocation // nil for plain host memory
	queue     *device.Queue     // nil for plain host memory
	size      int
	ownership Ownership
}

func newStorage(host []byte, size int, ownership Ownership, release func()) *storage {
	st := &storage{
		host:      host,
		size:      size,
		ownership: ownership,
		release:   release,
	}
	st.refs.Store(1)
	return st
}

func (st *storage) retain() {
	st.refs.Add(1)
}

func (st *storage) drop() {
	if st.refs.Add(-1) != 0 {
		return
	}
	st.once.Do(func() {
		if st.release != nil {
			st.release()
		}
	})
}

func (st *storage) space() device.AddressSpace {
	if st.alloc == nil {
		return device.Host
	}
	return st.alloc.Kind().Space()
}

// Array is a handle to a contiguous run of elements of type T.
//
// Handles are cheap: Clone returns another handle to the same storage.
// Writers must hold the only reference to writable storage (see
// HasMutableData); NeedMutableData forks a private copy otherwise.
//
// Memory is returned when every handle has been released. Release is
// idempotent per handle.
type Array[T Numeric] struct {
	st       *storage
	data     []T // host view, nil when count is 0 or memory is device-only
	count    int
	writable bool
	released atomic.Bool
}

func newArray[T Numeric](st *storage, count int, writable bool) *Array[T] {
	a := &Array[T]{st: st, count: count, writable: writable}
	if st != nil && st.host != nil {
		a.data = View[T](st.host, count)
	}
	return a
}

// byteSize returns count*sizeof(T), reporting overflow as an allocation error.
func byteSize[T Numeric](count int, space device.AddressSpace) (int, error) {
	if count < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}
	n, err := mathutil.MulInt(count, sizeOf[T]())
	if err != nil {
		return 0, &device.AllocationError{Space: space, Bytes: -1, Err: err}
	}
	return n, nil
}

// hostAlloc allocates zeroed host memory, turning an oversized request
// into an AllocationError instead of a runtime panic.
func hostAlloc(size int) (buf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &device.AllocationError{
				Space: device.Host,
				Bytes: size,
				Err:   fmt.Errorf("%w: %v", device.ErrOutOfMemory, r),
			}
		}
	}()
	return mem.Alloc(size), nil
}

// Empty allocates an owned, writable host array of count elements.
// Go memory is always zeroed, so the contents are zero as well.
func Empty[T Numeric](count int) (*Array[T], error) {
	size, err := byteSize[T](count, device.Host)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return &Array[T]{writable: true}, nil
	}
	buf, err := hostAlloc(size)
	if err != nil {
		return nil, err
	}
	st := newStorage(buf, size, Owned, nil)
	st.release = func() { st.host = nil }
	return newArray[T](st, count, true), nil
}

// Zeros allocates an owned host array of count zero elements.
func Zeros[T Numeric](count int) (*Array[T], error) {
	return Empty[T](count)
}

// Full allocates an owned host array with every element set to value.
func Full[T Numeric](count int, value T) (*Array[T], error) {
	a, err := Empty[T](count)
	if err != nil {
		return nil, err
	}
	for i := range a.data {
		a.data[i] = value
	}
	return a, nil
}

// FromSlice copies values into a new owned host array.
func FromSlice[T Numeric](values []T) (*Array[T], error) {
	a, err := Empty[T](len(values))
	if err != nil {
		return nil, err
	}
	copy(a.data, values)
	return a, nil
}

// Wrap borrows data as a writable array. deleter runs once when the last
// handle is released; nil means nothing is done.
func Wrap[T Numeric](data []T, deleter func([]T)) *Array[T] {
	return wrap(data, deleter, true)
}

// WrapConst borrows data as a read-only array.
func WrapConst[T Numeric](data []T, deleter func([]T)) *Array[T] {
	return wrap(data, deleter, false)
}

func wrap[T Numeric](data []T, deleter func([]T), writable bool) *Array[T] {
	if len(data) == 0 && deleter == nil {
		return &Array[T]{writable: writable}
	}
	var release func()
	if deleter != nil {
		release = func() { deleter(data) }
	}
	raw := asBytes(data)
	if raw == nil {
		// Empty but still owes its deleter a call on the last release.
		raw = []byte{}
	}
	st := newStorage(raw, len(raw), Borrowed, release)
	a := &Array[T]{st: st, data: data, count: len(data), writable: writable}
	return a
}

// EmptyOn allocates count elements of the given kind through q.
// Failures are *device.AllocationError values naming the address space.
func EmptyOn[T Numeric](q *device.Queue, count int, kind device.AllocKind) (*Array[T], error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %d", device.ErrUnknownKind, kind)
	}
	size, err := byteSize[T](count, kind.Space())
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return &Array[T]{writable: true}, nil
	}
	alloc, err := q.Malloc(size, kind)
	if err != nil {
		return nil, err
	}
	st := newStorage(alloc.Bytes(), size, Owned, func() { q.Free(alloc) })
	st.alloc = alloc
	st.queue = q
	return newArray[T](st, count, true), nil
}

// ZerosOn allocates count zero elements of the given kind through q.
func ZerosOn[T Numeric](q *device.Queue, count int, kind device.AllocKind) (*Array[T], error) {
	a, err := EmptyOn[T](q, count, kind)
	if err != nil {
		return nil, err
	}
	if a.st == nil {
		return a, nil
	}
	if err := q.Fill(a.Ptr(), a.ByteSize(), 0).Wait(); err != nil {
		a.Release()
		return nil, err
	}
	return a, nil
}

// WrapOn borrows count elements of an allocation made through q.
// deleter runs once when the last handle is released.
func WrapOn[T Numeric](q *device.Queue, alloc device.Allocation, count int, deleter func(device.Allocation)) (*Array[T], error) {
	if !q.Owns(alloc) {
		return nil, device.ErrContextMismatch
	}
	size, err := byteSize[T](count, alloc.Kind().Space())
	if err != nil {
		return nil, err
	}
	if size > alloc.Size() {
		return nil, fmt.Errorf("%w: %d bytes requested, allocation has %d",
			device.ErrOutOfBounds, size, alloc.Size())
	}
	var release func()
	if deleter != nil {
		release = func() { deleter(alloc) }
	}
	st := newStorage(alloc.Bytes(), size, Borrowed, release)
	st.alloc = alloc
	st.queue = q
	return newArray[T](st, count, true), nil
}

// Reinterpret returns a new handle to the storage of a viewed as U.
// The element count is the byte length divided by the size of U.
func Reinterpret[U, T Numeric](a *Array[T]) *Array[U] {
	if a.st == nil {
		return &Array[U]{writable: a.writable}
	}
	a.st.retain()
	return newArray[U](a.st, a.ByteSize()/sizeOf[U](), a.writable)
}

// Count returns the number of elements.
func (a *Array[T]) Count() int {
	return a.count
}

// ByteSize returns the size of the elements in bytes.
func (a *Array[T]) ByteSize() int {
	return a.count * sizeOf[T]()
}

// DataType returns the element type tag.
func (a *Array[T]) DataType() DataType {
	return DataTypeOf[T]()
}

// Space returns the address space holding the elements. Empty arrays
// report Host.
func (a *Array[T]) Space() device.AddressSpace {
	if a.st == nil {
		return device.Host
	}
	return a.st.space()
}

// Queue returns the device context the memory belongs to, or nil for
// plain host memory.
func (a *Array[T]) Queue() *device.Queue {
	if a.st == nil {
		return nil
	}
	return a.st.queue
}

// Ownership reports whether the storage was allocated by this package.
func (a *Array[T]) Ownership() Ownership {
	if a.st == nil {
		return Owned
	}
	return a.st.ownership
}

// IsUnique reports whether this handle holds the only reference.
func (a *Array[T]) IsUnique() bool {
	return a.st == nil || a.st.refs.Load() == 1
}

// Writable reports whether the storage accepts writes at all.
func (a *Array[T]) Writable() bool {
	return a.writable
}

// Data returns a read-only view of the elements. It panics for memory
// that is not host accessible; use ToHost first.
func (a *Array[T]) Data() []T {
	if a.st != nil && a.st.host == nil {
		panic(fmt.Sprintf("array: data is resident in %s memory", a.st.space()))
	}
	return a.data
}

// HasMutableData reports whether writes through this handle are allowed:
// the storage is writable and not shared with another handle.
func (a *Array[T]) HasMutableData() bool {
	return a.writable && a.IsUnique()
}

// MutableData returns the elements for writing.
// Returns ErrImmutable unless HasMutableData holds.
func (a *Array[T]) MutableData() ([]T, error) {
	if !a.HasMutableData() {
		return nil, ErrImmutable
	}
	if a.st != nil && a.st.host == nil {
		return nil, fmt.Errorf("array: %w (%s)", device.ErrNotHostAccessible, a.st.space())
	}
	return a.data, nil
}

// MutablePtr returns the address of the elements for device writes.
// Returns ErrImmutable unless HasMutableData holds.
func (a *Array[T]) MutablePtr() (device.Ptr, error) {
	if !a.HasMutableData() {
		return device.Ptr{}, ErrImmutable
	}
	return a.Ptr(), nil
}

// Ptr returns the address of the elements for copies.
func (a *Array[T]) Ptr() device.Ptr {
	if a.st == nil {
		return device.Ptr{}
	}
	if a.st.alloc != nil {
		return device.AllocPtr(a.st.alloc, 0)
	}
	return device.HostPtr(a.st.host)
}

// NeedMutableData makes this handle the sole owner of writable storage,
// copying the elements into fresh memory in the same address space when
// the storage is read-only or shared. Other handles keep the old contents.
func (a *Array[T]) NeedMutableData() error {
	if a.HasMutableData() {
		return nil
	}
	if a.st == nil {
		a.writable = true
		return nil
	}
	var (
		fresh *Array[T]
		err   error
	)
	if a.st.alloc != nil {
		fresh, err = EmptyOn[T](a.st.queue, a.count, a.st.alloc.Kind())
		if err != nil {
			return err
		}
		if err = a.st.queue.Memcpy(fresh.Ptr(), a.Ptr(), a.ByteSize()).Wait(); err != nil {
			fresh.Release()
			return err
		}
	} else {
		fresh, err = FromSlice(a.data)
		if err != nil {
			return err
		}
	}
	old := a.st
	a.st, a.data, a.writable = fresh.st, fresh.data, true
	old.drop()
	return nil
}

// Clone returns a new handle sharing the same storage.
func (a *Array[T]) Clone() *Array[T] {
	if a.st != nil {
		a.st.retain()
	}
	return &Array[T]{st: a.st, data: a.data, count: a.count, writable: a.writable}
}

// ReadOnly returns a new handle sharing the storage that refuses writes.
// NeedMutableData on it always copies.
func (a *Array[T]) ReadOnly() *Array[T] {
	c := a.Clone()
	c.writable = false
	return c
}

// Release drops this handle's reference. The storage release action runs
// when the last handle is released. Calling Release twice is a no-op.
func (a *Array[T]) Release() {
	if a.released.Swap(true) {
		return
	}
	if a.st != nil {
		a.st.drop()
	}
	a.st, a.data, a.count = nil, nil, 0
}

// Bytes returns a new handle viewing the storage as raw bytes.
func (a *Array[T]) Bytes() *Array[byte] {
	return Reinterpret[byte](a)
}

// String returns a short description for debugging.
func (a *Array[T]) String() string {
	return fmt.Sprintf("Array[%s](count=%d, space=%s, %s)", a.DataType(), a.count, a.Space(), a.Ownership())
}

// Untyped is the element-type-erased view of an array.
type Untyped interface {
	DataType() DataType
	Count() int
	ByteSize() int
	Space() device.AddressSpace
	Queue() *device.Queue
	Writable() bool
	Bytes() *Array[byte]
	Release()
}

var _ Untyped = (*Array[float32])(nil)
