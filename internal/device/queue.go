package device

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/born-ml/numtab/internal/metrics"
)

// Limits caps the memory a queue may hold. Zero means unlimited.
type Limits struct {
	DeviceBytes int64 // Budget for device and shared allocations
	HostBytes   int64 // Budget for pinned host allocations
}

// Option configures a Queue.
type Option func(*Queue)

// WithLogger sets the queue logger. Default: NoopLogger.
func WithLogger(l *Logger) Option {
	return func(q *Queue) {
		if l != nil {
			q.logger = l
		}
	}
}

// WithMetrics sets the metrics collector. Default: metrics.Noop.
func WithMetrics(c metrics.Collector) Option {
	return func(q *Queue) {
		if c != nil {
			q.metrics = c
		}
	}
}

// WithLimits sets memory budgets for the queue.
func WithLimits(l Limits) Option {
	return func(q *Queue) {
		q.limits = l
	}
}

// Queue is a device context handle. Every device allocation and transfer is
// submitted through a Queue; arrays remember the queue they were allocated on.
//
// A Queue does not order submissions. Operations submitted without a
// dependency edge may run concurrently.
type Queue struct {
	id      uuid.UUID
	backend Backend
	logger  *Logger
	metrics metrics.Collector
	limits  Limits

	deviceBudget *semaphore.Weighted // nil if unlimited
	hostBudget   *semaphore.Weighted // nil if unlimited

	inflight sync.WaitGroup
}

// NewQueue creates a queue submitting to backend b.
func NewQueue(b Backend, opts ...Option) *Queue {
	q := &Queue{
		id:      uuid.New(),
		backend: b,
		logger:  NoopLogger(),
		metrics: metrics.Noop{},
	}
	for _, opt := range opts {
		opt(q)
	}
	q.logger = q.logger.WithBackend(b.Name())

	if q.limits.DeviceBytes > 0 {
		q.deviceBudget = semaphore.NewWeighted(q.limits.DeviceBytes)
	}
	if q.limits.HostBytes > 0 {
		q.hostBudget = semaphore.NewWeighted(q.limits.HostBytes)
	}
	return q
}

// ID returns the queue identity.
func (q *Queue) ID() uuid.UUID {
	return q.id
}

// Backend returns the backend the queue submits to.
func (q *Queue) Backend() Backend {
	return q.backend
}

// Logger returns the queue logger.
func (q *Queue) Logger() *Logger {
	return q.logger
}

// SameContext reports whether q and other share a device context, i.e.
// whether memory allocated on one can be used by the other.
func (q *Queue) SameContext(other *Queue) bool {
	if q == nil || other == nil {
		return q == other
	}
	return q.backend.ContextID() == other.backend.ContextID()
}

// Owns reports whether a belongs to the device context of q.
// Plain host memory (nil) belongs to every context.
func (q *Queue) Owns(a Allocation) bool {
	if a == nil {
		return true
	}
	return a.ContextID() == q.backend.ContextID()
}

func (q *Queue) budget(kind AllocKind) *semaphore.Weighted {
	if kind == AllocHost {
		return q.hostBudget
	}
	return q.deviceBudget
}

// Malloc allocates size bytes of the given kind. Failures are reported as
// *AllocationError tagged with the address space of kind.
func (q *Queue) Malloc(size int, kind AllocKind) (Allocation, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidSize, size)
	}

	fail := func(err error) (Allocation, error) {
		aerr := &AllocationError{Space: kind.Space(), Bytes: size, Err: err}
		q.metrics.RecordAlloc(kind.Space().String(), size, aerr)
		q.logger.LogAlloc(kind, size, aerr)
		return nil, aerr
	}

	budget := q.budget(kind)
	if budget != nil && !budget.TryAcquire(int64(size)) {
		return fail(ErrOutOfMemory)
	}

	a, err := q.backend.Alloc(size, kind)
	if err != nil {
		if budget != nil {
			budget.Release(int64(size))
		}
		return fail(err)
	}

	q.metrics.RecordAlloc(kind.Space().String(), size, nil)
	q.logger.LogAlloc(kind, size, nil)
	return a, nil
}

// Free returns an allocation made by Malloc. It must be called exactly once
// per allocation; arrays arrange that through their release action.
func (q *Queue) Free(a Allocation) {
	if a == nil {
		return
	}
	size, kind := a.Size(), a.Kind()
	q.backend.Free(a)
	if budget := q.budget(kind); budget != nil {
		budget.Release(int64(size))
	}
	q.metrics.RecordFree(kind.Space().String(), size)
	q.logger.LogFree(kind, size)
}

// Memcpy schedules a copy of n bytes from src to dst once every dependency
// has completed. The returned event fails with *TransferError if the copy
// or any dependency fails.
func (q *Queue) Memcpy(dst, src Ptr, n int, deps ...*Event) *Event {
	if n == 0 {
		return q.after(deps)
	}
	return q.submit(deps, func() error {
		start := time.Now()
		err := q.checkPtrs(dst, src, n)
		if err == nil {
			err = q.backend.Copy(dst, src, n)
		}
		d := time.Since(start)
		q.metrics.RecordTransfer(direction(src.Space(), dst.Space()), n, d, err)
		q.logger.LogTransfer(src.Space(), dst.Space(), n, d, err)
		if err != nil {
			return &TransferError{Src: src.Space(), Dst: dst.Space(), Bytes: n, Err: err}
		}
		return nil
	})
}

// Fill schedules setting n bytes at dst to value.
func (q *Queue) Fill(dst Ptr, n int, value byte, deps ...*Event) *Event {
	if n == 0 {
		return q.after(deps)
	}
	return q.submit(deps, func() error {
		var err error
		switch {
		case !q.Owns(dst.Alloc):
			err = ErrContextMismatch
		case dst.Offset < 0 || dst.Len() < n:
			err = fmt.Errorf("%w: %d bytes", ErrOutOfBounds, n)
		default:
			err = q.backend.Fill(dst, n, value)
		}
		if err != nil {
			return &TransferError{Src: Host, Dst: dst.Space(), Bytes: n, Err: err}
		}
		return nil
	})
}

// Wait blocks until every operation submitted so far has finished.
func (q *Queue) Wait() {
	q.inflight.Wait()
}

func (q *Queue) checkPtrs(dst, src Ptr, n int) error {
	if !q.Owns(dst.Alloc) || !q.Owns(src.Alloc) {
		return ErrContextMismatch
	}
	if dst.Offset < 0 || src.Offset < 0 || dst.Len() < n || src.Len() < n {
		return fmt.Errorf("%w: %d bytes", ErrOutOfBounds, n)
	}
	return nil
}

func (q *Queue) after(deps []*Event) *Event {
	if len(deps) == 0 {
		return Completed()
	}
	return q.submit(deps, func() error { return nil })
}

func (q *Queue) submit(deps []*Event, op func() error) *Event {
	ev := newEvent()
	q.inflight.Add(1)
	go func() {
		defer q.inflight.Done()
		if err := WaitAll(deps...); err != nil {
			ev.complete(fmt.Errorf("dependency failed: %w", err))
			return
		}
		ev.complete(op())
	}()
	return ev
}

func direction(src, dst AddressSpace) metrics.Direction {
	srcDev := src == Device || src == Shared
	dstDev := dst == Device || dst == Shared
	switch {
	case srcDev && dstDev:
		return metrics.DeviceToDevice
	case srcDev:
		return metrics.DeviceToHost
	case dstDev:
		return metrics.HostToDevice
	default:
		return metrics.HostToHost
	}
}
