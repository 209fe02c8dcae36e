package accessor

import (
	"github.com/born-ml/numtab/internal/array"
	"github.com/born-ml/numtab/internal/device"
	"github.com/born-ml/numtab/internal/table"
)

// RowAccessor reads and writes whole rows of a table as elements of T.
//
// Pulled rows are laid out row-major whatever the table layout. When T is
// the table's data type and the whole of a dense row-major table is
// requested, Pull returns a read-only view of the table buffer instead of
// a copy; callers must not rely on either outcome.
type RowAccessor[T array.Numeric] struct {
	store table.Store
	opts  options
}

// NewRow returns a row accessor over s. Push requires s to be a
// table.MutableStore such as *table.Builder.
func NewRow[T array.Numeric](s table.Store, opts ...Option) *RowAccessor[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &RowAccessor[T]{store: s, opts: o}
}

func (a *RowAccessor[T]) region(r Range) (region, error) {
	begin, end, err := r.resolve(a.store.RowCount())
	if err != nil {
		return region{}, err
	}
	return region{r0: begin, r1: end, c0: 0, c1: a.store.ColumnCount()}, nil
}

// Pull returns rows r as a new host array.
func (a *RowAccessor[T]) Pull(r Range) (*array.Array[T], error) {
	reg, err := a.region(r)
	if err != nil {
		return nil, err
	}
	return pull[T](a.store, reg, a.opts)
}

// PullInto writes rows r to the front of dst, which must have mutable data.
func (a *RowAccessor[T]) PullInto(dst *array.Array[T], r Range) error {
	reg, err := a.region(r)
	if err != nil {
		return err
	}
	return pullInto(dst, a.store, reg, a.opts)
}

// PullSlice writes rows r to the front of dst.
func (a *RowAccessor[T]) PullSlice(dst []T, r Range) error {
	reg, err := a.region(r)
	if err != nil {
		return err
	}
	return pullSlice(dst, a.store, reg, a.opts)
}

// PullOn returns rows r in memory of the given kind on q. If the table
// already lives there in the requested form, the result aliases it.
// Otherwise the rows are copied asynchronously; wait on the event before
// reading the result.
func (a *RowAccessor[T]) PullOn(q *device.Queue, r Range, kind device.AllocKind) (*array.Array[T], *device.Event, error) {
	reg, err := a.region(r)
	if err != nil {
		return nil, nil, err
	}
	return pullOn[T](q, a.store, reg, kind, a.opts)
}

// PullOnSync is PullOn followed by waiting for the copy.
func (a *RowAccessor[T]) PullOnSync(q *device.Queue, r Range, kind device.AllocKind) (*array.Array[T], error) {
	reg, err := a.region(r)
	if err != nil {
		return nil, err
	}
	return pullOnSync[T](q, a.store, reg, kind, a.opts)
}

// Push writes the first rows*cols elements of src into rows r.
// src may live in any address space of the table's device context.
func (a *RowAccessor[T]) Push(src *array.Array[T], r Range) error {
	reg, err := a.region(r)
	if err != nil {
		return err
	}
	return push(a.store, src, reg, a.opts)
}

// PushSlice writes src into rows r. len(src) must equal the number of
// elements the rows hold.
func (a *RowAccessor[T]) PushSlice(src []T, r Range) error {
	in := array.WrapConst(src, nil)
	defer in.Release()
	return a.Push(in, r)
}

// PushOn writes src into rows r once deps have completed. src must
// belong to q's device context.
func (a *RowAccessor[T]) PushOn(q *device.Queue, src *array.Array[T], r Range, deps ...*device.Event) error {
	if owner := src.Queue(); owner != nil && !owner.SameContext(q) {
		return device.ErrContextMismatch
	}
	if err := device.WaitAll(deps...); err != nil {
		return err
	}
	return a.Push(src, r)
}
