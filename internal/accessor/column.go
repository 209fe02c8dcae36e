package accessor

import (
	"github.com/born-ml/numtab/internal/array"
	"github.com/born-ml/numtab/internal/device"
	"github.com/born-ml/numtab/internal/table"
)

// ColumnAccessor reads and writes a range of rows of a single column.
type ColumnAccessor[T array.Numeric] struct {
	store table.Store
	opts  options
}

// NewColumn returns a column accessor over s.
func NewColumn[T array.Numeric](s table.Store, opts ...Option) *ColumnAccessor[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &ColumnAccessor[T]{store: s, opts: o}
}

func (a *ColumnAccessor[T]) region(col int, rows Range) (region, error) {
	cols := a.store.ColumnCount()
	if col < 0 || col >= cols {
		return region{}, &RangeError{Begin: col, End: col + 1, Extent: cols}
	}
	begin, end, err := rows.resolve(a.store.RowCount())
	if err != nil {
		return region{}, err
	}
	return region{r0: begin, r1: end, c0: col, c1: col + 1}, nil
}

// Pull returns rows of column col as a new host array.
func (a *ColumnAccessor[T]) Pull(col int, rows Range) (*array.Array[T], error) {
	reg, err := a.region(col, rows)
	if err != nil {
		return nil, err
	}
	return pull[T](a.store, reg, a.opts)
}

// PullInto writes rows of column col to the front of dst.
func (a *ColumnAccessor[T]) PullInto(dst *array.Array[T], col int, rows Range) error {
	reg, err := a.region(col, rows)
	if err != nil {
		return err
	}
	return pullInto(dst, a.store, reg, a.opts)
}

// PullSlice writes rows of column col to the front of dst.
func (a *ColumnAccessor[T]) PullSlice(dst []T, col int, rows Range) error {
	reg, err := a.region(col, rows)
	if err != nil {
		return err
	}
	return pullSlice(dst, a.store, reg, a.opts)
}

// PullOn returns rows of column col in memory of the given kind on q.
func (a *ColumnAccessor[T]) PullOn(q *device.Queue, col int, rows Range, kind device.AllocKind) (*array.Array[T], *device.Event, error) {
	reg, err := a.region(col, rows)
	if err != nil {
		return nil, nil, err
	}
	return pullOn[T](q, a.store, reg, kind, a.opts)
}

// Push writes src into rows of column col.
func (a *ColumnAccessor[T]) Push(src *array.Array[T], col int, rows Range) error {
	reg, err := a.region(col, rows)
	if err != nil {
		return err
	}
	return push(a.store, src, reg, a.opts)
}
