package legacy

import (
	"github.com/born-ml/numtab/internal/accessor"
	"github.com/born-ml/numtab/internal/array"
	"github.com/born-ml/numtab/internal/table"
)

// FromArray exposes the elements of a as a legacy table. With allowCopy,
// shared or read-only storage is first forked into a private copy;
// without it such storage fails with array.ErrImmutable. The legacy table
// holds its own handle to the storage and releases it when freed.
func FromArray[T array.Numeric](a *array.Array[T], rows, cols int, allowCopy bool) (*NumericTable[T], error) {
	if a.Count() == 0 {
		return nil, ErrEmpty
	}
	if allowCopy {
		if err := a.NeedMutableData(); err != nil {
			return nil, err
		}
	}
	data, err := a.MutableData()
	if err != nil {
		return nil, err
	}
	handle := a.Clone()
	nt, err := New(cols, rows, data, handle.Release)
	if err != nil {
		handle.Release()
		return nil, err
	}
	return nt, nil
}

// ToLegacy copies the whole of src, converted to T, into a legacy table.
func ToLegacy[T array.Numeric](src table.Store) (*NumericTable[T], error) {
	if src.Kind() == table.KindEmpty {
		return nil, ErrEmpty
	}
	rows, err := accessor.NewRow[T](src).Pull(accessor.All())
	if err != nil {
		return nil, err
	}
	defer rows.Release()
	return FromArray(rows, src.RowCount(), src.ColumnCount(), true)
}

// FromLegacy wraps the rows of nt as a read-only table without copying.
// The table keeps nt alive; the block of rows is given back and the
// reference dropped when the last holder of the table buffer releases it.
func FromLegacy[T array.Numeric](nt *NumericTable[T]) (*table.Homogen, error) {
	block, err := nt.GetBlockOfRows(0, nt.Rows(), ReadOnly)
	if err != nil {
		return nil, err
	}
	nt.Retain()
	a := array.WrapConst(block.Data, func([]T) {
		nt.ReleaseBlockOfRows(block)
		nt.Release()
	})
	defer a.Release()
	return table.FromArray(a, nt.Rows(), nt.Columns(), table.RowMajor)
}
