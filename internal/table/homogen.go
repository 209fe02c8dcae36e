package table

import (
	"fmt"

	"github.com/born-ml/numtab/internal/array"
)

// Homogen is an immutable table whose columns share one data type.
//
// Several tables may alias one raw buffer. Release drops this table's
// reference; the buffer is freed with its last holder.
type Homogen struct {
	desc  Descriptor
	dtype array.DataType
	meta  Metadata
	raw   *array.Array[byte] // nil for an empty table
}

var _ Store = (*Homogen)(nil)

// Empty returns a table holding no data.
func Empty() *Homogen {
	return &Homogen{}
}

// Wrap builds a table over data without copying. The table borrows data;
// nothing is freed when it is released.
func Wrap[T array.Numeric](data []T, rows, cols int, layout Layout) (*Homogen, error) {
	a := array.Wrap(data, nil)
	defer a.Release()
	return FromArray(a, rows, cols, layout)
}

// FromArray builds a table sharing the storage of a.
func FromArray[T array.Numeric](a *array.Array[T], rows, cols int, layout Layout) (*Homogen, error) {
	var b Builder
	defer b.Release()
	if err := b.Reset(a, rows, cols, layout); err != nil {
		return nil, err
	}
	return b.Build(), nil
}

// Kind returns KindHomogen, or KindEmpty for a table without data.
func (h *Homogen) Kind() Kind {
	if h.raw == nil {
		return KindEmpty
	}
	return KindHomogen
}

// RowCount returns the number of rows.
func (h *Homogen) RowCount() int {
	return h.desc.Rows
}

// ColumnCount returns the number of columns.
func (h *Homogen) ColumnCount() int {
	return h.desc.Cols
}

// DataType returns the element type of every column.
func (h *Homogen) DataType() array.DataType {
	return h.dtype
}

// Layout returns the physical orientation.
func (h *Homogen) Layout() Layout {
	return h.desc.Layout
}

// Descriptor returns the layout descriptor.
func (h *Homogen) Descriptor() Descriptor {
	return h.desc
}

// Metadata returns the column metadata.
func (h *Homogen) Metadata() Metadata {
	return h.meta
}

// Raw returns a new handle to the raw buffer, or an empty array for an
// empty table. The caller releases it.
func (h *Homogen) Raw() *array.Array[byte] {
	if h.raw == nil {
		return array.Wrap[byte](nil, nil)
	}
	return h.raw.Clone()
}

// Data returns the raw bytes. It panics if the buffer is not host accessible.
func (h *Homogen) Data() []byte {
	if h.raw == nil {
		return nil
	}
	return h.raw.Data()
}

// DataAs returns the elements of h viewed as T. The data type is not
// checked; T must match h.DataType().
func DataAs[T array.Numeric](h *Homogen) []T {
	data := h.Data()
	if data == nil {
		return nil
	}
	return array.View[T](data, h.desc.Footprint())
}

// Transpose returns a view with rows and columns swapped. No data moves.
func (h *Homogen) Transpose() *Homogen {
	if h.raw == nil {
		return Empty()
	}
	return &Homogen{
		desc:  h.desc.Transpose(),
		dtype: h.dtype,
		meta:  h.meta.transpose(h.desc.Rows),
		raw:   h.raw.Clone(),
	}
}

// Release drops the table's reference to its buffer.
func (h *Homogen) Release() {
	if h.raw != nil {
		h.raw.Release()
	}
}

// String returns a short description for debugging.
func (h *Homogen) String() string {
	return fmt.Sprintf("Homogen(%dx%d %s, %s)", h.desc.Rows, h.desc.Cols, h.dtype, h.desc.Layout)
}
