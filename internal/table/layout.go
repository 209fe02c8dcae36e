package table

import (
	"fmt"
)

// Layout is the physical orientation of table elements.
type Layout int

// Supported layouts.
const (
	RowMajor Layout = iota
	ColumnMajor
)

// String returns a human-readable layout name.
func (l Layout) String() string {
	switch l {
	case RowMajor:
		return "row-major"
	case ColumnMajor:
		return "column-major"
	default:
		return "unknown"
	}
}

// Transpose returns the opposite orientation.
func (l Layout) Transpose() Layout {
	if l == RowMajor {
		return ColumnMajor
	}
	return RowMajor
}

// Descriptor describes how rows and columns map onto a linear buffer.
//
// Stride is the distance in elements between consecutive rows (row-major)
// or consecutive columns (column-major).
type Descriptor struct {
	Rows   int
	Cols   int
	Stride int
	Layout Layout
}

// NewDescriptor returns a dense descriptor: stride equals the minor extent.
func NewDescriptor(rows, cols int, layout Layout) Descriptor {
	d := Descriptor{Rows: rows, Cols: cols, Layout: layout}
	d.Stride = d.minor()
	return d
}

// minor returns the extent along which elements are adjacent in memory.
func (d Descriptor) minor() int {
	if d.Layout == ColumnMajor {
		return d.Rows
	}
	return d.Cols
}

func (d Descriptor) major() int {
	if d.Layout == ColumnMajor {
		return d.Cols
	}
	return d.Rows
}

// LinearIndex maps (row, col) to an element offset.
// Indices outside the table panic: they are caller bugs, not input errors.
func (d Descriptor) LinearIndex(row, col int) int {
	if row < 0 || row >= d.Rows || col < 0 || col >= d.Cols {
		panic(fmt.Sprintf("table: index (%d, %d) out of range for %dx%d table", row, col, d.Rows, d.Cols))
	}
	if d.Layout == ColumnMajor {
		return col*d.Stride + row
	}
	return row*d.Stride + col
}

// Transpose returns the descriptor of the transposed view of the same
// memory: counts swap, orientation flips, stride is unchanged.
func (d Descriptor) Transpose() Descriptor {
	return Descriptor{
		Rows:   d.Cols,
		Cols:   d.Rows,
		Stride: d.Stride,
		Layout: d.Layout.Transpose(),
	}
}

// Elements returns the logical element count rows*cols.
func (d Descriptor) Elements() int {
	return d.Rows * d.Cols
}

// Footprint returns the number of elements spanned in memory, from the
// first element to one past the last.
func (d Descriptor) Footprint() int {
	if d.Rows == 0 || d.Cols == 0 {
		return 0
	}
	return (d.major()-1)*d.Stride + d.minor()
}

// Dense reports whether rows (row-major) or columns (column-major) follow
// each other without gaps.
func (d Descriptor) Dense() bool {
	return d.Stride == d.minor()
}

// RowContiguous reports whether the elements are stored exactly in
// row-major order with no gaps.
func (d Descriptor) RowContiguous() bool {
	if d.Layout == RowMajor {
		return d.Stride == d.Cols
	}
	// A single column stored column-major is a contiguous row-major vector.
	return d.Cols == 1 && d.Stride >= d.Rows
}

// Validate checks the descriptor against a buffer of count elements.
func (d Descriptor) Validate(count int) error {
	if d.Rows <= 0 || d.Cols <= 0 {
		return &DimensionError{Rows: d.Rows, Cols: d.Cols}
	}
	if d.Layout != RowMajor && d.Layout != ColumnMajor {
		return fmt.Errorf("%w: %d", ErrInvalidLayout, d.Layout)
	}
	if d.Stride < d.minor() {
		return fmt.Errorf("%w: stride %d is smaller than %d", ErrInvalidLayout, d.Stride, d.minor())
	}
	if need := d.Footprint(); count < need {
		return &SizeMismatchError{Have: count, Want: need}
	}
	return nil
}
