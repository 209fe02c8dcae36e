package table

import (
	"fmt"

	"github.com/born-ml/numtab/internal/array"
	"github.com/born-ml/numtab/internal/mathutil"
)

// Builder assembles homogeneous tables. It is the mutable table variant:
// accessors push through it, and each Build snapshots the current buffer.
// A zero Builder is ready to use.
type Builder struct {
	desc  Descriptor
	dtype array.DataType
	meta  Metadata
	raw   *array.Array[byte]
}

var _ MutableStore = (*Builder)(nil)

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Reset points the builder at data viewed as rows x cols in the given
// layout. The builder takes its own reference; the caller keeps theirs.
func (b *Builder) Reset(data array.Untyped, rows, cols int, layout Layout) error {
	if rows <= 0 || cols <= 0 {
		return &DimensionError{Rows: rows, Cols: cols}
	}
	desc := NewDescriptor(rows, cols, layout)
	if err := desc.Validate(data.Count()); err != nil {
		return err
	}
	b.set(desc, data.DataType(), data.Bytes())
	return nil
}

// ResetEmpty points the builder at a new zeroed host buffer.
func (b *Builder) ResetEmpty(dt array.DataType, rows, cols int, layout Layout) error {
	if rows <= 0 || cols <= 0 {
		return &DimensionError{Rows: rows, Cols: cols}
	}
	if !dt.Valid() {
		return fmt.Errorf("table: unknown data type %d", dt)
	}
	n, err := mathutil.MulInt(rows, cols)
	if err == nil {
		n, err = mathutil.MulInt(n, dt.Size())
	}
	if err != nil {
		return fmt.Errorf("table: %dx%d %s table: %w", rows, cols, dt, err)
	}
	raw, err := array.Zeros[byte](n)
	if err != nil {
		return err
	}
	b.set(NewDescriptor(rows, cols, layout), dt, raw)
	return nil
}

func (b *Builder) set(desc Descriptor, dt array.DataType, raw *array.Array[byte]) {
	if b.raw != nil {
		b.raw.Release()
	}
	b.desc = desc
	b.dtype = dt
	b.meta = NewHomogenMetadata(dt, desc.Cols)
	b.raw = raw
}

// SetFeatureType overrides the feature type of column col.
func (b *Builder) SetFeatureType(col int, ft FeatureType) {
	b.meta = b.meta.WithFeatureType(col, ft)
}

// Build returns a table sharing the current buffer. Later pushes through
// the builder do not affect it. An unset builder builds an empty table.
func (b *Builder) Build() *Homogen {
	if b.raw == nil {
		return Empty()
	}
	return &Homogen{
		desc:  b.desc,
		dtype: b.dtype,
		meta:  b.meta,
		raw:   b.raw.Clone(),
	}
}

// Release drops the builder's reference to its buffer.
func (b *Builder) Release() {
	if b.raw != nil {
		b.raw.Release()
	}
	*b = Builder{}
}

// Kind returns KindHomogen once the builder holds data.
func (b *Builder) Kind() Kind {
	if b.raw == nil {
		return KindEmpty
	}
	return KindHomogen
}

// RowCount returns the number of rows.
func (b *Builder) RowCount() int {
	return b.desc.Rows
}

// ColumnCount returns the number of columns.
func (b *Builder) ColumnCount() int {
	return b.desc.Cols
}

// DataType returns the element type.
func (b *Builder) DataType() array.DataType {
	return b.dtype
}

// Layout returns the physical orientation.
func (b *Builder) Layout() Layout {
	return b.desc.Layout
}

// Descriptor returns the layout descriptor.
func (b *Builder) Descriptor() Descriptor {
	return b.desc
}

// Metadata returns the column metadata.
func (b *Builder) Metadata() Metadata {
	return b.meta
}

// Raw returns a new handle to the current buffer. The caller releases it.
func (b *Builder) Raw() *array.Array[byte] {
	if b.raw == nil {
		return array.Wrap[byte](nil, nil)
	}
	return b.raw.Clone()
}

// MutableRaw implements MutableStore.
func (b *Builder) MutableRaw(inPlace bool) (*array.Array[byte], error) {
	if b.raw == nil {
		return nil, ErrEmptyTable
	}
	if b.raw.HasMutableData() {
		return b.raw, nil
	}
	if inPlace {
		return nil, array.ErrImmutable
	}
	if err := b.raw.NeedMutableData(); err != nil {
		return nil, err
	}
	return b.raw, nil
}
