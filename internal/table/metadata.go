package table

import (
	"github.com/born-ml/numtab/internal/array"
)

// FeatureType is the measurement scale of a column.
type FeatureType int

// Feature types.
const (
	Nominal FeatureType = iota
	Ordinal
	Interval
	Ratio
)

// String returns a human-readable feature type name.
func (f FeatureType) String() string {
	switch f {
	case Nominal:
		return "nominal"
	case Ordinal:
		return "ordinal"
	case Interval:
		return "interval"
	case Ratio:
		return "ratio"
	default:
		return "unknown"
	}
}

// DefaultFeatureType returns Ratio for floating-point types and Ordinal
// for integers.
func DefaultFeatureType(dt array.DataType) FeatureType {
	if dt.IsFloat() {
		return Ratio
	}
	return Ordinal
}

// Metadata describes the columns of a table.
type Metadata struct {
	dtypes   []array.DataType
	features []FeatureType
}

// NewHomogenMetadata returns metadata for cols columns of one data type.
func NewHomogenMetadata(dt array.DataType, cols int) Metadata {
	m := Metadata{
		dtypes:   make([]array.DataType, cols),
		features: make([]FeatureType, cols),
	}
	ft := DefaultFeatureType(dt)
	for i := range cols {
		m.dtypes[i] = dt
		m.features[i] = ft
	}
	return m
}

// ColumnCount returns the number of described columns.
func (m Metadata) ColumnCount() int {
	return len(m.dtypes)
}

// DataType returns the data type of column i.
func (m Metadata) DataType(i int) array.DataType {
	return m.dtypes[i]
}

// FeatureType returns the feature type of column i.
func (m Metadata) FeatureType(i int) FeatureType {
	return m.features[i]
}

// WithFeatureType returns a copy of m with column i set to ft.
func (m Metadata) WithFeatureType(i int, ft FeatureType) Metadata {
	out := Metadata{
		dtypes:   m.dtypes,
		features: append([]FeatureType(nil), m.features...),
	}
	out.features[i] = ft
	return out
}

// transpose returns metadata for the transposed table: rows become
// columns, so every new column takes the common data type.
func (m Metadata) transpose(rows int) Metadata {
	if len(m.dtypes) == 0 {
		return m
	}
	return NewHomogenMetadata(m.dtypes[0], rows)
}
