// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package table provides the public API for homogeneous numeric tables and
// the accessors that read and write them.
//
// A Homogen table is an immutable view of one buffer with a row-major or
// column-major layout. Tables are built and modified through a Builder;
// every Build returns a snapshot that later pushes do not affect.
//
// Example:
//
//	b := table.NewBuilder()
//	defer b.Release()
//	if err := b.ResetEmpty(array.Float32, 100, 4, table.ColumnMajor); err != nil {
//	    log.Fatal(err)
//	}
//	err := table.NewRow[float32](b).PushSlice(rows, table.Rows(0, 10))
//
//	t := b.Build()
//	defer t.Release()
//	x, err := table.NewRow[float64](t).Pull(table.All())
package table

import (
	"github.com/born-ml/numtab/internal/accessor"
	"github.com/born-ml/numtab/internal/array"
	"github.com/born-ml/numtab/internal/parallel"
	"github.com/born-ml/numtab/internal/table"
)

// Kind identifies the table variant.
type Kind = table.Kind

// Table kinds.
const (
	KindEmpty   Kind = table.KindEmpty
	KindHomogen Kind = table.KindHomogen
)

// Layout is the storage order of a table.
type Layout = table.Layout

// Layouts.
const (
	RowMajor    Layout = table.RowMajor
	ColumnMajor Layout = table.ColumnMajor
)

// Table is the capability set shared by every table kind.
type Table = table.Table

// Store is a table backed by one raw buffer.
type Store = table.Store

// MutableStore is a Store that accepts pushes.
type MutableStore = table.MutableStore

// Descriptor maps (row, column) to a buffer position.
type Descriptor = table.Descriptor

// Homogen is an immutable table with one element type.
type Homogen = table.Homogen

// Builder assembles and modifies tables.
type Builder = table.Builder

// Metadata describes the columns of a table.
type Metadata = table.Metadata

// FeatureType is the measurement scale of a column.
type FeatureType = table.FeatureType

// Feature types.
const (
	Nominal  FeatureType = table.Nominal
	Ordinal  FeatureType = table.Ordinal
	Interval FeatureType = table.Interval
	Ratio    FeatureType = table.Ratio
)

// Errors.
var (
	ErrInvalidLayout = table.ErrInvalidLayout
	ErrEmptyTable    = table.ErrEmptyTable
)

// DimensionError reports negative or inconsistent dimensions.
type DimensionError = table.DimensionError

// SizeMismatchError reports a buffer that does not fit its descriptor.
type SizeMismatchError = table.SizeMismatchError

// NewDescriptor returns a dense descriptor.
func NewDescriptor(rows, cols int, layout Layout) Descriptor {
	return table.NewDescriptor(rows, cols, layout)
}

// Empty returns the table with no rows and no columns.
func Empty() *Homogen {
	return table.Empty()
}

// Wrap builds a read-only table over data without copying.
func Wrap[T array.Numeric](data []T, rows, cols int, layout Layout) (*Homogen, error) {
	return table.Wrap(data, rows, cols, layout)
}

// FromArray builds a table sharing the storage of a.
func FromArray[T array.Numeric](a *array.Array[T], rows, cols int, layout Layout) (*Homogen, error) {
	return table.FromArray(a, rows, cols, layout)
}

// DataAs views the buffer of a host table as elements of T.
func DataAs[T array.Numeric](h *Homogen) []T {
	return table.DataAs[T](h)
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return table.NewBuilder()
}

// Accessors.

// RowAccessor pulls and pushes rows.
type RowAccessor[T array.Numeric] = accessor.RowAccessor[T]

// ColumnAccessor pulls and pushes single columns.
type ColumnAccessor[T array.Numeric] = accessor.ColumnAccessor[T]

// Range is a half-open row range. End as the end means the last row.
type Range = accessor.Range

// End marks a range running to the last row.
const End = accessor.End

// RangeError reports a range outside the table.
type RangeError = accessor.RangeError

// CapacityError reports a destination that is too small.
type CapacityError = accessor.CapacityError

// ParallelConfig controls chunked gather and scatter.
type ParallelConfig = parallel.Config

// Option configures an accessor.
type Option = accessor.Option

// All selects every row.
func All() Range {
	return accessor.All()
}

// Rows selects rows [begin, end).
func Rows(begin, end int) Range {
	return accessor.Rows(begin, end)
}

// WithParallel sets the chunked loop used by gather and scatter.
func WithParallel(cfg ParallelConfig) Option {
	return accessor.WithParallel(cfg)
}

// InPlace makes pushes fail instead of copying shared storage.
func InPlace() Option {
	return accessor.InPlace()
}

// NewRow returns a row accessor over s.
func NewRow[T array.Numeric](s Store, opts ...Option) *RowAccessor[T] {
	return accessor.NewRow[T](s, opts...)
}

// NewColumn returns a column accessor over s.
func NewColumn[T array.Numeric](s Store, opts ...Option) *ColumnAccessor[T] {
	return accessor.NewColumn[T](s, opts...)
}
