// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package array provides the public API for reference-counted numeric buffers.
//
// An Array is a typed handle to storage that lives in host, shared or device
// memory. Clones share storage; writes need exclusive storage, which
// NeedMutableData provides by copying when the storage is shared.
//
// Example:
//
//	a, err := array.FromSlice([]float32{1, 2, 3})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer a.Release()
//
//	dev, err := array.ToDeviceSync(q, a)
package array

import (
	"github.com/born-ml/numtab/internal/array"
	"github.com/born-ml/numtab/internal/device"
)

// Numeric is the constraint for element types.
type Numeric = array.Numeric

// DataType is the runtime tag of an element type.
type DataType = array.DataType

// Data type constants.
const (
	Int8    DataType = array.Int8
	Int16   DataType = array.Int16
	Int32   DataType = array.Int32
	Int64   DataType = array.Int64
	Uint8   DataType = array.Uint8
	Uint16  DataType = array.Uint16
	Uint32  DataType = array.Uint32
	Uint64  DataType = array.Uint64
	Float32 DataType = array.Float32
	Float64 DataType = array.Float64
)

// Array is a typed handle to shared storage.
type Array[T Numeric] = array.Array[T]

// Ownership tells whether storage was allocated by the array or borrowed.
type Ownership = array.Ownership

// Ownership constants.
const (
	Owned    Ownership = array.Owned
	Borrowed Ownership = array.Borrowed
)

// Errors.
var (
	ErrInvalidCount  = array.ErrInvalidCount
	ErrImmutable     = array.ErrImmutable
	ErrCountMismatch = array.ErrCountMismatch
)

// DataTypeOf returns the tag of T.
func DataTypeOf[T Numeric]() DataType {
	return array.DataTypeOf[T]()
}

// Empty allocates count uninitialised host elements.
func Empty[T Numeric](count int) (*Array[T], error) {
	return array.Empty[T](count)
}

// Zeros allocates count zeroed host elements.
func Zeros[T Numeric](count int) (*Array[T], error) {
	return array.Zeros[T](count)
}

// Full allocates count host elements set to value.
func Full[T Numeric](count int, value T) (*Array[T], error) {
	return array.Full(count, value)
}

// FromSlice copies values into a new host array.
func FromSlice[T Numeric](values []T) (*Array[T], error) {
	return array.FromSlice(values)
}

// Wrap borrows data as a writable array. deleter runs once after the last
// release; nil means nothing to do.
func Wrap[T Numeric](data []T, deleter func([]T)) *Array[T] {
	return array.Wrap(data, deleter)
}

// WrapConst borrows data as a read-only array.
func WrapConst[T Numeric](data []T, deleter func([]T)) *Array[T] {
	return array.WrapConst(data, deleter)
}

// EmptyOn allocates count elements of the given kind on q.
func EmptyOn[T Numeric](q *device.Queue, count int, kind device.AllocKind) (*Array[T], error) {
	return array.EmptyOn[T](q, count, kind)
}

// ZerosOn allocates count zeroed elements of the given kind on q.
func ZerosOn[T Numeric](q *device.Queue, count int, kind device.AllocKind) (*Array[T], error) {
	return array.ZerosOn[T](q, count, kind)
}

// WrapOn borrows an allocation made on q.
func WrapOn[T Numeric](q *device.Queue, alloc device.Allocation, count int, deleter func(device.Allocation)) (*Array[T], error) {
	return array.WrapOn[T](q, alloc, count, deleter)
}

// Reinterpret views the storage of a as elements of type U.
func Reinterpret[U, T Numeric](a *Array[T]) *Array[U] {
	return array.Reinterpret[U](a)
}

// ToDevice copies a into device memory of q. The copy completes with the
// returned event.
func ToDevice[T Numeric](q *device.Queue, a *Array[T], deps ...*device.Event) (*Array[T], *device.Event, error) {
	return array.ToDevice(q, a, deps...)
}

// ToDeviceSync is ToDevice followed by a wait.
func ToDeviceSync[T Numeric](q *device.Queue, a *Array[T]) (*Array[T], error) {
	return array.ToDeviceSync(q, a)
}

// ToHost returns a host-accessible copy of a; host arrays are returned as is.
func ToHost[T Numeric](a *Array[T], deps ...*device.Event) (*Array[T], *device.Event, error) {
	return array.ToHost(a, deps...)
}

// ToHostSync is ToHost followed by a wait.
func ToHostSync[T Numeric](a *Array[T]) (*Array[T], error) {
	return array.ToHostSync(a)
}

// CopyFrom copies src into dst, which must be writable.
func CopyFrom[T Numeric](dst, src *Array[T], deps ...*device.Event) (*device.Event, error) {
	return array.CopyFrom(dst, src, deps...)
}
