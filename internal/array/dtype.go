// Package array provides reference-counted, device-aware numeric arrays.
package array

import (
	"reflect"
	"unsafe"
)

// Numeric is the constraint for array element types.
type Numeric interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// DataType represents runtime type information for array elements.
type DataType int

// Supported data types.
const (
	Int8 DataType = iota
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// IsFloat reports whether dt is a floating-point type.
func (dt DataType) IsFloat() bool {
	return dt == Float32 || dt == Float64
}

// Valid reports whether dt is a known data type.
func (dt DataType) Valid() bool {
	return dt >= Int8 && dt <= Float64
}

// DataTypeOf returns the DataType of T. Named types resolve to their
// underlying kind.
func DataTypeOf[T Numeric]() DataType {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Int8:
		return Int8
	case reflect.Int16:
		return Int16
	case reflect.Int32:
		return Int32
	case reflect.Int64:
		return Int64
	case reflect.Uint8:
		return Uint8
	case reflect.Uint16:
		return Uint16
	case reflect.Uint32:
		return Uint32
	case reflect.Uint64:
		return Uint64
	case reflect.Float32:
		return Float32
	case reflect.Float64:
		return Float64
	default:
		panic("unsupported type")
	}
}

// sizeOf returns the byte size of T.
func sizeOf[T Numeric]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// View reinterprets n elements of b as []T. No type check is performed.
func View[T Numeric](b []byte, n int) []T {
	if n == 0 || len(b) == 0 {
		return nil
	}
	if n*sizeOf[T]() > len(b) {
		panic("array: view exceeds byte slice")
	}
	//nolint:gosec // unsafe.Slice for zero-copy reinterpretation, bounds checked above
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n)
}

// asBytes reinterprets a typed slice as its raw bytes.
func asBytes[T Numeric](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy reinterpretation
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*sizeOf[T]())
}
