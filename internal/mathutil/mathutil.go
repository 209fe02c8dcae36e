// Package mathutil provides integer helpers used for sizing allocations and work chunks.
package mathutil

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
)

// ErrOverflow is returned when an integer product does not fit into int.
var ErrOverflow = errors.New("integer overflow")

// DownMultiple returns the largest multiple of m not larger than x.
//
//	DownMultiple(10, 4) == 8
//	DownMultiple(10, 5) == 10
func DownMultiple(x, m int) int {
	if x <= 0 || m <= 0 {
		panic(fmt.Sprintf("mathutil: DownMultiple(%d, %d): arguments must be positive", x, m))
	}
	return (x / m) * m
}

// UpMultiple returns the smallest multiple of m not smaller than x.
//
//	UpMultiple(10, 4) == 12
//	UpMultiple(10, 5) == 10
func UpMultiple(x, m int) int {
	if x <= 0 || m <= 0 {
		panic(fmt.Sprintf("mathutil: UpMultiple(%d, %d): arguments must be positive", x, m))
	}
	y := DownMultiple(x, m)
	if x%m != 0 {
		y += m
	}
	return y
}

// DownPow2 returns the largest power of two not larger than x.
//
//	DownPow2(10) == 8
//	DownPow2(16) == 16
func DownPow2(x int) int {
	if x <= 0 {
		panic(fmt.Sprintf("mathutil: DownPow2(%d): argument must be positive", x))
	}
	return 1 << (bits.Len(uint(x)) - 1)
}

// UpPow2 returns the smallest power of two not smaller than x.
//
//	UpPow2(10) == 16
//	UpPow2(16) == 16
func UpPow2(x int) int {
	if x <= 0 {
		panic(fmt.Sprintf("mathutil: UpPow2(%d): argument must be positive", x))
	}
	if x&(x-1) == 0 {
		return x
	}
	return 1 << bits.Len(uint(x))
}

// MulInt multiplies two non-negative ints, reporting ErrOverflow instead of wrapping.
func MulInt(a, b int) (int, error) {
	if a < 0 || b < 0 {
		return 0, fmt.Errorf("%w: negative operand %d * %d", ErrOverflow, a, b)
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt {
		return 0, fmt.Errorf("%w: %d * %d does not fit into int", ErrOverflow, a, b)
	}
	return int(lo), nil
}
