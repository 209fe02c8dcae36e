// Package mem provides aligned host memory allocation.
//
// Host arrays are aligned to the widest vector register the CPU reports so
// that kernels consuming pulled blocks can use aligned loads.
package mem
