// Package device models accelerator contexts for numeric arrays.
//
// A Queue is the explicit device context every allocation and transfer goes
// through; there is no process-wide default device. Allocations are tagged
// with the address space they live in, and every copy is asynchronous: it
// returns an Event the caller may wait on, pass as a dependency to a later
// submission, or collect into a batch for WaitAll.
//
// Backends implement the actual memory management. See the sim package for
// an in-process accelerator and the webgpu package for GPU hardware.
package device
