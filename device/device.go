// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package device provides the public API for device contexts.
//
// A Queue submits allocations and copies to one backend: the simulated
// accelerator (sim) or a WebGPU adapter. Copies run asynchronously and
// complete with an Event; callers order work by passing events as
// dependencies.
//
// Example:
//
//	cfg, err := device.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	d, err := device.Open(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer d.Close()
//
//	a, err := array.ZerosOn[float32](d.Queue, 1024, device.AllocDevice)
package device

import (
	"github.com/born-ml/numtab/internal/config"
	"github.com/born-ml/numtab/internal/device"
	"github.com/born-ml/numtab/internal/device/sim"
	"github.com/born-ml/numtab/internal/device/webgpu"
)

// Queue is a device context handle.
type Queue = device.Queue

// Backend is implemented by every device.
type Backend = device.Backend

// Allocation is memory obtained from a Backend.
type Allocation = device.Allocation

// Event completes when an asynchronous operation finishes.
type Event = device.Event

// Logger reports allocations and transfers.
type Logger = device.Logger

// Limits caps the memory a queue may hold.
type Limits = device.Limits

// Option configures a Queue.
type Option = device.Option

// AddressSpace is where memory lives.
type AddressSpace = device.AddressSpace

// Address spaces.
const (
	Unknown AddressSpace = device.Unknown
	Host    AddressSpace = device.Host
	Device  AddressSpace = device.Device
	Shared  AddressSpace = device.Shared
)

// AllocKind selects the memory an allocation comes from.
type AllocKind = device.AllocKind

// Allocation kinds.
const (
	AllocDevice AllocKind = device.AllocDevice
	AllocShared AllocKind = device.AllocShared
	AllocHost   AllocKind = device.AllocHost
)

// Errors.
var (
	ErrOutOfMemory       = device.ErrOutOfMemory
	ErrContextMismatch   = device.ErrContextMismatch
	ErrUnknownKind       = device.ErrUnknownKind
	ErrNotHostAccessible = device.ErrNotHostAccessible
)

// AllocationError reports a failed allocation and its address space.
type AllocationError = device.AllocationError

// TransferError reports a failed copy.
type TransferError = device.TransferError

// Config is the device, parallelism and logging configuration.
type Config = config.Config

// Opened is a backend with a queue on it.
type Opened = config.Device

// NewQueue creates a queue submitting to b.
func NewQueue(b Backend, opts ...Option) *Queue {
	return device.NewQueue(b, opts...)
}

// WithLogger sets the queue logger.
var WithLogger = device.WithLogger

// WithLimits sets memory budgets.
var WithLimits = device.WithLimits

// NewSim returns a simulated accelerator with default settings.
func NewSim() *sim.Backend {
	return sim.New(sim.DefaultConfig())
}

// NewWebGPU opens the default WebGPU adapter.
func NewWebGPU() (*webgpu.Backend, error) {
	return webgpu.New()
}

// Completed returns an event that has already finished.
func Completed() *Event {
	return device.Completed()
}

// WaitAll waits for every event and reports all failures.
func WaitAll(events ...*Event) error {
	return device.WaitAll(events...)
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfig reads numtab.yaml from dir and NUMTAB_* environment variables.
func LoadConfig(dir string) (*Config, error) {
	return config.Load(dir)
}

// Open creates the backend named by cfg and a queue on it. The result's
// Parallel field is meant for table.WithParallel.
func Open(cfg *Config) (*Opened, error) {
	return cfg.Open()
}
