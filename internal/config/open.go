package config

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/born-ml/numtab/internal/device"
	"github.com/born-ml/numtab/internal/device/sim"
	"github.com/born-ml/numtab/internal/device/webgpu"
	"github.com/born-ml/numtab/internal/metrics"
	"github.com/born-ml/numtab/internal/parallel"
)

// Device is an opened backend with the queue submitting to it.
// Parallel is the configured gather/scatter loop; pass it to accessors
// with accessor.WithParallel.
type Device struct {
	Queue    *device.Queue
	Metrics  metrics.Collector
	Parallel parallel.Config

	backend io.Closer
}

// Close waits for in-flight work and releases the backend.
func (d *Device) Close() error {
	d.Queue.Wait()
	return d.backend.Close()
}

// OpenOption configures Open.
type OpenOption func(*openOptions)

type openOptions struct {
	registerer prometheus.Registerer
	faults     sim.FaultFunc
}

// WithRegisterer registers Prometheus metrics with reg.
// Without it the collector is created but not registered.
func WithRegisterer(reg prometheus.Registerer) OpenOption {
	return func(o *openOptions) {
		o.registerer = reg
	}
}

// WithFaults injects failures into the sim backend.
func WithFaults(f sim.FaultFunc) OpenOption {
	return func(o *openOptions) {
		o.faults = f
	}
}

// Open creates the configured backend and a queue on it.
func (c *Config) Open(opts ...OpenOption) (*Device, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}

	collector, err := c.collector(o.registerer)
	if err != nil {
		return nil, err
	}

	var backend interface {
		device.Backend
		io.Closer
	}
	switch c.Device.Backend {
	case BackendWebGPU:
		b, err := webgpu.New()
		if err != nil {
			return nil, fmt.Errorf("config: open webgpu: %w", err)
		}
		backend = b
	default:
		backend = sim.New(sim.Config{
			Name:                 BackendSim,
			BandwidthBytesPerSec: c.Device.BandwidthBytesPerSec,
			PoolMaxPerBucket:     c.Device.PoolMaxPerBucket,
			Faults:               o.faults,
		})
	}

	q := device.NewQueue(backend,
		device.WithLogger(c.Logger()),
		device.WithMetrics(collector),
		device.WithLimits(c.Limits()),
	)
	q.Logger().Info("device opened",
		"context", backend.ContextID().String(),
		"metrics", c.Metrics.Collector,
	)
	return &Device{
		Queue:    q,
		Metrics:  collector,
		Parallel: c.ParallelOptions(),
		backend:  backend,
	}, nil
}

func (c *Config) collector(reg prometheus.Registerer) (metrics.Collector, error) {
	switch c.Metrics.Collector {
	case MetricsBasic:
		return &metrics.Basic{}, nil
	case MetricsPrometheus:
		p, err := metrics.NewPrometheus(c.Metrics.Namespace, reg)
		if err != nil {
			return nil, fmt.Errorf("config: metrics: %w", err)
		}
		return p, nil
	default:
		return metrics.Noop{}, nil
	}
}

// CloseAll closes every device and reports all failures.
func CloseAll(devices ...*Device) error {
	var result *multierror.Error
	for _, d := range devices {
		if d == nil {
			continue
		}
		if err := d.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
