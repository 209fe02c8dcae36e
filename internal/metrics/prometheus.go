package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus exports queue statistics as Prometheus metrics.
type Prometheus struct {
	allocs        *prometheus.CounterVec
	allocErrors   *prometheus.CounterVec
	liveBytes     *prometheus.GaugeVec
	transferBytes *prometheus.CounterVec
	transferTime  *prometheus.HistogramVec
	transferFails *prometheus.CounterVec
}

// NewPrometheus creates the collector and registers its metrics with reg.
// A nil reg skips registration.
func NewPrometheus(namespace string, reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		allocs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocations_total",
			Help:      "Number of successful allocations by address space.",
		}, []string{"space"}),
		allocErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocation_failures_total",
			Help:      "Number of failed allocations by address space.",
		}, []string{"space"}),
		liveBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "allocated_bytes",
			Help:      "Bytes currently allocated by address space.",
		}, []string{"space"}),
		transferBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_bytes_total",
			Help:      "Bytes moved by completed transfers.",
		}, []string{"direction"}),
		transferTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transfer_duration_seconds",
			Help:      "Duration of completed transfers.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"direction"}),
		transferFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_failures_total",
			Help:      "Number of failed transfers.",
		}, []string{"direction"}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{
			p.allocs, p.allocErrors, p.liveBytes, p.transferBytes, p.transferTime, p.transferFails,
		} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

// RecordAlloc implements Collector.
func (p *Prometheus) RecordAlloc(space string, bytes int, err error) {
	if err != nil {
		p.allocErrors.WithLabelValues(space).Inc()
		return
	}
	p.allocs.WithLabelValues(space).Inc()
	p.liveBytes.WithLabelValues(space).Add(float64(bytes))
}

// RecordFree implements Collector.
func (p *Prometheus) RecordFree(space string, bytes int) {
	p.liveBytes.WithLabelValues(space).Sub(float64(bytes))
}

// RecordTransfer implements Collector.
func (p *Prometheus) RecordTransfer(dir Direction, bytes int, d time.Duration, err error) {
	if err != nil {
		p.transferFails.WithLabelValues(string(dir)).Inc()
		return
	}
	p.transferBytes.WithLabelValues(string(dir)).Add(float64(bytes))
	p.transferTime.WithLabelValues(string(dir)).Observe(d.Seconds())
}
