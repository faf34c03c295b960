// Package metrics exports executor activity as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/FairForge/gauntlet/internal/bench"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gauntlet_operations_total",
			Help: "Total number of benchmark operations executed",
		},
		[]string{"operation", "outcome"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gauntlet_operation_duration_seconds",
			Help:    "Benchmark operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	operationsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gauntlet_operations_in_flight",
			Help: "Number of benchmark operations currently in flight",
		},
	)
)

// Collector implements bench.Observer on top of the Prometheus registry.
type Collector struct{}

var _ bench.Observer = (*Collector)(nil)

// NewCollector creates a metrics collector.
func NewCollector() *Collector {
	return &Collector{}
}

// OperationStarted records an admission.
func (c *Collector) OperationStarted(name string) {
	operationsInFlight.Inc()
}

// OperationFinished records a completed invocation.
func (c *Collector) OperationFinished(name string, outcome bench.Outcome) {
	operationsInFlight.Dec()

	label := "success"
	if !outcome.Success {
		label = "failure"
	}
	operationsTotal.WithLabelValues(name, label).Inc()
	operationDuration.WithLabelValues(name).Observe(outcome.DurationMs / 1000)
}
