// Package metrics provides the Prometheus registry for the sync
// engine's operational telemetry.
//
// All metrics follow the naming convention:
// catalogsync_<subsystem>_<metric_name>_<unit>
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the central collection of metrics this module exposes.
// Thread-safe: all Prometheus metric types are thread-safe by design.
type Registry struct {
	SyncAttemptsTotal   *prometheus.CounterVec
	SyncDurationSeconds *prometheus.HistogramVec
	SyncObjectsTotal    *prometheus.CounterVec

	CircuitBreakerState      *prometheus.GaugeVec
	CircuitBreakerTripsTotal *prometheus.CounterVec
	RetryAttemptsTotal       *prometheus.CounterVec

	StoreTxDurationSeconds *prometheus.HistogramVec
}

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// DefaultRegistry returns the process-wide singleton Registry,
// registering its collectors with the default Prometheus registerer on
// first call.
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = newRegistry()
	})
	return defaultRegistry
}

func newRegistry() *Registry {
	return &Registry{
		SyncAttemptsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "catalogsync",
				Name:      "sync_attempts_total",
				Help:      "Total perform_sync invocations by mode and result.",
			},
			[]string{"mode", "result"},
		),
		SyncDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "catalogsync",
				Name:      "sync_duration_seconds",
				Help:      "Duration of a perform_sync invocation.",
				Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
			},
			[]string{"mode"},
		),
		SyncObjectsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "catalogsync",
				Name:      "sync_objects_total",
				Help:      "Total catalog objects reconciled by kind and result.",
			},
			[]string{"kind", "result"},
		),
		CircuitBreakerState: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "catalogsync",
				Name:      "circuit_breaker_state",
				Help:      "Current circuit breaker state per operation (0=closed, 1=open, 2=half-open).",
			},
			[]string{"operation"},
		),
		CircuitBreakerTripsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "catalogsync",
				Name:      "circuit_breaker_trips_total",
				Help:      "Total times a circuit breaker has tripped open, per operation.",
			},
			[]string{"operation"},
		),
		RetryAttemptsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "catalogsync",
				Name:      "retry_attempts_total",
				Help:      "Total retry attempts by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		StoreTxDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "catalogsync",
				Name:      "store_tx_duration_seconds",
				Help:      "Duration of a single Store transaction, by operation.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
			},
			[]string{"op"},
		),
	}
}
