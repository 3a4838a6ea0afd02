package metrics

import "github.com/nimbuscommerce/catalogsync/internal/resilience"

// ResilienceRecorder adapts a Registry to internal/resilience.Recorder,
// so that package never imports this one directly.
type ResilienceRecorder struct {
	reg *Registry
}

// NewResilienceRecorder wraps reg as a resilience.Recorder.
func NewResilienceRecorder(reg *Registry) *ResilienceRecorder {
	return &ResilienceRecorder{reg: reg}
}

func (r *ResilienceRecorder) RecordRetryAttempt(operationID string, outcome string) {
	if r == nil || r.reg == nil {
		return
	}
	r.reg.RetryAttemptsTotal.WithLabelValues(operationID, outcome).Inc()
}

func (r *ResilienceRecorder) RecordCircuitBreakerState(operationID string, state resilience.CircuitBreakerState) {
	if r == nil || r.reg == nil {
		return
	}
	r.reg.CircuitBreakerState.WithLabelValues(operationID).Set(float64(state))
}

func (r *ResilienceRecorder) RecordCircuitBreakerTrip(operationID string) {
	if r == nil || r.reg == nil {
		return
	}
	r.reg.CircuitBreakerTripsTotal.WithLabelValues(operationID).Inc()
}

// RecordStoreTx observes a single Store transaction's duration.
func (r *Registry) RecordStoreTx(op string, seconds float64) {
	if r == nil {
		return
	}
	r.StoreTxDurationSeconds.WithLabelValues(op).Observe(seconds)
}

// RecordSync observes one perform_sync invocation's outcome and duration.
func (r *Registry) RecordSync(mode, result string, seconds float64) {
	if r == nil {
		return
	}
	r.SyncAttemptsTotal.WithLabelValues(mode, result).Inc()
	r.SyncDurationSeconds.WithLabelValues(mode).Observe(seconds)
}

// RecordObjects records per-kind reconcile outcomes for one batch.
func (r *Registry) RecordObjects(kind, result string, count int) {
	if r == nil || count <= 0 {
		return
	}
	r.SyncObjectsTotal.WithLabelValues(kind, result).Add(float64(count))
}
