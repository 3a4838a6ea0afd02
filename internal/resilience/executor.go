package resilience

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"
)

// DegradationStrategy is the fallback behavior used once retries and the
// circuit breaker have both given up on an operation.
type DegradationStrategy string

const (
	DegradeReturnCached DegradationStrategy = "RETURN_CACHED"
	DegradeReturnDefault DegradationStrategy = "RETURN_DEFAULT"
	DegradeFailFast      DegradationStrategy = "FAIL_FAST"
)

// Recorder receives resilience telemetry; pkg/metrics implements it so this
// package never imports the metrics registry directly.
type Recorder interface {
	RecordRetryAttempt(operationID string, outcome string)
	RecordCircuitBreakerState(operationID string, state CircuitBreakerState)
	RecordCircuitBreakerTrip(operationID string)
}

type noopRecorder struct{}

func (noopRecorder) RecordRetryAttempt(string, string)                 {}
func (noopRecorder) RecordCircuitBreakerState(string, CircuitBreakerState) {}
func (noopRecorder) RecordCircuitBreakerTrip(string)                   {}

// Resilience is the public contract described in spec §4.1: it wraps any
// fallible operation with retry+backoff, keeps one circuit breaker per
// operation id, and classifies errors into recovery strategies.
type Resilience struct {
	retry    RetryConfig
	cbConfig CircuitBreakerConfig
	logger   *slog.Logger
	recorder Recorder
	limiter  *rate.Limiter

	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
}

// New constructs a Resilience instance. limiter may be nil to disable
// client-side rate shaping (used ahead of paginated remote fetches).
func New(retry RetryConfig, cb CircuitBreakerConfig, logger *slog.Logger, recorder Recorder, limiter *rate.Limiter) *Resilience {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Resilience{
		retry:    retry,
		cbConfig: cb,
		logger:   logger,
		recorder: recorder,
		limiter:  limiter,
		breakers: make(map[string]*CircuitBreaker),
	}
}

func (r *Resilience) breakerFor(operationID string) *CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	cb, ok := r.breakers[operationID]
	if !ok {
		cb = NewCircuitBreaker(operationID, r.cbConfig, cbObserver{r.recorder})
		r.breakers[operationID] = cb
	}
	return cb
}

type cbObserver struct{ rec Recorder }

func (o cbObserver) OnStateChange(operationID string, state CircuitBreakerState) {
	o.rec.RecordCircuitBreakerState(operationID, state)
}
func (o cbObserver) OnTrip(operationID string) { o.rec.RecordCircuitBreakerTrip(operationID) }

// RecordSuccess / RecordFailure let a caller update an operation's breaker
// outside of Execute, e.g. when the caller classifies the error itself.
// No caller in this module uses them.
func (r *Resilience) RecordSuccess(operationID string) { r.breakerFor(operationID).RecordSuccess() }
func (r *Resilience) RecordFailure(operationID string) { r.breakerFor(operationID).RecordFailure() }

// BreakerState exposes the current state for diagnostics/metrics scraping.
func (r *Resilience) BreakerState(operationID string) CircuitBreakerState {
	return r.breakerFor(operationID).State()
}

// Execute runs op under retry+circuit-breaker control for operationID. If
// every attempt fails, fallback (when non-nil) is returned per
// degradation; otherwise the classified error is returned. Execute is a
// free function (not a method) because Go methods cannot carry their own
// type parameters.
func Execute[T any](ctx context.Context, r *Resilience, operationID string, op func(context.Context) (T, error), fallback *T, degradation DegradationStrategy) (T, error) {
	var zero T
	breaker := r.breakerFor(operationID)

	if !breaker.CanAttempt() {
		r.logger.Warn("circuit open, short-circuiting", "operation_id", operationID)
		return applyDegradation(zero, fallback, degradation)
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return zero, NewCancelledOp(err)
		}
	}

	var lastErr error
	reauthRetried := false
	for attempt := 0; attempt < maxAttempts(r.retry); attempt++ {
		if ctx.Err() != nil {
			return zero, NewCancelledOp(ctx.Err())
		}

		result, err := op(ctx)
		if err == nil {
			breaker.RecordSuccess()
			r.recorder.RecordRetryAttempt(operationID, "success")
			return result, nil
		}

		lastErr = err
		breaker.RecordFailure()
		kind := Classify(err)
		strategy := StrategyFor(kind)
		r.logger.Warn("operation failed",
			"operation_id", operationID, "attempt", attempt+1,
			"error_kind", kind, "strategy", strategy, "error", err)

		switch strategy {
		case StrategySkip:
			r.recorder.RecordRetryAttempt(operationID, "skipped")
			return zero, &RemoteError{Kind: kind, Message: err.Error(), Inner: err}
		case StrategyFallback:
			r.recorder.RecordRetryAttempt(operationID, "fallback")
			return applyDegradation(zero, fallback, degradation)
		case StrategyReauthThenRetry:
			// Reauthenticate once, then one retry: a single further pass
			// through the loop (within the MaxAttempts budget), and a second
			// auth failure is returned. The actual reauth call happens in the
			// sync engine, which owns the AuthProvider.
			r.recorder.RecordRetryAttempt(operationID, "reauth_retry")
			if reauthRetried || attempt+1 >= maxAttempts(r.retry) {
				return zero, &RemoteError{Kind: kind, Message: err.Error(), Inner: err}
			}
			reauthRetried = true
			continue
		case StrategyRetryLinear, StrategyRetryExponential:
			r.recorder.RecordRetryAttempt(operationID, "retry")
			if attempt+1 >= maxAttempts(r.retry) {
				break
			}
			backoffKind := BackoffLinear
			if strategy == StrategyRetryExponential {
				backoffKind = BackoffExponential
			}
			delay := delayFor(r.retry, backoffKind, attempt)
			if !sleepCancellable(ctx, delay) {
				return zero, NewCancelledOp(ctx.Err())
			}
		}
	}

	r.recorder.RecordRetryAttempt(operationID, "exhausted")
	return applyDegradation(zero, fallback, degradation, lastErr)
}

func maxAttempts(cfg RetryConfig) int {
	if cfg.MaxAttempts <= 0 {
		return 1
	}
	return cfg.MaxAttempts
}

func applyDegradation[T any](zero T, fallback *T, degradation DegradationStrategy, lastErr ...error) (T, error) {
	if fallback != nil && (degradation == DegradeReturnCached || degradation == DegradeReturnDefault) {
		return *fallback, nil
	}
	if len(lastErr) > 0 && lastErr[0] != nil {
		return zero, &RemoteError{Kind: Classify(lastErr[0]), Message: lastErr[0].Error(), Inner: lastErr[0]}
	}
	return zero, &RemoteError{Kind: KindCircuitOpen, Message: "circuit open, no fallback available"}
}

// NewCancelledOp wraps a context cancellation observed mid-execute.
func NewCancelledOp(err error) error {
	return &RemoteError{Kind: KindUnknown, Message: "operation cancelled: " + errString(err)}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
