package resilience

import (
	"sync"
	"time"
)

// CircuitBreakerState represents the current state of a circuit breaker.
type CircuitBreakerState int

const (
	StateClosed CircuitBreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitBreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig holds the tunables for a single operation's breaker,
// per spec §4.1: opens after FailureThreshold consecutive failures, probes
// again after Timeout, and closes after SuccessThreshold half-open successes.
type CircuitBreakerConfig struct {
	FailureThreshold int
	SuccessThreshold int
	Timeout          time.Duration
}

// DefaultCircuitBreakerConfig matches the spec's threshold=5, timeout=60s;
// a single successful half-open call is sufficient to close.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 1,
		Timeout:          60 * time.Second,
	}
}

// stateObserver is notified of circuit breaker state transitions, wired to
// pkg/metrics so circuit_breaker_state / circuit_breaker_trips_total stay
// current without the breaker importing the metrics package directly.
type stateObserver interface {
	OnStateChange(operationID string, state CircuitBreakerState)
	OnTrip(operationID string)
}

// CircuitBreaker implements the Closed -> Open(opened_at) -> HalfOpen ->
// Closed|Open state machine for a single operation id.
type CircuitBreaker struct {
	config          CircuitBreakerConfig
	operationID     string
	observer        stateObserver
	mu              sync.RWMutex
	state           CircuitBreakerState
	failureCount    int
	successCount    int
	lastFailureTime time.Time
}

// NewCircuitBreaker constructs a breaker for one operation id.
func NewCircuitBreaker(operationID string, config CircuitBreakerConfig, observer stateObserver) *CircuitBreaker {
	cb := &CircuitBreaker{
		config:      config,
		operationID: operationID,
		observer:    observer,
		state:       StateClosed,
	}
	if cb.observer != nil {
		cb.observer.OnStateChange(cb.operationID, StateClosed)
	}
	return cb
}

// CanAttempt reports whether a call may proceed, opening the half-open
// probe window once Timeout has elapsed since the last failure.
func (cb *CircuitBreaker) CanAttempt() bool {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	switch cb.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		return time.Since(cb.lastFailureTime) > cb.config.Timeout
	default:
		return false
	}
}

// RecordSuccess transitions HalfOpen->Closed after SuccessThreshold
// consecutive successful probes, resets the failure count in Closed, or
// (once Timeout has elapsed) moves Open->HalfOpen and counts this same
// call toward SuccessThreshold, so SuccessThreshold=1 closes the breaker
// on the first successful probe rather than the second.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failureCount = 0
		return
	case StateOpen:
		if time.Since(cb.lastFailureTime) <= cb.config.Timeout {
			// Still within the open window; CanAttempt should not have let
			// this call through, but do nothing rather than count it.
			return
		}
		cb.state = StateHalfOpen
		cb.successCount = 0
		cb.failureCount = 0
		if cb.observer != nil {
			cb.observer.OnStateChange(cb.operationID, StateHalfOpen)
		}
		fallthrough
	case StateHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.config.SuccessThreshold {
			cb.state = StateClosed
			cb.failureCount = 0
			cb.successCount = 0
			if cb.observer != nil {
				cb.observer.OnStateChange(cb.operationID, StateClosed)
			}
		}
	}
}

// RecordFailure reopens the breaker from HalfOpen immediately, or trips it
// from Closed once FailureThreshold consecutive failures accumulate.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	cb.lastFailureTime = time.Now()
	oldState := cb.state

	switch cb.state {
	case StateClosed:
		if cb.failureCount >= cb.config.FailureThreshold {
			cb.state = StateOpen
			if cb.observer != nil {
				cb.observer.OnTrip(cb.operationID)
			}
		}
	case StateHalfOpen:
		cb.state = StateOpen
		cb.successCount = 0
	}

	if oldState != cb.state && cb.observer != nil {
		cb.observer.OnStateChange(cb.operationID, cb.state)
	}
}

func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failureCount = 0
	cb.successCount = 0
}

func (cb *CircuitBreaker) FailureCount() int {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.failureCount
}

func (cb *CircuitBreaker) SuccessCount() int {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.successCount
}
