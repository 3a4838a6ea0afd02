package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("test-op", CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 1,
		Timeout:          50 * time.Millisecond,
	}, nil)

	require.Equal(t, StateClosed, cb.State())

	cb.RecordFailure()
	cb.RecordFailure()
	assert.Equal(t, StateClosed, cb.State(), "below threshold, stays closed")

	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State(), "threshold reached, trips open")
	assert.False(t, cb.CanAttempt())
}

func TestCircuitBreaker_HalfOpenAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker("test-op", CircuitBreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 1,
		Timeout:          10 * time.Millisecond,
	}, nil)

	cb.RecordFailure()
	require.Equal(t, StateOpen, cb.State())
	require.False(t, cb.CanAttempt())

	time.Sleep(15 * time.Millisecond)
	assert.True(t, cb.CanAttempt())

	cb.RecordSuccess()
	assert.Equal(t, StateClosed, cb.State(), "a single qualifying success must close the breaker when SuccessThreshold=1")
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("test-op", CircuitBreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 2,
		Timeout:          5 * time.Millisecond,
	}, nil)

	cb.RecordFailure()
	time.Sleep(10 * time.Millisecond)
	require.True(t, cb.CanAttempt())

	cb.RecordSuccess()
	require.Equal(t, StateHalfOpen, cb.State())

	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State(), "any half-open failure reopens with a fresh timestamp")
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := NewCircuitBreaker("test-op", DefaultCircuitBreakerConfig(), nil)
	cb.RecordFailure()
	cb.RecordFailure()
	cb.Reset()
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, 0, cb.FailureCount())
}
