package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDelayFor_Linear(t *testing.T) {
	cfg := RetryConfig{BaseDelay: 2 * time.Second, MaxDelay: time.Minute, Jitter: false}
	assert.Equal(t, 2*time.Second, delayFor(cfg, BackoffLinear, 0))
	assert.Equal(t, 4*time.Second, delayFor(cfg, BackoffLinear, 1))
	assert.Equal(t, 6*time.Second, delayFor(cfg, BackoffLinear, 2))
}

func TestDelayFor_Exponential(t *testing.T) {
	cfg := RetryConfig{BaseDelay: 2 * time.Second, MaxDelay: time.Minute, Jitter: false}
	assert.Equal(t, 2*time.Second, delayFor(cfg, BackoffExponential, 0))
	assert.Equal(t, 4*time.Second, delayFor(cfg, BackoffExponential, 1))
	assert.Equal(t, 8*time.Second, delayFor(cfg, BackoffExponential, 2))
}

func TestDelayFor_CapsAtMaxDelay(t *testing.T) {
	cfg := RetryConfig{BaseDelay: 10 * time.Second, MaxDelay: 15 * time.Second, Jitter: false}
	assert.Equal(t, 15*time.Second, delayFor(cfg, BackoffExponential, 5))
}

func TestSleepCancellable_CompletesNormally(t *testing.T) {
	ok := sleepCancellable(context.Background(), time.Millisecond)
	assert.True(t, ok)
}

func TestSleepCancellable_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok := sleepCancellable(ctx, time.Second)
	assert.False(t, ok)
}
