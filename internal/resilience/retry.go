// Package resilience wraps fallible remote-catalog operations with retry
// backoff, per-operation circuit breaking, and error classification, per
// the component design's Resilience layer.
package resilience

import (
	"context"
	"math/rand"
	"time"
)

// BackoffStrategy selects how the delay between retry attempts grows.
type BackoffStrategy string

const (
	BackoffLinear      BackoffStrategy = "LINEAR"
	BackoffExponential BackoffStrategy = "EXPONENTIAL"
)

// RetryConfig holds the retry tunables shared by every operation, per
// spec §4.1: base=2s, hard ceiling of 3 attempts total.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      bool
}

// DefaultRetryConfig matches spec.md §6.4's defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		MaxDelay:    30 * time.Second,
		Jitter:      true,
	}
}

// delayFor computes the backoff delay before retry attempt `attempt`
// (0-indexed), per strategy: linear is base*(attempt+1), exponential is
// base*2^attempt. Up to 10% jitter is added to smear concurrent retries,
// then the result is capped at MaxDelay.
func delayFor(cfg RetryConfig, strategy BackoffStrategy, attempt int) time.Duration {
	var d time.Duration
	switch strategy {
	case BackoffExponential:
		d = cfg.BaseDelay * time.Duration(1<<uint(attempt))
	default:
		d = cfg.BaseDelay * time.Duration(attempt+1)
	}
	if cfg.Jitter {
		d += time.Duration(float64(d) * 0.1 * rand.Float64())
	}
	if cfg.MaxDelay > 0 && d > cfg.MaxDelay {
		d = cfg.MaxDelay
	}
	return d
}

// sleepCancellable waits for d or until ctx is cancelled, returning false
// in the latter case so the caller can surface Cancelled instead of
// continuing the retry loop.
func sleepCancellable(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
