package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 20 * time.Millisecond, Jitter: false}
}

func TestExecute_SucceedsAfterTransientFailures(t *testing.T) {
	r := New(fastRetryConfig(), DefaultCircuitBreakerConfig(), nil, nil, nil)

	calls := 0
	result, err := Execute(context.Background(), r, "list-catalog", func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, &RemoteError{Kind: KindRateLimited}
		}
		return 42, nil
	}, nil, DegradeFailFast)

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 3, calls)
	assert.Equal(t, StateClosed, r.BreakerState("list-catalog"))
}

func TestExecute_SkipStrategyDoesNotRetry(t *testing.T) {
	r := New(fastRetryConfig(), DefaultCircuitBreakerConfig(), nil, nil, nil)

	calls := 0
	_, err := Execute(context.Background(), r, "upsert-item", func(ctx context.Context) (int, error) {
		calls++
		return 0, &RemoteError{Kind: KindValidation}
	}, nil, DegradeFailFast)

	require.Error(t, err)
	assert.Equal(t, 1, calls, "validation errors never retry")
}

func TestExecute_FallbackOnServiceUnavailable(t *testing.T) {
	r := New(fastRetryConfig(), DefaultCircuitBreakerConfig(), nil, nil, nil)

	cached := 7
	result, err := Execute(context.Background(), r, "retrieve-item", func(ctx context.Context) (int, error) {
		return 0, &RemoteError{Kind: KindServiceUnavailable}
	}, &cached, DegradeReturnCached)

	require.NoError(t, err)
	assert.Equal(t, cached, result)
}

func TestExecute_CircuitOpenShortCircuits(t *testing.T) {
	cbCfg := CircuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 1, Timeout: time.Minute}
	r := New(fastRetryConfig(), cbCfg, nil, nil, nil)

	_, _ = Execute(context.Background(), r, "list-catalog", func(ctx context.Context) (int, error) {
		return 0, &RemoteError{Kind: KindServer5xx}
	}, nil, DegradeFailFast)
	require.Equal(t, StateOpen, r.BreakerState("list-catalog"))

	calls := 0
	cached := 99
	result, err := Execute(context.Background(), r, "list-catalog", func(ctx context.Context) (int, error) {
		calls++
		return 1, nil
	}, &cached, DegradeReturnCached)

	require.NoError(t, err)
	assert.Equal(t, 0, calls, "breaker open, operation never invoked")
	assert.Equal(t, cached, result)
}

func TestExecute_ExhaustedRetriesSurfaceError(t *testing.T) {
	r := New(fastRetryConfig(), DefaultCircuitBreakerConfig(), nil, nil, nil)

	calls := 0
	_, err := Execute(context.Background(), r, "list-catalog", func(ctx context.Context) (int, error) {
		calls++
		return 0, &RemoteError{Kind: KindNetworkUnavailable}
	}, nil, DegradeFailFast)

	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecute_CancellationStopsRetryLoop(t *testing.T) {
	r := New(RetryConfig{MaxAttempts: 5, BaseDelay: 50 * time.Millisecond, MaxDelay: time.Second}, DefaultCircuitBreakerConfig(), nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	_, err := Execute(ctx, r, "list-catalog", func(ctx context.Context) (int, error) {
		calls++
		return 0, &RemoteError{Kind: KindNetworkUnavailable}
	}, nil, DegradeFailFast)

	require.Error(t, err)
	assert.LessOrEqual(t, calls, 2)
}
