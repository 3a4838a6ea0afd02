package resilience

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_RemoteError(t *testing.T) {
	err := &RemoteError{Kind: KindRateLimited, Message: "slow down"}
	assert.Equal(t, KindRateLimited, Classify(err))
}

func TestClassify_WrappedRemoteError(t *testing.T) {
	err := fmt.Errorf("list failed: %w", &RemoteError{Kind: KindServer5xx})
	assert.Equal(t, KindServer5xx, Classify(err))
}

func TestClassify_HTTPStatusInMessage(t *testing.T) {
	cases := map[string]RemoteErrorKind{
		"unexpected status 429 from catalog API": KindRateLimited,
		"got 503 service unavailable":            KindServiceUnavailable,
		"server responded 500 internal":          KindServer5xx,
		"not found: 404":                         KindNotFound,
		"unauthorized 401":                       KindAuthRequired,
		"forbidden 403":                          KindPermissionDenied,
	}
	for msg, want := range cases {
		assert.Equal(t, want, Classify(fmt.Errorf("%s", msg)), msg)
	}
}

func TestClassify_Timeout(t *testing.T) {
	assert.Equal(t, KindTimeout, Classify(context.DeadlineExceeded))
}

func TestStrategyFor_Table(t *testing.T) {
	assert.Equal(t, StrategyRetryLinear, StrategyFor(KindNetworkUnavailable))
	assert.Equal(t, StrategyRetryLinear, StrategyFor(KindTimeout))
	assert.Equal(t, StrategyRetryExponential, StrategyFor(KindRateLimited))
	assert.Equal(t, StrategyRetryExponential, StrategyFor(KindQuotaExceeded))
	assert.Equal(t, StrategyReauthThenRetry, StrategyFor(KindAuthRequired))
	assert.Equal(t, StrategyReauthThenRetry, StrategyFor(KindTokenExpired))
	assert.Equal(t, StrategyRetryLinear, StrategyFor(KindServer5xx))
	assert.Equal(t, StrategySkip, StrategyFor(KindInvalidRequest))
	assert.Equal(t, StrategySkip, StrategyFor(KindNotFound))
	assert.Equal(t, StrategySkip, StrategyFor(KindPermissionDenied))
	assert.Equal(t, StrategySkip, StrategyFor(KindValidation))
	assert.Equal(t, StrategyFallback, StrategyFor(KindServiceUnavailable))
	assert.Equal(t, StrategyFallback, StrategyFor(KindCircuitOpen))
}
