package resilience

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"syscall"
)

// RemoteErrorKind is the transport-layer error taxonomy classified by this
// package, per spec §4.1's classification table.
type RemoteErrorKind string

const (
	KindNetworkUnavailable RemoteErrorKind = "NETWORK_UNAVAILABLE"
	KindTimeout            RemoteErrorKind = "TIMEOUT"
	KindRateLimited        RemoteErrorKind = "RATE_LIMITED"
	KindQuotaExceeded      RemoteErrorKind = "QUOTA_EXCEEDED"
	KindAuthRequired       RemoteErrorKind = "AUTH_REQUIRED"
	KindTokenExpired       RemoteErrorKind = "TOKEN_EXPIRED"
	KindServer5xx          RemoteErrorKind = "SERVER_5XX"
	KindInvalidRequest     RemoteErrorKind = "INVALID_REQUEST"
	KindNotFound           RemoteErrorKind = "NOT_FOUND"
	KindPermissionDenied   RemoteErrorKind = "PERMISSION_DENIED"
	KindValidation         RemoteErrorKind = "VALIDATION"
	KindServiceUnavailable RemoteErrorKind = "SERVICE_UNAVAILABLE"
	KindCircuitOpen        RemoteErrorKind = "CIRCUIT_OPEN"
	KindUnknown            RemoteErrorKind = "UNKNOWN"
)

// RemoteError lets a RemoteCatalog/AuthProvider/InventoryRemote
// implementation hand the resilience layer a pre-classified error instead
// of relying on heuristic sniffing of a bare Go error.
type RemoteError struct {
	Kind    RemoteErrorKind
	Code    int
	Message string
	Inner   error
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "remote error: " + string(e.Kind)
}

func (e *RemoteError) Unwrap() error { return e.Inner }

// Strategy is the recovery action Resilience takes for a classified error.
type Strategy string

const (
	StrategyRetryLinear      Strategy = "RETRY_LINEAR"
	StrategyRetryExponential Strategy = "RETRY_EXPONENTIAL"
	StrategyReauthThenRetry  Strategy = "REAUTH_THEN_RETRY"
	StrategySkip             Strategy = "SKIP"
	StrategyFallback         Strategy = "FALLBACK"
)

// strategyTable is the spec's classification table, §4.1.
var strategyTable = map[RemoteErrorKind]Strategy{
	KindNetworkUnavailable: StrategyRetryLinear,
	KindTimeout:            StrategyRetryLinear,
	KindRateLimited:        StrategyRetryExponential,
	KindQuotaExceeded:      StrategyRetryExponential,
	KindAuthRequired:       StrategyReauthThenRetry,
	KindTokenExpired:       StrategyReauthThenRetry,
	KindServer5xx:          StrategyRetryLinear,
	KindInvalidRequest:     StrategySkip,
	KindNotFound:           StrategySkip,
	KindPermissionDenied:   StrategySkip,
	KindValidation:         StrategySkip,
	KindServiceUnavailable: StrategyFallback,
	KindCircuitOpen:        StrategyFallback,
}

// StrategyFor resolves the recovery strategy for a classified kind. Unknown
// kinds default to linear retry, matching the teacher's
// DefaultErrorChecker fallback of "assume retryable".
func StrategyFor(kind RemoteErrorKind) Strategy {
	if s, ok := strategyTable[kind]; ok {
		return s
	}
	return StrategyRetryLinear
}

// Classify inspects a transport-layer error and returns its RemoteErrorKind.
// A *RemoteError is trusted verbatim; any other error falls back to the
// heuristic network/timeout/status-code sniffing below.
func Classify(err error) RemoteErrorKind {
	if err == nil {
		return KindUnknown
	}

	var re *RemoteError
	if errors.As(err, &re) {
		return re.Kind
	}

	if code, ok := httpStatusCode(err); ok {
		switch {
		case code == 401:
			return KindAuthRequired
		case code == 403:
			return KindPermissionDenied
		case code == 404:
			return KindNotFound
		case code == 408:
			return KindTimeout
		case code == 429:
			return KindRateLimited
		case code == 503:
			return KindServiceUnavailable
		case code >= 500 && code < 600:
			return KindServer5xx
		case code >= 400 && code < 500:
			return KindInvalidRequest
		}
	}

	if isTimeoutError(err) {
		return KindTimeout
	}
	if isTransientNetworkError(err) {
		return KindNetworkUnavailable
	}

	return KindUnknown
}

// httpStatusCode extracts a 3-digit status code mentioned in the error
// message, the way the teacher's HTTPErrorChecker sniffs status text when
// the collaborator only returns a plain error.
func httpStatusCode(err error) (int, bool) {
	msg := err.Error()
	for i := 0; i+3 <= len(msg); i++ {
		if c := msg[i : i+3]; isDigits(c) {
			if n, convErr := strconv.Atoi(c); convErr == nil && n >= 100 && n < 600 {
				return n, true
			}
		}
	}
	return 0, false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isTransientNetworkError determines if a network error is transient.
func isTransientNetworkError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary()
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED),
			errors.Is(opErr.Err, syscall.ECONNRESET),
			errors.Is(opErr.Err, syscall.ENETUNREACH),
			errors.Is(opErr.Err, syscall.EHOSTUNREACH):
			return true
		}
	}

	return false
}

// isTimeoutError checks if an error represents a timeout.
func isTimeoutError(err error) bool {
	errMsg := strings.ToLower(err.Error())
	for _, indicator := range []string{"timeout", "deadline exceeded", "i/o timeout", "timed out"} {
		if strings.Contains(errMsg, indicator) {
			return true
		}
	}

	type timeout interface{ Timeout() bool }
	if te, ok := err.(timeout); ok {
		return te.Timeout()
	}
	return false
}
