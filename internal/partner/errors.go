package partner

import (
	"errors"
	"fmt"
)

// ErrMissingCredentials is returned by New when the API key or secret is
// absent. The process must not start without them.
var ErrMissingCredentials = errors.New("partner: api key and secret are required")

// Codes assigned locally when the partner did not supply one.
const (
	CodeTransport     = "transport_error"
	CodeDecode        = "decode_error"
	CodeRateLimitWait = "rate_limit_wait"
)

// Error is a failed partner call. StatusCode is zero for failures that never
// produced an HTTP response.
type Error struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("partner %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("partner %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying the same request later may succeed.
// The client itself never retries.
func (e *Error) Temporary() bool {
	switch {
	case e.StatusCode == 0:
		return e.Code == CodeTransport
	case e.StatusCode == 429, e.StatusCode >= 500:
		return true
	default:
		return false
	}
}

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
