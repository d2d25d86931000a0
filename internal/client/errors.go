package client

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Error codes produced on the client side. Server business errors carry
// whatever code the server sent.
const (
	CodeNetworkError      = "network_error"
	CodeRateLimited       = "rate_limited"
	CodeUnknown           = "unknown_error"
	CodeStreamUnavailable = "stream_unavailable"
	CodeStreamInterrupted = "stream_interrupted"
	CodeStreamError       = "stream_error"
)

// APIError is returned for every failed request. Status is 0 when the server
// was never reached.
type APIError struct {
	Status     int
	Code       string
	Message    string
	RequestID  string
	Details    map[string]any
	RetryAfter time.Duration
	Err        error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether the server answered 429.
func (e *APIError) IsRateLimited() bool {
	return e.Status == http.StatusTooManyRequests
}

type errorEnvelope struct {
	Error *struct {
		Code      string         `json:"code"`
		Message   string         `json:"message"`
		RequestID string         `json:"requestId"`
		Details   map[string]any `json:"details"`
	} `json:"error"`
}

// AsAPIError unwraps err into an *APIError if it holds one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsRateLimited reports whether err is a 429 APIError.
func IsRateLimited(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.IsRateLimited()
}

// parseRetryAfter understands both delay-seconds and HTTP-date values.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
