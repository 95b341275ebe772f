package analyzer

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// EmptyResponseError means the service answered but returned no text.
type EmptyResponseError struct {
	Provider string
	Reason   string
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("%s returned no content: %s", e.Provider, e.Reason)
}

// MalformedResponseError means the returned text was not valid JSON or did
// not satisfy the analysis schema.
type MalformedResponseError struct {
	Field string
	Raw   string
	Err   error
}

func (e *MalformedResponseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("malformed analysis response: field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("malformed analysis response: %v (raw: %s)", e.Err, truncate(e.Raw, 200))
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// TransportError is a network or service-level failure of the outbound call.
type TransportError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("calling %s API: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RateLimitError indicates the provider returned HTTP 429. It wraps the
// underlying TransportError.
type RateLimitError struct {
	Err        *TransportError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Err.Provider, e.RetryAfter, e.Err.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(err *TransportError, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

// Failure kinds, used as log fields and metric labels.
const (
	KindEmptyResponse     = "empty_response"
	KindMalformedResponse = "malformed_response"
	KindTransport         = "transport"
	KindRateLimited       = "rate_limited"
	KindOther             = "other"
)

// Kind classifies an Analyze error.
func Kind(err error) string {
	var (
		empty     *EmptyResponseError
		malformed *MalformedResponseError
		limited   *RateLimitError
		transport *TransportError
	)
	switch {
	case errors.As(err, &empty):
		return KindEmptyResponse
	case errors.As(err, &malformed):
		return KindMalformedResponse
	case errors.As(err, &limited):
		return KindRateLimited
	case errors.As(err, &transport):
		return KindTransport
	default:
		return KindOther
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
