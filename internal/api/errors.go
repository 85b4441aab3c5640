package api

import (
	"errors"
	"fmt"
)

var (
	// ErrRequest matches every *RequestError via errors.Is.
	ErrRequest = errors.New("backend request failed")

	// ErrInvalidJSON is the cause when a 2xx response body is not JSON.
	ErrInvalidJSON = errors.New("response body is not valid JSON")

	// ErrNotSucceeded is the cause when the backend answers 2xx but reports
	// succeeded=false in its envelope.
	ErrNotSucceeded = errors.New("backend reported failure")
)

// RequestError is returned for any failed backend call: transport failure,
// non-2xx status, or an unusable 2xx body. Callers decide whether to surface,
// retry or fall back; the client never retries.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Method, e.Path, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrRequest) true for every RequestError.
func (e *RequestError) Is(target error) bool {
	return target == ErrRequest
}
