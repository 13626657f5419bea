package api

import (
	"errors"
	"fmt"
)

// ErrNotFound matches request errors with a 404 status via errors.Is.
// Callers that treat absence as an empty result check for it explicitly.
var ErrNotFound = errors.New("not found")

// RequestError is returned for any non-success HTTP response. It carries no
// structured error code, only the status and whatever human-readable message
// the backend supplied.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Is reports ErrNotFound equivalence for 404 responses.
func (e *RequestError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}
