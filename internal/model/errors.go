package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRequest marks a malformed search request. It is the only error
// the search pipeline returns to its caller.
var ErrInvalidRequest = errors.New("invalid search request")

// FetchError is returned by provider adapters on network failure or a
// non-success HTTP status so the fallback orchestrator can react to it.
type FetchError struct {
	Provider   string
	StatusCode int           // zero for transport failures
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		if e.Err != nil {
			return fmt.Sprintf("%s: HTTP %d: %v", e.Provider, e.StatusCode, e.Err)
		}
		return fmt.Sprintf("%s: HTTP %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
