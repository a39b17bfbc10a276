package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreachable wraps every failure to reach the backend: dial, DNS, TLS, timeout or a missing client.
	ErrUnreachable = errors.New("backend unreachable")

	// ErrClientNotInitialized is returned when no backend client was opened yet.
	ErrClientNotInitialized = errors.New("backend client not initialized")

	// ErrInvalidResponse is returned when a 2xx response body is not the expected JSON.
	ErrInvalidResponse = errors.New("invalid backend response")

	// ErrInvalidBaseURL is returned by New for urls without scheme or host.
	ErrInvalidBaseURL = errors.New("invalid backend url")
)

// Error is a non-2xx answer of the backend.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.StatusCode, e.Message)
}

// IsUnreachable reports whether err means the backend could not be reached at all.
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrUnreachable)
}

// AsError returns the backend status error inside err, if any.
func AsError(err error) (*Error, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be, true
	}

	return nil, false
}
