package web

import (
	"errors"
	"fmt"
	"net/http"
)

// Common upstream errors.
var (
	// ErrUnauthorized indicates a missing or rejected API key.
	ErrUnauthorized = errors.New("web: unauthorised (invalid credentials)")

	// ErrForbidden indicates the upstream refused the request.
	ErrForbidden = errors.New("web: forbidden")

	// ErrNotFound indicates the requested page does not exist.
	ErrNotFound = errors.New("web: not found")

	// ErrRateLimited indicates the upstream rate limit was exceeded.
	ErrRateLimited = errors.New("web: rate limit exceeded")

	// ErrUpstream indicates a 5xx response.
	ErrUpstream = errors.New("web: upstream error")
)

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Code)
}

// Is maps status codes onto the package sentinels.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Code == http.StatusUnauthorized
	case ErrForbidden:
		return e.Code == http.StatusForbidden
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	case ErrRateLimited:
		return e.Code == http.StatusTooManyRequests
	case ErrUpstream:
		return e.Code >= http.StatusInternalServerError
	default:
		return false
	}
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
