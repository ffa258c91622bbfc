package api

import (
	"errors"
	"fmt"
)

// ErrAuth reports an HTTP 401 from any endpoint. The client has already
// cleared the session as a side effect; callers must not surface this as a
// generic error toast.
var ErrAuth = errors.New("authentication required")

// IsAuth reports whether err is the forced-logout 401 error, which callers
// must not re-display as a generic toast.
func IsAuth(err error) bool { return errors.Is(err, ErrAuth) }

// ConnectivityError reports a network-level failure: no candidate base URL
// answered the health probe, or an established connection broke mid-call.
// Distinct from HTTP-level failures, which yield a RequestError.
type ConnectivityError struct {
	URL string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("cannot reach server at %s: %v", e.URL, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// RequestError reports a non-2xx response. Message carries the
// server-provided message when the body had one, else a generic
// status-coded fallback.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string { return e.Message }

// ParseError reports a 2xx response whose body was not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "invalid response from server" }

func (e *ParseError) Unwrap() error { return e.Err }
