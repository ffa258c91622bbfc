// Package validate holds the client-side input checks that run before any
// request is sent.
package validate

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalid reports input rejected client-side; no request was issued.
var ErrInvalid = errors.New("invalid input")

var reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// MinPasswordLen matches the backend's registration rule.
const MinPasswordLen = 6

// Required reports whether every field is non-blank.
func Required(fields ...string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return true
}

// Email reports whether s looks like an email address.
func Email(s string) bool {
	return reEmail.MatchString(strings.TrimSpace(s))
}

// Password reports whether s meets the minimum length rule.
func Password(s string) bool {
	return len(s) >= MinPasswordLen
}
