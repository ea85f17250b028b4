package client

import (
	"errors"
	"fmt"
)

// ErrMalformedLogin is returned when a successful login reply lacks a token or
// subject ID.
var ErrMalformedLogin = errors.New("malformed login response")

// HTTPError is a non-2xx reply from the admin API. Message is the body's
// "error" or "message" field, or the trimmed body when neither is present.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err wraps an HTTPError with code. The login form
// uses it to tell rejected credentials from outages.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}
