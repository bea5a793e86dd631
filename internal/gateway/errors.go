package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a failure reported by the server; transport failures that
// never reached it are plain wrapped errors instead. Details carries
// per-field messages when the server returned them; the caller decides
// field-level vs global display based on that.
type Error struct {
	StatusCode int
	Message    string
	Details    map[string]string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// HasFieldErrors reports whether the failure carries structured
// per-field messages.
func (e *Error) HasFieldErrors() bool {
	return len(e.Details) > 0
}

// IsNotFound reports whether err is an API error with a 404 status.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
