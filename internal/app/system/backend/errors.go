package backend

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrMalformedResponse wraps any backend payload that fails shape checks.
// Callers route it to the configuration-error panel rather than rendering
// half-decoded data.
var ErrMalformedResponse = errors.New("malformed backend response")

// ErrNotConfigured is returned when no backend URL was configured.
var ErrNotConfigured = errors.New("backend URL not configured")

// APIError is a non-2xx response from the backend. Message carries the
// backend's {error} string verbatim, or a per-operation fallback.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsDuplicateCode reports whether the backend rejected a transaction code
// because another record already uses it.
func IsDuplicateCode(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Status == http.StatusConflict {
		return true
	}
	msg := strings.ToLower(apiErr.Message)
	if strings.Contains(msg, "duplicate") && (strings.Contains(msg, "code") || strings.Contains(msg, "mpesa")) {
		return true
	}
	return strings.Contains(msg, "already") &&
		(strings.Contains(msg, "code") || strings.Contains(msg, "mpesa") || strings.Contains(msg, "transaction"))
}

// DuplicateCodeMessage is shown instead of the backend's wording when a
// transaction code is already on file.
const DuplicateCodeMessage = "This M-Pesa transaction code has already been used for another registration. Please check the code and try again."

// UserMessage turns err into text safe to show a registrant. Backend
// messages are relayed as-is; transport problems get a generic line.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, ErrMalformedResponse):
		return "We received an unexpected response from the registration service. Please try again."
	case errors.Is(err, context.DeadlineExceeded):
		return "The registration service took too long to respond. Please try again."
	case errors.Is(err, ErrNotConfigured):
		return "The registration service is not configured. Please contact support."
	default:
		return fallback
	}
}
