// Package apierrors holds the error taxonomy shared by the upstream
// client, the store and the HTTP layer, plus the mapping from internal
// errors to user-facing responses. Internal detail is logged, never
// returned to clients.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNotFound marks an article that does not exist.
	ErrNotFound = errors.New("article not found")

	// ErrNotConfigured marks a missing or placeholder upstream API key.
	ErrNotConfigured = errors.New("news api key is not configured")
)

// ValidationError is a client input error. Its message is user-caused
// and safe to return.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Validation(msg string) error { return &ValidationError{Message: msg} }

// UpstreamError carries the upstream API's status code and message.
// Transport failures (DNS, refused connection, timeout) use code 500.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error (%d): %s", e.StatusCode, e.Message)
}

// StoreError wraps a database failure with the failing operation name.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

// HTTPStatus maps an error to the response status code.
func HTTPStatus(err error) int {
	var ve *ValidationError
	var ue *UpstreamError
	switch {
	case errors.Is(err, ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &ue):
		if ue.StatusCode >= 400 {
			return ue.StatusCode
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Code returns a short stable code for machine-readable handling.
func Code(err error) string {
	var ve *ValidationError
	var ue *UpstreamError
	var se *StoreError
	switch {
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.As(err, &ve):
		return "invalid_argument"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.As(err, &ue):
		return "upstream_error"
	case errors.As(err, &se):
		return "store_error"
	default:
		return "internal"
	}
}

// FriendlyMessage turns an error into a generic category-based sentence
// for clients. The categories follow what users can act on: network,
// timeout, rate limit, auth, not found, or a generic fallback.
func FriendlyMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	if errors.Is(err, ErrNotConfigured) {
		return "News service is not properly configured. Please contact support."
	}
	if errors.Is(err, ErrNotFound) {
		return "The requested content could not be found."
	}

	msg := strings.ToLower(err.Error())
	var ue *UpstreamError
	isUpstream := errors.As(err, &ue)

	switch {
	case isUpstream && (ue.StatusCode == http.StatusTooManyRequests || strings.Contains(msg, "rate limit")):
		return "Too many requests. Please wait a moment and try again."
	case isUpstream && (ue.StatusCode == http.StatusUnauthorized || ue.StatusCode == http.StatusForbidden || strings.Contains(msg, "unauthorized")):
		return "Service configuration error. Please contact support."
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return "The request took too long. Please try again."
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") || strings.Contains(msg, "network"):
		return "Unable to connect to the news service. Please check your internet connection and try again."
	default:
		return "Something went wrong. Please try again later."
	}
}
