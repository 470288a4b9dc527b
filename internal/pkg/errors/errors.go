// Package errors defines the structured error type used at service and
// transport boundaries. Remote-call failures never propagate as raw
// transport errors; they are converted here so handlers can render a
// consistent envelope.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// APIError is a user-presentable error with an HTTP status.
type APIError struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Title, e.Detail)
}

// New creates an APIError.
func New(status int, title, detail string) *APIError {
	return &APIError{Status: status, Title: title, Detail: detail}
}

// Validation creates a 400 validation error.
func Validation(detail string) *APIError {
	return New(http.StatusBadRequest, "Validation Error", detail)
}

// Upstream creates a 502 error for a failed remote API call.
func Upstream(detail string) *APIError {
	return New(http.StatusBadGateway, "Upstream Error", detail)
}

// Unauthorized creates a 401 error.
func Unauthorized(detail string) *APIError {
	return New(http.StatusUnauthorized, "Unauthorized", detail)
}

// StatusOf extracts the HTTP status to report for err. Non-APIError
// values map to 500.
func StatusOf(err error) int {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}

// MessageOf extracts the user-presentable message for err, falling back
// to the given default for unexpected error values.
func MessageOf(err error, fallback string) string {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return apiErr.Title
	}
	return fallback
}
