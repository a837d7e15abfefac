// Package apperrors defines the error categories surfaced at the HTTP boundary.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	TypeValidation  ErrorType = "validation"
	TypeUpstream    ErrorType = "upstream"
	TypeProcessing  ErrorType = "processing"
	TypeEmptyResult ErrorType = "empty_result"
	TypeUnavailable ErrorType = "unavailable"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewValidationError reports a missing or malformed client input.
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       TypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewUpstreamError reports a network or decoding failure while calling an
// external API.
func NewUpstreamError(message string, cause error) *AppError {
	return &AppError{
		Type:       TypeUpstream,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewProcessingError reports a document that could not be parsed. The cause
// is exposed to the caller as Details.
func NewProcessingError(message string, cause error) *AppError {
	e := &AppError{
		Type:       TypeProcessing,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// NewEmptyResultError reports a provider call that succeeded without
// producing anything usable.
func NewEmptyResultError(message string) *AppError {
	return &AppError{
		Type:       TypeEmptyResult,
		Message:    message,
		StatusCode: http.StatusOK,
	}
}

// NewUnavailableError reports a feature whose backing service is not configured.
func NewUnavailableError(message string) *AppError {
	return &AppError{
		Type:       TypeUnavailable,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
	}
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == errorType
}

// StatusCode returns the HTTP status code for an error
func StatusCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
