// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes following domain-driven design
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// Validation errors (400)
	CodeValidation = "VALIDATION_ERROR"

	// Business rule violations (409, 422)
	CodeDuplicateNumber  = "DUPLICATE_NUMBER"
	CodeConfigMissing    = "CONFIG_MISSING"
	CodeTxContention     = "TX_CONTENTION"
	CodePartialMigration = "PARTIAL_MIGRATION"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"
)

// AppError is the standard error type for the engine.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (document numbers, job ids, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Retryable marks errors the caller may safely retry (transaction contention)
	Retryable bool `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewDuplicateNumber is returned when a manually supplied document number
// already exists for the document type.
func NewDuplicateNumber(docType, docNo string) *AppError {
	return &AppError{
		Code:       CodeDuplicateNumber,
		Message:    fmt.Sprintf("document number %s already used", docNo),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"doc_type": docType, "doc_no": docNo},
	}
}

// NewConfigMissing is returned when no number prefix is configured for a
// document type.
func NewConfigMissing(docType string) *AppError {
	return &AppError{
		Code:       CodeConfigMissing,
		Message:    fmt.Sprintf("no number prefix configured for %s", docType),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"doc_type": docType},
	}
}

// NewTxContention is returned when an optimistic transaction lost a conflict
// and should be retried by the caller.
func NewTxContention(entity string) *AppError {
	return &AppError{
		Code:       CodeTxContention,
		Message:    "Concurrent update detected. Please retry.",
		HTTPStatus: http.StatusConflict,
		Retryable:  true,
		Details:    map[string]any{"entity": entity},
	}
}

// NewPartialMigration wraps a failure that left an archival operation
// partially applied (main record moved, activity copy incomplete).
// Re-invoking the operation is safe.
func NewPartialMigration(jobID string, err error) *AppError {
	return &AppError{
		Code:       CodePartialMigration,
		Message:    "Archival partially applied; re-invoke to resume",
		HTTPStatus: http.StatusInternalServerError,
		Retryable:  true,
		Err:        err,
		Details:    map[string]any{"job_id": jobID},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// --- Helper functions ---

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeNotFound
	}
	return false
}

// IsRetryable reports whether the caller may safely retry the operation.
func IsRetryable(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Retryable
	}
	return false
}

// IsDuplicateNumber checks if error is CodeDuplicateNumber
func IsDuplicateNumber(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeDuplicateNumber
	}
	return false
}
