// Package errors provides standardized error handling for the HTTP boundary.
package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeActivityNotFound ErrorCode = "ACTIVITY_NOT_FOUND"
	ErrCodeAlreadySignedUp  ErrorCode = "ALREADY_SIGNED_UP"
	ErrCodeNotSignedUp      ErrorCode = "NOT_SIGNED_UP"
	ErrCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	ErrCodeRouteNotFound    ErrorCode = "ROUTE_NOT_FOUND"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// HTTPStatus is the status code the error is reported with.
func (e *StandardError) HTTPStatus() int {
	return HTTPStatus(e.Code)
}

// ==========================
// 2. Constructors
// ==========================

// NewActivityNotFoundError is returned for any operation naming an unknown activity.
func NewActivityNotFoundError(activityName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeActivityNotFound,
		Message:   "Activity not found",
		Details:   fmt.Sprintf("activity: %s", activityName),
		Retryable: false,
		Metadata:  map[string]interface{}{"activity": activityName},
		Timestamp: time.Now().UTC(),
	}
}

// NewAlreadySignedUpError is returned when signup finds the email already enrolled.
func NewAlreadySignedUpError(activityName, email string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlreadySignedUp,
		Message:   "Student is already signed up",
		Details:   fmt.Sprintf("activity: %s, email: %s", activityName, email),
		Retryable: false,
		Metadata:  map[string]interface{}{"activity": activityName, "email": email},
		Timestamp: time.Now().UTC(),
	}
}

// NewNotSignedUpError is returned when unregister cannot find the email.
func NewNotSignedUpError(activityName, email string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotSignedUp,
		Message:   "Student is not signed up for this activity",
		Details:   fmt.Sprintf("activity: %s, email: %s", activityName, email),
		Retryable: false,
		Metadata:  map[string]interface{}{"activity": activityName, "email": email},
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError reports a missing or malformed request parameter.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Invalid request",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewMethodNotAllowedError(method, path string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMethodNotAllowed,
		Message:   "Method Not Allowed",
		Details:   fmt.Sprintf("%s %s", method, path),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewRouteNotFoundError(path string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRouteNotFound,
		Message:   "Not Found",
		Details:   path,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal server error",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Classification
// ==========================

// HTTPStatus maps an error code onto the HTTP status reported to clients.
// Conflicts on enrollment state are 400, matching the public API contract.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeActivityNotFound, ErrCodeRouteNotFound:
		return http.StatusNotFound
	case ErrCodeAlreadySignedUp, ErrCodeNotSignedUp:
		return http.StatusBadRequest
	case ErrCodeInvalidRequest:
		return http.StatusUnprocessableEntity
	case ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeActivityNotFound, ErrCodeRouteNotFound:
		return "NOT_FOUND"
	case ErrCodeAlreadySignedUp, ErrCodeNotSignedUp:
		return "CONFLICT"
	case ErrCodeInvalidRequest, ErrCodeMethodNotAllowed:
		return "VALIDATION"
	default:
		return "SYSTEM"
	}
}

// IsRetryable reports whether a client may reasonably retry the request.
func IsRetryable(err error) bool {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Retryable
	}
	return false
}
