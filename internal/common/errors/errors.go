package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode is a stable, machine readable error identifier returned to API clients.
type ErrorCode string

const (
	ErrCodeInternal   ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"
	ErrCodeConflict   ErrorCode = "CONFLICT"

	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"

	ErrCodeGiveawayNotFound ErrorCode = "GIVEAWAY_NOT_FOUND"
	ErrCodeNotActive        ErrorCode = "NOT_ACTIVE"
	ErrCodeAlreadyJoined    ErrorCode = "ALREADY_JOINED"
	ErrCodeIneligible       ErrorCode = "INELIGIBLE"
	ErrCodeHandleRequired   ErrorCode = "HANDLE_REQUIRED"
	ErrCodeUserNotFound     ErrorCode = "USER_NOT_FOUND"

	ErrCodeVerificationUnavailable ErrorCode = "VERIFICATION_UNAVAILABLE"
	ErrCodeDatabaseError           ErrorCode = "DATABASE_ERROR"
)

// AppError is the error envelope sent to API clients.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	Retryable bool                   `json:"retryable,omitempty"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithDetail attaches a detail entry.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithRequestID attaches the request id.
func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

// HTTPStatus maps the error code to an HTTP status.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeValidation, ErrCodeHandleRequired:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden, ErrCodeIneligible:
		return http.StatusForbidden
	case ErrCodeNotFound, ErrCodeGiveawayNotFound, ErrCodeUserNotFound:
		return http.StatusNotFound
	case ErrCodeConflict, ErrCodeNotActive, ErrCodeAlreadyJoined:
		return http.StatusConflict
	case ErrCodeVerificationUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// New creates an AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Timestamp: time.Now().UTC()}
}

// Wrap creates an AppError around an existing error.
func Wrap(err error, code ErrorCode, message string) *AppError {
	e := New(code, message)
	e.Cause = err
	return e
}

func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

func NewUnauthorizedError(reason string) *AppError {
	return New(ErrCodeUnauthorized, reason)
}

func NewForbiddenError(reason string) *AppError {
	return New(ErrCodeForbidden, reason)
}

// AsAppError casts err to *AppError.
func AsAppError(err error) (*AppError, bool) {
	appErr, ok := err.(*AppError)
	return appErr, ok
}
