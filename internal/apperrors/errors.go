package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
// Unbalanced postings and malformed provider events both wrap this.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates a missing or invalid credential.
var ErrUnauthorized = errors.New("unauthorized")

// ErrSignature indicates that a webhook signature failed verification.
var ErrSignature = errors.New("webhook signature verification failed")

// ErrConfiguration indicates that a required secret or credential is not configured.
var ErrConfiguration = errors.New("service not configured")

// ErrUnavailable indicates that the backing store cannot serve the request
// (for example the ledger tables are absent or the pool is closed).
var ErrUnavailable = errors.New("service unavailable")

// ErrConflict indicates that the resource is being mutated by another request.
var ErrConflict = errors.New("conflict")

// ErrInternal is the generic fallback for unexpected failures.
var ErrInternal = errors.New("internal error")

// AppError carries an HTTP status alongside the underlying cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError with the given status code.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError wraps ErrNotFound with a descriptive message.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message, Err: ErrNotFound}
}

// NewValidationError wraps ErrValidation with a descriptive message.
func NewValidationError(format string, args ...any) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: fmt.Sprintf(format, args...), Err: ErrValidation}
}

// NewUnavailableError wraps ErrUnavailable, keeping the root cause in the message.
func NewUnavailableError(message string, cause error) *AppError {
	if cause != nil {
		message = message + ": " + cause.Error()
	}
	return &AppError{Code: http.StatusServiceUnavailable, Message: message, Err: ErrUnavailable}
}

// NewInternalError wraps ErrInternal, keeping cause in the error chain.
func NewInternalError(message string, cause error) *AppError {
	err := ErrInternal
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrInternal, cause)
	}
	return &AppError{Code: http.StatusInternalServerError, Message: message, Err: err}
}

// HTTPStatus maps an error to the status code returned to HTTP callers.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrSignature):
		return http.StatusUnauthorized
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
