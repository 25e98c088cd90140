package render

import (
	"errors"
	"log"
	"net/http"

	"github.com/good-yellow-bee/curlhub/internal/errs"
)

// Error represents an API error response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

// Common error codes
const (
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
)

// Standard errors
var (
	ErrUnauthenticated = &Error{
		Code:    ErrCodeUnauthorized,
		Message: "Authentication required",
		Status:  http.StatusUnauthorized,
	}

	ErrInvalidCredentials = &Error{
		Code:    ErrCodeUnauthorized,
		Message: "Invalid credentials",
		Status:  http.StatusUnauthorized,
	}

	ErrForbidden = &Error{
		Code:    ErrCodeForbidden,
		Message: "Access denied",
		Status:  http.StatusForbidden,
	}

	ErrNotFound = &Error{
		Code:    ErrCodeNotFound,
		Message: "Resource not found",
		Status:  http.StatusNotFound,
	}

	ErrConflict = &Error{
		Code:    ErrCodeConflict,
		Message: "Resource already exists",
		Status:  http.StatusConflict,
	}

	ErrInternalServer = &Error{
		Code:    ErrCodeInternalError,
		Message: "Internal server error",
		Status:  http.StatusInternalServerError,
	}
)

// NewBadRequest creates a bad request error with custom message.
func NewBadRequest(message string) *Error {
	return &Error{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewValidationError creates a validation error with custom message.
func NewValidationError(message string) *Error {
	return &Error{
		Code:    ErrCodeValidationFailed,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// FromErr maps a classified error to its outward API error. This table is
// the only place error kinds become HTTP statuses. Storage details are never
// exposed; validation messages are.
func FromErr(err error) *Error {
	switch errs.KindOf(err) {
	case errs.Unauthenticated:
		return ErrUnauthenticated
	case errs.InvalidCredential:
		return ErrInvalidCredentials
	case errs.Forbidden:
		return ErrForbidden
	case errs.NotFound:
		return ErrNotFound
	case errs.Conflict:
		return ErrConflict
	case errs.Invalid:
		return NewValidationError(causeMessage(err))
	default:
		return ErrInternalServer
	}
}

// Fail writes the API error for err, logging server-side failures.
func Fail(w http.ResponseWriter, op string, err error) {
	apiErr := FromErr(err)
	if apiErr.Status >= http.StatusInternalServerError {
		log.Printf("%s error: %v", op, err)
	}
	JSONError(w, apiErr)
}

func causeMessage(err error) string {
	var e *errs.Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	return "invalid request"
}
