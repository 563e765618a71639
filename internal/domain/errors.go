package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeNotFound        Code = "NOT_FOUND"
	CodeInvalidRecord   Code = "INVALID_RECORD"
	CodeIndexOutOfRange Code = "INDEX_OUT_OF_RANGE"
	CodeValidation      Code = "VALIDATION"
	CodeForbidden       Code = "FORBIDDEN"
	CodeBusy            Code = "BUSY"
	CodeUnavailable     Code = "UNAVAILABLE"
	CodeInternal        Code = "INTERNAL"
)

// HTTPStatus maps a code to the status returned by the API.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidRecord, CodeValidation:
		return http.StatusBadRequest
	case CodeIndexOutOfRange:
		return http.StatusUnprocessableEntity
	case CodeForbidden:
		return http.StatusForbidden
	case CodeBusy:
		return http.StatusTooManyRequests
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error. errors.Is matches on Code only.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"error"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int { return e.Code.HTTPStatus() }

// Withf returns a copy with a formatted message.
func (e *Error) Withf(format string, args ...any) *Error {
	return &Error{Code: e.Code, Message: fmt.Sprintf(format, args...), Details: e.Details, cause: e.cause}
}

// WithDetails returns a copy carrying extra details for the client.
func (e *Error) WithDetails(details any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// WithCause returns a copy wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, cause: err}
}

// Sentinel errors.
var (
	ErrNotFound = &Error{
		Code:    CodeNotFound,
		Message: "bookmark not found",
	}

	ErrInvalidRecord = &Error{
		Code:    CodeInvalidRecord,
		Message: "invalid import record",
	}

	ErrIndexOutOfRange = &Error{
		Code:    CodeIndexOutOfRange,
		Message: "index out of range",
	}

	ErrValidation = &Error{
		Code:    CodeValidation,
		Message: "validation failed",
	}

	ErrForbidden = &Error{
		Code:    CodeForbidden,
		Message: "forbidden",
	}

	ErrBusy = &Error{
		Code:    CodeBusy,
		Message: "already in progress, please wait",
	}

	ErrUnavailable = &Error{
		Code:    CodeUnavailable,
		Message: "not configured",
	}

	ErrInternal = &Error{
		Code:    CodeInternal,
		Message: "internal server error",
	}
)
