package apperror

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes returned in the response envelope.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeForbidden    = "FORBIDDEN"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeStorage      = "STORAGE_FAILURE"
	CodeInternal     = "INTERNAL_ERROR"
)

// AppError is the application error carried from services to handlers.
// Fields holds per-field validation messages when Code is VALIDATION_ERROR.
type AppError struct {
	Code    string
	Message string
	Fields  map[string]string
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

// StatusCode maps the error code to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeValidation:
		return fiber.StatusBadRequest
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeForbidden:
		return fiber.StatusForbidden
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

func Validation(message string, fields map[string]string) *AppError {
	return &AppError{Code: CodeValidation, Message: message, Fields: fields}
}

func FieldError(field, message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message, Fields: map[string]string{field: message}}
}

func NotFound(resource string) *AppError {
	return &AppError{Code: CodeNotFound, Message: resource + " not found"}
}

func Forbidden(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message}
}

// Storage wraps an image encode or file write failure. The triggering write
// must have been aborted before this is returned.
func Storage(message string, err error) *AppError {
	return &AppError{Code: CodeStorage, Message: message, Err: err}
}

func Internal(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "Internal Server Error", Err: err}
}

// From extracts an *AppError, wrapping unknown errors as internal.
func From(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}
