package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies every failure a public operation can return. Handlers
// map codes to HTTP statuses; callers are never exposed to raw store errors.
type ErrorCode string

const (
	CodeValidation   ErrorCode = "validation"
	CodeUnauthorized ErrorCode = "unauthorized"
	CodeForbidden    ErrorCode = "forbidden"
	CodeNotFound     ErrorCode = "not_found"
	CodeConflict     ErrorCode = "conflict"
	CodeOutOfStock   ErrorCode = "out_of_stock"
	CodeInternal     ErrorCode = "internal"
)

// Error is the single tagged error type crossing component boundaries.
type Error struct {
	Code      ErrorCode
	Message   string
	ProductID string // set for out-of-stock failures
	cause     error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func ValidationError(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

func OutOfStock(productID string) *Error {
	return &Error{Code: CodeOutOfStock, Message: "insufficient stock", ProductID: productID}
}

// Internal wraps a store or connectivity failure. The cause stays attached
// for logging but never reaches a client.
func Internal(msg string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: msg, cause: cause}
}

// CodeOf extracts the taxonomy code from err, defaulting to internal for
// anything untagged.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
