// Package dErrors defines the tagged domain error type shared across services
// and the single mapping from error code to HTTP status. Handlers never switch
// on error types; they pass errors to the transport layer's translation point,
// which reads the code off the error.
package dErrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code tags a domain failure with its taxonomy entry.
type Code string

const (
	CodeBadRequest       Code = "bad_request"       // malformed or invalid input
	CodeUnauthorized     Code = "unauthorized"      // missing or bad credentials
	CodeForbidden        Code = "forbidden"         // authenticated but insufficient role
	CodeNotFound         Code = "not_found"         // entity does not exist
	CodeTenantUnresolved Code = "tenant_unresolved" // no tenant bound for a tenant-required route
	CodeConflict         Code = "conflict"          // duplicate resource (e.g. email already registered)
	CodeTooManyRequests  Code = "too_many_requests" // rate limit exceeded
	CodeInternal         Code = "internal"          // any uncategorized failure
)

// Error is a domain failure carrying a code and a caller-safe message.
// The wrapped cause (if any) is for logs only and never reaches clients.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a domain error with the given code and caller-safe message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and caller-safe message to an underlying cause.
// The cause remains reachable via errors.Is / errors.As for logging.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// CodeOf extracts the domain code from err, or CodeInternal if err carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given domain code.
func HasCode(err error, code Code) bool {
	var de *Error
	return errors.As(err, &de) && de.Code == code
}

// MessageOf returns the caller-safe message of err. Errors without a domain
// code collapse to a sanitized generic message so internal detail never
// reaches clients.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "an unexpected error occurred"
}

// ToHTTPStatus maps a domain code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound, CodeTenantUnresolved:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
