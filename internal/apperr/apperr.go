// Package apperr defines the coded errors shared by the store, the view-models
// and the gRPC layer.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies an error independently of the transport carrying it.
type Code string

const (
	CodeNotFound         Code = "NOT_FOUND"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeInvalid          Code = "INVALID"
	CodeUnavailable      Code = "UNAVAILABLE"
	CodeInternal         Code = "INTERNAL"
)

// Error is a structured application error.
type Error struct {
	Code      Code
	Message   string
	Details   []string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	if len(e.Details) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(e.Details, "; "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports a missing document.
func NotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// PermissionDenied reports an access the caller is not entitled to.
func PermissionDenied(format string, args ...any) *Error {
	return &Error{Code: CodePermissionDenied, Message: fmt.Sprintf(format, args...)}
}

// Invalid reports a document or argument that failed validation.
func Invalid(message string, details ...string) *Error {
	return &Error{Code: CodeInvalid, Message: message, Details: details}
}

// Unavailable wraps a failure of a dependency that may succeed later.
func Unavailable(message string, err error) *Error {
	return &Error{Code: CodeUnavailable, Message: message, Retryable: true, Err: err}
}

// Internal wraps an unexpected failure.
func Internal(message string, err error) *Error {
	return &Error{Code: CodeInternal, Message: message, Err: err}
}

// CodeOf returns the code of the first *Error in err's chain. Errors without
// one are internal; nil has no code.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// IsRetryable reports whether the operation that produced err may be retried.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}
