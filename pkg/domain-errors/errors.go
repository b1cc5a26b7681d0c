// Package domainerrors provides coded, caller-visible errors for the ledger.
//
// Stores return sentinel errors (pkg/platform/sentinel) for infrastructure
// facts; services translate them into coded errors here. The code travels with
// the error through wrapping, so transports can map it to a status without
// string matching.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for callers.
type Code string

const (
	// CodeInvalidInput: empty required text, non-positive amount/duration/goal.
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest: malformed request at the transport boundary.
	CodeBadRequest Code = "bad_request"
	// CodeNotFound: unknown project/milestone/researcher id.
	CodeNotFound Code = "not_found"
	// CodeUnauthorized: caller is not the researcher/verifier/owner the
	// operation requires.
	CodeUnauthorized Code = "unauthorized"
	// CodeInvalidState: the entity's status forbids the operation.
	CodeInvalidState Code = "invalid_state"
	// CodeLimitExceeded: a platform parameter above its cap.
	CodeLimitExceeded Code = "limit_exceeded"
	// CodeInternal: unexpected failure; details stay out of responses.
	CodeInternal Code = "internal_error"
)

// Error carries a code alongside a message and an optional cause.
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

// New creates a coded error.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for uncoded
// errors so transports never leak raw failure detail.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the caller-visible message from err.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
