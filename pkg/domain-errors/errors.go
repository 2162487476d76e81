// Package domainerrors provides coded errors shared across services.
//
// Domain errors carry a stable machine-readable code plus a human-readable
// message. Services create them at the point of failure; the HTTP layer maps
// codes to status codes and decides what is safe to expose. Tests assert on
// codes and messages, so messages for validation failures are part of the
// public contract and must stay stable.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for transport mapping and test assertions.
type Code string

const (
	// CodeUnauthorized covers role failures and the pause gate.
	CodeUnauthorized Code = "unauthorized"
	// CodeInvalidInput covers validation failures: zero fields, length
	// mismatches, and out-of-range parameters.
	CodeInvalidInput Code = "invalid_input"
	// CodeNotFound covers missing resources addressed directly (not the
	// NOT_FOUND query status, which is a valid outcome, not an error).
	CodeNotFound Code = "not_found"
	// CodeFailedDependency covers collaborator failures: oracle readings,
	// token transfers, allowance shortfalls.
	CodeFailedDependency Code = "failed_dependency"
	// CodeConflict covers one-shot lifecycle violations such as double
	// initialization, and the idempotent-guarded setters rejecting no-op
	// updates.
	CodeConflict Code = "conflict"
	// CodeInternal covers unexpected infrastructure failures.
	CodeInternal Code = "internal_error"
)

// Error is the concrete domain error. Use New/Wrap to construct.
type Error struct {
	code    Code
	message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *Error) Unwrap() error { return e.cause }

// Code returns the classification of this error.
func (e *Error) Code() Code { return e.code }

// Message returns the stable message without any wrapped cause.
func (e *Error) Message() string { return e.message }

// New creates a domain error with a stable message.
func New(code Code, message string) error {
	return &Error{code: code, message: message}
}

// Newf creates a domain error with a formatted message. Avoid for messages
// that tests assert on verbatim.
func Newf(code Code, format string, args ...any) error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap annotates a cause with a code and message while keeping the chain
// intact for errors.Is/As.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{code: code, message: message, cause: err}
}

// CodeOf extracts the code from err, or CodeInternal when err carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.code
	}
	return CodeInternal
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.code == code
	}
	return false
}
