// Package errors provides structured error types for the cookgraph engine.
//
// This package defines error codes and types that enable:
//   - Consistent handling of contract violations across history and evaluator
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes fall into three groups:
//   - Invalid-state codes (INVALID_STATE, UNKNOWN_KEY, NOT_FOUND, DUPLICATE):
//     programmer contract violations, surfaced immediately
//   - Input codes (INVALID_INPUT, TYPE_MISMATCH): rejected edits
//   - Runtime codes (BUSY, EFFECT_FAILED, COOK_FAILED, INTERNAL)
//
// Cycles and lock contention are deliberately not errors; the evaluator
// reports them in its result.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidState, "undo on open command %q", name)
//	if errors.Is(err, errors.ErrCodeInvalidState) {
//	    // Caller broke the command state machine
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeCookFailed, cause, "cook %s", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Contract violations
	ErrCodeInvalidState Code = "INVALID_STATE"
	ErrCodeUnknownKey   Code = "UNKNOWN_KEY"
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeDuplicate    Code = "DUPLICATE"

	// Input errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeTypeMismatch Code = "TYPE_MISMATCH"

	// Runtime errors
	ErrCodeBusy         Code = "BUSY"
	ErrCodeEffectFailed Code = "EFFECT_FAILED"
	ErrCodeCookFailed   Code = "COOK_FAILED"
	ErrCodeInternal     Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
// The outermost *Error wins, so a COOK_FAILED wrapping an EFFECT_FAILED
// reports COOK_FAILED only.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// InvalidState is shorthand for New(ErrCodeInvalidState, ...), the most
// common contract violation in the history and lock packages.
func InvalidState(format string, args ...any) *Error {
	return New(ErrCodeInvalidState, format, args...)
}
