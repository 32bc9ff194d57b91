// Package errors provides structured error types for revdot.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the pipeline
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: input validation and parse failures
//   - GIT_*: failures of the external log command
//   - INTERNAL_*: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidDate, "unrecognized date format: %s", s)
//	if errors.Is(err, errors.ErrCodeInvalidDate) {
//	    // handle the parse failure
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeGitCommand, origErr, "run %s", cmd)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation and parse errors. All of them are fatal: the
	// pipeline aborts before producing any output.
	ErrCodeInvalidRecord    Code = "INVALID_RECORD"    // malformed record line
	ErrCodeInvalidDate      Code = "INVALID_DATE"      // unparsable record date
	ErrCodeEmptyInput       Code = "EMPTY_INPUT"       // zero records parsed
	ErrCodeInvalidPattern   Code = "INVALID_PATTERN"   // bad variable pattern
	ErrCodeInvalidAlignment Code = "INVALID_ALIGNMENT" // unknown granularity
	ErrCodeInvalidStyle     Code = "INVALID_STYLE"     // bad style file

	// External log command errors
	ErrCodeGitCommand Code = "GIT_COMMAND"
	ErrCodeInputFile  Code = "INPUT_FILE"

	// Internal errors (structural invariant violations)
	ErrCodeInternal Code = "INTERNAL_ERROR"
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
