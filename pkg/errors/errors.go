// Package errors provides structured error types for the pedsignal
// application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// The core packages (pedigree, climb) return plain sentinel errors; the
// boundary layers translate them with [FromCore] so the CLI and HTTP API
// can act on a code instead of matching sentinels one by one.
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - MALFORMED_* / UNKNOWN_*: Pedigree structure and lookup failures
//   - NOT_FOUND: Missing stored resources
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "invalid individual: %s", raw)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "line %d", n)
package errors

import (
	"errors"
	"fmt"

	"github.com/matzehuels/pedsignal/pkg/climb"
	"github.com/matzehuels/pedsignal/pkg/pedigree"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Pedigree errors
	ErrCodeMalformedPedigree Code = "MALFORMED_PEDIGREE"
	ErrCodeUnknownIndividual Code = "UNKNOWN_INDIVIDUAL"
	ErrCodeEmptyPedigree     Code = "EMPTY_PEDIGREE"
	ErrCodeClimbState        Code = "CLIMB_STATE"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Backend errors
	ErrCodeBackend Code = "BACKEND_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// FromCore assigns a code to an error returned by the pedigree or climb
// packages. Errors that already carry a code, and nil, are returned
// unchanged; anything unrecognized becomes INTERNAL_ERROR.
func FromCore(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}

	code := ErrCodeInternal
	switch {
	case errors.Is(err, pedigree.ErrMalformedPedigree):
		code = ErrCodeMalformedPedigree
	case errors.Is(err, pedigree.ErrUnknownIndividual):
		code = ErrCodeUnknownIndividual
	case errors.Is(err, pedigree.ErrEmptyGroup),
		errors.Is(err, climb.ErrGenotypeMismatch):
		code = ErrCodeInvalidInput
	case errors.Is(err, climb.ErrEmptyPedigree):
		code = ErrCodeEmptyPedigree
	case errors.Is(err, climb.ErrNoSamples),
		errors.Is(err, climb.ErrNotSeeded):
		code = ErrCodeClimbState
	}
	return &Error{Code: code, Message: err.Error(), Cause: err}
}
