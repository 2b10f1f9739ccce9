// Package errors provides structured error types for the channelhop planner.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - CONFIGURATION_*: Invalid planner setup (unknown locations, bad trip files)
//   - INTEGRITY_*: Violated itinerary invariants (waypoint merges, segment timing)
//   - DATA_*: Malformed external transport records
//   - NETWORK_*: Remote feed failures (exchange rates)
//   - INTERNAL_ERROR: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnknownLocation, "no such town: %s", town)
//	if errors.Is(err, errors.ErrCodeUnknownLocation) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors: the planner was asked something its setup
	// cannot answer.
	ErrCodeConfiguration   Code = "CONFIGURATION_ERROR"
	ErrCodeUnknownLocation Code = "CONFIGURATION_UNKNOWN_LOCATION"
	ErrCodeInvalidTripFile Code = "CONFIGURATION_INVALID_TRIP_FILE"
	ErrCodeFanoutExceeded  Code = "CONFIGURATION_FANOUT_EXCEEDED"

	// Integrity errors: a candidate segment, merge or itinerary violated
	// an invariant during construction. Fatal only to that candidate.
	ErrCodeIntegrity            Code = "INTEGRITY_ERROR"
	ErrCodeUnmergeableWaypoints Code = "INTEGRITY_UNMERGEABLE_WAYPOINTS"
	ErrCodeOverConstrained      Code = "INTEGRITY_OVER_CONSTRAINED_SEGMENT"

	// Data errors: malformed external transport records.
	ErrCodeData          Code = "DATA_ERROR"
	ErrCodeInvalidRecord Code = "DATA_INVALID_RECORD"

	// Network errors: remote feeds (exchange rates).
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Resource not found errors.
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodePlanNotFound Code = "PLAN_NOT_FOUND"

	// Internal errors.
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

// IsIntegrity reports whether err is any integrity-class error. The
// itinerary builder uses this to discard a failing candidate and continue
// enumerating its siblings.
func IsIntegrity(err error) bool {
	switch GetCode(err) {
	case ErrCodeIntegrity, ErrCodeUnmergeableWaypoints, ErrCodeOverConstrained:
		return true
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
