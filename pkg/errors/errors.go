// Package errors provides structured error types for the Pedalstack engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures (malformed geometry, boards, chains)
//   - PLACEMENT_*: Placement engine failures
//   - ROUTING_*: Routing engine failures
//   - NOT_FOUND_*: Resource not found
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidGeometry, "negative width: %f", w)
//	if errors.Is(err, errors.ErrCodeInvalidGeometry) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "loading board %q", id)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidGeometry Code = "INVALID_GEOMETRY"
	ErrCodeInvalidBoard    Code = "INVALID_BOARD"
	ErrCodeInvalidPedal    Code = "INVALID_PEDAL"
	ErrCodeInvalidChain    Code = "INVALID_CHAIN"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidInput    Code = "INVALID_INPUT"

	// Engine failures
	ErrCodePlacementInfeasible Code = "PLACEMENT_INFEASIBLE"
	ErrCodeRoutingBlocked      Code = "ROUTING_BLOCKED"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodePedalNotFound   Code = "PEDAL_NOT_FOUND"
	ErrCodeBoardNotFound   Code = "BOARD_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

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

// coder is implemented by domain error types that carry a fixed code.
type coder interface {
	ErrCode() Code
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error or a typed domain error
// with a matching code.
func Is(err error, code Code) bool {
	return code != "" && GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c coder
	if errors.As(err, &c) {
		return c.ErrCode()
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

// PlacementError reports that no feasible non-overlapping arrangement exists.
// Instances lists the offending pedal instance IDs. The session keeps its
// prior layout; a PlacementError never carries a partial layout.
type PlacementError struct {
	Instances []string // IDs of instances that could not be placed
	Reason    string
}

// Error implements the error interface.
func (e *PlacementError) Error() string {
	if len(e.Instances) == 0 {
		return fmt.Sprintf("placement infeasible: %s", e.Reason)
	}
	return fmt.Sprintf("placement infeasible: %s (instances: %s)", e.Reason, strings.Join(e.Instances, ", "))
}

// ErrCode returns the error code for this error type.
func (e *PlacementError) ErrCode() Code {
	return ErrCodePlacementInfeasible
}

// RoutingError reports that a chain edge could not be routed with the current
// placement (source or destination jack is fully boxed in). It is a signal
// for re-placement, not a terminal error for the session.
type RoutingError struct {
	Edge string // human-readable edge description (e.g., "fuzz.output -> delay.input")
}

// Error implements the error interface.
func (e *RoutingError) Error() string {
	return fmt.Sprintf("no collision-free path for edge %s", e.Edge)
}

// ErrCode returns the error code for this error type.
func (e *RoutingError) ErrCode() Code {
	return ErrCodeRoutingBlocked
}

// AsPlacementError extracts a *PlacementError from an error chain.
func AsPlacementError(err error) (*PlacementError, bool) {
	var pe *PlacementError
	ok := errors.As(err, &pe)
	return pe, ok
}

// AsRoutingError extracts a *RoutingError from an error chain.
func AsRoutingError(err error) (*RoutingError, bool) {
	var re *RoutingError
	ok := errors.As(err, &re)
	return re, ok
}
