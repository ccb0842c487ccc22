package wsinspect

import (
	"errors"
	"fmt"
)

// ErrorCode represents a categorized error type.
type ErrorCode int

const (
	ErrorUnknown ErrorCode = iota
	ErrorInvalidEndpoint
	ErrorInvalidConfig
	ErrorConnection
	ErrorTimeout
	ErrorDecode
	ErrorClosed
)

// String returns the string representation of an ErrorCode.
func (e ErrorCode) String() string {
	switch e {
	case ErrorUnknown:
		return "unknown"
	case ErrorInvalidEndpoint:
		return "invalid_endpoint"
	case ErrorInvalidConfig:
		return "invalid_config"
	case ErrorConnection:
		return "connection_error"
	case ErrorTimeout:
		return "timeout"
	case ErrorDecode:
		return "decode_error"
	case ErrorClosed:
		return "closed"
	default:
		return fmt.Sprintf("unknown_code_%d", e)
	}
}

var (
	// ErrInvalidEndpoint matches any error returned for a malformed endpoint.
	ErrInvalidEndpoint = NewError(ErrorInvalidEndpoint, "invalid endpoint")

	// ErrClosed is returned by operations on a closed Manager.
	ErrClosed = NewError(ErrorClosed, "manager closed")
)

// InspectError is a structured error with code and context.
type InspectError struct {
	Code    ErrorCode
	Message string
	Wrapped error
}

// Error implements the error interface.
func (e *InspectError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s (wrapped: %v)", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Unwrap support.
func (e *InspectError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface for error comparison.
func (e *InspectError) Is(target error) bool {
	t, ok := target.(*InspectError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new InspectError with the given code and message.
func NewError(code ErrorCode, message string) *InspectError {
	return &InspectError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with an InspectError.
func WrapError(code ErrorCode, message string, err error) *InspectError {
	return &InspectError{
		Code:    code,
		Message: message,
		Wrapped: err,
	}
}

// CodeOf returns the code of the first InspectError in err's chain.
func CodeOf(err error) ErrorCode {
	var ie *InspectError
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ErrorUnknown
}

// IsConnectionError checks if an error is a transport-level failure.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	switch CodeOf(err) {
	case ErrorConnection, ErrorTimeout:
		return true
	default:
		return false
	}
}
