package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeHTTPStatus ErrorType = "http_status"
	ErrorTypeRateLimit  ErrorType = "rate_limit"
	ErrorTypeParsing    ErrorType = "parsing"
	ErrorTypeContext    ErrorType = "context"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error represents a Douyin API or harvesting error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error without an underlying cause
func New(errorType ErrorType, code int, message string) *Error {
	return &Error{Type: errorType, Code: code, Message: message}
}

// Wrap creates a typed error around an underlying cause
func Wrap(errorType ErrorType, code int, err error, message string) *Error {
	return &Error{Type: errorType, Code: code, Message: fmt.Sprintf("%s: %v", message, err), Err: err}
}

// TypeOf returns the type of the first typed error in the chain, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Type
	}
	return ErrorTypeUnknown
}

// IsType reports whether err carries the given type anywhere in its chain
func IsType(err error, errorType ErrorType) bool {
	return err != nil && TypeOf(err) == errorType
}

// TypeForStatusCode maps a non-success HTTP status to an error type.
// The classification is informational; every failure is retried the same way.
func TypeForStatusCode(statusCode int) ErrorType {
	switch {
	case statusCode == 0:
		return ErrorTypeNetwork
	case statusCode == 429:
		return ErrorTypeRateLimit
	default:
		return ErrorTypeHTTPStatus
	}
}
