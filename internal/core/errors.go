// internal/core/errors.go
package core

import (
	"errors"
	"fmt"
)

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// WithMessage creates a new error with the code of base and a specific message.
// Used when an upstream system supplies its own explanation.
func WithMessage(base *Error, message string, cause error) *Error {
	if message == "" {
		message = base.Message
	}
	return &Error{
		Code:    base.Code,
		Message: message,
		Cause:   cause,
	}
}

// CodeInternal is reported for errors that carry no code.
const CodeInternal = "INTERNAL"

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Predefined errors
var (
	// Data errors
	ErrDataUnavailable = &Error{Code: "DATA_UNAVAILABLE", Message: "Unknown error"}
	ErrNoData          = &Error{Code: "NO_DATA", Message: "no data found for the given ticker and date range"}

	// Input errors
	ErrInvalidInput    = &Error{Code: "INVALID_INPUT", Message: "invalid input"}
	ErrProviderUnknown = &Error{Code: "PROVIDER_UNKNOWN", Message: "unknown data provider"}

	// Output errors
	ErrExportFailed = &Error{Code: "EXPORT_FAILED", Message: "export failed"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
