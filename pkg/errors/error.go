// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid parameters, malformed indicator tokens, bad config
//   - Data/Resource errors (200-299): Missing data, table shape violations
//   - Indicator errors (300-399): Unknown families, missing input columns, calculation failures
//   - Market data errors (700-799): Retrieval, parsing and persistence failures
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeMalformedToken, "missing period")
//
//	// Create a formatted error
//	err := errors.Newf(errors.ErrCodeUnsupportedIndicator, "unsupported indicator: %s", token)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to fetch AAPL", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeMalformedToken) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode of the outermost *Error in err's chain.
// Returns ErrCodeUnknown if the chain holds no *Error.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// hasCodeInChain walks the whole chain, so a coded error stays detectable after
// another coded error wraps it.
func hasCodeInChain(err error, code ErrorCode) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}

		if e.Code == code {
			return true
		}

		err = e.Cause
	}

	return false
}

// IsMalformedToken reports whether err was caused by an indicator token whose
// parameter is missing, unparsable, non-positive or not expected.
func IsMalformedToken(err error) bool {
	return hasCodeInChain(err, ErrCodeMalformedToken)
}

// IsUnsupportedIndicator reports whether err was caused by an unknown indicator family.
func IsUnsupportedIndicator(err error) bool {
	return hasCodeInChain(err, ErrCodeUnsupportedIndicator)
}

// IsMissingInputColumn reports whether err was caused by a partition lacking a
// column an indicator needs.
func IsMissingInputColumn(err error) bool {
	return hasCodeInChain(err, ErrCodeMissingInputColumn)
}
