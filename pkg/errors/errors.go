package errors

import (
	"errors"
	"fmt"
)

// Error represents a tna-routegen error with context
type Error struct {
	// Code is the error code (e.g., "FORMAT_ERROR")
	Code string
	// Message is the human-readable error message
	Message string
	// Cause describes why the error occurred
	Cause string
	// Action suggests what the user should do
	Action string
	// Underlying is the wrapped error
	Underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *Error) Unwrap() error {
	return e.Underlying
}

// New creates a new Error
func New(code, message, cause, action string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
		Action:  action,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, code, message, cause, action string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Cause:      cause,
		Action:     action,
		Underlying: err,
	}
}

// Common error codes
const (
	// Identifier errors
	ErrCodeFormat = "FORMAT_ERROR"
	ErrCodeRange  = "RANGE_ERROR"

	// Persistence errors
	ErrCodeNotFound = "NOT_FOUND"
	ErrCodeStore    = "STORE_ERROR"

	// Rendering errors
	ErrCodeTemplate = "TEMPLATE_ERROR"

	// Configuration errors
	ErrCodeConfigNotFound   = "CONFIG_NOT_FOUND"
	ErrCodeConfigParseError = "CONFIG_PARSE_ERROR"
	ErrCodeConfigValidation = "CONFIG_VALIDATION_ERROR"
	ErrCodeConfigPermission = "CONFIG_PERMISSION_ERROR"

	// System errors
	ErrCodeSystemError = "SYSTEM_ERROR"
)

// Common error constructors

// FormatError creates an error for syntactically malformed input
func FormatError(field, value, reason string) *Error {
	return New(
		ErrCodeFormat,
		fmt.Sprintf("Invalid %s %q: %s", field, value, reason),
		"The value does not have the expected syntax",
		fmt.Sprintf("Enter the %s again using the documented format", field),
	)
}

// RangeError creates an error for a well-formed value outside its bounds
func RangeError(field, value, reason string) *Error {
	return New(
		ErrCodeRange,
		fmt.Sprintf("Out of range %s %q: %s", field, value, reason),
		"The value is syntactically valid but outside the accepted bounds",
		fmt.Sprintf("Enter a %s within the accepted range", field),
	)
}

// NotFound creates an error for a missing persisted record
func NotFound(what string) *Error {
	return New(
		ErrCodeNotFound,
		fmt.Sprintf("%s not found", what),
		"No record has been persisted yet",
		"Run the interactive setup to create it",
	)
}

// TemplateError creates an error for a placeholder/argument mismatch
func TemplateError(template string, message string) *Error {
	return New(
		ErrCodeTemplate,
		fmt.Sprintf("Template %s: %s", template, message),
		"The template references an argument that the generator does not supply",
		"Fix the template body so it only uses the documented placeholders",
	)
}

// ConfigNotFound creates a config not found error
func ConfigNotFound(path string) *Error {
	return New(
		ErrCodeConfigNotFound,
		fmt.Sprintf("Configuration file not found: %s", path),
		"The specified configuration file does not exist",
		"Check the file path and ensure the configuration file has been created",
	)
}

// ConfigParseError creates a config parse error
func ConfigParseError(path string, err error) *Error {
	return Wrap(
		err,
		ErrCodeConfigParseError,
		fmt.Sprintf("Failed to parse configuration file: %s", path),
		"The configuration file contains invalid syntax or format",
		"Review the configuration file syntax and fix any errors",
	)
}

// StoreError wraps a persistence failure
func StoreError(operation string, err error) *Error {
	return Wrap(
		err,
		ErrCodeStore,
		fmt.Sprintf("Store operation failed: %s", operation),
		"The configured store backend rejected or could not complete the operation",
		"Check the store backend settings and that the storage location is writable",
	)
}

// IsCode reports whether any error in err's chain is an *Error with the given code
func IsCode(err error, code string) bool {
	var e *Error
	for err != nil {
		if errors.As(err, &e) {
			if e.Code == code {
				return true
			}
			err = e.Underlying
			continue
		}
		return false
	}
	return false
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
