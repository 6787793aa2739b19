package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeStorage    ErrorType = "STORAGE"
)

// Sentinel errors for the fatal failure modes of a dataset run. All of them
// abort the run before any output is written; callers discriminate with
// errors.Is.
var (
	// ErrLoad marks an input (archive, guide workbook, mapping file) that
	// cannot be parsed into its expected shape.
	ErrLoad = errors.New("load failed")
	// ErrDuplicateColumn marks a mapping table that assigns the same output
	// column twice.
	ErrDuplicateColumn = errors.New("duplicate delta column")
	// ErrInvalidDirection marks a mapping direction that is neither +1 nor -1.
	ErrInvalidDirection = errors.New("invalid direction")
	// ErrInvalidMode marks an aggregation mode other than mean or sum.
	ErrInvalidMode = errors.New("invalid aggregation mode")
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewLoadError creates a parsing error wrapping ErrLoad so that any input
// that cannot be read into its expected shape is recognizable as a load
// failure regardless of which adapter produced it.
func NewLoadError(message string, cause error) *AppError {
	if cause == nil {
		cause = ErrLoad
	} else {
		cause = fmt.Errorf("%w: %w", ErrLoad, cause)
	}
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeValidation, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}
