package errors

import (
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeInputNotFound   ErrorType = "INPUT_NOT_FOUND"
	ErrTypeMalformedRecord ErrorType = "MALFORMED_RECORD"
	ErrTypeOutputWrite     ErrorType = "OUTPUT_WRITE"
	ErrTypeStorage         ErrorType = "STORAGE"
	ErrTypeValidation      ErrorType = "VALIDATION"
	ErrTypeConfig          ErrorType = "CONFIG"
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

// NewInputNotFoundError reports a missing sales input file.
func NewInputNotFoundError(path string, cause error) *AppError {
	return NewAppError(ErrTypeInputNotFound, fmt.Sprintf("input file %s not found", path), cause).
		WithContext("path", path)
}

// NewOutputWriteError reports a report destination that could not be created or written.
func NewOutputWriteError(path string, cause error) *AppError {
	return NewAppError(ErrTypeOutputWrite, fmt.Sprintf("cannot write report %s", path), cause).
		WithContext("path", path)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
