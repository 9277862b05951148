package errors

import (
	stderrors "errors"
	"fmt"
)

// MalformedRecordError identifies an input row that could not be turned into a sale.
// Row is the 1-based line of the input file (the header is line 1).
type MalformedRecordError struct {
	Row    int
	Column string
	Value  string
	Cause  error
}

// Error implements the error interface
func (e *MalformedRecordError) Error() string {
	msg := fmt.Sprintf("[%s] malformed record at row %d", ErrTypeMalformedRecord, e.Row)
	if e.Column != "" {
		msg += fmt.Sprintf(", column %q", e.Column)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(", value %q", e.Value)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying parse failure
func (e *MalformedRecordError) Unwrap() error {
	return e.Cause
}

// NewMalformedRecordError creates a malformed record error for the given row and column
func NewMalformedRecordError(row int, column, value string, cause error) *MalformedRecordError {
	return &MalformedRecordError{
		Row:    row,
		Column: column,
		Value:  value,
		Cause:  cause,
	}
}

// IsType reports whether err carries the given error type anywhere in its chain.
func IsType(err error, errType ErrorType) bool {
	if err == nil {
		return false
	}
	if errType == ErrTypeMalformedRecord {
		var mre *MalformedRecordError
		if stderrors.As(err, &mre) {
			return true
		}
	}
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		if appErr, ok := e.(*AppError); ok && appErr.Type == errType {
			return true
		}
	}
	return false
}

// Process exit codes
const (
	ExitOK              = 0
	ExitUnknown         = 1
	ExitInputNotFound   = 2
	ExitMalformedRecord = 3
	ExitOutputWrite     = 4
	ExitConfig          = 5
)

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case IsType(err, ErrTypeInputNotFound):
		return ExitInputNotFound
	case IsType(err, ErrTypeMalformedRecord):
		return ExitMalformedRecord
	case IsType(err, ErrTypeOutputWrite):
		return ExitOutputWrite
	case IsType(err, ErrTypeConfig):
		return ExitConfig
	default:
		return ExitUnknown
	}
}
