package lifecycle

import (
	"errors"
	"fmt"
)

// Code classifies lifecycle failures so handlers can map them to HTTP
// statuses without string matching.
type Code string

const (
	CodeNotFound            Code = "NOT_FOUND"
	CodeInvalidTransition   Code = "INVALID_TRANSITION"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeConflictingCheckout Code = "CONFLICTING_CHECKOUT"
	CodeValidation          Code = "VALIDATION_ERROR"
	CodePartialWrite        Code = "PARTIAL_WRITE_FAILURE"
	CodeStore               Code = "STORE_ERROR"
)

// Error is the typed result returned for every failed transition.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf extracts the lifecycle code from err, or CodeStore for anything
// that did not originate here.
func CodeOf(err error) Code {
	var le *Error
	if errors.As(err, &le) {
		return le.Code
	}
	return CodeStore
}

// Sentinels the Store implementation reports back to the manager.
var (
	// ErrNoRows means a referenced id did not resolve to a row.
	ErrNoRows = errors.New("lifecycle: no matching row")
	// ErrDuplicateOpenLog means the one-open-log-per-equipment constraint
	// rejected an insert.
	ErrDuplicateOpenLog = errors.New("lifecycle: equipment already has an open log")
)

func notFound(format string, args ...interface{}) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func invalidTransition(format string, args ...interface{}) *Error {
	return &Error{Code: CodeInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

func unauthorized(format string, args ...interface{}) *Error {
	return &Error{Code: CodeUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func conflictingCheckout(format string, args ...interface{}) *Error {
	return &Error{Code: CodeConflictingCheckout, Message: fmt.Sprintf(format, args...)}
}

func validation(format string, args ...interface{}) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func partialWrite(err error) *Error {
	return &Error{Code: CodePartialWrite, Message: "transition did not apply atomically", Err: err}
}

func storeError(err error) *Error {
	return &Error{Code: CodeStore, Message: "data store failure", Err: err}
}
