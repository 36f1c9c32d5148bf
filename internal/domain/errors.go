package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found or is not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned by repositories on unique violations.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidInput marks a missing, empty or out-of-range field.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidOperation marks a state machine violation.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrConflict marks an operation that would break a uniqueness rule.
	ErrConflict = errors.New("conflict")
)

// Error carries a client-facing message and wraps one of the kinds above.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

// NotFound builds an ErrNotFound with a message such as "order not found".
func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

// InvalidInput builds an ErrInvalidInput naming the offending field.
func InvalidInput(format string, args ...interface{}) error {
	return &Error{Kind: ErrInvalidInput, Msg: fmt.Sprintf(format, args...)}
}

// InvalidOperation builds an ErrInvalidOperation.
func InvalidOperation(format string, args ...interface{}) error {
	return &Error{Kind: ErrInvalidOperation, Msg: fmt.Sprintf(format, args...)}
}

// Conflict builds an ErrConflict.
func Conflict(format string, args ...interface{}) error {
	return &Error{Kind: ErrConflict, Msg: fmt.Sprintf(format, args...)}
}

// Message returns the client-facing text for err. Errors that are not
// *Error fall back to the kind's text so internal causes are not exposed.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Msg
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrNotFound.Error()
	case errors.Is(err, ErrAlreadyExists):
		return ErrAlreadyExists.Error()
	case errors.Is(err, ErrInvalidInput):
		return ErrInvalidInput.Error()
	case errors.Is(err, ErrInvalidOperation):
		return ErrInvalidOperation.Error()
	case errors.Is(err, ErrConflict):
		return ErrConflict.Error()
	}
	return "internal error"
}
