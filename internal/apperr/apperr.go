// Package apperr holds the error kinds shared by the service layer and the
// HTTP boundary. Services return *Error values wrapping one of the kinds;
// handlers map the kind to a status code and show only the message.
package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrConflict        = errors.New("conflict")
	ErrValidation      = errors.New("validation error")
)

// Error is a domain failure that is safe to show to a client.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// New creates an Error of the given kind.
func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation is shorthand for a validation failure with a dynamic message.
func Validation(message string) *Error {
	return New(ErrValidation, message)
}

// Message returns the client-safe text of err, or "" when err carries none.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}
