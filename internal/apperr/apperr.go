// Package apperr defines the error type shared by werk packages. Errors are
// declared once as templates and instantiated with Fmt or Wrap so that
// callers can still match them with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

// Error is an application error with an optional format template and cause.
type Error struct {
	Cause   error
	Message string
	args    []any
	tmpl    *Error
}

// Error returns the formatted message, followed by the cause if present.
func (e *Error) Error() string {
	msg := e.Message
	if len(e.args) > 0 {
		msg = fmt.Sprintf(e.Message, e.args...)
	}

	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}

	return msg
}

// Fmt returns a copy of the error with its message template filled in.
func (e *Error) Fmt(args ...any) *Error {
	return &Error{
		Message: e.Message,
		Cause:   e.Cause,
		args:    args,
		tmpl:    e.root(),
	}
}

// Wrap returns a copy of the error that wraps err.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		Message: e.Message,
		Cause:   err,
		args:    e.args,
		tmpl:    e.root(),
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the template this error was derived from.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return e.root() == t.root()
}

func (e *Error) root() *Error {
	if e.tmpl != nil {
		return e.tmpl
	}

	return e
}
