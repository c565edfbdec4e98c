// Package apperr carries the error kinds every operation reports at its
// boundary. Handlers translate a Kind into a transport status; nothing
// below the handler layer knows about HTTP.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated"
	KindNotFound        Kind = "not_found"
	KindForbidden       Kind = "forbidden"
	KindConflict        Kind = "conflict"
	KindValidation      Kind = "validation"
	KindInternal        Kind = "internal"
)

// Error is a classified failure with a message safe to show to the caller.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind, so errors.Is(err, apperr.NotFound("")) works for any
// not-found error regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Unauthenticated(msg string) *Error { return New(KindUnauthenticated, msg) }
func NotFound(msg string) *Error        { return New(KindNotFound, msg) }
func Forbidden(msg string) *Error       { return New(KindForbidden, msg) }
func Conflict(msg string) *Error        { return New(KindConflict, msg) }
func Validation(msg string) *Error      { return New(KindValidation, msg) }

func Internal(msg string, err error) *Error {
	return Wrap(KindInternal, msg, err)
}

// KindOf reports the kind of err. Unclassified errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the caller-facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal error"
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
