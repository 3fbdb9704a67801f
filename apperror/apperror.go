// Package apperror defines the failure taxonomy shared by services and the HTTP boundary.
package apperror

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindNotAuthenticated
	KindNotOwner
	KindNotAllowed
	KindNotFound
	KindDuplicateName
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotAuthenticated:
		return "not_authenticated"
	case KindNotOwner:
		return "not_owner"
	case KindNotAllowed:
		return "not_allowed"
	case KindNotFound:
		return "not_found"
	case KindDuplicateName:
		return "duplicate_name"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a tagged failure. Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func InvalidInput(msg string) *Error     { return New(KindInvalidInput, msg) }
func NotAuthenticated(msg string) *Error { return New(KindNotAuthenticated, msg) }
func NotOwner(msg string) *Error         { return New(KindNotOwner, msg) }
func NotAllowed(msg string) *Error       { return New(KindNotAllowed, msg) }
func NotFound(msg string) *Error         { return New(KindNotFound, msg) }
func DuplicateName(msg string) *Error    { return New(KindDuplicateName, msg) }
func Conflict(msg string) *Error         { return New(KindConflict, msg) }

func Internal(err error) *Error {
	return Wrap(KindInternal, "Internal server error", err)
}

// KindOf returns the kind of the first *Error in the chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Status maps a kind onto the HTTP status used by the API.
func Status(kind Kind) int {
	switch kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotAuthenticated, KindNotOwner, KindNotAllowed:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicateName, KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing message for err. Internal failures never expose
// their cause.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "Internal server error"
}
