// Package apperr is the error taxonomy shared by the store and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the machine readable error category returned to clients.
type Kind string

const (
	Validation       Kind = "validation_error"
	Unauthenticated  Kind = "unauthenticated"
	PermissionDenied Kind = "permission_denied"
	NotFound         Kind = "not_found"
	Conflict         Kind = "conflict"
	External         Kind = "external_service_error"
	Internal         Kind = "internal"
)

// Status maps a Kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case Validation:
		return http.StatusBadRequest
	case Unauthenticated:
		return http.StatusUnauthorized
	case PermissionDenied:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case External:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain failure with a human readable detail and optional
// per-field messages.
type Error struct {
	Kind   Kind
	Detail string
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause that is logged but never shown to the caller.
func Wrap(kind Kind, err error, detail string) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

// Invalid is a validation error on a single field.
func Invalid(field, message string) *Error {
	return &Error{
		Kind:   Validation,
		Detail: message,
		Fields: map[string]string{field: message},
	}
}

// KindOf returns the Kind of err, or Internal for errors outside the taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
