// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"net/http"
)

// Kind classifies an error for clients. It maps one-to-one onto an HTTP status.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindAuth              Kind = "auth"
	KindForbidden         Kind = "forbidden"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindIllegalTransition Kind = "illegal_transition"
	KindRateLimited       Kind = "rate_limited"
	KindPersistence       Kind = "persistence"
	KindInternal          Kind = "internal"
)

func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindIllegalTransition:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error. Message is safe to show to clients; Err is
// kept for logs only.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind and Message so sentinel *Error values work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validation(msg string) *Error { return New(KindValidation, msg) }

func NewValidation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "Error de validacion", Fields: fields}
}

func NotFound(msg string) *Error { return New(KindNotFound, msg) }

func Conflict(msg string) *Error { return New(KindConflict, msg) }

func Persistence(err error) *Error {
	return Wrap(KindPersistence, "Error de base de datos", err)
}

// Response is the canonical envelope for all 4xx/5xx HTTP responses.
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Kind    Kind              `json:"kind"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// FromError classifies err. Anything not already an *Error is internal and
// its text never reaches the client.
func FromError(err error) (int, Response) {
	var e *Error
	if !errors.As(err, &e) {
		e = &Error{Kind: KindInternal, Message: "Error interno del servidor"}
	}
	return e.Kind.Status(), Response{
		Success: false,
		Message: e.Message,
		Kind:    e.Kind,
		Fields:  e.Fields,
	}
}
