// Package apperror defines the failure taxonomy shared by the request
// pipeline and the domain layer. Every failure that reaches a client is
// one of the kinds below; anything else is normalized to KindInternal
// by From before serialization.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type Kind string

const (
	// KindValidation: a non-body request section failed schema validation.
	KindValidation Kind = "validation"
	// KindEntity: the request body failed schema validation. Body failures
	// are malformed entities (422), not malformed requests (400).
	KindEntity Kind = "entity"
	// KindAuth: credential missing, malformed, expired or rejected.
	KindAuth Kind = "auth"
	// KindNotFound: the targeted resource does not exist or is not visible
	// to the caller.
	KindNotFound Kind = "not_found"
	// KindInternal: everything unanticipated.
	KindInternal Kind = "internal"
)

// FieldError describes one violated constraint of one request field.
type FieldError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Path     string `json:"path"`
	Location string `json:"location"`
}

// Error is the single error type carried through the pipeline. Handlers
// and middleware only ever look at Kind, Status, Message and the public
// payload fields; the wrapped cause stays server-side.
type Error struct {
	Kind     Kind
	Status   int
	Message  string
	Location string
	Fields   []FieldError
	Info     map[string]any

	cause error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.cause != nil {
		fmt.Fprintf(&b, " (cause: %v)", e.cause)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.cause }

// WithInfo attaches non-sensitive diagnostic data to the error payload.
func (e *Error) WithInfo(info map[string]any) *Error {
	e.Info = info
	return e
}

// WithStatus overrides the default status of the kind. Used by
// authorization post-hooks that fail with a status other than 401.
func (e *Error) WithStatus(status int) *Error {
	e.Status = status
	return e
}

// NewValidation reports schema violations in a non-body request section.
func NewValidation(location string, fields []FieldError) *Error {
	return &Error{
		Kind:     KindValidation,
		Status:   http.StatusBadRequest,
		Message:  fmt.Sprintf("Error occurred in %s", location),
		Location: location,
		Fields:   fields,
	}
}

// NewEntity reports schema violations in the request body.
func NewEntity(fields []FieldError) *Error {
	return &Error{
		Kind:    KindEntity,
		Status:  http.StatusUnprocessableEntity,
		Message: "Validation error occurred in body",
		Fields:  fields,
	}
}

func NewAuth(message, location string) *Error {
	return &Error{
		Kind:     KindAuth,
		Status:   http.StatusUnauthorized,
		Message:  message,
		Location: location,
	}
}

func NewNotFound(message string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Status:  http.StatusNotFound,
		Message: message,
	}
}

func NewInternal(message string, cause error) *Error {
	return &Error{
		Kind:    KindInternal,
		Status:  http.StatusInternalServerError,
		Message: message,
		cause:   cause,
	}
}

// From normalizes an arbitrary error into a taxonomy error. Already
// classified errors pass through unchanged; everything else becomes a
// KindInternal carrying only the message, never the wrapped structure.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternal(err.Error(), err)
}
