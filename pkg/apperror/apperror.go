package apperror

import (
	"errors"
	"net/http"
	"strings"
)

// Kind classifies an error for transport mapping.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindAuth              Kind = "auth"
	KindEmptyCart         Kind = "empty_cart"
	KindInsufficientStock Kind = "insufficient_stock"
	KindUnprocessable     Kind = "unprocessable"
	KindGateway           Kind = "gateway"
	KindInternal          Kind = "internal"
)

// Error is the error type returned by application services.
// Details is optional structured context (e.g. field -> message).
type Error struct {
	Kind    Kind
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status maps the kind to an HTTP status code.
// Conflict maps to 400 to match the public contract.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation, KindConflict, KindEmptyCart, KindInsufficientStock:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuth:
		return http.StatusUnauthorized
	case KindUnprocessable:
		return http.StatusUnprocessableEntity
	case KindGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func Validation(msg string, details any) *Error {
	return &Error{Kind: KindValidation, Message: msg, Details: details}
}

// MissingFields builds a validation error naming every missing field.
func MissingFields(fields []string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: "Missing required fields: " + strings.Join(fields, ", "),
		Details: map[string]any{"missing": fields},
	}
}

func NotFound(msg string) *Error          { return New(KindNotFound, msg) }
func Conflict(msg string) *Error          { return New(KindConflict, msg) }
func Auth(msg string) *Error              { return New(KindAuth, msg) }
func EmptyCart() *Error                   { return New(KindEmptyCart, "Cart is empty") }
func InsufficientStock(msg string) *Error { return New(KindInsufficientStock, msg) }
func Unprocessable(msg string) *Error     { return New(KindUnprocessable, msg) }

func Gateway(msg string, err error) *Error {
	return &Error{Kind: KindGateway, Message: msg, Err: err}
}

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// From returns err as *Error, wrapping unknown errors as internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal("internal server error", err)
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}
