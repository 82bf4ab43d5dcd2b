package apperr

import (
	"maps"
	"net/http"
)

type Code string

const (
	CodeInternal            Code = "INTERNAL"
	CodeNotFound            Code = "NOT_FOUND"
	CodeInvalid             Code = "INVALID"
	CodeConflict            Code = "CONFLICT"
	CodeInvalidTransition   Code = "INVALID_TRANSITION"
	CodeConcurrencyConflict Code = "CONCURRENCY_CONFLICT"
)

// Error is the typed failure every command returns. Details carries the
// failing property under the "field" key so callers can render per-field
// messages.
type Error struct {
	Code     Code
	Message  string
	Details  map[string]any
	HTTPCode int    // http status code hint
	I18nKey  string // message id for localisation, empty means use Message as-is
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) WithDetails(details map[string]any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}

	maps.Copy(e.Details, details)

	return e
}

func (e *Error) WithField(field string) *Error {
	return e.WithDetails(map[string]any{"field": field})
}

func (e *Error) WithCause(cause error) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}

	e.Details["cause"] = cause.Error()

	return e
}

func (e *Error) WithI18n(key string) *Error {
	e.I18nKey = key
	return e
}

func (e *Error) Field() string {
	if e.Details == nil {
		return ""
	}

	field, _ := e.Details["field"].(string)
	return field
}

func (e *Error) HTTPStatusCode() int {
	if e.HTTPCode != 0 {
		return e.HTTPCode
	}

	return HTTPStatusCode(e.Code)
}

func New(code Code, msg string, httpcode int) *Error {
	return &Error{
		Code:     code,
		Message:  msg,
		Details:  nil,
		HTTPCode: httpcode,
	}
}

func NewInternal(msg string) *Error {
	return New(CodeInternal, msg, http.StatusInternalServerError)
}

func NewNotFound(msg string) *Error {
	return New(CodeNotFound, msg, http.StatusNotFound)
}

func NewInvalid(msg string) *Error {
	return New(CodeInvalid, msg, http.StatusBadRequest)
}

func NewConflict(msg string) *Error {
	return New(CodeConflict, msg, http.StatusConflict)
}

// NewInvalidTransition marks a command that is malformed only with
// respect to the aggregate's current state, not its payload.
func NewInvalidTransition(msg string) *Error {
	return New(CodeInvalidTransition, msg, http.StatusUnprocessableEntity)
}

func NewConcurrencyConflict(msg string) *Error {
	return New(CodeConcurrencyConflict, msg, http.StatusConflict)
}

func HTTPStatusCode(code Code) int {
	switch code {
	case CodeInternal:
		return http.StatusInternalServerError
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalid:
		return http.StatusBadRequest
	case CodeConflict, CodeConcurrencyConflict:
		return http.StatusConflict
	case CodeInvalidTransition:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
