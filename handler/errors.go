package handler

import (
	"errors"
	"net/http"
)

var ErrNilResponse = errors.New("handler returned nil response")

// HTTPError is a transport-level failure with a status and a machine-readable key.
type HTTPError struct {
	Code int
	Key  string
}

func (e HTTPError) Error() string { return e.Key }

var (
	ErrBadRequest          = HTTPError{Code: http.StatusBadRequest, Key: "BAD_REQUEST"}
	ErrUnauthorized        = HTTPError{Code: http.StatusUnauthorized, Key: "UNAUTHORIZED"}
	ErrForbidden           = HTTPError{Code: http.StatusForbidden, Key: "FORBIDDEN"}
	ErrNotFound            = HTTPError{Code: http.StatusNotFound, Key: "NOT_FOUND"}
	ErrMethodNotAllowed    = HTTPError{Code: http.StatusMethodNotAllowed, Key: "METHOD_NOT_ALLOWED"}
	ErrConflict            = HTTPError{Code: http.StatusConflict, Key: "CONFLICT"}
	ErrTooManyRequests     = HTTPError{Code: http.StatusTooManyRequests, Key: "TOO_MANY_REQUESTS"}
	ErrInternalServerError = HTTPError{Code: http.StatusInternalServerError, Key: "INTERNAL_ERROR"}
)

// CodedError is implemented by domain errors that carry their own HTTP status
// and client-facing code. Its Error text is shown to the client.
type CodedError interface {
	error
	StatusCode() int
	Code() string
}

// DetailedError adds extra top-level fields to the error body.
type DetailedError interface {
	Details() map[string]any
}
