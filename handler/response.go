package handler

import (
	"encoding/json"
	"net/http"
)

type jsonResponse struct {
	status  int
	headers http.Header
	body    any
}

func (j *jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	for k, v := range j.headers {
		w.Header()[k] = v
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSONOption configures JSON.
type JSONOption func(*jsonResponse)

func WithStatus(status int) JSONOption {
	return func(r *jsonResponse) { r.status = status }
}

// WithCacheControl sets the Cache-Control header.
func WithCacheControl(value string) JSONOption {
	return WithHeader("Cache-Control", value)
}

func WithHeader(key, value string) JSONOption {
	return func(r *jsonResponse) { r.headers.Set(key, value) }
}

// JSON renders v as the response body with status 200 unless overridden.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK, headers: make(http.Header), body: v}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fail defers rendering of err to the error handler.
func Fail(err error) Response {
	return failure{err: err}
}

type failure struct{ err error }

func (f failure) Render(http.ResponseWriter, *http.Request) error { return f.err }
