package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/fleetdesk/pkg/binder"
	"github.com/dmitrymomot/fleetdesk/pkg/logger"
	"github.com/dmitrymomot/fleetdesk/pkg/validator"
)

// ErrorBody is the JSON shape of every error response. Extra carries
// error-specific fields that are flattened next to code and message.
type ErrorBody struct {
	Code    string
	Message string
	Fields  map[string][]string
	Extra   map[string]any
}

func (b ErrorBody) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(b.Extra)+3)
	for k, v := range b.Extra {
		out[k] = v
	}
	out["code"] = b.Code
	out["message"] = b.Message
	if len(b.Fields) > 0 {
		out["fields"] = b.Fields
	}
	return json.Marshal(out)
}

// Classify maps err to a status code and response body. Unclassified
// errors become 500 and keep their message.
func Classify(err error) (int, ErrorBody) {
	var (
		coded   CodedError
		httpErr HTTPError
	)
	switch {
	case errors.As(err, &coded):
		body := ErrorBody{Code: coded.Code(), Message: coded.Error()}
		var detailed DetailedError
		if errors.As(err, &detailed) {
			body.Extra = detailed.Details()
		}
		return coded.StatusCode(), body
	case validator.IsValidationError(err):
		return http.StatusUnprocessableEntity, ErrorBody{
			Code:    "VALIDATION_ERROR",
			Message: "Validation failed",
			Fields:  validator.ExtractValidationErrors(err).Fields(),
		}
	case errors.Is(err, binder.ErrFailedToParseJSON),
		errors.Is(err, binder.ErrInvalidQuery),
		errors.Is(err, binder.ErrInvalidPath),
		errors.Is(err, binder.ErrMissingContentType):
		return http.StatusBadRequest, ErrorBody{Code: ErrBadRequest.Key, Message: err.Error()}
	case errors.Is(err, binder.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, ErrorBody{Code: "UNSUPPORTED_MEDIA_TYPE", Message: err.Error()}
	case errors.As(err, &httpErr):
		return httpErr.Code, ErrorBody{Code: httpErr.Key, Message: http.StatusText(httpErr.Code)}
	default:
		return http.StatusInternalServerError, ErrorBody{Code: ErrInternalServerError.Key, Message: err.Error()}
	}
}

// WriteError classifies err, logs it (warn for 4xx, error for 5xx) and writes
// the JSON error body. A nil log skips logging.
func WriteError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, body := Classify(err)

	if log != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.LogAttrs(r.Context(), level, "request failed",
			logger.Error(err),
			logger.Code(body.Code),
			slog.Int("status_code", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("http"),
		)
	}

	if rerr := JSON(body, WithStatus(status)).Render(w, r); rerr != nil && log != nil {
		log.ErrorContext(r.Context(), "failed to write error response", logger.Error(rerr))
	}
}

// NewErrorHandler returns an ErrorHandler that logs through log.
func NewErrorHandler(log *slog.Logger) ErrorHandler[Context] {
	return func(ctx Context, err error) {
		WriteError(ctx.ResponseWriter(), ctx.Request(), log, err)
	}
}
