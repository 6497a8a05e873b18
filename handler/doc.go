// Package handler turns typed functions into http.HandlerFunc values.
//
// A HandlerFunc receives a Context and a request struct that binders fill
// from the body or query string, and returns a Response. Failures from binding,
// the handler or rendering go to an ErrorHandler. The default handler renders
// the flat JSON error body used across the API:
//
//	{"code": "DRIVER_LIMIT_REACHED", "message": "...", "currentCount": 25}
//
// Domain errors control their status and code by implementing CodedError, and
// contribute extra fields through DetailedError. Unknown errors become a
// generic 500 and are logged at error level.
package handler
