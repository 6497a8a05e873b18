// Package httpserver runs the API's http.Server with graceful shutdown and
// exposes liveness and readiness probe handlers.
package httpserver
