// Package clientip resolves the originating client address of a request
// behind reverse proxies and keeps it in the request context for rate
// limiting and logging.
package clientip
