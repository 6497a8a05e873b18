// Package binder decodes HTTP requests into typed request structs for the
// handler package: JSON bodies with strict field checking and query strings
// through `query` struct tags.
package binder
