package driver

import (
	"errors"
	"net/http"
)

// DuplicateError reports a unique field already taken by another driver.
type DuplicateError struct {
	Field   string
	Message string
}

func (e *DuplicateError) Error() string   { return e.Message }
func (e *DuplicateError) StatusCode() int { return http.StatusBadRequest }
func (e *DuplicateError) Code() string    { return "DUPLICATE_DRIVER" }
func (e *DuplicateError) Details() map[string]any {
	return map[string]any{"field": e.Field}
}

// Error is a driver failure that carries its own HTTP status and code.
type Error struct {
	Status  int
	Key     string
	Message string
}

func (e *Error) Error() string   { return e.Message }
func (e *Error) StatusCode() int { return e.Status }
func (e *Error) Code() string    { return e.Key }

var (
	ErrNotFound = &Error{Status: http.StatusNotFound, Key: "DRIVER_NOT_FOUND", Message: "Driver not found"}

	ErrDuplicateEmail   = &DuplicateError{Field: "email", Message: "Email already exists"}
	ErrDuplicateLicense = &DuplicateError{Field: "licenseNumber", Message: "License number already exists"}

	ErrFailedToCreate = errors.New("failed to create driver")
	ErrFailedToUpdate = errors.New("failed to update driver")
)

// IsDuplicate reports whether err is a unique field clash.
func IsDuplicate(err error) bool {
	var de *DuplicateError
	return errors.As(err, &de)
}
