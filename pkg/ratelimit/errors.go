package ratelimit

import "errors"

var (
	ErrInvalidLimit     = errors.New("ratelimit: limit must be positive")
	ErrInvalidInterval  = errors.New("ratelimit: window must be positive")
	ErrKeyRequired      = errors.New("ratelimit: key is required")
	ErrStoreRequired    = errors.New("ratelimit: store is required")
	ErrStoreUnavailable = errors.New("ratelimit: store unavailable")
)
