package storage

import "errors"

// Common client storage errors
var (
	// ErrNotFound indicates that the requested key has no stored value
	ErrNotFound = errors.New("value not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
