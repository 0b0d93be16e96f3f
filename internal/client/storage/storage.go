package storage

import "context"

// TokenStorage defines interface for persisting auth tokens on client.
// This is the lowest storage layer: values are opaque strings stored as-is.
type TokenStorage interface {
	// GetToken retrieves a token by name
	// Returns ErrNotFound if no token is stored under the name
	GetToken(ctx context.Context, name string) (string, error)

	// SaveToken stores a token, replacing any previous value
	SaveToken(ctx context.Context, name, value string) error

	// DeleteToken removes a token; deleting a missing token is not an error
	DeleteToken(ctx context.Context, name string) error
}

// LocalStorage is a string key/value store for loosely related client state
// (preferences, onboarding answers, legacy admin flags).
type LocalStorage interface {
	// GetItem returns ErrNotFound if the key is absent
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
	// RemoveItem removes a key; removing a missing key is not an error
	RemoveItem(ctx context.Context, key string) error
}
