package boltdb

import "context"

// GetToken retrieves a stored token
func (s *Storage) GetToken(ctx context.Context, name string) (string, error) {
	return s.get(bucketTokens, name)
}

// SaveToken stores a token as-is
func (s *Storage) SaveToken(ctx context.Context, name, value string) error {
	return s.put(bucketTokens, name, value)
}

// DeleteToken removes a stored token
func (s *Storage) DeleteToken(ctx context.Context, name string) error {
	return s.remove(bucketTokens, name)
}
