package boltdb

import "context"

// GetItem returns the value stored under key in the local bucket
func (s *Storage) GetItem(ctx context.Context, key string) (string, error) {
	return s.get(bucketLocal, key)
}

// SetItem stores value under key in the local bucket
func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	return s.put(bucketLocal, key, value)
}

// RemoveItem deletes key from the local bucket
func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	return s.remove(bucketLocal, key)
}
