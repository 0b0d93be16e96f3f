package boltdb

import (
	"context"
	"fmt"
	"sync"

	"go.etcd.io/bbolt"

	"github.com/iudanet/lingua/internal/client/storage"
)

var (
	// BoltDB bucket names
	bucketTokens = []byte("tokens")
	bucketLocal  = []byte("local")
)

// Storage represents BoltDB storage implementation for client.
// It plays the role of browser local storage: a token bucket and
// a generic string key/value bucket.
type Storage struct {
	db *bbolt.DB
	mu sync.RWMutex
}

// Compile-time checks
var (
	_ storage.TokenStorage = (*Storage)(nil)
	_ storage.LocalStorage = (*Storage)(nil)
)

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	// Открываем BoltDB
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	s := &Storage{db: db}

	// Инициализируем buckets
	if err := s.initBuckets(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return s, nil
}

// Close closes the database connection. Repeated calls are no-ops.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketTokens, bucketLocal} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// get читает значение ключа из bucket
func (s *Storage) get(bucketName []byte, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return "", storage.ErrStorageClosed
	}

	var value string
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return fmt.Errorf("%s bucket not found", bucketName)
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return storage.ErrNotFound
		}
		// Данные bbolt валидны только внутри транзакции, копируем
		value = string(data)
		return nil
	})
	if err != nil {
		return "", err
	}

	return value, nil
}

// put сохраняет значение ключа в bucket
func (s *Storage) put(bucketName []byte, key, value string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return fmt.Errorf("%s bucket not found", bucketName)
		}

		if err := bucket.Put([]byte(key), []byte(value)); err != nil {
			return fmt.Errorf("failed to save %q: %w", key, err)
		}
		return nil
	})
}

// remove удаляет ключ из bucket, отсутствие ключа не ошибка
func (s *Storage) remove(bucketName []byte, key string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return fmt.Errorf("%s bucket not found", bucketName)
		}

		if err := bucket.Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete %q: %w", key, err)
		}
		return nil
	})
}
