package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/lingua/internal/client/storage"
)

// TokenKind вид хранимого токена
type TokenKind string

const (
	// AccessToken короткоживущий токен, отправляется с каждым запросом
	AccessToken TokenKind = "accessToken"
	// RefreshToken используется только для получения нового access token
	RefreshToken TokenKind = "refreshToken"
)

// TokenStore хранит пару токенов. Каждый токен хранится независимо,
// формат значений не проверяется, срок действия не отслеживается.
type TokenStore struct {
	storage storage.TokenStorage
}

// NewTokenStore создает TokenStore поверх низкоуровневого хранилища
func NewTokenStore(storage storage.TokenStorage) *TokenStore {
	return &TokenStore{storage: storage}
}

// Get возвращает токен и признак его наличия.
// Отсутствие токена не является ошибкой.
func (s *TokenStore) Get(ctx context.Context, kind TokenKind) (string, bool, error) {
	value, err := s.storage.GetToken(ctx, string(kind))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read %s: %w", kind, err)
	}
	if value == "" {
		return "", false, nil
	}
	return value, true, nil
}

// Set сохраняет токен
func (s *TokenStore) Set(ctx context.Context, kind TokenKind, value string) error {
	if err := s.storage.SaveToken(ctx, string(kind), value); err != nil {
		return fmt.Errorf("failed to save %s: %w", kind, err)
	}
	return nil
}

// Clear удаляет токен
func (s *TokenStore) Clear(ctx context.Context, kind TokenKind) error {
	if err := s.storage.DeleteToken(ctx, string(kind)); err != nil {
		return fmt.Errorf("failed to clear %s: %w", kind, err)
	}
	return nil
}

// SetPair сохраняет оба токена. Пустой refresh token не сохраняется.
func (s *TokenStore) SetPair(ctx context.Context, access, refresh string) error {
	if err := s.Set(ctx, AccessToken, access); err != nil {
		return err
	}
	if refresh == "" {
		return nil
	}
	return s.Set(ctx, RefreshToken, refresh)
}

// ClearAll удаляет оба токена. Пытается удалить оба даже если первый не удалился.
func (s *TokenStore) ClearAll(ctx context.Context) error {
	return errors.Join(s.Clear(ctx, AccessToken), s.Clear(ctx, RefreshToken))
}
