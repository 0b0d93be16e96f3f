package guard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/lingua/internal/client/storage"
	"github.com/iudanet/lingua/internal/models"
)

// Ключи отдельно выданной admin-сессии в локальном хранилище
const (
	KeyAdminToken = "adminToken"
	KeyAdminUser  = "adminUser"
)

// LegacyAdmin admin-сессия, выданная отдельно от основной
type LegacyAdmin struct {
	User  *models.UserProfile
	Token string
}

// LegacyAdminStore читает и записывает флаги admin-сессии
type LegacyAdminStore struct {
	local  storage.LocalStorage
	logger *slog.Logger
}

// NewLegacyAdminStore создает LegacyAdminStore поверх локального хранилища
func NewLegacyAdminStore(local storage.LocalStorage, logger *slog.Logger) *LegacyAdminStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &LegacyAdminStore{local: local, logger: logger}
}

// Load возвращает сохраненную admin-сессию.
// Поврежденный adminUser удаляется вместе с токеном, сессия считается отсутствующей.
func (s *LegacyAdminStore) Load(ctx context.Context) (*LegacyAdmin, bool) {
	token, err := s.item(ctx, KeyAdminToken)
	if err != nil || token == "" {
		return nil, false
	}

	raw, err := s.item(ctx, KeyAdminUser)
	if err != nil || raw == "" {
		return nil, false
	}

	var user models.UserProfile
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.WarnContext(ctx, "discarding malformed admin user", "error", err)
		if clearErr := s.Clear(ctx); clearErr != nil {
			s.logger.ErrorContext(ctx, "failed to remove malformed admin session", "error", clearErr)
		}
		return nil, false
	}

	return &LegacyAdmin{Token: token, User: &user}, true
}

// Save сохраняет admin-сессию
func (s *LegacyAdminStore) Save(ctx context.Context, token string, user *models.UserProfile) error {
	if token == "" || user == nil {
		return fmt.Errorf("admin token and user are required")
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal admin user: %w", err)
	}

	if err := s.local.SetItem(ctx, KeyAdminToken, token); err != nil {
		return fmt.Errorf("failed to save admin token: %w", err)
	}
	if err := s.local.SetItem(ctx, KeyAdminUser, string(data)); err != nil {
		return fmt.Errorf("failed to save admin user: %w", err)
	}
	return nil
}

// Clear удаляет оба ключа admin-сессии
func (s *LegacyAdminStore) Clear(ctx context.Context) error {
	return errors.Join(
		s.local.RemoveItem(ctx, KeyAdminToken),
		s.local.RemoveItem(ctx, KeyAdminUser),
	)
}

func (s *LegacyAdminStore) item(ctx context.Context, key string) (string, error) {
	v, err := s.local.GetItem(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to read local item", "key", key, "error", err)
		return "", err
	}
	return v, nil
}
