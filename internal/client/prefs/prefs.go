// Package prefs хранит локальные настройки интерфейса.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/iudanet/lingua/internal/client/storage"
)

// Ключи настроек в локальном хранилище
const (
	KeyTheme             = "theme"
	KeyPWADismissed      = "pwaDismissed"
	KeyOnboardingAnswers = "onboardingAnswers"
)

// Theme тема оформления
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// ErrInvalidTheme неизвестное значение темы
var ErrInvalidTheme = errors.New("invalid theme")

// ParseTheme проверяет значение темы
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(s); t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q (expected light, dark or system)", ErrInvalidTheme, s)
}

// Store настройки поверх локального хранилища
type Store struct {
	local storage.LocalStorage
}

// NewStore создает Store
func NewStore(local storage.LocalStorage) *Store {
	return &Store{local: local}
}

// Theme возвращает сохраненную тему; по умолчанию system.
// Поврежденное значение тоже дает system.
func (s *Store) Theme(ctx context.Context) (Theme, error) {
	v, err := s.local.GetItem(ctx, KeyTheme)
	if errors.Is(err, storage.ErrNotFound) {
		return ThemeSystem, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read theme: %w", err)
	}
	t, err := ParseTheme(v)
	if err != nil {
		return ThemeSystem, nil
	}
	return t, nil
}

// SetTheme сохраняет тему
func (s *Store) SetTheme(ctx context.Context, theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}
	return s.local.SetItem(ctx, KeyTheme, string(theme))
}

// PWADismissed сообщает, отклонил ли пользователь предложение установки
func (s *Store) PWADismissed(ctx context.Context) (bool, error) {
	v, err := s.local.GetItem(ctx, KeyPWADismissed)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read install prompt flag: %w", err)
	}
	dismissed, _ := strconv.ParseBool(v)
	return dismissed, nil
}

// DismissPWA запоминает отказ от установки
func (s *Store) DismissPWA(ctx context.Context) error {
	return s.local.SetItem(ctx, KeyPWADismissed, strconv.FormatBool(true))
}

// OnboardingAnswers возвращает ответы анкеты; nil если анкета не заполнялась.
// Поврежденный JSON удаляется.
func (s *Store) OnboardingAnswers(ctx context.Context) (map[string]any, error) {
	v, err := s.local.GetItem(ctx, KeyOnboardingAnswers)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read onboarding answers: %w", err)
	}

	var answers map[string]any
	if err := json.Unmarshal([]byte(v), &answers); err != nil {
		if rmErr := s.local.RemoveItem(ctx, KeyOnboardingAnswers); rmErr != nil {
			return nil, fmt.Errorf("failed to remove malformed onboarding answers: %w", rmErr)
		}
		return nil, nil
	}
	return answers, nil
}

// SetOnboardingAnswers сохраняет ответы анкеты целиком
func (s *Store) SetOnboardingAnswers(ctx context.Context, answers map[string]any) error {
	data, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("failed to marshal onboarding answers: %w", err)
	}
	return s.local.SetItem(ctx, KeyOnboardingAnswers, string(data))
}

// ClearOnboarding удаляет ответы анкеты
func (s *Store) ClearOnboarding(ctx context.Context) error {
	return s.local.RemoveItem(ctx, KeyOnboardingAnswers)
}
