package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/iudanet/lingua/internal/client/api"
	"github.com/iudanet/lingua/internal/client/auth"
	"github.com/iudanet/lingua/internal/models"
	"github.com/iudanet/lingua/internal/validation"
	pkgapi "github.com/iudanet/lingua/pkg/api"
)

// Общие сообщения об ошибках, если сервер не прислал своего
const (
	msgLoginFailed          = "Login failed. Please try again."
	msgSignupFailed         = "Registration failed. Please try again."
	msgProfileUpdateFailed  = "Profile update failed. Please try again."
	msgPasswordChangeFailed = "Password change failed. Please try again."
	msgSubscriptionFailed   = "Failed to load subscription."
	msgInvalidResponse      = "Unexpected response from server."
	msgNotAuthenticated     = "Not authenticated."
)

// API операции HTTP клиента, которыми пользуется Manager
type API interface {
	Get(ctx context.Context, endpoint string, params url.Values) (*api.Result, error)
	Post(ctx context.Context, endpoint string, body any) (*api.Result, error)
	Put(ctx context.Context, endpoint string, body any) (*api.Result, error)
	Refresh(ctx context.Context) (string, error)
}

// Tokens хранилище токенов, которым пользуется Manager
type Tokens interface {
	Get(ctx context.Context, kind auth.TokenKind) (string, bool, error)
	SetPair(ctx context.Context, access, refresh string) error
	ClearAll(ctx context.Context) error
}

// Option настройка Manager
type Option func(*Manager)

// WithClock задает источник текущего времени (для расчета серии дней)
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// Manager владеет сессией и выполняет все операции над ней
type Manager struct {
	api          API
	tokens       Tokens
	logger       *slog.Logger
	now          func() time.Time
	user         *models.UserProfile
	subscription *models.Subscription
	state        State
	mu           sync.RWMutex
}

// NewManager создает Manager с пустой сессией в состоянии загрузки
func NewManager(apiClient API, tokens Tokens, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		api:    apiClient,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
		state:  StateUninitialized,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Snapshot возвращает независимую копию сессии
func (m *Manager) Snapshot() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Session{
		User:         m.user.Clone(),
		Subscription: m.subscription.Clone(),
		Loading:      m.state == StateUninitialized,
	}
}

// State возвращает текущее состояние жизненного цикла
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// CheckAuthStatus выполняется один раз при старте.
// Без сохраненного access token сессия сразу становится анонимной.
// Иначе токен проверяется запросом текущего пользователя; при неудаче
// токены удаляются. В любом случае загрузка завершается.
func (m *Manager) CheckAuthStatus(ctx context.Context) State {
	_, found, err := m.tokens.Get(ctx, auth.AccessToken)
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to read access token", "error", err)
	}
	if !found {
		m.reset()
		return StateAnonymous
	}

	res, err := m.api.Get(ctx, pkgapi.PathMe, nil)
	if err != nil || !res.Success {
		m.logger.InfoContext(ctx, "stored session is no longer valid", "status", statusOf(res), "error", err)
		m.clearTokens(ctx)
		m.reset()
		return StateAnonymous
	}

	var payload pkgapi.MePayload
	if err := decodeUserPayload(res, &payload.User, &payload.Subscription); err != nil {
		m.logger.WarnContext(ctx, "invalid current user response", "error", err)
		m.clearTokens(ctx)
		m.reset()
		return StateAnonymous
	}

	m.populate(payload.User, payload.Subscription)
	m.logger.DebugContext(ctx, "session restored", "user_id", payload.User.ID)
	return StateAuthenticated
}

// Login выполняет вход по email и паролю
func (m *Manager) Login(ctx context.Context, email, password string) Outcome {
	if err := validation.ValidateCredentials(email, password); err != nil {
		return failed(err.Error())
	}

	res, err := m.api.Post(ctx, pkgapi.PathLogin, pkgapi.LoginRequest{Email: email, Password: password})
	return m.completeAuth(ctx, res, err, msgLoginFailed)
}

// Signup регистрирует пользователя; контракт как у Login
func (m *Manager) Signup(ctx context.Context, fields pkgapi.RegisterRequest) Outcome {
	if err := validation.ValidateUsername(fields.Username); err != nil {
		return failed(err.Error())
	}
	if err := validation.ValidateEmail(fields.Email); err != nil {
		return failed(err.Error())
	}
	if err := validation.ValidatePassword(fields.Password); err != nil {
		return failed(err.Error())
	}

	res, err := m.api.Post(ctx, pkgapi.PathRegister, fields)
	return m.completeAuth(ctx, res, err, msgSignupFailed)
}

// completeAuth сохраняет токены и заполняет сессию по ответу login/register
func (m *Manager) completeAuth(ctx context.Context, res *api.Result, err error, fallback string) Outcome {
	if err != nil {
		return failed(err.Error())
	}
	if !res.Success {
		return failed(res.ErrorMessage(fallback))
	}

	var payload pkgapi.AuthPayload
	if err := res.Decode(&payload); err != nil {
		m.logger.WarnContext(ctx, "invalid auth response", "error", err)
		return failed(msgInvalidResponse)
	}

	pair := payload.Pair()
	if payload.User == nil || pair.AccessToken == "" {
		m.logger.WarnContext(ctx, "auth response without user or access token")
		return failed(msgInvalidResponse)
	}

	if err := m.tokens.SetPair(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		m.logger.ErrorContext(ctx, "failed to persist tokens", "error", err)
		return failed(fmt.Sprintf("failed to save session: %v", err))
	}

	m.populate(payload.User, payload.Subscription)
	m.logger.InfoContext(ctx, "user authenticated", "user_id", payload.User.ID, "role", string(payload.User.Role))
	return ok()
}

// Logout уведомляет сервер (результат игнорируется), затем всегда удаляет
// токены и очищает сессию. Ошибка возвращается только если не удалось
// удалить токены из хранилища; сессия очищается и в этом случае.
func (m *Manager) Logout(ctx context.Context) error {
	refreshToken, _, err := m.tokens.Get(ctx, auth.RefreshToken)
	if err != nil {
		m.logger.DebugContext(ctx, "no refresh token during logout", "error", err)
	}

	// Пытаемся уведомить сервер о logout (best effort)
	res, err := m.api.Post(ctx, pkgapi.PathLogout, pkgapi.LogoutRequest{RefreshToken: refreshToken})
	if err != nil || !res.Success {
		m.logger.WarnContext(ctx, "failed to logout on server", "status", statusOf(res), "error", err)
	}

	// Всегда удаляем локальные данные, даже если сервер недоступен
	clearErr := m.tokens.ClearAll(ctx)
	m.reset()

	if clearErr != nil {
		return fmt.Errorf("failed to delete local tokens: %w", clearErr)
	}
	return nil
}

// UpdateProfile сохраняет изменения профиля и заменяет пользователя в сессии
func (m *Manager) UpdateProfile(ctx context.Context, fields pkgapi.ProfileUpdate) Outcome {
	if !m.Snapshot().Authenticated() {
		return failed(msgNotAuthenticated)
	}
	if fields.Username != "" {
		if err := validation.ValidateUsername(fields.Username); err != nil {
			return failed(err.Error())
		}
	}

	res, err := m.api.Put(ctx, pkgapi.PathProfile, fields)
	if out, done := m.failure(res, err, msgProfileUpdateFailed); done {
		return out
	}

	var user *models.UserProfile
	if err := decodeUserPayload(res, &user, nil); err != nil {
		m.logger.WarnContext(ctx, "invalid profile response", "error", err)
		return failed(msgInvalidResponse)
	}

	m.mu.Lock()
	if m.user != nil {
		user.Level = models.LevelFor(user.TotalXP)
		m.user = user
	}
	m.mu.Unlock()

	return ok()
}

// ChangePassword меняет пароль; сессия не изменяется
func (m *Manager) ChangePassword(ctx context.Context, current, newPassword string) Outcome {
	if current == "" {
		return failed("current password cannot be empty")
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return failed(err.Error())
	}

	res, err := m.api.Put(ctx, pkgapi.PathChangePassword, pkgapi.ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     newPassword,
	})
	if out, done := m.failure(res, err, msgPasswordChangeFailed); done {
		return out
	}
	return ok()
}

// RefreshToken принудительно обновляет access token.
// При неудаче выполняет Logout и возвращает ошибку.
func (m *Manager) RefreshToken(ctx context.Context) error {
	if _, err := m.api.Refresh(ctx); err != nil {
		if logoutErr := m.Logout(ctx); logoutErr != nil {
			m.logger.ErrorContext(ctx, "logout after refresh failure failed", "error", logoutErr)
		}
		return fmt.Errorf("token refresh failed: %w", err)
	}
	return nil
}

// LoadSubscription загружает текущую подписку и заменяет ее в сессии целиком
func (m *Manager) LoadSubscription(ctx context.Context) Outcome {
	if !m.Snapshot().Authenticated() {
		return failed(msgNotAuthenticated)
	}

	res, err := m.api.Get(ctx, pkgapi.PathSubscriptionCurrent, nil)
	if out, done := m.failure(res, err, msgSubscriptionFailed); done {
		return out
	}

	sub, err := decodeSubscription(res)
	if err != nil {
		m.logger.WarnContext(ctx, "invalid subscription response", "error", err)
		return failed(msgInvalidResponse)
	}

	m.mu.Lock()
	m.subscription = sub
	m.mu.Unlock()
	return ok()
}

// failure обрабатывает общий неуспешный исход запроса.
// Истечение сессии переводит Manager в анонимное состояние.
func (m *Manager) failure(res *api.Result, err error, fallback string) (Outcome, bool) {
	if err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			m.reset()
		}
		return failed(err.Error()), true
	}
	if !res.Success {
		return failed(res.ErrorMessage(fallback)), true
	}
	return Outcome{}, false
}

func (m *Manager) populate(user *models.UserProfile, sub *models.Subscription) {
	user = user.Clone()
	user.Level = models.LevelFor(user.TotalXP)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = user
	m.subscription = sub.Clone()
	m.state = StateAuthenticated
}

func (m *Manager) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
	m.subscription = nil
	m.state = StateAnonymous
}

func (m *Manager) clearTokens(ctx context.Context) {
	if err := m.tokens.ClearAll(ctx); err != nil {
		m.logger.ErrorContext(ctx, "failed to clear tokens", "error", err)
	}
}

// decodeUserPayload разбирает ответ вида {user, subscription} или сам профиль
func decodeUserPayload(res *api.Result, user **models.UserProfile, sub **models.Subscription) error {
	var payload pkgapi.MePayload
	if err := res.Decode(&payload); err != nil {
		return err
	}
	if payload.User == nil {
		var direct models.UserProfile
		if err := json.Unmarshal(res.Data, &direct); err != nil || direct.ID == "" {
			return fmt.Errorf("response has no user")
		}
		payload.User = &direct
	}

	*user = payload.User
	if sub != nil {
		*sub = payload.Subscription
	}
	return nil
}

// decodeSubscription разбирает ответ вида {subscription} или саму подписку
func decodeSubscription(res *api.Result) (*models.Subscription, error) {
	var wrapped struct {
		Subscription *models.Subscription `json:"subscription"`
	}
	if err := res.Decode(&wrapped); err != nil {
		return nil, err
	}
	if wrapped.Subscription != nil {
		return wrapped.Subscription, nil
	}

	var sub models.Subscription
	if err := json.Unmarshal(res.Data, &sub); err != nil || sub.Plan == "" {
		return nil, fmt.Errorf("response has no subscription")
	}
	return &sub, nil
}

func statusOf(res *api.Result) int {
	if res == nil {
		return 0
	}
	return res.Status
}
