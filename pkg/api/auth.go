package api

import "github.com/iudanet/lingua/internal/models"

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	NativeLanguage string `json:"nativeLanguage,omitempty"`
	TargetLanguage string `json:"targetLanguage,omitempty"`
	Level          string `json:"level,omitempty"`
}

// TokenPair пара токенов доступа
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthPayload данные ответа на login/register.
// Сервер может вернуть токены как на верхнем уровне, так и во вложенном объекте tokens.
type AuthPayload struct {
	User         *models.UserProfile  `json:"user"`
	Subscription *models.Subscription `json:"subscription,omitempty"`
	Tokens       *TokenPair           `json:"tokens,omitempty"`
	AccessToken  string               `json:"accessToken,omitempty"`
	RefreshToken string               `json:"refreshToken,omitempty"`
}

// Pair возвращает токены независимо от формы ответа
func (p *AuthPayload) Pair() TokenPair {
	pair := TokenPair{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
	if p.Tokens != nil {
		if pair.AccessToken == "" {
			pair.AccessToken = p.Tokens.AccessToken
		}
		if pair.RefreshToken == "" {
			pair.RefreshToken = p.Tokens.RefreshToken
		}
	}
	return pair
}

// MePayload данные ответа GET /auth/me
type MePayload struct {
	User         *models.UserProfile  `json:"user"`
	Subscription *models.Subscription `json:"subscription,omitempty"`
}

// RefreshRequest запрос на обновление access token
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse ответ на обновление токена.
// RefreshToken заполняется только если сервер ротирует refresh token.
type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// LogoutRequest тело запроса на выход
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

// ChangePasswordRequest запрос на смену пароля
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ProfileUpdate поля профиля, доступные для изменения.
// Пустые поля не отправляются.
type ProfileUpdate struct {
	Username       string `json:"username,omitempty"`
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	Avatar         string `json:"avatar,omitempty"`
	NativeLanguage string `json:"nativeLanguage,omitempty"`
	TargetLanguage string `json:"targetLanguage,omitempty"`
	Level          string `json:"level,omitempty"`
}

// ChatRequest сообщение для AI-чата
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
}

// ChatResponse ответ AI-чата
type ChatResponse struct {
	Reply          string `json:"reply"`
	ConversationID string `json:"conversationId,omitempty"`
	XPEarned       int    `json:"xpEarned,omitempty"`
}
