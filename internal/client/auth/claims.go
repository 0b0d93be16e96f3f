package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims сведения из access token, пригодные для отображения.
// Подпись не проверяется: клиент не владеет ключом и не принимает
// на их основе решений о доступе.
type TokenClaims struct {
	ExpiresAt time.Time
	IssuedAt  time.Time
	Subject   string
	UserID    string
	Role      string
}

// customClaims поля, которые сервер кладет в access token
type customClaims struct {
	UserID string `json:"userId"`
	ID     string `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// ParseClaims разбирает JWT без проверки подписи
func ParseClaims(token string) (*TokenClaims, error) {
	var claims customClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	result := &TokenClaims{
		Subject: claims.Subject,
		UserID:  claims.UserID,
		Role:    claims.Role,
	}
	if result.UserID == "" {
		result.UserID = claims.ID
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}

	return result, nil
}

// Expired сообщает, истек ли токен к моменту now.
// Токен без exp считается бессрочным.
func (c *TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}
