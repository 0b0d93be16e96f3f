package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

// UsernamePattern определяет допустимый формат username
// Латинские буквы, цифры, нижнее подчеркивание, точка и дефис; длина 3-30 символов
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,30}$`)

const (
	// MinUsernameLen минимальная длина username
	MinUsernameLen = 3
	// MaxUsernameLen максимальная длина username
	MaxUsernameLen = 30
	// MinPasswordLen минимальная длина пароля
	MinPasswordLen = 8
)

// ValidateUsername проверяет, что username соответствует требованиям
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	if len(username) < MinUsernameLen {
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLen)
	}

	if len(username) > MaxUsernameLen {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLen)
	}

	if !UsernamePattern.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, dots, dashes and underscores")
	}

	return nil
}

// ValidateEmail проверяет адрес электронной почты.
// Допускается только голый адрес, без отображаемого имени.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("email cannot be empty")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("email is not a valid address")
	}

	return nil
}

// ValidatePassword проверяет минимальные требования к паролю при регистрации и смене пароля
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}

	return nil
}

// ValidateCredentials проверяет пару email/пароль перед логином.
// При логине длина пароля не проверяется: старые аккаунты могли иметь более короткие пароли.
func ValidateCredentials(email, password string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	return nil
}
