// Package session владеет состоянием сессии: текущим пользователем и подпиской.
//
// Manager единственный писатель этих данных. Остальные компоненты получают
// копию через Snapshot и изменяют сессию только через операции Manager.
package session

import (
	"github.com/iudanet/lingua/internal/models"
)

// State состояние жизненного цикла сессии
type State int

const (
	// StateUninitialized проверка авторизации при старте еще не выполнялась
	StateUninitialized State = iota
	// StateAnonymous пользователь не авторизован
	StateAnonymous
	// StateAuthenticated пользователь авторизован
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// Session снимок состояния сессии
type Session struct {
	User         *models.UserProfile
	Subscription *models.Subscription
	Loading      bool
}

// Authenticated сообщает, есть ли в сессии пользователь
func (s Session) Authenticated() bool {
	return s.User != nil
}

// Outcome результат операции сессии для слоя представления.
// Error содержит сообщение сервера или общее сообщение, если Success == false.
type Outcome struct {
	Error   string
	Success bool
}

func ok() Outcome {
	return Outcome{Success: true}
}

func failed(msg string) Outcome {
	return Outcome{Error: msg}
}
