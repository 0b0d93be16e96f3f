package models

import (
	"encoding/json"
	"time"
)

// XPPerLevel количество опыта на один уровень
const XPPerLevel = 1000

// Role роль пользователя
type Role string

const (
	RoleUser       Role = "user"
	RoleModerator  Role = "moderator"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Valid сообщает, является ли роль одной из известных
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// UserProfile представляет профиль пользователя, как его возвращает API
type UserProfile struct {
	LastActiveDate time.Time       `json:"lastActiveDate,omitzero"`
	Subscription   json.RawMessage `json:"subscription,omitempty"` // id или вложенный объект, клиент не интерпретирует
	ID             string          `json:"id"`
	Username       string          `json:"username"`
	Email          string          `json:"email"`
	Role           Role            `json:"role"`
	Avatar         string          `json:"avatar,omitempty"`
	TotalXP        int             `json:"totalXP"`
	Level          int             `json:"level"`
	CurrentStreak  int             `json:"currentStreak"`
	LongestStreak  int             `json:"longestStreak"`
}

// LevelFor вычисляет уровень по суммарному опыту: floor(xp/1000) + 1
func LevelFor(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return totalXP/XPPerLevel + 1
}

// Clone возвращает независимую копию профиля
func (u *UserProfile) Clone() *UserProfile {
	if u == nil {
		return nil
	}
	c := *u
	if u.Subscription != nil {
		c.Subscription = append(json.RawMessage(nil), u.Subscription...)
	}
	return &c
}
