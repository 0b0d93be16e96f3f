package session

import (
	"github.com/iudanet/lingua/internal/models"
)

// IsAdmin true, если роль пользователя admin или moderator
func (m *Manager) IsAdmin() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil && IsAdminRole(m.user.Role)
}

// IsAdminRole роли с доступом к панели администратора через сессию
func IsAdminRole(role models.Role) bool {
	return role == models.RoleAdmin || role == models.RoleModerator
}

// IsPremium true, если есть активная платная подписка
func (m *Manager) IsPremium() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sub := m.subscription
	return sub != nil && sub.Plan != models.PlanFree && sub.Status == models.StatusActive
}

// CanUseFeature сообщает, можно ли использовать функцию amount раз.
// Без подписки доступ закрыт. Неизвестная функция считается недоступной.
func (m *Manager) CanUseFeature(feature string, amount int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sub := m.subscription
	if sub == nil {
		return false
	}

	limit, ok := sub.Limit(feature)
	if !ok {
		return false
	}
	if limit == models.Unlimited {
		return true
	}
	return sub.Used(feature)+amount <= limit
}

// RemainingUsage остаток лимита функции: 0 без подписки, -1 если без ограничений
func (m *Manager) RemainingUsage(feature string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sub := m.subscription
	if sub == nil {
		return 0
	}

	limit, ok := sub.Limit(feature)
	if !ok {
		return 0
	}
	if limit == models.Unlimited {
		return models.Unlimited
	}
	return max(0, limit-sub.Used(feature))
}

// UpdateSubscription изменяет подписку на месте: непустые Plan и Status
// заменяются, лимиты и потребление сливаются по ключам.
func (m *Manager) UpdateSubscription(update models.Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.subscription == nil {
		m.subscription = update.Clone()
		return
	}

	sub := m.subscription
	if update.Plan != "" {
		sub.Plan = update.Plan
	}
	if update.Status != "" {
		sub.Status = update.Status
	}
	if sub.Features == nil {
		sub.Features = make(map[string]int)
	}
	for k, v := range update.Features {
		sub.Features[k] = v
	}
	if sub.Usage.CurrentPeriod == nil {
		sub.Usage.CurrentPeriod = make(map[string]int)
	}
	for k, v := range update.Usage.CurrentPeriod {
		sub.Usage.CurrentPeriod[k] = v
	}
}

// RecordUsage локально увеличивает потребление функции в текущем периоде
func (m *Manager) RecordUsage(feature string, amount int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.subscription == nil || amount <= 0 {
		return
	}
	if m.subscription.Usage.CurrentPeriod == nil {
		m.subscription.Usage.CurrentPeriod = make(map[string]int)
	}
	m.subscription.Usage.CurrentPeriod[feature] += amount
}
