package session

import (
	"time"

	"github.com/iudanet/lingua/internal/models"
)

// AddXP начисляет опыт локально и пересчитывает уровень.
// Сервер не вызывается: это оптимистичное обновление, которое не сверяется
// с сервером. Возвращает true, если уровень вырос.
func (m *Manager) AddXP(amount int) bool {
	if amount <= 0 {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return false
	}

	prevLevel := models.LevelFor(m.user.TotalXP)
	m.user.TotalXP += amount
	m.user.Level = models.LevelFor(m.user.TotalXP)

	return m.user.Level > prevLevel
}

// UpdateStreak локально обновляет серию дней активности по календарным дням:
// прошел ровно один день: серия растет, больше одного: начинается заново,
// в тот же день без изменений. Дата последней активности всегда обновляется.
// Возвращает текущую длину серии.
func (m *Manager) UpdateStreak() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return 0
	}

	now := m.now()
	u := m.user

	if u.LastActiveDate.IsZero() {
		// Первая активность
		u.CurrentStreak = 1
	} else {
		switch days := calendarDaysBetween(u.LastActiveDate.In(now.Location()), now); {
		case days == 1:
			u.CurrentStreak++
		case days > 1:
			u.CurrentStreak = 1
		}
	}

	if u.CurrentStreak > u.LongestStreak {
		u.LongestStreak = u.CurrentStreak
	}
	u.LastActiveDate = now

	return u.CurrentStreak
}

// calendarDaysBetween количество календарных дней от from до to.
// Полдень в UTC исключает влияние перехода на летнее время.
func calendarDaysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 12, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 12, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
