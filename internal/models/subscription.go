package models

// Unlimited значение лимита, означающее отсутствие ограничения
const Unlimited = -1

// PlanFree название бесплатного плана
const PlanFree = "free"

// StatusActive статус действующей подписки
const StatusActive = "active"

// Usage потребление функций в текущем расчетном периоде
type Usage struct {
	CurrentPeriod map[string]int `json:"currentPeriod"`
}

// Subscription краткое описание подписки пользователя
type Subscription struct {
	Features map[string]int `json:"features"` // имя функции -> лимит, -1 = без ограничений
	Usage    Usage          `json:"usage"`
	Plan     string         `json:"plan"`
	Status   string         `json:"status"`
}

// Limit возвращает лимит функции и признак его наличия
func (s *Subscription) Limit(feature string) (int, bool) {
	limit, ok := s.Features[feature]
	return limit, ok
}

// Used возвращает потребление функции в текущем периоде (0 если не учитывалось)
func (s *Subscription) Used(feature string) int {
	return s.Usage.CurrentPeriod[feature]
}

// Clone возвращает независимую копию подписки
func (s *Subscription) Clone() *Subscription {
	if s == nil {
		return nil
	}
	c := *s
	c.Features = make(map[string]int, len(s.Features))
	for k, v := range s.Features {
		c.Features[k] = v
	}
	c.Usage.CurrentPeriod = make(map[string]int, len(s.Usage.CurrentPeriod))
	for k, v := range s.Usage.CurrentPeriod {
		c.Usage.CurrentPeriod[k] = v
	}
	return &c
}
