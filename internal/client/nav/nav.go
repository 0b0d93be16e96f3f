// Package nav описывает маршруты клиента и принудительную навигацию.
package nav

import (
	"context"
	"log/slog"
	"sync"
)

// Route представление (экран) клиента
type Route string

const (
	RouteLogin      Route = "/login"
	RouteSignup     Route = "/signup"
	RouteDashboard  Route = "/dashboard"
	RouteAdminLogin Route = "/admin/login"
)

// Navigator выполняет принудительный переход на другое представление
type Navigator interface {
	Navigate(ctx context.Context, route Route)
}

// NavigatorFunc адаптер функции к Navigator
type NavigatorFunc func(ctx context.Context, route Route)

// Navigate вызывает f
func (f NavigatorFunc) Navigate(ctx context.Context, route Route) {
	f(ctx, route)
}

// Recorder запоминает запрошенные переходы.
// CLI проверяет его после выполнения команды, чтобы сообщить пользователю куда идти дальше.
type Recorder struct {
	logger *slog.Logger
	routes []Route
	mu     sync.Mutex
}

// NewRecorder создает Recorder
func NewRecorder(logger *slog.Logger) *Recorder {
	return &Recorder{logger: logger}
}

// Navigate фиксирует переход
func (r *Recorder) Navigate(ctx context.Context, route Route) {
	r.mu.Lock()
	r.routes = append(r.routes, route)
	r.mu.Unlock()

	if r.logger != nil {
		r.logger.DebugContext(ctx, "navigation requested", "route", string(route))
	}
}

// Last возвращает последний запрошенный переход
func (r *Recorder) Last() (Route, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.routes) == 0 {
		return "", false
	}
	return r.routes[len(r.routes)-1], true
}

// Routes возвращает копию всех запрошенных переходов
func (r *Recorder) Routes() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Route(nil), r.routes...)
}
