// Package guard решает, можно ли показать защищенное представление.
package guard

import (
	"context"

	"github.com/iudanet/lingua/internal/client/nav"
	"github.com/iudanet/lingua/internal/client/session"
	"github.com/iudanet/lingua/internal/models"
)

// Kind исход проверки
type Kind int

const (
	// Allow представление можно показать
	Allow Kind = iota
	// Pending сессия еще загружается, показывается заглушка
	Pending
	// Redirect нужно перейти на Target
	Redirect
)

func (k Kind) String() string {
	switch k {
	case Allow:
		return "allow"
	case Pending:
		return "pending"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

// Decision результат проверки доступа
type Decision struct {
	Target nav.Route
	Kind   Kind
}

// RequireAuth пропускает только авторизованного пользователя
func RequireAuth(sess session.Session) Decision {
	switch {
	case sess.Loading:
		return Decision{Kind: Pending}
	case sess.Authenticated():
		return Decision{Kind: Allow}
	}
	return Decision{Kind: Redirect, Target: nav.RouteLogin}
}

// RequireAdmin пропускает администратора.
// Без пользователя ведет на вход администратора, обычного пользователя на dashboard.
func RequireAdmin(ctx context.Context, sess session.Session, legacy *LegacyAdminStore) Decision {
	if sess.Loading {
		return Decision{Kind: Pending}
	}
	if HasAdminAccess(ctx, sess, legacy) {
		return Decision{Kind: Allow}
	}
	if sess.Authenticated() {
		return Decision{Kind: Redirect, Target: nav.RouteDashboard}
	}
	return Decision{Kind: Redirect, Target: nav.RouteAdminLogin}
}

// HasAdminAccess проверяет роль в сессии, затем отдельную admin-сессию
func HasAdminAccess(ctx context.Context, sess session.Session, legacy *LegacyAdminStore) bool {
	if sess.User != nil && session.IsAdminRole(sess.User.Role) {
		return true
	}
	if legacy == nil {
		return false
	}

	admin, ok := legacy.Load(ctx)
	if !ok {
		return false
	}
	return LegacyRoleAllowed(admin.User.Role)
}

// LegacyRoleAllowed роли, которым выдается отдельная admin-сессия
func LegacyRoleAllowed(role models.Role) bool {
	return session.IsAdminRole(role) || role == models.RoleSuperAdmin
}
