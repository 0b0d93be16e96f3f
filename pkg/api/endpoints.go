package api

// Пути API относительно базового URL (базовый URL уже содержит префикс /api)
const (
	PathLogin          = "/auth/login"
	PathRegister       = "/auth/register"
	PathLogout         = "/auth/logout"
	PathRefresh        = "/auth/refresh"
	PathMe             = "/auth/me"
	PathProfile        = "/auth/profile"
	PathChangePassword = "/auth/change-password"

	PathUserDashboard   = "/users/dashboard"
	PathUserProgress    = "/users/progress"
	PathUserLeaderboard = "/users/leaderboard"
	PathUserStatistics  = "/users/statistics"
	PathUserGoals       = "/users/goals"
	PathUserBadges      = "/users/badges"
	PathUserSearch      = "/users/search"
	PathUserAvatar      = "/users/avatar"

	PathAIChat                 = "/ai/chat"
	PathAIGrammarCheck         = "/ai/grammar-check"
	PathAITranslate            = "/ai/translate"
	PathAIVocabularyPractice   = "/ai/vocabulary-practice"
	PathAIConversationStarters = "/ai/conversation-starters"
	PathAIUsage                = "/ai/usage"

	PathLessons               = "/lessons"
	PathLessonsPopular        = "/lessons/popular"
	PathLessonsRecommendation = "/lessons/recommendations"
	PathLessonsSearch         = "/lessons/search"

	PathProgress = "/progress"
	PathQuizzes  = "/quizzes"

	PathSubscriptionPlans   = "/subscriptions/plans"
	PathSubscriptionCurrent = "/subscriptions/current"
	PathSubscriptionCreate  = "/subscriptions/create"
	PathSubscriptionUpdate  = "/subscriptions/update"
	PathSubscriptionCancel  = "/subscriptions/cancel"
	PathSubscriptionBilling = "/subscriptions/billing-history"

	PathAdminDashboard     = "/admin/dashboard"
	PathAdminUsers         = "/admin/users"
	PathAdminLessons       = "/admin/lessons"
	PathAdminVocabulary    = "/admin/vocabulary"
	PathAdminSubscriptions = "/admin/subscriptions"
	PathAdminSettings      = "/admin/settings"
)

// LessonPath путь к конкретному уроку
func LessonPath(id string) string {
	return PathLessons + "/" + id
}
