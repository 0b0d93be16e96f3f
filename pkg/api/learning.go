package api

// LessonSummary краткое описание урока в списках
type LessonSummary struct {
	ID       string `json:"id"`
	MongoID  string `json:"_id,omitempty"`
	Title    string `json:"title"`
	Language string `json:"language,omitempty"`
	Level    string `json:"level,omitempty"`
	Category string `json:"category,omitempty"`
}

// Key возвращает идентификатор урока в любой из форм
func (l LessonSummary) Key() string {
	if l.ID != "" {
		return l.ID
	}
	return l.MongoID
}

// LeaderboardEntry строка таблицы лидеров
type LeaderboardEntry struct {
	Username string `json:"username"`
	TotalXP  int    `json:"totalXP"`
	Level    int    `json:"level"`
	Rank     int    `json:"rank,omitempty"`
}

// AvatarResponse ответ на загрузку аватара
type AvatarResponse struct {
	Avatar string `json:"avatar"`
}
