package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// LoggingTransport логирует исходящие запросы: метод, путь, статус, длительность.
// НЕ логирует sensitive данные (токены, тела запросов, query string).
type LoggingTransport struct {
	base   http.RoundTripper
	logger *slog.Logger
}

// NewLoggingTransport оборачивает base логированием
func NewLoggingTransport(base http.RoundTripper, logger *slog.Logger) *LoggingTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &LoggingTransport{base: base, logger: logger}
}

// RoundTrip implements http.RoundTripper
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := t.base.RoundTrip(req)

	duration := time.Since(start)
	attrs := []any{
		"method", req.Method,
		"path", sanitizePath(req.URL.Path),
		"request_id", req.Header.Get("X-Request-ID"),
		"duration_ms", duration.Milliseconds(),
	}

	if err != nil {
		t.logger.Log(req.Context(), slog.LevelError, "HTTP request failed", append(attrs, "error", err)...)
		return nil, err
	}

	// Определяем уровень логирования на основе статуса
	logLevel := slog.LevelDebug
	if resp.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if resp.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}

	t.logger.Log(req.Context(), logLevel, "HTTP request", append(attrs, "status", resp.StatusCode)...)

	return resp, nil
}

// sensitiveSegments сегменты пути, за которыми следует секрет
var sensitiveSegments = map[string]bool{
	"token":  true,
	"reset":  true,
	"verify": true,
}

// sanitizePath скрывает секреты в пути.
// Например: /api/auth/reset/TOKEN заменяется на /api/auth/reset/***
func sanitizePath(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if sensitiveSegments[part] && i+1 < len(parts) && parts[i+1] != "" {
			parts[i+1] = "***"
		}
	}
	return strings.Join(parts, "/")
}
