package api

import "encoding/json"

// CodeTokenExpired код ошибки, которым сервер сообщает об истекшем access token.
// Сигнал распознается только в сочетании со статусом 401.
const CodeTokenExpired = "TOKEN_EXPIRED"

// Envelope единый формат ответа сервера
type Envelope struct {
	Data    json.RawMessage `json:"data,omitempty"`
	Errors  json.RawMessage `json:"errors,omitempty"`
	Success *bool           `json:"success,omitempty"`
	Message string          `json:"message,omitempty"`
	Code    string          `json:"code,omitempty"`
}

// FieldError ошибка валидации отдельного поля
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}
