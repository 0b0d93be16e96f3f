package api

import (
	"encoding/json"
	"fmt"

	pkgapi "github.com/iudanet/lingua/pkg/api"
)

// Result единый результат любого запроса к API.
// Обычные HTTP ошибки и сетевые сбои не возвращаются как error,
// а описываются полями Result (Status == 0 для сетевого сбоя).
type Result struct {
	Data    json.RawMessage // поле data конверта или все тело ответа
	Errors  json.RawMessage // поле errors конверта как есть
	Message string
	Code    string
	Status  int
	Success bool
}

// Decode декодирует Data в v
func (r *Result) Decode(v any) error {
	if len(r.Data) == 0 || string(r.Data) == "null" {
		return fmt.Errorf("response has no data")
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

// ErrorMessage возвращает сообщение сервера или fallback, если сервер его не прислал
func (r *Result) ErrorMessage(fallback string) string {
	if r.Message != "" {
		return r.Message
	}
	return fallback
}

// FieldErrors разбирает errors как список ошибок полей.
// Ошибки в ином формате игнорируются.
func (r *Result) FieldErrors() []pkgapi.FieldError {
	if len(r.Errors) == 0 {
		return nil
	}

	var fieldErrs []pkgapi.FieldError
	if err := json.Unmarshal(r.Errors, &fieldErrs); err == nil {
		return fieldErrs
	}

	// Некоторые эндпоинты присылают просто список строк
	var messages []string
	if err := json.Unmarshal(r.Errors, &messages); err == nil {
		fieldErrs = make([]pkgapi.FieldError, 0, len(messages))
		for _, m := range messages {
			fieldErrs = append(fieldErrs, pkgapi.FieldError{Message: m})
		}
		return fieldErrs
	}

	return nil
}

// tokenExpired сообщает, является ли результат сигналом истекшего access token
func (r *Result) tokenExpired() bool {
	return r.Status == 401 && r.Code == pkgapi.CodeTokenExpired
}

// networkFailure строит результат для запроса, который не удалось выполнить
func networkFailure(err error) *Result {
	return &Result{
		Success: false,
		Message: err.Error(),
		Status:  0,
	}
}
