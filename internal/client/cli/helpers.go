package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/iudanet/lingua/internal/client/api"
)

var templateFuncs = template.FuncMap{
	// rank номер строки: из ответа сервера, иначе по порядку
	"rank": func(i, rank int) int {
		if rank > 0 {
			return rank
		}
		return i + 1
	},
}

// render выполняет шаблон и выводит результат
func (c *Cli) render(name, text string, data any) error {
	tmpl, err := template.New(name).Funcs(templateFuncs).Parse(text)
	if err != nil {
		return fmt.Errorf("failed to parse %s template: %w", name, err)
	}
	if err := tmpl.Execute(c.io, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	c.io.Println()
	return nil
}

// printData выводит данные ответа как отформатированный JSON
func (c *Cli) printData(res *api.Result) error {
	if len(res.Data) == 0 {
		if res.Message != "" {
			c.io.Println(res.Message)
		}
		return nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, res.Data, "", "  "); err != nil {
		return fmt.Errorf("failed to format response: %w", err)
	}
	c.io.Println(buf.String())
	return nil
}

// resultError превращает неуспешный результат в ошибку команды
func resultError(res *api.Result, fallback string) error {
	msg := res.ErrorMessage(fallback)
	for _, fe := range res.FieldErrors() {
		if fe.Field != "" {
			msg += fmt.Sprintf("\n  %s: %s", fe.Field, fe.Message)
		} else {
			msg += "\n  " + fe.Message
		}
	}
	return fmt.Errorf("%s", msg)
}

// decodeList разбирает список как есть или под одним из ключей обертки
func decodeList[T any](res *api.Result, keys ...string) ([]T, error) {
	var items []T
	if err := json.Unmarshal(res.Data, &items); err == nil {
		return items, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(res.Data, &wrapped); err != nil {
		return nil, fmt.Errorf("unexpected response format: %w", err)
	}
	for _, k := range keys {
		raw, ok := wrapped[k]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("unexpected %s format: %w", k, err)
		}
		return items, nil
	}
	return nil, fmt.Errorf("unexpected response format")
}
