package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// UploadFile файл для multipart загрузки
type UploadFile struct {
	Content   io.Reader
	FieldName string
	FileName  string
}

// Upload отправляет multipart/form-data запрос.
// Authorization прикладывается как обычно, но тело не кодируется в JSON
// и обновление токена при TOKEN_EXPIRED не выполняется.
func (c *Client) Upload(ctx context.Context, endpoint string, fields map[string]string, files ...UploadFile) *Result {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return networkFailure(fmt.Errorf("failed to write field %q: %w", name, err))
		}
	}

	for _, f := range files {
		part, err := writer.CreateFormFile(f.FieldName, f.FileName)
		if err != nil {
			return networkFailure(fmt.Errorf("failed to create form file: %w", err))
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return networkFailure(fmt.Errorf("failed to copy %s: %w", f.FileName, err))
		}
	}

	if err := writer.Close(); err != nil {
		return networkFailure(fmt.Errorf("failed to finalize multipart body: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(endpoint, nil), &buf)
	if err != nil {
		return networkFailure(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	if err := c.prepare(ctx, req, RequestOptions{}); err != nil {
		return networkFailure(err)
	}

	return c.do(req)
}
