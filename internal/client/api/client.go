package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/iudanet/lingua/internal/client/auth"
	"github.com/iudanet/lingua/internal/client/nav"
	pkgapi "github.com/iudanet/lingua/pkg/api"
)

// DefaultTimeout таймаут HTTP клиента по умолчанию
const DefaultTimeout = 30 * time.Second

var (
	// ErrSessionExpired access token истек и обновить его не удалось.
	// Токены к этому моменту уже удалены, запрошен переход на экран входа.
	ErrSessionExpired = errors.New("session expired")

	// ErrNoRefreshToken refresh token не сохранен, обновление невозможно
	ErrNoRefreshToken = errors.New("no refresh token available")
)

// TokenStore хранилище токенов, которым пользуется клиент
type TokenStore interface {
	Get(ctx context.Context, kind auth.TokenKind) (string, bool, error)
	Set(ctx context.Context, kind auth.TokenKind, value string) error
	ClearAll(ctx context.Context) error
}

// Options дополнительные настройки клиента
type Options struct {
	Logger    *slog.Logger
	Navigator nav.Navigator
	Transport http.RoundTripper
	Timeout   time.Duration
	// CoalesceRefresh объединяет одновременные обновления токена в один запрос.
	// По умолчанию выключено: каждый запрос, получивший TOKEN_EXPIRED, обновляет токен сам.
	CoalesceRefresh bool
}

// RequestOptions параметры одного запроса
type RequestOptions struct {
	Body    any
	Headers map[string]string
	Query   url.Values
	Method  string

	// skipAuth не прикладывать Authorization (запрос обновления токена)
	skipAuth bool
	// token явный access token вместо сохраненного (повтор после обновления)
	token string
}

// Client представляет HTTP клиент для взаимодействия с API
type Client struct {
	httpClient   *http.Client
	tokens       TokenStore
	navigator    nav.Navigator
	logger       *slog.Logger
	refreshGroup *singleflight.Group
	baseURL      string
}

// NewClient создает новый API клиент
func NewClient(baseURL string, tokens TokenStore, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		tokens:    tokens,
		navigator: opts.Navigator,
		logger:    logger,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: NewLoggingTransport(transport, logger),
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}

	if opts.CoalesceRefresh {
		c.refreshGroup = &singleflight.Group{}
	}

	return c
}

// BaseURL возвращает базовый URL API
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request выполняет один логический запрос к API.
//
// Ошибка возвращается только когда сервер сообщил об истекшем токене и
// обновить его не удалось (ErrSessionExpired). Во всех остальных случаях
// исход описывается Result.
func (c *Client) Request(ctx context.Context, endpoint string, opts RequestOptions) (*Result, error) {
	res := c.send(ctx, endpoint, opts)
	if !res.tokenExpired() {
		return res, nil
	}
	// Токен передан вызывающим: обновлять нечего, ответ возвращается как есть
	if opts.explicitAuth() {
		return res, nil
	}

	c.logger.DebugContext(ctx, "access token expired, refreshing", "endpoint", endpoint)

	token, err := c.Refresh(ctx)
	if err != nil {
		c.expireSession(ctx)
		return &Result{
			Success: false,
			Message: "Session expired. Please log in again.",
			Code:    pkgapi.CodeTokenExpired,
			Status:  http.StatusUnauthorized,
		}, fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}

	// Повторяем исходный запрос ровно один раз с новым токеном
	opts.token = token
	return c.send(ctx, endpoint, opts), nil
}

// Get выполняет GET запрос; params сериализуются в query string
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (*Result, error) {
	return c.Request(ctx, endpoint, RequestOptions{Method: http.MethodGet, Query: params})
}

// Post выполняет POST запрос с JSON телом
func (c *Client) Post(ctx context.Context, endpoint string, body any) (*Result, error) {
	return c.Request(ctx, endpoint, RequestOptions{Method: http.MethodPost, Body: body})
}

// Put выполняет PUT запрос с JSON телом
func (c *Client) Put(ctx context.Context, endpoint string, body any) (*Result, error) {
	return c.Request(ctx, endpoint, RequestOptions{Method: http.MethodPut, Body: body})
}

// Delete выполняет DELETE запрос
func (c *Client) Delete(ctx context.Context, endpoint string) (*Result, error) {
	return c.Request(ctx, endpoint, RequestOptions{Method: http.MethodDelete})
}

// Refresh обменивает сохраненный refresh token на новый access token,
// сохраняет его и возвращает.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	if c.refreshGroup == nil {
		return c.doRefresh(ctx)
	}

	v, err, shared := c.refreshGroup.Do("refresh", func() (any, error) {
		return c.doRefresh(ctx)
	})
	if shared {
		c.logger.DebugContext(ctx, "joined in-flight token refresh")
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) doRefresh(ctx context.Context) (string, error) {
	refreshToken, ok, err := c.tokens.Get(ctx, auth.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to read refresh token: %w", err)
	}
	if !ok {
		return "", ErrNoRefreshToken
	}

	res := c.send(ctx, pkgapi.PathRefresh, RequestOptions{
		Method:   http.MethodPost,
		Body:     pkgapi.RefreshRequest{RefreshToken: refreshToken},
		skipAuth: true,
	})
	if !res.Success {
		return "", fmt.Errorf("refresh rejected (%d): %s", res.Status, res.ErrorMessage("token refresh failed"))
	}

	var payload pkgapi.RefreshResponse
	if err := res.Decode(&payload); err != nil {
		return "", err
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("refresh response has no access token")
	}

	if err := c.tokens.Set(ctx, auth.AccessToken, payload.AccessToken); err != nil {
		return "", err
	}
	// Сервер может ротировать refresh token
	if payload.RefreshToken != "" {
		if err := c.tokens.Set(ctx, auth.RefreshToken, payload.RefreshToken); err != nil {
			return "", err
		}
	}

	c.logger.InfoContext(ctx, "access token refreshed")
	return payload.AccessToken, nil
}

// expireSession удаляет токены и отправляет пользователя на экран входа
func (c *Client) expireSession(ctx context.Context) {
	if err := c.tokens.ClearAll(ctx); err != nil {
		c.logger.ErrorContext(ctx, "failed to clear tokens after refresh failure", "error", err)
	}
	c.logger.WarnContext(ctx, "session expired, redirecting to login")
	if c.navigator != nil {
		c.navigator.Navigate(ctx, nav.RouteLogin)
	}
}

// send выполняет HTTP запрос без логики обновления токена
func (c *Client) send(ctx context.Context, endpoint string, opts RequestOptions) *Result {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	if opts.Body != nil {
		jsonData, err := json.Marshal(opts.Body)
		if err != nil {
			return networkFailure(fmt.Errorf("failed to marshal request body: %w", err))
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(endpoint, opts.Query), bodyReader)
	if err != nil {
		return networkFailure(fmt.Errorf("failed to create request: %w", err))
	}

	if opts.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	if err := c.prepare(ctx, req, opts); err != nil {
		return networkFailure(err)
	}

	return c.do(req)
}

// explicitAuth сообщает, передан ли Authorization в Headers
func (o RequestOptions) explicitAuth() bool {
	for k := range o.Headers {
		if http.CanonicalHeaderKey(k) == "Authorization" {
			return true
		}
	}
	return false
}

// prepare добавляет служебные заголовки и Authorization
func (c *Client) prepare(ctx context.Context, req *http.Request, opts RequestOptions) error {
	req.Header.Set("Accept", "application/json")
	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", uuid.NewString())
	}

	// Явно переданный Authorization (admin-сессия) не заменяется
	if opts.skipAuth || req.Header.Get("Authorization") != "" {
		return nil
	}

	token := opts.token
	if token == "" {
		stored, ok, err := c.tokens.Get(ctx, auth.AccessToken)
		if err != nil {
			return fmt.Errorf("failed to read access token: %w", err)
		}
		if ok {
			token = stored
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}

// do отправляет запрос и приводит ответ к Result
func (c *Client) do(req *http.Request) *Result {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return networkFailure(fmt.Errorf("request failed: %w", err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkFailure(fmt.Errorf("failed to read response body: %w", err))
	}

	return parseResponse(resp.StatusCode, respBody)
}

func (c *Client) buildURL(endpoint string, query url.Values) string {
	u := c.baseURL + endpoint
	if len(query) == 0 {
		return u
	}
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return u + sep + query.Encode()
}

// parseResponse разбирает тело ответа в Result.
// Если тело является конвертом с полем data, Data равно этому полю; иначе все тело.
func parseResponse(status int, body []byte) *Result {
	res := &Result{
		Status:  status,
		Success: status >= 200 && status < 300,
	}

	trimmed := bytes.TrimSpace(body)
	var fields map[string]json.RawMessage
	isObject := len(trimmed) > 0 && trimmed[0] == '{' && json.Unmarshal(trimmed, &fields) == nil

	switch {
	case isObject:
		if data, ok := fields["data"]; ok {
			res.Data = data
		} else {
			res.Data = json.RawMessage(trimmed)
		}
		res.Message = stringField(fields, "message")
		if res.Message == "" {
			res.Message = stringField(fields, "error")
		}
		res.Code = stringField(fields, "code")
		if errs, ok := fields["errors"]; ok && string(errs) != "null" {
			res.Errors = errs
		}
	case len(trimmed) > 0 && json.Valid(trimmed):
		res.Data = json.RawMessage(trimmed)
	case len(trimmed) > 0:
		// Не-JSON ответ (например, страница ошибки прокси)
		res.Message = string(trimmed)
	}

	if !res.Success {
		// Данные неуспешного ответа не передаются вызывающему
		res.Data = nil
		if res.Message == "" {
			res.Message = fmt.Sprintf("request failed with status %d", status)
		}
	}

	return res
}

func stringField(fields map[string]json.RawMessage, name string) string {
	raw, ok := fields[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
