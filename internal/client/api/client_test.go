package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/lingua/internal/client/auth"
	"github.com/iudanet/lingua/internal/client/nav"
	pkgapi "github.com/iudanet/lingua/pkg/api"
)

// memTokens потокобезопасное хранилище токенов в памяти
type memTokens struct {
	data map[auth.TokenKind]string
	mu   sync.Mutex
}

func newMemTokens(access, refresh string) *memTokens {
	m := &memTokens{data: make(map[auth.TokenKind]string)}
	if access != "" {
		m.data[auth.AccessToken] = access
	}
	if refresh != "" {
		m.data[auth.RefreshToken] = refresh
	}
	return m
}

func (m *memTokens) Get(ctx context.Context, kind auth.TokenKind) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[kind]
	return v, ok, nil
}

func (m *memTokens) Set(ctx context.Context, kind auth.TokenKind, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[kind] = value
	return nil
}

func (m *memTokens) ClearAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[auth.TokenKind]string)
	return nil
}

func (m *memTokens) get(kind auth.TokenKind) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[kind]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func expiredResponse(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]any{
		"success": false,
		"message": "Token expired",
		"code":    pkgapi.CodeTokenExpired,
	})
}

func newTestClient(serverURL string, tokens TokenStore, navigator nav.Navigator) *Client {
	return NewClient(serverURL, tokens, Options{Logger: discardLogger(), Navigator: navigator})
}

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:5000/api/", newMemTokens("", ""), Options{})

	assert.NotNil(t, client)
	assert.Equal(t, "http://localhost:5000/api", client.BaseURL())
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
	assert.Nil(t, client.refreshGroup)

	client = NewClient("http://localhost:5000/api", newMemTokens("", ""), Options{Timeout: time.Second, CoalesceRefresh: true})
	assert.Equal(t, time.Second, client.httpClient.Timeout)
	assert.NotNil(t, client.refreshGroup)
}

func TestClient_Request_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/ai/chat", r.URL.Path)
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "yes", r.Header.Get("X-Custom"))

		var req pkgapi.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hola", req.Message)

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "ok",
			"data":    map[string]any{"reply": "¡Hola!"},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL+"/api", newMemTokens("access-1", "refresh-1"), nil)

	res, err := client.Request(context.Background(), pkgapi.PathAIChat, RequestOptions{
		Method:  http.MethodPost,
		Body:    pkgapi.ChatRequest{Message: "hola"},
		Headers: map[string]string{"X-Custom": "yes"},
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "ok", res.Message)

	var chat pkgapi.ChatResponse
	require.NoError(t, res.Decode(&chat))
	assert.Equal(t, "¡Hola!", chat.Reply)
}

func TestClient_Request_NoTokenNoAuthHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []string{"a"}})
	}))
	defer server.Close()

	client := newTestClient(server.URL, newMemTokens("", ""), nil)

	res, err := client.Get(context.Background(), pkgapi.PathLessonsPopular, nil)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.JSONEq(t, `["a"]`, string(res.Data))
}

func TestClient_Request_ExplicitAuthorization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer admin-token", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]int{"users": 3}})
	}))
	defer server.Close()

	client := newTestClient(server.URL, newMemTokens("access-1", "refresh-1"), nil)

	res, err := client.Request(context.Background(), pkgapi.PathAdminDashboard, RequestOptions{
		Headers: map[string]string{"Authorization": "Bearer admin-token"},
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestClient_Request_ExplicitAuthorizationExpired(t *testing.T) {
	var calls, refreshCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == pkgapi.PathRefresh {
			refreshCalls.Add(1)
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]string{"accessToken": "access-2"}})
			return
		}
		calls.Add(1)
		expiredResponse(w)
	}))
	defer server.Close()

	navigated := false
	tokens := newMemTokens("access-1", "refresh-1")
	client := newTestClient(server.URL, tokens, nav.NavigatorFunc(func(ctx context.Context, route nav.Route) {
		navigated = true
	}))

	res, err := client.Request(context.Background(), pkgapi.PathAdminDashboard, RequestOptions{
		Headers: map[string]string{"authorization": "Bearer admin-token"},
	})

	// Ответ возвращается как есть, основная сессия не затрагивается
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Equal(t, pkgapi.CodeTokenExpired, res.Code)
	assert.Equal(t, int32(1), calls.Load())
	assert.Zero(t, refreshCalls.Load())
	assert.False(t, navigated)
	assert.Equal(t, "access-1", tokens.get(auth.AccessToken))
	assert.Equal(t, "refresh-1", tokens.get(auth.RefreshToken))
}

func TestClient_Get_Query(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/users/leaderboard", r.URL.Path)
		assert.Equal(t, "weekly", r.URL.Query().Get("period"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []any{}})
	}))
	defer server.Close()

	client := newTestClient(server.URL, newMemTokens("", ""), nil)

	res, err := client.Get(context.Background(), pkgapi.PathUserLeaderboard, url.Values{
		"period": {"weekly"},
		"limit":  {"10"},
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestClient_PutDelete(t *testing.T) {
	var methods []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}))
	defer server.Close()

	client := newTestClient(server.URL, newMemTokens("a", ""), nil)
	ctx := context.Background()

	_, err := client.Put(ctx, pkgapi.PathProfile, pkgapi.ProfileUpdate{Username: "x"})
	require.NoError(t, err)
	_, err = client.Delete(ctx, pkgapi.PathAdminUsers+"/u1")
	require.NoError(t, err)

	assert.Equal(t, []string{http.MethodPut, http.MethodDelete}, methods)
}

// TestClient_Request_Errors проверяет обработку HTTP ошибок без сигнала истечения токена
func TestClient_Request_Errors(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantMessage string
		status      int
		wantFields  int
	}{
		{
			name:        "validation error with field list",
			status:      http.StatusBadRequest,
			body:        `{"success":false,"message":"Validation failed","errors":[{"field":"email","message":"taken"}]}`,
			wantMessage: "Validation failed",
			wantFields:  1,
		},
		{
			name:        "unauthorized without expiry code",
			status:      http.StatusUnauthorized,
			body:        `{"success":false,"message":"Invalid credentials"}`,
			wantMessage: "Invalid credentials",
		},
		{
			name:        "plain text gateway error",
			status:      http.StatusBadGateway,
			body:        "Bad Gateway",
			wantMessage: "Bad Gateway",
		},
		{
			name:        "empty body",
			status:      http.StatusInternalServerError,
			body:        "",
			wantMessage: "request failed with status 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(server.URL, newMemTokens("a", "r"), nil)

			res, err := client.Post(context.Background(), pkgapi.PathLogin, pkgapi.LoginRequest{Email: "a@b.c", Password: "x"})
			require.NoError(t, err)
			assert.False(t, res.Success)
			assert.Nil(t, res.Data)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.wantMessage, res.Message)
			assert.Len(t, res.FieldErrors(), tt.wantFields)
		})
	}
}

func TestClient_Request_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	client := newTestClient(serverURL, newMemTokens("a", "r"), nil)

	res, err := client.Get(context.Background(), pkgapi.PathMe, nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 0, res.Status)
	assert.Nil(t, res.Data)
	assert.Contains(t, res.Message, "request failed")
}

func TestClient_Request_UnmarshalableBody(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1", newMemTokens("", ""), nil)

	res, err := client.Post(context.Background(), pkgapi.PathAIChat, map[string]any{"bad": make(chan int)})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 0, res.Status)
	assert.Contains(t, res.Message, "failed to marshal request body")
}

// Истекший токен + успешное обновление: исходный запрос повторяется ровно один раз
func TestClient_Request_RefreshAndRetry(t *testing.T) {
	var dataCalls, refreshCalls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case pkgapi.PathRefresh:
			refreshCalls.Add(1)
			assert.Empty(t, r.Header.Get("Authorization"))

			var req pkgapi.RefreshRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "refresh-1", req.RefreshToken)

			writeJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"data":    pkgapi.RefreshResponse{AccessToken: "access-2"},
			})
		case pkgapi.PathUserDashboard:
			dataCalls.Add(1)
			if r.Header.Get("Authorization") != "Bearer access-2" {
				expiredResponse(w)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]int{"xp": 120}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	tokens := newMemTokens("access-1", "refresh-1")
	recorder := nav.NewRecorder(nil)
	client := newTestClient(server.URL, tokens, recorder)

	res, err := client.Get(context.Background(), pkgapi.PathUserDashboard, nil)
	require.NoError(t, err)

	// Возвращается результат повтора, а не исходный 401
	assert.True(t, res.Success)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.JSONEq(t, `{"xp":120}`, string(res.Data))

	assert.Equal(t, int32(2), dataCalls.Load())
	assert.Equal(t, int32(1), refreshCalls.Load())
	assert.Equal(t, "access-2", tokens.get(auth.AccessToken))
	assert.Equal(t, "refresh-1", tokens.get(auth.RefreshToken))

	_, navigated := recorder.Last()
	assert.False(t, navigated)
}

// Повтор тоже получил TOKEN_EXPIRED: результат возвращается как есть, второго обновления нет
func TestClient_Request_RetryOnlyOnce(t *testing.T) {
	var dataCalls, refreshCalls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == pkgapi.PathRefresh {
			refreshCalls.Add(1)
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]string{"accessToken": "access-2"}})
			return
		}
		dataCalls.Add(1)
		expiredResponse(w)
	}))
	defer server.Close()

	client := newTestClient(server.URL, newMemTokens("access-1", "refresh-1"), nil)

	res, err := client.Get(context.Background(), pkgapi.PathMe, nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Equal(t, pkgapi.CodeTokenExpired, res.Code)
	assert.Equal(t, int32(2), dataCalls.Load())
	assert.Equal(t, int32(1), refreshCalls.Load())
}

// Истекший токен + неудачное обновление: токены удалены, переход на вход, ошибка
func TestClient_Request_RefreshFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == pkgapi.PathRefresh {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid refresh token"})
			return
		}
		expiredResponse(w)
	}))
	defer server.Close()

	tokens := newMemTokens("access-1", "refresh-1")
	recorder := nav.NewRecorder(nil)
	client := newTestClient(server.URL, tokens, recorder)

	res, err := client.Get(context.Background(), pkgapi.PathMe, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Contains(t, err.Error(), "Invalid refresh token")

	require.NotNil(t, res)
	assert.False(t, res.Success)
	assert.Equal(t, http.StatusUnauthorized, res.Status)

	_, ok, _ := tokens.Get(context.Background(), auth.AccessToken)
	assert.False(t, ok)
	_, ok, _ = tokens.Get(context.Background(), auth.RefreshToken)
	assert.False(t, ok)

	last, ok := recorder.Last()
	require.True(t, ok)
	assert.Equal(t, nav.RouteLogin, last)
}

// Без refresh token обновление завершается сразу, без сетевого вызова
func TestClient_Request_NoRefreshToken(t *testing.T) {
	var refreshCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == pkgapi.PathRefresh {
			refreshCalls.Add(1)
		}
		expiredResponse(w)
	}))
	defer server.Close()

	tokens := newMemTokens("access-1", "")
	client := newTestClient(server.URL, tokens, nil)

	_, err := client.Get(context.Background(), pkgapi.PathMe, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.ErrorIs(t, err, ErrNoRefreshToken)
	assert.Equal(t, int32(0), refreshCalls.Load())
	assert.Empty(t, tokens.get(auth.AccessToken))
}

func TestClient_Refresh_RotatesRefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]string{"accessToken": "access-2", "refreshToken": "refresh-2"},
		})
	}))
	defer server.Close()

	tokens := newMemTokens("access-1", "refresh-1")
	client := newTestClient(server.URL, tokens, nil)

	token, err := client.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-2", token)
	assert.Equal(t, "access-2", tokens.get(auth.AccessToken))
	assert.Equal(t, "refresh-2", tokens.get(auth.RefreshToken))
}

func TestClient_Refresh_EmptyAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]string{}})
	}))
	defer server.Close()

	tokens := newMemTokens("access-1", "refresh-1")
	client := newTestClient(server.URL, tokens, nil)

	_, err := client.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, "access-1", tokens.get(auth.AccessToken))
}

// concurrentExpiryServer держит первые два запроса, пока не придут оба,
// и отвечает на них TOKEN_EXPIRED. Обновление токена занимает refreshDelay.
func concurrentExpiryServer(t *testing.T, refreshDelay time.Duration, refreshCalls *atomic.Int32) *httptest.Server {
	t.Helper()

	var arrived sync.WaitGroup
	arrived.Add(2)

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == pkgapi.PathRefresh {
			refreshCalls.Add(1)
			time.Sleep(refreshDelay)
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]string{"accessToken": "access-2"}})
			return
		}
		if r.Header.Get("Authorization") == "Bearer access-1" {
			arrived.Done()
			arrived.Wait()
			expiredResponse(w)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]bool{"ok": true}})
	}))
}

func runConcurrentRequests(t *testing.T, client *Client) {
	t.Helper()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := client.Get(context.Background(), pkgapi.PathUserProgress, nil)
			assert.NoError(t, err)
			assert.True(t, res.Success)
		}()
	}
	wg.Wait()
}

// По умолчанию одновременные истечения обновляют токен независимо
func TestClient_ConcurrentExpiry_NoDeduplication(t *testing.T) {
	var refreshCalls atomic.Int32
	server := concurrentExpiryServer(t, 0, &refreshCalls)
	defer server.Close()

	client := newTestClient(server.URL, newMemTokens("access-1", "refresh-1"), nil)
	runConcurrentRequests(t, client)

	assert.Equal(t, int32(2), refreshCalls.Load())
}

// С CoalesceRefresh одновременные истечения разделяют одно обновление
func TestClient_ConcurrentExpiry_Coalesced(t *testing.T) {
	var refreshCalls atomic.Int32
	server := concurrentExpiryServer(t, 300*time.Millisecond, &refreshCalls)
	defer server.Close()

	client := NewClient(server.URL, newMemTokens("access-1", "refresh-1"), Options{
		Logger:          discardLogger(),
		CoalesceRefresh: true,
	})
	runConcurrentRequests(t, client)

	assert.Equal(t, int32(1), refreshCalls.Load())
}

func TestClient_Upload(t *testing.T) {
	var refreshCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == pkgapi.PathRefresh {
			refreshCalls.Add(1)
			return
		}

		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "profile", r.FormValue("purpose"))

		file, header, err := r.FormFile("avatar")
		require.NoError(t, err)
		defer file.Close()
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "me.png", header.Filename)
		assert.Equal(t, "PNGDATA", string(content))

		if r.FormValue("expire") == "1" {
			expiredResponse(w)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]string{"avatar": "/img/me.png"}})
	}))
	defer server.Close()

	client := newTestClient(server.URL, newMemTokens("access-1", "refresh-1"), nil)
	ctx := context.Background()

	res := client.Upload(ctx, pkgapi.PathUserAvatar, map[string]string{"purpose": "profile"},
		UploadFile{FieldName: "avatar", FileName: "me.png", Content: strings.NewReader("PNGDATA")})
	assert.True(t, res.Success)
	assert.JSONEq(t, `{"avatar":"/img/me.png"}`, string(res.Data))

	// Загрузка не обновляет токен при TOKEN_EXPIRED
	res = client.Upload(ctx, pkgapi.PathUserAvatar, map[string]string{"purpose": "profile", "expire": "1"},
		UploadFile{FieldName: "avatar", FileName: "me.png", Content: strings.NewReader("PNGDATA")})
	assert.False(t, res.Success)
	assert.Equal(t, pkgapi.CodeTokenExpired, res.Code)
	assert.Equal(t, int32(0), refreshCalls.Load())
}
