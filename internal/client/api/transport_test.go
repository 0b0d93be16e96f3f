package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "/api/auth/me", want: "/api/auth/me"},
		{path: "/api/auth/reset/abc123", want: "/api/auth/reset/***"},
		{path: "/api/auth/verify/xyz/confirm", want: "/api/auth/verify/***/confirm"},
		{path: "/api/auth/token/", want: "/api/auth/token/"},
		{path: "", want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizePath(tt.path), tt.path)
	}
}

func TestLoggingTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client := &http.Client{Transport: NewLoggingTransport(nil, logger)}

	req, err := http.NewRequest(http.MethodGet, server.URL+"/lessons?q=secret", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer top-secret")
	req.Header.Set("X-Request-ID", "req-1")

	resp, err := client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	resp, err = client.Get(server.URL + "/broken")
	require.NoError(t, err)
	_ = resp.Body.Close()

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "path=/lessons")
	assert.Contains(t, out, "request_id=req-1")
	assert.Contains(t, out, "status=404")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "status=500")
	// Токены и query string не попадают в лог
	assert.NotContains(t, out, "top-secret")
	assert.NotContains(t, out, "q=secret")
}

func TestLoggingTransport_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	client := &http.Client{Transport: NewLoggingTransport(http.DefaultTransport, logger)}

	_, err := client.Get(serverURL + "/auth/me")
	require.Error(t, err)
	assert.Contains(t, buf.String(), "HTTP request failed")
}
