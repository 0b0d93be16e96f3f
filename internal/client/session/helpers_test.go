package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/lingua/internal/client/api"
	"github.com/iudanet/lingua/internal/client/auth"
)

// fakeResponse заготовленный ответ fakeAPI
type fakeResponse struct {
	res *api.Result
	err error
}

// fakeAPI implements API for testing
type fakeAPI struct {
	responses  map[string]fakeResponse
	bodies     map[string]any
	refreshErr error
	calls      []string
	refreshes  int
	mu         sync.Mutex
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		responses: make(map[string]fakeResponse),
		bodies:    make(map[string]any),
	}
}

func (f *fakeAPI) on(method, endpoint string, res *api.Result, err error) {
	f.responses[method+" "+endpoint] = fakeResponse{res: res, err: err}
}

func (f *fakeAPI) call(method, endpoint string, body any) (*api.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := method + " " + endpoint
	f.calls = append(f.calls, key)
	f.bodies[key] = body

	r, ok := f.responses[key]
	if !ok {
		return &api.Result{Success: false, Status: 0, Message: "no route " + key}, nil
	}
	return r.res, r.err
}

func (f *fakeAPI) Get(ctx context.Context, endpoint string, params url.Values) (*api.Result, error) {
	return f.call("GET", endpoint, nil)
}

func (f *fakeAPI) Post(ctx context.Context, endpoint string, body any) (*api.Result, error) {
	return f.call("POST", endpoint, body)
}

func (f *fakeAPI) Put(ctx context.Context, endpoint string, body any) (*api.Result, error) {
	return f.call("PUT", endpoint, body)
}

func (f *fakeAPI) Refresh(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	if f.refreshErr != nil {
		return "", f.refreshErr
	}
	return "access-new", nil
}

func (f *fakeAPI) called(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == key {
			return true
		}
	}
	return false
}

// fakeTokens implements Tokens for testing
type fakeTokens struct {
	data     map[auth.TokenKind]string
	clearErr error
}

func newFakeTokens(access, refresh string) *fakeTokens {
	t := &fakeTokens{data: make(map[auth.TokenKind]string)}
	if access != "" {
		t.data[auth.AccessToken] = access
	}
	if refresh != "" {
		t.data[auth.RefreshToken] = refresh
	}
	return t
}

func (t *fakeTokens) Get(ctx context.Context, kind auth.TokenKind) (string, bool, error) {
	v, ok := t.data[kind]
	return v, ok, nil
}

func (t *fakeTokens) SetPair(ctx context.Context, access, refresh string) error {
	t.data[auth.AccessToken] = access
	if refresh != "" {
		t.data[auth.RefreshToken] = refresh
	}
	return nil
}

func (t *fakeTokens) ClearAll(ctx context.Context) error {
	t.data = make(map[auth.TokenKind]string)
	return t.clearErr
}

func (t *fakeTokens) empty() bool {
	return len(t.data) == 0
}

func okResult(t *testing.T, data any) *api.Result {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return &api.Result{Success: true, Status: 200, Data: raw}
}

func failResult(status int, message string) *api.Result {
	return &api.Result{Success: false, Status: status, Message: message}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var errBoom = errors.New("boom")
