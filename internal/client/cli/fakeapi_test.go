package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/iudanet/lingua/internal/client/iocli"
	"github.com/iudanet/lingua/internal/models"
	pkgapi "github.com/iudanet/lingua/pkg/api"
)

type fakeAccount struct {
	profile  models.UserProfile
	password string
}

// fakeAPI тестовый сервер Lingua API
type fakeAPI struct {
	server        *httptest.Server
	accounts      map[string]*fakeAccount // email -> аккаунт
	access        map[string]string       // access token -> email
	refresh       map[string]string       // refresh token -> email
	expired       map[string]bool         // access token -> отвечать TOKEN_EXPIRED
	subscription  models.Subscription
	requests      []string
	tokenSeq      int
	refreshCalls  int
	refreshBroken bool
	mu            sync.Mutex
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	f := &fakeAPI{
		accounts: map[string]*fakeAccount{
			"alice@example.com": {
				password: "secret123",
				profile: models.UserProfile{
					ID: "u1", Username: "alice", Email: "alice@example.com",
					Role: models.RoleUser, TotalXP: 990,
				},
			},
			"admin@example.com": {
				password: "adminpass1",
				profile: models.UserProfile{
					ID: "u2", Username: "root", Email: "admin@example.com",
					Role: models.RoleAdmin, TotalXP: 50,
				},
			},
		},
		access:  make(map[string]string),
		refresh: make(map[string]string),
		expired: make(map[string]bool),
		subscription: models.Subscription{
			Plan:     models.PlanFree,
			Status:   models.StatusActive,
			Features: map[string]int{"aiChat": 2, "lessons": models.Unlimited},
			Usage:    models.Usage{CurrentPeriod: map[string]int{"aiChat": 0}},
		},
	}

	f.server = httptest.NewServer(http.HandlerFunc(f.serveHTTP))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) url() string {
	return f.server.URL + "/api"
}

func (f *fakeAPI) issueTokens(email string) (string, string) {
	f.tokenSeq++
	access := fmt.Sprintf("access-%d", f.tokenSeq)
	refresh := fmt.Sprintf("refresh-%d", f.tokenSeq)
	f.access[access] = email
	f.refresh[refresh] = email
	return access, refresh
}

func (f *fakeAPI) requested(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r == path {
			n++
		}
	}
	return n
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeAPI) refreshes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls
}

// expire помечает access token как истекший
func (f *fakeAPI) expire(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expired[token] = true
}

func (f *fakeAPI) breakRefresh() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshBroken = true
}

func reply(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func replyOK(w http.ResponseWriter, data any) {
	reply(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

// authenticate возвращает аккаунт по Bearer токену или пишет 401
func (f *fakeAPI) authenticate(w http.ResponseWriter, r *http.Request) *fakeAccount {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if f.expired[token] {
		reply(w, http.StatusUnauthorized, map[string]any{
			"success": false, "message": "Token expired", "code": pkgapi.CodeTokenExpired,
		})
		return nil
	}
	email, found := f.access[token]
	if !found {
		reply(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid token"})
		return nil
	}
	return f.accounts[email]
}

func (f *fakeAPI) serveHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/api")
	f.requests = append(f.requests, path)

	switch path {
	case pkgapi.PathLogin:
		var req pkgapi.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		acc, found := f.accounts[req.Email]
		if !found || acc.password != req.Password {
			reply(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid credentials"})
			return
		}
		access, refresh := f.issueTokens(req.Email)
		replyOK(w, map[string]any{
			"user":         acc.profile,
			"subscription": f.subscription,
			"accessToken":  access,
			"refreshToken": refresh,
		})

	case pkgapi.PathRefresh:
		f.refreshCalls++
		var req pkgapi.RefreshRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		email, found := f.refresh[req.RefreshToken]
		if !found || f.refreshBroken {
			reply(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid refresh token"})
			return
		}
		f.tokenSeq++
		access := fmt.Sprintf("access-%d", f.tokenSeq)
		f.access[access] = email
		replyOK(w, map[string]any{"accessToken": access})

	case pkgapi.PathLogout:
		replyOK(w, nil)

	case pkgapi.PathMe:
		if acc := f.authenticate(w, r); acc != nil {
			replyOK(w, map[string]any{"user": acc.profile, "subscription": f.subscription})
		}

	case pkgapi.PathUserDashboard:
		if acc := f.authenticate(w, r); acc != nil {
			replyOK(w, map[string]any{"lessonsCompleted": 3, "username": acc.profile.Username})
		}

	case pkgapi.PathUserLeaderboard:
		if acc := f.authenticate(w, r); acc != nil {
			replyOK(w, map[string]any{"leaderboard": []pkgapi.LeaderboardEntry{
				{Username: "maria", TotalXP: 5400, Level: 6},
				{Username: "alice", TotalXP: 990, Level: 1},
			}})
		}

	case pkgapi.PathLessons:
		if acc := f.authenticate(w, r); acc != nil {
			replyOK(w, map[string]any{"lessons": []map[string]any{
				{"_id": "l1", "title": "Greetings", "language": r.URL.Query().Get("language")},
			}})
		}

	case pkgapi.PathAIChat:
		if acc := f.authenticate(w, r); acc != nil {
			f.subscription.Usage.CurrentPeriod["aiChat"]++
			replyOK(w, pkgapi.ChatResponse{Reply: "¡Hola! ¿Qué tal?", XPEarned: 15})
		}

	case pkgapi.PathSubscriptionCurrent:
		if acc := f.authenticate(w, r); acc != nil {
			replyOK(w, map[string]any{"subscription": f.subscription})
		}

	case pkgapi.PathUserAvatar:
		if acc := f.authenticate(w, r); acc != nil {
			if _, _, err := r.FormFile(avatarField); err != nil {
				reply(w, http.StatusBadRequest, map[string]any{"success": false, "message": "avatar file is required"})
				return
			}
			replyOK(w, pkgapi.AvatarResponse{Avatar: "/uploads/" + acc.profile.ID + ".png"})
		}

	case pkgapi.PathAdminDashboard:
		if acc := f.authenticate(w, r); acc != nil {
			if acc.profile.Role != models.RoleAdmin {
				reply(w, http.StatusForbidden, map[string]any{"success": false, "message": "Admin access required"})
				return
			}
			replyOK(w, map[string]any{"totalUsers": len(f.accounts)})
		}

	default:
		reply(w, http.StatusNotFound, map[string]any{"success": false, "message": "Route not found"})
	}
}

// cliRunner выполняет команды против одного тестового сервера и одной базы
type cliRunner struct {
	api    *fakeAPI
	dbPath string
}

func newCLIRunner(t *testing.T) *cliRunner {
	t.Helper()
	// Окружение разработчика не должно влиять на тесты
	for _, env := range []string{
		"LINGUA_CONFIG", "LINGUA_API_URL", "LINGUA_DB", "LINGUA_LOG_FORMAT",
		"LINGUA_TIMEOUT", "LINGUA_COALESCE_REFRESH", EnvPassword,
	} {
		t.Setenv(env, "")
	}
	return &cliRunner{
		api:    newFakeAPI(t),
		dbPath: filepath.Join(t.TempDir(), "lingua-test.db"),
	}
}

func (r *cliRunner) run(stdin string, args ...string) (string, error) {
	var out, errOut bytes.Buffer
	stdio := iocli.New(strings.NewReader(stdin), &out)

	full := append([]string{"--api-url", r.api.url(), "--db", r.dbPath, "--log-level", "error"}, args...)
	err := Execute(context.Background(), stdio, &errOut, BuildInfo{Version: "test", BuildDate: "today", GitCommit: "abc123"}, full)
	return out.String(), err
}

func (r *cliRunner) login(t *testing.T, email, password string) {
	t.Helper()
	out, err := r.run("", "login", "--email", email, "--password", password)
	if err != nil {
		t.Fatalf("login failed: %v\n%s", err, out)
	}
}
