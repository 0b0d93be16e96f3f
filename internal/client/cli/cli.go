package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/iudanet/lingua/internal/client/api"
	"github.com/iudanet/lingua/internal/client/auth"
	"github.com/iudanet/lingua/internal/client/guard"
	"github.com/iudanet/lingua/internal/client/iocli"
	"github.com/iudanet/lingua/internal/client/nav"
	"github.com/iudanet/lingua/internal/client/prefs"
	"github.com/iudanet/lingua/internal/client/session"
	"github.com/iudanet/lingua/internal/client/storage/boltdb"
	"github.com/iudanet/lingua/internal/config"
	"github.com/iudanet/lingua/internal/logger"
)

// EnvPassword переменная окружения с паролем для неинтерактивного входа
const EnvPassword = "LINGUA_PASSWORD"

// ErrRedirected команда не выполнена: требуется переход на другое представление
var ErrRedirected = errors.New("access denied")

// BuildInfo информация о сборке
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// Passwords источники пароля
type Passwords struct {
	FromFile string
	FromArgs string
}

// Cli собирает зависимости клиента и выполняет команды
type Cli struct {
	io        iocli.IO
	errOut    io.Writer
	cfg       *config.Config
	logger    *slog.Logger
	store     *boltdb.Storage
	tokens    *auth.TokenStore
	apiClient *api.Client
	manager   *session.Manager
	navigator *nav.Recorder
	legacy    *guard.LegacyAdminStore
	prefs     *prefs.Store
	build     BuildInfo
}

// New создает Cli; зависимости открываются в setup перед выполнением команды
func New(stdio iocli.IO, errOut io.Writer, build BuildInfo) *Cli {
	return &Cli{
		io:     stdio,
		errOut: errOut,
		build:  build,
	}
}

// Execute выполняет команду по аргументам командной строки
func Execute(ctx context.Context, stdio iocli.IO, errOut io.Writer, build BuildInfo, args []string) error {
	c := New(stdio, errOut, build)
	root := c.RootCommand()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	c.reportNavigation()

	if closeErr := c.Close(); closeErr != nil {
		c.logger.Error("failed to close database", "error", closeErr)
	}
	return err
}

// setup открывает хранилище и создает клиент и менеджер сессии
func (c *Cli) setup(ctx context.Context, cfg *config.Config) error {
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, c.errOut)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = log

	store, err := boltdb.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	c.store = store

	c.tokens = auth.NewTokenStore(store)
	c.navigator = nav.NewRecorder(log)
	c.apiClient = api.NewClient(cfg.APIURL, c.tokens, api.Options{
		Logger:          log,
		Navigator:       c.navigator,
		Timeout:         cfg.Timeout,
		CoalesceRefresh: cfg.CoalesceRefresh,
	})
	c.manager = session.NewManager(c.apiClient, c.tokens, log)
	c.legacy = guard.NewLegacyAdminStore(store, log)
	c.prefs = prefs.NewStore(store)

	return nil
}

// Close закрывает хранилище
func (c *Cli) Close() error {
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	return err
}

// gate применяет решение guard к команде
func (c *Cli) gate(ctx context.Context, d guard.Decision) error {
	switch d.Kind {
	case guard.Allow:
		return nil
	case guard.Pending:
		return fmt.Errorf("session is still loading")
	}

	c.navigator.Navigate(ctx, d.Target)
	return fmt.Errorf("%w: redirected to %s", ErrRedirected, d.Target)
}

func (c *Cli) requireAuth(ctx context.Context) error {
	return c.gate(ctx, guard.RequireAuth(c.manager.Snapshot()))
}

func (c *Cli) requireAdmin(ctx context.Context) error {
	return c.gate(ctx, guard.RequireAdmin(ctx, c.manager.Snapshot(), c.legacy))
}

// reportNavigation сообщает пользователю о принудительном переходе
func (c *Cli) reportNavigation() {
	if c.navigator == nil {
		return
	}
	route, ok := c.navigator.Last()
	if !ok {
		return
	}
	// Команда восстановила сессию (login, signup): переход на вход устарел
	if route == nav.RouteLogin && c.manager != nil && c.manager.Snapshot().Authenticated() {
		return
	}
	c.io.Println()
	c.io.Printf("→ %s\n", redirectHint(route))
}

func redirectHint(route nav.Route) string {
	switch route {
	case nav.RouteLogin:
		return "please log in: run 'lingua login'"
	case nav.RouteSignup:
		return "create an account: run 'lingua signup'"
	case nav.RouteAdminLogin:
		return "admin session required: run 'lingua admin login'"
	case nav.RouteDashboard:
		return "admin role required: run 'lingua dashboard'"
	}
	return "open " + string(route)
}

// getPassword получает пароль из источников по приоритету:
// 1. Переменная окружения LINGUA_PASSWORD
// 2. Файл passwords.FromFile
// 3. Параметр командной строки
// 4. Интерактивный ввод
func (c *Cli) getPassword(passwords Passwords, prompt string) (string, error) {
	// Priority 1: Environment variable
	if envPassword := os.Getenv(EnvPassword); envPassword != "" {
		return envPassword, nil
	}
	return c.passwordFrom(passwords, prompt)
}

// passwordFrom получает пароль из файла, параметра или интерактивно
func (c *Cli) passwordFrom(passwords Passwords, prompt string) (string, error) {
	// Priority 2: File
	if passwords.FromFile != "" {
		content, err := os.ReadFile(passwords.FromFile)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		// Убираем trailing newline/whitespace
		password := strings.TrimSpace(string(content))
		if password == "" {
			return "", fmt.Errorf("password file is empty")
		}
		return password, nil
	}

	// Priority 3: CLI parameter
	if passwords.FromArgs != "" {
		return passwords.FromArgs, nil
	}

	// Priority 4: Interactive prompt (fallback)
	password, err := c.io.ReadPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	return password, nil
}

func passwordFromEnv() bool {
	return os.Getenv(EnvPassword) != ""
}

// inputOr возвращает value или запрашивает его у пользователя
func (c *Cli) inputOr(value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	v, err := c.io.ReadInput(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return v, nil
}
