package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/lingua/internal/config"
)

// annotationNoSession команда не открывает хранилище и не проверяет сессию
const annotationNoSession = "lingua/no-session"

// rootFlags глобальные флаги; заданные явно имеют приоритет над окружением и файлом
type rootFlags struct {
	configPath      string
	apiURL          string
	dbPath          string
	logLevel        string
	logFormat       string
	timeout         time.Duration
	coalesceRefresh bool
}

func (f *rootFlags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	fs := cmd.Flags()
	if fs.Changed("api-url") {
		cfg.APIURL = f.apiURL
	}
	if fs.Changed("db") {
		cfg.DBPath = f.dbPath
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if fs.Changed("log-format") {
		cfg.LogFormat = f.logFormat
	}
	if fs.Changed("timeout") {
		cfg.Timeout = f.timeout
	}
	if fs.Changed("coalesce-refresh") {
		cfg.CoalesceRefresh = f.coalesceRefresh
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RootCommand строит дерево команд
func (c *Cli) RootCommand() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:           "lingua",
		Short:         "Lingua language learning client",
		Long:          "Command line client for the Lingua language learning platform.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[annotationNoSession] == "true" || cmd.Name() == "help" {
				return nil
			}

			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if err := c.setup(cmd.Context(), cfg); err != nil {
				return err
			}

			// Проверка сохраненной сессии при каждом запуске
			state := c.manager.CheckAuthStatus(cmd.Context())
			c.logger.Debug("auth status checked", "state", state.String())
			return nil
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(c.io)
	root.SetErr(c.errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Path to YAML config file (env "+config.EnvConfig+")")
	pf.StringVar(&flags.apiURL, "api-url", config.DefaultAPIURL, "API base URL including /api (env "+config.EnvAPIURL+")")
	pf.StringVar(&flags.dbPath, "db", config.DefaultDBPath, "Path to local database (env "+config.EnvDBPath+")")
	pf.StringVar(&flags.logLevel, "log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error")
	pf.StringVar(&flags.logFormat, "log-format", config.DefaultLogFormat, "Log format: text or json")
	pf.DurationVar(&flags.timeout, "timeout", config.DefaultTimeout, "HTTP request timeout")
	pf.BoolVar(&flags.coalesceRefresh, "coalesce-refresh", false, "Share one token refresh between concurrent requests")

	root.AddCommand(
		c.loginCommand(),
		c.signupCommand(),
		c.logoutCommand(),
		c.statusCommand(),
		c.refreshCommand(),
		c.profileCommand(),
		c.dashboardCommand(),
		c.leaderboardCommand(),
		c.lessonsCommand(),
		c.chatCommand(),
		c.usageCommand(),
		c.subscriptionCommand(),
		c.adminCommand(),
		c.prefsCommand(),
		c.rawCommand(),
		c.versionCommand(),
	)

	return root
}
