// Package config загружает настройки клиента: значения по умолчанию,
// YAML файл, затем переменные окружения LINGUA_*.
// Флаги командной строки применяются поверх в пакете cli.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Значения по умолчанию
const (
	DefaultAPIURL    = "http://localhost:5000/api"
	DefaultDBPath    = "lingua-client.db"
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
	DefaultTimeout   = 30 * time.Second
)

// Переменные окружения
const (
	EnvConfig          = "LINGUA_CONFIG"
	EnvAPIURL          = "LINGUA_API_URL"
	EnvDBPath          = "LINGUA_DB"
	EnvLogLevel        = "LINGUA_LOG_LEVEL"
	EnvLogFormat       = "LINGUA_LOG_FORMAT"
	EnvTimeout         = "LINGUA_TIMEOUT"
	EnvCoalesceRefresh = "LINGUA_COALESCE_REFRESH"
)

// ErrInvalidConfig ошибка проверки конфигурации
var ErrInvalidConfig = errors.New("invalid config")

// Config настройки клиента
type Config struct {
	APIURL    string        `yaml:"api_url"`
	DBPath    string        `yaml:"db"`
	LogLevel  string        `yaml:"log_level"`
	LogFormat string        `yaml:"log_format"`
	Timeout   time.Duration `yaml:"timeout"`
	// CoalesceRefresh объединять одновременные обновления токена
	CoalesceRefresh bool `yaml:"coalesce_refresh"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		APIURL:    DefaultAPIURL,
		DBPath:    DefaultDBPath,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		Timeout:   DefaultTimeout,
	}
}

// Load читает конфигурацию из файла path и окружения.
// Пустой path означает LINGUA_CONFIG; если и он пуст, файл не читается.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path == "" {
		path, _ = lookup(EnvConfig)
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Поля, отсутствующие в файле, сохраняют значения по умолчанию
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAPIURL); ok && v != "" {
		c.APIURL = v
	}
	if v, ok := lookup(EnvDBPath); ok && v != "" {
		c.DBPath = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.LogFormat = v
	}
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvTimeout, err)
		}
		c.Timeout = d
	}
	if v, ok := lookup(EnvCoalesceRefresh); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvCoalesceRefresh, err)
		}
		c.CoalesceRefresh = b
	}
	return nil
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || c.APIURL == "" {
		return fmt.Errorf("%w: api url %q", ErrInvalidConfig, c.APIURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("%w: api url must be http(s) with a host, got %q", ErrInvalidConfig, c.APIURL)
	}

	if c.DBPath == "" {
		return fmt.Errorf("%w: database path is required", ErrInvalidConfig)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.LogFormat)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}

	return nil
}
