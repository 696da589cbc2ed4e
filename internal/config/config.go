package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
)

// Vision provider types (duplicated from api package to avoid import cycle)
const (
	ProviderNone   = "none"
	ProviderOllama = "ollama"
)

// EnvPrefix prefixes environment overrides. Nested keys use a double
// underscore: MEDIMIND_SCHEDULER__INTERVAL=30.
const EnvPrefix = "MEDIMIND_"

type Config struct {
	Store     StoreConfig     `koanf:"store"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Telegram  TelegramConfig  `koanf:"telegram"`
	Extract   ExtractConfig   `koanf:"extract"`
	UI        UIConfig        `koanf:"ui"`
	Runtime   RuntimeConfig   `koanf:"runtime"`
}

type StoreConfig struct {
	Driver string `koanf:"driver"` // sqlite or file
	Path   string `koanf:"path"`
}

// SchedulerConfig holds durations in seconds.
type SchedulerConfig struct {
	Interval int `koanf:"interval"`
	Debounce int `koanf:"debounce"`
	Lookback int `koanf:"lookback"`
}

type TelegramConfig struct {
	BotToken    string `koanf:"bot_token"`
	ChatID      string `koanf:"chat_id"`
	BaseURL     string `koanf:"base_url"`
	PollTimeout int    `koanf:"poll_timeout"`
}

type ExtractConfig struct {
	Provider string       `koanf:"provider"`
	Ollama   OllamaConfig `koanf:"ollama"`
}

type OllamaConfig struct {
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
	Timeout int    `koanf:"timeout"`
}

type UIConfig struct {
	ColoredOutput bool `koanf:"colored_output"`
}

type RuntimeConfig struct {
	PidFile string `koanf:"pid_file"`
}

func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = expandPath(configPath)

		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// Conventional variable names used by the bot and Ollama tooling
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		k.Set("telegram.bot_token", token)
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		k.Set("telegram.chat_id", chatID)
	}
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		if !strings.Contains(host, "://") {
			host = "http://" + host
		}
		k.Set("extract.ollama.base_url", host)
		if p := k.String("extract.provider"); p == "" || p == ProviderNone {
			k.Set("extract.provider", ProviderOllama)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Store.Path = expandPath(cfg.Store.Path)
	cfg.Runtime.PidFile = expandPath(cfg.Runtime.PidFile)

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite, DriverFile:
	default:
		return fmt.Errorf("unknown store driver: %s (supported: %s, %s)",
			c.Store.Driver, DriverSQLite, DriverFile)
	}

	if c.Store.Path == "" {
		return fmt.Errorf("store path is required")
	}

	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %d", c.Scheduler.Interval)
	}

	if c.Scheduler.Debounce < 1 {
		return fmt.Errorf("scheduler debounce must be at least 1 second, got %d", c.Scheduler.Debounce)
	}

	if c.Scheduler.Lookback <= 0 {
		return fmt.Errorf("scheduler lookback must be positive")
	}

	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram needs both bot_token and chat_id (set TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID)")
	}

	switch c.Extract.Provider {
	case "", ProviderNone, ProviderOllama:
	default:
		return fmt.Errorf("unknown extract provider: %s (supported: %s, %s)",
			c.Extract.Provider, ProviderNone, ProviderOllama)
	}

	return nil
}

// TelegramEnabled reports whether Telegram credentials are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

func (c *Config) Interval() time.Duration {
	return time.Duration(c.Scheduler.Interval) * time.Second
}

func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Scheduler.Debounce) * time.Second
}

func (c *Config) Lookback() time.Duration {
	return time.Duration(c.Scheduler.Lookback) * time.Second
}

func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	return path
}
