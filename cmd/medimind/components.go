package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/notexe/medimind/internal/api"
	"github.com/notexe/medimind/internal/config"
	"github.com/notexe/medimind/internal/extract"
	"github.com/notexe/medimind/internal/logger"
	"github.com/notexe/medimind/internal/notify"
	"github.com/notexe/medimind/internal/reminder"
	"github.com/notexe/medimind/internal/scheduler"
	"github.com/notexe/medimind/internal/trigger"
	"github.com/notexe/medimind/internal/ui"
)

// components are the pieces every command builds from configuration.
type components struct {
	cfg        *config.Config
	log        *logger.StandardLogger
	kv         reminder.ClosableKV
	store      *reminder.Store
	checkpoint *reminder.Checkpoint
	alerts     *notify.AlertLog
	formatter  *ui.Formatter
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}
	if noColor {
		cfg.UI.ColoredOutput = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func openComponents(logOut io.Writer) (*components, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newComponents(cfg, logOut)
}

func newComponents(cfg *config.Config, logOut io.Writer) (*components, error) {
	base := logger.NewStandardLogger(log.New(logOut, "", log.LstdFlags))

	kv, err := reminder.OpenKV(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	return &components{
		cfg:        cfg,
		log:        base,
		kv:         kv,
		store:      reminder.NewStore(kv, base.Named("store")),
		checkpoint: reminder.NewCheckpoint(kv, base.Named("checkpoint")),
		alerts:     notify.NewAlertLog(kv),
		formatter:  ui.NewFormatter(cfg.UI.ColoredOutput),
	}, nil
}

func (c *components) Close() {
	if err := c.kv.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
	}
}

// telegram returns the Telegram surface, or nil when it is not configured.
func (c *components) telegram() *notify.Telegram {
	if !c.cfg.TelegramEnabled() {
		return nil
	}
	return notify.NewTelegram(notify.TelegramConfig{
		BotToken:    c.cfg.Telegram.BotToken,
		ChatID:      c.cfg.Telegram.ChatID,
		BaseURL:     c.cfg.Telegram.BaseURL,
		PollTimeout: c.cfg.Telegram.PollTimeout,
	}, c.alerts, c.log.Named("telegram"))
}

// dispatcher routes alerts to Telegram when it is configured and to out
// otherwise. A Telegram token that cannot be verified falls back to out.
func (c *components) dispatcher(ctx context.Context, out io.Writer) *notify.Dispatcher {
	console := notify.NewConsole(out, c.formatter)

	var background notify.Surface
	if tg := c.telegram(); tg != nil {
		if _, err := tg.RequestPermission(ctx); err != nil {
			c.log.Warning("telegram unavailable, alerts stay on the console: %v", err)
		} else {
			background = tg
		}
	}
	return notify.NewDispatcher(console, background, c.log.Named("notify"))
}

func (c *components) scheduler(d scheduler.Dispatcher) *scheduler.Scheduler {
	return scheduler.New(c.store, c.checkpoint, d, scheduler.Config{
		Interval: c.cfg.Interval(),
		Evaluator: trigger.Evaluator{
			Debounce: c.cfg.Debounce(),
			Lookback: c.cfg.Lookback(),
		},
	}, c.log.Named("scheduler"))
}

func (c *components) extractor() *extract.Extractor {
	provider, err := api.NewProvider(&c.cfg.Extract)
	if err != nil {
		if err != api.ErrNotConfigured {
			c.log.Warning("text extraction disabled: %v", err)
		}
		return extract.New(nil, "", c.log.Named("extract"))
	}
	return extract.New(provider, c.cfg.Extract.Ollama.Model, c.log.Named("extract"))
}
