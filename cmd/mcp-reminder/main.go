// Command mcp-reminder provides an MCP server for medication reminders.
//
// It shares the store and configuration of the medimind command, so
// reminders added by an MCP client are picked up by a running reminder
// loop on its next pass.
//
// Usage:
//
//	./mcp-reminder          # Start MCP server (stdio)
//	./mcp-reminder --help   # Show help
//
// Environment:
//
//	MEDIMIND_CONFIG  Path to the configuration file (default: ~/.medimind/config.yaml)
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/notexe/medimind/internal/api"
	"github.com/notexe/medimind/internal/config"
	"github.com/notexe/medimind/internal/extract"
	"github.com/notexe/medimind/internal/logger"
	"github.com/notexe/medimind/internal/reminder"
	"github.com/notexe/medimind/internal/trigger"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--help", "-h":
			printHelp()
			return
		}
	}

	configPath := os.Getenv("MEDIMIND_CONFIG")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the protocol; logs go to stderr.
	lg := logger.NewStandardLogger(log.New(os.Stderr, "", log.LstdFlags)).Named("mcp-reminder")

	kv, err := reminder.OpenKV(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer kv.Close()

	store := reminder.NewStore(kv, lg)
	checkpoint := reminder.NewCheckpoint(kv, lg)
	evaluator := trigger.Evaluator{Debounce: cfg.Debounce(), Lookback: cfg.Lookback()}

	opts := []reminder.ServerOption{
		reminder.WithPreview(func(now time.Time) []reminder.Reminder {
			events, _ := evaluator.Evaluate(now, checkpoint.Get(), store.GetAll())
			due := make([]reminder.Reminder, 0, len(events))
			for _, ev := range events {
				due = append(due, ev.Reminder)
			}
			return due
		}),
	}

	provider, err := api.NewProvider(&cfg.Extract)
	switch {
	case err == nil:
		defer provider.Close()
		ex := extract.New(provider, cfg.Extract.Ollama.Model, lg)
		opts = append(opts, reminder.WithExtractor(ex.Extract))
	case err != api.ErrNotConfigured:
		lg.Warning("extract_medicine_name disabled: %v", err)
	}

	s := reminder.NewServer(store, opts...)

	if err := server.ServeStdio(s.MCPServer()); err != nil && err != io.EOF {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`MCP Reminder Server - Medication reminders via MCP protocol

USAGE:
    mcp-reminder          Start MCP server (communicates via stdio)
    mcp-reminder --help   Show this help

ENVIRONMENT:
    MEDIMIND_CONFIG   Path to the configuration file
                      Default: ~/.medimind/config.yaml
    MEDIMIND_*        Configuration overrides, e.g. MEDIMIND_STORE__PATH
    OLLAMA_HOST       Enables extract_medicine_name through Ollama

TOOLS:
    add_reminder           Add a reminder (medicine_name, time, days, image_url)
    list_reminders         List all reminders
    update_reminder        Update reminder fields by id
    delete_reminder        Delete a reminder permanently
    preview_due            Show what a check right now would deliver
    extract_medicine_name  Read a medicine name from a packaging photo

CONFIGURATION:
    Add to your MCP client configuration:
    {
      "mcpServers": {
        "medimind": {
          "command": "/path/to/mcp-reminder",
          "args": []
        }
      }
    }`)
}
