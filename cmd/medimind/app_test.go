package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/notexe/medimind/internal/config"
	"github.com/notexe/medimind/internal/scheduler"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	for _, key := range []string{"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "OLLAMA_HOST"} {
		t.Setenv(key, "")
	}
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Store.Driver = config.DriverFile
	cfg.Store.Path = filepath.Join(t.TempDir(), "store.json")
	cfg.UI.ColoredOutput = false
	return cfg
}

func TestComponents_ConsoleFallback(t *testing.T) {
	comp, err := newComponents(testConfig(t), &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	defer comp.Close()

	if comp.telegram() != nil {
		t.Fatal("telegram should be off without credentials")
	}
	var out bytes.Buffer
	d := comp.dispatcher(t.Context(), &out)
	if d.HasBackground() || d.Surface().Name() != "console" {
		t.Fatalf("expected the console surface, got %s", d.Surface().Name())
	}

	sched := comp.scheduler(d)
	if sched.Interval() != comp.cfg.Interval() {
		t.Errorf("interval %s, want %s", sched.Interval(), comp.cfg.Interval())
	}
	if _, err := sched.Check(t.Context(), scheduler.SourceManual); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestComponents_Extractor(t *testing.T) {
	comp, err := newComponents(testConfig(t), &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	defer comp.Close()

	if got := comp.extractor().Extract(t.Context(), []byte("x"), "image/png"); got != "Text extraction not configured." {
		t.Errorf("got %q", got)
	}
}
