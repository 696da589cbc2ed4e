package window

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestPidFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "medimind.pid")

	if err := WritePidFile(path); err != nil {
		t.Fatalf("WritePidFile: %v", err)
	}
	pid, err := ReadPidFile(path)
	if err != nil || pid != os.Getpid() {
		t.Fatalf("ReadPidFile = %d, %v; want %d", pid, err, os.Getpid())
	}
	if err := RemovePidFile(path); err != nil {
		t.Fatalf("RemovePidFile: %v", err)
	}
	if err := RemovePidFile(path); err != nil {
		t.Fatalf("removing a missing pidfile: %v", err)
	}
}

func TestReadPidFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{"garbage": "abc", "zero": "0", "negative": "-3"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := ReadPidFile(path); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestProcess_FocusWithoutLiveProcess(t *testing.T) {
	dir := t.TempDir()

	p := &Process{PidFile: filepath.Join(dir, "missing.pid")}
	if ok, err := p.Focus(context.Background()); ok || err != nil {
		t.Fatalf("missing pidfile: got %v, %v", ok, err)
	}

	// Our own pid is never focused, so the responder cannot signal itself.
	own := filepath.Join(dir, "own.pid")
	if err := WritePidFile(own); err != nil {
		t.Fatal(err)
	}
	p.PidFile = own
	if ok, err := p.Focus(context.Background()); ok || err != nil {
		t.Fatalf("own pid: got %v, %v", ok, err)
	}
}

func TestProcess_OpenWithoutCommand(t *testing.T) {
	if err := (&Process{}).Open(context.Background()); err == nil {
		t.Fatal("expected an error without a command")
	}
}
