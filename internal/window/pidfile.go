// Package window locates and controls the foreground medimind process.
//
// A running foreground process records its pid in a pidfile. Focusing it
// means signalling that pid; when no live process is recorded a new one is
// started detached.
package window

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/notexe/medimind/internal/logger"
)

// WritePidFile writes the current process ID to path.
func WritePidFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create pid directory: %w", err)
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

// ReadPidFile reads and returns the PID stored in path.
func ReadPidFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %w", err)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("invalid PID: %d", pid)
	}
	return pid, nil
}

// RemovePidFile removes path. A missing file is not an error.
func RemovePidFile(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Controller brings the foreground process forward.
type Controller interface {
	// Focus signals a live foreground process and reports whether one was
	// found.
	Focus(ctx context.Context) (bool, error)
	// Open starts a new foreground process.
	Open(ctx context.Context) error
}

// Process controls the foreground process through its pidfile.
type Process struct {
	PidFile string
	// Command starts a new foreground process, e.g. {"medimind", "run",
	// "--headless"}.
	Command []string
	Log     logger.Logger
}

// Focus sends the focus signal to the pid recorded in the pidfile. A stale
// or missing pidfile reports false.
func (p *Process) Focus(_ context.Context) (bool, error) {
	pid, err := ReadPidFile(p.PidFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if pid == os.Getpid() || !isProcessRunning(pid) {
		return false, nil
	}
	return signalFocus(pid)
}

// Open starts Command detached from the current process.
func (p *Process) Open(_ context.Context) error {
	if len(p.Command) == 0 {
		return errors.New("no command configured to open medimind")
	}
	// The child must outlive the responder, so it is not tied to ctx.
	cmd := exec.Command(p.Command[0], p.Command[1:]...)
	cmd.SysProcAttr = detachedAttr()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", p.Command[0], err)
	}
	if p.Log != nil {
		p.Log.Info("started foreground process %d", cmd.Process.Pid)
	}
	return cmd.Process.Release()
}
