// Package logger provides the small leveled logging interface shared by the
// reminder engine, the background responder and the front-ends.
package logger

import (
	"fmt"
	"io"
	"log"
	"sync"
)

// Logger is implemented by every log backend used in medimind.
type Logger interface {
	// Info logs an informational message (e.g. "reminder loop started").
	Info(format string, args ...interface{})

	// Warning logs a recoverable problem (e.g. a corrupt checkpoint).
	Warning(format string, args ...interface{})

	// Error logs a failed operation (e.g. "telegram send failed").
	Error(format string, args ...interface{})

	// Close releases resources held by the logger.
	// Safe to call multiple times.
	Close() error
}

// StandardLogger wraps a stdlib *log.Logger and tags every line with the
// component it was created for, e.g. "[scheduler] [INFO] ...".
type StandardLogger struct {
	logger    *log.Logger
	component string
}

// NewStandardLogger creates a logger that writes to l.
func NewStandardLogger(l *log.Logger) *StandardLogger {
	if l == nil {
		l = log.Default()
	}
	return &StandardLogger{logger: l}
}

// Named returns a logger writing to the same destination with the given
// component tag.
func (s *StandardLogger) Named(component string) *StandardLogger {
	return &StandardLogger{logger: s.logger, component: component}
}

// SetOutput redirects this logger and every logger Named from it.
func (s *StandardLogger) SetOutput(w io.Writer) {
	s.logger.SetOutput(w)
}

func (s *StandardLogger) printf(level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if s.component != "" {
		s.logger.Printf("[%s] [%s] %s", s.component, level, msg)
		return
	}
	s.logger.Printf("[%s] %s", level, msg)
}

// Info logs with the INFO level.
func (s *StandardLogger) Info(format string, args ...interface{}) {
	s.printf("INFO", format, args...)
}

// Warning logs with the WARNING level.
func (s *StandardLogger) Warning(format string, args ...interface{}) {
	s.printf("WARNING", format, args...)
}

// Error logs with the ERROR level.
func (s *StandardLogger) Error(format string, args ...interface{}) {
	s.printf("ERROR", format, args...)
}

// Close is a no-op.
func (s *StandardLogger) Close() error {
	return nil
}

// NopLogger discards all messages.
type NopLogger struct{}

// NewNopLogger creates a logger that discards all messages.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

func (n *NopLogger) Info(format string, args ...interface{})    {}
func (n *NopLogger) Warning(format string, args ...interface{}) {}
func (n *NopLogger) Error(format string, args ...interface{})   {}
func (n *NopLogger) Close() error                               { return nil }

var (
	_ Logger = (*StandardLogger)(nil)
	_ Logger = (*NopLogger)(nil)
	_ Logger = (*MockLogger)(nil)
)

// MockLogger records every call for verification in tests.
type MockLogger struct {
	mu           sync.Mutex
	InfoCalls    []string
	WarningCalls []string
	ErrorCalls   []string
	CloseCalled  bool
}

// NewMockLogger creates an empty MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) Info(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InfoCalls = append(m.InfoCalls, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Warning(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WarningCalls = append(m.WarningCalls, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Error(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ErrorCalls = append(m.ErrorCalls, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
	return nil
}

// Warnings returns a copy of the recorded warnings.
func (m *MockLogger) Warnings() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.WarningCalls...)
}

// Errors returns a copy of the recorded errors.
func (m *MockLogger) Errors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ErrorCalls...)
}
