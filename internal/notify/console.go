package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/notexe/medimind/internal/ui"
)

// Console shows alerts on a terminal. It is the foreground surface: nothing
// listens for answers here, so the dispatcher never attaches actions.
type Console struct {
	out       io.Writer
	formatter *ui.Formatter
	mu        sync.Mutex
	shown     map[string]bool
}

// NewConsole writes alerts to out.
func NewConsole(out io.Writer, formatter *ui.Formatter) *Console {
	return &Console{out: out, formatter: formatter, shown: make(map[string]bool)}
}

func (c *Console) Name() string { return "console" }

// Permission is always granted on a terminal.
func (c *Console) Permission() Permission { return PermissionGranted }

func (c *Console) RequestPermission(_ context.Context) (Permission, error) {
	return PermissionGranted, nil
}

// Show prints the alert. A repeated tag is printed as a replacement.
func (c *Console) Show(_ context.Context, a Alert) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	replaced := c.shown[a.Tag]
	c.shown[a.Tag] = true

	labels := make([]string, 0, len(a.Actions))
	for _, act := range a.Actions {
		labels = append(labels, act.Label)
	}
	_, err := fmt.Fprintln(c.out, c.formatter.FormatAlert(ui.AlertView{
		Title:    a.Title,
		Body:     a.Body,
		ImageRef: a.ImageRef,
		Actions:  labels,
		Replaced: replaced,
	}))
	return err
}
