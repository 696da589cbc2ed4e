package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner is an animated wait indicator for slow calls such as text
// extraction. Plain output prints the message once instead of animating.
type Spinner struct {
	out      io.Writer
	message  string
	running  bool
	stopCh   chan struct{}
	done     chan struct{}
	mu       sync.Mutex
	style    lipgloss.Style
	msgStyle lipgloss.Style
	interval time.Duration
	colored  bool
}

func NewSpinner(out io.Writer, colored bool) *Spinner {
	return &Spinner{
		out:      out,
		style:    lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
		msgStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
		interval: 80 * time.Millisecond,
		colored:  colored,
	}
}

// Start begins the animation with message.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.message = message
		return
	}

	s.message = message
	if !s.colored {
		fmt.Fprintln(s.out, message)
		return
	}

	s.running = true
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	go s.animate()
}

// Stop ends the animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	<-s.done
	fmt.Fprint(s.out, "\r\033[K")
}

func (s *Spinner) animate() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.mu.Lock()
			msg := s.message
			s.mu.Unlock()

			fmt.Fprintf(s.out, "\r\033[K%s %s", s.style.Render(spinnerFrames[frame]), s.msgStyle.Render(msg))
			frame = (frame + 1) % len(spinnerFrames)
		}
	}
}
