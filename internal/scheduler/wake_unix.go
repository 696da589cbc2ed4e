//go:build !windows

package scheduler

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// FocusSignal is sent to a running foreground process to bring it forward.
var FocusSignal os.Signal = syscall.SIGUSR1

// WatchFocus wakes s whenever the process receives FocusSignal, until ctx
// is cancelled.
func WatchFocus(ctx context.Context, s *Scheduler) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, FocusSignal)
	go func() {
		defer signal.Stop(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				s.log.Info("focus signal received")
				s.Wake(SourceFocus)
			}
		}
	}()
}
