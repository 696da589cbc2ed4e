//go:build !windows

package scheduler

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"
)

func TestWatchFocus_SignalRunsPass(t *testing.T) {
	f := newFixture(t, at(8, 0, 30))
	f.addDaily(t, "Aspirin", "08:00")
	f.addDaily(t, "Ibuprofen", "08:02")
	if err := f.checkpoint.Set(at(7, 59, 0)); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	clock := f.now
	f.sched.SetClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	})

	ctx, cancel := context.WithCancel(context.Background())
	WatchFocus(ctx, f.sched)
	done := make(chan error, 1)
	go func() { done <- f.sched.Run(ctx) }()

	waitCall(t, f.dispatcher)

	mu.Lock()
	clock = at(8, 2, 10)
	mu.Unlock()

	self, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatal(err)
	}
	if err := self.Signal(FocusSignal); err != nil {
		t.Fatalf("signal: %v", err)
	}
	waitCall(t, f.dispatcher)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
	if f.dispatcher.count() != 2 {
		t.Fatalf("expected 2 deliveries, got %d", f.dispatcher.count())
	}
}
