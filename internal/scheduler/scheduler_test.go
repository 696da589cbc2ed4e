package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/notexe/medimind/internal/logger"
	"github.com/notexe/medimind/internal/reminder"
	"github.com/notexe/medimind/internal/trigger"
	"github.com/spf13/afero"
)

type recordingDispatcher struct {
	mu     sync.Mutex
	events []trigger.DueEvent
	onCall func(trigger.DueEvent)
	calls  chan struct{}
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{calls: make(chan struct{}, 16)}
}

func (d *recordingDispatcher) Dispatch(_ context.Context, ev trigger.DueEvent) {
	if d.onCall != nil {
		d.onCall(ev)
	}
	d.mu.Lock()
	d.events = append(d.events, ev)
	d.mu.Unlock()
	d.calls <- struct{}{}
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.events)
}

type fixture struct {
	kv         *reminder.FileKV
	store      *reminder.Store
	checkpoint *reminder.Checkpoint
	dispatcher *recordingDispatcher
	sched      *Scheduler
	now        time.Time
}

func at(h, m, s int) time.Time {
	return time.Date(2024, 1, 1, h, m, s, 0, time.Local) // a Monday
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	kv, err := reminder.NewFileKV(afero.NewMemMapFs(), "/store.json")
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{
		kv:         kv,
		store:      reminder.NewStore(kv, nil),
		checkpoint: reminder.NewCheckpoint(kv, nil),
		dispatcher: newRecordingDispatcher(),
		now:        now,
	}
	f.sched = New(f.store, f.checkpoint, f.dispatcher, Config{Interval: time.Hour}, logger.NewMockLogger())
	f.sched.SetClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) addDaily(t *testing.T, name, clock string) reminder.Reminder {
	t.Helper()
	r, err := f.store.Add(reminder.Reminder{MedicineName: name, Time: clock, Days: reminder.DaysOfWeek[:]})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestCheck_DispatchesOnceAndAdvancesCheckpoint(t *testing.T) {
	f := newFixture(t, at(8, 0, 30))
	f.addDaily(t, "Aspirin", "08:00")
	f.addDaily(t, "Ibuprofen", "09:00")
	if err := f.checkpoint.Set(at(7, 59, 0)); err != nil {
		t.Fatal(err)
	}

	n, err := f.sched.Check(context.Background(), SourceManual)
	if err != nil || n != 1 {
		t.Fatalf("Check = %d, %v; want 1", n, err)
	}
	if got := f.checkpoint.Get(); !got.Equal(f.now) {
		t.Errorf("checkpoint = %v, want %v", got, f.now)
	}

	f.now = f.now.Add(time.Minute)
	n, err = f.sched.Check(context.Background(), SourceTick)
	if err != nil || n != 0 {
		t.Fatalf("second pass = %d, %v; want 0", n, err)
	}
	if f.dispatcher.count() != 1 {
		t.Fatalf("expected a single delivery, got %d", f.dispatcher.count())
	}
}

func TestCheck_FirstRunDoesNotReplayHistory(t *testing.T) {
	f := newFixture(t, at(12, 0, 0))
	f.addDaily(t, "Aspirin", "08:00")
	f.checkpoint.SetClock(func() time.Time { return f.now })

	n, err := f.sched.Check(context.Background(), SourceStart)
	if err != nil || n != 0 {
		t.Fatalf("Check = %d, %v; want 0", n, err)
	}
	if _, ok, _ := f.kv.Get(reminder.KeyLastCheck); !ok {
		t.Fatal("expected the checkpoint to be initialised")
	}
}

func TestCheck_PersistsCheckpointBeforeDispatch(t *testing.T) {
	f := newFixture(t, at(8, 0, 30))
	f.addDaily(t, "Aspirin", "08:00")
	if err := f.checkpoint.Set(at(7, 59, 0)); err != nil {
		t.Fatal(err)
	}

	var seen string
	f.dispatcher.onCall = func(trigger.DueEvent) {
		seen, _, _ = f.kv.Get(reminder.KeyLastCheck)
	}
	if _, err := f.sched.Check(context.Background(), SourceManual); err != nil {
		t.Fatal(err)
	}
	if seen != f.now.Format(time.RFC3339Nano) {
		t.Fatalf("checkpoint at dispatch time = %q, want %q", seen, f.now.Format(time.RFC3339Nano))
	}
}

func TestCheck_RecoversFromPanic(t *testing.T) {
	f := newFixture(t, at(8, 0, 30))
	f.addDaily(t, "Aspirin", "08:00")
	if err := f.checkpoint.Set(at(7, 59, 0)); err != nil {
		t.Fatal(err)
	}
	f.dispatcher.onCall = func(trigger.DueEvent) { panic("surface exploded") }

	if _, err := f.sched.Check(context.Background(), SourceManual); err == nil {
		t.Fatal("expected the panic to be reported as an error")
	}

	f.dispatcher.onCall = nil
	f.now = f.now.Add(time.Minute)
	if _, err := f.sched.Check(context.Background(), SourceTick); err != nil {
		t.Fatalf("scheduler unusable after panic: %v", err)
	}
}

func TestPreview_DoesNotPersist(t *testing.T) {
	f := newFixture(t, at(8, 0, 30))
	f.addDaily(t, "Aspirin", "08:00")
	start := at(7, 59, 0)
	if err := f.checkpoint.Set(start); err != nil {
		t.Fatal(err)
	}

	events := f.sched.Preview(f.now)
	if len(events) != 1 || events[0].Reminder.MedicineName != "Aspirin" {
		t.Fatalf("unexpected preview %+v", events)
	}
	if got := f.checkpoint.Get(); !got.Equal(start) {
		t.Errorf("preview moved the checkpoint to %v", got)
	}
	if f.dispatcher.count() != 0 {
		t.Error("preview must not dispatch")
	}
}

func TestRun_StartAndWake(t *testing.T) {
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
	done := make(chan error, 1)
	go func() { done <- f.sched.Run(ctx) }()

	waitCall(t, f.dispatcher)

	mu.Lock()
	clock = at(8, 2, 10)
	mu.Unlock()
	f.sched.Wake(SourceFocus)
	waitCall(t, f.dispatcher)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
	if f.dispatcher.count() != 2 {
		t.Fatalf("expected 2 deliveries, got %d", f.dispatcher.count())
	}
}

func waitCall(t *testing.T, d *recordingDispatcher) {
	t.Helper()
	select {
	case <-d.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a dispatch")
	}
}

func TestWake_Coalesces(t *testing.T) {
	f := newFixture(t, at(8, 0, 0))
	f.sched.Wake(SourceFocus)
	f.sched.Wake(SourceResume)
	if len(f.sched.wake) != 1 {
		t.Fatalf("expected one pending wake, got %d", len(f.sched.wake))
	}
}

func TestTickSource(t *testing.T) {
	f := newFixture(t, at(8, 0, 0))
	interval := f.sched.Interval()

	tests := []struct {
		gap  time.Duration
		want string
	}{
		{interval, SourceTick},
		{interval + 3*time.Second, SourceTick},
		{2 * interval, SourceTick},
		{2*interval + time.Second, SourceResume},
		{8 * time.Hour, SourceResume},
	}
	for _, tt := range tests {
		if got := f.sched.tickSource(tt.gap); got != tt.want {
			t.Errorf("tickSource(%s) = %s, want %s", tt.gap, got, tt.want)
		}
	}
}
