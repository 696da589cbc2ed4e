// Package scheduler drives reminder evaluation: a poll loop that checks the
// schedule immediately, on a ticker and whenever a wake source fires.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/notexe/medimind/internal/logger"
	"github.com/notexe/medimind/internal/reminder"
	"github.com/notexe/medimind/internal/trigger"
)

// DefaultInterval is the poll period when none is configured.
const DefaultInterval = 60 * time.Second

// Wake sources.
const (
	SourceStart  = "start"
	SourceTick   = "tick"
	SourceFocus  = "focus"
	SourceResume = "resume"
	SourceManual = "manual"
)

// Dispatcher delivers due events.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev trigger.DueEvent)
}

// Config tunes the poll loop.
type Config struct {
	Interval  time.Duration
	Evaluator trigger.Evaluator
}

// Scheduler runs evaluation passes and hands due events to a dispatcher.
type Scheduler struct {
	store      *reminder.Store
	checkpoint *reminder.Checkpoint
	dispatcher Dispatcher
	evaluator  trigger.Evaluator
	interval   time.Duration
	log        logger.Logger
	now        func() time.Time

	wake chan string
	mu   sync.Mutex // serialises passes
}

// New creates a Scheduler. A zero interval means DefaultInterval.
func New(store *reminder.Store, checkpoint *reminder.Checkpoint, dispatcher Dispatcher, cfg Config, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		store:      store,
		checkpoint: checkpoint,
		dispatcher: dispatcher,
		evaluator:  cfg.Evaluator,
		interval:   interval,
		log:        log,
		now:        time.Now,
		wake:       make(chan string, 1),
	}
}

// SetClock replaces the wall clock used for evaluation.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Interval returns the poll period.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Wake asks the running loop for an extra pass. Requests arriving while one
// is already pending are coalesced.
func (s *Scheduler) Wake(source string) {
	select {
	case s.wake <- source:
	default:
	}
}

// Run blocks and runs a pass immediately, on every tick and on every wake.
// It exits when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("started, interval %s", s.interval)

	s.pass(ctx, SourceStart)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Round(0) drops the monotonic reading so that time spent suspended
	// shows up in the gap.
	lastTick := time.Now().Round(0)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("shutting down")
			return nil
		case <-ticker.C:
			now := time.Now().Round(0)
			source := s.tickSource(now.Sub(lastTick))
			lastTick = now
			s.pass(ctx, source)
		case source := <-s.wake:
			s.pass(ctx, source)
		}
	}
}

// tickSource classifies a tick by the wall clock gap since the previous
// one. A gap over twice the interval means the machine was suspended.
func (s *Scheduler) tickSource(gap time.Duration) string {
	if gap > 2*s.interval {
		s.log.Info("resume detected after %s", gap.Truncate(time.Second))
		return SourceResume
	}
	return SourceTick
}

func (s *Scheduler) pass(ctx context.Context, source string) {
	if _, err := s.Check(ctx, source); err != nil {
		s.log.Error("check (%s) failed: %v", source, err)
	}
}

// Check runs one evaluation pass and returns the number of alerts handed to
// the dispatcher. A panic inside the pass is returned as an error.
func (s *Scheduler) Check(ctx context.Context, source string) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during %s pass: %v", source, r)
		}
	}()

	reminders := s.store.GetAll()
	last := s.checkpoint.Get()
	now := s.now()

	events, next := s.evaluator.Evaluate(now, last, reminders)
	if next.Equal(last) && len(events) == 0 {
		return 0, nil
	}

	// The checkpoint moves before delivery; a failed write may mean a
	// repeat next pass, which tag replacement absorbs.
	if err := s.checkpoint.Set(next); err != nil {
		s.log.Error("failed to persist checkpoint: %v", err)
	}

	for _, ev := range events {
		s.dispatcher.Dispatch(ctx, ev)
	}
	if len(events) > 0 {
		s.log.Info("%s pass: %d reminder(s) due", source, len(events))
	}
	return len(events), nil
}

// Preview evaluates the schedule at now without persisting anything or
// delivering alerts.
func (s *Scheduler) Preview(now time.Time) []trigger.DueEvent {
	reminders := s.store.GetAll()
	last := s.checkpoint.Get()
	events, _ := s.evaluator.Evaluate(now, last, reminders)
	return events
}
