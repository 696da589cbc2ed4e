// Package trigger decides which recurring reminders became due between two
// evaluation passes.
//
// Evaluation is a pure function of (now, last checkpoint, reminders). The
// caller persists the returned checkpoint before delivering the events, so a
// crash between the two loses an alert instead of repeating it.
package trigger

import (
	"time"

	"github.com/notexe/medimind/internal/reminder"
)

const (
	// DefaultDebounce absorbs wake sources firing almost simultaneously.
	DefaultDebounce = 5 * time.Second

	// DefaultLookback caps how far back missed reminders are replayed after
	// a long suspension.
	DefaultLookback = 12 * time.Hour
)

// DueEvent is a reminder that crossed into due during one pass, with the
// instant it became due.
type DueEvent struct {
	Reminder reminder.Reminder
	At       time.Time
}

// Evaluator holds the evaluation policy. The zero value uses the defaults.
type Evaluator struct {
	Debounce time.Duration
	Lookback time.Duration
}

// Evaluate runs a pass with the default policy.
func Evaluate(now, last time.Time, reminders []reminder.Reminder) ([]DueEvent, time.Time) {
	return Evaluator{}.Evaluate(now, last, reminders)
}

// Evaluate returns the reminders whose fire instant today lies in
// (max(last, now-Lookback), now], and the new checkpoint.
//
// A pass closer than Debounce to last (including a clock that went
// backwards) is skipped: no events and the checkpoint is returned unchanged.
//
// Only today's date (in now's location) is considered, so a reminder due at
// 23:50 that is first evaluated at 00:05 is matched against the new day.
func (e Evaluator) Evaluate(now, last time.Time, reminders []reminder.Reminder) ([]DueEvent, time.Time) {
	debounce := e.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	lookback := e.Lookback
	if lookback <= 0 {
		lookback = DefaultLookback
	}

	if now.Sub(last) < debounce {
		return nil, last
	}

	windowStart := last
	if floor := now.Add(-lookback); floor.After(windowStart) {
		windowStart = floor
	}

	today := reminder.DayOf(now.Weekday())
	year, month, day := now.Date()

	var due []DueEvent
	for _, r := range reminders {
		if !r.HasDay(today) {
			continue
		}
		hour, minute, err := r.Clock()
		if err != nil {
			continue
		}
		candidate := time.Date(year, month, day, hour, minute, 0, 0, now.Location())
		if candidate.After(windowStart) && !candidate.After(now) {
			due = append(due, DueEvent{Reminder: r, At: candidate})
		}
	}

	return due, now
}
