package reminder

import (
	"fmt"
	"sync"
	"time"

	"github.com/notexe/medimind/internal/logger"
)

// Checkpoint is the durable "evaluated up through" timestamp.
type Checkpoint struct {
	kv  KV
	log logger.Logger
	now func() time.Time
	mu  sync.Mutex
}

// NewCheckpoint creates a checkpoint tracker on top of kv.
func NewCheckpoint(kv KV, log logger.Logger) *Checkpoint {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Checkpoint{kv: kv, log: log, now: time.Now}
}

// SetClock replaces the clock used to initialise a missing checkpoint.
func (c *Checkpoint) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Get returns the stored checkpoint. When it is absent or unreadable the
// current time is stored and returned, so history is never replayed and the
// next pass has a fixed lower bound.
func (c *Checkpoint) Get() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.read(); ok {
		return t
	}

	now := c.now()
	if err := c.kv.Set(KeyLastCheck, now.Format(time.RFC3339Nano)); err != nil {
		c.log.Warning("failed to initialise checkpoint: %v", err)
	}
	return now
}

func (c *Checkpoint) read() (time.Time, bool) {
	raw, ok, err := c.kv.Get(KeyLastCheck)
	if err != nil {
		c.log.Warning("failed to read checkpoint, resetting to now: %v", err)
		return time.Time{}, false
	}
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil || t.IsZero() {
		c.log.Warning("corrupt checkpoint %q, resetting to now", raw)
		return time.Time{}, false
	}
	return t, true
}

// Set advances the checkpoint to t. Moving backwards is ignored.
func (c *Checkpoint) Set(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cur, ok := c.read(); ok && t.Before(cur) {
		return nil
	}
	if err := c.kv.Set(KeyLastCheck, t.Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}
