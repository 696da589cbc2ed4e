package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/notexe/medimind/internal/reminder"
)

// LogEntry is what a surface remembers about a shown alert.
type LogEntry struct {
	Tag       string    `json:"tag"`
	MessageID int64     `json:"messageId,omitempty"`
	Payload   *Payload  `json:"payload,omitempty"`
	ShownAt   time.Time `json:"shownAt"`
}

// AlertLog persists LogEntry records by tag so a responder process can
// recover the payload of an alert it did not show itself.
type AlertLog struct {
	kv reminder.KV
}

// NewAlertLog stores entries in kv under reminder.KeyAlertPrefix.
func NewAlertLog(kv reminder.KV) *AlertLog {
	return &AlertLog{kv: kv}
}

// Put records e, replacing any entry with the same tag.
func (l *AlertLog) Put(e LogEntry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode alert log entry: %w", err)
	}
	return l.kv.Set(reminder.KeyAlertPrefix+e.Tag, string(data))
}

// Get returns the entry for tag. A missing or corrupt entry reports false.
func (l *AlertLog) Get(tag string) (LogEntry, bool) {
	raw, ok, err := l.kv.Get(reminder.KeyAlertPrefix + tag)
	if err != nil || !ok || raw == "" {
		return LogEntry{}, false
	}
	var e LogEntry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return LogEntry{}, false
	}
	return e, true
}

// Remove forgets tag. Backends that cannot delete get an empty value.
func (l *AlertLog) Remove(tag string) error {
	if d, ok := l.kv.(reminder.Deleter); ok {
		return d.Delete(reminder.KeyAlertPrefix + tag)
	}
	return l.kv.Set(reminder.KeyAlertPrefix+tag, "")
}
