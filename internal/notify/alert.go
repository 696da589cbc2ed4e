// Package notify turns due reminders into user-visible alerts.
//
// An alert surface is the platform notification mechanism (a terminal, a
// Telegram chat). The Dispatcher picks the surface once at construction:
// the background surface when a responder can act on alert buttons, the
// foreground surface otherwise.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/notexe/medimind/internal/reminder"
)

// Permission mirrors the browser notification permission states.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default"
)

// Action ids understood by the responder. A body click carries ActionNone.
const (
	ActionNone     = ""
	ActionDismiss  = "dismiss"
	ActionSnooze5  = "snooze-5"
	ActionSnooze15 = "snooze-15"
	ActionSnooze30 = "snooze-30"
)

// AlertTitle is the title of a first-time reminder alert.
const AlertTitle = "MediMind Reminder"

// ErrNoPayload is reported when an interaction cannot be tied back to a
// reminder.
var ErrNoPayload = errors.New("alert has no reminder payload")

// Action is a button attached to an alert.
type Action struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// SnoozeActions is the fixed response set of an actionable alert.
var SnoozeActions = []Action{
	{ID: ActionSnooze5, Label: "Snooze 5 min"},
	{ID: ActionSnooze15, Label: "Snooze 15 min"},
	{ID: ActionSnooze30, Label: "Snooze 30 min"},
}

// Payload is the data carried with an alert so that a responder in another
// process can act on it without shared memory.
type Payload struct {
	Reminder reminder.Reminder `json:"reminder"`
}

// Alert enumerates every option an alert surface recognises.
type Alert struct {
	Title              string
	Body               string
	ImageRef           string
	Tag                string
	RequireInteraction bool
	Actions            []Action
	Payload            *Payload
}

// Interaction is a user response to a delivered alert.
type Interaction struct {
	Tag     string
	Action  string
	Payload *Payload
}

// SnoozeMinutes returns N for a "snooze-N" action id with N in {5,15,30},
// and 0 for anything else.
func SnoozeMinutes(action string) int {
	if !strings.HasPrefix(action, "snooze-") {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimPrefix(action, "snooze-"))
	if err != nil {
		return 0
	}
	switch n {
	case 5, 15, 30:
		return n
	}
	return 0
}

// ReminderBody is the body text of a first-time alert.
func ReminderBody(name string) string {
	return fmt.Sprintf("It's time to take your %s.", name)
}

// Surface is a platform alert mechanism.
type Surface interface {
	// Name identifies the surface in logs.
	Name() string
	// Permission reports the current permission without prompting.
	Permission() Permission
	// RequestPermission asks for permission to show alerts.
	RequestPermission(ctx context.Context) (Permission, error)
	// Show displays an alert. Surfaces that de-duplicate by tag replace an
	// earlier alert with the same tag.
	Show(ctx context.Context, a Alert) error
}

// Closer is implemented by surfaces that can withdraw a shown alert.
type Closer interface {
	Close(ctx context.Context, tag string) error
}

// Listener is implemented by surfaces that report alert interactions.
// Listen blocks until ctx is cancelled.
type Listener interface {
	Listen(ctx context.Context, onAction func(Interaction)) error
}
