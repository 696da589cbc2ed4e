package notify

import (
	"context"

	"github.com/notexe/medimind/internal/logger"
	"github.com/notexe/medimind/internal/trigger"
)

// Dispatcher delivers due events. Whether a background context exists is
// decided once, when the dispatcher is built.
type Dispatcher struct {
	surface       Surface
	hasBackground bool
	log           logger.Logger
}

// NewDispatcher routes alerts through background when it is non-nil and
// through foreground otherwise.
func NewDispatcher(foreground, background Surface, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.NewNopLogger()
	}
	d := &Dispatcher{surface: foreground, log: log}
	if background != nil {
		d.surface = background
		d.hasBackground = true
	}
	return d
}

// HasBackground reports whether alerts carry snooze actions.
func (d *Dispatcher) HasBackground() bool {
	return d.hasBackground
}

// Surface returns the surface alerts are shown on.
func (d *Dispatcher) Surface() Surface {
	return d.surface
}

// Dispatch shows the alert for ev. Without granted permission it does
// nothing; acquiring permission is up to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, ev trigger.DueEvent) {
	if d.surface == nil {
		return
	}
	if p := d.surface.Permission(); p != PermissionGranted {
		d.log.Info("skipping %q: %s permission is %s", ev.Reminder.MedicineName, d.surface.Name(), p)
		return
	}

	alert := d.AlertFor(ev)
	if err := d.surface.Show(ctx, alert); err != nil {
		d.log.Error("failed to show alert for %q on %s: %v", ev.Reminder.MedicineName, d.surface.Name(), err)
		return
	}
	d.log.Info("alert shown: %s (%s, due %s)", ev.Reminder.MedicineName, alert.Tag, ev.At.Format("15:04"))
}

// AlertFor builds the alert for ev on the selected path.
func (d *Dispatcher) AlertFor(ev trigger.DueEvent) Alert {
	r := ev.Reminder
	a := Alert{
		Title:    AlertTitle,
		Body:     ReminderBody(r.MedicineName),
		ImageRef: r.ImageURL,
		Tag:      r.ID,
	}
	if d.hasBackground {
		a.RequireInteraction = true
		a.Actions = append([]Action(nil), SnoozeActions...)
		a.Payload = &Payload{Reminder: r}
	}
	return a
}
