// Package responder reacts to alert interactions in a process separate from
// the reminder loop. It shares no memory with the foreground: everything it
// needs arrives with the interaction payload.
package responder

import (
	"context"
	"fmt"
	"time"

	"github.com/notexe/medimind/internal/logger"
	"github.com/notexe/medimind/internal/notify"
	"github.com/notexe/medimind/internal/window"
)

// SnoozedBody is the body of an alert re-shown after a snooze.
const SnoozedBody = "It's time to take your medication."

// Responder handles interactions with actionable alerts.
type Responder struct {
	surface notify.Surface
	timer   Timer
	window  window.Controller
	log     logger.Logger
	now     func() time.Time
}

// New creates a Responder. surface shows snoozed alerts and, when it
// implements notify.Closer, closes answered ones.
func New(surface notify.Surface, timer Timer, win window.Controller, log logger.Logger) *Responder {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Responder{
		surface: surface,
		timer:   timer,
		window:  win,
		log:     log,
		now:     time.Now,
	}
}

// Run listens on a surface that reports interactions and handles each until
// ctx is cancelled.
func (r *Responder) Run(ctx context.Context, l notify.Listener) error {
	r.log.Info("responder started on %s", r.surface.Name())
	return l.Listen(ctx, func(in notify.Interaction) {
		r.Handle(ctx, in)
	})
}

// Handle closes the answered alert, then either schedules a snoozed repeat
// or brings the foreground process forward. A missing payload ends handling
// after the close.
func (r *Responder) Handle(ctx context.Context, in notify.Interaction) {
	if c, ok := r.surface.(notify.Closer); ok && in.Tag != "" {
		if err := c.Close(ctx, in.Tag); err != nil {
			r.log.Warning("failed to close alert %s: %v", in.Tag, err)
		}
	}

	if in.Payload == nil {
		r.log.Warning("ignoring %q on alert %q: %v", in.Action, in.Tag, notify.ErrNoPayload)
		return
	}

	if minutes := notify.SnoozeMinutes(in.Action); minutes > 0 {
		r.snooze(in.Payload, minutes)
		return
	}

	if err := r.focusOrOpen(ctx); err != nil {
		r.log.Error("failed to bring medimind forward: %v", err)
	}
}

func (r *Responder) snooze(p *notify.Payload, minutes int) {
	now := r.now()
	rem := p.Reminder
	alert := notify.Alert{
		Title:              "Snoozed: " + rem.MedicineName,
		Body:               SnoozedBody,
		ImageRef:           rem.ImageURL,
		Tag:                fmt.Sprintf("%s-snoozed-%d", rem.ID, now.UnixMilli()),
		RequireInteraction: true,
		Actions:            append([]notify.Action(nil), notify.SnoozeActions...),
		Payload:            &notify.Payload{Reminder: rem},
	}
	at := now.Add(time.Duration(minutes) * time.Minute)
	r.timer.ShowAt(at, alert)
	r.log.Info("snoozed %s for %d min (until %s)", rem.MedicineName, minutes, at.Format("15:04"))
}

func (r *Responder) focusOrOpen(ctx context.Context) error {
	if r.window == nil {
		return nil
	}
	focused, err := r.window.Focus(ctx)
	if err != nil {
		r.log.Warning("focus failed, opening a new window: %v", err)
	}
	if focused {
		return nil
	}
	return r.window.Open(ctx)
}

// Show displays a snoozed alert when its timer fires.
func (r *Responder) Show(ctx context.Context, a notify.Alert) {
	if p := r.surface.Permission(); p != notify.PermissionGranted {
		r.log.Info("dropping snoozed alert %s: permission is %s", a.Tag, p)
		return
	}
	if err := r.surface.Show(ctx, a); err != nil {
		r.log.Error("failed to show snoozed alert %s: %v", a.Tag, err)
	}
}
