package responder

import (
	"container/heap"
	"context"
	"time"

	"github.com/notexe/medimind/internal/notify"
)

const maxSleepCap = 60 * time.Second

// Timer schedules an alert for later.
type Timer interface {
	ShowAt(at time.Time, a notify.Alert)
}

// Deferred is a best-effort in-process timer for snoozed alerts. Pending
// alerts live only in memory and are lost when the process exits.
type Deferred struct {
	addChan chan pendingAlert
	ctx     context.Context
	now     func() time.Time
}

// NewDeferred starts the timer goroutine. show is called for every alert
// whose time has come. The goroutine exits when ctx is cancelled.
func NewDeferred(ctx context.Context, show func(notify.Alert)) *Deferred {
	return newDeferred(ctx, show, time.Now)
}

func newDeferred(ctx context.Context, show func(notify.Alert), now func() time.Time) *Deferred {
	d := &Deferred{
		addChan: make(chan pendingAlert, 64),
		ctx:     ctx,
		now:     now,
	}
	go d.run(show)
	return d
}

// ShowAt queues a for display at at.
func (d *Deferred) ShowAt(at time.Time, a notify.Alert) {
	select {
	case d.addChan <- pendingAlert{At: at, Alert: a}:
	case <-d.ctx.Done():
	}
}

// run owns the heap. It sleeps until the earliest alert is due, but never
// longer than maxSleepCap, so a wall clock jump is noticed within a minute.
func (d *Deferred) run(show func(notify.Alert)) {
	h := &alertHeap{}
	heap.Init(h)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	resetTimer := func() <-chan time.Time {
		if timer != nil {
			timer.Stop()
		}
		if h.Len() == 0 {
			return nil
		}
		dur := (*h)[0].At.Sub(d.now())
		if dur > maxSleepCap {
			dur = maxSleepCap
		}
		if dur < 0 {
			dur = 0
		}
		timer = time.NewTimer(dur)
		return timer.C
	}

	timerCh := resetTimer()
	for {
		select {
		case <-d.ctx.Done():
			return

		case p := <-d.addChan:
			heapPush(h, p)
			timerCh = resetTimer()

		case <-timerCh:
			now := d.now()
			for h.Len() > 0 && !(*h)[0].At.After(now) {
				show(heapPop(h).Alert)
			}
			timerCh = resetTimer()
		}
	}
}
