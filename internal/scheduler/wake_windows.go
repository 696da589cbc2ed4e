//go:build windows

package scheduler

import (
	"context"
	"os"
)

// FocusSignal is nil on Windows: there is no user signal to deliver.
var FocusSignal os.Signal

// WatchFocus is a no-op on Windows; the ticker and resume detection still
// apply.
func WatchFocus(_ context.Context, _ *Scheduler) {}
