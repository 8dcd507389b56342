package poller

import (
	"time"

	"golang.org/x/time/rate"
)

// Debouncer collapses bursts of triggers into a single action per window.
//
// The window opens on the first trigger, which runs the action immediately;
// triggers arriving before the window closes are dropped, not queued. Built
// on a one-token bucket so the "pending" bookkeeping lives in the limiter.
type Debouncer struct {
	limiter *rate.Limiter
	action  func()
}

func NewDebouncer(window time.Duration, action func()) *Debouncer {
	if window <= 0 {
		window = time.Second
	}
	return &Debouncer{
		limiter: rate.NewLimiter(rate.Every(window), 1),
		action:  action,
	}
}

// Trigger runs the guarded action if the window is closed and reports
// whether it ran.
func (d *Debouncer) Trigger() bool {
	if !d.limiter.Allow() {
		return false
	}
	if d.action != nil {
		d.action()
	}
	return true
}
