package async

import (
	"context"
	"time"
)

// Timer is the narrow contract this core assumes of the timer-service
// collaborator named in spec.md §6: "Provides `unique_timer` with
// `set(duration, callback)`, `run()`, `stop()`, `has_expired()`. Invariant:
// callbacks fire on the same executor that called `set`." A concrete
// implementation lives in internal/adapters/timer; this package only
// depends on the interface, per spec.md §9 "Global singletons: pass them
// explicitly through construction".
type Timer interface {
	// Set arms the timer to fire callback after d, replacing any previous
	// arming.
	Set(d time.Duration, callback func())
	// Run starts counting down from the most recent Set. An implementation
	// may already start the countdown in Set, leaving Run a no-op.
	Run()
	// Stop cancels a running timer; callback will not fire if Stop wins the
	// race against expiry.
	Stop()
	// HasExpired reports whether the timer's callback has already fired.
	HasExpired() bool
}

// TimerWait wraps a Timer as an awaitable (spec.md §4.1 "Timer wait"):
// Await reports whether the timer expired (true) or the wait ended first
// because ctx was done (false), in which case Await stops the timer itself.
type TimerWait struct {
	timer Timer
}

// NewTimerWait returns an awaitable over timer. It does not arm the timer
// and does not use d; Await arms it with the duration passed to Await.
func NewTimerWait(timer Timer, d time.Duration) *TimerWait {
	return &TimerWait{timer: timer}
}

// Await arms the wrapped timer for d and suspends until it expires or ctx
// is done, returning true iff the timer expired. A Stop issued elsewhere
// does not wake Await, since the callback then never fires.
func (t *TimerWait) Await(ctx context.Context, d time.Duration) (expired bool, err error) {
	done := make(chan struct{})
	t.timer.Set(d, func() { close(done) })
	t.timer.Run()
	select {
	case <-done:
		return true, nil
	case <-ctx.Done():
		t.timer.Stop()
		select {
		case <-done:
			// Lost the race: the callback had already fired.
			return true, nil
		default:
			return false, ctx.Err()
		}
	}
}
