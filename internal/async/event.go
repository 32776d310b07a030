package async

import (
	"context"
	"sync"
)

// Never is the trivial awaitable that always suspends and never resumes on
// its own account: only the caller's ctx ends the wait. Tasks do not use
// it; NewEagerTask starts its body directly.
type Never struct{}

// Await blocks until ctx is done; Never never resumes by itself.
func (Never) Await(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

// Always is the trivial awaitable that never suspends.
type Always struct{}

// Ready always reports true.
func (Always) Ready() bool { return true }

// ManualEvent is a one-shot, latched awaitable (spec.md §3/§4.1 "Manual
// event"): once Set, it stays set until Reset, and every awaiter — past,
// present and future — observes the stored value without re-suspending
// once set.
//
// Grounded on the intrusive-awaiter-list design of
// original_source/include/srsran/support/async/manual_event.h and
// detail/event_impl.h, reimplemented per spec.md §9's guidance to not
// hand-roll an intrusive pointer list: a mutex-guarded slice of waiter
// channels plays the role of the awaiter list, and "flush" closes each one
// in turn.
type ManualEvent[T any] struct {
	mu      sync.Mutex
	isSet   bool
	value   T
	waiters []chan struct{}
}

// NewManualEvent constructs an unset manual event.
func NewManualEvent[T any]() *ManualEvent[T] { return &ManualEvent[T]{} }

// Set stores v and resumes every current and future-until-reset awaiter
// (spec.md §8 invariant 2/3). Setting an already-set event is a programming
// error (spec.md §7 "double-set of an event").
func (e *ManualEvent[T]) Set(v T) {
	e.mu.Lock()
	defer e.mu.Unlock()
	assert(!e.isSet, "ManualEvent.Set", ErrDoubleSet)
	e.isSet = true
	e.value = v
	for _, w := range e.waiters {
		close(w)
	}
	e.waiters = nil
}

// IsSet reports whether the event has been set (and not since Reset).
func (e *ManualEvent[T]) IsSet() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isSet
}

// Reset returns the event to unset, but only from the set state; it is a
// no-op otherwise (spec.md §3: "`reset` returns to unset *only* from the set
// state").
func (e *ManualEvent[T]) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.isSet {
		e.isSet = false
		var zero T
		e.value = zero
	}
}

// Await suspends until the event is set, or ctx is done. If the event is
// already set, Await returns immediately with the stored value (the "ready"
// branch of spec.md §4.1's await protocol; spec.md §8 invariant 2).
func (e *ManualEvent[T]) Await(ctx context.Context) (T, error) {
	e.mu.Lock()
	if e.isSet {
		v := e.value
		e.mu.Unlock()
		return v, nil
	}
	w := make(chan struct{})
	e.waiters = append(e.waiters, w)
	e.mu.Unlock()

	select {
	case <-w:
		e.mu.Lock()
		v := e.value
		e.mu.Unlock()
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// SignalEvent is an edge-triggered awaitable (spec.md §4.1 "Signal event"):
// unlike ManualEvent it does not latch — `Set` flushes current awaiters but
// does not change any persistent state, so awaiters registered after a
// Set must wait for the next one.
type SignalEvent[T any] struct {
	mu      sync.Mutex
	waiters []chan T
}

// NewSignalEvent constructs a signal event.
func NewSignalEvent[T any]() *SignalEvent[T] { return &SignalEvent[T]{} }

// Set wakes every awaiter currently registered with v; it is always an edge,
// never latched (no IsSet/Reset exist for SignalEvent, per spec.md §4.1).
func (e *SignalEvent[T]) Set(v T) {
	e.mu.Lock()
	waiters := e.waiters
	e.waiters = nil
	e.mu.Unlock()
	for _, w := range waiters {
		w <- v
		close(w)
	}
}

// Await suspends until the next Set call, or ctx is done.
func (e *SignalEvent[T]) Await(ctx context.Context) (T, error) {
	w := make(chan T, 1)
	e.mu.Lock()
	e.waiters = append(e.waiters, w)
	e.mu.Unlock()

	select {
	case v := <-w:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
