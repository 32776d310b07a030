package async

import (
	"context"
	"sync"
	"sync/atomic"
)

// Receiver holds the state of a scoped, single-shot event (spec.md §3
// "Scoped event sender/receiver"): uninit, unset, set<T>, or cancelled.
// Destroying an unset receiver (i.e. abandoning it without ever awaiting and
// without its Sender having been dropped) is a programming error in the
// source design; this reimplementation instead makes that state simply
// unreachable from outside the package — a Receiver is only ever produced
// already paired with its Sender via NewEventPair.
type Receiver[T any] struct {
	mu     sync.Mutex
	done   chan struct{}
	value  T
	err    error
	result bool
}

// Sender is a movable, single-use handle that either sets the receiver's
// value exactly once, or, if dropped without doing so, cancels the
// receiver (spec.md §3: "a sender is a movable handle that either sets the
// value once or, on drop, cancels the receiver").
type Sender[T any] struct {
	r    *Receiver[T]
	used atomic.Bool
}

// NewEventPair creates a linked Sender/Receiver, analogous to constructing a
// scoped event and splitting it into its two halves.
func NewEventPair[T any]() (*Sender[T], *Receiver[T]) {
	r := &Receiver[T]{done: make(chan struct{})}
	return &Sender[T]{r: r}, r
}

// Set resolves the receiver with v. Calling Set more than once, or after the
// sender has already been dropped (cancelled), is a programming error.
func (s *Sender[T]) Set(v T) {
	assert(s.used.CompareAndSwap(false, true), "Sender.Set", ErrDoubleSet)
	s.r.mu.Lock()
	s.r.value, s.r.result = v, true
	close(s.r.done)
	s.r.mu.Unlock()
}

// Drop cancels the receiver if the sender never called Set. Safe (and a
// no-op) to call after Set; callers typically `defer sender.Drop()`
// immediately after NewEventPair to guarantee the receiver is always
// resolved even on an early-return error path.
func (s *Sender[T]) Drop() {
	if !s.used.CompareAndSwap(false, true) {
		return
	}
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	s.r.err = ErrReceiverCancelled
	close(s.r.done)
}

// Await suspends until the sender resolves or cancels the receiver, or ctx
// is done.
func (r *Receiver[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-r.done:
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
