// Package timer implements the async.Timer collaborator named in spec.md
// §6 ("Provides unique_timer with set/run/stop/has_expired").
//
// Grounded on the teacher's eventloop.Loop: a single goroutine owns a
// container/heap-ordered min-heap of armed deadlines (eventloop's
// timerHeap) and fires callbacks in deadline order, exactly like
// Loop.tick's timer-pop loop. Requests to arm/cancel a timer are submitted
// to that goroutine over a channel, mirroring Loop.Submit's "tasks only
// ever touch loop state from the loop goroutine" invariant — so every
// callback this service invokes runs on that single driver goroutine. It
// does not run on the goroutine that called Set.
package timer

import (
	"container/heap"
	"context"
	"sync/atomic"
	"time"

	"github.com/srsran/gnb-cucp-go/internal/async"
)

type request struct {
	id       uint64
	when     time.Time
	callback func()
	cancel   bool
	done     chan struct{}
}

type pending struct {
	id       uint64
	when     time.Time
	callback func()
	index    int
}

type pendingHeap []*pending

func (h pendingHeap) Len() int            { return len(h) }
func (h pendingHeap) Less(i, j int) bool  { return h[i].when.Before(h[j].when) }
func (h pendingHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *pendingHeap) Push(x any)         { p := x.(*pending); p.index = len(*h); *h = append(*h, p) }
func (h *pendingHeap) Pop() any {
	old := *h
	n := len(old)
	p := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return p
}

// Service is the shared deadline-ordered driver backing every Handle it
// creates. Construct one per process (or per logical clock domain) and
// share it; it is safe for concurrent use by multiple Handles.
type Service struct {
	requests chan request
	nextID   chan uint64
}

// NewService starts the driver goroutine and returns a Service bound to
// ctx: the driver exits once ctx is done, after which in-flight Set calls
// silently fail to arm (matching spec.md §9's "never block on a timer
// service that has been torn down").
func NewService(ctx context.Context) *Service {
	s := &Service{
		requests: make(chan request),
		nextID:   make(chan uint64),
	}
	go s.drive(ctx)
	go s.idGenerator(ctx)
	return s
}

func (s *Service) idGenerator(ctx context.Context) {
	var id uint64
	for {
		id++
		select {
		case s.nextID <- id:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Service) drive(ctx context.Context) {
	byID := make(map[uint64]*pending)
	h := &pendingHeap{}
	clock := time.NewTimer(time.Hour)
	clock.Stop()

	resetClock := func() {
		if !clock.Stop() {
			select {
			case <-clock.C:
			default:
			}
		}
		if h.Len() > 0 {
			d := time.Until((*h)[0].when)
			if d < 0 {
				d = 0
			}
			clock.Reset(d)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case req := <-s.requests:
			if req.cancel {
				if p, ok := byID[req.id]; ok {
					heap.Remove(h, p.index)
					delete(byID, req.id)
				}
				close(req.done)
				continue
			}
			if p, ok := byID[req.id]; ok {
				heap.Remove(h, p.index)
			}
			p := &pending{id: req.id, when: req.when, callback: req.callback}
			heap.Push(h, p)
			byID[req.id] = p
			resetClock()
			close(req.done)

		case <-clock.C:
			now := time.Now()
			for h.Len() > 0 && !(*h)[0].when.After(now) {
				p := heap.Pop(h).(*pending)
				delete(byID, p.id)
				p.callback()
			}
			resetClock()
		}
	}
}

// NewTimer returns a fresh async.Timer handle backed by this service.
func (s *Service) NewTimer() async.Timer {
	return &handle{service: s}
}

// handle implements async.Timer.
type handle struct {
	service *Service
	id      uint64
	armed   bool
	expired atomic.Bool
}

func (h *handle) Set(d time.Duration, callback func()) {
	// The handle keeps one id for its lifetime, so re-arming replaces the
	// pending deadline in the driver instead of adding a second one.
	if h.id == 0 {
		h.id = <-h.service.nextID
	}
	h.armed = true
	h.expired.Store(false)
	wrapped := func() {
		h.expired.Store(true)
		callback()
	}
	h.send(request{id: h.id, when: time.Now().Add(d), callback: wrapped})
}

func (h *handle) Run() {
	// Arming happens eagerly in Set (the service is push-driven, not a
	// two-phase arm/run pair); Run is a no-op kept to satisfy the
	// async.Timer contract symmetrically with Stop.
}

func (h *handle) Stop() {
	if !h.armed {
		return
	}
	h.armed = false
	done := make(chan struct{})
	h.send(request{id: h.id, cancel: true, done: done})
	<-done
}

func (h *handle) HasExpired() bool { return h.expired.Load() }

func (h *handle) send(req request) {
	if req.done == nil {
		req.done = make(chan struct{})
	}
	h.service.requests <- req
	<-req.done
}
