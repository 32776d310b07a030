package async

import "context"

// Sequencer is a per-entity FIFO of tasks executed one at a time by a
// driver loop task (spec.md §3/§4.1 "Task sequencer"). It is the mechanism
// by which CU-CP serializes all procedures belonging to a single UE (or DU,
// or CU-UP): at most one enqueued task runs at a time, and a new procedure
// starts only after the previous one's final-suspend has fired (spec.md §5
// "Ordering guarantees").
//
// Grounded on original_source/include/srsran/support/async/async_task_loop.h
// (async_task_sequencer), substituting the coroutine-macro driver loop with
// a driver goroutine reading from a Queue of closures.
type Sequencer struct {
	queue   *Queue[func(context.Context)]
	running chan struct{} // closed once the driver goroutine exits
}

// NewSequencer starts the driver loop immediately (it is, itself, an eager
// task: spec.md §4.1 "Construction starts its driver as an eager task").
func NewSequencer(ctx context.Context, queueSize int) *Sequencer {
	s := &Sequencer{
		queue:   NewQueue[func(context.Context)](queueSize),
		running: make(chan struct{}),
	}
	go s.drive(ctx)
	return s
}

func (s *Sequencer) drive(ctx context.Context) {
	defer close(s.running)
	for {
		job, err := s.queue.Await(ctx)
		if err != nil {
			// ErrQueueClosed (from Stop) or ctx cancellation: exit the loop.
			return
		}
		if job == nil {
			// The no-op sentinel pushed by Stop; queue is closed right after,
			// so the next Await will observe ErrQueueClosed and exit, but
			// handle it directly too in case Stop raced the close.
			return
		}
		// Await the popped task in turn: one task at a time, strict FIFO.
		done := make(chan struct{})
		go func() {
			defer close(done)
			job(ctx)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			<-done
			return
		}
	}
}

// Enqueue schedules a task to run after every task already enqueued has
// completed. It returns ErrSequencerStopped if the sequencer has been
// stopped, and false (no error) if the queue is momentarily full — callers
// needing a reliable enqueue should retry or increase queueSize, mirroring
// the source's try_push semantics.
func (s *Sequencer) Enqueue(job func(context.Context)) (scheduled bool, err error) {
	if job == nil {
		panic("async: Sequencer.Enqueue: nil job")
	}
	if !s.queue.TryPush(job) {
		select {
		case <-s.running:
			return false, ErrSequencerStopped
		default:
			return false, nil
		}
	}
	return true, nil
}

// ScheduleTask adapts a Task[struct{}] (or any Task[T], result discarded)
// into an Enqueue call, matching the C++ API's `schedule(async_task<R>&&)`
// overload.
func ScheduleTask[T any](s *Sequencer, t *Task[T]) (bool, error) {
	return s.Enqueue(func(ctx context.Context) {
		_, _ = t.Await(ctx)
	})
}

// NofPendingTasks returns the number of tasks buffered ahead of the one
// currently running.
func (s *Sequencer) NofPendingTasks() int { return s.queue.Len() }

// Stop drains the sequencer: it pushes a no-op sentinel so the driver wakes,
// closes the queue so no further work is accepted, and returns once the
// driver goroutine has exited. It is safe to call Stop more than once.
func (s *Sequencer) Stop(ctx context.Context) {
	s.queue.TryPush(nil)
	s.queue.Close()
	select {
	case <-s.running:
	case <-ctx.Done():
	}
}

// Done returns a channel closed once the driver loop has exited.
func (s *Sequencer) Done() <-chan struct{} { return s.running }
