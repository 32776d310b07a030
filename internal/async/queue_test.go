package async

import (
	"context"
	"testing"
	"time"
)

func TestQueueTryPushFailsIffFullAndNoWaiter(t *testing.T) {
	q := NewQueue[int](2)
	if !q.TryPush(1) || !q.TryPush(2) {
		t.Fatalf("expected first two pushes to succeed")
	}
	if q.TryPush(3) {
		t.Fatalf("expected push to fail once full with no waiter")
	}
	if q.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", q.Len())
	}
}

func TestQueuePushHandsDirectlyToWaiter(t *testing.T) {
	q := NewQueue[int](1)
	resultCh := make(chan int, 1)
	go func() {
		v, _ := q.Await(context.Background())
		resultCh <- v
	}()
	time.Sleep(10 * time.Millisecond)
	if !q.TryPush(5) {
		t.Fatalf("push to a waiting awaiter should succeed even though ring has capacity only 1")
	}
	// Because the value was handed straight to the waiter, the ring itself
	// must remain empty per spec.md §3's "either the ring is empty or the
	// awaiter list is empty" invariant; a second push should now also
	// succeed into the (still empty) ring.
	if !q.TryPush(6) {
		t.Fatalf("ring should have had room after direct handoff")
	}
	select {
	case v := <-resultCh:
		if v != 5 {
			t.Fatalf("awaiter got %d, want 5", v)
		}
	case <-time.After(time.Second):
		t.Fatalf("awaiter never resumed")
	}
}

func TestQueueAwaitOrderFIFO(t *testing.T) {
	q := NewQueue[int](4)
	q.TryPush(1)
	q.TryPush(2)
	q.TryPush(3)
	for _, want := range []int{1, 2, 3} {
		v, err := q.Await(context.Background())
		if err != nil || v != want {
			t.Fatalf("Await() = (%d, %v), want (%d, nil)", v, err, want)
		}
	}
}

func TestQueueCloseUnblocksAwaiters(t *testing.T) {
	q := NewQueue[int](1)
	errCh := make(chan error, 1)
	go func() {
		_, err := q.Await(context.Background())
		errCh <- err
	}()
	time.Sleep(10 * time.Millisecond)
	q.Close()
	select {
	case err := <-errCh:
		if err != ErrQueueClosed {
			t.Fatalf("err = %v, want ErrQueueClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("awaiter never unblocked by Close")
	}
	if q.TryPush(1) {
		t.Fatalf("TryPush should fail after Close")
	}
}
