package timer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimerFiresAfterDuration(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := NewService(ctx)

	fired := make(chan struct{})
	tm := svc.NewTimer()
	tm.Set(10*time.Millisecond, func() { close(fired) })
	tm.Run()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
	require.True(t, tm.HasExpired())
}

func TestTimerStopPreventsFiring(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := NewService(ctx)

	fired := make(chan struct{})
	tm := svc.NewTimer()
	tm.Set(50*time.Millisecond, func() { close(fired) })
	tm.Run()
	tm.Stop()

	select {
	case <-fired:
		t.Fatal("stopped timer fired")
	case <-time.After(100 * time.Millisecond):
	}
	require.False(t, tm.HasExpired())
}

func TestTimerCanBeReSetBeforeFiring(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := NewService(ctx)

	fired := make(chan time.Time, 1)
	tm := svc.NewTimer()
	tm.Set(time.Hour, func() { fired <- time.Now() })
	tm.Run()
	tm.Set(10*time.Millisecond, func() { fired <- time.Now() })
	tm.Run()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("rearmed timer never fired")
	}
}
