package obs

import (
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-catrate"
)

// RateCounter is a simple monotonic event counter with an additional
// sliding-window view, grounded on the teacher's catrate.Limiter: spec.md
// §4.2.5/§4.2.6/§8 name counters (reestablishments-without-context,
// reestab-with-context, handover-requested, handover-succeeded) that are
// read as totals in tests but, in a live deployment, are exactly the kind
// of "rate of rare events" catrate.Limiter exists to police — so the same
// type serves as both the counter and (optionally) an alarm gate on
// abnormal rates of the same event.
type RateCounter struct {
	total   atomic.Int64
	limiter *catrate.Limiter
}

// NewRateCounter creates a counter that additionally tracks windows, e.g.
// {time.Minute: 50} to flag more than 50 occurrences/minute. A nil/empty
// windows map disables the catrate.Limiter and leaves only the total.
func NewRateCounter(windows map[time.Duration]int) *RateCounter {
	rc := &RateCounter{}
	if len(windows) > 0 {
		rc.limiter = catrate.NewLimiter(windows)
	}
	return rc
}

// Inc records one occurrence of the event, returning whether it is still
// within the configured rate windows (always true if none were configured).
func (c *RateCounter) Inc() (withinLimits bool) {
	c.total.Add(1)
	if c.limiter == nil {
		return true
	}
	_, ok := c.limiter.Allow(struct{}{})
	return ok
}

// Total returns the all-time occurrence count.
func (c *RateCounter) Total() int64 { return c.total.Load() }

// Registry groups the named counters spec.md §4.2.5/§4.2.6/§8 call out by
// name, so cucp.Manager can hold one field instead of four.
type Registry struct {
	ReestablishmentsWithoutContext *RateCounter
	ReestabWithContext             *RateCounter
	HandoverRequested              *RateCounter
	HandoverSucceeded              *RateCounter
}

// NewRegistry builds a Registry with plain (unwindowed) counters; callers
// needing rate-limiting/alarming can construct RateCounters with windows
// directly and assign them instead.
func NewRegistry() *Registry {
	return &Registry{
		ReestablishmentsWithoutContext: NewRateCounter(nil),
		ReestabWithContext:             NewRateCounter(nil),
		HandoverRequested:              NewRateCounter(nil),
		HandoverSucceeded:              NewRateCounter(nil),
	}
}
