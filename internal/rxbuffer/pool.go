package rxbuffer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/srsran/gnb-cucp-go/internal/ran"
)

// Pool is the PHY upper-layer rx-buffer pool (spec.md §4.3.3): NofBuffers
// reservable entries sharing a NofCodeblocks-wide codeblock budget, with
// per-slot housekeeping that reclaims reserved-but-unlocked entries once
// their expiry has passed.
//
// Grounded on original_source/.../rx_buffer_pool_impl.h's reserve/run_slot
// contract; the entry table itself is a plain slice rather than
// ran.SlotArray since every entry always exists (there is no empty/occupied
// distinction at the slot-array level — "free" is an entry-internal state).
type Pool struct {
	entries []*entry
	byID    sync.Map // Identifier -> *entry, for find-by-identifier lookups
	stopped atomic.Bool
}

// NewPool builds a pool from cfg, pre-allocating every entry and the shared
// codeblock free list.
func NewPool(cfg Config) *Pool {
	cbPool := newCodeblockPool(cfg)
	p := &Pool{entries: make([]*entry, cfg.NofBuffers)}
	for i := range p.entries {
		p.entries[i] = newEntry(cbPool, cfg.ExpireTimeoutSlots)
	}
	return p
}

// Reserve finds a free entry (or the entry already reserved under id, for
// in-place resize) and reserves nCodeblocks for it, arming its expiry
// relative to now (spec.md §4.3.3 "Reserve").  It returns an invalid
// UniqueRxBuffer if the pool has no free entry or the codeblock budget is
// exhausted, or if the pool has been stopped.
//
// Extra precondition (spec.md §4.3.3): newData == false with no entry
// already reserved under id is an insufficient-buffers condition, never a
// fresh allocation — a retransmission can only grow/shrink an existing
// reservation, not conjure a new one.
func (p *Pool) Reserve(id Identifier, now ran.SlotPoint, nCodeblocks int, newData bool) UniqueRxBuffer {
	if p.stopped.Load() {
		return UniqueRxBuffer{}
	}

	if existing, ok := p.byID.Load(id); ok {
		e := existing.(*entry)
		if e.getIdentifier() != id {
			// Stale mapping left by Release, which clears the entry's
			// identifier without touching byID: the entry no longer holds id.
			p.byID.Delete(id)
		} else {
			if e.reserve(nCodeblocks) {
				e.setIdentifier(id, now.Add(e.expireSlots))
				if e.lock() {
					return UniqueRxBuffer{entry: e, id: id}
				}
			}
			return UniqueRxBuffer{}
		}
	}

	if !newData {
		return UniqueRxBuffer{}
	}

	for _, e := range p.entries {
		if !e.isFree() {
			continue
		}
		if !e.reserve(nCodeblocks) {
			continue
		}
		e.setIdentifier(id, now.Add(e.expireSlots))
		p.byID.Store(id, e)
		if e.lock() {
			return UniqueRxBuffer{entry: e, id: id}
		}
		// Someone else locked it between reserve() and lock() — cannot
		// happen under the single-slot-thread-reserves invariant, but fail
		// safe rather than hand out a buffer we don't hold the lock on.
		p.byID.Delete(id)
		return UniqueRxBuffer{}
	}
	return UniqueRxBuffer{}
}

// RunSlot performs expiry housekeeping for the given tick, freeing any
// reserved-but-unlocked entry whose expiry has passed and pushing the
// expiry of locked entries forward (spec.md §4.3.5 "RunSlot").
func (p *Pool) RunSlot(now ran.SlotPoint) {
	for _, e := range p.entries {
		if e.tryExpire(now) {
			p.forgetIdentifier(e)
		}
	}
}

// forgetIdentifier removes the first byID mapping that points at e. RunSlot
// calls it after tryExpire frees e; since tryExpire has already cleared
// e.identifier, the mapping is found by scanning for e itself. Mappings left
// behind by Release are dropped by Reserve instead.
func (p *Pool) forgetIdentifier(e *entry) {
	p.byID.Range(func(key, value any) bool {
		if value.(*entry) == e {
			p.byID.Delete(key)
			return false
		}
		return true
	})
}

// Stop marks the pool as no longer accepting new reservations (spec.md
// §4.3.6) and blocks until every entry still locked (a decode in flight) has
// been released, so callers can safely drop the pool once Stop returns.
func (p *Pool) Stop() {
	p.stopped.Store(true)
	for {
		anyLocked := false
		for _, e := range p.entries {
			if e.loadState() == entryLocked {
				anyLocked = true
				break
			}
		}
		if !anyLocked {
			return
		}
		time.Sleep(time.Millisecond)
	}
}
