package rxbuffer

import (
	"sync"
	"sync/atomic"

	"github.com/srsran/gnb-cucp-go/internal/ran"
)

// entryState is the buffer entry's atomic state tag (spec.md §3/§4.3.4).
// Grounded on the teacher's eventloop.FastState: a lock-free atomic with
// named CompareAndSwap-based transitions, cache-line considerations aside
// (this pool is sized in the tens, not the event loop's hot path).
type entryState uint32

const (
	entryAvailable entryState = iota
	entryReserved
	entryLocked
)

func (s entryState) String() string {
	switch s {
	case entryAvailable:
		return "available"
	case entryReserved:
		return "reserved"
	case entryLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// entry is one reservable buffer slot (spec.md §3 "Rx buffer entry").
type entry struct {
	state atomic.Uint32 // entryState

	mu          sync.Mutex // guards the fields below, all slot-thread-owned except state
	identifier  Identifier
	expireSlot  ran.SlotPoint
	hasExpire   bool
	codeblocks  []int32
	crc         []bool
	pool        *codeblockPool
	expireSlots uint32
}

func newEntry(pool *codeblockPool, expireTimeoutSlots uint32) *entry {
	e := &entry{pool: pool, identifier: InvalidIdentifier, expireSlots: expireTimeoutSlots}
	e.state.Store(uint32(entryAvailable))
	return e
}

func (e *entry) loadState() entryState { return entryState(e.state.Load()) }

// isFree reports whether the entry is available for a brand new
// reservation to claim (spec.md §4.3.6 "Stop" and the
// rx-buffer-locked-entry-never-expires scenario of spec.md §8 both depend
// on an externally visible is_free predicate).
func (e *entry) isFree() bool { return e.loadState() == entryAvailable }

// reserve transitions available→reserved or performs an in-place resize
// while already reserved (spec.md §4.3.4 table). It acquires/releases
// codeblocks against the shared pool, rolling back to `available` on
// failure to acquire enough codeblocks.
//
// reset_crc (spec.md §4.3.3 step 2) is
// `identifier_changed or entry_was_available or nof_codeblocks_changed` —
// since this is always called either on a fresh `available` entry
// (identifier_changed and entry_was_available both true) or on the one
// entry already keyed by the caller's identifier (identifier_changed always
// false), the formula collapses to "was available, or the codeblock count
// changed", which is exactly what the two branches below do: the available
// branch always builds a fresh crc slice, and the reserved branch only does
// so when nCB differs from the entry's current codeblock count.
func (e *entry) reserve(nCB int) bool {
	cur := e.loadState()
	if cur == entryLocked {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case cur == entryAvailable:
		ids, ok := e.pool.acquireN(nCB)
		if !ok {
			return false
		}
		e.codeblocks = ids
		e.crc = make([]bool, nCB)
		if !e.state.CompareAndSwap(uint32(entryAvailable), uint32(entryReserved)) {
			// Concurrent reservation beat us to it (should not happen: the
			// slot thread is the sole mutator of `available` entries, but
			// defend the invariant anyway) — roll back.
			e.pool.releaseAll(ids)
			return false
		}
		return true

	case cur == entryReserved:
		if nCB == len(e.codeblocks) {
			return true
		}
		if nCB < len(e.codeblocks) {
			// Shrink: free the surplus back to the pool.
			surplus := e.codeblocks[nCB:]
			e.pool.releaseAll(surplus)
			e.codeblocks = e.codeblocks[:nCB]
			e.crc = make([]bool, nCB)
			return true
		}
		// Grow: pull additional codeblocks; failure leaves the entry back
		// in `available` per spec.md §4.3.4 ("failure returns the entry to
		// *available*").
		extra, ok := e.pool.acquireN(nCB - len(e.codeblocks))
		if !ok {
			e.pool.releaseAll(e.codeblocks)
			e.codeblocks = nil
			e.crc = nil
			e.state.Store(uint32(entryAvailable))
			return false
		}
		e.codeblocks = append(e.codeblocks, extra...)
		e.crc = make([]bool, nCB)
		return true

	default:
		return false
	}
}

// lock transitions reserved→locked (spec.md §4.3.4 "called by unique-handle
// constructor"), implemented as a single CompareAndSwap ("exchange" in
// spec.md §5 terms).
func (e *entry) lock() bool {
	return e.state.CompareAndSwap(uint32(entryReserved), uint32(entryLocked))
}

// unlock transitions locked→reserved (handle drop, spec.md §4.3.4).
func (e *entry) unlock() {
	assertState(e.state.CompareAndSwap(uint32(entryLocked), uint32(entryReserved)), "entry.unlock")
}

// release transitions locked→available and frees the entry's codeblocks
// (handle Release(), spec.md §4.3.4). Releasing an entry that is not locked
// is a programming error (spec.md §7 "release of an already-available
// buffer").
func (e *entry) release() {
	assertState(e.loadState() == entryLocked, "entry.release: not locked")
	e.mu.Lock()
	e.pool.releaseAll(e.codeblocks)
	e.codeblocks = nil
	e.crc = nil
	e.identifier = InvalidIdentifier
	e.hasExpire = false
	e.mu.Unlock()
	e.state.Store(uint32(entryAvailable))
}

// tryExpire frees the entry if it is reserved, unlocked and its expiry has
// passed; if it is locked, its expiry is pushed forward instead (spec.md
// §4.3.4/§4.3.5 "housekeeping"). It returns true iff the entry transitioned
// to available.
func (e *entry) tryExpire(now ran.SlotPoint) bool {
	st := e.loadState()
	if st == entryLocked {
		e.mu.Lock()
		if e.hasExpire {
			e.expireSlot = e.expireSlot.Add(e.expireSlots)
		}
		e.mu.Unlock()
		return false
	}
	if st != entryReserved {
		return false
	}
	e.mu.Lock()
	expired := e.hasExpire && !now.Before(e.expireSlot)
	if !expired {
		e.mu.Unlock()
		return false
	}
	ids := e.codeblocks
	e.codeblocks = nil
	e.crc = nil
	e.identifier = InvalidIdentifier
	e.hasExpire = false
	e.mu.Unlock()
	e.pool.releaseAll(ids)
	if !e.state.CompareAndSwap(uint32(entryReserved), uint32(entryAvailable)) {
		// Someone locked it between our check and the CAS; the codeblocks
		// are already freed which would corrupt a concurrent decode, but
		// the slot thread is the only reserve()/run_slot() caller per
		// spec.md §5, so this path is unreachable in correct usage.
		return false
	}
	return true
}

// setIdentifier records id and arms (or re-arms) the expiry for slot+timeout
// (spec.md §4.3.3 step 4).
func (e *entry) setIdentifier(id Identifier, expireAt ran.SlotPoint) {
	e.mu.Lock()
	e.identifier = id
	e.expireSlot = expireAt
	e.hasExpire = true
	e.mu.Unlock()
}

func (e *entry) getIdentifier() Identifier {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.identifier
}

// codeblocksAndCRC returns the entry's codeblock ids and a mutable CRC view
// for the decoder (spec.md §4.3.4 "get_codeblocks_crc").
func (e *entry) codeblocksAndCRC() ([]int32, []bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.codeblocks, e.crc
}

func assertState(cond bool, msg string) {
	if !cond {
		panic("rxbuffer: programming error: " + msg)
	}
}
