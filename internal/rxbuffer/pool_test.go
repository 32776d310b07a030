package rxbuffer

import (
	"testing"
	"time"

	"github.com/srsran/gnb-cucp-go/internal/ran"
)

func testConfig() Config {
	return Config{
		MaxCodeblockSize:   48,
		NofBuffers:         2,
		NofCodeblocks:      4,
		ExpireTimeoutSlots: 10,
	}
}

func TestPoolReserveLocksAndReturnsCodeblocks(t *testing.T) {
	p := NewPool(testConfig())
	id := Identifier{RNTI: 0x4601, HARQPID: 0}
	buf := p.Reserve(id, ran.SlotPoint{Count: 0}, 2, true)
	if !buf.Valid() {
		t.Fatalf("Reserve() returned invalid handle")
	}
	if buf.NofCodeblocks() != 2 {
		t.Fatalf("NofCodeblocks() = %d, want 2", buf.NofCodeblocks())
	}
	cb, crc := buf.Codeblock(0)
	if cb == nil || crc == nil {
		t.Fatalf("Codeblock(0) returned nil")
	}
	buf.Release()
}

func TestPoolExhaustionReturnsInvalidHandle(t *testing.T) {
	p := NewPool(testConfig())
	a := p.Reserve(Identifier{RNTI: 1, HARQPID: 0}, ran.SlotPoint{}, 2, true)
	b := p.Reserve(Identifier{RNTI: 2, HARQPID: 0}, ran.SlotPoint{}, 2, true)
	if !a.Valid() || !b.Valid() {
		t.Fatalf("expected both reservations to succeed (budget exactly covers them)")
	}
	// Pool has 2 entries and both are in use; the third reservation must fail.
	c := p.Reserve(Identifier{RNTI: 3, HARQPID: 0}, ran.SlotPoint{}, 1, true)
	if c.Valid() {
		t.Fatalf("expected third reservation to fail: no free entry")
	}
}

func TestPoolCodeblockBudgetExhaustionRollsBack(t *testing.T) {
	p := NewPool(testConfig()) // 4 codeblocks total, 2 entries
	a := p.Reserve(Identifier{RNTI: 1, HARQPID: 0}, ran.SlotPoint{}, 3, true)
	if !a.Valid() {
		t.Fatalf("first reservation should succeed")
	}
	// only 1 codeblock left; asking for 2 must fail and roll back cleanly.
	b := p.Reserve(Identifier{RNTI: 2, HARQPID: 0}, ran.SlotPoint{}, 2, true)
	if b.Valid() {
		t.Fatalf("expected second reservation to fail on codeblock budget")
	}
	// the single remaining codeblock must still be acquirable.
	c := p.Reserve(Identifier{RNTI: 3, HARQPID: 0}, ran.SlotPoint{}, 1, true)
	if !c.Valid() {
		t.Fatalf("expected single-codeblock reservation to succeed after rollback")
	}
}

func TestPoolRunSlotExpiresUnlockedReservation(t *testing.T) {
	p := NewPool(testConfig())
	id := Identifier{RNTI: 5, HARQPID: 1}
	buf := p.Reserve(id, ran.SlotPoint{Count: 0}, 1, true)
	if !buf.Valid() {
		t.Fatalf("Reserve() failed")
	}
	buf.Unlock() // back to reserved, still holds codeblocks, expiry armed at 10

	p.RunSlot(ran.SlotPoint{Count: 5}) // before expiry
	reReserved := p.Reserve(Identifier{RNTI: 99, HARQPID: 0}, ran.SlotPoint{Count: 5}, 4, true)
	if reReserved.Valid() {
		t.Fatalf("expected pool still exhausted before expiry")
	}

	p.RunSlot(ran.SlotPoint{Count: 11}) // past expiry
	freed := p.Reserve(Identifier{RNTI: 99, HARQPID: 0}, ran.SlotPoint{Count: 11}, 1, true)
	if !freed.Valid() {
		t.Fatalf("expected expired entry to be reclaimed and reservable")
	}
}

func TestPoolRunSlotNeverExpiresLockedEntry(t *testing.T) {
	p := NewPool(testConfig())
	id := Identifier{RNTI: 7, HARQPID: 0}
	buf := p.Reserve(id, ran.SlotPoint{Count: 0}, 1, true)
	if !buf.Valid() {
		t.Fatalf("Reserve() failed")
	}
	// buf stays locked (never Unlock()'d); housekeeping must not reclaim it
	// even long past its nominal expiry.
	p.RunSlot(ran.SlotPoint{Count: 1000})
	if buf.NofCodeblocks() != 1 {
		t.Fatalf("locked buffer lost its codeblocks across RunSlot")
	}
	buf.Release()
}

func TestPoolStopRejectsNewReservations(t *testing.T) {
	p := NewPool(testConfig())
	p.Stop()
	buf := p.Reserve(Identifier{RNTI: 1, HARQPID: 0}, ran.SlotPoint{}, 1, true)
	if buf.Valid() {
		t.Fatalf("expected Reserve() to fail after Stop()")
	}
}

// TestPoolReserveRejectsRetransmissionWithNoEntry exercises spec.md §4.3.3's
// extra precondition: new_data == false with no matching reservation must
// fail rather than hand out a fresh buffer.
func TestPoolReserveRejectsRetransmissionWithNoEntry(t *testing.T) {
	p := NewPool(testConfig())
	buf := p.Reserve(Identifier{RNTI: 1, HARQPID: 0}, ran.SlotPoint{}, 1, false)
	if buf.Valid() {
		t.Fatalf("expected retransmission reservation with no existing entry to fail")
	}
}

// TestPoolReserveSameSizePreservesCRCRegardlessOfNewData checks reset_crc's
// actual formula (identifier_changed or entry_was_available or
// nof_codeblocks_changed): a same-size re-reservation of an existing entry
// must never wipe CRC state, even when new_data is true.
func TestPoolReserveSameSizePreservesCRCRegardlessOfNewData(t *testing.T) {
	p := NewPool(testConfig())
	id := Identifier{RNTI: 1, HARQPID: 0}

	buf := p.Reserve(id, ran.SlotPoint{Count: 0}, 2, true)
	if !buf.Valid() {
		t.Fatalf("first reservation failed")
	}
	_, crc0 := buf.Codeblock(0)
	*crc0 = true
	buf.Unlock()

	// Same codeblock count, new_data=true: must not reset the CRC flag we
	// just set, since reset_crc does not depend on new_data at all.
	buf2 := p.Reserve(id, ran.SlotPoint{Count: 1}, 2, true)
	if !buf2.Valid() {
		t.Fatalf("second reservation failed")
	}
	_, crc1 := buf2.Codeblock(0)
	if !*crc1 {
		t.Fatalf("same-size reservation must preserve CRC state")
	}
	buf2.Release()
}

// TestPoolReserveSizeChangeResetsCRC checks the other half of the formula:
// a codeblock-count change always resets CRC, independent of new_data.
func TestPoolReserveSizeChangeResetsCRC(t *testing.T) {
	p := NewPool(testConfig())
	id := Identifier{RNTI: 1, HARQPID: 0}

	buf := p.Reserve(id, ran.SlotPoint{Count: 0}, 2, true)
	if !buf.Valid() {
		t.Fatalf("first reservation failed")
	}
	_, crc0 := buf.Codeblock(0)
	*crc0 = true
	buf.Unlock()

	buf2 := p.Reserve(id, ran.SlotPoint{Count: 1}, 1, false)
	if !buf2.Valid() {
		t.Fatalf("resized reservation failed")
	}
	_, crc1 := buf2.Codeblock(0)
	if *crc1 {
		t.Fatalf("codeblock-count change must reset CRC state")
	}
	buf2.Release()
}

// TestPoolStopBlocksUntilLockedEntryIsReleased checks spec.md §4.3.6's
// "stop() waits for every locked entry to become unlocked" contract.
func TestPoolStopBlocksUntilLockedEntryIsReleased(t *testing.T) {
	p := NewPool(testConfig())
	buf := p.Reserve(Identifier{RNTI: 1, HARQPID: 0}, ran.SlotPoint{}, 1, true)
	if !buf.Valid() {
		t.Fatalf("Reserve() failed")
	}

	stopped := make(chan struct{})
	go func() {
		p.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatalf("Stop() returned while an entry is still locked")
	case <-time.After(20 * time.Millisecond):
	}

	buf.Release()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatalf("Stop() never returned after the locked entry was released")
	}
}
