package cucp

import (
	"context"
	"sync"

	"github.com/srsran/gnb-cucp-go/internal/async"
	"github.com/srsran/gnb-cucp-go/internal/ran"
)

// UEState is the UE context's lifecycle state (spec.md §4.2.4 UE states
// table).
type UEState int

const (
	UEStateNew UEState = iota
	UEStateConnected
	UEStateReestablishing
	UEStateHandoverPending
	UEStateDeleting
)

func (s UEState) String() string {
	switch s {
	case UEStateNew:
		return "new"
	case UEStateConnected:
		return "connected"
	case UEStateReestablishing:
		return "reestablishing"
	case UEStateHandoverPending:
		return "handover-pending"
	case UEStateDeleting:
		return "deleting"
	default:
		return "unknown"
	}
}

// UEContext is the CU-CP-internal UE record (spec.md §3 "UE context
// (CU-CP core)"). Every identifier the UE is known by across F1/E1/NGAP is
// held here; the `Sequencer` gives every procedure acting on this UE strict
// FIFO ordering with respect to every other procedure on the same UE
// (spec.md §5 "per-entity FIFO").
type UEContext struct {
	Index ran.UEIndex

	mu sync.Mutex

	DUIndex    ran.DUIndex
	PCI        ran.PCI
	CRNTI      ran.RNTI
	DUUEF1APID ran.DUUEF1APID
	CUUEF1APID ran.CUUEF1APID

	CUUPIndex  ran.CUUPIndex
	CUCPE1APID ran.CUCPE1APID
	CUUPE1APID ran.CUUPE1APID

	AMFUEID ran.AMFUENGAPID
	RANUEID ran.RANUENGAPID

	State UEState
	DRBs  []uint8

	Sequencer *async.Sequencer

	// attachTimer bounds the wait for the AMF's Initial Context Setup
	// Request once the attach procedure has sent the Initial UE Message
	// (spec.md §6 "unique_timer"); nil until runAttach arms it.
	attachTimer async.Timer
}

func (u *UEContext) setState(s UEState) {
	u.mu.Lock()
	u.State = s
	u.mu.Unlock()
}

func (u *UEContext) getState() UEState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.State
}

func (u *UEContext) setAttachTimer(t async.Timer) {
	u.mu.Lock()
	u.attachTimer = t
	u.mu.Unlock()
}

func (u *UEContext) clearAttachTimer() async.Timer {
	u.mu.Lock()
	t := u.attachTimer
	u.attachTimer = nil
	u.mu.Unlock()
	return t
}

func (u *UEContext) hasDRBs() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.DRBs) > 0
}

// UERegistry is the capacity-bounded UE-index slot array (spec.md §3).
// Lookup by (du_index, crnti) enforces the "no two UEs share a
// (du_index, crnti)" invariant.
type UERegistry struct {
	mu       sync.RWMutex
	ues      *ran.SlotArray[*UEContext]
	byDUCRNTI map[duCRNTIKey]ran.UEIndex
	ctx      context.Context
}

type duCRNTIKey struct {
	du    ran.DUIndex
	crnti ran.RNTI
}

func NewUERegistry(ctx context.Context, capacity int) *UERegistry {
	return &UERegistry{
		ues:       ran.NewSlotArray[*UEContext](capacity),
		byDUCRNTI: make(map[duCRNTIKey]ran.UEIndex),
		ctx:       ctx,
	}
}

// Create allocates a new UE context on (du, pci, crnti), rejecting the
// request if that (du, crnti) pair is already in use (spec.md §3 invariant)
// or the registry is full.
func (r *UERegistry) Create(du ran.DUIndex, pci ran.PCI, crnti ran.RNTI, duUEID ran.DUUEF1APID) (*UEContext, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := duCRNTIKey{du: du, crnti: crnti}
	if _, exists := r.byDUCRNTI[key]; exists {
		return nil, false
	}
	idx := r.ues.FindFirstEmpty()
	if idx >= r.ues.Capacity() {
		return nil, false
	}
	ue := &UEContext{
		Index:      ran.UEIndex(idx),
		DUIndex:    du,
		PCI:        pci,
		CRNTI:      crnti,
		DUUEF1APID: duUEID,
		CUUEF1APID: ran.CUUEF1APID(idx),
		CUUPIndex:  ran.InvalidCUUPIndex,
		AMFUEID:    ran.InvalidAMFUENGAPID,
		RANUEID:    ran.RANUENGAPID(idx),
		State:      UEStateNew,
		Sequencer:  async.NewSequencer(r.ctx, 16),
	}
	r.ues.Insert(idx, ue)
	r.byDUCRNTI[key] = ue.Index
	return ue, true
}

// Get returns the UE at idx.
func (r *UERegistry) Get(idx ran.UEIndex) (*UEContext, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ues.Get(int(idx))
}

// FindByDUCRNTI resolves a UE by its (du, crnti) pair, e.g. to find the
// "old" UE named in a Reestablishment Request (spec.md §4.2.5).
func (r *UERegistry) FindByDUCRNTI(du ran.DUIndex, crnti ran.RNTI) (*UEContext, bool) {
	r.mu.RLock()
	key := duCRNTIKey{du: du, crnti: crnti}
	idx, ok := r.byDUCRNTI[key]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return r.Get(idx)
}

// Remove tears down a UE context after release completes on every peer.
func (r *UERegistry) Remove(idx ran.UEIndex) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ue, ok := r.ues.Get(int(idx))
	if !ok {
		return
	}
	ue.Sequencer.Stop(r.ctx)
	delete(r.byDUCRNTI, duCRNTIKey{du: ue.DUIndex, crnti: ue.CRNTI})
	r.ues.Remove(int(idx))
}

// rekey moves a UE's (du, crnti) lookup entry, used by intra-DU handover
// when a UE's c-rnti changes within the same cell/DU (spec.md §4.2.4).
func (r *UERegistry) rekey(oldKey, newKey duCRNTIKey, idx ran.UEIndex) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.byDUCRNTI[oldKey]; !ok || cur != idx {
		return
	}
	delete(r.byDUCRNTI, oldKey)
	r.byDUCRNTI[newKey] = idx
}

// ForEach iterates every live UE (used by the DU/CU-UP/AMF disconnect
// cascades, spec.md §4.2.6).
func (r *UERegistry) ForEach(fn func(*UEContext)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.ues.ForEach(func(_ int, ue **UEContext) bool {
		fn(*ue)
		return true
	})
}

// Count returns the number of live UE contexts.
func (r *UERegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ues.Size()
}
