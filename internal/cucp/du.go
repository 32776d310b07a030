// Package cucp implements the CU-CP connection and UE lifecycle engine (C2
// in spec.md §4.2): DU/CU-UP/AMF registries, the UE context state machine,
// the procedure library, and the failure cascades of §4.2.6.
package cucp

import (
	"sync"

	"github.com/srsran/gnb-cucp-go/internal/adapters"
	"github.com/srsran/gnb-cucp-go/internal/ran"
)

// DUContext is one connected DU: its served cells and a reverse index from
// packed NCI to local cell, used for routing Initial UL RRC (spec.md §3
// "DU/CU-UP/AMF registry... a secondary hash from packed cell id to DU is
// maintained for routing of initial UL RRC").
type DUContext struct {
	Index      ran.DUIndex
	GNBDUID    ran.GNBDUID
	ServedCells map[ran.NRCellGlobalIdentity]ran.PCI
}

// DURegistry is the capacity-bounded F1 link registry (spec.md §3, §4.2.1
// "F1 link registry: a capacity-bounded array of DU entries").
type DURegistry struct {
	mu      sync.RWMutex
	dus     *ran.SlotArray[*DUContext]
	cellIdx map[ran.NRCellGlobalIdentity]ran.DUIndex
}

// NewDURegistry builds a registry bounded to capacity entries.
func NewDURegistry(capacity int) *DURegistry {
	return &DURegistry{
		dus:     ran.NewSlotArray[*DUContext](capacity),
		cellIdx: make(map[ran.NRCellGlobalIdentity]ran.DUIndex),
	}
}

// Add reserves a slot for a newly-connecting DU, returning its index and
// false if the registry is at capacity.
func (r *DURegistry) Add(req adapters.F1SetupRequest) (ran.DUIndex, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.dus.FindFirstEmpty()
	if idx >= r.dus.Capacity() {
		return ran.InvalidDUIndex, false
	}
	du := &DUContext{
		Index:       ran.DUIndex(idx),
		GNBDUID:     req.GNBDUID,
		ServedCells: make(map[ran.NRCellGlobalIdentity]ran.PCI, len(req.ServedCells)),
	}
	for _, cell := range req.ServedCells {
		du.ServedCells[cell.NCI] = cell.PCI
		r.cellIdx[cell.NCI] = du.Index
	}
	r.dus.Insert(idx, du)
	return du.Index, true
}

// Remove tears down a DU's registry entry and its cell routing entries
// (F1 Removal Request / connection loss, spec.md §4.2.6).
func (r *DURegistry) Remove(idx ran.DUIndex) {
	r.mu.Lock()
	defer r.mu.Unlock()
	du, ok := r.dus.Get(int(idx))
	if !ok {
		return
	}
	for nci := range du.ServedCells {
		delete(r.cellIdx, nci)
	}
	r.dus.Remove(int(idx))
}

// Get returns the DU at idx.
func (r *DURegistry) Get(idx ran.DUIndex) (*DUContext, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dus.Get(int(idx))
}

// FindByCell resolves the DU serving nci, for Initial UL RRC routing.
func (r *DURegistry) FindByCell(nci ran.NRCellGlobalIdentity) (ran.DUIndex, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.cellIdx[nci]
	return idx, ok
}

// ForEach iterates every connected DU (used for the AMF-disconnect cascade,
// spec.md §4.2.2 "AMF disconnect").
func (r *DURegistry) ForEach(fn func(*DUContext)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.dus.ForEach(func(_ int, du **DUContext) bool {
		fn(*du)
		return true
	})
}
