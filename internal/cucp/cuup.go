package cucp

import (
	"sync"

	"github.com/srsran/gnb-cucp-go/internal/adapters"
	"github.com/srsran/gnb-cucp-go/internal/ran"
)

// CUUPContext is one connected CU-UP (spec.md §4.2.2 "CU-UP connection...
// symmetric to DU for E1 Setup").
type CUUPContext struct {
	Index     ran.CUUPIndex
	GNBCUUPID ran.GNBCUUPID
}

// CUUPRegistry is the capacity-bounded E1 link registry.
type CUUPRegistry struct {
	mu    sync.RWMutex
	cuups *ran.SlotArray[*CUUPContext]
}

func NewCUUPRegistry(capacity int) *CUUPRegistry {
	return &CUUPRegistry{cuups: ran.NewSlotArray[*CUUPContext](capacity)}
}

func (r *CUUPRegistry) Add(req adapters.E1SetupRequest) (ran.CUUPIndex, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.cuups.FindFirstEmpty()
	if idx >= r.cuups.Capacity() {
		return ran.InvalidCUUPIndex, false
	}
	cuup := &CUUPContext{Index: ran.CUUPIndex(idx), GNBCUUPID: req.GNBCUUPID}
	r.cuups.Insert(idx, cuup)
	return cuup.Index, true
}

func (r *CUUPRegistry) Remove(idx ran.CUUPIndex) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cuups.Remove(int(idx))
}

func (r *CUUPRegistry) Get(idx ran.CUUPIndex) (*CUUPContext, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cuups.Get(int(idx))
}

func (r *CUUPRegistry) ForEach(fn func(*CUUPContext)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.cuups.ForEach(func(_ int, c **CUUPContext) bool {
		fn(*c)
		return true
	})
}
