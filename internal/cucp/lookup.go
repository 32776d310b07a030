package cucp

import (
	"errors"
	"fmt"

	"github.com/srsran/gnb-cucp-go/internal/ran"
)

// errNoCUUPCapacity is returned when no CU-UP is connected, so a new bearer
// cannot be placed anywhere.
var errNoCUUPCapacity = errors.New("cucp: no cu-up capacity available")

func errUnknownUE(id any) error {
	return fmt.Errorf("cucp: no ue context for id %v", id)
}

func errUnknownUEByE1(id ran.CUCPE1APID) error {
	return fmt.Errorf("cucp: no ue context for cu-cp e1ap id %d", id)
}

// findByRANUEID/findByDUUEID/findByCUCPE1APID are linear scans over the UE
// registry: the registry is capacity-bounded to a few thousand entries at
// most (spec.md §3's slot-array sizing), so a scan triggered only on the
// (comparatively rare) inbound-message path is cheaper than maintaining
// three more reverse-index maps alongside UERegistry.byDUCRNTI.
func (m *Manager) findByRANUEID(id ran.RANUENGAPID) (*UEContext, bool) {
	var found *UEContext
	m.UEs.ForEach(func(ue *UEContext) {
		if found == nil && ue.RANUEID == id {
			found = ue
		}
	})
	return found, found != nil
}

func (m *Manager) findByDUUEID(id ran.DUUEF1APID) (*UEContext, bool) {
	var found *UEContext
	m.UEs.ForEach(func(ue *UEContext) {
		if found == nil && ue.DUUEF1APID == id {
			found = ue
		}
	})
	return found, found != nil
}

func (m *Manager) findByCUCPE1APID(id ran.CUCPE1APID) (*UEContext, bool) {
	var found *UEContext
	m.UEs.ForEach(func(ue *UEContext) {
		if found == nil && ue.CUCPE1APID == id {
			found = ue
		}
	})
	return found, found != nil
}

// pickCUUP returns the first registered CU-UP (spec.md §4.2.3 step 4 does
// not specify a load-balancing policy across CU-UPs, so the simplest
// deterministic choice is used: the lowest-index live CU-UP).
func (m *Manager) pickCUUP() (ran.CUUPIndex, bool) {
	var idx ran.CUUPIndex = ran.InvalidCUUPIndex
	m.CUUPs.ForEach(func(c *CUUPContext) {
		if idx == ran.InvalidCUUPIndex {
			idx = c.Index
		}
	})
	return idx, idx != ran.InvalidCUUPIndex
}
