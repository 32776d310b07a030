package cucp

import (
	"github.com/srsran/gnb-cucp-go/internal/adapters"
	"github.com/srsran/gnb-cucp-go/internal/ran"
)

// RRCReestablishmentRequest is the F1-carried RRC message that starts the
// reestablishment procedure (spec.md §4.2.5): it names the (du, old_crnti)
// pair the UE claims to have had before radio link failure.
type RRCReestablishmentRequest struct {
	NewDUUEF1APID ran.DUUEF1APID
	DUIndex       ran.DUIndex
	OldCRNTI      ran.RNTI
}

// rrcSetupFallbackContainer is a placeholder opaque RRC Setup PDU sent when
// a reestablishment attempt is recovered as a fresh attach rather than
// rejected outright (spec.md §4.2.5's fallback path), mirroring
// rrcRejectContainer's role for outright rejection.
var rrcSetupFallbackContainer = adapters.RRCContainer([]byte("rrc-setup"))

// HandleRRCReestablishmentRequest implements spec.md §4.2.5's three
// branches: no matching old UE context, an old UE context with no DRBs, and
// an old UE context with DRBs (full bearer-context transfer). A
// reestablishment already in flight for the same old UE also falls back,
// since the old context is mid-transfer and must not be double-used.
func (m *Manager) HandleRRCReestablishmentRequest(req RRCReestablishmentRequest) error {
	old, ok := m.UEs.FindByDUCRNTI(req.DUIndex, req.OldCRNTI)
	if !ok {
		// Branch 1: no old UE context found — fall back to a fresh attach
		// (spec.md §4.2.5 "falls back to treating it as a new attach").
		m.Metrics.ReestablishmentsWithoutContext.Inc()
		return m.fallbackToFreshAttach(req)
	}

	if old.getState() == UEStateReestablishing {
		// A second reestablishment request racing the first one in flight:
		// the old context is already being transferred, so it cannot be
		// reused again (spec.md §4.2.5 "no double-use of the UE context").
		m.Metrics.ReestablishmentsWithoutContext.Inc()
		return m.fallbackToFreshAttach(req)
	}

	if !old.hasDRBs() {
		// Branch 2: old UE context exists but never set up bearers — release
		// it via NGAP and let the UE attach fresh.
		if m.AMF.Connected() && old.AMFUEID != ran.InvalidAMFUENGAPID {
			_ = m.AMF.ngap.SendUEContextReleaseRequest(adapters.UEContextReleaseCommandNGAP{
				RANUEID: old.RANUEID, AMFUEID: old.AMFUEID,
			})
		}
		old.setState(UEStateDeleting)
		m.UEs.Remove(old.Index)
		m.Metrics.ReestablishmentsWithoutContext.Inc()
		return m.fallbackToFreshAttach(req)
	}

	// Branch 3: transfer the existing bearer context to the new DU-UE-F1AP-ID.
	old.setState(UEStateReestablishing)
	old.mu.Lock()
	old.DUUEF1APID = req.NewDUUEF1APID
	cuup := old.CUUPIndex
	e1id := old.CUCPE1APID
	cuupE1id := old.CUUPE1APID
	drbs := append([]uint8(nil), old.DRBs...)
	old.mu.Unlock()

	drbInfos := make([]adapters.DRBInfo, 0, len(drbs))
	for _, id := range drbs {
		drbInfos = append(drbInfos, adapters.DRBInfo{DRBID: id})
	}

	return m.E1.SendBearerContextModificationRequest(cuup, adapters.BearerContextModificationRequest{
		CUCPE1APID:       e1id,
		CUUPE1APID:       cuupE1id,
		DRBsToBeModified: drbInfos,
	})
}

// fallbackToFreshAttach recovers a reestablishment request that cannot reuse
// an old UE context by sending an RRC Setup over F1 DL RRC Message Transfer
// to the new DU-UE-F1AP-ID, treating it as a fresh Initial UL RRC (spec.md
// §4.2.5). There is no prior CU-UE-F1AP-ID to correlate with in this path.
func (m *Manager) fallbackToFreshAttach(req RRCReestablishmentRequest) error {
	return m.F1.SendDLRRCMessageTransfer(req.DUIndex, adapters.DLRRCMessage{
		DUUEF1APID:   req.NewDUUEF1APID,
		SRBID:        0,
		RRCContainer: rrcSetupFallbackContainer,
	})
}
