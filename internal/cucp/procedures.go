package cucp

import (
	"context"

	"github.com/srsran/gnb-cucp-go/internal/adapters"
	"github.com/srsran/gnb-cucp-go/internal/ran"
)

// runAttach implements spec.md §4.2.3's UE attach procedure steps 1-4. It
// runs on the UE's Sequencer, so it never overlaps with any other
// procedure for the same UE (spec.md §5 "Ordering guarantees").
//
// The body is written as a straight-line function rather than a literal
// async.Task composition chain: every step it performs is already
// serialized by the enclosing Sequencer job, so there is nothing further
// to suspend on until a reply from a peer is needed — and those replies
// arrive back in through the Manager.HandleXxx methods, which find the UE
// by its identifiers and carry the procedure on from there.
func (m *Manager) runAttach(ctx context.Context, ue *UEContext, rrc adapters.RRCContainer) {
	// Step 1: allocate ran_ue_id, forward to AMF as NGAP Initial UE Message.
	if err := m.AMF.ngap.SendInitialUEMessage(adapters.InitialUEMessage{
		RANUEID:      ue.RANUEID,
		RRCContainer: rrc,
	}); err != nil {
		m.log.Err().Err(err).Log("initial ue message failed")
		return
	}
	ue.setState(UEStateConnected)

	if m.newTimer != nil && m.ueContextSetupTimeout > 0 {
		t := m.newTimer()
		t.Set(m.ueContextSetupTimeout, func() { m.onAttachTimeout(ue) })
		t.Run()
		ue.setAttachTimer(t)
	}
}

// onAttachTimeout fires on the timer service's own goroutine when the AMF
// never sends an Initial Context Setup Request in time; it drops the UE
// rather than leaving it stuck in UEStateConnected forever.
func (m *Manager) onAttachTimeout(ue *UEContext) {
	if ue.getState() != UEStateConnected {
		return
	}
	m.log.Warning().Log("initial context setup timed out, releasing ue")
	ue.setState(UEStateDeleting)
	m.UEs.Remove(ue.Index)
}

// HandleInitialContextSetupRequest implements spec.md §4.2.3 step 3: carry
// the UE security context down to the DU as a F1 UE Context Setup Request.
func (m *Manager) HandleInitialContextSetupRequest(req adapters.InitialContextSetupRequest) error {
	ue, ok := m.findByRANUEID(req.RANUEID)
	if !ok {
		return errUnknownUE(req.RANUEID)
	}
	if t := ue.clearAttachTimer(); t != nil {
		t.Stop()
	}

	ue.mu.Lock()
	ue.AMFUEID = req.AMFUEID
	du := ue.DUIndex
	ue.mu.Unlock()

	return m.F1.SendUEContextSetupRequest(du, adapters.UEContextSetupRequest{
		DUUEF1APID: ue.DUUEF1APID,
		CUUEF1APID: ue.CUUEF1APID,
	})
}

// HandleUEContextSetupResponse completes step 3: enquire capabilities (a
// stand-in RRC round trip, opaque here) then reply NGAP Initial Context
// Setup Response plus UE Radio Capability Info Indication.
func (m *Manager) HandleUEContextSetupResponse(resp adapters.UEContextSetupResponse) error {
	ue, ok := m.findByDUUEID(resp.DUUEF1APID)
	if !ok {
		return errUnknownUE(resp.DUUEF1APID)
	}
	if err := m.AMF.ngap.SendInitialContextSetupResponse(adapters.InitialContextSetupResponse{
		RANUEID: ue.RANUEID, AMFUEID: ue.AMFUEID,
	}); err != nil {
		return err
	}
	return m.AMF.ngap.SendUERadioCapabilityInfoIndication(adapters.UERadioCapabilityInfoIndication{
		RANUEID: ue.RANUEID, AMFUEID: ue.AMFUEID,
	})
}

func (m *Manager) HandleUEContextSetupFailure(fail adapters.UEContextSetupFailure) error {
	ue, ok := m.findByDUUEID(fail.DUUEF1APID)
	if !ok {
		return errUnknownUE(fail.DUUEF1APID)
	}
	err := m.AMF.ngap.SendInitialContextSetupFailure(adapters.InitialContextSetupFailure{
		RANUEID: ue.RANUEID, AMFUEID: ue.AMFUEID, Cause: fail.Cause,
	})
	ue.setState(UEStateDeleting)
	m.UEs.Remove(ue.Index)
	return err
}

// HandlePDUSessionResourceSetupRequest implements spec.md §4.2.3 step 4:
// E1 Bearer Context Setup → F1 UE Context Modification (DRB setup) → E1
// Bearer Context Modification (completing the bearer) → await RRC
// Reconfiguration Complete (modeled here as immediate, since RRC codec
// content is opaque) → NGAP PDU Session Resource Setup Response.
func (m *Manager) HandlePDUSessionResourceSetupRequest(req adapters.PDUSessionResourceSetupRequest) error {
	ue, ok := m.findByRANUEID(req.RANUEID)
	if !ok {
		return errUnknownUE(req.RANUEID)
	}
	if ue.CUUPIndex == ran.InvalidCUUPIndex {
		cuup, ok := m.pickCUUP()
		if !ok {
			return errNoCUUPCapacity
		}
		ue.mu.Lock()
		ue.CUUPIndex = cuup
		ue.CUCPE1APID = ran.CUCPE1APID(ue.Index)
		ue.mu.Unlock()
	}

	if err := m.E1.SendBearerContextSetupRequest(ue.CUUPIndex, adapters.BearerContextSetupRequest{
		CUCPE1APID:  ue.CUCPE1APID,
		PDUSessions: req.PDUSessions,
	}); err != nil {
		return err
	}
	return nil
}

// HandleBearerContextSetupResponse continues PDU session setup once CU-UP
// has allocated bearer resources.
func (m *Manager) HandleBearerContextSetupResponse(resp adapters.BearerContextSetupResponse) error {
	ue, ok := m.findByCUCPE1APID(resp.CUCPE1APID)
	if !ok {
		return errUnknownUEByE1(resp.CUCPE1APID)
	}
	ue.mu.Lock()
	ue.CUUPE1APID = resp.CUUPE1APID
	du := ue.DUIndex
	ue.mu.Unlock()

	return m.F1.SendUEContextModificationRequest(du, adapters.UEContextModificationRequest{
		DUUEF1APID:   ue.DUUEF1APID,
		CUUEF1APID:   ue.CUUEF1APID,
		DRBsToBeSetup: []adapters.DRBInfo{{DRBID: 1}},
	})
}

// HandleUEContextModificationResponse completes a DRB setup (attach path)
// or a DRB modification (reestablishment-with-context path, spec.md
// §4.2.5) depending on the UE's current state.
func (m *Manager) HandleUEContextModificationResponse(resp adapters.UEContextModificationResponse) error {
	ue, ok := m.findByDUUEID(resp.DUUEF1APID)
	if !ok {
		return errUnknownUE(resp.DUUEF1APID)
	}

	if ue.getState() == UEStateReestablishing {
		// spec.md §4.2.5: "await RRC Reest Complete, then RRC Reconfiguration"
		// — modeled as immediate completion since RRC content is opaque.
		ue.setState(UEStateConnected)
		m.Metrics.ReestabWithContext.Inc()
		return nil
	}

	ue.mu.Lock()
	ue.DRBs = append(ue.DRBs, 1)
	cuup := ue.CUUPIndex
	e1id := ue.CUCPE1APID
	cuupE1id := ue.CUUPE1APID
	ue.mu.Unlock()

	return m.E1.SendBearerContextModificationRequest(cuup, adapters.BearerContextModificationRequest{
		CUCPE1APID:       e1id,
		CUUPE1APID:       cuupE1id,
		DRBsToBeModified: []adapters.DRBInfo{{DRBID: 1}},
	})
}

func (m *Manager) HandleUEContextModificationFailure(fail adapters.UEContextModificationFailure) error {
	ue, ok := m.findByDUUEID(fail.DUUEF1APID)
	if !ok {
		return errUnknownUE(fail.DUUEF1APID)
	}
	ue.setState(UEStateDeleting)
	m.UEs.Remove(ue.Index)
	return nil
}

// HandleBearerContextModificationResponse continues down one of two paths
// depending on why the bearer was modified: PDU session setup (spec.md
// §4.2.3 step 4) replies to the AMF directly; reestablishment-with-context
// (spec.md §4.2.5 branch 3) still needs the DRBs re-pointed at the new DU
// leg before the UE can be told to reconfigure.
func (m *Manager) HandleBearerContextModificationResponse(resp adapters.BearerContextModificationResponse) error {
	ue, ok := m.findByCUCPE1APID(resp.CUCPE1APID)
	if !ok {
		return errUnknownUEByE1(resp.CUCPE1APID)
	}

	if ue.getState() == UEStateReestablishing {
		ue.mu.Lock()
		drbs := append([]uint8(nil), ue.DRBs...)
		du := ue.DUIndex
		duUEID := ue.DUUEF1APID
		cuUEID := ue.CUUEF1APID
		ue.mu.Unlock()

		drbInfos := make([]adapters.DRBInfo, 0, len(drbs))
		for _, id := range drbs {
			drbInfos = append(drbInfos, adapters.DRBInfo{DRBID: id})
		}
		return m.F1.SendUEContextModificationRequest(du, adapters.UEContextModificationRequest{
			DUUEF1APID:       duUEID,
			CUUEF1APID:       cuUEID,
			DRBsToBeModified: drbInfos,
		})
	}

	return m.AMF.ngap.SendPDUSessionResourceSetupResponse(adapters.PDUSessionResourceSetupResponse{
		RANUEID: ue.RANUEID, AMFUEID: ue.AMFUEID,
	})
}
