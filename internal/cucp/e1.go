package cucp

import (
	"github.com/srsran/gnb-cucp-go/internal/adapters"
	"github.com/srsran/gnb-cucp-go/internal/ran"
)

// HandleE1SetupRequest registers a new CU-UP connection (spec.md §4.2.2,
// symmetric to HandleF1SetupRequest).
func (m *Manager) HandleE1SetupRequest(req adapters.E1SetupRequest) error {
	idx, ok := m.CUUPs.Add(req)
	if !ok {
		return m.E1.SendE1SetupFailure(idx, adapters.E1SetupFailure{Cause: "no-cu-up-capacity"})
	}
	m.log.Info().Uint64("gnb_cu_up_id", uint64(req.GNBCUUPID)).Log("e1 setup accepted")
	return m.E1.SendE1SetupResponse(idx, adapters.E1SetupResponse{GNBCUCPName: m.ctx.gnbCUName})
}

// HandleE1ReleaseRequest implements spec.md §4.2.2's CU-UP release cascade:
// every UE bearer hosted on that CU-UP is released via NGAP and its F1 UE
// Context Release Command is sent, but the E1 Release Response is withheld
// until each release is acknowledged end-to-end by the DU's
// UEContextReleaseComplete (spec.md §4.2.2 "only responds... after all UE
// releases are acknowledged end-to-end") — not merely once the requests have
// been issued.
func (m *Manager) HandleE1ReleaseRequest(req adapters.E1ReleaseRequest) error {
	var affected []*UEContext
	m.UEs.ForEach(func(ue *UEContext) {
		if ue.CUUPIndex == req.CUUPIndex {
			affected = append(affected, ue)
		}
	})

	var armed []*UEContext
	for _, ue := range affected {
		ue.setState(UEStateDeleting)
		if m.AMF.Connected() && ue.AMFUEID != ran.InvalidAMFUENGAPID {
			_ = m.AMF.ngap.SendUEContextReleaseRequest(adapters.UEContextReleaseCommandNGAP{
				RANUEID: ue.RANUEID, AMFUEID: ue.AMFUEID,
			})
		}
		if err := m.beginF1Release(ue, nil); err != nil {
			m.log.Warning().Err(err).Log("f1 release command failed, removing ue without end-to-end ack")
			m.UEs.Remove(ue.Index)
			continue
		}
		armed = append(armed, ue)
	}

	go m.finishE1Release(req.CUUPIndex, armed)
	return nil
}

// finishE1Release waits for every armed UE's F1 release to complete (or time
// out, see armReleaseTimeout) before dropping the CU-UP and replying. A UE
// whose transaction resolves to the timeout sentinel (the DU never sent
// UEContextReleaseComplete) is force-removed here instead of being left
// dangling forever.
func (m *Manager) finishE1Release(cuup ran.CUUPIndex, ues []*UEContext) {
	for _, ue := range ues {
		acked, _ := m.releaseTxns.Await(m.background, int(ue.Index))
		m.releaseTxns.Release(int(ue.Index))
		if !acked {
			m.log.Warning().Uint64("index", uint64(ue.Index)).Log("f1 release never acknowledged, dropping ue context")
			m.UEs.Remove(ue.Index)
		}
	}
	m.CUUPs.Remove(cuup)
	_ = m.E1.SendE1ReleaseResponse(cuup, adapters.E1ReleaseResponse{CUUPIndex: cuup})
}

// HandleBearerContextSetupFailure/HandleBearerContextModificationFailure
// terminate the PDU session setup or DRB modification that triggered the
// request by asking the AMF to release the UE (NGAP UE Context Release
// Request). A modification failure during reestablishment instead removes
// the UE context locally without involving the AMF.
func (m *Manager) HandleBearerContextSetupFailure(fail adapters.BearerContextSetupFailure) error {
	ue, ok := m.findByCUCPE1APID(fail.CUCPE1APID)
	if !ok {
		return errUnknownUEByE1(fail.CUCPE1APID)
	}
	return m.AMF.ngap.SendUEContextReleaseRequest(adapters.UEContextReleaseCommandNGAP{
		RANUEID: ue.RANUEID, AMFUEID: ue.AMFUEID,
	})
}

func (m *Manager) HandleBearerContextModificationFailure(fail adapters.BearerContextModificationFailure) error {
	ue, ok := m.findByCUCPE1APID(fail.CUCPE1APID)
	if !ok {
		return errUnknownUEByE1(fail.CUCPE1APID)
	}
	if ue.getState() == UEStateReestablishing {
		ue.setState(UEStateDeleting)
		m.UEs.Remove(ue.Index)
		return nil
	}
	return m.AMF.ngap.SendUEContextReleaseRequest(adapters.UEContextReleaseCommandNGAP{
		RANUEID: ue.RANUEID, AMFUEID: ue.AMFUEID,
	})
}

// HandleBearerContextReleaseComplete finalizes a CU-UP-initiated bearer
// teardown; nothing further to do since the UE removal already happened on
// the triggering path (F1/NGAP release cascades).
func (m *Manager) HandleBearerContextReleaseComplete(adapters.BearerContextReleaseComplete) {}
