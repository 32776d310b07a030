package cucp

import (
	"github.com/srsran/gnb-cucp-go/internal/adapters"
	"github.com/srsran/gnb-cucp-go/internal/ran"
)

// StartNGSetup sends the NG Setup Request. The composition root calls this
// once at startup (spec.md §4.2.1 "Owns an NG-Setup transaction at
// startup").
func (m *Manager) StartNGSetup() error {
	return m.AMF.ngap.SendNGSetupRequest()
}

// HandleNGSetupResponse/Failure update AMFLink connectivity state. Until
// NGSetup succeeds, every DU's Initial UL RRC is rejected (spec.md §4.2.2).
func (m *Manager) HandleNGSetupResponse(resp adapters.NGSetupResponse) {
	m.AMF.onSetupResponse(resp)
	m.log.Info().Str("amf_name", resp.AMFName).Log("ng setup succeeded")
}

func (m *Manager) HandleNGSetupFailure(fail adapters.NGSetupFailure) {
	m.AMF.onSetupFailure(fail)
	m.log.Warning().Str("cause", fail.Cause).Log("ng setup failed")
}

// HandleAMFDisconnect implements spec.md §4.2.2's AMF-disconnect cascade:
// every live UE gets an F1 UE Context Release Command (RRC Reject) before
// any DU gets a gNB-CU Configuration Update deactivating its cells — the AMF
// side is already gone, so no NGAP UE Context Release Request is sent, but
// the DU still needs to be told to drop its RRC state for each UE.
func (m *Manager) HandleAMFDisconnect() {
	m.AMF.onDisconnect()

	var allUEs []*UEContext
	m.UEs.ForEach(func(ue *UEContext) {
		ue.setState(UEStateDeleting)
		allUEs = append(allUEs, ue)
	})
	for _, ue := range allUEs {
		_ = m.F1.SendUEContextReleaseCommand(ue.DUIndex, adapters.UEContextReleaseCommand{
			DUUEF1APID:   ue.DUUEF1APID,
			CUUEF1APID:   ue.CUUEF1APID,
			RRCContainer: rrcRejectContainer,
		})
		m.UEs.Remove(ue.Index)
	}

	m.DUs.ForEach(func(du *DUContext) {
		cellIDs := make([]ran.NRCellGlobalIdentity, 0, len(du.ServedCells))
		for nci := range du.ServedCells {
			cellIDs = append(cellIDs, nci)
		}
		_ = m.F1.SendGNBCUConfigurationUpdate(du.Index, adapters.GNBCUConfigurationUpdate{
			DUIndex:           du.Index,
			CellsToDeactivate: cellIDs,
		})
	})
	m.log.Warning().Log("amf disconnected: cells deactivated, ue contexts released")
}
