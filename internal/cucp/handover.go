package cucp

import "github.com/srsran/gnb-cucp-go/internal/ran"

// HandoverRequired is raised by the source cell when the DU reports a
// better neighbor for an existing UE (spec.md §4.2.4 intra-DU handover).
type HandoverRequired struct {
	TargetPCI ran.PCI
	TargetRNTI ran.RNTI
}

// HandleHandoverRequired moves the UE's radio identity to the target
// cell/RNTI on the same DU, rekeys the (du, crnti) lookup, and counts the
// handover as both requested and succeeded. It sends no F1, E1, NGAP or RRC
// message, creates no target UE context, and has no failure path: the
// existing UE context is updated in place.
func (m *Manager) HandleHandoverRequired(ue *UEContext, req HandoverRequired) {
	m.Metrics.HandoverRequested.Inc()
	ue.setState(UEStateHandoverPending)

	ue.mu.Lock()
	oldKey := duCRNTIKey{du: ue.DUIndex, crnti: ue.CRNTI}
	ue.PCI = req.TargetPCI
	ue.CRNTI = req.TargetRNTI
	ue.mu.Unlock()

	m.UEs.rekey(oldKey, duCRNTIKey{du: ue.DUIndex, crnti: req.TargetRNTI}, ue.Index)

	ue.setState(UEStateConnected)
	m.Metrics.HandoverSucceeded.Inc()
}
