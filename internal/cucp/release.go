package cucp

import "github.com/srsran/gnb-cucp-go/internal/adapters"

// beginF1Release sends an F1 UE Context Release Command for ue and arms a
// transaction, keyed on the UE's own registry index, that resolves once the
// DU's UEContextReleaseComplete arrives — the correlation primitive behind
// spec.md §4.2.2's "acknowledged end-to-end" release contract. container is
// the optional RRC Reject PDU carried inside the command.
func (m *Manager) beginF1Release(ue *UEContext, container adapters.RRCContainer) error {
	if err := m.releaseTxns.CreateTransactionWithID(int(ue.Index)); err != nil {
		return err
	}
	if err := m.F1.SendUEContextReleaseCommand(ue.DUIndex, adapters.UEContextReleaseCommand{
		DUUEF1APID:   ue.DUUEF1APID,
		CUUEF1APID:   ue.CUUEF1APID,
		RRCContainer: container,
	}); err != nil {
		return err
	}
	m.armReleaseTimeout(int(ue.Index))
	return nil
}

// armReleaseTimeout bounds the wait for UEContextReleaseComplete the same
// way runAttach bounds the wait for Initial Context Setup Request: if the DU
// never acknowledges, the transaction resolves to its timeout sentinel
// rather than blocking a waiter forever. A nil newTimer (tests that don't
// wire a timer factory) disables the bound.
func (m *Manager) armReleaseTimeout(id int) {
	if m.newTimer == nil || m.ueContextSetupTimeout <= 0 {
		return
	}
	done := make(chan struct{})
	t := m.newTimer()
	t.Set(m.ueContextSetupTimeout, func() { close(done) })
	t.Run()
	m.releaseTxns.ArmTimeout(m.background, id, done)
}

// HandleUEContextReleaseComplete resolves the F1 release transaction armed
// by beginF1Release and removes the UE, completing the release that
// triggered it (spec.md §4.2.2). Resolving a stale or unknown transaction
// (e.g. the DU retransmitting Complete after a timeout already fired) is
// reported but not fatal.
func (m *Manager) HandleUEContextReleaseComplete(msg adapters.UEContextReleaseComplete) error {
	ue, ok := m.findByDUUEID(msg.DUUEF1APID)
	if !ok {
		return errUnknownUE(msg.DUUEF1APID)
	}
	err := m.releaseTxns.Set(int(ue.Index), true)
	ue.setState(UEStateDeleting)
	m.UEs.Remove(ue.Index)
	return err
}
