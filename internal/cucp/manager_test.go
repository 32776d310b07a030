package cucp

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/srsran/gnb-cucp-go/internal/adapters"
	"github.com/srsran/gnb-cucp-go/internal/obs"
	"github.com/srsran/gnb-cucp-go/internal/ran"
)

// fakeF1/fakeE1/fakeNGAP record every outbound call so tests can assert on
// procedure flow without a real transport, the same shape as the teacher's
// hand-rolled test doubles for narrow collaborator interfaces.
type fakeF1 struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeF1) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}
func (f *fakeF1) has(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == name {
			return true
		}
	}
	return false
}
func (f *fakeF1) SendF1SetupResponse(ran.DUIndex, adapters.F1SetupResponse) error {
	f.record("F1SetupResponse")
	return nil
}
func (f *fakeF1) SendF1SetupFailure(ran.DUIndex, adapters.F1SetupFailure) error {
	f.record("F1SetupFailure")
	return nil
}
func (f *fakeF1) SendDLRRCMessageTransfer(ran.DUIndex, adapters.DLRRCMessage) error {
	f.record("DLRRCMessageTransfer")
	return nil
}
func (f *fakeF1) SendUEContextSetupRequest(ran.DUIndex, adapters.UEContextSetupRequest) error {
	f.record("UEContextSetupRequest")
	return nil
}
func (f *fakeF1) SendUEContextModificationRequest(ran.DUIndex, adapters.UEContextModificationRequest) error {
	f.record("UEContextModificationRequest")
	return nil
}
func (f *fakeF1) SendUEContextReleaseCommand(ran.DUIndex, adapters.UEContextReleaseCommand) error {
	f.record("UEContextReleaseCommand")
	return nil
}
func (f *fakeF1) SendGNBCUConfigurationUpdate(ran.DUIndex, adapters.GNBCUConfigurationUpdate) error {
	f.record("GNBCUConfigurationUpdate")
	return nil
}

type fakeE1 struct {
	mu    sync.Mutex
	calls []string
}

func (e *fakeE1) record(name string) {
	e.mu.Lock()
	e.calls = append(e.calls, name)
	e.mu.Unlock()
}
func (e *fakeE1) has(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, c := range e.calls {
		if c == name {
			return true
		}
	}
	return false
}
func (e *fakeE1) SendE1SetupResponse(ran.CUUPIndex, adapters.E1SetupResponse) error {
	e.record("E1SetupResponse")
	return nil
}
func (e *fakeE1) SendE1SetupFailure(ran.CUUPIndex, adapters.E1SetupFailure) error {
	e.record("E1SetupFailure")
	return nil
}
func (e *fakeE1) SendBearerContextSetupRequest(ran.CUUPIndex, adapters.BearerContextSetupRequest) error {
	e.record("BearerContextSetupRequest")
	return nil
}
func (e *fakeE1) SendBearerContextModificationRequest(ran.CUUPIndex, adapters.BearerContextModificationRequest) error {
	e.record("BearerContextModificationRequest")
	return nil
}
func (e *fakeE1) SendBearerContextReleaseCommand(ran.CUUPIndex, adapters.BearerContextReleaseCommand) error {
	e.record("BearerContextReleaseCommand")
	return nil
}
func (e *fakeE1) SendE1ReleaseResponse(ran.CUUPIndex, adapters.E1ReleaseResponse) error {
	e.record("E1ReleaseResponse")
	return nil
}

type fakeNGAP struct {
	mu    sync.Mutex
	calls []string
}

func (n *fakeNGAP) record(name string) {
	n.mu.Lock()
	n.calls = append(n.calls, name)
	n.mu.Unlock()
}
func (n *fakeNGAP) has(name string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, c := range n.calls {
		if c == name {
			return true
		}
	}
	return false
}
func (n *fakeNGAP) SendNGSetupRequest() error { n.record("NGSetupRequest"); return nil }
func (n *fakeNGAP) SendInitialUEMessage(adapters.InitialUEMessage) error {
	n.record("InitialUEMessage")
	return nil
}
func (n *fakeNGAP) SendULNASTransport(adapters.ULNASTransport) error {
	n.record("ULNASTransport")
	return nil
}
func (n *fakeNGAP) SendInitialContextSetupResponse(adapters.InitialContextSetupResponse) error {
	n.record("InitialContextSetupResponse")
	return nil
}
func (n *fakeNGAP) SendInitialContextSetupFailure(adapters.InitialContextSetupFailure) error {
	n.record("InitialContextSetupFailure")
	return nil
}
func (n *fakeNGAP) SendUERadioCapabilityInfoIndication(adapters.UERadioCapabilityInfoIndication) error {
	n.record("UERadioCapabilityInfoIndication")
	return nil
}
func (n *fakeNGAP) SendPDUSessionResourceSetupResponse(adapters.PDUSessionResourceSetupResponse) error {
	n.record("PDUSessionResourceSetupResponse")
	return nil
}
func (n *fakeNGAP) SendUEContextReleaseRequest(adapters.UEContextReleaseCommandNGAP) error {
	n.record("UEContextReleaseRequest")
	return nil
}
func (n *fakeNGAP) SendUEContextReleaseComplete(adapters.UEContextReleaseCompleteNGAP) error {
	n.record("UEContextReleaseComplete")
	return nil
}

func newTestManager(t *testing.T) (*Manager, *fakeF1, *fakeE1, *fakeNGAP) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	f1 := &fakeF1{}
	e1 := &fakeE1{}
	ngap := &fakeNGAP{}
	log := obs.NewLogger(nil)

	m := NewManager(ctx, Config{
		GNBCUName: "test-gnb",
		MaxDUs:    4,
		MaxCUUPs:  4,
		MaxUEs:    16,
	}, f1, e1, ngap, log, nil)
	return m, f1, e1, ngap
}

func TestF1SetupAcceptedSendsResponse(t *testing.T) {
	m, f1, _, _ := newTestManager(t)
	err := m.HandleF1SetupRequest(adapters.F1SetupRequest{GNBDUID: 1})
	require.NoError(t, err)
	require.True(t, f1.has("F1SetupResponse"))

	du, ok := m.DUs.Get(0)
	require.True(t, ok)
	require.EqualValues(t, 1, du.GNBDUID)
}

func TestInitialULRRCRejectedWhileAMFDisconnected(t *testing.T) {
	m, f1, _, _ := newTestManager(t)
	_, ok := m.DUs.Add(adapters.F1SetupRequest{GNBDUID: 1})
	require.True(t, ok)

	err := m.HandleInitialULRRC(adapters.InitialULRRCMessage{
		DUIndex: 0, PCI: 1, CRNTI: 100, DUUEF1APID: 1,
	})
	require.NoError(t, err)
	require.True(t, f1.has("UEContextReleaseCommand"))
	require.Equal(t, 0, m.UEs.Count())
}

func TestAttachHappyPathSendsInitialUEMessage(t *testing.T) {
	m, _, _, ngap := newTestManager(t)
	_, ok := m.DUs.Add(adapters.F1SetupRequest{GNBDUID: 1})
	require.True(t, ok)
	m.HandleNGSetupResponse(adapters.NGSetupResponse{AMFName: "test-amf"})

	err := m.HandleInitialULRRC(adapters.InitialULRRCMessage{
		DUIndex: 0, PCI: 1, CRNTI: 100, DUUEF1APID: 1,
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return ngap.has("InitialUEMessage")
	}, time.Second, time.Millisecond)
}

func TestAMFDisconnectReleasesEveryUEAndDeactivatesCells(t *testing.T) {
	m, f1, _, _ := newTestManager(t)
	_, ok := m.DUs.Add(adapters.F1SetupRequest{GNBDUID: 1})
	require.True(t, ok)
	m.HandleNGSetupResponse(adapters.NGSetupResponse{AMFName: "test-amf"})

	_, ok = m.UEs.Create(0, 1, 100, 1)
	require.True(t, ok)
	require.Equal(t, 1, m.UEs.Count())

	m.HandleAMFDisconnect()

	require.Equal(t, 0, m.UEs.Count())
	require.False(t, m.AMF.Connected())
	require.True(t, f1.has("UEContextReleaseCommand"))
	require.True(t, f1.has("GNBCUConfigurationUpdate"))
}

func TestReestablishmentWithoutOldContextIncrementsFallbackMetric(t *testing.T) {
	m, f1, _, _ := newTestManager(t)
	err := m.HandleRRCReestablishmentRequest(RRCReestablishmentRequest{
		NewDUUEF1APID: 5, DUIndex: 0, OldCRNTI: 200,
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, m.Metrics.ReestablishmentsWithoutContext.Total())
	require.True(t, f1.has("DLRRCMessageTransfer"))
}

// TestReestablishmentAlreadyInFlightFallsBack exercises spec.md §4.2.5's
// fourth bullet: a second reestablishment request for an old UE already mid
// reestablishment must fall back rather than double-use the old context.
func TestReestablishmentAlreadyInFlightFallsBack(t *testing.T) {
	m, f1, e1, _ := newTestManager(t)
	ue, ok := m.UEs.Create(0, 1, 100, 1)
	require.True(t, ok)
	ue.mu.Lock()
	ue.DRBs = []uint8{1}
	ue.CUUPIndex = 0
	ue.mu.Unlock()

	err := m.HandleRRCReestablishmentRequest(RRCReestablishmentRequest{
		NewDUUEF1APID: 9, DUIndex: 0, OldCRNTI: 100,
	})
	require.NoError(t, err)
	require.True(t, e1.has("BearerContextModificationRequest"))
	require.Equal(t, UEStateReestablishing, ue.getState())

	// Second request racing the first, same old CRNTI: must fall back instead
	// of re-entering the DRB-transfer branch.
	err = m.HandleRRCReestablishmentRequest(RRCReestablishmentRequest{
		NewDUUEF1APID: 10, DUIndex: 0, OldCRNTI: 100,
	})
	require.NoError(t, err)
	require.True(t, f1.has("DLRRCMessageTransfer"))
}

func TestIntraDUHandoverMovesCRNTIAndUpdatesLookup(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	ue, ok := m.UEs.Create(0, 1, 100, 1)
	require.True(t, ok)

	m.HandleHandoverRequired(ue, HandoverRequired{TargetPCI: 2, TargetRNTI: 200})

	require.Equal(t, UEStateConnected, ue.getState())
	require.EqualValues(t, 200, ue.CRNTI)
	require.EqualValues(t, 2, ue.PCI)
	require.EqualValues(t, 1, m.Metrics.HandoverRequested.Total())
	require.EqualValues(t, 1, m.Metrics.HandoverSucceeded.Total())

	_, foundOld := m.UEs.FindByDUCRNTI(0, 100)
	require.False(t, foundOld)
	found, foundNew := m.UEs.FindByDUCRNTI(0, 200)
	require.True(t, foundNew)
	require.Equal(t, ue.Index, found.Index)
}

func TestReestablishmentWithDRBsTransfersBearerContext(t *testing.T) {
	m, _, e1, _ := newTestManager(t)
	ue, ok := m.UEs.Create(0, 1, 100, 1)
	require.True(t, ok)
	ue.mu.Lock()
	ue.DRBs = []uint8{1}
	ue.CUUPIndex = 0
	ue.mu.Unlock()

	err := m.HandleRRCReestablishmentRequest(RRCReestablishmentRequest{
		NewDUUEF1APID: 9, DUIndex: 0, OldCRNTI: 100,
	})
	require.NoError(t, err)
	require.True(t, e1.has("BearerContextModificationRequest"))
	require.Equal(t, UEStateReestablishing, ue.getState())
}

// TestE1ReleaseResponseWaitsForEndToEndAcknowledgment checks spec.md §4.2.2's
// "only responds with E1 Release Response after all UE releases are
// acknowledged end-to-end": the response must not go out merely because the
// F1 release command was sent, only once the DU's UEContextReleaseComplete
// is handled.
func TestE1ReleaseResponseWaitsForEndToEndAcknowledgment(t *testing.T) {
	m, f1, e1, _ := newTestManager(t)
	ue, ok := m.UEs.Create(0, 1, 100, 1)
	require.True(t, ok)
	ue.mu.Lock()
	ue.CUUPIndex = 0
	ue.mu.Unlock()

	err := m.HandleE1ReleaseRequest(adapters.E1ReleaseRequest{CUUPIndex: 0})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return f1.has("UEContextReleaseCommand")
	}, time.Second, time.Millisecond)

	require.Never(t, func() bool {
		return e1.has("E1ReleaseResponse")
	}, 20*time.Millisecond, time.Millisecond)

	err = m.HandleUEContextReleaseComplete(adapters.UEContextReleaseComplete{DUUEF1APID: ue.DUUEF1APID})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return e1.has("E1ReleaseResponse")
	}, time.Second, time.Millisecond)
}
