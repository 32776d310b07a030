package cucp

import (
	"context"
	"fmt"
	"time"

	"github.com/srsran/gnb-cucp-go/internal/adapters"
	"github.com/srsran/gnb-cucp-go/internal/async"
	"github.com/srsran/gnb-cucp-go/internal/obs"
	"github.com/srsran/gnb-cucp-go/internal/ran"
)

// managerContext is the shared, read-mostly configuration threaded through
// every procedure, grounded on original_source/lib/cu_cp/cu_cp_manager_context.h:
// rather than a package-level global, construction wires the same value
// into every collaborator that needs it (spec.md §9 "Global singletons:
// pass them explicitly through construction").
type managerContext struct {
	gnbCUName string
	maxDUs    int
	maxCUUPs  int
	maxUEs    int
}

// Config is the caller-facing constructor input for NewManager.
type Config struct {
	GNBCUName             string
	MaxDUs                int
	MaxCUUPs              int
	MaxUEs                int
	UEContextSetupTimeout time.Duration
}

// TimerFactory mints a fresh async.Timer, implemented by
// internal/adapters/timer.Service.NewTimer in the composition root.
type TimerFactory func() async.Timer

// Manager is the CU-CP connection and UE lifecycle engine (C2): it owns
// every registry, the AMF link, and the procedure library, and is the
// single entry point adapters call into (spec.md §4.2.1 "Components and
// responsibilities"), grounded on
// original_source/lib/cu_cp/cu_cp_manager_factory.cpp's single-constructor
// wiring style.
type Manager struct {
	ctx managerContext

	F1  adapters.F1AP
	E1  adapters.E1AP
	AMF *AMFLink

	DUs   *DURegistry
	CUUPs *CUUPRegistry
	UEs   *UERegistry

	Metrics *obs.Registry
	log     *obs.Logger

	newTimer              TimerFactory
	ueContextSetupTimeout time.Duration

	// releaseTxns correlates a UE's F1 UE Context Release Command with the
	// DU's eventual UEContextReleaseComplete, one slot per live UE index, so
	// callers like HandleE1ReleaseRequest can gate on the release actually
	// being acknowledged end-to-end (spec.md §4.2.2) instead of merely
	// having sent the command. The bool distinguishes a real acknowledgment
	// (true) from the armReleaseTimeout sentinel (false) fired when the DU
	// never responds.
	releaseTxns *async.TransactionManager[bool]

	background context.Context
}

// NewManager wires a Manager from cfg and its adapter collaborators.
// newTimer may be nil, disabling the attach procedure's setup-timeout
// watchdog (used by tests that don't care about timer plumbing).
func NewManager(background context.Context, cfg Config, f1 adapters.F1AP, e1 adapters.E1AP, ngap adapters.NGAP, log *obs.Logger, newTimer TimerFactory) *Manager {
	return &Manager{
		ctx: managerContext{
			gnbCUName: cfg.GNBCUName,
			maxDUs:    cfg.MaxDUs,
			maxCUUPs:  cfg.MaxCUUPs,
			maxUEs:    cfg.MaxUEs,
		},
		F1:                    f1,
		E1:                    e1,
		AMF:                   NewAMFLink(ngap),
		DUs:                   NewDURegistry(cfg.MaxDUs),
		CUUPs:                 NewCUUPRegistry(cfg.MaxCUUPs),
		UEs:                   NewUERegistry(background, cfg.MaxUEs),
		Metrics:               obs.NewRegistry(),
		log:                   obs.Component(log, "cucp"),
		newTimer:              newTimer,
		ueContextSetupTimeout: cfg.UEContextSetupTimeout,
		releaseTxns:           async.NewTransactionManager[bool](cfg.MaxUEs, false),
		background:            background,
	}
}

// --- F1 inbound handlers -----------------------------------------------

// HandleF1SetupRequest implements spec.md §4.2.2's F1 Setup handling.
func (m *Manager) HandleF1SetupRequest(req adapters.F1SetupRequest) error {
	idx, ok := m.DUs.Add(req)
	if !ok {
		return m.F1.SendF1SetupFailure(idx, adapters.F1SetupFailure{Cause: "no-du-capacity"})
	}
	m.log.Info().Uint64("gnb_du_id", uint64(req.GNBDUID)).Log("f1 setup accepted")
	return m.F1.SendF1SetupResponse(idx, adapters.F1SetupResponse{GNBCUName: m.ctx.gnbCUName})
}

// HandleF1RemovalRequest tears down a DU and every UE it was serving
// (spec.md §4.2.6 failure cascades).
func (m *Manager) HandleF1RemovalRequest(req adapters.F1RemovalRequest) {
	m.releaseUEsOnDU(req.DUIndex)
	m.DUs.Remove(req.DUIndex)
}

func (m *Manager) releaseUEsOnDU(du ran.DUIndex) {
	var toRelease []*UEContext
	m.UEs.ForEach(func(ue *UEContext) {
		if ue.DUIndex == du {
			toRelease = append(toRelease, ue)
		}
	})
	for _, ue := range toRelease {
		ue.setState(UEStateDeleting)
		if m.AMF.Connected() && ue.AMFUEID != ran.InvalidAMFUENGAPID {
			_ = m.AMF.ngap.SendUEContextReleaseRequest(adapters.UEContextReleaseCommandNGAP{
				RANUEID: ue.RANUEID, AMFUEID: ue.AMFUEID,
			})
		}
		m.UEs.Remove(ue.Index)
	}
}

// HandleInitialULRRC routes an Initial UL RRC Message, starting the attach
// procedure for a fresh UE (spec.md §4.2.3 step 1).
func (m *Manager) HandleInitialULRRC(msg adapters.InitialULRRCMessage) error {
	ue, ok := m.UEs.Create(msg.DUIndex, msg.PCI, msg.CRNTI, msg.DUUEF1APID)
	if !ok {
		return fmt.Errorf("cucp: cannot create UE for du=%d crnti=%s: duplicate or full", msg.DUIndex, msg.CRNTI)
	}
	if !m.AMF.Connected() {
		// spec.md §4.2.2 "AMF disconnect... rejects all subsequent initial
		// UL RRC with RRC Reject until NG reconnects".
		ue.setState(UEStateDeleting)
		defer m.UEs.Remove(ue.Index)
		return m.F1.SendUEContextReleaseCommand(msg.DUIndex, adapters.UEContextReleaseCommand{
			DUUEF1APID:   ue.DUUEF1APID,
			CUUEF1APID:   ue.CUUEF1APID,
			RRCContainer: rrcRejectContainer,
		})
	}
	_, _ = ue.Sequencer.Enqueue(func(ctx context.Context) {
		m.runAttach(ctx, ue, msg.RRCContainer)
	})
	return nil
}

// rrcRejectContainer is a placeholder opaque RRC Reject PDU: packing a real
// RRC Reject message is out of scope (spec.md §1's RRC wire codec
// collaborator).
var rrcRejectContainer = adapters.RRCContainer([]byte("rrc-reject"))
