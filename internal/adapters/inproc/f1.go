package inproc

import (
	"sync"

	"github.com/srsran/gnb-cucp-go/internal/adapters"
	"github.com/srsran/gnb-cucp-go/internal/ran"
)

// F1Link is an in-process adapters.F1AP realization: one Channel per DU,
// looked up by ran.DUIndex. RegisterDU must be called once per DU before
// CU-CP sends it anything.
type F1Link struct {
	mu   sync.Mutex
	byDU map[ran.DUIndex]*Channel
}

// NewF1Link constructs an empty F1Link; call RegisterDU for each DU.
func NewF1Link() *F1Link {
	return &F1Link{byDU: make(map[ran.DUIndex]*Channel)}
}

// RegisterDU associates du with ch, which must already have its inbound
// handlers (the DU-side callbacks) registered by the caller.
func (f *F1Link) RegisterDU(du ran.DUIndex, ch *Channel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byDU[du] = ch
}

func (f *F1Link) channel(du ran.DUIndex) *Channel {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byDU[du]
}

const (
	methodF1SetupResponse            = "F1SetupResponse"
	methodF1SetupFailure              = "F1SetupFailure"
	methodDLRRCMessageTransfer        = "DLRRCMessageTransfer"
	methodUEContextSetupRequest       = "UEContextSetupRequest"
	methodUEContextModificationRequest = "UEContextModificationRequest"
	methodUEContextReleaseCommand     = "UEContextReleaseCommand"
	methodGNBCUConfigurationUpdate    = "GNBCUConfigurationUpdate"
)

func (f *F1Link) SendF1SetupResponse(du ran.DUIndex, resp adapters.F1SetupResponse) error {
	ch := f.channel(du)
	if ch == nil {
		return errNoChannel("F1", du)
	}
	_, err := ch.Call(methodF1SetupResponse, resp)
	return err
}

func (f *F1Link) SendF1SetupFailure(du ran.DUIndex, fail adapters.F1SetupFailure) error {
	ch := f.channel(du)
	if ch == nil {
		return errNoChannel("F1", du)
	}
	_, err := ch.Call(methodF1SetupFailure, fail)
	return err
}

func (f *F1Link) SendDLRRCMessageTransfer(du ran.DUIndex, msg adapters.DLRRCMessage) error {
	ch := f.channel(du)
	if ch == nil {
		return errNoChannel("F1", du)
	}
	_, err := ch.Call(methodDLRRCMessageTransfer, msg)
	return err
}

func (f *F1Link) SendUEContextSetupRequest(du ran.DUIndex, req adapters.UEContextSetupRequest) error {
	ch := f.channel(du)
	if ch == nil {
		return errNoChannel("F1", du)
	}
	_, err := ch.Call(methodUEContextSetupRequest, req)
	return err
}

func (f *F1Link) SendUEContextModificationRequest(du ran.DUIndex, req adapters.UEContextModificationRequest) error {
	ch := f.channel(du)
	if ch == nil {
		return errNoChannel("F1", du)
	}
	_, err := ch.Call(methodUEContextModificationRequest, req)
	return err
}

func (f *F1Link) SendUEContextReleaseCommand(du ran.DUIndex, cmd adapters.UEContextReleaseCommand) error {
	ch := f.channel(du)
	if ch == nil {
		return errNoChannel("F1", du)
	}
	_, err := ch.Call(methodUEContextReleaseCommand, cmd)
	return err
}

func (f *F1Link) SendGNBCUConfigurationUpdate(du ran.DUIndex, upd adapters.GNBCUConfigurationUpdate) error {
	ch := f.channel(du)
	if ch == nil {
		return errNoChannel("F1", du)
	}
	_, err := ch.Call(methodGNBCUConfigurationUpdate, upd)
	return err
}

var _ adapters.F1AP = (*F1Link)(nil)
