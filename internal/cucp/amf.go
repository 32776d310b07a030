package cucp

import (
	"sync"
	"sync/atomic"

	"github.com/srsran/gnb-cucp-go/internal/adapters"
)

// AMFLink owns the single NGAP connection (spec.md §4.2.1 "NGAP link: a
// single AMF connection. Owns an NG-Setup transaction at startup").
type AMFLink struct {
	ngap adapters.NGAP

	mu        sync.Mutex
	connected bool
	amfName   string

	nextRANUEID atomic.Uint32
}

// NewAMFLink wraps ngap, initially disconnected until NGSetup succeeds.
func NewAMFLink(ngap adapters.NGAP) *AMFLink {
	return &AMFLink{ngap: ngap}
}

// Connected reports whether NG Setup has completed successfully.
func (a *AMFLink) Connected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.connected
}

// onSetupResponse/onSetupFailure are called by Manager on the inbound NGAP
// handlers; they just flip connection state. NG Setup is sent once, by
// Manager.StartNGSetup (ngsetup.go), and a failure is not retried.
func (a *AMFLink) onSetupResponse(resp adapters.NGSetupResponse) {
	a.mu.Lock()
	a.connected = true
	a.amfName = resp.AMFName
	a.mu.Unlock()
}

func (a *AMFLink) onSetupFailure(adapters.NGSetupFailure) {
	a.mu.Lock()
	a.connected = false
	a.mu.Unlock()
}

func (a *AMFLink) onDisconnect() {
	a.mu.Lock()
	a.connected = false
	a.mu.Unlock()
}
