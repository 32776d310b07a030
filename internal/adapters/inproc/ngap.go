package inproc

import (
	"github.com/srsran/gnb-cucp-go/internal/adapters"
)

// NGLink is an in-process adapters.NGAP realization over a single Channel,
// since spec.md §4.2.1 describes NGAP as "a single AMF connection" — there
// is exactly one peer, unlike the per-DU/per-CU-UP fan-out of F1Link and
// E1Link.
type NGLink struct {
	ch *Channel
}

func NewNGLink(ch *Channel) *NGLink { return &NGLink{ch: ch} }

const (
	methodNGSetupRequest                     = "NGSetupRequest"
	methodInitialUEMessage                    = "InitialUEMessage"
	methodULNASTransport                      = "ULNASTransport"
	methodInitialContextSetupResponse         = "InitialContextSetupResponse"
	methodInitialContextSetupFailure          = "InitialContextSetupFailure"
	methodUERadioCapabilityInfoIndication      = "UERadioCapabilityInfoIndication"
	methodPDUSessionResourceSetupResponse     = "PDUSessionResourceSetupResponse"
	methodUEContextReleaseRequestNGAP          = "UEContextReleaseRequestNGAP"
	methodUEContextReleaseCompleteNGAP         = "UEContextReleaseCompleteNGAP"
)

func (n *NGLink) SendNGSetupRequest() error {
	_, err := n.ch.Call(methodNGSetupRequest, struct{}{})
	return err
}

func (n *NGLink) SendInitialUEMessage(msg adapters.InitialUEMessage) error {
	_, err := n.ch.Call(methodInitialUEMessage, msg)
	return err
}

func (n *NGLink) SendULNASTransport(msg adapters.ULNASTransport) error {
	_, err := n.ch.Call(methodULNASTransport, msg)
	return err
}

func (n *NGLink) SendInitialContextSetupResponse(resp adapters.InitialContextSetupResponse) error {
	_, err := n.ch.Call(methodInitialContextSetupResponse, resp)
	return err
}

func (n *NGLink) SendInitialContextSetupFailure(fail adapters.InitialContextSetupFailure) error {
	_, err := n.ch.Call(methodInitialContextSetupFailure, fail)
	return err
}

func (n *NGLink) SendUERadioCapabilityInfoIndication(ind adapters.UERadioCapabilityInfoIndication) error {
	_, err := n.ch.Call(methodUERadioCapabilityInfoIndication, ind)
	return err
}

func (n *NGLink) SendPDUSessionResourceSetupResponse(resp adapters.PDUSessionResourceSetupResponse) error {
	_, err := n.ch.Call(methodPDUSessionResourceSetupResponse, resp)
	return err
}

func (n *NGLink) SendUEContextReleaseRequest(req adapters.UEContextReleaseCommandNGAP) error {
	_, err := n.ch.Call(methodUEContextReleaseRequestNGAP, req)
	return err
}

func (n *NGLink) SendUEContextReleaseComplete(resp adapters.UEContextReleaseCompleteNGAP) error {
	_, err := n.ch.Call(methodUEContextReleaseCompleteNGAP, resp)
	return err
}

var _ adapters.NGAP = (*NGLink)(nil)
