// Package adapters declares the narrow, collaborator-shaped boundary
// interfaces spec.md §6 names without re-specifying their wire content:
// F1AP, E1AP, NGAP and the RRC codec. Every message is an opaque payload
// struct here — packing/unpacking ASN.1 is explicitly out of scope
// (spec.md §1 Non-goals) — the interfaces exist purely to give the CU-CP
// core (internal/cucp) something concrete to call and to be called back
// on, matching the teacher's habit of depending on small interfaces
// defined at the point of use rather than on concrete peer types.
package adapters

import "github.com/srsran/gnb-cucp-go/internal/ran"

// RRCContainer is an opaque, already-packed RRC PDU (spec.md §6 "RRC wire
// codec... provides a MAC-SDU-level channel, opaque to the core").
type RRCContainer []byte

// F1SetupRequest is the payload of an inbound F1 Setup Request.
type F1SetupRequest struct {
	GNBDUID    ran.GNBDUID
	ServedCells []ServedCell
}

// ServedCell names one cell a DU reports serving, keyed by its packed NCI.
type ServedCell struct {
	NCI ran.NRCellGlobalIdentity
	PCI ran.PCI
}

// F1SetupResponse/Failure answer a F1SetupRequest.
type F1SetupResponse struct{ GNBCUName string }
type F1SetupFailure struct{ Cause string }

// InitialULRRCMessage carries the first uplink RRC message for a UE not
// yet known to CU-CP (spec.md §4.2.3 step 1).
type InitialULRRCMessage struct {
	DUIndex ran.DUIndex
	PCI     ran.PCI
	CRNTI   ran.RNTI
	DUUEF1APID ran.DUUEF1APID
	RRCContainer RRCContainer
}

// ULRRCMessage carries a subsequent uplink RRC message on an established
// signalling radio bearer.
type ULRRCMessage struct {
	DUUEF1APID   ran.DUUEF1APID
	CUUEF1APID   ran.CUUEF1APID
	SRBID        uint8
	RRCContainer RRCContainer
}

// DLRRCMessage is the downlink mirror of ULRRCMessage (F1 DL RRC Message
// Transfer, spec.md §4.2.2/§4.2.3).
type DLRRCMessage struct {
	DUUEF1APID   ran.DUUEF1APID
	CUUEF1APID   ran.CUUEF1APID
	SRBID        uint8
	RRCContainer RRCContainer
}

// UEContextSetupRequest/Response/Failure carry the NGAP security context
// down to the DU and report DRB/SRB setup outcome back (spec.md §4.2.3
// step 3).
type UEContextSetupRequest struct {
	DUUEF1APID ran.DUUEF1APID
	CUUEF1APID ran.CUUEF1APID
	RRCContainer RRCContainer // RRC Security Mode Command
}
type UEContextSetupResponse struct {
	DUUEF1APID ran.DUUEF1APID
	CUUEF1APID ran.CUUEF1APID
}
type UEContextSetupFailure struct {
	DUUEF1APID ran.DUUEF1APID
	CUUEF1APID ran.CUUEF1APID
	Cause      string
}

// UEContextModificationRequest/Response/Failure carry DRB
// setup/modification requests from CU-CP to DU (spec.md §4.2.3 step 4,
// §4.2.5 "DRBs-to-be-modified list").
type UEContextModificationRequest struct {
	DUUEF1APID          ran.DUUEF1APID
	CUUEF1APID          ran.CUUEF1APID
	DRBsToBeSetup       []DRBInfo
	DRBsToBeModified    []DRBInfo
	RRCContainer        RRCContainer // RRC Reconfiguration
}
type DRBInfo struct{ DRBID uint8 }
type UEContextModificationResponse struct {
	DUUEF1APID ran.DUUEF1APID
	CUUEF1APID ran.CUUEF1APID
}
type UEContextModificationFailure struct {
	DUUEF1APID ran.DUUEF1APID
	CUUEF1APID ran.CUUEF1APID
	Cause      string
}

// UEContextReleaseCommand/Complete implement F1 UE release, including the
// RRC-Reject-as-inner-container fallback path of spec.md §4.2.2/§4.2.3.
type UEContextReleaseCommand struct {
	DUUEF1APID   ran.DUUEF1APID
	CUUEF1APID   ran.CUUEF1APID
	RRCContainer RRCContainer // optional: RRC Reject
}
type UEContextReleaseComplete struct {
	DUUEF1APID ran.DUUEF1APID
	CUUEF1APID ran.CUUEF1APID
}

// GNBCUConfigurationUpdate deactivates cells on AMF disconnect (spec.md
// §4.2.2 "AMF disconnect").
type GNBCUConfigurationUpdate struct {
	DUIndex          ran.DUIndex
	CellsToDeactivate []ran.NRCellGlobalIdentity
}

// F1RemovalRequest signals a DU disconnecting cleanly.
type F1RemovalRequest struct{ DUIndex ran.DUIndex }

// F1AP is CU-CP's view of the F1 interface: inbound messages it handles
// (spec.md §6 "Delivers...") plus outbound calls it makes on a specific DU
// ("Accepts the mirrored downlink messages").
type F1AP interface {
	// SendF1SetupResponse/Failure answer an inbound F1SetupRequest.
	SendF1SetupResponse(du ran.DUIndex, resp F1SetupResponse) error
	SendF1SetupFailure(du ran.DUIndex, fail F1SetupFailure) error
	SendDLRRCMessageTransfer(du ran.DUIndex, msg DLRRCMessage) error
	SendUEContextSetupRequest(du ran.DUIndex, req UEContextSetupRequest) error
	SendUEContextModificationRequest(du ran.DUIndex, req UEContextModificationRequest) error
	SendUEContextReleaseCommand(du ran.DUIndex, cmd UEContextReleaseCommand) error
	SendGNBCUConfigurationUpdate(du ran.DUIndex, upd GNBCUConfigurationUpdate) error
}

// E1 Setup / Bearer Context messages (spec.md §6, §4.2.2 "CU-UP
// connection").
type E1SetupRequest struct{ GNBCUUPID ran.GNBCUUPID }
type E1SetupResponse struct{ GNBCUCPName string }
type E1SetupFailure struct{ Cause string }

type BearerContextSetupRequest struct {
	CUCPE1APID ran.CUCPE1APID
	PDUSessions []PDUSessionResourceInfo
}
type PDUSessionResourceInfo struct{ PDUSessionID uint8 }
type BearerContextSetupResponse struct {
	CUCPE1APID ran.CUCPE1APID
	CUUPE1APID ran.CUUPE1APID
}
type BearerContextSetupFailure struct {
	CUCPE1APID ran.CUCPE1APID
	Cause      string
}

type BearerContextModificationRequest struct {
	CUCPE1APID  ran.CUCPE1APID
	CUUPE1APID  ran.CUUPE1APID
	DRBsToBeModified []DRBInfo
}
type BearerContextModificationResponse struct {
	CUCPE1APID ran.CUCPE1APID
	CUUPE1APID ran.CUUPE1APID
}
type BearerContextModificationFailure struct {
	CUCPE1APID ran.CUCPE1APID
	CUUPE1APID ran.CUUPE1APID
	Cause      string
}

type BearerContextReleaseCommand struct {
	CUCPE1APID ran.CUCPE1APID
	CUUPE1APID ran.CUUPE1APID
}
type BearerContextReleaseComplete struct {
	CUCPE1APID ran.CUCPE1APID
	CUUPE1APID ran.CUUPE1APID
}

// E1ReleaseRequest signals a CU-UP disconnecting; CU-CP must release every
// UE through it before answering (spec.md §4.2.2 "CU-UP connection").
type E1ReleaseRequest struct{ CUUPIndex ran.CUUPIndex }
type E1ReleaseResponse struct{ CUUPIndex ran.CUUPIndex }

// E1AP is CU-CP's view of the E1 interface.
type E1AP interface {
	SendE1SetupResponse(cuup ran.CUUPIndex, resp E1SetupResponse) error
	SendE1SetupFailure(cuup ran.CUUPIndex, fail E1SetupFailure) error
	SendBearerContextSetupRequest(cuup ran.CUUPIndex, req BearerContextSetupRequest) error
	SendBearerContextModificationRequest(cuup ran.CUUPIndex, req BearerContextModificationRequest) error
	SendBearerContextReleaseCommand(cuup ran.CUUPIndex, cmd BearerContextReleaseCommand) error
	SendE1ReleaseResponse(cuup ran.CUUPIndex, resp E1ReleaseResponse) error
}

// NG Setup / Initial UE / Context Setup / PDU Session messages (spec.md §6,
// §4.2.3 attach procedure).
type NGSetupResponse struct{ AMFName string }
type NGSetupFailure struct{ Cause string }

type InitialUEMessage struct {
	RANUEID      ran.RANUENGAPID
	RRCContainer RRCContainer
}
type DLNASTransport struct {
	RANUEID ran.RANUENGAPID
	AMFUEID ran.AMFUENGAPID
	NAS     []byte
}
type ULNASTransport struct {
	RANUEID ran.RANUENGAPID
	AMFUEID ran.AMFUENGAPID
	NAS     []byte
}

type InitialContextSetupRequest struct {
	RANUEID     ran.RANUENGAPID
	AMFUEID     ran.AMFUENGAPID
	SecurityKey []byte
}
type InitialContextSetupResponse struct {
	RANUEID ran.RANUENGAPID
	AMFUEID ran.AMFUENGAPID
}
type InitialContextSetupFailure struct {
	RANUEID ran.RANUENGAPID
	AMFUEID ran.AMFUENGAPID
	Cause   string
}

type UERadioCapabilityInfoIndication struct {
	RANUEID ran.RANUENGAPID
	AMFUEID ran.AMFUENGAPID
}

type PDUSessionResourceSetupRequest struct {
	RANUEID     ran.RANUENGAPID
	AMFUEID     ran.AMFUENGAPID
	PDUSessions []PDUSessionResourceInfo
}
type PDUSessionResourceSetupResponse struct {
	RANUEID ran.RANUENGAPID
	AMFUEID ran.AMFUENGAPID
}
type PDUSessionResourceModifyRequest struct {
	RANUEID     ran.RANUENGAPID
	AMFUEID     ran.AMFUENGAPID
	PDUSessions []PDUSessionResourceInfo
}
type PDUSessionResourceReleaseRequest struct {
	RANUEID     ran.RANUENGAPID
	AMFUEID     ran.AMFUENGAPID
	PDUSessions []uint8
}

type UEContextReleaseCommandNGAP struct {
	RANUEID ran.RANUENGAPID
	AMFUEID ran.AMFUENGAPID
}
type UEContextReleaseCompleteNGAP struct {
	RANUEID ran.RANUENGAPID
	AMFUEID ran.AMFUENGAPID
}

// NGAP is CU-CP's view of the NG interface.
type NGAP interface {
	SendNGSetupRequest() error
	SendInitialUEMessage(msg InitialUEMessage) error
	SendULNASTransport(msg ULNASTransport) error
	SendInitialContextSetupResponse(resp InitialContextSetupResponse) error
	SendInitialContextSetupFailure(fail InitialContextSetupFailure) error
	SendUERadioCapabilityInfoIndication(ind UERadioCapabilityInfoIndication) error
	SendPDUSessionResourceSetupResponse(resp PDUSessionResourceSetupResponse) error
	SendUEContextReleaseRequest(req UEContextReleaseCommandNGAP) error
	SendUEContextReleaseComplete(resp UEContextReleaseCompleteNGAP) error
}
