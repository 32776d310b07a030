package inproc

import (
	"sync"

	"github.com/srsran/gnb-cucp-go/internal/adapters"
	"github.com/srsran/gnb-cucp-go/internal/ran"
)

// E1Link is an in-process adapters.E1AP realization, symmetric to F1Link.
type E1Link struct {
	mu     sync.Mutex
	byCUUP map[ran.CUUPIndex]*Channel
}

func NewE1Link() *E1Link {
	return &E1Link{byCUUP: make(map[ran.CUUPIndex]*Channel)}
}

func (e *E1Link) RegisterCUUP(cuup ran.CUUPIndex, ch *Channel) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.byCUUP[cuup] = ch
}

func (e *E1Link) channel(cuup ran.CUUPIndex) *Channel {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.byCUUP[cuup]
}

const (
	methodE1SetupResponse                  = "E1SetupResponse"
	methodE1SetupFailure                   = "E1SetupFailure"
	methodBearerContextSetupRequest        = "BearerContextSetupRequest"
	methodBearerContextModificationRequest = "BearerContextModificationRequest"
	methodBearerContextReleaseCommand      = "BearerContextReleaseCommand"
	methodE1ReleaseResponse                = "E1ReleaseResponse"
)

func (e *E1Link) SendE1SetupResponse(cuup ran.CUUPIndex, resp adapters.E1SetupResponse) error {
	ch := e.channel(cuup)
	if ch == nil {
		return errNoChannel("E1", cuup)
	}
	_, err := ch.Call(methodE1SetupResponse, resp)
	return err
}

func (e *E1Link) SendE1SetupFailure(cuup ran.CUUPIndex, fail adapters.E1SetupFailure) error {
	ch := e.channel(cuup)
	if ch == nil {
		return errNoChannel("E1", cuup)
	}
	_, err := ch.Call(methodE1SetupFailure, fail)
	return err
}

func (e *E1Link) SendBearerContextSetupRequest(cuup ran.CUUPIndex, req adapters.BearerContextSetupRequest) error {
	ch := e.channel(cuup)
	if ch == nil {
		return errNoChannel("E1", cuup)
	}
	_, err := ch.Call(methodBearerContextSetupRequest, req)
	return err
}

func (e *E1Link) SendBearerContextModificationRequest(cuup ran.CUUPIndex, req adapters.BearerContextModificationRequest) error {
	ch := e.channel(cuup)
	if ch == nil {
		return errNoChannel("E1", cuup)
	}
	_, err := ch.Call(methodBearerContextModificationRequest, req)
	return err
}

func (e *E1Link) SendBearerContextReleaseCommand(cuup ran.CUUPIndex, cmd adapters.BearerContextReleaseCommand) error {
	ch := e.channel(cuup)
	if ch == nil {
		return errNoChannel("E1", cuup)
	}
	_, err := ch.Call(methodBearerContextReleaseCommand, cmd)
	return err
}

func (e *E1Link) SendE1ReleaseResponse(cuup ran.CUUPIndex, resp adapters.E1ReleaseResponse) error {
	ch := e.channel(cuup)
	if ch == nil {
		return errNoChannel("E1", cuup)
	}
	_, err := ch.Call(methodE1ReleaseResponse, resp)
	return err
}

var _ adapters.E1AP = (*E1Link)(nil)
