// Package inproc provides the in-process transport realization of the
// F1AP/E1AP/NGAP boundary adapters (internal/adapters), used by tests and
// single-process deployments in place of a real ASN.1/SCTP stack.
//
// Grounded on the teacher's inprocgrpc.Channel: a name-keyed handler
// registry dispatches "RPCs" as direct in-process calls, with every
// message cloned on the way in and out so the "two sides" — which share
// one address space — never alias the same backing storage (spec.md §6
// "thin message-in/message-out shims", reimagined over plain Go values
// instead of a gRPC service descriptor, since there is no protobuf
// schema for F1AP/E1AP/NGAP payloads here).
package inproc

import (
	"fmt"
	"sync"
)

// HandlerFunc processes one in-process call and returns its reply.
type HandlerFunc func(req any) (any, error)

// Channel is a named-method in-process dispatcher, standing in for one
// logical interface connection (one DU's F1, one CU-UP's E1, or the single
// NGAP/AMF link).
//
// The zero value is not usable; construct with NewChannel.
type Channel struct {
	cloner   Cloner
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// NewChannel constructs a Channel using cloner for message isolation. A nil
// cloner defaults to GobCloner{}.
func NewChannel(cloner Cloner) *Channel {
	if cloner == nil {
		cloner = GobCloner{}
	}
	return &Channel{cloner: cloner, handlers: make(map[string]HandlerFunc)}
}

// Register binds method to fn. Panics if method is already registered,
// mirroring inprocgrpc.handlerMap.registerService's duplicate-registration
// panic — this is a programming error caught at wiring time, not a runtime
// condition callers should recover from.
func (c *Channel) Register(method string, fn HandlerFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.handlers[method]; exists {
		panic(fmt.Sprintf("inproc: method %q already registered", method))
	}
	c.handlers[method] = fn
}

// Call dispatches method with req, cloning req before the handler sees it
// and cloning the handler's reply before returning it, so mutations on
// either side never leak across the boundary.
func (c *Channel) Call(method string, req any) (any, error) {
	c.mu.RLock()
	fn, ok := c.handlers[method]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("inproc: no handler registered for %q", method)
	}

	reqCopy, err := c.cloner.Clone(req)
	if err != nil {
		return nil, fmt.Errorf("inproc: clone request: %w", err)
	}

	reply, err := fn(reqCopy)
	if err != nil || reply == nil {
		return reply, err
	}

	replyCopy, err := c.cloner.Clone(reply)
	if err != nil {
		return nil, fmt.Errorf("inproc: clone reply: %w", err)
	}
	return replyCopy, nil
}
