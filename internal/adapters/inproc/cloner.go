package inproc

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"reflect"
)

// Cloner isolates messages crossing the in-process boundary so the two
// "sides" sharing one address space never alias the same backing slice.
// Grounded on the teacher's inprocgrpc.Cloner, adapted from a
// proto.Message-specific implementation to a gob-based one since this
// package's messages (internal/adapters) are plain structs, not protobuf —
// ASN.1/protobuf wire codecs are explicitly out of scope for this system
// (spec.md §1).
type Cloner interface {
	// Clone returns a deep copy of msg, which must be a non-pointer struct
	// value (every message type in internal/adapters is passed by value).
	Clone(msg any) (any, error)
}

// GobCloner is the default Cloner: round-trips msg through encoding/gob,
// which deep-copies any exported field reachable from msg including slices
// and nested structs.
type GobCloner struct{}

func (GobCloner) Clone(msg any) (any, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(msg); err != nil {
		return nil, fmt.Errorf("inproc: encode for clone: %w", err)
	}
	out := reflect.New(reflect.TypeOf(msg))
	if err := gob.NewDecoder(&buf).Decode(out.Interface()); err != nil {
		return nil, fmt.Errorf("inproc: decode for clone: %w", err)
	}
	return out.Elem().Interface(), nil
}
