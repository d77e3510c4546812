package eventstore

import (
	"errors"
	"fmt"
)

var ErrEmptyDomainSupplied = errors.New("empty domain supplied")
var ErrEmptyAggregateIDSupplied = errors.New("empty aggregateID supplied")

// StreamID identifies one aggregate's event stream within its owning domain.
//
// Each domain exclusively owns its streams - no component ever appends to a
// stream of a foreign domain. Cross-domain effects happen through the event
// bus only.
type StreamID struct {
	Domain      string
	AggregateID string
}

// BuildStreamID is a factory method for StreamID.
//
// Returns an error if domain or aggregateID are empty.
func BuildStreamID(domain string, aggregateID string) (StreamID, error) {
	if domain == "" {
		return StreamID{}, ErrEmptyDomainSupplied
	}

	if aggregateID == "" {
		return StreamID{}, ErrEmptyAggregateIDSupplied
	}

	return StreamID{Domain: domain, AggregateID: aggregateID}, nil
}

// PartitionKey returns the key under which events of this stream are ordered,
// both in the underlying keyed store and on the event bus.
func (s StreamID) PartitionKey() string {
	return fmt.Sprintf("%s#%s", s.Domain, s.AggregateID)
}

// String implements fmt.Stringer.
func (s StreamID) String() string {
	return s.PartitionKey()
}
