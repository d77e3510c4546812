package shell

import (
	"errors"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/fitgrid/platform/eventstore"
)

// ErrMappingToEventMetadataFailed is returned when metadata conversion fails.
var ErrMappingToEventMetadataFailed = errors.New("mapping to event metadata failed")

// MessageID represents a unique message identifier.
type MessageID = string

// CausationID represents the ID of the event that caused this event.
type CausationID = string

// CorrelationID represents the ID correlating a causal chain across domains.
type CorrelationID = string

// EventMetadata contains event tracking information plus the externally
// verified principal and tenant attached to the originating command.
type EventMetadata struct {
	MessageID     MessageID
	CausationID   CausationID
	CorrelationID CorrelationID
	PrincipalID   string
	TenantID      string
}

// BuildEventMetadata creates EventMetadata from UUID values.
func BuildEventMetadata(messageID uuid.UUID, causationID uuid.UUID, correlationID uuid.UUID) EventMetadata {
	return EventMetadata{
		MessageID:     messageID.String(),
		CausationID:   causationID.String(),
		CorrelationID: correlationID.String(),
	}
}

// WithPrincipal returns a copy of the metadata carrying the verified principal
// and tenant identifiers. The core performs no credential verification itself.
func (m EventMetadata) WithPrincipal(principalID string, tenantID string) EventMetadata {
	m.PrincipalID = principalID
	m.TenantID = tenantID

	return m
}

// WithFreshMessageID returns a copy of the metadata with a newly generated
// message id, keeping causation and correlation intact. Used when one command
// produces multiple events that share a causal chain.
func (m EventMetadata) WithFreshMessageID() EventMetadata {
	m.MessageID = uuid.New().String()

	return m
}

// EventMetadataFrom extracts EventMetadata from a StorableEvent.
func EventMetadataFrom(storableEvent eventstore.StorableEvent) (EventMetadata, error) {
	metadata := new(EventMetadata)

	err := jsoniter.ConfigFastest.Unmarshal(storableEvent.MetadataJSON, metadata)
	if err != nil {
		return EventMetadata{}, errors.Join(ErrMappingToEventMetadataFailed, err)
	}

	return *metadata, nil
}
