package eventbus

import (
	"time"

	"github.com/google/uuid"

	"github.com/fitgrid/platform/eventstore"
)

// Envelope wraps one committed event for cross-domain transport.
//
// MessageID is unique per publish attempt and is what consumers deduplicate on.
// PartitionKey is the ordering domain: events sharing a partition key are
// delivered to a given subscriber in commit order; across keys there is no
// ordering guarantee.
type Envelope struct {
	MessageID    uuid.UUID
	PartitionKey string
	Event        eventstore.CommittedEvent
}

// BuildEnvelope wraps a committed event for publication, assigning a fresh
// message id and using the event's stream partition key.
func BuildEnvelope(event eventstore.CommittedEvent) Envelope {
	return Envelope{
		MessageID:    uuid.New(),
		PartitionKey: event.Stream.PartitionKey(),
		Event:        event,
	}
}

// DeadLetter holds an envelope that exhausted its delivery attempts for one
// subscriber, kept for manual inspection rather than silent loss.
type DeadLetter struct {
	Envelope   Envelope
	Subscriber string
	Attempts   int
	LastError  string
	FailedAt   time.Time
}
