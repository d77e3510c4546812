package core

import (
	"time"
)

// DomainEvents is a slice of DomainEvent instances.
type DomainEvents = []DomainEvent

// DomainEvent represents a business event that has occurred in one of the domains.
//
// The set of event types forms a closed tagged union: the conversion shell and
// every reducer switch over it exhaustively, so an unhandled new event type
// surfaces at test time instead of being silently ignored.
type DomainEvent interface {
	// IsEventType returns the string identifier for this event type.
	IsEventType() string

	// HasOccurredAt returns when this event occurred.
	HasOccurredAt() time.Time
}
