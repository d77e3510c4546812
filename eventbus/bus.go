package eventbus

import (
	"context"
	"errors"
	"slices"

	"github.com/fitgrid/platform/eventstore"
)

var (
	ErrBusClosed           = errors.New("event bus is closed")
	ErrNilHandler          = errors.New("handler must not be nil")
	ErrNoSubscriptions     = errors.New("at least one subscription is required")
	ErrSubscriberNameTaken = errors.New("subscriber name already registered")
	ErrEmptySubscriberName = errors.New("subscriber name must not be empty")
)

// Publisher is the narrow contract domains use to put committed events onto
// the cross-domain bus. Delivery is at-least-once; consumers must be idempotent.
type Publisher interface {
	Publish(ctx context.Context, envelope Envelope) error
}

// Handler consumes delivered envelopes. Returning an error leaves the envelope
// unacknowledged and it will be redelivered; returning nil acknowledges it.
type Handler interface {
	Handle(ctx context.Context, envelope Envelope) error
}

// Subscription declares interest in events of one source domain.
// An empty EventTypes slice matches every event type of the domain.
type Subscription struct {
	Domain     string
	EventTypes []string
}

// Matches reports whether the given committed event falls under this subscription.
func (s Subscription) Matches(event eventstore.CommittedEvent) bool {
	if event.Stream.Domain != s.Domain {
		return false
	}

	if len(s.EventTypes) == 0 {
		return true
	}

	return slices.Contains(s.EventTypes, event.EventType)
}
