package shell

import (
	"context"
	"errors"

	"github.com/fitgrid/platform/eventstore"
	"github.com/fitgrid/platform/shared/core"
)

var (
	// ErrNilEventStreamer is returned when a repository is built without a store.
	ErrNilEventStreamer = errors.New("event streamer must not be nil")

	// ErrNilReducer is returned when a repository is built without a reducer.
	ErrNilReducer = errors.New("reducer must not be nil")
)

// EventStreamer is the subset of the event store a repository needs.
type EventStreamer interface {
	ReadStream(
		ctx context.Context,
		stream eventstore.StreamID,
		fromVersion eventstore.StreamVersionUint,
	) (eventstore.CommittedEvents, error)

	Append(
		ctx context.Context,
		stream eventstore.StreamID,
		expectedVersion eventstore.StreamVersionUint,
		event eventstore.StorableEvent,
		additionalEvents ...eventstore.StorableEvent,
	) error
}

// Reducer folds a single domain event into the aggregate state.
// It must be pure, returning the next state without side effects.
type Reducer[S any] func(state S, event core.DomainEvent) S

// Repository reconstructs aggregate state by replaying a stream through a
// reducer and appends new events with an optimistic concurrency guard.
// Aggregates are never cached, every Load replays from the store.
type Repository[S any] struct {
	eventStore   EventStreamer
	domain       string
	initialState func() S
	reduce       Reducer[S]
}

// NewRepository creates a Repository for one aggregate type of one domain.
func NewRepository[S any](
	eventStore EventStreamer,
	domain string,
	initialState func() S,
	reduce Reducer[S],
) (Repository[S], error) {

	if eventStore == nil {
		return Repository[S]{}, ErrNilEventStreamer
	}

	if reduce == nil {
		return Repository[S]{}, ErrNilReducer
	}

	return Repository[S]{
		eventStore:   eventStore,
		domain:       domain,
		initialState: initialState,
		reduce:       reduce,
	}, nil
}

// Load replays the full stream of the aggregate and returns the folded state
// together with the current stream version. A nonexistent aggregate yields the
// initial state and version 0, the caller decides whether that is an error.
func (r Repository[S]) Load(ctx context.Context, aggregateID string) (S, eventstore.StreamVersionUint, error) {
	state := r.initialState()

	stream, err := eventstore.BuildStreamID(r.domain, aggregateID)
	if err != nil {
		return state, 0, err
	}

	committedEvents, err := r.eventStore.ReadStream(ctx, stream, 0)
	if err != nil {
		return state, 0, err
	}

	var currentVersion eventstore.StreamVersionUint

	for _, committedEvent := range committedEvents {
		domainEvent, mappingErr := DomainEventFrom(committedEvent.StorableEvent)
		if mappingErr != nil {
			return state, 0, mappingErr
		}

		state = r.reduce(state, domainEvent)
		currentVersion = committedEvent.Version
	}

	return state, currentVersion, nil
}

// Save converts the domain events to storable events and appends them to the
// aggregate's stream guarded by expectedVersion. Each event gets its own
// message id while sharing the causation and correlation of the metadata.
// A stale expectedVersion surfaces as eventstore.ErrConcurrencyConflict and
// appends nothing.
func (r Repository[S]) Save(
	ctx context.Context,
	aggregateID string,
	expectedVersion eventstore.StreamVersionUint,
	metadata EventMetadata,
	events core.DomainEvents,
) error {

	if len(events) == 0 {
		return nil
	}

	stream, err := eventstore.BuildStreamID(r.domain, aggregateID)
	if err != nil {
		return err
	}

	storableEvents := make(eventstore.StorableEvents, 0, len(events))

	for i, event := range events {
		eventMetadata := metadata
		if i > 0 {
			eventMetadata = metadata.WithFreshMessageID()
		}

		storableEvent, mappingErr := StorableEventFrom(event, eventMetadata)
		if mappingErr != nil {
			return mappingErr
		}

		storableEvents = append(storableEvents, storableEvent)
	}

	return r.eventStore.Append(ctx, stream, expectedVersion, storableEvents[0], storableEvents[1:]...)
}
