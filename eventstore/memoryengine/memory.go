// Package memoryengine implements the event store contract in process memory.
// It exists for unit tests and local demos; the semantics (version guard,
// contiguous versions, commit-ordered global feed, outbox marker) match the
// Postgres engine.
package memoryengine

import (
	"context"
	"sync"

	"github.com/fitgrid/platform/eventstore"
)

// EventStore is an in-memory, mutex-guarded event store.
type EventStore struct {
	mu        sync.RWMutex
	streams   map[string]eventstore.CommittedEvents
	global    eventstore.CommittedEvents
	published map[eventstore.GlobalSequenceUint64]bool
}

// NewEventStore creates an empty in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{
		streams:   make(map[string]eventstore.CommittedEvents),
		global:    make(eventstore.CommittedEvents, 0),
		published: make(map[eventstore.GlobalSequenceUint64]bool),
	}
}

// Append implements the store contract with the same optimistic-concurrency
// semantics as the Postgres engine: all events commit with contiguous versions
// starting at expectedVersion+1, or nothing commits at all.
func (es *EventStore) Append(
	ctx context.Context,
	stream eventstore.StreamID,
	expectedVersion eventstore.StreamVersionUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	if err := ctx.Err(); err != nil {
		return err
	}

	allEvents := eventstore.StorableEvents{event}
	allEvents = append(allEvents, additionalEvents...)

	es.mu.Lock()
	defer es.mu.Unlock()

	key := stream.PartitionKey()
	currentVersion := eventstore.StreamVersionUint(len(es.streams[key]))

	if currentVersion != expectedVersion {
		return eventstore.ErrConcurrencyConflict
	}

	for i, storableEvent := range allEvents {
		committed := eventstore.CommittedEvent{
			StorableEvent:  storableEvent,
			Stream:         stream,
			Version:        expectedVersion + eventstore.StreamVersionUint(i) + 1,
			GlobalSequence: eventstore.GlobalSequenceUint64(len(es.global)) + 1,
		}

		es.streams[key] = append(es.streams[key], committed)
		es.global = append(es.global, committed)
	}

	return nil
}

// ReadStream returns all events of the stream with version > fromVersion,
// in ascending version order.
func (es *EventStore) ReadStream(
	ctx context.Context,
	stream eventstore.StreamID,
	fromVersion eventstore.StreamVersionUint,
) (eventstore.CommittedEvents, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	es.mu.RLock()
	defer es.mu.RUnlock()

	events := es.streams[stream.PartitionKey()]
	if int(fromVersion) >= len(events) {
		return eventstore.CommittedEvents{}, nil
	}

	result := make(eventstore.CommittedEvents, len(events)-int(fromVersion))
	copy(result, events[fromVersion:])

	return result, nil
}

// ReadAll returns up to limit events across all streams with
// global sequence > afterGlobalSequence, in commit order.
func (es *EventStore) ReadAll(
	ctx context.Context,
	afterGlobalSequence eventstore.GlobalSequenceUint64,
	limit int,
) (eventstore.CommittedEvents, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	es.mu.RLock()
	defer es.mu.RUnlock()

	if int(afterGlobalSequence) >= len(es.global) {
		return eventstore.CommittedEvents{}, nil
	}

	remaining := es.global[afterGlobalSequence:]
	if limit > 0 && len(remaining) > limit {
		remaining = remaining[:limit]
	}

	result := make(eventstore.CommittedEvents, len(remaining))
	copy(result, remaining)

	return result, nil
}

// FetchUnpublished returns up to limit committed events not yet relayed to
// the bus, ordered by global sequence.
func (es *EventStore) FetchUnpublished(
	ctx context.Context,
	limit int,
) (eventstore.CommittedEvents, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	es.mu.RLock()
	defer es.mu.RUnlock()

	result := make(eventstore.CommittedEvents, 0)

	for _, event := range es.global {
		if es.published[event.GlobalSequence] {
			continue
		}

		result = append(result, event)
		if limit > 0 && len(result) == limit {
			break
		}
	}

	return result, nil
}

// MarkPublished flags the events with the given global sequences as relayed.
func (es *EventStore) MarkPublished(
	ctx context.Context,
	sequences ...eventstore.GlobalSequenceUint64,
) error {

	if err := ctx.Err(); err != nil {
		return err
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	for _, sequence := range sequences {
		es.published[sequence] = true
	}

	return nil
}
