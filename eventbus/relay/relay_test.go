package relay_test

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitgrid/platform/eventbus"
	"github.com/fitgrid/platform/eventbus/relay"
	"github.com/fitgrid/platform/eventstore"
	"github.com/fitgrid/platform/eventstore/memoryengine"
)

type capturingPublisher struct {
	published []eventbus.Envelope
	failAfter int // fail when len(published) reaches this, -1 disables
}

func (p *capturingPublisher) Publish(_ context.Context, envelope eventbus.Envelope) error {
	if p.failAfter >= 0 && len(p.published) >= p.failAfter {
		return errors.New("bus unavailable")
	}

	p.published = append(p.published, envelope)

	return nil
}

// manualOutbox lets tests control which committed events are visible as
// unpublished, independent of their sequence order.
type manualOutbox struct {
	pending map[eventstore.GlobalSequenceUint64]eventstore.CommittedEvent
}

func newManualOutbox() *manualOutbox {
	return &manualOutbox{pending: make(map[eventstore.GlobalSequenceUint64]eventstore.CommittedEvent)}
}

func (o *manualOutbox) commit(event eventstore.CommittedEvent) {
	o.pending[event.GlobalSequence] = event
}

func (o *manualOutbox) FetchUnpublished(_ context.Context, limit int) (eventstore.CommittedEvents, error) {
	result := make(eventstore.CommittedEvents, 0, len(o.pending))
	for _, event := range o.pending {
		result = append(result, event)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].GlobalSequence < result[j].GlobalSequence })

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

func (o *manualOutbox) MarkPublished(_ context.Context, sequences ...eventstore.GlobalSequenceUint64) error {
	for _, sequence := range sequences {
		delete(o.pending, sequence)
	}

	return nil
}

func Test_NewRelay_Error_WhenReaderIsNil(t *testing.T) {
	_, err := relay.NewRelay(nil, &capturingPublisher{failAfter: -1})

	assert.ErrorIs(t, err, relay.ErrNilEventReader)
}

func Test_NewRelay_Error_WhenPublisherIsNil(t *testing.T) {
	_, err := relay.NewRelay(memoryengine.NewEventStore(), nil)

	assert.ErrorIs(t, err, relay.ErrNilPublisher)
}

func Test_RunOnce_PublishesCommittedEventsInCommitOrder(t *testing.T) {
	// arrange
	store := memoryengine.NewEventStore()
	appendEvents(t, store, "planning", "template-1", "WorkoutTemplateCreated", "ExerciseAddedToTemplate")
	appendEvents(t, store, "execution", "session-1", "WorkoutSessionStarted")

	publisher := &capturingPublisher{failAfter: -1}
	eventRelay, err := relay.NewRelay(store, publisher)
	require.NoError(t, err)

	// act
	published, err := eventRelay.RunOnce(context.Background())

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, published)
	require.Len(t, publisher.published, 3)

	for i, envelope := range publisher.published {
		assert.Equal(t, eventstore.GlobalSequenceUint64(i+1), envelope.Event.GlobalSequence)
	}
}

func Test_RunOnce_PublishedEventsAreNotRelayedAgain(t *testing.T) {
	// arrange
	store := memoryengine.NewEventStore()
	appendEvents(t, store, "planning", "template-1", "WorkoutTemplateCreated")

	publisher := &capturingPublisher{failAfter: -1}
	eventRelay, err := relay.NewRelay(store, publisher)
	require.NoError(t, err)

	published, err := eventRelay.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, published)

	// act - nothing new committed, the cycle must publish nothing
	published, err = eventRelay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, published)

	// arrange - a new commit appears
	appendEvents(t, store, "execution", "session-1", "WorkoutSessionStarted")

	// act
	published, err = eventRelay.RunOnce(context.Background())

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, published)
	require.Len(t, publisher.published, 2)
	assert.Equal(t, "WorkoutSessionStarted", publisher.published[1].Event.EventType)
}

func Test_RunOnce_PublishesLateCommitWithLowerSequence(t *testing.T) {
	// arrange - sequence 6 commits and is relayed while sequence 5 is still
	// in flight; a sequence checkpoint would skip 5 forever
	outbox := newManualOutbox()
	outbox.commit(givenCommittedEvent(t, "planning", "template-1", 1, 6, "WorkoutTemplateCreated"))

	publisher := &capturingPublisher{failAfter: -1}
	eventRelay, err := relay.NewRelay(outbox, publisher)
	require.NoError(t, err)

	published, err := eventRelay.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, published)

	// act - the earlier append becomes visible only now
	outbox.commit(givenCommittedEvent(t, "execution", "session-1", 1, 5, "WorkoutSessionStarted"))

	published, err = eventRelay.RunOnce(context.Background())

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, published)
	require.Len(t, publisher.published, 2)
	assert.Equal(t, eventstore.GlobalSequenceUint64(5), publisher.published[1].Event.GlobalSequence)
}

func Test_RunOnce_PublishFailureResumesWithoutLossOrReorder(t *testing.T) {
	// arrange
	store := memoryengine.NewEventStore()
	appendEvents(t, store, "planning", "template-1",
		"WorkoutTemplateCreated", "ExerciseAddedToTemplate", "WorkoutTemplateArchived")

	publisher := &capturingPublisher{failAfter: 2}
	eventRelay, err := relay.NewRelay(store, publisher)
	require.NoError(t, err)

	// act - the third publish fails mid-batch
	published, err := eventRelay.RunOnce(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, published)

	// arrange - transport recovers
	publisher.failAfter = -1

	// act
	published, err = eventRelay.RunOnce(context.Background())

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, published)
	require.Len(t, publisher.published, 3)

	for i, envelope := range publisher.published {
		assert.Equal(t, eventstore.GlobalSequenceUint64(i+1), envelope.Event.GlobalSequence)
	}
}

func Test_RunOnce_RespectsBatchSize(t *testing.T) {
	// arrange
	store := memoryengine.NewEventStore()
	appendEvents(t, store, "execution", "session-1",
		"WorkoutSessionStarted", "ExerciseCompleted", "ExerciseCompleted", "WorkoutSessionFinished")

	publisher := &capturingPublisher{failAfter: -1}
	eventRelay, err := relay.NewRelay(store, publisher, relay.WithBatchSize(2))
	require.NoError(t, err)

	// act + assert - two cycles of two events each
	published, err := eventRelay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, published)

	published, err = eventRelay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, published)
}

func appendEvents(t *testing.T, store *memoryengine.EventStore, domain string, aggregateID string, eventTypes ...string) {
	t.Helper()

	stream, err := eventstore.BuildStreamID(domain, aggregateID)
	require.NoError(t, err)

	existing, err := store.ReadStream(context.Background(), stream, 0)
	require.NoError(t, err)

	expectedVersion := eventstore.StreamVersionUint(len(existing))

	for _, eventType := range eventTypes {
		event, buildErr := eventstore.BuildStorableEventWithEmptyMetadata(eventType, time.Now(), []byte(`{}`))
		require.NoError(t, buildErr)

		require.NoError(t, store.Append(context.Background(), stream, expectedVersion, event))
		expectedVersion++
	}
}

func givenCommittedEvent(
	t *testing.T,
	domain string,
	aggregateID string,
	version eventstore.StreamVersionUint,
	sequence eventstore.GlobalSequenceUint64,
	eventType string,
) eventstore.CommittedEvent {
	t.Helper()

	stream, err := eventstore.BuildStreamID(domain, aggregateID)
	require.NoError(t, err)

	storableEvent, err := eventstore.BuildStorableEventWithEmptyMetadata(eventType, time.Now(), []byte(`{}`))
	require.NoError(t, err)

	return eventstore.CommittedEvent{
		StorableEvent:  storableEvent,
		Stream:         stream,
		Version:        version,
		GlobalSequence: sequence,
	}
}
