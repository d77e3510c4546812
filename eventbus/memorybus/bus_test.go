package memorybus_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitgrid/platform/eventbus"
	"github.com/fitgrid/platform/eventbus/memorybus"
	"github.com/fitgrid/platform/eventstore"
)

type recordingHandler struct {
	mu        sync.Mutex
	delivered []eventbus.Envelope
	failWith  func(envelope eventbus.Envelope) error
}

func (h *recordingHandler) Handle(_ context.Context, envelope eventbus.Envelope) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.failWith != nil {
		if err := h.failWith(envelope); err != nil {
			return err
		}
	}

	h.delivered = append(h.delivered, envelope)

	return nil
}

func (h *recordingHandler) deliveredEnvelopes() []eventbus.Envelope {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]eventbus.Envelope, len(h.delivered))
	copy(result, h.delivered)

	return result
}

func Test_Subscribe_Error_WhenNameIsEmpty(t *testing.T) {
	bus := memorybus.NewEventBus()
	defer bus.Close()

	err := bus.Subscribe("", &recordingHandler{}, eventbus.Subscription{Domain: "execution"})

	assert.ErrorIs(t, err, eventbus.ErrEmptySubscriberName)
}

func Test_Subscribe_Error_WhenHandlerIsNil(t *testing.T) {
	bus := memorybus.NewEventBus()
	defer bus.Close()

	err := bus.Subscribe("analytics", nil, eventbus.Subscription{Domain: "execution"})

	assert.ErrorIs(t, err, eventbus.ErrNilHandler)
}

func Test_Subscribe_Error_WhenNameIsTaken(t *testing.T) {
	bus := memorybus.NewEventBus()
	defer bus.Close()

	require.NoError(t, bus.Subscribe("analytics", &recordingHandler{}, eventbus.Subscription{Domain: "execution"}))

	err := bus.Subscribe("analytics", &recordingHandler{}, eventbus.Subscription{Domain: "execution"})

	assert.ErrorIs(t, err, eventbus.ErrSubscriberNameTaken)
}

func Test_Publish_DeliversOnlyToMatchingSubscribers(t *testing.T) {
	// arrange
	bus := memorybus.NewEventBus()

	executionHandler := &recordingHandler{}
	planningHandler := &recordingHandler{}

	require.NoError(t, bus.Subscribe("analytics", executionHandler, eventbus.Subscription{Domain: "execution"}))
	require.NoError(t, bus.Subscribe("scheduling", planningHandler, eventbus.Subscription{Domain: "planning"}))

	// act
	envelope := givenEnvelope(t, "execution", "session-1", 1, "WorkoutSessionStarted")
	require.NoError(t, bus.Publish(context.Background(), envelope))

	bus.Close()

	// assert
	require.Len(t, executionHandler.deliveredEnvelopes(), 1)
	assert.Empty(t, planningHandler.deliveredEnvelopes())
}

func Test_Publish_PreservesOrderPerPartitionKey(t *testing.T) {
	// arrange
	bus := memorybus.NewEventBus()
	handler := &recordingHandler{}

	require.NoError(t, bus.Subscribe("analytics", handler, eventbus.Subscription{Domain: "execution"}))

	// act - ten events of the same aggregate, published in commit order
	for version := 1; version <= 10; version++ {
		envelope := givenEnvelope(t, "execution", "session-1", version, "ExerciseCompleted")
		require.NoError(t, bus.Publish(context.Background(), envelope))
	}

	bus.Close()

	// assert
	delivered := handler.deliveredEnvelopes()
	require.Len(t, delivered, 10)

	for i, envelope := range delivered {
		assert.Equal(t, eventstore.StreamVersionUint(i+1), envelope.Event.Version)
	}
}

func Test_Publish_FailedDeliveryIsRetriedUntilAcknowledged(t *testing.T) {
	// arrange
	bus := memorybus.NewEventBus(memorybus.WithRedeliveryBaseDelay(time.Millisecond))

	attempts := 0
	handler := &recordingHandler{
		failWith: func(_ eventbus.Envelope) error {
			attempts++
			if attempts < 3 {
				return errors.New("projection temporarily unavailable")
			}
			return nil
		},
	}

	require.NoError(t, bus.Subscribe("analytics", handler, eventbus.Subscription{Domain: "execution"}))

	// act
	envelope := givenEnvelope(t, "execution", "session-1", 1, "WorkoutSessionStarted")
	require.NoError(t, bus.Publish(context.Background(), envelope))

	bus.Close()

	// assert
	assert.Equal(t, 3, attempts)
	assert.Len(t, handler.deliveredEnvelopes(), 1)
	assert.Empty(t, bus.DeadLetters("analytics"))
}

func Test_Publish_EnvelopeIsDeadLetteredAfterExhaustingAttempts(t *testing.T) {
	// arrange
	bus := memorybus.NewEventBus(
		memorybus.WithMaxDeliveryAttempts(3),
		memorybus.WithRedeliveryBaseDelay(time.Millisecond),
	)

	handler := &recordingHandler{
		failWith: func(_ eventbus.Envelope) error {
			return errors.New("poison message")
		},
	}

	require.NoError(t, bus.Subscribe("analytics", handler, eventbus.Subscription{Domain: "execution"}))

	// act
	envelope := givenEnvelope(t, "execution", "session-1", 1, "WorkoutSessionFinished")
	require.NoError(t, bus.Publish(context.Background(), envelope))

	bus.Close()

	// assert
	letters := bus.DeadLetters("analytics")
	require.Len(t, letters, 1)
	assert.Equal(t, 3, letters[0].Attempts)
	assert.Equal(t, "poison message", letters[0].LastError)
	assert.Equal(t, envelope.MessageID, letters[0].Envelope.MessageID)
}

func Test_Publish_AcknowledgmentIsPerSubscriber(t *testing.T) {
	// arrange - one healthy and one failing subscriber of the same domain
	bus := memorybus.NewEventBus(
		memorybus.WithMaxDeliveryAttempts(2),
		memorybus.WithRedeliveryBaseDelay(time.Millisecond),
	)

	healthy := &recordingHandler{}
	failing := &recordingHandler{
		failWith: func(_ eventbus.Envelope) error {
			return errors.New("broken projection")
		},
	}

	require.NoError(t, bus.Subscribe("analytics", healthy, eventbus.Subscription{Domain: "execution"}))
	require.NoError(t, bus.Subscribe("scheduling", failing, eventbus.Subscription{Domain: "execution"}))

	// act
	envelope := givenEnvelope(t, "execution", "session-1", 1, "WorkoutSessionStarted")
	require.NoError(t, bus.Publish(context.Background(), envelope))

	bus.Close()

	// assert - the healthy subscriber's ack is unaffected by the failing one
	assert.Len(t, healthy.deliveredEnvelopes(), 1)
	assert.Empty(t, bus.DeadLetters("analytics"))
	assert.Len(t, bus.DeadLetters("scheduling"), 1)
}

func Test_Publish_RacingClose_DeliversOrReportsClosed(t *testing.T) {
	// arrange
	bus := memorybus.NewEventBus()
	handler := &recordingHandler{}

	require.NoError(t, bus.Subscribe("analytics", handler, eventbus.Subscription{Domain: "execution"}))

	const publishes = 50

	var wg sync.WaitGroup
	results := make([]error, publishes)

	envelopes := make([]eventbus.Envelope, publishes)
	for i := 0; i < publishes; i++ {
		envelopes[i] = givenEnvelope(t, "execution", "session-1", i+1, "ExerciseCompleted")
	}

	// act - publishers race the shutdown; every publish must either enqueue
	// cleanly or report the bus as closed, never panic on a closed channel
	for i := 0; i < publishes; i++ {
		wg.Add(1)

		go func(slot int) {
			defer wg.Done()
			results[slot] = bus.Publish(context.Background(), envelopes[slot])
		}(i)
	}

	bus.Close()
	wg.Wait()

	// assert
	accepted := 0

	for _, err := range results {
		if err == nil {
			accepted++
		} else {
			assert.ErrorIs(t, err, eventbus.ErrBusClosed)
		}
	}

	assert.Len(t, handler.deliveredEnvelopes(), accepted, "every accepted publish must be delivered")
}

func Test_Publish_Error_AfterClose(t *testing.T) {
	bus := memorybus.NewEventBus()
	bus.Close()

	envelope := givenEnvelope(t, "execution", "session-1", 1, "WorkoutSessionStarted")
	err := bus.Publish(context.Background(), envelope)

	assert.ErrorIs(t, err, eventbus.ErrBusClosed)
}

func givenEnvelope(t *testing.T, domain string, aggregateID string, version int, eventType string) eventbus.Envelope {
	t.Helper()

	stream, err := eventstore.BuildStreamID(domain, aggregateID)
	require.NoError(t, err)

	storableEvent, err := eventstore.BuildStorableEventWithEmptyMetadata(eventType, time.Now(), []byte(`{}`))
	require.NoError(t, err)

	return eventbus.BuildEnvelope(eventstore.CommittedEvent{
		StorableEvent:  storableEvent,
		Stream:         stream,
		Version:        eventstore.StreamVersionUint(version),
		GlobalSequence: eventstore.GlobalSequenceUint64(version),
	})
}
