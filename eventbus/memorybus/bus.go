// Package memorybus implements the cross-domain bus contract in process
// memory with the delivery guarantees of a FIFO message transport:
// per-partition-key commit order, at-least-once delivery with bounded
// redelivery, and a dead-letter queue per subscriber.
package memorybus

import (
	"context"
	"sync"
	"time"

	"github.com/fitgrid/platform/eventbus"
	"github.com/fitgrid/platform/eventstore"
)

const (
	defaultPartitionBufferSize = 64
	defaultMaxDeliveryAttempts = 5
	defaultRedeliveryBaseDelay = 50 * time.Millisecond
	logMsgDeliveryFailed       = "envelope delivery failed, will redeliver"
	logMsgDeadLettered         = "envelope dead-lettered after exhausting delivery attempts"
	logAttrSubscriber          = "subscriber"
	logAttrMessageID           = "message_id"
	logAttrPartitionKey        = "partition_key"
	logAttrAttempt             = "attempt"
	logAttrError               = "error"
	deadLetterCounterMetric    = "eventbus_dead_letters_total"
	redeliveryCounterMetric    = "eventbus_redeliveries_total"
	metricLabelSubscriber      = "subscriber"
)

type subscriber struct {
	name          string
	handler       eventbus.Handler
	subscriptions []eventbus.Subscription

	mu         sync.Mutex
	partitions map[string]chan eventbus.Envelope
}

func (s *subscriber) matches(event eventstore.CommittedEvent) bool {
	for _, subscription := range s.subscriptions {
		if subscription.Matches(event) {
			return true
		}
	}

	return false
}

// EventBus is an in-process FIFO transport. Every (subscriber, partition key)
// pair owns one ordered queue drained by a single goroutine, so envelopes
// sharing a partition key reach a subscriber in publish order, while different
// keys are delivered concurrently.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber
	deadLetters map[string][]eventbus.DeadLetter
	closed      bool
	publishers  sync.WaitGroup
	wg          sync.WaitGroup
	workerCtx   context.Context
	stopWorkers context.CancelFunc

	partitionBufferSize int
	maxDeliveryAttempts int
	redeliveryBaseDelay time.Duration
	logger              eventstore.Logger
	metrics             eventstore.MetricsCollector
}

// Option defines a functional option for configuring the EventBus.
type Option func(*EventBus)

// WithPartitionBufferSize sets the per-partition queue capacity.
// Publish blocks when a partition queue is full instead of dropping.
func WithPartitionBufferSize(size int) Option {
	return func(b *EventBus) {
		if size > 0 {
			b.partitionBufferSize = size
		}
	}
}

// WithMaxDeliveryAttempts sets how often an envelope is delivered to a failing
// subscriber before it is routed to the dead-letter queue.
func WithMaxDeliveryAttempts(attempts int) Option {
	return func(b *EventBus) {
		if attempts > 0 {
			b.maxDeliveryAttempts = attempts
		}
	}
}

// WithRedeliveryBaseDelay sets the base delay of the exponential redelivery backoff.
func WithRedeliveryBaseDelay(delay time.Duration) Option {
	return func(b *EventBus) {
		if delay >= 0 {
			b.redeliveryBaseDelay = delay
		}
	}
}

// WithLogger sets the logger for the EventBus.
func WithLogger(logger eventstore.Logger) Option {
	return func(b *EventBus) {
		b.logger = logger
	}
}

// WithMetricsCollector sets the metrics collector for the EventBus.
// Redeliveries and dead-lettered envelopes are counted, labeled by subscriber.
func WithMetricsCollector(collector eventstore.MetricsCollector) Option {
	return func(b *EventBus) {
		b.metrics = collector
	}
}

// NewEventBus creates a new in-memory FIFO event bus with optional configuration.
func NewEventBus(options ...Option) *EventBus {
	workerCtx, stopWorkers := context.WithCancel(context.Background())

	bus := &EventBus{
		subscribers:         make(map[string]*subscriber),
		deadLetters:         make(map[string][]eventbus.DeadLetter),
		workerCtx:           workerCtx,
		stopWorkers:         stopWorkers,
		partitionBufferSize: defaultPartitionBufferSize,
		maxDeliveryAttempts: defaultMaxDeliveryAttempts,
		redeliveryBaseDelay: defaultRedeliveryBaseDelay,
	}

	for _, option := range options {
		option(bus)
	}

	return bus
}

// Subscribe registers a named handler for the given subscriptions.
// The name identifies the subscriber's dead-letter queue and must be unique.
func (b *EventBus) Subscribe(name string, handler eventbus.Handler, subscriptions ...eventbus.Subscription) error {
	if name == "" {
		return eventbus.ErrEmptySubscriberName
	}

	if handler == nil {
		return eventbus.ErrNilHandler
	}

	if len(subscriptions) == 0 {
		return eventbus.ErrNoSubscriptions
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return eventbus.ErrBusClosed
	}

	if _, exists := b.subscribers[name]; exists {
		return eventbus.ErrSubscriberNameTaken
	}

	b.subscribers[name] = &subscriber{
		name:          name,
		handler:       handler,
		subscriptions: subscriptions,
		partitions:    make(map[string]chan eventbus.Envelope),
	}

	return nil
}

// Publish delivers the envelope to every subscriber whose declared
// subscriptions match the wrapped event. It blocks when a partition queue is
// full - an envelope is never dropped on the publish side.
func (b *EventBus) Publish(ctx context.Context, envelope eventbus.Envelope) error {
	b.mu.RLock()

	if b.closed {
		b.mu.RUnlock()
		return eventbus.ErrBusClosed
	}

	// Registering under the same lock as the closed check keeps Close from
	// closing a partition channel while this publish still holds it.
	b.publishers.Add(1)
	defer b.publishers.Done()

	matching := make([]*subscriber, 0, len(b.subscribers))
	for _, sub := range b.subscribers {
		if sub.matches(envelope.Event) {
			matching = append(matching, sub)
		}
	}
	b.mu.RUnlock()

	for _, sub := range matching {
		queue := b.partitionQueue(sub, envelope.PartitionKey)

		select {
		case queue <- envelope:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// DeadLetters returns a copy of the dead-letter queue of the given subscriber.
func (b *EventBus) DeadLetters(subscriberName string) []eventbus.DeadLetter {
	b.mu.RLock()
	defer b.mu.RUnlock()

	letters := b.deadLetters[subscriberName]
	result := make([]eventbus.DeadLetter, len(letters))
	copy(result, letters)

	return result
}

// Close stops accepting publishes, waits for in-flight publishes to enqueue,
// drains all partition queues and waits for the delivery workers to finish.
func (b *EventBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	// No new publish can pass the closed check anymore; in-flight publishes
	// drain into their queues while the workers keep consuming.
	b.publishers.Wait()

	b.mu.Lock()
	for _, sub := range b.subscribers {
		sub.mu.Lock()
		for _, queue := range sub.partitions {
			close(queue)
		}
		sub.mu.Unlock()
	}
	b.mu.Unlock()

	b.wg.Wait()
	b.stopWorkers()
}

// partitionQueue returns the ordered queue of one (subscriber, partition key)
// pair, starting its delivery worker on first use.
func (b *EventBus) partitionQueue(sub *subscriber, partitionKey string) chan eventbus.Envelope {
	sub.mu.Lock()
	defer sub.mu.Unlock()

	if queue, exists := sub.partitions[partitionKey]; exists {
		return queue
	}

	queue := make(chan eventbus.Envelope, b.partitionBufferSize)
	sub.partitions[partitionKey] = queue

	b.wg.Add(1)
	go b.runPartitionWorker(sub, queue)

	return queue
}

// runPartitionWorker delivers envelopes of one partition in order.
// A failing envelope is redelivered with exponential backoff and blocks its
// partition until it is acknowledged or dead-lettered, preserving key order.
func (b *EventBus) runPartitionWorker(sub *subscriber, queue chan eventbus.Envelope) {
	defer b.wg.Done()

	for envelope := range queue {
		b.deliverWithRetry(sub, envelope)
	}
}

func (b *EventBus) deliverWithRetry(sub *subscriber, envelope eventbus.Envelope) {
	var lastErr error

	for attempt := 1; attempt <= b.maxDeliveryAttempts; attempt++ {
		if attempt > 1 {
			delay := b.redeliveryBaseDelay * time.Duration(1<<(attempt-2))

			select {
			case <-time.After(delay):
			case <-b.workerCtx.Done():
				return
			}

			if b.metrics != nil {
				b.metrics.IncrementCounter(redeliveryCounterMetric, map[string]string{metricLabelSubscriber: sub.name})
			}
		}

		lastErr = sub.handler.Handle(b.workerCtx, envelope)
		if lastErr == nil {
			return
		}

		if b.logger != nil {
			b.logger.Warn(logMsgDeliveryFailed,
				logAttrSubscriber, sub.name,
				logAttrMessageID, envelope.MessageID.String(),
				logAttrPartitionKey, envelope.PartitionKey,
				logAttrAttempt, attempt,
				logAttrError, lastErr.Error(),
			)
		}
	}

	b.deadLetter(sub, envelope, lastErr)
}

func (b *EventBus) deadLetter(sub *subscriber, envelope eventbus.Envelope, lastErr error) {
	b.mu.Lock()
	b.deadLetters[sub.name] = append(b.deadLetters[sub.name], eventbus.DeadLetter{
		Envelope:   envelope,
		Subscriber: sub.name,
		Attempts:   b.maxDeliveryAttempts,
		LastError:  lastErr.Error(),
		FailedAt:   time.Now(),
	})
	b.mu.Unlock()

	if b.logger != nil {
		b.logger.Error(logMsgDeadLettered,
			logAttrSubscriber, sub.name,
			logAttrMessageID, envelope.MessageID.String(),
			logAttrPartitionKey, envelope.PartitionKey,
			logAttrError, lastErr.Error(),
		)
	}

	if b.metrics != nil {
		b.metrics.IncrementCounter(deadLetterCounterMetric, map[string]string{metricLabelSubscriber: sub.name})
	}
}
