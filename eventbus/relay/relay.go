// Package relay moves committed events from the event store onto the
// cross-domain bus. The event log itself serves as the outbox: every event row
// carries a published marker, and the relay polls for unpublished rows, so
// every append becomes visible on the bus without a second write on the
// command path.
//
// The relay deliberately does not follow the global sequence with a
// checkpoint: sequence numbers are claimed before a transaction commits, so
// commits can become visible out of sequence order, and a checkpoint advanced
// past such a gap would skip the late-committing event forever. The marker
// makes a committed-but-unpublished row findable no matter when it becomes
// visible.
package relay

import (
	"context"
	"errors"
	"time"

	"github.com/fitgrid/platform/eventbus"
	"github.com/fitgrid/platform/eventstore"
)

const (
	defaultPollInterval    = 250 * time.Millisecond
	defaultBatchSize       = 256
	maxFailureBackoff      = 10 * time.Second
	logMsgRelayCycleFailed = "relay cycle failed, will retry with backoff"
	logMsgEventsRelayed    = "events relayed to bus"
	logAttrError           = "error"
	logAttrEventCount      = "event_count"
)

var ErrNilEventReader = errors.New("event reader must not be nil")
var ErrNilPublisher = errors.New("publisher must not be nil")

// OutboxReader is the slice of the store contract the relay needs: fetching
// committed events that have not been published yet, and marking them
// published once the bus has acknowledged them.
//
// An event whose publish was acknowledged but whose marker update was not
// will be published again - delivery is at-least-once by design.
type OutboxReader interface {
	FetchUnpublished(ctx context.Context, limit int) (eventstore.CommittedEvents, error)
	MarkPublished(ctx context.Context, sequences ...eventstore.GlobalSequenceUint64) error
}

// Relay publishes committed events, ordered by global sequence within each
// cycle. Events of one stream always commit in version order, so per-partition
// order on the bus is preserved even when unrelated streams commit late.
type Relay struct {
	reader       OutboxReader
	publisher    eventbus.Publisher
	pollInterval time.Duration
	batchSize    int
	logger       eventstore.Logger
}

// Option defines a functional option for configuring the Relay.
type Option func(*Relay)

// WithPollInterval sets how often the relay polls the store for new events.
func WithPollInterval(interval time.Duration) Option {
	return func(r *Relay) {
		if interval > 0 {
			r.pollInterval = interval
		}
	}
}

// WithBatchSize sets how many events one relay cycle reads at most.
func WithBatchSize(size int) Option {
	return func(r *Relay) {
		if size > 0 {
			r.batchSize = size
		}
	}
}

// WithLogger sets the logger for the Relay.
func WithLogger(logger eventstore.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

// NewRelay creates a Relay with optional configuration.
func NewRelay(reader OutboxReader, publisher eventbus.Publisher, options ...Option) (*Relay, error) {
	if reader == nil {
		return nil, ErrNilEventReader
	}

	if publisher == nil {
		return nil, ErrNilPublisher
	}

	relay := &Relay{
		reader:       reader,
		publisher:    publisher,
		pollInterval: defaultPollInterval,
		batchSize:    defaultBatchSize,
	}

	for _, option := range options {
		option(relay)
	}

	return relay, nil
}

// RunOnce fetches one batch of unpublished events and publishes it, marking
// each event published after its publish is acknowledged.
// It returns the number of events published.
//
// A publish failure aborts the cycle with the remaining events still
// unpublished; the next cycle picks them up again, so nothing is lost or
// reordered within a stream.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	events, fetchErr := r.reader.FetchUnpublished(ctx, r.batchSize)
	if fetchErr != nil {
		return 0, fetchErr
	}

	published := 0

	for _, event := range events {
		envelope := eventbus.BuildEnvelope(event)

		if publishErr := r.publisher.Publish(ctx, envelope); publishErr != nil {
			return published, publishErr
		}

		if markErr := r.reader.MarkPublished(ctx, event.GlobalSequence); markErr != nil {
			return published, markErr
		}

		published++
	}

	if published > 0 && r.logger != nil {
		r.logger.Info(logMsgEventsRelayed, logAttrEventCount, published)
	}

	return published, nil
}

// Run polls the store until the context is canceled. Transport failures are
// retried with exponential backoff capped at maxFailureBackoff - a failed
// cycle is logged and retried, never swallowed.
func (r *Relay) Run(ctx context.Context) error {
	failureStreak := 0

	for {
		if _, err := r.RunOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}

			failureStreak++
			if r.logger != nil {
				r.logger.Error(logMsgRelayCycleFailed, logAttrError, err.Error())
			}
		} else {
			failureStreak = 0
		}

		delay := r.pollInterval
		if failureStreak > 0 {
			delay = r.pollInterval * time.Duration(1<<min(failureStreak, 6))
			if delay > maxFailureBackoff {
				delay = maxFailureBackoff
			}
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
