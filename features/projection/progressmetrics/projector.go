package progressmetrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fitgrid/platform/eventbus"
	"github.com/fitgrid/platform/eventstore"
	"github.com/fitgrid/platform/shared/core"
	"github.com/fitgrid/platform/shared/shell"
)

// SubscriberName identifies this projector on the event bus.
const SubscriberName = "progress-metrics"

const sessionsPerMilestone = 10

// UserStats holds the accumulated training totals of one user.
type UserStats struct {
	SessionsFinished   int
	ExercisesCompleted int
	TotalVolume        float64
}

// Milestone records that a user crossed a finished-sessions threshold.
type Milestone struct {
	UserID     core.UserIDString
	Sessions   int
	AchievedAt time.Time
}

// Projector folds execution domain events into the analytics read model.
// Handle returns an error for events it cannot apply, leaving them
// unacknowledged for redelivery.
type Projector struct {
	mu sync.RWMutex

	lastApplied    map[string]eventstore.StreamVersionUint
	activeSessions map[core.SessionIDString]core.UserIDString
	stats          map[core.UserIDString]UserStats
	maxWeights     map[core.UserIDString]map[core.ExerciseIDString]float64
	milestones     []Milestone

	logger eventstore.Logger
}

// ProjectorOption configures a Projector.
type ProjectorOption func(*Projector)

// WithLogger enables logging for the projector.
func WithLogger(logger eventstore.Logger) ProjectorOption {
	return func(p *Projector) {
		p.logger = logger
	}
}

// NewProjector creates an empty analytics projector.
func NewProjector(opts ...ProjectorOption) *Projector {
	projector := &Projector{
		lastApplied:    make(map[string]eventstore.StreamVersionUint),
		activeSessions: make(map[core.SessionIDString]core.UserIDString),
		stats:          make(map[core.UserIDString]UserStats),
		maxWeights:     make(map[core.UserIDString]map[core.ExerciseIDString]float64),
	}

	for _, opt := range opts {
		opt(projector)
	}

	return projector
}

// Subscriptions declares the bus subscriptions of this projector.
func (p *Projector) Subscriptions() []eventbus.Subscription {
	return []eventbus.Subscription{
		{Domain: core.DomainExecution},
	}
}

// Handle applies one delivered envelope to the read model.
// Redeliveries of already applied events are acknowledged without effect.
func (p *Projector) Handle(_ context.Context, envelope eventbus.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	partitionKey := envelope.PartitionKey
	if envelope.Event.Version <= p.lastApplied[partitionKey] {
		if p.logger != nil {
			p.logger.Debug("skipping redelivered event",
				"subscriber", SubscriberName,
				"partition_key", partitionKey,
				"version", envelope.Event.Version)
		}

		return nil
	}

	domainEvent, err := shell.DomainEventFrom(envelope.Event.StorableEvent)
	if err != nil {
		return err
	}

	if err := p.apply(domainEvent); err != nil {
		return err
	}

	p.lastApplied[partitionKey] = envelope.Event.Version

	return nil
}

func (p *Projector) apply(event core.DomainEvent) error {
	switch actualEvent := event.(type) {
	case core.WorkoutSessionStarted:
		p.activeSessions[actualEvent.SessionID] = actualEvent.UserID

	case core.ExerciseCompleted:
		stats := p.stats[actualEvent.UserID]
		stats.ExercisesCompleted++
		stats.TotalVolume += actualEvent.Weight * float64(actualEvent.Reps)
		p.stats[actualEvent.UserID] = stats

		weights := p.maxWeights[actualEvent.UserID]
		if weights == nil {
			weights = make(map[core.ExerciseIDString]float64)
			p.maxWeights[actualEvent.UserID] = weights
		}

		if actualEvent.Weight > weights[actualEvent.ExerciseID] {
			weights[actualEvent.ExerciseID] = actualEvent.Weight
		}

	case core.WorkoutSessionFinished:
		if _, ok := p.activeSessions[actualEvent.SessionID]; !ok {
			return fmt.Errorf("finished event for unknown session %s", actualEvent.SessionID)
		}

		delete(p.activeSessions, actualEvent.SessionID)

		stats := p.stats[actualEvent.UserID]
		stats.SessionsFinished++
		p.stats[actualEvent.UserID] = stats

		if stats.SessionsFinished%sessionsPerMilestone == 0 {
			p.milestones = append(p.milestones, Milestone{
				UserID:     actualEvent.UserID,
				Sessions:   stats.SessionsFinished,
				AchievedAt: actualEvent.OccurredAt,
			})

			if p.logger != nil {
				p.logger.Info("milestone reached",
					"user_id", actualEvent.UserID,
					"sessions", stats.SessionsFinished)
			}
		}
	}

	return nil
}

// StatsFor returns the accumulated totals of a user.
func (p *Projector) StatsFor(userID core.UserIDString) UserStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.stats[userID]
}

// MaxWeightFor returns the maximum recorded weight of a user for one exercise.
func (p *Projector) MaxWeightFor(userID core.UserIDString, exerciseID core.ExerciseIDString) (float64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	weights, ok := p.maxWeights[userID]
	if !ok {
		return 0, false
	}

	weight, ok := weights[exerciseID]

	return weight, ok
}

// MilestonesFor returns the milestones a user has reached, in order.
func (p *Projector) MilestonesFor(userID core.UserIDString) []Milestone {
	p.mu.RLock()
	defer p.mu.RUnlock()

	milestones := make([]Milestone, 0)

	for _, milestone := range p.milestones {
		if milestone.UserID == userID {
			milestones = append(milestones, milestone)
		}
	}

	return milestones
}
