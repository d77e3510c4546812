package schedulepreview

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
const SubscriberName = "schedule-preview"

// Rough per-set estimate: execution time plus rest.
const (
	secondsPerRep     = 3
	restSecondsPerSet = 60
)

// TemplatePreview is the scheduling estimate for one workout template.
// LastChangedAt tracks the latest planning change, LastUsedAt the latest
// session start referencing the template.
type TemplatePreview struct {
	Name              string
	ExerciseCount     int
	EstimatedDuration time.Duration
	LastChangedAt     time.Time
	LastUsedAt        time.Time
}

// Projector folds planning domain events into the scheduling read model.
type Projector struct {
	mu sync.RWMutex

	lastApplied map[string]eventstore.StreamVersionUint
	previews    map[core.TemplateIDString]TemplatePreview

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

// NewProjector creates an empty scheduling projector.
func NewProjector(opts ...ProjectorOption) *Projector {
	projector := &Projector{
		lastApplied: make(map[string]eventstore.StreamVersionUint),
		previews:    make(map[core.TemplateIDString]TemplatePreview),
	}

	for _, opt := range opts {
		opt(projector)
	}

	return projector
}

// Subscriptions declares the bus subscriptions of this projector.
// Session starts are consumed to track when a template was last used.
func (p *Projector) Subscriptions() []eventbus.Subscription {
	return []eventbus.Subscription{
		{Domain: core.DomainPlanning},
		{Domain: core.DomainExecution, EventTypes: []string{core.WorkoutSessionStartedEventType}},
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
	case core.WorkoutTemplateCreated:
		p.previews[actualEvent.TemplateID] = TemplatePreview{
			Name:          actualEvent.Name,
			LastChangedAt: actualEvent.OccurredAt,
		}

	case core.ExerciseAddedToTemplate:
		preview, ok := p.previews[actualEvent.TemplateID]
		if !ok {
			return fmt.Errorf("exercise added for unknown template %s", actualEvent.TemplateID)
		}

		preview.ExerciseCount++
		preview.EstimatedDuration += estimateExerciseDuration(actualEvent.Sets, actualEvent.Reps)
		preview.LastChangedAt = actualEvent.OccurredAt
		p.previews[actualEvent.TemplateID] = preview

	case core.ExerciseWeightUpdated:
		preview, ok := p.previews[actualEvent.TemplateID]
		if !ok {
			return fmt.Errorf("weight updated for unknown template %s", actualEvent.TemplateID)
		}

		preview.LastChangedAt = actualEvent.OccurredAt
		p.previews[actualEvent.TemplateID] = preview

	case core.WorkoutTemplateArchived:
		delete(p.previews, actualEvent.TemplateID)

	case core.WorkoutSessionStarted:
		// Freestyle sessions carry no template reference.
		if actualEvent.TemplateID == "" {
			return nil
		}

		preview, ok := p.previews[actualEvent.TemplateID]
		if !ok {
			return nil
		}

		preview.LastUsedAt = actualEvent.OccurredAt
		p.previews[actualEvent.TemplateID] = preview
	}

	return nil
}

// PreviewFor returns the scheduling preview for a template.
func (p *Projector) PreviewFor(templateID core.TemplateIDString) (TemplatePreview, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	preview, ok := p.previews[templateID]

	return preview, ok
}

func estimateExerciseDuration(sets int, reps int) time.Duration {
	perSet := time.Duration(reps*secondsPerRep+restSecondsPerSet) * time.Second

	return time.Duration(sets) * perSet
}
