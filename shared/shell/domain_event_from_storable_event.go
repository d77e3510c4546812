package shell

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/fitgrid/platform/eventstore"
	"github.com/fitgrid/platform/shared/core"
)

var (
	// ErrMappingToDomainEventFailed is returned when domain event conversion fails.
	ErrMappingToDomainEventFailed = errors.New("mapping to domain event failed")

	// ErrMappingToDomainEventUnknownEventType is returned for unrecognized event types.
	ErrMappingToDomainEventUnknownEventType = errors.New("unknown event type")
)

// DomainEventsFrom converts multiple StorableEvents to DomainEvents.
func DomainEventsFrom(storableEvents eventstore.StorableEvents) (core.DomainEvents, error) {
	domainEvents := make(core.DomainEvents, 0)

	for _, storableEvent := range storableEvents {
		domainEvent, err := DomainEventFrom(storableEvent)
		if err != nil {
			return nil, err
		}

		domainEvents = append(domainEvents, domainEvent)
	}

	return domainEvents, nil
}

// DomainEventsFromCommitted converts multiple CommittedEvents to DomainEvents.
func DomainEventsFromCommitted(committedEvents eventstore.CommittedEvents) (core.DomainEvents, error) {
	storableEvents := make(eventstore.StorableEvents, 0, len(committedEvents))

	for _, committedEvent := range committedEvents {
		storableEvents = append(storableEvents, committedEvent.StorableEvent)
	}

	return DomainEventsFrom(storableEvents)
}

// DomainEventFrom converts a StorableEvent to its corresponding DomainEvent.
//
// The switch is exhaustive over the tagged union of event types - adding a new
// event type without a case here fails the conversion tests.
func DomainEventFrom(storableEvent eventstore.StorableEvent) (core.DomainEvent, error) {
	switch storableEvent.EventType {
	case core.UserRegisteredEventType:
		return unmarshalDomainEvent[core.UserRegistered](storableEvent.PayloadJSON)

	case core.WorkoutTemplateCreatedEventType:
		return unmarshalDomainEvent[core.WorkoutTemplateCreated](storableEvent.PayloadJSON)

	case core.ExerciseAddedToTemplateEventType:
		return unmarshalDomainEvent[core.ExerciseAddedToTemplate](storableEvent.PayloadJSON)

	case core.ExerciseWeightUpdatedEventType:
		return unmarshalDomainEvent[core.ExerciseWeightUpdated](storableEvent.PayloadJSON)

	case core.WorkoutTemplateArchivedEventType:
		return unmarshalDomainEvent[core.WorkoutTemplateArchived](storableEvent.PayloadJSON)

	case core.WorkoutSessionStartedEventType:
		return unmarshalDomainEvent[core.WorkoutSessionStarted](storableEvent.PayloadJSON)

	case core.ExerciseCompletedEventType:
		return unmarshalDomainEvent[core.ExerciseCompleted](storableEvent.PayloadJSON)

	case core.WorkoutSessionFinishedEventType:
		return unmarshalDomainEvent[core.WorkoutSessionFinished](storableEvent.PayloadJSON)

	default:
		return nil, errors.Join(ErrMappingToDomainEventFailed, ErrMappingToDomainEventUnknownEventType)
	}
}

func unmarshalDomainEvent[E core.DomainEvent](payloadJSON []byte) (core.DomainEvent, error) {
	payload := new(E)

	err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, payload)
	if err != nil {
		var empty E
		return empty, errors.Join(ErrMappingToDomainEventFailed, err)
	}

	return *payload, nil
}
