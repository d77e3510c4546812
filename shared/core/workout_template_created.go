package core

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutTemplateCreatedEventType is the event type identifier.
const WorkoutTemplateCreatedEventType = "WorkoutTemplateCreated"

// WorkoutTemplateCreated represents when a workout template came into existence.
type WorkoutTemplateCreated struct {
	EventType  string
	TemplateID TemplateIDString
	OwnerID    UserIDString
	Name       string
	OccurredAt OccurredAtTS
}

// BuildWorkoutTemplateCreated creates a new WorkoutTemplateCreated event.
func BuildWorkoutTemplateCreated(templateID uuid.UUID, ownerID uuid.UUID, name string, occurredAt time.Time) WorkoutTemplateCreated {
	return WorkoutTemplateCreated{
		EventType:  WorkoutTemplateCreatedEventType,
		TemplateID: templateID.String(),
		OwnerID:    ownerID.String(),
		Name:       name,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e WorkoutTemplateCreated) IsEventType() string {
	return WorkoutTemplateCreatedEventType
}

// HasOccurredAt returns when this event occurred.
func (e WorkoutTemplateCreated) HasOccurredAt() time.Time {
	return e.OccurredAt
}
