package core

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutTemplateArchivedEventType is the event type identifier.
const WorkoutTemplateArchivedEventType = "WorkoutTemplateArchived"

// WorkoutTemplateArchived represents the terminal event of a workout template.
// An archived template accepts no further transitions; its history remains queryable.
type WorkoutTemplateArchived struct {
	EventType  string
	TemplateID TemplateIDString
	OccurredAt OccurredAtTS
}

// BuildWorkoutTemplateArchived creates a new WorkoutTemplateArchived event.
func BuildWorkoutTemplateArchived(templateID uuid.UUID, occurredAt time.Time) WorkoutTemplateArchived {
	return WorkoutTemplateArchived{
		EventType:  WorkoutTemplateArchivedEventType,
		TemplateID: templateID.String(),
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e WorkoutTemplateArchived) IsEventType() string {
	return WorkoutTemplateArchivedEventType
}

// HasOccurredAt returns when this event occurred.
func (e WorkoutTemplateArchived) HasOccurredAt() time.Time {
	return e.OccurredAt
}
