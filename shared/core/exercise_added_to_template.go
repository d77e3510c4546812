package core

import (
	"time"

	"github.com/google/uuid"
)

// ExerciseAddedToTemplateEventType is the event type identifier.
const ExerciseAddedToTemplateEventType = "ExerciseAddedToTemplate"

// ExerciseAddedToTemplate represents when an exercise was added to a workout template.
type ExerciseAddedToTemplate struct {
	EventType  string
	TemplateID TemplateIDString
	ExerciseID ExerciseIDString
	Name       string
	Weight     float64
	Sets       int
	Reps       int
	OccurredAt OccurredAtTS
}

// BuildExerciseAddedToTemplate creates a new ExerciseAddedToTemplate event.
func BuildExerciseAddedToTemplate(
	templateID uuid.UUID,
	exerciseID uuid.UUID,
	name string,
	weight float64,
	sets int,
	reps int,
	occurredAt time.Time,
) ExerciseAddedToTemplate {

	return ExerciseAddedToTemplate{
		EventType:  ExerciseAddedToTemplateEventType,
		TemplateID: templateID.String(),
		ExerciseID: exerciseID.String(),
		Name:       name,
		Weight:     weight,
		Sets:       sets,
		Reps:       reps,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e ExerciseAddedToTemplate) IsEventType() string {
	return ExerciseAddedToTemplateEventType
}

// HasOccurredAt returns when this event occurred.
func (e ExerciseAddedToTemplate) HasOccurredAt() time.Time {
	return e.OccurredAt
}
