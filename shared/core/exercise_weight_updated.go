package core

import (
	"time"

	"github.com/google/uuid"
)

// ExerciseWeightUpdatedEventType is the event type identifier.
const ExerciseWeightUpdatedEventType = "ExerciseWeightUpdated"

// ExerciseWeightUpdated represents when the working weight of an exercise in a
// template was changed. Both the old and the new weight are recorded so that
// downstream projections can reason about the delta.
type ExerciseWeightUpdated struct {
	EventType  string
	TemplateID TemplateIDString
	ExerciseID ExerciseIDString
	OldWeight  float64
	NewWeight  float64
	OccurredAt OccurredAtTS
}

// BuildExerciseWeightUpdated creates a new ExerciseWeightUpdated event.
func BuildExerciseWeightUpdated(
	templateID uuid.UUID,
	exerciseID uuid.UUID,
	oldWeight float64,
	newWeight float64,
	occurredAt time.Time,
) ExerciseWeightUpdated {

	return ExerciseWeightUpdated{
		EventType:  ExerciseWeightUpdatedEventType,
		TemplateID: templateID.String(),
		ExerciseID: exerciseID.String(),
		OldWeight:  oldWeight,
		NewWeight:  newWeight,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e ExerciseWeightUpdated) IsEventType() string {
	return ExerciseWeightUpdatedEventType
}

// HasOccurredAt returns when this event occurred.
func (e ExerciseWeightUpdated) HasOccurredAt() time.Time {
	return e.OccurredAt
}
