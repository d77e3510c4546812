package core

import (
	"time"

	"github.com/google/uuid"
)

// ExerciseCompletedEventType is the event type identifier.
const ExerciseCompletedEventType = "ExerciseCompleted"

// ExerciseCompleted represents when a user finished all sets of one exercise
// within a workout session.
type ExerciseCompleted struct {
	EventType  string
	SessionID  SessionIDString
	UserID     UserIDString
	ExerciseID ExerciseIDString
	Weight     float64
	Reps       int
	OccurredAt OccurredAtTS
}

// BuildExerciseCompleted creates a new ExerciseCompleted event.
func BuildExerciseCompleted(
	sessionID uuid.UUID,
	userID uuid.UUID,
	exerciseID string,
	weight float64,
	reps int,
	occurredAt time.Time,
) ExerciseCompleted {

	return ExerciseCompleted{
		EventType:  ExerciseCompletedEventType,
		SessionID:  sessionID.String(),
		UserID:     userID.String(),
		ExerciseID: exerciseID,
		Weight:     weight,
		Reps:       reps,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e ExerciseCompleted) IsEventType() string {
	return ExerciseCompletedEventType
}

// HasOccurredAt returns when this event occurred.
func (e ExerciseCompleted) HasOccurredAt() time.Time {
	return e.OccurredAt
}
