package core

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutSessionFinishedEventType is the event type identifier.
const WorkoutSessionFinishedEventType = "WorkoutSessionFinished"

// WorkoutSessionFinished represents the terminal event of a workout session.
type WorkoutSessionFinished struct {
	EventType  string
	SessionID  SessionIDString
	UserID     UserIDString
	OccurredAt OccurredAtTS
}

// BuildWorkoutSessionFinished creates a new WorkoutSessionFinished event.
func BuildWorkoutSessionFinished(sessionID uuid.UUID, userID uuid.UUID, occurredAt time.Time) WorkoutSessionFinished {
	return WorkoutSessionFinished{
		EventType:  WorkoutSessionFinishedEventType,
		SessionID:  sessionID.String(),
		UserID:     userID.String(),
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e WorkoutSessionFinished) IsEventType() string {
	return WorkoutSessionFinishedEventType
}

// HasOccurredAt returns when this event occurred.
func (e WorkoutSessionFinished) HasOccurredAt() time.Time {
	return e.OccurredAt
}
