package core

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutSessionStartedEventType is the event type identifier.
const WorkoutSessionStartedEventType = "WorkoutSessionStarted"

// WorkoutSessionStarted represents when a user began executing a workout,
// optionally based on a planning template.
type WorkoutSessionStarted struct {
	EventType  string
	SessionID  SessionIDString
	UserID     UserIDString
	TemplateID TemplateIDString
	OccurredAt OccurredAtTS
}

// BuildWorkoutSessionStarted creates a new WorkoutSessionStarted event.
func BuildWorkoutSessionStarted(sessionID uuid.UUID, userID uuid.UUID, templateID string, occurredAt time.Time) WorkoutSessionStarted {
	return WorkoutSessionStarted{
		EventType:  WorkoutSessionStartedEventType,
		SessionID:  sessionID.String(),
		UserID:     userID.String(),
		TemplateID: templateID,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e WorkoutSessionStarted) IsEventType() string {
	return WorkoutSessionStartedEventType
}

// HasOccurredAt returns when this event occurred.
func (e WorkoutSessionStarted) HasOccurredAt() time.Time {
	return e.OccurredAt
}
