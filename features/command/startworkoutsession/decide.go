package startworkoutsession

import (
	"github.com/google/uuid"

	"github.com/fitgrid/platform/domain/execution"
	"github.com/fitgrid/platform/shared/core"
)

// Decide implements the business logic for starting a workout session.
//
// Business Rules:
//
//	GIVEN: A session aggregate with SessionID
//	WHEN: StartWorkoutSession command is received
//	THEN: WorkoutSessionStarted event is generated
//	ERROR: validation of the user id fails
//	IDEMPOTENCY: If the session was already started, no event is generated
func Decide(state execution.SessionState, command Command) core.DecisionResult {
	if state.Started {
		return core.IdempotentDecision()
	}

	if command.UserID == uuid.Nil {
		return core.ErrorDecision(core.BuildValidationError("user_id", "must not be empty"))
	}

	return core.SuccessDecision(
		core.BuildWorkoutSessionStarted(
			command.SessionID,
			command.UserID,
			command.TemplateID,
			command.OccurredAt,
		),
	)
}
