package finishworkoutsession

import (
	"github.com/google/uuid"

	"github.com/fitgrid/platform/domain/execution"
	"github.com/fitgrid/platform/shared/core"
)

// Decide implements the business logic for finishing a workout session.
//
// Business Rules:
//
//	GIVEN: A started session aggregate with SessionID
//	WHEN: FinishWorkoutSession command is received
//	THEN: WorkoutSessionFinished event is generated
//	ERROR: session does not exist
//	IDEMPOTENCY: If the session is already finished, no event is generated
func Decide(state execution.SessionState, command Command) core.DecisionResult {
	if !state.Started {
		return core.ErrorDecision(core.ErrAggregateNotFound)
	}

	if state.Finished {
		return core.IdempotentDecision()
	}

	userID, err := uuid.Parse(state.UserID)
	if err != nil {
		return core.ErrorDecision(core.BuildValidationError("user_id", "session holds a malformed user id"))
	}

	return core.SuccessDecision(
		core.BuildWorkoutSessionFinished(
			command.SessionID,
			userID,
			command.OccurredAt,
		),
	)
}
