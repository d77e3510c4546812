package completeexercise

import (
	"github.com/google/uuid"

	"github.com/fitgrid/platform/domain/execution"
	"github.com/fitgrid/platform/shared/core"
)

const ruleSessionIsFinished = "a finished session accepts no further results"

// Decide implements the business logic for recording a finished exercise.
//
// Business Rules:
//
//	GIVEN: A started session aggregate with SessionID
//	WHEN: CompleteExercise command is received
//	THEN: ExerciseCompleted event is generated
//	ERROR: session does not exist
//	ERROR: session is already finished
//	ERROR: validation of exercise id, weight or reps fails
//
// Completing the same exercise repeatedly is allowed, a session can contain
// multiple results for one exercise.
func Decide(state execution.SessionState, command Command) core.DecisionResult {
	if !state.Started {
		return core.ErrorDecision(core.ErrAggregateNotFound)
	}

	if state.Finished {
		return core.ErrorDecision(core.BuildBusinessRuleViolation(ruleSessionIsFinished))
	}

	if command.ExerciseID == "" {
		return core.ErrorDecision(core.BuildValidationError("exercise_id", "must not be empty"))
	}

	if command.Weight < 0 {
		return core.ErrorDecision(core.BuildValidationError("weight", "must not be negative"))
	}

	if command.Reps <= 0 {
		return core.ErrorDecision(core.BuildValidationError("reps", "must be positive"))
	}

	userID, err := uuid.Parse(state.UserID)
	if err != nil {
		return core.ErrorDecision(core.BuildValidationError("user_id", "session holds a malformed user id"))
	}

	return core.SuccessDecision(
		core.BuildExerciseCompleted(
			command.SessionID,
			userID,
			command.ExerciseID,
			command.Weight,
			command.Reps,
			command.OccurredAt,
		),
	)
}
