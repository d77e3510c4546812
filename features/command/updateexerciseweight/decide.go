package updateexerciseweight

import (
	"github.com/fitgrid/platform/domain/planning"
	"github.com/fitgrid/platform/shared/core"
)

const (
	ruleTemplateIsArchived    = "an archived template accepts no further changes"
	ruleExerciseNotInTemplate = "exercise is not part of the template"
)

// Decide implements the business logic for updating an exercise's weight.
//
// Business Rules:
//
//	GIVEN: A template aggregate with TemplateID containing ExerciseID
//	WHEN: UpdateExerciseWeight command is received
//	THEN: ExerciseWeightUpdated event with the old and new weight is generated
//	ERROR: template does not exist
//	ERROR: template is archived
//	ERROR: exercise is not part of the template
//	ERROR: the new weight is negative
//	IDEMPOTENCY: If the weight already has the requested value, no event is generated
func Decide(state planning.TemplateState, command Command) core.DecisionResult {
	if !state.Exists {
		return core.ErrorDecision(core.ErrAggregateNotFound)
	}

	if state.Archived {
		return core.ErrorDecision(core.BuildBusinessRuleViolation(ruleTemplateIsArchived))
	}

	exercise, ok := state.Exercises[command.ExerciseID.String()]
	if !ok {
		return core.ErrorDecision(core.BuildBusinessRuleViolation(ruleExerciseNotInTemplate))
	}

	if command.NewWeight < 0 {
		return core.ErrorDecision(core.BuildValidationError("new_weight", "must not be negative"))
	}

	if exercise.Weight == command.NewWeight {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(
		core.BuildExerciseWeightUpdated(
			command.TemplateID,
			command.ExerciseID,
			exercise.Weight,
			command.NewWeight,
			command.OccurredAt,
		),
	)
}
