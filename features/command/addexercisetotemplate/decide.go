package addexercisetotemplate

import (
	"github.com/fitgrid/platform/domain/planning"
	"github.com/fitgrid/platform/shared/core"
)

const ruleTemplateIsArchived = "an archived template accepts no further changes"

// Decide implements the business logic for adding an exercise to a template.
//
// Business Rules:
//
//	GIVEN: A template aggregate with TemplateID
//	WHEN: AddExerciseToTemplate command is received
//	THEN: ExerciseAddedToTemplate event is generated
//	ERROR: template does not exist
//	ERROR: template is archived, also when the exercise already exists
//	ERROR: validation of name, weight, sets or reps fails
//	IDEMPOTENCY: If the exercise is already part of the template, no event is generated
func Decide(state planning.TemplateState, command Command) core.DecisionResult {
	if !state.Exists {
		return core.ErrorDecision(core.ErrAggregateNotFound)
	}

	if state.Archived {
		return core.ErrorDecision(core.BuildBusinessRuleViolation(ruleTemplateIsArchived))
	}

	if state.HasExercise(command.ExerciseID.String()) {
		return core.IdempotentDecision()
	}

	if command.Name == "" {
		return core.ErrorDecision(core.BuildValidationError("name", "must not be empty"))
	}

	if command.Weight < 0 {
		return core.ErrorDecision(core.BuildValidationError("weight", "must not be negative"))
	}

	if command.Sets <= 0 {
		return core.ErrorDecision(core.BuildValidationError("sets", "must be positive"))
	}

	if command.Reps <= 0 {
		return core.ErrorDecision(core.BuildValidationError("reps", "must be positive"))
	}

	return core.SuccessDecision(
		core.BuildExerciseAddedToTemplate(
			command.TemplateID,
			command.ExerciseID,
			command.Name,
			command.Weight,
			command.Sets,
			command.Reps,
			command.OccurredAt,
		),
	)
}
