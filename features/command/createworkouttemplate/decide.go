package createworkouttemplate

import (
	"github.com/fitgrid/platform/domain/planning"
	"github.com/fitgrid/platform/shared/core"
)

// Decide implements the business logic for creating a workout template.
//
// Business Rules:
//
//	GIVEN: A template aggregate with TemplateID
//	WHEN: CreateWorkoutTemplate command is received
//	THEN: WorkoutTemplateCreated event is generated
//	ERROR: validation of the template name fails
//	IDEMPOTENCY: If the template already exists, no event is generated
func Decide(state planning.TemplateState, command Command) core.DecisionResult {
	if state.Exists {
		return core.IdempotentDecision()
	}

	if command.Name == "" {
		return core.ErrorDecision(core.BuildValidationError("name", "must not be empty"))
	}

	return core.SuccessDecision(
		core.BuildWorkoutTemplateCreated(
			command.TemplateID,
			command.OwnerID,
			command.Name,
			command.OccurredAt,
		),
	)
}
