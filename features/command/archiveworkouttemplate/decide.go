package archiveworkouttemplate

import (
	"github.com/fitgrid/platform/domain/planning"
	"github.com/fitgrid/platform/shared/core"
)

// Decide implements the business logic for archiving a workout template.
//
// Business Rules:
//
//	GIVEN: A template aggregate with TemplateID
//	WHEN: ArchiveWorkoutTemplate command is received
//	THEN: WorkoutTemplateArchived event is generated
//	ERROR: template does not exist
//	IDEMPOTENCY: If the template is already archived, no event is generated
func Decide(state planning.TemplateState, command Command) core.DecisionResult {
	if !state.Exists {
		return core.ErrorDecision(core.ErrAggregateNotFound)
	}

	if state.Archived {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(
		core.BuildWorkoutTemplateArchived(
			command.TemplateID,
			command.OccurredAt,
		),
	)
}
