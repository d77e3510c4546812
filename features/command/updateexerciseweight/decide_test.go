package updateexerciseweight_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitgrid/platform/domain/planning"
	"github.com/fitgrid/platform/features/command/updateexerciseweight"
	"github.com/fitgrid/platform/shared/core"
)

func Test_Decide_Success_RecordsOldAndNewWeight(t *testing.T) {
	// arrange - bench press currently at 40kg
	templateID := uuid.New()
	exerciseID := uuid.New()
	state := givenTemplateWithExercise(t, templateID, exerciseID, 40)

	command := updateexerciseweight.BuildCommand(templateID, exerciseID, 50, time.Now())

	// act
	result := updateexerciseweight.Decide(state, command)

	// assert
	require.Nil(t, result.HasError())
	require.Len(t, result.Events, 1)

	event, ok := result.Events[0].(core.ExerciseWeightUpdated)
	require.True(t, ok)
	assert.Equal(t, 40.0, event.OldWeight)
	assert.Equal(t, 50.0, event.NewWeight)
}

func Test_Decide_Idempotent_WhenWeightIsUnchanged(t *testing.T) {
	// arrange
	templateID := uuid.New()
	exerciseID := uuid.New()
	state := givenTemplateWithExercise(t, templateID, exerciseID, 40)

	command := updateexerciseweight.BuildCommand(templateID, exerciseID, 40, time.Now())

	// act
	result := updateexerciseweight.Decide(state, command)

	// assert
	assert.False(t, result.HasEventsToAppend())
	assert.Nil(t, result.HasError())
}

func Test_Decide_Error_WhenTemplateDoesNotExist(t *testing.T) {
	command := updateexerciseweight.BuildCommand(uuid.New(), uuid.New(), 50, time.Now())

	result := updateexerciseweight.Decide(planning.InitialTemplateState(), command)

	assert.ErrorIs(t, result.HasError(), core.ErrAggregateNotFound)
}

func Test_Decide_Error_WhenTemplateIsArchived(t *testing.T) {
	// arrange
	templateID := uuid.New()
	exerciseID := uuid.New()
	state := givenTemplateWithExercise(t, templateID, exerciseID, 40)
	state = planning.ReduceTemplate(state, core.BuildWorkoutTemplateArchived(templateID, time.Now()))

	command := updateexerciseweight.BuildCommand(templateID, exerciseID, 50, time.Now())

	// act
	result := updateexerciseweight.Decide(state, command)

	// assert
	assert.True(t, core.IsBusinessRuleViolation(result.HasError()))
}

func Test_Decide_Error_WhenExerciseIsNotInTemplate(t *testing.T) {
	// arrange
	templateID := uuid.New()
	state := givenTemplateWithExercise(t, templateID, uuid.New(), 40)

	command := updateexerciseweight.BuildCommand(templateID, uuid.New(), 50, time.Now())

	// act
	result := updateexerciseweight.Decide(state, command)

	// assert
	assert.True(t, core.IsBusinessRuleViolation(result.HasError()))
}

func Test_Decide_Error_WhenNewWeightIsNegative(t *testing.T) {
	// arrange
	templateID := uuid.New()
	exerciseID := uuid.New()
	state := givenTemplateWithExercise(t, templateID, exerciseID, 40)

	command := updateexerciseweight.BuildCommand(templateID, exerciseID, -5, time.Now())

	// act
	result := updateexerciseweight.Decide(state, command)

	// assert
	assert.True(t, core.IsValidationError(result.HasError()))
}

func givenTemplateWithExercise(t *testing.T, templateID uuid.UUID, exerciseID uuid.UUID, weight float64) planning.TemplateState {
	t.Helper()

	state := planning.ReduceTemplate(planning.InitialTemplateState(),
		core.BuildWorkoutTemplateCreated(templateID, uuid.New(), "Push Day", time.Now()))

	return planning.ReduceTemplate(state,
		core.BuildExerciseAddedToTemplate(templateID, exerciseID, "Bench Press", weight, 3, 8, time.Now()))
}
