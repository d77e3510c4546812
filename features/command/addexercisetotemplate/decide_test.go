package addexercisetotemplate_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitgrid/platform/domain/planning"
	"github.com/fitgrid/platform/features/command/addexercisetotemplate"
	"github.com/fitgrid/platform/shared/core"
)

func Test_Decide_Success_WhenTemplateExistsAndInputIsValid(t *testing.T) {
	// arrange
	templateID := uuid.New()
	exerciseID := uuid.New()
	state := givenTemplateCreated(t, templateID)

	command := addexercisetotemplate.BuildCommand(templateID, exerciseID, "Bench Press", 40, 3, 8, time.Now())

	// act
	result := addexercisetotemplate.Decide(state, command)

	// assert
	require.Nil(t, result.HasError())
	require.Len(t, result.Events, 1)

	event, ok := result.Events[0].(core.ExerciseAddedToTemplate)
	require.True(t, ok)
	assert.Equal(t, "Bench Press", event.Name)
	assert.Equal(t, 40.0, event.Weight)
}

func Test_Decide_Error_WhenTemplateDoesNotExist(t *testing.T) {
	command := addexercisetotemplate.BuildCommand(uuid.New(), uuid.New(), "Bench Press", 40, 3, 8, time.Now())

	result := addexercisetotemplate.Decide(planning.InitialTemplateState(), command)

	assert.ErrorIs(t, result.HasError(), core.ErrAggregateNotFound)
}

func Test_Decide_Error_WhenTemplateIsArchived(t *testing.T) {
	// arrange
	templateID := uuid.New()
	state := givenTemplateCreated(t, templateID)
	state = planning.ReduceTemplate(state, core.BuildWorkoutTemplateArchived(templateID, time.Now()))

	command := addexercisetotemplate.BuildCommand(templateID, uuid.New(), "Bench Press", 40, 3, 8, time.Now())

	// act
	result := addexercisetotemplate.Decide(state, command)

	// assert
	assert.False(t, result.HasEventsToAppend())
	assert.True(t, core.IsBusinessRuleViolation(result.HasError()))
}

func Test_Decide_Error_WhenTemplateIsArchivedAndExerciseAlreadyExists(t *testing.T) {
	// arrange - the archived rule wins over idempotent re-adds
	templateID := uuid.New()
	exerciseID := uuid.New()
	state := givenTemplateCreated(t, templateID)
	state = planning.ReduceTemplate(state,
		core.BuildExerciseAddedToTemplate(templateID, exerciseID, "Bench Press", 40, 3, 8, time.Now()))
	state = planning.ReduceTemplate(state, core.BuildWorkoutTemplateArchived(templateID, time.Now()))

	command := addexercisetotemplate.BuildCommand(templateID, exerciseID, "Bench Press", 40, 3, 8, time.Now())

	// act
	result := addexercisetotemplate.Decide(state, command)

	// assert
	assert.False(t, result.HasEventsToAppend())
	assert.True(t, core.IsBusinessRuleViolation(result.HasError()))
}

func Test_Decide_Idempotent_WhenExerciseIsAlreadyInTemplate(t *testing.T) {
	// arrange
	templateID := uuid.New()
	exerciseID := uuid.New()
	state := givenTemplateCreated(t, templateID)
	state = planning.ReduceTemplate(state,
		core.BuildExerciseAddedToTemplate(templateID, exerciseID, "Bench Press", 40, 3, 8, time.Now()))

	command := addexercisetotemplate.BuildCommand(templateID, exerciseID, "Bench Press", 40, 3, 8, time.Now())

	// act
	result := addexercisetotemplate.Decide(state, command)

	// assert
	assert.False(t, result.HasEventsToAppend())
	assert.Nil(t, result.HasError())
}

func Test_Decide_Error_WhenInputIsInvalid(t *testing.T) {
	templateID := uuid.New()
	state := givenTemplateCreated(t, templateID)

	testCases := []struct {
		name    string
		command addexercisetotemplate.Command
	}{
		{"empty name", addexercisetotemplate.BuildCommand(templateID, uuid.New(), "", 40, 3, 8, time.Now())},
		{"negative weight", addexercisetotemplate.BuildCommand(templateID, uuid.New(), "Squat", -1, 3, 8, time.Now())},
		{"zero sets", addexercisetotemplate.BuildCommand(templateID, uuid.New(), "Squat", 40, 0, 8, time.Now())},
		{"zero reps", addexercisetotemplate.BuildCommand(templateID, uuid.New(), "Squat", 40, 3, 0, time.Now())},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := addexercisetotemplate.Decide(state, tc.command)

			assert.False(t, result.HasEventsToAppend())
			assert.True(t, core.IsValidationError(result.HasError()))
		})
	}
}

func givenTemplateCreated(t *testing.T, templateID uuid.UUID) planning.TemplateState {
	t.Helper()

	return planning.ReduceTemplate(planning.InitialTemplateState(),
		core.BuildWorkoutTemplateCreated(templateID, uuid.New(), "Push Day", time.Now()))
}
