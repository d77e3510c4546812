package createworkouttemplate_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitgrid/platform/domain/planning"
	"github.com/fitgrid/platform/features/command/createworkouttemplate"
	"github.com/fitgrid/platform/shared/core"
)

func Test_Decide_Success_WhenTemplateDoesNotExist(t *testing.T) {
	// arrange
	templateID := uuid.New()
	ownerID := uuid.New()
	command := createworkouttemplate.BuildCommand(templateID, ownerID, "Push Day", time.Now())

	// act
	result := createworkouttemplate.Decide(planning.InitialTemplateState(), command)

	// assert
	require.Nil(t, result.HasError())
	require.Len(t, result.Events, 1)

	event, ok := result.Events[0].(core.WorkoutTemplateCreated)
	require.True(t, ok)
	assert.Equal(t, "Push Day", event.Name)
	assert.Equal(t, ownerID.String(), event.OwnerID)
}

func Test_Decide_Idempotent_WhenTemplateAlreadyExists(t *testing.T) {
	// arrange
	templateID := uuid.New()
	state := planning.ReduceTemplate(planning.InitialTemplateState(),
		core.BuildWorkoutTemplateCreated(templateID, uuid.New(), "Push Day", time.Now()))

	command := createworkouttemplate.BuildCommand(templateID, uuid.New(), "Push Day", time.Now())

	// act
	result := createworkouttemplate.Decide(state, command)

	// assert
	assert.False(t, result.HasEventsToAppend())
	assert.Nil(t, result.HasError())
}

func Test_Decide_Error_WhenNameIsEmpty(t *testing.T) {
	command := createworkouttemplate.BuildCommand(uuid.New(), uuid.New(), "", time.Now())

	result := createworkouttemplate.Decide(planning.InitialTemplateState(), command)

	assert.False(t, result.HasEventsToAppend())
	assert.True(t, core.IsValidationError(result.HasError()))
}
