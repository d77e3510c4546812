package finishworkoutsession_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitgrid/platform/domain/execution"
	"github.com/fitgrid/platform/features/command/finishworkoutsession"
	"github.com/fitgrid/platform/shared/core"
)

func Test_Decide_Success_WhenSessionIsRunning(t *testing.T) {
	// arrange
	sessionID := uuid.New()
	userID := uuid.New()
	state := execution.ReduceSession(execution.InitialSessionState(),
		core.BuildWorkoutSessionStarted(sessionID, userID, "", time.Now()))

	command := finishworkoutsession.BuildCommand(sessionID, time.Now())

	// act
	result := finishworkoutsession.Decide(state, command)

	// assert
	require.Nil(t, result.HasError())
	require.Len(t, result.Events, 1)

	event, ok := result.Events[0].(core.WorkoutSessionFinished)
	require.True(t, ok)
	assert.Equal(t, userID.String(), event.UserID)
}

func Test_Decide_Idempotent_WhenSessionIsAlreadyFinished(t *testing.T) {
	// arrange
	sessionID := uuid.New()
	userID := uuid.New()
	state := execution.ReduceSession(execution.InitialSessionState(),
		core.BuildWorkoutSessionStarted(sessionID, userID, "", time.Now()))
	state = execution.ReduceSession(state, core.BuildWorkoutSessionFinished(sessionID, userID, time.Now()))

	command := finishworkoutsession.BuildCommand(sessionID, time.Now())

	// act
	result := finishworkoutsession.Decide(state, command)

	// assert
	assert.False(t, result.HasEventsToAppend())
	assert.Nil(t, result.HasError())
}

func Test_Decide_Error_WhenSessionDoesNotExist(t *testing.T) {
	command := finishworkoutsession.BuildCommand(uuid.New(), time.Now())

	result := finishworkoutsession.Decide(execution.InitialSessionState(), command)

	assert.ErrorIs(t, result.HasError(), core.ErrAggregateNotFound)
}
