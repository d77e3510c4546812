package shell_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitgrid/platform/eventstore"
	"github.com/fitgrid/platform/eventstore/memoryengine"
	"github.com/fitgrid/platform/shared/core"
	"github.com/fitgrid/platform/shared/shell"
)

type counterState struct {
	seen int
}

func reduceCounter(state counterState, _ core.DomainEvent) counterState {
	state.seen++
	return state
}

func newCounterRepository(t *testing.T, store shell.EventStreamer) shell.Repository[counterState] {
	t.Helper()

	repository, err := shell.NewRepository(
		store,
		core.DomainPlanning,
		func() counterState { return counterState{} },
		reduceCounter,
	)
	require.NoError(t, err)

	return repository
}

func Test_NewRepository_Error_WhenEventStreamerIsNil(t *testing.T) {
	_, err := shell.NewRepository(
		nil,
		core.DomainPlanning,
		func() counterState { return counterState{} },
		reduceCounter,
	)

	assert.ErrorIs(t, err, shell.ErrNilEventStreamer)
}

func Test_Repository_Load_ReturnsInitialStateAndVersionZero_ForNonexistentAggregate(t *testing.T) {
	repository := newCounterRepository(t, memoryengine.NewEventStore())

	state, version, err := repository.Load(context.Background(), uuid.NewString())

	require.NoError(t, err)
	assert.Zero(t, state.seen)
	assert.Zero(t, version)
}

func Test_Repository_SaveThenLoad_FoldsAllEvents(t *testing.T) {
	// arrange
	repository := newCounterRepository(t, memoryengine.NewEventStore())
	templateID := uuid.New()
	metadata := shell.BuildEventMetadata(uuid.New(), uuid.New(), uuid.New())

	// act
	err := repository.Save(context.Background(), templateID.String(), 0, metadata, core.DomainEvents{
		core.BuildWorkoutTemplateCreated(templateID, uuid.New(), "Leg Day", time.Now()),
		core.BuildWorkoutTemplateArchived(templateID, time.Now()),
	})
	require.NoError(t, err)

	state, version, err := repository.Load(context.Background(), templateID.String())

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, state.seen)
	assert.Equal(t, eventstore.StreamVersionUint(2), version)
}

func Test_Repository_Save_Error_WhenExpectedVersionIsStale(t *testing.T) {
	// arrange
	repository := newCounterRepository(t, memoryengine.NewEventStore())
	templateID := uuid.New()
	metadata := shell.BuildEventMetadata(uuid.New(), uuid.New(), uuid.New())

	require.NoError(t, repository.Save(context.Background(), templateID.String(), 0, metadata, core.DomainEvents{
		core.BuildWorkoutTemplateCreated(templateID, uuid.New(), "Leg Day", time.Now()),
	}))

	// act - a second writer still assumes version 0
	err := repository.Save(context.Background(), templateID.String(), 0, metadata, core.DomainEvents{
		core.BuildWorkoutTemplateArchived(templateID, time.Now()),
	})

	// assert
	assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
}

func Test_Repository_Save_NoOp_WhenThereAreNoEvents(t *testing.T) {
	repository := newCounterRepository(t, memoryengine.NewEventStore())
	metadata := shell.BuildEventMetadata(uuid.New(), uuid.New(), uuid.New())

	err := repository.Save(context.Background(), uuid.NewString(), 0, metadata, core.DomainEvents{})

	assert.NoError(t, err)
}
