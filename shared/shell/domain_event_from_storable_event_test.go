package shell_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitgrid/platform/eventstore"
	"github.com/fitgrid/platform/shared/core"
	"github.com/fitgrid/platform/shared/shell"
)

func Test_DomainEventFrom_RoundTripsEveryEventType(t *testing.T) {
	now := time.Now()
	userID := uuid.New()
	templateID := uuid.New()
	exerciseID := uuid.New()
	sessionID := uuid.New()

	domainEvents := core.DomainEvents{
		core.BuildUserRegistered(userID, "tenant-1", "jo@example.com", "User", now),
		core.BuildWorkoutTemplateCreated(templateID, userID, "Push Day", now),
		core.BuildExerciseAddedToTemplate(templateID, exerciseID, "Bench Press", 40, 3, 8, now),
		core.BuildExerciseWeightUpdated(templateID, exerciseID, 40, 50, now),
		core.BuildWorkoutTemplateArchived(templateID, now),
		core.BuildWorkoutSessionStarted(sessionID, userID, templateID.String(), now),
		core.BuildExerciseCompleted(sessionID, userID, exerciseID.String(), 50, 8, now),
		core.BuildWorkoutSessionFinished(sessionID, userID, now),
	}

	metadata := shell.BuildEventMetadata(uuid.New(), uuid.New(), uuid.New())

	for _, original := range domainEvents {
		storableEvent, err := shell.StorableEventFrom(original, metadata)
		require.NoError(t, err, "event type %s", original.IsEventType())

		restored, err := shell.DomainEventFrom(storableEvent)
		require.NoError(t, err, "event type %s", original.IsEventType())

		assert.Equal(t, original, restored)
	}
}

func Test_DomainEventFrom_Error_WhenEventTypeIsUnknown(t *testing.T) {
	storableEvent, err := eventstore.BuildStorableEventWithEmptyMetadata(
		"SomethingNobodyKnows", time.Now(), []byte(`{}`))
	require.NoError(t, err)

	_, err = shell.DomainEventFrom(storableEvent)

	assert.ErrorIs(t, err, shell.ErrMappingToDomainEventUnknownEventType)
}

func Test_EventMetadataFrom_RestoresMetadata(t *testing.T) {
	metadata := shell.BuildEventMetadata(uuid.New(), uuid.New(), uuid.New()).
		WithPrincipal("user-1", "tenant-1")

	storableEvent, err := shell.StorableEventFrom(
		core.BuildWorkoutTemplateArchived(uuid.New(), time.Now()), metadata)
	require.NoError(t, err)

	restored, err := shell.EventMetadataFrom(storableEvent)

	require.NoError(t, err)
	assert.Equal(t, metadata, restored)
}
