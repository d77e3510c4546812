package eventstore_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fitgrid/platform/eventstore"
)

func Test_BuildStorableEvent_Success(t *testing.T) {
	// act
	event, err := eventstore.BuildStorableEvent(
		"SomethingHappened",
		time.Now(),
		[]byte(`{"field":"value"}`),
		[]byte(`{"MessageID":"abc"}`),
	)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "SomethingHappened", event.EventType)
}

func Test_BuildStorableEvent_Error_WhenPayloadIsInvalidJSON(t *testing.T) {
	// act
	_, err := eventstore.BuildStorableEvent(
		"SomethingHappened",
		time.Now(),
		[]byte(`{invalid`),
		[]byte(`{}`),
	)

	// assert
	assert.ErrorIs(t, err, eventstore.ErrInvalidPayloadJSON)
}

func Test_BuildStorableEvent_Error_WhenMetadataIsInvalidJSON(t *testing.T) {
	// act
	_, err := eventstore.BuildStorableEvent(
		"SomethingHappened",
		time.Now(),
		[]byte(`{}`),
		[]byte(`not json`),
	)

	// assert
	assert.ErrorIs(t, err, eventstore.ErrInvalidMetadataJSON)
}

func Test_BuildStorableEventWithEmptyMetadata_Success(t *testing.T) {
	// act
	event, err := eventstore.BuildStorableEventWithEmptyMetadata(
		"SomethingHappened",
		time.Now(),
		[]byte(`{}`),
	)

	// assert
	assert.NoError(t, err)
	assert.JSONEq(t, `{}`, string(event.MetadataJSON))
}
