package eventstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fitgrid/platform/eventstore"
)

func Test_BuildStreamID_Success(t *testing.T) {
	// act
	stream, err := eventstore.BuildStreamID("planning", "template-1")

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "planning", stream.Domain)
	assert.Equal(t, "template-1", stream.AggregateID)
}

func Test_BuildStreamID_Error_WhenDomainIsEmpty(t *testing.T) {
	// act
	_, err := eventstore.BuildStreamID("", "template-1")

	// assert
	assert.ErrorIs(t, err, eventstore.ErrEmptyDomainSupplied)
}

func Test_BuildStreamID_Error_WhenAggregateIDIsEmpty(t *testing.T) {
	// act
	_, err := eventstore.BuildStreamID("planning", "")

	// assert
	assert.ErrorIs(t, err, eventstore.ErrEmptyAggregateIDSupplied)
}

func Test_StreamID_PartitionKey_JoinsDomainAndAggregateID(t *testing.T) {
	// arrange
	stream, err := eventstore.BuildStreamID("execution", "session-42")
	assert.NoError(t, err)

	// act + assert
	assert.Equal(t, "execution#session-42", stream.PartitionKey())
}
