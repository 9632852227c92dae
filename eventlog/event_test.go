package eventlog_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlifeos/finlife-core-go/eventlog"
)

func Test_BuildPendingEvent_RejectsEmptyEventType(t *testing.T) {
	_, err := eventlog.BuildPendingEvent(1, "", []byte(`{}`), time.Now())

	assert.ErrorIs(t, err, eventlog.ErrEmptyEventType)
}

func Test_BuildPendingEvent_RejectsInvalidPayloadJSON(t *testing.T) {
	_, err := eventlog.BuildPendingEvent(1, "wallet_created", []byte(`{not json`), time.Now())

	assert.ErrorIs(t, err, eventlog.ErrInvalidPayloadJSON)
}

func Test_BuildPendingEventWithKey_CarriesTheKey(t *testing.T) {
	occurredAt := time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)

	event, err := eventlog.BuildPendingEventWithKey(1, "wallet_created", []byte(`{"wallet_id": 1}`), occurredAt, "wallet-1")
	require.NoError(t, err)

	require.NotNil(t, event.IdempotencyKey)
	assert.Equal(t, "wallet-1", *event.IdempotencyKey)
	assert.Equal(t, occurredAt, event.OccurredAt)
}

func Test_PendingEvent_WithActor(t *testing.T) {
	event, err := eventlog.BuildPendingEvent(1, "wallet_created", []byte(`{}`), time.Now())
	require.NoError(t, err)
	require.Nil(t, event.ActorID)

	attributed := event.WithActor(77)

	require.NotNil(t, attributed.ActorID)
	assert.Equal(t, int64(77), *attributed.ActorID)
	assert.Nil(t, event.ActorID, "the original event must stay unchanged")
}
