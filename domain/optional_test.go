package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlifeos/finlife-core-go/domain"
)

func Test_Optional_TracksAbsentNullAndSetFields(t *testing.T) {
	payload := []byte(`{"habit_id": 7, "title": "Read more", "category_id": null}`)

	decoded, err := domain.DecodeHabitUpdated(payload)
	require.NoError(t, err)

	// set to a value
	assert.True(t, decoded.Title.Set)
	assert.True(t, decoded.Title.Valid)
	assert.Equal(t, "Read more", decoded.Title.Value)

	// explicitly null
	assert.True(t, decoded.CategoryID.Set)
	assert.False(t, decoded.CategoryID.Valid)
	assert.Nil(t, decoded.CategoryID.Ptr())

	// absent
	assert.False(t, decoded.Note.Set)
	assert.False(t, decoded.Level.Set)
}

func Test_Optional_OmitzeroDropsUnsetFieldsOnEncode(t *testing.T) {
	payload := domain.HabitUpdated{
		HabitID: 7,
		Title:   domain.Some("Read more"),
	}

	raw, err := domain.EncodePayload(payload)
	require.NoError(t, err)

	assert.JSONEq(t, `{"habit_id": 7, "title": "Read more"}`, string(raw))
}

func Test_Optional_NullRoundTrips(t *testing.T) {
	payload := domain.HabitUpdated{
		HabitID:    7,
		CategoryID: domain.Null[int64](),
	}

	raw, err := domain.EncodePayload(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"habit_id": 7, "category_id": null}`, string(raw))

	decoded, err := domain.DecodeHabitUpdated(raw)
	require.NoError(t, err)
	assert.True(t, decoded.CategoryID.Set)
	assert.False(t, decoded.CategoryID.Valid)
}

func Test_Optional_PtrReturnsCopy(t *testing.T) {
	opt := domain.Some(int64(42))

	ptr := opt.Ptr()
	require.NotNil(t, ptr)
	assert.Equal(t, int64(42), *ptr)

	*ptr = 99
	assert.Equal(t, int64(42), opt.Value)
}
