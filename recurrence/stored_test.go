package recurrence_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlifeos/finlife-core-go/recurrence"
)

func Test_SpecFromStored_ParsesWeekdayTokens(t *testing.T) {
	spec, err := recurrence.SpecFromStored(recurrence.StoredRule{
		Freq:      "WEEKLY",
		Interval:  1,
		StartDate: date(2025, time.January, 1),
		ByWeekday: "FR,MO,MO",
	})
	require.NoError(t, err)

	assert.Equal(t, []recurrence.Weekday{recurrence.Monday, recurrence.Friday}, spec.ByWeekday)
}

func Test_SpecFromStored_Yearly_InfersMonthAndDayFromStartDate(t *testing.T) {
	spec, err := recurrence.SpecFromStored(recurrence.StoredRule{
		Freq:      "YEARLY",
		Interval:  1,
		StartDate: date(2024, time.March, 15),
	})
	require.NoError(t, err)

	assert.Equal(t, time.March, spec.ByMonth)
	assert.Equal(t, 15, spec.ByMonthdayForYear)
}

func Test_SpecFromStored_Yearly_PrefersByMonthdayOverStartDay(t *testing.T) {
	spec, err := recurrence.SpecFromStored(recurrence.StoredRule{
		Freq:       "YEARLY",
		Interval:   1,
		StartDate:  date(2024, time.February, 1),
		ByMonthday: intPtr(29),
	})
	require.NoError(t, err)

	assert.Equal(t, time.February, spec.ByMonth)
	assert.Equal(t, 29, spec.ByMonthdayForYear)
}

func Test_SpecFromStored_ParsesDatesJSON(t *testing.T) {
	spec, err := recurrence.SpecFromStored(recurrence.StoredRule{
		Freq:      "MULTI_DATE",
		Interval:  1,
		StartDate: date(2025, time.January, 1),
		DatesJSON: `["2025-03-05", "2025-01-15"]`,
	})
	require.NoError(t, err)

	expected := []time.Time{
		date(2025, time.January, 15),
		date(2025, time.March, 5),
	}
	assert.Equal(t, expected, spec.Dates)
}

func Test_SpecFromStored_InvalidDatesJSON_Fails(t *testing.T) {
	_, err := recurrence.SpecFromStored(recurrence.StoredRule{
		Freq:      "MULTI_DATE",
		Interval:  1,
		StartDate: date(2025, time.January, 1),
		DatesJSON: `not json`,
	})

	assert.ErrorIs(t, err, recurrence.ErrInvalidDatesJSON)
}

func Test_SpecFromStored_NormalizesUntilDateToMidnight(t *testing.T) {
	until := time.Date(2025, time.June, 30, 15, 4, 5, 0, time.UTC)

	spec, err := recurrence.SpecFromStored(recurrence.StoredRule{
		Freq:      "DAILY",
		Interval:  1,
		StartDate: time.Date(2025, time.January, 1, 9, 30, 0, 0, time.UTC),
		UntilDate: &until,
	})
	require.NoError(t, err)

	assert.Equal(t, date(2025, time.January, 1), spec.StartDate)
	require.NotNil(t, spec.UntilDate)
	assert.Equal(t, date(2025, time.June, 30), *spec.UntilDate)
}
