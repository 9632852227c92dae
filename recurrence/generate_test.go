package recurrence_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlifeos/finlife-core-go/recurrence"
)

func date(year int, month time.Month, day int) time.Time {
	return recurrence.NewDate(year, month, day)
}

func intPtr(v int) *int {
	return &v
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func Test_Generate_Onetime_InsideAndOutsideWindow(t *testing.T) {
	rule := recurrence.RuleSpec{
		Freq:      recurrence.FreqOnetime,
		Interval:  1,
		StartDate: date(2025, time.March, 10),
	}

	inside, err := recurrence.GenerateOccurrenceDates(rule, date(2025, time.March, 1), date(2025, time.March, 31))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{date(2025, time.March, 10)}, inside)

	outside, err := recurrence.GenerateOccurrenceDates(rule, date(2025, time.April, 1), date(2025, time.April, 30))
	require.NoError(t, err)
	assert.Empty(t, outside)
}

func Test_Generate_Daily_RespectsWindowBounds(t *testing.T) {
	rule := recurrence.RuleSpec{
		Freq:      recurrence.FreqDaily,
		Interval:  1,
		StartDate: date(2025, time.January, 1),
	}

	dates, err := recurrence.GenerateOccurrenceDates(rule, date(2025, time.January, 10), date(2025, time.January, 14))
	require.NoError(t, err)

	assert.Len(t, dates, 5)
	assert.Equal(t, date(2025, time.January, 10), dates[0])
	assert.Equal(t, date(2025, time.January, 14), dates[4])
}

func Test_Generate_IntervalDays_StepsFromStartDate(t *testing.T) {
	rule := recurrence.RuleSpec{
		Freq:      recurrence.FreqIntervalDays,
		Interval:  3,
		StartDate: date(2025, time.January, 1),
	}

	dates, err := recurrence.GenerateOccurrenceDates(rule, date(2025, time.January, 1), date(2025, time.January, 10))
	require.NoError(t, err)

	expected := []time.Time{
		date(2025, time.January, 1),
		date(2025, time.January, 4),
		date(2025, time.January, 7),
		date(2025, time.January, 10),
	}
	assert.Equal(t, expected, dates)
}

func Test_Generate_Weekly_MondayAnchoredBlocks(t *testing.T) {
	// start on a Wednesday; the Monday of the start week anchors the blocks
	rule := recurrence.RuleSpec{
		Freq:      recurrence.FreqWeekly,
		Interval:  1,
		StartDate: date(2025, time.January, 1),
		ByWeekday: []recurrence.Weekday{recurrence.Monday, recurrence.Friday},
	}

	dates, err := recurrence.GenerateOccurrenceDates(rule, date(2025, time.January, 1), date(2025, time.January, 14))
	require.NoError(t, err)

	expected := []time.Time{
		date(2025, time.January, 3),  // Friday of the start week
		date(2025, time.January, 6),  // Monday
		date(2025, time.January, 10), // Friday
		date(2025, time.January, 13), // Monday
	}
	assert.Equal(t, expected, dates)
}

func Test_Generate_Weekly_BiweeklySkipsEveryOtherWeek(t *testing.T) {
	rule := recurrence.RuleSpec{
		Freq:      recurrence.FreqWeekly,
		Interval:  2,
		StartDate: date(2025, time.January, 6), // Monday
		ByWeekday: []recurrence.Weekday{recurrence.Monday},
	}

	dates, err := recurrence.GenerateOccurrenceDates(rule, date(2025, time.January, 6), date(2025, time.February, 3))
	require.NoError(t, err)

	expected := []time.Time{
		date(2025, time.January, 6),
		date(2025, time.January, 20),
		date(2025, time.February, 3),
	}
	assert.Equal(t, expected, dates)
}

func Test_Generate_Monthly_Day31_ClipsToShorterMonths(t *testing.T) {
	rule := recurrence.RuleSpec{
		Freq:                  recurrence.FreqMonthly,
		Interval:              1,
		StartDate:             date(2025, time.January, 1),
		ByMonthday:            31,
		MonthdayClipToLastDay: true,
	}

	dates, err := recurrence.GenerateOccurrenceDates(rule, date(2025, time.January, 1), date(2025, time.April, 30))
	require.NoError(t, err)

	expected := []time.Time{
		date(2025, time.January, 31),
		date(2025, time.February, 28),
		date(2025, time.March, 31),
		date(2025, time.April, 30),
	}
	assert.Equal(t, expected, dates)
}

func Test_Generate_Monthly_Day31_SkipsShorterMonthsWithoutClip(t *testing.T) {
	rule := recurrence.RuleSpec{
		Freq:                  recurrence.FreqMonthly,
		Interval:              1,
		StartDate:             date(2025, time.January, 1),
		ByMonthday:            31,
		MonthdayClipToLastDay: false,
	}

	dates, err := recurrence.GenerateOccurrenceDates(rule, date(2025, time.January, 1), date(2025, time.April, 30))
	require.NoError(t, err)

	expected := []time.Time{
		date(2025, time.January, 31),
		date(2025, time.March, 31),
	}
	assert.Equal(t, expected, dates)
}

func Test_Generate_Yearly_Feb29_ClipsInNonLeapYears(t *testing.T) {
	rule := recurrence.RuleSpec{
		Freq:              recurrence.FreqYearly,
		Interval:          1,
		StartDate:         date(2024, time.January, 1),
		ByMonth:           time.February,
		ByMonthdayForYear: 29,
	}

	dates, err := recurrence.GenerateOccurrenceDates(rule, date(2024, time.January, 1), date(2026, time.December, 31))
	require.NoError(t, err)

	expected := []time.Time{
		date(2024, time.February, 29),
		date(2025, time.February, 28),
		date(2026, time.February, 28),
	}
	assert.Equal(t, expected, dates)
}

func Test_Generate_MultiDate_SortsAndDeduplicates(t *testing.T) {
	rule := recurrence.RuleSpec{
		Freq:      recurrence.FreqMultiDate,
		Interval:  1,
		StartDate: date(2025, time.January, 1),
		Dates: []time.Time{
			date(2025, time.March, 5),
			date(2025, time.January, 15),
			date(2025, time.March, 5),     // duplicate
			date(2024, time.December, 31), // before start
			date(2026, time.January, 1),   // after window
		},
	}

	dates, err := recurrence.GenerateOccurrenceDates(rule, date(2025, time.January, 1), date(2025, time.December, 31))
	require.NoError(t, err)

	expected := []time.Time{
		date(2025, time.January, 15),
		date(2025, time.March, 5),
	}
	assert.Equal(t, expected, dates)
}

func Test_Generate_UntilDate_CutsOffGeneration(t *testing.T) {
	rule := recurrence.RuleSpec{
		Freq:      recurrence.FreqDaily,
		Interval:  1,
		StartDate: date(2025, time.January, 1),
		UntilDate: timePtr(date(2025, time.January, 5)),
	}

	dates, err := recurrence.GenerateOccurrenceDates(rule, date(2025, time.January, 1), date(2025, time.January, 31))
	require.NoError(t, err)

	assert.Len(t, dates, 5)
	assert.Equal(t, date(2025, time.January, 5), dates[len(dates)-1])
}

func Test_Generate_Count_CapsTotalOccurrences(t *testing.T) {
	rule := recurrence.RuleSpec{
		Freq:      recurrence.FreqDaily,
		Interval:  1,
		StartDate: date(2025, time.January, 1),
		Count:     intPtr(3),
	}

	dates, err := recurrence.GenerateOccurrenceDates(rule, date(2025, time.January, 1), date(2025, time.January, 31))
	require.NoError(t, err)

	expected := []time.Time{
		date(2025, time.January, 1),
		date(2025, time.January, 2),
		date(2025, time.January, 3),
	}
	assert.Equal(t, expected, dates)
}

func Test_Generate_IsDeterministic(t *testing.T) {
	rule := recurrence.RuleSpec{
		Freq:      recurrence.FreqWeekly,
		Interval:  1,
		StartDate: date(2025, time.January, 1),
		ByWeekday: []recurrence.Weekday{recurrence.Tuesday, recurrence.Saturday},
	}

	first, err := recurrence.GenerateOccurrenceDates(rule, date(2025, time.January, 1), date(2025, time.June, 30))
	require.NoError(t, err)

	second, err := recurrence.GenerateOccurrenceDates(rule, date(2025, time.January, 1), date(2025, time.June, 30))
	require.NoError(t, err)

	assert.Equal(t, first, second)

	for i := 1; i < len(first); i++ {
		assert.True(t, first[i].After(first[i-1]), "dates must be strictly ascending")
	}
}

func Test_Generate_InvalidWindow_Fails(t *testing.T) {
	rule := recurrence.RuleSpec{
		Freq:      recurrence.FreqDaily,
		Interval:  1,
		StartDate: date(2025, time.January, 1),
	}

	_, err := recurrence.GenerateOccurrenceDates(rule, date(2025, time.February, 1), date(2025, time.January, 1))
	assert.ErrorIs(t, err, recurrence.ErrInvalidWindow)
}

func Test_Generate_InvalidRules_FailFast(t *testing.T) {
	tests := []struct {
		name string
		rule recurrence.RuleSpec
	}{
		{
			name: "weekly_without_weekdays",
			rule: recurrence.RuleSpec{
				Freq:      recurrence.FreqWeekly,
				Interval:  1,
				StartDate: date(2025, time.January, 1),
			},
		},
		{
			name: "monthly_without_monthday",
			rule: recurrence.RuleSpec{
				Freq:      recurrence.FreqMonthly,
				Interval:  1,
				StartDate: date(2025, time.January, 1),
			},
		},
		{
			name: "zero_interval",
			rule: recurrence.RuleSpec{
				Freq:      recurrence.FreqDaily,
				Interval:  0,
				StartDate: date(2025, time.January, 1),
			},
		},
		{
			name: "unknown_frequency",
			rule: recurrence.RuleSpec{
				Freq:      recurrence.Frequency("HOURLY"),
				Interval:  1,
				StartDate: date(2025, time.January, 1),
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := recurrence.GenerateOccurrenceDates(tc.rule, date(2025, time.January, 1), date(2025, time.December, 31))
			assert.ErrorIs(t, err, recurrence.ErrInvalidRule)
		})
	}
}
