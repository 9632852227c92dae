package occurrence_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/finlifeos/finlife-core-go/occurrence"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func Test_GenerationWindow_ExtendsToEndOfYear(t *testing.T) {
	start, end := occurrence.GenerationWindow(day(2025, time.February, 15))

	assert.Equal(t, day(2025, time.January, 16), start)
	assert.Equal(t, day(2025, time.December, 31), end, "end of year is further out than today+90")
}

func Test_GenerationWindow_UsesLookaheadLateInYear(t *testing.T) {
	start, end := occurrence.GenerationWindow(day(2025, time.December, 1))

	assert.Equal(t, day(2025, time.November, 1), start)
	assert.Equal(t, day(2026, time.March, 1), end, "today+90 crosses the year boundary")
}

func Test_CalendarWindow_StartsToday(t *testing.T) {
	start, end := occurrence.CalendarWindow(day(2025, time.June, 1))

	assert.Equal(t, day(2025, time.June, 1), start)
	assert.Equal(t, day(2025, time.August, 30), end)
}

func Test_ClipWindow_NarrowsToActiveRange(t *testing.T) {
	activeUntil := day(2025, time.June, 30)

	start, end, ok := occurrence.ClipWindow(
		day(2025, time.May, 1), day(2025, time.August, 1),
		day(2025, time.June, 1), &activeUntil,
	)

	assert.True(t, ok)
	assert.Equal(t, day(2025, time.June, 1), start)
	assert.Equal(t, day(2025, time.June, 30), end)
}

func Test_ClipWindow_EmptyWhenEntityInactiveInWindow(t *testing.T) {
	activeUntil := day(2025, time.February, 1)

	_, _, ok := occurrence.ClipWindow(
		day(2025, time.May, 1), day(2025, time.August, 1),
		day(2025, time.January, 1), &activeUntil,
	)

	assert.False(t, ok)
}

func Test_ClipWindow_OpenEndedActiveUntil(t *testing.T) {
	start, end, ok := occurrence.ClipWindow(
		day(2025, time.May, 1), day(2025, time.August, 1),
		day(2025, time.January, 1), nil,
	)

	assert.True(t, ok)
	assert.Equal(t, day(2025, time.May, 1), start)
	assert.Equal(t, day(2025, time.August, 1), end)
}
