package occurrence

import (
	"time"

	"github.com/finlifeos/finlife-core-go/recurrence"
)

const (
	lookbackDays  = 30
	lookaheadDays = 90
)

// GenerationWindow is the window for habit, task, and operation occurrences:
// [today-30, max(today+90, Dec 31 of the current year)].
func GenerationWindow(today time.Time) (start, end time.Time) {
	today = recurrence.Midnight(today)

	start = today.AddDate(0, 0, -lookbackDays)
	end = today.AddDate(0, 0, lookaheadDays)

	endOfYear := recurrence.NewDate(today.Year(), time.December, 31)
	if endOfYear.After(end) {
		end = endOfYear
	}

	return start, end
}

// CalendarWindow is the window for repeating calendar events:
// [today, today+90].
func CalendarWindow(today time.Time) (start, end time.Time) {
	today = recurrence.Midnight(today)

	return today, today.AddDate(0, 0, lookaheadDays)
}

// ClipWindow narrows a window to an entity's active range. The second return
// is false when the clipped window is empty.
func ClipWindow(start, end, activeFrom time.Time, activeUntil *time.Time) (time.Time, time.Time, bool) {
	activeFrom = recurrence.Midnight(activeFrom)
	if activeFrom.After(start) {
		start = activeFrom
	}

	if activeUntil != nil {
		until := recurrence.Midnight(*activeUntil)
		if until.Before(end) {
			end = until
		}
	}

	if start.After(end) {
		return start, end, false
	}

	return start, end, true
}
