package recurrence

import "time"

// NewDate builds a date value: the given day at UTC midnight.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Midnight truncates a timestamp to its UTC calendar date.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return NewDate(y, m, d)
}

// LastDayOfMonth returns the number of days in the given month.
func LastDayOfMonth(year int, month time.Month) int {
	// day 0 of the next month is the last day of this month
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths steps n months forward from d, clipping the day of month to the
// target month's length (Jan 31 + 1 month = Feb 28/29).
func AddMonths(d time.Time, n int) time.Time {
	month := int(d.Month()) - 1 + n
	year := d.Year() + month/12
	month = month % 12

	if month < 0 {
		month += 12
		year--
	}

	targetMonth := time.Month(month + 1)
	day := min(d.Day(), LastDayOfMonth(year, targetMonth))

	return NewDate(year, targetMonth, day)
}

// weekdayOf maps Go's Sunday=0 weekday to the engine's Monday=0 numbering.
func weekdayOf(d time.Time) Weekday {
	return Weekday((int(d.Weekday()) + 6) % 7)
}

// mondayOfWeek returns the Monday of the week containing d.
func mondayOfWeek(d time.Time) time.Time {
	return d.AddDate(0, 0, -int(weekdayOf(d)))
}

func sameOrBefore(a, b time.Time) bool {
	return !a.After(b)
}

func sameOrAfter(a, b time.Time) bool {
	return !a.Before(b)
}
