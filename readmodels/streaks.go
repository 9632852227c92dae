package readmodels

import (
	"slices"
	"time"
)

const (
	streakLookbackDays      = 365
	maxOccurrencesForStreak = 500
	doneCountWindowDays     = 30
)

// OccurrenceDay is one scheduled day of a habit's history.
type OccurrenceDay struct {
	Date time.Time
	Done bool
}

// ComputeStreaks derives (current streak, best streak, done count over the
// last 30 days) from the full occurrence history. Recomputing from history
// instead of keeping incremental counters keeps retroactive skips and undos
// correct.
//
// Weekly habits count consecutive ISO weeks with at least one completed
// occurrence; everything else counts consecutive days.
func ComputeStreaks(freq string, days []OccurrenceDay, today time.Time) (current, best, done30 int) {
	today = midnightUTC(today)
	windowStart := today.AddDate(0, 0, -streakLookbackDays)

	allDates := make(map[time.Time]struct{}, len(days))
	doneDates := make(map[time.Time]struct{})

	for _, day := range days {
		d := midnightUTC(day.Date)
		allDates[d] = struct{}{}

		if day.Done {
			doneDates[d] = struct{}{}

			if today.Sub(d).Hours() <= doneCountWindowDays*24 {
				done30++
			}
		}
	}

	if freq == "WEEKLY" {
		current, best = weeklyStreaks(doneDates, today, windowStart)

		return current, best, done30
	}

	current, best = dailyStreaks(allDates, doneDates, today, windowStart)

	return current, best, done30
}

func dailyStreaks(allDates, doneDates map[time.Time]struct{}, today, windowStart time.Time) (current, best int) {
	for d := today; !d.Before(windowStart); d = d.AddDate(0, 0, -1) {
		if _, scheduled := allDates[d]; !scheduled {
			break
		}

		if _, done := doneDates[d]; !done {
			break
		}

		current++
	}

	sortedDates := make([]time.Time, 0, len(allDates))
	for d := range allDates {
		sortedDates = append(sortedDates, d)
	}
	slices.SortFunc(sortedDates, func(a, b time.Time) int { return a.Compare(b) })

	run := 0
	var prev time.Time
	havePrev := false

	for _, d := range sortedDates {
		if _, done := doneDates[d]; done {
			if havePrev && d.Sub(prev).Hours() == 24 {
				run++
			} else {
				run = 1
			}

			best = max(best, run)
			prev = d
			havePrev = true
		} else {
			run = 0
			havePrev = false
		}
	}

	return current, best
}

type isoWeek struct {
	year int
	week int
}

func weeklyStreaks(doneDates map[time.Time]struct{}, today, windowStart time.Time) (current, best int) {
	weeksWithDone := make(map[isoWeek]struct{})
	for d := range doneDates {
		y, w := d.ISOWeek()
		weeksWithDone[isoWeek{year: y, week: w}] = struct{}{}
	}

	for d := today; !d.Before(windowStart); d = d.AddDate(0, 0, -7) {
		y, w := d.ISOWeek()
		if _, done := weeksWithDone[isoWeek{year: y, week: w}]; !done {
			break
		}

		current++
	}

	sortedWeeks := make([]isoWeek, 0, len(weeksWithDone))
	for wk := range weeksWithDone {
		sortedWeeks = append(sortedWeeks, wk)
	}
	slices.SortFunc(sortedWeeks, func(a, b isoWeek) int {
		return mondayOfISOWeek(a).Compare(mondayOfISOWeek(b))
	})

	run := 0
	var prev time.Time
	havePrev := false

	for _, wk := range sortedWeeks {
		monday := mondayOfISOWeek(wk)

		if havePrev && monday.Sub(prev).Hours() == 7*24 {
			run++
		} else {
			run = 1
		}

		best = max(best, run)
		prev = monday
		havePrev = true
	}

	return current, best
}

// mondayOfISOWeek returns the Monday of the given ISO week. January 4th is
// always inside ISO week 1 of its year.
func mondayOfISOWeek(wk isoWeek) time.Time {
	jan4 := time.Date(wk.year, time.January, 4, 0, 0, 0, 0, time.UTC)
	monday := jan4.AddDate(0, 0, -((int(jan4.Weekday()) + 6) % 7))

	return monday.AddDate(0, 0, (wk.week-1)*7)
}

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
