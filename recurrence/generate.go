package recurrence

import (
	"fmt"
	"slices"
	"time"
)

// GenerateOccurrenceDates computes all occurrence dates of the rule inside
// [windowStart, windowEnd] (both inclusive).
//
// The result is deterministic for fixed inputs, strictly ascending, and free
// of duplicates. Validation failures are returned before any date is
// generated; the engine never partially generates and then fails.
func GenerateOccurrenceDates(rule RuleSpec, windowStart, windowEnd time.Time) ([]time.Time, error) {
	windowStart = Midnight(windowStart)
	windowEnd = Midnight(windowEnd)

	if windowStart.After(windowEnd) {
		return nil, ErrInvalidWindow
	}

	if err := rule.Validate(); err != nil {
		return nil, err
	}

	switch rule.Freq {
	case FreqOnetime:
		return generateOnetime(rule, windowStart, windowEnd), nil
	case FreqDaily, FreqIntervalDays:
		return generateDaily(rule, windowStart, windowEnd), nil
	case FreqWeekly:
		return generateWeekly(rule, windowStart, windowEnd), nil
	case FreqMonthly:
		return generateMonthly(rule, windowStart, windowEnd), nil
	case FreqYearly:
		return generateYearly(rule, windowStart, windowEnd), nil
	case FreqMultiDate:
		return generateMultiDate(rule, windowStart, windowEnd), nil
	default:
		return nil, fmt.Errorf("%w: unhandled freq %q", ErrInvalidRule, rule.Freq)
	}
}

func generateOnetime(rule RuleSpec, windowStart, windowEnd time.Time) []time.Time {
	start := Midnight(rule.StartDate)

	if sameOrAfter(start, windowStart) && sameOrBefore(start, windowEnd) {
		return applyUntilCount([]time.Time{start}, rule)
	}

	return []time.Time{}
}

func generateDaily(rule RuleSpec, windowStart, windowEnd time.Time) []time.Time {
	out := make([]time.Time, 0)
	d := Midnight(rule.StartDate)

	for sameOrBefore(d, windowEnd) {
		if sameOrAfter(d, windowStart) {
			out = append(out, d)
		}

		if rule.Count != nil && len(out) >= *rule.Count {
			break
		}

		if rule.UntilDate != nil && sameOrAfter(d, Midnight(*rule.UntilDate)) {
			break
		}

		d = d.AddDate(0, 0, rule.Interval)
	}

	return applyUntilCount(out, rule)
}

func generateWeekly(rule RuleSpec, windowStart, windowEnd time.Time) []time.Time {
	start := Midnight(rule.StartDate)
	blockMonday := mondayOfWeek(start)

	weekdays := slices.Clone(rule.ByWeekday)
	slices.Sort(weekdays)

	out := make([]time.Time, 0)

	for k := 0; ; k++ {
		weekMonday := blockMonday.AddDate(0, 0, k*7*rule.Interval)
		if weekMonday.After(windowEnd) {
			break
		}

		for _, dow := range weekdays {
			d := weekMonday.AddDate(0, 0, int(dow))
			if d.Before(start) || d.After(windowEnd) {
				continue
			}
			if sameOrAfter(d, windowStart) {
				out = append(out, d)
			}
		}

		if rule.Count != nil && len(out) >= *rule.Count {
			break
		}
	}

	slices.SortFunc(out, func(a, b time.Time) int { return a.Compare(b) })

	return applyUntilCount(out, rule)
}

func generateMonthly(rule RuleSpec, windowStart, windowEnd time.Time) []time.Time {
	start := Midnight(rule.StartDate)
	firstOfStartMonth := NewDate(start.Year(), start.Month(), 1)

	out := make([]time.Time, 0)

	for k := 0; ; k++ {
		base := AddMonths(firstOfStartMonth, k*rule.Interval)
		last := LastDayOfMonth(base.Year(), base.Month())

		var day int
		if rule.MonthdayClipToLastDay {
			day = min(rule.ByMonthday, last)
		} else {
			// a day beyond the month's length skips the month entirely
			if rule.ByMonthday > last {
				continue
			}
			day = rule.ByMonthday
		}

		d := NewDate(base.Year(), base.Month(), day)

		if d.Before(start) {
			continue
		}
		if d.After(windowEnd) {
			break
		}
		if sameOrAfter(d, windowStart) {
			out = append(out, d)
		}

		if rule.Count != nil && len(out) >= *rule.Count {
			break
		}
		if rule.UntilDate != nil && sameOrAfter(d, Midnight(*rule.UntilDate)) {
			break
		}
	}

	return applyUntilCount(out, rule)
}

func generateYearly(rule RuleSpec, windowStart, windowEnd time.Time) []time.Time {
	start := Midnight(rule.StartDate)

	out := make([]time.Time, 0)

	for k := 0; ; k++ {
		year := start.Year() + k*rule.Interval

		// clip day-of-month to the target year's month length (non-leap Feb 29)
		day := min(rule.ByMonthdayForYear, LastDayOfMonth(year, rule.ByMonth))
		d := NewDate(year, rule.ByMonth, day)

		if d.Before(start) {
			continue
		}
		if d.After(windowEnd) {
			break
		}
		if sameOrAfter(d, windowStart) {
			out = append(out, d)
		}

		if rule.Count != nil && len(out) >= *rule.Count {
			break
		}
		if rule.UntilDate != nil && sameOrAfter(d, Midnight(*rule.UntilDate)) {
			break
		}
	}

	return applyUntilCount(out, rule)
}

func generateMultiDate(rule RuleSpec, windowStart, windowEnd time.Time) []time.Time {
	start := Midnight(rule.StartDate)

	seen := make(map[time.Time]struct{})
	out := make([]time.Time, 0, len(rule.Dates))

	for _, raw := range rule.Dates {
		d := Midnight(raw)

		if d.Before(start) || d.Before(windowStart) || d.After(windowEnd) {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}

		seen[d] = struct{}{}
		out = append(out, d)
	}

	slices.SortFunc(out, func(a, b time.Time) int { return a.Compare(b) })

	return applyUntilCount(out, rule)
}

// applyUntilCount applies the until-date upper bound and the count cap
// uniformly after frequency-specific generation.
func applyUntilCount(dates []time.Time, rule RuleSpec) []time.Time {
	out := dates

	if rule.UntilDate != nil {
		until := Midnight(*rule.UntilDate)
		filtered := make([]time.Time, 0, len(out))
		for _, d := range out {
			if sameOrBefore(d, until) {
				filtered = append(filtered, d)
			}
		}
		out = filtered
	}

	if rule.Count != nil && len(out) > *rule.Count {
		out = out[:*rule.Count]
	}

	return out
}
