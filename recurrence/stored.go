package recurrence

import (
	"time"
)

// StoredRule is the scalar shape of a recurrence-rule read-model row, as
// maintained by the recurrence-rules projector. It is deliberately free of
// any database types so the conversion stays pure and testable.
type StoredRule struct {
	Freq                  string
	Interval              int
	StartDate             time.Time
	UntilDate             *time.Time
	Count                 *int
	ByWeekday             string // comma-separated tokens, e.g. "MO,TU,FR"
	ByMonthday            *int
	MonthdayClipToLastDay bool
	ByMonth               *int
	ByMonthdayForYear     *int
	DatesJSON             string // JSON array of "YYYY-MM-DD"
}

// SpecFromStored builds a RuleSpec from a stored rule row.
//
// For YEARLY rules a missing by_month or by_monthday_for_year is inferred
// from the start date (falling back to by_monthday for the day), so rules
// created before those fields existed keep generating.
func SpecFromStored(row StoredRule) (RuleSpec, error) {
	byMonth := row.ByMonth
	byMonthdayForYear := row.ByMonthdayForYear

	if Frequency(row.Freq) == FreqYearly {
		if byMonth == nil {
			m := int(row.StartDate.Month())
			byMonth = &m
		}
		if byMonthdayForYear == nil {
			if row.ByMonthday != nil {
				byMonthdayForYear = row.ByMonthday
			} else {
				d := row.StartDate.Day()
				byMonthdayForYear = &d
			}
		}
	}

	dates, datesErr := ParseDatesJSON(row.DatesJSON)
	if datesErr != nil {
		return RuleSpec{}, datesErr
	}

	spec := RuleSpec{
		Freq:                  Frequency(row.Freq),
		Interval:              row.Interval,
		StartDate:             Midnight(row.StartDate),
		Count:                 row.Count,
		ByWeekday:             ParseWeekdays(row.ByWeekday),
		MonthdayClipToLastDay: row.MonthdayClipToLastDay,
		Dates:                 dates,
	}

	if row.UntilDate != nil {
		until := Midnight(*row.UntilDate)
		spec.UntilDate = &until
	}

	if row.ByMonthday != nil {
		spec.ByMonthday = *row.ByMonthday
	}

	if byMonth != nil {
		spec.ByMonth = time.Month(*byMonth)
	}

	if byMonthdayForYear != nil {
		spec.ByMonthdayForYear = *byMonthdayForYear
	}

	return spec, nil
}
