package recurrence

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var ErrInvalidRule = errors.New("invalid recurrence rule")
var ErrInvalidWindow = errors.New("window start must be <= window end")
var ErrInvalidDatesJSON = errors.New("invalid dates json")

// Frequency names the recurrence pattern family of a rule.
type Frequency string

const (
	FreqOnetime      Frequency = "ONETIME"
	FreqDaily        Frequency = "DAILY"
	FreqWeekly       Frequency = "WEEKLY"
	FreqMonthly      Frequency = "MONTHLY"
	FreqYearly       Frequency = "YEARLY"
	FreqIntervalDays Frequency = "INTERVAL_DAYS"
	FreqMultiDate    Frequency = "MULTI_DATE"
)

var validFrequencies = map[Frequency]struct{}{
	FreqOnetime:      {},
	FreqDaily:        {},
	FreqWeekly:       {},
	FreqMonthly:      {},
	FreqYearly:       {},
	FreqIntervalDays: {},
	FreqMultiDate:    {},
}

// Weekday numbers Monday=0 .. Sunday=6, matching the MO..SU wire tokens.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayTokens = map[string]Weekday{
	"MO": Monday,
	"TU": Tuesday,
	"WE": Wednesday,
	"TH": Thursday,
	"FR": Friday,
	"SA": Saturday,
	"SU": Sunday,
}

// RuleSpec is the immutable description of a recurrence pattern. One RuleSpec
// is attached to exactly one recurring entity (habit, task template,
// operation template, or calendar event).
//
// Zero values mean "unset" for ByMonthday, ByMonth, and ByMonthdayForYear;
// UntilDate and Count use nil for "unset".
type RuleSpec struct {
	Freq                  Frequency
	Interval              int
	StartDate             time.Time
	UntilDate             *time.Time
	Count                 *int
	ByWeekday             []Weekday   // WEEKLY only
	ByMonthday            int         // MONTHLY only, 1..31
	MonthdayClipToLastDay bool        // MONTHLY only
	ByMonth               time.Month  // YEARLY only
	ByMonthdayForYear     int         // YEARLY only, 1..31
	Dates                 []time.Time // MULTI_DATE only
}

// Validate fails fast with a descriptive error before any date is generated.
func (r RuleSpec) Validate() error {
	if r.Interval < 1 {
		return fmt.Errorf("%w: interval must be >= 1, got %d", ErrInvalidRule, r.Interval)
	}

	if _, ok := validFrequencies[r.Freq]; !ok {
		return fmt.Errorf("%w: invalid freq %q", ErrInvalidRule, r.Freq)
	}

	if r.Count != nil && *r.Count < 1 {
		return fmt.Errorf("%w: count must be >= 1 when set, got %d", ErrInvalidRule, *r.Count)
	}

	switch r.Freq {
	case FreqWeekly:
		if len(r.ByWeekday) == 0 {
			return fmt.Errorf("%w: WEEKLY requires by_weekday", ErrInvalidRule)
		}
	case FreqMonthly:
		if r.ByMonthday < 1 || r.ByMonthday > 31 {
			return fmt.Errorf("%w: MONTHLY requires by_monthday in 1..31, got %d", ErrInvalidRule, r.ByMonthday)
		}
	case FreqYearly:
		if r.ByMonth < time.January || r.ByMonth > time.December {
			return fmt.Errorf("%w: YEARLY requires by_month in 1..12, got %d", ErrInvalidRule, r.ByMonth)
		}
		if r.ByMonthdayForYear < 1 || r.ByMonthdayForYear > 31 {
			return fmt.Errorf("%w: YEARLY requires by_monthday_for_year in 1..31, got %d", ErrInvalidRule, r.ByMonthdayForYear)
		}
	case FreqMultiDate:
		if r.Dates == nil {
			return fmt.Errorf("%w: MULTI_DATE requires dates", ErrInvalidRule)
		}
	case FreqOnetime, FreqDaily, FreqIntervalDays:
		// no frequency-specific parameters
	}

	return nil
}

// ParseWeekdays parses a comma-separated weekday token string such as
// "MO,TU,FR" into a sorted, deduplicated weekday set. Unknown tokens are
// ignored; an empty result yields nil.
func ParseWeekdays(s string) []Weekday {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	seen := make(map[Weekday]struct{})
	for _, part := range strings.Split(strings.ToUpper(s), ",") {
		if wd, ok := weekdayTokens[strings.TrimSpace(part)]; ok {
			seen[wd] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return nil
	}

	out := make([]Weekday, 0, len(seen))
	for wd := range seen {
		out = append(out, wd)
	}
	slices.Sort(out)

	return out
}

// ParseDatesJSON parses a JSON array of "YYYY-MM-DD" strings into a sorted,
// deduplicated list of dates. Empty input yields nil.
func ParseDatesJSON(s string) ([]time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var raw []string
	if err := jsoniter.ConfigFastest.UnmarshalFromString(s, &raw); err != nil {
		return nil, errors.Join(ErrInvalidDatesJSON, err)
	}

	seen := make(map[time.Time]struct{})
	out := make([]time.Time, 0, len(raw))

	for _, item := range raw {
		trimmed := strings.TrimSpace(item)
		if len(trimmed) > 10 {
			trimmed = trimmed[:10]
		}

		d, parseErr := time.ParseInLocation("2006-01-02", trimmed, time.UTC)
		if parseErr != nil {
			return nil, errors.Join(ErrInvalidDatesJSON, parseErr)
		}

		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}

	slices.SortFunc(out, func(a, b time.Time) int { return a.Compare(b) })

	return out, nil
}
