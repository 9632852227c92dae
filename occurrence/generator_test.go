package occurrence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlifeos/finlife-core-go/occurrence"
	"github.com/finlifeos/finlife-core-go/testutil/postgreswrapper"
)

const generatorAccountID = "1"

func seed(t *testing.T, wrapper postgreswrapper.Wrapper, query string) {
	t.Helper()

	_, err := wrapper.DB().Exec(context.Background(), query)
	require.NoError(t, err, "error seeding test row")
}

// seedRecurringEntities populates rules, one habit, one task template, one
// operation template, and one repeating calendar event with reminders.
func seedRecurringEntities(t *testing.T, wrapper postgreswrapper.Wrapper) {
	t.Helper()

	seed(t, wrapper, `INSERT INTO recurrence_rules (rule_id, account_id, freq, "interval", start_date)
		VALUES (1, `+generatorAccountID+`, 'DAILY', 1, '2025-05-01')`)
	seed(t, wrapper, `INSERT INTO recurrence_rules (rule_id, account_id, freq, "interval", start_date, "count", by_weekday)
		VALUES (2, `+generatorAccountID+`, 'WEEKLY', 1, '2025-06-02', 4, 'MO')`)
	seed(t, wrapper, `INSERT INTO recurrence_rules (rule_id, account_id, freq, "interval", start_date, by_monthday, monthday_clip_to_last_day)
		VALUES (3, `+generatorAccountID+`, 'MONTHLY', 1, '2025-05-31', 31, TRUE)`)
	seed(t, wrapper, `INSERT INTO recurrence_rules (rule_id, account_id, freq, "interval", start_date, dates_json)
		VALUES (4, `+generatorAccountID+`, 'MULTI_DATE', 1, '2025-05-01', '["2025-06-15","2025-07-01","2025-05-01"]')`)

	// WEEKLY without weekdays never validates; its habit must be skipped
	seed(t, wrapper, `INSERT INTO recurrence_rules (rule_id, account_id, freq, "interval", start_date)
		VALUES (5, `+generatorAccountID+`, 'WEEKLY', 1, '2025-06-01')`)

	seed(t, wrapper, `INSERT INTO habits (habit_id, account_id, title, rule_id, active_from, active_until)
		VALUES (10, `+generatorAccountID+`, 'Stretch', 1, '2025-06-01', '2025-06-05')`)
	seed(t, wrapper, `INSERT INTO habits (habit_id, account_id, title, rule_id, active_from)
		VALUES (11, `+generatorAccountID+`, 'Broken', 5, '2025-06-01')`)

	seed(t, wrapper, `INSERT INTO task_templates (template_id, account_id, title, rule_id, active_from)
		VALUES (20, `+generatorAccountID+`, 'Water plants', 2, '2025-05-01')`)

	seed(t, wrapper, `INSERT INTO operation_templates (template_id, account_id, title, rule_id, active_from, kind, amount)
		VALUES (30, `+generatorAccountID+`, 'Rent', 3, '2025-05-01', 'EXPENSE', 45000)`)

	seed(t, wrapper, `INSERT INTO calendar_events (event_id, account_id, title, category_id, importance, repeat_rule_id, is_active)
		VALUES (40, `+generatorAccountID+`, 'Team call', 1, 2, 4, TRUE)`)
	seed(t, wrapper, `INSERT INTO event_default_reminders (event_id, channel, mode, offset_minutes, is_enabled)
		VALUES (40, 'PUSH', 'OFFSET', 30, TRUE)`)
	seed(t, wrapper, `INSERT INTO event_default_reminders (event_id, channel, mode, offset_minutes, is_enabled)
		VALUES (40, 'EMAIL', 'OFFSET', 60, FALSE)`)
}

func Test_GenerateAll_FillsMissingOccurrencesOnce(t *testing.T) {
	// setup
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	postgreswrapper.CleanUp(t, wrapper)

	today := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	generator, err := occurrence.NewGenerator(wrapper.DB(), occurrence.WithClock(func() time.Time { return today }))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// arrange
	seedRecurringEntities(t, wrapper)

	// act
	counts, err := generator.GenerateAll(ctx, 1)

	// assert
	require.NoError(t, err)

	// daily habit clipped to its active range June 1..5
	assert.Equal(t, 5, counts["habits"])
	assert.Equal(t, 5, postgreswrapper.CountRows(t, wrapper, "habit_occurrences", "habit_id = 10"))
	assert.Equal(t, 0, postgreswrapper.CountRows(t, wrapper, "habit_occurrences", "habit_id = 11"),
		"an invalid rule skips its entity instead of failing the run")

	// weekly Mondays capped by count 4: June 2, 9, 16, 23
	assert.Equal(t, 4, counts["tasks"])
	assert.Equal(t, 1, postgreswrapper.CountRows(t, wrapper, "task_occurrences",
		"template_id = 20 AND scheduled_date = '2025-06-23'"))

	// monthly day-31 clipped to each month's last day, May 31 through Dec 31
	assert.Equal(t, 8, counts["operations"])
	assert.Equal(t, 1, postgreswrapper.CountRows(t, wrapper, "operation_occurrences",
		"template_id = 30 AND scheduled_date = '2025-06-30'"))

	// multi-date events inside [today, today+90]: June 15 and July 1
	assert.Equal(t, 2, counts["events"])

	// act again: every date already exists, so nothing is inserted
	rerunCounts, rerunErr := generator.GenerateAll(ctx, 1)

	// assert
	require.NoError(t, rerunErr)
	assert.Equal(t, 0, rerunCounts["habits"])
	assert.Equal(t, 0, rerunCounts["tasks"])
	assert.Equal(t, 0, rerunCounts["operations"])
	assert.Equal(t, 0, rerunCounts["events"])
}

func Test_GenerateEventOccurrences_CopiesEnabledDefaultReminders(t *testing.T) {
	// setup
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	postgreswrapper.CleanUp(t, wrapper)

	today := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	generator, err := occurrence.NewGenerator(wrapper.DB(), occurrence.WithClock(func() time.Time { return today }))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// arrange
	seedRecurringEntities(t, wrapper)

	// act
	created, err := generator.GenerateEventOccurrences(ctx, 1)

	// assert
	require.NoError(t, err)
	require.Equal(t, 2, created)

	assert.Equal(t, 2, postgreswrapper.CountRows(t, wrapper, "event_occurrences",
		"event_id = 40 AND source = 'rule'"))

	// one enabled PUSH reminder per occurrence; the disabled EMAIL one stays behind
	assert.Equal(t, 2, postgreswrapper.CountRows(t, wrapper, "event_reminders", "channel = 'PUSH'"))
	assert.Equal(t, 0, postgreswrapper.CountRows(t, wrapper, "event_reminders", "channel = 'EMAIL'"))
}

func Test_NewGenerator_RejectsNilAdapter(t *testing.T) {
	_, err := occurrence.NewGenerator(nil)

	assert.ErrorIs(t, err, occurrence.ErrNilDatabaseAdapter)
}
