package occurrence

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/finlifeos/finlife-core-go/adapters"
	"github.com/finlifeos/finlife-core-go/recurrence"
)

var ErrNilDatabaseAdapter = errors.New("database adapter must not be nil")
var ErrBuildingQuery = errors.New("building query failed")

var dialect = goqu.Dialect("postgres")

const (
	habitsTable               = "habits"
	habitOccurrencesTable     = "habit_occurrences"
	taskTemplatesTable        = "task_templates"
	taskOccurrencesTable      = "task_occurrences"
	operationTemplatesTable   = "operation_templates"
	operationOccurrencesTable = "operation_occurrences"
	calendarEventsTable       = "calendar_events"
	eventOccurrencesTable     = "event_occurrences"
	defaultRemindersTable     = "event_default_reminders"
	remindersTable            = "event_reminders"
	rulesTable                = "recurrence_rules"

	colID            = "id"
	colAccountID     = "account_id"
	colHabitID       = "habit_id"
	colTemplateID    = "template_id"
	colEventID       = "event_id"
	colRuleID        = "rule_id"
	colRepeatRuleID  = "repeat_rule_id"
	colActiveFrom    = "active_from"
	colActiveUntil   = "active_until"
	colIsArchived    = "is_archived"
	colIsActive      = "is_active"
	colScheduledDate = "scheduled_date"
	colStartDate     = "start_date"
	colStatus        = "status"
	colIsCancelled   = "is_cancelled"
	colSource        = "source"
	colOccurrenceID  = "occurrence_id"
	colChannel       = "channel"
	colMode          = "mode"
	colOffsetMinutes = "offset_minutes"
	colFixedTime     = "fixed_time"
	colIsEnabled     = "is_enabled"

	statusActive = "ACTIVE"
	sourceRule   = "rule"

	dateLayout = "2006-01-02"
)

const (
	logMsgEntitySkipped = "occurrence generation skipped for entity"
	logAttrEntityKind   = "entity_kind"
	logAttrEntityID     = "entity_id"
	logAttrError        = "error"
)

// Logger interface for per-entity skip reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Generator inserts missing occurrence rows for every active recurring
// entity of an account. Idempotent by construction: existing dates are
// diffed away before insert.
type Generator struct {
	db     adapters.DBAdapter
	logger Logger
	now    func() time.Time
}

// GeneratorOption defines a functional option for configuring a Generator.
type GeneratorOption func(*Generator)

// WithLogger sets the logger for per-entity skips.
func WithLogger(logger Logger) GeneratorOption {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithClock overrides the clock the windows are computed from.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.now = now
	}
}

func NewGenerator(db adapters.DBAdapter, options ...GeneratorOption) (*Generator, error) {
	if db == nil {
		return nil, ErrNilDatabaseAdapter
	}

	g := &Generator{
		db:  db,
		now: time.Now,
	}

	for _, option := range options {
		option(g)
	}

	return g, nil
}

// GenerateAll generates every kind of occurrence and returns new-row counts
// per kind.
func (g *Generator) GenerateAll(ctx context.Context, accountID int64) (map[string]int, error) {
	counts := make(map[string]int, 4)

	habits, err := g.GenerateHabitOccurrences(ctx, accountID)
	if err != nil {
		return counts, err
	}
	counts["habits"] = habits

	tasks, err := g.GenerateTaskOccurrences(ctx, accountID)
	if err != nil {
		return counts, err
	}
	counts["tasks"] = tasks

	operations, err := g.GenerateOperationOccurrences(ctx, accountID)
	if err != nil {
		return counts, err
	}
	counts["operations"] = operations

	events, err := g.GenerateEventOccurrences(ctx, accountID)
	if err != nil {
		return counts, err
	}
	counts["events"] = events

	return counts, nil
}

// recurringEntity is the shared shape of habits and templates.
type recurringEntity struct {
	id          int64
	ruleID      int64
	activeFrom  time.Time
	activeUntil *time.Time
}

// GenerateHabitOccurrences returns the number of new rows.
func (g *Generator) GenerateHabitOccurrences(ctx context.Context, accountID int64) (int, error) {
	return g.generateForEntities(ctx, accountID, "habit",
		habitsTable, colHabitID, habitOccurrencesTable, colHabitID)
}

// GenerateTaskOccurrences returns the number of new rows.
func (g *Generator) GenerateTaskOccurrences(ctx context.Context, accountID int64) (int, error) {
	return g.generateForEntities(ctx, accountID, "task_template",
		taskTemplatesTable, colTemplateID, taskOccurrencesTable, colTemplateID)
}

// GenerateOperationOccurrences returns the number of new rows.
func (g *Generator) GenerateOperationOccurrences(ctx context.Context, accountID int64) (int, error) {
	return g.generateForEntities(ctx, accountID, "operation_template",
		operationTemplatesTable, colTemplateID, operationOccurrencesTable, colTemplateID)
}

func (g *Generator) generateForEntities(
	ctx context.Context,
	accountID int64,
	entityKind string,
	entityTable, entityIDCol, occurrenceTable, occurrenceFKCol string,
) (int, error) {

	entities, err := g.loadActiveEntities(ctx, accountID, entityTable, entityIDCol)
	if err != nil {
		return 0, err
	}

	windowStart, windowEnd := GenerationWindow(g.now())
	count := 0

	for _, entity := range entities {
		rule, found, ruleErr := g.loadRule(ctx, entity.ruleID)
		if ruleErr != nil {
			return count, ruleErr
		}
		if !found {
			continue
		}

		start, end, ok := ClipWindow(windowStart, windowEnd, entity.activeFrom, entity.activeUntil)
		if !ok {
			continue
		}

		spec, specErr := recurrence.SpecFromStored(rule)
		if specErr != nil {
			g.logEntitySkipped(entityKind, entity.id, specErr)
			continue
		}

		dates, genErr := recurrence.GenerateOccurrenceDates(spec, start, end)
		if genErr != nil {
			g.logEntitySkipped(entityKind, entity.id, genErr)
			continue
		}

		missing, diffErr := g.missingDates(ctx, accountID, occurrenceTable, occurrenceFKCol, entity.id, start, end, dates)
		if diffErr != nil {
			return count, diffErr
		}

		if len(missing) == 0 {
			continue
		}

		rows := make([]any, 0, len(missing))
		for _, d := range missing {
			rows = append(rows, goqu.Record{
				colAccountID:     accountID,
				occurrenceFKCol:  entity.id,
				colScheduledDate: d.Format(dateLayout),
				colStatus:        statusActive,
			})
		}

		if insertErr := g.exec(ctx, dialect.Insert(occurrenceTable).Rows(rows...)); insertErr != nil {
			return count, insertErr
		}

		count += len(missing)
	}

	return count, nil
}

// GenerateEventOccurrences generates rule-sourced occurrences for repeating
// calendar events and copies each event's enabled default reminders onto
// every new occurrence. Returns the number of new rows.
func (g *Generator) GenerateEventOccurrences(ctx context.Context, accountID int64) (int, error) {
	events, err := g.loadRepeatingEvents(ctx, accountID)
	if err != nil {
		return 0, err
	}

	windowStart, windowEnd := CalendarWindow(g.now())
	count := 0

	for _, event := range events {
		rule, found, ruleErr := g.loadRule(ctx, event.ruleID)
		if ruleErr != nil {
			return count, ruleErr
		}
		if !found {
			continue
		}

		spec, specErr := recurrence.SpecFromStored(rule)
		if specErr != nil {
			g.logEntitySkipped("calendar_event", event.id, specErr)
			continue
		}

		dates, genErr := recurrence.GenerateOccurrenceDates(spec, windowStart, windowEnd)
		if genErr != nil {
			g.logEntitySkipped("calendar_event", event.id, genErr)
			continue
		}

		existing, existErr := g.existingEventDates(ctx, accountID, event.id, windowStart, windowEnd)
		if existErr != nil {
			return count, existErr
		}

		reminders, remErr := g.loadDefaultReminders(ctx, event.id)
		if remErr != nil {
			return count, remErr
		}

		for _, d := range dates {
			if _, present := existing[d]; present {
				continue
			}

			occurrenceID, insertErr := g.insertEventOccurrence(ctx, accountID, event.id, d)
			if insertErr != nil {
				return count, insertErr
			}

			if copyErr := g.copyReminders(ctx, occurrenceID, reminders); copyErr != nil {
				return count, copyErr
			}

			count++
		}
	}

	return count, nil
}

func (g *Generator) loadActiveEntities(ctx context.Context, accountID int64, table, idCol string) ([]recurringEntity, error) {
	rows, err := g.query(ctx, dialect.From(table).
		Select(idCol, colRuleID, colActiveFrom, colActiveUntil).
		Where(
			goqu.C(colAccountID).Eq(accountID),
			goqu.C(colIsArchived).IsFalse(),
		).
		Order(goqu.C(idCol).Asc()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []recurringEntity

	for rows.Next() {
		var (
			entity      recurringEntity
			activeUntil *time.Time
		)

		if scanErr := rows.Scan(&entity.id, &entity.ruleID, &entity.activeFrom, &activeUntil); scanErr != nil {
			return nil, scanErr
		}

		entity.activeUntil = activeUntil
		entities = append(entities, entity)
	}

	return entities, nil
}

type repeatingEvent struct {
	id     int64
	ruleID int64
}

func (g *Generator) loadRepeatingEvents(ctx context.Context, accountID int64) ([]repeatingEvent, error) {
	rows, err := g.query(ctx, dialect.From(calendarEventsTable).
		Select(colEventID, colRepeatRuleID).
		Where(
			goqu.C(colAccountID).Eq(accountID),
			goqu.C(colIsActive).IsTrue(),
			goqu.C(colRepeatRuleID).IsNotNull(),
		).
		Order(goqu.C(colEventID).Asc()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []repeatingEvent

	for rows.Next() {
		var event repeatingEvent

		if scanErr := rows.Scan(&event.id, &event.ruleID); scanErr != nil {
			return nil, scanErr
		}

		events = append(events, event)
	}

	return events, nil
}

func (g *Generator) loadRule(ctx context.Context, ruleID int64) (recurrence.StoredRule, bool, error) {
	rows, err := g.query(ctx, dialect.From(rulesTable).
		Select("freq", "interval", colStartDate, "until_date", "count", "by_weekday",
			"by_monthday", "monthday_clip_to_last_day", "by_month", "by_monthday_for_year", "dates_json").
		Where(goqu.C(colRuleID).Eq(ruleID)).
		Limit(1))
	if err != nil {
		return recurrence.StoredRule{}, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return recurrence.StoredRule{}, false, nil
	}

	var (
		rule      recurrence.StoredRule
		untilDate *time.Time
		byWeekday *string
		datesJSON *string
	)

	scanErr := rows.Scan(
		&rule.Freq,
		&rule.Interval,
		&rule.StartDate,
		&untilDate,
		&rule.Count,
		&byWeekday,
		&rule.ByMonthday,
		&rule.MonthdayClipToLastDay,
		&rule.ByMonth,
		&rule.ByMonthdayForYear,
		&datesJSON,
	)
	if scanErr != nil {
		return recurrence.StoredRule{}, false, scanErr
	}

	rule.UntilDate = untilDate
	if byWeekday != nil {
		rule.ByWeekday = *byWeekday
	}
	if datesJSON != nil {
		rule.DatesJSON = *datesJSON
	}

	return rule, true, nil
}

// missingDates diffs generated dates against the rows already present in the
// window, in one query per entity.
func (g *Generator) missingDates(
	ctx context.Context,
	accountID int64,
	occurrenceTable, fkCol string,
	entityID int64,
	start, end time.Time,
	dates []time.Time,
) ([]time.Time, error) {

	if len(dates) == 0 {
		return nil, nil
	}

	rows, err := g.query(ctx, dialect.From(occurrenceTable).
		Select(colScheduledDate).
		Where(
			goqu.C(colAccountID).Eq(accountID),
			goqu.C(fkCol).Eq(entityID),
			goqu.C(colScheduledDate).Gte(start.Format(dateLayout)),
			goqu.C(colScheduledDate).Lte(end.Format(dateLayout)),
		))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	existing := make(map[time.Time]struct{})

	for rows.Next() {
		var d time.Time
		if scanErr := rows.Scan(&d); scanErr != nil {
			return nil, scanErr
		}

		existing[recurrence.Midnight(d)] = struct{}{}
	}

	missing := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		if _, present := existing[d]; !present {
			missing = append(missing, d)
		}
	}

	return missing, nil
}

func (g *Generator) existingEventDates(ctx context.Context, accountID, eventID int64, start, end time.Time) (map[time.Time]struct{}, error) {
	rows, err := g.query(ctx, dialect.From(eventOccurrencesTable).
		Select(colStartDate).
		Where(
			goqu.C(colAccountID).Eq(accountID),
			goqu.C(colEventID).Eq(eventID),
			goqu.C(colSource).Eq(sourceRule),
			goqu.C(colStartDate).Gte(start.Format(dateLayout)),
			goqu.C(colStartDate).Lte(end.Format(dateLayout)),
		))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	existing := make(map[time.Time]struct{})

	for rows.Next() {
		var d time.Time
		if scanErr := rows.Scan(&d); scanErr != nil {
			return nil, scanErr
		}

		existing[recurrence.Midnight(d)] = struct{}{}
	}

	return existing, nil
}

type defaultReminder struct {
	channel       string
	mode          string
	offsetMinutes *int
	fixedTime     *string
}

func (g *Generator) loadDefaultReminders(ctx context.Context, eventID int64) ([]defaultReminder, error) {
	rows, err := g.query(ctx, dialect.From(defaultRemindersTable).
		Select(colChannel, colMode, colOffsetMinutes, colFixedTime).
		Where(
			goqu.C(colEventID).Eq(eventID),
			goqu.C(colIsEnabled).IsTrue(),
		))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []defaultReminder

	for rows.Next() {
		var reminder defaultReminder

		scanErr := rows.Scan(&reminder.channel, &reminder.mode, &reminder.offsetMinutes, &reminder.fixedTime)
		if scanErr != nil {
			return nil, scanErr
		}

		reminders = append(reminders, reminder)
	}

	return reminders, nil
}

// insertEventOccurrence inserts one rule-sourced, all-day occurrence and
// returns its id for reminder copying.
func (g *Generator) insertEventOccurrence(ctx context.Context, accountID, eventID int64, date time.Time) (int64, error) {
	builder := dialect.Insert(eventOccurrencesTable).
		Rows(goqu.Record{
			colAccountID:   accountID,
			colEventID:     eventID,
			colStartDate:   date.Format(dateLayout),
			colIsCancelled: false,
			colSource:      sourceRule,
		}).
		Returning(colID)

	query, _, buildErr := builder.ToSQL()
	if buildErr != nil {
		return 0, errors.Join(ErrBuildingQuery, buildErr)
	}

	rows, err := g.db.Query(ctx, query)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	if !rows.Next() {
		return 0, errors.New("insert returned no id")
	}

	var occurrenceID int64
	if scanErr := rows.Scan(&occurrenceID); scanErr != nil {
		return 0, scanErr
	}

	return occurrenceID, nil
}

func (g *Generator) copyReminders(ctx context.Context, occurrenceID int64, reminders []defaultReminder) error {
	if len(reminders) == 0 {
		return nil
	}

	rows := make([]any, 0, len(reminders))
	for _, reminder := range reminders {
		record := goqu.Record{
			colOccurrenceID: occurrenceID,
			colChannel:      reminder.channel,
			colMode:         reminder.mode,
			colIsEnabled:    true,
		}

		if reminder.offsetMinutes != nil {
			record[colOffsetMinutes] = *reminder.offsetMinutes
		} else {
			record[colOffsetMinutes] = nil
		}

		if reminder.fixedTime != nil {
			record[colFixedTime] = *reminder.fixedTime
		} else {
			record[colFixedTime] = nil
		}

		rows = append(rows, record)
	}

	return g.exec(ctx, dialect.Insert(remindersTable).Rows(rows...))
}

func (g *Generator) exec(ctx context.Context, builder sqlBuilder) error {
	query, err := buildSQL(builder)
	if err != nil {
		return err
	}

	_, execErr := g.db.Exec(ctx, query)

	return execErr
}

func (g *Generator) query(ctx context.Context, builder sqlBuilder) (adapters.DBRows, error) {
	query, err := buildSQL(builder)
	if err != nil {
		return nil, err
	}

	return g.db.Query(ctx, query)
}

type sqlBuilder interface {
	ToSQL() (string, []interface{}, error)
}

func buildSQL(builder sqlBuilder) (string, error) {
	query, _, err := builder.ToSQL()
	if err != nil {
		return "", errors.Join(ErrBuildingQuery, err)
	}

	return query, nil
}

func (g *Generator) logEntitySkipped(entityKind string, entityID int64, err error) {
	if g.logger != nil {
		g.logger.Warn(logMsgEntitySkipped,
			logAttrEntityKind, entityKind,
			logAttrEntityID, entityID,
			logAttrError, err.Error(),
		)
	}
}
