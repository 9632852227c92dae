package readmodels

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/finlifeos/finlife-core-go/adapters"
	"github.com/finlifeos/finlife-core-go/domain"
	"github.com/finlifeos/finlife-core-go/eventlog"
)

const (
	habitsTable           = "habits"
	habitOccurrencesTable = "habit_occurrences"

	colHabitID       = "habit_id"
	colLevel         = "level"
	colCurrentStreak = "current_streak"
	colBestStreak    = "best_streak"
	colDoneCount30d  = "done_count_30d"
	colScheduledDate = "scheduled_date"
)

// Streak thresholds that earn a habit_milestone_reached event.
var milestoneThresholds = []int{7, 14, 30, 60, 100}

// EventAppender is the slice of the event store projectors use to emit
// follow-up events.
type EventAppender interface {
	Append(ctx context.Context, event eventlog.PendingEvent) (eventlog.EventID, error)
}

// HabitsProjector maintains habits, their occurrence statuses, and the
// derived streak columns. On every occurrence status change it recomputes
// streaks from the full history and emits milestone events for newly crossed
// thresholds, deduplicated by idempotency key.
type HabitsProjector struct {
	appender EventAppender
	now      func() time.Time
}

type HabitsOption func(*HabitsProjector)

// WithHabitsClock overrides the clock used for the streak lookback window.
func WithHabitsClock(now func() time.Time) HabitsOption {
	return func(p *HabitsProjector) {
		p.now = now
	}
}

func NewHabitsProjector(appender EventAppender, options ...HabitsOption) *HabitsProjector {
	p := &HabitsProjector{
		appender: appender,
		now:      time.Now,
	}

	for _, option := range options {
		option(p)
	}

	return p
}

func (p *HabitsProjector) Name() string {
	return "habits"
}

func (p *HabitsProjector) EventTypes() []string {
	return []string{
		domain.EventTypeHabitCreated,
		domain.EventTypeHabitUpdated,
		domain.EventTypeHabitArchived,
		domain.EventTypeHabitUnarchived,
		domain.EventTypeHabitOccurrenceCompleted,
		domain.EventTypeHabitOccurrenceSkipped,
		domain.EventTypeHabitOccurrenceReset,
	}
}

func (p *HabitsProjector) Handle(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	switch event.EventType {
	case domain.EventTypeHabitCreated:
		return p.handleCreated(ctx, tx, event)
	case domain.EventTypeHabitUpdated:
		return p.handleUpdated(ctx, tx, event)
	case domain.EventTypeHabitArchived:
		return p.setArchived(ctx, tx, event, true)
	case domain.EventTypeHabitUnarchived:
		return p.setArchived(ctx, tx, event, false)
	case domain.EventTypeHabitOccurrenceCompleted,
		domain.EventTypeHabitOccurrenceSkipped,
		domain.EventTypeHabitOccurrenceReset:
		return p.handleOccurrenceStatus(ctx, tx, event)
	}

	return nil
}

func (p *HabitsProjector) Reset(ctx context.Context, tx adapters.DBTx, accountID eventlog.AccountID) error {
	if err := deleteForAccount(ctx, tx, habitOccurrencesTable, accountID); err != nil {
		return err
	}

	return deleteForAccount(ctx, tx, habitsTable, accountID)
}

func (p *HabitsProjector) handleCreated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeHabitCreated(event.Payload)
	if err != nil {
		return err
	}

	exists, err := rowExists(ctx, tx, habitsTable, goqu.C(colHabitID).Eq(payload.HabitID))
	if err != nil || exists {
		return err
	}

	return execSQL(ctx, tx, dialect.Insert(habitsTable).Rows(goqu.Record{
		colHabitID:       payload.HabitID,
		colAccountID:     payload.AccountID,
		colTitle:         payload.Title,
		colNote:          nullableString(payload.Note),
		colRuleRef:       payload.RuleID,
		colCategoryID:    nullableInt(payload.CategoryID),
		colActiveFrom:    payload.ActiveFrom.String(),
		colActiveUntil:   nullableDate(payload.ActiveUntil),
		colIsArchived:    false,
		colLevel:         payload.Level,
		colCurrentStreak: 0,
		colBestStreak:    0,
		colDoneCount30d:  0,
	}))
}

func (p *HabitsProjector) handleUpdated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeHabitUpdated(event.Payload)
	if err != nil {
		return err
	}

	record := goqu.Record{}
	if payload.Title.Set {
		record[colTitle] = optString(payload.Title)
	}
	if payload.Note.Set {
		record[colNote] = optString(payload.Note)
	}
	if payload.ActiveUntil.Set {
		record[colActiveUntil] = optDate(payload.ActiveUntil)
	}
	if payload.CategoryID.Set {
		record[colCategoryID] = optInt64(payload.CategoryID)
	}
	if payload.IsArchived.Set {
		record[colIsArchived] = optBool(payload.IsArchived)
	}
	if payload.Level.Set {
		record[colLevel] = optInt(payload.Level)
	}

	if len(record) == 0 {
		return nil
	}

	return execSQL(ctx, tx, dialect.Update(habitsTable).
		Set(record).
		Where(goqu.C(colHabitID).Eq(payload.HabitID)))
}

func (p *HabitsProjector) setArchived(ctx context.Context, tx adapters.DBTx, event eventlog.Event, archived bool) error {
	payload, err := domain.DecodeHabitRef(event.Payload)
	if err != nil {
		return err
	}

	return execSQL(ctx, tx, dialect.Update(habitsTable).
		Set(goqu.Record{colIsArchived: archived}).
		Where(goqu.C(colHabitID).Eq(payload.HabitID)))
}

func (p *HabitsProjector) handleOccurrenceStatus(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeHabitOccurrenceStatus(event.Payload)
	if err != nil {
		return err
	}

	if err := p.updateOccurrenceRow(ctx, tx, payload); err != nil {
		return err
	}

	accountID, ruleID, found, err := p.loadHabit(ctx, tx, payload.HabitID)
	if err != nil || !found {
		return err
	}

	today := midnightUTC(p.now())

	freq, err := p.loadRuleFreq(ctx, tx, ruleID)
	if err != nil {
		return err
	}

	history, err := p.loadOccurrenceHistory(ctx, tx, accountID, payload.HabitID, today)
	if err != nil {
		return err
	}

	current, best, done30 := ComputeStreaks(freq, history, today)

	updateErr := execSQL(ctx, tx, dialect.Update(habitsTable).
		Set(goqu.Record{
			colCurrentStreak: current,
			colBestStreak:    best,
			colDoneCount30d:  done30,
		}).
		Where(goqu.C(colHabitID).Eq(payload.HabitID)))
	if updateErr != nil {
		return updateErr
	}

	return p.emitMilestones(ctx, accountID, payload.HabitID, current)
}

func (p *HabitsProjector) updateOccurrenceRow(ctx context.Context, tx adapters.DBTx, payload domain.HabitOccurrenceStatus) error {
	record := goqu.Record{colStatus: payload.Status}

	if payload.Status == domain.OccurrenceStatusDone {
		completedAt := payload.CompletedAt
		if completedAt == nil {
			now := domain.NewTimestamp(p.now())
			completedAt = &now
		}
		record[colCompletedAt] = nullableTimestamp(completedAt)
	} else {
		record[colCompletedAt] = nil
	}

	return execSQL(ctx, tx, dialect.Update(habitOccurrencesTable).
		Set(record).
		Where(goqu.C(colOccID).Eq(payload.OccurrenceID)))
}

func (p *HabitsProjector) loadHabit(ctx context.Context, tx adapters.DBTx, habitID int64) (accountID, ruleID int64, found bool, err error) {
	rows, err := querySQL(ctx, tx, dialect.From(habitsTable).
		Select(colAccountID, colRuleRef).
		Where(goqu.C(colHabitID).Eq(habitID)).
		Limit(1))
	if err != nil {
		return 0, 0, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return 0, 0, false, nil
	}

	if scanErr := rows.Scan(&accountID, &ruleID); scanErr != nil {
		return 0, 0, false, scanErr
	}

	return accountID, ruleID, true, nil
}

func (p *HabitsProjector) loadRuleFreq(ctx context.Context, tx adapters.DBTx, ruleID int64) (string, error) {
	rows, err := querySQL(ctx, tx, dialect.From(recurrenceRulesTable).
		Select(colFreq).
		Where(goqu.C(colRuleID).Eq(ruleID)).
		Limit(1))
	if err != nil {
		return "", err
	}
	defer rows.Close()

	if !rows.Next() {
		return "DAILY", nil
	}

	var freq string
	if scanErr := rows.Scan(&freq); scanErr != nil {
		return "", scanErr
	}

	return freq, nil
}

func (p *HabitsProjector) loadOccurrenceHistory(ctx context.Context, tx adapters.DBTx, accountID, habitID int64, today time.Time) ([]OccurrenceDay, error) {
	windowStart := today.AddDate(0, 0, -streakLookbackDays)

	rows, err := querySQL(ctx, tx, dialect.From(habitOccurrencesTable).
		Select(colScheduledDate, colStatus).
		Where(
			goqu.C(colAccountID).Eq(accountID),
			goqu.C(colHabitID).Eq(habitID),
			goqu.C(colScheduledDate).Gte(windowStart.Format("2006-01-02")),
			goqu.C(colScheduledDate).Lte(today.Format("2006-01-02")),
		).
		Order(goqu.C(colScheduledDate).Desc()).
		Limit(maxOccurrencesForStreak))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []OccurrenceDay

	for rows.Next() {
		var (
			scheduled time.Time
			status    string
		)

		if scanErr := rows.Scan(&scheduled, &status); scanErr != nil {
			return nil, scanErr
		}

		history = append(history, OccurrenceDay{
			Date: scheduled,
			Done: status == domain.OccurrenceStatusDone,
		})
	}

	return history, nil
}

// emitMilestones appends a habit_milestone_reached event for every threshold
// the current streak has crossed. The idempotency key makes each (habit,
// threshold) pair fire at most once, also across batch retries.
func (p *HabitsProjector) emitMilestones(ctx context.Context, accountID, habitID int64, currentStreak int) error {
	if p.appender == nil {
		return nil
	}

	for _, threshold := range milestoneThresholds {
		if currentStreak < threshold {
			break
		}

		payload, err := domain.EncodePayload(domain.HabitMilestoneReached{
			HabitID:       habitID,
			Threshold:     threshold,
			CurrentStreak: currentStreak,
			ReachedAt:     domain.NewTimestamp(p.now()),
		})
		if err != nil {
			return err
		}

		key := fmt.Sprintf("habit-milestone-%d-%d", habitID, threshold)

		pending, err := eventlog.BuildPendingEventWithKey(accountID, domain.EventTypeHabitMilestoneReached, payload, p.now(), key)
		if err != nil {
			return err
		}

		if _, appendErr := p.appender.Append(ctx, pending); appendErr != nil {
			if errors.Is(appendErr, eventlog.ErrIdempotencyConflict) {
				continue
			}

			return appendErr
		}
	}

	return nil
}
