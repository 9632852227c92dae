package readmodels

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/finlifeos/finlife-core-go/adapters"
	"github.com/finlifeos/finlife-core-go/domain"
	"github.com/finlifeos/finlife-core-go/eventlog"
)

const (
	xpEventsTable    = "xp_events"
	userXpStateTable = "user_xp_state"

	colUserID        = "user_id"
	colSourceEventID = "source_event_id"
	colXpAmount      = "xp_amount"
	colReason        = "reason"
	colTotalXp       = "total_xp"
	colUserLevel     = "level"
	colLevelXp       = "current_level_xp"
	colXpToNext      = "xp_to_next_level"
)

const (
	baseTaskCompletedXP  = 10
	bonusEarlyCompleteXP = 2
)

// XP awarded per event type.
var xpRules = map[string]int{
	domain.EventTypeTaskCompleted:            baseTaskCompletedXP,
	domain.EventTypeTaskOccurrenceCompleted:  10,
	domain.EventTypeHabitOccurrenceCompleted: 3,
	domain.EventTypeTransactionCreated:       5,
	domain.EventTypeGoalAchieved:             200,
}

// PreviewTaskXP returns the XP for completing a task: the base award, plus
// the early bonus when the completion day (home timezone) falls strictly
// before the due date. Single source of truth for the bonus rule.
func PreviewTaskXP(dueDate *time.Time, completedDay time.Time) int {
	if dueDate != nil && midnightUTC(completedDay).Before(midnightUTC(*dueDate)) {
		return baseTaskCompletedXP + bonusEarlyCompleteXP
	}

	return baseTaskCompletedXP
}

// ComputeLevel derives (level, XP inside the current level, XP the current
// level needs) from a total. Completing level N costs 100*N*N XP.
func ComputeLevel(totalXP int) (level, currentLevelXP, xpToNextLevel int) {
	level = 1
	accumulated := 0

	for {
		needed := 100 * level * level
		if totalXP < accumulated+needed {
			break
		}

		accumulated += needed
		level++
	}

	return level, totalXP - accumulated, 100 * level * level
}

// XpProjector awards XP for completed tasks, habits, and transactions.
//
// The xp_events table keys awards by source event id, so replaying the same
// log event never double-awards.
type XpProjector struct{}

func NewXpProjector() *XpProjector {
	return &XpProjector{}
}

func (p *XpProjector) Name() string {
	return "xp"
}

func (p *XpProjector) EventTypes() []string {
	types := make([]string, 0, len(xpRules))
	for eventType := range xpRules {
		types = append(types, eventType)
	}

	return types
}

func (p *XpProjector) Handle(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	if _, relevant := xpRules[event.EventType]; !relevant {
		return nil
	}

	amount, err := p.computeXpAmount(ctx, tx, event)
	if err != nil {
		return err
	}

	return p.awardXp(ctx, tx, event, amount)
}

func (p *XpProjector) Reset(ctx context.Context, tx adapters.DBTx, accountID eventlog.AccountID) error {
	for _, table := range []string{xpEventsTable, userXpStateTable} {
		err := execSQL(ctx, tx, dialect.Delete(table).Where(goqu.C(colUserID).Eq(accountID)))
		if err != nil {
			return err
		}
	}

	return nil
}

func (p *XpProjector) computeXpAmount(ctx context.Context, tx adapters.DBTx, event eventlog.Event) (int, error) {
	if event.EventType != domain.EventTypeTaskCompleted {
		return xpRules[event.EventType], nil
	}

	payload, err := domain.DecodeTaskCompleted(event.Payload)
	if err != nil {
		return 0, err
	}

	dueDate, found, err := p.loadTaskDueDate(ctx, tx, payload.TaskID)
	if err != nil {
		return 0, err
	}

	if !found || dueDate == nil {
		return baseTaskCompletedXP, nil
	}

	completedDay := event.OccurredAt.In(mskZone)

	return PreviewTaskXP(dueDate, time.Date(
		completedDay.Year(), completedDay.Month(), completedDay.Day(),
		0, 0, 0, 0, time.UTC,
	)), nil
}

// loadTaskDueDate reads the tasks read model, which the orchestrator has
// already brought up to date for this batch.
func (p *XpProjector) loadTaskDueDate(ctx context.Context, tx adapters.DBTx, taskID int64) (*time.Time, bool, error) {
	rows, err := querySQL(ctx, tx, dialect.From(tasksTable).
		Select(colDueDate).
		Where(goqu.C(colTaskID).Eq(taskID)).
		Limit(1))
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, false, nil
	}

	var dueDate *time.Time
	if scanErr := rows.Scan(&dueDate); scanErr != nil {
		return nil, false, scanErr
	}

	return dueDate, true, nil
}

func (p *XpProjector) awardXp(ctx context.Context, tx adapters.DBTx, event eventlog.Event, amount int) error {
	awarded, err := rowExists(ctx, tx, xpEventsTable, goqu.C(colSourceEventID).Eq(event.ID))
	if err != nil || awarded {
		return err
	}

	insertErr := execSQL(ctx, tx, dialect.Insert(xpEventsTable).Rows(goqu.Record{
		colUserID:        event.AccountID,
		colSourceEventID: event.ID,
		colXpAmount:      amount,
		colReason:        event.EventType,
	}))
	if insertErr != nil {
		return insertErr
	}

	totalXP, hasState, err := p.loadTotalXp(ctx, tx, event.AccountID)
	if err != nil {
		return err
	}

	totalXP += amount
	level, currentLevelXP, xpToNext := ComputeLevel(totalXP)

	record := goqu.Record{
		colTotalXp:   totalXP,
		colUserLevel: level,
		colLevelXp:   currentLevelXP,
		colXpToNext:  xpToNext,
	}

	if hasState {
		return execSQL(ctx, tx, dialect.Update(userXpStateTable).
			Set(record).
			Where(goqu.C(colUserID).Eq(event.AccountID)))
	}

	record[colUserID] = event.AccountID

	return execSQL(ctx, tx, dialect.Insert(userXpStateTable).Rows(record))
}

func (p *XpProjector) loadTotalXp(ctx context.Context, tx adapters.DBTx, userID int64) (int, bool, error) {
	rows, err := querySQL(ctx, tx, dialect.From(userXpStateTable).
		Select(colTotalXp).
		Where(goqu.C(colUserID).Eq(userID)).
		Limit(1))
	if err != nil {
		return 0, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return 0, false, nil
	}

	var total int
	if scanErr := rows.Scan(&total); scanErr != nil {
		return 0, false, scanErr
	}

	return total, true, nil
}
