package readmodels

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/finlifeos/finlife-core-go/adapters"
	"github.com/finlifeos/finlife-core-go/domain"
	"github.com/finlifeos/finlife-core-go/eventlog"
)

const (
	userActivityDailyTable = "user_activity_daily"

	colDayDate     = "day_date"
	colOpsCount    = "ops_count"
	colTasksCount  = "tasks_count"
	colHabitsCount = "habits_count"
	colGoalsCount  = "goals_count"
	colPoints      = "points"
)

// counter column per event type
var activityCounters = map[string]string{
	domain.EventTypeTransactionCreated:       colOpsCount,
	domain.EventTypeTaskCompleted:            colTasksCount,
	domain.EventTypeTaskOccurrenceCompleted:  colTasksCount,
	domain.EventTypeHabitOccurrenceCompleted: colHabitsCount,
	domain.EventTypeGoalAchieved:             colGoalsCount,
}

// ActivityProjector aggregates meaningful user actions into per-day counters.
// day_points = 2*ops + tasks + habits + 5*goals.
type ActivityProjector struct{}

func NewActivityProjector() *ActivityProjector {
	return &ActivityProjector{}
}

func (p *ActivityProjector) Name() string {
	return "activity"
}

func (p *ActivityProjector) EventTypes() []string {
	types := make([]string, 0, len(activityCounters))
	for eventType := range activityCounters {
		types = append(types, eventType)
	}

	return types
}

func (p *ActivityProjector) Handle(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	counter, relevant := activityCounters[event.EventType]
	if !relevant {
		return nil
	}

	dayDate := event.OccurredAt.In(mskZone).Format("2006-01-02")

	exists, err := rowExists(ctx, tx, userActivityDailyTable,
		goqu.C(colUserID).Eq(event.AccountID),
		goqu.C(colDayDate).Eq(dayDate),
	)
	if err != nil {
		return err
	}

	if !exists {
		insertErr := execSQL(ctx, tx, dialect.Insert(userActivityDailyTable).Rows(goqu.Record{
			colUserID:      event.AccountID,
			colDayDate:     dayDate,
			colOpsCount:    0,
			colTasksCount:  0,
			colHabitsCount: 0,
			colGoalsCount:  0,
			colPoints:      0,
		}))
		if insertErr != nil {
			return insertErr
		}
	}

	return execSQL(ctx, tx, dialect.Update(userActivityDailyTable).
		Set(goqu.Record{
			counter: goqu.L(counter + " + 1"),
			colPoints: goqu.L(
				"2 * " + colOpsCount +
					" + " + colTasksCount +
					" + " + colHabitsCount +
					" + 5 * " + colGoalsCount +
					p.pointsDelta(counter),
			),
		}).
		Where(
			goqu.C(colUserID).Eq(event.AccountID),
			goqu.C(colDayDate).Eq(dayDate),
		))
}

// pointsDelta compensates for the counter column not yet reflecting the
// increment within the same UPDATE statement.
func (p *ActivityProjector) pointsDelta(counter string) string {
	switch counter {
	case colOpsCount:
		return " + 2"
	case colGoalsCount:
		return " + 5"
	default:
		return " + 1"
	}
}

func (p *ActivityProjector) Reset(ctx context.Context, tx adapters.DBTx, accountID eventlog.AccountID) error {
	return execSQL(ctx, tx, dialect.Delete(userActivityDailyTable).
		Where(goqu.C(colUserID).Eq(accountID)))
}
