package readmodels

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/finlifeos/finlife-core-go/adapters"
	"github.com/finlifeos/finlife-core-go/domain"
	"github.com/finlifeos/finlife-core-go/eventlog"
)

const (
	recurrenceRulesTable = "recurrence_rules"

	colRuleID                = "rule_id"
	colFreq                  = "freq"
	colInterval              = "interval"
	colStartDate             = "start_date"
	colUntilDate             = "until_date"
	colCount                 = "count"
	colByWeekday             = "by_weekday"
	colByMonthday            = "by_monthday"
	colMonthdayClipToLastDay = "monthday_clip_to_last_day"
	colByMonth               = "by_month"
	colByMonthdayForYear     = "by_monthday_for_year"
	colDatesJSON             = "dates_json"
)

// RecurrenceRulesProjector maintains the recurrence_rules read model that the
// occurrence generator reads. Runs first in the orchestrator so downstream
// projectors and the generator always see rules before the entities using them.
type RecurrenceRulesProjector struct{}

func NewRecurrenceRulesProjector() *RecurrenceRulesProjector {
	return &RecurrenceRulesProjector{}
}

func (p *RecurrenceRulesProjector) Name() string {
	return "recurrence_rules"
}

func (p *RecurrenceRulesProjector) EventTypes() []string {
	return []string{
		domain.EventTypeRecurrenceRuleCreated,
		domain.EventTypeRecurrenceRuleUpdated,
	}
}

func (p *RecurrenceRulesProjector) Handle(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	switch event.EventType {
	case domain.EventTypeRecurrenceRuleCreated:
		return p.handleCreated(ctx, tx, event)
	case domain.EventTypeRecurrenceRuleUpdated:
		return p.handleUpdated(ctx, tx, event)
	}

	return nil
}

func (p *RecurrenceRulesProjector) Reset(ctx context.Context, tx adapters.DBTx, accountID eventlog.AccountID) error {
	return deleteForAccount(ctx, tx, recurrenceRulesTable, accountID)
}

func (p *RecurrenceRulesProjector) handleCreated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeRecurrenceRuleCreated(event.Payload)
	if err != nil {
		return err
	}

	exists, err := rowExists(ctx, tx, recurrenceRulesTable, goqu.C(colRuleID).Eq(payload.RuleID))
	if err != nil || exists {
		return err
	}

	return execSQL(ctx, tx, dialect.Insert(recurrenceRulesTable).Rows(goqu.Record{
		colRuleID:                payload.RuleID,
		colAccountID:             payload.AccountID,
		colFreq:                  payload.Freq,
		colInterval:              payload.Interval,
		colStartDate:             payload.StartDate.String(),
		colUntilDate:             nullableDate(payload.UntilDate),
		colCount:                 nullableSmallInt(payload.Count),
		colByWeekday:             nullableString(payload.ByWeekday),
		colByMonthday:            nullableSmallInt(payload.ByMonthday),
		colMonthdayClipToLastDay: *payload.MonthdayClipToLastDay,
		colByMonth:               nullableSmallInt(payload.ByMonth),
		colByMonthdayForYear:     nullableSmallInt(payload.ByMonthdayForYear),
		colDatesJSON:             nullableString(payload.DatesJSON),
	}))
}

func (p *RecurrenceRulesProjector) handleUpdated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeRecurrenceRuleUpdated(event.Payload)
	if err != nil {
		return err
	}

	record := goqu.Record{}
	if payload.Freq.Set {
		record[colFreq] = optString(payload.Freq)
	}
	if payload.Interval.Set {
		record[colInterval] = optInt(payload.Interval)
	}
	if payload.StartDate.Set {
		record[colStartDate] = optDate(payload.StartDate)
	}
	if payload.UntilDate.Set {
		record[colUntilDate] = optDate(payload.UntilDate)
	}
	if payload.Count.Set {
		record[colCount] = optInt(payload.Count)
	}
	if payload.ByWeekday.Set {
		record[colByWeekday] = optString(payload.ByWeekday)
	}
	if payload.ByMonthday.Set {
		record[colByMonthday] = optInt(payload.ByMonthday)
	}
	if payload.MonthdayClipToLastDay.Set {
		record[colMonthdayClipToLastDay] = optBool(payload.MonthdayClipToLastDay)
	}
	if payload.ByMonth.Set {
		record[colByMonth] = optInt(payload.ByMonth)
	}
	if payload.ByMonthdayForYear.Set {
		record[colByMonthdayForYear] = optInt(payload.ByMonthdayForYear)
	}
	if payload.DatesJSON.Set {
		record[colDatesJSON] = optString(payload.DatesJSON)
	}

	if len(record) == 0 {
		return nil
	}

	return execSQL(ctx, tx, dialect.Update(recurrenceRulesTable).
		Set(record).
		Where(goqu.C(colRuleID).Eq(payload.RuleID)))
}
