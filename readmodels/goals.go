package readmodels

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/finlifeos/finlife-core-go/adapters"
	"github.com/finlifeos/finlife-core-go/domain"
	"github.com/finlifeos/finlife-core-go/eventlog"
)

const (
	goalInfosTable = "goal_infos"

	colGoalID       = "goal_id"
	colTargetAmount = "target_amount"
	colIsSystem     = "is_system"
)

// GoalsProjector maintains the goal_infos read model.
type GoalsProjector struct{}

func NewGoalsProjector() *GoalsProjector {
	return &GoalsProjector{}
}

func (p *GoalsProjector) Name() string {
	return "goals"
}

func (p *GoalsProjector) EventTypes() []string {
	return []string{
		domain.EventTypeGoalCreated,
		domain.EventTypeGoalUpdated,
		domain.EventTypeGoalArchived,
	}
}

func (p *GoalsProjector) Handle(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	switch event.EventType {
	case domain.EventTypeGoalCreated:
		return p.handleCreated(ctx, tx, event)
	case domain.EventTypeGoalUpdated:
		return p.handleUpdated(ctx, tx, event)
	case domain.EventTypeGoalArchived:
		return p.handleArchived(ctx, tx, event)
	}

	return nil
}

func (p *GoalsProjector) Reset(ctx context.Context, tx adapters.DBTx, accountID eventlog.AccountID) error {
	return deleteForAccount(ctx, tx, goalInfosTable, accountID)
}

func (p *GoalsProjector) handleCreated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeGoalCreated(event.Payload)
	if err != nil {
		return err
	}

	exists, err := rowExists(ctx, tx, goalInfosTable, goqu.C(colGoalID).Eq(payload.GoalID))
	if err != nil || exists {
		return err
	}

	return execSQL(ctx, tx, dialect.Insert(goalInfosTable).Rows(goqu.Record{
		colGoalID:       payload.GoalID,
		colAccountID:    payload.AccountID,
		colTitle:        payload.Title,
		colCurrency:     payload.Currency,
		colTargetAmount: nullableDecimal(payload.TargetAmount),
		colIsSystem:     payload.IsSystem,
		colIsArchived:   false,
		colCreatedAt:    nullableTimestamp(&payload.CreatedAt),
	}))
}

func (p *GoalsProjector) handleUpdated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeGoalUpdated(event.Payload)
	if err != nil {
		return err
	}

	record := goqu.Record{}
	if payload.Title.Set {
		record[colTitle] = optString(payload.Title)
	}
	if payload.TargetAmount.Set {
		record[colTargetAmount] = optDecimal(payload.TargetAmount)
	}

	if len(record) == 0 {
		return nil
	}

	return execSQL(ctx, tx, dialect.Update(goalInfosTable).
		Set(record).
		Where(goqu.C(colGoalID).Eq(payload.GoalID)))
}

func (p *GoalsProjector) handleArchived(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeGoalArchived(event.Payload)
	if err != nil {
		return err
	}

	return execSQL(ctx, tx, dialect.Update(goalInfosTable).
		Set(goqu.Record{colIsArchived: true}).
		Where(goqu.C(colGoalID).Eq(payload.GoalID)))
}
