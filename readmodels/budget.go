package readmodels

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/finlifeos/finlife-core-go/adapters"
	"github.com/finlifeos/finlife-core-go/domain"
	"github.com/finlifeos/finlife-core-go/eventlog"
)

const (
	budgetMonthsTable = "budget_months"
	budgetLinesTable  = "budget_lines"

	colBudgetMonthID   = "budget_month_id"
	colBudgetVariantID = "budget_variant_id"
	colYear            = "year"
	colMonth           = "month"
	colIsLocked        = "is_locked"
	colPlanAmount      = "plan_amount"
)

// BudgetProjector maintains budget months and their plan lines. Analytical
// budget reports are plain queries over these tables and live elsewhere.
type BudgetProjector struct{}

func NewBudgetProjector() *BudgetProjector {
	return &BudgetProjector{}
}

func (p *BudgetProjector) Name() string {
	return "budget"
}

func (p *BudgetProjector) EventTypes() []string {
	return []string{
		domain.EventTypeBudgetMonthCreated,
		domain.EventTypeBudgetLineSet,
	}
}

func (p *BudgetProjector) Handle(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	switch event.EventType {
	case domain.EventTypeBudgetMonthCreated:
		return p.handleMonthCreated(ctx, tx, event)
	case domain.EventTypeBudgetLineSet:
		return p.handleLineSet(ctx, tx, event)
	}

	return nil
}

func (p *BudgetProjector) Reset(ctx context.Context, tx adapters.DBTx, accountID eventlog.AccountID) error {
	if err := deleteForAccount(ctx, tx, budgetLinesTable, accountID); err != nil {
		return err
	}

	return deleteForAccount(ctx, tx, budgetMonthsTable, accountID)
}

func (p *BudgetProjector) handleMonthCreated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeBudgetMonthCreated(event.Payload)
	if err != nil {
		return err
	}

	exists, err := rowExists(ctx, tx, budgetMonthsTable, goqu.C(colOccID).Eq(payload.BudgetMonthID))
	if err != nil || exists {
		return err
	}

	return execSQL(ctx, tx, dialect.Insert(budgetMonthsTable).Rows(goqu.Record{
		colOccID:           payload.BudgetMonthID,
		colAccountID:       payload.AccountID,
		colBudgetVariantID: nullableInt(payload.BudgetVariantID),
		colYear:            payload.Year,
		colMonth:           payload.Month,
		colIsLocked:        false,
		colCreatedAt:       nullableTimestamp(&payload.CreatedAt),
	}))
}

// handleLineSet upserts: the first event for a (month, category, kind) key
// creates the line, later ones overwrite the plan amount and note.
func (p *BudgetProjector) handleLineSet(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeBudgetLineSet(event.Payload)
	if err != nil {
		return err
	}

	lineKey := []goqu.Expression{
		goqu.C(colBudgetMonthID).Eq(payload.BudgetMonthID),
		goqu.C(colCategoryID).Eq(payload.CategoryID),
		goqu.C(colKind).Eq(payload.Kind),
	}

	exists, err := rowExists(ctx, tx, budgetLinesTable, lineKey...)
	if err != nil {
		return err
	}

	if exists {
		return execSQL(ctx, tx, dialect.Update(budgetLinesTable).
			Set(goqu.Record{
				colPlanAmount: numericLit(payload.PlanAmount),
				colNote:       nullableString(payload.Note),
			}).
			Where(lineKey...))
	}

	accountID, err := p.monthAccountID(ctx, tx, payload.BudgetMonthID)
	if err != nil {
		return err
	}

	return execSQL(ctx, tx, dialect.Insert(budgetLinesTable).Rows(goqu.Record{
		colOccID:         payload.LineID,
		colBudgetMonthID: payload.BudgetMonthID,
		colAccountID:     accountID,
		colCategoryID:    payload.CategoryID,
		colKind:          payload.Kind,
		colPlanAmount:    numericLit(payload.PlanAmount),
		colNote:          nullableString(payload.Note),
	}))
}

func (p *BudgetProjector) monthAccountID(ctx context.Context, tx adapters.DBTx, budgetMonthID int64) (int64, error) {
	rows, err := querySQL(ctx, tx, dialect.From(budgetMonthsTable).
		Select(colAccountID).
		Where(goqu.C(colOccID).Eq(budgetMonthID)).
		Limit(1))
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	if !rows.Next() {
		return 0, nil
	}

	var accountID int64
	if scanErr := rows.Scan(&accountID); scanErr != nil {
		return 0, scanErr
	}

	return accountID, nil
}
