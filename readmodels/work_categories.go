package readmodels

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/finlifeos/finlife-core-go/adapters"
	"github.com/finlifeos/finlife-core-go/domain"
	"github.com/finlifeos/finlife-core-go/eventlog"
)

const (
	workCategoriesTable = "work_categories"

	colEmoji = "emoji"
)

// WorkCategoriesProjector maintains the work_categories read model.
type WorkCategoriesProjector struct{}

func NewWorkCategoriesProjector() *WorkCategoriesProjector {
	return &WorkCategoriesProjector{}
}

func (p *WorkCategoriesProjector) Name() string {
	return "work_categories"
}

func (p *WorkCategoriesProjector) EventTypes() []string {
	return []string{
		domain.EventTypeWorkCategoryCreated,
		domain.EventTypeWorkCategoryUpdated,
		domain.EventTypeWorkCategoryArchived,
		domain.EventTypeWorkCategoryUnarchived,
	}
}

func (p *WorkCategoriesProjector) Handle(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	switch event.EventType {
	case domain.EventTypeWorkCategoryCreated:
		return p.handleCreated(ctx, tx, event)
	case domain.EventTypeWorkCategoryUpdated:
		return p.handleUpdated(ctx, tx, event)
	case domain.EventTypeWorkCategoryArchived:
		return p.setArchived(ctx, tx, event, true)
	case domain.EventTypeWorkCategoryUnarchived:
		return p.setArchived(ctx, tx, event, false)
	}

	return nil
}

func (p *WorkCategoriesProjector) Reset(ctx context.Context, tx adapters.DBTx, accountID eventlog.AccountID) error {
	return deleteForAccount(ctx, tx, workCategoriesTable, accountID)
}

func (p *WorkCategoriesProjector) handleCreated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeWorkCategoryCreated(event.Payload)
	if err != nil {
		return err
	}

	exists, err := rowExists(ctx, tx, workCategoriesTable, goqu.C(colCategoryID).Eq(payload.CategoryID))
	if err != nil || exists {
		return err
	}

	return execSQL(ctx, tx, dialect.Insert(workCategoriesTable).Rows(goqu.Record{
		colCategoryID: payload.CategoryID,
		colAccountID:  payload.AccountID,
		colTitle:      payload.Title,
		colEmoji:      nullableString(payload.Emoji),
		colIsArchived: false,
		colCreatedAt:  nullableTimestamp(&payload.CreatedAt),
	}))
}

func (p *WorkCategoriesProjector) handleUpdated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeWorkCategoryUpdated(event.Payload)
	if err != nil {
		return err
	}

	record := goqu.Record{}
	if payload.Title.Set {
		record[colTitle] = optString(payload.Title)
	}
	if payload.Emoji.Set {
		record[colEmoji] = optString(payload.Emoji)
	}

	if len(record) == 0 {
		return nil
	}

	return execSQL(ctx, tx, dialect.Update(workCategoriesTable).
		Set(record).
		Where(goqu.C(colCategoryID).Eq(payload.CategoryID)))
}

func (p *WorkCategoriesProjector) setArchived(ctx context.Context, tx adapters.DBTx, event eventlog.Event, archived bool) error {
	payload, err := domain.DecodeWorkCategoryRef(event.Payload)
	if err != nil {
		return err
	}

	return execSQL(ctx, tx, dialect.Update(workCategoriesTable).
		Set(goqu.Record{colIsArchived: archived}).
		Where(goqu.C(colCategoryID).Eq(payload.CategoryID)))
}
