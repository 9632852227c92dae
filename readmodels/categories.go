package readmodels

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/finlifeos/finlife-core-go/adapters"
	"github.com/finlifeos/finlife-core-go/domain"
	"github.com/finlifeos/finlife-core-go/eventlog"
)

const (
	categoriesTable = "categories"

	colCategoryID   = "category_id"
	colCategoryType = "category_type"
	colParentID     = "parent_id"
	colSortOrder    = "sort_order"
)

// CategoriesProjector maintains the categories read model.
type CategoriesProjector struct{}

func NewCategoriesProjector() *CategoriesProjector {
	return &CategoriesProjector{}
}

func (p *CategoriesProjector) Name() string {
	return "categories"
}

func (p *CategoriesProjector) EventTypes() []string {
	return []string{
		domain.EventTypeCategoryCreated,
		domain.EventTypeCategoryUpdated,
		domain.EventTypeCategoryArchived,
		domain.EventTypeCategoryDeleted,
	}
}

func (p *CategoriesProjector) Handle(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	switch event.EventType {
	case domain.EventTypeCategoryCreated:
		return p.handleCreated(ctx, tx, event)
	case domain.EventTypeCategoryUpdated:
		return p.handleUpdated(ctx, tx, event)
	case domain.EventTypeCategoryArchived:
		return p.handleArchived(ctx, tx, event)
	case domain.EventTypeCategoryDeleted:
		return p.handleDeleted(ctx, tx, event)
	}

	return nil
}

func (p *CategoriesProjector) Reset(ctx context.Context, tx adapters.DBTx, accountID eventlog.AccountID) error {
	return deleteForAccount(ctx, tx, categoriesTable, accountID)
}

func (p *CategoriesProjector) handleCreated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeCategoryCreated(event.Payload)
	if err != nil {
		return err
	}

	exists, err := rowExists(ctx, tx, categoriesTable, goqu.C(colCategoryID).Eq(payload.CategoryID))
	if err != nil || exists {
		return err
	}

	return execSQL(ctx, tx, dialect.Insert(categoriesTable).Rows(goqu.Record{
		colCategoryID:   payload.CategoryID,
		colAccountID:    payload.AccountID,
		colTitle:        payload.Title,
		colCategoryType: payload.CategoryType,
		colParentID:     nullableInt(payload.ParentID),
		colIsArchived:   false,
		colIsSystem:     payload.IsSystem,
		colSortOrder:    payload.SortOrder,
		colCreatedAt:    nullableTimestamp(&payload.CreatedAt),
	}))
}

func (p *CategoriesProjector) handleUpdated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeCategoryUpdated(event.Payload)
	if err != nil {
		return err
	}

	record := goqu.Record{}
	if payload.Title.Set {
		record[colTitle] = optString(payload.Title)
	}
	if payload.ParentID.Set {
		record[colParentID] = optInt64(payload.ParentID)
	}
	if payload.IsArchived.Set {
		record[colIsArchived] = optBool(payload.IsArchived)
	}
	if payload.SortOrder.Set {
		record[colSortOrder] = optInt(payload.SortOrder)
	}

	if len(record) == 0 {
		return nil
	}

	return execSQL(ctx, tx, dialect.Update(categoriesTable).
		Set(record).
		Where(goqu.C(colCategoryID).Eq(payload.CategoryID)))
}

func (p *CategoriesProjector) handleArchived(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeCategoryRef(event.Payload)
	if err != nil {
		return err
	}

	return execSQL(ctx, tx, dialect.Update(categoriesTable).
		Set(goqu.Record{colIsArchived: true}).
		Where(goqu.C(colCategoryID).Eq(payload.CategoryID)))
}

func (p *CategoriesProjector) handleDeleted(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeCategoryRef(event.Payload)
	if err != nil {
		return err
	}

	return execSQL(ctx, tx, dialect.Delete(categoriesTable).
		Where(goqu.C(colCategoryID).Eq(payload.CategoryID)))
}
