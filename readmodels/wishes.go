package readmodels

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/finlifeos/finlife-core-go/adapters"
	"github.com/finlifeos/finlife-core-go/domain"
	"github.com/finlifeos/finlife-core-go/eventlog"
)

const (
	wishesTable = "wishes"

	colWishID          = "wish_id"
	colWishType        = "wish_type"
	colStatus          = "status"
	colTargetDate      = "target_date"
	colTargetMonth     = "target_month"
	colEstimatedAmount = "estimated_amount"
	colIsRecurring     = "is_recurring"
	colNotes           = "notes"
	colLastCompletedAt = "last_completed_at"
)

// WishesProjector maintains the wishes read model.
type WishesProjector struct{}

func NewWishesProjector() *WishesProjector {
	return &WishesProjector{}
}

func (p *WishesProjector) Name() string {
	return "wishes"
}

func (p *WishesProjector) EventTypes() []string {
	return []string{
		domain.EventTypeWishCreated,
		domain.EventTypeWishUpdated,
		domain.EventTypeWishCompleted,
	}
}

func (p *WishesProjector) Handle(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	switch event.EventType {
	case domain.EventTypeWishCreated:
		return p.handleCreated(ctx, tx, event)
	case domain.EventTypeWishUpdated:
		return p.handleUpdated(ctx, tx, event)
	case domain.EventTypeWishCompleted:
		return p.handleCompleted(ctx, tx, event)
	}

	return nil
}

func (p *WishesProjector) Reset(ctx context.Context, tx adapters.DBTx, accountID eventlog.AccountID) error {
	return deleteForAccount(ctx, tx, wishesTable, accountID)
}

func (p *WishesProjector) handleCreated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeWishCreated(event.Payload)
	if err != nil {
		return err
	}

	exists, err := rowExists(ctx, tx, wishesTable, goqu.C(colWishID).Eq(payload.WishID))
	if err != nil || exists {
		return err
	}

	return execSQL(ctx, tx, dialect.Insert(wishesTable).Rows(goqu.Record{
		colWishID:          payload.WishID,
		colAccountID:       payload.AccountID,
		colTitle:           payload.Title,
		colWishType:        payload.WishType,
		colStatus:          payload.Status,
		colTargetDate:      nullableDate(payload.TargetDate),
		colTargetMonth:     nullableString(payload.TargetMonth),
		colEstimatedAmount: nullableDecimal(payload.EstimatedAmount),
		colIsRecurring:     payload.IsRecurring,
		colNotes:           nullableString(payload.Notes),
		colCreatedAt:       nullableTimestamp(&payload.CreatedAt),
	}))
}

func (p *WishesProjector) handleUpdated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeWishUpdated(event.Payload)
	if err != nil {
		return err
	}

	record := goqu.Record{}
	if payload.Title.Set {
		record[colTitle] = optString(payload.Title)
	}
	if payload.Status.Set {
		record[colStatus] = optString(payload.Status)
	}
	if payload.WishType.Set {
		record[colWishType] = optString(payload.WishType)
	}
	if payload.TargetDate.Set {
		record[colTargetDate] = optDate(payload.TargetDate)
	}
	if payload.TargetMonth.Set {
		record[colTargetMonth] = optString(payload.TargetMonth)
	}
	if payload.EstimatedAmount.Set {
		record[colEstimatedAmount] = optDecimal(payload.EstimatedAmount)
	}
	if payload.IsRecurring.Set {
		record[colIsRecurring] = optBool(payload.IsRecurring)
	}
	if payload.Notes.Set {
		record[colNotes] = optString(payload.Notes)
	}

	if len(record) == 0 {
		return nil
	}

	return execSQL(ctx, tx, dialect.Update(wishesTable).
		Set(record).
		Where(goqu.C(colWishID).Eq(payload.WishID)))
}

func (p *WishesProjector) handleCompleted(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeWishCompleted(event.Payload)
	if err != nil {
		return err
	}

	record := goqu.Record{}
	if payload.Status.Set {
		record[colStatus] = optString(payload.Status)
	}
	if payload.LastCompletedAt.Set {
		record[colLastCompletedAt] = optTimestamp(payload.LastCompletedAt)
	}

	if len(record) == 0 {
		return nil
	}

	return execSQL(ctx, tx, dialect.Update(wishesTable).
		Set(record).
		Where(goqu.C(colWishID).Eq(payload.WishID)))
}
