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
	operationTemplatesTable   = "operation_templates"
	operationOccurrencesTable = "operation_occurrences"

	colKind                = "kind"
	colDestinationWalletID = "destination_wallet_id"
	colWorkCategoryID      = "work_category_id"
)

// OperationTemplatesProjector maintains recurring financial operation
// templates and the status of their occurrences.
type OperationTemplatesProjector struct{}

func NewOperationTemplatesProjector() *OperationTemplatesProjector {
	return &OperationTemplatesProjector{}
}

func (p *OperationTemplatesProjector) Name() string {
	return "operation_templates"
}

func (p *OperationTemplatesProjector) EventTypes() []string {
	return []string{
		domain.EventTypeOperationTemplateCreated,
		domain.EventTypeOperationTemplateUpdated,
		domain.EventTypeOperationTemplateArchived,
		domain.EventTypeOperationTemplateUnarchived,
		domain.EventTypeOperationTemplateClosed,
		domain.EventTypeOperationOccurrenceConfirmed,
		domain.EventTypeOperationOccurrenceSkipped,
	}
}

func (p *OperationTemplatesProjector) Handle(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	switch event.EventType {
	case domain.EventTypeOperationTemplateCreated:
		return p.handleCreated(ctx, tx, event)
	case domain.EventTypeOperationTemplateUpdated:
		return p.handleUpdated(ctx, tx, event)
	case domain.EventTypeOperationTemplateArchived:
		return p.setArchived(ctx, tx, event, true)
	case domain.EventTypeOperationTemplateUnarchived:
		return p.setArchived(ctx, tx, event, false)
	case domain.EventTypeOperationTemplateClosed:
		return p.handleClosed(ctx, tx, event)
	case domain.EventTypeOperationOccurrenceConfirmed,
		domain.EventTypeOperationOccurrenceSkipped:
		return p.handleOccurrenceStatus(ctx, tx, event)
	}

	return nil
}

func (p *OperationTemplatesProjector) Reset(ctx context.Context, tx adapters.DBTx, accountID eventlog.AccountID) error {
	if err := deleteForAccount(ctx, tx, operationOccurrencesTable, accountID); err != nil {
		return err
	}

	return deleteForAccount(ctx, tx, operationTemplatesTable, accountID)
}

func (p *OperationTemplatesProjector) handleCreated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeOperationTemplateCreated(event.Payload)
	if err != nil {
		return err
	}

	exists, err := rowExists(ctx, tx, operationTemplatesTable, goqu.C(colTemplateID).Eq(payload.TemplateID))
	if err != nil || exists {
		return err
	}

	return execSQL(ctx, tx, dialect.Insert(operationTemplatesTable).Rows(goqu.Record{
		colTemplateID:          payload.TemplateID,
		colAccountID:           payload.AccountID,
		colTitle:               payload.Title,
		colRuleRef:             payload.RuleID,
		colActiveFrom:          payload.ActiveFrom.String(),
		colActiveUntil:         nullableDate(payload.ActiveUntil),
		colIsArchived:          false,
		colKind:                payload.Kind,
		colAmount:              numericLit(payload.Amount),
		colNote:                nullableString(payload.Note),
		colWalletID:            nullableInt(payload.WalletID),
		colDestinationWalletID: nullableInt(payload.DestinationWalletID),
		colCategoryID:          nullableInt(payload.CategoryID),
		colWorkCategoryID:      nullableInt(payload.WorkCategoryID),
	}))
}

func (p *OperationTemplatesProjector) handleUpdated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeOperationTemplateUpdated(event.Payload)
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
	if payload.Kind.Set {
		record[colKind] = optString(payload.Kind)
	}
	if payload.Amount.Set {
		record[colAmount] = optDecimal(payload.Amount)
	}
	if payload.WalletID.Set {
		record[colWalletID] = optInt64(payload.WalletID)
	}
	if payload.DestinationWalletID.Set {
		record[colDestinationWalletID] = optInt64(payload.DestinationWalletID)
	}
	if payload.CategoryID.Set {
		record[colCategoryID] = optInt64(payload.CategoryID)
	}
	if payload.WorkCategoryID.Set {
		record[colWorkCategoryID] = optInt64(payload.WorkCategoryID)
	}
	if payload.IsArchived.Set {
		record[colIsArchived] = optBool(payload.IsArchived)
	}
	if payload.ActiveUntil.Set {
		record[colActiveUntil] = optDate(payload.ActiveUntil)
	}

	if len(record) == 0 {
		return nil
	}

	return execSQL(ctx, tx, dialect.Update(operationTemplatesTable).
		Set(record).
		Where(goqu.C(colTemplateID).Eq(payload.TemplateID)))
}

func (p *OperationTemplatesProjector) setArchived(ctx context.Context, tx adapters.DBTx, event eventlog.Event, archived bool) error {
	payload, err := domain.DecodeTemplateRef(event.Payload)
	if err != nil {
		return err
	}

	return execSQL(ctx, tx, dialect.Update(operationTemplatesTable).
		Set(goqu.Record{colIsArchived: archived}).
		Where(goqu.C(colTemplateID).Eq(payload.TemplateID)))
}

func (p *OperationTemplatesProjector) handleClosed(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeOperationTemplateClosed(event.Payload)
	if err != nil {
		return err
	}

	return execSQL(ctx, tx, dialect.Update(operationTemplatesTable).
		Set(goqu.Record{colActiveUntil: nullableDate(payload.ActiveUntil)}).
		Where(goqu.C(colTemplateID).Eq(payload.TemplateID)))
}

func (p *OperationTemplatesProjector) handleOccurrenceStatus(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeOperationOccurrenceStatus(event.Payload)
	if err != nil {
		return err
	}

	record := goqu.Record{colStatus: payload.Status}

	switch payload.Status {
	case domain.OccurrenceStatusDone:
		completedAt := payload.CompletedAt
		if completedAt == nil {
			now := domain.NewTimestamp(time.Now())
			completedAt = &now
		}
		record[colCompletedAt] = nullableTimestamp(completedAt)
		record[colTransactionID] = nullableInt(payload.TransactionID)
	case domain.OccurrenceStatusSkipped:
		record[colCompletedAt] = nil
		record[colTransactionID] = nil
	}

	return execSQL(ctx, tx, dialect.Update(operationOccurrencesTable).
		Set(record).
		Where(goqu.C(colOccID).Eq(payload.OccurrenceID)))
}
