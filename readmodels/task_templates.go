package readmodels

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/finlifeos/finlife-core-go/adapters"
	"github.com/finlifeos/finlife-core-go/domain"
	"github.com/finlifeos/finlife-core-go/eventlog"
)

const (
	taskTemplatesTable   = "task_templates"
	taskOccurrencesTable = "task_occurrences"

	colTemplateID  = "template_id"
	colRuleRef     = "rule_id"
	colActiveFrom  = "active_from"
	colActiveUntil = "active_until"
	colOccID       = "id"
)

// TaskTemplatesProjector maintains recurring task templates and the status
// of their occurrences. Occurrence rows themselves are created by the
// occurrence generator; this projector only mutates their status.
type TaskTemplatesProjector struct{}

func NewTaskTemplatesProjector() *TaskTemplatesProjector {
	return &TaskTemplatesProjector{}
}

func (p *TaskTemplatesProjector) Name() string {
	return "task_templates"
}

func (p *TaskTemplatesProjector) EventTypes() []string {
	return []string{
		domain.EventTypeTaskTemplateCreated,
		domain.EventTypeTaskTemplateUpdated,
		domain.EventTypeTaskTemplateArchived,
		domain.EventTypeTaskOccurrenceCompleted,
		domain.EventTypeTaskOccurrenceSkipped,
		domain.EventTypeTaskOccurrenceUncompleted,
	}
}

func (p *TaskTemplatesProjector) Handle(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	switch event.EventType {
	case domain.EventTypeTaskTemplateCreated:
		return p.handleCreated(ctx, tx, event)
	case domain.EventTypeTaskTemplateUpdated:
		return p.handleUpdated(ctx, tx, event)
	case domain.EventTypeTaskTemplateArchived:
		return p.handleArchived(ctx, tx, event)
	case domain.EventTypeTaskOccurrenceCompleted,
		domain.EventTypeTaskOccurrenceSkipped,
		domain.EventTypeTaskOccurrenceUncompleted:
		return p.handleOccurrenceStatus(ctx, tx, event)
	}

	return nil
}

func (p *TaskTemplatesProjector) Reset(ctx context.Context, tx adapters.DBTx, accountID eventlog.AccountID) error {
	if err := deleteForAccount(ctx, tx, taskOccurrencesTable, accountID); err != nil {
		return err
	}

	return deleteForAccount(ctx, tx, taskTemplatesTable, accountID)
}

func (p *TaskTemplatesProjector) handleCreated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeTaskTemplateCreated(event.Payload)
	if err != nil {
		return err
	}

	exists, err := rowExists(ctx, tx, taskTemplatesTable, goqu.C(colTemplateID).Eq(payload.TemplateID))
	if err != nil || exists {
		return err
	}

	return execSQL(ctx, tx, dialect.Insert(taskTemplatesTable).Rows(goqu.Record{
		colTemplateID:  payload.TemplateID,
		colAccountID:   payload.AccountID,
		colTitle:       payload.Title,
		colNote:        nullableString(payload.Note),
		colRuleRef:     payload.RuleID,
		colCategoryID:  nullableInt(payload.CategoryID),
		colActiveFrom:  payload.ActiveFrom.String(),
		colActiveUntil: nullableDate(payload.ActiveUntil),
		colIsArchived:  false,
	}))
}

func (p *TaskTemplatesProjector) handleUpdated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeTaskTemplateUpdated(event.Payload)
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

	if len(record) == 0 {
		return nil
	}

	return execSQL(ctx, tx, dialect.Update(taskTemplatesTable).
		Set(record).
		Where(goqu.C(colTemplateID).Eq(payload.TemplateID)))
}

func (p *TaskTemplatesProjector) handleArchived(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeTemplateRef(event.Payload)
	if err != nil {
		return err
	}

	return execSQL(ctx, tx, dialect.Update(taskTemplatesTable).
		Set(goqu.Record{colIsArchived: true}).
		Where(goqu.C(colTemplateID).Eq(payload.TemplateID)))
}

func (p *TaskTemplatesProjector) handleOccurrenceStatus(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeTaskOccurrenceStatus(event.Payload)
	if err != nil {
		return err
	}

	record := goqu.Record{colStatus: payload.Status}
	if payload.Status == domain.OccurrenceStatusDone && payload.CompletedAt != nil {
		record[colCompletedAt] = nullableTimestamp(payload.CompletedAt)
	} else if payload.Status != domain.OccurrenceStatusDone {
		record[colCompletedAt] = nil
	}

	return execSQL(ctx, tx, dialect.Update(taskOccurrencesTable).
		Set(record).
		Where(goqu.C(colOccID).Eq(payload.OccurrenceID)))
}
