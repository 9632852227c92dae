package readmodels

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/finlifeos/finlife-core-go/adapters"
	"github.com/finlifeos/finlife-core-go/domain"
	"github.com/finlifeos/finlife-core-go/eventlog"
)

const (
	tasksTable = "tasks"

	colTaskID      = "task_id"
	colNote        = "note"
	colDueDate     = "due_date"
	colCompletedAt = "completed_at"
	colArchivedAt  = "archived_at"
)

const (
	taskStatusActive   = "ACTIVE"
	taskStatusDone     = "DONE"
	taskStatusArchived = "ARCHIVED"
)

// TasksProjector maintains the one-off tasks read model.
type TasksProjector struct{}

func NewTasksProjector() *TasksProjector {
	return &TasksProjector{}
}

func (p *TasksProjector) Name() string {
	return "tasks"
}

func (p *TasksProjector) EventTypes() []string {
	return []string{
		domain.EventTypeTaskCreated,
		domain.EventTypeTaskCompleted,
		domain.EventTypeTaskUncompleted,
		domain.EventTypeTaskArchived,
	}
}

func (p *TasksProjector) Handle(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	switch event.EventType {
	case domain.EventTypeTaskCreated:
		return p.handleCreated(ctx, tx, event)
	case domain.EventTypeTaskCompleted:
		return p.handleCompleted(ctx, tx, event)
	case domain.EventTypeTaskUncompleted:
		return p.handleUncompleted(ctx, tx, event)
	case domain.EventTypeTaskArchived:
		return p.handleArchived(ctx, tx, event)
	}

	return nil
}

func (p *TasksProjector) Reset(ctx context.Context, tx adapters.DBTx, accountID eventlog.AccountID) error {
	return deleteForAccount(ctx, tx, tasksTable, accountID)
}

func (p *TasksProjector) handleCreated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeTaskCreated(event.Payload)
	if err != nil {
		return err
	}

	exists, err := rowExists(ctx, tx, tasksTable, goqu.C(colTaskID).Eq(payload.TaskID))
	if err != nil || exists {
		return err
	}

	return execSQL(ctx, tx, dialect.Insert(tasksTable).Rows(goqu.Record{
		colTaskID:     payload.TaskID,
		colAccountID:  payload.AccountID,
		colTitle:      payload.Title,
		colNote:       nullableString(payload.Note),
		colDueDate:    nullableDate(payload.DueDate),
		colStatus:     taskStatusActive,
		colCategoryID: nullableInt(payload.CategoryID),
		colCreatedAt:  nullableTimestamp(&payload.CreatedAt),
	}))
}

func (p *TasksProjector) handleCompleted(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeTaskCompleted(event.Payload)
	if err != nil {
		return err
	}

	return execSQL(ctx, tx, dialect.Update(tasksTable).
		Set(goqu.Record{
			colStatus:      taskStatusDone,
			colCompletedAt: nullableTimestamp(&payload.CompletedAt),
		}).
		Where(goqu.C(colTaskID).Eq(payload.TaskID)))
}

func (p *TasksProjector) handleUncompleted(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeTaskRef(event.Payload)
	if err != nil {
		return err
	}

	return execSQL(ctx, tx, dialect.Update(tasksTable).
		Set(goqu.Record{
			colStatus:      taskStatusActive,
			colCompletedAt: nil,
		}).
		Where(goqu.C(colTaskID).Eq(payload.TaskID)))
}

func (p *TasksProjector) handleArchived(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeTaskArchived(event.Payload)
	if err != nil {
		return err
	}

	return execSQL(ctx, tx, dialect.Update(tasksTable).
		Set(goqu.Record{
			colStatus:     taskStatusArchived,
			colArchivedAt: nullableTimestamp(&payload.ArchivedAt),
		}).
		Where(goqu.C(colTaskID).Eq(payload.TaskID)))
}
