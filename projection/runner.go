package projection

import (
	"context"
	"errors"
	"fmt"

	"github.com/finlifeos/finlife-core-go/adapters"
	"github.com/finlifeos/finlife-core-go/eventlog"
)

var ErrNilEventReader = errors.New("event reader must not be nil")
var ErrNilDatabaseAdapter = errors.New("database adapter must not be nil")
var ErrHandlingEventFailed = errors.New("handling event failed")
var ErrResettingProjectorFailed = errors.New("resetting projector failed")

// DefaultBatchSize is the number of events pulled from the log per batch.
const DefaultBatchSize = 200

const (
	logMsgBatchCommitted = "projector batch committed"
	logMsgBatchAborted   = "projector batch aborted"
	logMsgProjectorReset = "projector reset"
	logAttrProjector     = "projector"
	logAttrAccountID     = "account_id"
	logAttrError         = "error"
	logAttrBatchSize     = "batch_size"
	logAttrCheckpoint    = "checkpoint"
	logAttrProcessed     = "processed"
)

// Logger interface for runner progress and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Runner executes projectors: it pulls unseen events for an account in
// batches, feeds them to the projector's Handle, and advances the persisted
// checkpoint. Each batch commits read-model mutations and the checkpoint in
// one transaction; a handler error aborts the whole in-flight batch so the
// next run retries it from scratch.
type Runner struct {
	events              EventReader
	db                  adapters.DBAdapter
	checkpointTableName string
	batchSize           int
	logger              Logger
}

// RunnerOption defines a functional option for configuring a Runner.
type RunnerOption func(*Runner) error

// WithBatchSize overrides the default batch size.
func WithBatchSize(batchSize int) RunnerOption {
	return func(r *Runner) error {
		if batchSize < 1 {
			return fmt.Errorf("batch size must be >= 1, got %d", batchSize)
		}

		r.batchSize = batchSize

		return nil
	}
}

// WithCheckpointTableName overrides the checkpoint table name.
func WithCheckpointTableName(tableName string) RunnerOption {
	return func(r *Runner) error {
		if tableName == "" {
			return errors.New("empty checkpoint table name supplied")
		}

		r.checkpointTableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the Runner.
func WithLogger(logger Logger) RunnerOption {
	return func(r *Runner) error {
		r.logger = logger
		return nil
	}
}

// NewRunner creates a Runner reading events through the given reader and
// mutating read models through the given database adapter.
func NewRunner(events EventReader, db adapters.DBAdapter, options ...RunnerOption) (*Runner, error) {
	if events == nil {
		return nil, ErrNilEventReader
	}

	if db == nil {
		return nil, ErrNilDatabaseAdapter
	}

	r := &Runner{
		events:              events,
		db:                  db,
		checkpointTableName: defaultCheckpointTableName,
		batchSize:           DefaultBatchSize,
	}

	for _, option := range options {
		if err := option(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Run processes all events of the account the projector has not seen yet and
// returns the number of processed events.
//
// Termination is guaranteed: the checkpoint strictly increases with every
// batch and the event id space is finite at any point in time.
func (r *Runner) Run(ctx context.Context, projector Projector, accountID eventlog.AccountID) (int, error) {
	checkpoint, cpErr := readCheckpoint(ctx, r.db, r.checkpointTableName, projector.Name(), accountID)
	if cpErr != nil {
		return 0, cpErr
	}

	processed := 0

	for {
		events, listErr := r.events.ListSince(ctx, accountID, checkpoint, r.batchSize, projector.EventTypes()...)
		if listErr != nil {
			return processed, listErr
		}

		if len(events) == 0 {
			break
		}

		newCheckpoint, batchErr := r.applyBatch(ctx, projector, accountID, events)
		if batchErr != nil {
			r.logBatchAborted(projector, accountID, batchErr)
			return processed, batchErr
		}

		checkpoint = newCheckpoint
		processed += len(events)
		r.logBatchCommitted(projector, accountID, len(events), checkpoint)

		if len(events) < r.batchSize {
			break
		}
	}

	return processed, nil
}

// Reset deletes the projector's read-model rows for the account and zeroes
// its checkpoint in one transaction, enabling a full rebuild via Run.
func (r *Runner) Reset(ctx context.Context, projector Projector, accountID eventlog.AccountID) error {
	tx, beginErr := r.db.Begin(ctx)
	if beginErr != nil {
		return errors.Join(ErrResettingProjectorFailed, beginErr)
	}

	if resetErr := projector.Reset(ctx, tx, accountID); resetErr != nil {
		_ = tx.Rollback(ctx)
		return errors.Join(ErrResettingProjectorFailed, resetErr)
	}

	if cpErr := saveCheckpoint(ctx, tx, r.checkpointTableName, projector.Name(), accountID, 0); cpErr != nil {
		_ = tx.Rollback(ctx)
		return errors.Join(ErrResettingProjectorFailed, cpErr)
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		return errors.Join(ErrResettingProjectorFailed, commitErr)
	}

	if r.logger != nil {
		r.logger.Info(logMsgProjectorReset, logAttrProjector, projector.Name(), logAttrAccountID, accountID)
	}

	return nil
}

// applyBatch handles one batch of events inside a single transaction and
// returns the new checkpoint on success.
func (r *Runner) applyBatch(
	ctx context.Context,
	projector Projector,
	accountID eventlog.AccountID,
	events eventlog.Events,
) (eventlog.EventID, error) {

	tx, beginErr := r.db.Begin(ctx)
	if beginErr != nil {
		return 0, beginErr
	}

	checkpoint := eventlog.EventID(0)

	for _, event := range events {
		if handleErr := projector.Handle(ctx, tx, event); handleErr != nil {
			_ = tx.Rollback(ctx)
			return 0, errors.Join(ErrHandlingEventFailed,
				fmt.Errorf("projector %s, event %d (%s): %w", projector.Name(), event.ID, event.EventType, handleErr))
		}

		checkpoint = event.ID
	}

	if cpErr := saveCheckpoint(ctx, tx, r.checkpointTableName, projector.Name(), accountID, checkpoint); cpErr != nil {
		_ = tx.Rollback(ctx)
		return 0, cpErr
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		return 0, commitErr
	}

	return checkpoint, nil
}

func (r *Runner) logBatchCommitted(projector Projector, accountID eventlog.AccountID, batchSize int, checkpoint eventlog.EventID) {
	if r.logger != nil {
		r.logger.Debug(logMsgBatchCommitted,
			logAttrProjector, projector.Name(),
			logAttrAccountID, accountID,
			logAttrBatchSize, batchSize,
			logAttrCheckpoint, checkpoint,
		)
	}
}

func (r *Runner) logBatchAborted(projector Projector, accountID eventlog.AccountID, err error) {
	if r.logger != nil {
		r.logger.Error(logMsgBatchAborted,
			logAttrProjector, projector.Name(),
			logAttrAccountID, accountID,
			logAttrError, err.Error(),
		)
	}
}
