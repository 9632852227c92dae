package projection

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import

	"github.com/finlifeos/finlife-core-go/adapters"
	"github.com/finlifeos/finlife-core-go/eventlog"
)

var ErrReadingCheckpointFailed = errors.New("reading checkpoint failed")
var ErrSavingCheckpointFailed = errors.New("saving checkpoint failed")

const (
	defaultCheckpointTableName = "projector_checkpoints"
	colProjectorName           = "projector_name"
	colAccountID               = "account_id"
	colLastEventID             = "last_event_id"
	dialectPostgres            = "postgres"
)

// queryer is satisfied by both adapters.DBAdapter and adapters.DBTx.
type queryer interface {
	Query(ctx context.Context, query string) (adapters.DBRows, error)
	Exec(ctx context.Context, query string) (adapters.DBResult, error)
}

// readCheckpoint returns the last event id the projector has applied for the
// account, or 0 if the projector has never run.
func readCheckpoint(
	ctx context.Context,
	db queryer,
	tableName string,
	projectorName string,
	accountID eventlog.AccountID,
) (eventlog.EventID, error) {

	selectStmt := goqu.Dialect(dialectPostgres).
		From(tableName).
		Select(colLastEventID).
		Where(
			goqu.C(colProjectorName).Eq(projectorName),
			goqu.C(colAccountID).Eq(accountID),
		)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return 0, errors.Join(ErrReadingCheckpointFailed, toSQLErr)
	}

	rows, queryErr := db.Query(ctx, sqlQuery)
	if queryErr != nil {
		return 0, errors.Join(ErrReadingCheckpointFailed, queryErr)
	}
	defer func() { _ = rows.Close() }()

	var lastEventID eventlog.EventID
	if rows.Next() {
		if scanErr := rows.Scan(&lastEventID); scanErr != nil {
			return 0, errors.Join(ErrReadingCheckpointFailed, scanErr)
		}
	}

	return lastEventID, nil
}

// saveCheckpoint upserts the checkpoint row for (projector, account).
// It runs inside the batch transaction so the checkpoint and the read-model
// mutations of the batch commit atomically.
func saveCheckpoint(
	ctx context.Context,
	tx adapters.DBTx,
	tableName string,
	projectorName string,
	accountID eventlog.AccountID,
	lastEventID eventlog.EventID,
) error {

	upsertStmt := goqu.Dialect(dialectPostgres).
		Insert(tableName).
		Cols(colProjectorName, colAccountID, colLastEventID).
		Vals(goqu.Vals{projectorName, accountID, lastEventID}).
		OnConflict(goqu.DoUpdate(
			colProjectorName+","+colAccountID,
			goqu.Record{colLastEventID: lastEventID},
		))

	sqlQuery, _, toSQLErr := upsertStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrSavingCheckpointFailed, toSQLErr)
	}

	if _, execErr := tx.Exec(ctx, sqlQuery); execErr != nil {
		return errors.Join(ErrSavingCheckpointFailed, execErr)
	}

	return nil
}
