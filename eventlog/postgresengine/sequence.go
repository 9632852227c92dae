package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
)

var ErrGeneratingAggregateIDFailed = errors.New("generating aggregate id failed")

// NextAggregateID returns the next id for an aggregate type (wallet, goal,
// habit, ...) of an account.
//
// Ids come from a dedicated counter row updated with a single atomic
// INSERT ... ON CONFLICT DO UPDATE ... RETURNING statement, so concurrent
// requests for the same account never observe the same id. This deliberately
// replaces id generation by scanning MAX(payload->>'id') over the event log,
// which races under concurrent appends.
func (s *Store) NextAggregateID(ctx context.Context, accountID int64, aggregateType string) (int64, error) {
	upsertStmt := goqu.Dialect(dialectPostgres).
		Insert(s.sequenceTableName).
		Cols(colAccountID, colAggregateType, colLastID).
		Vals(goqu.Vals{accountID, aggregateType, 1}).
		OnConflict(goqu.DoUpdate(
			colAccountID+","+colAggregateType,
			goqu.Record{colLastID: goqu.L(s.sequenceTableName + "." + colLastID + " + 1")},
		)).
		Returning(colLastID)

	sqlQuery, _, toSQLErr := upsertStmt.ToSQL()
	if toSQLErr != nil {
		return 0, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, logActionNextAggregateID, time.Since(start))

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return 0, errors.Join(ErrGeneratingAggregateIDFailed, queryErr)
	}
	defer s.closeRows(rows)

	if !rows.Next() {
		return 0, ErrGeneratingAggregateIDFailed
	}

	var nextID int64
	if scanErr := rows.Scan(&nextID); scanErr != nil {
		return 0, errors.Join(ErrScanningDBRowFailed, scanErr)
	}

	return nextID, nil
}
