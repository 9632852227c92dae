package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/finlifeos/finlife-core-go/adapters"
	"github.com/finlifeos/finlife-core-go/eventlog"
)

var ErrBuildingQueryFailed = errors.New("building query failed")
var ErrQueryingEventsFailed = errors.New("querying events failed")
var ErrAppendingEventFailed = errors.New("appending event failed")
var ErrScanningDBRowFailed = errors.New("scanning database row failed")

const (
	defaultEventTableName     = "events"
	defaultSequenceTableName  = "aggregate_sequences"
	logMsgBuildQueryFailed    = "failed to build query"
	logMsgDBQueryFailed       = "database query execution failed"
	logMsgCloseRowsFailed     = "failed to close database rows"
	logMsgScanRowFailed       = "failed to scan database row"
	logMsgEventsListed        = "events listed"
	logMsgEventAppended       = "event appended"
	logMsgIdempotencyConflict = "idempotency conflict detected"
	logMsgSQLExecuted         = "executed sql for: "
	logMsgOperation           = "eventlog operation: "
	logAttrError              = "error"
	logAttrQuery              = "query"
	logAttrAccountID          = "account_id"
	logAttrEventType          = "event_type"
	logAttrEventCount         = "event_count"
	logAttrEventID            = "event_id"
	logAttrIdempotencyKey     = "idempotency_key"
	logAttrDurationMS         = "duration_ms"
	logActionAppend           = "append"
	logActionListSince        = "list_since"
	logActionGetEvent         = "get_event"
	logActionCountEvents      = "count_events"
	logActionNextAggregateID  = "next_aggregate_id"
	colID                     = "id"
	colAccountID              = "account_id"
	colActorID                = "actor_id"
	colEventType              = "event_type"
	colPayload                = "payload"
	colOccurredAt             = "occurred_at"
	colIdempotencyKey         = "idempotency_key"
	colCreatedAt              = "created_at"
	colAggregateType          = "aggregate_type"
	colLastID                 = "last_id"
	dialectPostgres           = "postgres"
	castJsonb                 = "?::jsonb"
	castTimestamp             = "?::timestamp with time zone"
)

type sqlQueryString = string

// Store is the PostgreSQL event log: the append-only source of truth the
// projectors fold into read models. It leverages a database adapter and
// supports customizable logging, metrics, and tracing.
type Store struct {
	db                adapters.DBAdapter
	eventTableName    string
	sequenceTableName string
	logger            Logger
	contextualLogger  ContextualLogger
	metricsCollector  MetricsCollector
	tracingCollector  TracingCollector
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

// NewStoreFromAdapter creates a new Store from an already wrapped adapter.
func NewStoreFromAdapter(db adapters.DBAdapter, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(db, options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (*Store, error) {
	s := &Store{
		db:                db,
		eventTableName:    defaultEventTableName,
		sequenceTableName: defaultSequenceTableName,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// DB exposes the underlying database adapter so that the projector framework
// and the occurrence generator can share the same connection handling.
func (s *Store) DB() adapters.DBAdapter {
	return s.db
}

// Append inserts a single immutable event and returns its assigned id.
//
// When the pending event carries an idempotency key that already exists in
// the log, Append fails with eventlog.ErrIdempotencyConflict. That conflict
// is a recoverable signal ("already done") which callers must distinguish
// from other storage errors via errors.Is.
func (s *Store) Append(ctx context.Context, event eventlog.PendingEvent) (eventlog.EventID, error) {
	ctx, span := s.startTraceSpan(ctx, spanAppend, map[string]string{spanAttrEventType: event.EventType})

	sqlQuery, buildErr := s.buildAppendQuery(event)
	if buildErr != nil {
		s.logError(ctx, logMsgBuildQueryFailed, buildErr, logAttrEventType, event.EventType)
		s.finishTraceSpan(span, statusError)

		return 0, buildErr
	}

	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, logActionAppend, duration)

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		s.recordErrorMetrics(logActionAppend)
		s.finishTraceSpan(span, statusError)

		return 0, errors.Join(ErrAppendingEventFailed, queryErr)
	}
	defer s.closeRows(rows)

	if !rows.Next() {
		// ON CONFLICT DO NOTHING returned no row: the idempotency key exists.
		s.logOperation(
			ctx,
			logMsgIdempotencyConflict,
			logAttrEventType, event.EventType,
			logAttrIdempotencyKey, derefOrEmpty(event.IdempotencyKey),
		)
		s.recordConflictMetrics(logActionAppend)
		s.finishTraceSpan(span, statusConflict)

		return 0, eventlog.ErrIdempotencyConflict
	}

	var eventID eventlog.EventID
	if scanErr := rows.Scan(&eventID); scanErr != nil {
		s.logError(ctx, logMsgScanRowFailed, scanErr)
		s.finishTraceSpan(span, statusError)

		return 0, errors.Join(ErrScanningDBRowFailed, scanErr)
	}

	s.logOperation(
		ctx,
		logMsgEventAppended,
		logAttrEventID, eventID,
		logAttrEventType, event.EventType,
		logAttrDurationMS, s.toMilliseconds(duration),
	)
	s.recordDurationMetrics(metricAppendDuration, duration, logActionAppend)
	s.finishTraceSpan(span, statusSuccess)

	return eventID, nil
}

// ListSince returns up to limit events of the given account with id strictly
// greater than afterID, ordered ascending by id and optionally filtered by
// event type. This is the only read path projectors use.
func (s *Store) ListSince(
	ctx context.Context,
	accountID eventlog.AccountID,
	afterID eventlog.EventID,
	limit int,
	eventTypes ...string,
) (eventlog.Events, error) {

	ctx, span := s.startTraceSpan(ctx, spanListSince, nil)

	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.eventTableName).
		Select(colID, colAccountID, colActorID, colEventType, colPayload, colOccurredAt, colIdempotencyKey, colCreatedAt).
		Where(
			goqu.C(colAccountID).Eq(accountID),
			goqu.C(colID).Gt(afterID),
		).
		Order(goqu.I(colID).Asc()).
		Limit(uint(limit))

	if len(eventTypes) > 0 {
		selectStmt = selectStmt.Where(goqu.C(colEventType).In(eventTypes))
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		s.finishTraceSpan(span, statusError)
		return nil, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, logActionListSince, duration)

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		s.recordErrorMetrics(logActionListSince)
		s.finishTraceSpan(span, statusError)

		return nil, errors.Join(ErrQueryingEventsFailed, queryErr)
	}
	defer s.closeRows(rows)

	events, scanErr := s.scanEvents(ctx, rows)
	if scanErr != nil {
		s.finishTraceSpan(span, statusError)
		return nil, scanErr
	}

	s.logOperation(
		ctx,
		logMsgEventsListed,
		logAttrAccountID, accountID,
		logAttrEventCount, len(events),
		logAttrDurationMS, s.toMilliseconds(duration),
	)
	s.recordDurationMetrics(metricQueryDuration, duration, logActionListSince)
	s.finishTraceSpan(span, statusSuccess)

	return events, nil
}

// GetEvent returns a single event by id, or eventlog.ErrEventNotFound.
func (s *Store) GetEvent(ctx context.Context, eventID eventlog.EventID) (eventlog.Event, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.eventTableName).
		Select(colID, colAccountID, colActorID, colEventType, colPayload, colOccurredAt, colIdempotencyKey, colCreatedAt).
		Where(goqu.C(colID).Eq(eventID))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return eventlog.Event{}, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, logActionGetEvent, time.Since(start))

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return eventlog.Event{}, errors.Join(ErrQueryingEventsFailed, queryErr)
	}
	defer s.closeRows(rows)

	events, scanErr := s.scanEvents(ctx, rows)
	if scanErr != nil {
		return eventlog.Event{}, scanErr
	}

	if len(events) == 0 {
		return eventlog.Event{}, eventlog.ErrEventNotFound
	}

	return events[0], nil
}

// CountEvents counts the events of an account, optionally filtered by type.
func (s *Store) CountEvents(ctx context.Context, accountID eventlog.AccountID, eventTypes ...string) (int, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.eventTableName).
		Select(goqu.COUNT(colID)).
		Where(goqu.C(colAccountID).Eq(accountID))

	if len(eventTypes) > 0 {
		selectStmt = selectStmt.Where(goqu.C(colEventType).In(eventTypes))
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return 0, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, logActionCountEvents, time.Since(start))

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return 0, errors.Join(ErrQueryingEventsFailed, queryErr)
	}
	defer s.closeRows(rows)

	count := 0
	if rows.Next() {
		if scanErr := rows.Scan(&count); scanErr != nil {
			return 0, errors.Join(ErrScanningDBRowFailed, scanErr)
		}
	}

	return count, nil
}

func (s *Store) buildAppendQuery(event eventlog.PendingEvent) (sqlQueryString, error) {
	var actorID any
	if event.ActorID != nil {
		actorID = *event.ActorID
	}

	var idempotencyKey any
	if event.IdempotencyKey != nil {
		idempotencyKey = *event.IdempotencyKey
	}

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(s.eventTableName).
		Cols(colAccountID, colActorID, colEventType, colPayload, colOccurredAt, colIdempotencyKey).
		Vals(goqu.Vals{
			event.AccountID,
			actorID,
			event.EventType,
			goqu.L(castJsonb, string(event.Payload)),
			goqu.L(castTimestamp, event.OccurredAt),
			idempotencyKey,
		}).
		OnConflict(goqu.DoNothing()).
		Returning(colID)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (s *Store) scanEvents(ctx context.Context, rows adapters.DBRows) (eventlog.Events, error) {
	events := make(eventlog.Events, 0)

	for rows.Next() {
		var (
			event          eventlog.Event
			actorID        sql.NullInt64
			idempotencyKey sql.NullString
		)

		scanErr := rows.Scan(
			&event.ID,
			&event.AccountID,
			&actorID,
			&event.EventType,
			&event.Payload,
			&event.OccurredAt,
			&idempotencyKey,
			&event.CreatedAt,
		)
		if scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, scanErr)
			return nil, errors.Join(ErrScanningDBRowFailed, scanErr)
		}

		if actorID.Valid {
			event.ActorID = &actorID.Int64
		}

		if idempotencyKey.Valid {
			event.IdempotencyKey = &idempotencyKey.String
		}

		events = append(events, event)
	}

	return events, nil
}

func (s *Store) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if s.logger != nil {
			s.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
