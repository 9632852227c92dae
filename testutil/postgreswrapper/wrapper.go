package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlifeos/finlife-core-go/adapters"
	"github.com/finlifeos/finlife-core-go/eventlog/postgresengine"
	"github.com/finlifeos/finlife-core-go/schema"
	"github.com/finlifeos/finlife-core-go/testutil/config"
)

// Adapter type constants.
const (
	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"
)

// readModelTables lists every table the test cleanup truncates.
var readModelTables = []string{
	"events",
	"aggregate_sequences",
	"projector_checkpoints",
	"wallet_balances",
	"goal_infos",
	"goal_wallet_balances",
	"pending_goal_credits",
	"categories",
	"work_categories",
	"transactions_feed",
	"budget_months",
	"budget_lines",
	"recurrence_rules",
	"tasks",
	"habits",
	"habit_occurrences",
	"task_templates",
	"task_occurrences",
	"operation_templates",
	"operation_occurrences",
	"calendar_events",
	"event_occurrences",
	"event_default_reminders",
	"event_reminders",
	"event_filter_presets",
	"wishes",
	"xp_events",
	"user_xp_state",
	"user_activity_daily",
}

// Wrapper abstracts over the adapter-specific connection handling.
type Wrapper interface {
	GetStore() *postgresengine.Store
	DB() adapters.DBAdapter
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing.
type PGXPoolWrapper struct {
	pool  *pgxpool.Pool
	store *postgresengine.Store
}

func (w *PGXPoolWrapper) GetStore() *postgresengine.Store {
	return w.store
}

func (w *PGXPoolWrapper) DB() adapters.DBAdapter {
	return w.store.DB()
}

func (w *PGXPoolWrapper) Close() {
	w.pool.Close()
}

// SQLDBWrapper wraps sql.DB-based testing.
type SQLDBWrapper struct {
	db    *sql.DB
	store *postgresengine.Store
}

func (w *SQLDBWrapper) GetStore() *postgresengine.Store {
	return w.store
}

func (w *SQLDBWrapper) DB() adapters.DBAdapter {
	return w.store.DB()
}

func (w *SQLDBWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// SQLXWrapper wraps sqlx.DB-based testing.
type SQLXWrapper struct {
	db    *sqlx.DB
	store *postgresengine.Store
}

func (w *SQLXWrapper) GetStore() *postgresengine.Store {
	return w.store
}

func (w *SQLXWrapper) DB() adapters.DBAdapter {
	return w.store.DB()
}

func (w *SQLXWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// CreateWrapperWithTestConfig creates the appropriate wrapper based on the
// ADAPTER_TYPE environment variable and applies the schema.
func CreateWrapperWithTestConfig(t testing.TB) Wrapper {
	t.Helper()

	cfg := config.Load()
	wrapper := createWrapper(t, cfg)

	_, err := wrapper.DB().Exec(context.Background(), schema.DDL)
	require.NoError(t, err, "error applying schema in test setup")

	return wrapper
}

func createWrapper(t testing.TB, cfg config.TestConfig) Wrapper {
	t.Helper()

	switch strings.ToLower(cfg.AdapterType) {
	case typePGXPool, "":
		connPool, err := pgxpool.NewWithConfig(context.Background(), config.PostgresPGXPoolConfig(cfg.PostgresDSN))
		require.NoError(t, err, "error connecting to DB pool in test setup")

		store, err := postgresengine.NewStoreFromPGXPool(connPool)
		require.NoError(t, err, "error creating event log store")

		return &PGXPoolWrapper{pool: connPool, store: store}

	case typeSQLDB:
		db := config.PostgresSQLDBConfig(cfg.PostgresDSN)

		store, err := postgresengine.NewStoreFromSQLDB(db)
		require.NoError(t, err, "error creating event log store")

		return &SQLDBWrapper{db: db, store: store}

	case typeSQLXDB:
		db := config.PostgresSQLXConfig(cfg.PostgresDSN)

		store, err := postgresengine.NewStoreFromSQLX(db)
		require.NoError(t, err, "error creating event log store")

		return &SQLXWrapper{db: db, store: store}

	default:
		panic(fmt.Sprintf("unsupported adapter type from env: %s", cfg.AdapterType))
	}
}

// CleanUp truncates all tables so each test starts from an empty database.
func CleanUp(t testing.TB, wrapper Wrapper) {
	t.Helper()

	query := "TRUNCATE TABLE " + strings.Join(readModelTables, ", ") + " RESTART IDENTITY"

	_, err := wrapper.DB().Exec(context.Background(), query)
	assert.NoError(t, err, "error cleaning up test tables")
}

// CountRows counts the rows of a table matching an optional WHERE clause.
func CountRows(t testing.TB, wrapper Wrapper, table string, where string) int {
	t.Helper()

	query := "SELECT count(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}

	rows, err := wrapper.DB().Query(context.Background(), query)
	require.NoError(t, err, "error counting rows")
	defer func() { _ = rows.Close() }()

	require.True(t, rows.Next(), "count query returned no row")

	count := 0
	require.NoError(t, rows.Scan(&count), "error scanning row count")

	return count
}

// QueryDecimal reads a single numeric column as text, e.g. a wallet balance.
func QueryDecimal(t testing.TB, wrapper Wrapper, query string) string {
	t.Helper()

	rows, err := wrapper.DB().Query(context.Background(), query)
	require.NoError(t, err, "error querying decimal")
	defer func() { _ = rows.Close() }()

	require.True(t, rows.Next(), "decimal query returned no row")

	var value string
	require.NoError(t, rows.Scan(&value), "error scanning decimal")

	return value
}
