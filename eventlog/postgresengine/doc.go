// Package postgresengine provides the PostgreSQL implementation of the
// event log: appending immutable events with optional idempotency keys,
// reading them back in strict id order for projectors, and generating
// per-aggregate ids without scanning the log.
//
// The engine supports multiple database libraries (pgx.Pool, sql.DB, sqlx.DB)
// through the shared adapters package, builds all SQL with goqu, and exposes
// optional observability hooks (logging, metrics, tracing) via functional
// options.
package postgresengine
