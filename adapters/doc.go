// Package adapters provides database adapter implementations shared by the
// event log, the projector framework, and the occurrence generator.
//
// This package implements the adapter pattern to support multiple PostgreSQL
// database libraries: pgx.Pool, sql.DB, and sqlx.DB. All adapters provide
// equivalent functionality through a common DBAdapter interface, allowing the
// pipeline to work seamlessly with any supported database connection type.
//
// In addition to plain query execution the adapters expose transactions via
// Begin, because projector batches must commit read-model mutations and the
// checkpoint atomically.
package adapters
