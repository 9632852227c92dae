// Package schema ships the DDL for the event log and all read-model tables.
package schema

import _ "embed"

// DDL holds the full schema. Every statement is idempotent, so it can be
// applied on startup and in test setup alike.
//
//go:embed schema.sql
var DDL string
