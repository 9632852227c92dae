// Package occurrence lazily materializes occurrence rows for recurring
// entities: habits, task templates, operation templates, and repeating
// calendar events.
//
// The generator computes a generation window per entity, asks the recurrence
// engine for the scheduled dates inside it, diffs against the rows that
// already exist, and inserts only the missing ones as ACTIVE. It never
// mutates or deletes persisted occurrences, so it is safe to call on every
// page load.
package occurrence
