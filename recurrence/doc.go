// Package recurrence implements the deterministic recurrence engine: a pure
// mapping from a rule plus a date window to a sorted list of
// occurrence dates. It performs no I/O.
//
// Dates are represented as time.Time values truncated to UTC midnight; the
// engine only ever looks at year, month, and day.
package recurrence
