// Package eventlog provides the core types of the append-only event log:
// the immutable Event record, the PendingEvent used to append new events,
// and the sentinel errors callers discriminate on.
//
// The event log is the source of truth of the whole application. Events are
// never updated or deleted; read models are derived from them by projectors
// (see package projection) and can always be rebuilt from scratch.
package eventlog
