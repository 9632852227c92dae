package projection

import (
	"context"

	"github.com/finlifeos/finlife-core-go/adapters"
	"github.com/finlifeos/finlife-core-go/eventlog"
)

// Projector derives and maintains one read-model family by folding events in
// id order. Implementations live in package readmodels.
type Projector interface {
	// Name returns the unique projector name used to key its checkpoint rows.
	Name() string

	// EventTypes returns the event types this projector consumes, used to
	// filter the log read. Nil or empty means all events are delivered.
	EventTypes() []string

	// Handle applies a single event to the projector's read-model tables.
	// It runs inside the batch transaction and must be idempotent.
	Handle(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error

	// Reset deletes all read-model rows of this projector for the account.
	// It runs inside a transaction together with zeroing the checkpoint.
	Reset(ctx context.Context, tx adapters.DBTx, accountID eventlog.AccountID) error
}

// EventReader is the slice of the event log store the runner needs.
type EventReader interface {
	ListSince(
		ctx context.Context,
		accountID eventlog.AccountID,
		afterID eventlog.EventID,
		limit int,
		eventTypes ...string,
	) (eventlog.Events, error)
}
