package eventlog

import (
	"encoding/json"
	"errors"
	"time"
)

var ErrInvalidPayloadJSON = errors.New("payload json is not valid")
var ErrEmptyEventType = errors.New("empty event type supplied")
var ErrIdempotencyConflict = errors.New("idempotency key already exists")
var ErrEventNotFound = errors.New("event not found")

// EventID identifies an event in the log. IDs are assigned by the store and
// are strictly monotonic per deployment.
type EventID = int64

// AccountID identifies the account (tenant) an event belongs to.
type AccountID = int64

// Events is an alias type for a slice of Event.
type Events = []Event

// Event is an immutable record read back from the event log.
//
// Payload is raw JSON whose schema depends on EventType; package domain holds
// the typed payload definitions. While its properties are exported, an Event
// is only ever constructed by the store when scanning rows.
type Event struct {
	ID             EventID
	AccountID      AccountID
	ActorID        *int64
	EventType      string
	Payload        []byte
	OccurredAt     time.Time
	IdempotencyKey *string
	CreatedAt      time.Time
}

// PendingEvent is the write-side DTO handed to the store's Append.
//
// It is built on scalars to be completely agnostic of how domain events are
// modeled in client code. It should only be constructed with the supplied
// factory methods:
//   - BuildPendingEvent
//   - BuildPendingEventWithKey
type PendingEvent struct {
	AccountID      AccountID
	ActorID        *int64
	EventType      string
	Payload        []byte
	OccurredAt     time.Time
	IdempotencyKey *string
}

// BuildPendingEvent is a factory method for PendingEvent.
//
// Returns an error if eventType is empty or payload is not valid JSON.
func BuildPendingEvent(accountID AccountID, eventType string, payload []byte, occurredAt time.Time) (PendingEvent, error) {
	if eventType == "" {
		return PendingEvent{}, ErrEmptyEventType
	}

	if !json.Valid(payload) {
		return PendingEvent{}, ErrInvalidPayloadJSON
	}

	return PendingEvent{
		AccountID:  accountID,
		EventType:  eventType,
		Payload:    payload,
		OccurredAt: occurredAt,
	}, nil
}

// BuildPendingEventWithKey is a factory method for PendingEvent carrying an
// idempotency key. Appending two events with the same key fails with
// ErrIdempotencyConflict on the second append, giving at-most-once semantics
// for the logical action the key names.
func BuildPendingEventWithKey(
	accountID AccountID,
	eventType string,
	payload []byte,
	occurredAt time.Time,
	idempotencyKey string,
) (PendingEvent, error) {

	event, err := BuildPendingEvent(accountID, eventType, payload, occurredAt)
	if err != nil {
		return PendingEvent{}, err
	}

	event.IdempotencyKey = &idempotencyKey

	return event, nil
}

// WithActor returns a copy of the pending event attributed to the given actor.
func (e PendingEvent) WithActor(actorID int64) PendingEvent {
	e.ActorID = &actorID
	return e
}
