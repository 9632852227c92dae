// Package domain defines the typed event payloads of the system: one struct
// per event type, with Decode functions that validate the raw JSON stored in
// the event log and Encode helpers that produce it.
//
// Update payloads use Optional fields so handlers can tell an untouched field
// apart from one explicitly cleared to null.
package domain
