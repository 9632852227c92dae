// Package readmodels contains the concrete projectors, one per read-model
// family. Each folds its slice of the event stream into derived tables and
// owns those tables exclusively: no other code writes them.
//
// Every handler is idempotent. Creation handlers check for an existing row
// before inserting, update handlers apply only the fields present in the
// payload, and correction handlers reverse the old effect before applying
// the new one.
package readmodels
