// Package projection provides the generic projector framework: a checkpointed
// batch runner that folds unseen events from the event log into read models,
// and an orchestrator that runs a fixed, dependency-ordered list of projectors
// per account.
//
// Every projector owns its read-model tables exclusively and its Handle must
// be idempotent: replaying an event against already-updated state must not
// change the result further. Idempotence is achieved with existence checks
// before inserts, partial-field merges on updates, and reversal-then-reapply
// on correction events.
package projection
