package projection

import (
	"context"
	"fmt"

	"github.com/finlifeos/finlife-core-go/eventlog"
)

// Orchestrator runs a fixed, ordered list of projectors per account.
//
// Registration order is execution order. Order matters because some
// projectors read another projector's read model mid-handler: for example the
// goal-wallet ledger looks up the goals read model, so the goals projector
// must run first.
type Orchestrator struct {
	runner     *Runner
	projectors []Projector
}

// NewOrchestrator creates an Orchestrator using the given runner.
func NewOrchestrator(runner *Runner) *Orchestrator {
	return &Orchestrator{runner: runner}
}

// Register appends a projector to the execution list.
func (o *Orchestrator) Register(projector Projector) {
	o.projectors = append(o.projectors, projector)
}

// RunAll runs all registered projectors in registration order and returns a
// map of processed event counts per projector name. The first failing
// projector aborts the run; counts processed so far are still returned.
func (o *Orchestrator) RunAll(ctx context.Context, accountID eventlog.AccountID) (map[string]int, error) {
	results := make(map[string]int, len(o.projectors))

	for _, projector := range o.projectors {
		count, err := o.runner.Run(ctx, projector, accountID)
		results[projector.Name()] = count

		if err != nil {
			return results, fmt.Errorf("running projector %s: %w", projector.Name(), err)
		}
	}

	return results, nil
}

// ResetAll resets all registered projectors for the account, enabling a full
// from-scratch rebuild via RunAll.
func (o *Orchestrator) ResetAll(ctx context.Context, accountID eventlog.AccountID) error {
	for _, projector := range o.projectors {
		if err := o.runner.Reset(ctx, projector, accountID); err != nil {
			return fmt.Errorf("resetting projector %s: %w", projector.Name(), err)
		}
	}

	return nil
}
