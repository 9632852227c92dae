package readmodels

import (
	"github.com/finlifeos/finlife-core-go/projection"
)

// RegisterAll registers every projector on the orchestrator in dependency
// order. Reference data comes first, then the projectors that read it
// mid-handler: goal-wallet balances look up goal_infos, templates look up
// recurrence_rules, and habits resolve their rule's frequency.
//
// The appender is used by the habits projector to emit milestone events; pass
// nil to disable milestone emission.
func RegisterAll(orchestrator *projection.Orchestrator, appender EventAppender) {
	orchestrator.Register(NewRecurrenceRulesProjector())
	orchestrator.Register(NewCategoriesProjector())
	orchestrator.Register(NewWorkCategoriesProjector())
	orchestrator.Register(NewGoalsProjector())
	orchestrator.Register(NewWalletBalancesProjector())
	orchestrator.Register(NewGoalWalletBalancesProjector())
	orchestrator.Register(NewTransactionsFeedProjector())
	orchestrator.Register(NewBudgetProjector())
	orchestrator.Register(NewHabitsProjector(appender))
	orchestrator.Register(NewTasksProjector())
	orchestrator.Register(NewTaskTemplatesProjector())
	orchestrator.Register(NewOperationTemplatesProjector())
	orchestrator.Register(NewCalendarProjector())
	orchestrator.Register(NewWishesProjector())
	orchestrator.Register(NewXpProjector())
	orchestrator.Register(NewActivityProjector())
}
