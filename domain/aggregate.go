package domain

// Aggregate type names used with the event store's per-account id sequences.
const (
	AggregateWallet            = "wallet"
	AggregateTransaction       = "transaction"
	AggregateGoal              = "goal"
	AggregateCategory          = "category"
	AggregateWorkCategory      = "work_category"
	AggregateHabit             = "habit"
	AggregateTask              = "task"
	AggregateTaskTemplate      = "task_template"
	AggregateOperationTemplate = "operation_template"
	AggregateRecurrenceRule    = "recurrence_rule"
	AggregateCalendarEvent     = "calendar_event"
	AggregateWish              = "wish"
	AggregateBudgetMonth       = "budget_month"
	AggregateBudgetLine        = "budget_line"
	AggregateOccurrence        = "occurrence"
)
