package readmodels_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlifeos/finlife-core-go/domain"
	"github.com/finlifeos/finlife-core-go/projection"
	"github.com/finlifeos/finlife-core-go/readmodels"
	"github.com/finlifeos/finlife-core-go/testutil/fixtures"
	"github.com/finlifeos/finlife-core-go/testutil/postgreswrapper"
)

const pipelineAccountID = int64(1)

func newPipeline(t *testing.T, wrapper postgreswrapper.Wrapper) *projection.Orchestrator {
	t.Helper()

	store := wrapper.GetStore()

	runner, err := projection.NewRunner(store, wrapper.DB())
	require.NoError(t, err)

	orchestrator := projection.NewOrchestrator(runner)
	readmodels.RegisterAll(orchestrator, store)

	return orchestrator
}

func queryInt(t *testing.T, wrapper postgreswrapper.Wrapper, query string) int {
	t.Helper()

	value, err := strconv.Atoi(postgreswrapper.QueryDecimal(t, wrapper, query))
	require.NoError(t, err)

	return value
}

func Test_Pipeline_WalletBalanceReflectsAllTransactions(t *testing.T) {
	// setup
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	postgreswrapper.CleanUp(t, wrapper)

	store := wrapper.GetStore()
	orchestrator := newPipeline(t, wrapper)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// arrange
	at := time.Date(2025, time.June, 9, 10, 0, 0, 0, time.UTC)
	fixtures.GivenAppended(t, ctx, store,
		fixtures.WalletCreated(t, 1, pipelineAccountID, "Cash", "RUB", domain.WalletTypeRegular, decimal.NewFromInt(1000), at))
	fixtures.GivenAppended(t, ctx, store,
		fixtures.ExpenseCreated(t, 1, pipelineAccountID, 1, decimal.NewFromInt(300), "RUB", at.Add(time.Minute)))
	fixtures.GivenAppended(t, ctx, store,
		fixtures.IncomeCreated(t, 2, pipelineAccountID, 1, decimal.NewFromInt(50), "RUB", at.Add(2*time.Minute)))

	// act
	counts, err := orchestrator.RunAll(ctx, pipelineAccountID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, counts["wallet_balances"])

	balance := postgreswrapper.QueryDecimal(t, wrapper,
		"SELECT balance::text FROM wallet_balances WHERE wallet_id = 1")
	assert.Equal(t, "750.00", balance)

	assert.Equal(t, 2, postgreswrapper.CountRows(t, wrapper, "transactions_feed", ""))
}

func Test_Pipeline_CorrectionReversesOldImpactBeforeApplyingNew(t *testing.T) {
	// setup
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	postgreswrapper.CleanUp(t, wrapper)

	store := wrapper.GetStore()
	orchestrator := newPipeline(t, wrapper)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// arrange
	at := time.Date(2025, time.June, 9, 10, 0, 0, 0, time.UTC)
	walletID := int64(1)

	fixtures.GivenAppended(t, ctx, store,
		fixtures.WalletCreated(t, walletID, pipelineAccountID, "Cash", "RUB", domain.WalletTypeRegular, decimal.NewFromInt(1000), at))
	fixtures.GivenAppended(t, ctx, store,
		fixtures.ExpenseCreated(t, 1, pipelineAccountID, walletID, decimal.NewFromInt(300), "RUB", at.Add(time.Minute)))

	correction := domain.TransactionUpdated{
		TransactionID:    1,
		AccountID:        pipelineAccountID,
		UpdatedAt:        domain.NewTimestamp(at.Add(2 * time.Minute)),
		OldOperationType: domain.OperationExpense,
		OldAmount:        decimal.NewFromInt(300),
		OldWalletID:      &walletID,
		OperationType:    domain.OperationExpense,
		Currency:         "RUB",
		Amount:           domain.Some(decimal.NewFromInt(50)),
	}
	fixtures.GivenAppended(t, ctx, store,
		fixtures.Pending(t, pipelineAccountID, domain.EventTypeTransactionUpdated, correction, at.Add(2*time.Minute)))

	// act
	_, err := orchestrator.RunAll(ctx, pipelineAccountID)

	// assert
	require.NoError(t, err)

	balance := postgreswrapper.QueryDecimal(t, wrapper,
		"SELECT balance::text FROM wallet_balances WHERE wallet_id = 1")
	assert.Equal(t, "950.00", balance, "1000 - 300, then +300 reversal and -50 correction")
}

func Test_Pipeline_DeferredGoalCreditDrainsExactlyOnce(t *testing.T) {
	// setup
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	postgreswrapper.CleanUp(t, wrapper)

	store := wrapper.GetStore()
	orchestrator := newPipeline(t, wrapper)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// arrange: the savings wallet arrives before its system goal exists
	at := time.Date(2025, time.June, 9, 10, 0, 0, 0, time.UTC)
	fixtures.GivenAppended(t, ctx, store,
		fixtures.WalletCreated(t, 2, pipelineAccountID, "Stash", "RUB", domain.WalletTypeSavings, decimal.NewFromInt(500), at))
	fixtures.GivenAppended(t, ctx, store,
		fixtures.GoalCreated(t, 9, pipelineAccountID, "Free money", "RUB", true, at.Add(time.Minute)))

	// act
	_, err := orchestrator.RunAll(ctx, pipelineAccountID)

	// assert
	require.NoError(t, err)

	assert.Equal(t, 0, postgreswrapper.CountRows(t, wrapper, "pending_goal_credits", ""))

	credited := postgreswrapper.QueryDecimal(t, wrapper,
		"SELECT amount::text FROM goal_wallet_balances WHERE goal_id = 9 AND wallet_id = 2")
	assert.Equal(t, "500.00", credited)

	// act again: a second run must not credit twice
	counts, rerunErr := orchestrator.RunAll(ctx, pipelineAccountID)

	// assert
	require.NoError(t, rerunErr)
	assert.Equal(t, 0, counts["goal_wallet_balances"])

	credited = postgreswrapper.QueryDecimal(t, wrapper,
		"SELECT amount::text FROM goal_wallet_balances WHERE goal_id = 9 AND wallet_id = 2")
	assert.Equal(t, "500.00", credited)
}

func Test_Pipeline_AwardsXpAndActivityPoints(t *testing.T) {
	// setup
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	postgreswrapper.CleanUp(t, wrapper)

	store := wrapper.GetStore()
	orchestrator := newPipeline(t, wrapper)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// arrange: one transaction (5 XP) and one early task completion (12 XP)
	at := time.Date(2025, time.June, 9, 10, 0, 0, 0, time.UTC)
	dueDate := domain.NewDate(2025, time.June, 10)

	fixtures.GivenAppended(t, ctx, store,
		fixtures.WalletCreated(t, 1, pipelineAccountID, "Cash", "RUB", domain.WalletTypeRegular, decimal.NewFromInt(0), at))
	fixtures.GivenAppended(t, ctx, store,
		fixtures.IncomeCreated(t, 1, pipelineAccountID, 1, decimal.NewFromInt(100), "RUB", at))
	fixtures.GivenAppended(t, ctx, store,
		fixtures.TaskCreated(t, 3, pipelineAccountID, "File taxes", &dueDate, at))
	fixtures.GivenAppended(t, ctx, store,
		fixtures.TaskCompleted(t, 3, pipelineAccountID, at.Add(30*time.Minute)))

	// act
	_, err := orchestrator.RunAll(ctx, pipelineAccountID)

	// assert
	require.NoError(t, err)

	assert.Equal(t, 17, queryInt(t, wrapper,
		"SELECT total_xp::text FROM user_xp_state WHERE user_id = 1"))
	assert.Equal(t, 1, queryInt(t, wrapper,
		"SELECT level::text FROM user_xp_state WHERE user_id = 1"))
	assert.Equal(t, 2, postgreswrapper.CountRows(t, wrapper, "xp_events", "user_id = 1"))

	// 10:00 UTC is 13:00 MSK, still June 9
	assert.Equal(t, 1, queryInt(t, wrapper,
		"SELECT ops_count::text FROM user_activity_daily WHERE user_id = 1 AND day_date = '2025-06-09'"))
	assert.Equal(t, 1, queryInt(t, wrapper,
		"SELECT tasks_count::text FROM user_activity_daily WHERE user_id = 1 AND day_date = '2025-06-09'"))
	assert.Equal(t, 3, queryInt(t, wrapper,
		"SELECT points::text FROM user_activity_daily WHERE user_id = 1 AND day_date = '2025-06-09'"))
}

func Test_Pipeline_ReplayAndRebuildAreIdempotent(t *testing.T) {
	// setup
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	postgreswrapper.CleanUp(t, wrapper)

	store := wrapper.GetStore()
	orchestrator := newPipeline(t, wrapper)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// arrange
	at := time.Date(2025, time.June, 9, 10, 0, 0, 0, time.UTC)
	fixtures.GivenAppended(t, ctx, store,
		fixtures.WalletCreated(t, 1, pipelineAccountID, "Cash", "RUB", domain.WalletTypeRegular, decimal.NewFromInt(1000), at))
	fixtures.GivenAppended(t, ctx, store,
		fixtures.ExpenseCreated(t, 1, pipelineAccountID, 1, decimal.NewFromInt(300), "RUB", at.Add(time.Minute)))

	_, err := orchestrator.RunAll(ctx, pipelineAccountID)
	require.NoError(t, err)

	balanceAfterFirstRun := postgreswrapper.QueryDecimal(t, wrapper,
		"SELECT balance::text FROM wallet_balances WHERE wallet_id = 1")
	require.Equal(t, "700.00", balanceAfterFirstRun)

	// act: rerun without new events
	counts, rerunErr := orchestrator.RunAll(ctx, pipelineAccountID)

	// assert
	require.NoError(t, rerunErr)
	for projector, count := range counts {
		assert.Zero(t, count, "projector %s reprocessed events", projector)
	}

	// act: full rebuild from scratch
	require.NoError(t, orchestrator.ResetAll(ctx, pipelineAccountID))

	rebuildCounts, rebuildErr := orchestrator.RunAll(ctx, pipelineAccountID)

	// assert
	require.NoError(t, rebuildErr)
	assert.Equal(t, 2, rebuildCounts["wallet_balances"])

	balanceAfterRebuild := postgreswrapper.QueryDecimal(t, wrapper,
		"SELECT balance::text FROM wallet_balances WHERE wallet_id = 1")
	assert.Equal(t, balanceAfterFirstRun, balanceAfterRebuild)
}

func Test_Pipeline_HabitStreakMilestoneFiresAtMostOnce(t *testing.T) {
	// setup
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	postgreswrapper.CleanUp(t, wrapper)

	store := wrapper.GetStore()

	runner, err := projection.NewRunner(store, wrapper.DB())
	require.NoError(t, err)

	today := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return today }

	orchestrator := projection.NewOrchestrator(runner)
	orchestrator.Register(readmodels.NewRecurrenceRulesProjector())
	orchestrator.Register(readmodels.NewHabitsProjector(store, readmodels.WithHabitsClock(clock)))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// arrange: a daily habit with seven scheduled days ending today
	at := time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC)
	fixtures.GivenAppended(t, ctx, store,
		fixtures.RuleCreated(t, 1, pipelineAccountID, "DAILY", domain.NewDate(2025, time.June, 1), at, nil))
	fixtures.GivenAppended(t, ctx, store,
		fixtures.HabitCreated(t, 3, pipelineAccountID, 1, "Stretch", domain.NewDate(2025, time.June, 1), at))

	for i := range 7 {
		scheduled := time.Date(2025, time.June, 4+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		_, execErr := wrapper.DB().Exec(ctx,
			"INSERT INTO habit_occurrences (id, account_id, habit_id, scheduled_date, status) VALUES ("+
				strconv.Itoa(i+1)+", 1, 3, '"+scheduled+"', 'ACTIVE')")
		require.NoError(t, execErr)
	}

	for i := range 7 {
		completedAt := domain.NewTimestamp(today)
		fixtures.GivenAppended(t, ctx, store,
			fixtures.Pending(t, pipelineAccountID, domain.EventTypeHabitOccurrenceCompleted, domain.HabitOccurrenceStatus{
				HabitID:      3,
				OccurrenceID: int64(i + 1),
				Status:       domain.OccurrenceStatusDone,
				CompletedAt:  &completedAt,
			}, at.Add(time.Duration(i)*time.Minute)))
	}

	// act
	_, err = orchestrator.RunAll(ctx, pipelineAccountID)

	// assert
	require.NoError(t, err)

	assert.Equal(t, 7, queryInt(t, wrapper,
		"SELECT current_streak::text FROM habits WHERE habit_id = 3"))
	assert.Equal(t, 7, queryInt(t, wrapper,
		"SELECT best_streak::text FROM habits WHERE habit_id = 3"))
	assert.Equal(t, 1, postgreswrapper.CountRows(t, wrapper, "events",
		"event_type = 'habit_milestone_reached' AND idempotency_key = 'habit-milestone-3-7'"))

	// act again: the milestone event itself must not retrigger anything
	counts, rerunErr := orchestrator.RunAll(ctx, pipelineAccountID)

	// assert
	require.NoError(t, rerunErr)
	assert.Zero(t, counts["habits"])
	assert.Equal(t, 1, postgreswrapper.CountRows(t, wrapper, "events",
		"event_type = 'habit_milestone_reached'"))
}

func Test_Pipeline_CalendarEventOccurrenceAndReminderAreProjected(t *testing.T) {
	// setup
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	postgreswrapper.CleanUp(t, wrapper)

	store := wrapper.GetStore()
	orchestrator := newPipeline(t, wrapper)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// arrange
	at := time.Date(2025, time.June, 9, 10, 0, 0, 0, time.UTC)
	offsetMinutes := 30

	fixtures.GivenAppended(t, ctx, store,
		fixtures.Pending(t, pipelineAccountID, domain.EventTypeCalendarEventCreated, domain.CalendarEventCreated{
			EventID:    40,
			AccountID:  pipelineAccountID,
			Title:      "Dentist",
			CategoryID: 1,
			Importance: 2,
		}, at))
	fixtures.GivenAppended(t, ctx, store,
		fixtures.Pending(t, pipelineAccountID, domain.EventTypeEventOccurrenceCreated, domain.EventOccurrenceCreated{
			OccurrenceID: 7,
			AccountID:    pipelineAccountID,
			EventID:      40,
			StartDate:    domain.NewDate(2025, time.June, 12),
		}, at.Add(time.Minute)))
	fixtures.GivenAppended(t, ctx, store,
		fixtures.Pending(t, pipelineAccountID, domain.EventTypeEventReminderCreated, domain.EventReminderCreated{
			ReminderID:    1,
			OccurrenceID:  7,
			Channel:       "PUSH",
			Mode:          "OFFSET",
			OffsetMinutes: &offsetMinutes,
		}, at.Add(2*time.Minute)))
	fixtures.GivenAppended(t, ctx, store,
		fixtures.Pending(t, pipelineAccountID, domain.EventTypeCalendarEventUpdated, domain.CalendarEventUpdated{
			EventID:    40,
			Importance: domain.Some(3),
		}, at.Add(3*time.Minute)))

	// act
	counts, err := orchestrator.RunAll(ctx, pipelineAccountID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 4, counts["calendar"])

	assert.Equal(t, 3, queryInt(t, wrapper,
		"SELECT importance::text FROM calendar_events WHERE event_id = 40"))
	assert.Equal(t, 1, postgreswrapper.CountRows(t, wrapper, "calendar_events",
		"event_id = 40 AND title = 'Dentist' AND is_active"))
	assert.Equal(t, 1, postgreswrapper.CountRows(t, wrapper, "event_occurrences",
		"event_id = 40 AND start_date = '2025-06-12' AND source = 'manual' AND NOT is_cancelled"))
	assert.Equal(t, 1, postgreswrapper.CountRows(t, wrapper, "event_reminders",
		"occurrence_id = 7 AND channel = 'PUSH' AND offset_minutes = 30 AND is_enabled"))
}
