package fixtures

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/finlifeos/finlife-core-go/domain"
	"github.com/finlifeos/finlife-core-go/eventlog"
)

// Appender is the slice of the event log store the fixtures need.
type Appender interface {
	Append(ctx context.Context, event eventlog.PendingEvent) (eventlog.EventID, error)
}

// UniqueKey returns a collision-free idempotency key, so tests sharing a
// database never trip over each other's keys.
func UniqueKey(prefix string) string {
	return prefix + "-" + uuid.Must(uuid.NewV7()).String()
}

// Pending encodes a typed payload into a pending event, failing the test on
// encoding errors.
func Pending(t testing.TB, accountID int64, eventType string, payload any, occurredAt time.Time) eventlog.PendingEvent {
	t.Helper()

	raw, err := domain.EncodePayload(payload)
	require.NoError(t, err, "error encoding fixture payload")

	event, err := eventlog.BuildPendingEvent(accountID, eventType, raw, occurredAt)
	require.NoError(t, err, "error building fixture pending event")

	return event
}

// PendingWithKey is Pending plus an idempotency key.
func PendingWithKey(t testing.TB, accountID int64, eventType string, payload any, occurredAt time.Time, key string) eventlog.PendingEvent {
	t.Helper()

	raw, err := domain.EncodePayload(payload)
	require.NoError(t, err, "error encoding fixture payload")

	event, err := eventlog.BuildPendingEventWithKey(accountID, eventType, raw, occurredAt, key)
	require.NoError(t, err, "error building fixture pending event")

	return event
}

// GivenAppended appends a pending event, failing the test on any error.
func GivenAppended(t testing.TB, ctx context.Context, store Appender, event eventlog.PendingEvent) eventlog.EventID {
	t.Helper()

	eventID, err := store.Append(ctx, event)
	require.NoError(t, err, "error appending fixture event")

	return eventID
}

func WalletCreated(t testing.TB, walletID, accountID int64, title, currency, walletType string, initial decimal.Decimal, at time.Time) eventlog.PendingEvent {
	t.Helper()

	return Pending(t, accountID, domain.EventTypeWalletCreated, domain.WalletCreated{
		WalletID:       walletID,
		AccountID:      accountID,
		Title:          title,
		Currency:       currency,
		WalletType:     walletType,
		InitialBalance: initial,
		CreatedAt:      domain.NewTimestamp(at),
	}, at)
}

func IncomeCreated(t testing.TB, transactionID, accountID, walletID int64, amount decimal.Decimal, currency string, at time.Time) eventlog.PendingEvent {
	t.Helper()

	return Pending(t, accountID, domain.EventTypeTransactionCreated, domain.TransactionCreated{
		TransactionID: transactionID,
		AccountID:     accountID,
		OperationType: domain.OperationIncome,
		Amount:        amount,
		Currency:      currency,
		WalletID:      &walletID,
		OccurredAt:    domain.NewTimestamp(at),
	}, at)
}

func ExpenseCreated(t testing.TB, transactionID, accountID, walletID int64, amount decimal.Decimal, currency string, at time.Time) eventlog.PendingEvent {
	t.Helper()

	return Pending(t, accountID, domain.EventTypeTransactionCreated, domain.TransactionCreated{
		TransactionID: transactionID,
		AccountID:     accountID,
		OperationType: domain.OperationExpense,
		Amount:        amount,
		Currency:      currency,
		WalletID:      &walletID,
		OccurredAt:    domain.NewTimestamp(at),
	}, at)
}

func TransferCreated(t testing.TB, transactionID, accountID, fromWalletID, toWalletID int64, amount decimal.Decimal, currency string, at time.Time) eventlog.PendingEvent {
	t.Helper()

	return Pending(t, accountID, domain.EventTypeTransactionCreated, domain.TransactionCreated{
		TransactionID: transactionID,
		AccountID:     accountID,
		OperationType: domain.OperationTransfer,
		Amount:        amount,
		Currency:      currency,
		FromWalletID:  &fromWalletID,
		ToWalletID:    &toWalletID,
		OccurredAt:    domain.NewTimestamp(at),
	}, at)
}

func GoalCreated(t testing.TB, goalID, accountID int64, title, currency string, isSystem bool, at time.Time) eventlog.PendingEvent {
	t.Helper()

	return Pending(t, accountID, domain.EventTypeGoalCreated, domain.GoalCreated{
		GoalID:    goalID,
		AccountID: accountID,
		Title:     title,
		Currency:  currency,
		IsSystem:  isSystem,
		CreatedAt: domain.NewTimestamp(at),
	}, at)
}

// RuleCreated builds a recurrence rule fixture; mutate customizes the payload
// beyond the mandatory fields.
func RuleCreated(t testing.TB, ruleID, accountID int64, freq string, startDate domain.Date, at time.Time, mutate func(*domain.RecurrenceRuleCreated)) eventlog.PendingEvent {
	t.Helper()

	payload := domain.RecurrenceRuleCreated{
		RuleID:    ruleID,
		AccountID: accountID,
		Freq:      freq,
		Interval:  1,
		StartDate: startDate,
	}

	if mutate != nil {
		mutate(&payload)
	}

	return Pending(t, accountID, domain.EventTypeRecurrenceRuleCreated, payload, at)
}

func HabitCreated(t testing.TB, habitID, accountID, ruleID int64, title string, activeFrom domain.Date, at time.Time) eventlog.PendingEvent {
	t.Helper()

	return Pending(t, accountID, domain.EventTypeHabitCreated, domain.HabitCreated{
		HabitID:    habitID,
		AccountID:  accountID,
		Title:      title,
		RuleID:     ruleID,
		ActiveFrom: activeFrom,
	}, at)
}

func TaskCreated(t testing.TB, taskID, accountID int64, title string, dueDate *domain.Date, at time.Time) eventlog.PendingEvent {
	t.Helper()

	return Pending(t, accountID, domain.EventTypeTaskCreated, domain.TaskCreated{
		TaskID:    taskID,
		AccountID: accountID,
		Title:     title,
		DueDate:   dueDate,
		CreatedAt: domain.NewTimestamp(at),
	}, at)
}

func TaskCompleted(t testing.TB, taskID, accountID int64, at time.Time) eventlog.PendingEvent {
	t.Helper()

	return Pending(t, accountID, domain.EventTypeTaskCompleted, domain.TaskCompleted{
		TaskID:      taskID,
		CompletedAt: domain.NewTimestamp(at),
	}, at)
}
