package postgresengine_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlifeos/finlife-core-go/domain"
	"github.com/finlifeos/finlife-core-go/eventlog"
	"github.com/finlifeos/finlife-core-go/eventlog/postgresengine"
	"github.com/finlifeos/finlife-core-go/testutil/fixtures"
	"github.com/finlifeos/finlife-core-go/testutil/postgreswrapper"
)

const testAccountID = int64(1)

func Test_Append_AssignsIncreasingIDs(t *testing.T) {
	// setup
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	postgreswrapper.CleanUp(t, wrapper)

	store := wrapper.GetStore()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// arrange
	at := time.Date(2025, time.May, 1, 10, 0, 0, 0, time.UTC)
	first := fixtures.WalletCreated(t, 1, testAccountID, "Cash", "RUB", domain.WalletTypeRegular, decimal.NewFromInt(1000), at)
	second := fixtures.IncomeCreated(t, 1, testAccountID, 1, decimal.NewFromInt(500), "RUB", at.Add(time.Minute))

	// act
	firstID, err := store.Append(ctx, first)
	require.NoError(t, err)

	secondID, err := store.Append(ctx, second)
	require.NoError(t, err)

	// assert
	assert.Greater(t, secondID, firstID)
}

func Test_Append_WithSameIdempotencyKey_ReturnsConflict(t *testing.T) {
	// setup
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	postgreswrapper.CleanUp(t, wrapper)

	store := wrapper.GetStore()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// arrange
	at := time.Date(2025, time.May, 1, 10, 0, 0, 0, time.UTC)
	payload := domain.HabitMilestoneReached{
		HabitID:       3,
		Threshold:     7,
		CurrentStreak: 7,
		ReachedAt:     domain.NewTimestamp(at),
	}
	event := fixtures.PendingWithKey(t, testAccountID, domain.EventTypeHabitMilestoneReached, payload, at, "habit-milestone-3-7")
	fixtures.GivenAppended(t, ctx, store, event)

	// act
	_, err := store.Append(ctx, event)

	// assert
	assert.ErrorIs(t, err, eventlog.ErrIdempotencyConflict)
	assert.Equal(t, 1, postgreswrapper.CountRows(t, wrapper, "events", "idempotency_key = 'habit-milestone-3-7'"))
}

func Test_Append_WithDistinctIdempotencyKeys_DoesNotConflict(t *testing.T) {
	// setup
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	postgreswrapper.CleanUp(t, wrapper)

	store := wrapper.GetStore()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// arrange
	at := time.Date(2025, time.May, 1, 10, 0, 0, 0, time.UTC)
	payload := domain.HabitMilestoneReached{
		HabitID:       3,
		Threshold:     7,
		CurrentStreak: 7,
		ReachedAt:     domain.NewTimestamp(at),
	}

	// act
	first := fixtures.PendingWithKey(t, testAccountID, domain.EventTypeHabitMilestoneReached, payload, at, fixtures.UniqueKey("milestone"))
	fixtures.GivenAppended(t, ctx, store, first)

	second := fixtures.PendingWithKey(t, testAccountID, domain.EventTypeHabitMilestoneReached, payload, at, fixtures.UniqueKey("milestone"))
	_, err := store.Append(ctx, second)

	// assert
	assert.NoError(t, err)
}

func Test_ListSince_ReturnsEventsAfterCheckpoint(t *testing.T) {
	// setup
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	postgreswrapper.CleanUp(t, wrapper)

	store := wrapper.GetStore()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// arrange
	at := time.Date(2025, time.May, 1, 10, 0, 0, 0, time.UTC)
	firstID := fixtures.GivenAppended(t, ctx, store,
		fixtures.WalletCreated(t, 1, testAccountID, "Cash", "RUB", domain.WalletTypeRegular, decimal.NewFromInt(1000), at))
	secondID := fixtures.GivenAppended(t, ctx, store,
		fixtures.IncomeCreated(t, 1, testAccountID, 1, decimal.NewFromInt(500), "RUB", at.Add(time.Minute)))
	thirdID := fixtures.GivenAppended(t, ctx, store,
		fixtures.ExpenseCreated(t, 2, testAccountID, 1, decimal.NewFromInt(100), "RUB", at.Add(2*time.Minute)))

	// act
	events, err := store.ListSince(ctx, testAccountID, firstID, 100)

	// assert
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, secondID, events[0].ID)
	assert.Equal(t, thirdID, events[1].ID)
}

func Test_ListSince_AppliesLimitAndTypeFilter(t *testing.T) {
	// setup
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	postgreswrapper.CleanUp(t, wrapper)

	store := wrapper.GetStore()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// arrange
	at := time.Date(2025, time.May, 1, 10, 0, 0, 0, time.UTC)
	fixtures.GivenAppended(t, ctx, store,
		fixtures.WalletCreated(t, 1, testAccountID, "Cash", "RUB", domain.WalletTypeRegular, decimal.NewFromInt(1000), at))
	for i := range 3 {
		fixtures.GivenAppended(t, ctx, store,
			fixtures.IncomeCreated(t, int64(i+1), testAccountID, 1, decimal.NewFromInt(10), "RUB", at.Add(time.Duration(i)*time.Minute)))
	}

	// act
	filtered, err := store.ListSince(ctx, testAccountID, 0, 100, domain.EventTypeTransactionCreated)
	require.NoError(t, err)

	limited, limitErr := store.ListSince(ctx, testAccountID, 0, 2, domain.EventTypeTransactionCreated)
	require.NoError(t, limitErr)

	// assert
	require.Len(t, filtered, 3)
	for _, event := range filtered {
		assert.Equal(t, domain.EventTypeTransactionCreated, event.EventType)
	}

	assert.Len(t, limited, 2)
}

func Test_ListSince_IsolatesAccounts(t *testing.T) {
	// setup
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	postgreswrapper.CleanUp(t, wrapper)

	store := wrapper.GetStore()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// arrange
	at := time.Date(2025, time.May, 1, 10, 0, 0, 0, time.UTC)
	fixtures.GivenAppended(t, ctx, store,
		fixtures.WalletCreated(t, 1, testAccountID, "Cash", "RUB", domain.WalletTypeRegular, decimal.NewFromInt(1000), at))
	otherAccount := int64(2)
	fixtures.GivenAppended(t, ctx, store,
		fixtures.WalletCreated(t, 2, otherAccount, "Card", "RUB", domain.WalletTypeRegular, decimal.NewFromInt(0), at))

	// act
	events, err := store.ListSince(ctx, otherAccount, 0, 100)

	// assert
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, otherAccount, events[0].AccountID)
}

func Test_GetEvent_ReturnsStoredEvent(t *testing.T) {
	// setup
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	postgreswrapper.CleanUp(t, wrapper)

	store := wrapper.GetStore()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// arrange
	at := time.Date(2025, time.May, 1, 10, 0, 0, 0, time.UTC)
	eventID := fixtures.GivenAppended(t, ctx, store,
		fixtures.WalletCreated(t, 1, testAccountID, "Cash", "RUB", domain.WalletTypeRegular, decimal.NewFromInt(1000), at))

	// act
	event, err := store.GetEvent(ctx, eventID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, eventID, event.ID)
	assert.Equal(t, domain.EventTypeWalletCreated, event.EventType)
	assert.Equal(t, testAccountID, event.AccountID)
}

func Test_GetEvent_WhenEventDoesNotExist(t *testing.T) {
	// setup
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	postgreswrapper.CleanUp(t, wrapper)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// act
	_, err := wrapper.GetStore().GetEvent(ctx, 999999)

	// assert
	assert.ErrorIs(t, err, eventlog.ErrEventNotFound)
}

func Test_CountEvents_WithAndWithoutTypeFilter(t *testing.T) {
	// setup
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	postgreswrapper.CleanUp(t, wrapper)

	store := wrapper.GetStore()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// arrange
	at := time.Date(2025, time.May, 1, 10, 0, 0, 0, time.UTC)
	fixtures.GivenAppended(t, ctx, store,
		fixtures.WalletCreated(t, 1, testAccountID, "Cash", "RUB", domain.WalletTypeRegular, decimal.NewFromInt(1000), at))
	fixtures.GivenAppended(t, ctx, store,
		fixtures.IncomeCreated(t, 1, testAccountID, 1, decimal.NewFromInt(500), "RUB", at.Add(time.Minute)))

	// act
	total, err := store.CountEvents(ctx, testAccountID)
	require.NoError(t, err)

	walletsOnly, filterErr := store.CountEvents(ctx, testAccountID, domain.EventTypeWalletCreated)
	require.NoError(t, filterErr)

	// assert
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, walletsOnly)
}

func Test_NextAggregateID_IsMonotonicPerAggregateType(t *testing.T) {
	// setup
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	postgreswrapper.CleanUp(t, wrapper)

	store := wrapper.GetStore()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// act
	firstWallet, err := store.NextAggregateID(ctx, testAccountID, domain.AggregateWallet)
	require.NoError(t, err)

	secondWallet, err := store.NextAggregateID(ctx, testAccountID, domain.AggregateWallet)
	require.NoError(t, err)

	firstTask, err := store.NextAggregateID(ctx, testAccountID, domain.AggregateTask)
	require.NoError(t, err)

	otherAccountWallet, err := store.NextAggregateID(ctx, int64(2), domain.AggregateWallet)
	require.NoError(t, err)

	// assert
	assert.Equal(t, int64(1), firstWallet)
	assert.Equal(t, int64(2), secondWallet)
	assert.Equal(t, int64(1), firstTask, "sequences are independent per aggregate type")
	assert.Equal(t, int64(1), otherAccountWallet, "sequences are independent per account")
}

func Test_NewStore_RejectsNilConnections(t *testing.T) {
	_, pgxErr := postgresengine.NewStoreFromPGXPool(nil)
	assert.ErrorIs(t, pgxErr, postgresengine.ErrNilDatabaseConnection)

	_, sqlErr := postgresengine.NewStoreFromSQLDB(nil)
	assert.ErrorIs(t, sqlErr, postgresengine.ErrNilDatabaseConnection)

	_, sqlxErr := postgresengine.NewStoreFromSQLX(nil)
	assert.ErrorIs(t, sqlxErr, postgresengine.ErrNilDatabaseConnection)

	_, adapterErr := postgresengine.NewStoreFromAdapter(nil)
	assert.ErrorIs(t, adapterErr, postgresengine.ErrNilDatabaseConnection)
}

func Test_NewStore_RejectsEmptyTableName(t *testing.T) {
	// setup
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()

	// act
	_, err := postgresengine.NewStoreFromAdapter(wrapper.DB(), postgresengine.WithTableName(""))

	// assert
	assert.ErrorIs(t, err, postgresengine.ErrEmptyEventsTableName)
}
