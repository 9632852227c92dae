package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlifeos/finlife-core-go/domain"
)

func Test_TransactionUpdated_ResolvesNewValuesAgainstOldSnapshot(t *testing.T) {
	payload := []byte(`{
		"transaction_id": 11,
		"account_id": 1,
		"updated_at": "2025-05-01T10:00:00Z",
		"old_operation_type": "EXPENSE",
		"old_amount": "300",
		"old_wallet_id": 5,
		"operation_type": "EXPENSE",
		"currency": "RUB",
		"amount": "50"
	}`)

	decoded, err := domain.DecodeTransactionUpdated(payload)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(50).Equal(decoded.NewAmount()))

	// wallet untouched by the correction keeps the old reference
	require.NotNil(t, decoded.NewWalletID())
	assert.Equal(t, int64(5), *decoded.NewWalletID())
}

func Test_TransactionUpdated_ExplicitNullClearsReference(t *testing.T) {
	payload := []byte(`{
		"transaction_id": 11,
		"account_id": 1,
		"updated_at": "2025-05-01T10:00:00Z",
		"old_operation_type": "TRANSFER",
		"old_amount": "100",
		"old_from_wallet_id": 5,
		"old_to_goal_id": 9,
		"operation_type": "TRANSFER",
		"currency": "RUB",
		"to_goal_id": null
	}`)

	decoded, err := domain.DecodeTransactionUpdated(payload)
	require.NoError(t, err)

	assert.Nil(t, decoded.NewToGoalID(), "explicit null must clear the goal reference")

	require.NotNil(t, decoded.NewFromWalletID())
	assert.Equal(t, int64(5), *decoded.NewFromWalletID())
}

func Test_TransactionUpdated_UnchangedAmountFallsBackToOld(t *testing.T) {
	payload := []byte(`{
		"transaction_id": 11,
		"account_id": 1,
		"updated_at": "2025-05-01T10:00:00Z",
		"old_operation_type": "INCOME",
		"old_amount": "1000",
		"old_wallet_id": 5,
		"operation_type": "INCOME",
		"currency": "RUB",
		"description": "salary"
	}`)

	decoded, err := domain.DecodeTransactionUpdated(payload)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(1000).Equal(decoded.NewAmount()))
	assert.True(t, decoded.Description.Set)
	assert.Equal(t, "salary", decoded.Description.Value)
}

func Test_DecodeWalletCreated_DefaultsWalletType(t *testing.T) {
	payload := []byte(`{
		"wallet_id": 1,
		"account_id": 1,
		"title": "Cash",
		"currency": "RUB",
		"initial_balance": "1000",
		"created_at": "2025-01-01T00:00:00Z"
	}`)

	decoded, err := domain.DecodeWalletCreated(payload)
	require.NoError(t, err)

	assert.Equal(t, domain.WalletTypeRegular, decoded.WalletType)
}

func Test_DecodeTimestamp_AcceptsZonelessISO(t *testing.T) {
	payload := []byte(`{
		"task_id": 3,
		"completed_at": "2025-05-01T18:30:00.123456"
	}`)

	decoded, err := domain.DecodeTaskCompleted(payload)
	require.NoError(t, err)

	assert.Equal(t, 2025, decoded.CompletedAt.Year())
	assert.Equal(t, 18, decoded.CompletedAt.Hour())
}

func Test_DecodeRecurrenceRuleCreated_AppliesDefaults(t *testing.T) {
	payload := []byte(`{
		"rule_id": 2,
		"account_id": 1,
		"freq": "MONTHLY",
		"start_date": "2025-01-31",
		"by_monthday": 31
	}`)

	decoded, err := domain.DecodeRecurrenceRuleCreated(payload)
	require.NoError(t, err)

	assert.Equal(t, 1, decoded.Interval)
	require.NotNil(t, decoded.MonthdayClipToLastDay)
	assert.True(t, *decoded.MonthdayClipToLastDay)
}
