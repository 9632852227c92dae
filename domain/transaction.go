package domain

import (
	"github.com/shopspring/decimal"
)

const (
	EventTypeTransactionCreated = "transaction_created"
	EventTypeTransactionUpdated = "transaction_updated"
)

const (
	OperationIncome   = "INCOME"
	OperationExpense  = "EXPENSE"
	OperationTransfer = "TRANSFER"
)

type TransactionCreated struct {
	TransactionID int64           `json:"transaction_id"`
	AccountID     int64           `json:"account_id"`
	OperationType string          `json:"operation_type"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	WalletID      *int64          `json:"wallet_id,omitempty"`
	CategoryID    *int64          `json:"category_id,omitempty"`
	FromWalletID  *int64          `json:"from_wallet_id,omitempty"`
	ToWalletID    *int64          `json:"to_wallet_id,omitempty"`
	FromGoalID    *int64          `json:"from_goal_id,omitempty"`
	ToGoalID      *int64          `json:"to_goal_id,omitempty"`
	Description   string          `json:"description"`
	OccurredAt    Timestamp       `json:"occurred_at"`
}

func DecodeTransactionCreated(payload []byte) (TransactionCreated, error) {
	return decodePayload[TransactionCreated](payload)
}

// TransactionUpdated is a correction payload: the old_* snapshot lets
// projectors reverse the previous balance impact, the optional fields carry
// the new values. Fields not present in the payload keep their old value.
type TransactionUpdated struct {
	TransactionID int64     `json:"transaction_id"`
	AccountID     int64     `json:"account_id"`
	UpdatedAt     Timestamp `json:"updated_at"`

	OldOperationType string          `json:"old_operation_type"`
	OldAmount        decimal.Decimal `json:"old_amount"`
	OldWalletID      *int64          `json:"old_wallet_id,omitempty"`
	OldFromWalletID  *int64          `json:"old_from_wallet_id,omitempty"`
	OldToWalletID    *int64          `json:"old_to_wallet_id,omitempty"`
	OldFromGoalID    *int64          `json:"old_from_goal_id,omitempty"`
	OldToGoalID      *int64          `json:"old_to_goal_id,omitempty"`

	OperationType string                    `json:"operation_type"`
	Currency      string                    `json:"currency"`
	Amount        Optional[decimal.Decimal] `json:"amount,omitzero"`
	WalletID      Optional[int64]           `json:"wallet_id,omitzero"`
	FromWalletID  Optional[int64]           `json:"from_wallet_id,omitzero"`
	ToWalletID    Optional[int64]           `json:"to_wallet_id,omitzero"`
	FromGoalID    Optional[int64]           `json:"from_goal_id,omitzero"`
	ToGoalID      Optional[int64]           `json:"to_goal_id,omitzero"`
	CategoryID    Optional[int64]           `json:"category_id,omitzero"`
	Description   Optional[string]          `json:"description,omitzero"`
	OccurredAt    Optional[Timestamp]       `json:"occurred_at,omitzero"`
}

func DecodeTransactionUpdated(payload []byte) (TransactionUpdated, error) {
	return decodePayload[TransactionUpdated](payload)
}

// NewAmount returns the post-correction amount, falling back to the old one
// when the correction left it untouched.
func (p TransactionUpdated) NewAmount() decimal.Decimal {
	if p.Amount.Set && p.Amount.Valid {
		return p.Amount.Value
	}

	return p.OldAmount
}

// NewWalletID resolves the post-correction wallet for INCOME/EXPENSE.
func (p TransactionUpdated) NewWalletID() *int64 {
	return resolveRef(p.WalletID, p.OldWalletID)
}

func (p TransactionUpdated) NewFromWalletID() *int64 {
	return resolveRef(p.FromWalletID, p.OldFromWalletID)
}

func (p TransactionUpdated) NewToWalletID() *int64 {
	return resolveRef(p.ToWalletID, p.OldToWalletID)
}

func (p TransactionUpdated) NewFromGoalID() *int64 {
	return resolveRef(p.FromGoalID, p.OldFromGoalID)
}

func (p TransactionUpdated) NewToGoalID() *int64 {
	return resolveRef(p.ToGoalID, p.OldToGoalID)
}

func resolveRef(change Optional[int64], old *int64) *int64 {
	if change.Set {
		return change.Ptr()
	}

	return old
}
