package readmodels

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/finlifeos/finlife-core-go/adapters"
	"github.com/finlifeos/finlife-core-go/domain"
	"github.com/finlifeos/finlife-core-go/eventlog"
)

const (
	transactionsFeedTable = "transactions_feed"

	colTransactionID = "transaction_id"
	colOperationType = "operation_type"
	colFromWalletID  = "from_wallet_id"
	colToWalletID    = "to_wallet_id"
	colFromGoalID    = "from_goal_id"
	colToGoalID      = "to_goal_id"
	colDescription   = "description"
	colOccurredAt    = "occurred_at"
)

// TransactionsFeedProjector maintains the flat transaction history feed.
type TransactionsFeedProjector struct{}

func NewTransactionsFeedProjector() *TransactionsFeedProjector {
	return &TransactionsFeedProjector{}
}

func (p *TransactionsFeedProjector) Name() string {
	return "transactions_feed"
}

func (p *TransactionsFeedProjector) EventTypes() []string {
	return []string{domain.EventTypeTransactionCreated}
}

func (p *TransactionsFeedProjector) Handle(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	if event.EventType != domain.EventTypeTransactionCreated {
		return nil
	}

	payload, err := domain.DecodeTransactionCreated(event.Payload)
	if err != nil {
		return err
	}

	exists, err := rowExists(ctx, tx, transactionsFeedTable, goqu.C(colTransactionID).Eq(payload.TransactionID))
	if err != nil || exists {
		return err
	}

	return execSQL(ctx, tx, dialect.Insert(transactionsFeedTable).Rows(goqu.Record{
		colTransactionID: payload.TransactionID,
		colAccountID:     payload.AccountID,
		colOperationType: payload.OperationType,
		colAmount:        numericLit(payload.Amount),
		colCurrency:      payload.Currency,
		colWalletID:      nullableInt(payload.WalletID),
		colCategoryID:    nullableInt(payload.CategoryID),
		colFromWalletID:  nullableInt(payload.FromWalletID),
		colToWalletID:    nullableInt(payload.ToWalletID),
		colFromGoalID:    nullableInt(payload.FromGoalID),
		colToGoalID:      nullableInt(payload.ToGoalID),
		colDescription:   payload.Description,
		colOccurredAt:    nullableTimestamp(&payload.OccurredAt),
	}))
}

func (p *TransactionsFeedProjector) Reset(ctx context.Context, tx adapters.DBTx, accountID eventlog.AccountID) error {
	return deleteForAccount(ctx, tx, transactionsFeedTable, accountID)
}
