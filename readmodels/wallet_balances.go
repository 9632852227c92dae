package readmodels

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"

	"github.com/finlifeos/finlife-core-go/adapters"
	"github.com/finlifeos/finlife-core-go/domain"
	"github.com/finlifeos/finlife-core-go/eventlog"
)

const (
	walletBalancesTable = "wallet_balances"

	colWalletID   = "wallet_id"
	colTitle      = "title"
	colCurrency   = "currency"
	colWalletType = "wallet_type"
	colBalance    = "balance"
	colIsArchived = "is_archived"
	colCreatedAt  = "created_at"
)

// WalletBalancesProjector maintains one balance row per wallet.
//
// INCOME adds to the wallet, EXPENSE subtracts, TRANSFER moves between two
// wallets. Corrections reverse the old amounts with the same formulas before
// applying the new ones, so the row always equals a from-scratch replay.
type WalletBalancesProjector struct{}

func NewWalletBalancesProjector() *WalletBalancesProjector {
	return &WalletBalancesProjector{}
}

func (p *WalletBalancesProjector) Name() string {
	return "wallet_balances"
}

func (p *WalletBalancesProjector) EventTypes() []string {
	return []string{
		domain.EventTypeWalletCreated,
		domain.EventTypeWalletRenamed,
		domain.EventTypeWalletArchived,
		domain.EventTypeWalletUnarchived,
		domain.EventTypeTransactionCreated,
		domain.EventTypeTransactionUpdated,
	}
}

func (p *WalletBalancesProjector) Handle(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	switch event.EventType {
	case domain.EventTypeWalletCreated:
		return p.handleWalletCreated(ctx, tx, event)
	case domain.EventTypeWalletRenamed:
		return p.handleWalletRenamed(ctx, tx, event)
	case domain.EventTypeWalletArchived:
		return p.setArchived(ctx, tx, event, true)
	case domain.EventTypeWalletUnarchived:
		return p.setArchived(ctx, tx, event, false)
	case domain.EventTypeTransactionCreated:
		return p.handleTransactionCreated(ctx, tx, event)
	case domain.EventTypeTransactionUpdated:
		return p.handleTransactionUpdated(ctx, tx, event)
	}

	return nil
}

func (p *WalletBalancesProjector) Reset(ctx context.Context, tx adapters.DBTx, accountID eventlog.AccountID) error {
	return deleteForAccount(ctx, tx, walletBalancesTable, accountID)
}

func (p *WalletBalancesProjector) handleWalletCreated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeWalletCreated(event.Payload)
	if err != nil {
		return err
	}

	exists, err := rowExists(ctx, tx, walletBalancesTable, goqu.C(colWalletID).Eq(payload.WalletID))
	if err != nil || exists {
		return err
	}

	return execSQL(ctx, tx, dialect.Insert(walletBalancesTable).Rows(goqu.Record{
		colWalletID:   payload.WalletID,
		colAccountID:  payload.AccountID,
		colTitle:      payload.Title,
		colCurrency:   payload.Currency,
		colWalletType: payload.WalletType,
		colBalance:    numericLit(payload.InitialBalance),
		colIsArchived: false,
		colCreatedAt:  nullableTimestamp(&payload.CreatedAt),
	}))
}

func (p *WalletBalancesProjector) handleWalletRenamed(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeWalletRenamed(event.Payload)
	if err != nil {
		return err
	}

	return execSQL(ctx, tx, dialect.Update(walletBalancesTable).
		Set(goqu.Record{colTitle: payload.Title}).
		Where(goqu.C(colWalletID).Eq(payload.WalletID)))
}

func (p *WalletBalancesProjector) setArchived(ctx context.Context, tx adapters.DBTx, event eventlog.Event, archived bool) error {
	payload, err := domain.DecodeWalletArchived(event.Payload)
	if err != nil {
		return err
	}

	return execSQL(ctx, tx, dialect.Update(walletBalancesTable).
		Set(goqu.Record{colIsArchived: archived}).
		Where(goqu.C(colWalletID).Eq(payload.WalletID)))
}

func (p *WalletBalancesProjector) handleTransactionCreated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeTransactionCreated(event.Payload)
	if err != nil {
		return err
	}

	return p.applyOperation(ctx, tx, payload.OperationType, payload.Amount,
		payload.WalletID, payload.FromWalletID, payload.ToWalletID)
}

func (p *WalletBalancesProjector) handleTransactionUpdated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeTransactionUpdated(event.Payload)
	if err != nil {
		return err
	}

	// reverse the old impact
	reverseErr := p.applyOperation(ctx, tx, payload.OldOperationType, payload.OldAmount.Neg(),
		payload.OldWalletID, payload.OldFromWalletID, payload.OldToWalletID)
	if reverseErr != nil {
		return reverseErr
	}

	// apply the corrected impact
	return p.applyOperation(ctx, tx, payload.OperationType, payload.NewAmount(),
		payload.NewWalletID(), payload.NewFromWalletID(), payload.NewToWalletID())
}

func (p *WalletBalancesProjector) applyOperation(
	ctx context.Context,
	tx adapters.DBTx,
	operationType string,
	amount decimal.Decimal,
	walletID, fromWalletID, toWalletID *int64,
) error {

	switch operationType {
	case domain.OperationIncome:
		return p.adjustBalance(ctx, tx, walletID, amount)

	case domain.OperationExpense:
		return p.adjustBalance(ctx, tx, walletID, amount.Neg())

	case domain.OperationTransfer:
		if err := p.adjustBalance(ctx, tx, fromWalletID, amount.Neg()); err != nil {
			return err
		}

		return p.adjustBalance(ctx, tx, toWalletID, amount)
	}

	return nil
}

func (p *WalletBalancesProjector) adjustBalance(ctx context.Context, tx adapters.DBTx, walletID *int64, delta decimal.Decimal) error {
	if walletID == nil {
		return nil
	}

	return execSQL(ctx, tx, dialect.Update(walletBalancesTable).
		Set(goqu.Record{colBalance: goqu.L(colBalance+" + ?::numeric", delta.String())}).
		Where(goqu.C(colWalletID).Eq(*walletID)))
}
