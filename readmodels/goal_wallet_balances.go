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
	goalWalletBalancesTable = "goal_wallet_balances"
	pendingGoalCreditsTable = "pending_goal_credits"

	colAmount = "amount"
)

// GoalWalletBalancesProjector tracks how much money each goal holds in each
// wallet. Only TRANSFER events that reference a goal move these balances.
//
// Creating a SAVINGS wallet with a positive initial balance credits that
// amount to the per-currency system goal. When the system goal row does not
// exist yet, the credit is parked in pending_goal_credits and drained exactly
// once when goal_created(is_system) for that currency arrives.
type GoalWalletBalancesProjector struct{}

func NewGoalWalletBalancesProjector() *GoalWalletBalancesProjector {
	return &GoalWalletBalancesProjector{}
}

func (p *GoalWalletBalancesProjector) Name() string {
	return "goal_wallet_balances"
}

func (p *GoalWalletBalancesProjector) EventTypes() []string {
	return []string{
		domain.EventTypeTransactionCreated,
		domain.EventTypeTransactionUpdated,
		domain.EventTypeWalletCreated,
		domain.EventTypeGoalCreated,
	}
}

func (p *GoalWalletBalancesProjector) Handle(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	switch event.EventType {
	case domain.EventTypeTransactionCreated:
		return p.handleTransactionCreated(ctx, tx, event)
	case domain.EventTypeTransactionUpdated:
		return p.handleTransactionUpdated(ctx, tx, event)
	case domain.EventTypeWalletCreated:
		return p.handleWalletCreated(ctx, tx, event)
	case domain.EventTypeGoalCreated:
		return p.handleGoalCreated(ctx, tx, event)
	}

	return nil
}

func (p *GoalWalletBalancesProjector) Reset(ctx context.Context, tx adapters.DBTx, accountID eventlog.AccountID) error {
	if err := deleteForAccount(ctx, tx, pendingGoalCreditsTable, accountID); err != nil {
		return err
	}

	return deleteForAccount(ctx, tx, goalWalletBalancesTable, accountID)
}

func (p *GoalWalletBalancesProjector) handleTransactionCreated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeTransactionCreated(event.Payload)
	if err != nil {
		return err
	}

	if payload.OperationType != domain.OperationTransfer {
		return nil
	}

	if payload.FromGoalID != nil && payload.FromWalletID != nil {
		adjErr := p.adjustBalance(ctx, tx, payload.AccountID, *payload.FromGoalID, *payload.FromWalletID, payload.Amount.Neg())
		if adjErr != nil {
			return adjErr
		}
	}

	if payload.ToGoalID != nil && payload.ToWalletID != nil {
		return p.adjustBalance(ctx, tx, payload.AccountID, *payload.ToGoalID, *payload.ToWalletID, payload.Amount)
	}

	return nil
}

func (p *GoalWalletBalancesProjector) handleTransactionUpdated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeTransactionUpdated(event.Payload)
	if err != nil {
		return err
	}

	// reverse old allocations
	if payload.OldOperationType == domain.OperationTransfer {
		if payload.OldFromGoalID != nil && payload.OldFromWalletID != nil {
			adjErr := p.adjustBalance(ctx, tx, payload.AccountID, *payload.OldFromGoalID, *payload.OldFromWalletID, payload.OldAmount)
			if adjErr != nil {
				return adjErr
			}
		}

		if payload.OldToGoalID != nil && payload.OldToWalletID != nil {
			adjErr := p.adjustBalance(ctx, tx, payload.AccountID, *payload.OldToGoalID, *payload.OldToWalletID, payload.OldAmount.Neg())
			if adjErr != nil {
				return adjErr
			}
		}
	}

	// apply new allocations
	if payload.OperationType != domain.OperationTransfer {
		return nil
	}

	newAmount := payload.NewAmount()

	if fromGoal, fromWallet := payload.NewFromGoalID(), payload.NewFromWalletID(); fromGoal != nil && fromWallet != nil {
		adjErr := p.adjustBalance(ctx, tx, payload.AccountID, *fromGoal, *fromWallet, newAmount.Neg())
		if adjErr != nil {
			return adjErr
		}
	}

	if toGoal, toWallet := payload.NewToGoalID(), payload.NewToWalletID(); toGoal != nil && toWallet != nil {
		return p.adjustBalance(ctx, tx, payload.AccountID, *toGoal, *toWallet, newAmount)
	}

	return nil
}

func (p *GoalWalletBalancesProjector) handleWalletCreated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeWalletCreated(event.Payload)
	if err != nil {
		return err
	}

	if payload.WalletType != domain.WalletTypeSavings || !payload.InitialBalance.IsPositive() {
		return nil
	}

	systemGoalID, found, err := p.findSystemGoal(ctx, tx, payload.AccountID, payload.Currency)
	if err != nil {
		return err
	}

	if found {
		return p.adjustBalance(ctx, tx, payload.AccountID, systemGoalID, payload.WalletID, payload.InitialBalance)
	}

	// park the credit until the system goal for this currency exists
	exists, err := rowExists(ctx, tx, pendingGoalCreditsTable, goqu.C(colWalletID).Eq(payload.WalletID))
	if err != nil || exists {
		return err
	}

	return execSQL(ctx, tx, dialect.Insert(pendingGoalCreditsTable).Rows(goqu.Record{
		colAccountID: payload.AccountID,
		colWalletID:  payload.WalletID,
		colCurrency:  payload.Currency,
		colAmount:    numericLit(payload.InitialBalance),
	}))
}

// handleGoalCreated drains parked credits matching the new system goal's
// currency. Deleting the pending row in the same transaction as the credit
// makes the drain exactly-once.
func (p *GoalWalletBalancesProjector) handleGoalCreated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeGoalCreated(event.Payload)
	if err != nil {
		return err
	}

	if !payload.IsSystem {
		return nil
	}

	rows, err := querySQL(ctx, tx, dialect.From(pendingGoalCreditsTable).
		Select(goqu.C(colWalletID), goqu.L(colAmount+"::text")).
		Where(
			goqu.C(colAccountID).Eq(payload.AccountID),
			goqu.C(colCurrency).Eq(payload.Currency),
		).
		Order(goqu.C(colWalletID).Asc()))
	if err != nil {
		return err
	}

	type pendingCredit struct {
		walletID int64
		amount   decimal.Decimal
	}

	var credits []pendingCredit

	for rows.Next() {
		var (
			walletID  int64
			amountStr string
		)

		if scanErr := rows.Scan(&walletID, &amountStr); scanErr != nil {
			rows.Close()

			return scanErr
		}

		amount, parseErr := decimal.NewFromString(amountStr)
		if parseErr != nil {
			rows.Close()

			return parseErr
		}

		credits = append(credits, pendingCredit{walletID: walletID, amount: amount})
	}
	rows.Close()

	for _, credit := range credits {
		if adjErr := p.adjustBalance(ctx, tx, payload.AccountID, payload.GoalID, credit.walletID, credit.amount); adjErr != nil {
			return adjErr
		}

		deleteErr := execSQL(ctx, tx, dialect.Delete(pendingGoalCreditsTable).
			Where(goqu.C(colWalletID).Eq(credit.walletID)))
		if deleteErr != nil {
			return deleteErr
		}
	}

	return nil
}

func (p *GoalWalletBalancesProjector) findSystemGoal(ctx context.Context, tx adapters.DBTx, accountID int64, currency string) (int64, bool, error) {
	rows, err := querySQL(ctx, tx, dialect.From(goalInfosTable).
		Select(colGoalID).
		Where(
			goqu.C(colAccountID).Eq(accountID),
			goqu.C(colIsSystem).IsTrue(),
			goqu.C(colCurrency).Eq(currency),
		).
		Limit(1))
	if err != nil {
		return 0, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return 0, false, nil
	}

	var goalID int64
	if scanErr := rows.Scan(&goalID); scanErr != nil {
		return 0, false, scanErr
	}

	return goalID, true, nil
}

func (p *GoalWalletBalancesProjector) adjustBalance(ctx context.Context, tx adapters.DBTx, accountID, goalID, walletID int64, delta decimal.Decimal) error {
	exists, err := rowExists(ctx, tx, goalWalletBalancesTable,
		goqu.C(colGoalID).Eq(goalID),
		goqu.C(colWalletID).Eq(walletID),
	)
	if err != nil {
		return err
	}

	if exists {
		return execSQL(ctx, tx, dialect.Update(goalWalletBalancesTable).
			Set(goqu.Record{colAmount: goqu.L(colAmount+" + ?::numeric", delta.String())}).
			Where(
				goqu.C(colGoalID).Eq(goalID),
				goqu.C(colWalletID).Eq(walletID),
			))
	}

	return execSQL(ctx, tx, dialect.Insert(goalWalletBalancesTable).Rows(goqu.Record{
		colAccountID: accountID,
		colGoalID:    goalID,
		colWalletID:  walletID,
		colAmount:    numericLit(delta),
	}))
}
