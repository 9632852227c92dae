package domain

import (
	"github.com/shopspring/decimal"
)

const (
	EventTypeBudgetMonthCreated = "budget_month_created"
	EventTypeBudgetLineSet      = "budget_line_set"
)

type BudgetMonthCreated struct {
	BudgetMonthID   int64     `json:"budget_month_id"`
	AccountID       int64     `json:"account_id"`
	BudgetVariantID *int64    `json:"budget_variant_id,omitempty"`
	Year            int       `json:"year"`
	Month           int       `json:"month"`
	CreatedAt       Timestamp `json:"created_at"`
}

func DecodeBudgetMonthCreated(payload []byte) (BudgetMonthCreated, error) {
	return decodePayload[BudgetMonthCreated](payload)
}

type BudgetLineSet struct {
	LineID        int64           `json:"line_id"`
	BudgetMonthID int64           `json:"budget_month_id"`
	CategoryID    int64           `json:"category_id"`
	Kind          string          `json:"kind"`
	PlanAmount    decimal.Decimal `json:"plan_amount"`
	Note          *string         `json:"note,omitempty"`
}

func DecodeBudgetLineSet(payload []byte) (BudgetLineSet, error) {
	return decodePayload[BudgetLineSet](payload)
}
