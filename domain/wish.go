package domain

import (
	"github.com/shopspring/decimal"
)

const (
	EventTypeWishCreated   = "wish_created"
	EventTypeWishUpdated   = "wish_updated"
	EventTypeWishCompleted = "wish_completed"
)

type WishCreated struct {
	WishID          int64            `json:"wish_id"`
	AccountID       int64            `json:"account_id"`
	Title           string           `json:"title"`
	WishType        string           `json:"wish_type"`
	Status          string           `json:"status"`
	TargetDate      *Date            `json:"target_date,omitempty"`
	TargetMonth     *string          `json:"target_month,omitempty"`
	EstimatedAmount *decimal.Decimal `json:"estimated_amount,omitempty"`
	IsRecurring     bool             `json:"is_recurring,omitzero"`
	Notes           *string          `json:"notes,omitempty"`
	CreatedAt       Timestamp        `json:"created_at"`
}

func DecodeWishCreated(payload []byte) (WishCreated, error) {
	return decodePayload[WishCreated](payload)
}

type WishUpdated struct {
	WishID          int64                     `json:"wish_id"`
	Title           Optional[string]          `json:"title,omitzero"`
	Status          Optional[string]          `json:"status,omitzero"`
	WishType        Optional[string]          `json:"wish_type,omitzero"`
	TargetDate      Optional[Date]            `json:"target_date,omitzero"`
	TargetMonth     Optional[string]          `json:"target_month,omitzero"`
	EstimatedAmount Optional[decimal.Decimal] `json:"estimated_amount,omitzero"`
	IsRecurring     Optional[bool]            `json:"is_recurring,omitzero"`
	Notes           Optional[string]          `json:"notes,omitzero"`
}

func DecodeWishUpdated(payload []byte) (WishUpdated, error) {
	return decodePayload[WishUpdated](payload)
}

type WishCompleted struct {
	WishID          int64               `json:"wish_id"`
	Status          Optional[string]    `json:"status,omitzero"`
	LastCompletedAt Optional[Timestamp] `json:"last_completed_at,omitzero"`
}

func DecodeWishCompleted(payload []byte) (WishCompleted, error) {
	return decodePayload[WishCompleted](payload)
}
