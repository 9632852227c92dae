package domain

import (
	"github.com/shopspring/decimal"
)

const (
	EventTypeOperationTemplateCreated    = "operation_template_created"
	EventTypeOperationTemplateUpdated    = "operation_template_updated"
	EventTypeOperationTemplateArchived   = "operation_template_archived"
	EventTypeOperationTemplateUnarchived = "operation_template_unarchived"
	EventTypeOperationTemplateClosed     = "operation_template_closed"

	EventTypeOperationOccurrenceConfirmed = "operation_occurrence_confirmed"
	EventTypeOperationOccurrenceSkipped   = "operation_occurrence_skipped"
)

type OperationTemplateCreated struct {
	TemplateID          int64           `json:"template_id"`
	AccountID           int64           `json:"account_id"`
	Title               string          `json:"title"`
	RuleID              int64           `json:"rule_id"`
	ActiveFrom          Date            `json:"active_from"`
	ActiveUntil         *Date           `json:"active_until,omitempty"`
	Kind                string          `json:"kind"`
	Amount              decimal.Decimal `json:"amount"`
	Note                *string         `json:"note,omitempty"`
	WalletID            *int64          `json:"wallet_id,omitempty"`
	DestinationWalletID *int64          `json:"destination_wallet_id,omitempty"`
	CategoryID          *int64          `json:"category_id,omitempty"`
	WorkCategoryID      *int64          `json:"work_category_id,omitempty"`
}

func DecodeOperationTemplateCreated(payload []byte) (OperationTemplateCreated, error) {
	return decodePayload[OperationTemplateCreated](payload)
}

type OperationTemplateUpdated struct {
	TemplateID          int64                     `json:"template_id"`
	Title               Optional[string]          `json:"title,omitzero"`
	Note                Optional[string]          `json:"note,omitzero"`
	Kind                Optional[string]          `json:"kind,omitzero"`
	Amount              Optional[decimal.Decimal] `json:"amount,omitzero"`
	WalletID            Optional[int64]           `json:"wallet_id,omitzero"`
	DestinationWalletID Optional[int64]           `json:"destination_wallet_id,omitzero"`
	CategoryID          Optional[int64]           `json:"category_id,omitzero"`
	WorkCategoryID      Optional[int64]           `json:"work_category_id,omitzero"`
	IsArchived          Optional[bool]            `json:"is_archived,omitzero"`
	ActiveUntil         Optional[Date]            `json:"active_until,omitzero"`
}

func DecodeOperationTemplateUpdated(payload []byte) (OperationTemplateUpdated, error) {
	return decodePayload[OperationTemplateUpdated](payload)
}

type OperationTemplateClosed struct {
	TemplateID  int64 `json:"template_id"`
	ActiveUntil *Date `json:"active_until,omitempty"`
}

func DecodeOperationTemplateClosed(payload []byte) (OperationTemplateClosed, error) {
	return decodePayload[OperationTemplateClosed](payload)
}

// OperationOccurrenceStatus covers confirmed and skipped events.
type OperationOccurrenceStatus struct {
	TemplateID    int64      `json:"template_id"`
	OccurrenceID  int64      `json:"occurrence_id"`
	Status        string     `json:"status"`
	CompletedAt   *Timestamp `json:"completed_at,omitempty"`
	TransactionID *int64     `json:"transaction_id,omitempty"`
}

func DecodeOperationOccurrenceStatus(payload []byte) (OperationOccurrenceStatus, error) {
	return decodePayload[OperationOccurrenceStatus](payload)
}
