package domain

import (
	"github.com/shopspring/decimal"
)

const (
	EventTypeGoalCreated  = "goal_created"
	EventTypeGoalUpdated  = "goal_updated"
	EventTypeGoalArchived = "goal_archived"
	EventTypeGoalAchieved = "goal_achieved"
)

type GoalCreated struct {
	GoalID       int64            `json:"goal_id"`
	AccountID    int64            `json:"account_id"`
	Title        string           `json:"title"`
	Currency     string           `json:"currency"`
	TargetAmount *decimal.Decimal `json:"target_amount,omitempty"`
	IsSystem     bool             `json:"is_system,omitzero"`
	CreatedAt    Timestamp        `json:"created_at"`
}

func DecodeGoalCreated(payload []byte) (GoalCreated, error) {
	return decodePayload[GoalCreated](payload)
}

type GoalUpdated struct {
	GoalID       int64                     `json:"goal_id"`
	Title        Optional[string]          `json:"title,omitzero"`
	TargetAmount Optional[decimal.Decimal] `json:"target_amount,omitzero"`
}

func DecodeGoalUpdated(payload []byte) (GoalUpdated, error) {
	return decodePayload[GoalUpdated](payload)
}

type GoalArchived struct {
	GoalID int64 `json:"goal_id"`
}

func DecodeGoalArchived(payload []byte) (GoalArchived, error) {
	return decodePayload[GoalArchived](payload)
}
