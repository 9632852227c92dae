package domain

const (
	EventTypeHabitCreated    = "habit_created"
	EventTypeHabitUpdated    = "habit_updated"
	EventTypeHabitArchived   = "habit_archived"
	EventTypeHabitUnarchived = "habit_unarchived"

	EventTypeHabitOccurrenceCompleted = "habit_occurrence_completed"
	EventTypeHabitOccurrenceSkipped   = "habit_occurrence_skipped"
	EventTypeHabitOccurrenceReset     = "habit_occurrence_reset"

	EventTypeHabitMilestoneReached = "habit_milestone_reached"
)

type HabitCreated struct {
	HabitID     int64   `json:"habit_id"`
	AccountID   int64   `json:"account_id"`
	Title       string  `json:"title"`
	Note        *string `json:"note,omitempty"`
	RuleID      int64   `json:"rule_id"`
	CategoryID  *int64  `json:"category_id,omitempty"`
	ActiveFrom  Date    `json:"active_from"`
	ActiveUntil *Date   `json:"active_until,omitempty"`
	Level       int     `json:"level,omitzero"`
}

// DecodeHabitCreated defaults the level to 1 when the payload omits it.
func DecodeHabitCreated(payload []byte) (HabitCreated, error) {
	p, err := decodePayload[HabitCreated](payload)
	if err != nil {
		return HabitCreated{}, err
	}

	if p.Level == 0 {
		p.Level = 1
	}

	return p, nil
}

type HabitUpdated struct {
	HabitID     int64            `json:"habit_id"`
	Title       Optional[string] `json:"title,omitzero"`
	Note        Optional[string] `json:"note,omitzero"`
	ActiveUntil Optional[Date]   `json:"active_until,omitzero"`
	CategoryID  Optional[int64]  `json:"category_id,omitzero"`
	IsArchived  Optional[bool]   `json:"is_archived,omitzero"`
	Level       Optional[int]    `json:"level,omitzero"`
}

func DecodeHabitUpdated(payload []byte) (HabitUpdated, error) {
	return decodePayload[HabitUpdated](payload)
}

type HabitRef struct {
	HabitID int64 `json:"habit_id"`
}

func DecodeHabitRef(payload []byte) (HabitRef, error) {
	return decodePayload[HabitRef](payload)
}

// HabitOccurrenceStatus covers completed, skipped, and reset events.
type HabitOccurrenceStatus struct {
	HabitID      int64      `json:"habit_id"`
	OccurrenceID int64      `json:"occurrence_id"`
	Status       string     `json:"status"`
	CompletedAt  *Timestamp `json:"completed_at,omitempty"`
}

func DecodeHabitOccurrenceStatus(payload []byte) (HabitOccurrenceStatus, error) {
	return decodePayload[HabitOccurrenceStatus](payload)
}

type HabitMilestoneReached struct {
	HabitID       int64     `json:"habit_id"`
	Threshold     int       `json:"threshold"`
	CurrentStreak int       `json:"current_streak"`
	ReachedAt     Timestamp `json:"reached_at"`
}

func DecodeHabitMilestoneReached(payload []byte) (HabitMilestoneReached, error) {
	return decodePayload[HabitMilestoneReached](payload)
}
