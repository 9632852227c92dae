package domain

const (
	EventTypeTaskTemplateCreated  = "task_template_created"
	EventTypeTaskTemplateUpdated  = "task_template_updated"
	EventTypeTaskTemplateArchived = "task_template_archived"

	EventTypeTaskOccurrenceCompleted   = "task_occurrence_completed"
	EventTypeTaskOccurrenceSkipped     = "task_occurrence_skipped"
	EventTypeTaskOccurrenceUncompleted = "task_occurrence_uncompleted"
)

type TaskTemplateCreated struct {
	TemplateID  int64   `json:"template_id"`
	AccountID   int64   `json:"account_id"`
	Title       string  `json:"title"`
	Note        *string `json:"note,omitempty"`
	RuleID      int64   `json:"rule_id"`
	CategoryID  *int64  `json:"category_id,omitempty"`
	ActiveFrom  Date    `json:"active_from"`
	ActiveUntil *Date   `json:"active_until,omitempty"`
}

func DecodeTaskTemplateCreated(payload []byte) (TaskTemplateCreated, error) {
	return decodePayload[TaskTemplateCreated](payload)
}

type TaskTemplateUpdated struct {
	TemplateID  int64            `json:"template_id"`
	Title       Optional[string] `json:"title,omitzero"`
	Note        Optional[string] `json:"note,omitzero"`
	ActiveUntil Optional[Date]   `json:"active_until,omitzero"`
	CategoryID  Optional[int64]  `json:"category_id,omitzero"`
	IsArchived  Optional[bool]   `json:"is_archived,omitzero"`
}

func DecodeTaskTemplateUpdated(payload []byte) (TaskTemplateUpdated, error) {
	return decodePayload[TaskTemplateUpdated](payload)
}

type TemplateRef struct {
	TemplateID int64 `json:"template_id"`
}

func DecodeTemplateRef(payload []byte) (TemplateRef, error) {
	return decodePayload[TemplateRef](payload)
}

// TaskOccurrenceStatus covers completed, skipped, and uncompleted events.
type TaskOccurrenceStatus struct {
	TemplateID   int64      `json:"template_id"`
	OccurrenceID int64      `json:"occurrence_id"`
	Status       string     `json:"status"`
	CompletedAt  *Timestamp `json:"completed_at,omitempty"`
}

func DecodeTaskOccurrenceStatus(payload []byte) (TaskOccurrenceStatus, error) {
	return decodePayload[TaskOccurrenceStatus](payload)
}
