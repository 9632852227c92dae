package domain

const (
	EventTypeTaskCreated     = "task_created"
	EventTypeTaskCompleted   = "task_completed"
	EventTypeTaskUncompleted = "task_uncompleted"
	EventTypeTaskArchived    = "task_archived"
)

const (
	OccurrenceStatusActive  = "ACTIVE"
	OccurrenceStatusDone    = "DONE"
	OccurrenceStatusSkipped = "SKIPPED"
)

type TaskCreated struct {
	TaskID     int64     `json:"task_id"`
	AccountID  int64     `json:"account_id"`
	Title      string    `json:"title"`
	Note       *string   `json:"note,omitempty"`
	DueDate    *Date     `json:"due_date,omitempty"`
	CategoryID *int64    `json:"category_id,omitempty"`
	CreatedAt  Timestamp `json:"created_at"`
}

func DecodeTaskCreated(payload []byte) (TaskCreated, error) {
	return decodePayload[TaskCreated](payload)
}

type TaskCompleted struct {
	TaskID      int64     `json:"task_id"`
	CompletedAt Timestamp `json:"completed_at"`
}

func DecodeTaskCompleted(payload []byte) (TaskCompleted, error) {
	return decodePayload[TaskCompleted](payload)
}

type TaskRef struct {
	TaskID int64 `json:"task_id"`
}

func DecodeTaskRef(payload []byte) (TaskRef, error) {
	return decodePayload[TaskRef](payload)
}

type TaskArchived struct {
	TaskID     int64     `json:"task_id"`
	ArchivedAt Timestamp `json:"archived_at"`
}

func DecodeTaskArchived(payload []byte) (TaskArchived, error) {
	return decodePayload[TaskArchived](payload)
}
