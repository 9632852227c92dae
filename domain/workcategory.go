package domain

const (
	EventTypeWorkCategoryCreated    = "work_category_created"
	EventTypeWorkCategoryUpdated    = "work_category_updated"
	EventTypeWorkCategoryArchived   = "work_category_archived"
	EventTypeWorkCategoryUnarchived = "work_category_unarchived"
)

type WorkCategoryCreated struct {
	CategoryID int64     `json:"category_id"`
	AccountID  int64     `json:"account_id"`
	Title      string    `json:"title"`
	Emoji      *string   `json:"emoji,omitempty"`
	CreatedAt  Timestamp `json:"created_at"`
}

func DecodeWorkCategoryCreated(payload []byte) (WorkCategoryCreated, error) {
	return decodePayload[WorkCategoryCreated](payload)
}

type WorkCategoryUpdated struct {
	CategoryID int64            `json:"category_id"`
	Title      Optional[string] `json:"title,omitzero"`
	Emoji      Optional[string] `json:"emoji,omitzero"`
}

func DecodeWorkCategoryUpdated(payload []byte) (WorkCategoryUpdated, error) {
	return decodePayload[WorkCategoryUpdated](payload)
}

type WorkCategoryRef struct {
	CategoryID int64 `json:"category_id"`
}

func DecodeWorkCategoryRef(payload []byte) (WorkCategoryRef, error) {
	return decodePayload[WorkCategoryRef](payload)
}
