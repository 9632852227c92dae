package domain

const (
	EventTypeCategoryCreated  = "category_created"
	EventTypeCategoryUpdated  = "category_updated"
	EventTypeCategoryArchived = "category_archived"
	EventTypeCategoryDeleted  = "category_deleted"
)

type CategoryCreated struct {
	CategoryID   int64     `json:"category_id"`
	AccountID    int64     `json:"account_id"`
	Title        string    `json:"title"`
	CategoryType string    `json:"category_type"`
	ParentID     *int64    `json:"parent_id,omitempty"`
	IsSystem     bool      `json:"is_system,omitzero"`
	SortOrder    int       `json:"sort_order,omitzero"`
	CreatedAt    Timestamp `json:"created_at"`
}

func DecodeCategoryCreated(payload []byte) (CategoryCreated, error) {
	return decodePayload[CategoryCreated](payload)
}

type CategoryUpdated struct {
	CategoryID int64            `json:"category_id"`
	Title      Optional[string] `json:"title,omitzero"`
	ParentID   Optional[int64]  `json:"parent_id,omitzero"`
	IsArchived Optional[bool]   `json:"is_archived,omitzero"`
	SortOrder  Optional[int]    `json:"sort_order,omitzero"`
}

func DecodeCategoryUpdated(payload []byte) (CategoryUpdated, error) {
	return decodePayload[CategoryUpdated](payload)
}

type CategoryRef struct {
	CategoryID int64 `json:"category_id"`
}

func DecodeCategoryRef(payload []byte) (CategoryRef, error) {
	return decodePayload[CategoryRef](payload)
}
