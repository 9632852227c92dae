package domain

const (
	EventTypeCalendarEventCreated     = "calendar_event_created"
	EventTypeCalendarEventUpdated     = "calendar_event_updated"
	EventTypeCalendarEventDeactivated = "calendar_event_deactivated"

	EventTypeEventOccurrenceCreated   = "event_occurrence_created"
	EventTypeEventOccurrenceUpdated   = "event_occurrence_updated"
	EventTypeEventOccurrenceCancelled = "event_occurrence_cancelled"

	EventTypeEventDefaultReminderCreated = "event_default_reminder_created"
	EventTypeEventDefaultReminderUpdated = "event_default_reminder_updated"
	EventTypeEventDefaultReminderDeleted = "event_default_reminder_deleted"

	EventTypeEventReminderCreated = "event_reminder_created"
	EventTypeEventReminderUpdated = "event_reminder_updated"
	EventTypeEventReminderDeleted = "event_reminder_deleted"

	EventTypeEventFilterPresetCreated = "event_filter_preset_created"
	EventTypeEventFilterPresetUpdated = "event_filter_preset_updated"
	EventTypeEventFilterPresetDeleted = "event_filter_preset_deleted"
)

const (
	OccurrenceSourceManual = "manual"
	OccurrenceSourceRule   = "rule"
)

type CalendarEventCreated struct {
	EventID      int64   `json:"event_id"`
	AccountID    int64   `json:"account_id"`
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	CategoryID   int64   `json:"category_id"`
	Importance   int     `json:"importance,omitzero"`
	RepeatRuleID *int64  `json:"repeat_rule_id,omitempty"`
}

func DecodeCalendarEventCreated(payload []byte) (CalendarEventCreated, error) {
	return decodePayload[CalendarEventCreated](payload)
}

type CalendarEventUpdated struct {
	EventID      int64            `json:"event_id"`
	Title        Optional[string] `json:"title,omitzero"`
	Description  Optional[string] `json:"description,omitzero"`
	CategoryID   Optional[int64]  `json:"category_id,omitzero"`
	Importance   Optional[int]    `json:"importance,omitzero"`
	IsActive     Optional[bool]   `json:"is_active,omitzero"`
	RepeatRuleID Optional[int64]  `json:"repeat_rule_id,omitzero"`
}

func DecodeCalendarEventUpdated(payload []byte) (CalendarEventUpdated, error) {
	return decodePayload[CalendarEventUpdated](payload)
}

type CalendarEventRef struct {
	EventID int64 `json:"event_id"`
}

func DecodeCalendarEventRef(payload []byte) (CalendarEventRef, error) {
	return decodePayload[CalendarEventRef](payload)
}

type EventOccurrenceCreated struct {
	OccurrenceID int64   `json:"occurrence_id"`
	AccountID    int64   `json:"account_id"`
	EventID      int64   `json:"event_id"`
	StartDate    Date    `json:"start_date"`
	StartTime    *string `json:"start_time,omitempty"` // "HH:MM[:SS]", nil = all day
	EndDate      *Date   `json:"end_date,omitempty"`
	EndTime      *string `json:"end_time,omitempty"`
	Source       string  `json:"source,omitzero"`
}

// DecodeEventOccurrenceCreated defaults the source to manual.
func DecodeEventOccurrenceCreated(payload []byte) (EventOccurrenceCreated, error) {
	p, err := decodePayload[EventOccurrenceCreated](payload)
	if err != nil {
		return EventOccurrenceCreated{}, err
	}

	if p.Source == "" {
		p.Source = OccurrenceSourceManual
	}

	return p, nil
}

type EventOccurrenceUpdated struct {
	OccurrenceID int64            `json:"occurrence_id"`
	StartDate    Optional[Date]   `json:"start_date,omitzero"`
	StartTime    Optional[string] `json:"start_time,omitzero"`
	EndDate      Optional[Date]   `json:"end_date,omitzero"`
	EndTime      Optional[string] `json:"end_time,omitzero"`
}

func DecodeEventOccurrenceUpdated(payload []byte) (EventOccurrenceUpdated, error) {
	return decodePayload[EventOccurrenceUpdated](payload)
}

type OccurrenceRef struct {
	OccurrenceID int64 `json:"occurrence_id"`
}

func DecodeOccurrenceRef(payload []byte) (OccurrenceRef, error) {
	return decodePayload[OccurrenceRef](payload)
}

type EventDefaultReminderCreated struct {
	ReminderID    int64   `json:"reminder_id"`
	EventID       int64   `json:"event_id"`
	Channel       string  `json:"channel"`
	Mode          string  `json:"mode"`
	OffsetMinutes *int    `json:"offset_minutes,omitempty"`
	FixedTime     *string `json:"fixed_time,omitempty"`
	IsEnabled     *bool   `json:"is_enabled,omitempty"`
}

// DecodeEventDefaultReminderCreated defaults is_enabled to true.
func DecodeEventDefaultReminderCreated(payload []byte) (EventDefaultReminderCreated, error) {
	p, err := decodePayload[EventDefaultReminderCreated](payload)
	if err != nil {
		return EventDefaultReminderCreated{}, err
	}

	if p.IsEnabled == nil {
		enabled := true
		p.IsEnabled = &enabled
	}

	return p, nil
}

type EventReminderCreated struct {
	ReminderID    int64   `json:"reminder_id"`
	OccurrenceID  int64   `json:"occurrence_id"`
	Channel       string  `json:"channel"`
	Mode          string  `json:"mode"`
	OffsetMinutes *int    `json:"offset_minutes,omitempty"`
	FixedTime     *string `json:"fixed_time,omitempty"`
	IsEnabled     *bool   `json:"is_enabled,omitempty"`
}

// DecodeEventReminderCreated defaults is_enabled to true.
func DecodeEventReminderCreated(payload []byte) (EventReminderCreated, error) {
	p, err := decodePayload[EventReminderCreated](payload)
	if err != nil {
		return EventReminderCreated{}, err
	}

	if p.IsEnabled == nil {
		enabled := true
		p.IsEnabled = &enabled
	}

	return p, nil
}

type ReminderUpdated struct {
	ReminderID    int64            `json:"reminder_id"`
	Channel       Optional[string] `json:"channel,omitzero"`
	Mode          Optional[string] `json:"mode,omitzero"`
	OffsetMinutes Optional[int]    `json:"offset_minutes,omitzero"`
	FixedTime     Optional[string] `json:"fixed_time,omitzero"`
	IsEnabled     Optional[bool]   `json:"is_enabled,omitzero"`
}

func DecodeReminderUpdated(payload []byte) (ReminderUpdated, error) {
	return decodePayload[ReminderUpdated](payload)
}

type ReminderRef struct {
	ReminderID int64 `json:"reminder_id"`
}

func DecodeReminderRef(payload []byte) (ReminderRef, error) {
	return decodePayload[ReminderRef](payload)
}

type EventFilterPresetCreated struct {
	PresetID        int64  `json:"preset_id"`
	AccountID       int64  `json:"account_id"`
	Name            string `json:"name"`
	CategoryIDsJSON string `json:"category_ids_json,omitzero"`
	IsSelected      bool   `json:"is_selected,omitzero"`
}

// DecodeEventFilterPresetCreated defaults the category filter to empty.
func DecodeEventFilterPresetCreated(payload []byte) (EventFilterPresetCreated, error) {
	p, err := decodePayload[EventFilterPresetCreated](payload)
	if err != nil {
		return EventFilterPresetCreated{}, err
	}

	if p.CategoryIDsJSON == "" {
		p.CategoryIDsJSON = "[]"
	}

	return p, nil
}

type EventFilterPresetUpdated struct {
	PresetID        int64            `json:"preset_id"`
	Name            Optional[string] `json:"name,omitzero"`
	CategoryIDsJSON Optional[string] `json:"category_ids_json,omitzero"`
	IsSelected      Optional[bool]   `json:"is_selected,omitzero"`
}

func DecodeEventFilterPresetUpdated(payload []byte) (EventFilterPresetUpdated, error) {
	return decodePayload[EventFilterPresetUpdated](payload)
}

type PresetRef struct {
	PresetID int64 `json:"preset_id"`
}

func DecodePresetRef(payload []byte) (PresetRef, error) {
	return decodePayload[PresetRef](payload)
}
