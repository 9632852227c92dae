package readmodels

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/finlifeos/finlife-core-go/adapters"
	"github.com/finlifeos/finlife-core-go/domain"
	"github.com/finlifeos/finlife-core-go/eventlog"
)

const (
	calendarEventsTable        = "calendar_events"
	eventOccurrencesTable      = "event_occurrences"
	eventRemindersTable        = "event_reminders"
	eventDefaultRemindersTable = "event_default_reminders"
	eventFilterPresetsTable    = "event_filter_presets"

	colEventID       = "event_id"
	colReminderID    = "id"
	colImportance    = "importance"
	colRepeatRuleID  = "repeat_rule_id"
	colIsActive      = "is_active"
	colStartTime     = "start_time"
	colEndDate       = "end_date"
	colEndTime       = "end_time"
	colIsCancelled   = "is_cancelled"
	colSource        = "source"
	colOccurrenceRef = "occurrence_id"
	colChannel       = "channel"
	colMode          = "mode"
	colOffsetMinutes = "offset_minutes"
	colFixedTime     = "fixed_time"
	colIsEnabled     = "is_enabled"
	colPresetName    = "name"
	colCategoryIDs   = "category_ids_json"
	colIsSelected    = "is_selected"
)

// CalendarProjector maintains calendar events, their occurrences, reminder
// definitions (per event and per occurrence), and filter presets.
type CalendarProjector struct{}

func NewCalendarProjector() *CalendarProjector {
	return &CalendarProjector{}
}

func (p *CalendarProjector) Name() string {
	return "calendar"
}

func (p *CalendarProjector) EventTypes() []string {
	return []string{
		domain.EventTypeCalendarEventCreated,
		domain.EventTypeCalendarEventUpdated,
		domain.EventTypeCalendarEventDeactivated,
		domain.EventTypeEventOccurrenceCreated,
		domain.EventTypeEventOccurrenceUpdated,
		domain.EventTypeEventOccurrenceCancelled,
		domain.EventTypeEventDefaultReminderCreated,
		domain.EventTypeEventDefaultReminderUpdated,
		domain.EventTypeEventDefaultReminderDeleted,
		domain.EventTypeEventReminderCreated,
		domain.EventTypeEventReminderUpdated,
		domain.EventTypeEventReminderDeleted,
		domain.EventTypeEventFilterPresetCreated,
		domain.EventTypeEventFilterPresetUpdated,
		domain.EventTypeEventFilterPresetDeleted,
	}
}

func (p *CalendarProjector) Handle(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	switch event.EventType {
	case domain.EventTypeCalendarEventCreated:
		return p.handleEventCreated(ctx, tx, event)
	case domain.EventTypeCalendarEventUpdated:
		return p.handleEventUpdated(ctx, tx, event)
	case domain.EventTypeCalendarEventDeactivated:
		return p.handleEventDeactivated(ctx, tx, event)
	case domain.EventTypeEventOccurrenceCreated:
		return p.handleOccurrenceCreated(ctx, tx, event)
	case domain.EventTypeEventOccurrenceUpdated:
		return p.handleOccurrenceUpdated(ctx, tx, event)
	case domain.EventTypeEventOccurrenceCancelled:
		return p.handleOccurrenceCancelled(ctx, tx, event)
	case domain.EventTypeEventDefaultReminderCreated:
		return p.handleDefaultReminderCreated(ctx, tx, event)
	case domain.EventTypeEventDefaultReminderUpdated:
		return p.handleReminderUpdated(ctx, tx, event, eventDefaultRemindersTable)
	case domain.EventTypeEventDefaultReminderDeleted:
		return p.handleReminderDeleted(ctx, tx, event, eventDefaultRemindersTable)
	case domain.EventTypeEventReminderCreated:
		return p.handleReminderCreated(ctx, tx, event)
	case domain.EventTypeEventReminderUpdated:
		return p.handleReminderUpdated(ctx, tx, event, eventRemindersTable)
	case domain.EventTypeEventReminderDeleted:
		return p.handleReminderDeleted(ctx, tx, event, eventRemindersTable)
	case domain.EventTypeEventFilterPresetCreated:
		return p.handlePresetCreated(ctx, tx, event)
	case domain.EventTypeEventFilterPresetUpdated:
		return p.handlePresetUpdated(ctx, tx, event)
	case domain.EventTypeEventFilterPresetDeleted:
		return p.handlePresetDeleted(ctx, tx, event)
	}

	return nil
}

func (p *CalendarProjector) Reset(ctx context.Context, tx adapters.DBTx, accountID eventlog.AccountID) error {
	// reminder tables have no account column; scope through their parents
	deleteReminders := dialect.Delete(eventRemindersTable).Where(
		goqu.C(colOccurrenceRef).In(
			dialect.From(eventOccurrencesTable).
				Select(colOccID).
				Where(goqu.C(colAccountID).Eq(accountID)),
		),
	)
	if err := execSQL(ctx, tx, deleteReminders); err != nil {
		return err
	}

	deleteDefaults := dialect.Delete(eventDefaultRemindersTable).Where(
		goqu.C(colEventID).In(
			dialect.From(calendarEventsTable).
				Select(colEventID).
				Where(goqu.C(colAccountID).Eq(accountID)),
		),
	)
	if err := execSQL(ctx, tx, deleteDefaults); err != nil {
		return err
	}

	for _, table := range []string{eventOccurrencesTable, eventFilterPresetsTable, calendarEventsTable} {
		if err := deleteForAccount(ctx, tx, table, accountID); err != nil {
			return err
		}
	}

	return nil
}

func (p *CalendarProjector) handleEventCreated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeCalendarEventCreated(event.Payload)
	if err != nil {
		return err
	}

	exists, err := rowExists(ctx, tx, calendarEventsTable, goqu.C(colEventID).Eq(payload.EventID))
	if err != nil || exists {
		return err
	}

	return execSQL(ctx, tx, dialect.Insert(calendarEventsTable).Rows(goqu.Record{
		colEventID:      payload.EventID,
		colAccountID:    payload.AccountID,
		colTitle:        payload.Title,
		colDescription:  nullableString(payload.Description),
		colCategoryID:   payload.CategoryID,
		colImportance:   payload.Importance,
		colRepeatRuleID: nullableInt(payload.RepeatRuleID),
		colIsActive:     true,
	}))
}

func (p *CalendarProjector) handleEventUpdated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeCalendarEventUpdated(event.Payload)
	if err != nil {
		return err
	}

	record := goqu.Record{}
	if payload.Title.Set {
		record[colTitle] = optString(payload.Title)
	}
	if payload.Description.Set {
		record[colDescription] = optString(payload.Description)
	}
	if payload.CategoryID.Set {
		record[colCategoryID] = optInt64(payload.CategoryID)
	}
	if payload.Importance.Set {
		record[colImportance] = optInt(payload.Importance)
	}
	if payload.IsActive.Set {
		record[colIsActive] = optBool(payload.IsActive)
	}
	if payload.RepeatRuleID.Set {
		record[colRepeatRuleID] = optInt64(payload.RepeatRuleID)
	}

	if len(record) == 0 {
		return nil
	}

	return execSQL(ctx, tx, dialect.Update(calendarEventsTable).
		Set(record).
		Where(goqu.C(colEventID).Eq(payload.EventID)))
}

func (p *CalendarProjector) handleEventDeactivated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeCalendarEventRef(event.Payload)
	if err != nil {
		return err
	}

	return execSQL(ctx, tx, dialect.Update(calendarEventsTable).
		Set(goqu.Record{colIsActive: false}).
		Where(goqu.C(colEventID).Eq(payload.EventID)))
}

func (p *CalendarProjector) handleOccurrenceCreated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeEventOccurrenceCreated(event.Payload)
	if err != nil {
		return err
	}

	exists, err := rowExists(ctx, tx, eventOccurrencesTable, goqu.C(colOccID).Eq(payload.OccurrenceID))
	if err != nil || exists {
		return err
	}

	return execSQL(ctx, tx, dialect.Insert(eventOccurrencesTable).Rows(goqu.Record{
		colOccID:       payload.OccurrenceID,
		colAccountID:   payload.AccountID,
		colEventID:     payload.EventID,
		colStartDate:   payload.StartDate.String(),
		colStartTime:   nullableString(payload.StartTime),
		colEndDate:     nullableDate(payload.EndDate),
		colEndTime:     nullableString(payload.EndTime),
		colIsCancelled: false,
		colSource:      payload.Source,
	}))
}

func (p *CalendarProjector) handleOccurrenceUpdated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeEventOccurrenceUpdated(event.Payload)
	if err != nil {
		return err
	}

	record := goqu.Record{}
	if payload.StartDate.Set {
		record[colStartDate] = optDate(payload.StartDate)
	}
	if payload.StartTime.Set {
		record[colStartTime] = optString(payload.StartTime)
	}
	if payload.EndDate.Set {
		record[colEndDate] = optDate(payload.EndDate)
	}
	if payload.EndTime.Set {
		record[colEndTime] = optString(payload.EndTime)
	}

	if len(record) == 0 {
		return nil
	}

	return execSQL(ctx, tx, dialect.Update(eventOccurrencesTable).
		Set(record).
		Where(goqu.C(colOccID).Eq(payload.OccurrenceID)))
}

func (p *CalendarProjector) handleOccurrenceCancelled(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeOccurrenceRef(event.Payload)
	if err != nil {
		return err
	}

	return execSQL(ctx, tx, dialect.Update(eventOccurrencesTable).
		Set(goqu.Record{colIsCancelled: true}).
		Where(goqu.C(colOccID).Eq(payload.OccurrenceID)))
}

func (p *CalendarProjector) handleDefaultReminderCreated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeEventDefaultReminderCreated(event.Payload)
	if err != nil {
		return err
	}

	exists, err := rowExists(ctx, tx, eventDefaultRemindersTable, goqu.C(colReminderID).Eq(payload.ReminderID))
	if err != nil || exists {
		return err
	}

	return execSQL(ctx, tx, dialect.Insert(eventDefaultRemindersTable).Rows(goqu.Record{
		colReminderID:    payload.ReminderID,
		colEventID:       payload.EventID,
		colChannel:       payload.Channel,
		colMode:          payload.Mode,
		colOffsetMinutes: nullableSmallInt(payload.OffsetMinutes),
		colFixedTime:     nullableString(payload.FixedTime),
		colIsEnabled:     *payload.IsEnabled,
	}))
}

func (p *CalendarProjector) handleReminderCreated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeEventReminderCreated(event.Payload)
	if err != nil {
		return err
	}

	exists, err := rowExists(ctx, tx, eventRemindersTable, goqu.C(colReminderID).Eq(payload.ReminderID))
	if err != nil || exists {
		return err
	}

	return execSQL(ctx, tx, dialect.Insert(eventRemindersTable).Rows(goqu.Record{
		colReminderID:    payload.ReminderID,
		colOccurrenceRef: payload.OccurrenceID,
		colChannel:       payload.Channel,
		colMode:          payload.Mode,
		colOffsetMinutes: nullableSmallInt(payload.OffsetMinutes),
		colFixedTime:     nullableString(payload.FixedTime),
		colIsEnabled:     *payload.IsEnabled,
	}))
}

func (p *CalendarProjector) handleReminderUpdated(ctx context.Context, tx adapters.DBTx, event eventlog.Event, table string) error {
	payload, err := domain.DecodeReminderUpdated(event.Payload)
	if err != nil {
		return err
	}

	record := goqu.Record{}
	if payload.Channel.Set {
		record[colChannel] = optString(payload.Channel)
	}
	if payload.Mode.Set {
		record[colMode] = optString(payload.Mode)
	}
	if payload.OffsetMinutes.Set {
		record[colOffsetMinutes] = optInt(payload.OffsetMinutes)
	}
	if payload.FixedTime.Set {
		record[colFixedTime] = optString(payload.FixedTime)
	}
	if payload.IsEnabled.Set {
		record[colIsEnabled] = optBool(payload.IsEnabled)
	}

	if len(record) == 0 {
		return nil
	}

	return execSQL(ctx, tx, dialect.Update(table).
		Set(record).
		Where(goqu.C(colReminderID).Eq(payload.ReminderID)))
}

func (p *CalendarProjector) handleReminderDeleted(ctx context.Context, tx adapters.DBTx, event eventlog.Event, table string) error {
	payload, err := domain.DecodeReminderRef(event.Payload)
	if err != nil {
		return err
	}

	return execSQL(ctx, tx, dialect.Delete(table).
		Where(goqu.C(colReminderID).Eq(payload.ReminderID)))
}

func (p *CalendarProjector) handlePresetCreated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeEventFilterPresetCreated(event.Payload)
	if err != nil {
		return err
	}

	exists, err := rowExists(ctx, tx, eventFilterPresetsTable, goqu.C(colOccID).Eq(payload.PresetID))
	if err != nil || exists {
		return err
	}

	return execSQL(ctx, tx, dialect.Insert(eventFilterPresetsTable).Rows(goqu.Record{
		colOccID:       payload.PresetID,
		colAccountID:   payload.AccountID,
		colPresetName:  payload.Name,
		colCategoryIDs: payload.CategoryIDsJSON,
		colIsSelected:  payload.IsSelected,
	}))
}

func (p *CalendarProjector) handlePresetUpdated(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodeEventFilterPresetUpdated(event.Payload)
	if err != nil {
		return err
	}

	record := goqu.Record{}
	if payload.Name.Set {
		record[colPresetName] = optString(payload.Name)
	}
	if payload.CategoryIDsJSON.Set {
		record[colCategoryIDs] = optString(payload.CategoryIDsJSON)
	}
	if payload.IsSelected.Set {
		record[colIsSelected] = optBool(payload.IsSelected)
	}

	if len(record) == 0 {
		return nil
	}

	return execSQL(ctx, tx, dialect.Update(eventFilterPresetsTable).
		Set(record).
		Where(goqu.C(colOccID).Eq(payload.PresetID)))
}

func (p *CalendarProjector) handlePresetDeleted(ctx context.Context, tx adapters.DBTx, event eventlog.Event) error {
	payload, err := domain.DecodePresetRef(event.Payload)
	if err != nil {
		return err
	}

	return execSQL(ctx, tx, dialect.Delete(eventFilterPresetsTable).
		Where(goqu.C(colOccID).Eq(payload.PresetID)))
}
