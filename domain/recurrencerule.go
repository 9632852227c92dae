package domain

const (
	EventTypeRecurrenceRuleCreated = "recurrence_rule_created"
	EventTypeRecurrenceRuleUpdated = "recurrence_rule_updated"
)

type RecurrenceRuleCreated struct {
	RuleID                int64   `json:"rule_id"`
	AccountID             int64   `json:"account_id"`
	Freq                  string  `json:"freq"`
	Interval              int     `json:"interval,omitzero"`
	StartDate             Date    `json:"start_date"`
	UntilDate             *Date   `json:"until_date,omitempty"`
	Count                 *int    `json:"count,omitempty"`
	ByWeekday             *string `json:"by_weekday,omitempty"`
	ByMonthday            *int    `json:"by_monthday,omitempty"`
	MonthdayClipToLastDay *bool   `json:"monthday_clip_to_last_day,omitempty"`
	ByMonth               *int    `json:"by_month,omitempty"`
	ByMonthdayForYear     *int    `json:"by_monthday_for_year,omitempty"`
	DatesJSON             *string `json:"dates_json,omitempty"`
}

// DecodeRecurrenceRuleCreated defaults interval to 1 and the clip flag to
// true, matching how rules were written before both fields were mandatory.
func DecodeRecurrenceRuleCreated(payload []byte) (RecurrenceRuleCreated, error) {
	p, err := decodePayload[RecurrenceRuleCreated](payload)
	if err != nil {
		return RecurrenceRuleCreated{}, err
	}

	if p.Interval == 0 {
		p.Interval = 1
	}

	if p.MonthdayClipToLastDay == nil {
		clip := true
		p.MonthdayClipToLastDay = &clip
	}

	return p, nil
}

type RecurrenceRuleUpdated struct {
	RuleID                int64            `json:"rule_id"`
	Freq                  Optional[string] `json:"freq,omitzero"`
	Interval              Optional[int]    `json:"interval,omitzero"`
	StartDate             Optional[Date]   `json:"start_date,omitzero"`
	UntilDate             Optional[Date]   `json:"until_date,omitzero"`
	Count                 Optional[int]    `json:"count,omitzero"`
	ByWeekday             Optional[string] `json:"by_weekday,omitzero"`
	ByMonthday            Optional[int]    `json:"by_monthday,omitzero"`
	MonthdayClipToLastDay Optional[bool]   `json:"monthday_clip_to_last_day,omitzero"`
	ByMonth               Optional[int]    `json:"by_month,omitzero"`
	ByMonthdayForYear     Optional[int]    `json:"by_monthday_for_year,omitzero"`
	DatesJSON             Optional[string] `json:"dates_json,omitzero"`
}

func DecodeRecurrenceRuleUpdated(payload []byte) (RecurrenceRuleUpdated, error) {
	return decodePayload[RecurrenceRuleUpdated](payload)
}
