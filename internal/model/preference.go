package model

// MemberPreference holds per-member contact and reminder settings.
// One row per (household, member name). ReminderTime is "HH:MM".
// ReminderDaysBefore is stored and exposed but not consulted by the
// scheduling engine.
type MemberPreference struct {
	ID                  int64  `json:"id"`
	MemberName          string `json:"member_name"`
	HouseholdID         int64  `json:"household_id"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	NotificationEnabled bool   `json:"notification_enabled"`
	ReminderTime        string `json:"reminder_time"`
	ReminderDaysBefore  int    `json:"reminder_days_before"`
}
