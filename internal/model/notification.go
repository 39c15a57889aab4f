package model

import "time"

// Notification types. Open enumeration at the storage layer.
const (
	NotifTypeReminder = "reminder"
	NotifTypeOverdue  = "overdue"
	NotifTypeRotation = "rotation"
	NotifTypeWelcome  = "welcome"
	NotifTypeCustom   = "custom"
)

// Notification is an append-only log entry; rows are never updated.
type Notification struct {
	ID               int64     `json:"id"`
	MemberName       string    `json:"member_name"`
	ChoreTitle       string    `json:"chore_title"`
	NotificationType string    `json:"notification_type"`
	Message          string    `json:"message"`
	SentAt           time.Time `json:"sent_at"`
	HouseholdID      int64     `json:"household_id"`
	ChoreID          *int64    `json:"chore_id"`
}
