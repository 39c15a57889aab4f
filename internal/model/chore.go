package model

import "time"

// Chore recurs on the weekday names listed in Days (e.g. "Monday").
// AssignedTo holds a member name, not a foreign key; the rotation engine
// repairs assignments that no longer match a current member.
type Chore struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Days        []string  `json:"days"`
	AssignedTo  *string   `json:"assigned_to"`
	Completed   bool      `json:"completed"`
	HouseholdID int64     `json:"household_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
