package model

import "time"

// Member belongs to exactly one household. The name is unique within the
// household and is what chores reference in assigned_to.
type Member struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	IsAdmin     bool      `json:"is_admin"`
	HouseholdID int64     `json:"household_id"`
	CreatedAt   time.Time `json:"created_at"`
}
