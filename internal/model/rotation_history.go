package model

import "time"

// RotationHistory is an append-only ledger entry, one per chore per
// rotation event.
type RotationHistory struct {
	ID                 int64     `json:"id"`
	HouseholdID        int64     `json:"household_id"`
	ChoreID            int64     `json:"chore_id"`
	PreviousAssignedTo string    `json:"previous_assigned_to"`
	NewAssignedTo      string    `json:"new_assigned_to"`
	RotationDate       time.Time `json:"rotation_date"`
	RotationType       string    `json:"rotation_type"`
}

// Reassignment is one planned chore hand-off within a rotation. The
// rotation engine produces these and the store commits them atomically.
type Reassignment struct {
	ChoreID  int64
	Previous string
	New      string
}
