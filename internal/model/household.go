package model

import "time"

// Rotation cadence values. Stored as open strings; unknown values
// behave like "none" for automatic rotation.
const (
	RotationNone     = "none"
	RotationWeekly   = "weekly"
	RotationBiweekly = "biweekly"
	RotationMonthly  = "monthly"
)

type Household struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	RotationMode string    `json:"rotation_mode"`
	CreatedAt    time.Time `json:"created_at"`
}
