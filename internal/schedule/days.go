// Package schedule holds the small date rules shared by the rotation
// engine and the reminder sweep.
package schedule

import "time"

// IsDueOn reports whether a chore scheduled for the given weekday names
// is due on t. Day names are full English weekday names ("Monday").
// A chore with no scheduled days is never due.
func IsDueOn(days []string, t time.Time) bool {
	weekday := t.Weekday().String()
	for _, d := range days {
		if d == weekday {
			return true
		}
	}
	return false
}

// ReminderElapsed reports whether now has reached the member's preferred
// reminder time, an "HH:MM" wall-clock string. Malformed values are
// treated as already elapsed so a bad preference never silences
// reminders entirely.
func ReminderElapsed(reminderTime string, now time.Time) bool {
	preferred, err := time.Parse("15:04", reminderTime)
	if err != nil {
		return true
	}
	current := now.Hour()*60 + now.Minute()
	return current >= preferred.Hour()*60+preferred.Minute()
}

// DateKey formats t as the calendar-date key used to deduplicate
// reminders, one per chore per day.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
