package store

import (
	"database/sql"
	"fmt"
	"time"
)

// ReminderStore tracks which (household, chore, date) reminders have
// already been sent so repeated scheduler sweeps on the same day do not
// duplicate them.
type ReminderStore struct {
	db *sql.DB
}

func NewReminderStore(db *sql.DB) *ReminderStore {
	return &ReminderStore{db: db}
}

// RecordSent marks a reminder as sent for the given date.
func (s *ReminderStore) RecordSent(householdID, choreID int64, date string) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO sent_reminders (household_id, chore_id, reminder_date) VALUES (?, ?, ?)`,
		householdID, choreID, date,
	)
	if err != nil {
		return fmt.Errorf("record sent reminder: %w", err)
	}
	return nil
}

// WasSent reports whether a reminder was already sent for the given date.
func (s *ReminderStore) WasSent(householdID, choreID int64, date string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM sent_reminders WHERE household_id = ? AND chore_id = ? AND reminder_date = ?`,
		householdID, choreID, date,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check sent reminder: %w", err)
	}
	return count > 0, nil
}

// Cleanup deletes reminder records older than the given time.
func (s *ReminderStore) Cleanup(before time.Time) error {
	_, err := s.db.Exec(`DELETE FROM sent_reminders WHERE sent_at < ?`, before.UTC())
	if err != nil {
		return fmt.Errorf("cleanup sent reminders: %w", err)
	}
	return nil
}
