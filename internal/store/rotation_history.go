package store

import (
	"database/sql"
	"fmt"

	"github.com/rgarton/homesync/internal/model"
)

type RotationHistoryStore struct {
	db *sql.DB
}

func NewRotationHistoryStore(db *sql.DB) *RotationHistoryStore {
	return &RotationHistoryStore{db: db}
}

func scanRotationHistory(scanner interface{ Scan(...any) error }) (*model.RotationHistory, error) {
	var r model.RotationHistory
	err := scanner.Scan(
		&r.ID, &r.HouseholdID, &r.ChoreID, &r.PreviousAssignedTo,
		&r.NewAssignedTo, &r.RotationDate, &r.RotationType,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

const rotationHistoryCols = `id, household_id, chore_id, previous_assigned_to, new_assigned_to, rotation_date, rotation_type`

// MostRecent returns the latest rotation-history row for a household, or
// nil if the household has never rotated.
func (s *RotationHistoryStore) MostRecent(householdID int64) (*model.RotationHistory, error) {
	row := s.db.QueryRow(
		`SELECT `+rotationHistoryCols+` FROM rotation_history
		 WHERE household_id = ? ORDER BY rotation_date DESC, id DESC LIMIT 1`,
		householdID,
	)
	r, err := scanRotationHistory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("most recent rotation: %w", err)
	}
	return r, nil
}

func (s *RotationHistoryStore) ListByHousehold(householdID int64) ([]model.RotationHistory, error) {
	rows, err := s.db.Query(
		`SELECT `+rotationHistoryCols+` FROM rotation_history
		 WHERE household_id = ? ORDER BY rotation_date DESC, id DESC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list rotation history: %w", err)
	}
	defer rows.Close()

	var history []model.RotationHistory
	for rows.Next() {
		r, err := scanRotationHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rotation history: %w", err)
		}
		history = append(history, *r)
	}
	return history, rows.Err()
}

// ApplyRotation commits a planned rotation as one atomic unit: every
// reassigned chore gets its new assignee, its completion flag cleared,
// and one history row. Any failure rolls the whole unit back so a
// half-rotated household is never visible.
func (s *RotationHistoryStore) ApplyRotation(householdID int64, rotationType string, changes []model.Reassignment) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, ch := range changes {
		result, err := tx.Exec(
			`UPDATE chores SET assigned_to = ?, completed = 0, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ? AND household_id = ?`,
			ch.New, ch.ChoreID, householdID,
		)
		if err != nil {
			return fmt.Errorf("update chore %d: %w", ch.ChoreID, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("chore %d not found in household %d", ch.ChoreID, householdID)
		}
		if _, err := tx.Exec(
			`INSERT INTO rotation_history (household_id, chore_id, previous_assigned_to, new_assigned_to, rotation_type)
			 VALUES (?, ?, ?, ?, ?)`,
			householdID, ch.ChoreID, ch.Previous, ch.New, rotationType,
		); err != nil {
			return fmt.Errorf("insert rotation history for chore %d: %w", ch.ChoreID, err)
		}
	}

	return tx.Commit()
}
