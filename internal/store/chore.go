package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rgarton/homesync/internal/model"
)

type ChoreStore struct {
	db *sql.DB
}

func NewChoreStore(db *sql.DB) *ChoreStore {
	return &ChoreStore{db: db}
}

func scanChore(scanner interface{ Scan(...any) error }) (*model.Chore, error) {
	var c model.Chore
	var days string
	var assignedTo sql.NullString
	var completed int

	err := scanner.Scan(
		&c.ID, &c.Title, &c.Description, &days, &assignedTo,
		&completed, &c.HouseholdID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(days), &c.Days); err != nil {
		return nil, fmt.Errorf("decode days: %w", err)
	}
	if assignedTo.Valid {
		c.AssignedTo = &assignedTo.String
	}
	c.Completed = completed != 0
	return &c, nil
}

const choreCols = `id, title, description, days, assigned_to, completed, household_id, created_at, updated_at`

func encodeDays(days []string) (string, error) {
	if days == nil {
		days = []string{}
	}
	b, err := json.Marshal(days)
	if err != nil {
		return "", fmt.Errorf("encode days: %w", err)
	}
	return string(b), nil
}

func (s *ChoreStore) Create(householdID int64, title, description string, days []string, assignedTo *string) (*model.Chore, error) {
	daysJSON, err := encodeDays(days)
	if err != nil {
		return nil, err
	}
	var aTo sql.NullString
	if assignedTo != nil {
		aTo = sql.NullString{String: *assignedTo, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO chores (title, description, days, assigned_to, household_id) VALUES (?, ?, ?, ?, ?)`,
		title, description, daysJSON, aTo, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chore: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChoreStore) GetByID(id int64) (*model.Chore, error) {
	row := s.db.QueryRow(`SELECT `+choreCols+` FROM chores WHERE id = ?`, id)
	c, err := scanChore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}
	return c, nil
}

func (s *ChoreStore) ListByHousehold(householdID int64) ([]model.Chore, error) {
	rows, err := s.db.Query(
		`SELECT `+choreCols+` FROM chores WHERE household_id = ? ORDER BY id ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	defer rows.Close()
	return collectChores(rows)
}

// ListIncomplete returns the household's chores with completed = false,
// the set the scheduler evaluates for reminders.
func (s *ChoreStore) ListIncomplete(householdID int64) ([]model.Chore, error) {
	rows, err := s.db.Query(
		`SELECT `+choreCols+` FROM chores WHERE household_id = ? AND completed = 0 ORDER BY id ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list incomplete chores: %w", err)
	}
	defer rows.Close()
	return collectChores(rows)
}

func collectChores(rows *sql.Rows) ([]model.Chore, error) {
	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	return chores, rows.Err()
}

func (s *ChoreStore) Update(id int64, title, description string, days []string, assignedTo *string, completed bool) (*model.Chore, error) {
	daysJSON, err := encodeDays(days)
	if err != nil {
		return nil, err
	}
	var aTo sql.NullString
	if assignedTo != nil {
		aTo = sql.NullString{String: *assignedTo, Valid: true}
	}
	var completedInt int
	if completed {
		completedInt = 1
	}

	_, err = s.db.Exec(
		`UPDATE chores SET title = ?, description = ?, days = ?, assigned_to = ?, completed = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		title, description, daysJSON, aTo, completedInt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update chore: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChoreStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM chores WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete chore: %w", err)
	}
	return nil
}

// Counts returns the total and completed chore counts for a household.
func (s *ChoreStore) Counts(householdID int64) (total, completed int, err error) {
	err = s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(completed), 0) FROM chores WHERE household_id = ?`,
		householdID,
	).Scan(&total, &completed)
	if err != nil {
		return 0, 0, fmt.Errorf("count chores: %w", err)
	}
	return total, completed, nil
}
