package store

import (
	"crypto/rand"
	"database/sql"
	"fmt"

	"github.com/rgarton/homesync/internal/model"
)

type HouseholdStore struct {
	db *sql.DB
}

func NewHouseholdStore(db *sql.DB) *HouseholdStore {
	return &HouseholdStore{db: db}
}

func scanHousehold(scanner interface{ Scan(...any) error }) (*model.Household, error) {
	var h model.Household
	err := scanner.Scan(&h.ID, &h.Name, &h.Code, &h.RotationMode, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

const householdCols = `id, name, code, rotation_mode, created_at`

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const codeLength = 8

// generateCode returns a random 8-character join code.
func generateCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

// Create inserts a household with a freshly generated unique join code.
func (s *HouseholdStore) Create(name, rotationMode string) (*model.Household, error) {
	if rotationMode == "" {
		rotationMode = model.RotationWeekly
	}

	// Retry on the off chance the generated code collides.
	for attempt := 0; attempt < 5; attempt++ {
		code, err := generateCode()
		if err != nil {
			return nil, err
		}

		var exists int
		err = s.db.QueryRow(`SELECT COUNT(*) FROM households WHERE code = ?`, code).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("check code: %w", err)
		}
		if exists > 0 {
			continue
		}

		result, err := s.db.Exec(
			`INSERT INTO households (name, code, rotation_mode) VALUES (?, ?, ?)`,
			name, code, rotationMode,
		)
		if err != nil {
			return nil, fmt.Errorf("insert household: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		return s.GetByID(id)
	}
	return nil, fmt.Errorf("generate household code: too many collisions")
}

func (s *HouseholdStore) GetByID(id int64) (*model.Household, error) {
	row := s.db.QueryRow(`SELECT `+householdCols+` FROM households WHERE id = ?`, id)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}
	return h, nil
}

func (s *HouseholdStore) GetByCode(code string) (*model.Household, error) {
	row := s.db.QueryRow(`SELECT `+householdCols+` FROM households WHERE code = ?`, code)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household by code: %w", err)
	}
	return h, nil
}

func (s *HouseholdStore) List() ([]model.Household, error) {
	rows, err := s.db.Query(`SELECT ` + householdCols + ` FROM households ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list households: %w", err)
	}
	defer rows.Close()

	var households []model.Household
	for rows.Next() {
		h, err := scanHousehold(rows)
		if err != nil {
			return nil, fmt.Errorf("scan household: %w", err)
		}
		households = append(households, *h)
	}
	return households, rows.Err()
}

func (s *HouseholdStore) UpdateRotationMode(id int64, rotationMode string) (*model.Household, error) {
	_, err := s.db.Exec(`UPDATE households SET rotation_mode = ? WHERE id = ?`, rotationMode, id)
	if err != nil {
		return nil, fmt.Errorf("update rotation mode: %w", err)
	}
	return s.GetByID(id)
}

// Delete removes a household. Members, chores, preferences, notifications,
// rotation history, and reminder records cascade.
func (s *HouseholdStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM households WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete household: %w", err)
	}
	return nil
}
