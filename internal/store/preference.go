package store

import (
	"database/sql"
	"fmt"

	"github.com/rgarton/homesync/internal/model"
)

type PreferenceStore struct {
	db *sql.DB
}

func NewPreferenceStore(db *sql.DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

func scanPreference(scanner interface{ Scan(...any) error }) (*model.MemberPreference, error) {
	var p model.MemberPreference
	var enabled int
	err := scanner.Scan(
		&p.ID, &p.MemberName, &p.HouseholdID, &p.Email, &p.Phone,
		&enabled, &p.ReminderTime, &p.ReminderDaysBefore,
	)
	if err != nil {
		return nil, err
	}
	p.NotificationEnabled = enabled != 0
	return &p, nil
}

const preferenceCols = `id, member_name, household_id, email, phone, notification_enabled, reminder_time, reminder_days_before`

func (s *PreferenceStore) Create(householdID int64, memberName, email, phone string, enabled bool, reminderTime string, reminderDaysBefore int) (*model.MemberPreference, error) {
	var enabledInt int
	if enabled {
		enabledInt = 1
	}
	if reminderTime == "" {
		reminderTime = "09:00"
	}

	result, err := s.db.Exec(
		`INSERT INTO member_preferences (member_name, household_id, email, phone, notification_enabled, reminder_time, reminder_days_before)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		memberName, householdID, email, phone, enabledInt, reminderTime, reminderDaysBefore,
	)
	if err != nil {
		return nil, fmt.Errorf("insert preference: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+preferenceCols+` FROM member_preferences WHERE id = ?`, id)
	return scanPreference(row)
}

func (s *PreferenceStore) Get(householdID int64, memberName string) (*model.MemberPreference, error) {
	row := s.db.QueryRow(
		`SELECT `+preferenceCols+` FROM member_preferences WHERE household_id = ? AND member_name = ?`,
		householdID, memberName,
	)
	p, err := scanPreference(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preference: %w", err)
	}
	return p, nil
}

func (s *PreferenceStore) Update(householdID int64, memberName, email, phone string, enabled bool, reminderTime string, reminderDaysBefore int) (*model.MemberPreference, error) {
	var enabledInt int
	if enabled {
		enabledInt = 1
	}

	_, err := s.db.Exec(
		`UPDATE member_preferences
		 SET email = ?, phone = ?, notification_enabled = ?, reminder_time = ?, reminder_days_before = ?
		 WHERE household_id = ? AND member_name = ?`,
		email, phone, enabledInt, reminderTime, reminderDaysBefore, householdID, memberName,
	)
	if err != nil {
		return nil, fmt.Errorf("update preference: %w", err)
	}
	return s.Get(householdID, memberName)
}
