package store

import (
	"database/sql"
	"fmt"

	"github.com/rgarton/homesync/internal/model"
)

type NotificationStore struct {
	db *sql.DB
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

func scanNotification(scanner interface{ Scan(...any) error }) (*model.Notification, error) {
	var n model.Notification
	var choreID sql.NullInt64
	err := scanner.Scan(
		&n.ID, &n.MemberName, &n.ChoreTitle, &n.NotificationType,
		&n.Message, &n.SentAt, &n.HouseholdID, &choreID,
	)
	if err != nil {
		return nil, err
	}
	if choreID.Valid {
		n.ChoreID = &choreID.Int64
	}
	return &n, nil
}

const notificationCols = `id, member_name, chore_title, notification_type, message, sent_at, household_id, chore_id`

// Create appends a notification row. Rows are never updated or deleted
// except through household cascade-delete.
func (s *NotificationStore) Create(householdID int64, memberName, choreTitle, notifType, message string, choreID *int64) (*model.Notification, error) {
	var cID sql.NullInt64
	if choreID != nil {
		cID = sql.NullInt64{Int64: *choreID, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO notifications (member_name, chore_title, notification_type, message, household_id, chore_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		memberName, choreTitle, notifType, message, householdID, cID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+notificationCols+` FROM notifications WHERE id = ?`, id)
	return scanNotification(row)
}

func (s *NotificationStore) ListByHousehold(householdID int64) ([]model.Notification, error) {
	rows, err := s.db.Query(
		`SELECT `+notificationCols+` FROM notifications WHERE household_id = ? ORDER BY sent_at DESC, id DESC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()
	return collectNotifications(rows)
}

func (s *NotificationStore) ListRecent(householdID int64, limit int) ([]model.Notification, error) {
	rows, err := s.db.Query(
		`SELECT `+notificationCols+` FROM notifications WHERE household_id = ? ORDER BY sent_at DESC, id DESC LIMIT ?`,
		householdID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent notifications: %w", err)
	}
	defer rows.Close()
	return collectNotifications(rows)
}

func collectNotifications(rows *sql.Rows) ([]model.Notification, error) {
	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}
