package notify

import (
	"database/sql"
	"log/slog"

	"github.com/rgarton/homesync/internal/store"
)

// Notifier records in-app notifications and fans out to the optional
// email and SMS channels. Methods report success as a bool instead of
// an error: callers treat delivery as best-effort and never let a
// failed notification break the operation that triggered it.
type Notifier struct {
	notifications *store.NotificationStore
	email         *EmailClient
	sms           *SMSClient
	logger        *slog.Logger
}

func New(db *sql.DB, email *EmailClient, sms *SMSClient, logger *slog.Logger) *Notifier {
	return &Notifier{
		notifications: store.NewNotificationStore(db),
		email:         email,
		sms:           sms,
		logger:        logger.With("component", "notify"),
	}
}

// Notify appends an entry to the household's in-app notification log.
func (n *Notifier) Notify(householdID int64, memberName, choreTitle, notifType, message string, choreID *int64) bool {
	if _, err := n.notifications.Create(householdID, memberName, choreTitle, notifType, message, choreID); err != nil {
		n.logger.Error("record notification",
			"household_id", householdID,
			"member", memberName,
			"type", notifType,
			"error", err)
		return false
	}
	return true
}

// SendEmail delivers an email if the channel is configured.
func (n *Notifier) SendEmail(to, subject, body string) bool {
	if n.email == nil || !n.email.Configured() {
		return false
	}
	if err := n.email.Send(to, subject, body); err != nil {
		n.logger.Warn("send email", "to", to, "error", err)
		return false
	}
	return true
}

// SendSMS delivers a text message if the channel is configured.
func (n *Notifier) SendSMS(to, body string) bool {
	if n.sms == nil || !n.sms.Configured() {
		return false
	}
	if err := n.sms.Send(to, body); err != nil {
		n.logger.Warn("send sms", "to", to, "error", err)
		return false
	}
	return true
}
