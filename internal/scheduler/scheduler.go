// Package scheduler runs the hourly background sweep: due rotations
// first, then day-of chore reminders.
package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rgarton/homesync/internal/model"
	"github.com/rgarton/homesync/internal/rotation"
	"github.com/rgarton/homesync/internal/schedule"
	"github.com/rgarton/homesync/internal/store"
)

// Notifier delivers reminder notifications across all channels.
type Notifier interface {
	Notify(householdID int64, memberName, choreTitle, notifType, message string, choreID *int64) bool
	SendEmail(to, subject, body string) bool
	SendSMS(to, body string) bool
}

type Scheduler struct {
	mu         sync.RWMutex
	engine     *rotation.Engine
	households *store.HouseholdStore
	chores     *store.ChoreStore
	prefs      *store.PreferenceStore
	reminders  *store.ReminderStore
	notifier   Notifier
	logger     *slog.Logger
	interval   time.Duration
	now        func() time.Time
	cancel     context.CancelFunc
	done       chan struct{}
}

func New(db *sql.DB, engine *rotation.Engine, notifier Notifier, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		engine:     engine,
		households: store.NewHouseholdStore(db),
		chores:     store.NewChoreStore(db),
		prefs:      store.NewPreferenceStore(db),
		reminders:  store.NewReminderStore(db),
		notifier:   notifier,
		logger:     logger.With("component", "scheduler"),
		interval:   time.Hour,
		now:        time.Now,
	}
}

// Start begins the sweep loop. The first sweep runs immediately so a
// restart never delays overdue rotations by up to an hour.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.Sweep(s.now())
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep(s.now())
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Sweep processes every household once. A failure in one household is
// logged and does not stop the others.
func (s *Scheduler) Sweep(now time.Time) {
	households, err := s.households.List()
	if err != nil {
		s.logger.Error("list households", "error", err)
		return
	}

	for _, h := range households {
		s.processHousehold(h, now)
	}
}

func (s *Scheduler) processHousehold(h model.Household, now time.Time) {
	if s.engine.IsRotationDue(&h, now) {
		_, err := s.engine.Rotate(h.ID, h.RotationMode)
		if err != nil && !errors.Is(err, rotation.ErrNothingToRotate) {
			s.logger.Error("rotate household", "household_id", h.ID, "error", err)
		}
	}

	s.sendReminders(h, now)
}

func (s *Scheduler) sendReminders(h model.Household, now time.Time) {
	chores, err := s.chores.ListIncomplete(h.ID)
	if err != nil {
		s.logger.Error("list chores", "household_id", h.ID, "error", err)
		return
	}

	for _, c := range chores {
		if c.AssignedTo == nil || *c.AssignedTo == "" {
			continue
		}
		if !schedule.IsDueOn(c.Days, now) {
			continue
		}

		dateKey := schedule.DateKey(now)
		sent, err := s.reminders.WasSent(h.ID, c.ID, dateKey)
		if err != nil {
			s.logger.Error("check sent reminder", "chore_id", c.ID, "error", err)
			continue
		}
		if sent {
			continue
		}

		pref, err := s.prefs.Get(h.ID, *c.AssignedTo)
		if err != nil {
			s.logger.Error("load preference", "household_id", h.ID, "member", *c.AssignedTo, "error", err)
			continue
		}
		// No preference record means the assignee never joined (or
		// left); there is nobody to remind.
		if pref == nil || !pref.NotificationEnabled {
			continue
		}
		if !schedule.ReminderElapsed(pref.ReminderTime, now) {
			continue
		}

		message := fmt.Sprintf("Reminder: %s is due today!", c.Title)
		choreID := c.ID
		s.notifier.Notify(h.ID, *c.AssignedTo, c.Title, model.NotifTypeReminder, message, &choreID)
		if pref.Email != "" {
			s.notifier.SendEmail(pref.Email, fmt.Sprintf("HomeSync Reminder: %s", c.Title), message)
		}
		if pref.Phone != "" {
			s.notifier.SendSMS(pref.Phone, "HomeSync: "+message)
		}

		if err := s.reminders.RecordSent(h.ID, c.ID, dateKey); err != nil {
			s.logger.Error("record sent reminder", "chore_id", c.ID, "error", err)
		}
	}
}
