package rotation

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rgarton/homesync/internal/model"
	"github.com/rgarton/homesync/internal/store"
)

var (
	ErrHouseholdNotFound = errors.New("household not found")
	ErrNothingToRotate   = errors.New("no chores or members to rotate")
)

// Minimum whole days between rotations per cadence. Cadences outside
// this map never come due automatically.
var intervalDays = map[string]int{
	model.RotationWeekly:   7,
	model.RotationBiweekly: 14,
	model.RotationMonthly:  30,
}

// Notifier delivers rotation announcements. Both methods report success
// without returning errors; delivery failures never fail a rotation.
type Notifier interface {
	Notify(householdID int64, memberName, choreTitle, notifType, message string, choreID *int64) bool
	SendEmail(to, subject, body string) bool
}

// Engine plans and commits chore rotations for a household.
type Engine struct {
	households *store.HouseholdStore
	members    *store.MemberStore
	chores     *store.ChoreStore
	history    *store.RotationHistoryStore
	prefs      *store.PreferenceStore
	notifier   Notifier
	logger     *slog.Logger
}

func NewEngine(db *sql.DB, notifier Notifier, logger *slog.Logger) *Engine {
	return &Engine{
		households: store.NewHouseholdStore(db),
		members:    store.NewMemberStore(db),
		chores:     store.NewChoreStore(db),
		history:    store.NewRotationHistoryStore(db),
		prefs:      store.NewPreferenceStore(db),
		notifier:   notifier,
		logger:     logger.With("component", "rotation"),
	}
}

// IsRotationDue reports whether the household's cadence interval has
// fully elapsed since its last rotation, measured in whole days. A
// household that has never rotated is immediately due. Storage errors
// report not-due so a flaky read cannot trigger a spurious rotation.
func (e *Engine) IsRotationDue(h *model.Household, now time.Time) bool {
	interval, ok := intervalDays[h.RotationMode]
	if !ok {
		return false
	}

	last, err := e.history.MostRecent(h.ID)
	if err != nil {
		e.logger.Error("check last rotation", "household_id", h.ID, "error", err)
		return false
	}
	if last == nil {
		return true
	}
	return int(now.Sub(last.RotationDate).Hours()/24) >= interval
}

// Rotate reassigns every assigned chore in the household along the
// member ring, resets their completion flags, records one history row
// per chore, and announces the new assignments. The reassignments and
// history rows commit as a single transaction before any announcement
// goes out. A household with no chores or no members cannot rotate;
// one whose chores are all unassigned rotates successfully with zero
// changes.
func (e *Engine) Rotate(householdID int64, rotationType string) ([]model.Reassignment, error) {
	h, err := e.households.GetByID(householdID)
	if err != nil {
		return nil, fmt.Errorf("load household: %w", err)
	}
	if h == nil {
		return nil, ErrHouseholdNotFound
	}

	ring, err := e.members.ListByHousehold(h.ID)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	chores, err := e.chores.ListByHousehold(h.ID)
	if err != nil {
		return nil, fmt.Errorf("load chores: %w", err)
	}
	if len(ring) == 0 || len(chores) == 0 {
		return nil, ErrNothingToRotate
	}

	changes := Plan(chores, ring)
	if len(changes) == 0 {
		return nil, nil
	}

	if err := e.history.ApplyRotation(h.ID, rotationType, changes); err != nil {
		return nil, fmt.Errorf("apply rotation: %w", err)
	}

	e.logger.Info("rotation complete",
		"household_id", h.ID,
		"rotation_type", rotationType,
		"chores_rotated", len(changes))

	e.announce(h, ring, chores, changes)
	return changes, nil
}

// announce tells each member about their new chores. Runs after the
// rotation has committed; failures here are logged and swallowed.
func (e *Engine) announce(h *model.Household, ring []model.Member, chores []model.Chore, changes []model.Reassignment) {
	if e.notifier == nil {
		return
	}

	titles := make(map[int64]string, len(chores))
	for _, c := range chores {
		titles[c.ID] = c.Title
	}

	assigned := make(map[string][]string)
	for _, ch := range changes {
		assigned[ch.New] = append(assigned[ch.New], titles[ch.ChoreID])
	}

	for _, m := range ring {
		choreList := assigned[m.Name]
		if len(choreList) == 0 {
			continue
		}
		joined := strings.Join(choreList, ", ")
		message := "Chore rotation complete! Your new chores: " + joined

		e.notifier.Notify(h.ID, m.Name, joined, model.NotifTypeRotation, message, nil)

		pref, err := e.prefs.Get(h.ID, m.Name)
		if err != nil {
			e.logger.Error("load preference", "household_id", h.ID, "member", m.Name, "error", err)
			continue
		}
		if pref != nil && pref.NotificationEnabled && pref.Email != "" {
			e.notifier.SendEmail(pref.Email, "HomeSync: New Chores Assigned", message)
		}
	}
}
