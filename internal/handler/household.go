package handler

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rgarton/homesync/internal/model"
	"github.com/rgarton/homesync/internal/notify"
	"github.com/rgarton/homesync/internal/rotation"
	"github.com/rgarton/homesync/internal/store"
)

type HouseholdHandler struct {
	households    *store.HouseholdStore
	members       *store.MemberStore
	chores        *store.ChoreStore
	prefs         *store.PreferenceStore
	notifications *store.NotificationStore
	engine        *rotation.Engine
	notifier      *notify.Notifier
	logger        *slog.Logger
	now           func() time.Time
}

func NewHouseholdHandler(db *sql.DB, engine *rotation.Engine, notifier *notify.Notifier, logger *slog.Logger) *HouseholdHandler {
	return &HouseholdHandler{
		households:    store.NewHouseholdStore(db),
		members:       store.NewMemberStore(db),
		chores:        store.NewChoreStore(db),
		prefs:         store.NewPreferenceStore(db),
		notifications: store.NewNotificationStore(db),
		engine:        engine,
		notifier:      notifier,
		logger:        logger.With("component", "handler"),
		now:           time.Now,
	}
}

func (h *HouseholdHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string `json:"name"`
		RotationMode string `json:"rotation_mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "household name is required"})
		return
	}

	household, err := h.households.Create(req.Name, req.RotationMode)
	if err != nil {
		h.logger.Error("create household", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create household"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":   "Household created successfully",
		"household": household,
	})
}

func (h *HouseholdHandler) Get(w http.ResponseWriter, r *http.Request) {
	household := householdByCode(w, r, h.households)
	if household == nil {
		return
	}

	members, err := h.members.ListByHousehold(household.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list members"})
		return
	}
	chores, err := h.chores.ListByHousehold(household.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list chores"})
		return
	}
	if members == nil {
		members = []model.Member{}
	}
	if chores == nil {
		chores = []model.Chore{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"household": household,
		"members":   members,
		"chores":    chores,
	})
}

func (h *HouseholdHandler) Delete(w http.ResponseWriter, r *http.Request) {
	household := householdByCode(w, r, h.households)
	if household == nil {
		return
	}

	if err := h.households.Delete(household.ID); err != nil {
		h.logger.Error("delete household", "household_id", household.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete household"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Household deleted successfully"})
}

func (h *HouseholdHandler) Join(w http.ResponseWriter, r *http.Request) {
	household := householdByCode(w, r, h.households)
	if household == nil {
		return
	}

	var req struct {
		Name                string `json:"name"`
		IsAdmin             bool   `json:"is_admin"`
		Email               string `json:"email"`
		Phone               string `json:"phone"`
		NotificationEnabled *bool  `json:"notification_enabled"`
		ReminderTime        string `json:"reminder_time"`
		ReminderDaysBefore  int    `json:"reminder_days_before"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "member name is required"})
		return
	}

	// Rejoining with an existing name is a no-op, not an error.
	existing, err := h.members.GetByName(household.ID, req.Name)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check member"})
		return
	}
	if existing != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"message":   "Member already exists in household",
			"member":    existing,
			"household": household,
		})
		return
	}

	member, err := h.members.Create(household.ID, req.Name, req.IsAdmin)
	if err != nil {
		h.logger.Error("create member", "household_id", household.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to join household"})
		return
	}

	enabled := true
	if req.NotificationEnabled != nil {
		enabled = *req.NotificationEnabled
	}
	if req.ReminderDaysBefore == 0 {
		req.ReminderDaysBefore = 1
	}
	preference, err := h.prefs.Create(household.ID, req.Name, req.Email, req.Phone, enabled, req.ReminderTime, req.ReminderDaysBefore)
	if err != nil {
		h.logger.Error("create preference", "household_id", household.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to join household"})
		return
	}

	welcome := "Welcome to " + household.Name + "! You've successfully joined the household."
	h.notifier.Notify(household.ID, req.Name, "Welcome", model.NotifTypeWelcome, welcome, nil)

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":     "Successfully joined household",
		"member":      member,
		"household":   household,
		"preferences": preference,
	})
}

func (h *HouseholdHandler) Members(w http.ResponseWriter, r *http.Request) {
	household := householdByCode(w, r, h.households)
	if household == nil {
		return
	}

	members, err := h.members.ListByHousehold(household.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list members"})
		return
	}
	if members == nil {
		members = []model.Member{}
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *HouseholdHandler) Status(w http.ResponseWriter, r *http.Request) {
	household := householdByCode(w, r, h.households)
	if household == nil {
		return
	}

	total, completed, err := h.chores.Counts(household.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load stats"})
		return
	}
	memberCount, err := h.members.CountByHousehold(household.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load stats"})
		return
	}
	recent, err := h.notifications.ListRecent(household.ID, 5)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load notifications"})
		return
	}
	if recent == nil {
		recent = []model.Notification{}
	}

	var completionRate float64
	if total > 0 {
		completionRate = math.Round(float64(completed)/float64(total)*1000) / 10
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"household": household,
		"stats": map[string]any{
			"total_chores":     total,
			"completed_chores": completed,
			"completion_rate":  completionRate,
			"total_members":    memberCount,
			"needs_rotation":   h.engine.IsRotationDue(household, h.now()),
		},
		"recent_notifications": recent,
	})
}
