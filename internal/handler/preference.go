package handler

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rgarton/homesync/internal/store"
)

type PreferenceHandler struct {
	households *store.HouseholdStore
	prefs      *store.PreferenceStore
	logger     *slog.Logger
}

func NewPreferenceHandler(db *sql.DB, logger *slog.Logger) *PreferenceHandler {
	return &PreferenceHandler{
		households: store.NewHouseholdStore(db),
		prefs:      store.NewPreferenceStore(db),
		logger:     logger.With("component", "handler"),
	}
}

func (h *PreferenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	household := householdByCode(w, r, h.households)
	if household == nil {
		return
	}

	pref, err := h.prefs.Get(household.ID, r.PathValue("name"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load preferences"})
		return
	}
	if pref == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "member preferences not found"})
		return
	}
	writeJSON(w, http.StatusOK, pref)
}

// Update applies a partial update: only fields present in the request
// body change.
func (h *PreferenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	household := householdByCode(w, r, h.households)
	if household == nil {
		return
	}

	memberName := r.PathValue("name")
	existing, err := h.prefs.Get(household.ID, memberName)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load preferences"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "member preferences not found"})
		return
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	email := existing.Email
	phone := existing.Phone
	enabled := existing.NotificationEnabled
	reminderTime := existing.ReminderTime
	reminderDaysBefore := existing.ReminderDaysBefore

	fields := []struct {
		key  string
		dest any
	}{
		{"email", &email},
		{"phone", &phone},
		{"notification_enabled", &enabled},
		{"reminder_time", &reminderTime},
		{"reminder_days_before", &reminderDaysBefore},
	}
	for _, f := range fields {
		if v, ok := raw[f.key]; ok {
			if err := json.Unmarshal(v, f.dest); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + f.key})
				return
			}
		}
	}

	pref, err := h.prefs.Update(household.ID, memberName, email, phone, enabled, reminderTime, reminderDaysBefore)
	if err != nil {
		h.logger.Error("update preference", "household_id", household.ID, "member", memberName, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update preferences"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "Preferences updated successfully",
		"preferences": pref,
	})
}
