package handler

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rgarton/homesync/internal/model"
	"github.com/rgarton/homesync/internal/notify"
	"github.com/rgarton/homesync/internal/store"
)

type NotificationHandler struct {
	households    *store.HouseholdStore
	members       *store.MemberStore
	prefs         *store.PreferenceStore
	notifications *store.NotificationStore
	notifier      *notify.Notifier
	logger        *slog.Logger
}

func NewNotificationHandler(db *sql.DB, notifier *notify.Notifier, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		households:    store.NewHouseholdStore(db),
		members:       store.NewMemberStore(db),
		prefs:         store.NewPreferenceStore(db),
		notifications: store.NewNotificationStore(db),
		notifier:      notifier,
		logger:        logger.With("component", "handler"),
	}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	household := householdByCode(w, r, h.households)
	if household == nil {
		return
	}

	notifications, err := h.notifications.ListByHousehold(household.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list notifications"})
		return
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

// SendCustom broadcasts a custom message to every household member,
// logging one notification each and emailing members who opted in.
func (h *NotificationHandler) SendCustom(w http.ResponseWriter, r *http.Request) {
	household := householdByCode(w, r, h.households)
	if household == nil {
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	members, err := h.members.ListByHousehold(household.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list members"})
		return
	}

	sent := 0
	for _, m := range members {
		h.notifier.Notify(household.ID, m.Name, "Custom Message", model.NotifTypeCustom, req.Message, nil)

		pref, err := h.prefs.Get(household.ID, m.Name)
		if err != nil {
			h.logger.Error("load preference", "household_id", household.ID, "member", m.Name, "error", err)
			continue
		}
		if pref != nil && pref.NotificationEnabled && pref.Email != "" {
			subject := fmt.Sprintf("HomeSync Message from %s", household.Name)
			if h.notifier.SendEmail(pref.Email, subject, req.Message) {
				sent++
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":       fmt.Sprintf("Notification sent to %d members", sent),
		"total_members": len(members),
	})
}
