package handler

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rgarton/homesync/internal/model"
	"github.com/rgarton/homesync/internal/store"
)

type ChoreHandler struct {
	households *store.HouseholdStore
	chores     *store.ChoreStore
	logger     *slog.Logger
}

func NewChoreHandler(db *sql.DB, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{
		households: store.NewHouseholdStore(db),
		chores:     store.NewChoreStore(db),
		logger:     logger.With("component", "handler"),
	}
}

func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	household := householdByCode(w, r, h.households)
	if household == nil {
		return
	}

	chores, err := h.chores.ListByHousehold(household.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list chores"})
		return
	}
	if chores == nil {
		chores = []model.Chore{}
	}
	writeJSON(w, http.StatusOK, chores)
}

func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	household := householdByCode(w, r, h.households)
	if household == nil {
		return
	}

	var req struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Days        []string `json:"days"`
		AssignedTo  *string  `json:"assigned_to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.Days == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title and days are required"})
		return
	}

	chore, err := h.chores.Create(household.ID, req.Title, req.Description, req.Days, req.AssignedTo)
	if err != nil {
		h.logger.Error("create chore", "household_id", household.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create chore"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Chore created successfully",
		"chore":   chore,
	})
}

// Update applies a partial update: only fields present in the request
// body change, and an explicit null assigned_to clears the assignment.
func (h *ChoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.chores.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get chore"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "chore not found"})
		return
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	title := existing.Title
	description := existing.Description
	days := existing.Days
	assignedTo := existing.AssignedTo
	completed := existing.Completed

	if v, ok := raw["title"]; ok {
		if err := json.Unmarshal(v, &title); err != nil || strings.TrimSpace(title) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid title"})
			return
		}
	}
	if v, ok := raw["description"]; ok {
		if err := json.Unmarshal(v, &description); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid description"})
			return
		}
	}
	if v, ok := raw["days"]; ok {
		if err := json.Unmarshal(v, &days); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid days"})
			return
		}
	}
	if v, ok := raw["assigned_to"]; ok {
		assignedTo = nil
		if err := json.Unmarshal(v, &assignedTo); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid assigned_to"})
			return
		}
	}
	if v, ok := raw["completed"]; ok {
		if err := json.Unmarshal(v, &completed); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid completed"})
			return
		}
	}

	chore, err := h.chores.Update(id, title, description, days, assignedTo, completed)
	if err != nil {
		h.logger.Error("update chore", "chore_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update chore"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Chore updated successfully",
		"chore":   chore,
	})
}

func (h *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.chores.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get chore"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "chore not found"})
		return
	}

	if err := h.chores.Delete(id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete chore"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Chore deleted successfully"})
}
