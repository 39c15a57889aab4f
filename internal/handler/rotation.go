package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rgarton/homesync/internal/model"
	"github.com/rgarton/homesync/internal/rotation"
	"github.com/rgarton/homesync/internal/store"
)

type RotationHandler struct {
	households *store.HouseholdStore
	history    *store.RotationHistoryStore
	engine     *rotation.Engine
	logger     *slog.Logger
}

func NewRotationHandler(db *sql.DB, engine *rotation.Engine, logger *slog.Logger) *RotationHandler {
	return &RotationHandler{
		households: store.NewHouseholdStore(db),
		history:    store.NewRotationHistoryStore(db),
		engine:     engine,
		logger:     logger.With("component", "handler"),
	}
}

// Rotate triggers a manual rotation using the household's cadence as
// the recorded rotation type.
func (h *RotationHandler) Rotate(w http.ResponseWriter, r *http.Request) {
	household := householdByCode(w, r, h.households)
	if household == nil {
		return
	}

	changes, err := h.engine.Rotate(household.ID, household.RotationMode)
	if errors.Is(err, rotation.ErrNothingToRotate) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no chores or members to rotate"})
		return
	}
	if err != nil {
		h.logger.Error("manual rotation", "household_id", household.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to rotate chores"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":        "Chores rotated successfully",
		"chores_rotated": len(changes),
	})
}

func (h *RotationHandler) History(w http.ResponseWriter, r *http.Request) {
	household := householdByCode(w, r, h.households)
	if household == nil {
		return
	}

	history, err := h.history.ListByHousehold(household.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list rotation history"})
		return
	}
	if history == nil {
		history = []model.RotationHistory{}
	}
	writeJSON(w, http.StatusOK, history)
}
