// Package handler implements the JSON API.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rgarton/homesync/internal/model"
	"github.com/rgarton/homesync/internal/store"
)

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// householdByCode resolves the {code} path parameter. On failure it
// writes the error response and returns nil.
func householdByCode(w http.ResponseWriter, r *http.Request, hs *store.HouseholdStore) *model.Household {
	h, err := hs.GetByCode(r.PathValue("code"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load household"})
		return nil
	}
	if h == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "household not found"})
		return nil
	}
	return h
}
