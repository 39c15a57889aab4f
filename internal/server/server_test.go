package server

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/rgarton/homesync/internal/database"
	"github.com/rgarton/homesync/internal/notify"
	"github.com/rgarton/homesync/internal/rotation"
)

func setupServer(t *testing.T) (http.Handler, *sql.DB) {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier := notify.New(db, nil, nil, logger)
	engine := rotation.NewEngine(db, notifier, logger)

	return New(db, engine, notifier, logger).Router(), db
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") &&
		strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, decoded
}

// createHousehold posts a household and returns its join code.
func createHousehold(t *testing.T, h http.Handler, name string) string {
	t.Helper()

	rec, body := doJSON(t, h, "POST", "/households", map[string]any{"name": name})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create household status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	household, ok := body["household"].(map[string]any)
	if !ok {
		t.Fatalf("response missing household object: %v", body)
	}
	code, _ := household["code"].(string)
	if code == "" {
		t.Fatalf("household has no code: %v", household)
	}
	return code
}

func joinHousehold(t *testing.T, h http.Handler, code, name string) {
	t.Helper()

	rec, _ := doJSON(t, h, "POST", "/households/"+code+"/join", map[string]any{"name": name})
	if rec.Code != http.StatusCreated {
		t.Fatalf("join status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
}

func TestHealthEndpoint(t *testing.T) {
	h, _ := setupServer(t)

	rec, body := doJSON(t, h, "GET", "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %v, want healthy", body["status"])
	}
}

func TestCreateHouseholdRequiresName(t *testing.T) {
	h, _ := setupServer(t)

	rec, _ := doJSON(t, h, "POST", "/households", map[string]any{"name": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetHouseholdNotFound(t *testing.T) {
	h, _ := setupServer(t)

	rec, _ := doJSON(t, h, "GET", "/households/ZZZZZZ", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	h, _ := setupServer(t)
	code := createHousehold(t, h, "The Burrow")

	rec, body := doJSON(t, h, "POST", "/households/"+code+"/join", map[string]any{
		"name":  "Molly",
		"email": "molly@example.com",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("first join status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	prefs, ok := body["preferences"].(map[string]any)
	if !ok {
		t.Fatalf("join response missing preferences: %v", body)
	}
	if prefs["email"] != "molly@example.com" {
		t.Errorf("preference email = %v", prefs["email"])
	}

	// Same name again returns 200 without creating a second member.
	rec, body = doJSON(t, h, "POST", "/households/"+code+"/join", map[string]any{"name": "Molly"})
	if rec.Code != http.StatusOK {
		t.Fatalf("rejoin status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if body["message"] != "Member already exists in household" {
		t.Errorf("rejoin message = %v", body["message"])
	}

	rec, _ = doJSON(t, h, "GET", "/households/"+code+"/members", nil)
	var members []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &members); err != nil {
		t.Fatalf("decode members: %v", err)
	}
	if len(members) != 1 {
		t.Errorf("member count = %d, want 1", len(members))
	}
}

func TestJoinLogsWelcomeNotification(t *testing.T) {
	h, _ := setupServer(t)
	code := createHousehold(t, h, "Hillside")
	joinHousehold(t, h, code, "Ada")

	rec, _ := doJSON(t, h, "GET", "/households/"+code+"/notifications", nil)
	var notifications []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &notifications); err != nil {
		t.Fatalf("decode notifications: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("notification count = %d, want 1", len(notifications))
	}
	n := notifications[0]
	if n["notification_type"] != "welcome" {
		t.Errorf("type = %v, want welcome", n["notification_type"])
	}
	if msg, _ := n["message"].(string); !strings.Contains(msg, "Welcome to Hillside!") {
		t.Errorf("message = %q", msg)
	}
}

func TestChoreLifecycle(t *testing.T) {
	h, _ := setupServer(t)
	code := createHousehold(t, h, "Hillside")
	joinHousehold(t, h, code, "Ada")

	// Missing days is rejected.
	rec, _ := doJSON(t, h, "POST", "/households/"+code+"/chores", map[string]any{"title": "Dishes"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("create without days status = %d, want 400", rec.Code)
	}

	rec, body := doJSON(t, h, "POST", "/households/"+code+"/chores", map[string]any{
		"title":       "Dishes",
		"days":        []string{"Monday", "Thursday"},
		"assigned_to": "Ada",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create chore status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	chore := body["chore"].(map[string]any)
	choreID := int64(chore["id"].(float64))

	// Partial update: only completed changes.
	rec, body = doJSON(t, h, "PUT", "/chores/"+itoa(choreID), map[string]any{"completed": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	updated := body["chore"].(map[string]any)
	if updated["completed"] != true {
		t.Errorf("completed = %v, want true", updated["completed"])
	}
	if updated["title"] != "Dishes" {
		t.Errorf("title changed on partial update: %v", updated["title"])
	}
	if updated["assigned_to"] != "Ada" {
		t.Errorf("assigned_to changed on partial update: %v", updated["assigned_to"])
	}

	// Explicit null clears the assignment.
	rec, body = doJSON(t, h, "PUT", "/chores/"+itoa(choreID), map[string]any{"assigned_to": nil})
	if rec.Code != http.StatusOK {
		t.Fatalf("clear assignment status = %d: %s", rec.Code, rec.Body.String())
	}
	if got := body["chore"].(map[string]any)["assigned_to"]; got != nil {
		t.Errorf("assigned_to = %v, want null", got)
	}

	rec, _ = doJSON(t, h, "DELETE", "/chores/"+itoa(choreID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", rec.Code)
	}
	rec, _ = doJSON(t, h, "DELETE", "/chores/"+itoa(choreID), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete missing chore status = %d, want 404", rec.Code)
	}
}

func TestRotateWithNoChores(t *testing.T) {
	h, _ := setupServer(t)
	code := createHousehold(t, h, "Hillside")
	joinHousehold(t, h, code, "Ada")

	rec, body := doJSON(t, h, "POST", "/households/"+code+"/rotate", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
	if body["error"] != "no chores or members to rotate" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestRotateWithOnlyUnassignedChores(t *testing.T) {
	h, _ := setupServer(t)
	code := createHousehold(t, h, "Hillside")
	joinHousehold(t, h, code, "Ada")

	rec, _ := doJSON(t, h, "POST", "/households/"+code+"/chores", map[string]any{
		"title": "Backlog",
		"days":  []string{"Monday"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create chore status = %d", rec.Code)
	}

	// Nothing moves, but the rotation itself succeeds.
	rec, body := doJSON(t, h, "POST", "/households/"+code+"/rotate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if body["message"] != "Chores rotated successfully" {
		t.Errorf("message = %v", body["message"])
	}
	if body["chores_rotated"] != float64(0) {
		t.Errorf("chores_rotated = %v, want 0", body["chores_rotated"])
	}
}

func TestRotateReassignsAndRecordsHistory(t *testing.T) {
	h, _ := setupServer(t)
	code := createHousehold(t, h, "Hillside")
	joinHousehold(t, h, code, "Ada")
	joinHousehold(t, h, code, "Ben")

	rec, _ := doJSON(t, h, "POST", "/households/"+code+"/chores", map[string]any{
		"title":       "Dishes",
		"days":        []string{"Monday"},
		"assigned_to": "Ada",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create chore status = %d", rec.Code)
	}

	rec, body := doJSON(t, h, "POST", "/households/"+code+"/rotate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("rotate status = %d: %s", rec.Code, rec.Body.String())
	}
	if body["chores_rotated"] != float64(1) {
		t.Errorf("chores_rotated = %v, want 1", body["chores_rotated"])
	}

	rec, _ = doJSON(t, h, "GET", "/households/"+code+"/rotation-history", nil)
	var history []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history count = %d, want 1", len(history))
	}
	if history[0]["new_assigned_to"] != "Ben" {
		t.Errorf("new_assigned_to = %v, want Ben", history[0]["new_assigned_to"])
	}
}

func TestCustomNotificationBroadcast(t *testing.T) {
	h, _ := setupServer(t)
	code := createHousehold(t, h, "Hillside")
	joinHousehold(t, h, code, "Ada")
	joinHousehold(t, h, code, "Ben")

	rec, _ := doJSON(t, h, "POST", "/households/"+code+"/notifications", map[string]any{"message": ""})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty message status = %d, want 400", rec.Code)
	}

	rec, body := doJSON(t, h, "POST", "/households/"+code+"/notifications", map[string]any{
		"message": "Family meeting at 6pm",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("broadcast status = %d: %s", rec.Code, rec.Body.String())
	}
	if body["total_members"] != float64(2) {
		t.Errorf("total_members = %v, want 2", body["total_members"])
	}

	// Each member got an in-app entry on top of the two welcomes.
	rec, _ = doJSON(t, h, "GET", "/households/"+code+"/notifications", nil)
	var notifications []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &notifications); err != nil {
		t.Fatalf("decode notifications: %v", err)
	}
	custom := 0
	for _, n := range notifications {
		if n["notification_type"] == "custom" {
			custom++
		}
	}
	if custom != 2 {
		t.Errorf("custom notification count = %d, want 2", custom)
	}
}

func TestPreferencesPartialUpdate(t *testing.T) {
	h, _ := setupServer(t)
	code := createHousehold(t, h, "Hillside")
	joinHousehold(t, h, code, "Ada")

	rec, _ := doJSON(t, h, "GET", "/households/"+code+"/members/Nobody/preferences", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown member status = %d, want 404", rec.Code)
	}

	rec, body := doJSON(t, h, "PUT", "/households/"+code+"/members/Ada/preferences", map[string]any{
		"reminder_time": "18:30",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}
	prefs := body["preferences"].(map[string]any)
	if prefs["reminder_time"] != "18:30" {
		t.Errorf("reminder_time = %v, want 18:30", prefs["reminder_time"])
	}
	// Untouched fields keep their defaults.
	if prefs["notification_enabled"] != true {
		t.Errorf("notification_enabled = %v, want true", prefs["notification_enabled"])
	}
}

func TestStatusPayload(t *testing.T) {
	h, _ := setupServer(t)
	code := createHousehold(t, h, "Hillside")
	joinHousehold(t, h, code, "Ada")
	joinHousehold(t, h, code, "Ben")

	for _, title := range []string{"Dishes", "Trash", "Vacuum"} {
		rec, _ := doJSON(t, h, "POST", "/households/"+code+"/chores", map[string]any{
			"title":       title,
			"days":        []string{"Monday"},
			"assigned_to": "Ada",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create chore status = %d", rec.Code)
		}
	}

	// Complete one of three chores.
	rec, _ := doJSON(t, h, "GET", "/households/"+code+"/chores", nil)
	var chores []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &chores); err != nil {
		t.Fatalf("decode chores: %v", err)
	}
	firstID := int64(chores[0]["id"].(float64))
	rec, _ = doJSON(t, h, "PUT", "/chores/"+itoa(firstID), map[string]any{"completed": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("complete chore status = %d", rec.Code)
	}

	rec, body := doJSON(t, h, "GET", "/households/"+code+"/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status endpoint = %d: %s", rec.Code, rec.Body.String())
	}
	stats := body["stats"].(map[string]any)
	if stats["total_chores"] != float64(3) {
		t.Errorf("total_chores = %v, want 3", stats["total_chores"])
	}
	if stats["completed_chores"] != float64(1) {
		t.Errorf("completed_chores = %v, want 1", stats["completed_chores"])
	}
	if stats["completion_rate"] != 33.3 {
		t.Errorf("completion_rate = %v, want 33.3", stats["completion_rate"])
	}
	if stats["total_members"] != float64(2) {
		t.Errorf("total_members = %v, want 2", stats["total_members"])
	}
	// Never rotated, so the weekly default is immediately due.
	if stats["needs_rotation"] != true {
		t.Errorf("needs_rotation = %v, want true", stats["needs_rotation"])
	}
	if _, ok := body["recent_notifications"].([]any); !ok {
		t.Errorf("recent_notifications missing: %v", body["recent_notifications"])
	}
}

func TestDeleteHouseholdCascades(t *testing.T) {
	h, db := setupServer(t)
	code := createHousehold(t, h, "Hillside")
	joinHousehold(t, h, code, "Ada")

	rec, _ := doJSON(t, h, "DELETE", "/households/"+code, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d: %s", rec.Code, rec.Body.String())
	}

	rec, _ = doJSON(t, h, "GET", "/households/"+code, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status after delete = %d, want 404", rec.Code)
	}

	var members int
	if err := db.QueryRow("SELECT COUNT(*) FROM members").Scan(&members); err != nil {
		t.Fatalf("count members: %v", err)
	}
	if members != 0 {
		t.Errorf("member rows after delete = %d, want 0", members)
	}
}

func TestJoinIsRateLimited(t *testing.T) {
	h, _ := setupServer(t)
	code := createHousehold(t, h, "Hillside")

	var last int
	for i := 0; i < 11; i++ {
		rec, _ := doJSON(t, h, "POST", "/households/"+code+"/join", map[string]any{"name": "x"})
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("11th join status = %d, want 429", last)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
