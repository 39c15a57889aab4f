// Package server wires the handlers into the HTTP router.
package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rgarton/homesync/internal/handler"
	"github.com/rgarton/homesync/internal/middleware"
	"github.com/rgarton/homesync/internal/notify"
	"github.com/rgarton/homesync/internal/rotation"
)

type Server struct {
	db            *sql.DB
	householdH    *handler.HouseholdHandler
	choreH        *handler.ChoreHandler
	notificationH *handler.NotificationHandler
	preferenceH   *handler.PreferenceHandler
	rotationH     *handler.RotationHandler
	rateLimiter   *middleware.RateLimiter
	logger        *slog.Logger
}

func New(db *sql.DB, engine *rotation.Engine, notifier *notify.Notifier, logger *slog.Logger) *Server {
	return &Server{
		db:            db,
		householdH:    handler.NewHouseholdHandler(db, engine, notifier, logger),
		choreH:        handler.NewChoreHandler(db, logger),
		notificationH: handler.NewNotificationHandler(db, notifier, logger),
		preferenceH:   handler.NewPreferenceHandler(db, logger),
		rotationH:     handler.NewRotationHandler(db, engine, logger),
		rateLimiter:   middleware.NewRateLimiter(),
		logger:        logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	mux.HandleFunc("POST /households", s.householdH.Create)
	mux.HandleFunc("GET /households/{code}", s.householdH.Get)
	mux.HandleFunc("DELETE /households/{code}", s.householdH.Delete)
	// Join is rate-limited so household codes cannot be brute-forced.
	mux.HandleFunc("POST /households/{code}/join", s.rateLimitedHandler(s.householdH.Join))
	mux.HandleFunc("GET /households/{code}/members", s.householdH.Members)
	mux.HandleFunc("GET /households/{code}/status", s.householdH.Status)

	mux.HandleFunc("GET /households/{code}/chores", s.choreH.List)
	mux.HandleFunc("POST /households/{code}/chores", s.choreH.Create)
	mux.HandleFunc("PUT /chores/{id}", s.choreH.Update)
	mux.HandleFunc("DELETE /chores/{id}", s.choreH.Delete)

	mux.HandleFunc("GET /households/{code}/notifications", s.notificationH.List)
	mux.HandleFunc("POST /households/{code}/notifications", s.notificationH.SendCustom)

	mux.HandleFunc("GET /households/{code}/members/{name}/preferences", s.preferenceH.Get)
	mux.HandleFunc("PUT /households/{code}/members/{name}/preferences", s.preferenceH.Update)

	mux.HandleFunc("POST /households/{code}/rotate", s.rotationH.Rotate)
	mux.HandleFunc("GET /households/{code}/rotation-history", s.rotationH.History)

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"message": "Chore Management API is running",
	})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
