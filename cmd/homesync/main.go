package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rgarton/homesync/internal/backup"
	"github.com/rgarton/homesync/internal/database"
	"github.com/rgarton/homesync/internal/logging"
	"github.com/rgarton/homesync/internal/notify"
	"github.com/rgarton/homesync/internal/rotation"
	"github.com/rgarton/homesync/internal/scheduler"
	"github.com/rgarton/homesync/internal/server"
	"github.com/rgarton/homesync/internal/store"
)

func main() {
	godotenv.Load()

	logger := logging.Setup(os.Getenv("HOMESYNC_LOG_LEVEL"), os.Getenv("HOMESYNC_LOG_FORMAT"))

	port := os.Getenv("HOMESYNC_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("HOMESYNC_DB_PATH")
	if dbPath == "" {
		dbPath = "homesync.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	email := notify.NewEmailClient(os.Getenv("HOMESYNC_POSTMARK_TOKEN"), os.Getenv("HOMESYNC_EMAIL_FROM"))
	sms := notify.NewSMSClient(os.Getenv("HOMESYNC_TWILIO_SID"), os.Getenv("HOMESYNC_TWILIO_TOKEN"), os.Getenv("HOMESYNC_TWILIO_FROM"))
	notifier := notify.New(db, email, sms, logger)
	engine := rotation.NewEngine(db, notifier, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(db, engine, notifier, logger)
	sched.Start(ctx)
	defer sched.Stop()

	backupMgr := backup.NewManager(backup.Config{
		S3: backup.S3Config{
			Endpoint:  os.Getenv("HOMESYNC_S3_ENDPOINT"),
			Bucket:    os.Getenv("HOMESYNC_S3_BUCKET"),
			Region:    os.Getenv("HOMESYNC_S3_REGION"),
			AccessKey: os.Getenv("HOMESYNC_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("HOMESYNC_S3_SECRET_KEY"),
		},
		DBPath:        dbPath,
		Passphrase:    os.Getenv("HOMESYNC_BACKUP_PASSPHRASE"),
		ScheduleHour:  envInt("HOMESYNC_BACKUP_HOUR", 3),
		RetentionDays: envInt("HOMESYNC_BACKUP_RETENTION_DAYS", 30),
	}, db, logger)
	backupMgr.Start(ctx)
	defer backupMgr.Stop()
	if backupMgr.Enabled() {
		logger.Info("encrypted backups enabled")
	}

	srv := server.New(db, engine, notifier, logger)

	// Hourly housekeeping: expired rate-limit windows and reminder
	// ledger rows older than a week.
	go func() {
		reminders := store.NewReminderStore(db)
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
				if err := reminders.Cleanup(time.Now().AddDate(0, 0, -7)); err != nil {
					logger.Error("cleanup reminder ledger", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("homesync listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	fmt.Println("\nShutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
