package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/student-records/internal/api"
	"github.com/isdelr/student-records/internal/auth"
	"github.com/isdelr/student-records/internal/config"
	"github.com/isdelr/student-records/internal/database"
	"github.com/isdelr/student-records/internal/logger"
	"github.com/isdelr/student-records/internal/monitoring"
	"github.com/isdelr/student-records/internal/services"
	"github.com/isdelr/student-records/internal/storage"
	"github.com/isdelr/student-records/internal/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info")
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel)

	// Ensure the snapshot and backup directories exist
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatal().Err(err).Str("path", cfg.DataDir).Msg("Failed to create data directory")
	}
	if err := os.MkdirAll(cfg.BackupPath, 0755); err != nil {
		log.Fatal().Err(err).Str("path", cfg.BackupPath).Msg("Failed to create backup directory")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Snapshot stores
	students := storage.NewStudentStore(cfg.StudentsFile())
	users := storage.NewUserStore(cfg.UsersFile())
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	eventService := services.NewEventService(db)
	userService := services.NewUserService(users, services.BcryptHasher{}, tokens, eventService)
	studentService := services.NewStudentService(students, eventService, hub)
	backupService := services.NewBackupService(db, eventService, cfg.BackupPath, students, users)

	// Set up and run the background scheduler
	var scheduler *monitoring.Scheduler
	if cfg.BackupSchedule != "" {
		scheduler, err = monitoring.NewScheduler(cfg.BackupSchedule, backupService)
		if err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.BackupSchedule).Msg("Failed to set up backup scheduler")
		}
		go scheduler.Run()
	}

	// Set up router
	router := api.NewRouter(api.Options{
		CORSOrigins:   cfg.CORSOrigins,
		SecureCookies: cfg.Production,
	}, tokens, hub, userService, studentService, eventService, backupService)

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("data_dir", cfg.DataDir).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	if scheduler != nil {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	hub.Stop()

	log.Info().Msg("Server exiting")
}
