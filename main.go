package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/user-directory-be/internal/api"
	"github.com/isdelr/user-directory-be/internal/config"
	"github.com/isdelr/user-directory-be/internal/database"
	"github.com/isdelr/user-directory-be/internal/logger"
	"github.com/isdelr/user-directory-be/internal/monitoring"
	"github.com/isdelr/user-directory-be/internal/services"
	"github.com/isdelr/user-directory-be/internal/storage"
	"github.com/isdelr/user-directory-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Lazily create the upload area if it is absent
	uploads, err := storage.New(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize upload area")
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

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	eventService := services.NewEventService(db)
	userService := services.NewUserService(db, hub, eventService)

	// Set up and run the background stats snapshotter
	snapshotter, err := monitoring.NewSnapshotter(userService, uploads, hub, cfg.SnapshotSchedule)
	if err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.SnapshotSchedule).Msg("Invalid snapshot schedule")
	}
	go snapshotter.Run()

	// Set up router
	router := api.NewRouter(hub, userService, eventService, uploads, snapshotter, cfg.AllowedOrigins)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	snapshotter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
