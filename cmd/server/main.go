package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/headcount/internal/api"
	"github.com/vytor/headcount/internal/config"
	"github.com/vytor/headcount/internal/db"
	"github.com/vytor/headcount/internal/deck"
	"github.com/vytor/headcount/internal/logger"
	"github.com/vytor/headcount/internal/repository/sqlite"
	"github.com/vytor/headcount/internal/services"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("Head Counting Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("cut_range=[%d,%d]", cfg.CutMin, cfg.CutMax)
	log.Debug("scratch_restore=%t", cfg.ScratchRestore)
	log.Debug("session_idle_timeout=%v", cfg.SessionIdleTimeout)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Initialize services
	userService := services.NewUserService(
		sqlite.NewUserRepository(database.DB),
		sqlite.NewResultRepository(database.DB),
	)
	sessionService := services.NewSessionService(
		userService,
		deck.CutRange{Min: cfg.CutMin, Max: cfg.CutMax},
		services.WithScratchRestorePolicy(cfg.ScratchRestore),
		services.WithIdleTimeout(cfg.SessionIdleTimeout),
	)

	srv := &api.Server{
		Users:    userService,
		Sessions: sessionService,
	}

	ctx, cancel := context.WithCancel(context.Background())
	sessionService.Start(ctx)

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping session service")
	cancel()
	sessionService.Stop()

	log.Info("===========================================")
	log.Info("Head Counting Server Stopped")
	log.Info("===========================================")
}
