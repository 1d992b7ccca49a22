package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/email"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/tasks"
	"github.com/Mahdisellami/Hrisa-MyWebsite/pkg/config"
	"github.com/Mahdisellami/Hrisa-MyWebsite/pkg/queue"
	"github.com/Mahdisellami/Hrisa-MyWebsite/pkg/util"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting portfolio access worker")

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Email delivery: real SMTP in production, log-only in development
	var sender email.Sender
	if cfg.Server.IsDevelopment() {
		sender = email.NewLogSender(logger)
	} else {
		sender = email.NewSMTPSender(cfg.Email)
	}

	// Create Asynq server
	srv := queue.NewServer(&cfg.Redis, 10)

	// Create task handler
	handler := tasks.NewHandler(db, sender, logger, cfg.Server.BaseURL, cfg.Cleanup.AuditRetention())

	// Register handlers
	mux := asynq.NewServeMux()
	handler.Register(mux)

	// Schedule the recurring expiry sweep
	nextSweep, err := util.NextCronTime(cfg.Cleanup.Schedule, time.Now())
	if err != nil {
		logger.Error("invalid cleanup schedule", "schedule", cfg.Cleanup.Schedule, "error", err)
		os.Exit(1)
	}

	scheduler := queue.NewScheduler(&cfg.Redis)
	if _, err := scheduler.Register(cfg.Cleanup.Schedule, tasks.NewCleanupExpiredTask()); err != nil {
		logger.Error("failed to register cleanup schedule", "error", err)
		os.Exit(1)
	}
	logger.Info("expiry sweep scheduled", "schedule", cfg.Cleanup.Schedule, "next_run", nextSweep)

	go func() {
		if err := scheduler.Run(); err != nil {
			logger.Error("scheduler error", "error", err)
		}
	}()

	// Handle shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down worker...")
		scheduler.Shutdown()
		srv.Shutdown()
		cancel()
	}()

	logger.Info("worker started, waiting for tasks...")

	// Start the server
	if err := srv.Run(mux); err != nil {
		logger.Error("worker error", "error", err)
	}

	<-ctx.Done()

	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("worker stopped")
}
