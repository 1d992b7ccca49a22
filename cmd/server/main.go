package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/access"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/api"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/audit"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/auth"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/email"
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

	logger.Info("starting portfolio access server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
	)

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.AutoMigrate(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("failed to connect to Redis, background notifications disabled", "error", err)
		redisClient = nil
	}

	// Asynq client for enqueuing notification tasks
	var asynqClient *asynq.Client
	if redisClient != nil {
		asynqClient = queue.NewClient(&cfg.Redis)
	}

	// Email delivery: real SMTP in production, log-only in development
	var sender email.Sender
	if cfg.Server.IsDevelopment() {
		sender = email.NewLogSender(logger)
	} else {
		sender = email.NewSMTPSender(cfg.Email)
	}

	// Initialize services
	limiter := auth.NewRateLimiter(nil)
	defer limiter.Stop()

	recorder := audit.NewRecorder(db, logger)
	magicLinks := auth.NewMagicLinkService(db, nil)
	sessions := auth.NewSessionService(db, nil)

	authService := auth.NewService(auth.ServiceConfig{
		DB:         db,
		Limiter:    limiter,
		MagicLinks: magicLinks,
		Sessions:   sessions,
		Audit:      recorder,
		Sender:     sender,
		Queue:      asynqClient,
		Logger:     logger,
		BaseURL:    cfg.Server.BaseURL,
		AdminEmail: cfg.Email.AdminEmail,
	})

	permissions := access.NewPermissionService(db, nil)
	shareLinks := access.NewShareLinkService(db, nil)
	decider := access.NewDecider(permissions, shareLinks)

	// Create router
	router := api.NewRouter(api.RouterConfig{
		DB:          db,
		Redis:       redisClient,
		Logger:      logger,
		AuthService: authService,
		Permissions: permissions,
		ShareLinks:  shareLinks,
		Decider:     decider,
		Audit:       recorder,
		Limiter:     limiter,
		APILimit: auth.RateLimitConfig{
			MaxAttempts: cfg.RateLimit.Requests,
			Window:      time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
		},
		AllowedOrigins: cfg.Server.AllowedOrigins,
		SecureCookies:  !cfg.Server.IsDevelopment(),
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if asynqClient != nil {
		asynqClient.Close()
	}
	if redisClient != nil {
		redisClient.Close()
	}

	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("server stopped")
}
