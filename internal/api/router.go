package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/access"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/api/handlers"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/api/middleware"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/audit"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/auth"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database/models"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *slog.Logger
	AuthService    *auth.Service
	Permissions    *access.PermissionService
	ShareLinks     *access.ShareLinkService
	Decider        *access.Decider
	Audit          *audit.Recorder
	Limiter        *auth.RateLimiter
	APILimit       auth.RateLimitConfig // zero value falls back to auth.APIRateLimit
	AllowedOrigins []string             // CORS allowed origins
	SecureCookies  bool
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	apiLimit := cfg.APILimit
	if apiLimit.MaxAttempts == 0 {
		apiLimit = auth.APIRateLimit
	}
	r.Use(middleware.RateLimit(cfg.Limiter, apiLimit))

	// CORS - restrict to configured origins, or allow localhost in development
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Session resolution runs on every route; anonymous passes through.
	r.Use(middleware.Session(cfg.AuthService.Sessions()))

	csrfStore := middleware.NewCSRFStore()

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.SecureCookies)
	userHandler := handlers.NewUserHandler(cfg.AuthService)
	permissionHandler := handlers.NewPermissionHandler(cfg.Permissions, cfg.Audit)
	shareLinkHandler := handlers.NewShareLinkHandler(cfg.ShareLinks, cfg.Audit)
	accessHandler := handlers.NewAccessHandler(cfg.Decider, cfg.ShareLinks, cfg.Audit)
	auditHandler := handlers.NewAuditHandler(cfg.DB, cfg.Audit)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	r.Route("/api", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Get("/auth/verify", authHandler.Verify)
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/session", authHandler.Session)

		// Access decision; works for anonymous, signed-in and share-token callers
		r.Post("/protected/check", accessHandler.Check)

		// Share-link redemption
		r.Get("/share/{token}", accessHandler.ShareView)

		// Admin endpoints
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin))
			r.Use(middleware.CSRF(csrfStore))

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.List)
				r.Post("/", userHandler.Create)
				r.Post("/{id}/approve", userHandler.Approve)
				r.Post("/{id}/reject", userHandler.Reject)
			})

			r.Route("/permissions", func(r chi.Router) {
				r.Get("/", permissionHandler.List)
				r.Post("/", permissionHandler.Upsert)
				r.Delete("/", permissionHandler.Delete)
			})

			r.Route("/share-links", func(r chi.Router) {
				r.Get("/", shareLinkHandler.List)
				r.Post("/", shareLinkHandler.Create)
				r.Delete("/{id}", shareLinkHandler.Revoke)
			})

			r.Get("/audit", auditHandler.List)
			r.Get("/stats", auditHandler.Stats)
		})
	})

	return &Router{r}
}
