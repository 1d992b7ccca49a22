package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/access"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/auth"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database/models"
	"github.com/google/uuid"
)

type contextKey string

const sessionUserKey contextKey = "session_user"

// Session resolves the caller's session from the cookie or the Authorization
// header and attaches the principal to the context. Anonymous requests pass
// through with no principal; rejecting them is the job of RequireAuth or
// RequireRole further down the chain.
func Session(sessions *auth.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			su, err := sessions.GetByToken(r.Context(), token)
			if err != nil {
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			if su == nil {
				// Expired or revoked token: treat as anonymous rather
				// than failing, so public pages still render.
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionUserKey, su)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) string {
	// 1. Authorization header (API clients)
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}

	// 2. Session cookie (browser)
	if cookie, err := r.Cookie(auth.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return ""
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetSessionUser(r.Context()) == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects callers below the minimum role: 401 when anonymous,
// 403 when signed in but under-privileged.
func RequireRole(minRole models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			su := GetSessionUser(r.Context())
			if su == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if !access.HasPermission(su.User.Role, minRole) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSessionUser returns the resolved principal, or nil for anonymous.
func GetSessionUser(ctx context.Context) *auth.SessionUser {
	su, _ := ctx.Value(sessionUserKey).(*auth.SessionUser)
	return su
}

// WithSessionUser attaches a principal; tests use it to skip the middleware.
func WithSessionUser(ctx context.Context, su *auth.SessionUser) context.Context {
	return context.WithValue(ctx, sessionUserKey, su)
}

func GetUserID(ctx context.Context) uuid.UUID {
	if su := GetSessionUser(ctx); su != nil {
		return su.User.ID
	}
	return uuid.Nil
}

// GetUserRole returns the caller's role, or nil for anonymous callers.
func GetUserRole(ctx context.Context) *models.Role {
	if su := GetSessionUser(ctx); su != nil {
		role := su.User.Role
		return &role
	}
	return nil
}
