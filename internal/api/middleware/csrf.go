package middleware

import (
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"sync"
	"time"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/auth"
	"github.com/Mahdisellami/Hrisa-MyWebsite/pkg/crypto"
)

const (
	csrfCookieName  = "csrf_token"
	csrfHeaderName  = "X-CSRF-Token"
	csrfFormField   = "csrf_token"
	csrfTokenExpiry = 24 * time.Hour
)

type csrfToken struct {
	token     string
	expiresAt time.Time
}

// CSRFStore keeps per-session CSRF tokens in memory. Losing them on restart
// only forces a page reload, so no persistence is needed.
type CSRFStore struct {
	tokens map[string]csrfToken
	mu     sync.RWMutex
}

func NewCSRFStore() *CSRFStore {
	store := &CSRFStore{tokens: make(map[string]csrfToken)}
	go store.cleanup()
	return store
}

func (s *CSRFStore) cleanup() {
	ticker := time.NewTicker(time.Hour)
	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for sessionID, t := range s.tokens {
			if now.After(t.expiresAt) {
				delete(s.tokens, sessionID)
			}
		}
		s.mu.Unlock()
	}
}

// GetOrCreate returns the session's current token, minting one if needed.
func (s *CSRFStore) GetOrCreate(sessionID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, exists := s.tokens[sessionID]; exists && time.Now().Before(t.expiresAt) {
		return t.token
	}

	raw, err := crypto.GenerateRandomBytes(crypto.TokenBytes)
	if err != nil {
		return ""
	}
	token := base64.URLEncoding.EncodeToString(raw)

	s.tokens[sessionID] = csrfToken{
		token:     token,
		expiresAt: time.Now().Add(csrfTokenExpiry),
	}

	return token
}

// Validate checks the provided token against the session's, in constant time.
func (s *CSRFStore) Validate(sessionID, providedToken string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.tokens[sessionID]
	if !exists || time.Now().After(t.expiresAt) {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(t.token), []byte(providedToken)) == 1
}

// CSRF protects cookie-authenticated mutations. Bearer-token requests are
// exempt: a cross-site page cannot set an Authorization header.
func CSRF(store *CSRFStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet ||
				r.Method == http.MethodHead ||
				r.Method == http.MethodOptions ||
				r.Method == http.MethodTrace {
				ensureCSRFCookie(w, r, store)
				next.ServeHTTP(w, r)
				return
			}

			if r.Header.Get("Authorization") != "" {
				next.ServeHTTP(w, r)
				return
			}

			sessionID := csrfSessionID(r)
			if sessionID == "" {
				http.Error(w, "Session required", http.StatusForbidden)
				return
			}

			token := r.Header.Get(csrfHeaderName)
			if token == "" {
				token = r.FormValue(csrfFormField)
			}
			if token == "" {
				http.Error(w, "CSRF token missing", http.StatusForbidden)
				return
			}

			if !store.Validate(sessionID, token) {
				http.Error(w, "Invalid CSRF token", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ensureCSRFCookie(w http.ResponseWriter, r *http.Request, store *CSRFStore) {
	sessionID := csrfSessionID(r)
	if sessionID == "" {
		return
	}

	if _, err := r.Cookie(csrfCookieName); err == nil {
		return
	}

	token := store.GetOrCreate(sessionID)
	if token == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: false, // the frontend reads this to echo it back
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(csrfTokenExpiry.Seconds()),
	})
}

// csrfSessionID derives a store key from the session cookie. A prefix of the
// opaque token is enough to distinguish sessions without keeping the full
// secret in another map.
func csrfSessionID(r *http.Request) string {
	cookie, err := r.Cookie(auth.SessionCookieName)
	if err != nil {
		return ""
	}
	if len(cookie.Value) > 16 {
		return cookie.Value[:16]
	}
	return cookie.Value
}
