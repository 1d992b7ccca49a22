package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/api/dto"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/api/middleware"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/auth"
)

// loginSentMessage is deliberately vague: the response must not reveal
// whether an account exists for the address.
const loginSentMessage = "If an account exists for this email, a sign-in link has been sent."

type AuthHandler struct {
	authService   *auth.Service
	secureCookies bool
}

func NewAuthHandler(authService *auth.Service, secureCookies bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookies: secureCookies}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	err := h.authService.Register(r.Context(), auth.RegisterInput{
		Email:     req.Email,
		Name:      req.Name,
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	})

	if err != nil {
		var rl *auth.RateLimitedError
		switch {
		case errors.As(err, &rl):
			writeJSON(w, http.StatusTooManyRequests, dto.ErrorResponse{
				Error: fmt.Sprintf("Too many registration attempts. Try again in %d minutes.", rl.RetryInMinutes()),
			})
		case errors.Is(err, auth.ErrUserExists):
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "An account with this email already exists"})
		case errors.Is(err, auth.ErrPendingApproval):
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "A request for this email is already pending approval"})
		case errors.Is(err, auth.ErrRegistrationRejected):
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "This registration request cannot be accepted"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Registration failed"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, dto.SuccessResponse{
		Message: "Registration request received. You will be notified once it is reviewed.",
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	err := h.authService.RequestLogin(r.Context(), auth.LoginInput{
		Email:     req.Email,
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	})

	if err != nil {
		var rl *auth.RateLimitedError
		switch {
		case errors.As(err, &rl):
			writeJSON(w, http.StatusTooManyRequests, dto.ErrorResponse{
				Error: fmt.Sprintf("Too many sign-in attempts. Try again in %d minutes.", rl.RetryInMinutes()),
			})
		case errors.Is(err, auth.ErrTooManyMagicLinks):
			writeJSON(w, http.StatusTooManyRequests, dto.ErrorResponse{Error: "Too many sign-in links requested. Try again later."})
		case errors.Is(err, auth.ErrPendingApproval):
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Your registration is still pending approval"})
		case errors.Is(err, auth.ErrRegistrationRejected):
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "This account cannot sign in"})
		case errors.Is(err, auth.ErrEmailDelivery):
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to send the sign-in email. Try again."})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Sign-in request failed"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: loginSentMessage})
}

func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Token is required"})
		return
	}

	session, user, err := h.authService.VerifyLogin(r.Context(), token, middleware.ClientIP(r), r.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "This sign-in link has expired. Request a new one."})
		case errors.Is(err, auth.ErrTokenAlreadyUsed):
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "This sign-in link has already been used."})
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrUserNotFound):
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid sign-in link"})
		case errors.Is(err, auth.ErrNotApproved):
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "This account is not approved"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Sign-in failed"})
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(auth.SessionDuration.Seconds()),
	})

	writeJSON(w, http.StatusOK, dto.SessionResponse{
		User:      dto.NewUserDTO(*user),
		ExpiresAt: session.ExpiresAt,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		if err := h.authService.Logout(r.Context(), token, middleware.ClientIP(r), r.UserAgent()); err != nil {
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Logout failed"})
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Logged out"})
}

// Session reports the caller's current principal.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	su := middleware.GetSessionUser(r.Context())
	if su == nil {
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Not signed in"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SessionResponse{
		User:      dto.NewUserDTO(su.User),
		ExpiresAt: su.Session.ExpiresAt,
	})
}

func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if cookie, err := r.Cookie(auth.SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
