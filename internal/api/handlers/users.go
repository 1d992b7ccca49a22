package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/api/dto"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/api/middleware"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/auth"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// UserHandler serves the admin user-management endpoints. Route guards
// enforce the ADMIN role before any of these run.
type UserHandler struct {
	authService *auth.Service
}

func NewUserHandler(authService *auth.Service) *UserHandler {
	return &UserHandler{authService: authService}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	status := models.UserStatus(r.URL.Query().Get("status"))
	switch status {
	case "", models.StatusPending, models.StatusApproved, models.StatusRejected:
	default:
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid status filter"})
		return
	}

	users, err := h.authService.ListUsers(r.Context(), status)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list users"})
		return
	}

	out := make([]dto.UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, dto.NewUserDTO(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	actorID := middleware.GetUserID(r.Context())
	user, err := h.authService.CreateUser(r.Context(), actorID, req.Email, req.Name, models.Role(req.Role))
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "User already exists"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create user"})
		return
	}

	writeJSON(w, http.StatusCreated, dto.NewUserDTO(*user))
}

func (h *UserHandler) Approve(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user ID"})
		return
	}

	actorID := middleware.GetUserID(r.Context())
	if err := h.authService.Approve(r.Context(), actorID, userID); err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
		case errors.Is(err, auth.ErrAlreadyApproved):
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "User is already approved"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to approve user"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "User approved"})
}

func (h *UserHandler) Reject(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user ID"})
		return
	}

	actorID := middleware.GetUserID(r.Context())
	if err := h.authService.Reject(r.Context(), actorID, userID); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to reject user"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "User rejected"})
}
