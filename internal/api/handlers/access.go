package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/access"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/api/dto"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/api/middleware"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/api/validation"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/audit"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// AccessHandler serves the access decision endpoint and the public
// share-link redemption endpoint.
type AccessHandler struct {
	decider    *access.Decider
	shareLinks *access.ShareLinkService
	audit      *audit.Recorder
}

func NewAccessHandler(decider *access.Decider, shareLinks *access.ShareLinkService, recorder *audit.Recorder) *AccessHandler {
	return &AccessHandler{decider: decider, shareLinks: shareLinks, audit: recorder}
}

// Check answers "can I see this". The decision rides in the body with a 200
// either way: a denial is an answer, not a transport error.
func (h *AccessHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	role := middleware.GetUserRole(r.Context())
	resourceType := models.ResourceType(req.ResourceType)

	decision, err := h.decider.Decide(r.Context(), role, req.ShareToken, resourceType, req.ResourceID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Access check failed"})
		return
	}

	action := models.ActionAccessDenied
	if decision.HasAccess {
		action = models.ActionAccessGranted
	}

	var actorID *uuid.UUID
	if su := middleware.GetSessionUser(r.Context()); su != nil {
		id := su.User.ID
		actorID = &id
	}

	h.audit.Record(r.Context(), audit.Entry{
		ActorID:      actorID,
		Action:       action,
		ResourceType: &resourceType,
		ResourceID:   &req.ResourceID,
		IPAddress:    middleware.ClientIP(r),
		UserAgent:    r.UserAgent(),
		Metadata:     map[string]any{"method": decision.Method, "reason": decision.Reason},
	})

	writeJSON(w, http.StatusOK, decision)
}

// ShareView redeems a share link directly, for the shared-view page. A
// successful call consumes one use.
func (h *AccessHandler) ShareView(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if !validation.IsValidToken(token) {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Share link not found"})
		return
	}

	link, err := h.shareLinks.Validate(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, access.ErrLinkExpired):
			writeJSON(w, http.StatusGone, dto.ErrorResponse{Error: "This share link has expired"})
		case errors.Is(err, access.ErrUsesExhausted):
			writeJSON(w, http.StatusGone, dto.ErrorResponse{Error: "This share link has reached its usage limit"})
		case errors.Is(err, access.ErrInvalidLink):
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Share link not found"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to open share link"})
		}
		return
	}

	h.audit.Record(r.Context(), audit.Entry{
		Action:       models.ActionShareLinkUsed,
		ResourceType: &link.ResourceType,
		ResourceID:   link.ResourceID,
		IPAddress:    middleware.ClientIP(r),
		UserAgent:    r.UserAgent(),
		Metadata:     map[string]any{"link_id": link.ID.String(), "use_count": link.UseCount},
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"resource_type": link.ResourceType,
		"resource_id":   link.ResourceID,
		"expires_at":    link.ExpiresAt,
	})
}
