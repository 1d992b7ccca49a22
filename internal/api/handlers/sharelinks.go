package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/access"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/api/dto"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/api/middleware"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/audit"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ShareLinkHandler struct {
	shareLinks *access.ShareLinkService
	audit      *audit.Recorder
}

func NewShareLinkHandler(shareLinks *access.ShareLinkService, recorder *audit.Recorder) *ShareLinkHandler {
	return &ShareLinkHandler{shareLinks: shareLinks, audit: recorder}
}

func (h *ShareLinkHandler) List(w http.ResponseWriter, r *http.Request) {
	links, err := h.shareLinks.ListActive(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list share links"})
		return
	}
	writeJSON(w, http.StatusOK, links)
}

func (h *ShareLinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateShareLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	actorID := middleware.GetUserID(r.Context())
	resourceType := models.ResourceType(req.ResourceType)

	link, err := h.shareLinks.Issue(r.Context(), actorID, resourceType, req.ResourceID, req.ExpiresInHours, req.MaxUses)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create share link"})
		return
	}

	h.audit.Record(r.Context(), audit.Entry{
		ActorID:      &actorID,
		Action:       models.ActionShareLinkCreated,
		ResourceType: &link.ResourceType,
		ResourceID:   link.ResourceID,
		IPAddress:    middleware.ClientIP(r),
		UserAgent:    r.UserAgent(),
		Metadata:     map[string]any{"link_id": link.ID.String(), "expires_at": link.ExpiresAt},
	})

	writeJSON(w, http.StatusCreated, link)
}

func (h *ShareLinkHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	linkID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid share link ID"})
		return
	}

	removed, err := h.shareLinks.Revoke(r.Context(), linkID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to revoke share link"})
		return
	}
	if !removed {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Share link not found"})
		return
	}

	actorID := middleware.GetUserID(r.Context())
	h.audit.Record(r.Context(), audit.Entry{
		ActorID:   &actorID,
		Action:    models.ActionShareLinkRevoked,
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
		Metadata:  map[string]any{"link_id": linkID.String()},
	})

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Share link revoked"})
}
