package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/access"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/api/dto"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/api/middleware"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/api/validation"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/audit"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database/models"
)

type PermissionHandler struct {
	permissions *access.PermissionService
	audit       *audit.Recorder
}

func NewPermissionHandler(permissions *access.PermissionService, recorder *audit.Recorder) *PermissionHandler {
	return &PermissionHandler{permissions: permissions, audit: recorder}
}

func (h *PermissionHandler) List(w http.ResponseWriter, r *http.Request) {
	rules, err := h.permissions.ListRules(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list protection rules"})
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

func (h *PermissionHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req dto.ProtectResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	resourceType := models.ResourceType(req.ResourceType)
	created, err := h.permissions.UpsertRule(r.Context(), resourceType, req.ResourceID, models.Role(req.MinRole))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to save protection rule"})
		return
	}

	action := models.ActionPermissionUpdated
	status := http.StatusOK
	if created {
		action = models.ActionPermissionCreated
		status = http.StatusCreated
	}

	actorID := middleware.GetUserID(r.Context())
	h.audit.Record(r.Context(), audit.Entry{
		ActorID:      &actorID,
		Action:       action,
		ResourceType: &resourceType,
		ResourceID:   &req.ResourceID,
		IPAddress:    middleware.ClientIP(r),
		UserAgent:    r.UserAgent(),
		Metadata:     map[string]any{"min_role": req.MinRole},
	})

	writeJSON(w, status, dto.SuccessResponse{Message: "Protection rule saved"})
}

func (h *PermissionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	resourceType := models.ResourceType(r.URL.Query().Get("resource_type"))
	resourceID := r.URL.Query().Get("resource_id")

	switch resourceType {
	case models.ResourcePage, models.ResourceSection, models.ResourceProject:
	default:
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid resource type"})
		return
	}
	if !validation.IsValidResourceID(resourceID) {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid resource ID"})
		return
	}

	if err := h.permissions.DeleteRule(r.Context(), resourceType, resourceID); err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete protection rule"})
		return
	}

	actorID := middleware.GetUserID(r.Context())
	h.audit.Record(r.Context(), audit.Entry{
		ActorID:      &actorID,
		Action:       models.ActionPermissionDeleted,
		ResourceType: &resourceType,
		ResourceID:   &resourceID,
		IPAddress:    middleware.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Protection rule deleted"})
}
