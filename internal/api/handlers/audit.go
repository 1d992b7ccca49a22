package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/api/dto"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/audit"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditHandler struct {
	db       *gorm.DB
	recorder *audit.Recorder
}

func NewAuditHandler(db *gorm.DB, recorder *audit.Recorder) *AuditHandler {
	return &AuditHandler{db: db, recorder: recorder}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := audit.Filter{
		Action: models.AuditAction(q.Get("action")),
	}
	if s := q.Get("actor_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid actor ID"})
			return
		}
		filter.ActorID = &id
	}
	if s := q.Get("limit"); s != "" {
		filter.Limit, _ = strconv.Atoi(s)
	}
	if s := q.Get("offset"); s != "" {
		filter.Offset, _ = strconv.Atoi(s)
	}

	entries, err := h.recorder.Query(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to query audit log"})
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// StatsResponse bundles the dashboard counters.
type StatsResponse struct {
	Totals *database.Stats `json:"totals"`
	Audit  *audit.Stats    `json:"audit"`
}

func (h *AuditHandler) Stats(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	totals, err := database.GetStats(r.Context(), h.db, now)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to collect stats"})
		return
	}

	auditStats, err := h.recorder.Stats(r.Context(), now)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to collect stats"})
		return
	}

	writeJSON(w, http.StatusOK, StatsResponse{Totals: totals, Audit: auditStats})
}
