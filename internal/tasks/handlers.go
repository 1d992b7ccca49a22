package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/email"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

type Handler struct {
	db             *gorm.DB
	sender         email.Sender
	logger         *slog.Logger
	baseURL        string
	auditRetention time.Duration
}

func NewHandler(db *gorm.DB, sender email.Sender, logger *slog.Logger, baseURL string, auditRetention time.Duration) *Handler {
	return &Handler{
		db:             db,
		sender:         sender,
		logger:         logger,
		baseURL:        baseURL,
		auditRetention: auditRetention,
	}
}

func (h *Handler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeEmailRegistrationRequest, h.HandleRegistrationRequest)
	mux.HandleFunc(TypeEmailRegistrationApproved, h.HandleRegistrationApproved)
	mux.HandleFunc(TypeEmailRegistrationRejected, h.HandleRegistrationRejected)
	mux.HandleFunc(TypeCleanupExpired, h.HandleCleanupExpired)
}

func (h *Handler) HandleRegistrationRequest(ctx context.Context, t *asynq.Task) error {
	var p RegistrationRequestPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshaling payload: %w", err)
	}

	if p.AdminEmail == "" {
		h.logger.Warn("no admin email configured, skipping registration notification")
		return nil
	}

	return h.sender.Send(
		p.AdminEmail,
		email.RegistrationRequestSubject(p.UserName),
		email.RegistrationRequestBody(p.UserEmail, p.UserName, h.baseURL),
	)
}

func (h *Handler) HandleRegistrationApproved(ctx context.Context, t *asynq.Task) error {
	var p RegistrationDecisionPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshaling payload: %w", err)
	}

	return h.sender.Send(
		p.UserEmail,
		email.RegistrationApprovedSubject(),
		email.RegistrationApprovedBody(p.UserName, h.baseURL),
	)
}

func (h *Handler) HandleRegistrationRejected(ctx context.Context, t *asynq.Task) error {
	var p RegistrationDecisionPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshaling payload: %w", err)
	}

	return h.sender.Send(
		p.UserEmail,
		email.RegistrationRejectedSubject(),
		email.RegistrationRejectedBody(p.UserName),
	)
}

func (h *Handler) HandleCleanupExpired(ctx context.Context, t *asynq.Task) error {
	res, err := database.CleanupExpired(ctx, h.db, time.Now(), h.auditRetention)
	if err != nil {
		return fmt.Errorf("running expiry sweep: %w", err)
	}

	h.logger.Info("expiry sweep complete",
		"sessions", res.Sessions,
		"magic_links", res.MagicLinks,
		"share_links", res.ShareLinks,
		"audit_logs", res.AuditLogs,
	)
	return nil
}
