// Package audit provides the append-only security event log. Writes are
// best-effort: a logging outage must never block a login, approval or
// access check.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entry is one security-relevant event.
type Entry struct {
	ActorID      *uuid.UUID
	Action       models.AuditAction
	ResourceType *models.ResourceType
	ResourceID   *string
	IPAddress    string
	UserAgent    string
	Metadata     map[string]any
}

type Recorder struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRecorder(db *gorm.DB, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{db: db, logger: logger}
}

// Record appends the entry. Storage failures are logged to the operator
// channel and swallowed; they never propagate to the caller.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	row := &models.AuditLogEntry{
		ActorID:      e.ActorID,
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		IPAddress:    e.IPAddress,
		UserAgent:    e.UserAgent,
	}

	if len(e.Metadata) > 0 {
		data, err := json.Marshal(e.Metadata)
		if err != nil {
			r.logger.Error("failed to encode audit metadata", "action", e.Action, "error", err)
		} else {
			row.Metadata = string(data)
		}
	}

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		r.logger.Error("failed to write audit entry", "action", e.Action, "error", err)
	}
}

// Filter narrows Query results. Zero values mean "any".
type Filter struct {
	ActorID *uuid.UUID
	Action  models.AuditAction
	Limit   int
	Offset  int
}

// Query returns entries newest first. Restricting read access to admins is
// the caller's job; the recorder trusts its input.
func (r *Recorder) Query(ctx context.Context, f Filter) ([]models.AuditLogEntry, error) {
	q := r.db.WithContext(ctx).Model(&models.AuditLogEntry{})

	if f.ActorID != nil {
		q = q.Where("actor_id = ?", *f.ActorID)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}

	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}

	var entries []models.AuditLogEntry
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&entries).Error
	return entries, err
}

// ActionCount is one row of the by-action breakdown.
type ActionCount struct {
	Action models.AuditAction `json:"action"`
	Count  int64              `json:"count"`
}

type Stats struct {
	Total    int64         `json:"total"`
	Last24h  int64         `json:"last_24h"`
	Last7d   int64         `json:"last_7d"`
	ByAction []ActionCount `json:"by_action"`
}

func (r *Recorder) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	stats := &Stats{}

	if err := r.db.WithContext(ctx).Model(&models.AuditLogEntry{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&models.AuditLogEntry{}).
		Where("created_at > ?", now.Add(-24*time.Hour)).Count(&stats.Last24h).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&models.AuditLogEntry{}).
		Where("created_at > ?", now.Add(-7*24*time.Hour)).Count(&stats.Last7d).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&models.AuditLogEntry{}).
		Select("action, COUNT(*) as count").
		Group("action").
		Order("count DESC").
		Scan(&stats.ByAction).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
