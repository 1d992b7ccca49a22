package database

import (
	"context"
	"time"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database/models"
	"gorm.io/gorm"
)

// CleanupResult reports how many rows each sweep removed.
type CleanupResult struct {
	Sessions   int64 `json:"sessions"`
	MagicLinks int64 `json:"magic_links"`
	ShareLinks int64 `json:"share_links"`
	AuditLogs  int64 `json:"audit_logs"`
}

// CleanupExpired deletes rows past their expiry. All expiry checks in the
// services compare wall clock at read time, so this sweep only bounds
// storage; nothing depends on it for correctness.
//
// Consumed magic links are kept for audit history and pruned with the audit
// retention instead.
func CleanupExpired(ctx context.Context, db *gorm.DB, now time.Time, auditRetention time.Duration) (*CleanupResult, error) {
	res := &CleanupResult{}

	tx := db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.Session{})
	if tx.Error != nil {
		return nil, tx.Error
	}
	res.Sessions = tx.RowsAffected

	tx = db.WithContext(ctx).Where("expires_at < ? AND consumed_at IS NULL", now).Delete(&models.MagicLink{})
	if tx.Error != nil {
		return nil, tx.Error
	}
	res.MagicLinks = tx.RowsAffected

	tx = db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.ShareLink{})
	if tx.Error != nil {
		return nil, tx.Error
	}
	res.ShareLinks = tx.RowsAffected

	if auditRetention > 0 {
		cutoff := now.Add(-auditRetention)
		tx = db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.AuditLogEntry{})
		if tx.Error != nil {
			return nil, tx.Error
		}
		res.AuditLogs = tx.RowsAffected

		tx = db.WithContext(ctx).Where("consumed_at IS NOT NULL AND created_at < ?", cutoff).Delete(&models.MagicLink{})
		if tx.Error != nil {
			return nil, tx.Error
		}
		res.MagicLinks += tx.RowsAffected
	}

	return res, nil
}

// Stats aggregates counts for the admin dashboard.
type Stats struct {
	Users              int64 `json:"users"`
	PendingUsers       int64 `json:"pending_users"`
	ActiveSessions     int64 `json:"active_sessions"`
	ProtectedResources int64 `json:"protected_resources"`
	ActiveShareLinks   int64 `json:"active_share_links"`
}

func GetStats(ctx context.Context, db *gorm.DB, now time.Time) (*Stats, error) {
	stats := &Stats{}

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&stats.Users, db.WithContext(ctx).Model(&models.User{})},
		{&stats.PendingUsers, db.WithContext(ctx).Model(&models.User{}).Where("status = ?", models.StatusPending)},
		{&stats.ActiveSessions, db.WithContext(ctx).Model(&models.Session{}).Where("expires_at > ?", now)},
		{&stats.ProtectedResources, db.WithContext(ctx).Model(&models.ProtectedResource{})},
		{&stats.ActiveShareLinks, db.WithContext(ctx).Model(&models.ShareLink{}).Where("expires_at > ?", now)},
	}

	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	return stats, nil
}
