package access

import (
	"context"
	"errors"
	"time"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database/models"
	"github.com/Mahdisellami/Hrisa-MyWebsite/pkg/crypto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidLink   = errors.New("invalid share link")
	ErrLinkExpired   = errors.New("share link has expired")
	ErrUsesExhausted = errors.New("share link has reached maximum uses")
)

// ShareLinkService issues and redeems capability tokens. Links grant access
// without an account; the token itself is the only control.
type ShareLinkService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewShareLinkService(db *gorm.DB, now func() time.Time) *ShareLinkService {
	if now == nil {
		now = time.Now
	}
	return &ShareLinkService{db: db, now: now}
}

// Issue creates a link scoped to one resource, or to everything when the
// scope is ALL (resourceID is ignored then). maxUses nil means unlimited.
func (s *ShareLinkService) Issue(ctx context.Context, creatorID uuid.UUID, resourceType models.ResourceType, resourceID *string, expiresInHours int, maxUses *int) (*models.ShareLink, error) {
	token, err := crypto.GenerateToken()
	if err != nil {
		return nil, err
	}

	if resourceType == models.ResourceAll {
		resourceID = nil
	}

	link := &models.ShareLink{
		Token:        token,
		CreatedBy:    creatorID,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		ExpiresAt:    s.now().Add(time.Duration(expiresInHours) * time.Hour),
		MaxUses:      maxUses,
	}

	if err := s.db.WithContext(ctx).Create(link).Error; err != nil {
		return nil, err
	}

	return link, nil
}

// Validate redeems one use of the link. The validity check and the counter
// increment are a single conditional UPDATE guarded on use_count, so
// concurrent redemptions can never push use_count past max_uses. The
// returned link carries the post-increment count.
func (s *ShareLinkService) Validate(ctx context.Context, token string) (*models.ShareLink, error) {
	var link models.ShareLink
	if err := s.db.WithContext(ctx).Where("token = ?", token).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidLink
		}
		return nil, err
	}

	now := s.now()
	if err := classify(&link, now); err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).
		Model(&models.ShareLink{}).
		Where("id = ? AND expires_at > ? AND (max_uses IS NULL OR use_count < max_uses)", link.ID, now).
		UpdateColumn("use_count", gorm.Expr("use_count + 1"))
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		// A concurrent redemption got there first; re-read for the reason.
		if err := s.db.WithContext(ctx).First(&link, "id = ?", link.ID).Error; err != nil {
			return nil, ErrInvalidLink
		}
		if err := classify(&link, now); err != nil {
			return nil, err
		}
		return nil, ErrUsesExhausted
	}

	link.UseCount++
	return &link, nil
}

func classify(link *models.ShareLink, now time.Time) error {
	if !now.Before(link.ExpiresAt) {
		return ErrLinkExpired
	}
	if link.MaxUses != nil && link.UseCount >= *link.MaxUses {
		return ErrUsesExhausted
	}
	return nil
}

// MatchesResource reports whether the link's scope covers the pair. ALL
// matches everything; otherwise the match is exact.
func MatchesResource(link *models.ShareLink, resourceType models.ResourceType, resourceID string) bool {
	if link.ResourceType == models.ResourceAll {
		return true
	}
	return link.ResourceType == resourceType && link.ResourceID != nil && *link.ResourceID == resourceID
}

// Get looks up a link without consuming a use.
func (s *ShareLinkService) Get(ctx context.Context, token string) (*models.ShareLink, error) {
	var link models.ShareLink
	if err := s.db.WithContext(ctx).Where("token = ?", token).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidLink
		}
		return nil, err
	}
	return &link, nil
}

// ListActive returns unexpired links newest first. Exhausted links are
// included: they stop validating but stay visible for history.
func (s *ShareLinkService) ListActive(ctx context.Context) ([]models.ShareLink, error) {
	var links []models.ShareLink
	err := s.db.WithContext(ctx).
		Where("expires_at > ?", s.now()).
		Order("created_at DESC").
		Find(&links).Error
	return links, err
}

func (s *ShareLinkService) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.ShareLink, error) {
	var links []models.ShareLink
	err := s.db.WithContext(ctx).
		Where("created_by = ?", creatorID).
		Order("created_at DESC").
		Find(&links).Error
	return links, err
}

// Revoke hard-deletes by id and reports whether a link was removed.
func (s *ShareLinkService) Revoke(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := s.db.WithContext(ctx).Delete(&models.ShareLink{}, "id = ?", id)
	return tx.RowsAffected > 0, tx.Error
}

// RevokeForResource hard-deletes every link scoped to the pair and returns
// the count removed.
func (s *ShareLinkService) RevokeForResource(ctx context.Context, resourceType models.ResourceType, resourceID string) (int64, error) {
	tx := s.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Delete(&models.ShareLink{})
	return tx.RowsAffected, tx.Error
}

// ShareLinkStats summarizes link state for the admin dashboard.
type ShareLinkStats struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Expired   int64 `json:"expired"`
	TotalUses int64 `json:"total_uses"`
}

func (s *ShareLinkService) Stats(ctx context.Context) (*ShareLinkStats, error) {
	now := s.now()
	stats := &ShareLinkStats{}

	if err := s.db.WithContext(ctx).Model(&models.ShareLink{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.ShareLink{}).
		Where("expires_at > ?", now).Count(&stats.Active).Error; err != nil {
		return nil, err
	}
	stats.Expired = stats.Total - stats.Active

	err := s.db.WithContext(ctx).Model(&models.ShareLink{}).
		Select("COALESCE(SUM(use_count), 0)").
		Scan(&stats.TotalUses).Error
	return stats, err
}
