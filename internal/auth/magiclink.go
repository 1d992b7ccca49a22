package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database/models"
	"github.com/Mahdisellami/Hrisa-MyWebsite/pkg/crypto"
	"gorm.io/gorm"
)

const MagicLinkDuration = 15 * time.Minute

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenAlreadyUsed = errors.New("token already used")
	ErrTokenExpired     = errors.New("token expired")
)

// MagicLinkService issues and consumes single-use login tokens. It never
// sends email; callers build the verification URL from the returned token.
type MagicLinkService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewMagicLinkService(db *gorm.DB, now func() time.Time) *MagicLinkService {
	if now == nil {
		now = time.Now
	}
	return &MagicLinkService{db: db, now: now}
}

func (s *MagicLinkService) Issue(ctx context.Context, email, ipAddress string) (*models.MagicLink, error) {
	token, err := crypto.GenerateToken()
	if err != nil {
		return nil, err
	}

	link := &models.MagicLink{
		Email:     strings.ToLower(email),
		Token:     token,
		ExpiresAt: s.now().Add(MagicLinkDuration),
		IPAddress: ipAddress,
	}

	if err := s.db.WithContext(ctx).Create(link).Error; err != nil {
		return nil, err
	}

	return link, nil
}

// Verify consumes the token and returns the owning email. The consume step
// is a conditional update guarded on consumed_at, so two concurrent calls
// can never both succeed.
func (s *MagicLinkService) Verify(ctx context.Context, token string) (string, error) {
	var link models.MagicLink
	if err := s.db.WithContext(ctx).Where("token = ?", token).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}

	if link.ConsumedAt != nil {
		return "", ErrTokenAlreadyUsed
	}

	now := s.now()
	if !now.Before(link.ExpiresAt) {
		return "", ErrTokenExpired
	}

	tx := s.db.WithContext(ctx).
		Model(&models.MagicLink{}).
		Where("id = ? AND consumed_at IS NULL", link.ID).
		Update("consumed_at", now)
	if tx.Error != nil {
		return "", tx.Error
	}
	if tx.RowsAffected == 0 {
		// Lost a race with a concurrent verification.
		return "", ErrTokenAlreadyUsed
	}

	return link.Email, nil
}

// CheckRateLimit reports whether another link may be issued for the email.
// It counts rows created in the trailing window, a secondary limiter on top
// of the in-memory one applied by the login flow.
func (s *MagicLinkService) CheckRateLimit(ctx context.Context, email string, window time.Duration, maxAttempts int) (bool, error) {
	windowStart := s.now().Add(-window)

	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.MagicLink{}).
		Where("email = ? AND created_at > ?", strings.ToLower(email), windowStart).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count < int64(maxAttempts), nil
}

// MagicLinkStats summarizes link state for an email, or globally when the
// email is empty.
type MagicLinkStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Consumed int64 `json:"consumed"`
}

func (s *MagicLinkService) Stats(ctx context.Context, email string) (*MagicLinkStats, error) {
	now := s.now()
	base := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.MagicLink{})
		if email != "" {
			q = q.Where("email = ?", strings.ToLower(email))
		}
		return q
	}

	stats := &MagicLinkStats{}
	if err := base().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := base().Where("expires_at > ? AND consumed_at IS NULL", now).Count(&stats.Active).Error; err != nil {
		return nil, err
	}
	if err := base().Where("consumed_at IS NOT NULL").Count(&stats.Consumed).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
