package auth

import (
	"context"
	"errors"
	"time"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database/models"
	"github.com/Mahdisellami/Hrisa-MyWebsite/pkg/crypto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionDuration is fixed from creation; sessions do not slide. Callers
// re-authenticate with a fresh magic link once it elapses.
const SessionDuration = 7 * 24 * time.Hour

// SessionCookieName is the cookie the API layer stores the token under.
const SessionCookieName = "hrisa_session"

// SessionUser is the session joined with a snapshot of its owning user.
type SessionUser struct {
	Session models.Session
	User    models.User
}

type SessionService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSessionService(db *gorm.DB, now func() time.Time) *SessionService {
	if now == nil {
		now = time.Now
	}
	return &SessionService{db: db, now: now}
}

func (s *SessionService) Create(ctx context.Context, userID uuid.UUID, userAgent, ipAddress string) (*models.Session, error) {
	token, err := crypto.GenerateToken()
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: s.now().Add(SessionDuration),
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}

	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}

	return session, nil
}

// GetByToken returns the session and its user, or nil when the token is
// unknown or past expiry. Expired sessions are treated as absent, not
// specially flagged.
func (s *SessionService) GetByToken(ctx context.Context, token string) (*SessionUser, error) {
	var session models.Session
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("token = ? AND expires_at > ?", token, s.now()).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if session.User == nil {
		return nil, nil
	}

	return &SessionUser{Session: session, User: *session.User}, nil
}

// Delete is an immediate hard delete and idempotent: removing an unknown
// token is not an error.
func (s *SessionService) Delete(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{}).Error
}

// DeleteForUser removes every session the user holds.
func (s *SessionService) DeleteForUser(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Session{}).Error
}
