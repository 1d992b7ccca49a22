package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/audit"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database/models"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/email"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/tasks"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("user already exists")
	ErrPendingApproval      = errors.New("registration pending approval")
	ErrRegistrationRejected = errors.New("registration was rejected")
	ErrAlreadyApproved      = errors.New("user already approved")
	ErrNotApproved          = errors.New("user is not approved")
	ErrTooManyMagicLinks    = errors.New("too many magic links requested")
	ErrEmailDelivery        = errors.New("failed to send email")
)

// RateLimitedError carries the window reset so handlers can surface a
// retry-after estimate.
type RateLimitedError struct {
	ResetAt time.Time
	now     time.Time
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry in %d minutes", e.RetryInMinutes())
}

func (e *RateLimitedError) RetryInMinutes() int {
	mins := int(e.ResetAt.Sub(e.now).Minutes()) + 1
	if mins < 1 {
		mins = 1
	}
	return mins
}

// taskEnqueuer is the slice of asynq.Client we use; kept as an interface so
// tests run without Redis.
type taskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Service implements the passwordless authentication flows: registration
// with admin approval, magic-link login, session issue and logout.
type Service struct {
	db         *gorm.DB
	limiter    *RateLimiter
	magicLinks *MagicLinkService
	sessions   *SessionService
	audit      *audit.Recorder
	sender     email.Sender
	queue      taskEnqueuer
	logger     *slog.Logger
	baseURL    string
	adminEmail string
	now        func() time.Time
}

type ServiceConfig struct {
	DB         *gorm.DB
	Limiter    *RateLimiter
	MagicLinks *MagicLinkService
	Sessions   *SessionService
	Audit      *audit.Recorder
	Sender     email.Sender
	Queue      *asynq.Client // optional; admin notifications are skipped without it
	Logger     *slog.Logger
	BaseURL    string
	AdminEmail string
	Now        func() time.Time
}

func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		db:         cfg.DB,
		limiter:    cfg.Limiter,
		magicLinks: cfg.MagicLinks,
		sessions:   cfg.Sessions,
		audit:      cfg.Audit,
		sender:     cfg.Sender,
		logger:     logger,
		baseURL:    cfg.BaseURL,
		adminEmail: cfg.AdminEmail,
		now:        now,
	}
	if cfg.Queue != nil {
		s.queue = cfg.Queue
	}
	return s
}

// MagicLinks exposes the underlying issuer for admin diagnostics.
func (s *Service) MagicLinks() *MagicLinkService { return s.magicLinks }

// Sessions exposes the session manager for middleware.
func (s *Service) Sessions() *SessionService { return s.sessions }

type RegisterInput struct {
	Email     string
	Name      string
	IPAddress string
	UserAgent string
}

// Register records an access request. The user is created PENDING with the
// EDITOR role and waits for an admin decision.
func (s *Service) Register(ctx context.Context, input RegisterInput) error {
	email := strings.ToLower(input.Email)

	if rl := s.limiter.Check(email, RegisterRateLimit); !rl.Allowed {
		return &RateLimitedError{ResetAt: rl.ResetAt, now: s.now()}
	}

	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		switch existing.Status {
		case models.StatusApproved:
			return ErrUserExists
		case models.StatusPending:
			return ErrPendingApproval
		default:
			return ErrRegistrationRejected
		}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	user := models.User{
		Email:  email,
		Name:   input.Name,
		Role:   models.RoleEditor,
		Status: models.StatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return err
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:   &user.ID,
		Action:    models.ActionRegistrationRequest,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
		Metadata:  map[string]any{"email": email, "name": input.Name},
	})

	s.enqueueRegistrationNotice(user)

	return nil
}

type LoginInput struct {
	Email     string
	IPAddress string
	UserAgent string
}

// RequestLogin issues a magic link for an approved account and emails it.
// An unknown email returns nil so callers cannot probe for accounts; the
// handler shows the same vague message either way.
func (s *Service) RequestLogin(ctx context.Context, input LoginInput) error {
	addr := strings.ToLower(input.Email)

	if rl := s.limiter.Check(addr, LoginRateLimit); !rl.Allowed {
		return &RateLimitedError{ResetAt: rl.ResetAt, now: s.now()}
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", addr).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	switch user.Status {
	case models.StatusPending:
		return ErrPendingApproval
	case models.StatusRejected:
		return ErrRegistrationRejected
	}

	ok, err := s.magicLinks.CheckRateLimit(ctx, addr, MagicLinkDuration, LoginRateLimit.MaxAttempts)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTooManyMagicLinks
	}

	link, err := s.magicLinks.Issue(ctx, addr, input.IPAddress)
	if err != nil {
		return err
	}

	verifyURL := fmt.Sprintf("%s/verify?token=%s", s.baseURL, link.Token)
	if err := s.sender.Send(addr, email.MagicLinkSubject(), email.MagicLinkBody(verifyURL)); err != nil {
		// Without the email the token was never usably communicated, so
		// this is a user-facing failure.
		s.logger.Error("failed to send magic link email", "error", err)
		return ErrEmailDelivery
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:   &user.ID,
		Action:    models.ActionLogin,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
		Metadata:  map[string]any{"stage": "link_requested"},
	})

	return nil
}

// VerifyLogin consumes the magic link and creates a session. Consumption
// and session creation are sequential within this call; the conditional
// update inside Verify is what makes double redemption impossible.
func (s *Service) VerifyLogin(ctx context.Context, token, ipAddress, userAgent string) (*models.Session, *models.User, error) {
	addr, err := s.magicLinks.Verify(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", addr).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	if user.Status != models.StatusApproved {
		return nil, nil, ErrNotApproved
	}

	session, err := s.sessions.Create(ctx, user.ID, userAgent, ipAddress)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		s.logger.Warn("failed to update last login", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt = &now

	s.audit.Record(ctx, audit.Entry{
		ActorID:   &user.ID,
		Action:    models.ActionLogin,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	})

	return session, &user, nil
}

// Logout destroys the session. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, token, ipAddress, userAgent string) error {
	su, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return err
	}

	if err := s.sessions.Delete(ctx, token); err != nil {
		return err
	}

	if su != nil {
		s.audit.Record(ctx, audit.Entry{
			ActorID:   &su.User.ID,
			Action:    models.ActionLogout,
			IPAddress: ipAddress,
			UserAgent: userAgent,
		})
	}

	return nil
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns users, optionally filtered by status, newest first.
func (s *Service) ListUsers(ctx context.Context, status models.UserStatus) ([]models.User, error) {
	q := s.db.WithContext(ctx).Model(&models.User{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var users []models.User
	err := q.Order("created_at DESC").Find(&users).Error
	return users, err
}

// CreateUser lets an admin provision an account directly in APPROVED state
// with a chosen role.
func (s *Service) CreateUser(ctx context.Context, actorID uuid.UUID, emailAddr, name string, role models.Role) (*models.User, error) {
	addr := strings.ToLower(emailAddr)

	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", addr).First(&existing).Error; err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := s.now()
	user := models.User{
		Email:      addr,
		Name:       name,
		Role:       role,
		Status:     models.StatusApproved,
		ApprovedAt: &now,
		ApprovedBy: &actorID,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:  &actorID,
		Action:   models.ActionUserCreated,
		Metadata: map[string]any{"created_user_id": user.ID.String(), "email": addr, "role": role},
	})

	return &user, nil
}

// Approve moves a PENDING user to APPROVED. The transition happens at most
// once; approving an approved user is an error.
func (s *Service) Approve(ctx context.Context, actorID, userID uuid.UUID) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.Status == models.StatusApproved {
		return ErrAlreadyApproved
	}

	now := s.now()
	err = s.db.WithContext(ctx).Model(user).Updates(map[string]any{
		"status":      models.StatusApproved,
		"approved_at": now,
		"approved_by": actorID,
	}).Error
	if err != nil {
		return err
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:  &actorID,
		Action:   models.ActionRegistrationApproved,
		Metadata: map[string]any{"approved_user_id": userID.String(), "email": user.Email},
	})

	s.enqueueDecisionNotice(tasks.TypeEmailRegistrationApproved, user)

	return nil
}

// Reject moves a user to REJECTED. One-way like Approve.
func (s *Service) Reject(ctx context.Context, actorID, userID uuid.UUID) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Model(user).Update("status", models.StatusRejected).Error
	if err != nil {
		return err
	}

	// A rejected user must not ride out an existing session; revoke them all
	// so the status change takes effect on the next request.
	if err := s.sessions.DeleteForUser(ctx, userID); err != nil {
		return err
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:  &actorID,
		Action:   models.ActionRegistrationRejected,
		Metadata: map[string]any{"rejected_user_id": userID.String(), "email": user.Email},
	})

	s.enqueueDecisionNotice(tasks.TypeEmailRegistrationRejected, user)

	return nil
}

// Notification emails ride the task queue: their delivery must not block or
// fail the admin action they describe.

func (s *Service) enqueueRegistrationNotice(user models.User) {
	if s.queue == nil || s.adminEmail == "" {
		return
	}

	task, err := tasks.NewRegistrationRequestTask(tasks.RegistrationRequestPayload{
		AdminEmail: s.adminEmail,
		UserEmail:  user.Email,
		UserName:   user.Name,
	})
	if err == nil {
		_, err = s.queue.Enqueue(task)
	}
	if err != nil {
		s.logger.Error("failed to enqueue registration notice", "error", err)
	}
}

func (s *Service) enqueueDecisionNotice(taskType string, user *models.User) {
	if s.queue == nil {
		return
	}

	name := user.Name
	if name == "" {
		name = user.Email
	}
	payload := tasks.RegistrationDecisionPayload{UserEmail: user.Email, UserName: name}

	var task *asynq.Task
	var err error
	if taskType == tasks.TypeEmailRegistrationApproved {
		task, err = tasks.NewRegistrationApprovedTask(payload)
	} else {
		task, err = tasks.NewRegistrationRejectedTask(payload)
	}
	if err == nil {
		_, err = s.queue.Enqueue(task)
	}
	if err != nil {
		s.logger.Error("failed to enqueue decision notice", "task", taskType, "error", err)
	}
}
