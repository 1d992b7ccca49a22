package tasks

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database/models"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/testutil"
)

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type captureSender struct {
	mu   sync.Mutex
	sent []sentMail
}

func (c *captureSender) Send(to, subject, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleRegistrationRequest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	sender := &captureSender{}
	h := NewHandler(db, sender, discardLogger(), "http://localhost:8080", 90*24*time.Hour)
	ctx := testutil.TestContext(t)

	task, err := NewRegistrationRequestTask(RegistrationRequestPayload{
		AdminEmail: "admin@example.com",
		UserEmail:  "visitor@example.com",
		UserName:   "Visitor",
	})
	require.NoError(t, err)

	require.NoError(t, h.HandleRegistrationRequest(ctx, task))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "admin@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Body, "visitor@example.com")
}

func TestHandleRegistrationRequest_NoAdminConfigured(t *testing.T) {
	db := testutil.SetupTestDB(t)
	sender := &captureSender{}
	h := NewHandler(db, sender, discardLogger(), "http://localhost:8080", 90*24*time.Hour)
	ctx := testutil.TestContext(t)

	task, err := NewRegistrationRequestTask(RegistrationRequestPayload{
		UserEmail: "visitor@example.com",
		UserName:  "Visitor",
	})
	require.NoError(t, err)

	// Without a configured admin address the task completes without sending.
	require.NoError(t, h.HandleRegistrationRequest(ctx, task))
	assert.Empty(t, sender.sent)
}

func TestHandleRegistrationDecisions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	sender := &captureSender{}
	h := NewHandler(db, sender, discardLogger(), "http://localhost:8080", 90*24*time.Hour)
	ctx := testutil.TestContext(t)

	approved, err := NewRegistrationApprovedTask(RegistrationDecisionPayload{
		UserEmail: "visitor@example.com",
		UserName:  "Visitor",
	})
	require.NoError(t, err)
	require.NoError(t, h.HandleRegistrationApproved(ctx, approved))

	rejected, err := NewRegistrationRejectedTask(RegistrationDecisionPayload{
		UserEmail: "other@example.com",
		UserName:  "Other",
	})
	require.NoError(t, err)
	require.NoError(t, h.HandleRegistrationRejected(ctx, rejected))

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "visitor@example.com", sender.sent[0].To)
	assert.Equal(t, "other@example.com", sender.sent[1].To)
}

func TestHandleCleanupExpired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	sender := &captureSender{}
	h := NewHandler(db, sender, discardLogger(), "http://localhost:8080", 90*24*time.Hour)
	ctx := testutil.TestContext(t)

	user := testutil.CreateTestUser(t, db, models.RoleEditor, models.StatusApproved)

	// One live and one expired session.
	testutil.CreateTestSession(t, db, user.ID, time.Now().Add(time.Hour))
	testutil.CreateTestSession(t, db, user.ID, time.Now().Add(-time.Hour))

	expiredLink := &models.MagicLink{
		Base:      models.Base{ID: uuid.New()},
		Email:     user.Email,
		Token:     "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, db.Create(expiredLink).Error)

	expiredShare := &models.ShareLink{
		Base:         models.Base{ID: uuid.New()},
		Token:        "fedcba9876543210fedcba9876543210fedcba9876543210fedcba9876543210",
		CreatedBy:    user.ID,
		ResourceType: models.ResourcePage,
		ExpiresAt:    time.Now().Add(-time.Hour),
	}
	require.NoError(t, db.Create(expiredShare).Error)

	require.NoError(t, h.HandleCleanupExpired(ctx, NewCleanupExpiredTask()))

	var sessionCount int64
	require.NoError(t, db.Model(&models.Session{}).Count(&sessionCount).Error)
	assert.Equal(t, int64(1), sessionCount, "only the live session survives")

	var linkCount int64
	require.NoError(t, db.Model(&models.MagicLink{}).Count(&linkCount).Error)
	assert.Zero(t, linkCount)

	var shareCount int64
	require.NoError(t, db.Model(&models.ShareLink{}).Count(&shareCount).Error)
	assert.Zero(t, shareCount)
}
