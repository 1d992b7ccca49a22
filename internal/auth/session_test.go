package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database/models"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/testutil"
)

func TestSession_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	svc := NewSessionService(db, nil)

	user := testutil.CreateTestUser(t, db, models.RoleEditor, models.StatusApproved)

	session, err := svc.Create(ctx, user.ID, "test-agent", "203.0.113.9")
	require.NoError(t, err)
	assert.Len(t, session.Token, 64)

	su, err := svc.GetByToken(ctx, session.Token)
	require.NoError(t, err)
	require.NotNil(t, su)
	assert.Equal(t, user.ID, su.User.ID)
	assert.Equal(t, user.Email, su.User.Email)
	assert.Equal(t, session.ID, su.Session.ID)
}

func TestSession_GetUnknownToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	svc := NewSessionService(db, nil)

	su, err := svc.GetByToken(ctx, "no-such-token")
	require.NoError(t, err)
	assert.Nil(t, su, "unknown tokens resolve to no principal, not an error")
}

func TestSession_ExpiryIsFixed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	clock := testutil.NewClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	svc := NewSessionService(db, clock.Now)

	user := testutil.CreateTestUser(t, db, models.RoleEditor, models.StatusApproved)
	session, err := svc.Create(ctx, user.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(SessionDuration), session.ExpiresAt)

	// Activity does not slide the expiry; the session reads fine right up
	// to the boundary and is gone at it.
	clock.Advance(SessionDuration - time.Second)
	su, err := svc.GetByToken(ctx, session.Token)
	require.NoError(t, err)
	assert.NotNil(t, su)

	clock.Advance(time.Second)
	su, err = svc.GetByToken(ctx, session.Token)
	require.NoError(t, err)
	assert.Nil(t, su)
}

func TestSession_DeleteIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	svc := NewSessionService(db, nil)

	user := testutil.CreateTestUser(t, db, models.RoleEditor, models.StatusApproved)
	session, err := svc.Create(ctx, user.ID, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, session.Token))

	su, err := svc.GetByToken(ctx, session.Token)
	require.NoError(t, err)
	assert.Nil(t, su, "deleted session is gone immediately")

	assert.NoError(t, svc.Delete(ctx, session.Token), "deleting again is a no-op")
	assert.NoError(t, svc.Delete(ctx, "never-existed"))
}

func TestSession_DeleteForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	svc := NewSessionService(db, nil)

	alice := testutil.CreateTestUser(t, db, models.RoleEditor, models.StatusApproved)
	bob := testutil.CreateTestUser(t, db, models.RoleEditor, models.StatusApproved)

	s1, err := svc.Create(ctx, alice.ID, "", "")
	require.NoError(t, err)
	s2, err := svc.Create(ctx, alice.ID, "", "")
	require.NoError(t, err)
	s3, err := svc.Create(ctx, bob.ID, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteForUser(ctx, alice.ID))

	for _, token := range []string{s1.Token, s2.Token} {
		su, err := svc.GetByToken(ctx, token)
		require.NoError(t, err)
		assert.Nil(t, su)
	}

	su, err := svc.GetByToken(ctx, s3.Token)
	require.NoError(t, err)
	assert.NotNil(t, su, "other users keep their sessions")
}
