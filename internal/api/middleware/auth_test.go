package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/auth"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database/models"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/testutil"
)

func principalEcho(t *testing.T, captured **auth.SessionUser) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = GetSessionUser(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionMiddleware_Cookie(t *testing.T) {
	db := testutil.SetupTestDB(t)
	sessions := auth.NewSessionService(db, nil)
	user := testutil.CreateTestUser(t, db, models.RoleEditor, models.StatusApproved)

	ctx := testutil.TestContext(t)
	session, err := sessions.Create(ctx, user.ID, "", "")
	require.NoError(t, err)

	var got *auth.SessionUser
	handler := Session(sessions)(principalEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: session.Token})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.User.ID)
}

func TestSessionMiddleware_BearerHeader(t *testing.T) {
	db := testutil.SetupTestDB(t)
	sessions := auth.NewSessionService(db, nil)
	user := testutil.CreateTestUser(t, db, models.RoleAdmin, models.StatusApproved)

	ctx := testutil.TestContext(t)
	session, err := sessions.Create(ctx, user.ID, "", "")
	require.NoError(t, err)

	var got *auth.SessionUser
	handler := Session(sessions)(principalEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.User.ID)
}

func TestSessionMiddleware_AnonymousPassesThrough(t *testing.T) {
	db := testutil.SetupTestDB(t)
	sessions := auth.NewSessionService(db, nil)

	var got *auth.SessionUser
	handler := Session(sessions)(principalEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.Nil(t, got)
}

func TestSessionMiddleware_ExpiredTokenIsAnonymous(t *testing.T) {
	db := testutil.SetupTestDB(t)
	sessions := auth.NewSessionService(db, nil)
	user := testutil.CreateTestUser(t, db, models.RoleEditor, models.StatusApproved)

	expired := testutil.CreateTestSession(t, db, user.ID, time.Now().Add(-time.Hour))

	var got *auth.SessionUser
	handler := Session(sessions)(principalEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: expired.Token})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.Nil(t, got, "an expired token downgrades to anonymous")
}

func TestRequireAuth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db, models.RoleEditor, models.StatusApproved)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAuth(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)

	su := &auth.SessionUser{User: *user}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithSessionUser(req.Context(), su))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestRequireRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	editor := testutil.CreateTestUser(t, db, models.RoleEditor, models.StatusApproved)
	admin := testutil.CreateTestAdmin(t, db)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireRole(models.RoleAdmin)(next)

	// Anonymous: 401.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)

	// Signed in but under-privileged: 403.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithSessionUser(req.Context(), &auth.SessionUser{User: *editor}))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	testutil.AssertStatus(t, rr, http.StatusForbidden)

	// Admin: allowed.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithSessionUser(req.Context(), &auth.SessionUser{User: *admin}))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestGetUserRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	editor := testutil.CreateTestUser(t, db, models.RoleEditor, models.StatusApproved)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, GetUserRole(req.Context()))

	ctx := WithSessionUser(req.Context(), &auth.SessionUser{User: *editor})
	role := GetUserRole(ctx)
	require.NotNil(t, role)
	assert.Equal(t, models.RoleEditor, *role)
}
