package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database/models"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/testutil"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name     string
		actual   models.Role
		required models.Role
		want     bool
	}{
		{"public_meets_public", models.RolePublic, models.RolePublic, true},
		{"public_below_editor", models.RolePublic, models.RoleEditor, false},
		{"public_below_admin", models.RolePublic, models.RoleAdmin, false},
		{"editor_meets_public", models.RoleEditor, models.RolePublic, true},
		{"editor_meets_editor", models.RoleEditor, models.RoleEditor, true},
		{"editor_below_admin", models.RoleEditor, models.RoleAdmin, false},
		{"admin_meets_everything", models.RoleAdmin, models.RoleAdmin, true},
		{"admin_meets_editor", models.RoleAdmin, models.RoleEditor, true},
		{"unknown_actual_denied", models.Role("SUPERUSER"), models.RolePublic, false},
		{"unknown_required_denied", models.RoleAdmin, models.Role("OWNER"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasPermission(tt.actual, tt.required))
		})
	}
}

func TestCheckRole_UnprotectedIsPublic(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	svc := NewPermissionService(db, nil)

	// No rule exists for the pair, so even anonymous callers get in.
	dec, err := svc.CheckRole(ctx, nil, models.ResourcePage, "about")
	require.NoError(t, err)
	assert.True(t, dec.HasAccess)
	assert.Empty(t, dec.Reason)
}

func TestCheckRole_AnonymousDeniedOnProtected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	svc := NewPermissionService(db, nil)

	testutil.CreateProtection(t, db, models.ResourcePage, "cv", models.RoleEditor)

	dec, err := svc.CheckRole(ctx, nil, models.ResourcePage, "cv")
	require.NoError(t, err)
	assert.False(t, dec.HasAccess)
	assert.Equal(t, "Authentication required", dec.Reason)
}

func TestCheckRole_Hierarchy(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	svc := NewPermissionService(db, nil)

	testutil.CreateProtection(t, db, models.ResourceProject, "projects/client-work", models.RoleEditor)

	editor := models.RoleEditor
	dec, err := svc.CheckRole(ctx, &editor, models.ResourceProject, "projects/client-work")
	require.NoError(t, err)
	assert.True(t, dec.HasAccess)

	admin := models.RoleAdmin
	dec, err = svc.CheckRole(ctx, &admin, models.ResourceProject, "projects/client-work")
	require.NoError(t, err)
	assert.True(t, dec.HasAccess, "higher roles satisfy lower requirements")

	public := models.RolePublic
	dec, err = svc.CheckRole(ctx, &public, models.ResourceProject, "projects/client-work")
	require.NoError(t, err)
	assert.False(t, dec.HasAccess)
	assert.Equal(t, "Requires EDITOR role or higher", dec.Reason)
}

func TestCheckRole_ExactMatchOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	svc := NewPermissionService(db, nil)

	testutil.CreateProtection(t, db, models.ResourcePage, "cv", models.RoleAdmin)

	// Rules bind to the exact (type, id) pair; neighbours stay public.
	dec, err := svc.CheckRole(ctx, nil, models.ResourceSection, "cv")
	require.NoError(t, err)
	assert.True(t, dec.HasAccess)

	dec, err = svc.CheckRole(ctx, nil, models.ResourcePage, "cv/experience")
	require.NoError(t, err)
	assert.True(t, dec.HasAccess)
}

func TestUpsertRule(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	svc := NewPermissionService(db, nil)

	created, err := svc.UpsertRule(ctx, models.ResourcePage, "cv", models.RoleEditor)
	require.NoError(t, err)
	assert.True(t, created)

	// A second upsert tightens the same rule instead of duplicating it.
	created, err = svc.UpsertRule(ctx, models.ResourcePage, "cv", models.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, created)

	rules, err := svc.ListRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, models.RoleAdmin, rules[0].MinRole)

	editor := models.RoleEditor
	dec, err := svc.CheckRole(ctx, &editor, models.ResourcePage, "cv")
	require.NoError(t, err)
	assert.False(t, dec.HasAccess, "the tightened rule applies immediately")
}

func TestDeleteRule_RevertsToPublic(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	svc := NewPermissionService(db, nil)

	testutil.CreateProtection(t, db, models.ResourcePage, "cv", models.RoleAdmin)

	require.NoError(t, svc.DeleteRule(ctx, models.ResourcePage, "cv"))

	dec, err := svc.CheckRole(ctx, nil, models.ResourcePage, "cv")
	require.NoError(t, err)
	assert.True(t, dec.HasAccess, "unprotecting makes the resource public again")

	// Deleting an absent rule is not an error.
	assert.NoError(t, svc.DeleteRule(ctx, models.ResourcePage, "cv"))
}

// A resource gets protected mid-session: the next check reflects the new
// rule because every decision reads current state.
func TestProtectionAppliesImmediately(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	svc := NewPermissionService(db, nil)

	public := models.RolePublic
	dec, err := svc.CheckRole(ctx, &public, models.ResourceSection, "cv/experience")
	require.NoError(t, err)
	require.True(t, dec.HasAccess)

	_, err = svc.UpsertRule(ctx, models.ResourceSection, "cv/experience", models.RoleEditor)
	require.NoError(t, err)

	dec, err = svc.CheckRole(ctx, &public, models.ResourceSection, "cv/experience")
	require.NoError(t, err)
	assert.False(t, dec.HasAccess)
}
