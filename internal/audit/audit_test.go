package audit

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database/models"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/testutil"
)

func TestRecorder_Record(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	rec := NewRecorder(db, nil)

	actorID := uuid.New()
	resourceType := models.ResourcePage
	resourceID := "cv"

	rec.Record(ctx, Entry{
		ActorID:      &actorID,
		Action:       models.ActionAccessGranted,
		ResourceType: &resourceType,
		ResourceID:   &resourceID,
		IPAddress:    "203.0.113.9",
		UserAgent:    "test-agent",
		Metadata:     map[string]any{"method": "role"},
	})

	var row models.AuditLogEntry
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, actorID, *row.ActorID)
	assert.Equal(t, models.ActionAccessGranted, row.Action)
	assert.Equal(t, "cv", *row.ResourceID)

	var meta map[string]any
	require.NoError(t, json.Unmarshal([]byte(row.Metadata), &meta))
	assert.Equal(t, "role", meta["method"])
}

func TestRecorder_FailuresAreSwallowed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	rec := NewRecorder(db, nil)

	// Break the table out from under the recorder; recording must neither
	// panic nor surface the failure.
	require.NoError(t, db.Migrator().DropTable(&models.AuditLogEntry{}))

	rec.Record(ctx, Entry{Action: models.ActionLogin})
}

func TestRecorder_UnencodableMetadata(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	rec := NewRecorder(db, nil)

	rec.Record(ctx, Entry{
		Action:   models.ActionLogin,
		Metadata: map[string]any{"bad": make(chan int)},
	})

	// The entry still lands, just without the metadata blob.
	var row models.AuditLogEntry
	require.NoError(t, db.First(&row).Error)
	assert.Empty(t, row.Metadata)
}

func TestRecorder_QueryFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	rec := NewRecorder(db, nil)

	alice := uuid.New()
	bob := uuid.New()

	rec.Record(ctx, Entry{ActorID: &alice, Action: models.ActionLogin})
	rec.Record(ctx, Entry{ActorID: &alice, Action: models.ActionLogout})
	rec.Record(ctx, Entry{ActorID: &bob, Action: models.ActionLogin})

	all, err := rec.Query(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	logins, err := rec.Query(ctx, Filter{Action: models.ActionLogin})
	require.NoError(t, err)
	assert.Len(t, logins, 2)

	aliceOnly, err := rec.Query(ctx, Filter{ActorID: &alice})
	require.NoError(t, err)
	assert.Len(t, aliceOnly, 2)

	both, err := rec.Query(ctx, Filter{ActorID: &alice, Action: models.ActionLogin})
	require.NoError(t, err)
	assert.Len(t, both, 1)
}

func TestRecorder_QueryLimitAndOffset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	rec := NewRecorder(db, nil)

	for i := 0; i < 5; i++ {
		rec.Record(ctx, Entry{Action: models.ActionLogin})
	}

	page, err := rec.Query(ctx, Filter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := rec.Query(ctx, Filter{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, rest, 1)

	// Out-of-range limits fall back to the default.
	capped, err := rec.Query(ctx, Filter{Limit: 10000})
	require.NoError(t, err)
	assert.Len(t, capped, 5)
}

func TestRecorder_Stats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	rec := NewRecorder(db, nil)

	rec.Record(ctx, Entry{Action: models.ActionLogin})
	rec.Record(ctx, Entry{Action: models.ActionLogin})
	rec.Record(ctx, Entry{Action: models.ActionAccessDenied})

	stats, err := rec.Stats(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(3), stats.Last24h)
	assert.Equal(t, int64(3), stats.Last7d)
	require.NotEmpty(t, stats.ByAction)
	assert.Equal(t, models.ActionLogin, stats.ByAction[0].Action)
	assert.Equal(t, int64(2), stats.ByAction[0].Count)
}
