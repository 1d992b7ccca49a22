package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database/models"
)

// SetupTestDB creates an in-memory SQLite database for testing. The pool is
// pinned to one connection so every goroutine sees the same :memory: store.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.MagicLink{},
		&models.Session{},
		&models.ProtectedResource{},
		&models.ShareLink{},
		&models.AuditLogEntry{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { sqlDB.Close() })

	return db
}

// Clock is a settable time source for expiry tests.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now is passed as the `now` hook of the services under test.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// CreateTestUser creates a user with the given role and status.
func CreateTestUser(t *testing.T, db *gorm.DB, role models.Role, status models.UserStatus) *models.User {
	t.Helper()

	user := &models.User{
		Base: models.Base{
			ID: uuid.New(),
		},
		Email:  "test-" + uuid.New().String()[:8] + "@example.com",
		Name:   "Test User",
		Role:   role,
		Status: status,
	}
	if status == models.StatusApproved {
		now := time.Now()
		user.ApprovedAt = &now
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateTestAdmin creates an approved admin user.
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUser(t, db, models.RoleAdmin, models.StatusApproved)
}

// CreateTestSession creates a live session for the user.
func CreateTestSession(t *testing.T, db *gorm.DB, userID uuid.UUID, expiresAt time.Time) *models.Session {
	t.Helper()

	session := &models.Session{
		Base: models.Base{
			ID: uuid.New(),
		},
		UserID:    userID,
		Token:     "session-" + uuid.New().String(),
		ExpiresAt: expiresAt,
	}

	if err := db.Create(session).Error; err != nil {
		t.Fatalf("failed to create test session: %v", err)
	}

	return session
}

// CreateProtection inserts an access rule for the resource pair.
func CreateProtection(t *testing.T, db *gorm.DB, resourceType models.ResourceType, resourceID string, minRole models.Role) *models.ProtectedResource {
	t.Helper()

	rule := &models.ProtectedResource{
		Base: models.Base{
			ID: uuid.New(),
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
		MinRole:      minRole,
	}

	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("failed to create test protection: %v", err)
	}

	return rule
}

// JSONRequest creates an HTTP request with a JSON body.
func JSONRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	return req
}

// AssertStatus checks if the response has the expected status code
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// TestContext creates a context with a timeout for tests
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}
