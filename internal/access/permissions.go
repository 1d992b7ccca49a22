package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database/models"
	"gorm.io/gorm"
)

// PermissionService owns the protected_resources table. A resource with no
// rule is public: default-allow is a deliberate policy choice here, the
// admin UI and the seeding script both assume it.
type PermissionService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPermissionService(db *gorm.DB, now func() time.Time) *PermissionService {
	if now == nil {
		now = time.Now
	}
	return &PermissionService{db: db, now: now}
}

// GetRule is an exact-match lookup; nil means the resource is unprotected.
func (s *PermissionService) GetRule(ctx context.Context, resourceType models.ResourceType, resourceID string) (*models.ProtectedResource, error) {
	var rule models.ProtectedResource
	err := s.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// CheckRole answers the role path of the access decision. A nil role means
// the caller is anonymous.
func (s *PermissionService) CheckRole(ctx context.Context, role *models.Role, resourceType models.ResourceType, resourceID string) (Decision, error) {
	rule, err := s.GetRule(ctx, resourceType, resourceID)
	if err != nil {
		return Decision{}, err
	}

	if rule == nil {
		return Decision{HasAccess: true}, nil
	}

	if role == nil {
		return Decision{Reason: "Authentication required"}, nil
	}

	if !HasPermission(*role, rule.MinRole) {
		return Decision{Reason: fmt.Sprintf("Requires %s role or higher", rule.MinRole)}, nil
	}

	return Decision{HasAccess: true}, nil
}

// UpsertRule creates or updates the single rule for the pair and reports
// whether a new rule was created.
func (s *PermissionService) UpsertRule(ctx context.Context, resourceType models.ResourceType, resourceID string, minRole models.Role) (bool, error) {
	existing, err := s.GetRule(ctx, resourceType, resourceID)
	if err != nil {
		return false, err
	}

	if existing != nil {
		err := s.db.WithContext(ctx).
			Model(existing).
			Update("min_role", minRole).Error
		return false, err
	}

	rule := models.ProtectedResource{
		ResourceType: resourceType,
		ResourceID:   resourceID,
		MinRole:      minRole,
	}
	return true, s.db.WithContext(ctx).Create(&rule).Error
}

// DeleteRule removes the rule; the resource reverts to public immediately.
func (s *PermissionService) DeleteRule(ctx context.Context, resourceType models.ResourceType, resourceID string) error {
	return s.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Delete(&models.ProtectedResource{}).Error
}

func (s *PermissionService) ListRules(ctx context.Context) ([]models.ProtectedResource, error) {
	var rules []models.ProtectedResource
	err := s.db.WithContext(ctx).
		Order("resource_type, resource_id").
		Find(&rules).Error
	return rules, err
}
