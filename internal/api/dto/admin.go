package dto

import (
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/api/validation"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database/models"
)

type CreateUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (r CreateUserRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Invalid email format"
	}
	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	switch models.Role(r.Role) {
	case models.RolePublic, models.RoleEditor, models.RoleAdmin:
	default:
		errors["role"] = "Role must be PUBLIC, EDITOR or ADMIN"
	}

	return errors
}

type ProtectResourceRequest struct {
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	MinRole      string `json:"min_role"`
}

func (r ProtectResourceRequest) Validate() map[string]string {
	errors := make(map[string]string)

	// ALL is a share-link scope, never a protection target.
	switch models.ResourceType(r.ResourceType) {
	case models.ResourcePage, models.ResourceSection, models.ResourceProject:
	default:
		errors["resource_type"] = "Resource type must be PAGE, SECTION or PROJECT"
	}
	if r.ResourceID == "" {
		errors["resource_id"] = "Resource ID is required"
	} else if !validation.IsValidResourceID(r.ResourceID) {
		errors["resource_id"] = "Invalid resource ID format"
	}
	// A PUBLIC minimum would protect nothing; rules start at EDITOR.
	switch models.Role(r.MinRole) {
	case models.RoleEditor, models.RoleAdmin:
	default:
		errors["min_role"] = "Minimum role must be EDITOR or ADMIN"
	}

	return errors
}

type CreateShareLinkRequest struct {
	ResourceType   string  `json:"resource_type"`
	ResourceID     *string `json:"resource_id,omitempty"`
	ExpiresInHours int     `json:"expires_in_hours"`
	MaxUses        *int    `json:"max_uses,omitempty"`
}

func (r CreateShareLinkRequest) Validate() map[string]string {
	errors := make(map[string]string)

	switch models.ResourceType(r.ResourceType) {
	case models.ResourceAll:
	case models.ResourcePage, models.ResourceSection, models.ResourceProject:
		if r.ResourceID == nil || *r.ResourceID == "" {
			errors["resource_id"] = "Resource ID is required unless scope is ALL"
		} else if !validation.IsValidResourceID(*r.ResourceID) {
			errors["resource_id"] = "Invalid resource ID format"
		}
	default:
		errors["resource_type"] = "Resource type must be PAGE, SECTION, PROJECT or ALL"
	}

	if r.ExpiresInHours < 1 || r.ExpiresInHours > 720 {
		errors["expires_in_hours"] = "Expiry must be between 1 and 720 hours"
	}
	if r.MaxUses != nil && *r.MaxUses < 1 {
		errors["max_uses"] = "Max uses must be at least 1"
	}

	return errors
}

type CheckAccessRequest struct {
	ResourceType string  `json:"resource_type"`
	ResourceID   string  `json:"resource_id"`
	ShareToken   *string `json:"share_token,omitempty"`
}

func (r CheckAccessRequest) Validate() map[string]string {
	errors := make(map[string]string)

	switch models.ResourceType(r.ResourceType) {
	case models.ResourcePage, models.ResourceSection, models.ResourceProject:
	default:
		errors["resource_type"] = "Resource type must be PAGE, SECTION or PROJECT"
	}
	if r.ResourceID == "" {
		errors["resource_id"] = "Resource ID is required"
	} else if !validation.IsValidResourceID(r.ResourceID) {
		errors["resource_id"] = "Invalid resource ID format"
	}
	if r.ShareToken != nil && !validation.IsValidToken(*r.ShareToken) {
		errors["share_token"] = "Invalid share token format"
	}

	return errors
}
