package dto

import (
	"strings"
	"time"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/api/validation"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database/models"
)

type RegisterRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (r RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Invalid email format"
	}
	if strings.TrimSpace(r.Name) == "" {
		errors["name"] = "Name is required"
	} else if len(r.Name) > 120 {
		errors["name"] = "Name must be at most 120 characters"
	}

	return errors
}

type LoginRequest struct {
	Email string `json:"email"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Invalid email format"
	}

	return errors
}

type SessionResponse struct {
	User      UserDTO   `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

type UserDTO struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func NewUserDTO(u models.User) UserDTO {
	return UserDTO{
		ID:          u.ID.String(),
		Email:       u.Email,
		Name:        u.Name,
		Role:        string(u.Role),
		Status:      string(u.Status),
		CreatedAt:   u.CreatedAt,
		ApprovedAt:  u.ApprovedAt,
		LastLoginAt: u.LastLoginAt,
	}
}
