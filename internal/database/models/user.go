package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RolePublic Role = "PUBLIC"
	RoleEditor Role = "EDITOR"
	RoleAdmin  Role = "ADMIN"
)

type UserStatus string

const (
	StatusPending  UserStatus = "PENDING"
	StatusApproved UserStatus = "APPROVED"
	StatusRejected UserStatus = "REJECTED"
)

type User struct {
	Base
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Name        string     `json:"name"`
	Role        Role       `gorm:"type:varchar(16);default:'EDITOR'" json:"role"`
	Status      UserStatus `gorm:"type:varchar(16);default:'PENDING';index" json:"status"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	ApprovedBy  *uuid.UUID `gorm:"type:uuid" json:"approved_by,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}
