package models

import (
	"time"

	"github.com/google/uuid"
)

// ShareLink is a capability token independent of user identity. The token is
// the only control: anyone holding it has the grant until expiry or
// exhaustion.
type ShareLink struct {
	Base
	Token        string       `gorm:"uniqueIndex;not null" json:"token"`
	CreatedBy    uuid.UUID    `gorm:"type:uuid;index;not null" json:"created_by"`
	ResourceType ResourceType `gorm:"type:varchar(16);not null" json:"resource_type"`
	ResourceID   *string      `gorm:"index" json:"resource_id,omitempty"`
	ExpiresAt    time.Time    `gorm:"not null" json:"expires_at"`
	MaxUses      *int         `json:"max_uses,omitempty"`
	UseCount     int          `gorm:"not null;default:0" json:"use_count"`
}

func (ShareLink) TableName() string {
	return "share_links"
}
