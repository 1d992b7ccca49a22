package models

import "time"

type MagicLink struct {
	Base
	Email      string     `gorm:"index;not null" json:"email"`
	Token      string     `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
	IPAddress  string     `json:"ip_address,omitempty"`
}

func (MagicLink) TableName() string {
	return "magic_links"
}
