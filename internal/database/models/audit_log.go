package models

import "github.com/google/uuid"

type AuditAction string

// Closed vocabulary. Extend by adding values, never by repurposing.
const (
	ActionLogin                AuditAction = "LOGIN"
	ActionLogout               AuditAction = "LOGOUT"
	ActionRegistrationRequest  AuditAction = "REGISTRATION_REQUEST"
	ActionRegistrationApproved AuditAction = "REGISTRATION_APPROVED"
	ActionRegistrationRejected AuditAction = "REGISTRATION_REJECTED"
	ActionAccessGranted        AuditAction = "ACCESS_GRANTED"
	ActionAccessDenied         AuditAction = "ACCESS_DENIED"
	ActionShareLinkCreated     AuditAction = "SHARE_LINK_CREATED"
	ActionShareLinkUsed        AuditAction = "SHARE_LINK_USED"
	ActionShareLinkRevoked     AuditAction = "SHARE_LINK_REVOKED"
	ActionPermissionCreated    AuditAction = "PERMISSION_CREATED"
	ActionPermissionUpdated    AuditAction = "PERMISSION_UPDATED"
	ActionPermissionDeleted    AuditAction = "PERMISSION_DELETED"
	ActionUserCreated          AuditAction = "USER_CREATED"
	ActionUserUpdated          AuditAction = "USER_UPDATED"
	ActionUserDeleted          AuditAction = "USER_DELETED"
)

// AuditLogEntry is append-only; nothing updates or deletes rows except the
// retention sweep.
type AuditLogEntry struct {
	Base
	ActorID      *uuid.UUID    `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	Action       AuditAction   `gorm:"type:varchar(32);index;not null" json:"action"`
	ResourceType *ResourceType `gorm:"type:varchar(16)" json:"resource_type,omitempty"`
	ResourceID   *string       `json:"resource_id,omitempty"`
	IPAddress    string        `json:"ip_address,omitempty"`
	UserAgent    string        `json:"user_agent,omitempty"`
	Metadata     string        `gorm:"type:text" json:"metadata,omitempty"`
}

func (AuditLogEntry) TableName() string {
	return "audit_log"
}
