package models

type ResourceType string

const (
	ResourcePage    ResourceType = "PAGE"
	ResourceSection ResourceType = "SECTION"
	ResourceProject ResourceType = "PROJECT"
	// ResourceAll is valid only as a share-link scope, never as a protection target.
	ResourceAll ResourceType = "ALL"
)

// ProtectedResource is an access rule, not the content itself. Absence of a
// rule means the resource is public.
type ProtectedResource struct {
	Base
	ResourceType ResourceType `gorm:"type:varchar(16);not null;uniqueIndex:idx_protected_resource" json:"resource_type"`
	ResourceID   string       `gorm:"not null;uniqueIndex:idx_protected_resource" json:"resource_id"`
	MinRole      Role         `gorm:"type:varchar(16);not null" json:"min_role"`
}

func (ProtectedResource) TableName() string {
	return "protected_resources"
}
