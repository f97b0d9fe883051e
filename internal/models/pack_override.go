package models

import "time"

// PackOverride is an organization-scoped activation flag for a template
// pack. Absence of a row means the pack is active; administrators create
// a row to disable (or re-enable) a pack for their organization.
type PackOverride struct {
	ID             string `gorm:"primaryKey" json:"id"`
	OrganizationID string `gorm:"not null;uniqueIndex:idx_pack_override_key,priority:1" json:"organization_id"`
	PackID         string `gorm:"type:varchar(50);not null;uniqueIndex:idx_pack_override_key,priority:2" json:"pack_id"`
	IsActive       bool   `gorm:"not null;default:true" json:"is_active"`
	UpdatedBy      string `gorm:"type:varchar(36)" json:"updated_by"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PackOverride) TableName() string {
	return "pack_overrides"
}
