package models

import "time"

// AuditAction classifies an entry in the append-only audit ledger.
type AuditAction string

const (
	ActionCreate   AuditAction = "CREATE"
	ActionUpdate   AuditAction = "UPDATE"
	ActionGenerate AuditAction = "GENERATE"
	ActionOverride AuditAction = "OVERRIDE"
)

// AuditLog is an immutable record of a mutating operation. Entries are
// written once and never updated or deleted.
type AuditLog struct {
	ID             string      `gorm:"primaryKey" json:"id"`
	OrganizationID string      `gorm:"not null;index" json:"organization_id"`
	ActorID        string      `gorm:"type:varchar(36);not null" json:"actor_id"`
	Action         AuditAction `gorm:"type:varchar(20);not null" json:"action"`
	EntityType     string      `gorm:"type:varchar(50);not null" json:"entity_type"`
	EntityID       string      `gorm:"type:varchar(191)" json:"entity_id"`
	CaseID         string      `gorm:"type:varchar(191);index" json:"case_id,omitempty"`
	Before         string      `gorm:"type:text" json:"before,omitempty"`
	After          string      `gorm:"type:text" json:"after,omitempty"`
	Reason         string      `gorm:"type:text" json:"reason,omitempty"`
	IPAddress      string      `gorm:"type:varchar(45)" json:"ip_address,omitempty"`
	UserAgent      string      `gorm:"type:text" json:"user_agent,omitempty"`
	CreatedAt      time.Time   `gorm:"index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
