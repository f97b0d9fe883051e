package models

import "time"

// RunningNumberCounter is the per-(organization, fiscal year, document
// type) sequence backing official document numbers. Rows are created
// lazily on first allocation and only ever incremented, never deleted.
// The counter must be read and advanced under a row lock; see
// repository.CounterRepository.
type RunningNumberCounter struct {
	ID             string `gorm:"primaryKey" json:"id"`
	OrganizationID string `gorm:"not null;uniqueIndex:idx_running_number_key,priority:1" json:"organization_id"`
	FiscalYear     int    `gorm:"not null;uniqueIndex:idx_running_number_key,priority:2" json:"fiscal_year"`
	DocumentType   string `gorm:"type:varchar(20);not null;uniqueIndex:idx_running_number_key,priority:3" json:"document_type"`
	Sequence       int    `gorm:"not null;default:0" json:"sequence"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RunningNumberCounter) TableName() string {
	return "running_number_counters"
}
