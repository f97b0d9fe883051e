package models

import (
	"time"

	"gorm.io/gorm"
)

// FileType distinguishes the physical outputs of one generation event.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeZip FileType = "zip"
)

// DocumentRecord represents one physical output file of a generation
// event. All files produced by a single event share one running number.
type DocumentRecord struct {
	ID             string   `gorm:"primaryKey" json:"id"`
	OrganizationID string   `gorm:"not null;index" json:"organization_id"`
	CaseID         string   `gorm:"not null;index" json:"case_id"`
	PackID         string   `gorm:"type:varchar(50);not null" json:"pack_id"`
	DocumentType   string   `gorm:"type:varchar(20);not null" json:"document_type"`
	FileType       FileType `gorm:"type:varchar(10);not null" json:"file_type"`
	FileName       string   `gorm:"not null" json:"file_name"`
	FilePath       string   `json:"file_path"`
	StoragePath    string   `json:"storage_path"`

	// RunningNumber is copied from the counter at generation time, not
	// referenced live. ManualNumber may be set afterwards through the
	// override operation, and only for backdated cases.
	RunningNumber string `gorm:"type:varchar(40);not null" json:"running_number"`
	ManualNumber  string `gorm:"type:varchar(40)" json:"manual_number,omitempty"`

	DocumentDate time.Time `json:"document_date"`
	GeneratedAt  time.Time `gorm:"index" json:"generated_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (DocumentRecord) TableName() string {
	return "documents"
}

// EffectiveNumber is the number shown on the document: the manual
// override when present, otherwise the allocated running number.
func (d *DocumentRecord) EffectiveNumber() string {
	if d.ManualNumber != "" {
		return d.ManualNumber
	}
	return d.RunningNumber
}
