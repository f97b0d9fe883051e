package models

import (
	"time"

	"gorm.io/gorm"
)

// CaseType represents the procurement method of a case
type CaseType string

const (
	CaseTypePurchase CaseType = "purchase" // จัดซื้อ
	CaseTypeHire     CaseType = "hire"     // จัดจ้าง
	CaseTypeLunch    CaseType = "lunch"    // อาหารกลางวัน
	CaseTypeInternet CaseType = "internet" // ค่าอินเทอร์เน็ต
)

func (t CaseType) Valid() bool {
	switch t {
	case CaseTypePurchase, CaseTypeHire, CaseTypeLunch, CaseTypeInternet:
		return true
	}
	return false
}

// DocumentType returns the running-number type prefix stamped on
// documents generated for this case type.
func (t CaseType) DocumentType() string {
	switch t {
	case CaseTypePurchase:
		return "PURCHASE"
	case CaseTypeHire:
		return "HIRE"
	case CaseTypeLunch:
		return "LUNCH"
	case CaseTypeInternet:
		return "INTERNET"
	default:
		return "DOC"
	}
}

type ProcurementCase struct {
	ID             string   `gorm:"primaryKey" json:"id"`
	OrganizationID string   `gorm:"not null;index" json:"organization_id"`
	CaseType       CaseType `gorm:"type:varchar(20);not null" json:"case_type"`
	Subtype        string   `gorm:"type:varchar(50)" json:"subtype"`
	Title          string   `json:"title"`
	VendorName     string   `json:"vendor_name"`
	FiscalYear     int      `gorm:"not null" json:"fiscal_year"` // Buddhist era, e.g. 2567

	// Backdated cases refer to past-dated transactions and are the only
	// cases permitting a manual document-number override.
	IsBackdated bool `gorm:"default:false" json:"is_backdated"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ProcurementCase) TableName() string {
	return "procurement_cases"
}
