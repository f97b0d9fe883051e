package models

import (
	"time"

	"gorm.io/gorm"
)

// EventType represents the type of statistical event
type EventType string

const (
	EventGenerate EventType = "generate"
	EventOverride EventType = "override"
	EventDownload EventType = "download"
)

// Statistics tracks counts per pack per day for usage analytics.
// Best-effort only; never consulted by the generation pipeline.
type Statistics struct {
	ID             string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrganizationID string         `gorm:"type:varchar(36);index" json:"organization_id"`
	EventType      EventType      `gorm:"type:varchar(50);not null;index" json:"event_type"`
	PackID         string         `gorm:"type:varchar(50);index" json:"pack_id,omitempty"` // Optional: for per-pack stats
	Date           time.Time      `gorm:"type:date;not null;index" json:"date"`            // Day-level granularity
	Count          int64          `gorm:"not null;default:0" json:"count"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Statistics) TableName() string {
	return "statistics"
}

// StatisticsSummary represents aggregated statistics
type StatisticsSummary struct {
	TotalGenerations int64 `json:"total_generations"`
	TotalOverrides   int64 `json:"total_overrides"`
	TotalDownloads   int64 `json:"total_downloads"`
}
