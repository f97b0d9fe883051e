package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"SP-DOCS/internal/models"
)

// StatisticsService tracks generation/override/download counts per pack
// per day. Purely informational; callers treat failures as best-effort.
type StatisticsService struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewStatisticsService(db *gorm.DB, log *logrus.Logger) *StatisticsService {
	return &StatisticsService{db: db, log: log}
}

// IncrementStat increments the count for an event type and optional pack.
// It uses upsert logic to either create a new record or increment an
// existing one.
func (s *StatisticsService) IncrementStat(orgID string, eventType models.EventType, packID string) error {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	var stat models.Statistics
	query := s.db.Where("organization_id = ? AND event_type = ? AND date = ?", orgID, eventType, today)
	if packID != "" {
		query = query.Where("pack_id = ?", packID)
	} else {
		query = query.Where("pack_id IS NULL OR pack_id = ''")
	}

	if err := query.First(&stat).Error; err != nil {
		stat = models.Statistics{
			ID:             uuid.New().String(),
			OrganizationID: orgID,
			EventType:      eventType,
			PackID:         packID,
			Date:           today,
			Count:          1,
		}
		if err := s.db.Create(&stat).Error; err != nil {
			// Another request may have created the row; increment instead.
			return s.incrementExisting(orgID, eventType, packID, today)
		}
		return nil
	}

	return s.db.Model(&models.Statistics{}).
		Where("id = ?", stat.ID).
		UpdateColumn("count", gorm.Expr("count + 1")).Error
}

func (s *StatisticsService) incrementExisting(orgID string, eventType models.EventType, packID string, date time.Time) error {
	query := s.db.Model(&models.Statistics{}).
		Where("organization_id = ? AND event_type = ? AND date = ?", orgID, eventType, date)
	if packID != "" {
		query = query.Where("pack_id = ?", packID)
	} else {
		query = query.Where("pack_id IS NULL OR pack_id = ''")
	}
	return query.UpdateColumn("count", gorm.Expr("count + 1")).Error
}

func (s *StatisticsService) RecordGeneration(orgID, packID string) {
	if err := s.IncrementStat(orgID, models.EventGenerate, packID); err != nil {
		s.log.WithFields(logrus.Fields{"module": "statistics", "pack_id": packID}).
			Warn("failed to record generation stat: " + err.Error())
	}
}

func (s *StatisticsService) RecordOverride(orgID string) {
	if err := s.IncrementStat(orgID, models.EventOverride, ""); err != nil {
		s.log.WithField("module", "statistics").
			Warn("failed to record override stat: " + err.Error())
	}
}

func (s *StatisticsService) RecordDownload(orgID, packID string) {
	if err := s.IncrementStat(orgID, models.EventDownload, packID); err != nil {
		s.log.WithFields(logrus.Fields{"module": "statistics", "pack_id": packID}).
			Warn("failed to record download stat: " + err.Error())
	}
}

// GetSummary returns org-wide totals per event type.
func (s *StatisticsService) GetSummary(orgID string) (*models.StatisticsSummary, error) {
	summary := &models.StatisticsSummary{}

	type row struct {
		EventType models.EventType
		Total     int64
	}
	var rows []row
	err := s.db.Model(&models.Statistics{}).
		Select("event_type, SUM(count) as total").
		Where("organization_id = ?", orgID).
		Group("event_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		switch r.EventType {
		case models.EventGenerate:
			summary.TotalGenerations = r.Total
		case models.EventOverride:
			summary.TotalOverrides = r.Total
		case models.EventDownload:
			summary.TotalDownloads = r.Total
		}
	}
	return summary, nil
}
