package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"SP-DOCS/internal/models"
	"SP-DOCS/internal/services"
)

type CaseRepository struct {
	db *gorm.DB
}

func NewCaseRepository(db *gorm.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

func (r *CaseRepository) Create(ctx context.Context, pcase *models.ProcurementCase) error {
	return r.db.WithContext(ctx).Create(pcase).Error
}

func (r *CaseRepository) Get(ctx context.Context, orgID, caseID string) (*models.ProcurementCase, error) {
	var pcase models.ProcurementCase
	err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", caseID, orgID).
		First(&pcase).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &services.NotFoundError{Entity: "case", ID: caseID}
	}
	if err != nil {
		return nil, err
	}
	return &pcase, nil
}

func (r *CaseRepository) List(ctx context.Context, orgID string) ([]models.ProcurementCase, error) {
	var cases []models.ProcurementCase
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("created_at DESC").
		Find(&cases).Error
	if err != nil {
		return nil, err
	}
	return cases, nil
}

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) CreateBatch(ctx context.Context, docs []*models.DocumentRecord) error {
	return r.db.WithContext(ctx).Create(&docs).Error
}

func (r *DocumentRepository) Get(ctx context.Context, orgID, documentID string) (*models.DocumentRecord, error) {
	var doc models.DocumentRecord
	err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", documentID, orgID).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &services.NotFoundError{Entity: "document", ID: documentID}
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepository) ListByCase(ctx context.Context, orgID, caseID string) ([]models.DocumentRecord, error) {
	var docs []models.DocumentRecord
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND case_id = ?", orgID, caseID).
		Order("generated_at DESC, file_type ASC, file_name ASC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *DocumentRepository) UpdateOverride(ctx context.Context, doc *models.DocumentRecord) error {
	return r.db.WithContext(ctx).Model(doc).
		Select("manual_number", "document_date").
		Updates(map[string]interface{}{
			"manual_number": doc.ManualNumber,
			"document_date": doc.DocumentDate,
		}).Error
}

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *AuditRepository) List(ctx context.Context, orgID string, filter services.AuditFilter) ([]models.AuditLog, error) {
	query := r.db.WithContext(ctx).Where("organization_id = ?", orgID)
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != "" {
		query = query.Where("entity_id = ?", filter.EntityID)
	}
	if filter.CaseID != "" {
		query = query.Where("case_id = ?", filter.CaseID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var entries []models.AuditLog
	if err := query.Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

type PackOverrideRepository struct {
	db *gorm.DB
}

func NewPackOverrideRepository(db *gorm.DB) *PackOverrideRepository {
	return &PackOverrideRepository{db: db}
}

func (r *PackOverrideRepository) Get(ctx context.Context, orgID, packID string) (*models.PackOverride, error) {
	var override models.PackOverride
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND pack_id = ?", orgID, packID).
		First(&override).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &override, nil
}

func (r *PackOverrideRepository) Upsert(ctx context.Context, override *models.PackOverride) error {
	return r.db.WithContext(ctx).Save(override).Error
}
