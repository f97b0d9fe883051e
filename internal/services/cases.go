package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"SP-DOCS/internal/models"
)

// CaseService is the procurement case registry. Cases carry the fiscal
// year and backdated flag that the generation pipeline and number
// override depend on.
type CaseService struct {
	store CaseStore
	audit *AuditService
}

func NewCaseService(store CaseStore, audit *AuditService) *CaseService {
	return &CaseService{store: store, audit: audit}
}

type CreateCaseRequest struct {
	CaseType    models.CaseType `json:"case_type"`
	Subtype     string          `json:"subtype"`
	Title       string          `json:"title"`
	VendorName  string          `json:"vendor_name"`
	FiscalYear  int             `json:"fiscal_year"`
	IsBackdated bool            `json:"is_backdated"`
}

func (s *CaseService) Create(ctx context.Context, orgID, userID string, req CreateCaseRequest, meta RequestMeta) (*models.ProcurementCase, error) {
	if !req.CaseType.Valid() {
		return nil, fmt.Errorf("invalid case type: %s", req.CaseType)
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}
	if req.FiscalYear <= 0 {
		return nil, fmt.Errorf("fiscal year is required")
	}

	pcase := &models.ProcurementCase{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		CaseType:       req.CaseType,
		Subtype:        req.Subtype,
		Title:          req.Title,
		VendorName:     req.VendorName,
		FiscalYear:     req.FiscalYear,
		IsBackdated:    req.IsBackdated,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := s.store.Create(ctx, pcase); err != nil {
		return nil, fmt.Errorf("failed to create case: %w", err)
	}

	_ = s.audit.Record(ctx, AuditEntry{
		OrganizationID: orgID,
		ActorID:        userID,
		Action:         models.ActionCreate,
		EntityType:     "case",
		EntityID:       pcase.ID,
		CaseID:         pcase.ID,
		After:          pcase,
		Meta:           meta,
	})

	return pcase, nil
}

func (s *CaseService) Get(ctx context.Context, orgID, caseID string) (*models.ProcurementCase, error) {
	return s.store.Get(ctx, orgID, caseID)
}

func (s *CaseService) List(ctx context.Context, orgID string) ([]models.ProcurementCase, error) {
	return s.store.List(ctx, orgID)
}
