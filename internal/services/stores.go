package services

import (
	"context"

	"SP-DOCS/internal/models"
)

// Store interfaces keep the pipeline and allocator independent of the
// database wiring. The GORM-backed implementations live in
// internal/repository.

// CounterStore owns the running-number counter rows. Implementations
// must advance a key atomically: two concurrent calls for the same key
// can never observe the same pre-increment value.
type CounterStore interface {
	// NextSequence advances the counter for the key and returns the new
	// sequence value, plus whether this call created the counter row.
	NextSequence(ctx context.Context, orgID string, fiscalYear int, documentType string) (seq int, created bool, err error)
}

type CaseStore interface {
	Create(ctx context.Context, pcase *models.ProcurementCase) error
	Get(ctx context.Context, orgID, caseID string) (*models.ProcurementCase, error)
	List(ctx context.Context, orgID string) ([]models.ProcurementCase, error)
}

type DocumentStore interface {
	// CreateBatch persists all rows of one generation event together.
	CreateBatch(ctx context.Context, docs []*models.DocumentRecord) error
	Get(ctx context.Context, orgID, documentID string) (*models.DocumentRecord, error)
	ListByCase(ctx context.Context, orgID, caseID string) ([]models.DocumentRecord, error)
	// UpdateOverride persists the manual-number and document-date fields,
	// the only fields mutable after creation.
	UpdateOverride(ctx context.Context, doc *models.DocumentRecord) error
}

// AuditFilter narrows an audit listing. Zero values mean "no filter".
type AuditFilter struct {
	EntityType string
	EntityID   string
	CaseID     string
	Limit      int
	Offset     int
}

type AuditStore interface {
	Append(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, orgID string, filter AuditFilter) ([]models.AuditLog, error)
}

type PackOverrideStore interface {
	// Get returns (nil, nil) when no override row exists for the key.
	Get(ctx context.Context, orgID, packID string) (*models.PackOverride, error)
	Upsert(ctx context.Context, override *models.PackOverride) error
}
